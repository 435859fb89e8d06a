package memplayer

import (
	"github.com/osa030/playlistbox/internal/app/playback"
	"github.com/osa030/playlistbox/internal/domain/item"
)

type remoteTrack struct {
	desc item.TextTrack
}

func (t *remoteTrack) Track() item.TextTrack {
	return t.desc
}

// TrackList is a live list of remote text tracks.
type TrackList struct {
	tracks []*remoteTrack
}

// Len returns the number of attached tracks.
func (l *TrackList) Len() int {
	return len(l.tracks)
}

// At returns the track at i.
func (l *TrackList) At(i int) playback.RemoteTextTrack {
	return l.tracks[i]
}

// Descriptors returns the descriptors of the attached tracks.
func (l *TrackList) Descriptors() []item.TextTrack {
	out := make([]item.TextTrack, len(l.tracks))
	for i, t := range l.tracks {
		out[i] = t.desc
	}
	return out
}

func (l *TrackList) remove(t playback.RemoteTextTrack) {
	for i, c := range l.tracks {
		if playback.RemoteTextTrack(c) == t {
			l.tracks = append(l.tracks[:i], l.tracks[i+1:]...)
			return
		}
	}
}
