package playback

import (
	"github.com/osa030/playlistbox/internal/app/autoadvance"
	"github.com/osa030/playlistbox/internal/app/event"
	"github.com/osa030/playlistbox/internal/domain/item"
	"github.com/osa030/playlistbox/internal/domain/source"
)

// RemoteTextTrack is a text track attached to the player.
type RemoteTextTrack interface {
	Track() item.TextTrack
}

// TextTrackList is the player's live list of remote text tracks.
// Removing a track shifts the tracks after it.
type TextTrackList interface {
	Len() int
	At(i int) RemoteTextTrack
}

// Player is the host media player a Controller is attached to.
type Player interface {
	autoadvance.Host

	On(t event.Type, h event.Handler) event.ListenerID
	Trigger(t event.Type, payload any)

	SetSrc(sources []source.Source)
	CurrentSrc() string
	Poster() string
	SetPoster(url string)

	RemoteTextTracks() TextTrackList
	AddRemoteTextTrack(t item.TextTrack) RemoteTextTrack
	RemoveRemoteTextTrack(t RemoteTextTrack)

	Play()
	Paused() bool
	Ended() bool

	// Ready runs fn once the player can accept text tracks for the
	// current source, immediately if it already can.
	Ready(fn func())
}
