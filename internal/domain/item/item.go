// Package item provides the playlist Item entity and its validation.
package item

import (
	"maps"
	"time"

	"github.com/osa030/playlistbox/internal/domain/source"
)

// Reserved keys of a raw item. Every other key is metadata.
const (
	KeySources    = "sources"
	KeyPoster     = "poster"
	KeyTextTracks = "textTracks"
)

// Raw is the untyped shape of an item as it arrives from callers or files.
type Raw map[string]any

// TextTrack describes a caption or subtitle resource attached to an item.
type TextTrack struct {
	Kind     string         `mapstructure:"kind"`
	Label    string         `mapstructure:"label"`
	Language string         `mapstructure:"srclang"`
	Src      string         `mapstructure:"src"`
	Default  bool           `mapstructure:"default"`
	Extra    map[string]any `mapstructure:",remain"` // Unrecognized descriptor fields
}

// Item represents one playable unit of a playlist.
type Item struct {
	Sources    []source.Source // At least one
	Poster     string          // Poster URL, empty if none
	TextTracks []TextTrack     // Text tracks, in order
	Metadata   map[string]any  // Title, description, duration, ...
}

// MediaSources implements source.Carrier.
func (it *Item) MediaSources() []source.Source {
	if it == nil {
		return nil
	}
	return it.Sources
}

// Meta returns the metadata value stored under key.
func (it *Item) Meta(key string) (any, bool) {
	v, ok := it.Metadata[key]
	return v, ok
}

// Title returns the "title" metadata field, or an empty string.
func (it *Item) Title() string {
	if s, ok := it.Metadata["title"].(string); ok {
		return s
	}
	return ""
}

// Duration returns the "duration" metadata field interpreted as seconds.
func (it *Item) Duration() (time.Duration, bool) {
	var seconds float64
	switch v := it.Metadata["duration"].(type) {
	case int:
		seconds = float64(v)
	case int64:
		seconds = float64(v)
	case float64:
		seconds = v
	default:
		return 0, false
	}
	if seconds <= 0 {
		return 0, false
	}
	return time.Duration(seconds * float64(time.Second)), true
}

// Clone returns a copy that shares no slices or maps with it.
// Metadata values themselves are copied shallowly.
func (it *Item) Clone() Item {
	c := Item{
		Sources:    make([]source.Source, len(it.Sources)),
		Poster:     it.Poster,
		TextTracks: make([]TextTrack, len(it.TextTracks)),
		Metadata:   maps.Clone(it.Metadata),
	}
	copy(c.Sources, it.Sources)
	for i, tt := range it.TextTracks {
		tt.Extra = maps.Clone(tt.Extra)
		c.TextTracks[i] = tt
	}
	if c.Metadata == nil {
		c.Metadata = map[string]any{}
	}
	return c
}
