package playlist

import "github.com/osa030/playlistbox/internal/app/event"

// Playlist event types.
const (
	EventChange event.Type = "playlistchange" // Items replaced
	EventAdd    event.Type = "playlistadd"    // Items inserted, payload AddEvent
	EventRemove event.Type = "playlistremove" // Items removed, payload RemoveEvent
	EventSorted event.Type = "playlistsorted" // Items reordered
)

// AddEvent is the payload of EventAdd.
type AddEvent struct {
	Count int // Number of inserted items
	Index int // Position of the first inserted item
}

// RemoveEvent is the payload of EventRemove.
type RemoveEvent struct {
	Count int // Number of removed items
	Index int // Position of the first removed item
}
