package playback

import "github.com/osa030/playlistbox/internal/app/event"

// Player events observed by the controller.
const (
	EventLoadStart event.Type = "loadstart" // Player started loading a source
	EventDispose   event.Type = "dispose"   // Player is going away
)

// Events emitted on the player by the controller.
const (
	EventBeforeItem    event.Type = "beforeplaylistitem" // Payload: item.Item about to load
	EventItem          event.Type = "playlistitem"       // Payload: item.Item that finished loading
	EventPlaylistEnded event.Type = "playlistended"      // Next was requested from the last item
)
