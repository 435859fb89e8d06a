package item

import (
	"bytes"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/osa030/playlistbox/internal/domain/source"
)

func newTestLogger() (zerolog.Logger, *bytes.Buffer) {
	var buf bytes.Buffer
	return zerolog.New(&buf), &buf
}

func TestValidate_Rejections(t *testing.T) {
	tests := []struct {
		name    string
		raw     Raw
		wantErr error
	}{
		{name: "nil item", raw: nil, wantErr: ErrInvalidShape},
		{name: "missing sources", raw: Raw{"title": "x"}, wantErr: ErrInvalidShape},
		{name: "sources is a string", raw: Raw{"sources": "http://host/a.mp4"}, wantErr: ErrInvalidShape},
		{name: "empty sources", raw: Raw{"sources": []any{}}, wantErr: ErrNoValidSources},
		{
			name: "only invalid sources",
			raw: Raw{"sources": []any{
				"http://host/a.mp4",
				map[string]any{"src": "http://host/a.mp4"},
				map[string]any{"src": 1, "type": "video/mp4"},
			}},
			wantErr: ErrNoValidSources,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			log, buf := newTestLogger()

			it, err := Validate(tt.raw, log)
			assert.Nil(t, it)
			assert.ErrorIs(t, err, tt.wantErr)
			assert.Contains(t, buf.String(), `"level":"error"`)
			assert.Contains(t, buf.String(), tt.wantErr.Error())
		})
	}
}

func TestValidate_DisregardsInvalidSources(t *testing.T) {
	log, buf := newTestLogger()

	it, err := Validate(Raw{
		"sources": []any{
			map[string]any{"src": "http://host/a.mp4", "type": "video/mp4"},
			map[string]any{"type": "video/webm"},
			42,
		},
	}, log)
	require.NoError(t, err)

	assert.Equal(t, []source.Source{{Src: "http://host/a.mp4", Type: "video/mp4"}}, it.Sources)
	assert.Contains(t, buf.String(), `"level":"warn"`)
	assert.Contains(t, buf.String(), "some invalid sources were disregarded")
}

func TestValidate_DefaultsAndMetadata(t *testing.T) {
	log, buf := newTestLogger()

	it, err := Validate(Raw{
		"sources":     []source.Source{{Src: "http://host/a.mp4", Type: "video/mp4"}},
		"title":       "Big Buck Bunny",
		"duration":    52,
		"description": "a rabbit",
		"custom":      map[string]any{"nested": true},
	}, log)
	require.NoError(t, err)

	assert.Equal(t, "", it.Poster)
	assert.NotNil(t, it.TextTracks)
	assert.Empty(t, it.TextTracks)
	assert.Equal(t, "Big Buck Bunny", it.Title())
	assert.Equal(t, "a rabbit", it.Metadata["description"])
	assert.Equal(t, map[string]any{"nested": true}, it.Metadata["custom"])
	assert.NotContains(t, it.Metadata, KeySources)

	d, ok := it.Duration()
	assert.True(t, ok)
	assert.Equal(t, 52*time.Second, d)
	assert.Empty(t, buf.String())
}

func TestValidate_PosterAndTextTracks(t *testing.T) {
	log, buf := newTestLogger()

	it, err := Validate(Raw{
		"sources": []map[string]any{{"src": "//host/a.mp4", "type": "video/mp4"}},
		"poster":  "http://host/a.jpg",
		"textTracks": []any{
			map[string]any{"kind": "captions", "src": "http://host/a.vtt", "srclang": "en", "label": "English", "default": true, "mode": "showing"},
			"not-a-track",
		},
	}, log)
	require.NoError(t, err)

	assert.Equal(t, "http://host/a.jpg", it.Poster)
	require.Len(t, it.TextTracks, 1)
	tt := it.TextTracks[0]
	assert.Equal(t, "captions", tt.Kind)
	assert.Equal(t, "English", tt.Label)
	assert.Equal(t, "en", tt.Language)
	assert.Equal(t, "http://host/a.vtt", tt.Src)
	assert.True(t, tt.Default)
	assert.Equal(t, "showing", tt.Extra["mode"])
	assert.Contains(t, buf.String(), "invalid text track disregarded")
	assert.NotContains(t, it.Metadata, KeyPoster)
	assert.NotContains(t, it.Metadata, KeyTextTracks)
}

func TestValidate_ArrayShapes(t *testing.T) {
	srcMap := map[string]any{"src": "http://host/a.mp4", "type": "video/mp4"}
	track := map[string]any{"kind": "captions", "src": "http://host/a.vtt", "srclang": "en"}

	tests := []struct {
		name       string
		sources    any
		textTracks any
	}{
		{name: "untyped arrays", sources: []any{srcMap}, textTracks: []any{track}},
		{name: "map slices", sources: []map[string]any{srcMap}, textTracks: []map[string]any{track}},
		{name: "raw slices", sources: []Raw{srcMap}, textTracks: []Raw{track}},
		{name: "raw elements", sources: []any{Raw(srcMap)}, textTracks: []any{Raw(track)}},
		{name: "typed values", sources: []source.Source{{Src: "http://host/a.mp4", Type: "video/mp4"}}, textTracks: []TextTrack{{Kind: "captions", Src: "http://host/a.vtt", Language: "en"}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			log, buf := newTestLogger()

			it, err := Validate(Raw{"sources": tt.sources, "textTracks": tt.textTracks}, log)
			require.NoError(t, err)

			assert.Equal(t, []source.Source{{Src: "http://host/a.mp4", Type: "video/mp4"}}, it.Sources)
			require.Len(t, it.TextTracks, 1)
			assert.Equal(t, "captions", it.TextTracks[0].Kind)
			assert.Equal(t, "en", it.TextTracks[0].Language)
			assert.Empty(t, buf.String())
		})
	}
}

func TestValidate_TypedSourceNeedsType(t *testing.T) {
	log, buf := newTestLogger()

	it, err := Validate(Raw{
		"sources": []source.Source{
			{Src: "http://host/a.mp4"},
			{Src: "http://host/a.webm", Type: "video/webm"},
		},
	}, log)
	require.NoError(t, err)
	assert.Equal(t, []source.Source{{Src: "http://host/a.webm", Type: "video/webm"}}, it.Sources)
	assert.Contains(t, buf.String(), "some invalid sources were disregarded")

	_, err = Validate(Raw{"sources": []source.Source{{Src: "http://host/a.mp4"}}}, log)
	assert.ErrorIs(t, err, ErrNoValidSources)
}

func TestValidate_NonStringPoster(t *testing.T) {
	log, buf := newTestLogger()

	it, err := Validate(Raw{
		"sources": []any{map[string]any{"src": "a.mp4", "type": "video/mp4"}},
		"poster":  12,
	}, log)
	require.NoError(t, err)
	assert.Equal(t, "", it.Poster)
	assert.Contains(t, buf.String(), "poster is not a string")
}

func TestItem_Clone(t *testing.T) {
	orig := &Item{
		Sources:    []source.Source{{Src: "a.mp4", Type: "video/mp4"}},
		Poster:     "a.jpg",
		TextTracks: []TextTrack{{Kind: "captions", Extra: map[string]any{"mode": "hidden"}}},
		Metadata:   map[string]any{"title": "A"},
	}

	c := orig.Clone()
	c.Sources[0].Src = "changed.mp4"
	c.TextTracks[0].Extra["mode"] = "showing"
	c.Metadata["title"] = "changed"

	assert.Equal(t, "a.mp4", orig.Sources[0].Src)
	assert.Equal(t, "hidden", orig.TextTracks[0].Extra["mode"])
	assert.Equal(t, "A", orig.Title())
}

func TestItem_Duration(t *testing.T) {
	tests := []struct {
		name     string
		value    any
		expected time.Duration
		ok       bool
	}{
		{name: "int seconds", value: 3, expected: 3 * time.Second, ok: true},
		{name: "float seconds", value: 1.5, expected: 1500 * time.Millisecond, ok: true},
		{name: "zero", value: 0, ok: false},
		{name: "string", value: "3", ok: false},
		{name: "missing", value: nil, ok: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			it := &Item{Metadata: map[string]any{}}
			if tt.value != nil {
				it.Metadata["duration"] = tt.value
			}
			d, ok := it.Duration()
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.expected, d)
		})
	}
}
