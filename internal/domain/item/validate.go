package item

import (
	"github.com/cockroachdb/errors"
	"github.com/mitchellh/mapstructure"
	"github.com/rs/zerolog"

	"github.com/osa030/playlistbox/internal/domain/source"
)

// Errors
var (
	ErrInvalidShape   = errors.New("must be an object with a sources array")
	ErrNoValidSources = errors.New("no valid sources found")
)

// Validate normalizes raw into an Item.
// Rejections are logged at error level and returned; no item is produced.
// Disregarded sources or text tracks are logged at warn level.
func Validate(raw Raw, log zerolog.Logger) (*Item, error) {
	if raw == nil {
		log.Error().Msgf("item: %v", ErrInvalidShape)
		return nil, ErrInvalidShape
	}

	entries, ok := sourceEntries(raw[KeySources])
	if !ok {
		log.Error().Msgf("item: %v", ErrInvalidShape)
		return nil, ErrInvalidShape
	}

	sources := make([]source.Source, 0, len(entries))
	for _, e := range entries {
		if s, ok := toSource(e); ok {
			sources = append(sources, s)
		}
	}
	if len(sources) < len(entries) {
		log.Warn().Msgf("item: some invalid sources were disregarded: valid=%d total=%d", len(sources), len(entries))
	}
	if len(sources) == 0 {
		log.Error().Msgf("item: %v", ErrNoValidSources)
		return nil, ErrNoValidSources
	}

	it := &Item{
		Sources:    sources,
		Poster:     "",
		TextTracks: []TextTrack{},
		Metadata:   make(map[string]any, len(raw)),
	}

	if v, present := raw[KeyPoster]; present && v != nil {
		if poster, ok := v.(string); ok {
			it.Poster = poster
		} else {
			log.Warn().Msgf("item: poster is not a string and was disregarded: %T", v)
		}
	}

	if v, present := raw[KeyTextTracks]; present && v != nil {
		it.TextTracks = decodeTextTracks(v, log)
	}

	for k, v := range raw {
		switch k {
		case KeySources, KeyPoster, KeyTextTracks:
			continue
		}
		it.Metadata[k] = v
	}

	return it, nil
}

// sourceEntries returns the elements of an array-like sources field.
func sourceEntries(v any) ([]any, bool) {
	if s, ok := v.([]source.Source); ok {
		out := make([]any, len(s))
		for i, src := range s {
			out[i] = src
		}
		return out, true
	}
	return arrayEntries(v)
}

// arrayEntries returns the elements of an untyped array of objects.
func arrayEntries(v any) ([]any, bool) {
	switch s := v.(type) {
	case []any:
		return s, true
	case []map[string]any:
		out := make([]any, len(s))
		for i, m := range s {
			out[i] = m
		}
		return out, true
	case []Raw:
		out := make([]any, len(s))
		for i, m := range s {
			out[i] = m
		}
		return out, true
	default:
		return nil, false
	}
}

// toSource accepts an object with string src and string type.
func toSource(v any) (source.Source, bool) {
	switch e := v.(type) {
	case source.Source:
		return e, e.Src != "" && e.Type != ""
	case map[string]any:
		return sourceFromMap(e)
	case Raw:
		return sourceFromMap(e)
	default:
		return source.Source{}, false
	}
}

func sourceFromMap(m map[string]any) (source.Source, bool) {
	src, ok := m["src"].(string)
	if !ok {
		return source.Source{}, false
	}
	typ, ok := m["type"].(string)
	if !ok {
		return source.Source{}, false
	}
	return source.Source{Src: src, Type: typ}, true
}

func decodeTextTracks(v any, log zerolog.Logger) []TextTrack {
	if typed, ok := v.([]TextTrack); ok {
		out := make([]TextTrack, len(typed))
		copy(out, typed)
		return out
	}

	list, ok := arrayEntries(v)
	if !ok {
		log.Warn().Msgf("item: textTracks is not an array and was disregarded: %T", v)
		return []TextTrack{}
	}

	tracks := make([]TextTrack, 0, len(list))
	for i, e := range list {
		var tt TextTrack
		if err := decodeTextTrack(e, &tt); err != nil {
			log.Warn().Msgf("item: invalid text track disregarded: index=%d err=%v", i, err)
			continue
		}
		tracks = append(tracks, tt)
	}
	return tracks
}

func decodeTextTrack(v any, out *TextTrack) error {
	switch v.(type) {
	case map[string]any, Raw:
	default:
		return errors.Newf("unexpected text track type %T", v)
	}
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:  out,
		TagName: "mapstructure",
	})
	if err != nil {
		return errors.Wrap(err, "failed to create decoder")
	}
	if err := dec.Decode(v); err != nil {
		return errors.Wrap(err, "failed to decode text track")
	}
	return nil
}
