// Package playlistfile reads raw playlist items from YAML or JSON files.
//
// A file holds either a sequence of items or a mapping with an "items"
// sequence. Items are decoded untyped and validated by the playlist.
package playlistfile

import (
	"os"

	"github.com/cockroachdb/errors"
	"gopkg.in/yaml.v3"

	"github.com/osa030/playlistbox/internal/domain/item"
)

// ErrNotASequence is returned when the file holds no item sequence.
var ErrNotASequence = errors.New("playlist file must hold a sequence of items")

type document struct {
	Items []item.Raw `yaml:"items"`
}

// Load reads the raw items stored at path.
func Load(path string) ([]item.Raw, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read playlist file")
	}

	items, err := Parse(data)
	if err != nil {
		return nil, errors.Wrapf(err, "playlist file %s", path)
	}
	return items, nil
}

// Parse decodes raw items from YAML or JSON data. Entries that are not
// mappings come back as nil items so validation can reject them.
func Parse(data []byte) ([]item.Raw, error) {
	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return nil, errors.Wrap(err, "failed to parse playlist")
	}
	if len(root.Content) == 0 {
		return nil, ErrNotASequence
	}

	doc := root.Content[0]
	switch doc.Kind {
	case yaml.SequenceNode:
		return decodeItems(doc)
	case yaml.MappingNode:
		for i := 0; i+1 < len(doc.Content); i += 2 {
			if doc.Content[i].Value == "items" && doc.Content[i+1].Kind == yaml.SequenceNode {
				return decodeItems(doc.Content[i+1])
			}
		}
	}
	return nil, ErrNotASequence
}

func decodeItems(seq *yaml.Node) ([]item.Raw, error) {
	out := make([]item.Raw, 0, len(seq.Content))
	for i, n := range seq.Content {
		if n.Kind != yaml.MappingNode {
			out = append(out, nil)
			continue
		}
		var raw item.Raw
		if err := n.Decode(&raw); err != nil {
			return nil, errors.Wrapf(err, "item %d", i)
		}
		out = append(out, raw)
	}
	return out, nil
}
