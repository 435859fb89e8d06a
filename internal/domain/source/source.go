// Package source provides media source descriptors and the matching rules
// used to map a player's current source back to a playlist entry.
package source

import "strings"

const protocolRelativePrefix = "//"

// Source represents one playable variant of an item.
type Source struct {
	Src  string `mapstructure:"src" yaml:"src"`   // Locator (URL)
	Type string `mapstructure:"type" yaml:"type"` // MIME type, empty if unknown
}

// Carrier is anything that carries an ordered list of sources.
type Carrier interface {
	MediaSources() []Source
}

// EqualLocator reports whether two locators denote the same resource.
// A protocol-relative locator ("//host/path") matches any absolute locator
// with the same remainder, so "http://host/a.mp4" equals "//host/a.mp4".
func EqualLocator(a, b string) bool {
	aRel := strings.HasPrefix(a, protocolRelativePrefix)
	bRel := strings.HasPrefix(b, protocolRelativePrefix)

	switch {
	case aRel && !bRel:
		b = stripScheme(b)
	case bRel && !aRel:
		a = stripScheme(a)
	}
	return a == b
}

// Equal reports whether two sources share the same locator.
// Types are ignored.
func Equal(a, b Source) bool {
	return EqualLocator(a.Src, b.Src)
}

// stripScheme drops everything before the first "//".
func stripScheme(locator string) string {
	if i := strings.Index(locator, protocolRelativePrefix); i >= 0 {
		return locator[i:]
	}
	return locator
}

// IndexOfSource returns the index of the first item with a source equal to s,
// or -1. A source without a locator never matches.
func IndexOfSource[T Carrier](items []T, s Source) int {
	if s.Src == "" {
		return -1
	}
	for i, it := range items {
		for _, candidate := range it.MediaSources() {
			if candidate.Src == "" {
				continue
			}
			if Equal(candidate, s) {
				return i
			}
		}
	}
	return -1
}

// IndexOfItem returns the index of the first item matching any locator of q.
// Locators are tried in order and the first hit wins.
func IndexOfItem[T Carrier](items []T, q Query) int {
	for _, locator := range q.locators {
		if i := IndexOfSource(items, Source{Src: locator}); i >= 0 {
			return i
		}
	}
	return -1
}
