package source

// Query is a normalized lookup request: an ordered list of candidate locators.
// Use one of the constructors; the zero Query matches nothing.
type Query struct {
	locators []string
}

// ByLocator builds a query for a single locator.
func ByLocator(locator string) Query {
	return ByLocators(locator)
}

// ByLocators builds a query trying each locator in order.
func ByLocators(locators ...string) Query {
	q := Query{locators: make([]string, 0, len(locators))}
	for _, l := range locators {
		if l != "" {
			q.locators = append(q.locators, l)
		}
	}
	return q
}

// BySources builds a query from source descriptors.
func BySources(sources ...Source) Query {
	locators := make([]string, len(sources))
	for i, s := range sources {
		locators[i] = s.Src
	}
	return ByLocators(locators...)
}

// ByCarrier builds a query from an item-shaped value.
func ByCarrier(c Carrier) Query {
	if c == nil {
		return Query{}
	}
	return BySources(c.MediaSources()...)
}

// Locators returns a copy of the candidate locators.
func (q Query) Locators() []string {
	out := make([]string, len(q.locators))
	copy(out, q.locators)
	return out
}

// Empty reports whether the query has no usable candidates.
func (q Query) Empty() bool {
	return len(q.locators) == 0
}
