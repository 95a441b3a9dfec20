package sandbox

import (
	"strings"
)

// Query returns elements matching a simple selector: #id, .class or tag
func (p *Page) Query(selector string) []Element {
	if p == nil {
		return nil
	}
	selector = strings.TrimSpace(selector)

	var matches []Element
	for _, elem := range p.Elements {
		if elem.matches(selector) {
			matches = append(matches, elem)
		}
	}
	return matches
}

func (e Element) matches(selector string) bool {
	switch {
	case strings.HasPrefix(selector, "#"):
		return e.ID != "" && e.ID == selector[1:]
	case strings.HasPrefix(selector, "."):
		class := selector[1:]
		for _, c := range strings.Fields(e.ClassName) {
			if c == class {
				return true
			}
		}
		return false
	default:
		return selector != "" && strings.EqualFold(e.TagName, selector)
	}
}

// GetAttribute returns an attribute value or "" when absent
func (e Element) GetAttribute(name string) string {
	return e.Attributes[name]
}
