package tile

import (
	"fmt"
	"strings"
)

// Mode selects which part of a tile's identity counts for matching.
type Mode int

const (
	ByLevel Mode = iota
	ByElement
	ByElementAndLevel
)

func (m Mode) String() string {
	switch m {
	case ByLevel:
		return "level"
	case ByElement:
		return "element"
	case ByElementAndLevel:
		return "element_level"
	default:
		return fmt.Sprintf("mode(%d)", int(m))
	}
}

// HasLevel reports whether tiles carry a level under this mode.
func (m Mode) HasLevel() bool { return m == ByLevel || m == ByElementAndLevel }

// HasElement reports whether tiles carry an element under this mode.
func (m Mode) HasElement() bool { return m == ByElement || m == ByElementAndLevel }

// ParseMode accepts the names used in profile files.
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "level", "by_level":
		return ByLevel, nil
	case "element", "by_element":
		return ByElement, nil
	case "element_level", "by_element_and_level", "both":
		return ByElementAndLevel, nil
	}
	return 0, fmt.Errorf("unknown match mode %q", s)
}

// Element is one of a small closed set of tile elements.
type Element string

const (
	Air   Element = "air"
	Life  Element = "life"
	Stone Element = "stone"
	Fire  Element = "fire"
	Water Element = "water"
)

// Elements lists every known element in a fixed order.
func Elements() []Element {
	return []Element{Air, Life, Stone, Fire, Water}
}

func ParseElement(s string) (Element, error) {
	e := Element(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Elements() {
		if e == known {
			return e, nil
		}
	}
	return "", fmt.Errorf("unknown element %q", s)
}

// Kind is the matching-relevant identity of a tile. Fields the active mode
// does not carry are left zero.
type Kind struct {
	Element Element `json:"element,omitempty"`
	Level   int     `json:"level,omitempty"`
}

func (k Kind) String() string {
	switch {
	case k.Element != "" && k.Level > 0:
		return fmt.Sprintf("%s:%d", k.Element, k.Level)
	case k.Element != "":
		return string(k.Element)
	default:
		return fmt.Sprintf("L%d", k.Level)
	}
}

// Match reports whether a and b are equal under m.
func (m Mode) Match(a, b Kind) bool {
	switch m {
	case ByLevel:
		return a.Level == b.Level
	case ByElement:
		return a.Element == b.Element
	default:
		return a.Element == b.Element && a.Level == b.Level
	}
}

// Normalize drops the fields m does not carry.
func (m Mode) Normalize(k Kind) Kind {
	if !m.HasLevel() {
		k.Level = 0
	}
	if !m.HasElement() {
		k.Element = ""
	}
	return k
}
