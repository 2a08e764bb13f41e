// Package theme defines the dashboard colour scheme and how it is persisted.
package theme

// Mode is the persisted colour scheme of a dashboard client.
type Mode string

const (
	Light Mode = "light"
	Dark  Mode = "dark"
)

// StorageKey is the preference key the mode is persisted under.
const StorageKey = "theme"

// DarkClass is the root class that enables dark styling.
const DarkClass = "dark-mode"

// Parse maps a stored value to a Mode. Anything other than "dark" is light,
// so an empty or corrupted preference falls back to the default scheme.
func Parse(s string) Mode {
	if Mode(s) == Dark {
		return Dark
	}
	return Light
}

// Toggle returns the opposite mode.
func (m Mode) Toggle() Mode {
	if m == Dark {
		return Light
	}
	return Dark
}

// IsDark reports whether m is the dark scheme.
func (m Mode) IsDark() bool { return m == Dark }

// TextColor is the axis and legend colour that contrasts with the
// background of m.
func (m Mode) TextColor() string {
	if m == Dark {
		return "#ffffff"
	}
	return "#000000"
}

// BackgroundColor is the chart canvas colour for m.
func (m Mode) BackgroundColor() string {
	if m == Dark {
		return "#1e1e2e"
	}
	return "#ffffff"
}

// GridColor is a muted stroke used for axis lines.
func (m Mode) GridColor() string {
	if m == Dark {
		return "#6c6f85"
	}
	return "#b0b0b0"
}

func (m Mode) String() string { return string(m) }
