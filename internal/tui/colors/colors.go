package colors

import "github.com/charmbracelet/lipgloss"

// === Color Palette ===
// Dark values follow Dracula; light values are picked for contrast on white.
var (
	Purple    = lipgloss.AdaptiveColor{Light: "#5d40c9", Dark: "#bd93f9"}
	Pink      = lipgloss.AdaptiveColor{Light: "#d10074", Dark: "#ff79c6"}
	Cyan      = lipgloss.AdaptiveColor{Light: "#0073a8", Dark: "#8be9fd"}
	Gray      = lipgloss.AdaptiveColor{Light: "#d0d0d0", Dark: "#44475a"} // Borders
	LightGray = lipgloss.AdaptiveColor{Light: "#4a4a4a", Dark: "#a9b1d6"} // Secondary text
	White     = lipgloss.AdaptiveColor{Light: "#1a1a1a", Dark: "#f8f8f2"}
)

// === Fetch State Colors ===
var (
	StateError    = lipgloss.AdaptiveColor{Light: "#d32f2f", Dark: "#ff5555"}
	StateIdle     = lipgloss.AdaptiveColor{Light: "#f57c00", Dark: "#ffb86c"}
	StateFetching = lipgloss.AdaptiveColor{Light: "#2e7d32", Dark: "#50fa7b"}
	StateDone     = lipgloss.AdaptiveColor{Light: "#7b1fa2", Dark: "#bd93f9"}
)

// === Progress Bar Colors ===
// Plain hex strings: bubbles/progress gradients take string colors.
const (
	ProgressStart = "#ff79c6"
	ProgressEnd   = "#bd93f9"
)
