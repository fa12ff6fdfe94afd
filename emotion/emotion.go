// Package emotion defines the ten-level emotional intensity scale used across
// the pipeline, from extreme negative to extreme positive. Levels are ordinal:
// a lower value always means a more negative emotion.
package emotion

// Level is one step on the emotional intensity scale.
type Level int

const (
	VeryUpset Level = iota // extreme negative
	Upset
	Frustrated
	Uncomfortable
	Neutral
	Comfortable
	Content
	Happy
	VeryHappy
	Ecstatic // extreme positive
)

// Count is the number of levels on the scale.
const Count = 10

var labels = [Count]string{
	"Very Upset",
	"Upset",
	"Frustrated",
	"Uncomfortable",
	"Neutral",
	"Comfortable",
	"Content",
	"Happy",
	"Very Happy",
	"Ecstatic",
}

// Display colors, one per level. These are fixed: downstream visualizations
// key their legends off these exact hex values.
var colors = [Count]string{
	"#FF0000", // Very Upset
	"#FF4500", // Upset
	"#FF8C00", // Frustrated
	"#FFA500", // Uncomfortable
	"#D3D3D3", // Neutral
	"#90EE90", // Comfortable
	"#00FA9A", // Content
	"#00CED1", // Happy
	"#1E90FF", // Very Happy
	"#FF69B4", // Ecstatic
}

// Valid reports whether l is a level on the scale.
func (l Level) Valid() bool {
	return l >= 0 && l < Count
}

// Label returns the human-readable name of the level.
func (l Level) Label() string {
	if !l.Valid() {
		return "Unknown"
	}
	return labels[l]
}

// Color returns the fixed display color of the level.
func (l Level) Color() string {
	if !l.Valid() {
		return "#000000"
	}
	return colors[l]
}

func (l Level) String() string {
	return l.Label()
}

// Levels returns all levels in ascending intensity order.
func Levels() []Level {
	out := make([]Level, Count)
	for i := range out {
		out[i] = Level(i)
	}
	return out
}

// FromLabel resolves a display label back to its level.
func FromLabel(label string) (Level, bool) {
	for i, name := range labels {
		if name == label {
			return Level(i), true
		}
	}
	return 0, false
}
