package domain

// StyleID identifies a connection style in the catalog
type StyleID string

const (
	StyleSingle   StyleID = "single"
	StyleDouble   StyleID = "double"
	StyleDotted   StyleID = "dotted"
	StyleThick    StyleID = "thick"
	StyleAnimated StyleID = "animated"
)

// DefaultStyle is the selection a new session starts with
const DefaultStyle = StyleSingle

// Marker names the SVG marker drawn at an edge end
type Marker string

const (
	MarkerNone        Marker = ""
	MarkerArrow       Marker = "arrow"
	MarkerArrowClosed Marker = "arrow-closed"
)

// ConnectionStyle describes how the canvas renders an edge
type ConnectionStyle struct {
	ID          StyleID `json:"id"`
	Label       string  `json:"label"`
	Description string  `json:"description"`
	Stroke      string  `json:"stroke"`
	StrokeWidth int     `json:"stroke_width"`
	DashArray   string  `json:"dash_array,omitempty"`
	MarkerStart Marker  `json:"marker_start,omitempty"`
	MarkerEnd   Marker  `json:"marker_end,omitempty"`
	Animated    bool    `json:"animated"`
}

var styleCatalog = [...]ConnectionStyle{
	{
		ID:          StyleSingle,
		Label:       "Arrow →",
		Description: "Simple directional connection",
		Stroke:      "#4CAF50",
		StrokeWidth: 2,
		MarkerEnd:   MarkerArrow,
	},
	{
		ID:          StyleDouble,
		Label:       "Double ↔",
		Description: "Bidirectional connection",
		Stroke:      "#2196F3",
		StrokeWidth: 2,
		MarkerStart: MarkerArrow,
		MarkerEnd:   MarkerArrow,
	},
	{
		ID:          StyleDotted,
		Label:       "Dotted ⋯→",
		Description: "Dotted line connection",
		Stroke:      "#9C27B0",
		StrokeWidth: 2,
		DashArray:   "5 5",
		MarkerEnd:   MarkerArrowClosed,
	},
	{
		ID:          StyleThick,
		Label:       "Thick ⇒",
		Description: "Bold connection",
		Stroke:      "#FF9800",
		StrokeWidth: 4,
		MarkerEnd:   MarkerArrowClosed,
	},
	{
		ID:          StyleAnimated,
		Label:       "Animated ⇢",
		Description: "Moving connection",
		Stroke:      "#F44336",
		StrokeWidth: 2,
		MarkerEnd:   MarkerArrow,
		Animated:    true,
	},
}

// Styles returns the catalog in display order
func Styles() []ConnectionStyle {
	out := make([]ConnectionStyle, len(styleCatalog))
	copy(out, styleCatalog[:])
	return out
}

// LookupStyle finds a catalog entry by ID
func LookupStyle(id StyleID) (ConnectionStyle, bool) {
	for _, s := range styleCatalog {
		if s.ID == id {
			return s, true
		}
	}
	return ConnectionStyle{}, false
}

// Valid reports whether id names a catalog entry
func (id StyleID) Valid() bool {
	_, ok := LookupStyle(id)
	return ok
}
