package protocol

// Validation limit constants
const (
	MaxTextLength  = 1000
	MaxColorLength = 50
	MaxCoordinate  = 1000000
	MinCoordinate  = -1000000
	MaxLineWidth   = 1000
	MaxFontSize    = 500
)

// Drawing tools accepted over the wire. "clear" carries no data.
const (
	ToolDot         = "dot"
	ToolSegment     = "segment"
	ToolShapeLine   = "shape-line"
	ToolShapeRect   = "shape-rect"
	ToolShapeCircle = "shape-circle"
	ToolText        = "text"
	ToolClear       = "clear"
)

var AllowedTools = map[string]bool{
	ToolDot:         true,
	ToolSegment:     true,
	ToolShapeLine:   true,
	ToolShapeRect:   true,
	ToolShapeCircle: true,
	ToolText:        true,
	ToolClear:       true,
}

func schemaForTool(tool string) interface{} {
	switch tool {
	case ToolDot:
		return &DotData{}
	case ToolSegment:
		return &SegmentData{}
	case ToolShapeLine:
		return &ShapeLineData{}
	case ToolShapeRect:
		return &ShapeRectData{}
	case ToolShapeCircle:
		return &ShapeCircleData{}
	case ToolText:
		return &TextData{}
	default:
		return nil
	}
}

// =============================================================================
// Common Embedded Structs
// =============================================================================

// x,y coordinates for positioning on the canvas
type Position struct {
	X float64 `json:"x" validate:"min=-1000000,max=1000000"`
	Y float64 `json:"y" validate:"min=-1000000,max=1000000"`
}

// start and end points for stroke-based tools
type LineCoordinates struct {
	X1 float64 `json:"x1" validate:"min=-1000000,max=1000000"`
	Y1 float64 `json:"y1" validate:"min=-1000000,max=1000000"`
	X2 float64 `json:"x2" validate:"min=-1000000,max=1000000"`
	Y2 float64 `json:"y2" validate:"min=-1000000,max=1000000"`
}

// common styling properties
type StyleProps struct {
	Color     string  `json:"color,omitempty" validate:"omitempty,max=50"`
	LineWidth float64 `json:"lineWidth,omitempty" validate:"omitempty,min=0,max=1000"`
	Opacity   float64 `json:"opacity,omitempty" validate:"omitempty,min=0,max=1"`
}

// =============================================================================
// Tool Schemas
// =============================================================================

// DotData is a single click with the pencil tool.
type DotData struct {
	Position
	StyleProps
}

// SegmentData is one incremental pencil/eraser stroke segment.
type SegmentData struct {
	LineCoordinates
	StyleProps
	Eraser bool `json:"eraser,omitempty"`
}

type ShapeLineData struct {
	LineCoordinates
	StyleProps
}

type ShapeRectData struct {
	Position
	Width  float64 `json:"width" validate:"min=-1000000,max=1000000"`
	Height float64 `json:"height" validate:"min=-1000000,max=1000000"`
	StyleProps
}

type ShapeCircleData struct {
	CX     float64 `json:"cx" validate:"min=-1000000,max=1000000"`
	CY     float64 `json:"cy" validate:"min=-1000000,max=1000000"`
	Radius float64 `json:"radius" validate:"min=0,max=1000000"`
	StyleProps
}

type TextData struct {
	Position
	Text       string  `json:"text" validate:"required,max=1000"`
	FontSize   float64 `json:"fontSize,omitempty" validate:"omitempty,min=1,max=500"`
	FontFamily string  `json:"fontFamily,omitempty" validate:"omitempty,max=100"`
	Color      string  `json:"color,omitempty" validate:"omitempty,max=50"`
}
