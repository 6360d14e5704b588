package layout

import (
	"github.com/lucasb-eyer/go-colorful"

	"github.com/matzehuels/sotflame/pkg/flame/palette"
	"github.com/matzehuels/sotflame/pkg/trace"
)

// Geometry holds the fixed dimensions of a flame graph, in SVG user units.
type Geometry struct {
	Width        float64 // total document width
	SideMargin   float64 // gap left and right of the root band
	TopMargin    float64 // space above the top row (title, controls)
	BottomMargin float64 // space below the bottom row (details line)
	BoxHeight    float64 // height of one frame
	RowSpacing   float64 // vertical gap between rows
	TextOffsetX  float64 // label offset from the frame's left edge
	TextOffsetY  float64 // label baseline offset from the frame's top edge
}

// DefaultGeometry returns the classic 1200-wide flame graph dimensions.
func DefaultGeometry() Geometry {
	return Geometry{
		Width:        1200,
		SideMargin:   10,
		TopMargin:    35,
		BottomMargin: 30,
		BoxHeight:    15,
		RowSpacing:   0.4,
		TextOffsetX:  3,
		TextOffsetY:  10,
	}
}

// RowPitch is the vertical distance between the tops of adjacent rows.
func (g Geometry) RowPitch() float64 { return g.BoxHeight + g.RowSpacing }

// Frame is the drawn rectangle of one event.
type Frame struct {
	Event      *trace.Event
	Level      int // depth in the trace, 0 for the root
	DrawnLevel int // row index from the top; the root sits on the last row
	X, Width   float64
	Y, Height  float64
	TextX      float64
	TextY      float64
	Fill       colorful.Color
	Children   []*Frame
}

// Right returns the frame's right edge.
func (f *Frame) Right() float64 { return f.X + f.Width }

// Layout is a fully placed flame graph.
type Layout struct {
	Root     *Frame
	Depth    int
	Width    float64
	Height   float64
	Geometry Geometry

	// Degenerate counts events that cannot be drawn to scale (see
	// trace.Event.Degenerate). Children of a parent without a positive
	// duration collapse to zero width at the parent's left edge, and a
	// negative duration is drawn with zero width.
	Degenerate int
}

// Option configures Build.
type Option func(*builder)

// WithGeometry replaces the default dimensions.
func WithGeometry(g Geometry) Option {
	return func(b *builder) { b.geo = g }
}

// WithPalette sets the color source. The default is an unseeded hot palette.
func WithPalette(p palette.Palette) Option {
	return func(b *builder) { b.palette = p }
}

type builder struct {
	geo        Geometry
	palette    palette.Palette
	degenerate int
}

// Build places every event of t. The horizontal pass runs top-down from
// the root band; the vertical pass runs afterwards because every row
// depends on the tree's total depth.
func Build(t *trace.Tree, opts ...Option) *Layout {
	b := &builder{geo: DefaultGeometry()}
	for _, opt := range opts {
		opt(b)
	}
	if b.palette == nil {
		b.palette = palette.NewRandomHot()
	}

	root := b.frame(t.Root, 0, b.geo.SideMargin, b.geo.Width-2*b.geo.SideMargin)
	b.placeChildren(root)
	b.placeRows(root, t.Depth)

	return &Layout{
		Root:       root,
		Depth:      t.Depth,
		Width:      b.geo.Width,
		Height:     b.geo.TopMargin + b.geo.BottomMargin + float64(t.Depth)*b.geo.RowPitch(),
		Geometry:   b.geo,
		Degenerate: b.degenerate,
	}
}

func (b *builder) frame(e *trace.Event, level int, x, width float64) *Frame {
	return &Frame{
		Event:  e,
		Level:  level,
		X:      x,
		Width:  width,
		Height: b.geo.BoxHeight,
		TextX:  x + b.geo.TextOffsetX,
		Fill:   b.palette.Color(e.Name),
	}
}

// placeChildren maps each child's time span onto the parent's band at the
// parent's pixels-per-time-unit scale.
func (b *builder) placeChildren(f *Frame) {
	e := f.Event
	if e.Degenerate() {
		b.degenerate++
	}
	if len(e.Children) == 0 {
		return
	}

	var scale float64
	if e.Lasted > 0 {
		scale = f.Width / e.Lasted
	}

	f.Children = make([]*Frame, 0, len(e.Children))
	for _, c := range e.Children {
		x := f.X + (c.StartTime-e.StartTime)*scale
		child := b.frame(c, f.Level+1, x, max(c.Lasted*scale, 0))
		f.Children = append(f.Children, child)
		b.placeChildren(child)
	}
}

// placeRows flips depth so the root is drawn at the bottom and the deepest
// leaves on the top row.
func (b *builder) placeRows(f *Frame, depth int) {
	f.DrawnLevel = depth - 1 - f.Level
	f.Y = float64(f.DrawnLevel)*b.geo.RowPitch() + b.geo.TopMargin
	f.TextY = f.Y + b.geo.TextOffsetY
	for _, c := range f.Children {
		b.placeRows(c, depth)
	}
}

// Frames returns every frame in pre-order: each frame before its children,
// siblings in input order. The slice is freshly allocated on every call.
func (l *Layout) Frames() []*Frame {
	frames := make([]*Frame, 0, 64)
	var visit func(f *Frame)
	visit = func(f *Frame) {
		frames = append(frames, f)
		for _, c := range f.Children {
			visit(c)
		}
	}
	visit(l.Root)
	return frames
}
