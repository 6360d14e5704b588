// Package layout computes flame graph geometry from an event tree.
//
// # Horizontal Placement
//
// The root occupies the band [SideMargin, Width-SideMargin]. Every child is
// placed inside its parent's band in proportion to time:
//
//	scale       = parent.Width / parent.Lasted
//	child.Width = child.Lasted * scale
//	child.X     = parent.X + (child.StartTime - parent.StartTime) * scale
//
// so a frame's band always nests within its parent's band when the child's
// interval lies within the parent's interval. Overlapping or escaping
// intervals are drawn as given; they are not validated.
//
// A parent whose Lasted is zero or negative has no usable scale. Its
// children are collapsed to zero width at the parent's left edge and
// counted in [Layout.Degenerate], so no infinities reach the output. An
// event with a negative Lasted is drawn with zero width and counted too.
//
// # Vertical Placement
//
// Rows are inverted: the root is drawn on the bottom row and leaves rise
// upward. A frame's drawn level is Depth - 1 - Level, and its top edge is
// DrawnLevel * (BoxHeight + RowSpacing) + TopMargin.
//
// # Colors
//
// Each frame takes one color from the configured [palette.Palette], drawn
// in pre-order. Pass a seeded or fixed palette for reproducible output.
//
// [palette.Palette]: github.com/matzehuels/sotflame/pkg/flame/palette.Palette
package layout
