package trace

// Event is one timed span of a trace.
type Event struct {
	Name      string
	StartTime float64
	EndTime   float64
	Lasted    float64 // supplied by the input, normally EndTime - StartTime
	Level     int     // depth in the tree, 0 for the root
	Children  []*Event
}

// IsLeaf reports whether the event has no sub-events.
func (e *Event) IsLeaf() bool { return len(e.Children) == 0 }

// Degenerate reports whether e cannot be drawn to scale: its duration is
// negative, or it has sub-events but no positive duration to divide.
func (e *Event) Degenerate() bool {
	return e.Lasted < 0 || (len(e.Children) > 0 && e.Lasted <= 0)
}

// Tree is a decoded trace together with its shape.
type Tree struct {
	Root  *Event
	Depth int // length of the longest root-to-leaf path, 1 for a lone root
	Count int // total number of events
}

// NewTree finalizes an event tree: it assigns levels from the root down,
// applies the root start adjustment and computes depth and event count.
// The root is modified in place.
func NewTree(root *Event) *Tree {
	if len(root.Children) > 0 {
		root.StartTime = root.Children[0].StartTime
		root.Lasted = root.EndTime - root.StartTime
	}
	depth, count := measure(root, 0)
	return &Tree{Root: root, Depth: depth, Count: count}
}

func measure(e *Event, level int) (depth, count int) {
	e.Level = level
	count = 1
	for _, c := range e.Children {
		d, n := measure(c, level+1)
		depth = max(depth, d)
		count += n
	}
	return depth + 1, count
}

// Walk visits every event in pre-order, parents before their children and
// children in input order. Returning false from fn skips the event's subtree.
func (t *Tree) Walk(fn func(e *Event) bool) {
	walk(t.Root, fn)
}

func walk(e *Event, fn func(e *Event) bool) {
	if !fn(e) {
		return
	}
	for _, c := range e.Children {
		walk(c, fn)
	}
}

// Depth returns the length of the longest path from e to a leaf, counting e.
func Depth(e *Event) int {
	d := 0
	for _, c := range e.Children {
		d = max(d, Depth(c))
	}
	return d + 1
}
