package trace

import "sort"

// Summary describes the shape of a trace.
type Summary struct {
	Events int
	Leaves int
	Depth  int
	Span   float64 // root duration after the start adjustment

	// Degenerate counts events for which Event.Degenerate is true.
	Degenerate int
}

// Summarize walks t once and collects its Summary.
func Summarize(t *Tree) Summary {
	s := Summary{Events: t.Count, Depth: t.Depth, Span: t.Root.Lasted}
	t.Walk(func(e *Event) bool {
		if e.IsLeaf() {
			s.Leaves++
		}
		if e.Degenerate() {
			s.Degenerate++
		}
		return true
	})
	return s
}

// SelfTime returns the part of e's duration not covered by its sub-events.
// It is never negative.
func SelfTime(e *Event) float64 {
	self := e.Lasted
	for _, c := range e.Children {
		self -= c.Lasted
	}
	return max(self, 0)
}

// Hottest returns up to n events ordered by self time, longest first. Ties
// keep pre-order. n <= 0 returns every event.
func Hottest(t *Tree, n int) []*Event {
	events := make([]*Event, 0, t.Count)
	t.Walk(func(e *Event) bool {
		events = append(events, e)
		return true
	})
	sort.SliceStable(events, func(i, j int) bool {
		return SelfTime(events[i]) > SelfTime(events[j])
	})
	if n > 0 && n < len(events) {
		events = events[:n]
	}
	return events
}
