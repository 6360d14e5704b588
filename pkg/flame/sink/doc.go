// Package sink serializes a placed flame graph into a standalone SVG
// document.
//
// The document has three parts: a fixed head (XML prolog, background
// gradient, hover style, the interactive script and the control texts),
// one <g class="func_g"> group per frame in pre-order, and the closing
// tag. The script needs no network access. It shows a frame's title on
// hover, zooms into a frame on click, restores the view with "Reset Zoom",
// and highlights frames whose name matches a regular expression (Ctrl-F or
// F3) while reporting the matched share of the root width.
//
// Labels are fitted to their frame when rendering so the static document
// already reads correctly before any script runs; the script re-fits them
// after zooming.
package sink
