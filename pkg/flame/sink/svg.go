package sink

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/matzehuels/sotflame/pkg/flame/layout"
	"github.com/matzehuels/sotflame/pkg/flame/palette"
)

const (
	defaultTitle       = "Flame Graph"
	defaultSearchColor = "rgb(230,0,230)"
)

// SVGOption configures RenderSVG.
type SVGOption func(*svgRenderer)

type svgRenderer struct {
	title       string
	searchColor string
}

// WithTitle sets the heading drawn above the graph.
func WithTitle(title string) SVGOption {
	return func(r *svgRenderer) {
		if title != "" {
			r.title = title
		}
	}
}

// WithSearchColor sets the fill used to highlight search matches.
func WithSearchColor(color string) SVGOption {
	return func(r *svgRenderer) {
		if color != "" {
			r.searchColor = color
		}
	}
}

func newSVGRenderer(opts ...SVGOption) svgRenderer {
	r := svgRenderer{title: defaultTitle, searchColor: defaultSearchColor}
	for _, opt := range opts {
		opt(&r)
	}
	return r
}

// RenderSVG renders a complete SVG 1.1 document: the fixed head with the
// interactive script, one fragment per frame in pre-order, then the
// closing tag.
func RenderSVG(l *layout.Layout, opts ...SVGOption) []byte {
	r := newSVGRenderer(opts...)

	parts := []string{renderHead(l, r)}
	parts = append(parts, Fragments(l)...)
	parts = append(parts, "</svg>\n")

	return []byte(strings.Join(parts, "\n"))
}

// Fragments renders every frame of l in pre-order. The returned slice is
// allocated per call.
func Fragments(l *layout.Layout) []string {
	frames := l.Frames()
	out := make([]string, 0, len(frames))
	for _, f := range frames {
		out = append(out, RenderFrame(f, l.Geometry))
	}
	return out
}

// Title returns the tooltip text of a frame: its name and duration.
func Title(f *layout.Frame) string {
	return fmt.Sprintf("%s (time cost: %s)", f.Event.Name, num(f.Event.Lasted))
}

// RenderFrame renders one self-contained group: hover and click handlers,
// the tooltip title, the colored rectangle and its label.
func RenderFrame(f *layout.Frame, geo layout.Geometry) string {
	title := Title(f)
	label := FitLabel(f.Event.Name, f.Width, geo.TextOffsetX)

	var buf bytes.Buffer
	fmt.Fprintf(&buf, `<g class="func_g" onmouseover="s('%s')" onmouseout="c()" onclick="zoom(this)">`+"\n", escapeJSAttr(title))
	fmt.Fprintf(&buf, "    <title>%s</title>\n", EscapeXML(title))
	fmt.Fprintf(&buf, `    <rect x="%s" y="%s" width="%s" height="%s" fill="%s" rx="2" ry="2" />`+"\n",
		num(f.X), num(f.Y), num(f.Width), num(f.Height), palette.RGB(f.Fill))
	fmt.Fprintf(&buf, `    <text text-anchor="" x="%s" y="%s" font-size="%s" font-family="Verdana" fill="rgb(0,0,0)">%s</text>`+"\n",
		num(f.TextX), num(f.TextY), num(fontSize), EscapeXML(label))
	buf.WriteString("</g>")
	return buf.String()
}

func renderHead(l *layout.Layout, r svgRenderer) string {
	geo := l.Geometry
	width, height := num(l.Width), num(l.Height)
	side := num(geo.SideMargin)
	right := num(l.Width - geo.SideMargin - 100)
	top := num(geo.TopMargin - 10)
	bottom := num(l.Height - geo.BottomMargin + 15)

	var buf bytes.Buffer
	buf.WriteString(`<?xml version="1.0" standalone="no"?>` + "\n")
	buf.WriteString(`<!DOCTYPE svg PUBLIC "-//W3C//DTD SVG 1.1//EN" "http://www.w3.org/Graphics/SVG/1.1/DTD/svg11.dtd">` + "\n")
	fmt.Fprintf(&buf, `<svg version="1.1" width="%s" height="%s" onload="init(evt)" viewBox="0 0 %s %s" xmlns="http://www.w3.org/2000/svg" xmlns:xlink="http://www.w3.org/1999/xlink">`+"\n",
		width, height, width, height)
	buf.WriteString(backgroundDefs)
	fmt.Fprintf(&buf, "<style type=\"text/css\">%s\n</style>\n", frameCSS)
	fmt.Fprintf(&buf, "<script type=\"text/ecmascript\">\n<![CDATA[\n    var xpad = %s, xtext = %s, searchfill = \"%s\";\n%s]]>\n</script>\n",
		side, num(geo.TextOffsetX), escapeJS(r.searchColor), interactionJS)

	fmt.Fprintf(&buf, `<rect x="0.0" y="0" width="%s" height="%s" fill="url(#background)" />`+"\n", width, height)
	fmt.Fprintf(&buf, `<text text-anchor="middle" x="%s" y="24" font-size="17" font-family="Verdana" fill="rgb(0,0,0)">%s</text>`+"\n",
		num(l.Width/2), EscapeXML(r.title))
	fmt.Fprintf(&buf, `<text text-anchor="" x="%s" y="%s" font-size="12" font-family="Verdana" fill="rgb(0,0,0)" id="details"> </text>`+"\n",
		side, bottom)
	fmt.Fprintf(&buf, `<text text-anchor="" x="%s" y="%s" font-size="12" font-family="Verdana" fill="rgb(0,0,0)" id="unzoom" onclick="unzoom()" style="opacity:0.0;cursor:pointer">Reset Zoom</text>`+"\n",
		side, top)
	fmt.Fprintf(&buf, `<text text-anchor="" x="%s" y="%s" font-size="12" font-family="Verdana" fill="rgb(0,0,0)" id="search" onmouseover="searchover()" onmouseout="searchout()" onclick="search_prompt()" style="opacity:0.1;cursor:pointer">Search</text>`+"\n",
		right, top)
	fmt.Fprintf(&buf, `<text text-anchor="" x="%s" y="%s" font-size="12" font-family="Verdana" fill="rgb(0,0,0)" id="matched"> </text>`,
		right, bottom)
	return buf.String()
}
