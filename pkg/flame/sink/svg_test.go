package sink

import (
	"fmt"
	"strings"
	"testing"

	"github.com/matzehuels/sotflame/pkg/flame/layout"
	"github.com/matzehuels/sotflame/pkg/flame/palette"
	"github.com/matzehuels/sotflame/pkg/trace"
)

func ev(name string, start, end float64, children ...*trace.Event) *trace.Event {
	return &trace.Event{Name: name, StartTime: start, EndTime: end, Lasted: end - start, Children: children}
}

func place(root *trace.Event) *layout.Layout {
	return layout.Build(trace.NewTree(root), layout.WithPalette(palette.Hash{Seed: 1}))
}

func TestRenderSVGRoundTrip(t *testing.T) {
	l := place(ev("root", 0, 10, ev("a", 0, 4), ev("b", 4, 10)))
	svg := string(RenderSVG(l))

	if !strings.HasPrefix(svg, `<?xml version="1.0" standalone="no"?>`) {
		t.Errorf("missing XML prolog: %q", svg[:40])
	}
	if !strings.HasSuffix(svg, "</svg>\n") {
		t.Error("document should end with </svg> and a newline")
	}
	if n := strings.Count(svg, `<g class="func_g"`); n != 3 {
		t.Errorf("frame groups = %d, want 3", n)
	}
	if n := strings.Count(svg, "</g>"); n != 3 {
		t.Errorf("closing groups = %d, want 3", n)
	}

	head := fmt.Sprintf(`width="%s" height="%s"`, num(l.Width), num(l.Height))
	if !strings.Contains(svg, head) {
		t.Errorf("svg element missing %s", head)
	}

	iRoot := strings.Index(svg, "<title>root (time cost: 10)</title>")
	iA := strings.Index(svg, "<title>a (time cost: 4)</title>")
	iB := strings.Index(svg, "<title>b (time cost: 6)</title>")
	if iRoot < 0 || iA < 0 || iB < 0 {
		t.Fatalf("missing titles: root=%d a=%d b=%d", iRoot, iA, iB)
	}
	if !(iRoot < iA && iA < iB) {
		t.Errorf("frames not in pre-order: root=%d a=%d b=%d", iRoot, iA, iB)
	}
}

func TestRenderSVGSingleRoot(t *testing.T) {
	svg := string(RenderSVG(place(ev("main", 0, 1))))
	if n := strings.Count(svg, `<g class="func_g"`); n != 1 {
		t.Errorf("frame groups = %d, want 1", n)
	}
}

func TestRenderSVGHeadControls(t *testing.T) {
	svg := string(RenderSVG(place(ev("main", 0, 1))))

	for _, want := range []string{
		`onload="init(evt)"`,
		`id="background"`,
		`.func_g:hover`,
		`var xpad = 10, xtext = 3, searchfill = "rgb(230,0,230)";`,
		`id="details"`,
		`id="unzoom"`,
		`id="search"`,
		`id="matched"`,
		`>Flame Graph</text>`,
		`function zoom(node)`,
		`function search(term)`,
	} {
		if !strings.Contains(svg, want) {
			t.Errorf("document missing %q", want)
		}
	}
}

func TestRenderSVGOptions(t *testing.T) {
	l := place(ev("main", 0, 1))
	svg := string(RenderSVG(l, WithTitle("Checkout <p99>"), WithSearchColor("rgb(0,128,255)")))

	if !strings.Contains(svg, ">Checkout &lt;p99&gt;</text>") {
		t.Error("custom title not rendered or not escaped")
	}
	if !strings.Contains(svg, `searchfill = "rgb(0,128,255)"`) {
		t.Error("custom search color not rendered")
	}

	def := string(RenderSVG(l, WithTitle(""), WithSearchColor("")))
	if !strings.Contains(def, ">Flame Graph</text>") {
		t.Error("empty title should keep the default")
	}
}

func TestRenderSVGScriptUsesLabelOffset(t *testing.T) {
	geo := layout.DefaultGeometry()
	geo.TextOffsetX = 7
	l := layout.Build(trace.NewTree(ev("main", 0, 1)), layout.WithGeometry(geo), layout.WithPalette(palette.Hash{}))
	svg := string(RenderSVG(l))

	if !strings.Contains(svg, "var xpad = 10, xtext = 7,") {
		t.Error("script should declare the configured label offset")
	}
	if strings.Contains(svg, "+ 3;") || strings.Contains(svg, ".value) - 3;") {
		t.Error("script should not hard-code the label offset")
	}
	if !strings.Contains(svg, fmt.Sprintf(`x="%s"`, num(l.Root.TextX))) {
		t.Error("static label should sit at the same offset")
	}
}

func TestRenderFrameEscaping(t *testing.T) {
	l := place(ev(`a<b>&'q"`, 0, 1))
	frag := RenderFrame(l.Root, l.Geometry)

	if strings.Contains(frag, "a<b>") {
		t.Errorf("raw markup leaked into fragment:\n%s", frag)
	}
	if !strings.Contains(frag, "<title>a&lt;b&gt;&amp;&#39;q&#34; (time cost: 1)</title>") {
		t.Errorf("title not XML-escaped:\n%s", frag)
	}
	if !strings.Contains(frag, `onmouseover="s('a\u003Cb\u003E\u0026\&#39;q\&#34; (time cost: 1)')"`) {
		t.Errorf("handler argument not JS-escaped:\n%s", frag)
	}
}

func TestRenderFrameGeometry(t *testing.T) {
	l := place(ev("root", 0, 10, ev("a", 0, 4)))
	a := l.Root.Children[0]
	frag := RenderFrame(a, l.Geometry)

	want := fmt.Sprintf(`<rect x="%s" y="%s" width="%s" height="15" fill="%s" rx="2" ry="2" />`,
		num(a.X), num(a.Y), num(a.Width), palette.RGB(a.Fill))
	if !strings.Contains(frag, want) {
		t.Errorf("rect mismatch\nwant %s\nin   %s", want, frag)
	}
	if !strings.Contains(frag, `onclick="zoom(this)"`) || !strings.Contains(frag, `onmouseout="c()"`) {
		t.Errorf("missing handlers:\n%s", frag)
	}
}

func TestFragmentsFreshPerCall(t *testing.T) {
	l := place(ev("root", 0, 2, ev("x", 0, 1)))
	first := Fragments(l)
	first[0] = ""
	if second := Fragments(l); len(second) != 2 || second[0] == "" {
		t.Error("Fragments should return an independent slice on each call")
	}
}

func TestFitLabel(t *testing.T) {
	tests := []struct {
		name  string
		label string
		width float64
		want  string
	}{
		{"fits", "root", 100, "root"},
		{"truncated", "abcdefghijklmnopqrstu", 100, "abcdefghijk.."},
		{"too narrow", "root", 10, ""},
		{"no room after ellipsis", "abc", 20, ""},
		{"exactly two glyphs", "ab", 20, "ab"},
		{"multibyte", "äöüäöüäöüäöüäöüäöü", 100, "äöüäöüäöüäö.."},
		{"zero width", "x", 0, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FitLabel(tt.label, tt.width, 3); got != tt.want {
				t.Errorf("FitLabel(%q, %v) = %q, want %q", tt.label, tt.width, got, tt.want)
			}
		})
	}
}

func TestEscapeXML(t *testing.T) {
	if got := EscapeXML(`<a & "b">`); got != "&lt;a &amp; &#34;b&#34;&gt;" {
		t.Errorf("EscapeXML = %q", got)
	}
}
