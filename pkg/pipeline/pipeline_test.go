package pipeline

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/sotflame/pkg/errors"
	"github.com/matzehuels/sotflame/pkg/flame/layout"
	"github.com/matzehuels/sotflame/pkg/observability"
)

const roundTrip = `[{"name":"root","start_time":0,"end_time":10,"lasted":10,"sub_events":[
	{"name":"a","start_time":0,"end_time":4,"lasted":4,"sub_events":[]},
	{"name":"b","start_time":4,"end_time":10,"lasted":6,"sub_events":[]}]}]`

const nested = `[{"name":"root","start_time":0,"end_time":3,"lasted":3,"sub_events":[
	{"name":"child","start_time":0,"end_time":2,"lasted":2,"sub_events":[
		{"name":"grandchild","start_time":0,"end_time":1,"lasted":1,"sub_events":[]}]}]}]`

var quiet = log.NewWithOptions(io.Discard, log.Options{})

// memCache is an in-memory cache.Cache that counts writes.
type memCache struct {
	mu   sync.Mutex
	data map[string][]byte
	sets int
}

func newMemCache() *memCache { return &memCache{data: map[string][]byte{}} }

func (m *memCache) Get(_ context.Context, key string) ([]byte, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	d, ok := m.data[key]
	return d, ok, nil
}

func (m *memCache) Set(_ context.Context, key string, data []byte, _ time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = data
	m.sets++
	return nil
}

func (m *memCache) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, key)
	return nil
}

func (m *memCache) Close() error { return nil }

func TestValidatePalette(t *testing.T) {
	tests := []struct {
		name    string
		wantErr bool
	}{
		{"hot", false},
		{"hash", false},
		{"HASH", false},
		{"rainbow", true},
		{"", true},
	}
	for _, tt := range tests {
		err := ValidatePalette(tt.name)
		if (err != nil) != tt.wantErr {
			t.Errorf("ValidatePalette(%q) error = %v, wantErr %v", tt.name, err, tt.wantErr)
		}
		if err != nil && !errors.Is(err, errors.ErrCodeInvalidPalette) {
			t.Errorf("ValidatePalette(%q) code = %s", tt.name, errors.GetCode(err))
		}
	}
}

func TestValidateGeometry(t *testing.T) {
	mod := func(f func(*layout.Geometry)) layout.Geometry {
		g := layout.DefaultGeometry()
		f(&g)
		return g
	}
	tests := []struct {
		name    string
		geo     layout.Geometry
		wantErr bool
	}{
		{"default", layout.DefaultGeometry(), false},
		{"narrow", mod(func(g *layout.Geometry) { g.Width = 300 }), false},
		{"zero row spacing", mod(func(g *layout.Geometry) { g.RowSpacing = 0 }), false},
		{"zero width", mod(func(g *layout.Geometry) { g.Width = 0 }), true},
		{"margins eat width", mod(func(g *layout.Geometry) { g.Width = 20 }), true},
		{"negative margin", mod(func(g *layout.Geometry) { g.TopMargin = -1 }), true},
		{"zero box height", mod(func(g *layout.Geometry) { g.BoxHeight = 0 }), true},
		{"negative spacing", mod(func(g *layout.Geometry) { g.RowSpacing = -0.5 }), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateGeometry(tt.geo)
			if (err != nil) != tt.wantErr {
				t.Errorf("error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, errors.ErrCodeInvalidOptions) {
				t.Errorf("code = %s, want %s", errors.GetCode(err), errors.ErrCodeInvalidOptions)
			}
		})
	}
}

func TestValidateAndSetDefaults(t *testing.T) {
	var opts Options
	if err := opts.ValidateAndSetDefaults(); err != nil {
		t.Fatalf("zero options: %v", err)
	}
	if opts.Geometry != layout.DefaultGeometry() {
		t.Errorf("Geometry = %+v, want defaults", opts.Geometry)
	}
	if opts.Palette != DefaultPalette || opts.Title != DefaultTitle {
		t.Errorf("Palette/Title = %q/%q", opts.Palette, opts.Title)
	}
	if opts.MaxDepth <= 0 || opts.Logger == nil {
		t.Errorf("MaxDepth = %d, Logger = %v", opts.MaxDepth, opts.Logger)
	}

	upper := Options{Palette: "Hash"}
	if err := upper.ValidateAndSetDefaults(); err != nil || upper.Palette != "hash" {
		t.Errorf("palette not normalized: %q, %v", upper.Palette, err)
	}

	bad := Options{MaxDepth: -1}
	if err := bad.ValidateAndSetDefaults(); !errors.Is(err, errors.ErrCodeInvalidOptions) {
		t.Errorf("negative depth error = %v", err)
	}
}

func TestDeterministic(t *testing.T) {
	tests := []struct {
		opts Options
		want bool
	}{
		{Options{Palette: "hot"}, false},
		{Options{Palette: "hot", Seed: 9}, true},
		{Options{Palette: "hash"}, true},
	}
	for _, tt := range tests {
		if got := tt.opts.Deterministic(); got != tt.want {
			t.Errorf("%+v.Deterministic() = %v, want %v", tt.opts, got, tt.want)
		}
	}
}

func TestArtifactKeyOptsChangeWithOutputOptions(t *testing.T) {
	r := NewRunner(nil, nil, quiet)
	key := func(o Options) string {
		if err := o.ValidateAndSetDefaults(); err != nil {
			t.Fatal(err)
		}
		return r.Keyer.ArtifactKey("h", o.ArtifactKeyOpts())
	}
	base := key(Options{Palette: "hash"})
	if base != key(Options{Palette: "hash", Source: "other.json"}) {
		t.Error("source label should not change the key")
	}
	g := layout.DefaultGeometry()
	g.Width = 800
	for name, o := range map[string]Options{
		"title":    {Palette: "hash", Title: "x"},
		"seed":     {Palette: "hash", Seed: 3},
		"geometry": {Palette: "hash", Geometry: g},
		"search":   {Palette: "hash", SearchColor: "red"},
	} {
		if key(o) == base {
			t.Errorf("%s should change the key", name)
		}
	}
}

func TestExecute(t *testing.T) {
	r := NewRunner(nil, nil, quiet)
	res, err := r.Execute(context.Background(), []byte(roundTrip), Options{Source: "t.json"})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}

	if res.Stats.Events != 3 || res.Stats.Depth != 2 {
		t.Errorf("stats = %+v, want 3 events depth 2", res.Stats)
	}
	if res.CacheHit {
		t.Error("null cache reported a hit")
	}
	if res.Layout == nil || res.Tree == nil {
		t.Fatal("Layout and Tree should be set on a fresh render")
	}
	if n := bytes.Count(res.SVG, []byte(`<g class="func_g"`)); n != 3 {
		t.Errorf("groups = %d, want 3", n)
	}
	if res.Stats.Bytes != len(res.SVG) {
		t.Errorf("Stats.Bytes = %d, len = %d", res.Stats.Bytes, len(res.SVG))
	}
	if len(res.InputHash) != 64 {
		t.Errorf("InputHash = %q", res.InputHash)
	}
}

func TestExecuteUsesCacheWhenDeterministic(t *testing.T) {
	ctx := context.Background()
	mc := newMemCache()
	r := NewRunner(mc, nil, quiet)
	opts := Options{Palette: "hash", Title: "cached"}

	first, err := r.Execute(ctx, []byte(roundTrip), opts)
	if err != nil {
		t.Fatal(err)
	}
	if first.CacheHit || mc.sets != 1 {
		t.Fatalf("first run: hit=%v sets=%d", first.CacheHit, mc.sets)
	}

	second, err := r.Execute(ctx, []byte(roundTrip), opts)
	if err != nil {
		t.Fatal(err)
	}
	if !second.CacheHit {
		t.Error("second run should hit the cache")
	}
	if second.Layout != nil {
		t.Error("Layout should be nil on a cache hit")
	}
	if !bytes.Equal(first.SVG, second.SVG) {
		t.Error("cached document differs from rendered one")
	}
	if second.Stats.Events != 3 {
		t.Errorf("trace stats missing on cache hit: %+v", second.Stats)
	}

	refreshed := opts
	refreshed.Refresh = true
	third, err := r.Execute(ctx, []byte(roundTrip), refreshed)
	if err != nil {
		t.Fatal(err)
	}
	if third.CacheHit || mc.sets != 2 {
		t.Errorf("refresh: hit=%v sets=%d, want miss and a second write", third.CacheHit, mc.sets)
	}
}

func TestExecuteReportsDegenerateOnCacheHit(t *testing.T) {
	const skewed = `[{"name":"root","start_time":0,"end_time":10,"lasted":10,"sub_events":[
		{"name":"instant","start_time":2,"end_time":2,"lasted":0,"sub_events":[
			{"name":"inside","start_time":2,"end_time":3,"lasted":1,"sub_events":[]}]},
		{"name":"skew","start_time":6,"end_time":4,"lasted":-2,"sub_events":[]}]}]`

	ctx := context.Background()
	var logs bytes.Buffer
	r := NewRunner(newMemCache(), nil, log.NewWithOptions(&logs, log.Options{}))
	opts := Options{Palette: "hash"}

	first, err := r.Execute(ctx, []byte(skewed), opts)
	if err != nil {
		t.Fatal(err)
	}
	if first.Stats.Degenerate != 2 || first.Layout.Degenerate != 2 {
		t.Fatalf("first run: stats=%d layout=%d, want 2", first.Stats.Degenerate, first.Layout.Degenerate)
	}

	logs.Reset()
	second, err := r.Execute(ctx, []byte(skewed), opts)
	if err != nil {
		t.Fatal(err)
	}
	if !second.CacheHit {
		t.Fatal("second run should hit the cache")
	}
	if second.Stats.Degenerate != 2 {
		t.Errorf("cache hit Degenerate = %d, want 2", second.Stats.Degenerate)
	}
	if !strings.Contains(logs.String(), "cannot be drawn to scale") {
		t.Errorf("cache hit should still warn:\n%s", logs.String())
	}
}

func TestExecuteSkipsCacheForRandomColors(t *testing.T) {
	mc := newMemCache()
	r := NewRunner(mc, nil, quiet)
	for i := 0; i < 2; i++ {
		res, err := r.Execute(context.Background(), []byte(roundTrip), Options{Palette: "hot"})
		if err != nil {
			t.Fatal(err)
		}
		if res.CacheHit {
			t.Error("unseeded hot palette must not be served from cache")
		}
	}
	if mc.sets != 0 {
		t.Errorf("sets = %d, want 0", mc.sets)
	}
}

func TestExecuteSeededHotIsReproducible(t *testing.T) {
	r := NewRunner(nil, nil, quiet)
	opts := Options{Palette: "hot", Seed: 42}
	a, err := r.Execute(context.Background(), []byte(nested), opts)
	if err != nil {
		t.Fatal(err)
	}
	b, err := r.Execute(context.Background(), []byte(nested), opts)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(a.SVG, b.SVG) {
		t.Error("same seed produced different documents")
	}
}

func TestExecuteRejectsBadInputEvenWhenCached(t *testing.T) {
	ctx := context.Background()
	r := NewRunner(newMemCache(), nil, quiet)
	opts := Options{Palette: "hash"}

	if _, err := r.Execute(ctx, []byte(roundTrip), opts); err != nil {
		t.Fatal(err)
	}
	_, err := r.Execute(ctx, []byte(`[{"name":"root"}]`), opts)
	if !errors.Is(err, errors.ErrCodeInvalidTrace) {
		t.Errorf("error = %v, want %s", err, errors.ErrCodeInvalidTrace)
	}
}

func TestExecuteErrors(t *testing.T) {
	r := NewRunner(nil, nil, quiet)
	tests := []struct {
		name  string
		input string
		opts  Options
		code  errors.Code
	}{
		{"malformed json", `[{`, Options{}, errors.ErrCodeInvalidTrace},
		{"empty array", `[]`, Options{}, errors.ErrCodeInvalidTrace},
		{"too deep", nested, Options{MaxDepth: 2}, errors.ErrCodeInvalidTrace},
		{"unknown palette", roundTrip, Options{Palette: "neon"}, errors.ErrCodeInvalidPalette},
		{"bad geometry", roundTrip, Options{Geometry: layout.Geometry{Width: -5}}, errors.ErrCodeInvalidOptions},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := r.Execute(context.Background(), []byte(tt.input), tt.opts)
			if res != nil {
				t.Error("result should be nil on error")
			}
			if !errors.Is(err, tt.code) {
				t.Errorf("error = %v, want code %s", err, tt.code)
			}
		})
	}
}

func TestExecuteCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewRunner(nil, nil, quiet).Execute(ctx, []byte(roundTrip), Options{})
	if err != context.Canceled {
		t.Errorf("error = %v, want context.Canceled", err)
	}
}

func TestExecuteReportsHooks(t *testing.T) {
	observability.Reset()
	defer observability.Reset()

	ph := &recordingPipelineHooks{}
	ch := &recordingCacheHooks{}
	observability.SetPipelineHooks(ph)
	observability.SetCacheHooks(ch)

	r := NewRunner(newMemCache(), nil, quiet)
	opts := Options{Source: "t.json", Palette: "hash"}
	for i := 0; i < 2; i++ {
		if _, err := r.Execute(context.Background(), []byte(roundTrip), opts); err != nil {
			t.Fatal(err)
		}
	}

	want := []string{
		"parse t.json 3", "layout", "render",
		"parse t.json 3",
	}
	if strings.Join(ph.events, "|") != strings.Join(want, "|") {
		t.Errorf("pipeline hooks = %v, want %v", ph.events, want)
	}
	if ch.miss != 1 || ch.set != 1 || ch.hit != 1 {
		t.Errorf("cache hooks miss=%d set=%d hit=%d, want 1/1/1", ch.miss, ch.set, ch.hit)
	}
}

type recordingPipelineHooks struct {
	observability.NoopPipelineHooks
	events []string
}

func (h *recordingPipelineHooks) OnParseComplete(_ context.Context, source string, events, _ int, _ time.Duration, _ error) {
	h.events = append(h.events, "parse "+source+" "+strconv.Itoa(events))
}

func (h *recordingPipelineHooks) OnLayoutComplete(context.Context, int, time.Duration, error) {
	h.events = append(h.events, "layout")
}

func (h *recordingPipelineHooks) OnRenderComplete(context.Context, string, int, time.Duration, error) {
	h.events = append(h.events, "render")
}

type recordingCacheHooks struct {
	hit, miss, set int
}

func (h *recordingCacheHooks) OnCacheHit(context.Context, string)      { h.hit++ }
func (h *recordingCacheHooks) OnCacheMiss(context.Context, string)     { h.miss++ }
func (h *recordingCacheHooks) OnCacheSet(context.Context, string, int) { h.set++ }

func TestExecuteExampleTraces(t *testing.T) {
	files, err := filepath.Glob(filepath.Join("..", "..", "examples", "traces", "*.json"))
	if err != nil || len(files) == 0 {
		t.Fatalf("no example traces found (err=%v)", err)
	}
	r := NewRunner(nil, nil, quiet)
	for _, path := range files {
		t.Run(filepath.Base(path), func(t *testing.T) {
			data, err := os.ReadFile(path)
			if err != nil {
				t.Fatal(err)
			}
			res, err := r.Execute(context.Background(), data, Options{Source: path, Palette: "hash"})
			if err != nil {
				t.Fatalf("Execute: %v", err)
			}
			if got := bytes.Count(res.SVG, []byte(`<g class="func_g"`)); got != res.Stats.Events {
				t.Errorf("frame groups = %d, want one per event (%d)", got, res.Stats.Events)
			}
		})
	}
}
