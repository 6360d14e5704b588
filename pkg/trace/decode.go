package trace

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/matzehuels/sotflame/pkg/errors"
)

// DefaultMaxDepth bounds event nesting. Traces deeper than this are rejected
// rather than recursed into. Events are read from a token stream, so the
// limit is not capped by the JSON scanner's own nesting limit.
const DefaultMaxDepth = 10000

// Option configures decoding.
type Option func(*decoder)

// WithMaxDepth overrides DefaultMaxDepth. Values below 1 are ignored.
func WithMaxDepth(n int) Option {
	return func(d *decoder) {
		if n > 0 {
			d.maxDepth = n
		}
	}
}

type decoder struct {
	maxDepth int
}

// rawEvent collects one event object's fields. Pointers distinguish
// missing fields from zero values; hasSubs records a sub_events array.
type rawEvent struct {
	Name      *string
	StartTime *float64
	EndTime   *float64
	Lasted    *float64
	hasSubs   bool
}

// Decode reads a JSON trace from r and returns the finalized tree.
// Only the first element of the top-level array is used.
//
// Decode does not close r.
func Decode(r io.Reader, opts ...Option) (*Tree, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeIO, err, "read trace")
	}
	return Parse(data, opts...)
}

// Parse decodes a JSON trace held in memory. See [Decode].
func Parse(data []byte, opts ...Option) (*Tree, error) {
	d := decoder{maxDepth: DefaultMaxDepth}
	for _, opt := range opts {
		opt(&d)
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return nil, malformed(err)
	}
	if tok != json.Delim('[') {
		return nil, errors.New(errors.ErrCodeInvalidTrace, "decode trace: expected a JSON array of events")
	}
	if !dec.More() {
		return nil, errors.New(errors.ErrCodeInvalidTrace, "decode trace: array holds no root event")
	}

	root, err := d.event(dec, "$[0]", 0)
	if err != nil {
		return nil, err
	}

	// Further top-level elements are ignored but must be well-formed.
	for dec.More() {
		var skip json.RawMessage
		if err := dec.Decode(&skip); err != nil {
			return nil, malformed(err)
		}
	}
	if _, err := dec.Token(); err != nil {
		return nil, malformed(err)
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, errors.New(errors.ErrCodeInvalidTrace, "decode trace: unexpected data after the event array")
	}
	return NewTree(root), nil
}

// Load reads and decodes the trace file at path.
func Load(path string, opts ...Option) (*Tree, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.WrapFS(err, "open %s", path)
	}
	t, err := Parse(data, opts...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return t, nil
}

// event reads one event object from the token stream, children included.
// The stream is consumed once; nesting is bounded by maxDepth rather than
// by the JSON scanner.
func (d *decoder) event(dec *json.Decoder, path string, level int) (*Event, error) {
	if level >= d.maxDepth {
		return nil, errors.New(errors.ErrCodeInvalidTrace, "%s: nesting exceeds %d levels", path, d.maxDepth)
	}

	tok, err := dec.Token()
	if err != nil {
		return nil, malformed(err)
	}
	if tok == nil {
		return nil, errors.New(errors.ErrCodeInvalidTrace, "%s: event is null", path)
	}
	if tok != json.Delim('{') {
		return nil, errors.New(errors.ErrCodeInvalidTrace, "%s: expected an event object, got %v", path, tok)
	}

	var (
		raw      rawEvent
		children []*Event
	)
	for dec.More() {
		key, err := dec.Token()
		if err != nil {
			return nil, malformed(err)
		}
		switch key {
		case "name":
			err = dec.Decode(&raw.Name)
		case "start_time":
			err = dec.Decode(&raw.StartTime)
		case "end_time":
			err = dec.Decode(&raw.EndTime)
		case "lasted":
			err = dec.Decode(&raw.Lasted)
		case "sub_events":
			children, err = d.subEvents(dec, path, level, &raw)
		default:
			var skip json.RawMessage
			err = dec.Decode(&skip)
		}
		if err != nil {
			return nil, fieldError(err, path)
		}
	}
	if _, err := dec.Token(); err != nil {
		return nil, malformed(err)
	}

	if field := raw.missing(); field != "" {
		return nil, errors.New(errors.ErrCodeInvalidTrace, "%s: missing required field %q", path, field)
	}

	return &Event{
		Name:      *raw.Name,
		StartTime: *raw.StartTime,
		EndTime:   *raw.EndTime,
		Lasted:    *raw.Lasted,
		Level:     level,
		Children:  children,
	}, nil
}

// subEvents reads a sub_events value. null leaves the field missing.
func (d *decoder) subEvents(dec *json.Decoder, path string, level int, raw *rawEvent) ([]*Event, error) {
	tok, err := dec.Token()
	if err != nil {
		return nil, malformed(err)
	}
	if tok == nil {
		raw.hasSubs = false
		return nil, nil
	}
	if tok != json.Delim('[') {
		return nil, errors.New(errors.ErrCodeInvalidTrace, "%s: sub_events must be an array", path)
	}
	raw.hasSubs = true

	var children []*Event
	for i := 0; dec.More(); i++ {
		child, err := d.event(dec, fmt.Sprintf("%s.sub_events[%d]", path, i), level+1)
		if err != nil {
			return nil, err
		}
		children = append(children, child)
	}
	if _, err := dec.Token(); err != nil {
		return nil, malformed(err)
	}
	return children, nil
}

// fieldError wraps a failure to decode a field value, keeping coded errors
// from nested events as they are.
func fieldError(err error, path string) error {
	if errors.GetCode(err) != "" {
		return err
	}
	if _, ok := err.(*json.SyntaxError); ok || err == io.ErrUnexpectedEOF || err == io.EOF {
		return malformed(err)
	}
	return errors.Wrap(errors.ErrCodeInvalidTrace, err, "%s", path)
}

// malformed wraps a JSON syntax or read error.
func malformed(err error) error {
	return errors.Wrap(errors.ErrCodeInvalidTrace, err, "decode trace: malformed JSON")
}

// missing returns the first required field absent from the object.
// An explicit null counts as absent.
func (r *rawEvent) missing() string {
	switch {
	case r.Name == nil:
		return "name"
	case r.StartTime == nil:
		return "start_time"
	case r.EndTime == nil:
		return "end_time"
	case r.Lasted == nil:
		return "lasted"
	case !r.hasSubs:
		return "sub_events"
	}
	return ""
}
