// Package trace decodes hierarchical JSON traces into event trees.
//
// # Input Format
//
// A trace file is a JSON array whose first element is the root event:
//
//	[{
//	  "name": "request", "start_time": 0, "end_time": 10, "lasted": 10,
//	  "sub_events": [
//	    {"name": "db", "start_time": 1, "end_time": 4, "lasted": 3, "sub_events": []}
//	  ]
//	}]
//
// Every event object must carry name, start_time, end_time, lasted and
// sub_events. Further array elements and unknown fields are ignored.
//
// # Root Adjustment
//
// A root span may begin before its first recorded sub-event. When the root
// has children, [NewTree] moves the root's StartTime to the first child's
// StartTime and recomputes Lasted as EndTime - StartTime, so the flame graph
// starts where the recorded work starts.
//
// # Errors
//
// Decoding failures carry [errors.ErrCodeInvalidTrace] and name the JSON path
// of the offending event, e.g. "$[0].sub_events[2]". Decoding is all or
// nothing: no partial tree is returned.
//
// [errors.ErrCodeInvalidTrace]: github.com/matzehuels/sotflame/pkg/errors.ErrCodeInvalidTrace
package trace
