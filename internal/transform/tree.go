// Package transform interprets the declarative per-provider field configs
// described in spec.md §4.2: a mapping from canonical field name to a
// provider paramPath plus optional constraints and transform functions.
// Providers are data, following the teacher's provider/bedrock.go
// convention of building request bodies as plain map[string]interface{}
// trees rather than provider-specific structs.
package transform

import (
	"fmt"
	"strconv"
	"strings"
)

// Tree is the provider-body representation the engine builds into: a
// nested map[string]interface{}, with []interface{} for list segments.
type Tree map[string]interface{}

// Set places value at the dotted path in t, creating intermediate maps as
// needed. A non-final path segment that parses as a non-negative integer
// indexes into a list instead of a map, extending it with empty maps if
// necessary; a final integer segment is set as a map key.
// Setting the same leaf path twice with differing values is an error,
// matching spec.md §4.2's "placing the same path twice" invariant.
func (t Tree) Set(path string, value interface{}) error {
	segments := strings.Split(path, ".")
	return setPath(t, segments, value)
}

func setPath(node interface{}, segments []string, value interface{}) error {
	if len(segments) == 0 {
		return fmt.Errorf("transform: empty path")
	}
	seg := segments[0]
	last := len(segments) == 1

	switch n := node.(type) {
	case Tree:
		return setInMap(map[string]interface{}(n), seg, segments, last, value)
	case map[string]interface{}:
		return setInMap(n, seg, segments, last, value)
	default:
		return fmt.Errorf("transform: cannot descend into non-map node at %q", seg)
	}
}

func setInMap(m map[string]interface{}, seg string, segments []string, last bool, value interface{}) error {
	if last {
		if existing, ok := m[seg]; ok && !deepEqual(existing, value) {
			return fmt.Errorf("transform: conflicting values placed at path segment %q", seg)
		}
		m[seg] = value
		return nil
	}

	next := segments[1]
	if idx, err := strconv.Atoi(next); err == nil && idx >= 0 {
		list, _ := m[seg].([]interface{})
		for len(list) <= idx {
			list = append(list, map[string]interface{}{})
		}
		if err := setPath(list[idx], segments[1:], value); err != nil {
			return err
		}
		m[seg] = list
		return nil
	}

	child, ok := m[seg].(map[string]interface{})
	if !ok {
		child = map[string]interface{}{}
		m[seg] = child
	}
	return setPath(child, segments[1:], value)
}

func deepEqual(a, b interface{}) bool {
	return fmt.Sprintf("%#v", a) == fmt.Sprintf("%#v", b)
}

// Get reads a dotted path out of a canonical body (typically a
// map[string]interface{} produced by json.Unmarshal into interface{}, or
// a struct marshalled through ToMap). Missing segments return (nil,
// false) rather than an error: absence is a normal outcome the engine's
// required/default handling distinguishes from a real error.
func Get(body interface{}, path string) (interface{}, bool) {
	segments := strings.Split(path, ".")
	cur := body
	for _, seg := range segments {
		m, ok := cur.(map[string]interface{})
		if !ok {
			return nil, false
		}
		v, ok := m[seg]
		if !ok {
			return nil, false
		}
		cur = v
	}
	return cur, true
}
