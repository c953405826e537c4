package prefs

import "github.com/spf13/cast"

// Snapshot is an immutable point-in-time view of every key in the store.
// Typed getters take an explicit default, so callers never observe "missing"
// as a state distinct from "default".
type Snapshot struct {
	values map[string]interface{}
}

func newSnapshot(values map[string]interface{}) Snapshot {
	return Snapshot{values: copyValues(values)}
}

func copyValues(values map[string]interface{}) map[string]interface{} {
	out := make(map[string]interface{}, len(values))
	for k, v := range values {
		out[k] = v
	}
	return out
}

// Has reports whether key is present.
func (s Snapshot) Has(key string) bool {
	_, ok := s.values[key]
	return ok
}

// Len returns the number of keys in the snapshot.
func (s Snapshot) Len() int {
	return len(s.values)
}

// String returns the value for key as a string, or def when absent.
func (s Snapshot) String(key, def string) string {
	v, ok := s.values[key]
	if !ok {
		return def
	}
	return cast.ToString(v)
}

// Float returns the value for key as a float64, or def when absent.
func (s Snapshot) Float(key string, def float64) float64 {
	v, ok := s.values[key]
	if !ok {
		return def
	}
	return cast.ToFloat64(v)
}

// Bool returns the value for key as a bool, or def when absent.
func (s Snapshot) Bool(key string, def bool) bool {
	v, ok := s.values[key]
	if !ok {
		return def
	}
	return cast.ToBool(v)
}
