// Package literal converts structured values into canonical textual literals
// and parses them back. The supported domain is nil, booleans, integers,
// strings, ordered sequences and string-keyed maps that keep insertion order.
package literal

import (
	"fmt"
	"reflect"
	"sort"
	"strconv"
	"strings"

	mxerrors "github.com/conduit-lang/mapexport/internal/errors"
)

// Entry is a single key/value pair of a Map
type Entry struct {
	Key   string
	Value interface{}
}

// Map is a string-keyed mapping that preserves insertion order
type Map []Entry

// NewMap builds a Map from alternating key/value arguments.
// It panics on an odd argument count or a non-string key.
func NewMap(kv ...interface{}) Map {
	if len(kv)%2 != 0 {
		panic("literal.NewMap: odd number of arguments")
	}
	m := make(Map, 0, len(kv)/2)
	for i := 0; i < len(kv); i += 2 {
		m = m.With(kv[i].(string), kv[i+1])
	}
	return m
}

// Get returns the value stored under key
func (m Map) Get(key string) (interface{}, bool) {
	for _, e := range m {
		if e.Key == key {
			return e.Value, true
		}
	}
	return nil, false
}

// With returns m with key set to value. An existing key keeps its position.
func (m Map) With(key string, value interface{}) Map {
	for i, e := range m {
		if e.Key == key {
			m[i].Value = value
			return m
		}
	}
	return append(m, Entry{Key: key, Value: value})
}

// Keys returns the keys in insertion order
func (m Map) Keys() []string {
	keys := make([]string, len(m))
	for i, e := range m {
		keys[i] = e.Key
	}
	return keys
}

// Normalize converts v into the canonical representation used by Format:
// nil, bool, int, string, []interface{} or Map. Go maps are accepted and
// ordered by key since they carry no insertion order.
func Normalize(v interface{}) (interface{}, error) {
	switch val := v.(type) {
	case nil:
		return nil, nil
	case bool, string, int:
		return val, nil
	case int8:
		return int(val), nil
	case int16:
		return int(val), nil
	case int32:
		return int(val), nil
	case int64:
		return int(val), nil
	case uint8:
		return int(val), nil
	case uint16:
		return int(val), nil
	case uint32:
		return int(val), nil
	case Map:
		out := make(Map, len(val))
		seen := make(map[string]bool, len(val))
		for i, e := range val {
			if seen[e.Key] {
				return nil, mxerrors.NewUnsupportedValueKind(val).
					WithDetail(fmt.Sprintf("duplicate key %q", e.Key))
			}
			seen[e.Key] = true
			n, err := Normalize(e.Value)
			if err != nil {
				return nil, err
			}
			out[i] = Entry{Key: e.Key, Value: n}
		}
		return out, nil
	case []interface{}:
		out := make([]interface{}, len(val))
		for i, item := range val {
			n, err := Normalize(item)
			if err != nil {
				return nil, err
			}
			out[i] = n
		}
		return out, nil
	case []string:
		out := make([]interface{}, len(val))
		for i, item := range val {
			out[i] = item
		}
		return out, nil
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Slice, reflect.Array:
		out := make([]interface{}, rv.Len())
		for i := 0; i < rv.Len(); i++ {
			n, err := Normalize(rv.Index(i).Interface())
			if err != nil {
				return nil, err
			}
			out[i] = n
		}
		return out, nil
	case reflect.Map:
		if rv.Type().Key().Kind() != reflect.String {
			return nil, mxerrors.NewUnsupportedValueKind(v)
		}
		keys := make([]string, 0, rv.Len())
		for _, k := range rv.MapKeys() {
			keys = append(keys, k.String())
		}
		sort.Strings(keys)
		out := make(Map, 0, len(keys))
		for _, k := range keys {
			n, err := Normalize(rv.MapIndex(reflect.ValueOf(k).Convert(rv.Type().Key())).Interface())
			if err != nil {
				return nil, err
			}
			out = append(out, Entry{Key: k, Value: n})
		}
		return out, nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return int(rv.Int()), nil
	case reflect.String:
		return rv.String(), nil
	case reflect.Bool:
		return rv.Bool(), nil
	}

	return nil, mxerrors.NewUnsupportedValueKind(v)
}

// Format renders v as a canonical literal. Empty containers render as
// [] and {}; elements are separated by ", " with no trailing separator.
func Format(v interface{}) (string, error) {
	n, err := Normalize(v)
	if err != nil {
		return "", err
	}
	var b strings.Builder
	write(&b, n)
	return b.String(), nil
}

// MustFormat is like Format but panics on unsupported values
func MustFormat(v interface{}) string {
	s, err := Format(v)
	if err != nil {
		panic(err)
	}
	return s
}

func write(b *strings.Builder, v interface{}) {
	switch val := v.(type) {
	case nil:
		b.WriteString("null")
	case bool:
		b.WriteString(strconv.FormatBool(val))
	case int:
		b.WriteString(strconv.Itoa(val))
	case string:
		b.WriteString(strconv.Quote(val))
	case []interface{}:
		b.WriteByte('[')
		for i, item := range val {
			if i > 0 {
				b.WriteString(", ")
			}
			write(b, item)
		}
		b.WriteByte(']')
	case Map:
		b.WriteByte('{')
		for i, e := range val {
			if i > 0 {
				b.WriteString(", ")
			}
			b.WriteString(strconv.Quote(e.Key))
			b.WriteString(": ")
			write(b, e.Value)
		}
		b.WriteByte('}')
	}
}
