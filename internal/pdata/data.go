package pdata

import (
	"encoding/json"
	"reflect"
	"sort"
	"strings"

	"github.com/pioneer-storage/pioneer/internal/pioneerlog"
)

// FieldPath identifies a nested field within a Data record (GLOSSARY).
type FieldPath []string

// ParseFieldPath splits a dotted path string, the repr() form used as map
// keys by the index wrapper's IndexEntry.
func ParseFieldPath(s string) FieldPath {
	if s == "" {
		return nil
	}
	return strings.Split(s, ".")
}

// String renders the repr() form: dot-joined path components.
func (p FieldPath) String() string { return strings.Join(p, ".") }

// Child returns a new path with name appended.
func (p FieldPath) Child(name string) FieldPath {
	out := make(FieldPath, len(p), len(p)+1)
	copy(out, p)
	return append(out, name)
}

// Set is Pioneer's set-valued leaf: an unordered collection of unique
// elements.
// Represented distinctly from a plain list so flatten/inflate can tell them
// apart (Go's type system stands in for the source's runtime tagging).
type Set []interface{}

// NewSet de-duplicates elements (by their JSON-equivalent representation)
// into a Set.
func NewSet(elems ...interface{}) Set {
	seen := make(map[string]struct{}, len(elems))
	out := make(Set, 0, len(elems))
	for _, e := range elems {
		key, _ := json.Marshal(e)
		if _, ok := seen[string(key)]; ok {
			continue
		}
		seen[string(key)] = struct{}{}
		out = append(out, e)
	}
	return out
}

// FieldValue is one entry of a Data's flattened form.
type FieldValue struct {
	Path  FieldPath
	Value interface{}
}

// Data is Pioneer's open-schema, mergeable structured record. All top-level keys are strings; values are scalars, Sets, lists,
// nested *Data, or maps whose keys stringify (converted to nested *Data on
// construction).
type Data struct {
	fields map[string]interface{}
	order  []string
}

// New builds a Data from a plain map, recursively wrapping any
// map[string]interface{} value as a nested *Data.
func New(m map[string]interface{}) *Data {
	d := &Data{fields: make(map[string]interface{}, len(m))}
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		d.set(k, wrapValue(m[k]))
	}
	return d
}

func wrapValue(v interface{}) interface{} {
	switch vv := v.(type) {
	case map[string]interface{}:
		return New(vv)
	case *Data:
		return vv
	default:
		return v
	}
}

func (d *Data) set(key string, value interface{}) {
	if _, exists := d.fields[key]; !exists {
		d.order = append(d.order, key)
	}
	d.fields[key] = value
}

// Set assigns value at the top-level key, wrapping nested maps as Data.
func (d *Data) Set(key string, value interface{}) {
	d.set(key, wrapValue(value))
}

// Get returns the raw top-level value for key.
func (d *Data) Get(key string) (interface{}, bool) {
	v, ok := d.fields[key]
	return v, ok
}

// Keys returns top-level keys in insertion order.
func (d *Data) Keys() []string {
	out := make([]string, len(d.order))
	copy(out, d.order)
	return out
}

// GetPath resolves a field path, descending through nested Data values.
func (d *Data) GetPath(path FieldPath) (interface{}, bool) {
	if len(path) == 0 {
		return d, true
	}
	v, ok := d.fields[path[0]]
	if !ok {
		return nil, false
	}
	if len(path) == 1 {
		return v, true
	}
	nested, ok := v.(*Data)
	if !ok {
		return nil, false
	}
	return nested.GetPath(path[1:])
}

// SetPath assigns value at path, creating intermediate nested Data records
// as needed.
func (d *Data) SetPath(path FieldPath, value interface{}) {
	if len(path) == 0 {
		return
	}
	if len(path) == 1 {
		d.Set(path[0], value)
		return
	}
	child, ok := d.fields[path[0]].(*Data)
	if !ok {
		child = New(nil)
		d.set(path[0], child)
	}
	child.SetPath(path[1:], value)
}

// Flatten returns the (FieldPath, value) pairs of d. Nested *Data values are
// recursed into; Sets, lists, maps-that-stringify, and scalars are treated
// as leaves. Flatten/Inflate round-trip: Inflate(d.Flatten()).Equal(d).
func (d *Data) Flatten() []FieldValue {
	return d.flatten(nil)
}

func (d *Data) flatten(prefix FieldPath) []FieldValue {
	var out []FieldValue
	for _, k := range d.order {
		v := d.fields[k]
		path := prefix.Child(k)
		if nested, ok := v.(*Data); ok {
			sub := nested.flatten(path)
			if len(sub) == 0 {
				out = append(out, FieldValue{Path: path, Value: nested})
				continue
			}
			out = append(out, sub...)
			continue
		}
		out = append(out, FieldValue{Path: path, Value: v})
	}
	return out
}

// Flattened is an alias for Flatten matching the naming ("value.flattened")
// used by the database index wrapper.
func (d *Data) Flattened() []FieldValue { return d.Flatten() }

// Inflate rebuilds a Data from a flattened field list, the inverse of
// Flatten: inflate(flatten(x)) == x.
func Inflate(flat []FieldValue) *Data {
	d := New(nil)
	for _, fv := range flat {
		d.SetPath(fv.Path, fv.Value)
	}
	return d
}

// Update overlays other onto d: for every (p, v) in other.Flattened(),
// d.GetPath(p) == v afterwards.
func (d *Data) Update(other *Data) {
	for _, fv := range other.Flatten() {
		d.SetPath(fv.Path, fv.Value)
	}
}

// Equal reports deep structural equality.
func (d *Data) Equal(other *Data) bool {
	if d == nil || other == nil {
		return d == other
	}
	if len(d.order) != len(other.order) {
		return false
	}
	// Numbers compare by value, so an int equals the float64 it becomes
	// after a JSON round trip.
	asFloat := func(v interface{}) (float64, bool) {
		switch r := reflect.ValueOf(v); {
		case r.CanInt():
			return float64(r.Int()), true
		case r.CanFloat():
			return r.Float(), true
		}
		return 0, false
	}
	for _, k := range d.order {
		v1, ok1 := d.fields[k]
		v2, ok2 := other.fields[k]
		if !ok2 {
			return false
		}
		_ = ok1
		n1, isData1 := v1.(*Data)
		n2, isData2 := v2.(*Data)
		if isData1 != isData2 {
			return false
		}
		if isData1 {
			if !n1.Equal(n2) {
				return false
			}
			continue
		}
		if f1, ok := asFloat(v1); ok {
			if f2, ok := asFloat(v2); ok && f1 == f2 {
				continue
			}
		}
		if !reflect.DeepEqual(v1, v2) {
			return false
		}
	}
	return true
}

// toPlain renders d (and nested Data) back into plain Go values suitable
// for json.Marshal.
func (d *Data) toPlain() map[string]interface{} {
	out := make(map[string]interface{}, len(d.order))
	for _, k := range d.order {
		v := d.fields[k]
		if nested, ok := v.(*Data); ok {
			out[k] = nested.toPlain()
		} else {
			out[k] = v
		}
	}
	return out
}

// MarshalJSON serializes d as a plain JSON object.
func (d *Data) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.toPlain())
}

// UnmarshalJSON parses a JSON object into d.
func (d *Data) UnmarshalJSON(b []byte) error {
	var raw map[string]interface{}
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	*d = *New(raw)
	return nil
}

var logger = pioneerlog.Component("pdata")
