package pdata

import (
	"fmt"

	"github.com/pioneer-storage/pioneer/pkg/errors"
)

// MergeStrategy names a per-field merge behavior. The zero
// value is not a valid strategy; use StrategyOverwrite as the default.
type MergeStrategy string

const (
	StrategyOverwrite         MergeStrategy = "overwrite"
	StrategyDiscard           MergeStrategy = "discard"
	StrategyAppend            MergeStrategy = "append"
	StrategyArrayMergeByID    MergeStrategy = "arrayMergeById"
	StrategyArrayMergeByIndex MergeStrategy = "arrayMergeByIndex"
	StrategyObjectMerge       MergeStrategy = "objectMerge"
	StrategyVersion           MergeStrategy = "version"
)

var validStrategies = map[MergeStrategy]bool{
	StrategyOverwrite:         true,
	StrategyDiscard:           true,
	StrategyAppend:            true,
	StrategyArrayMergeByID:    true,
	StrategyArrayMergeByIndex: true,
	StrategyObjectMerge:       true,
	StrategyVersion:           true,
}

// Schema carries per-field merge strategies. It is itself backed by a Data
// record keyed by dotted field path, so a Schema round-trips through the
// same JSON encoding as any other record.
type Schema struct {
	data *Data
}

// NewSchema builds an empty schema. Fields not named in it merge with
// StrategyOverwrite.
func NewSchema() *Schema {
	return &Schema{data: New(nil)}
}

// SchemaFromData reinterprets a Data record (e.g. loaded from storage) as a
// Schema, validating that every leaf is a known strategy name.
func SchemaFromData(d *Data) (*Schema, error) {
	for _, fv := range d.Flatten() {
		s, ok := fv.Value.(string)
		if !ok || !validStrategies[MergeStrategy(s)] {
			return nil, errors.NewError(errors.ErrCodeSchemaViolation,
				fmt.Sprintf("unknown merge strategy %q at %s", fv.Value, fv.Path))
		}
	}
	return &Schema{data: d}, nil
}

// Data exposes the backing record, e.g. for persistence.
func (s *Schema) Data() *Data { return s.data }

// SetStrategy records the merge strategy for path.
func (s *Schema) SetStrategy(path FieldPath, strategy MergeStrategy) {
	s.data.SetPath(path, string(strategy))
}

// StrategyFor resolves the strategy for path, defaulting to overwrite and
// warning (not failing) on an unrecognized stored value, matching the
// source's tolerant merge behavior.
func (s *Schema) StrategyFor(path FieldPath) MergeStrategy {
	if s == nil {
		return StrategyOverwrite
	}
	v, ok := s.data.GetPath(path)
	if !ok {
		return StrategyOverwrite
	}
	name, ok := v.(string)
	if !ok || !validStrategies[MergeStrategy(name)] {
		logger.Warn().Str("path", path.String()).Interface("strategy", v).
			Msg("unknown merge strategy, defaulting to overwrite")
		return StrategyOverwrite
	}
	return MergeStrategy(name)
}

// Merge combines old and new into a result Data under the per-field
// strategies in schema (nil schema behaves as an empty one: every field
// overwrites). With a nil schema Merge is idempotent (Merge(d, d, nil) == d);
// a schema using append is not, since a list merged with itself doubles.
// For fields present in only one side of disjoint key sets, Merge is
// associative.
func Merge(old, new *Data, schema *Schema) (*Data, error) {
	if old == nil {
		old = New(nil)
	}
	if new == nil {
		new = New(nil)
	}
	return mergeData(old, new, schema, nil), nil
}

func mergeData(old, new *Data, schema *Schema, path FieldPath) *Data {
	result := New(nil)
	seen := make(map[string]bool, len(old.order)+len(new.order))
	keys := make([]string, 0, len(old.order)+len(new.order))
	for _, k := range old.order {
		if !seen[k] {
			seen[k] = true
			keys = append(keys, k)
		}
	}
	for _, k := range new.order {
		if !seen[k] {
			seen[k] = true
			keys = append(keys, k)
		}
	}

	for _, k := range keys {
		childPath := path.Child(k)
		oldVal, oldOK := old.fields[k]
		newVal, newOK := new.fields[k]

		switch {
		case oldOK && !newOK:
			if schema.StrategyFor(childPath) != StrategyDiscard {
				result.set(k, oldVal)
			}
		case !oldOK && newOK:
			result.set(k, newVal)
		default:
			result.set(k, mergeValue(oldVal, newVal, schema, childPath))
		}
	}
	return result
}

func mergeValue(oldVal, newVal interface{}, schema *Schema, path FieldPath) interface{} {
	strategy := schema.StrategyFor(path)

	if oldData, ok := oldVal.(*Data); ok {
		if newData, ok := newVal.(*Data); ok {
			if strategy == StrategyObjectMerge {
				return mergeData(oldData, newData, schema, path)
			}
			if strategy == StrategyDiscard {
				return oldData
			}
			return newData
		}
	}

	switch strategy {
	case StrategyDiscard:
		return oldVal
	case StrategyAppend:
		return appendValues(oldVal, newVal)
	case StrategyArrayMergeByIndex:
		return mergeArrayByIndex(oldVal, newVal)
	case StrategyArrayMergeByID:
		return mergeArrayByID(oldVal, newVal)
	case StrategyVersion:
		return mergeByVersion(oldVal, newVal)
	default:
		return newVal
	}
}

func asSlice(v interface{}) ([]interface{}, bool) {
	switch vv := v.(type) {
	case Set:
		return []interface{}(vv), true
	case []interface{}:
		return vv, true
	default:
		return nil, false
	}
}

func appendValues(oldVal, newVal interface{}) interface{} {
	oldList, ok1 := asSlice(oldVal)
	newList, ok2 := asSlice(newVal)
	if !ok1 || !ok2 {
		return newVal
	}
	if _, isSet := oldVal.(Set); isSet {
		return NewSet(append(append([]interface{}{}, oldList...), newList...)...)
	}
	out := make([]interface{}, 0, len(oldList)+len(newList))
	out = append(out, oldList...)
	out = append(out, newList...)
	return out
}

func mergeArrayByIndex(oldVal, newVal interface{}) interface{} {
	oldList, ok1 := asSlice(oldVal)
	newList, ok2 := asSlice(newVal)
	if !ok1 || !ok2 {
		return newVal
	}
	size := len(oldList)
	if len(newList) > size {
		size = len(newList)
	}
	out := make([]interface{}, size)
	for i := 0; i < size; i++ {
		switch {
		case i < len(newList):
			out[i] = newList[i]
		case i < len(oldList):
			out[i] = oldList[i]
		}
	}
	return out
}

func recordID(v interface{}) (string, bool) {
	rec, ok := v.(map[string]interface{})
	if !ok {
		if d, ok2 := v.(*Data); ok2 {
			id, ok3 := d.Get("id")
			if !ok3 {
				return "", false
			}
			return fmt.Sprintf("%v", id), true
		}
		return "", false
	}
	id, ok := rec["id"]
	if !ok {
		return "", false
	}
	return fmt.Sprintf("%v", id), true
}

func mergeArrayByID(oldVal, newVal interface{}) interface{} {
	oldList, ok1 := asSlice(oldVal)
	newList, ok2 := asSlice(newVal)
	if !ok1 || !ok2 {
		return newVal
	}
	order := make([]string, 0, len(oldList))
	byID := make(map[string]interface{}, len(oldList))
	unidentified := make([]interface{}, 0)
	for _, item := range oldList {
		if id, ok := recordID(item); ok {
			if _, exists := byID[id]; !exists {
				order = append(order, id)
			}
			byID[id] = item
			continue
		}
		unidentified = append(unidentified, item)
	}
	for _, item := range newList {
		if id, ok := recordID(item); ok {
			if _, exists := byID[id]; !exists {
				order = append(order, id)
			}
			byID[id] = item
			continue
		}
		unidentified = append(unidentified, item)
	}
	out := make([]interface{}, 0, len(order)+len(unidentified))
	for _, id := range order {
		out = append(out, byID[id])
	}
	out = append(out, unidentified...)
	return out
}

func fieldVersion(v interface{}) (float64, bool) {
	switch rec := v.(type) {
	case *Data:
		raw, ok := rec.Get("version")
		if !ok {
			return 0, false
		}
		return toFloat(raw)
	case map[string]interface{}:
		raw, ok := rec["version"]
		if !ok {
			return 0, false
		}
		return toFloat(raw)
	default:
		return 0, false
	}
}

func toFloat(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	default:
		return 0, false
	}
}

func mergeByVersion(oldVal, newVal interface{}) interface{} {
	oldVer, ok1 := fieldVersion(oldVal)
	newVer, ok2 := fieldVersion(newVal)
	if !ok1 || !ok2 {
		return newVal
	}
	if oldVer > newVer {
		return oldVal
	}
	return newVal
}
