package pdatabase

import (
	"context"
	"fmt"
	"reflect"

	"github.com/pioneer-storage/pioneer/internal/pdata"
)

// Operation is a condition's comparison operator.
type Operation string

const (
	OpEqual    Operation = "=="
	OpNotEqual Operation = "!="
	OpGreater  Operation = ">"
	OpLess     Operation = "<"
	OpContains Operation = "contains"
	OpAny      Operation = "any"
	OpAll      Operation = "all"
)

// Condition tests one field path of a record against a value, optionally
// negated.
type Condition struct {
	Path      pdata.FieldPath
	Operation Operation
	Value     interface{}
	Not       bool
}

// Where builds a Condition for the fluent Query.Select(...).Where(...)
// chaining style.
func Where(path string, op Operation, value interface{}) Condition {
	return Condition{Path: pdata.ParseFieldPath(path), Operation: op, Value: value}
}

// Negate returns a copy of c with Not flipped, modeling a "not" modifier.
func (c Condition) Negate() Condition {
	c.Not = !c.Not
	return c
}

func (c Condition) evaluate(d *pdata.Data) (bool, error) {
	actual, ok := d.GetPath(c.Path)
	result, err := evalOp(c.Operation, actual, ok, c.Value)
	if err != nil {
		return false, err
	}
	if c.Not {
		result = !result
	}
	return result, nil
}

func evalOp(op Operation, actual interface{}, present bool, expected interface{}) (bool, error) {
	switch op {
	case OpEqual:
		return present && compareEqual(actual, expected), nil
	case OpNotEqual:
		return !present || !compareEqual(actual, expected), nil
	case OpGreater:
		return present && compareOrdered(actual, expected) > 0, nil
	case OpLess:
		return present && compareOrdered(actual, expected) < 0, nil
	case OpContains:
		return present && containsValue(actual, expected), nil
	case OpAny:
		return present && anyMatch(actual, expected), nil
	case OpAll:
		return present && allMatch(actual, expected), nil
	default:
		return false, fmt.Errorf("pdatabase: unknown operation %q", op)
	}
}

func compareEqual(a, b interface{}) bool {
	return reflect.DeepEqual(a, b)
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

func compareOrdered(a, b interface{}) int {
	af, aok := toFloat(a)
	bf, bok := toFloat(b)
	if aok && bok {
		switch {
		case af < bf:
			return -1
		case af > bf:
			return 1
		default:
			return 0
		}
	}
	as, aok := a.(string)
	bs, bok := b.(string)
	if aok && bok {
		switch {
		case as < bs:
			return -1
		case as > bs:
			return 1
		default:
			return 0
		}
	}
	return 0
}

func toElems(v interface{}) ([]interface{}, bool) {
	switch t := v.(type) {
	case pdata.Set:
		return []interface{}(t), true
	case []interface{}:
		return t, true
	default:
		return nil, false
	}
}

func containsValue(haystack, needle interface{}) bool {
	elems, ok := toElems(haystack)
	if !ok {
		return false
	}
	for _, e := range elems {
		if compareEqual(e, needle) {
			return true
		}
	}
	return false
}

func anyMatch(actual, expected interface{}) bool {
	actuals, ok := toElems(actual)
	if !ok {
		return false
	}
	expecteds, ok := toElems(expected)
	if !ok {
		expecteds = []interface{}{expected}
	}
	for _, a := range actuals {
		for _, e := range expecteds {
			if compareEqual(a, e) {
				return true
			}
		}
	}
	return false
}

func allMatch(actual, expected interface{}) bool {
	expecteds, ok := toElems(expected)
	if !ok {
		expecteds = []interface{}{expected}
	}
	actuals, ok := toElems(actual)
	if !ok {
		return false
	}
	for _, e := range expecteds {
		found := false
		for _, a := range actuals {
			if compareEqual(a, e) {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

// Conjunction combines conditions with "and" (default) or "or" semantics.
type Conjunction int

const (
	ConjunctionAnd Conjunction = iota
	ConjunctionOr
)

// Foreign stages another database's query results into a record before
// evaluation, at Path (or merged into the record at the root if Path is
// nil), implementing cross-database join resolution.
type Foreign struct {
	Path pdata.FieldPath
	Data *pdata.Data
}

// Query holds output projection, conditions, and foreign-data joins.
type Query struct {
	Outputs     []pdata.FieldPath
	Conditions  []Condition
	Conjunction Conjunction
	Foreign     []Foreign
}

// Select starts a query restricted to the given output field paths ("" for
// all fields).
func Select(paths ...string) Query {
	q := Query{}
	for _, p := range paths {
		q.Outputs = append(q.Outputs, pdata.ParseFieldPath(p))
	}
	return q
}

// Where appends a condition, ANDed (or ORed, if q.Conjunction is
// ConjunctionOr) with any existing conditions.
func (q Query) Where(c Condition) Query {
	q.Conditions = append(q.Conditions, c)
	return q
}

// Join stages sub against a foreign path, to be merged into candidate
// records before evaluation.
func (q Query) Join(path string, sub *pdata.Data) Query {
	var fp pdata.FieldPath
	if path != "" {
		fp = pdata.ParseFieldPath(path)
	}
	q.Foreign = append(q.Foreign, Foreign{Path: fp, Data: sub})
	return q
}

// Evaluate fills in foreign data, evaluates every condition against record,
// and returns the (possibly foreign-enriched) record, projected onto the
// output paths, if it passes, else nil.
func (q Query) Evaluate(ctx context.Context, record *pdata.Data) (*pdata.Data, error) {
	working := record
	for _, f := range q.Foreign {
		if f.Path == nil {
			working.Update(f.Data)
		} else {
			working.SetPath(f.Path, f.Data)
		}
	}

	if len(q.Conditions) == 0 {
		return q.project(working), nil
	}

	matchAnd := q.Conjunction != ConjunctionOr
	for _, c := range q.Conditions {
		ok, err := c.evaluate(working)
		if err != nil {
			return nil, err
		}
		if matchAnd && !ok {
			return nil, nil
		}
		if !matchAnd && ok {
			return q.project(working), nil
		}
	}
	if !matchAnd {
		return nil, nil
	}
	return q.project(working), nil
}

func (q Query) project(record *pdata.Data) *pdata.Data {
	if len(q.Outputs) == 0 {
		return record
	}
	out := pdata.New(nil)
	for _, path := range q.Outputs {
		if len(path) == 0 {
			return record
		}
		if v, ok := record.GetPath(path); ok {
			out.SetPath(path, v)
		}
	}
	return out
}
