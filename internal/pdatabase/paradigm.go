package pdatabase

import (
	"context"
	"fmt"

	"github.com/pioneer-storage/pioneer/internal/pdata"
	"github.com/pioneer-storage/pioneer/internal/pstorage"
	pioneererrors "github.com/pioneer-storage/pioneer/pkg/errors"
)

// Paradigm names the database styles this layer supports: only NoSQL and
// Parameter are functional; the rest are reserved for a future engine and
// raise NotImplemented.
type Paradigm string

const (
	ParadigmNoSQL      Paradigm = "nosql"
	ParadigmParameter  Paradigm = "parameter"
	ParadigmRelational Paradigm = "relational"
	ParadigmTimeseries Paradigm = "timeseries"
	ParadigmGraph      Paradigm = "graph"
)

func notImplemented(paradigm Paradigm) error {
	return pioneererrors.NewError(pioneererrors.ErrCodeNotImplemented,
		fmt.Sprintf("pdatabase: paradigm %q is not implemented", paradigm))
}

// NoSQL is a thin typing over Client: the document-store paradigm is
// Client's native shape, so NoSQL adds no behavior of its own.
type NoSQL struct {
	*Client
}

// NewNoSQL opens name as a NoSQL-paradigm database.
func NewNoSQL(ctx context.Context, storage pstorage.Client, name string) (*NoSQL, error) {
	c, err := New(ctx, storage, name)
	if err != nil {
		return nil, err
	}
	return &NoSQL{Client: c}, nil
}

// Parameter stores a single (value, tags) pair per key: the value in the
// database itself, and tags in its "tags" sub-namespace, as two co-keyed
// records.
type Parameter struct {
	values *Client
	tags   *Client
}

// NewParameter builds a Parameter-paradigm database over values, keeping
// tags in its "tags" namespace.
func NewParameter(ctx context.Context, values *Client) *Parameter {
	return &Parameter{values: values, tags: values.Namespace("tags")}
}

// Set writes value and its tags for key, creating both records if absent
// or overwriting them if present.
func (p *Parameter) Set(ctx context.Context, key string, value *pdata.Data, tags *pdata.Data) error {
	if err := upsert(ctx, p.values, key, value); err != nil {
		return err
	}
	return upsert(ctx, p.tags, key, tags)
}

func upsert(ctx context.Context, c *Client, key string, value *pdata.Data) error {
	if exists, _ := c.storage.Exists(ctx, c.dataKey(key)); exists {
		return c.Update(ctx, key, value)
	}
	return c.Insert(ctx, key, value)
}

// Value reads key's value record.
func (p *Parameter) Value(ctx context.Context, key string) (*pdata.Data, error) {
	return p.values.Get(ctx, key)
}

// Tags reads key's tags record.
func (p *Parameter) Tags(ctx context.Context, key string) (*pdata.Data, error) {
	return p.tags.Get(ctx, key)
}

// Relational is reserved for a future relational engine; every operation
// raises NotImplemented.
type Relational struct{}

func (Relational) Query(context.Context, string) error { return notImplemented(ParadigmRelational) }

// Timeseries is reserved for a future time-series engine.
type Timeseries struct{}

func (Timeseries) Query(context.Context, string) error { return notImplemented(ParadigmTimeseries) }

// Graph is reserved for a future graph engine.
type Graph struct{}

func (Graph) Query(context.Context, string) error { return notImplemented(ParadigmGraph) }
