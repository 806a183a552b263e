/*
Package pdata implements Pioneer's open-schema, mergeable record type
("Data"): a value tree of scalars, lists, sets and nested records,
field-path access, flatten/inflate round-tripping, and structural merge
driven by per-field merge strategies.

Data keeps its fields as plain Go values (scalars, Set, []interface{} and
nested *Data) keyed by name, in the order the keys were added; there is no
separate Value or Kind type. Schema is itself representable as a Data (self-hosting merge
strategy metadata), matching the source's uniform treatment of schema and
data.
*/
package pdata
