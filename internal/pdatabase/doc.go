// Package pdatabase implements Pioneer's document database: a NoSQL-flavored DatabaseClient layered directly on pstorage/pwrapper
// (insert/update/remove/get/merge/items/query/namespace), a small query
// engine evaluating lists of Conditions with foreign-data joins, and an index
// wrapper that materializes flattened field paths to narrow query scans.
//
// objectfs carries no document database, so this package is new code; its
// storage layout ("{storage}/database/{name}/._database.json" +
// "data/{key}") is built directly on internal/pstorage's Client/Header
// model, and the index wrapper's wrap-an-inner-plus-an-index shape is
// grounded on objectfs internal/cache.MultiLevelCache (an L1 wrapping an
// L2), substituting "index DatabaseClient" for "L2 cache".
package pdatabase
