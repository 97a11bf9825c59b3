// Package source loads storm-event city graphs.
//
// Every backend implements [Source]: a Fetch either returns a complete,
// validated graph or an error, never a partial graph.
//
// # Backends
//
//   - [Kusto]: the Azure Data Explorer REST API (v1 query endpoint)
//   - [SQLite]: a local StormEvents table
//   - [Mongo]: a StormEvents collection, summarized by aggregation
//   - [File]: a JSON or YAML graph file, with change notifications
//
// The database backends run the same summary: one row per ordered pair of
// distinct begin/end locations with the number of storms between them,
// limited to [DefaultLimit] rows. [BuildGraph] turns those rows into a
// graph.
//
// # Caching
//
// [Cached] wraps any source with a [cache.Cache].
//
// [cache.Cache]: github.com/matzehuels/stormgraph/pkg/cache.Cache
package source
