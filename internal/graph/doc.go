// Package graph holds the compiled, validated property graph.
//
// A Graph is produced by the compiler and is immutable: every accessor
// returns copies, so any number of goroutines may query one snapshot
// without synchronization. Recompiling produces a new Graph.
//
// Properties are addressed by PropertyID handles. Handles are dense and
// assigned in sorted-name order, so two compilations of the same
// declaration set yield identical handles regardless of input order.
//
// Consumers (serializers, validators) use the query methods in query.go.
// Unknown names yield an error matching ErrNotFound; nothing else fails.
package graph
