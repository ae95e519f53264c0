// Package dag provides a small directed graph with deterministic cycle
// detection and topological ordering. The graph resolver stores every
// Target -> Target dependency edge in it; node IDs are opaque strings.
package dag
