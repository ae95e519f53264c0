// Package graph resolves manifests into a single, validated dependency graph
// of projects, targets and external frameworks.
//
// # Why Graph Package Exists
//
// A manifest only describes one project. Targets reference targets in the
// same project, targets in projects at other paths, and prebuilt frameworks.
// The resolver follows those references transitively, loads every project it
// reaches exactly once, and checks that the result is a DAG before the
// generator ever sees it.
//
// # Identity
//
// Projects are identified by their absolute directory. The resolver keeps
// arenas (projects, targets, externals) indexed by that identity, so two
// targets that depend on the same project path share one *ProjectNode and
// one *manifest.Project instance:
//
//	Workspace.hcl ──► App ──┬──► Kit ──► Core
//	                        └──────────► Core   (same node as above)
//
// # Algorithm
//
//  1. **Load** the root manifest (Workspace or Project) and, when present,
//     the Config manifest next to it.
//  2. **Discover** projects breadth-first from a FIFO work-list, following
//     project dependencies in declared order.
//  3. **Link** every dependency to a target or external node, walking
//     projects in discovery order, targets and dependencies in declared order.
//  4. **Validate** the Target -> Target subgraph with a three-color DFS
//     (internal/dag). External frameworks are leaves and never take part.
//
// Identical manifests always produce identical arenas and edge lists.
package graph
