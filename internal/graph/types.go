package graph

import (
	"fmt"

	"github.com/vk/xcbuddy/internal/dag"
	"github.com/vk/xcbuddy/internal/manifest"
)

// TargetRef identifies a target across projects.
type TargetRef struct {
	// ProjectPath is the absolute directory of the owning project.
	ProjectPath string
	// ProjectName is the owning project's declared name.
	ProjectName string
	// Name is the target name.
	Name string
}

// String renders the reference as "Project/Target".
func (r TargetRef) String() string {
	return r.ProjectName + "/" + r.Name
}

func (r TargetRef) key() string {
	return r.ProjectPath + "::" + r.Name
}

// ProjectNode is a project in the project arena.
type ProjectNode struct {
	Index   int
	Project *manifest.Project
	// Targets holds indices into the target arena, in declared order.
	Targets []int
}

// TargetNode is a target in the target arena.
type TargetNode struct {
	Index   int
	Ref     TargetRef
	Project int
	Target  *manifest.Target
}

// ExternalNode is a prebuilt framework. It is always a leaf.
type ExternalNode struct {
	Index int
	// Path is the absolute, cleaned framework path.
	Path string
}

// EdgeKind tells which arena an Edge points into.
type EdgeKind int

const (
	EdgeTarget EdgeKind = iota + 1
	EdgeExternal
)

// Edge is a dependency from a target to another target or an external node.
type Edge struct {
	Kind EdgeKind
	// From is an index into the target arena.
	From int
	// To is an index into the target arena for EdgeTarget, or into the
	// external arena for EdgeExternal.
	To int
}

// Graph is the resolved, acyclic dependency graph.
type Graph struct {
	// Root is the absolute directory the graph was resolved from.
	Root string
	// RootKind is manifest.KindWorkspace or manifest.KindProject.
	RootKind manifest.Kind
	// Workspace is set when the root is a workspace.
	Workspace *manifest.Workspace
	// Config is set when a Config manifest sits next to the root manifest.
	Config *manifest.Config

	Projects  []*ProjectNode
	Targets   []*TargetNode
	Externals []*ExternalNode
	Edges     []Edge

	projectIndex  map[string]int
	targetIndex   map[string]int
	externalIndex map[string]int
	edgeSet       map[Edge]struct{}
	dag           *dag.Graph
}

func newGraph(root string) *Graph {
	return &Graph{
		Root:          root,
		projectIndex:  make(map[string]int),
		targetIndex:   make(map[string]int),
		externalIndex: make(map[string]int),
		edgeSet:       make(map[Edge]struct{}),
		dag:           dag.New(),
	}
}

// Project returns the project node for an absolute directory, or nil.
func (g *Graph) Project(path string) *ProjectNode {
	idx, ok := g.projectIndex[path]
	if !ok {
		return nil
	}
	return g.Projects[idx]
}

// Target looks a target up by owning project directory and name.
func (g *Graph) Target(projectPath, name string) *TargetNode {
	idx, ok := g.targetIndex[TargetRef{ProjectPath: projectPath, Name: name}.key()]
	if !ok {
		return nil
	}
	return g.Targets[idx]
}

// DependenciesOf returns the outgoing edges of a target in declared order.
func (g *Graph) DependenciesOf(target int) []Edge {
	var out []Edge
	for _, e := range g.Edges {
		if e.From == target {
			out = append(out, e)
		}
	}
	return out
}

// RootProject returns the root project, or nil when the root is a workspace.
func (g *Graph) RootProject() *ProjectNode {
	if g.RootKind != manifest.KindProject {
		return nil
	}
	return g.Project(g.Root)
}

// BuildOrder returns every target ordered so that dependencies come before
// the targets that depend on them. The order is deterministic.
func (g *Graph) BuildOrder() ([]*TargetNode, error) {
	keys, err := g.dag.TopologicalSort()
	if err != nil {
		return nil, fmt.Errorf("failed to order targets: %w", err)
	}
	out := make([]*TargetNode, 0, len(keys))
	for _, k := range keys {
		out = append(out, g.Targets[g.targetIndex[k]])
	}
	return out, nil
}

func (g *Graph) addProject(p *manifest.Project) *ProjectNode {
	if idx, ok := g.projectIndex[p.Path]; ok {
		return g.Projects[idx]
	}
	node := &ProjectNode{Index: len(g.Projects), Project: p}
	g.Projects = append(g.Projects, node)
	g.projectIndex[p.Path] = node.Index

	for _, t := range p.Targets {
		ref := TargetRef{ProjectPath: p.Path, ProjectName: p.Name, Name: t.Name}
		tn := &TargetNode{Index: len(g.Targets), Ref: ref, Project: node.Index, Target: t}
		g.Targets = append(g.Targets, tn)
		g.targetIndex[ref.key()] = tn.Index
		g.dag.AddNode(ref.key())
		node.Targets = append(node.Targets, tn.Index)
	}
	return node
}

func (g *Graph) addExternal(path string) *ExternalNode {
	if idx, ok := g.externalIndex[path]; ok {
		return g.Externals[idx]
	}
	node := &ExternalNode{Index: len(g.Externals), Path: path}
	g.Externals = append(g.Externals, node)
	g.externalIndex[path] = node.Index
	return node
}

func (g *Graph) addEdge(e Edge) error {
	if _, dup := g.edgeSet[e]; dup {
		return nil
	}
	g.edgeSet[e] = struct{}{}
	g.Edges = append(g.Edges, e)
	if e.Kind == EdgeTarget {
		return g.dag.AddEdge(g.Targets[e.From].Ref.key(), g.Targets[e.To].Ref.key())
	}
	return nil
}

func (g *Graph) refForKey(key string) TargetRef {
	return g.Targets[g.targetIndex[key]].Ref
}
