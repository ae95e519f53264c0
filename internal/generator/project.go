package generator

import (
	"fmt"
	"path"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/vk/xcbuddy/internal/fsutil"
	"github.com/vk/xcbuddy/internal/graph"
	"github.com/vk/xcbuddy/internal/manifest"
	"github.com/vk/xcbuddy/internal/settings"
)

// bundle is one artifact directory, rendered in memory until it is written.
type bundle struct {
	// Path is the absolute path of the artifact directory.
	Path string
	// Files maps slash-separated paths inside the bundle to their content.
	Files map[string][]byte
}

// child is an entry of a group, sorted by name.
type child struct {
	name string
	ref  ref
}

// projectBuilder renders the project file of one project node.
type projectBuilder struct {
	g       *graph.Graph
	node    *graph.ProjectNode
	project *manifest.Project
	names   map[string]string
	ids     idSpace
	objs    *objectSet
	finder  *fsutil.Finder

	projectID ref
	groups    map[string]bool
	children  map[string][]child

	frameworks []child
	projects   []child
	products   []child
}

func newProjectBuilder(fsys fsutil.FileSystem, g *graph.Graph, node *graph.ProjectNode, names map[string]string) (*projectBuilder, error) {
	finder, err := fsutil.NewFinder(fsys, node.Project.Path)
	if err != nil {
		return nil, fmt.Errorf("project %s: %w", node.Project.Path, err)
	}
	b := &projectBuilder{
		g:        g,
		node:     node,
		project:  node.Project,
		names:    names,
		ids:      idSpace{scope: scopeOf(g, node.Project.Path)},
		objs:     newObjectSet(),
		finder:   finder,
		groups:   make(map[string]bool),
		children: make(map[string][]child),
	}
	b.projectID = ref(b.ids.id("PBXProject"))
	return b, nil
}

// build returns the content of project.pbxproj.
func (b *projectBuilder) build() ([]byte, error) {
	p := b.project
	configs := settings.Configurations(p)

	targets := make([]ref, 0, len(b.node.Targets))
	for _, ti := range b.node.Targets {
		r, err := b.target(b.g.Targets[ti], configs)
		if err != nil {
			return nil, err
		}
		targets = append(targets, r)
	}

	configList, err := b.configurationList("PBXProject", p.Name, configs, func(c string) (map[string]manifest.SettingValue, error) {
		return settings.ForProject(p, c)
	})
	if err != nil {
		return nil, err
	}

	mainGroup, productsGroup := b.groupTree()

	fields := dict{
		"attributes": dict{
			"BuildIndependentTargetsInParallel": "1",
			"LastUpgradeCheck":                  "1500",
		},
		"buildConfigurationList": configList,
		"compatibilityVersion":   "Xcode 14.0",
		"developmentRegion":      "en",
		"hasScannedForEncodings": "0",
		"knownRegions":           []string{"en", "Base"},
		"mainGroup":              mainGroup,
		"productRefGroup":        productsGroup,
		"projectDirPath":         "",
		"projectRoot":            "",
		"targets":                targets,
	}
	if len(b.projects) > 0 {
		refs := make([]any, 0, len(b.projects))
		for _, c := range sortChildren(b.projects) {
			refs = append(refs, dict{"ProjectRef": c})
		}
		fields["projectReferences"] = refs
	}
	b.objs.add(string(b.projectID), "PBXProject", "Project object", fields)

	return []byte(renderProjectFile(b.objs, b.projectID)), nil
}

func (b *projectBuilder) target(tn *graph.TargetNode, configs []string) (ref, error) {
	t := tn.Target
	info := products[t.Product]

	productName := productFileName(t)
	product := b.addTo(&b.products, b.ids.id("PBXFileReference", "<product>", t.Name), productName, dict{
		"explicitFileType": info.fileType,
		"includeInIndex":   "0",
		"path":             productName,
		"sourceTree":       "BUILT_PRODUCTS_DIR",
	})

	if t.InfoPlist != "" {
		if rel := filepath.ToSlash(filepath.Clean(t.InfoPlist)); !strings.HasPrefix(rel, "..") && !filepath.IsAbs(rel) {
			b.fileRef(rel)
		}
	}

	var deps, links []ref
	for _, e := range b.g.DependenciesOf(tn.Index) {
		switch e.Kind {
		case graph.EdgeTarget:
			dep := b.g.Targets[e.To]
			deps = append(deps, b.targetDependency(t, dep))
			if dep.Target.Product.Linkable() {
				links = append(links, b.builtProduct(dep))
			}
		case graph.EdgeExternal:
			links = append(links, b.externalFramework(b.g.Externals[e.To]))
		}
	}

	var phases []ref
	for i, ph := range orderPhases(t.BuildPhases, len(links) > 0) {
		var extra []ref
		if ph.Kind == manifest.PhaseFrameworks {
			extra, links = links, nil
		}
		r, err := b.phase(t, i, ph, extra)
		if err != nil {
			return "", err
		}
		phases = append(phases, r)
	}

	configList, err := b.configurationList("PBXNativeTarget", t.Name, configs, func(c string) (map[string]manifest.SettingValue, error) {
		return settings.ForTarget(b.project, t, c)
	})
	if err != nil {
		return "", err
	}

	return b.objs.add(b.ids.id("PBXNativeTarget", t.Name), "PBXNativeTarget", t.Name, dict{
		"buildConfigurationList": configList,
		"buildPhases":            phases,
		"buildRules":             []any{},
		"dependencies":           deps,
		"name":                   t.Name,
		"productName":            t.Name,
		"productReference":       product,
		"productType":            info.productType,
	}), nil
}

// targetDependency links from to dep. A target of another project is
// referenced through that project's file reference and the ID its own
// project file gives the target.
func (b *projectBuilder) targetDependency(from *manifest.Target, dep *graph.TargetNode) ref {
	name := dep.Target.Name
	if dep.Project == b.node.Index {
		targetID := b.ids.id("PBXNativeTarget", name)
		proxy := b.objs.add(b.ids.id("PBXContainerItemProxy", from.Name, targetID), "PBXContainerItemProxy", "PBXContainerItemProxy", dict{
			"containerPortal":      b.projectID,
			"proxyType":            "1",
			"remoteGlobalIDString": targetID,
			"remoteInfo":           name,
		})
		return b.objs.add(b.ids.id("PBXTargetDependency", from.Name, targetID), "PBXTargetDependency", "PBXTargetDependency", dict{
			"target":      ref(targetID),
			"targetProxy": proxy,
		})
	}

	other := b.g.Projects[dep.Project].Project
	remoteID := idSpace{scope: scopeOf(b.g, other.Path)}.id("PBXNativeTarget", name)
	proxy := b.objs.add(b.ids.id("PBXContainerItemProxy", from.Name, remoteID), "PBXContainerItemProxy", "PBXContainerItemProxy", dict{
		"containerPortal":      b.projectReference(other),
		"proxyType":            "1",
		"remoteGlobalIDString": remoteID,
		"remoteInfo":           name,
	})
	return b.objs.add(b.ids.id("PBXTargetDependency", from.Name, remoteID), "PBXTargetDependency", "PBXTargetDependency", dict{
		"name":        name,
		"targetProxy": proxy,
	})
}

func (b *projectBuilder) projectReference(other *manifest.Project) ref {
	bundleName := b.names[other.Path]
	rel := relPath(b.project.Path, filepath.Join(other.Path, bundleName))
	return b.addTo(&b.projects, b.ids.id("PBXFileReference", "<project>", rel), bundleName, dict{
		"lastKnownFileType": "wrapper.pb-project",
		"name":              bundleName,
		"path":              rel,
		"sourceTree":        "<group>",
	})
}

// builtProduct is the product of dep as seen from this project.
func (b *projectBuilder) builtProduct(dep *graph.TargetNode) ref {
	if dep.Project == b.node.Index {
		return ref(b.ids.id("PBXFileReference", "<product>", dep.Target.Name))
	}
	name := productFileName(dep.Target)
	scope := scopeOf(b.g, b.g.Projects[dep.Project].Project.Path)
	return b.addTo(&b.frameworks, b.ids.id("PBXFileReference", "<built>", scope, dep.Target.Name), name, dict{
		"explicitFileType": products[dep.Target.Product].fileType,
		"path":             name,
		"sourceTree":       "BUILT_PRODUCTS_DIR",
	})
}

func (b *projectBuilder) externalFramework(ext *graph.ExternalNode) ref {
	rel := relPath(b.project.Path, ext.Path)
	name := filepath.Base(ext.Path)
	return b.addTo(&b.frameworks, b.ids.id("PBXFileReference", "<external>", rel), name, dict{
		"lastKnownFileType": fileType(name),
		"name":              name,
		"path":              rel,
		"sourceTree":        "<group>",
	})
}

// addTo adds a file reference and lists it under a fixed group the first
// time it is seen.
func (b *projectBuilder) addTo(list *[]child, id, name string, fields dict) ref {
	if b.objs.get(ref(id)) == nil {
		*list = append(*list, child{name: name, ref: ref(id)})
	}
	return b.objs.add(id, "PBXFileReference", name, fields)
}

func (b *projectBuilder) phase(t *manifest.Target, index int, ph *manifest.BuildPhase, links []ref) (ref, error) {
	isa := phaseISA[ph.Kind]
	id := b.ids.id(isa, t.Name, strconv.Itoa(index))
	name := phaseName(ph)
	fields := dict{
		"buildActionMask":                    "2147483647",
		"runOnlyForDeploymentPostprocessing": "0",
	}

	if ph.Kind == manifest.PhaseScript {
		fields["name"] = ph.Name
		fields["shellPath"] = "/bin/sh"
		fields["shellScript"] = ph.Script
		fields["inputPaths"] = []string{}
		fields["outputPaths"] = []string{}
		fields["files"] = []ref{}
		return b.objs.add(id, isa, name, fields), nil
	}

	type group struct {
		patterns  []string
		attribute string
	}
	groups := []group{{patterns: ph.Files}}
	if ph.Kind == manifest.PhaseHeaders {
		groups = []group{
			{patterns: ph.Public, attribute: "Public"},
			{patterns: ph.Private, attribute: "Private"},
			{patterns: ph.Project},
		}
	}

	files := []ref{}
	seen := make(map[ref]bool)
	for _, grp := range groups {
		matches, err := b.finder.Find(grp.patterns)
		if err != nil {
			return "", fmt.Errorf("target %s: %w", t.Name, err)
		}
		for _, rel := range matches {
			fileRef := b.fileRef(rel)
			if seen[fileRef] {
				continue
			}
			seen[fileRef] = true
			files = append(files, b.buildFile(id, name, fileRef, grp.attribute))
		}
	}
	for _, link := range links {
		if seen[link] {
			continue
		}
		seen[link] = true
		files = append(files, b.buildFile(id, name, link, ""))
	}
	fields["files"] = files

	if ph.Kind == manifest.PhaseCopyFiles {
		if ph.Name != "" {
			fields["name"] = ph.Name
		}
		spec, ok := copyDestinations[strings.ToLower(strings.ReplaceAll(ph.Destination, " ", "_"))]
		if ok {
			fields["dstPath"] = ""
		} else {
			spec = copyDestinations["products"]
			fields["dstPath"] = ph.Destination
		}
		fields["dstSubfolderSpec"] = spec
	}
	return b.objs.add(id, isa, name, fields), nil
}

func (b *projectBuilder) buildFile(phaseID, phaseName string, fileRef ref, attribute string) ref {
	fields := dict{"fileRef": fileRef}
	if attribute != "" {
		fields["settings"] = dict{"ATTRIBUTES": []string{attribute}}
	}
	comment := phaseName
	if o := b.objs.get(fileRef); o != nil {
		comment = o.comment + " in " + phaseName
	}
	return b.objs.add(b.ids.id("PBXBuildFile", phaseID, string(fileRef)), "PBXBuildFile", comment, fields)
}

// fileRef returns the reference of a file relative to the project
// directory, creating the groups that lead to it.
func (b *projectBuilder) fileRef(rel string) ref {
	id := b.ids.id("PBXFileReference", rel)
	if b.objs.get(ref(id)) != nil {
		return ref(id)
	}
	dir, name := parentDir(rel), path.Base(rel)
	b.ensureGroup(dir)
	r := b.objs.add(id, "PBXFileReference", name, dict{
		"lastKnownFileType": fileType(name),
		"path":              name,
		"sourceTree":        "<group>",
	})
	b.children[dir] = append(b.children[dir], child{name: name, ref: r})
	return r
}

func (b *projectBuilder) ensureGroup(dir string) {
	if dir == "" || b.groups[dir] {
		return
	}
	b.groups[dir] = true
	parent := parentDir(dir)
	b.ensureGroup(parent)
	b.children[parent] = append(b.children[parent], child{name: path.Base(dir), ref: ref(b.ids.id("PBXGroup", dir))})
}

// groupTree adds the group objects and returns the main and products groups.
func (b *projectBuilder) groupTree() (ref, ref) {
	for dir := range b.groups {
		name := path.Base(dir)
		b.objs.add(b.ids.id("PBXGroup", dir), "PBXGroup", name, dict{
			"children":   sortChildren(b.children[dir]),
			"path":       name,
			"sourceTree": "<group>",
		})
	}

	top := sortChildren(b.children[""])
	named := func(key, name string, children []child) ref {
		return b.objs.add(b.ids.id("PBXGroup", key), "PBXGroup", name, dict{
			"children":   sortChildren(children),
			"name":       name,
			"sourceTree": "<group>",
		})
	}
	if len(b.frameworks) > 0 {
		top = append(top, named("<frameworks>", "Frameworks", b.frameworks))
	}
	if len(b.projects) > 0 {
		top = append(top, named("<projects>", "Projects", b.projects))
	}
	productsGroup := named("<products>", "Products", b.products)
	top = append(top, productsGroup)

	mainGroup := b.objs.add(b.ids.id("PBXGroup", "<main>"), "PBXGroup", "", dict{
		"children":   top,
		"sourceTree": "<group>",
	})
	return mainGroup, productsGroup
}

// configurationList adds one build configuration per name plus the list
// that owns them.
func (b *projectBuilder) configurationList(isa, owner string, configs []string, resolve func(string) (map[string]manifest.SettingValue, error)) (ref, error) {
	refs := make([]ref, 0, len(configs))
	for _, c := range configs {
		values, err := resolve(c)
		if err != nil {
			return "", fmt.Errorf("failed to resolve %s settings of %s in %s: %w", c, owner, b.project.Path, err)
		}
		buildSettings := make(dict, len(values))
		for _, k := range settings.Keys(values) {
			v := values[k]
			if v.IsList {
				buildSettings[k] = append([]string{}, v.List...)
			} else {
				buildSettings[k] = v.Scalar
			}
		}
		refs = append(refs, b.objs.add(b.ids.id("XCBuildConfiguration", isa, owner, c), "XCBuildConfiguration", c, dict{
			"buildSettings": buildSettings,
			"name":          c,
		}))
	}
	return b.objs.add(b.ids.id("XCConfigurationList", isa, owner), "XCConfigurationList",
		fmt.Sprintf("Build configuration list for %s %q", isa, owner), dict{
			"buildConfigurations":           refs,
			"defaultConfigurationIsVisible": "0",
			"defaultConfigurationName":      "Release",
		}), nil
}

func sortChildren(children []child) []ref {
	sorted := append([]child{}, children...)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].name != sorted[j].name {
			return sorted[i].name < sorted[j].name
		}
		return sorted[i].ref < sorted[j].ref
	})
	refs := make([]ref, len(sorted))
	for i, c := range sorted {
		refs[i] = c.ref
	}
	return refs
}

func parentDir(rel string) string {
	dir := path.Dir(rel)
	if dir == "." {
		return ""
	}
	return dir
}

// relPath is target relative to base in slash form, or target itself when
// no relative path exists.
func relPath(base, target string) string {
	rel, err := filepath.Rel(base, target)
	if err != nil {
		return filepath.ToSlash(target)
	}
	return filepath.ToSlash(rel)
}
