package manifest

import (
	"fmt"
	"strings"
)

// Platform is the closed set of platforms a target can be built for.
type Platform string

const (
	PlatformIOS     Platform = "ios"
	PlatformMacOS   Platform = "macos"
	PlatformTVOS    Platform = "tvos"
	PlatformWatchOS Platform = "watchos"
)

// Platforms lists every accepted platform value.
var Platforms = []Platform{PlatformIOS, PlatformMacOS, PlatformTVOS, PlatformWatchOS}

// Product is the closed set of product types a target can produce.
type Product string

const (
	ProductApp       Product = "app"
	ProductFramework Product = "framework"
	ProductLibrary   Product = "library"
	ProductUnitTests Product = "unit_tests"
	ProductUITests   Product = "ui_tests"
)

// Products lists every accepted product value.
var Products = []Product{ProductApp, ProductFramework, ProductLibrary, ProductUnitTests, ProductUITests}

// IsTestBundle reports whether the product is a test bundle.
func (p Product) IsTestBundle() bool {
	return p == ProductUnitTests || p == ProductUITests
}

// Linkable reports whether targets depending on this product link against it.
func (p Product) Linkable() bool {
	return p == ProductFramework || p == ProductLibrary
}

// PhaseKind is the closed set of build phase kinds.
type PhaseKind string

const (
	PhaseSources    PhaseKind = "sources"
	PhaseResources  PhaseKind = "resources"
	PhaseHeaders    PhaseKind = "headers"
	PhaseFrameworks PhaseKind = "frameworks"
	PhaseCopyFiles  PhaseKind = "copy_files"
	PhaseScript     PhaseKind = "script"
)

// PhaseKinds lists every accepted build phase kind.
var PhaseKinds = []PhaseKind{PhaseSources, PhaseResources, PhaseHeaders, PhaseFrameworks, PhaseCopyFiles, PhaseScript}

// Project is a decoded Project manifest. Its identity is Path.
type Project struct {
	Name     string
	Path     string
	Targets  []*Target
	Schemes  []*Scheme
	Settings *Settings
}

// Target returns the target with the given name, or nil.
func (p *Project) Target(name string) *Target {
	for _, t := range p.Targets {
		if t.Name == name {
			return t
		}
	}
	return nil
}

// Target is a buildable unit within a project.
type Target struct {
	Name         string
	Platform     Platform
	Product      Product
	BundleID     string
	InfoPlist    string
	BuildPhases  []*BuildPhase
	Dependencies []Dependency
	Settings     *Settings
}

// BuildPhase is one ordered step of a target's build. Which fields are
// meaningful depends on Kind.
type BuildPhase struct {
	Kind PhaseKind
	// Files holds file patterns for sources, resources, frameworks and copy_files.
	Files []string
	// Public, Private and Project hold header patterns for headers phases.
	Public  []string
	Private []string
	Project []string
	// Name, Script and Position describe script phases. Position is "pre" or "post".
	Name     string
	Script   string
	Position string
	// Destination is the copy_files destination subfolder.
	Destination string
}

// DependencyKind tags the variant of a Dependency.
type DependencyKind int

const (
	DependencyTarget DependencyKind = iota + 1
	DependencyProject
	DependencyFramework
)

// Dependency is an unresolved reference from a target to another target in
// the same project, a target in the project at Path, or a prebuilt framework
// at Path.
type Dependency struct {
	Kind   DependencyKind
	Target string
	Path   string
}

// TargetDependency references a target of the same project.
func TargetDependency(name string) Dependency {
	return Dependency{Kind: DependencyTarget, Target: name}
}

// ProjectDependency references a target of the project at path.
func ProjectDependency(path, target string) Dependency {
	return Dependency{Kind: DependencyProject, Path: path, Target: target}
}

// FrameworkDependency references a prebuilt framework.
func FrameworkDependency(path string) Dependency {
	return Dependency{Kind: DependencyFramework, Path: path}
}

func (d Dependency) String() string {
	switch d.Kind {
	case DependencyTarget:
		return fmt.Sprintf("target %q", d.Target)
	case DependencyProject:
		return fmt.Sprintf("target %q of project %q", d.Target, d.Path)
	case DependencyFramework:
		return fmt.Sprintf("framework %q", d.Path)
	default:
		return "invalid dependency"
	}
}

// Scheme is a named build configuration referencing targets.
type Scheme struct {
	Name        string
	Shared      bool
	BuildAction *BuildAction
}

// BuildAction lists the targets a scheme builds, in order.
type BuildAction struct {
	Targets []string
}

// Workspace aggregates projects by path.
type Workspace struct {
	Name     string
	Path     string
	Projects []string
	Schemes  []*Scheme
}

// Config holds generation options declared in a Config manifest.
type Config struct {
	Path string
	// RequiredVersion is the minimum tool version, as a semantic version.
	RequiredVersion string
	// ProjectName is a text/template evaluated with the project to name the
	// generated bundle. Empty means the project name is used verbatim.
	ProjectName string
}

// Settings is one layer of build settings: base values plus per
// configuration overrides.
type Settings struct {
	Base           map[string]SettingValue
	Configurations map[string]map[string]SettingValue
	// Replace lists keys whose sequence values replace lower layers instead
	// of being appended to them.
	Replace []string
}

// Replaces reports whether key is marked to replace lower layers.
func (s *Settings) Replaces(key string) bool {
	if s == nil {
		return false
	}
	for _, k := range s.Replace {
		if k == key {
			return true
		}
	}
	return false
}

// SettingValue is a build setting: a scalar string or a sequence of strings.
type SettingValue struct {
	Scalar string
	List   []string
	IsList bool
}

// Scalar builds a scalar setting.
func Scalar(s string) SettingValue { return SettingValue{Scalar: s} }

// List builds a sequence setting.
func List(items ...string) SettingValue {
	if items == nil {
		items = []string{}
	}
	return SettingValue{List: items, IsList: true}
}

func (v SettingValue) String() string {
	if v.IsList {
		return strings.Join(v.List, " ")
	}
	return v.Scalar
}
