package dump

import (
	"fmt"
	"sort"

	"github.com/vk/xcbuddy/internal/manifest"
)

// Encode converts a decoded manifest object into a value tree. Empty
// optional fields are omitted; sequences a kind always declares are kept
// even when empty.
func Encode(obj any) (*manifest.Value, error) {
	switch m := obj.(type) {
	case *manifest.Project:
		return encodeProject(m), nil
	case *manifest.Workspace:
		return encodeWorkspace(m), nil
	case *manifest.Config:
		return encodeConfig(m), nil
	default:
		return nil, fmt.Errorf("cannot dump value of type %T", obj)
	}
}

type mapping struct{ v *manifest.Value }

func newMapping() mapping { return mapping{v: manifest.Mapping()} }

func (m mapping) set(key string, v *manifest.Value) mapping {
	m.v.Set(key, v)
	return m
}

func (m mapping) str(key, s string) mapping {
	if s != "" {
		m.v.Set(key, manifest.String(s))
	}
	return m
}

func (m mapping) strings(key string, items []string) mapping {
	if len(items) > 0 {
		m.v.Set(key, stringSeq(items))
	}
	return m
}

func stringSeq(items []string) *manifest.Value {
	seq := manifest.Sequence()
	for _, s := range items {
		seq.Items = append(seq.Items, manifest.String(s))
	}
	return seq
}

func encodeProject(p *manifest.Project) *manifest.Value {
	targets := manifest.Sequence()
	for _, t := range p.Targets {
		targets.Items = append(targets.Items, encodeTarget(t))
	}
	m := newMapping().
		str("name", p.Name).
		set("schemes", encodeSchemes(p.Schemes)).
		set("targets", targets)
	if s := encodeSettings(p.Settings); s != nil {
		m.set("settings", s)
	}
	return m.v
}

func encodeTarget(t *manifest.Target) *manifest.Value {
	m := newMapping().
		str("name", t.Name).
		str("platform", string(t.Platform)).
		str("product", string(t.Product)).
		str("bundle_id", t.BundleID).
		str("info_plist", t.InfoPlist)

	if len(t.BuildPhases) > 0 {
		phases := manifest.Sequence()
		for _, p := range t.BuildPhases {
			phases.Items = append(phases.Items, encodePhase(p))
		}
		m.set("build_phases", phases)
	}
	if len(t.Dependencies) > 0 {
		deps := manifest.Sequence()
		for _, d := range t.Dependencies {
			deps.Items = append(deps.Items, encodeDependency(d))
		}
		m.set("dependencies", deps)
	}
	if s := encodeSettings(t.Settings); s != nil {
		m.set("settings", s)
	}
	return m.v
}

func encodePhase(p *manifest.BuildPhase) *manifest.Value {
	m := newMapping().
		str("kind", string(p.Kind)).
		strings("files", p.Files).
		strings("public", p.Public).
		strings("private", p.Private).
		strings("project", p.Project).
		str("destination", p.Destination)
	if p.Kind == manifest.PhaseScript {
		m.str("name", p.Name).str("script", p.Script).str("position", p.Position)
	}
	return m.v
}

func encodeDependency(d manifest.Dependency) *manifest.Value {
	switch d.Kind {
	case manifest.DependencyProject:
		return newMapping().str("project", d.Path).str("target", d.Target).v
	case manifest.DependencyFramework:
		return newMapping().str("framework", d.Path).v
	default:
		return newMapping().str("target", d.Target).v
	}
}

func encodeSchemes(schemes []*manifest.Scheme) *manifest.Value {
	seq := manifest.Sequence()
	for _, s := range schemes {
		m := newMapping().str("name", s.Name).set("shared", manifest.Bool(s.Shared))
		if s.BuildAction != nil {
			m.set("build_action", newMapping().set("targets", stringSeq(s.BuildAction.Targets)).v)
		}
		seq.Items = append(seq.Items, m.v)
	}
	return seq
}

func encodeSettings(s *manifest.Settings) *manifest.Value {
	if s == nil {
		return nil
	}
	m := newMapping()
	if len(s.Base) > 0 {
		m.set("base", encodeSettingValues(s.Base))
	}
	if len(s.Configurations) > 0 {
		names := make([]string, 0, len(s.Configurations))
		for name := range s.Configurations {
			names = append(names, name)
		}
		sort.Strings(names)
		configs := manifest.Mapping()
		for _, name := range names {
			configs.Set(name, encodeSettingValues(s.Configurations[name]))
		}
		m.set("configurations", configs)
	}
	m.strings("replace", s.Replace)
	if len(m.v.Fields) == 0 {
		return nil
	}
	return m.v
}

func encodeSettingValues(values map[string]manifest.SettingValue) *manifest.Value {
	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	out := manifest.Mapping()
	for _, k := range keys {
		v := values[k]
		if v.IsList {
			out.Set(k, stringSeq(v.List))
		} else {
			out.Set(k, manifest.String(v.Scalar))
		}
	}
	return out
}

func encodeWorkspace(w *manifest.Workspace) *manifest.Value {
	return newMapping().
		str("name", w.Name).
		set("projects", stringSeq(w.Projects)).
		set("schemes", encodeSchemes(w.Schemes)).v
}

func encodeConfig(c *manifest.Config) *manifest.Value {
	return newMapping().
		str("required_version", c.RequiredVersion).
		str("project_name", c.ProjectName).v
}
