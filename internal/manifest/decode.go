package manifest

import (
	"fmt"
	"path/filepath"
	"strings"
)

// Decode maps a Document into the typed object for kind: *Project,
// *Workspace or *Config. Decoding stops at the first invalid field.
func Decode(doc *Document, kind Kind) (any, error) {
	if doc == nil || doc.Root == nil {
		return nil, &RuntimeError{Path: pathOf(doc), Reason: "manifest produced no value"}
	}
	if doc.Kind != kind {
		return nil, &RuntimeError{
			Path:   doc.Path,
			Reason: fmt.Sprintf("expected a %s block, found a %s block", kind, doc.Kind),
		}
	}
	switch kind {
	case KindProject:
		return DecodeProject(doc)
	case KindWorkspace:
		return DecodeWorkspace(doc)
	case KindConfig:
		return DecodeConfig(doc)
	default:
		return nil, &RuntimeError{Path: doc.Path, Reason: fmt.Sprintf("unsupported manifest kind %s", kind)}
	}
}

// DecodeProject decodes a project Document.
func DecodeProject(doc *Document) (*Project, error) {
	d := &decoder{path: doc.Path}
	root := doc.Root

	name, err := d.requiredString(root, "", "name")
	if err != nil {
		return nil, err
	}
	p := &Project{Name: name, Path: filepath.Dir(doc.Path)}

	if p.Settings, err = d.settings(root, "", "settings"); err != nil {
		return nil, err
	}

	targets, err := d.mappings(root, "", "targets")
	if err != nil {
		return nil, err
	}
	seen := make(map[string]struct{}, len(targets))
	for i, tv := range targets {
		field := indexed("targets", i)
		t, err := d.target(tv, field)
		if err != nil {
			return nil, err
		}
		if _, dup := seen[t.Name]; dup {
			return nil, d.fail(join(field, "name"), "unique target name")
		}
		seen[t.Name] = struct{}{}
		p.Targets = append(p.Targets, t)
	}

	if p.Schemes, err = d.schemes(root, ""); err != nil {
		return nil, err
	}
	return p, nil
}

// DecodeWorkspace decodes a workspace Document.
func DecodeWorkspace(doc *Document) (*Workspace, error) {
	d := &decoder{path: doc.Path}
	root := doc.Root

	name, err := d.requiredString(root, "", "name")
	if err != nil {
		return nil, err
	}
	w := &Workspace{Name: name, Path: filepath.Dir(doc.Path)}
	if w.Projects, err = d.stringList(root, "", "projects"); err != nil {
		return nil, err
	}
	if w.Schemes, err = d.schemes(root, ""); err != nil {
		return nil, err
	}
	return w, nil
}

// DecodeConfig decodes a config Document.
func DecodeConfig(doc *Document) (*Config, error) {
	d := &decoder{path: doc.Path}
	root := doc.Root

	c := &Config{Path: filepath.Dir(doc.Path)}
	var err error
	if c.RequiredVersion, err = d.optionalString(root, "", "required_version"); err != nil {
		return nil, err
	}
	if c.ProjectName, err = d.optionalString(root, "", "project_name"); err != nil {
		return nil, err
	}
	return c, nil
}

type decoder struct {
	path string
}

func (d *decoder) fail(field, expected string) error {
	return &DecodeError{Path: d.path, Field: field, Expected: expected}
}

func (d *decoder) target(v *Value, field string) (*Target, error) {
	if v.Kind != ValueMapping {
		return nil, d.fail(field, "target block")
	}
	t := &Target{}
	var err error
	if t.Name, err = d.requiredString(v, field, "name"); err != nil {
		return nil, err
	}
	if t.Platform, err = enum(d, v, field, "platform", Platforms); err != nil {
		return nil, err
	}
	if t.Product, err = enum(d, v, field, "product", Products); err != nil {
		return nil, err
	}
	if t.BundleID, err = d.requiredString(v, field, "bundle_id"); err != nil {
		return nil, err
	}
	if t.InfoPlist, err = d.optionalString(v, field, "info_plist"); err != nil {
		return nil, err
	}

	phases, err := d.mappings(v, field, "build_phases")
	if err != nil {
		return nil, err
	}
	for i, pv := range phases {
		phase, err := d.buildPhase(pv, indexed(join(field, "build_phases"), i))
		if err != nil {
			return nil, err
		}
		t.BuildPhases = append(t.BuildPhases, phase)
	}

	deps, err := d.mappings(v, field, "dependencies")
	if err != nil {
		return nil, err
	}
	for i, dv := range deps {
		dep, err := d.dependency(dv, indexed(join(field, "dependencies"), i))
		if err != nil {
			return nil, err
		}
		t.Dependencies = append(t.Dependencies, dep)
	}

	if t.Settings, err = d.settings(v, field, "settings"); err != nil {
		return nil, err
	}
	return t, nil
}

func (d *decoder) buildPhase(v *Value, field string) (*BuildPhase, error) {
	kind, err := enum(d, v, field, "kind", PhaseKinds)
	if err != nil {
		return nil, err
	}
	p := &BuildPhase{Kind: kind}

	switch kind {
	case PhaseHeaders:
		if p.Public, err = d.stringList(v, field, "public"); err != nil {
			return nil, err
		}
		if p.Private, err = d.stringList(v, field, "private"); err != nil {
			return nil, err
		}
		if p.Project, err = d.stringList(v, field, "project"); err != nil {
			return nil, err
		}
	case PhaseScript:
		if p.Script, err = d.requiredString(v, field, "script"); err != nil {
			return nil, err
		}
		if p.Name, err = d.optionalString(v, field, "name"); err != nil {
			return nil, err
		}
		if p.Name == "" {
			p.Name = "Run Script"
		}
		position, err := enum(d, v, field, "position", []string{"pre", "post"}, "post")
		if err != nil {
			return nil, err
		}
		p.Position = position
	default:
		if p.Files, err = d.stringList(v, field, "files"); err != nil {
			return nil, err
		}
		if kind == PhaseCopyFiles {
			if p.Destination, err = d.optionalString(v, field, "destination"); err != nil {
				return nil, err
			}
		}
	}
	return p, nil
}

func (d *decoder) dependency(v *Value, field string) (Dependency, error) {
	const expected = "exactly one of target, project with target, or framework"
	if v.Kind != ValueMapping {
		return Dependency{}, d.fail(field, "dependency block")
	}
	target, err := d.optionalString(v, field, "target")
	if err != nil {
		return Dependency{}, err
	}
	project, err := d.optionalString(v, field, "project")
	if err != nil {
		return Dependency{}, err
	}
	framework, err := d.optionalString(v, field, "framework")
	if err != nil {
		return Dependency{}, err
	}

	switch {
	case framework != "" && target == "" && project == "":
		return FrameworkDependency(framework), nil
	case project != "" && framework == "":
		if target == "" {
			return Dependency{}, d.fail(join(field, "target"), "non-empty string")
		}
		return ProjectDependency(project, target), nil
	case target != "" && framework == "":
		return TargetDependency(target), nil
	default:
		return Dependency{}, d.fail(field, expected)
	}
}

func (d *decoder) schemes(v *Value, parent string) ([]*Scheme, error) {
	values, err := d.mappings(v, parent, "schemes")
	if err != nil {
		return nil, err
	}
	schemes := make([]*Scheme, 0, len(values))
	seen := make(map[string]struct{}, len(values))
	for i, sv := range values {
		field := indexed(join(parent, "schemes"), i)
		s := &Scheme{}
		if s.Name, err = d.requiredString(sv, field, "name"); err != nil {
			return nil, err
		}
		// The name becomes a file name inside the bundle.
		if !validFileName(s.Name) {
			return nil, d.fail(join(field, "name"), "scheme name without path separators")
		}
		if _, dup := seen[s.Name]; dup {
			return nil, d.fail(join(field, "name"), "unique scheme name")
		}
		seen[s.Name] = struct{}{}
		if s.Shared, err = d.optionalBool(sv, field, "shared", true); err != nil {
			return nil, err
		}
		action, err := d.mapping(sv, field, "build_action")
		if err != nil {
			return nil, err
		}
		if action != nil {
			targets, err := d.stringList(action, join(field, "build_action"), "targets")
			if err != nil {
				return nil, err
			}
			s.BuildAction = &BuildAction{Targets: targets}
		}
		schemes = append(schemes, s)
	}
	return schemes, nil
}

func (d *decoder) settings(v *Value, parent, key string) (*Settings, error) {
	sv, err := d.mapping(v, parent, key)
	if err != nil || sv == nil {
		return nil, err
	}
	field := join(parent, key)
	s := &Settings{
		Base:           map[string]SettingValue{},
		Configurations: map[string]map[string]SettingValue{},
	}

	base, err := d.mapping(sv, field, "base")
	if err != nil {
		return nil, err
	}
	if base != nil {
		if s.Base, err = d.settingValues(base, join(field, "base"), ""); err != nil {
			return nil, err
		}
	}

	configs, err := d.mappings(sv, field, "configurations")
	if err != nil {
		return nil, err
	}
	for i, cv := range configs {
		cfield := indexed(join(field, "configurations"), i)
		name, err := d.requiredString(cv, cfield, "name")
		if err != nil {
			return nil, err
		}
		values, err := d.settingValues(cv, cfield, "name")
		if err != nil {
			return nil, err
		}
		s.Configurations[name] = values
	}

	if s.Replace, err = d.stringList(sv, field, "replace"); err != nil {
		return nil, err
	}
	return s, nil
}

// settingValues decodes every key of m except skip into build settings.
func (d *decoder) settingValues(m *Value, field, skip string) (map[string]SettingValue, error) {
	out := make(map[string]SettingValue, len(m.Fields))
	for _, f := range m.Fields {
		if f.Key == skip {
			continue
		}
		if f.Value.Kind == ValueSequence {
			items := make([]string, 0, len(f.Value.Items))
			for _, item := range f.Value.Items {
				s, ok := scalarText(item)
				if !ok {
					return nil, d.fail(join(field, f.Key), "list of scalars")
				}
				items = append(items, s)
			}
			out[f.Key] = List(items...)
			continue
		}
		s, ok := scalarText(f.Value)
		if !ok {
			return nil, d.fail(join(field, f.Key), "string or list of strings")
		}
		out[f.Key] = Scalar(s)
	}
	return out, nil
}

func scalarText(v *Value) (string, bool) {
	switch v.Kind {
	case ValueString, ValueNumber:
		return v.Str, true
	case ValueBool:
		if v.Bool {
			return "YES", true
		}
		return "NO", true
	default:
		return "", false
	}
}

func validFileName(name string) bool {
	return name != "" && name != "." && name != ".." && !strings.ContainsAny(name, `/\`)
}

func (d *decoder) requiredString(m *Value, parent, key string) (string, error) {
	v := m.Get(key)
	if v == nil || v.Kind != ValueString || v.Str == "" {
		return "", d.fail(join(parent, key), "non-empty string")
	}
	return v.Str, nil
}

func (d *decoder) optionalString(m *Value, parent, key string) (string, error) {
	v := m.Get(key)
	if v == nil {
		return "", nil
	}
	if v.Kind != ValueString {
		return "", d.fail(join(parent, key), "string")
	}
	return v.Str, nil
}

func (d *decoder) optionalBool(m *Value, parent, key string, def bool) (bool, error) {
	v := m.Get(key)
	if v == nil {
		return def, nil
	}
	if v.Kind != ValueBool {
		return false, d.fail(join(parent, key), "bool")
	}
	return v.Bool, nil
}

func (d *decoder) stringList(m *Value, parent, key string) ([]string, error) {
	v := m.Get(key)
	if v == nil {
		return nil, nil
	}
	field := join(parent, key)
	if v.Kind != ValueSequence {
		return nil, d.fail(field, "list of strings")
	}
	out := make([]string, 0, len(v.Items))
	for i, item := range v.Items {
		if item.Kind != ValueString {
			return nil, d.fail(indexed(field, i), "string")
		}
		out = append(out, item.Str)
	}
	return out, nil
}

func (d *decoder) mapping(m *Value, parent, key string) (*Value, error) {
	v := m.Get(key)
	if v == nil {
		return nil, nil
	}
	if v.Kind != ValueMapping {
		return nil, d.fail(join(parent, key), "block")
	}
	return v, nil
}

func (d *decoder) mappings(m *Value, parent, key string) ([]*Value, error) {
	v := m.Get(key)
	if v == nil {
		return nil, nil
	}
	field := join(parent, key)
	if v.Kind != ValueSequence {
		return nil, d.fail(field, "list of blocks")
	}
	for i, item := range v.Items {
		if item.Kind != ValueMapping {
			return nil, d.fail(indexed(field, i), "block")
		}
	}
	return v.Items, nil
}

// enum decodes a closed-vocabulary field. With a default the field is optional.
func enum[T ~string](d *decoder, m *Value, parent, key string, allowed []T, def ...T) (T, error) {
	field := join(parent, key)
	v := m.Get(key)
	if v == nil && len(def) > 0 {
		return def[0], nil
	}
	if v == nil || v.Kind != ValueString {
		return "", d.fail(field, "string")
	}
	for _, a := range allowed {
		if string(a) == v.Str {
			return a, nil
		}
	}
	names := make([]string, len(allowed))
	for i, a := range allowed {
		names[i] = string(a)
	}
	return "", &UnknownEnumValueError{Path: d.path, Field: field, Value: v.Str, Allowed: names}
}

func join(parent, key string) string {
	if parent == "" {
		return key
	}
	return parent + "." + key
}

func indexed(field string, i int) string {
	return fmt.Sprintf("%s[%d]", field, i)
}

func pathOf(doc *Document) string {
	if doc == nil {
		return ""
	}
	return doc.Path
}
