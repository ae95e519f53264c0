package generator

import (
	"regexp"
	"sort"
	"strings"
)

// The project file is an OpenStep property list. Values are one of:
// string, ref, []any or dict.

// ref is a reference to another object. It renders as the object ID
// followed by the object's comment.
type ref string

// dict is an ordered set of keys. Keys are written sorted with "isa" first.
type dict map[string]any

// object is one entry of the top-level objects dictionary.
type object struct {
	id      string
	isa     string
	comment string
	fields  dict
}

// objectSet collects the objects of one project file.
type objectSet struct {
	objects map[string]*object
}

func newObjectSet() *objectSet {
	return &objectSet{objects: make(map[string]*object)}
}

// add registers an object. Adding the same ID twice keeps the first
// object, so shared references can be added from several places.
func (s *objectSet) add(id, isa, comment string, fields dict) ref {
	if _, ok := s.objects[id]; !ok {
		s.objects[id] = &object{id: id, isa: isa, comment: comment, fields: fields}
	}
	return ref(id)
}

func (s *objectSet) get(id ref) *object {
	return s.objects[string(id)]
}

var unquoted = regexp.MustCompile(`^[A-Za-z0-9_$./]+$`)

// quote renders a plist string, quoting it unless it is a bare word.
func quote(s string) string {
	if s != "" && unquoted.MatchString(s) && !strings.Contains(s, "//") && !strings.Contains(s, "___") {
		return s
	}
	var b strings.Builder
	b.WriteByte('"')
	for _, r := range s {
		switch r {
		case '"':
			b.WriteString(`\"`)
		case '\\':
			b.WriteString(`\\`)
		case '\n':
			b.WriteString(`\n`)
		case '\t':
			b.WriteString(`\t`)
		default:
			b.WriteRune(r)
		}
	}
	b.WriteByte('"')
	return b.String()
}

// plistWriter serializes an objectSet in the layout Xcode writes: objects
// grouped in sections by isa, sections and objects sorted.
type plistWriter struct {
	b    strings.Builder
	objs *objectSet
}

func renderProjectFile(objs *objectSet, root ref) string {
	w := &plistWriter{objs: objs}
	w.line(0, "// !$*UTF8*$!")
	w.line(0, "{")
	w.line(1, "archiveVersion = 1;")
	w.line(1, "classes = {")
	w.line(1, "};")
	w.line(1, "objectVersion = 56;")
	w.line(1, "objects = {")

	byISA := make(map[string][]*object)
	for _, o := range objs.objects {
		byISA[o.isa] = append(byISA[o.isa], o)
	}
	isas := make([]string, 0, len(byISA))
	for isa := range byISA {
		isas = append(isas, isa)
	}
	sort.Strings(isas)

	for _, isa := range isas {
		list := byISA[isa]
		sort.Slice(list, func(i, j int) bool { return list[i].id < list[j].id })

		w.b.WriteString("\n")
		w.line(0, "/* Begin "+isa+" section */")
		for _, o := range list {
			w.object(o)
		}
		w.line(0, "/* End "+isa+" section */")
	}

	w.line(1, "};")
	w.line(1, "rootObject = "+w.ref(root)+";")
	w.line(0, "}")
	return w.b.String()
}

func (w *plistWriter) line(indent int, s string) {
	w.b.WriteString(strings.Repeat("\t", indent))
	w.b.WriteString(s)
	w.b.WriteString("\n")
}

func (w *plistWriter) ref(r ref) string {
	if o := w.objs.get(r); o != nil && o.comment != "" {
		return string(r) + " /* " + o.comment + " */"
	}
	return string(r)
}

func (w *plistWriter) object(o *object) {
	fields := dict{"isa": o.isa}
	for k, v := range o.fields {
		fields[k] = v
	}
	w.line(2, w.ref(ref(o.id))+" = "+w.dict(fields, 2)+";")
}

func (w *plistWriter) value(v any, indent int) string {
	switch v := v.(type) {
	case string:
		return quote(v)
	case ref:
		return w.ref(v)
	case dict:
		return w.dict(v, indent)
	case []any:
		return w.array(v, indent)
	case []string:
		items := make([]any, len(v))
		for i, s := range v {
			items[i] = s
		}
		return w.array(items, indent)
	case []ref:
		items := make([]any, len(v))
		for i, r := range v {
			items[i] = r
		}
		return w.array(items, indent)
	default:
		panic("generator: unsupported plist value")
	}
}

func (w *plistWriter) dict(d dict, indent int) string {
	keys := make([]string, 0, len(d))
	for k := range d {
		if k != "isa" {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	if _, ok := d["isa"]; ok {
		keys = append([]string{"isa"}, keys...)
	}

	var b strings.Builder
	b.WriteString("{\n")
	for _, k := range keys {
		b.WriteString(strings.Repeat("\t", indent+1))
		b.WriteString(quote(k))
		b.WriteString(" = ")
		b.WriteString(w.value(d[k], indent+1))
		b.WriteString(";\n")
	}
	b.WriteString(strings.Repeat("\t", indent))
	b.WriteString("}")
	return b.String()
}

func (w *plistWriter) array(items []any, indent int) string {
	var b strings.Builder
	b.WriteString("(\n")
	for _, item := range items {
		b.WriteString(strings.Repeat("\t", indent+1))
		b.WriteString(w.value(item, indent+1))
		b.WriteString(",\n")
	}
	b.WriteString(strings.Repeat("\t", indent))
	b.WriteString(")")
	return b.String()
}
