package dump

import (
	"encoding/json"
	"sort"
	"strings"

	"github.com/vk/xcbuddy/internal/manifest"
)

const indent = "  "

// renderJSON writes v as pretty-printed JSON with sorted keys. Empty
// sequences and mappings put their closing bracket on its own line after a
// blank one, and the document ends with a newline.
func renderJSON(v *manifest.Value) string {
	var b strings.Builder
	writeJSON(&b, v, 0)
	b.WriteString("\n")
	return b.String()
}

func writeJSON(b *strings.Builder, v *manifest.Value, depth int) {
	pad := strings.Repeat(indent, depth)
	inner := pad + indent

	switch v.Kind {
	case manifest.ValueString:
		b.WriteString(jsonString(v.Str))
	case manifest.ValueNumber:
		b.WriteString(v.Str)
	case manifest.ValueBool:
		if v.Bool {
			b.WriteString("true")
		} else {
			b.WriteString("false")
		}
	case manifest.ValueSequence:
		b.WriteString("[\n")
		if len(v.Items) == 0 {
			b.WriteString("\n" + pad + "]")
			return
		}
		for i, item := range v.Items {
			b.WriteString(inner)
			writeJSON(b, item, depth+1)
			if i < len(v.Items)-1 {
				b.WriteString(",")
			}
			b.WriteString("\n")
		}
		b.WriteString(pad + "]")
	case manifest.ValueMapping:
		b.WriteString("{\n")
		if len(v.Fields) == 0 {
			b.WriteString("\n" + pad + "}")
			return
		}
		fields := sortedFields(v)
		for i, f := range fields {
			b.WriteString(inner + jsonString(f.Key) + ": ")
			writeJSON(b, f.Value, depth+1)
			if i < len(fields)-1 {
				b.WriteString(",")
			}
			b.WriteString("\n")
		}
		b.WriteString(pad + "}")
	default:
		b.WriteString("null")
	}
}

func jsonString(s string) string {
	data, err := json.Marshal(s)
	if err != nil {
		// Strings always marshal.
		panic(err)
	}
	return string(data)
}

func sortedFields(v *manifest.Value) []manifest.Field {
	fields := append([]manifest.Field{}, v.Fields...)
	sort.SliceStable(fields, func(i, j int) bool { return fields[i].Key < fields[j].Key })
	return fields
}
