package dump

import (
	"bytes"
	"strconv"

	"github.com/vk/xcbuddy/internal/manifest"
	"gopkg.in/yaml.v3"
)

// renderYAML writes v as a YAML document with sorted keys.
func renderYAML(v *manifest.Value) (string, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(yamlNode(v)); err != nil {
		return "", err
	}
	if err := enc.Close(); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func yamlNode(v *manifest.Value) *yaml.Node {
	switch v.Kind {
	case manifest.ValueString:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: v.Str}
	case manifest.ValueNumber:
		return &yaml.Node{Kind: yaml.ScalarNode, Value: v.Str}
	case manifest.ValueBool:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!bool", Value: strconv.FormatBool(v.Bool)}
	case manifest.ValueSequence:
		n := &yaml.Node{Kind: yaml.SequenceNode, Tag: "!!seq"}
		for _, item := range v.Items {
			n.Content = append(n.Content, yamlNode(item))
		}
		return n
	default:
		n := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
		for _, f := range sortedFields(v) {
			n.Content = append(n.Content,
				&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: f.Key},
				yamlNode(f.Value))
		}
		return n
	}
}
