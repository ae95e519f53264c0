// Package settings computes effective build settings by layering platform
// defaults, project settings and target settings.
package settings

import (
	"fmt"
	"sort"

	"dario.cat/mergo"
	"github.com/vk/xcbuddy/internal/manifest"
)

// Layer is one level of build settings. Keys listed in Replace overwrite
// sequence values of lower layers instead of being appended to them.
type Layer struct {
	Name    string
	Values  map[string]manifest.SettingValue
	Replace []string
}

func (l Layer) replaces(key string) bool {
	for _, k := range l.Replace {
		if k == key {
			return true
		}
	}
	return false
}

// Merge folds layers from lowest to highest precedence. Scalars are
// last-writer-wins, sequences are concatenated, and a key whose type changes
// between layers takes the higher layer's value. Inputs are never mutated.
func Merge(layers ...Layer) (map[string]manifest.SettingValue, error) {
	merged := map[string]any{}
	for _, layer := range layers {
		src := toAny(layer.Values)
		for key, value := range src {
			prev, ok := merged[key]
			if !ok {
				continue
			}
			_, prevList := prev.([]string)
			_, nextList := value.([]string)
			// Removing the key first makes the next merge an insert, which
			// also lets an empty scalar clear an inherited value.
			if layer.replaces(key) || prevList != nextList || value == "" {
				delete(merged, key)
			}
		}
		if err := mergo.Merge(&merged, src, mergo.WithOverride, mergo.WithAppendSlice); err != nil {
			return nil, fmt.Errorf("failed to merge %s settings: %w", layer.Name, err)
		}
	}
	return fromAny(merged), nil
}

// Keys returns the keys of values in sorted order.
func Keys(values map[string]manifest.SettingValue) []string {
	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// toAny converts settings into the shape mergo merges: strings and string
// slices. Slices are copied so appends never alias a manifest's backing array.
func toAny(values map[string]manifest.SettingValue) map[string]any {
	out := make(map[string]any, len(values))
	for k, v := range values {
		if v.IsList {
			out[k] = append([]string{}, v.List...)
			continue
		}
		out[k] = v.Scalar
	}
	return out
}

func fromAny(values map[string]any) map[string]manifest.SettingValue {
	out := make(map[string]manifest.SettingValue, len(values))
	for k, v := range values {
		switch v := v.(type) {
		case []string:
			out[k] = manifest.List(v...)
		case string:
			out[k] = manifest.Scalar(v)
		default:
			out[k] = manifest.Scalar(fmt.Sprint(v))
		}
	}
	return out
}
