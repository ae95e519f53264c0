// This file contains the logic for converting an evaluated cty.Value into the
// format-agnostic manifest.Value tree.

package hcl

import (
	"fmt"

	"github.com/vk/xcbuddy/internal/manifest"
	"github.com/zclconf/go-cty/cty"
)

// ctyToValue recursively converts a cty.Value. Null values convert to nil so
// that the caller can treat the attribute as absent.
func ctyToValue(v cty.Value) (*manifest.Value, error) {
	if v.IsNull() {
		return nil, nil
	}
	if !v.IsWhollyKnown() {
		return nil, fmt.Errorf("value is not known at evaluation time")
	}
	v, _ = v.UnmarkDeep()

	ty := v.Type()
	switch {
	case ty == cty.String:
		return manifest.String(v.AsString()), nil

	case ty == cty.Number:
		return manifest.Number(v.AsBigFloat().Text('f', -1)), nil

	case ty == cty.Bool:
		return manifest.Bool(v.True()), nil

	case ty.IsListType() || ty.IsTupleType() || ty.IsSetType():
		seq := manifest.Sequence()
		it := v.ElementIterator()
		for it.Next() {
			_, elem := it.Element()
			item, err := ctyToValue(elem)
			if err != nil {
				return nil, err
			}
			if item == nil {
				return nil, fmt.Errorf("null element in sequence")
			}
			seq.Items = append(seq.Items, item)
		}
		return seq, nil

	case ty.IsObjectType() || ty.IsMapType():
		m := manifest.Mapping()
		it := v.ElementIterator()
		for it.Next() {
			key, elem := it.Element()
			item, err := ctyToValue(elem)
			if err != nil {
				return nil, fmt.Errorf("in attribute %q: %w", key.AsString(), err)
			}
			if item != nil {
				m.Set(key.AsString(), item)
			}
		}
		return m, nil

	default:
		return nil, fmt.Errorf("unsupported value type %s", ty.FriendlyName())
	}
}
