package hcl

import (
	"fmt"
	"sort"
	"strings"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclsyntax"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/function"
	"github.com/zclconf/go-cty/cty/function/stdlib"
)

// sandboxFunctions is the complete function vocabulary available to manifests.
func sandboxFunctions() map[string]function.Function {
	return map[string]function.Function{
		"upper":     stdlib.UpperFunc,
		"lower":     stdlib.LowerFunc,
		"format":    stdlib.FormatFunc,
		"join":      stdlib.JoinFunc,
		"split":     stdlib.SplitFunc,
		"replace":   stdlib.ReplaceFunc,
		"trimspace": stdlib.TrimSpaceFunc,
		"concat":    stdlib.ConcatFunc,
		"merge":     stdlib.MergeFunc,
		"flatten":   stdlib.FlattenFunc,
		"distinct":  stdlib.DistinctFunc,
		"length":    stdlib.LengthFunc,
		"coalesce":  stdlib.CoalesceFunc,
		"contains":  stdlib.ContainsFunc,
		"keys":      stdlib.KeysFunc,
		"values":    stdlib.ValuesFunc,
		"min":       stdlib.MinFunc,
		"max":       stdlib.MaxFunc,
	}
}

// newEvalContext builds the sandboxed evaluation context with the given locals.
func newEvalContext(locals map[string]cty.Value) *hcl.EvalContext {
	localVal := cty.EmptyObjectVal
	if len(locals) > 0 {
		localVal = cty.ObjectVal(locals)
	}
	return &hcl.EvalContext{
		Variables: map[string]cty.Value{localsBlock: localVal},
		Functions: sandboxFunctions(),
	}
}

// evalLocals evaluates every attribute of the locals blocks. A local may
// reference other locals, so evaluation proceeds in passes until every local
// is known or a pass makes no progress.
func evalLocals(blocks []*hclsyntax.Block) (map[string]cty.Value, hcl.Diagnostics) {
	var diags hcl.Diagnostics
	pending := make(map[string]*hclsyntax.Attribute)
	for _, block := range blocks {
		for name, attr := range block.Body.Attributes {
			if prev, dup := pending[name]; dup {
				diags = append(diags, &hcl.Diagnostic{
					Severity: hcl.DiagError,
					Summary:  "Duplicate local value",
					Detail:   fmt.Sprintf("A local value named %q was already defined at %s.", name, prev.SrcRange),
					Subject:  attr.SrcRange.Ptr(),
				})
				continue
			}
			pending[name] = attr
		}
		for _, nested := range block.Body.Blocks {
			diags = append(diags, &hcl.Diagnostic{
				Severity: hcl.DiagError,
				Summary:  "Unexpected block in locals",
				Detail:   "A locals block may only contain attributes.",
				Subject:  nested.DefRange().Ptr(),
			})
		}
	}
	if diags.HasErrors() {
		return nil, diags
	}

	resolved := make(map[string]cty.Value, len(pending))
	for len(pending) > 0 {
		progress := false
		for _, name := range sortedNames(pending) {
			attr := pending[name]
			if !localsReady(attr.Expr, resolved) {
				continue
			}
			val, valDiags := attr.Expr.Value(newEvalContext(resolved))
			diags = append(diags, valDiags...)
			if valDiags.HasErrors() {
				return nil, diags
			}
			resolved[name] = val
			delete(pending, name)
			progress = true
		}
		if !progress {
			names := sortedNames(pending)
			return nil, append(diags, &hcl.Diagnostic{
				Severity: hcl.DiagError,
				Summary:  "Unresolvable local values",
				Detail: fmt.Sprintf("The local values %s reference each other or undefined locals.",
					strings.Join(names, ", ")),
				Subject: pending[names[0]].SrcRange.Ptr(),
			})
		}
	}
	return resolved, diags
}

// localsReady reports whether every local referenced by expr is resolved.
func localsReady(expr hclsyntax.Expression, resolved map[string]cty.Value) bool {
	for _, traversal := range expr.Variables() {
		if traversal.RootName() != localsBlock || len(traversal) < 2 {
			continue
		}
		attr, ok := traversal[1].(hcl.TraverseAttr)
		if !ok {
			continue
		}
		if _, ok := resolved[attr.Name]; !ok {
			return false
		}
	}
	return true
}

func sortedNames(attrs map[string]*hclsyntax.Attribute) []string {
	names := make([]string, 0, len(attrs))
	for name := range attrs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
