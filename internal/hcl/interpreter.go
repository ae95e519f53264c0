package hcl

import (
	"context"
	"fmt"
	"sort"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/hashicorp/hcl/v2/hclsyntax"
	"github.com/vk/xcbuddy/internal/ctxlog"
	"github.com/vk/xcbuddy/internal/manifest"
)

// Interpreter is the HCL-specific implementation of manifest.Interpreter.
type Interpreter struct{}

// NewInterpreter creates a new HCL manifest interpreter.
func NewInterpreter() *Interpreter {
	return &Interpreter{}
}

var _ manifest.Interpreter = (*Interpreter)(nil)

// Interpret parses src and evaluates it into a manifest.Document. Parse and
// evaluation diagnostics are reported as *manifest.SyntaxError; a file that
// evaluates but does not hold exactly one root block is a
// *manifest.RuntimeError.
func (i *Interpreter) Interpret(ctx context.Context, path string, src []byte) (*manifest.Document, error) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("HCL interpreter started.", "path", path, "bytes", len(src))

	// A fresh parser per call: hclparse caches files by name and manifests
	// must be re-read on every invocation.
	parser := hclparse.NewParser()
	file, diags := parser.ParseHCL(src, path)
	if diags.HasErrors() {
		return nil, &manifest.SyntaxError{Path: path, Err: diags}
	}
	body, ok := file.Body.(*hclsyntax.Body)
	if !ok {
		return nil, &manifest.RuntimeError{Path: path, Reason: "manifest is not native HCL syntax"}
	}

	var localBlocks, roots []*hclsyntax.Block
	for _, block := range body.Blocks {
		switch {
		case block.Type == localsBlock:
			localBlocks = append(localBlocks, block)
		case isRoot(block.Type):
			roots = append(roots, block)
		default:
			logger.Debug("Ignoring unknown top-level block.", "path", path, "type", block.Type)
		}
	}
	if len(body.Attributes) > 0 {
		attr := firstAttribute(body.Attributes)
		return nil, &manifest.SyntaxError{Path: path, Err: hcl.Diagnostics{{
			Severity: hcl.DiagError,
			Summary:  "Unexpected top-level attribute",
			Detail:   fmt.Sprintf("Attribute %q must be declared inside a project, workspace, config or locals block.", attr.Name),
			Subject:  attr.SrcRange.Ptr(),
		}}}
	}

	switch len(roots) {
	case 0:
		return nil, &manifest.RuntimeError{Path: path, Reason: "no project, workspace or config block found"}
	case 1:
	default:
		return nil, &manifest.RuntimeError{
			Path:   path,
			Reason: fmt.Sprintf("found %d root blocks, a manifest must declare exactly one", len(roots)),
		}
	}

	locals, diags := evalLocals(localBlocks)
	if diags.HasErrors() {
		return nil, &manifest.SyntaxError{Path: path, Err: diags}
	}
	logger.Debug("Locals evaluated.", "path", path, "count", len(locals))

	root := roots[0]
	kind, _ := manifest.KindFromBlock(root.Type)
	c := &converter{path: path, evalCtx: newEvalContext(locals)}
	value, err := c.block(root, rootBlocks[root.Type])
	if err != nil {
		return nil, err
	}

	logger.Debug("HCL interpretation complete.", "path", path, "kind", kind.String())
	return &manifest.Document{Path: path, Kind: kind, Root: value}, nil
}

func isRoot(blockType string) bool {
	_, ok := rootBlocks[blockType]
	return ok
}

// converter walks an HCL body and evaluates it into a manifest.Value.
type converter struct {
	path    string
	evalCtx *hcl.EvalContext
}

func (c *converter) block(block *hclsyntax.Block, spec blockSpec) (*manifest.Value, error) {
	if len(block.Labels) != len(spec.labels) && !(len(spec.labels) == 1 && spec.labels[0] == "labels") {
		return nil, c.syntax(&hcl.Diagnostic{
			Severity: hcl.DiagError,
			Summary:  "Wrong number of block labels",
			Detail:   fmt.Sprintf("A %q block expects %d label(s), got %d.", block.Type, len(spec.labels), len(block.Labels)),
			Subject:  block.DefRange().Ptr(),
		})
	}

	out := manifest.Mapping()
	labeled := make(map[string]bool, len(spec.labels))
	if len(spec.labels) == 1 && spec.labels[0] == "labels" {
		labels := manifest.Sequence()
		for _, l := range block.Labels {
			labels.Items = append(labels.Items, manifest.String(l))
		}
		out.Set("labels", labels)
		labeled["labels"] = true
	} else {
		for idx, name := range spec.labels {
			out.Set(name, manifest.String(block.Labels[idx]))
			labeled[name] = true
		}
	}

	if err := c.body(block.Body, out, labeled); err != nil {
		return nil, err
	}
	return out, nil
}

// body evaluates attributes and nested blocks into out. labeled names the
// fields already taken by the enclosing block's labels.
func (c *converter) body(body *hclsyntax.Body, out *manifest.Value, labeled map[string]bool) error {
	attrs := make([]*hclsyntax.Attribute, 0, len(body.Attributes))
	for _, attr := range body.Attributes {
		attrs = append(attrs, attr)
	}
	sort.Slice(attrs, func(a, b int) bool {
		return attrs[a].SrcRange.Start.Byte < attrs[b].SrcRange.Start.Byte
	})

	fromAttr := make(map[string]bool, len(attrs))
	for _, attr := range attrs {
		if labeled[attr.Name] {
			return c.syntax(&hcl.Diagnostic{
				Severity: hcl.DiagError,
				Summary:  "Attribute conflicts with block label",
				Detail:   fmt.Sprintf("The block label is stored as %q, so an attribute with that name cannot be set here.", attr.Name),
				Subject:  attr.SrcRange.Ptr(),
			})
		}
		val, diags := attr.Expr.Value(c.evalCtx)
		if diags.HasErrors() {
			return &manifest.SyntaxError{Path: c.path, Err: diags}
		}
		converted, err := ctyToValue(val)
		if err != nil {
			return &manifest.RuntimeError{
				Path:   c.path,
				Reason: fmt.Sprintf("attribute %q at %s: %v", attr.Name, attr.SrcRange, err),
			}
		}
		if converted == nil {
			continue
		}
		out.Set(attr.Name, converted)
		fromAttr[attr.Name] = true
	}

	seen := make(map[string]*hclsyntax.Block)
	for _, nested := range body.Blocks {
		spec := specFor(nested.Type, len(nested.Labels))
		if fromAttr[spec.key] || labeled[spec.key] {
			return c.syntax(&hcl.Diagnostic{
				Severity: hcl.DiagError,
				Summary:  "Block conflicts with attribute",
				Detail:   fmt.Sprintf("A %q block cannot be combined with an attribute named %q.", nested.Type, spec.key),
				Subject:  nested.DefRange().Ptr(),
			})
		}
		if !spec.repeated {
			if prev, dup := seen[nested.Type]; dup {
				return c.syntax(&hcl.Diagnostic{
					Severity: hcl.DiagError,
					Summary:  fmt.Sprintf("Duplicate %q block", nested.Type),
					Detail:   fmt.Sprintf("Only one %q block is allowed; the first was defined at %s.", nested.Type, prev.DefRange()),
					Subject:  nested.DefRange().Ptr(),
				})
			}
			seen[nested.Type] = nested
		}

		value, err := c.block(nested, spec)
		if err != nil {
			return err
		}
		if spec.repeated {
			out.Append(spec.key, value)
		} else {
			out.Set(spec.key, value)
		}
	}
	return nil
}

func (c *converter) syntax(diag *hcl.Diagnostic) error {
	return &manifest.SyntaxError{Path: c.path, Err: hcl.Diagnostics{diag}}
}

func firstAttribute(attrs hclsyntax.Attributes) *hclsyntax.Attribute {
	var first *hclsyntax.Attribute
	for _, attr := range attrs {
		if first == nil || attr.SrcRange.Start.Byte < first.SrcRange.Start.Byte {
			first = attr
		}
	}
	return first
}
