package evaluator

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/zclconf/go-cty/cty"

	"github.com/olusolaa/infra-reconciler/internal/core/ports"
)

// Options controls where variable values come from.
type Options struct {
	VarFiles []string
	Vars     map[string]string
	BaseDir  string
}

var declarationSchema = &hcl.BodySchema{
	Blocks: []hcl.BlockHeaderSchema{
		{Type: "variable", LabelNames: []string{"name"}},
		{Type: "locals"},
	},
}

// BuildEvalContext resolves every declared variable and local across files
// and returns the context resource bodies are evaluated in.
func BuildEvalContext(
	ctx context.Context,
	parser *hclparse.Parser,
	files []*hcl.File,
	opts Options,
	logger ports.Logger,
) (*hcl.EvalContext, hcl.Diagnostics) {
	logger = logger.WithFields(map[string]any{"component": "hcl_eval_context"})

	var diags hcl.Diagnostics
	defs := make(map[string]*VariableDefinition)
	locals := make(map[string]*hcl.Attribute)

	for _, file := range files {
		content, _, contentDiags := file.Body.PartialContent(declarationSchema)
		diags = append(diags, contentDiags...)
		for _, block := range content.Blocks {
			switch block.Type {
			case "variable":
				def, defDiags := decodeVariableBlock(block)
				diags = append(diags, defDiags...)
				if def == nil {
					continue
				}
				if prev, dup := defs[def.Name]; dup {
					diags = diags.Append(&hcl.Diagnostic{
						Severity: hcl.DiagError,
						Summary:  "Duplicate variable declaration",
						Detail:   fmt.Sprintf("Variable %q was already declared at %s.", def.Name, prev.DeclRange),
						Subject:  def.DeclRange.Ptr(),
					})
					continue
				}
				defs[def.Name] = def
			case "locals":
				attrs, attrDiags := block.Body.JustAttributes()
				diags = append(diags, attrDiags...)
				for name, attr := range attrs {
					if prev, dup := locals[name]; dup {
						diags = diags.Append(&hcl.Diagnostic{
							Severity: hcl.DiagError,
							Summary:  "Duplicate local value definition",
							Detail:   fmt.Sprintf("A local value named %q was already defined at %s.", name, prev.NameRange),
							Subject:  attr.NameRange.Ptr(),
						})
						continue
					}
					locals[name] = attr
				}
			}
		}
	}
	if DiagsHasFatalErrors(diags) {
		return nil, diags
	}

	var varFiles []map[string]hcl.Expression
	for _, path := range opts.VarFiles {
		if path == "" {
			continue
		}
		if !filepath.IsAbs(path) && opts.BaseDir != "" {
			path = filepath.Join(opts.BaseDir, path)
		}
		exprs, fileDiags := loadVarsFile(ctx, parser, path, logger)
		diags = append(diags, fileDiags...)
		if exprs != nil {
			varFiles = append(varFiles, exprs)
		}
	}
	if DiagsHasFatalErrors(diags) {
		return nil, diags
	}

	values, varDiags := resolveVariables(ctx, defs, varFiles, opts.Vars)
	diags = append(diags, varDiags...)
	if DiagsHasFatalErrors(diags) {
		return nil, diags
	}
	logger.Debugf(ctx, "Resolved %d variables", len(values))

	baseDir, _ := filepath.Abs(opts.BaseDir)
	evalCtx := &hcl.EvalContext{
		Variables: map[string]cty.Value{
			"var":   cty.ObjectVal(values),
			"local": cty.EmptyObjectVal,
			"path":  cty.ObjectVal(map[string]cty.Value{"module": cty.StringVal(baseDir)}),
		},
		Functions: ManifestFunctions(),
	}

	localDiags := evaluateLocals(evalCtx, locals)
	diags = append(diags, localDiags...)
	if DiagsHasFatalErrors(diags) {
		return nil, diags
	}
	return evalCtx, diags
}

// evaluateLocals resolves locals in dependency order by repeated passes; a
// pass that resolves nothing reports what is left.
func evaluateLocals(evalCtx *hcl.EvalContext, pending map[string]*hcl.Attribute) hcl.Diagnostics {
	resolved := make(map[string]cty.Value, len(pending))
	for len(pending) > 0 {
		names := make([]string, 0, len(pending))
		for name := range pending {
			names = append(names, name)
		}
		sort.Strings(names)

		var failed hcl.Diagnostics
		progress := false
		for _, name := range names {
			val, valDiags := pending[name].Expr.Value(evalCtx)
			if valDiags.HasErrors() {
				failed = append(failed, valDiags...)
				continue
			}
			resolved[name] = val
			delete(pending, name)
			progress = true
			evalCtx.Variables["local"] = cty.ObjectVal(resolved)
		}
		if !progress {
			return failed
		}
	}
	return nil
}
