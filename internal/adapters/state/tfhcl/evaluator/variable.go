package evaluator

import (
	"context"
	"fmt"
	"os"
	"sort"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/ext/typeexpr"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/hashicorp/hcl/v2/hclsyntax"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/convert"

	"github.com/olusolaa/infra-reconciler/internal/core/ports"
)

var variableBlockSchema = &hcl.BodySchema{
	Attributes: []hcl.AttributeSchema{
		{Name: "description"},
		{Name: "default"},
		{Name: "type"},
	},
}

// VariableDefinition is one declared input of a manifest.
type VariableDefinition struct {
	Name        string
	Description string
	Type        cty.Type
	Default     cty.Value
	HasDefault  bool
	DeclRange   hcl.Range
}

func decodeVariableBlock(block *hcl.Block) (*VariableDefinition, hcl.Diagnostics) {
	content, diags := block.Body.Content(variableBlockSchema)
	if DiagsHasFatalErrors(diags) {
		return nil, diags
	}

	def := &VariableDefinition{
		Name:      block.Labels[0],
		Type:      cty.DynamicPseudoType,
		DeclRange: block.DefRange,
	}

	if attr, ok := content.Attributes["type"]; ok {
		ty, tyDiags := typeexpr.TypeConstraint(attr.Expr)
		diags = append(diags, tyDiags...)
		if !DiagsHasFatalErrors(tyDiags) {
			def.Type = ty
		}
	}

	if attr, ok := content.Attributes["description"]; ok {
		val, valDiags := attr.Expr.Value(nil)
		diags = append(diags, valDiags...)
		if !valDiags.HasErrors() && val.Type() == cty.String && !val.IsNull() {
			def.Description = val.AsString()
		}
	}

	if attr, ok := content.Attributes["default"]; ok {
		val, valDiags := attr.Expr.Value(nil)
		diags = append(diags, valDiags...)
		if !valDiags.HasErrors() {
			conv, convDiags := convertVarType(val, def.Type, attr.Expr.Range())
			diags = append(diags, convDiags...)
			def.Default = conv
			def.HasDefault = !DiagsHasFatalErrors(convDiags)
		}
	}

	return def, diags
}

// loadVarsFile reads name = value assignments from a variables file.
func loadVarsFile(ctx context.Context, parser *hclparse.Parser, path string, logger ports.Logger) (map[string]hcl.Expression, hcl.Diagnostics) {
	logger.Debugf(ctx, "Loading variables file %s", path)
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, hcl.Diagnostics{{
			Severity: hcl.DiagError,
			Summary:  "Cannot read variables file",
			Detail:   err.Error(),
			Subject:  &hcl.Range{Filename: path},
		}}
	}

	file, diags := parser.ParseHCL(src, path)
	if file == nil || DiagsHasFatalErrors(diags) {
		return nil, diags
	}
	attrs, attrDiags := file.Body.JustAttributes()
	diags = append(diags, attrDiags...)
	if DiagsHasFatalErrors(attrDiags) {
		return nil, diags
	}

	exprs := make(map[string]hcl.Expression, len(attrs))
	for name, attr := range attrs {
		exprs[name] = attr.Expr
	}
	return exprs, diags
}

// overrideExpr turns a command-line value into an expression. String-typed
// variables take the raw text; others parse it as an HCL expression.
func overrideExpr(name, raw string, ty cty.Type) (hcl.Expression, hcl.Diagnostics) {
	rng := hcl.Range{Filename: fmt.Sprintf("<value for var.%s>", name), Start: hcl.InitialPos, End: hcl.InitialPos}
	if ty == cty.String || ty == cty.DynamicPseudoType {
		return hcl.StaticExpr(cty.StringVal(raw), rng), nil
	}
	return hclsyntax.ParseExpression([]byte(raw), rng.Filename, hcl.InitialPos)
}

// resolveVariables applies defaults, then files in order, then overrides.
func resolveVariables(
	ctx context.Context,
	defs map[string]*VariableDefinition,
	files []map[string]hcl.Expression,
	overrides map[string]string,
) (map[string]cty.Value, hcl.Diagnostics) {
	var diags hcl.Diagnostics
	exprs := make(map[string]hcl.Expression)
	for _, file := range files {
		for name, expr := range file {
			if _, declared := defs[name]; !declared {
				diags = diags.Append(&hcl.Diagnostic{
					Severity: hcl.DiagWarning,
					Summary:  "Value for undeclared variable",
					Detail:   fmt.Sprintf("No variable named %q is declared; the value is ignored.", name),
					Subject:  expr.Range().Ptr(),
				})
				continue
			}
			exprs[name] = expr
		}
	}
	for name, raw := range overrides {
		def, declared := defs[name]
		if !declared {
			diags = diags.Append(&hcl.Diagnostic{
				Severity: hcl.DiagError,
				Summary:  "Value for undeclared variable",
				Detail:   fmt.Sprintf("A value was given for variable %q, which is not declared.", name),
			})
			continue
		}
		expr, exprDiags := overrideExpr(name, raw, def.Type)
		diags = append(diags, exprDiags...)
		if !DiagsHasFatalErrors(exprDiags) {
			exprs[name] = expr
		}
	}

	names := make([]string, 0, len(defs))
	for name := range defs {
		names = append(names, name)
	}
	sort.Strings(names)

	values := make(map[string]cty.Value, len(defs))
	for _, name := range names {
		if ctx.Err() != nil {
			break
		}
		def := defs[name]
		expr, given := exprs[name]
		if !given {
			if !def.HasDefault {
				diags = diags.Append(&hcl.Diagnostic{
					Severity: hcl.DiagError,
					Summary:  "No value for required variable",
					Detail:   fmt.Sprintf("Variable %q has no default and no value was given.", name),
					Subject:  def.DeclRange.Ptr(),
				})
				continue
			}
			values[name] = def.Default
			continue
		}

		val, valDiags := expr.Value(nil)
		diags = append(diags, valDiags...)
		if DiagsHasFatalErrors(valDiags) {
			continue
		}
		conv, convDiags := convertVarType(val, def.Type, expr.Range())
		diags = append(diags, convDiags...)
		if !DiagsHasFatalErrors(convDiags) {
			values[name] = conv
		}
	}
	return values, diags
}

func convertVarType(val cty.Value, targetType cty.Type, subjectRange hcl.Range) (cty.Value, hcl.Diagnostics) {
	if targetType == cty.DynamicPseudoType || !val.IsKnown() {
		return val, nil
	}
	conv, err := convert.Convert(val, targetType)
	if err != nil {
		return cty.NilVal, hcl.Diagnostics{{
			Severity: hcl.DiagError,
			Summary:  "Incorrect variable type",
			Detail:   err.Error(),
			Subject:  &subjectRange,
		}}
	}
	return conv, nil
}
