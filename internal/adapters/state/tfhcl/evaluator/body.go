package evaluator

import (
	"fmt"
	"sort"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclsyntax"
)

// EvaluateBody turns a resource body into request parameters. Attributes
// become values; a nested block becomes a map, or a list of maps when its
// type repeats.
func EvaluateBody(body hcl.Body, evalCtx *hcl.EvalContext) (map[string]any, hcl.Diagnostics) {
	syntaxBody, ok := body.(*hclsyntax.Body)
	if !ok {
		return nil, hcl.Diagnostics{{
			Severity: hcl.DiagError,
			Summary:  "Unsupported manifest syntax",
			Detail:   "Resource bodies must use native HCL syntax.",
			Subject:  body.MissingItemRange().Ptr(),
		}}
	}
	return evaluateSyntaxBody(syntaxBody, evalCtx, "")
}

func evaluateSyntaxBody(body *hclsyntax.Body, evalCtx *hcl.EvalContext, path string) (map[string]any, hcl.Diagnostics) {
	var diags hcl.Diagnostics
	out := make(map[string]any, len(body.Attributes)+len(body.Blocks))

	names := make([]string, 0, len(body.Attributes))
	for name := range body.Attributes {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		attr := body.Attributes[name]
		val, valDiags := attr.Expr.Value(evalCtx)
		diags = append(diags, valDiags...)
		if valDiags.HasErrors() {
			continue
		}
		goVal, err := toGo(joinPath(path, name), val)
		if err != nil {
			diags = diags.Append(&hcl.Diagnostic{
				Severity: hcl.DiagError,
				Summary:  "Invalid attribute value",
				Detail:   err.Error(),
				Subject:  attr.SrcRange.Ptr(),
			})
			continue
		}
		out[name] = goVal
	}

	counts := make(map[string]int, len(body.Blocks))
	for _, block := range body.Blocks {
		counts[block.Type]++
	}

	for _, block := range body.Blocks {
		if len(block.Labels) > 0 {
			diags = diags.Append(&hcl.Diagnostic{
				Severity: hcl.DiagError,
				Summary:  "Unexpected block labels",
				Detail:   fmt.Sprintf("Nested block %q does not take labels.", block.Type),
				Subject:  block.TypeRange.Ptr(),
			})
			continue
		}
		if _, clash := body.Attributes[block.Type]; clash {
			diags = diags.Append(&hcl.Diagnostic{
				Severity: hcl.DiagError,
				Summary:  "Duplicate argument",
				Detail:   fmt.Sprintf("%q is set both as an attribute and as a block.", block.Type),
				Subject:  block.TypeRange.Ptr(),
			})
			continue
		}

		nested, nestedDiags := evaluateSyntaxBody(block.Body, evalCtx, joinPath(path, block.Type))
		diags = append(diags, nestedDiags...)
		if nestedDiags.HasErrors() {
			continue
		}
		if counts[block.Type] == 1 {
			out[block.Type] = nested
			continue
		}
		list, _ := out[block.Type].([]any)
		out[block.Type] = append(list, nested)
	}
	return out, diags
}
