package tfhcl

import (
	"fmt"

	"github.com/hashicorp/hcl/v2"

	"github.com/olusolaa/infra-reconciler/internal/adapters/state/tfhcl/evaluator"
	"github.com/olusolaa/infra-reconciler/internal/core/domain"
)

var manifestSchema = &hcl.BodySchema{
	Blocks: []hcl.BlockHeaderSchema{
		{Type: "resource", LabelNames: []string{"kind", "name"}},
		{Type: "variable", LabelNames: []string{"name"}},
		{Type: "locals"},
	},
}

// mapResourceBlocks evaluates every resource block into a request, keeping
// file and declaration order. Addresses are "<kind>.<name>" and must be unique.
func mapResourceBlocks(files []*hcl.File, evalCtx *hcl.EvalContext) ([]domain.ResourceRequest, hcl.Diagnostics) {
	var diags hcl.Diagnostics
	var requests []domain.ResourceRequest
	declared := make(map[string]hcl.Range)

	for _, file := range files {
		content, contentDiags := file.Body.Content(manifestSchema)
		diags = append(diags, contentDiags...)
		if content == nil {
			continue
		}

		for _, block := range content.Blocks {
			if block.Type != "resource" {
				continue
			}
			address := fmt.Sprintf("%s.%s", block.Labels[0], block.Labels[1])
			if first, dup := declared[address]; dup {
				diags = diags.Append(&hcl.Diagnostic{
					Severity: hcl.DiagError,
					Summary:  "Duplicate resource address",
					Detail:   fmt.Sprintf("Resource %s was already declared at %s.", address, first),
					Subject:  block.DefRange.Ptr(),
				})
				continue
			}
			declared[address] = block.DefRange

			params, bodyDiags := evaluator.EvaluateBody(block.Body, evalCtx)
			diags = append(diags, bodyDiags...)
			if bodyDiags.HasErrors() {
				continue
			}
			requests = append(requests, domain.ResourceRequest{
				Kind:   domain.ResourceKind(block.Labels[0]),
				Source: address,
				Params: params,
			})
		}
	}
	return requests, diags
}
