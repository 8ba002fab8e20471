package tfstate

import (
	"context"
	"fmt"
	"os"

	tfjson "github.com/hashicorp/terraform-json"
	jsoniter "github.com/json-iterator/go"

	"github.com/olusolaa/infra-reconciler/internal/core/ports"
	"github.com/olusolaa/infra-reconciler/internal/errors"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// document is what `terraform show -json` printed: either a state or a plan.
type document struct {
	values  *tfjson.StateValues
	changes []*tfjson.ResourceChange
	isPlan  bool
}

type documentShape struct {
	PlannedValues jsoniter.RawMessage `json:"planned_values"`
}

func readDocument(ctx context.Context, path string, logger ports.Logger) (*document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.WrapUserFacing(err, errors.CodeManifestReadError,
			fmt.Sprintf("failed to read %s", path), "Check the manifest path and permissions.")
	}
	if len(raw) == 0 {
		return nil, errors.NewUserFacing(errors.CodeManifestParseError, fmt.Sprintf("%s is empty", path),
			"Generate it with `terraform show -json`.")
	}

	var shape documentShape
	if err := json.Unmarshal(raw, &shape); err != nil {
		return nil, errors.WrapUserFacing(err, errors.CodeManifestParseError, "invalid JSON in Terraform document", "")
	}

	if len(shape.PlannedValues) > 0 {
		var plan tfjson.Plan
		if err := plan.UnmarshalJSON(raw); err != nil {
			return nil, errors.WrapUserFacing(err, errors.CodeManifestParseError, "invalid Terraform plan document",
				"Generate it with `terraform show -json <planfile>`.")
		}
		logger.Debugf(ctx, "Read plan (format %s, terraform %s)", plan.FormatVersion, plan.TerraformVersion)
		return &document{values: plan.PlannedValues, changes: plan.ResourceChanges, isPlan: true}, nil
	}

	var state tfjson.State
	if err := state.UnmarshalJSON(raw); err != nil {
		return nil, errors.WrapUserFacing(err, errors.CodeManifestParseError, "invalid Terraform state document",
			"Generate it with `terraform show -json`.")
	}
	logger.Debugf(ctx, "Read state (format %s, terraform %s)", state.FormatVersion, state.TerraformVersion)
	return &document{values: state.Values}, nil
}
