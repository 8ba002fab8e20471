package evaluator

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zclconf/go-cty/cty"

	"github.com/olusolaa/infra-reconciler/mocks"
)

func parse(t *testing.T, parser *hclparse.Parser, src string) *hcl.File {
	t.Helper()
	file, diags := parser.ParseHCL([]byte(src), "main.hcl")
	require.False(t, diags.HasErrors(), diags.Error())
	return file
}

func buildContext(t *testing.T, src string, opts Options) (*hcl.EvalContext, *hcl.File, hcl.Diagnostics) {
	t.Helper()
	parser := hclparse.NewParser()
	file := parse(t, parser, src)
	evalCtx, diags := BuildEvalContext(context.Background(), parser, []*hcl.File{file}, opts, mocks.NewMockLogger())
	return evalCtx, file, diags
}

func resourceBody(t *testing.T, file *hcl.File) hcl.Body {
	t.Helper()
	content, _, diags := file.Body.PartialContent(&hcl.BodySchema{
		Blocks: []hcl.BlockHeaderSchema{{Type: "resource", LabelNames: []string{"kind", "name"}}},
	})
	require.False(t, diags.HasErrors(), diags.Error())
	require.Len(t, content.Blocks, 1)
	return content.Blocks[0].Body
}

func TestToGo(t *testing.T) {
	tests := []struct {
		name string
		in   cty.Value
		want any
	}{
		{"string", cty.StringVal("hello"), "hello"},
		{"whole number", cty.NumberIntVal(123), int64(123)},
		{"fraction", cty.NumberFloatVal(12.5), 12.5},
		{"bool", cty.True, true},
		{"null", cty.NullVal(cty.String), nil},
		{"list", cty.ListVal([]cty.Value{cty.NumberIntVal(1), cty.NumberIntVal(2)}), []any{int64(1), int64(2)}},
		{"tuple", cty.TupleVal([]cty.Value{cty.StringVal("a"), cty.True}), []any{"a", true}},
		{"map", cty.MapVal(map[string]cty.Value{"k": cty.StringVal("v")}), map[string]any{"k": "v"}},
		{"object", cty.ObjectVal(map[string]cty.Value{"n": cty.NumberIntVal(1)}), map[string]any{"n": int64(1)}},
		{"empty list", cty.ListValEmpty(cty.String), []any{}},
		{"empty object", cty.EmptyObjectVal, map[string]any{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ToGo(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestToGoRejectsUnknown(t *testing.T) {
	_, err := ToGo(cty.ObjectVal(map[string]cty.Value{"id": cty.UnknownVal(cty.String)}))
	var convErr *ValueConversionError
	require.ErrorAs(t, err, &convErr)
	assert.Equal(t, "id", convErr.Path)
}

func TestVariablesLocalsAndNestedBlocks(t *testing.T) {
	src := `
variable "env" {
  type    = string
  default = "dev"
}

variable "partitions" {
  type    = number
  default = 2
}

locals {
  name   = "${local.prefix}-pg"
  prefix = "app-${var.env}"
}

resource "metric_filter" "errors" {
  log_group_name = "/app/${var.env}"
  filter_pattern = upper("error")
  count          = var.partitions
  tags           = { Name = local.name }

  metric_transformation {
    metric_name  = "Errors"
    metric_value = "1"
  }

  rule { id = 1 }
  rule { id = 2 }
}
`
	evalCtx, file, diags := buildContext(t, src, Options{Vars: map[string]string{"env": "prod"}})
	require.False(t, diags.HasErrors(), diags.Error())

	params, diags := EvaluateBody(resourceBody(t, file), evalCtx)
	require.False(t, diags.HasErrors(), diags.Error())

	assert.Equal(t, "/app/prod", params["log_group_name"])
	assert.Equal(t, "ERROR", params["filter_pattern"])
	assert.Equal(t, int64(2), params["count"])
	assert.Equal(t, map[string]any{"Name": "app-prod-pg"}, params["tags"])
	assert.Equal(t, map[string]any{"metric_name": "Errors", "metric_value": "1"}, params["metric_transformation"])
	assert.Equal(t, []any{map[string]any{"id": int64(1)}, map[string]any{"id": int64(2)}}, params["rule"])
}

func TestVarFilesAndTypedOverrides(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "prod.hclvars"), []byte(`region = "eu-west-1"`+"\n"+`stray = 1`), 0o600))

	src := `
variable "region" {}
variable "ids" { type = list(string) }
`
	evalCtx, _, diags := buildContext(t, src, Options{
		BaseDir:  dir,
		VarFiles: []string{"prod.hclvars"},
		Vars:     map[string]string{"ids": `["a", "b"]`},
	})
	require.False(t, diags.HasErrors(), diags.Error())
	assert.Len(t, diags, 1, "undeclared file value is a warning")

	vars := evalCtx.Variables["var"]
	assert.Equal(t, "eu-west-1", vars.GetAttr("region").AsString())
	assert.Equal(t, 2, vars.GetAttr("ids").LengthInt())
}

func TestBuildEvalContextErrors(t *testing.T) {
	tests := []struct {
		name    string
		src     string
		opts    Options
		summary string
	}{
		{"missing required", `variable "x" {}`, Options{}, "No value for required variable"},
		{"wrong type", `variable "n" { type = number }`, Options{Vars: map[string]string{"n": `"abc"`}}, "Incorrect variable type"},
		{"undeclared override", ``, Options{Vars: map[string]string{"nope": "1"}}, "Value for undeclared variable"},
		{"duplicate variable", "variable \"a\" { default = 1 }\nvariable \"a\" { default = 2 }", Options{}, "Duplicate variable declaration"},
		{"local cycle", "locals {\n  a = local.b\n  b = local.a\n}", Options{}, "Unsupported attribute"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			evalCtx, _, diags := buildContext(t, tt.src, tt.opts)
			assert.Nil(t, evalCtx)
			require.True(t, diags.HasErrors())
			assert.Contains(t, diags.Error(), tt.summary)
		})
	}
}

func TestEnvFunction(t *testing.T) {
	t.Setenv("RECONCILER_TEST_ZONE", "Z123")
	evalCtx, file, diags := buildContext(t, `resource "key_signing_key" "ksk" { hosted_zone_id = env("RECONCILER_TEST_ZONE") }`, Options{})
	require.False(t, diags.HasErrors(), diags.Error())

	params, diags := EvaluateBody(resourceBody(t, file), evalCtx)
	require.False(t, diags.HasErrors(), diags.Error())
	assert.Equal(t, "Z123", params["hosted_zone_id"])
}
