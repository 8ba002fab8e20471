package tfstate

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/olusolaa/infra-reconciler/internal/core/domain"
	"github.com/olusolaa/infra-reconciler/internal/errors"
	"github.com/olusolaa/infra-reconciler/mocks"
)

const stateDoc = `{
  "format_version": "1.0",
  "terraform_version": "1.7.5",
  "values": {
    "root_module": {
      "resources": [
        {
          "address": "aws_placement_group.web",
          "mode": "managed",
          "type": "aws_placement_group",
          "name": "web",
          "provider_name": "registry.terraform.io/hashicorp/aws",
          "schema_version": 0,
          "values": {"id": "web", "name": "web", "strategy": "cluster", "tags": {"Env": "prod"}}
        },
        {
          "address": "data.aws_vpc.main",
          "mode": "data",
          "type": "aws_vpc",
          "name": "main",
          "provider_name": "registry.terraform.io/hashicorp/aws",
          "schema_version": 0,
          "values": {"id": "vpc-1"}
        },
        {
          "address": "aws_instance.app",
          "mode": "managed",
          "type": "aws_instance",
          "name": "app",
          "provider_name": "registry.terraform.io/hashicorp/aws",
          "schema_version": 1,
          "values": {"id": "i-1"}
        }
      ],
      "child_modules": [
        {
          "address": "module.dns",
          "resources": [
            {
              "address": "module.dns.aws_route53_key_signing_key.ksk",
              "mode": "managed",
              "type": "aws_route53_key_signing_key",
              "name": "ksk",
              "provider_name": "registry.terraform.io/hashicorp/aws",
              "schema_version": 0,
              "values": {"hosted_zone_id": "Z1", "name": "ksk", "key_management_service_arn": "arn:k", "status": "ACTIVE"}
            }
          ]
        }
      ]
    }
  }
}`

const planDoc = `{
  "format_version": "1.2",
  "terraform_version": "1.7.5",
  "planned_values": {
    "root_module": {
      "resources": [
        {
          "address": "aws_eip.nat",
          "mode": "managed",
          "type": "aws_eip",
          "name": "nat",
          "provider_name": "registry.terraform.io/hashicorp/aws",
          "schema_version": 0,
          "values": {"domain": "vpc", "tags": {"Name": "nat"}}
        }
      ]
    }
  },
  "resource_changes": [
    {
      "address": "aws_eip.nat",
      "mode": "managed",
      "type": "aws_eip",
      "name": "nat",
      "provider_name": "registry.terraform.io/hashicorp/aws",
      "change": {"actions": ["create"], "before": null, "after": {"domain": "vpc"}}
    },
    {
      "address": "aws_placement_group.old",
      "mode": "managed",
      "type": "aws_placement_group",
      "name": "old",
      "provider_name": "registry.terraform.io/hashicorp/aws",
      "change": {"actions": ["delete"], "before": {"name": "old", "strategy": "spread"}, "after": null}
    }
  ]
}`

func loadDoc(t *testing.T, content string) ([]domain.ResourceRequest, error) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "terraform.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	src, err := NewSource(Config{FilePath: path}, mocks.NewMockLogger())
	require.NoError(t, err)
	return src.Load(context.Background())
}

func TestLoadState(t *testing.T) {
	requests, err := loadDoc(t, stateDoc)
	require.NoError(t, err)
	require.Len(t, requests, 2)

	assert.Equal(t, domain.ResourceRequest{
		Kind:   domain.KindPlacementGroup,
		Source: "aws_placement_group.web",
		Params: map[string]any{"name": "web", "strategy": "cluster", "tags": map[string]string{"Env": "prod"}},
	}, requests[0])

	assert.Equal(t, domain.KindKeySigningKey, requests[1].Kind)
	assert.Equal(t, "module.dns.aws_route53_key_signing_key.ksk", requests[1].Source)
	assert.Equal(t, "Z1", requests[1].Params["hosted_zone_id"])
}

func TestLoadPlanAddsDeletions(t *testing.T) {
	requests, err := loadDoc(t, planDoc)
	require.NoError(t, err)
	require.Len(t, requests, 2)

	assert.Equal(t, domain.KindElasticIP, requests[0].Kind)
	assert.Equal(t, map[string]any{"in_vpc": true, "tags": map[string]string{"Name": "nat"}}, requests[0].Params)

	assert.Equal(t, "aws_placement_group.old", requests[1].Source)
	assert.Equal(t, "absent", requests[1].Params["state"])
	assert.Equal(t, "old", requests[1].Params["name"])
}

func TestLoadEmptyState(t *testing.T) {
	requests, err := loadDoc(t, `{"format_version": "1.0"}`)
	require.NoError(t, err)
	assert.Empty(t, requests)
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"empty file", ""},
		{"not json", "{"},
		{"missing format version", `{"values": {}}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := loadDoc(t, tt.content)
			require.Error(t, err)
			assert.True(t, errors.Is(err, errors.CodeManifestParseError))
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	src, err := NewSource(Config{FilePath: filepath.Join(t.TempDir(), "absent.json")}, mocks.NewMockLogger())
	require.NoError(t, err)
	_, err = src.Load(context.Background())
	assert.True(t, errors.Is(err, errors.CodeManifestReadError))
}
