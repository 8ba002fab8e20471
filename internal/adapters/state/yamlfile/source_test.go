package yamlfile

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/olusolaa/infra-reconciler/internal/core/domain"
	apperrors "github.com/olusolaa/infra-reconciler/internal/errors"
	"github.com/olusolaa/infra-reconciler/mocks"
)

const manifest = `
resources:
  - kind: placement_group
    name: web
    params:
      name: web-pg
      strategy: cluster
      tags:
        Env: prod
  - kind: secret
    params:
      terms: [db/password]
      on_missing: warn
`

func writeManifest(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "manifest.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoad(t *testing.T) {
	src, err := NewSource(Config{FilePath: writeManifest(t, manifest)}, mocks.NewMockLogger())
	require.NoError(t, err)
	assert.Equal(t, SourceTypeYAML, src.Type())

	requests, err := src.Load(context.Background())
	require.NoError(t, err)
	require.Len(t, requests, 2)

	assert.Equal(t, domain.KindPlacementGroup, requests[0].Kind)
	assert.Equal(t, "placement_group.web", requests[0].Source)
	assert.Equal(t, "cluster", requests[0].Params["strategy"])
	assert.Equal(t, map[string]any{"Env": "prod"}, requests[0].Params["tags"])

	assert.Equal(t, domain.KindSecret, requests[1].Kind)
	assert.Equal(t, "secret[1]", requests[1].Source)
	assert.Equal(t, []any{"db/password"}, requests[1].Params["terms"])
}

func TestParseRejectsBadManifests(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"missing kind", "resources:\n  - name: x\n"},
		{"duplicate name", "resources:\n  - {kind: secret, name: a}\n  - {kind: secret, name: a}\n"},
		{"unknown field", "resources:\n  - {kind: secret, parms: {}}\n"},
		{"not yaml", "resources: [\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.content))
			require.Error(t, err)
			assert.True(t, apperrors.Is(err, apperrors.CodeManifestParseError))
		})
	}
}

func TestParseEmptyDocument(t *testing.T) {
	requests, err := Parse(nil)
	require.NoError(t, err)
	assert.Empty(t, requests)
}

func TestEntryWithoutParams(t *testing.T) {
	requests, err := Parse([]byte("resources:\n  - {kind: vpc_info, name: all}\n"))
	require.NoError(t, err)
	require.Len(t, requests, 1)
	assert.NotNil(t, requests[0].Params)
}

func TestLoadMissingFile(t *testing.T) {
	src, err := NewSource(Config{FilePath: filepath.Join(t.TempDir(), "nope.yaml")}, mocks.NewMockLogger())
	require.NoError(t, err)
	_, err = src.Load(context.Background())
	assert.True(t, apperrors.Is(err, apperrors.CodeManifestReadError))
}

func TestNewSourceRequiresPath(t *testing.T) {
	_, err := NewSource(Config{}, mocks.NewMockLogger())
	assert.True(t, apperrors.Is(err, apperrors.CodeConfigValidation))
}
