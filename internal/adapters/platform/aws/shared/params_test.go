package shared

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/olusolaa/infra-reconciler/internal/core/domain"
	apperrors "github.com/olusolaa/infra-reconciler/internal/errors"
)

type sampleSpec struct {
	Name      string            `mapstructure:"name" validate:"required"`
	State     domain.State      `mapstructure:"state" validate:"omitempty,oneof=present absent"`
	Count     int32             `mapstructure:"count"`
	Tags      map[string]string `mapstructure:"tags"`
	PurgeTags *bool             `mapstructure:"purge_tags"`
	Names     []string          `mapstructure:"names"`
}

func TestDecodeParams(t *testing.T) {
	var spec sampleSpec
	err := DecodeParams("sample", map[string]any{
		"name":       "pg",
		"count":      "3",
		"tags":       map[string]any{"n": 1},
		"purge_tags": "false",
		"names":      "a,b",
	}, &spec)
	require.NoError(t, err)

	assert.Equal(t, "pg", spec.Name)
	assert.Equal(t, int32(3), spec.Count)
	assert.Equal(t, map[string]string{"n": "1"}, spec.Tags)
	assert.False(t, BoolOr(spec.PurgeTags, true))
	assert.Equal(t, []string{"a", "b"}, spec.Names)
	assert.Equal(t, domain.StatePresent, StateOrDefault(spec.State))
}

func TestDecodeParamsRejectsUnknownAndInvalid(t *testing.T) {
	var spec sampleSpec
	err := DecodeParams("sample", map[string]any{"name": "pg", "bogus": 1}, &spec)
	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.CodeValidation))

	spec = sampleSpec{}
	err = DecodeParams("sample", map[string]any{"state": "gone"}, &spec)
	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.CodeValidation))
	assert.Contains(t, err.Error(), "Field 'sampleSpec.Name'")
	assert.Contains(t, err.Error(), "Field 'sampleSpec.State'")
}

func TestDecodeParamsParsesTimestamps(t *testing.T) {
	var spec struct {
		After time.Time `mapstructure:"after"`
	}
	require.NoError(t, DecodeParams("sample", map[string]any{"after": "2023-03-13T15:53:07Z"}, &spec))
	assert.Equal(t, time.Date(2023, 3, 13, 15, 53, 7, 0, time.UTC), spec.After.UTC())

	err := DecodeParams("sample", map[string]any{"after": "yesterday"}, &spec)
	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.CodeValidation))
}

func TestAmbiguous(t *testing.T) {
	err := Ambiguous(domain.KindPlacementGroup, "web", 2)
	assert.True(t, apperrors.Is(err, apperrors.CodeAmbiguousResource))
	assert.Contains(t, err.Error(), "found 2 placement_group resources matching 'web'")
}

type countingCaller struct{ calls int }

func (c *countingCaller) Call(ctx context.Context, service, operation string, fn func(ctx context.Context) error) error {
	c.calls++
	return fn(ctx)
}

func TestInvoke(t *testing.T) {
	c := &countingCaller{}
	out, err := Invoke(context.Background(), c, "svc", "Op", func(context.Context) (string, error) {
		return "ok", nil
	})
	require.NoError(t, err)
	assert.Equal(t, "ok", out)

	_, err = Invoke(context.Background(), c, "svc", "Op", func(context.Context) (*string, error) {
		return nil, errors.New("boom")
	})
	assert.EqualError(t, err, "boom")
	assert.Equal(t, 2, c.calls)
}

func TestResolveAliases(t *testing.T) {
	aliases := map[string]string{"zone_id": "hosted_zone_id"}

	out, err := ResolveAliases(map[string]any{"zone_id": "Z1", "name": "k"}, aliases)
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"hosted_zone_id": "Z1", "name": "k"}, out)

	_, err = ResolveAliases(map[string]any{"zone_id": "Z1", "hosted_zone_id": "Z2"}, aliases)
	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.CodeValidation))
}
