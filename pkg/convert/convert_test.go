package convert

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCamelToSnake(t *testing.T) {
	cases := map[string]string{
		"VpcId":                   "vpc_id",
		"IPAddress":               "ip_address",
		"PublicIpv4Pool":          "public_ipv4_pool",
		"CidrBlockAssociationSet": "cidr_block_association_set",
		"already_snake":           "already_snake",
		"LayerVersionArn":         "layer_version_arn",
	}
	for in, want := range cases {
		assert.Equal(t, want, CamelToSnake(in), in)
	}
}

type sampleTag struct {
	Key   *string
	Value *string
}

type sampleOutput struct {
	GroupName      *string
	PartitionCount *int32
	Tags           []sampleTag
	CreatedAt      *time.Time
	ResultMetadata map[string]any
}

func TestToSnakeMapDropsEnvelopeAndRenamesKeys(t *testing.T) {
	name, k, v := "pg-1", "env", "prod"
	count := int32(3)
	created := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)

	out, err := ToSnakeMap(sampleOutput{
		GroupName:      &name,
		PartitionCount: &count,
		Tags:           []sampleTag{{Key: &k, Value: &v}},
		CreatedAt:      &created,
		ResultMetadata: map[string]any{"RequestId": "abc"},
	})
	require.NoError(t, err)

	assert.Equal(t, "pg-1", out["group_name"])
	assert.EqualValues(t, 3, out["partition_count"])
	assert.Equal(t, "2024-01-02T03:04:05Z", out["created_at"])
	assert.NotContains(t, out, "result_metadata")
	assert.Equal(t, map[string]string{"env": "prod"}, TagListToMap(out["tags"]))
}

func TestToStringMap(t *testing.T) {
	m, err := ToStringMap(map[string]any{"a": "x", "b": true, "c": nil})
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"a": "x", "b": "true", "c": ""}, m)

	_, err = ToStringMap(map[string]any{"a": []string{"x"}})
	assert.Error(t, err)

	m, err = ToStringMap(nil)
	assert.NoError(t, err)
	assert.Nil(t, m)
}

func TestToSliceOfString(t *testing.T) {
	s, err := ToSliceOfString([]any{"a", 1})
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "1"}, s)

	_, err = ToSliceOfString("nope")
	assert.Error(t, err)
}
