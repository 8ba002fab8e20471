package route53

import (
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/route53/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/olusolaa/infra-reconciler/internal/core/domain"
	"github.com/olusolaa/infra-reconciler/internal/core/service"
	"github.com/olusolaa/infra-reconciler/mocks"
)

func TestNormalizedKeyRederivesToNoop(t *testing.T) {
	created := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	tests := []struct {
		name    string
		fixture types.KeySigningKey
	}{
		{
			name: "active",
			fixture: types.KeySigningKey{
				Name:        aws.String("ksk"),
				KmsArn:      aws.String("arn:aws:kms:us-east-1:111122223333:key/abc"),
				Status:      aws.String(statusActive),
				Flag:        257,
				CreatedDate: &created,
			},
		},
		{
			name: "inactive",
			fixture: types.KeySigningKey{
				Name:          aws.String("ksk-old"),
				KmsArn:        aws.String("arn:aws:kms:us-east-1:111122223333:key/def"),
				Status:        aws.String(statusInactive),
				StatusMessage: aws.String("deactivated"),
			},
		},
	}

	adapter := NewKeySigningKeyAdapter(new(mocks.MockRoute53Client), mocks.MockCaller{}, mocks.NewMockLogger())
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			observed, err := observedKey("Z123", tt.fixture)
			require.NoError(t, err)

			desired, err := adapter.Decode(map[string]any{
				"hosted_zone_id":             observed.Attributes[domain.KSKHostedZoneIDKey],
				"name":                       observed.Attributes[domain.KeyName],
				"key_management_service_arn": observed.Attributes[domain.KSKKMSARNKey],
				"status":                     observed.Attributes[domain.KSKStatusKey],
				"caller_reference":           "ref-1",
			})
			require.NoError(t, err)
			assert.Equal(t, observed.Identity, desired.Identity)

			diff := service.ComputeDiff(adapter.Rules(), desired, observed)
			assert.Equal(t, domain.ActionNoop, diff.Action, "differences: %v", diff.Differences)
		})
	}
}
