package backup

import (
	"context"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/backup"
	"github.com/aws/aws-sdk-go-v2/service/backup/types"
	"github.com/aws/smithy-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/olusolaa/infra-reconciler/internal/core/domain"
	"github.com/olusolaa/infra-reconciler/internal/core/service"
	apperrors "github.com/olusolaa/infra-reconciler/internal/errors"
	"github.com/olusolaa/infra-reconciler/mocks"
)

func newPlanInfo(t *testing.T) (*PlanInfo, *mocks.MockBackupClient, *service.Reconciler) {
	t.Helper()
	client := new(mocks.MockBackupClient)
	t.Cleanup(func() { client.AssertExpectations(t) })
	logger := mocks.NewMockLogger()
	return NewPlanInfo(client, mocks.MockCaller{}, logger), client, service.NewReconciler(logger, domain.DefaultFailurePolicies())
}

func planEntry(name, id string) types.BackupPlansListMember {
	return types.BackupPlansListMember{BackupPlanName: aws.String(name), BackupPlanId: aws.String(id)}
}

func TestPlanInfoFollowsPagesAndAddsTags(t *testing.T) {
	info, client, reconciler := newPlanInfo(t)

	client.On("ListBackupPlans", mock.Anything, mock.MatchedBy(func(in *backup.ListBackupPlansInput) bool {
		return in.NextToken == nil
	})).Return(&backup.ListBackupPlansOutput{
		BackupPlansList: []types.BackupPlansListMember{planEntry("daily", "p-1")},
		NextToken:       aws.String("t2"),
	}, nil).Once()
	client.On("ListBackupPlans", mock.Anything, mock.MatchedBy(func(in *backup.ListBackupPlansInput) bool {
		return aws.ToString(in.NextToken) == "t2"
	})).Return(&backup.ListBackupPlansOutput{
		BackupPlansList: []types.BackupPlansListMember{planEntry("weekly", "p-2")},
	}, nil).Once()
	client.On("GetBackupPlan", mock.Anything, &backup.GetBackupPlanInput{BackupPlanId: aws.String("p-2")}).
		Return(&backup.GetBackupPlanOutput{
			BackupPlanArn: aws.String("arn:aws:backup:eu-west-1:123456789012:backup-plan:p-2"),
			BackupPlanId:  aws.String("p-2"),
			VersionId:     aws.String("v1"),
			BackupPlan: &types.BackupPlan{
				BackupPlanName: aws.String("weekly"),
				Rules: []types.BackupRule{{
					RuleName:              aws.String("sunday"),
					TargetBackupVaultName: aws.String("Default"),
				}},
			},
		}, nil).Once()
	client.On("ListTags", mock.Anything, &backup.ListTagsInput{
		ResourceArn: aws.String("arn:aws:backup:eu-west-1:123456789012:backup-plan:p-2"),
	}).Return(&backup.ListTagsOutput{Tags: map[string]string{"team": "ops"}}, nil).Once()

	result, err := reconciler.Query(context.Background(), info, map[string]any{"backup_plan_names": []string{"weekly", "missing"}})
	require.NoError(t, err)
	require.Len(t, result.Items, 1)

	plan := result.Items[0].(map[string]any)
	assert.Equal(t, "weekly", plan["backup_plan_name"])
	assert.Equal(t, "p-2", plan["backup_plan_id"])
	assert.Equal(t, "v1", plan["version_id"])
	assert.Equal(t, map[string]string{"team": "ops"}, plan["tags"])

	rules := plan["backup_plan"].(map[string]any)["rules"].([]any)
	assert.Equal(t, "sunday", rules[0].(map[string]any)["rule_name"])
	assert.Equal(t, "backup_plans", result.Noun)
}

func TestPlanInfoRequiresNames(t *testing.T) {
	info, _, reconciler := newPlanInfo(t)

	_, err := reconciler.Query(context.Background(), info, map[string]any{})
	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.CodeValidation))
}

func TestPlanInfoDescribeFailure(t *testing.T) {
	info, client, reconciler := newPlanInfo(t)

	client.On("ListBackupPlans", mock.Anything, mock.Anything).Return(&backup.ListBackupPlansOutput{
		BackupPlansList: []types.BackupPlansListMember{planEntry("daily", "p-1")},
	}, nil).Once()
	client.On("GetBackupPlan", mock.Anything, mock.Anything).
		Return(nil, &smithy.GenericAPIError{Code: "AccessDeniedException"}).Once()

	_, err := reconciler.Query(context.Background(), info, map[string]any{"backup_plan_names": []string{"daily"}})
	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.CodePlatformAuthError))
	assert.Contains(t, err.Error(), "failed to describe plan p-1")
}
