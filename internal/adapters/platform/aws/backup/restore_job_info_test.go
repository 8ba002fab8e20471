package backup

import (
	"context"
	"testing"
	"time"

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

func newRestoreJobInfo(t *testing.T) (*RestoreJobInfo, *mocks.MockBackupClient, *service.Reconciler) {
	t.Helper()
	client := new(mocks.MockBackupClient)
	t.Cleanup(func() { client.AssertExpectations(t) })
	logger := mocks.NewMockLogger()
	return NewRestoreJobInfo(client, mocks.MockCaller{}, logger), client, service.NewReconciler(logger, domain.DefaultFailurePolicies())
}

func TestListRestoreJobsInput(t *testing.T) {
	before := time.Date(2023, 3, 14, 0, 0, 0, 0, time.UTC)
	tests := []struct {
		name string
		spec restoreJobInfoSpec
		want *backup.ListRestoreJobsInput
	}{
		{"no filters", restoreJobInfoSpec{}, &backup.ListRestoreJobsInput{}},
		{"account", restoreJobInfoSpec{AccountID: "123456789012"}, &backup.ListRestoreJobsInput{ByAccountId: aws.String("123456789012")}},
		{
			"account and status",
			restoreJobInfoSpec{AccountID: "123456789012", Status: "COMPLETED"},
			&backup.ListRestoreJobsInput{ByAccountId: aws.String("123456789012"), ByStatus: types.RestoreJobStatusCompleted},
		},
		{
			"dates and resource type",
			restoreJobInfoSpec{ResourceType: "EC2", CreatedBefore: before, CompletedAfter: before},
			&backup.ListRestoreJobsInput{ByResourceType: aws.String("EC2"), ByCreatedBefore: aws.Time(before), ByCompleteAfter: aws.Time(before)},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, listRestoreJobsInput(tt.spec))
		})
	}
}

func TestRestoreJobInfoListsWithFilters(t *testing.T) {
	info, client, reconciler := newRestoreJobInfo(t)

	created := time.Date(2023, 3, 13, 22, 53, 7, 0, time.UTC)
	client.On("ListRestoreJobs", mock.Anything, mock.MatchedBy(func(in *backup.ListRestoreJobsInput) bool {
		return in.NextToken == nil && aws.ToString(in.ByAccountId) == "123456789012" &&
			in.ByStatus == types.RestoreJobStatusCompleted && in.ByCreatedAfter.Equal(created)
	})).Return(&backup.ListRestoreJobsOutput{
		RestoreJobs: []types.RestoreJobsListMember{{
			AccountId:          aws.String("123456789012"),
			RestoreJobId:       aws.String("52BEE289-47DCAA2E7ACD"),
			ResourceType:       aws.String("EC2"),
			Status:             types.RestoreJobStatusCompleted,
			CreatedResourceArn: aws.String("arn:aws:ec2:us-east-2:123456789012:instance/i-01234567ec51af3f"),
			PercentDone:        aws.String("0.00%"),
		}},
		NextToken: aws.String("t2"),
	}, nil).Once()
	client.On("ListRestoreJobs", mock.Anything, mock.MatchedBy(func(in *backup.ListRestoreJobsInput) bool {
		return aws.ToString(in.NextToken) == "t2"
	})).Return(&backup.ListRestoreJobsOutput{
		RestoreJobs: []types.RestoreJobsListMember{{RestoreJobId: aws.String("second"), Status: types.RestoreJobStatusCompleted}},
	}, nil).Once()

	result, err := reconciler.Query(context.Background(), info, map[string]any{
		"account_id":    "123456789012",
		"status":        "COMPLETED",
		"created_after": "2023-03-13T15:53:07-07:00",
	})
	require.NoError(t, err)
	require.Len(t, result.Items, 2)
	assert.Equal(t, "restore_jobs", result.Noun)

	job := result.Items[0].(map[string]any)
	assert.Equal(t, "52BEE289-47DCAA2E7ACD", job["restore_job_id"])
	assert.Equal(t, "COMPLETED", job["status"])
	assert.Equal(t, "EC2", job["resource_type"])
	assert.Equal(t, "0.00%", job["percent_done"])
}

func TestRestoreJobInfoDescribesOneJob(t *testing.T) {
	info, client, reconciler := newRestoreJobInfo(t)

	client.On("DescribeRestoreJob", mock.Anything, &backup.DescribeRestoreJobInput{RestoreJobId: aws.String("job-1")}).
		Return(&backup.DescribeRestoreJobOutput{
			RestoreJobId: aws.String("job-1"),
			Status:       types.RestoreJobStatusRunning,
		}, nil).Once()

	result, err := reconciler.Query(context.Background(), info, map[string]any{"restore_job_id": "job-1"})
	require.NoError(t, err)
	require.Len(t, result.Items, 1)
	job := result.Items[0].(map[string]any)
	assert.Equal(t, "job-1", job["restore_job_id"])
	assert.Equal(t, "RUNNING", job["status"])
	assert.NotContains(t, job, "result_metadata")
}

func TestRestoreJobInfoMissingJob(t *testing.T) {
	notFound := &smithy.GenericAPIError{Code: "ResourceNotFoundException"}

	t.Run("fails by default", func(t *testing.T) {
		info, client, reconciler := newRestoreJobInfo(t)
		client.On("DescribeRestoreJob", mock.Anything, mock.Anything).Return(nil, notFound).Once()

		_, err := reconciler.Query(context.Background(), info, map[string]any{"restore_job_id": "gone"})
		require.Error(t, err)
		assert.True(t, apperrors.Is(err, apperrors.CodeResourceNotFound))
		assert.Contains(t, err.Error(), "failed to find restore job gone")
	})

	t.Run("warn returns nothing", func(t *testing.T) {
		info, client, reconciler := newRestoreJobInfo(t)
		client.On("DescribeRestoreJob", mock.Anything, mock.Anything).Return(nil, notFound).Once()

		result, err := reconciler.Query(context.Background(), info, map[string]any{"restore_job_id": "gone", "on_missing": "warn"})
		require.NoError(t, err)
		assert.Empty(t, result.Items)
		assert.Equal(t, []string{"skipping, did not find restore job gone"}, result.Warnings)
	})
}

func TestRestoreJobInfoRejectsIdWithFilters(t *testing.T) {
	info, _, reconciler := newRestoreJobInfo(t)

	_, err := reconciler.Query(context.Background(), info, map[string]any{"restore_job_id": "job-1", "status": "COMPLETED"})
	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.CodeValidation))

	_, err = reconciler.Query(context.Background(), info, map[string]any{"status": "DONE"})
	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.CodeValidation))
}
