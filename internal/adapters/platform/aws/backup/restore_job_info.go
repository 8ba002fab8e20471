package backup

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/backup"
	"github.com/aws/aws-sdk-go-v2/service/backup/types"

	"github.com/olusolaa/infra-reconciler/internal/adapters/platform/aws/shared"
	"github.com/olusolaa/infra-reconciler/internal/core/domain"
	"github.com/olusolaa/infra-reconciler/internal/core/ports"
	apperrors "github.com/olusolaa/infra-reconciler/internal/errors"
	"github.com/olusolaa/infra-reconciler/pkg/convert"
)

type restoreJobInfoSpec struct {
	RestoreJobID    string    `mapstructure:"restore_job_id" validate:"excluded_with=AccountID Status ResourceType"`
	AccountID       string    `mapstructure:"account_id"`
	Status          string    `mapstructure:"status" validate:"omitempty,oneof=PENDING RUNNING COMPLETED ABORTED FAILED"`
	ResourceType    string    `mapstructure:"resource_type"`
	CreatedBefore   time.Time `mapstructure:"created_before"`
	CreatedAfter    time.Time `mapstructure:"created_after"`
	CompletedBefore time.Time `mapstructure:"completed_before"`
	CompletedAfter  time.Time `mapstructure:"completed_after"`

	domain.FailurePolicies `mapstructure:",squash"`
}

// RestoreJobInfo describes one restore job by id, or lists the restore jobs
// matching the given filters.
type RestoreJobInfo struct {
	client BackupClientInterface
	caller shared.Caller
	logger ports.Logger
}

func NewRestoreJobInfo(client BackupClientInterface, caller shared.Caller, logger ports.Logger) *RestoreJobInfo {
	return &RestoreJobInfo{client: client, caller: caller, logger: logger}
}

func (q *RestoreJobInfo) Kind() domain.ResourceKind { return domain.KindRestoreJobInfo }
func (q *RestoreJobInfo) Noun() string              { return "restore_jobs" }

func (q *RestoreJobInfo) Query(ctx context.Context, params map[string]any, failures ports.FailureHandler) ([]any, error) {
	var spec restoreJobInfoSpec
	if err := shared.DecodeParams(q.Kind(), params, &spec); err != nil {
		return nil, err
	}
	if spec.RestoreJobID != "" {
		return q.describe(ctx, spec, failures)
	}

	jobs, err := q.list(ctx, listRestoreJobsInput(spec))
	if err != nil {
		return nil, err
	}
	items := make([]any, 0, len(jobs))
	for _, job := range jobs {
		item, err := convert.ToSnakeMap(job)
		if err != nil {
			return nil, apperrors.Wrap(err, apperrors.CodeInternal, "failed to render restore job")
		}
		items = append(items, item)
	}
	return items, nil
}

// listRestoreJobsInput maps the set filters onto ListRestoreJobs arguments.
func listRestoreJobsInput(spec restoreJobInfoSpec) *backup.ListRestoreJobsInput {
	input := &backup.ListRestoreJobsInput{}
	if spec.AccountID != "" {
		input.ByAccountId = aws.String(spec.AccountID)
	}
	if spec.Status != "" {
		input.ByStatus = types.RestoreJobStatus(spec.Status)
	}
	if spec.ResourceType != "" {
		input.ByResourceType = aws.String(spec.ResourceType)
	}
	input.ByCreatedBefore = timeOrNil(spec.CreatedBefore)
	input.ByCreatedAfter = timeOrNil(spec.CreatedAfter)
	input.ByCompleteBefore = timeOrNil(spec.CompletedBefore)
	input.ByCompleteAfter = timeOrNil(spec.CompletedAfter)
	return input
}

func timeOrNil(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return aws.Time(t)
}

func (q *RestoreJobInfo) list(ctx context.Context, input *backup.ListRestoreJobsInput) ([]types.RestoreJobsListMember, error) {
	var jobs []types.RestoreJobsListMember
	for {
		out, err := shared.Invoke(ctx, q.caller, "backup", "ListRestoreJobs", func(ctx context.Context) (*backup.ListRestoreJobsOutput, error) {
			return q.client.ListRestoreJobs(ctx, input)
		})
		if err != nil {
			return nil, apperrors.Reclassify(err, apperrors.GetCode(err), "failed to list restore jobs")
		}
		jobs = append(jobs, out.RestoreJobs...)
		if aws.ToString(out.NextToken) == "" {
			break
		}
		input.NextToken = out.NextToken
	}
	q.logger.Debugf(ctx, "Found %d restore jobs", len(jobs))
	return jobs, nil
}

func (q *RestoreJobInfo) describe(ctx context.Context, spec restoreJobInfoSpec, failures ports.FailureHandler) ([]any, error) {
	out, err := shared.Invoke(ctx, q.caller, "backup", "DescribeRestoreJob", func(ctx context.Context) (*backup.DescribeRestoreJobOutput, error) {
		return q.client.DescribeRestoreJob(ctx, &backup.DescribeRestoreJobInput{RestoreJobId: aws.String(spec.RestoreJobID)})
	})
	if err != nil {
		if err := failures.Handle(ctx, fmt.Sprintf("restore job %s", spec.RestoreJobID), err, spec.FailurePolicies); err != nil {
			return nil, err
		}
		return []any{}, nil
	}

	item, err := convert.ToSnakeMap(out)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeInternal, "failed to render restore job")
	}
	return []any{item}, nil
}
