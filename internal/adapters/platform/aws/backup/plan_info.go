package backup

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/backup"

	"github.com/olusolaa/infra-reconciler/internal/adapters/platform/aws/shared"
	"github.com/olusolaa/infra-reconciler/internal/core/domain"
	"github.com/olusolaa/infra-reconciler/internal/core/ports"
	apperrors "github.com/olusolaa/infra-reconciler/internal/errors"
	"github.com/olusolaa/infra-reconciler/pkg/convert"
)

type planInfoSpec struct {
	BackupPlanNames []string `mapstructure:"backup_plan_names" validate:"required,min=1,dive,required"`
}

// PlanInfo describes backup plans by name. Names that match no plan are
// left out of the result.
type PlanInfo struct {
	client BackupClientInterface
	caller shared.Caller
	logger ports.Logger
}

func NewPlanInfo(client BackupClientInterface, caller shared.Caller, logger ports.Logger) *PlanInfo {
	return &PlanInfo{client: client, caller: caller, logger: logger}
}

func (q *PlanInfo) Kind() domain.ResourceKind { return domain.KindBackupPlanInfo }
func (q *PlanInfo) Noun() string              { return "backup_plans" }

func (q *PlanInfo) Query(ctx context.Context, params map[string]any, _ ports.FailureHandler) ([]any, error) {
	var spec planInfoSpec
	if err := shared.DecodeParams(q.Kind(), params, &spec); err != nil {
		return nil, err
	}

	ids, err := q.planIDs(ctx)
	if err != nil {
		return nil, err
	}

	items := make([]any, 0, len(spec.BackupPlanNames))
	for _, name := range spec.BackupPlanNames {
		id, ok := ids[name]
		if !ok {
			q.logger.Debugf(ctx, "No backup plan named %s", name)
			continue
		}
		plan, err := q.details(ctx, id)
		if err != nil {
			return nil, err
		}
		items = append(items, plan)
	}
	return items, nil
}

// planIDs indexes every plan in the account by name.
func (q *PlanInfo) planIDs(ctx context.Context) (map[string]string, error) {
	ids := map[string]string{}
	input := &backup.ListBackupPlansInput{}
	for {
		out, err := shared.Invoke(ctx, q.caller, "backup", "ListBackupPlans", func(ctx context.Context) (*backup.ListBackupPlansOutput, error) {
			return q.client.ListBackupPlans(ctx, input)
		})
		if err != nil {
			return nil, err
		}
		for _, p := range out.BackupPlansList {
			name := aws.ToString(p.BackupPlanName)
			if _, seen := ids[name]; !seen {
				ids[name] = aws.ToString(p.BackupPlanId)
			}
		}
		if aws.ToString(out.NextToken) == "" {
			return ids, nil
		}
		input.NextToken = out.NextToken
	}
}

func (q *PlanInfo) details(ctx context.Context, id string) (map[string]any, error) {
	out, err := shared.Invoke(ctx, q.caller, "backup", "GetBackupPlan", func(ctx context.Context) (*backup.GetBackupPlanOutput, error) {
		return q.client.GetBackupPlan(ctx, &backup.GetBackupPlanInput{BackupPlanId: aws.String(id)})
	})
	if err != nil {
		return nil, apperrors.Reclassify(err, apperrors.GetCode(err), fmt.Sprintf("failed to describe plan %s", id))
	}

	tags, err := shared.Invoke(ctx, q.caller, "backup", "ListTags", func(ctx context.Context) (*backup.ListTagsOutput, error) {
		return q.client.ListTags(ctx, &backup.ListTagsInput{ResourceArn: out.BackupPlanArn})
	})
	if err != nil {
		return nil, apperrors.Reclassify(err, apperrors.GetCode(err), "failed to get the backup plan tags")
	}

	plan, err := convert.ToSnakeMap(out)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeInternal, "failed to render backup plan")
	}
	if out.BackupPlan != nil {
		plan["backup_plan_name"] = aws.ToString(out.BackupPlan.BackupPlanName)
	}
	planTags := tags.Tags
	if planTags == nil {
		planTags = map[string]string{}
	}
	plan[domain.KeyTags] = planTags
	return plan, nil
}
