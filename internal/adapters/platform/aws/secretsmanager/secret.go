package secretsmanager

import (
	"context"
	stderrors "errors"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager/types"

	"github.com/olusolaa/infra-reconciler/internal/adapters/platform/aws/shared"
	"github.com/olusolaa/infra-reconciler/internal/core/domain"
	"github.com/olusolaa/infra-reconciler/internal/core/ports"
	apperrors "github.com/olusolaa/infra-reconciler/internal/errors"
)

type secretSpec struct {
	Terms        []string `mapstructure:"terms" validate:"required,min=1,dive,required"`
	ByPath       bool     `mapstructure:"bypath"`
	Join         bool     `mapstructure:"join"`
	VersionID    string   `mapstructure:"version_id"`
	VersionStage string   `mapstructure:"version_stage"`
	FailFast     bool     `mapstructure:"fail_fast"`

	domain.FailurePolicies `mapstructure:",squash"`
}

// SecretLookup resolves secret values term by term. A missing or denied
// secret is handed to the failure policy. Any other failure is recorded and
// the remaining terms are still resolved, unless fail_fast is set.
type SecretLookup struct {
	client SecretsClientInterface
	caller shared.Caller
	logger ports.Logger
}

func NewSecretLookup(client SecretsClientInterface, caller shared.Caller, logger ports.Logger) *SecretLookup {
	return &SecretLookup{client: client, caller: caller, logger: logger}
}

func (q *SecretLookup) Kind() domain.ResourceKind { return domain.KindSecret }
func (q *SecretLookup) Noun() string              { return "secrets" }

// termErrors collects per-term failures of one lookup.
type termErrors struct {
	errs  []error
	total int
}

func (t *termErrors) add(err error) { t.errs = append(t.errs, err) }

func (t *termErrors) err() error {
	if len(t.errs) == 0 {
		return nil
	}
	return apperrors.Reclassify(stderrors.Join(t.errs...), apperrors.GetCode(t.errs[0]),
		fmt.Sprintf("%d of %d secret lookups failed", len(t.errs), t.total))
}

func (q *SecretLookup) Query(ctx context.Context, params map[string]any, failures ports.FailureHandler) ([]any, error) {
	var spec secretSpec
	if err := shared.DecodeParams(q.Kind(), lowerPolicies(params), &spec); err != nil {
		return nil, err
	}

	if spec.ByPath {
		secrets, err := q.byPath(ctx, spec, failures)
		return []any{secrets}, err
	}

	failed := &termErrors{total: len(spec.Terms)}
	values := make([]string, 0, len(spec.Terms))
	for _, term := range spec.Terms {
		value, found, err := q.value(ctx, term, spec, failures)
		if err != nil {
			failed.add(err)
			if spec.FailFast {
				break
			}
			continue
		}
		if found {
			values = append(values, value)
		}
	}

	if spec.Join {
		return []any{strings.Join(values, "")}, failed.err()
	}
	items := make([]any, 0, len(values))
	for _, v := range values {
		items = append(items, v)
	}
	return items, failed.err()
}

// byPath treats every term as a name filter and returns one map of all
// matching secrets keyed by name. Version selectors do not apply.
func (q *SecretLookup) byPath(ctx context.Context, spec secretSpec, failures ports.FailureHandler) (map[string]any, error) {
	secrets := map[string]any{}
	failed := &termErrors{}
	for _, term := range spec.Terms {
		if err := q.listPath(ctx, term, spec, failures, secrets, failed); err != nil {
			break
		}
	}
	q.logger.Debugf(ctx, "Resolved %d secrets by path", len(secrets))
	return secrets, failed.err()
}

// listPath resolves every secret matching term into secrets. It returns an
// error only when fail_fast asks to stop.
func (q *SecretLookup) listPath(ctx context.Context, term string, spec secretSpec, failures ports.FailureHandler, secrets map[string]any, failed *termErrors) error {
	input := &secretsmanager.ListSecretsInput{
		Filters: []types.Filter{{Key: types.FilterNameStringTypeName, Values: []string{term}}},
	}
	for {
		failed.total++
		out, err := shared.Invoke(ctx, q.caller, "secretsmanager", "ListSecrets", func(ctx context.Context) (*secretsmanager.ListSecretsOutput, error) {
			return q.client.ListSecrets(ctx, input)
		})
		if err != nil {
			if err = failures.Handle(ctx, fmt.Sprintf("secrets under %s", term), err, spec.FailurePolicies); err == nil {
				return nil
			}
			failed.add(err)
			if spec.FailFast {
				return err
			}
			return nil
		}
		for _, entry := range out.SecretList {
			name := aws.ToString(entry.Name)
			failed.total++
			value, found, err := q.value(ctx, name, secretSpec{FailurePolicies: spec.FailurePolicies}, failures)
			if err != nil {
				failed.add(err)
				if spec.FailFast {
					return err
				}
				continue
			}
			if found {
				secrets[name] = value
			}
		}
		if aws.ToString(out.NextToken) == "" {
			return nil
		}
		input.NextToken = out.NextToken
	}
}

// value fetches one secret. Binary secrets are returned as their raw bytes.
// found is false when the failure policy absorbed an error.
func (q *SecretLookup) value(ctx context.Context, id string, spec secretSpec, failures ports.FailureHandler) (string, bool, error) {
	input := &secretsmanager.GetSecretValueInput{SecretId: aws.String(id)}
	if spec.VersionID != "" {
		input.VersionId = aws.String(spec.VersionID)
	}
	if spec.VersionStage != "" {
		input.VersionStage = aws.String(spec.VersionStage)
	}

	out, err := shared.Invoke(ctx, q.caller, "secretsmanager", "GetSecretValue", func(ctx context.Context) (*secretsmanager.GetSecretValueOutput, error) {
		return q.client.GetSecretValue(ctx, input)
	})
	if err != nil {
		return "", false, failures.Handle(ctx, fmt.Sprintf("secret %s", id), err, spec.FailurePolicies)
	}
	if out.SecretBinary != nil {
		return string(out.SecretBinary), true, nil
	}
	return aws.ToString(out.SecretString), true, nil
}

// lowerPolicies accepts on_missing and on_denied in any case.
func lowerPolicies(params map[string]any) map[string]any {
	out := make(map[string]any, len(params))
	for k, v := range params {
		if s, ok := v.(string); ok && (k == "on_missing" || k == "on_denied") {
			v = strings.ToLower(s)
		}
		out[k] = v
	}
	return out
}
