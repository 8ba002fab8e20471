package iam

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/iam"
	"github.com/aws/aws-sdk-go-v2/service/iam/types"

	"github.com/olusolaa/infra-reconciler/internal/adapters/platform/aws/shared"
	"github.com/olusolaa/infra-reconciler/internal/core/domain"
	"github.com/olusolaa/infra-reconciler/internal/core/ports"
	apperrors "github.com/olusolaa/infra-reconciler/internal/errors"
	"github.com/olusolaa/infra-reconciler/pkg/convert"
)

// An unknown user has no devices unless the caller asks otherwise.
var mfaDefaultPolicies = domain.FailurePolicies{OnMissing: domain.PolicySkip}

type mfaDeviceInfoSpec struct {
	UserName string `mapstructure:"user_name"`

	domain.FailurePolicies `mapstructure:",squash"`
}

// MFADeviceInfo lists the MFA devices of one user, or of the calling
// identity when no user is named.
type MFADeviceInfo struct {
	client IAMClientInterface
	caller shared.Caller
	logger ports.Logger
}

func NewMFADeviceInfo(client IAMClientInterface, caller shared.Caller, logger ports.Logger) *MFADeviceInfo {
	return &MFADeviceInfo{client: client, caller: caller, logger: logger}
}

func (q *MFADeviceInfo) Kind() domain.ResourceKind { return domain.KindMFADeviceInfo }
func (q *MFADeviceInfo) Noun() string              { return "mfa_devices" }

func (q *MFADeviceInfo) Query(ctx context.Context, params map[string]any, failures ports.FailureHandler) ([]any, error) {
	var spec mfaDeviceInfoSpec
	if err := shared.DecodeParams(q.Kind(), params, &spec); err != nil {
		return nil, err
	}

	input := &iam.ListMFADevicesInput{}
	if spec.UserName != "" {
		input.UserName = aws.String(spec.UserName)
	}

	var devices []types.MFADevice
	for {
		out, err := shared.Invoke(ctx, q.caller, "iam", "ListMFADevices", func(ctx context.Context) (*iam.ListMFADevicesOutput, error) {
			return q.client.ListMFADevices(ctx, input)
		})
		if err != nil {
			subject := "MFA devices of the calling identity"
			if spec.UserName != "" {
				subject = fmt.Sprintf("MFA devices of user %s", spec.UserName)
			}
			if err := failures.Handle(ctx, subject, err, spec.FailurePolicies.Or(mfaDefaultPolicies)); err != nil {
				return nil, err
			}
			return []any{}, nil
		}
		devices = append(devices, out.MFADevices...)
		if !out.IsTruncated || aws.ToString(out.Marker) == "" {
			break
		}
		input.Marker = out.Marker
	}
	q.logger.Debugf(ctx, "Found %d MFA devices", len(devices))

	items := make([]any, 0, len(devices))
	for _, d := range devices {
		item, err := convert.ToSnakeMap(d)
		if err != nil {
			return nil, apperrors.Wrap(err, apperrors.CodeInternal, "failed to render MFA device")
		}
		items = append(items, item)
	}
	return items, nil
}
