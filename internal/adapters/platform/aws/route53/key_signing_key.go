package route53

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/route53"
	"github.com/aws/aws-sdk-go-v2/service/route53/types"

	awserrors "github.com/olusolaa/infra-reconciler/internal/adapters/platform/aws/errors"
	"github.com/olusolaa/infra-reconciler/internal/adapters/platform/aws/shared"
	"github.com/olusolaa/infra-reconciler/internal/core/domain"
	"github.com/olusolaa/infra-reconciler/internal/core/ports"
	apperrors "github.com/olusolaa/infra-reconciler/internal/errors"
	"github.com/olusolaa/infra-reconciler/pkg/convert"
)

const (
	statusActive   = "ACTIVE"
	statusInactive = "INACTIVE"

	defaultWaitTimeout = 300 * time.Second
	waitDelay          = 5 * time.Second
)

type kskSpec struct {
	HostedZoneID    string       `mapstructure:"hosted_zone_id" validate:"required"`
	Name            string       `mapstructure:"name" validate:"required"`
	KMSARN          string       `mapstructure:"key_management_service_arn"`
	CallerReference string       `mapstructure:"caller_reference"`
	Status          string       `mapstructure:"status" validate:"omitempty,oneof=ACTIVE INACTIVE"`
	State           domain.State `mapstructure:"state" validate:"omitempty,oneof=present absent"`
	Wait            bool         `mapstructure:"wait"`
	WaitTimeout     int          `mapstructure:"wait_timeout" validate:"omitempty,min=5"`
}

func (s kskSpec) timeout() time.Duration {
	if s.WaitTimeout == 0 {
		return defaultWaitTimeout
	}
	return time.Duration(s.WaitTimeout) * time.Second
}

var kskAliases = map[string]string{
	"zone_id": "hosted_zone_id",
	"kms_arn": "key_management_service_arn",
}

// KeySigningKeyAdapter manages DNSSEC key-signing keys of a hosted zone. The
// KMS key backing a KSK cannot be swapped in place.
type KeySigningKeyAdapter struct {
	client    Route53ClientInterface
	caller    shared.Caller
	logger    ports.Logger
	waitDelay time.Duration
}

func NewKeySigningKeyAdapter(client Route53ClientInterface, caller shared.Caller, logger ports.Logger) *KeySigningKeyAdapter {
	return &KeySigningKeyAdapter{client: client, caller: caller, logger: logger, waitDelay: waitDelay}
}

func (a *KeySigningKeyAdapter) Kind() domain.ResourceKind { return domain.KindKeySigningKey }
func (a *KeySigningKeyAdapter) Noun() string              { return "key_signing_key" }

func (a *KeySigningKeyAdapter) Decode(params map[string]any) (domain.DesiredState, error) {
	params, err := shared.ResolveAliases(params, kskAliases)
	if err != nil {
		return domain.DesiredState{}, err
	}
	var spec kskSpec
	if err := shared.DecodeParams(a.Kind(), params, &spec); err != nil {
		return domain.DesiredState{}, err
	}
	if spec.Status == "" {
		spec.Status = statusActive
	}
	state := shared.StateOrDefault(spec.State)
	if state == domain.StatePresent && (spec.CallerReference == "" || spec.KMSARN == "") {
		return domain.DesiredState{}, shared.Invalid("state is present but all of the following are missing: caller_reference, key_management_service_arn")
	}

	attrs := map[string]any{domain.KSKStatusKey: spec.Status}
	if spec.KMSARN != "" {
		attrs[domain.KSKKMSARNKey] = spec.KMSARN
	}
	return domain.DesiredState{
		Kind:       a.Kind(),
		State:      state,
		Identity:   fmt.Sprintf("%s/%s", spec.HostedZoneID, spec.Name),
		Attributes: attrs,
		Spec:       spec,
	}, nil
}

func (a *KeySigningKeyAdapter) Rules() []domain.FieldRule {
	return []domain.FieldRule{
		domain.Exact(domain.KSKStatusKey),
		domain.Exact(domain.KSKKMSARNKey).Frozen(),
	}
}

// Describe reads the zone's DNSSEC state and picks the key by name. A zone
// that no longer exists holds no keys to remove.
func (a *KeySigningKeyAdapter) Describe(ctx context.Context, desired domain.DesiredState) (*domain.ObservedState, error) {
	spec := desired.Spec.(kskSpec)
	out, err := shared.Invoke(ctx, a.caller, "route53", "GetDNSSEC", func(ctx context.Context) (*route53.GetDNSSECOutput, error) {
		return a.client.GetDNSSEC(ctx, &route53.GetDNSSECInput{HostedZoneId: aws.String(spec.HostedZoneID)})
	})
	if err != nil {
		if desired.State == domain.StateAbsent && awserrors.HasCode(err, "NoSuchHostedZone") {
			return nil, nil
		}
		return nil, err
	}

	var matches []types.KeySigningKey
	for _, key := range out.KeySigningKeys {
		if aws.ToString(key.Name) == spec.Name {
			matches = append(matches, key)
		}
	}
	switch len(matches) {
	case 0:
		return nil, nil
	case 1:
		return observedKey(spec.HostedZoneID, matches[0])
	default:
		return nil, shared.Ambiguous(a.Kind(), desired.Identity, len(matches))
	}
}

func observedKey(zoneID string, key types.KeySigningKey) (*domain.ObservedState, error) {
	attrs, err := convert.ToSnakeMap(key)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeInternal, "failed to normalize key-signing key")
	}
	attrs[domain.KSKHostedZoneIDKey] = zoneID
	return &domain.ObservedState{
		Identity:   fmt.Sprintf("%s/%s", zoneID, aws.ToString(key.Name)),
		Attributes: attrs,
	}, nil
}

func (a *KeySigningKeyAdapter) Create(ctx context.Context, desired domain.DesiredState) (*domain.ObservedState, error) {
	spec := desired.Spec.(kskSpec)
	out, err := shared.Invoke(ctx, a.caller, "route53", "CreateKeySigningKey", func(ctx context.Context) (*route53.CreateKeySigningKeyOutput, error) {
		return a.client.CreateKeySigningKey(ctx, &route53.CreateKeySigningKeyInput{
			CallerReference:         aws.String(spec.CallerReference),
			HostedZoneId:            aws.String(spec.HostedZoneID),
			KeyManagementServiceArn: aws.String(spec.KMSARN),
			Name:                    aws.String(spec.Name),
			Status:                  aws.String(spec.Status),
		})
	})
	if err != nil {
		return nil, err
	}
	a.logger.Infof(ctx, "Created key-signing key %s", desired.Identity)
	return a.settle(ctx, desired, out.ChangeInfo)
}

func (a *KeySigningKeyAdapter) Update(ctx context.Context, desired domain.DesiredState, observed *domain.ObservedState, diff domain.Diff) (*domain.ObservedState, error) {
	spec := desired.Spec.(kskSpec)
	if !diff.Has(domain.KSKStatusKey) {
		return observed, nil
	}

	var change *types.ChangeInfo
	var err error
	if spec.Status == statusActive {
		change, err = a.activate(ctx, spec)
	} else {
		change, err = a.deactivate(ctx, spec)
	}
	if err != nil {
		return nil, err
	}
	a.logger.Infof(ctx, "Set key-signing key %s to %s", desired.Identity, spec.Status)
	return a.settle(ctx, desired, change)
}

// Delete deactivates an active key first; Route 53 only deletes inactive
// keys once the deactivation is in sync.
func (a *KeySigningKeyAdapter) Delete(ctx context.Context, desired domain.DesiredState, observed *domain.ObservedState) error {
	spec := desired.Spec.(kskSpec)

	if observed.String(domain.KSKStatusKey) != statusInactive {
		change, err := a.deactivate(ctx, spec)
		if err != nil {
			if awserrors.HasCode(err, "NoSuchKeySigningKey") {
				return nil
			}
			return err
		}
		if err := a.waitForChange(ctx, change, spec.timeout()); err != nil {
			return err
		}
	}

	out, err := shared.Invoke(ctx, a.caller, "route53", "DeleteKeySigningKey", func(ctx context.Context) (*route53.DeleteKeySigningKeyOutput, error) {
		return a.client.DeleteKeySigningKey(ctx, &route53.DeleteKeySigningKeyInput{
			HostedZoneId: aws.String(spec.HostedZoneID),
			Name:         aws.String(spec.Name),
		})
	})
	if err != nil {
		if awserrors.HasCode(err, "NoSuchKeySigningKey") {
			return nil
		}
		return err
	}
	a.logger.Infof(ctx, "Deleted key-signing key %s", desired.Identity)

	if spec.Wait {
		return a.waitForChange(ctx, out.ChangeInfo, spec.timeout())
	}
	return nil
}

func (a *KeySigningKeyAdapter) activate(ctx context.Context, spec kskSpec) (*types.ChangeInfo, error) {
	out, err := shared.Invoke(ctx, a.caller, "route53", "ActivateKeySigningKey", func(ctx context.Context) (*route53.ActivateKeySigningKeyOutput, error) {
		return a.client.ActivateKeySigningKey(ctx, &route53.ActivateKeySigningKeyInput{
			HostedZoneId: aws.String(spec.HostedZoneID),
			Name:         aws.String(spec.Name),
		})
	})
	if err != nil {
		return nil, err
	}
	return out.ChangeInfo, nil
}

func (a *KeySigningKeyAdapter) deactivate(ctx context.Context, spec kskSpec) (*types.ChangeInfo, error) {
	out, err := shared.Invoke(ctx, a.caller, "route53", "DeactivateKeySigningKey", func(ctx context.Context) (*route53.DeactivateKeySigningKeyOutput, error) {
		return a.client.DeactivateKeySigningKey(ctx, &route53.DeactivateKeySigningKeyInput{
			HostedZoneId: aws.String(spec.HostedZoneID),
			Name:         aws.String(spec.Name),
		})
	})
	if err != nil {
		return nil, err
	}
	return out.ChangeInfo, nil
}

// settle optionally waits for change to reach INSYNC, then re-reads the key
// and attaches the change record.
func (a *KeySigningKeyAdapter) settle(ctx context.Context, desired domain.DesiredState, change *types.ChangeInfo) (*domain.ObservedState, error) {
	spec := desired.Spec.(kskSpec)
	if spec.Wait {
		if err := a.waitForChange(ctx, change, spec.timeout()); err != nil {
			return nil, err
		}
		if change != nil {
			out, err := shared.Invoke(ctx, a.caller, "route53", "GetChange", func(ctx context.Context) (*route53.GetChangeOutput, error) {
				return a.client.GetChange(ctx, &route53.GetChangeInput{Id: change.Id})
			})
			if err != nil {
				return nil, err
			}
			change = out.ChangeInfo
		}
	}

	observed, err := a.Describe(ctx, desired)
	if err != nil || observed == nil {
		return observed, err
	}
	if change != nil {
		info, err := convert.ToSnakeMap(change)
		if err != nil {
			return nil, apperrors.Wrap(err, apperrors.CodeInternal, "failed to normalize change info")
		}
		observed.Attributes["change_info"] = info
	}
	return observed, nil
}

func (a *KeySigningKeyAdapter) waitForChange(ctx context.Context, change *types.ChangeInfo, timeout time.Duration) error {
	if change == nil || change.Id == nil {
		return nil
	}
	waiter := route53.NewResourceRecordSetsChangedWaiter(a.client, func(o *route53.ResourceRecordSetsChangedWaiterOptions) {
		o.MinDelay = a.waitDelay
		if o.MaxDelay < o.MinDelay {
			o.MaxDelay = o.MinDelay
		}
	})
	a.logger.Debugf(ctx, "Waiting up to %s for change %s", timeout, aws.ToString(change.Id))
	if err := waiter.Wait(ctx, &route53.GetChangeInput{Id: change.Id}, timeout); err != nil {
		return apperrors.Wrap(err, apperrors.CodeTimeout, "Timeout waiting for changes to be applied")
	}
	return nil
}
