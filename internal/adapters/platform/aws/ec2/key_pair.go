package ec2

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ec2"
	"github.com/aws/aws-sdk-go-v2/service/ec2/types"
	"golang.org/x/crypto/ssh"

	awserrors "github.com/olusolaa/infra-reconciler/internal/adapters/platform/aws/errors"
	"github.com/olusolaa/infra-reconciler/internal/adapters/platform/aws/shared"
	"github.com/olusolaa/infra-reconciler/internal/core/domain"
	"github.com/olusolaa/infra-reconciler/internal/core/ports"
	apperrors "github.com/olusolaa/infra-reconciler/internal/errors"
)

type keyPairSpec struct {
	Name        string            `mapstructure:"name" validate:"required"`
	State       domain.State      `mapstructure:"state" validate:"omitempty,oneof=present absent"`
	KeyMaterial string            `mapstructure:"key_material"`
	KeyType     string            `mapstructure:"key_type" validate:"omitempty,oneof=rsa ed25519"`
	Force       *bool             `mapstructure:"force"`
	FileName    string            `mapstructure:"file_name"`
	Tags        map[string]string `mapstructure:"tags"`
	PurgeTags   *bool             `mapstructure:"purge_tags"`
}

// KeyPairAdapter reconciles EC2 key pairs. A key whose material or type no
// longer matches is replaced, since neither can be changed in place.
type KeyPairAdapter struct {
	client EC2ClientInterface
	caller shared.Caller
	logger ports.Logger
}

func NewKeyPairAdapter(client EC2ClientInterface, caller shared.Caller, logger ports.Logger) *KeyPairAdapter {
	return &KeyPairAdapter{client: client, caller: caller, logger: logger}
}

func (a *KeyPairAdapter) Kind() domain.ResourceKind { return domain.KindKeyPair }
func (a *KeyPairAdapter) Noun() string              { return "key" }

func (a *KeyPairAdapter) Decode(params map[string]any) (domain.DesiredState, error) {
	var spec keyPairSpec
	if err := shared.DecodeParams(a.Kind(), params, &spec); err != nil {
		return domain.DesiredState{}, err
	}

	attrs := map[string]any{
		domain.KeyTags:               desiredTags(spec.Tags),
		domain.KeyPairFingerprintKey: nil,
		domain.KeyPairTypeKey:        nil,
	}
	if spec.KeyMaterial != "" {
		fingerprint, keyType, err := publicKeyFingerprint(spec.KeyMaterial)
		if err != nil {
			return domain.DesiredState{}, err
		}
		if spec.KeyType != "" && spec.KeyType != keyType {
			return domain.DesiredState{}, shared.Invalid("key_type %s does not match the %s key_material", spec.KeyType, keyType)
		}
		spec.KeyType = keyType
		// Without force an existing key is kept whatever its material.
		if shared.BoolOr(spec.Force, true) {
			attrs[domain.KeyPairFingerprintKey] = fingerprint
		}
	} else if spec.KeyType != "" {
		attrs[domain.KeyPairTypeKey] = spec.KeyType
	}

	return domain.DesiredState{
		Kind:       a.Kind(),
		State:      shared.StateOrDefault(spec.State),
		Identity:   spec.Name,
		Attributes: attrs,
		PurgeTags:  shared.BoolOr(spec.PurgeTags, true),
		Spec:       spec,
	}, nil
}

func (a *KeyPairAdapter) Rules() []domain.FieldRule {
	return []domain.FieldRule{
		domain.Exact(domain.KeyPairFingerprintKey),
		domain.Exact(domain.KeyPairTypeKey),
		domain.Tags(),
	}
}

func (a *KeyPairAdapter) Describe(ctx context.Context, desired domain.DesiredState) (*domain.ObservedState, error) {
	out, err := shared.Invoke(ctx, a.caller, "ec2", "DescribeKeyPairs", func(ctx context.Context) (*ec2.DescribeKeyPairsOutput, error) {
		return a.client.DescribeKeyPairs(ctx, &ec2.DescribeKeyPairsInput{KeyNames: []string{desired.Identity}})
	})
	if err != nil {
		if awserrors.HasCode(err, "InvalidKeyPair.NotFound") {
			return nil, nil
		}
		return nil, err
	}
	switch len(out.KeyPairs) {
	case 0:
		return nil, nil
	case 1:
		return observedKeyPair(out.KeyPairs[0]), nil
	default:
		return nil, shared.Ambiguous(a.Kind(), desired.Identity, len(out.KeyPairs))
	}
}

func (a *KeyPairAdapter) Create(ctx context.Context, desired domain.DesiredState) (*domain.ObservedState, error) {
	spec := desired.Spec.(keyPairSpec)
	if spec.KeyMaterial != "" {
		if err := a.importKey(ctx, spec); err != nil {
			return nil, err
		}
		return a.Describe(ctx, desired)
	}
	return a.createKey(ctx, desired)
}

func (a *KeyPairAdapter) Update(ctx context.Context, desired domain.DesiredState, observed *domain.ObservedState, diff domain.Diff) (*domain.ObservedState, error) {
	spec := desired.Spec.(keyPairSpec)

	switch {
	case diff.Has(domain.KeyPairFingerprintKey):
		if err := a.deleteKey(ctx, spec.Name); err != nil {
			return nil, err
		}
		if err := a.importKey(ctx, spec); err != nil {
			return nil, err
		}
		a.logger.Infof(ctx, "Replaced key pair %s with new key material", spec.Name)
		return a.Describe(ctx, desired)
	case diff.Has(domain.KeyPairTypeKey):
		if err := a.deleteKey(ctx, spec.Name); err != nil {
			return nil, err
		}
		a.logger.Infof(ctx, "Replacing key pair %s with a %s key", spec.Name, spec.KeyType)
		return a.createKey(ctx, desired)
	}

	if diff.Has(domain.KeyTags) {
		if _, err := syncTags(ctx, a.client, a.caller, observed.String(domain.KeyID), spec.Tags, observed.Tags(), desired.PurgeTags); err != nil {
			return nil, err
		}
	}
	return a.Describe(ctx, desired)
}

// Delete removes the key pair and any private key written for it.
func (a *KeyPairAdapter) Delete(ctx context.Context, desired domain.DesiredState, _ *domain.ObservedState) error {
	spec := desired.Spec.(keyPairSpec)
	if err := a.deleteKey(ctx, spec.Name); err != nil {
		return err
	}
	if spec.FileName == "" {
		return nil
	}
	err := os.Remove(spec.FileName)
	switch {
	case err == nil:
		a.logger.Infof(ctx, "Removed private key file %s", spec.FileName)
	case errors.Is(err, fs.ErrNotExist):
		a.logger.Infof(ctx, "Key pair %s deleted but no private key file at %s", spec.Name, spec.FileName)
	default:
		return apperrors.Wrap(err, apperrors.CodeInternal, "failed to remove private key file")
	}
	return nil
}

// Preview renders the key as it would look after a dry-run create or update.
func (a *KeyPairAdapter) Preview(desired domain.DesiredState, observed *domain.ObservedState, diff domain.Diff) map[string]any {
	spec := desired.Spec.(keyPairSpec)
	preview := map[string]any{}
	if observed != nil {
		for k, v := range observed.Attributes {
			preview[k] = v
		}
	}
	switch diff.Action {
	case domain.ActionCreate:
		keyType := spec.KeyType
		if keyType == "" {
			keyType = string(types.KeyTypeRsa)
		}
		preview[domain.KeyName] = spec.Name
		preview[domain.KeyPairTypeKey] = keyType
		preview[domain.KeyTags] = spec.Tags
	case domain.ActionUpdate:
		if spec.Tags != nil {
			tags := spec.Tags
			if !desired.PurgeTags {
				tags = mergeTags(observed.Tags(), spec.Tags)
			}
			preview[domain.KeyTags] = tags
		}
	default:
		return nil
	}
	if fp := desired.Attributes[domain.KeyPairFingerprintKey]; fp != nil {
		preview[domain.KeyPairFingerprintKey] = fp
	}
	if t := desired.Attributes[domain.KeyPairTypeKey]; t != nil {
		preview[domain.KeyPairTypeKey] = t
	}
	return preview
}

func (a *KeyPairAdapter) importKey(ctx context.Context, spec keyPairSpec) error {
	_, err := shared.Invoke(ctx, a.caller, "ec2", "ImportKeyPair", func(ctx context.Context) (*ec2.ImportKeyPairOutput, error) {
		return a.client.ImportKeyPair(ctx, &ec2.ImportKeyPairInput{
			KeyName:           aws.String(spec.Name),
			PublicKeyMaterial: []byte(spec.KeyMaterial),
			TagSpecifications: tagSpecifications(types.ResourceTypeKeyPair, spec.Tags),
		})
	})
	if err != nil {
		return apperrors.Reclassify(err, apperrors.GetCode(err), "error importing key pair")
	}
	a.logger.Infof(ctx, "Imported key pair %s", spec.Name)
	return nil
}

// createKey has AWS generate the key and hands the private half back once,
// either inline or written to file_name.
func (a *KeyPairAdapter) createKey(ctx context.Context, desired domain.DesiredState) (*domain.ObservedState, error) {
	spec := desired.Spec.(keyPairSpec)
	input := &ec2.CreateKeyPairInput{
		KeyName:           aws.String(spec.Name),
		TagSpecifications: tagSpecifications(types.ResourceTypeKeyPair, spec.Tags),
	}
	if spec.KeyType != "" {
		input.KeyType = types.KeyType(spec.KeyType)
	}
	out, err := shared.Invoke(ctx, a.caller, "ec2", "CreateKeyPair", func(ctx context.Context) (*ec2.CreateKeyPairOutput, error) {
		return a.client.CreateKeyPair(ctx, input)
	})
	if err != nil {
		return nil, apperrors.Reclassify(err, apperrors.GetCode(err), "error creating key pair")
	}
	a.logger.Infof(ctx, "Created key pair %s", spec.Name)

	observed, err := a.Describe(ctx, desired)
	if err != nil {
		return nil, err
	}
	if observed == nil {
		observed = &domain.ObservedState{Identity: aws.ToString(out.KeyPairId), Attributes: map[string]any{
			domain.KeyName:               aws.ToString(out.KeyName),
			domain.KeyID:                 aws.ToString(out.KeyPairId),
			domain.KeyPairFingerprintKey: normalizeFingerprint(aws.ToString(out.KeyFingerprint)),
			domain.KeyPairTypeKey:        string(input.KeyType),
			domain.KeyTags:               tagsToMap(out.Tags),
		}}
	}

	privateKey := aws.ToString(out.KeyMaterial)
	if spec.FileName != "" {
		if err := os.WriteFile(spec.FileName, []byte(privateKey), 0o600); err != nil {
			return nil, apperrors.Wrap(err, apperrors.CodeInternal, "failed to write private key file")
		}
		privateKey = spec.FileName
	}
	observed.Attributes[domain.KeyPairPrivateKeyKey] = privateKey
	return observed, nil
}

func (a *KeyPairAdapter) deleteKey(ctx context.Context, name string) error {
	_, err := shared.Invoke(ctx, a.caller, "ec2", "DeleteKeyPair", func(ctx context.Context) (*ec2.DeleteKeyPairOutput, error) {
		return a.client.DeleteKeyPair(ctx, &ec2.DeleteKeyPairInput{KeyName: aws.String(name)})
	})
	if err != nil {
		return apperrors.Reclassify(err, apperrors.GetCode(err), "error deleting key pair")
	}
	a.logger.Infof(ctx, "Deleted key pair %s", name)
	return nil
}

func observedKeyPair(k types.KeyPairInfo) *domain.ObservedState {
	return &domain.ObservedState{
		Identity: aws.ToString(k.KeyPairId),
		Attributes: map[string]any{
			domain.KeyName:               aws.ToString(k.KeyName),
			domain.KeyID:                 aws.ToString(k.KeyPairId),
			domain.KeyPairFingerprintKey: normalizeFingerprint(aws.ToString(k.KeyFingerprint)),
			domain.KeyPairTypeKey:        string(k.KeyType),
			domain.KeyTags:               tagsToMap(k.Tags),
		},
	}
}

// publicKeyFingerprint computes the fingerprint AWS reports for an imported
// key: MD5 for RSA, SHA-256 for ed25519.
func publicKeyFingerprint(material string) (string, string, error) {
	pub, _, _, _, err := ssh.ParseAuthorizedKey([]byte(material))
	if err != nil {
		return "", "", shared.Invalid("key_material is not an OpenSSH public key: %v", err)
	}
	switch pub.Type() {
	case ssh.KeyAlgoRSA:
		return ssh.FingerprintLegacyMD5(pub), string(types.KeyTypeRsa), nil
	case ssh.KeyAlgoED25519:
		return normalizeFingerprint(ssh.FingerprintSHA256(pub)), string(types.KeyTypeEd25519), nil
	default:
		return "", "", shared.Invalid("unsupported key_material type %s", pub.Type())
	}
}

// normalizeFingerprint strips the hash prefix and base64 padding so SHA-256
// fingerprints compare equal however they were rendered.
func normalizeFingerprint(f string) string {
	return strings.TrimRight(strings.TrimPrefix(f, "SHA256:"), "=")
}
