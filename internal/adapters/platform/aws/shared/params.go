package shared

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/go-viper/mapstructure/v2"

	"github.com/olusolaa/infra-reconciler/internal/core/domain"
	apperrors "github.com/olusolaa/infra-reconciler/internal/errors"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// DecodeParams decodes raw parameters into the typed spec pointed to by out
// and validates it. Unknown parameters are rejected.
func DecodeParams(kind domain.ResourceKind, params map[string]any, out any) error {
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           out,
		TagName:          "mapstructure",
		WeaklyTypedInput: true,
		ErrorUnused:      true,
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToTimeHookFunc(time.RFC3339),
			mapstructure.StringToSliceHookFunc(","),
		),
	})
	if err != nil {
		return apperrors.Wrap(err, apperrors.CodeInternal, "failed to build parameter decoder")
	}
	if err := decoder.Decode(params); err != nil {
		return apperrors.WrapUserFacing(err, apperrors.CodeValidation,
			fmt.Sprintf("invalid parameters for %s", kind),
			"Check parameter names and types.")
	}

	if err := validate.Struct(out); err != nil {
		var validationErrs validator.ValidationErrors
		if errors.As(err, &validationErrs) {
			var sb strings.Builder
			sb.WriteString(fmt.Sprintf("invalid parameters for %s:", kind))
			for _, fe := range validationErrs {
				sb.WriteString(fmt.Sprintf("\n - Field '%s': Failed on '%s' validation (value: '%v')", fe.Namespace(), fe.Tag(), fe.Value()))
			}
			return apperrors.NewUserFacing(apperrors.CodeValidation, sb.String(), "Fix the listed parameters.")
		}
		return apperrors.Wrap(err, apperrors.CodeValidation, "parameter validation failed")
	}
	return nil
}

// Invalid builds a user-facing validation error for cross-field rules.
func Invalid(format string, args ...any) error {
	return apperrors.NewUserFacing(apperrors.CodeValidation, fmt.Sprintf(format, args...), "")
}

// Ambiguous reports a natural key that resolved to more than one resource.
func Ambiguous(kind domain.ResourceKind, identity string, n int) error {
	return apperrors.NewUserFacing(apperrors.CodeAmbiguousResource,
		fmt.Sprintf("found %d %s resources matching '%s', expected at most one", n, kind, identity),
		"Narrow the lookup so it identifies a single resource.")
}

// StateOrDefault returns present when s is empty.
func StateOrDefault(s domain.State) domain.State {
	if s == "" {
		return domain.StatePresent
	}
	return s
}

// BoolOr dereferences b, falling back to def.
func BoolOr(b *bool, def bool) bool {
	if b == nil {
		return def
	}
	return *b
}

// ResolveAliases returns a copy of params with alternate parameter names
// rewritten to their canonical form. Supplying both forms is an error.
func ResolveAliases(params map[string]any, aliases map[string]string) (map[string]any, error) {
	out := make(map[string]any, len(params))
	for k, v := range params {
		out[k] = v
	}
	for alias, canonical := range aliases {
		v, ok := out[alias]
		if !ok {
			continue
		}
		if _, dup := out[canonical]; dup {
			return nil, Invalid("parameters are mutually exclusive: %s|%s", canonical, alias)
		}
		out[canonical] = v
		delete(out, alias)
	}
	return out, nil
}
