package errors

import (
	"context"
	stderrs "errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/aws/retry"
	awshttp "github.com/aws/aws-sdk-go-v2/aws/transport/http"
	"github.com/aws/smithy-go"

	apperrors "github.com/olusolaa/infra-reconciler/internal/errors"
)

var authCodes = map[string]struct{}{
	"AccessDenied":                {},
	"AccessDeniedException":       {},
	"AuthFailure":                 {},
	"UnauthorizedOperation":       {},
	"UnrecognizedClientException": {},
	"InvalidClientTokenId":        {},
	"ExpiredToken":                {},
	"Forbidden":                   {},
}

var notFoundCodes = map[string]struct{}{
	"NotFound":                      {},
	"NoSuchBucket":                  {},
	"NoSuchKey":                     {},
	"NoSuchHostedZone":              {},
	"NoSuchKeySigningKey":           {},
	"NoSuchChange":                  {},
	"ResourceNotFoundException":     {},
	"NotFoundException":             {},
	"EntityNotFoundException":       {},
	"InvalidPlacementGroup.Unknown": {},
	"NoSuchEntity":                  {},
}

// Translate maps an SDK error onto the application error taxonomy. Errors
// that already carry a code pass through untouched.
func Translate(service, operation string, err error, ctx context.Context) error {
	if err == nil {
		return nil
	}

	var appErr *apperrors.AppError
	if stderrs.As(err, &appErr) {
		return appErr
	}

	where := fmt.Sprintf("%s.%s", service, operation)

	if stderrs.Is(err, context.Canceled) || stderrs.Is(err, context.DeadlineExceeded) || (ctx != nil && ctx.Err() != nil) {
		return apperrors.Wrap(err, apperrors.CodeTimeout, fmt.Sprintf("%s interrupted", where))
	}

	code := APIErrorCode(err)
	status := httpStatus(err)

	switch {
	case isAuthCode(code) || (code == "" && status == http.StatusForbidden):
		return apperrors.Wrap(err, apperrors.CodePlatformAuthError, fmt.Sprintf("%s: access denied", where))
	case isNotFoundCode(code) || (code == "" && status == http.StatusNotFound):
		return apperrors.Wrap(err, apperrors.CodeResourceNotFound, fmt.Sprintf("%s: not found", where))
	case IsTransient(err):
		return apperrors.Wrap(err, apperrors.CodeTransient, fmt.Sprintf("%s: transient failure", where))
	}

	return apperrors.Wrap(err, apperrors.CodePlatformAPIError, fmt.Sprintf("%s failed", where))
}

// APIErrorCode extracts the service error code, or "" for non-API errors.
func APIErrorCode(err error) string {
	var apiErr smithy.APIError
	if stderrs.As(err, &apiErr) && apiErr != nil {
		return apiErr.ErrorCode()
	}
	return ""
}

// HasCode reports whether err is an API error with one of codes.
func HasCode(err error, codes ...string) bool {
	code := APIErrorCode(err)
	if code == "" {
		return false
	}
	for _, c := range codes {
		if c == code {
			return true
		}
	}
	return false
}

// IsTransient reports throttling, retryable service codes and connection or
// 5xx failures, using the SDK's own classification tables.
func IsTransient(err error) bool {
	if err == nil {
		return false
	}
	code := APIErrorCode(err)
	if _, ok := retry.DefaultThrottleErrorCodes[code]; ok {
		return true
	}
	if _, ok := retry.DefaultRetryableErrorCodes[code]; ok {
		return true
	}
	return retry.IsErrorRetryables(retry.DefaultRetryables).IsErrorRetryable(err) == aws.TrueTernary
}

func isAuthCode(code string) bool {
	_, ok := authCodes[code]
	return ok
}

func isNotFoundCode(code string) bool {
	if code == "" {
		return false
	}
	if _, ok := notFoundCodes[code]; ok {
		return true
	}
	return strings.HasSuffix(code, ".NotFound")
}

func httpStatus(err error) int {
	var respErr *awshttp.ResponseError
	if stderrs.As(err, &respErr) {
		return respErr.HTTPStatusCode()
	}
	return 0
}

// DefaultErrorHandler implements shared.ErrorHandler with Translate.
type DefaultErrorHandler struct{}

func (d *DefaultErrorHandler) Handle(service, operation string, err error, ctx context.Context) error {
	return Translate(service, operation, err, ctx)
}
