package errors

type Code string

const (
	CodeUnknown          Code = "UNKNOWN"
	CodeInternal         Code = "INTERNAL_ERROR"
	CodeConfigValidation Code = "CONFIG_VALIDATION_ERROR"
	CodeConfigReadError  Code = "CONFIG_READ_ERROR"
	CodeConfigParseError Code = "CONFIG_PARSE_ERROR"
	CodeNotImplemented   Code = "NOT_IMPLEMENTED"
	CodeTimeout          Code = "TIMEOUT_ERROR"

	// Parameter and desired-state errors, raised before any API call.
	CodeValidation Code = "VALIDATION_ERROR"

	// Lookup and convergence errors.
	CodeResourceNotFound  Code = "RESOURCE_NOT_FOUND"
	CodeAmbiguousResource Code = "AMBIGUOUS_RESOURCE"
	CodeImmutableField    Code = "IMMUTABLE_FIELD_CONFLICT"

	// Errors translated from the cloud API boundary.
	CodePlatformAuthError Code = "PLATFORM_AUTH_ERROR"
	CodePlatformAPIError  Code = "PLATFORM_API_ERROR"
	CodeTransient         Code = "TRANSIENT_ERROR"

	// Manifest sources
	CodeManifestReadError  Code = "MANIFEST_READ_ERROR"
	CodeManifestParseError Code = "MANIFEST_PARSE_ERROR"
	CodeHCLParseError      Code = "HCL_PARSE_ERROR"
	CodeHCLEvalError       Code = "HCL_EVAL_ERROR"
	CodeMappingError       Code = "MAPPING_ERROR"
)

func (c Code) String() string {
	return string(c)
}

// Recoverable reports whether a failure policy may downgrade errors with this code.
func (c Code) Recoverable() bool {
	return c == CodeResourceNotFound || c == CodePlatformAuthError
}
