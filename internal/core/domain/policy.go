package domain

// FailurePolicy decides what happens to a recoverable failure.
type FailurePolicy string

const (
	PolicyError FailurePolicy = "error"
	PolicySkip  FailurePolicy = "skip"
	PolicyWarn  FailurePolicy = "warn"
)

func (p FailurePolicy) Valid() bool {
	return p == PolicyError || p == PolicySkip || p == PolicyWarn
}

// FailurePolicies holds one policy per recoverable class.
type FailurePolicies struct {
	OnMissing FailurePolicy `mapstructure:"on_missing" validate:"omitempty,oneof=error skip warn"`
	OnDenied  FailurePolicy `mapstructure:"on_denied" validate:"omitempty,oneof=error skip warn"`
}

func DefaultFailurePolicies() FailurePolicies {
	return FailurePolicies{OnMissing: PolicyError, OnDenied: PolicyError}
}

// Or fills unset policies from fallback.
func (p FailurePolicies) Or(fallback FailurePolicies) FailurePolicies {
	if p.OnMissing == "" {
		p.OnMissing = fallback.OnMissing
	}
	if p.OnDenied == "" {
		p.OnDenied = fallback.OnDenied
	}
	return p
}
