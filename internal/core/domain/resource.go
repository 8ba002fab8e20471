package domain

// ResourceRequest is one entry of a manifest or one ad-hoc CLI invocation:
// the kind to act on plus the raw, undecoded parameters.
type ResourceRequest struct {
	Kind   ResourceKind
	Source string // e.g. manifest label "placement_group.web" or "cli"
	Params map[string]any
}

// DesiredState is the decoded, validated form of a request. Attributes holds
// the canonical shape compared against ObservedState.Attributes; a nil value
// means "don't care". Spec keeps the typed per-kind struct for adapters.
type DesiredState struct {
	Kind       ResourceKind
	State      State
	Identity   string
	Attributes map[string]any
	PurgeTags  bool
	Spec       any
}

// ObservedState is a live resource after normalization.
type ObservedState struct {
	Identity   string
	Attributes map[string]any
}

func (o *ObservedState) Get(key string) (any, bool) {
	if o == nil || o.Attributes == nil {
		return nil, false
	}
	v, ok := o.Attributes[key]
	return v, ok
}

func (o *ObservedState) String(key string) string {
	v, _ := o.Get(key)
	s, _ := v.(string)
	return s
}

func (o *ObservedState) Tags() map[string]string {
	v, _ := o.Get(KeyTags)
	tags, _ := v.(map[string]string)
	return tags
}
