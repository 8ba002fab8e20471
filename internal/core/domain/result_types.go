package domain

type DiffAction string

const (
	ActionCreate          DiffAction = "create"
	ActionUpdate          DiffAction = "update"
	ActionUpdateIncapable DiffAction = "update-incapable"
	ActionNoop            DiffAction = "no-op"
	ActionDelete          DiffAction = "delete"
)

// Mutates reports whether the action issues a write against the platform.
func (a DiffAction) Mutates() bool {
	return a == ActionCreate || a == ActionUpdate || a == ActionDelete
}

type AttributeDiff struct {
	AttributeName string
	Desired       any
	Observed      any
	Immutable     bool
	Details       string
}

type Diff struct {
	Action      DiffAction
	Differences []AttributeDiff
}

func (d Diff) Has(key string) bool {
	for _, ad := range d.Differences {
		if ad.AttributeName == key {
			return true
		}
	}
	return false
}

func (d Diff) Immutable() []AttributeDiff {
	var out []AttributeDiff
	for _, ad := range d.Differences {
		if ad.Immutable {
			out = append(out, ad)
		}
	}
	return out
}

// Result is what every reconcile or query invocation reports. Exactly one of
// Resource or Items is meaningful, depending on whether the kind targets a
// single resource or returns a listing.
type Result struct {
	Kind        ResourceKind
	Source      string
	Identity    string
	Noun        string
	Changed     bool
	DryRun      bool
	Action      DiffAction
	Differences []AttributeDiff
	Resource    map[string]any
	Items       []any
	Listing     bool
	Warnings    []string
	Error       error
}

// Output renders the caller-facing document: {"changed": ..., <noun>: ...}.
func (r Result) Output() map[string]any {
	out := map[string]any{"changed": r.Changed}
	noun := r.Noun
	if noun == "" {
		noun = string(r.Kind)
	}
	switch {
	case r.Listing:
		items := r.Items
		if items == nil {
			items = []any{}
		}
		out[noun] = items
	case r.Resource != nil:
		out[noun] = r.Resource
	default:
		out[noun] = map[string]any{}
	}
	if len(r.Warnings) > 0 {
		out["warnings"] = r.Warnings
	}
	return out
}
