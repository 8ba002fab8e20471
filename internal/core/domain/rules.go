package domain

// ComparePolicy selects how a single attribute is compared.
type ComparePolicy string

const (
	// CompareExact compares scalars with numeric and boolean coercion, and
	// nested maps and lists structurally.
	CompareExact ComparePolicy = "exact"
	// CompareSet compares string lists ignoring order and duplicates.
	CompareSet ComparePolicy = "set"
	// CompareOptional treats an absent observed value as Default.
	CompareOptional ComparePolicy = "optional"
	// CompareTags compares tag maps; extra observed tags only count when
	// DesiredState.PurgeTags is set.
	CompareTags ComparePolicy = "tags"
	// CompareJSON compares JSON documents semantically.
	CompareJSON ComparePolicy = "json"
	// CompareSubset compares only the keys present in the desired map.
	CompareSubset ComparePolicy = "subset"
)

// FieldRule is one row of a kind's comparison table.
type FieldRule struct {
	Key       string
	Policy    ComparePolicy
	Default   any
	Immutable bool
}

func Exact(key string) FieldRule  { return FieldRule{Key: key, Policy: CompareExact} }
func Set(key string) FieldRule    { return FieldRule{Key: key, Policy: CompareSet} }
func Tags() FieldRule             { return FieldRule{Key: KeyTags, Policy: CompareTags} }
func JSON(key string) FieldRule   { return FieldRule{Key: key, Policy: CompareJSON} }
func Subset(key string) FieldRule { return FieldRule{Key: key, Policy: CompareSubset} }
func Optional(key string, def any) FieldRule {
	return FieldRule{Key: key, Policy: CompareOptional, Default: def}
}

// Frozen marks the rule immutable: a change can only be made by replacement.
func (r FieldRule) Frozen() FieldRule {
	r.Immutable = true
	return r
}
