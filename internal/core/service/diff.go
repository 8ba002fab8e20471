package service

import (
	"fmt"
	"sort"
	"strings"

	"github.com/olusolaa/infra-reconciler/internal/core/domain"
	"github.com/olusolaa/infra-reconciler/pkg/compare"
	"github.com/olusolaa/infra-reconciler/pkg/convert"
)

// ComputeDiff classifies the work needed to move observed to desired. It never
// performs I/O.
func ComputeDiff(rules []domain.FieldRule, desired domain.DesiredState, observed *domain.ObservedState) domain.Diff {
	if desired.State == domain.StateAbsent {
		if observed == nil {
			return domain.Diff{Action: domain.ActionNoop}
		}
		return domain.Diff{Action: domain.ActionDelete}
	}

	if observed == nil {
		var diffs []domain.AttributeDiff
		for _, rule := range rules {
			if dv, ok := desiredValue(rule, desired); ok {
				diffs = append(diffs, domain.AttributeDiff{AttributeName: rule.Key, Desired: dv})
			}
		}
		return domain.Diff{Action: domain.ActionCreate, Differences: diffs}
	}

	var diffs []domain.AttributeDiff
	incapable := false
	for _, rule := range rules {
		ad, changed := compareField(rule, desired, observed)
		if !changed {
			continue
		}
		diffs = append(diffs, ad)
		if rule.Immutable {
			incapable = true
		}
	}

	switch {
	case len(diffs) == 0:
		return domain.Diff{Action: domain.ActionNoop}
	case incapable:
		return domain.Diff{Action: domain.ActionUpdateIncapable, Differences: diffs}
	default:
		return domain.Diff{Action: domain.ActionUpdate, Differences: diffs}
	}
}

func desiredValue(rule domain.FieldRule, desired domain.DesiredState) (any, bool) {
	dv, ok := desired.Attributes[rule.Key]
	if ok && dv != nil {
		return dv, true
	}
	if rule.Policy == domain.CompareOptional && rule.Default != nil {
		return rule.Default, true
	}
	return nil, false
}

func compareField(rule domain.FieldRule, desired domain.DesiredState, observed *domain.ObservedState) (domain.AttributeDiff, bool) {
	dv, ok := desiredValue(rule, desired)
	if !ok {
		return domain.AttributeDiff{}, false
	}
	ov, _ := observed.Get(rule.Key)

	ad := domain.AttributeDiff{
		AttributeName: rule.Key,
		Desired:       dv,
		Observed:      ov,
		Immutable:     rule.Immutable,
	}

	switch rule.Policy {
	case domain.CompareSet:
		want, errD := convert.ToSliceOfString(dv)
		have, errO := convert.ToSliceOfString(ov)
		if errD != nil || errO != nil {
			ad.Details = fmt.Sprintf("cannot compare as set: %v %v", errD, errO)
			return ad, true
		}
		equal, details := compare.Sets(want, have)
		ad.Details = details
		return ad, !equal

	case domain.CompareTags:
		want, err := convert.ToStringMap(dv)
		if err != nil {
			ad.Details = err.Error()
			return ad, true
		}
		changes := compare.Tags(want, observed.Tags(), desired.PurgeTags)
		if changes.Empty() {
			return ad, false
		}
		ad.Details = fmt.Sprintf("set %d, remove %d", len(changes.Set), len(changes.Remove))
		return ad, true

	case domain.CompareJSON:
		a, _ := dv.(string)
		b, _ := ov.(string)
		equal, details := compare.JSONStrings(a, b)
		ad.Details = details
		return ad, !equal

	case domain.CompareSubset:
		want, ok := dv.(map[string]any)
		if !ok {
			return exactDiff(ad, dv, ov)
		}
		have, _ := ov.(map[string]any)
		var drift []string
		for k, v := range want {
			if v == nil {
				continue
			}
			if equal, err := compare.Values(v, have[k]); err != nil || !equal {
				drift = append(drift, k)
			}
		}
		if len(drift) == 0 {
			return ad, false
		}
		sort.Strings(drift)
		ad.Details = fmt.Sprintf("differs in %s", strings.Join(drift, ", "))
		return ad, true

	case domain.CompareOptional:
		if ov == nil {
			ov = rule.Default
			ad.Observed = ov
		}
		return exactDiff(ad, dv, ov)

	default:
		return exactDiff(ad, dv, ov)
	}
}

func exactDiff(ad domain.AttributeDiff, dv, ov any) (domain.AttributeDiff, bool) {
	equal, err := compare.Values(dv, ov)
	if err != nil {
		ad.Details = err.Error()
		return ad, true
	}
	if !equal {
		ad.Details = fmt.Sprintf("expected '%v', actual '%v'", dv, ov)
	}
	return ad, !equal
}
