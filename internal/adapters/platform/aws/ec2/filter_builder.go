package ec2

import (
	"fmt"
	"sort"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ec2/types"

	"github.com/olusolaa/infra-reconciler/internal/core/domain"
)

const awsTagFilterPrefix = "tag:"

// BuildEC2Filters turns a filter map into EC2 filters ordered by name. Values
// may be scalars, lists or comma separated strings; booleans become
// "true"/"false" as the API expects.
func BuildEC2Filters(filters map[string]any) []types.Filter {
	if len(filters) == 0 {
		return nil
	}

	names := make([]string, 0, len(filters))
	for name := range filters {
		names = append(names, name)
	}
	sort.Strings(names)

	ec2Filters := make([]types.Filter, 0, len(names))
	for _, name := range names {
		values := filterValues(filters[name])
		if len(values) == 0 {
			continue
		}
		ec2Filters = append(ec2Filters, types.Filter{
			Name:   aws.String(name),
			Values: values,
		})
	}
	return ec2Filters
}

func filterValues(v any) []string {
	switch val := v.(type) {
	case nil:
		return nil
	case string:
		return SplitFilterValue(val)
	case []string:
		return val
	case []any:
		out := make([]string, 0, len(val))
		for _, item := range val {
			out = append(out, scalarString(item))
		}
		return out
	default:
		return []string{scalarString(val)}
	}
}

func scalarString(v any) string {
	switch val := v.(type) {
	case bool:
		if val {
			return "true"
		}
		return "false"
	case string:
		return val
	default:
		return fmt.Sprint(val)
	}
}

// TagSearchFilter builds the filter used to look up an address by tag. A name
// without a value matches on tag key alone.
func TagSearchFilter(tagName, tagValue string) map[string]any {
	if tagName == "" {
		return nil
	}
	if tagValue == "" {
		return map[string]any{"tag-key": strings.TrimPrefix(tagName, domain.TagPrefix)}
	}
	if !strings.HasPrefix(tagName, awsTagFilterPrefix) {
		tagName = awsTagFilterPrefix + tagName
	}
	return map[string]any{tagName: tagValue}
}

func SplitFilterValue(value string) []string {
	if !strings.Contains(value, ",") {
		return []string{value}
	}
	parts := strings.Split(value, ",")
	trimmedParts := make([]string, 0, len(parts))
	for _, p := range parts {
		trimmed := strings.TrimSpace(p)
		if trimmed != "" {
			trimmedParts = append(trimmedParts, trimmed)
		}
	}
	if len(trimmedParts) == 0 {
		return []string{}
	}
	return trimmedParts
}

func nameFilter(name string, values ...string) types.Filter {
	return types.Filter{Name: aws.String(name), Values: values}
}
