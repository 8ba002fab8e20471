package mapping

import (
	"fmt"
	"sort"
	"strconv"

	"github.com/olusolaa/infra-reconciler/internal/core/domain"
)

// --- Type Mapping ---

// attributeMapDefinition maps a Terraform attribute to a request parameter.
type attributeMapDefinition map[string]string

type kindMapping struct {
	kind  domain.ResourceKind
	attrs attributeMapDefinition
	// extra derives parameters that are not a plain rename.
	extra func(raw, params map[string]any) error
}

var tfTypeMappings = map[string]kindMapping{
	"aws_placement_group": {
		kind: domain.KindPlacementGroup,
		attrs: attributeMapDefinition{
			"name":            "name",
			"strategy":        "strategy",
			"partition_count": "partition_count",
			"tags":            domain.KeyTags,
		},
	},
	"aws_eip": {
		kind: domain.KindElasticIP,
		attrs: attributeMapDefinition{
			"public_ip":                 "public_ip",
			"associate_with_private_ip": "private_ip_address",
			"tags":                      domain.KeyTags,
		},
		extra: eipExtra,
	},
	"aws_cloudwatch_log_metric_filter": {
		kind: domain.KindMetricFilter,
		attrs: attributeMapDefinition{
			"name":           "filter_name",
			"log_group_name": "log_group_name",
			"pattern":        "filter_pattern",
		},
		extra: metricTransformationExtra,
	},
	"aws_key_pair": {
		kind: domain.KindKeyPair,
		attrs: attributeMapDefinition{
			"key_name":   "name",
			"public_key": "key_material",
			"tags":       domain.KeyTags,
		},
	},
	"aws_route53_key_signing_key": {
		kind: domain.KindKeySigningKey,
		attrs: attributeMapDefinition{
			"hosted_zone_id":             "hosted_zone_id",
			"name":                       "name",
			"key_management_service_arn": "key_management_service_arn",
			"status":                     "status",
		},
	},
}

func MapTfTypeToDomainKind(tfType string) (domain.ResourceKind, error) {
	m, exists := tfTypeMappings[tfType]
	if !exists {
		return "", fmt.Errorf("unsupported Terraform resource type: %s", tfType)
	}
	return m.kind, nil
}

// SupportedTfTypes lists the mapped Terraform types in name order.
func SupportedTfTypes() []string {
	types := make([]string, 0, len(tfTypeMappings))
	for t := range tfTypeMappings {
		types = append(types, t)
	}
	sort.Strings(types)
	return types
}

// --- Attribute Mapping ---

// ToParams builds request parameters from the attribute values Terraform
// recorded for a resource. Empty values are left out so they stay
// unconstrained.
func ToParams(tfType string, raw map[string]any) (domain.ResourceKind, map[string]any, error) {
	m, exists := tfTypeMappings[tfType]
	if !exists {
		return "", nil, fmt.Errorf("unsupported Terraform resource type: %s", tfType)
	}

	params := make(map[string]any)
	for tfKey, paramKey := range m.attrs {
		rawValue, ok := raw[tfKey]
		if !ok || isEmpty(rawValue) {
			continue
		}
		if paramKey == domain.KeyTags {
			params[paramKey] = normalizeTags(rawValue)
			continue
		}
		params[paramKey] = rawValue
	}
	if m.extra != nil {
		if err := m.extra(raw, params); err != nil {
			return "", nil, fmt.Errorf("mapping %s: %w", tfType, err)
		}
	}
	return m.kind, params, nil
}

// --- Normalization Functions ---

func eipExtra(raw, params map[string]any) error {
	if domainType, _ := raw["domain"].(string); domainType == "vpc" {
		params["in_vpc"] = true
	} else if vpc, _ := raw["vpc"].(bool); vpc {
		params["in_vpc"] = true
	}

	instance, _ := raw["instance"].(string)
	eni, _ := raw["network_interface"].(string)
	switch {
	case instance != "":
		params["device_id"] = instance
	case eni != "":
		params["device_id"] = eni
	default:
		delete(params, "private_ip_address")
	}

	// "amazon" is the implicit pool; only a customer pool is worth pinning.
	if pool, _ := raw["public_ipv4_pool"].(string); pool != "" && pool != "amazon" {
		params["public_ipv4_pool"] = pool
	}
	return nil
}

var transformationKeys = map[string]string{
	"name":       "metric_name",
	"namespace":  "metric_namespace",
	"value":      "metric_value",
	"unit":       "unit",
	"dimensions": "dimensions",
}

// metricTransformationExtra flattens the single-element
// metric_transformation block list and renames its fields.
func metricTransformationExtra(raw, params map[string]any) error {
	blocks, _ := raw["metric_transformation"].([]any)
	if len(blocks) == 0 {
		return nil
	}
	block, ok := blocks[0].(map[string]any)
	if !ok {
		return fmt.Errorf("metric_transformation has unexpected shape %T", blocks[0])
	}

	transformation := make(map[string]any)
	for tfKey, paramKey := range transformationKeys {
		if v, ok := block[tfKey]; ok && !isEmpty(v) {
			if tfKey == "dimensions" {
				v = normalizeTags(v)
			}
			transformation[paramKey] = v
		}
	}
	// Terraform records default_value as a string.
	switch v := block["default_value"].(type) {
	case string:
		if v != "" {
			f, err := strconv.ParseFloat(v, 64)
			if err != nil {
				return fmt.Errorf("invalid metric_transformation default_value %q: %w", v, err)
			}
			transformation["default_value"] = f
		}
	case float64:
		transformation["default_value"] = v
	}
	params["metric_transformation"] = transformation
	return nil
}

// normalizeTags converts map[string]any to map[string]string
func normalizeTags(rawVal any) map[string]string {
	stringTags := make(map[string]string)
	if tagsVal, ok := rawVal.(map[string]any); ok {
		for k, v := range tagsVal {
			if vStr, vOk := v.(string); vOk {
				stringTags[k] = vStr
			}
		}
	}
	return stringTags
}

func isEmpty(v any) bool {
	switch val := v.(type) {
	case nil:
		return true
	case string:
		return val == ""
	case map[string]any:
		return len(val) == 0
	case []any:
		return len(val) == 0
	}
	return false
}
