package app

import (
	"context"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/olusolaa/infra-reconciler/internal/core/domain"
	"github.com/olusolaa/infra-reconciler/internal/errors"
)

const SourceTypeCLI = "cli"

// ParseParams turns repeated key=value flags into request parameters.
// Values are read as YAML scalars or flow collections, so 3 is a number and
// [a, b] a list; key:=value keeps the value as a literal string. Dotted keys
// nest: tags.Env=prod sets params["tags"]["Env"].
func ParseParams(pairs []string) (map[string]any, error) {
	params := make(map[string]any)
	for _, pair := range pairs {
		key, raw, literal, err := splitPair(pair)
		if err != nil {
			return nil, err
		}

		var value any
		if literal {
			value = raw
		} else {
			if err := yaml.Unmarshal([]byte(raw), &value); err != nil {
				return nil, errors.WrapUserFacing(err, errors.CodeValidation,
					fmt.Sprintf("invalid value for parameter '%s'", key), "Quote the value or use key:=value for a literal string.")
			}
			if value == nil && raw != "" && raw != "null" && raw != "~" {
				value = raw
			}
		}

		if err := setPath(params, strings.Split(key, "."), value); err != nil {
			return nil, errors.NewUserFacing(errors.CodeValidation, fmt.Sprintf("parameter '%s': %v", key, err), "")
		}
	}
	return params, nil
}

func splitPair(pair string) (key, value string, literal bool, err error) {
	idx := strings.Index(pair, "=")
	if idx <= 0 {
		return "", "", false, errors.NewUserFacing(errors.CodeValidation,
			fmt.Sprintf("invalid parameter '%s'", pair), "Use key=value, e.g. --param name=web.")
	}
	key, value = pair[:idx], pair[idx+1:]
	if strings.HasSuffix(key, ":") {
		key, literal = strings.TrimSuffix(key, ":"), true
	}
	key = strings.TrimSpace(key)
	if key == "" || strings.HasPrefix(key, ".") || strings.HasSuffix(key, ".") || strings.Contains(key, "..") {
		return "", "", false, errors.NewUserFacing(errors.CodeValidation,
			fmt.Sprintf("invalid parameter name in '%s'", pair), "")
	}
	return key, value, literal, nil
}

func setPath(params map[string]any, path []string, value any) error {
	current := params
	for _, segment := range path[:len(path)-1] {
		next, exists := current[segment]
		if !exists {
			child := make(map[string]any)
			current[segment] = child
			current = child
			continue
		}
		child, ok := next.(map[string]any)
		if !ok {
			return fmt.Errorf("'%s' is already set to a value", segment)
		}
		current = child
	}

	last := path[len(path)-1]
	if _, exists := current[last]; exists {
		return fmt.Errorf("set more than once")
	}
	current[last] = value
	return nil
}

// cliSource serves a single request built from command-line flags.
type cliSource struct {
	request domain.ResourceRequest
}

func newCLISource(kind string, params map[string]any) *cliSource {
	return &cliSource{request: domain.ResourceRequest{
		Kind:   domain.ResourceKind(kind),
		Source: SourceTypeCLI,
		Params: params,
	}}
}

func (s *cliSource) Type() string { return SourceTypeCLI }

func (s *cliSource) Load(_ context.Context) ([]domain.ResourceRequest, error) {
	return []domain.ResourceRequest{s.request}, nil
}
