package yamlfile

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/olusolaa/infra-reconciler/internal/core/domain"
	"github.com/olusolaa/infra-reconciler/internal/core/ports"
	apperrors "github.com/olusolaa/infra-reconciler/internal/errors"
)

const SourceTypeYAML = "yaml"

type Config struct {
	FilePath string `mapstructure:"path" validate:"required"`
}

type manifestFile struct {
	Resources []manifestEntry `yaml:"resources"`
}

type manifestEntry struct {
	Kind   string         `yaml:"kind"`
	Name   string         `yaml:"name"`
	Params map[string]any `yaml:"params"`
}

// Source reads requests from a YAML manifest of the form
//
//	resources:
//	  - kind: placement_group
//	    name: web
//	    params: {name: web-pg, strategy: cluster}
type Source struct {
	path   string
	logger ports.Logger
}

func NewSource(cfg Config, logger ports.Logger) (*Source, error) {
	if cfg.FilePath == "" {
		return nil, apperrors.NewUserFacing(apperrors.CodeConfigValidation, "YAML manifest path is required", "Set manifest.path or pass --manifest.")
	}
	return &Source{
		path:   cfg.FilePath,
		logger: logger.WithFields(map[string]any{"manifest": SourceTypeYAML, "manifest_file": cfg.FilePath}),
	}, nil
}

func (s *Source) Type() string { return SourceTypeYAML }

func (s *Source) Load(ctx context.Context) ([]domain.ResourceRequest, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	raw, err := os.ReadFile(s.path)
	if err != nil {
		return nil, apperrors.WrapUserFacing(err, apperrors.CodeManifestReadError,
			fmt.Sprintf("failed to read manifest %s", s.path), "Check the manifest path and permissions.")
	}
	requests, err := Parse(raw)
	if err != nil {
		return nil, err
	}
	s.logger.Debugf(ctx, "Loaded %d requests", len(requests))
	return requests, nil
}

// Parse decodes a manifest document. Entries keep their file order.
func Parse(raw []byte) ([]domain.ResourceRequest, error) {
	var doc manifestFile
	dec := yaml.NewDecoder(bytes.NewReader(raw))
	dec.KnownFields(true)
	if err := dec.Decode(&doc); err != nil && err != io.EOF {
		return nil, apperrors.WrapUserFacing(err, apperrors.CodeManifestParseError,
			"invalid YAML manifest", "Each entry needs kind, an optional name and a params mapping.")
	}

	seen := make(map[string]int, len(doc.Resources))
	requests := make([]domain.ResourceRequest, 0, len(doc.Resources))
	for i, entry := range doc.Resources {
		if entry.Kind == "" {
			return nil, apperrors.NewUserFacing(apperrors.CodeManifestParseError,
				fmt.Sprintf("manifest entry %d has no kind", i), "")
		}
		source := fmt.Sprintf("%s[%d]", entry.Kind, i)
		if entry.Name != "" {
			source = entry.Kind + "." + entry.Name
			if first, dup := seen[source]; dup {
				return nil, apperrors.NewUserFacing(apperrors.CodeManifestParseError,
					fmt.Sprintf("duplicate manifest entry %s (entries %d and %d)", source, first, i), "Give each entry of a kind a distinct name.")
			}
			seen[source] = i
		}
		params := entry.Params
		if params == nil {
			params = map[string]any{}
		}
		requests = append(requests, domain.ResourceRequest{
			Kind:   domain.ResourceKind(entry.Kind),
			Source: source,
			Params: params,
		})
	}
	return requests, nil
}
