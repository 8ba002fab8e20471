package tfstate

import (
	"context"

	"github.com/olusolaa/infra-reconciler/internal/core/domain"
	"github.com/olusolaa/infra-reconciler/internal/core/ports"
	"github.com/olusolaa/infra-reconciler/internal/errors"
)

const SourceTypeTFJSON = "tfjson"

type Config struct {
	FilePath string `mapstructure:"path" validate:"required"`
}

// Source turns the JSON form of a Terraform state or plan into requests,
// so resources Terraform describes can be reconciled without Terraform.
type Source struct {
	path   string
	logger ports.Logger
}

func NewSource(cfg Config, logger ports.Logger) (*Source, error) {
	if cfg.FilePath == "" {
		return nil, errors.NewUserFacing(errors.CodeConfigValidation, "Terraform JSON path is required", "Set manifest.path or pass --manifest.")
	}
	return &Source{
		path:   cfg.FilePath,
		logger: logger.WithFields(map[string]any{"manifest": SourceTypeTFJSON, "manifest_file": cfg.FilePath}),
	}, nil
}

func (s *Source) Type() string { return SourceTypeTFJSON }

func (s *Source) Load(ctx context.Context) ([]domain.ResourceRequest, error) {
	doc, err := readDocument(ctx, s.path, s.logger)
	if err != nil {
		return nil, err
	}
	requests, err := mapDocument(ctx, doc, s.logger)
	if err != nil {
		return nil, err
	}
	s.logger.Debugf(ctx, "Mapped %d requests (plan: %t)", len(requests), doc.isPlan)
	return requests, nil
}
