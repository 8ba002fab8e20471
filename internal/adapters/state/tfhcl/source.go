package tfhcl

import (
	"context"
	"path/filepath"
	"sync"

	"github.com/hashicorp/hcl/v2/hclparse"

	"github.com/olusolaa/infra-reconciler/internal/adapters/state/tfhcl/evaluator"
	"github.com/olusolaa/infra-reconciler/internal/core/domain"
	"github.com/olusolaa/infra-reconciler/internal/core/ports"
	apperrors "github.com/olusolaa/infra-reconciler/internal/errors"
)

const SourceTypeHCL = "hcl"

type Config struct {
	Path     string            `mapstructure:"path" validate:"required"`
	VarFiles []string          `mapstructure:"var_files"`
	Vars     map[string]string `mapstructure:"vars"`
}

// Source reads requests from HCL manifests:
//
//	variable "env" { default = "prod" }
//	resource "placement_group" "web" {
//	  name     = "web-${var.env}"
//	  strategy = "cluster"
//	}
type Source struct {
	cfg    Config
	logger ports.Logger

	mu       sync.Mutex
	requests []domain.ResourceRequest
	loadErr  error
	loaded   bool
}

func NewSource(cfg Config, logger ports.Logger) (*Source, error) {
	if cfg.Path == "" {
		return nil, apperrors.NewUserFacing(apperrors.CodeConfigValidation, "HCL manifest path is required", "Set manifest.path or pass --manifest.")
	}
	return &Source{
		cfg:    cfg,
		logger: logger.WithFields(map[string]any{"manifest": SourceTypeHCL, "manifest_path": cfg.Path}),
	}, nil
}

func (s *Source) Type() string { return SourceTypeHCL }

// Load parses and evaluates the manifest once; later calls return the
// cached outcome.
func (s *Source) Load(ctx context.Context) ([]domain.ResourceRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.loaded {
		return s.requests, s.loadErr
	}

	requests, err := s.load(ctx)
	if ctxErr := ctx.Err(); ctxErr != nil {
		return nil, ctxErr
	}
	s.requests, s.loadErr, s.loaded = requests, err, true
	return requests, err
}

func (s *Source) load(ctx context.Context) ([]domain.ResourceRequest, error) {
	parser := hclparse.NewParser()
	files, diags, err := parseManifestFiles(ctx, parser, s.cfg.Path, s.logger)
	if err != nil {
		return nil, err
	}

	baseDir := s.cfg.Path
	if len(files) == 1 && !isDir(s.cfg.Path) {
		baseDir = filepath.Dir(s.cfg.Path)
	}
	evalCtx, ctxDiags := evaluator.BuildEvalContext(ctx, parser, files, evaluator.Options{
		VarFiles: s.cfg.VarFiles,
		Vars:     s.cfg.Vars,
		BaseDir:  baseDir,
	}, s.logger)
	diags = append(diags, ctxDiags...)
	if evaluator.DiagsHasFatalErrors(ctxDiags) {
		return nil, apperrors.WrapUserFacing(&evaluator.DiagnosticsError{Operation: "evaluating variables", Path: s.cfg.Path, Diags: ctxDiags},
			apperrors.CodeHCLEvalError, "failed to evaluate manifest variables or locals", "Fix the reported expressions or supply the missing variable values.")
	}

	requests, mapDiags := mapResourceBlocks(files, evalCtx)
	diags = append(diags, mapDiags...)
	if evaluator.DiagsHasFatalErrors(mapDiags) {
		return nil, apperrors.WrapUserFacing(&evaluator.DiagnosticsError{Operation: "evaluating resources", Path: s.cfg.Path, Diags: mapDiags},
			apperrors.CodeHCLEvalError, "failed to evaluate manifest resources", "")
	}

	for _, d := range diags {
		s.logger.Warnf(ctx, "%s", d.Error())
	}
	s.logger.Debugf(ctx, "Loaded %d requests", len(requests))
	return requests, nil
}
