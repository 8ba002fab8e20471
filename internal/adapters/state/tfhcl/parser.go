package tfhcl

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclparse"

	"github.com/olusolaa/infra-reconciler/internal/adapters/state/tfhcl/evaluator"
	"github.com/olusolaa/infra-reconciler/internal/core/ports"
	apperrors "github.com/olusolaa/infra-reconciler/internal/errors"
)

const manifestExt = ".hcl"

// parseManifestFiles parses a single manifest file, or every *.hcl file of a
// directory in name order.
func parseManifestFiles(ctx context.Context, parser *hclparse.Parser, path string, logger ports.Logger) ([]*hcl.File, hcl.Diagnostics, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, nil, apperrors.WrapUserFacing(err, apperrors.CodeManifestReadError,
			fmt.Sprintf("failed to read manifest path %s", path), "Check the manifest path and permissions.")
	}

	paths := []string{path}
	if info.IsDir() {
		entries, err := os.ReadDir(path)
		if err != nil {
			return nil, nil, apperrors.Wrap(err, apperrors.CodeManifestReadError, fmt.Sprintf("failed to read manifest directory: %s", path))
		}
		paths = paths[:0]
		for _, entry := range entries {
			if !entry.IsDir() && strings.HasSuffix(entry.Name(), manifestExt) {
				paths = append(paths, filepath.Join(path, entry.Name()))
			}
		}
		if len(paths) == 0 {
			return nil, nil, apperrors.NewUserFacing(apperrors.CodeHCLParseError,
				fmt.Sprintf("no manifest files (*%s) found in directory: %s", manifestExt, path), "")
		}
		sort.Strings(paths)
	}

	var files []*hcl.File
	var allDiags hcl.Diagnostics
	for _, p := range paths {
		if err := ctx.Err(); err != nil {
			return nil, allDiags, err
		}
		logger.Debugf(ctx, "Parsing manifest file %s", p)
		file, diags := parser.ParseHCLFile(p)
		allDiags = append(allDiags, diags...)
		if file != nil && !diags.HasErrors() {
			files = append(files, file)
		}
	}

	if evaluator.DiagsHasFatalErrors(allDiags) {
		return nil, allDiags, apperrors.Wrap(&evaluator.DiagnosticsError{Operation: "parsing", Path: path, Diags: allDiags},
			apperrors.CodeHCLParseError, "fatal errors encountered during HCL parsing")
	}
	logger.Debugf(ctx, "Parsed %d manifest files", len(files))
	return files, allDiags, nil
}

func isDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}
