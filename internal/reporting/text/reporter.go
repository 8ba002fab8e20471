package text

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/fatih/color"

	"github.com/olusolaa/infra-reconciler/internal/core/domain"
	"github.com/olusolaa/infra-reconciler/internal/core/ports"
	apperrors "github.com/olusolaa/infra-reconciler/internal/errors"
)

const ReporterTypeText = "text"

type Config struct {
	NoColor bool `mapstructure:"no_color"`
}

type Reporter struct {
	config Config
	writer io.Writer
	logger ports.Logger
}

func NewReporter(cfg Config, logger ports.Logger) (*Reporter, error) {
	if cfg.NoColor || !isTerminal(os.Stdout) {
		color.NoColor = true
	}
	return NewReporterWithWriter(cfg, os.Stdout, logger), nil
}

func NewReporterWithWriter(cfg Config, w io.Writer, logger ports.Logger) *Reporter {
	return &Reporter{config: cfg, writer: w, logger: logger}
}

func isTerminal(f *os.File) bool {
	stat, _ := f.Stat()
	return (stat.Mode() & os.ModeCharDevice) != 0
}

// Report prints results in manifest order followed by a summary.
func (r *Reporter) Report(ctx context.Context, results []domain.Result) error {
	if len(results) == 0 {
		fmt.Fprintln(r.writer, "No resources processed.")
		return nil
	}

	tw := tabwriter.NewWriter(r.writer, 0, 8, 2, ' ', 0)
	defer tw.Flush()

	red := color.New(color.FgRed).SprintFunc()
	yellow := color.New(color.FgYellow).SprintFunc()
	green := color.New(color.FgGreen).SprintFunc()
	cyan := color.New(color.FgCyan).SprintFunc()

	dryRun := false
	for _, res := range results {
		dryRun = dryRun || res.DryRun
	}
	title := "Reconciliation Report"
	if dryRun {
		title += " (dry run)"
	}
	fmt.Fprintln(tw, title)
	fmt.Fprintln(tw, strings.Repeat("=", len(title)))
	fmt.Fprintln(tw, "Status\tKind\tIdentifier\tDetails")
	fmt.Fprintln(tw, "------\t----\t----------\t-------")

	changed, unchanged, failed := 0, 0, 0
	for _, res := range results {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		identifier := res.Source
		if identifier == "" {
			identifier = res.Identity
		}
		if identifier == "" {
			identifier = "<unknown>"
		}

		var status, details string
		switch {
		case res.Error != nil:
			failed++
			status = red("[ERROR]")
			details = formatError(res.Error)
		case res.Listing:
			unchanged++
			status = cyan("[READ]")
			details = fmt.Sprintf("%d %s", len(res.Items), res.Noun)
		case res.Changed:
			changed++
			status = yellow("[CHANGED]")
			if res.DryRun {
				status = yellow("[WOULD CHANGE]")
			}
			details = formatAction(res)
		default:
			unchanged++
			status = green("[OK]")
			details = "Already converged."
		}
		for _, w := range res.Warnings {
			details += fmt.Sprintf(" (warning: %s)", w)
		}

		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", status, res.Kind, identifier, details)
	}

	fmt.Fprintln(tw, "\nSummary:")
	fmt.Fprintln(tw, "-------")
	fmt.Fprintf(tw, "Total Resources Processed:\t%d\n", len(results))
	fmt.Fprintf(tw, "Changed:\t%s\n", yellow(changed))
	fmt.Fprintf(tw, "Unchanged:\t%s\n", green(unchanged))
	fmt.Fprintf(tw, "Errors:\t%s\n", red(failed))

	return nil
}

func formatAction(res domain.Result) string {
	if len(res.Differences) == 0 {
		return fmt.Sprintf("%s %s", res.Action, res.Identity)
	}
	var b strings.Builder
	b.WriteString(fmt.Sprintf("%s, %d attributes differ: ", res.Action, len(res.Differences)))
	for i, diff := range res.Differences {
		if i > 0 {
			b.WriteString("; ")
		}
		b.WriteString(fmt.Sprintf("%s=[Desired: %s, Observed: %s]", diff.AttributeName, formatValue(diff.Desired), formatValue(diff.Observed)))
		if diff.Details != "" {
			b.WriteString(fmt.Sprintf(" (%s)", diff.Details))
		}
	}
	return b.String()
}

func formatError(err error) string {
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) && appErr.IsUserFacing {
		if appErr.SuggestedAction != "" {
			return fmt.Sprintf("%s (%s)", appErr.Message, appErr.SuggestedAction)
		}
		return appErr.Message
	}
	return err.Error()
}

func formatValue(value any) string {
	const maxLen = 100
	str := fmt.Sprintf("%v", value)
	if len(str) > maxLen {
		return str[:maxLen-3] + "..."
	}
	return str
}
