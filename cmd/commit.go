package main

import (
	"context"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/vendor-intake/internal/intake"
)

var (
	commitExpected      int
	commitMinConfidence float64
	commitFormat        string
)

// commitReport is the per-file output of the commit command.
type commitReport struct {
	Path      string                 `json:"path" yaml:"path"`
	SessionID string                 `json:"session_id,omitempty" yaml:"session_id,omitempty"`
	Outcomes  []intake.CommitOutcome `json:"outcomes,omitempty" yaml:"outcomes,omitempty"`
	Error     string                 `json:"error,omitempty" yaml:"error,omitempty"`
}

var commitCmd = &cobra.Command{
	Use:   "commit <files...>",
	Short: "Parse vendor files and save accepted vendors to the store",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		if commitMinConfidence < 0 || commitMinConfidence > 1 {
			return eris.New("--min-confidence must be between 0 and 1")
		}
		expected, err := expectedFlag(cmd, commitExpected)
		if err != nil {
			return err
		}

		env, err := initEnv(ctx, cfg, "commit")
		if err != nil {
			return err
		}
		defer env.Close()

		reports, failed := commitFiles(ctx, env.Service, args, expected, commitMinConfidence)
		if err := writeOutput(cmd.OutOrStdout(), commitFormat, reports); err != nil {
			return err
		}
		if failed > 0 {
			return eris.Errorf("%d of %d files had failures", failed, len(reports))
		}
		return nil
	},
}

// commitFiles parses paths and commits each successful result. It returns
// one report per path and the number of paths with any failure.
func commitFiles(ctx context.Context, svc *intake.Service, paths []string, expected *int, minConfidence float64) ([]commitReport, int) {
	results := svc.ImportFiles(ctx, paths, expected)
	reports := make([]commitReport, len(results))
	failed := 0

	for i, r := range results {
		reports[i].Path = r.Path
		if r.Err != nil {
			reports[i].Error = r.Error
			failed++
			continue
		}

		outcomes, err := svc.Commit(ctx, r.Result, minConfidence)
		if err != nil {
			reports[i].Error = err.Error()
			failed++
			zap.L().Error("commit failed", zap.String("file", r.Path), zap.Error(err))
			continue
		}
		reports[i].SessionID = r.Result.Session.ID
		reports[i].Outcomes = outcomes
		if intake.Failed(outcomes) {
			failed++
		}
	}
	return reports, failed
}

func init() {
	commitCmd.Flags().IntVar(&commitExpected, "expected", 0, "number of vendors each source should contain")
	commitCmd.Flags().Float64Var(&commitMinConfidence, "min-confidence", 0.5, "skip candidates scored below this confidence")
	commitCmd.Flags().StringVar(&commitFormat, "format", "json", "output format: json or yaml")
	rootCmd.AddCommand(commitCmd)
}
