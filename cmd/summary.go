package cmd

import (
	"context"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/CraigKelly/tsample/store"
)

var summaryRunID int64

var summaryCmd = &cobra.Command{
	Use:   "summary",
	Short: "Summarize a run previously saved to a sample store",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd.Flags(), &flagCfg, cfgFile)
		if err != nil {
			return err
		}
		if cfg.DB == "" {
			return errors.New("A sample store is required (--db)")
		}

		sp, err := newStartupParams(cfg)
		if err != nil {
			return err
		}
		defer sp.Close()

		return StoredSummary(cmd.Context(), sp, summaryRunID)
	},
}

func init() {
	summaryCmd.Flags().StringVar(&flagCfg.DB, "db", "", "SQLite sample store to read")
	summaryCmd.Flags().Int64Var(&summaryRunID, "run-id", 0, "Run to summarize (default is the latest)")
	rootCmd.AddCommand(summaryCmd)
}

// StoredSummary prints the summary of a stored run. A runID < 1 selects the
// most recent run.
func StoredSummary(ctx context.Context, sp *startupParams, runID int64) error {
	if ctx == nil {
		ctx = context.Background()
	}

	st, err := store.Open(sp.cfg.DB)
	if err != nil {
		return err
	}
	defer st.Close()

	if runID < 1 {
		runID, err = st.LatestRunID(ctx)
		if err != nil {
			return err
		}
	}

	run, mus, sigmas, err := st.LoadRun(ctx, runID)
	if err != nil {
		return err
	}

	sp.out.Printf("Run %d (%s): data set %s, n=%d, nu=%v\n",
		run.ID, run.CreatedAt.Format("2006-01-02 15:04:05"), run.Dataset, run.N, run.Nu)
	sp.out.Printf("Burn-in %d, samples %d, seed %d, source %s, workers %d\n",
		run.BurnIn, run.SampleSize, run.Seed, run.Source, run.Workers)

	return reportSamples(sp, mus, sigmas)
}
