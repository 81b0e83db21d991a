package cmd

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/CraigKelly/tsample/model"
	"github.com/CraigKelly/tsample/sampler"
	"github.com/CraigKelly/tsample/store"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Sample the posterior of location and variance for a data file",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd.Flags(), &flagCfg, cfgFile)
		if err != nil {
			return err
		}
		if err := cfg.CheckRun(); err != nil {
			return err
		}

		sp, err := newStartupParams(cfg)
		if err != nil {
			return err
		}
		defer sp.Close()

		return RunSampler(cmd.Context(), sp)
	},
}

func init() {
	addRunFlags(runCmd.Flags(), &flagCfg)
	rootCmd.AddCommand(runCmd)
}

// RunSampler reads the configured data set, runs the chain and writes the
// results to every configured output.
func RunSampler(ctx context.Context, sp *startupParams) error {
	if ctx == nil {
		ctx = context.Background()
	}
	cfg := sp.cfg

	sp.out.Printf("Reading data from %s\n", cfg.Data)
	ds, err := model.NewDatasetFromFile(model.TextReader{}, cfg.Data)
	if err != nil {
		return err
	}
	sp.out.Printf("Data set %s has %d observations, mean %.6g\n", ds.Name, len(ds.Values), ds.Mean())

	mon := newMonitor(sp.log, cfg.BurnIn, cfg.Samples)
	if len(cfg.Monitor) > 0 {
		if err := mon.Start(cfg.Monitor); err != nil {
			return err
		}
		defer mon.Stop()
	}

	samp, err := sampler.NewScaledT(ds.Values, cfg.Nu,
		sampler.WithSeed(cfg.Seed),
		sampler.WithSource(cfg.Source),
		sampler.WithWorkers(cfg.Workers),
		sampler.WithProgress(mon.Update),
		sampler.WithLogger(sp.log),
	)
	if err != nil {
		return errors.Wrap(err, "Could not create sampler")
	}

	sp.out.Printf("Sampling: nu=%v burn-in=%d samples=%d seed=%d source=%s workers=%d\n",
		cfg.Nu, cfg.BurnIn, cfg.Samples, cfg.Seed, cfg.Source, cfg.Workers)

	startTime := time.Now()
	mus, sigmas, err := sampleChain(ctx, samp, cfg.BurnIn, cfg.Samples)
	if err != nil {
		return err
	}
	elapsed := time.Since(startTime)
	sp.log.Info("run finished",
		zap.String("dataset", ds.Name),
		zap.Int("sweeps", cfg.BurnIn+cfg.Samples),
		zap.Duration("elapsed", elapsed),
	)

	if sp.trace != nil {
		sp.out.Printf("Writing samples to trace file %v\n", cfg.Trace)
		sp.trace.Printf("sweep\tmu\tsigma2\n")
		for i := range mus {
			sp.trace.Printf("%d\t%.17g\t%.17g\n", i+1, mus[i], sigmas[i])
		}
	}

	if err := reportSamples(sp, mus, sigmas); err != nil {
		return err
	}

	if len(cfg.DB) > 0 {
		st, err := store.Open(cfg.DB)
		if err != nil {
			return err
		}
		defer st.Close()

		id, err := st.SaveRun(ctx, store.Run{
			Dataset:    ds.Name,
			N:          len(ds.Values),
			Nu:         cfg.Nu,
			BurnIn:     cfg.BurnIn,
			SampleSize: cfg.Samples,
			Seed:       cfg.Seed,
			Source:     cfg.Source,
			Workers:    cfg.Workers,
		}, mus, sigmas)
		if err != nil {
			return errors.Wrapf(err, "Could not store run in %s", cfg.DB)
		}
		sp.out.Printf("Stored as run %d in %s\n", id, cfg.DB)
	}

	return nil
}

// sampleChain runs the chain and returns the location and variance samples
func sampleChain(ctx context.Context, s sampler.Sampler, burnIn int, sampleSize int) ([]float64, []float64, error) {
	if err := s.Run(ctx, burnIn, sampleSize); err != nil {
		return nil, nil, errors.Wrap(err, "Sampler run failed")
	}
	return s.LocationSamples(), s.VarianceSamples(), nil
}

// reportSamples prints a summary of both sample sets
func reportSamples(sp *startupParams, mus []float64, sigmas []float64) error {
	if len(mus) < 1 {
		sp.out.Printf("No samples taken\n")
		return nil
	}

	for _, r := range []struct {
		name    string
		samples []float64
	}{
		{"mu", mus},
		{"sigma2", sigmas},
	} {
		s, err := model.Summarize(r.samples)
		if err != nil {
			return errors.Wrapf(err, "Could not summarize %s", r.name)
		}
		sp.out.Printf(
			"%-6s | N:%d Mean:%11.5g SD:%11.5g Q2.5:%11.5g Median:%11.5g Q97.5:%11.5g\n",
			r.name, s.Count, s.Mean, s.StdDev, s.Q025, s.Median, s.Q975,
		)
	}
	return nil
}
