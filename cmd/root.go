package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var cfgFile string
var flagCfg = defaultConfig()

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "tsample",
	Short: "Robust location-scale estimation by Gibbs sampling",
	Long: `tsample fits a location-scale model with heavy tailed (scaled
Student-t) noise to a vector of measurements and produces posterior
samples of the location and the observation variance.

Among other features:

  - Reading plain text observation files
  - Reproducible chains (fixed seed, Mersenne twister or xoshiro256+)
  - A tab separated trace file of every sample
  - A SQLite sample store that can be summarized later
  - An HTTP progress monitor (expvar)
`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file (default is $HOME/.tsample.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&flagCfg.Verbose, "verbose", "v", false, "Verbose logging (default is much more parsimonious)")

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, errorText(err, flagCfg.Verbose))
		os.Exit(1)
	}
}

// errorText is the message shown for a failed command. The stack trace is
// only included in verbose mode.
func errorText(err error, verbose bool) string {
	if verbose {
		return fmt.Sprintf("%+v", err)
	}
	return err.Error()
}
