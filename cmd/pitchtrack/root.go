package main

import (
	"fmt"
	"io"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/cwbudde/algo-pitch/internal/config"
	"github.com/cwbudde/algo-pitch/internal/logging"
)

// flagKeys maps command-line flags to configuration keys.
var flagKeys = map[string]string{
	"log-level":      "log_level",
	"log-pretty":     "log_pretty",
	"output":         "output",
	"sample-rate":    "tracker.sample_rate",
	"threshold":      "tracker.detect_level_threshold",
	"rps":            "tracker.records_per_second",
	"max-pitch-rate": "tracker.max_pitch_rate",
	"chunk":          "analysis.chunk_size",
	"fft-size":       "analysis.fft_size",
	"window":         "analysis.window",
	"harmonics":      "analysis.harmonics",
	"harmonic-width": "analysis.harmonic_half_width",
	"reference":      "level.reference",
	"noise-floor":    "level.noise_floor",
}

// app carries the resolved configuration into the subcommands.
type app struct {
	v   *viper.Viper
	cfg config.Config
	log zerolog.Logger
	out io.Writer

	configFile string
	envFiles   []string
}

func newRootCmd(out io.Writer) *cobra.Command {
	a := &app{v: viper.New(), out: out, log: zerolog.Nop()}
	d := config.Defaults()

	root := &cobra.Command{
		Use:           "pitchtrack",
		Short:         "Streaming pitch detection for WAV files",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.initialize(cmd)
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&a.configFile, "config", "", "YAML config file")
	pf.StringSliceVar(&a.envFiles, "env-file", []string{".env"}, "dotenv files to load")
	pf.String("log-level", d.LogLevel, "log level (trace, debug, info, warn, error)")
	pf.Bool("log-pretty", d.LogPretty, "human-readable log output")
	pf.StringP("output", "o", d.Output, "output format (table, json, yaml, csv)")

	root.SetOut(out)
	root.AddCommand(
		newAnalyzeCmd(a),
		newToneCmd(a),
		newResponseCmd(a),
		newWindowsCmd(a),
		newConfigCmd(a),
	)

	return root
}

// initialize loads .env files, binds the flags of cmd and resolves the
// configuration and logger.
func (a *app) initialize(cmd *cobra.Command) error {
	if err := config.LoadDotEnv(a.envFiles...); err != nil {
		return err
	}

	if err := bindFlags(a.v, cmd.Flags()); err != nil {
		return err
	}

	cfg, err := config.Load(a.v, a.configFile)
	if err != nil {
		return err
	}

	log, err := logging.New(cfg.LogLevel, cfg.LogPretty, cmd.ErrOrStderr())
	if err != nil {
		return fmt.Errorf("log level: %w", err)
	}

	a.cfg = cfg
	a.log = log

	return nil
}

func bindFlags(v *viper.Viper, fs *pflag.FlagSet) error {
	var lastErr error

	fs.VisitAll(func(f *pflag.Flag) {
		key, ok := flagKeys[f.Name]
		if !ok {
			return
		}

		if err := v.BindPFlag(key, f); err != nil {
			lastErr = err
		}
	})

	return lastErr
}

func newConfigCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Print the effective configuration as YAML",
		Args:  cobra.NoArgs,
		RunE: func(*cobra.Command, []string) error {
			out, err := a.cfg.YAML()
			if err != nil {
				return err
			}

			_, err = a.out.Write(out)

			return err
		},
	}
}
