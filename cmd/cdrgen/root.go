package main

import (
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/wippyai/cdr-streamer/codec"
	"github.com/wippyai/cdr-streamer/errors"
	"github.com/wippyai/cdr-streamer/idl"
	"github.com/wippyai/cdr-streamer/streamer"
	"github.com/wippyai/cdr-streamer/witsource"
)

// Config is the merged view of flags, environment and config file.
type Config struct {
	Output         string `mapstructure:"output"`
	From           string `mapstructure:"from"`
	LogLevel       string `mapstructure:"log_level"`
	MaxOutputBytes int    `mapstructure:"max_output_bytes"`
	Strict         bool   `mapstructure:"strict"`
}

type app struct {
	v      *viper.Viper
	cfg    Config
	logger *zap.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{v: viper.New()}

	root := &cobra.Command{
		Use:   "cdrgen",
		Short: "Generate CDR marshalling procedures from IDL type trees",
		Long: `cdrgen turns the type tree of an IDL specification into C++ procedures
that write, size and read every struct in a CDR-style binary layout.

Input is a YAML/JSON tree document (--from tree) or the JSON form of a
resolved WIT package (--from wit).

Examples:
  cdrgen generate types.yaml -o out/types   # writes out/types.h and out/types.cpp
  cdrgen layout types.yaml --strict         # show field offsets
  cdrgen tree types.yaml                    # dump the type tree
  cdrgen browse types.yaml                  # interactive viewer`,
		SilenceUsage:      true,
		PersistentPreRunE: a.load,
	}

	flags := root.PersistentFlags()
	flags.String("config", "", "Config file (yaml, toml or json)")
	flags.String("log-level", "warn", "Log level (debug, info, warn, error)")
	flags.String("from", "tree", "Input format: tree or wit")
	flags.Bool("strict", false, "Align every field to its width regardless of start offset")

	a.v.SetDefault("from", "tree")
	a.v.SetDefault("log_level", "warn")
	a.v.SetDefault("output", "")
	a.v.SetDefault("max_output_bytes", 0)
	_ = a.v.BindPFlag("log_level", flags.Lookup("log-level"))
	_ = a.v.BindPFlag("from", flags.Lookup("from"))
	_ = a.v.BindPFlag("strict", flags.Lookup("strict"))

	root.AddCommand(
		a.generateCmd(),
		a.layoutCmd(),
		a.treeCmd(),
		a.browseCmd(),
	)
	return root
}

// load merges configuration sources and installs the logger.
func (a *app) load(cmd *cobra.Command, _ []string) error {
	a.v.SetEnvPrefix("CDRGEN")
	a.v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	a.v.AutomaticEnv()

	if path, _ := cmd.Flags().GetString("config"); path != "" {
		a.v.SetConfigFile(path)
		if err := a.v.ReadInConfig(); err != nil {
			return errors.Wrap(errors.PhaseConfig, errors.KindInvalidInput, err, "read config "+path)
		}
	}

	if err := a.v.Unmarshal(&a.cfg); err != nil {
		return errors.Wrap(errors.PhaseConfig, errors.KindInvalidInput, err, "decode config")
	}

	logger, err := newLogger(a.cfg.LogLevel)
	if err != nil {
		return err
	}
	a.logger = logger
	streamer.SetLogger(logger.Named("streamer"))
	codec.SetLogger(logger.Named("codec"))
	return nil
}

func newLogger(level string) (*zap.Logger, error) {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return nil, errors.Wrap(errors.PhaseConfig, errors.KindInvalidInput, err, "log level")
	}
	cfg := zap.NewDevelopmentConfig()
	cfg.Level = zap.NewAtomicLevelAt(lvl)
	cfg.DisableStacktrace = true
	return cfg.Build()
}

func (a *app) policy() streamer.Policy {
	if a.cfg.Strict {
		return streamer.PolicyStrict
	}
	return streamer.PolicyCompat
}

// loadTree reads the input document in the configured format.
func (a *app) loadTree(path string) (*idl.Tree, errors.Diagnostics, error) {
	switch a.cfg.From {
	case "", "tree":
		tree, err := idl.LoadFile(path)
		return tree, nil, err
	case "wit":
		return witsource.LoadFile(path)
	default:
		return nil, nil, errors.InvalidInput(errors.PhaseConfig, "unknown input format "+a.cfg.From)
	}
}
