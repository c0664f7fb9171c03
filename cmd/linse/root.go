package main

import (
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/lingpy/linse"
	"github.com/lingpy/linse/internal/config"
)

// env holds what every subcommand needs once the root flags are resolved.
type env struct {
	v     *viper.Viper
	cfg   *config.Config
	store *linse.Store
	log   *logrus.Logger
	out   *printer
}

func newRootCmd() *cobra.Command {
	e := &env{v: viper.New()}

	root := &cobra.Command{
		Use:           "linse",
		Short:         "Tokenize and annotate phonetic transcriptions",
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return e.setup(cmd)
		},
	}
	pf := root.PersistentFlags()
	pf.String("config", "", "YAML configuration file")
	pf.String("data", "", "data directory (default: embedded data)")
	pf.StringP("output", "o", "text", "output format: text, json or yaml")
	pf.String("log-level", "", "log level (trace, debug, info, warn, error)")

	e.v.SetEnvPrefix("LINSE")
	e.v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	e.v.AutomaticEnv()
	_ = e.v.BindPFlags(pf)

	root.AddCommand(
		newTokenizeCmd(e),
		newClassifyCmd(e),
		newProsodyCmd(e),
		newSyllablesCmd(e),
		newMorphemesCmd(e),
		newAnnotateCmd(e),
		newConvertCmd(e),
		newProfileCmd(e),
	)
	return root
}

// setup loads the configuration, builds the logger and opens the store.
func (e *env) setup(cmd *cobra.Command) error {
	cfg := config.Default()
	if path := e.v.GetString("config"); path != "" {
		var err error
		if cfg, err = config.Load(path); err != nil {
			return err
		}
	}
	if dir := e.v.GetString("data"); dir != "" {
		cfg.Data.Dir = dir
	}
	if lvl := e.v.GetString("log-level"); lvl != "" {
		cfg.Server.LogLevel = lvl
	}
	if err := config.Validate(cfg); err != nil {
		return err
	}
	e.cfg = cfg
	e.log = cfg.Server.NewLogger()
	e.log.SetOutput(cmd.ErrOrStderr())

	out, err := newPrinter(cmd.OutOrStdout(), e.v.GetString("output"))
	if err != nil {
		return err
	}
	e.out = out

	store, err := cfg.Data.OpenStore(e.log)
	if err != nil {
		return fmt.Errorf("load data: %w", err)
	}
	e.store = store
	return nil
}
