package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/iov-one/crowdfund/errors"
	"github.com/spf13/cast"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/tendermint/tendermint/libs/log"
)

const (
	flagHome     = "home"
	flagLogLevel = "log_level"
	flagDebug    = "debug"

	envPrefix  = "CROWDFUND"
	configName = "config"
)

// cli holds the state shared by all commands of one invocation. Every
// setting can come from a flag, a CROWDFUND_* environment variable or
// config.yaml in the home directory, in that order of precedence.
type cli struct {
	v         *viper.Viper
	logger    log.Logger
	logOutput io.Writer
}

// NewRootCmd builds the crowdfundd command tree.
func NewRootCmd() *cobra.Command {
	c := &cli{
		v:         viper.New(),
		logOutput: os.Stderr,
	}
	root := &cobra.Command{
		Use:               "crowdfundd",
		Short:             "Crowdfunding escrow node",
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: c.setup,
	}

	defaultHome := filepath.Join(os.ExpandEnv("$HOME"), ".crowdfund")
	flags := root.PersistentFlags()
	flags.String(flagHome, defaultHome, "directory to store files under")
	flags.String(flagLogLevel, "info", "log level (debug, info, error or none)")
	flags.Bool(flagDebug, false, "return call stacks on error")
	if err := c.v.BindPFlags(flags); err != nil {
		panic(err)
	}

	root.AddCommand(
		c.initCmd(),
		c.startCmd(),
		c.keysCmd(),
		c.sendCmd(),
		c.campaignCmd(),
		c.balanceCmd(),
		versionCmd(),
	)
	return root
}

// setup reads the configuration and builds the logger. It runs
// before every command.
func (c *cli) setup(cmd *cobra.Command, args []string) error {
	if err := c.v.BindPFlags(cmd.Flags()); err != nil {
		return errors.Wrap(errors.ErrInput, err.Error())
	}
	c.v.SetEnvPrefix(envPrefix)
	c.v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	c.v.AutomaticEnv()

	c.v.SetConfigName(configName)
	c.v.AddConfigPath(c.home())
	if err := c.v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return errors.Wrapf(errors.ErrInput, "config: %s", err)
		}
	}

	logger, err := newLogger(c.logOutput, c.v.GetString(flagLogLevel))
	if err != nil {
		return err
	}
	c.logger = logger
	return nil
}

func (c *cli) home() string {
	return c.v.GetString(flagHome)
}

func (c *cli) debug() bool {
	return c.v.GetBool(flagDebug)
}

// amount reads an unsigned setting. Values from the environment or the
// config file arrive as strings and are parsed here.
func (c *cli) amount(name string) (uint64, error) {
	n, err := cast.ToUint64E(c.v.Get(name))
	if err != nil {
		return 0, errors.Wrapf(errors.ErrInput, "%s: %s", name, err)
	}
	return n, nil
}

func newLogger(w io.Writer, level string) (log.Logger, error) {
	opt, err := log.AllowLevel(level)
	if err != nil {
		return nil, errors.Wrap(errors.ErrInput, err.Error())
	}
	logger := log.NewTMLogger(log.NewSyncWriter(w)).
		With("module", "crowdfund")
	return log.NewFilter(logger, opt), nil
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the app version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), Version)
		},
	}
}
