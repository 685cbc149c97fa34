package main

import (
	cfapp "github.com/iov-one/crowdfund/cmd/crowdfundd/app"
	"github.com/iov-one/crowdfund/errors"
	"github.com/spf13/cobra"
	"github.com/tendermint/tendermint/abci/server"
	abci "github.com/tendermint/tendermint/abci/types"
	cmn "github.com/tendermint/tendermint/libs/common"
	"github.com/tendermint/tendermint/libs/log"
)

const flagBind = "bind"

// AppGenerator lets us lazily initialize app, using home dir
// and logger potentially initialized with other flags
type AppGenerator func(string, log.Logger, bool) (abci.Application, error)

func (c *cli) startCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "start",
		Short: "Run the abci server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runStart(cfapp.GenerateApp)
		},
	}
	cmd.Flags().String(flagBind, "tcp://localhost:26658", "address server listens on")
	return cmd
}

func (c *cli) runStart(gen AppGenerator) error {
	// Generate the app in the proper dir
	app, err := gen(c.home(), c.logger, c.debug())
	if err != nil {
		return err
	}

	addr := c.v.GetString(flagBind)
	c.logger.Info("Starting ABCI app", "bind", addr)

	svr, err := server.NewServer(addr, "socket", app)
	if err != nil {
		return errors.Wrapf(errors.ErrHuman, "creating listener: %s", err)
	}
	svr.SetLogger(c.logger.With("module", "abci-server"))
	if err := svr.Start(); err != nil {
		return errors.Wrapf(errors.ErrHuman, "starting server: %s", err)
	}

	cmn.TrapSignal(c.logger, func() {
		if err := svr.Stop(); err != nil {
			c.logger.Error("Stopping server", "err", err)
		}
	})

	// TrapSignal exits the process on interrupt.
	select {}
}
