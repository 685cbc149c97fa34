package main

import (
	"encoding/json"
	"fmt"
	"io/ioutil"
	"os"
	"path/filepath"

	"github.com/iov-one/crowdfund"
	"github.com/iov-one/crowdfund/app"
	cfapp "github.com/iov-one/crowdfund/cmd/crowdfundd/app"
	"github.com/iov-one/crowdfund/errors"
	"github.com/spf13/cobra"
)

const (
	flagChainID = "chain-id"

	defaultKeyName = "default"
)

func (c *cli) initCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init [key or address...]",
		Short: "Write the genesis file, funding the given accounts",
		Long: `Write genesis.json into the home directory. Every listed key name or
address receives the default balance. Without arguments a key named
"default" is generated and funded.`,
		RunE: c.runInit,
	}
	cmd.Flags().String(flagChainID, "crowdfund-dev", "chain id written to the genesis file")
	return cmd
}

func (c *cli) runInit(cmd *cobra.Command, args []string) error {
	chainID := c.v.GetString(flagChainID)
	if !crowdfund.IsValidChainID(chainID) {
		return errors.Wrapf(errors.ErrInput, "chain id: %v", chainID)
	}
	path := filepath.Join(c.home(), genesisFile)
	if exists(path) {
		return errors.Wrapf(errors.ErrDuplicate, "genesis file %s", path)
	}

	if len(args) == 0 {
		key, err := c.newKey(defaultKeyName)
		if err != nil {
			return err
		}
		args = []string{defaultKeyName}
		if err := printKey(cmd, defaultKeyName, key); err != nil {
			return err
		}
	}
	addrs := make([]crowdfund.Address, 0, len(args))
	for _, ref := range args {
		addr, err := c.resolveAddress(ref)
		if err != nil {
			return err
		}
		addrs = append(addrs, addr)
	}

	state, err := cfapp.GenInitOptions(addrs)
	if err != nil {
		return err
	}
	raw, err := json.MarshalIndent(app.Genesis{ChainID: chainID, AppState: state}, "", "  ")
	if err != nil {
		return errors.Wrap(errors.ErrHuman, err.Error())
	}
	if err := os.MkdirAll(c.home(), 0700); err != nil {
		return errors.Wrap(errors.ErrHuman, err.Error())
	}
	if err := ioutil.WriteFile(path, raw, 0600); err != nil {
		return errors.Wrap(errors.ErrHuman, err.Error())
	}
	c.logger.Info("Generated genesis file", "path", path, "chain_id", chainID, "accounts", len(addrs))
	fmt.Fprintln(cmd.OutOrStdout(), path)
	return nil
}
