package main

import (
	"crypto/rand"
	"fmt"

	"github.com/iov-one/crowdfund"
	"github.com/iov-one/crowdfund/errors"
	"github.com/iov-one/crowdfund/x/campaign"
	"github.com/iov-one/crowdfund/x/cash"
	"github.com/spf13/cobra"
)

const (
	flagKey      = "key"
	flagAmount   = "amount"
	flagTo       = "to"
	flagCampaign = "campaign"
	flagGoal     = "goal"
	flagDeadline = "deadline"
	flagID       = "id"
)

// txFlags registers the flags every transaction command shares.
func txFlags(cmd *cobra.Command) {
	cmd.Flags().String(flagKey, defaultKeyName, "name of the signing key")
	cmd.Flags().String(flagTime, "", "block time, unix seconds or RFC 3339 (default now)")
}

// submit signs msg with the configured key and executes it in a new
// block.
func (c *cli) submit(cmd *cobra.Command, build func(signer crowdfund.Address) (crowdfund.Msg, error)) error {
	key, err := c.loadKey(c.v.GetString(flagKey))
	if err != nil {
		return err
	}
	now, err := blockTime(c.v.GetString(flagTime))
	if err != nil {
		return err
	}
	msg, err := build(keyAddress(key))
	if err != nil {
		return err
	}
	if err := msg.Validate(); err != nil {
		return err
	}

	n, err := c.openNode()
	if err != nil {
		return err
	}
	defer n.Close()

	tx, err := n.sign(key, msg)
	if err != nil {
		return err
	}
	res, err := n.execute(tx, now)
	if err != nil {
		return err
	}
	c.logger.Info("Transaction delivered", "path", msg.Path(), "log", res.Log)
	for _, tag := range res.Tags {
		fmt.Fprintf(cmd.OutOrStdout(), "%s: %s\n", tag.Key, tag.Value)
	}
	return nil
}

func (c *cli) sendCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "send",
		Short: "Transfer funds to another account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			dest, err := c.resolveAddress(c.v.GetString(flagTo))
			if err != nil {
				return err
			}
			amount, err := c.amount(flagAmount)
			if err != nil {
				return err
			}
			return c.submit(cmd, func(signer crowdfund.Address) (crowdfund.Msg, error) {
				return &cash.SendMsg{
					Source:      signer,
					Destination: dest,
					Amount:      amount,
				}, nil
			})
		},
	}
	txFlags(cmd)
	cmd.Flags().String(flagTo, "", "recipient key name or address")
	cmd.Flags().Uint64(flagAmount, 0, "amount to transfer")
	return cmd
}

func (c *cli) campaignCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "campaign",
		Short: "Create, fund and withdraw crowdfunding campaigns",
	}

	create := &cobra.Command{
		Use:   "create",
		Short: "Create a campaign owned by the signing key",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := campaignID(c.v.GetString(flagID))
			if err != nil {
				return err
			}
			goal, err := c.amount(flagGoal)
			if err != nil {
				return err
			}
			var deadline crowdfund.UnixTime
			if raw := c.v.GetString(flagDeadline); raw != "" {
				t, err := blockTime(raw)
				if err != nil {
					return err
				}
				deadline = crowdfund.AsUnixTime(t)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "campaign_id: %X\n", id[:])
			return c.submit(cmd, func(signer crowdfund.Address) (crowdfund.Msg, error) {
				return campaign.NewInitializeMsg(signer, id, goal, deadline)
			})
		},
	}
	txFlags(create)
	create.Flags().String(flagID, "", "hex encoded 32 byte campaign id (default random)")
	create.Flags().Uint64(flagGoal, 0, "amount to raise")
	create.Flags().String(flagDeadline, "", "last moment donations are accepted, unix seconds or RFC 3339")

	donate := &cobra.Command{
		Use:   "donate",
		Short: "Donate to a campaign",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			addr, err := crowdfund.ParseAddress(c.v.GetString(flagCampaign))
			if err != nil {
				return err
			}
			amount, err := c.amount(flagAmount)
			if err != nil {
				return err
			}
			return c.submit(cmd, func(signer crowdfund.Address) (crowdfund.Msg, error) {
				return &campaign.DonateMsg{
					Amount:   amount,
					Campaign: addr,
					Donor:    signer,
					System:   cash.SystemProgramID,
				}, nil
			})
		},
	}
	txFlags(donate)
	donate.Flags().String(flagCampaign, "", "campaign address")
	donate.Flags().Uint64(flagAmount, 0, "amount to donate")

	withdraw := &cobra.Command{
		Use:   "withdraw",
		Short: "Move the escrow of a successful campaign to its authority",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			addr, err := crowdfund.ParseAddress(c.v.GetString(flagCampaign))
			if err != nil {
				return err
			}
			return c.submit(cmd, func(signer crowdfund.Address) (crowdfund.Msg, error) {
				return &campaign.WithdrawMsg{
					Campaign: addr,
					Creator:  signer,
					System:   cash.SystemProgramID,
				}, nil
			})
		},
	}
	txFlags(withdraw)
	withdraw.Flags().String(flagCampaign, "", "campaign address")

	show := &cobra.Command{
		Use:   "show <address>",
		Short: "Print a campaign and its escrow",
		Args:  cobra.ExactArgs(1),
		RunE:  c.runShowCampaign,
	}
	show.Flags().String(flagTime, "", "time the status is computed at (default now)")

	cmd.AddCommand(create, donate, withdraw, show)
	return cmd
}

func (c *cli) runShowCampaign(cmd *cobra.Command, args []string) error {
	addr, err := crowdfund.ParseAddress(args[0])
	if err != nil {
		return err
	}
	now, err := blockTime(c.v.GetString(flagTime))
	if err != nil {
		return err
	}
	n, err := c.openNode()
	if err != nil {
		return err
	}
	defer n.Close()

	var cp campaign.Campaign
	found, err := n.query("/campaigns", addr, &cp)
	if err != nil {
		return err
	}
	if !found {
		return errors.Wrapf(errors.ErrNotFound, "campaign %s", addr)
	}
	var escrow cash.Wallet
	if _, err := n.query("/wallets", addr, &escrow); err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "address:      %s\n", addr)
	fmt.Fprintf(out, "authority:    %s\n", cp.Authority)
	fmt.Fprintf(out, "campaign_id:  %X\n", cp.CampaignID[:])
	fmt.Fprintf(out, "goal:         %d\n", cp.Goal)
	fmt.Fprintf(out, "deadline:     %d (%s)\n", cp.Deadline, cp.Deadline)
	fmt.Fprintf(out, "total_raised: %d\n", cp.TotalRaised)
	fmt.Fprintf(out, "escrow:       %d\n", escrow.Balance)
	fmt.Fprintf(out, "status:       %s\n", cp.Status(crowdfund.AsUnixTime(now), escrow.Balance))
	return nil
}

func (c *cli) balanceCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "balance <key or address>",
		Short: "Print the balance of an account",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			addr, err := c.resolveAddress(args[0])
			if err != nil {
				return err
			}
			n, err := c.openNode()
			if err != nil {
				return err
			}
			defer n.Close()

			var w cash.Wallet
			if _, err := n.query("/wallets", addr, &w); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s: %d\n", addr, w.Balance)
			return nil
		},
	}
}

// campaignID decodes a hex id, or generates a random one when empty.
func campaignID(enc string) ([32]byte, error) {
	if enc != "" {
		return campaign.ParseCampaignID(enc)
	}
	var id [32]byte
	if _, err := rand.Read(id[:]); err != nil {
		return id, errors.Wrap(errors.ErrHuman, err.Error())
	}
	return id, nil
}
