package main

import (
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io/ioutil"
	"os"
	"path/filepath"
	"regexp"

	"github.com/iov-one/crowdfund"
	"github.com/iov-one/crowdfund/errors"
	"github.com/spf13/cobra"
	"golang.org/x/crypto/ed25519"
)

const (
	keysDir = "keys"

	// bech32Prefix is the human readable part used when printing
	// addresses in bech32.
	bech32Prefix = "cf"
)

var isKeyName = regexp.MustCompile(`^[a-zA-Z0-9_\-]{1,32}$`).MatchString

// keyFile is the on disk format of a local key. All values are hex.
type keyFile struct {
	Address string `json:"address"`
	PubKey  string `json:"pub_key"`
	Secret  string `json:"secret"`
}

func (c *cli) keysCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "keys",
		Short: "Manage local ed25519 keys",
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "new <name>",
			Short: "Generate a new key",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				key, err := c.newKey(args[0])
				if err != nil {
					return err
				}
				return printKey(cmd, args[0], key)
			},
		},
		&cobra.Command{
			Use:   "show <name>",
			Short: "Print the address of a key",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				key, err := c.loadKey(args[0])
				if err != nil {
					return err
				}
				return printKey(cmd, args[0], key)
			},
		},
	)
	return cmd
}

func printKey(cmd *cobra.Command, name string, key ed25519.PrivateKey) error {
	addr := keyAddress(key)
	b32, err := addr.Bech32(bech32Prefix)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "name:    %s\n", name)
	fmt.Fprintf(out, "address: %s\n", addr)
	fmt.Fprintf(out, "base58:  %s\n", addr.Base58())
	fmt.Fprintf(out, "bech32:  %s\n", b32)
	return nil
}

func keyAddress(key ed25519.PrivateKey) crowdfund.Address {
	return crowdfund.KeyAddress(key.Public().(ed25519.PublicKey))
}

func (c *cli) keyPath(name string) (string, error) {
	if !isKeyName(name) {
		return "", errors.Wrapf(errors.ErrInput, "invalid key name %q", name)
	}
	return filepath.Join(c.home(), keysDir, name+".json"), nil
}

// newKey generates a key and stores it under name. Existing keys are
// never overwritten.
func (c *cli) newKey(name string) (ed25519.PrivateKey, error) {
	path, err := c.keyPath(name)
	if err != nil {
		return nil, err
	}
	if _, err := os.Stat(path); err == nil {
		return nil, errors.Wrapf(errors.ErrDuplicate, "key %q", name)
	}

	pub, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		return nil, errors.Wrap(errors.ErrHuman, err.Error())
	}
	raw, err := json.MarshalIndent(keyFile{
		Address: crowdfund.KeyAddress(pub).String(),
		PubKey:  hex.EncodeToString(pub),
		Secret:  hex.EncodeToString(priv),
	}, "", "  ")
	if err != nil {
		return nil, errors.Wrap(errors.ErrHuman, err.Error())
	}
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return nil, errors.Wrap(errors.ErrHuman, err.Error())
	}
	if err := ioutil.WriteFile(path, raw, 0600); err != nil {
		return nil, errors.Wrap(errors.ErrHuman, err.Error())
	}
	c.logger.Info("Generated key", "name", name, "path", path)
	return priv, nil
}

func (c *cli) loadKey(name string) (ed25519.PrivateKey, error) {
	path, err := c.keyPath(name)
	if err != nil {
		return nil, err
	}
	raw, err := ioutil.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrapf(errors.ErrNotFound, "key %q", name)
		}
		return nil, errors.Wrap(errors.ErrHuman, err.Error())
	}
	var kf keyFile
	if err := json.Unmarshal(raw, &kf); err != nil {
		return nil, errors.Wrapf(errors.ErrInput, "key %q: %s", name, err)
	}
	secret, err := hex.DecodeString(kf.Secret)
	if err != nil || len(secret) != ed25519.PrivateKeySize {
		return nil, errors.Wrapf(errors.ErrInput, "key %q: invalid secret", name)
	}
	return ed25519.PrivateKey(secret), nil
}

// resolveAddress accepts the name of a local key or an encoded
// address.
func (c *cli) resolveAddress(ref string) (crowdfund.Address, error) {
	if isKeyName(ref) {
		if key, err := c.loadKey(ref); err == nil {
			return keyAddress(key), nil
		} else if !errors.ErrNotFound.Is(err) {
			return nil, err
		}
	}
	addr, err := crowdfund.ParseAddress(ref)
	if err != nil {
		return nil, errors.Wrapf(err, "neither a key nor an address: %q", ref)
	}
	if err := addr.Validate(); err != nil {
		return nil, err
	}
	return addr, nil
}
