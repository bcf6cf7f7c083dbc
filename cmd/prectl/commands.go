package main

import (
	"crypto/rand"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	mh "github.com/multiformats/go-multihash"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/sonr-io/prekit/accesscontrol"
	"github.com/sonr-io/prekit/hrac"
	"github.com/sonr-io/prekit/keyfrag"
	"github.com/sonr-io/prekit/umbral"
	"github.com/sonr-io/prekit/versioning"
)

// randomKeyFrag stands in for a real fragment when prectl is used to
// exercise the envelope formats.
const randomKeyFrag = "random"

func keygenCmd(app *cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "keygen",
		Short: "Generate a secp256k1 key pair",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			out, _ := cmd.Flags().GetString("out")
			if out == "" {
				out = app.cfg.Home
			}

			sk, err := umbral.GenerateSecretKey()
			if err != nil {
				return err
			}
			defer sk.Zeroize()

			pub, err := writeKeyPair(out, sk)
			if err != nil {
				return err
			}
			app.logger.Info("wrote key pair", "dir", out)
			fmt.Fprintln(cmd.OutOrStdout(), pub)
			return nil
		},
	}
	cmd.Flags().String("out", "", "Directory for secret.key and public.key (defaults to the configured home)")
	return cmd
}

func policyCmd(app *cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "policy",
		Short: "Build an access control policy envelope from a TOML file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			path, _ := cmd.Flags().GetString("file")
			policy, err := LoadPolicy(path)
			if err != nil {
				return err
			}
			if _, ok := policy.Conditions(); !ok {
				app.logger.Warn("policy has no conditions; no AAD can be derived from it", "file", path)
			}
			fmt.Fprintln(cmd.OutOrStdout(), base64.StdEncoding.EncodeToString(policy.Bytes()))
			return nil
		},
	}
	cmd.Flags().String("file", "policy.toml", "Policy description")
	return cmd
}

// policyID derives the identifier a publisher and a recipient share for label.
func policyID(cmd *cobra.Command, publisher umbral.PublicKey) (hrac.HRAC, error) {
	bobFlag, _ := cmd.Flags().GetString("bob")
	label, _ := cmd.Flags().GetString("label")

	bob, err := parsePublicKey(bobFlag)
	if err != nil {
		return hrac.HRAC{}, errors.Wrap(err, "--bob")
	}
	return hrac.New(publisher, bob, []byte(label)), nil
}

func parseKeyFrag(value string) (umbral.KeyFrag, error) {
	raw := make([]byte, umbral.KeyFragSize)
	if value == randomKeyFrag {
		if _, err := rand.Read(raw); err != nil {
			return umbral.KeyFrag{}, err
		}
	} else {
		var err error
		if raw, err = hex.DecodeString(value); err != nil {
			return umbral.KeyFrag{}, errors.Wrap(err, "--kfrag")
		}
	}
	// fragments handed to grant were produced by the caller itself
	return umbral.KeyFragFromVerifiedBytes(raw)
}

func grantCmd(app *cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "grant",
		Short: "Authorize key fragments and encrypt them for their nodes",
		Long: `Sign each key fragment together with the policy identifier derived from the
publisher key, --bob and --label, then encrypt it for the matching --recipient.
One encrypted key fragment envelope is printed per recipient, in order.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			signerPath, _ := cmd.Flags().GetString("signer")
			if signerPath == "" {
				signerPath = filepath.Join(app.cfg.Home, secretKeyFile)
			}
			recipients, _ := cmd.Flags().GetStringSlice("recipient")
			kfrags, _ := cmd.Flags().GetStringSlice("kfrag")
			if len(recipients) == 0 {
				return fmt.Errorf("at least one --recipient is required")
			}
			if len(kfrags) != 0 && len(kfrags) != len(recipients) {
				return fmt.Errorf("got %d --kfrag values for %d recipients", len(kfrags), len(recipients))
			}

			sk, err := readSecretKey(signerPath)
			if err != nil {
				return err
			}
			defer sk.Zeroize()
			signer := umbral.NewSigner(sk)

			id, err := policyID(cmd, signer.VerifyingKey())
			if err != nil {
				return err
			}

			assignments := make([]keyfrag.Assignment, len(recipients))
			for i, r := range recipients {
				if assignments[i].Recipient, err = parsePublicKey(r); err != nil {
					return errors.Wrapf(err, "--recipient %d", i)
				}
				value := randomKeyFrag
				if len(kfrags) != 0 {
					value = kfrags[i]
				}
				if assignments[i].KeyFrag, err = parseKeyFrag(value); err != nil {
					return err
				}
			}

			ekfs, err := keyfrag.EncryptForNodes(cmd.Context(), signer, id, assignments)
			if err != nil {
				return err
			}
			app.logger.Info("granted key fragments", "hrac", id.String(), "nodes", len(ekfs))
			for _, ekf := range ekfs {
				fmt.Fprintln(cmd.OutOrStdout(), base64.StdEncoding.EncodeToString(ekf.Bytes()))
			}
			return nil
		},
	}
	cmd.Flags().String("signer", "", "Publisher secret key file (defaults to secret.key in the configured home)")
	cmd.Flags().StringSlice("recipient", nil, "Node public key, multibase or a file holding it (repeatable)")
	cmd.Flags().StringSlice("kfrag", nil, `Hex encoded key fragment per recipient, or "random"`)
	cmd.Flags().String("bob", "", "Recipient of the policy, multibase or a file holding it")
	cmd.Flags().String("label", "", "Policy label")
	_ = cmd.MarkFlagRequired("bob")
	_ = cmd.MarkFlagRequired("label")
	return cmd
}

// readEnvelope decodes a base64 argument, or standard input when it is "-".
func readEnvelope(cmd *cobra.Command, arg string) ([]byte, error) {
	text := arg
	if arg == "-" {
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return nil, errors.Wrap(err, "failed to read standard input")
		}
		text = string(data)
	}
	b, err := base64.StdEncoding.DecodeString(strings.TrimSpace(text))
	if err != nil {
		return nil, errors.Wrap(err, "envelope is not base64")
	}
	return b, nil
}

func openCmd(app *cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "open <envelope>",
		Short: "Decrypt an encrypted key fragment and verify its authorization",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			secretPath, _ := cmd.Flags().GetString("secret")
			if secretPath == "" {
				secretPath = filepath.Join(app.cfg.Home, secretKeyFile)
			}
			publisherFlag, _ := cmd.Flags().GetString("publisher")

			raw, err := readEnvelope(cmd, args[0])
			if err != nil {
				return err
			}
			ekf, err := keyfrag.EncryptedKeyFragFromBytes(raw)
			if err != nil {
				return err
			}
			publisher, err := parsePublicKey(publisherFlag)
			if err != nil {
				return errors.Wrap(err, "--publisher")
			}
			id, err := policyID(cmd, publisher)
			if err != nil {
				return err
			}

			sk, err := readSecretKey(secretPath)
			if err != nil {
				return err
			}
			defer sk.Zeroize()

			akf, ok := ekf.Decrypt(sk)
			if !ok {
				return fmt.Errorf("key fragment was not encrypted for this key")
			}
			kfrag, ok := akf.Verify(id, publisher)
			if !ok {
				return fmt.Errorf("key fragment is not authorized for policy %s", id)
			}

			kid := kfrag.ID()
			app.logger.Debug("verified key fragment", "hrac", id.String())
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", hex.EncodeToString(kid[:]), kfrag.Status())
			return nil
		},
	}
	cmd.Flags().String("secret", "", "Node secret key file (defaults to secret.key in the configured home)")
	cmd.Flags().String("publisher", "", "Publisher public key, multibase or a file holding it")
	cmd.Flags().String("bob", "", "Recipient of the policy, multibase or a file holding it")
	cmd.Flags().String("label", "", "Policy label")
	_ = cmd.MarkFlagRequired("publisher")
	_ = cmd.MarkFlagRequired("bob")
	_ = cmd.MarkFlagRequired("label")
	return cmd
}

// decoders validates the payload of every brand prectl knows.
var decoders = map[string]func([]byte) error{
	"AuDa": func(b []byte) error {
		_, err := accesscontrol.AuthenticatedDataFromBytes(b)
		return err
	},
	"ACPo": func(b []byte) error {
		_, err := accesscontrol.AccessControlPolicyFromBytes(b)
		return err
	},
	"AKFr": func(b []byte) error {
		_, err := keyfrag.AuthorizedKeyFragFromBytes(b)
		return err
	},
	"EKFr": func(b []byte) error {
		_, err := keyfrag.EncryptedKeyFragFromBytes(b)
		return err
	},
}

func inspectCmd(app *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "inspect <envelope>",
		Short: "Show the header, validity and fingerprint of an envelope",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			raw, err := readEnvelope(cmd, args[0])
			if err != nil {
				return err
			}
			h, payload, err := versioning.ParseHeader(raw)
			if err != nil {
				return err
			}
			sum, err := mh.Sum(raw, mh.SHA2_256, -1)
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "brand:       %s\n", h.Brand)
			fmt.Fprintf(w, "version:     %s\n", h.Version)
			fmt.Fprintf(w, "payload:     %d bytes\n", len(payload))
			fmt.Fprintf(w, "fingerprint: %s\n", sum.B58String())

			current, known := versioning.Lookup(h.Brand)
			if !known {
				fmt.Fprintln(w, "status:      unknown brand")
				return nil
			}
			status := "ok"
			if decode, ok := decoders[h.Brand.String()]; ok {
				if err := decode(raw); err != nil {
					app.logger.Debug("envelope failed to decode", "brand", h.Brand.String(), "error", err)
					status = err.Error()
				}
			}
			fmt.Fprintf(w, "supported:   %s\n", current)
			fmt.Fprintf(w, "status:      %s\n", status)
			return nil
		},
	}
}

func brandsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "brands",
		Short: "List the envelope brands this binary can decode",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			for _, h := range versioning.Registered() {
				fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", h.Brand, h.Version)
			}
			return nil
		},
	}
}
