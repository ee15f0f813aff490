package commands

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"vkrelay/internal/domain"
)

// pairCmd manages paired-host credentials in the local vault.
func pairCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "pair",
		Short: "Manage paired hosts",
	}
	cmd.AddCommand(pairListCmd(), pairShowCmd(), pairAddCmd(), pairActiveCmd())
	return cmd
}

func pairListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List paired hosts",
		RunE: func(cmd *cobra.Command, args []string) error {
			creds, err := wire.Pairing.List()
			if err != nil {
				return err
			}
			if len(creds) == 0 {
				fmt.Println("no paired hosts")
				return nil
			}
			for _, c := range creds {
				state := "ready"
				if c.SigningSessionID == "" {
					state = "needs re-pair"
				}
				fmt.Printf("%s\tsession=%s\t%s\n", c.HostID, c.SigningSessionID, state)
			}
			return nil
		},
	}
}

func pairShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <host-id>",
		Short: "Show one paired host credential (key material redacted)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cred, ok, err := wire.Pairing.Get(domain.HostID(args[0]))
			if err != nil {
				return err
			}
			if !ok {
				return fmt.Errorf("host %s is not paired", args[0])
			}
			fmt.Printf("host_id:            %s\n", cred.HostID)
			fmt.Printf("client_id:          %s\n", cred.ClientID)
			fmt.Printf("signing_session_id: %s\n", cred.SigningSessionID)
			fmt.Printf("server_public_key:  %s\n", cred.ServerPublicKey)
			if cred.PairedAtUTC > 0 {
				fmt.Printf("paired_at:          %s\n", time.Unix(cred.PairedAtUTC, 0).UTC().Format(time.RFC3339))
			}
			return nil
		},
	}
}

func pairAddCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "add <credential.json>",
		Short: "Import a pairing credential issued by a host",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			raw, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			var cred domain.PairedHostCredential
			if err := json.Unmarshal(raw, &cred); err != nil {
				return fmt.Errorf("parse credential: %w", err)
			}
			if cred.HostID == "" {
				return fmt.Errorf("credential is missing host_id")
			}
			if len(cred.PrivateKeyJWK) == 0 {
				return fmt.Errorf("credential is missing private_key_jwk")
			}
			if cred.PairedAtUTC == 0 {
				cred.PairedAtUTC = time.Now().UTC().Unix()
			}
			if err := wire.Pairing.Save(cred); err != nil {
				return err
			}
			fmt.Printf("paired host %s\n", cred.HostID)
			return nil
		},
	}
}

func pairActiveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "active [host-id]",
		Short: "Show or set the active host",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 {
				host := domain.HostID(args[0])
				if _, ok, err := wire.Pairing.Get(host); err != nil {
					return err
				} else if !ok {
					return fmt.Errorf("host %s is not paired", host)
				}
				if err := wire.Active.SetActiveHost(host); err != nil {
					return err
				}
				fmt.Printf("active host set to %s\n", host)
				return nil
			}
			host, ok, err := wire.Active.ActiveHost()
			if err != nil {
				return err
			}
			if !ok {
				fmt.Println("no active host")
				return nil
			}
			fmt.Println(host)
			return nil
		},
	}
}
