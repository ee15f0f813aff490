package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"vkrelay/internal/domain"
)

// refreshCmd forces a signing session refresh for one host.
func refreshCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "refresh <host-id>",
		Short: "Rotate the signing session for a paired host",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			host := domain.HostID(args[0])
			hostCtx, err := wire.Resolver.ResolveHostContext(cmd.Context(), host)
			if err != nil {
				return err
			}
			next := wire.Resolver.RefreshSigningSession(cmd.Context(), hostCtx)
			if next == nil {
				return fmt.Errorf("signing session refresh unavailable for host %s; re-pair the host", host)
			}
			fmt.Printf("signing session for %s is now %s\n", host, next.Credential.SigningSessionID)
			return nil
		},
	}
}
