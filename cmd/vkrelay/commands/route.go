package commands

import (
	"fmt"
	"net/url"

	"github.com/spf13/cobra"

	"vkrelay/internal/routing"
)

// routeCmd explains how a page URL and an API path would be routed.
func routeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "route <page-url> [api-path]",
		Short: "Show the routing decision for a page URL",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			u, err := url.Parse(args[0])
			if err != nil {
				return err
			}

			tunneledPage := routing.IsTunneledPath(u.Path)
			fmt.Printf("tunneled page:  %v\n", tunneledPage)

			host, ok := wire.Routing.ResolveActiveHostID(u.Path, u.Query())
			if ok {
				fmt.Printf("active host:    %s\n", host)
			} else {
				fmt.Println("active host:    none")
			}

			if len(args) == 2 {
				fmt.Printf("tunneled api:   %v\n", routing.IsRelayAPIPath(args[1]))
			}
			return nil
		},
	}
}
