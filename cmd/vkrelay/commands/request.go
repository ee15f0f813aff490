package commands

import (
	"fmt"
	"io"
	"net/http"
	"os"

	"github.com/spf13/cobra"

	"vkrelay/internal/domain"
)

var requestData string

// requestCmd sends one signed HTTP request through the relay tunnel.
func requestCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "request <host-id> <method> <path>",
		Short: "Send a signed HTTP request to a paired host",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			host := domain.HostID(args[0])
			method, path := args[1], args[2]

			var body any
			if requestData != "" {
				if requestData == "@-" {
					raw, err := io.ReadAll(os.Stdin)
					if err != nil {
						return err
					}
					body = raw
				} else {
					body = requestData
				}
			}

			resp, err := wire.Tunnel.Do(cmd.Context(), host, method, path, body)
			if err != nil {
				return err
			}
			defer resp.Body.Close()

			fmt.Fprintf(os.Stderr, "%s %s -> %s\n", method, path, resp.Status)
			if _, err := io.Copy(os.Stdout, resp.Body); err != nil {
				return err
			}
			if resp.StatusCode >= http.StatusBadRequest {
				return fmt.Errorf("request failed with status %d", resp.StatusCode)
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&requestData, "data", "d", "", "request body; @- reads stdin")
	return cmd
}
