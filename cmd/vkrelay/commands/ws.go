package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"vkrelay/internal/domain"
)

var wsSend []string

// wsCmd opens a signed WebSocket through the relay tunnel, sends any queued
// messages and prints what comes back until the peer closes.
func wsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ws <host-id> <path>",
		Short: "Open a signed WebSocket to a paired host",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			host := domain.HostID(args[0])

			conn, err := wire.Tunnel.OpenWebSocket(cmd.Context(), host, args[1])
			if err != nil {
				return err
			}
			defer conn.Close()

			for _, msg := range wsSend {
				if err := conn.Send(domain.WsText, []byte(msg)); err != nil {
					return err
				}
			}
			if len(wsSend) == 0 {
				if err := conn.Ping(); err != nil {
					return err
				}
			}

			for i := 0; i < len(wsSend) || i == 0; i++ {
				msgType, payload, err := conn.Receive()
				if err != nil {
					return err
				}
				if msgType == domain.WsClose {
					return nil
				}
				fmt.Printf("%s: %s\n", msgType, payload)
			}
			return nil
		},
	}
	cmd.Flags().StringArrayVarP(&wsSend, "send", "s", nil, "text message to send; repeatable")
	return cmd
}
