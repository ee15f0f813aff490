package commands

import (
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"vkrelay/internal/app"
)

var (
	home       string
	passphrase string
	relayURL   string
	env        string
	logLevel   string

	wire *app.Wire
)

func Execute() error {
	// Base env plus dev overrides, both optional.
	_ = godotenv.Load(".env")
	_ = godotenv.Load(".env.dev")

	root := &cobra.Command{
		Use:           "vkrelay",
		Short:         "Signed tunneling client for paired hosts behind a relay",
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if home == "" {
				dir, err := os.UserHomeDir()
				if err != nil {
					return err
				}
				home = filepath.Join(dir, ".vkrelay")
			}
			if err := os.MkdirAll(home, 0o700); err != nil {
				return err
			}
			if relayURL == "" {
				relayURL = os.Getenv("VKRELAY_URL")
			}

			var err error
			wire, err = app.NewWire(app.Config{
				Home:       home,
				RelayURL:   relayURL,
				Passphrase: passphrase,
				Env:        env,
				LogLevel:   logLevel,
			})
			return err
		},
	}

	root.PersistentFlags().StringVar(&home, "home", "", "config dir (default ~/.vkrelay)")
	root.PersistentFlags().StringVarP(&passphrase, "passphrase", "p", "", "passphrase protecting the credential vault")
	root.PersistentFlags().StringVar(&relayURL, "relay", "", "relay API root (or VKRELAY_URL)")
	root.PersistentFlags().StringVar(&env, "env", "dev", "logging environment: dev or prod")
	root.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level: debug, info, warn, error")

	root.AddCommand(pairCmd(), requestCmd(), refreshCmd(), wsCmd(), routeCmd())
	return root.Execute()
}
