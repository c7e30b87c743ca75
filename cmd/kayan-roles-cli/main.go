package main

import (
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"
)

// Version is set at build time
var Version = "dev"

func newRootCommand(client *Client) *cobra.Command {
	root := &cobra.Command{
		Use:   "kayan-roles-cli",
		Short: "Kayan role selection command line interface",
		Long: `Environment Variables:
  KAYAN_URL       Base URL of the kayan-roles server (default: http://localhost:8080)
  KAYAN_IDENTITY  Identity ID of the editor`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&client.BaseURL, "url", client.BaseURL, "server base URL")
	root.PersistentFlags().StringVar(&client.Identity, "as", client.Identity, "editor identity ID")

	root.AddCommand(newRoleCommand(client), &cobra.Command{
		Use:   "version",
		Short: "Show CLI version",
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "kayan-roles-cli %s\n", Version)
		},
	})
	return root
}

func main() {
	client := &Client{
		BaseURL:  getEnv("KAYAN_URL", "http://localhost:8080"),
		Identity: os.Getenv("KAYAN_IDENTITY"),
		HTTP:     &http.Client{Timeout: 30 * time.Second},
	}

	if err := newRootCommand(client).Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
