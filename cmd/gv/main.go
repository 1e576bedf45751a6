package main

import (
	"fmt"
	"os"

	"github.com/alfredjeanlab/gridvault/internal/client"
	"github.com/spf13/cobra"
)

var (
	serverURL  string
	authToken  string
	tenantID   string
	jsonOutput bool

	gv *client.Client
)

func defaultServer() string {
	if s := os.Getenv("GV_SERVER"); s != "" {
		return s
	}
	return "http://localhost:8080"
}

var rootCmd = &cobra.Command{
	Use:   "gv <command>",
	Short: "CLI client for the gridvault config service",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		gv = client.New(serverURL, authToken)
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&serverURL, "server", defaultServer(), "server URL")
	rootCmd.PersistentFlags().StringVar(&authToken, "token", os.Getenv("GV_AUTH_TOKEN"), "bearer token")
	rootCmd.PersistentFlags().StringVarP(&tenantID, "tenant", "t", os.Getenv("GV_TENANT"), "tenant ID")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "output as JSON")

	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(apikeyCmd)
	rootCmd.AddCommand(healthCmd)
	rootCmd.AddCommand(serveCmd)
}

// requireTenant fails the command when no tenant was given.
func requireTenant() error {
	if tenantID == "" {
		return fmt.Errorf("tenant is required (use --tenant or GV_TENANT)")
	}
	return nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
