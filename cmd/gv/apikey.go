package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var apikeyCmd = &cobra.Command{
	Use:     "apikey",
	Aliases: []string{"key"},
	Short:   "Manage tenant API keys",
}

var apikeyCreateCmd = &cobra.Command{
	Use:   "create <name>",
	Short: "Create an API key (the raw key is printed once and never again)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requireTenant(); err != nil {
			return err
		}
		createdBy, _ := cmd.Flags().GetString("created-by")

		created, err := gv.CreateAPIKey(context.Background(), tenantID, args[0], createdBy)
		if err != nil {
			return err
		}
		if jsonOutput {
			return json.NewEncoder(os.Stdout).Encode(created)
		}
		fmt.Printf("id:     %s\n", created.KeyInfo.ID)
		fmt.Printf("prefix: %s\n", created.KeyInfo.Prefix)
		fmt.Printf("key:    %s\n", created.APIKey)
		fmt.Fprintln(os.Stderr, "Save the key now; it cannot be retrieved later.")
		return nil
	},
}

var apikeyListCmd = &cobra.Command{
	Use:   "list",
	Short: "List the tenant's API keys",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requireTenant(); err != nil {
			return err
		}
		keys, err := gv.ListAPIKeys(context.Background(), tenantID)
		if err != nil {
			return err
		}
		if jsonOutput {
			return json.NewEncoder(os.Stdout).Encode(keys)
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tNAME\tPREFIX\tCREATED\tLAST USED")
		for _, k := range keys {
			lastUsed := "never"
			if k.LastUsedAt != nil {
				lastUsed = k.LastUsedAt.Format("2006-01-02 15:04")
			}
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
				k.ID, k.Name, k.Prefix, k.CreatedAt.Format("2006-01-02 15:04"), lastUsed)
		}
		return w.Flush()
	},
}

var apikeyDeleteCmd = &cobra.Command{
	Use:     "delete <id>",
	Aliases: []string{"revoke"},
	Short:   "Delete an API key",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requireTenant(); err != nil {
			return err
		}
		if err := gv.DeleteAPIKey(context.Background(), tenantID, args[0]); err != nil {
			return err
		}
		fmt.Printf("%s deleted\n", args[0])
		return nil
	},
}

func init() {
	apikeyCreateCmd.Flags().String("created-by", "", "who is creating the key")

	apikeyCmd.AddCommand(apikeyCreateCmd)
	apikeyCmd.AddCommand(apikeyListCmd)
	apikeyCmd.AddCommand(apikeyDeleteCmd)
}
