package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/getkayan/kayan-roles/core/rbac"
	"github.com/spf13/cobra"
)

func newRoleCommand(client *Client) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "role",
		Aliases: []string{"roles"},
		Short:   "Inspect and assign roles",
	}
	cmd.AddCommand(newChoicesCommand(client), newAssignCommand(client))
	return cmd
}

func newChoicesCommand(client *Client) *cobra.Command {
	return &cobra.Command{
		Use:   "choices",
		Short: "List the roles the current editor may grant",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			resp, err := client.get("/api/v1/roles/choices")
			if err != nil {
				return err
			}

			var opts rbac.Options
			if err := json.Unmarshal(resp, &opts); err != nil {
				return err
			}
			return printChoices(cmd.OutOrStdout(), &opts)
		},
	}
}

func printChoices(out io.Writer, opts *rbac.Options) error {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ROLE\tLABEL\tEDITABLE")
	for _, c := range opts.Choices {
		fmt.Fprintf(w, "%s\t%s\tyes\n", c.Value, c.Label)
	}
	for _, c := range opts.ReadOnly {
		fmt.Fprintf(w, "%s\t%s\tno\n", c.Value, c.Label)
	}
	return w.Flush()
}

func newAssignCommand(client *Client) *cobra.Command {
	var roles []string
	cmd := &cobra.Command{
		Use:   "assign <identity-id>",
		Short: "Resolve a role selection for an identity",
		Long: `Submits the editable roles an identity should hold. Roles the editor
cannot grant are kept as they are. The resolved roles are printed; storing
them is left to the caller.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			resp, err := client.post("/api/v1/identities/"+args[0]+"/roles", map[string]any{
				"roles": roles,
			})
			if err != nil {
				return err
			}

			var result struct {
				Roles  []string `json:"roles"`
				Hidden []string `json:"hidden"`
			}
			if err := json.Unmarshal(resp, &result); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Roles:  %s\n", strings.Join(result.Roles, ", "))
			if len(result.Hidden) > 0 {
				fmt.Fprintf(cmd.OutOrStdout(), "Kept:   %s\n", strings.Join(result.Hidden, ", "))
			}
			return nil
		},
	}
	cmd.Flags().StringSliceVar(&roles, "roles", nil, "comma-separated roles to grant")
	return cmd
}
