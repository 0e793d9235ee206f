package cmd

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/solatis/strbounds/internal/types"
	"github.com/solatis/strbounds/pkg/ruledef"
)

func newRuleSetCmd(opts *options) *cobra.Command {
	var client string

	cmd := &cobra.Command{
		Use:   "ruleset",
		Short: "Manage stored rule sets",
	}
	cmd.PersistentFlags().StringVar(&client, "client", string(types.LocalClient), "client owning the rule sets")

	clientID := func() types.ClientID { return types.ClientID(client) }
	cmd.AddCommand(
		newRuleSetAddCmd(opts, clientID),
		newRuleSetListCmd(opts, clientID),
		newRuleSetShowCmd(opts, clientID),
		newRuleSetDeleteCmd(opts, clientID),
	)
	return cmd
}

func newRuleSetAddCmd(opts *options, clientID func() types.ClientID) *cobra.Command {
	var (
		rulesFile string
		matchAny  bool
	)

	cmd := &cobra.Command{
		Use:   "add NAME",
		Short: "Store a rule definition file under NAME",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			node, err := ruledef.LoadNode(rulesFile, opts.cfg.FilterAPI.MaxRuleDepth)
			if err != nil {
				return err
			}
			kind := types.RuleSetAll
			if matchAny {
				kind = types.RuleSetAny
			}

			cat, closeDB, err := opts.openCatalog(cmd.Context())
			if err != nil {
				return err
			}
			defer closeDB()

			loaded, err := cat.Create(cmd.Context(), clientID(), args[0], kind, node)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\n", loaded.RuleSet.ID, loaded.RuleSet.Name)
			return nil
		},
	}

	cmd.Flags().StringVar(&rulesFile, "rules", "", "rule definition file (.json, .yaml, .toml)")
	cmd.Flags().BoolVar(&matchAny, "any", false, "match when any top-level rule matches")
	cmd.MarkFlagRequired("rules")
	return cmd
}

func newRuleSetListCmd(opts *options, clientID func() types.ClientID) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List stored rule sets",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cat, closeDB, err := opts.openCatalog(cmd.Context())
			if err != nil {
				return err
			}
			defer closeDB()

			sets, err := cat.List(cmd.Context(), clientID())
			if err != nil {
				return err
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "NAME\tKIND\tID\tCREATED")
			for _, rs := range sets {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", rs.Name, rs.Kind, rs.ID, rs.CreatedAt.Format(time.RFC3339))
			}
			return tw.Flush()
		},
	}
}

func newRuleSetShowCmd(opts *options, clientID func() types.ClientID) *cobra.Command {
	return &cobra.Command{
		Use:   "show NAME",
		Short: "Print a stored rule set as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cat, closeDB, err := opts.openCatalog(cmd.Context())
			if err != nil {
				return err
			}
			defer closeDB()

			rs, err := cat.GetByName(cmd.Context(), clientID(), args[0])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s\n", rs.Expression)
			return nil
		},
	}
}

func newRuleSetDeleteCmd(opts *options, clientID func() types.ClientID) *cobra.Command {
	return &cobra.Command{
		Use:   "delete NAME",
		Short: "Delete a stored rule set",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cat, closeDB, err := opts.openCatalog(cmd.Context())
			if err != nil {
				return err
			}
			defer closeDB()

			rs, err := cat.GetByName(cmd.Context(), clientID(), args[0])
			if err != nil {
				return err
			}
			return cat.Delete(cmd.Context(), clientID(), rs.ID)
		},
	}
}
