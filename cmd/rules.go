package cmd

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/kzn-tools/kaizen/internal/rules"
	"github.com/kzn-tools/kaizen/internal/rules/quality"
	"github.com/kzn-tools/kaizen/internal/rules/security"
)

// newRulesCmd creates the `rules` command, which lists the fixed rule
// catalog so operators can see what a given --tier unlocks before
// running a scan.
func newRulesCmd() *cobra.Command {
	rulesCmd := &cobra.Command{
		Use:   "rules",
		Short: "List the rule catalog (ID, category, default severity, minimum tier)",
		RunE: func(cmd *cobra.Command, args []string) error {
			registry := rules.NewRegistry(quality.All(), security.All())
			all := append([]rules.Rule{}, registry.All()...)
			sort.Slice(all, func(i, j int) bool { return all[i].ID() < all[j].ID() })

			for _, r := range all {
				fmt.Fprintf(cmd.OutOrStdout(), "%-6s %-34s %-9s %-8s %s\n",
					r.ID(), r.Name(), r.Category(), r.DefaultSeverity(), r.MinTier())
			}
			return nil
		},
	}
	return rulesCmd
}
