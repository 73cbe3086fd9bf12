package cmd

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/nfrund/propdesk/internal/domain"
	"github.com/nfrund/propdesk/internal/modules/properties"
	"github.com/nfrund/propdesk/internal/search"
	"github.com/spf13/cobra"
)

var searchLimit int

var searchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Rank stored properties against a query",
	Long: `Scores every stored property against the query with the same ranking the
API uses and prints the best matches. Useful for tuning search weights.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		_, repos, err := openRepositories(ctx)
		if err != nil {
			return err
		}
		defer repos.Close(ctx)

		items, _, err := repos.Properties.List(ctx, domain.PropertyFilter{})
		if err != nil {
			return err
		}

		query := strings.Join(args, " ")
		ranked := search.Rank(properties.Documents(items), query)
		if len(ranked) == 0 {
			fmt.Fprintf(cmd.OutOrStdout(), "No properties match %q\n", query)
			return nil
		}
		if searchLimit > 0 && len(ranked) > searchLimit {
			ranked = ranked[:searchLimit]
		}

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "SCORE\tMATCHED\tTITLE\tCITY\tID")
		for _, r := range ranked {
			fmt.Fprintf(w, "%.2f\t%d\t%s\t%s\t%s\n", r.Score, r.Matched, r.Item.Title, r.Item.City, r.Item.ID)
		}
		return w.Flush()
	},
}

func init() {
	searchCmd.Flags().IntVar(&searchLimit, "limit", 10, "maximum number of results (0 for all)")
	rootCmd.AddCommand(searchCmd)
}
