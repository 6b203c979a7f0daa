package cli

import (
	"fmt"

	"github.com/ppiankov/claimoverlap/internal/claims"
	"github.com/ppiankov/claimoverlap/internal/model"
	"github.com/ppiankov/claimoverlap/internal/sparql"
	"github.com/spf13/cobra"
)

var (
	queryInputFile string
	queryPage      int
)

// queryCmd prints the query generate would send
var queryCmd = &cobra.Command{
	Use:   "query",
	Short: "Print the SPARQL query built from a claims file",
	Long: `Print the base SPARQL query for a claims file without contacting the endpoint.
With --page N the LIMIT/OFFSET window of page N (0-based) is appended.

Example:
  claimoverlap query -i claims.json
  claimoverlap query -i claims.json --page 3 --limit 5000`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		spec, err := claims.LoadFile(queryInputFile)
		if err != nil {
			return err
		}

		query := sparql.Build(cfg.Query.RegistryProperty, spec)
		if queryPage >= 0 {
			query = sparql.Paginate(query, cfg.Paging.Limit, cfg.Paging.Offset+queryPage*cfg.Paging.Limit)
		}

		fmt.Fprintln(cmd.OutOrStdout(), query)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(queryCmd)

	queryCmd.Flags().StringVarP(&queryInputFile, "input-file", "i", "", "path to JSON file containing claim IDs and names")
	_ = queryCmd.MarkFlagRequired("input-file")
	queryCmd.Flags().IntVar(&queryPage, "page", -1, "append the LIMIT/OFFSET window for this page")
	queryCmd.Flags().IntP("limit", "l", model.DefaultLimit, "LIMIT value for each page")
	queryCmd.Flags().IntP("offset", "o", 0, "initial OFFSET value")
	queryCmd.Flags().String("registry-property", model.DefaultRegistryProperty, "Wikidata property holding the ROR ID")
}
