package main

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/lordwhitefire/new-portfolio/internal/cms"
)

var queryCmd = &cobra.Command{
	Use:   "query <name | groq>",
	Short: "Run one query against the content endpoint and print the result",
	Long: `Runs a stock query by name (see --list) or a raw GROQ expression and
prints the decoded result as indented JSON. --slug runs the project detail
query for that slug.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runQuery,
}

func init() {
	queryCmd.Flags().String("slug", "", "run the project detail query for this slug")
	queryCmd.Flags().Bool("list", false, "list stock query names")
	rootCmd.AddCommand(queryCmd)
}

func runQuery(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()
	if list, _ := cmd.Flags().GetBool("list"); list {
		for _, name := range cms.Names() {
			fmt.Fprintln(out, name)
		}
		return nil
	}

	var q cms.Query
	slug, _ := cmd.Flags().GetString("slug")
	switch {
	case slug != "":
		q = cms.ProjectDetailQuery(slug)
	case len(args) == 1:
		named, ok := cms.Named(args[0])
		if ok {
			q = named
		} else {
			q = cms.Query{ContentType: "adhoc", GROQ: strings.TrimSpace(args[0])}
		}
	default:
		return fmt.Errorf("a query name, GROQ expression or --slug is required")
	}

	ctx, a, err := loadApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()
	defer func() { _ = a.Logger.Sync() }()

	var result json.RawMessage
	if err := a.CMS.Fetch(ctx, q, &result); err != nil {
		return err
	}
	if result == nil {
		result = json.RawMessage("null")
	}
	pretty, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return err
	}
	fmt.Fprintln(out, string(pretty))
	return nil
}
