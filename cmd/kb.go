package cmd

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/ziadkadry99/auto-qa/internal/knowledge"
	"github.com/ziadkadry99/auto-qa/internal/progress"
)

var kbCmd = &cobra.Command{
	Use:   "kb",
	Short: "Manage the QA knowledge base",
	Long:  `Import markdown guides into the knowledge base the QA assistant answers from, and list its entries.`,
}

var kbImportCmd = &cobra.Command{
	Use:   "import <dir>",
	Short: "Import markdown files from a directory",
	Long: `Walks the directory and stores every matching markdown file as a knowledge
entry. YAML frontmatter may set title, category and tags. Re-importing a file
updates its entry in place.`,
	Args: cobra.ExactArgs(1),
	RunE: runKBImport,
}

var kbListCmd = &cobra.Command{
	Use:   "list",
	Short: "List knowledge base entries",
	RunE:  runKBList,
}

func init() {
	kbImportCmd.Flags().StringSlice("include", nil, "glob patterns to include (default **/*.md, **/*.markdown)")
	kbImportCmd.Flags().StringSlice("exclude", nil, "glob patterns to exclude")
	kbImportCmd.Flags().String("category", string(knowledge.CategoryUniversal), "category for files without one in frontmatter")
	kbImportCmd.Flags().Int64("team", 0, "team id to attach the entries to")

	kbListCmd.Flags().String("category", "", "filter by category")
	kbListCmd.Flags().Int64("team", 0, "filter by team id")

	kbCmd.AddCommand(kbImportCmd, kbListCmd)
	rootCmd.AddCommand(kbCmd)
}

func runKBImport(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	include, _ := cmd.Flags().GetStringSlice("include")
	exclude, _ := cmd.Flags().GetStringSlice("exclude")
	category, _ := cmd.Flags().GetString("category")

	opts := knowledge.ImportOptions{
		Include:  include,
		Exclude:  exclude,
		Category: knowledge.Category(category),
	}
	if cmd.Flags().Changed("team") {
		id, _ := cmd.Flags().GetInt64("team")
		opts.TeamID = &id
	}

	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.close()

	importer := knowledge.NewImporter(a.knowledge, progress.NewReporter("Importing"), a.logger)
	result, err := importer.Import(ctx, args[0], opts)
	if err != nil {
		return fmt.Errorf("importing %s: %w", args[0], err)
	}

	fmt.Printf("Imported %s: %d created, %d updated, %d skipped\n", args[0], result.Created, result.Updated, result.Skipped)
	return nil
}

func runKBList(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	category, _ := cmd.Flags().GetString("category")
	f := knowledge.Filter{Category: knowledge.Category(category)}
	if f.Category != "" && !f.Category.Valid() {
		return fmt.Errorf("unknown category %q", category)
	}
	if cmd.Flags().Changed("team") {
		id, _ := cmd.Flags().GetInt64("team")
		f.TeamID = &id
	}

	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.close()

	entries, err := a.knowledge.List(ctx, f)
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		fmt.Println("No knowledge entries. Add some with `autoqa kb import <dir>`.")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tCATEGORY\tTEAM\tUSES\tTITLE")
	for _, e := range entries {
		team := "-"
		if e.TeamID != nil {
			team = fmt.Sprintf("%d", *e.TeamID)
		}
		fmt.Fprintf(w, "%d\t%s\t%s\t%d\t%s\n", e.ID, e.Category, team, e.UsageCount, e.Title)
	}
	return w.Flush()
}
