package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"teatopics/internal/browse"
)

func newListCommand(ctx *commandContext) *cobra.Command {
	var q browse.Query
	var size int

	cmd := &cobra.Command{
		Use:   "list",
		Short: "Print one page of topics as a table",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			lib, closeLib, err := ctx.openLibrary()
			if err != nil {
				return err
			}
			defer closeLib()

			if _, err := lib.Reload(cmd.Context()); err != nil {
				return err
			}
			if size <= 0 {
				size = cfg.Site.PageSize
			}
			q = q.Normalized()
			facets, err := lib.Facets(q.Collection)
			if err != nil {
				return err
			}
			page := browse.Apply(lib.Snapshot().Topics, browse.Reconcile(q, facets.CategoryNames()), size)

			rows := make([][]string, 0, len(page.Items))
			for i, t := range page.Items {
				rows = append(rows, []string{
					strconv.Itoa((page.Page-1)*page.Size + i + 1),
					t.Text,
					t.Collection,
					t.Category,
				})
			}
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, renderTable(
				[]string{"#", "Topic", "Collection", "Category"},
				rows,
				[]columnAlignment{alignRight, alignLeft, alignLeft, alignLeft},
			))
			fmt.Fprintf(out, "page %d/%d, %d of %d topics\n", page.Page, page.Pages, page.Shown, page.Total)
			return nil
		},
	}

	cmd.Flags().StringVarP(&q.Text, "query", "q", "", "Case-insensitive text filter")
	cmd.Flags().StringVar(&q.Collection, "collection", "", "Only this collection")
	cmd.Flags().StringVar(&q.Category, "category", "", "Only this category")
	cmd.Flags().IntVarP(&q.Page, "page", "p", 1, "Page number")
	cmd.Flags().IntVar(&size, "size", 0, "Page size (default site.page_size)")
	return cmd
}
