package main

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/luxury-retail/productlist/internal/catalog"
)

func newListCmd(flags *rootFlags) *cobra.Command {
	var category, search string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "Print the filtered product list",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := openRuntime(cmd.Context(), flags, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer rt.Close()

			res := rt.Controller.LoadProducts(cmd.Context())
			if res.Err != nil {
				fmt.Fprintf(cmd.ErrOrStderr(), "warning: %v\n", res.Err)
			}
			rt.Controller.SetCategory(category)
			rt.Controller.SetSearch(search)

			view := rt.Controller.View()
			fmt.Fprintln(cmd.OutOrStdout(), productTable(view.Products))
			fmt.Fprintf(cmd.OutOrStdout(), "%d of %d products (%s)\n",
				len(view.Products), len(rt.Controller.State().Snapshot().Products), res.Outcome)
			return nil
		},
	}

	cmd.Flags().StringVar(&category, "category", catalog.AllCategories, "category filter")
	cmd.Flags().StringVarP(&search, "search", "s", "", "match name, brand or description")
	return cmd
}

func productTable(products []catalog.Product) *table.Table {
	rows := make([][]string, 0, len(products))
	for _, p := range products {
		stock := "yes"
		if !p.InStock {
			stock = "sold out"
		}
		rows = append(rows, []string{p.ID, p.Brand, p.Name, p.Category, p.PriceLabel(), stock})
	}
	return table.New().
		Border(lipgloss.NormalBorder()).
		Headers("ID", "BRAND", "NAME", "CATEGORY", "PRICE", "IN STOCK").
		Rows(rows...)
}
