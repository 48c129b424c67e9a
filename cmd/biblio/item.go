// Item commands: catalog item CRUD.
package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/openshelf/biblio/internal/catalog"
	"github.com/openshelf/biblio/pkg/types"
)

var (
	itemTitle     string
	itemAuthor    string
	itemPublisher string
	itemPubPlace  string
	itemPubYear   string
	itemShelf     string
	itemFund      string
	itemLoanMode  string
	itemSite      string
	itemCategory  string
	itemSeries    string
	itemUnits     int
	itemCodes     string
	itemCover     string
	itemNote      string
)

var itemCmd = &cobra.Command{
	Use:   "item",
	Short: "Manage catalog items",
}

var itemCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a catalog item with its physical copies",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		backend, err := attachBackend()
		if err != nil {
			exitErr("item create", err)
		}
		defer backend.Detach()

		item := &types.CatalogItem{
			Title:         itemTitle,
			Author:        itemAuthor,
			Publisher:     itemPublisher,
			PubPlace:      itemPubPlace,
			PubYear:       itemPubYear,
			Shelf:         itemShelf,
			Fund:          itemFund,
			LoanMode:      itemLoanMode,
			Site:          itemSite,
			CategoryID:    itemCategory,
			SeriesID:      itemSeries,
			DeclaredUnits: itemUnits,
			CoverPath:     itemCover,
			Note:          itemNote,
		}

		svc := catalog.NewService(backend)
		id, err := svc.CreateItem(actor(), item, splitCodes(itemCodes))
		if err != nil {
			exitErr("item create", err)
		}

		if flagJSON {
			view, err := svc.GetItem(id)
			if err != nil {
				exitErr("item create", err)
			}
			printJSON(view)
		} else {
			fmt.Printf("Created item: %s\n", id)
		}
		return nil
	},
}

var itemGetCmd = &cobra.Command{
	Use:   "get <item-id>",
	Short: "Show one catalog item with its units and aggregate status",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		backend, err := attachBackend()
		if err != nil {
			exitErr("item get", err)
		}
		defer backend.Detach()

		view, err := catalog.NewService(backend).GetItem(args[0])
		if err != nil {
			exitErr("item get", err)
		}

		if flagJSON {
			printJSON(view)
			return nil
		}
		printItemView(view)
		return nil
	},
}

var itemListCmd = &cobra.Command{
	Use:   "list [search]",
	Short: "List catalog items, optionally filtered by a search term",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		backend, err := attachBackend()
		if err != nil {
			exitErr("item list", err)
		}
		defer backend.Detach()

		search := ""
		if len(args) == 1 {
			search = args[0]
		}
		views, err := catalog.NewService(backend).ListItems(search)
		if err != nil {
			exitErr("item list", err)
		}

		if flagJSON {
			printJSON(views)
			return nil
		}
		for _, view := range views {
			fmt.Printf("%s  %-30s  %-12s  %d units\n",
				view.ItemID, view.Title, view.Status, len(view.Units))
		}
		return nil
	},
}

var itemUpdateCmd = &cobra.Command{
	Use:   "update <item-id>",
	Short: "Edit a catalog item; changing --units reconciles its copies",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		backend, err := attachBackend()
		if err != nil {
			exitErr("item update", err)
		}
		defer backend.Detach()

		svc := catalog.NewService(backend)
		view, err := svc.GetItem(args[0])
		if err != nil {
			exitErr("item update", err)
		}

		// Only flags the caller actually set override current values.
		item := view.CatalogItem
		apply := map[string]func(){
			"title":     func() { item.Title = itemTitle },
			"author":    func() { item.Author = itemAuthor },
			"publisher": func() { item.Publisher = itemPublisher },
			"pub-place": func() { item.PubPlace = itemPubPlace },
			"pub-year":  func() { item.PubYear = itemPubYear },
			"shelf":     func() { item.Shelf = itemShelf },
			"fund":      func() { item.Fund = itemFund },
			"loan-mode": func() { item.LoanMode = itemLoanMode },
			"site":      func() { item.Site = itemSite },
			"category":  func() { item.CategoryID = itemCategory },
			"series":    func() { item.SeriesID = itemSeries },
			"units":     func() { item.DeclaredUnits = itemUnits },
			"cover":     func() { item.CoverPath = itemCover },
			"note":      func() { item.Note = itemNote },
		}
		for name, set := range apply {
			if cmd.Flags().Changed(name) {
				set()
			}
		}

		if err := svc.UpdateItem(actor(), &item); err != nil {
			exitErr("item update", err)
		}
		fmt.Printf("Updated item: %s\n", item.ItemID)
		return nil
	},
}

var itemDeleteCmd = &cobra.Command{
	Use:   "delete <item-id>",
	Short: "Delete a catalog item and its copies",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		backend, err := attachBackend()
		if err != nil {
			exitErr("item delete", err)
		}
		defer backend.Detach()

		if err := catalog.NewService(backend).DeleteItem(actor(), args[0]); err != nil {
			exitErr("item delete", err)
		}
		fmt.Printf("Deleted item: %s\n", args[0])
		return nil
	},
}

// printItemView writes the human-readable item detail.
func printItemView(view *types.ItemView) {
	fmt.Printf("%s  %s\n", view.ItemID, view.Title)
	if view.Author != "" {
		fmt.Println("  author:  ", view.Author)
	}
	fmt.Println("  status:  ", view.Status)
	fmt.Println("  mode:    ", view.LoanMode)
	fmt.Println("  category:", view.CategoryName)
	fmt.Println("  series:  ", view.SeriesName)
	for _, unit := range view.Units {
		code := unit.Code
		if code == "" {
			code = "(uncoded)"
		}
		fmt.Printf("  unit %s  %-10s  %s\n", unit.UnitID, code, unit.Status)
	}
}

// splitCodes parses a comma-separated code list. Blank entries are kept
// so positional gaps leave the matching unit uncoded.
func splitCodes(s string) []string {
	if s == "" {
		return nil
	}
	var codes []string
	for _, code := range strings.Split(s, ",") {
		codes = append(codes, strings.TrimSpace(code))
	}
	return codes
}

func init() {
	for _, cmd := range []*cobra.Command{itemCreateCmd, itemUpdateCmd} {
		cmd.Flags().StringVar(&itemTitle, "title", "", "item title")
		cmd.Flags().StringVar(&itemAuthor, "author", "", "author")
		cmd.Flags().StringVar(&itemPublisher, "publisher", "", "publisher")
		cmd.Flags().StringVar(&itemPubPlace, "pub-place", "", "publication place")
		cmd.Flags().StringVar(&itemPubYear, "pub-year", "", "publication year")
		cmd.Flags().StringVar(&itemShelf, "shelf", "", "shelf location")
		cmd.Flags().StringVar(&itemFund, "fund", "", "fund classification")
		cmd.Flags().StringVar(&itemLoanMode, "loan-mode", types.LoanModeEither, "loan mode (internal-only, external-only, either)")
		cmd.Flags().StringVar(&itemSite, "site", "", "physical site")
		cmd.Flags().StringVar(&itemCategory, "category", "", "category ID")
		cmd.Flags().StringVar(&itemSeries, "series", "", "series ID")
		cmd.Flags().IntVar(&itemUnits, "units", 1, "declared physical copies")
		cmd.Flags().StringVar(&itemCover, "cover", "", "cover attachment path")
		cmd.Flags().StringVar(&itemNote, "note", "", "free-form note")
	}
	itemCreateCmd.Flags().StringVar(&itemCodes, "codes", "", "comma-separated unit codes, in order")
	itemCreateCmd.MarkFlagRequired("title")

	itemCmd.AddCommand(itemCreateCmd)
	itemCmd.AddCommand(itemGetCmd)
	itemCmd.AddCommand(itemListCmd)
	itemCmd.AddCommand(itemUpdateCmd)
	itemCmd.AddCommand(itemDeleteCmd)
}
