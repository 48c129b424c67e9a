// Category commands: the flat sector-classification lookup.
package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/openshelf/biblio/internal/catalog"
)

var categoryCmd = &cobra.Command{
	Use:   "category",
	Short: "Manage categories",
}

var categoryAddCmd = &cobra.Command{
	Use:   "add <name>",
	Short: "Add a category",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		backend, err := attachBackend()
		if err != nil {
			exitErr("category add", err)
		}
		defer backend.Detach()

		cat, err := catalog.NewService(backend).CreateCategory(actor(), args[0])
		if err != nil {
			exitErr("category add", err)
		}
		fmt.Printf("Created category %s: %s\n", cat.CategoryID, cat.Name)
		return nil
	},
}

var categoryListCmd = &cobra.Command{
	Use:   "list",
	Short: "List categories by name",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		backend, err := attachBackend()
		if err != nil {
			exitErr("category list", err)
		}
		defer backend.Detach()

		cats, err := catalog.NewService(backend).ListCategories()
		if err != nil {
			exitErr("category list", err)
		}

		if flagJSON {
			printJSON(cats)
			return nil
		}
		for _, cat := range cats {
			fmt.Printf("%s  %s\n", cat.CategoryID, cat.Name)
		}
		return nil
	},
}

var categoryRenameCmd = &cobra.Command{
	Use:   "rename <category-id> <name>",
	Short: "Rename a category",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		backend, err := attachBackend()
		if err != nil {
			exitErr("category rename", err)
		}
		defer backend.Detach()

		if err := catalog.NewService(backend).RenameCategory(actor(), args[0], args[1]); err != nil {
			exitErr("category rename", err)
		}
		fmt.Printf("Renamed category %s\n", args[0])
		return nil
	},
}

var categoryDeleteCmd = &cobra.Command{
	Use:   "delete <category-id>",
	Short: "Delete a category; member items become uncategorized",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		backend, err := attachBackend()
		if err != nil {
			exitErr("category delete", err)
		}
		defer backend.Detach()

		if err := catalog.NewService(backend).DeleteCategory(actor(), args[0]); err != nil {
			exitErr("category delete", err)
		}
		fmt.Printf("Deleted category %s\n", args[0])
		return nil
	},
}

func init() {
	categoryCmd.AddCommand(categoryAddCmd)
	categoryCmd.AddCommand(categoryListCmd)
	categoryCmd.AddCommand(categoryRenameCmd)
	categoryCmd.AddCommand(categoryDeleteCmd)
}
