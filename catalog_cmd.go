package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/trainertoe/voice/ui"
)

var catalogCmd = &cobra.Command{
	Use:     "catalog [QUERY]",
	Short:   "List the common phrases, or fuzzy search them",
	Example: paragraph("toevoice catalog\ntoevoice catalog \"keep going\""),
	Args:    cobra.MaximumNArgs(1),
	RunE: func(_ *cobra.Command, args []string) error {
		phrases, err := loadCatalog()
		if err != nil {
			return err
		}

		if len(args) == 0 {
			fmt.Print(ui.Catalog(uiCfg, phrases.Categories()))
			return nil
		}

		query := strings.TrimSpace(args[0])
		fmt.Print(ui.Matches(uiCfg, query, phrases.Find(query)))
		return nil
	},
}
