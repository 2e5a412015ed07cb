package main

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"

	"github.com/spf13/cobra"

	"denuncias-go/internal/aggregator"
	"denuncias-go/internal/dataset"
)

var sheetCmd = &cobra.Command{
	Use:   "sheet",
	Short: "Inspect the local complaint workbook",
}

var sheetSummaryCmd = &cobra.Command{
	Use:   "summary",
	Short: "Count rows by category, urgency, district and status",
	RunE: func(cmd *cobra.Command, args []string) error {
		file, _ := cmd.Flags().GetString("file")
		if file == "" {
			file = settings.SheetFile
		}
		sheet, _ := cmd.Flags().GetString("sheet")
		if sheet == "" {
			sheet = settings.SheetName
		}
		asJSON, _ := cmd.Flags().GetBool("json")

		rows, err := dataset.NewBook(file, sheet, settings.SheetLocation(), log).Rows()
		if err != nil {
			return err
		}
		sum := aggregator.Summarize(rows)

		out := cmd.OutOrStdout()
		if asJSON {
			enc := json.NewEncoder(out)
			enc.SetIndent("", "  ")
			return enc.Encode(sum)
		}
		fmt.Fprintf(out, "Total: %d\n", sum.Total)
		printCounts(out, "Categoría", sum.ByCategory)
		printCounts(out, "Urgencia", sum.ByUrgency)
		printCounts(out, "Distrito", sum.ByDistrict)
		printCounts(out, "Estado", sum.ByStatus)
		return nil
	},
}

func printCounts(out io.Writer, title string, counts map[string]int) {
	if len(counts) == 0 {
		return
	}
	keys := make([]string, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if counts[keys[i]] != counts[keys[j]] {
			return counts[keys[i]] > counts[keys[j]]
		}
		return keys[i] < keys[j]
	})
	fmt.Fprintf(out, "\n%s:\n", title)
	for _, k := range keys {
		fmt.Fprintf(out, "  %-30s %d\n", k, counts[k])
	}
}

func init() {
	sheetSummaryCmd.Flags().String("file", "", "workbook path (default SHEET_FILE)")
	sheetSummaryCmd.Flags().String("sheet", "", "sheet name (default SHEET_NAME)")
	sheetSummaryCmd.Flags().Bool("json", false, "print the summary as JSON")

	sheetCmd.AddCommand(sheetSummaryCmd)
	rootCmd.AddCommand(sheetCmd)
}
