package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"denuncias-go/internal/pipeline"
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze [text|-]",
	Short: "Structure one complaint and optionally refine and forward it",
	Long:  "Reads the complaint from the arguments, or from stdin when none is given or the only argument is \"-\".",
	RunE: func(cmd *cobra.Command, args []string) error {
		text, err := readComplaint(cmd.InOrStdin(), args)
		if err != nil {
			return err
		}

		opts := pipeline.Options{}
		opts.Rewrite, _ = cmd.Flags().GetBool("rewrite")
		opts.Plan, _ = cmd.Flags().GetBool("plan")
		opts.TranslateTo, _ = cmd.Flags().GetString("translate")
		opts.Forward, _ = cmd.Flags().GetBool("forward")
		asJSON, _ := cmd.Flags().GetBool("json")

		res, runErr := pipeline.Run(cmd.Context(), session, text, opts)
		if res.Record.HasRecord() {
			if err := printResult(cmd.OutOrStdout(), cmd.ErrOrStderr(), res, asJSON); err != nil {
				return err
			}
		}
		return runErr
	},
}

func readComplaint(stdin io.Reader, args []string) (string, error) {
	if len(args) == 0 || (len(args) == 1 && args[0] == "-") {
		b, err := io.ReadAll(stdin)
		if err != nil {
			return "", fmt.Errorf("read stdin: %w", err)
		}
		return string(b), nil
	}
	return strings.Join(args, " "), nil
}

func printResult(out, errOut io.Writer, res pipeline.Result, asJSON bool) error {
	if asJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(res)
	}

	fmt.Fprintln(out, res.Report.Internal)
	fmt.Fprintln(out)
	fmt.Fprintln(out, res.Report.Citizen)
	if res.Plan != "" {
		fmt.Fprintln(out, "\nPLAN DE ACCIÓN:")
		fmt.Fprintln(out, res.Plan)
	}
	if res.Translation != "" {
		fmt.Fprintln(out, "\nTRADUCCIÓN:")
		fmt.Fprintln(out, res.Translation)
	}
	for _, w := range res.Warnings {
		fmt.Fprintln(errOut, "warning:", w)
	}
	if res.Forwarded {
		fmt.Fprintf(out, "\nEnviado a la hoja de cálculo (%s).\n", res.Record.ID)
	}
	return nil
}

func init() {
	analyzeCmd.Flags().Bool("rewrite", false, "rewrite the description in technical language")
	analyzeCmd.Flags().Bool("plan", false, "generate a 3-step action plan")
	analyzeCmd.Flags().String("translate", "", "translate the citizen reply (en, fr, pt, de or a language name)")
	analyzeCmd.Flags().Bool("forward", false, "send the record to the logging webhook")
	analyzeCmd.Flags().Bool("json", false, "print the result as JSON")
	rootCmd.AddCommand(analyzeCmd)
}
