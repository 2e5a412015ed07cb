package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"denuncias-go/internal/config"
	"denuncias-go/internal/logger"
	"denuncias-go/internal/processor"
)

var (
	settings *config.Settings
	log      *logger.Logger
	session  *processor.Session
	resolver *config.Resolver
)

var rootCmd = &cobra.Command{
	Use:           "denuncia",
	Short:         "Municipal complaint intake",
	Long:          "Structures citizen complaints with Gemini, renders the internal report and citizen reply, and forwards records to the spreadsheet webhook.",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		s, err := config.LoadSettings()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		settings = s

		// stdout carries command output; logs go to stderr
		level := s.LogLevel
		if level == "" {
			level = "warn"
		}
		log = logger.NewWithOutput(os.Stderr, s.Environment, level)

		session, resolver = processor.Wire(settings, log)
		return nil
	},
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		stop()
		os.Exit(1)
	}
}
