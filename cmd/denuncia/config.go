package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show or store the Gemini API key and webhook URL",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the effective configuration (the key is never printed)",
	RunE: func(cmd *cobra.Command, args []string) error {
		eff := resolver.Resolve()
		out := cmd.OutOrStdout()

		key := "no configurada"
		if eff.HasAPIKey() {
			key = "configurada"
		}
		url := eff.ScriptURL
		if url == "" {
			url = "no configurada"
		}
		fmt.Fprintf(out, "API key:       %s\n", key)
		fmt.Fprintf(out, "Script URL:    %s\n", url)
		fmt.Fprintf(out, "Settings file: %s\n", settings.SettingsFile)
		if resolver.UsingStaticKey() {
			fmt.Fprintln(out, "Nota: se usa la API key incluida en la configuración estática; una key guardada localmente no tiene efecto.")
		}
		return nil
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set",
	Short: "Store the API key and/or webhook URL in the settings file",
	RunE: func(cmd *cobra.Command, args []string) error {
		apiKey, _ := cmd.Flags().GetString("api-key")
		scriptURL, _ := cmd.Flags().GetString("script-url")
		if apiKey == "" && scriptURL == "" {
			return errors.New("nothing to save: pass --api-key and/or --script-url")
		}
		if err := resolver.Save(apiKey, scriptURL); err != nil {
			return fmt.Errorf("save settings: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Configuración guardada en %s\n", settings.SettingsFile)
		return nil
	},
}

func init() {
	configSetCmd.Flags().String("api-key", "", "Gemini API key")
	configSetCmd.Flags().String("script-url", "", "logging webhook URL")

	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configSetCmd)
	rootCmd.AddCommand(configCmd)
}
