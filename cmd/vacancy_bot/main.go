// Package main provides the entry point for the vacancy templater bot.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "vacancy_bot",
	Short: "Telegram bot that fills reply templates from vacancies",
	Long: `Vacancy bot keeps one reply template per user and fills its [Placeholders] from a vacancy text or link.

A language model does the filling when a credential is configured; a rule-based matcher takes over when it is not or when the model fails.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.AddCommand(newRunCmd())
	rootCmd.AddCommand(newFillCmd())
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
