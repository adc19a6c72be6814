package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"
)

var version = "0.1.0"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		stop()
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "chatwidget",
	Short: "Chat with a reply service from the terminal",
	Long: `chatwidget keeps a local history of conversations with a reply service
that exposes POST /chat and POST /upload.

Conversations are persisted after every change and restored on start.

Examples:
  chatwidget send "What is the capital of France?"
  chatwidget send -c 0 "And of Spain?"
  chatwidget upload notes.txt
  chatwidget list
  chatwidget show 0 --format html`,
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.String("config", "", "Config file (JSON, or YAML with .yaml/.yml)")
	flags.String("base-url", "", "Reply service base URL (overrides config)")
	flags.String("storage", "", "Storage directory or database file (overrides config, default ~/.chatwidget)")
	flags.String("storage-driver", "", "Storage driver: none, memory, file or sqlite (overrides config)")
	flags.String("format", "text", "Output format: text or html")
	flags.BoolP("verbose", "v", false, "Enable verbose logging to stderr (same as --log-level debug)")
	flags.String("log-level", "warn", "Minimum level logged to stderr: debug, info, warn or error")
	flags.String("metrics-file", "", "Write event counters in Prometheus text format to this file on exit")

	rootCmd.AddCommand(sendCmd)
	rootCmd.AddCommand(uploadCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(showCmd)
	rootCmd.AddCommand(newCmd)
	rootCmd.AddCommand(deleteCmd)
	rootCmd.AddCommand(renameCmd)
}
