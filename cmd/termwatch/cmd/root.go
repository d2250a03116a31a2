package cmd

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "termwatch",
	Short: "Watch a local trading terminal and log its order activity",
	Long: `Termwatch waits for a locally running trading terminal, connects to its
API once the process appears, and durably logs every order, execution,
and open-order event it delivers.

Each event is appended to a SQLite table and a JSON document file, and a
one-line summary is sent to a Telegram chat when credentials are set.
The monitor reconnects forever: a missing terminal, a failed connect, or
a dropped session never stops the process.

Configuration comes from the environment (TERMINAL_PROCESS_NAME,
TERMINAL_HOST, TERMINAL_PORT, DB_FILE, JSON_LOG_FILE, TELEGRAM_TOKEN,
TELEGRAM_CHAT_ID, ...) with an optional YAML/JSON config file.`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}
