package cmd

import (
	"context"
	"fmt"
	"log"

	"github.com/spf13/cobra"

	"github.com/rustyeddy/termwatch/activity"
	"github.com/rustyeddy/termwatch/config"
	"github.com/rustyeddy/termwatch/notify"
	"github.com/rustyeddy/termwatch/procwatch"
	"github.com/rustyeddy/termwatch/supervisor"
	"github.com/rustyeddy/termwatch/terminal"
	"github.com/rustyeddy/termwatch/web"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the monitor until externally terminated",
	Long: `Start the connection supervisor and the ops HTTP surface.

The supervisor polls for the terminal process, opens an API session when
it appears, and logs every order event to the configured stores. The
process runs until killed; there is no graceful-shutdown contract.

Example:
  TERMINAL_PROCESS_NAME=tws.exe TELEGRAM_TOKEN=... termwatch run`,
	RunE: runRun,
}

var runConfigPath string

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringVarP(&runConfigPath, "config", "f", "", "path to config file (YAML or JSON), alternative to TERMWATCH_CONFIG")
}

func runRun(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(runConfigPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	db, err := activity.NewSQLiteStore(cfg.DBFile)
	if err != nil {
		return fmt.Errorf("init activity db: %w", err)
	}
	doc := activity.NewDocumentStore(cfg.JSONFile)

	var notifier activity.Notifier
	tg := notify.NewTelegram(cfg.TelegramToken, cfg.TelegramChatID)
	if tg.Enabled() {
		notifier = tg
	} else {
		log.Printf("notify: telegram credentials not set, notifications disabled")
	}

	logger := activity.NewLogger(db, doc, notifier)
	poller := procwatch.New(cfg.ProcessName, nil)
	dialer := &terminal.Client{
		Host:     cfg.Host,
		Port:     cfg.Port,
		ClientID: cfg.ClientID,
	}

	sup := supervisor.New(poller, dialer, logger,
		cfg.PollInterval.Std(), cfg.RetryInterval.Std())

	go sup.Run(context.Background())

	log.Printf("termwatch: watching for %q, ops surface on %s", cfg.ProcessName, cfg.ListenAddr)
	return web.New(sup.Status).Run(cfg.ListenAddr)
}
