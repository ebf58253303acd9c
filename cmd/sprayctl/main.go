package main

import (
	"errors"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/gravitrone/sprayctl/internal/cmd"
	"github.com/gravitrone/sprayctl/internal/config"
	"github.com/gravitrone/sprayctl/internal/logging"
	"github.com/gravitrone/sprayctl/internal/ui"
)

var errNoTerminal = errors.New("the landing-zone browser needs a terminal; use 'sprayctl spray json' in scripts")

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	// Force truecolor so hex colors render correctly
	// Must be set before any lipgloss style initialization
	os.Setenv("COLORTERM", "truecolor")
}

func newRootCmd() *cobra.Command {
	var conn cmd.Connection
	root := &cobra.Command{
		Use:   "sprayctl",
		Short: "sprayctl - JSON spray client for ESP landing zones",
		Long:  "sprayctl: browse landing zones, import JSON files as logical files, and follow DFU workunits.",
		RunE: func(_ *cobra.Command, _ []string) error {
			return runTUI(&conn)
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	conn.AddFlags(root)

	root.AddCommand(cmd.ConfigCmd())
	root.AddCommand(cmd.SprayCmd())
	root.AddCommand(cmd.DropzoneCmd())
	root.AddCommand(cmd.WorkunitCmd())
	return root
}

func runTUI(conn *cmd.Connection) error {
	if !term.IsTerminal(int(os.Stdin.Fd())) || !term.IsTerminal(int(os.Stdout.Fd())) {
		return errNoTerminal
	}

	cfg, err := conn.Resolve(os.Stderr)
	if err != nil {
		return err
	}

	logFile := cfg.LogFile
	if logFile == "" {
		logFile = config.DefaultLogFile()
	}
	log, closer, err := logging.New(logging.Options{
		Mode:  logging.ModeTUI,
		Level: cfg.LogLevel,
		File:  logFile,
	})
	if err != nil {
		return err
	}
	defer closer.Close()

	client := cmd.NewClient(cfg, log)
	app := ui.NewApp(client, cfg, log)
	log.Info().Str("esp", client.BaseURL()).Msg("tui started")

	p := tea.NewProgram(app, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("tui error: %w", err)
	}
	return nil
}
