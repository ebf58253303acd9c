package cmd

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"
	"golang.org/x/term"
	"gopkg.in/yaml.v3"

	"github.com/gravitrone/sprayctl/internal/api"
	"github.com/gravitrone/sprayctl/internal/config"
	"github.com/gravitrone/sprayctl/internal/logging"
)

// ConfigCmd returns the `sprayctl config` command group.
func ConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage ~/.sprayctl/config",
	}
	cmd.AddCommand(configInitCmd())
	cmd.AddCommand(configShowCmd())
	return cmd
}

func configInitCmd() *cobra.Command {
	var (
		seed    config.Config
		noInput bool
	)
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write the config file, prompting for anything not given as a flag",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := existingOr(seed, cmd)
			if !noInput && term.IsTerminal(int(os.Stdin.Fd())) {
				filled, err := runConfigForm(cfg)
				if err != nil {
					return err
				}
				cfg = filled
			}
			return RunConfigInit(cfg, cmd.OutOrStdout())
		},
	}
	fs := cmd.Flags()
	fs.StringVar(&seed.ESPURL, "esp-url", "", "ESP base URL")
	fs.StringVarP(&seed.Username, "user", "u", "", "ESP username")
	fs.StringVar(&seed.Password, "password", "", "ESP password")
	fs.StringVar(&seed.DefaultGroup, "group", "", "default target group")
	fs.StringVar(&seed.DefaultQueue, "queue", "", "default DFU server queue")
	fs.IntVar(&seed.TimeoutSeconds, "timeout", 0, "request timeout in seconds")
	fs.StringVar(&seed.LogLevel, "log-level", "", "log level (debug, info, warn, error)")
	fs.StringVar(&seed.LogFile, "log-file", "", "TUI log file")
	fs.BoolVar(&noInput, "no-input", false, "do not prompt")
	return cmd
}

// existingOr overlays explicitly set flags on the current config, if any.
func existingOr(seed config.Config, cmd *cobra.Command) config.Config {
	cfg := config.Config{}
	if cur, err := config.Load(); err == nil {
		cfg = *cur
	}
	flags := cmd.Flags()
	set := func(name string, dst *string, v string) {
		if flags.Changed(name) {
			*dst = v
		}
	}
	set("esp-url", &cfg.ESPURL, seed.ESPURL)
	set("user", &cfg.Username, seed.Username)
	set("password", &cfg.Password, seed.Password)
	set("group", &cfg.DefaultGroup, seed.DefaultGroup)
	set("queue", &cfg.DefaultQueue, seed.DefaultQueue)
	set("log-level", &cfg.LogLevel, seed.LogLevel)
	set("log-file", &cfg.LogFile, seed.LogFile)
	if flags.Changed("timeout") {
		cfg.TimeoutSeconds = seed.TimeoutSeconds
	}
	return cfg
}

// RunConfigInit validates and persists cfg.
func RunConfigInit(cfg config.Config, out io.Writer) error {
	cfg.ESPURL = strings.TrimSpace(cfg.ESPURL)
	if cfg.ESPURL == "" {
		cfg.ESPURL = api.DefaultBaseURL
	}
	if !strings.HasPrefix(cfg.ESPURL, "http://") && !strings.HasPrefix(cfg.ESPURL, "https://") {
		return fmt.Errorf("esp url must start with http:// or https://")
	}
	if _, err := logging.ParseLevel(cfg.LogLevel); err != nil {
		return err
	}
	if cfg.TimeoutSeconds < 0 {
		return fmt.Errorf("timeout must not be negative")
	}

	if err := cfg.Save(); err != nil {
		return fmt.Errorf("save config: %w", err)
	}
	fmt.Fprintf(out, "config saved to %s\n", config.Path())
	return nil
}

func runConfigForm(prefill config.Config) (config.Config, error) {
	result := prefill
	if result.ESPURL == "" {
		result.ESPURL = api.DefaultBaseURL
	}
	timeout := ""
	if prefill.TimeoutSeconds > 0 {
		timeout = strconv.Itoa(prefill.TimeoutSeconds)
	}
	level := result.LogLevel
	if level == "" {
		level = "warn"
	}

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("ESP URL").
				Description("Base URL of the ECL Watch / ESP server").
				Value(&result.ESPURL),

			huh.NewInput().
				Title("Username").
				Description("Leave empty for an unsecured cluster").
				Value(&result.Username),

			huh.NewInput().
				Title("Password").
				EchoMode(huh.EchoModePassword).
				Value(&result.Password),
		),
		huh.NewGroup(
			huh.NewInput().
				Title("Default Group").
				Description("Target group preselected in Import JSON (optional)").
				Value(&result.DefaultGroup),

			huh.NewInput().
				Title("Default Queue").
				Description("DFU server queue preselected in Import JSON (optional)").
				Value(&result.DefaultQueue),

			huh.NewInput().
				Title("Timeout").
				Description("Request timeout in seconds (empty for 30)").
				Validate(func(s string) error {
					if strings.TrimSpace(s) == "" {
						return nil
					}
					if n, err := strconv.Atoi(strings.TrimSpace(s)); err != nil || n <= 0 {
						return errors.New("enter a positive number of seconds")
					}
					return nil
				}).
				Value(&timeout),

			huh.NewSelect[string]().
				Title("Log Level").
				Options(
					huh.NewOption("Debug", "debug"),
					huh.NewOption("Info", "info"),
					huh.NewOption("Warn", "warn"),
					huh.NewOption("Error", "error"),
				).
				Value(&level),
		),
	)

	if err := form.Run(); err != nil {
		return prefill, err
	}

	result.TimeoutSeconds = 0
	if n, err := strconv.Atoi(strings.TrimSpace(timeout)); err == nil {
		result.TimeoutSeconds = n
	}
	result.LogLevel = level
	return result, nil
}

func configShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the config with the password masked",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			data, err := yaml.Marshal(cfg.Masked())
			if err != nil {
				return fmt.Errorf("marshal config: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "# %s\n%s", config.Path(), data)
			return nil
		},
	}
}
