package cmd

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/gravitrone/sprayctl/internal/api"
	"github.com/gravitrone/sprayctl/internal/config"
	"github.com/gravitrone/sprayctl/internal/logging"
)

// Connection holds the flags that pick and authenticate an ESP server. Flags
// win over ~/.sprayctl/config.
type Connection struct {
	URL      string
	User     string
	Password string
	Verbose  bool

	// In is read for the password prompt. Defaults to os.Stdin.
	In *os.File
}

// AddFlags registers the connection flags as persistent flags of cmd.
func (c *Connection) AddFlags(cmd *cobra.Command) {
	fs := cmd.PersistentFlags()
	fs.StringVar(&c.URL, "esp-url", "", "ESP base URL (default from config, then "+api.DefaultBaseURL+")")
	fs.StringVarP(&c.User, "user", "u", "", "ESP username")
	fs.StringVar(&c.Password, "password", "", "ESP password (prompted when --user is set on a terminal)")
	fs.BoolVarP(&c.Verbose, "verbose", "v", false, "debug logging")
}

// Resolve merges the config file with the flags. A missing config file is
// not an error.
func (c *Connection) Resolve(out io.Writer) (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			return nil, err
		}
		cfg = &config.Config{}
	}
	if c.URL != "" {
		cfg.ESPURL = c.URL
	}
	if c.User != "" {
		cfg.Username = c.User
		cfg.Password = ""
	}
	if c.Password != "" {
		cfg.Password = c.Password
	}
	if strings.TrimSpace(cfg.ESPURL) == "" {
		cfg.ESPURL = api.DefaultBaseURL
	}
	if c.Verbose {
		cfg.LogLevel = "debug"
	}

	if cfg.Username != "" && cfg.Password == "" {
		in := c.In
		if in == nil {
			in = os.Stdin
		}
		if term.IsTerminal(int(in.Fd())) {
			pw, err := promptPassword(in, out, cfg.Username)
			if err != nil {
				return nil, err
			}
			cfg.Password = pw
		}
	}
	return cfg, nil
}

func promptPassword(in *os.File, out io.Writer, user string) (string, error) {
	fmt.Fprintf(out, "password for %s: ", user)
	b, err := term.ReadPassword(int(in.Fd()))
	fmt.Fprintln(out)
	if err != nil {
		return "", fmt.Errorf("read password: %w", err)
	}
	return string(b), nil
}

// CLILogger builds the stderr logger for a command.
func CLILogger(cfg *config.Config, errOut io.Writer) (zerolog.Logger, error) {
	log, _, err := logging.New(logging.Options{
		Mode:  logging.ModeCLI,
		Level: cfg.LogLevel,
		Out:   errOut,
	})
	return log, err
}

// NewClient builds an ESP client from a resolved config.
func NewClient(cfg *config.Config, log zerolog.Logger) *api.Client {
	return api.NewClient(cfg.ESPURL, cfg.Username, cfg.Password,
		api.WithTimeout(cfg.Timeout()),
		api.WithLogger(log),
	)
}

// session resolves flags into a config, logger and client in one step.
func (c *Connection) session(cmd *cobra.Command) (*config.Config, zerolog.Logger, *api.Client, error) {
	cfg, err := c.Resolve(cmd.ErrOrStderr())
	if err != nil {
		return nil, zerolog.Nop(), nil, err
	}
	log, err := CLILogger(cfg, cmd.ErrOrStderr())
	if err != nil {
		return nil, zerolog.Nop(), nil, err
	}
	return cfg, log, NewClient(cfg, log), nil
}
