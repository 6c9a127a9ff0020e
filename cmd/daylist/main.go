package main

import (
	"bufio"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"

	"github.com/mliang/daylist/internal/app"
	"github.com/mliang/daylist/internal/credential"
	"github.com/mliang/daylist/internal/model"
	"github.com/mliang/daylist/internal/store"
)

func main() {
	configPath := flag.String("config", model.DefaultConfigPath(), "path to the config file")
	flag.Usage = usage
	flag.Parse()

	if args := flag.Args(); len(args) > 0 && args[0] == "credential" {
		if err := runCredential(args[1:]); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	if err := run(*configPath); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(configPath string) error {
	cfg, err := model.LoadConfig(configPath)
	if err != nil {
		return err
	}

	logger, closeLog, err := newLogger()
	if err != nil {
		return err
	}
	defer closeLog()

	dsn, err := resolveDSN(cfg)
	if err != nil {
		return err
	}

	st, err := store.New(cfg.Database.Driver, dsn)
	if err != nil {
		return err
	}
	defer st.Close()

	logger.Info("starting", "driver", cfg.Database.Driver, "config", configPath)

	p := tea.NewProgram(app.New(st, logger), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("running program: %w", err)
	}
	return nil
}

// resolveDSN returns the connection string for the configured driver.
// A sqlite DSN is a file path whose parent directory is created on
// demand. A postgres config may leave the DSN empty and keep the
// connection string in the system keyring instead.
func resolveDSN(cfg *model.AppConfig) (string, error) {
	switch cfg.Database.Driver {
	case store.DriverSQLite:
		dsn := cfg.Database.DSN
		if dsn == "" {
			dsn = model.DefaultDatabasePath()
		}
		if err := os.MkdirAll(filepath.Dir(dsn), 0o755); err != nil {
			return "", fmt.Errorf("creating data directory: %w", err)
		}
		return dsn, nil

	case store.DriverPostgres:
		if cfg.Database.DSN != "" {
			return cfg.Database.DSN, nil
		}
		dsn, err := credential.Get(credential.DatabaseURLKey)
		if err != nil {
			return "", fmt.Errorf(
				"no database.dsn configured and no stored credential; run `daylist credential set %s`: %w",
				credential.DatabaseURLKey, err)
		}
		return dsn, nil

	default:
		return "", fmt.Errorf("unsupported database driver %q", cfg.Database.Driver)
	}
}

// newLogger opens a file-backed logger under the user state directory.
// The TUI owns the terminal, so nothing is ever logged to stderr while
// the program runs.
func newLogger() (*log.Logger, func(), error) {
	path := logPath()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, nil, fmt.Errorf("creating log directory: %w", err)
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("opening log file %s: %w", path, err)
	}

	logger := log.NewWithOptions(f, log.Options{
		ReportTimestamp: true,
		Level:           log.InfoLevel,
	})
	return logger, func() { f.Close() }, nil
}

func logPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", "daylist.log")
	}
	return filepath.Join(home, ".local", "state", "daylist", "daylist.log")
}

// runCredential handles the `daylist credential set|delete <key>`
// subcommands. Values are read from stdin so they never end up in shell
// history or process listings.
func runCredential(args []string) error {
	if len(args) != 2 {
		return fmt.Errorf("usage: daylist credential <set|delete> <key>")
	}

	action, key := args[0], args[1]
	switch action {
	case "set":
		fmt.Fprintf(os.Stderr, "Value for %q (reads one line from stdin): ", key)
		reader := bufio.NewReader(os.Stdin)
		value, err := reader.ReadString('\n')
		if err != nil {
			return fmt.Errorf("reading value: %w", err)
		}
		value = strings.TrimRight(value, "\r\n")
		if value == "" {
			return fmt.Errorf("empty value")
		}
		if err := credential.Set(key, value); err != nil {
			return err
		}
		fmt.Printf("Stored credential %q.\n", key)
		return nil

	case "delete":
		if err := credential.Delete(key); err != nil {
			return err
		}
		fmt.Printf("Deleted credential %q.\n", key)
		return nil

	default:
		return fmt.Errorf("unknown credential action %q (want set or delete)", action)
	}
}

func usage() {
	fmt.Fprintf(os.Stderr, `daylist - a per-user todo list with sub-tasks

Usage:
  daylist [flags]
  daylist credential set <key>      store a credential (value read from stdin)
  daylist credential delete <key>   remove a stored credential

Flags:
`)
	flag.PrintDefaults()
}
