// Package root contains the root command for the application
package root

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"uhb/trade-ledger/internal/config"
	"uhb/trade-ledger/internal/container"
	"uhb/trade-ledger/internal/ledgererror"
	"uhb/trade-ledger/internal/models"
)

// CommonFlags represents the flags that are common to every command
type CommonFlags struct {
	ConfigFile string
	LogLevel   string
	LogFormat  string
	Storage    string
	DataPath   string
	Delimiter  string
}

var (
	// Log is the shared logger instance for commands
	Log = logrus.New()

	// AppContainer holds the wired dependencies for the running command. Tests
	// may set it before executing a command; it is then left open.
	AppContainer *container.Container

	ownsContainer bool

	// Cmd is the root command
	Cmd = &cobra.Command{
		Use:   "trade-ledger",
		Short: "A ledger for a small trading business: sales, purchases, stock and contacts.",
		Long: `trade-ledger records buy and sell transactions against a product catalog,
derives stock levels and valuations from the transaction history and keeps
customer and dealer contacts. Data lives in a local file, SQLite or in-memory store.`,
		Run: func(cmd *cobra.Command, args []string) {
			Log.Info("Welcome to trade-ledger!")
			Log.Info("Use --help to see available commands")
		},
		SilenceUsage:       true,
		PersistentPreRunE:  setup,
		PersistentPostRunE: teardown,
	}

	// SharedFlags holds the persistent flags of the root command
	SharedFlags = CommonFlags{}
)

// Init initializes the root command and all flags
func Init() {
	flags := Cmd.PersistentFlags()
	flags.StringVar(&SharedFlags.ConfigFile, "config", "", "Config file (default: config.yaml in ~/.trade-ledger, .trade-ledger or .)")
	flags.StringVar(&SharedFlags.LogLevel, "log-level", "", "Log level (debug, info, warn, error)")
	flags.StringVar(&SharedFlags.LogFormat, "log-format", "", "Log format (text or json)")
	flags.StringVar(&SharedFlags.Storage, "storage", "", "Storage backend (file, sqlite or memory)")
	flags.StringVar(&SharedFlags.DataPath, "data", "", "Data directory or SQLite database file")
	flags.StringVar(&SharedFlags.Delimiter, "csv-delimiter", "", "Delimiter for CSV reports")
}

// LoadConfig reads the configuration and applies the command-line overrides.
func LoadConfig(flags CommonFlags) (*config.Config, error) {
	cfg, err := config.Load(flags.ConfigFile)
	if err != nil {
		return nil, err
	}
	if flags.LogLevel != "" {
		cfg.Log.Level = flags.LogLevel
	}
	if flags.LogFormat != "" {
		cfg.Log.Format = flags.LogFormat
	}
	if flags.Storage != "" {
		cfg.Storage.Backend = flags.Storage
	}
	if flags.DataPath != "" {
		cfg.Storage.Path = flags.DataPath
	}
	if flags.Delimiter != "" {
		cfg.CSV.Delimiter = flags.Delimiter
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func setup(cmd *cobra.Command, args []string) error {
	if AppContainer != nil {
		return nil
	}
	if envFile := config.LoadEnv(); envFile != "" {
		Log.WithField("file", envFile).Debug("Loaded environment variables")
	}

	cfg, err := LoadConfig(SharedFlags)
	if err != nil {
		return err
	}
	Log = config.ConfigureLoggingFromConfig(cfg)

	c, err := container.NewContainer(cfg, container.WithLogOutput(Log.Out))
	if err != nil {
		return err
	}
	AppContainer = c
	ownsContainer = true
	return nil
}

func teardown(cmd *cobra.Command, args []string) error {
	if !ownsContainer || AppContainer == nil {
		return nil
	}
	err := AppContainer.Close()
	AppContainer = nil
	ownsContainer = false
	return err
}

// GetContainer returns the container of the running command.
func GetContainer() (*container.Container, error) {
	if AppContainer == nil {
		return nil, errors.New("container not initialized")
	}
	return AppContainer, nil
}

// ParseDirection reads a --direction flag. The empty string selects the
// store's active direction.
func ParseDirection(s string) (models.Direction, error) {
	if strings.TrimSpace(s) == "" {
		return "", nil
	}
	return models.ParseDirection(s)
}

// Confirm returns a confirmation callback. With assumeYes it always agrees;
// otherwise it asks on out and reads the answer from in.
func Confirm(in io.Reader, out io.Writer, prompt string, assumeYes bool) func() bool {
	return func() bool {
		if assumeYes {
			return true
		}
		_, _ = fmt.Fprintf(out, "%s [y/N]: ", prompt)
		answer, err := bufio.NewReader(in).ReadString('\n')
		if err != nil && answer == "" {
			return false
		}
		switch strings.ToLower(strings.TrimSpace(answer)) {
		case "y", "yes":
			return true
		}
		return false
	}
}

// SaveWarning turns a store write error into the message shown to the user.
// Quota errors keep their advice to export a backup.
func SaveWarning(err error) error {
	if err == nil {
		return nil
	}
	var saveErr *ledgererror.SaveError
	if errors.As(err, &saveErr) && saveErr.IsQuota() {
		return fmt.Errorf("%w (run 'trade-ledger backup export' and remove old data)", err)
	}
	return err
}
