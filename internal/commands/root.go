package commands

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"golang.org/x/term"
	"gorm.io/gorm"

	"github.com/balkashynov/whm/internal/config"
	"github.com/balkashynov/whm/internal/db"
	"github.com/balkashynov/whm/internal/logging"
	"github.com/balkashynov/whm/internal/timer"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// skipConfig marks commands that run without loading configuration
const skipConfig = "skip-config"

// app carries what every command needs once flags are parsed
type app struct {
	configPath string
	debug      bool

	cfg  *config.Config
	log  zerolog.Logger
	conn *gorm.DB

	// now overrides the clock; nil means time.Now
	now func() time.Time
}

// NewRootCmd builds the whm command tree
func NewRootCmd() *cobra.Command {
	return newRootCmd(&app{})
}

func newRootCmd(a *app) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "whm",
		Short: "A CLI work-hours tracker",
		Long: `whm tracks billable work from the terminal.
Start a timer with a description, group and hourly rate, stop it to record the
hours and the amount earned, then list or export what you did.`,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			// Arguments are valid by now, runtime errors should not print usage
			cmd.SilenceUsage = true
			if cmd.Annotations[skipConfig] != "" {
				return nil
			}
			return a.setup(cmd)
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			return a.close()
		},
	}

	rootCmd.PersistentFlags().StringVar(&a.configPath, "config", "", "config file (default "+config.DefaultConfigPath()+")")
	rootCmd.PersistentFlags().BoolVar(&a.debug, "debug", false, "verbose logging to stderr")

	rootCmd.SetHelpCommand(newHelpCmd())
	rootCmd.AddCommand(newInitCmd(a))
	rootCmd.AddCommand(newStartCmd(a))
	rootCmd.AddCommand(newEndCmd(a))
	rootCmd.AddCommand(newStatusCmd(a))
	rootCmd.AddCommand(newListCmd(a))
	rootCmd.AddCommand(newExportCmd(a))
	rootCmd.AddCommand(newImportCmd(a))
	rootCmd.AddCommand(newConfigCmd(a))
	rootCmd.AddCommand(newVersionCmd())

	return rootCmd
}

// SetVersion sets the version information
func SetVersion(v, c, d string) {
	version = v
	commit = c
	date = d
}

// Execute runs the root command
func Execute(ctx context.Context) error {
	a := &app{}
	defer func() { _ = a.close() }()
	return newRootCmd(a).ExecuteContext(ctx)
}

// setup loads configuration and attaches the logger to the command context
func (a *app) setup(cmd *cobra.Command) error {
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return err
	}
	a.cfg = cfg

	level := cfg.Logging.Level
	if a.debug {
		level = "debug"
	}
	a.log = logging.New(cmd.ErrOrStderr(), level, cfg.Logging.Format)

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	cmd.SetContext(a.log.WithContext(ctx))

	a.log.Debug().Str("database", cfg.Database.Path).Msg("configuration loaded")
	return nil
}

// store opens the database on first use
func (a *app) store(ctx context.Context) (*db.Store, error) {
	if a.conn == nil {
		conn, err := db.Open(ctx, db.Options{Path: a.cfg.Database.Path, Debug: a.debug})
		if err != nil {
			return nil, err
		}
		a.conn = conn
	}
	return db.NewStore(a.conn, a.cfg.Session.DefaultGroup), nil
}

// controller builds a timer controller over the store
func (a *app) controller(ctx context.Context) (*timer.Controller, error) {
	store, err := a.store(ctx)
	if err != nil {
		return nil, err
	}
	opts := []timer.Option{timer.WithOverlap(a.cfg.Timer.AllowOverlap)}
	if a.now != nil {
		opts = append(opts, timer.WithClock(a.now))
	}
	return timer.New(store, opts...), nil
}

func (a *app) close() error {
	if a.conn == nil {
		return nil
	}
	err := db.CloseConn(a.conn)
	a.conn = nil
	return err
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:         "version",
		Short:       "Print version information",
		Args:        cobra.NoArgs,
		Annotations: map[string]string{skipConfig: "true"},
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "whm %s (commit %s, built %s)\n", version, commit, date)
		},
	}
}

// isTerminal reports whether w is an interactive terminal
func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return term.IsTerminal(int(f.Fd()))
}
