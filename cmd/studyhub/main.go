package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/MarcoPoloResearchLab/studyhub/internal/app"
	"github.com/MarcoPoloResearchLab/studyhub/internal/config"
	"github.com/MarcoPoloResearchLab/studyhub/internal/logging"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}

// cli carries the state shared by every subcommand of one invocation.
type cli struct {
	viper   *viper.Viper
	cfgFile string
	app     *app.App
	logger  *zap.Logger
}

func newRootCommand() *cobra.Command {
	state := &cli{viper: config.NewViper()}

	rootCmd := &cobra.Command{
		Use:          "studyhub",
		Short:        "Notes, study sessions and plans kept on this machine",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return state.initConfig()
		},
	}

	state.setupFlags(rootCmd)

	rootCmd.AddCommand(
		newServeCommand(state),
		newNotesCommand(state),
		newPlansCommand(state),
		newSessionsCommand(state),
		newStudyCommand(state),
		newSubjectsCommand(state),
		newSearchCommand(state),
		newPrefsCommand(state),
	)
	return rootCmd
}

func (s *cli) setupFlags(cmd *cobra.Command) {
	defaults := config.NewViper()
	cmd.PersistentFlags().StringVar(&s.cfgFile, "config", "", "Path to configuration file")
	cmd.PersistentFlags().String("http-address", defaults.GetString("http.address"), "HTTP listen address")
	cmd.PersistentFlags().StringSlice("allowed-origins", defaults.GetStringSlice("http.allowed_origins"), "Origins allowed to call the HTTP API")
	cmd.PersistentFlags().String("storage-driver", defaults.GetString("storage.driver"), "Storage driver (sqlite, badger, memory)")
	cmd.PersistentFlags().String("storage-path", defaults.GetString("storage.path"), "SQLite file or Badger directory")
	cmd.PersistentFlags().String("log-level", defaults.GetString("log.level"), "Log level (debug, info, warn, error)")
	cmd.PersistentFlags().Duration("autosave-delay", defaults.GetDuration("autosave.delay"), "Quiet period before a note draft is saved")
	cmd.PersistentFlags().Duration("tick-interval", defaults.GetDuration("timer.tick_interval"), "Study timer refresh interval")

	s.bindFlag(cmd, "http.address", "http-address")
	s.bindFlag(cmd, "http.allowed_origins", "allowed-origins")
	s.bindFlag(cmd, "storage.driver", "storage-driver")
	s.bindFlag(cmd, "storage.path", "storage-path")
	s.bindFlag(cmd, "log.level", "log-level")
	s.bindFlag(cmd, "autosave.delay", "autosave-delay")
	s.bindFlag(cmd, "timer.tick_interval", "tick-interval")
}

func (s *cli) bindFlag(cmd *cobra.Command, key, flag string) {
	if err := s.viper.BindPFlag(key, cmd.PersistentFlags().Lookup(flag)); err != nil {
		panic(err)
	}
}

func (s *cli) initConfig() error {
	if s.cfgFile == "" {
		return nil
	}
	s.viper.SetConfigFile(s.cfgFile)
	if err := s.viper.ReadInConfig(); err != nil {
		return fmt.Errorf("read config %s: %w", s.cfgFile, err)
	}
	return nil
}

// open loads configuration and builds the application. Console commands log
// human-readable lines to stderr; serve logs JSON.
func (s *cli) open(ctx context.Context, console bool) error {
	appConfig, err := config.Load(s.viper)
	if err != nil {
		return err
	}
	build := logging.NewLogger
	if console {
		build = logging.NewConsoleLogger
	}
	logger, err := build(appConfig.LogLevel)
	if err != nil {
		return err
	}
	application, err := app.New(ctx, appConfig, app.Options{Logger: logger})
	if err != nil {
		_ = logger.Sync()
		return err
	}
	s.app = application
	s.logger = logger
	return nil
}

func (s *cli) close(ctx context.Context) error {
	if s.app == nil {
		return nil
	}
	err := s.app.Close(ctx)
	_ = s.logger.Sync()
	s.app = nil
	return err
}

// withApp wraps a console command so the application is opened before it runs
// and closed afterwards.
func (s *cli) withApp(run func(cmd *cobra.Command, args []string) error) func(cmd *cobra.Command, args []string) error {
	return func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}
		if err := s.open(ctx, true); err != nil {
			return err
		}
		runErr := run(cmd, args)
		return errors.Join(runErr, s.close(ctx))
	}
}

var errAmbiguousID = errors.New("id matches more than one record")

// resolveID finds the id equal to arg or, failing that, the single id ending
// with it.
func resolveID(ids []string, arg string) (string, error) {
	arg = strings.TrimSpace(arg)
	if arg == "" {
		return "", fmt.Errorf("an id is required")
	}
	match := ""
	for _, id := range ids {
		if id == arg {
			return id, nil
		}
		if strings.HasSuffix(id, arg) {
			if match != "" {
				return "", fmt.Errorf("%w: %s", errAmbiguousID, arg)
			}
			match = id
		}
	}
	if match == "" {
		return "", fmt.Errorf("no record matches %q", arg)
	}
	return match, nil
}
