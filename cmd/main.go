package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	xlog "intervaltimer/internal/log"
	"intervaltimer/internal/platform"
	"intervaltimer/internal/storage"
	"intervaltimer/internal/ui/preferences"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const (
	appName   = "intervaltimer"
	appID       = "com.intervaltimer.app"
	envPrefix   = "INTERVALTIMER"
	logFileName = "intervaltimer.log"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// environment is resolved once per invocation from flags and INTERVALTIMER_*
// variables.
type environment struct {
	config  *viper.Viper
	dataDir string
}

func newRootCmd() *cobra.Command {
	env := &environment{config: viper.New()}
	env.config.SetEnvPrefix(envPrefix)
	env.config.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	env.config.AutomaticEnv()
	env.config.SetDefault("log-level", "info")
	env.config.SetDefault("log-format", "console")

	root := &cobra.Command{
		Use:           appName,
		Short:         "Interval training timer",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
			return env.init()
		},
		RunE: func(_ *cobra.Command, _ []string) error {
			return runGUI(env)
		},
	}

	flags := root.PersistentFlags()
	flags.String("data-dir", "", "directory holding schemas, settings and history")
	flags.String("log-level", "info", "log level: debug|info|warn|error")
	flags.String("log-format", "console", "log format: console|json")
	for _, name := range []string{"data-dir", "log-level", "log-format"} {
		if err := env.config.BindPFlag(name, flags.Lookup(name)); err != nil {
			panic(fmt.Sprintf("bind flag %s: %v", name, err))
		}
	}

	root.AddCommand(newGUICmd(env))
	root.AddCommand(newRunCmd(env))
	root.AddCommand(newSchemasCmd(env))
	root.AddCommand(newHistoryCmd(env))
	return root
}

func (env *environment) init() error {
	xlog.Configure(env.logConfig())

	dir := env.config.GetString("data-dir")
	if dir == "" {
		resolved, err := platform.NewService().DataDir(appName)
		if err != nil {
			return err
		}
		dir = resolved
	} else if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create data dir: %w", err)
	}
	env.dataDir = dir

	xlog.WithComponent("cmd").Debug().
		Str("event", "cmd.init").
		Str("data_dir", dir).
		Msg("environment resolved")
	return nil
}

func (env *environment) schemaStore() *storage.SchemaStore {
	return storage.NewSchemaStore(env.dataDir)
}

func (env *environment) settings() preferences.Settings {
	settings, err := storage.LoadSettings(env.dataDir)
	if err != nil {
		xlog.WithComponent("cmd").Warn().
			Err(err).
			Str("event", "settings.load_failed").
			Msg("using default settings")
		return preferences.DefaultSettings()
	}
	return settings
}

func (env *environment) openHistory() (*storage.History, error) {
	return storage.OpenHistory(storage.HistoryPath(env.dataDir))
}

func (env *environment) logConfig() xlog.Config {
	return xlog.Config{
		Level:   env.config.GetString("log-level"),
		Console: env.config.GetString("log-format") != "json",
	}
}

// redirectLogs sends log output to a file in the data dir while a
// full-screen terminal view owns stderr. The returned func restores the
// configured output.
func (env *environment) redirectLogs() func() {
	config := env.logConfig()
	config.Console = false

	path := filepath.Join(env.dataDir, logFileName)
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		xlog.WithComponent("cmd").Warn().
			Err(err).
			Str("event", "log.redirect_failed").
			Msg("logs are discarded while the terminal view runs")
		config.Output = io.Discard
		xlog.Configure(config)
		return func() {
			xlog.Configure(env.logConfig())
		}
	}

	config.Output = file
	xlog.Configure(config)
	return func() {
		xlog.Configure(env.logConfig())
		_ = file.Close()
	}
}
