// Package main provides the entry point for the toevoice CLI.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/caarlos0/env/v11"
	"github.com/charmbracelet/log"
	gap "github.com/muesli/go-app-paths"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/term"

	"github.com/trainertoe/voice/internal/config"
	"github.com/trainertoe/voice/internal/tts"
	"github.com/trainertoe/voice/ui"
)

var (
	// Version as provided by goreleaser.
	Version = ""
	// CommitSHA as provided by goreleaser.
	CommitSHA = ""

	configFile string
	debug      bool
	logFile    string
	engineName string
	cacheDir   string

	// Set by validateOptions
	cfg        config.Config
	uiCfg      ui.Config
	engineType tts.EngineType

	rootCmd = &cobra.Command{
		Use:   "toevoice",
		Short: "Workout voice callouts that cost as little as possible",
		Long: paragraph(
			fmt.Sprintf("\nSpeak workout callouts through ElevenLabs, %s.", keyword("paying for each phrase only once")),
		),
		SilenceErrors:    false,
		SilenceUsage:     true,
		TraverseChildren: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return validateOptions(cmd)
		},
	}
)

func validateOptions(cmd *cobra.Command) error {
	if cmd.Flags().Changed("config") {
		viper.SetConfigFile(configFile)
		if err := viper.ReadInConfig(); err != nil {
			return fmt.Errorf("unable to read config file: %w", err)
		}
	}

	if err := config.LoadDotEnv(); err != nil {
		return err
	}

	var err error
	cfg, err = config.Load(viper.GetViper())
	if err != nil {
		return err
	}

	// engine selection: CLI flag takes precedence over config file
	engineType, err = tts.ValidateEngineSelection(engineName, tts.EngineType(cfg.Engine))
	if err != nil {
		return err
	}

	if err := configureLog(cfg.Log); err != nil {
		return err
	}

	uiCfg, err = env.ParseAs[ui.Config]()
	if err != nil {
		return fmt.Errorf("error parsing config: %w", err)
	}
	// plain output when stdout is not a terminal
	uiCfg.Plain = !term.IsTerminal(int(os.Stdout.Fd()))

	return nil
}

func main() {
	closer, err := setupLog()
	if err != nil {
		fmt.Println(err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err = rootCmd.ExecuteContext(ctx)
	stop()
	_ = closer()
	if err != nil {
		if errors.Is(err, context.Canceled) {
			os.Exit(130)
		}
		os.Exit(1)
	}
}

func init() {
	tryLoadConfigFromDefaultPlaces()
	if len(CommitSHA) >= 7 {
		vt := rootCmd.VersionTemplate()
		rootCmd.SetVersionTemplate(vt[:len(vt)-1] + " (" + CommitSHA[0:7] + ")\n")
	}
	if Version == "" {
		Version = "unknown (built from source)"
	}
	rootCmd.Version = Version
	rootCmd.InitDefaultCompletionCmd()

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&configFile, "config", "", fmt.Sprintf("config file (default %s)", viper.GetViper().ConfigFileUsed()))
	flags.BoolVar(&debug, "debug", false, "log debug output")
	flags.StringVar(&logFile, "log-file", "", "also write the log to this file")
	flags.StringVarP(&engineName, "engine", "e", "", "synthesis engine (elevenlabs or mock)")
	flags.StringVar(&cacheDir, "cache-dir", "", "phrase cache directory")

	// Config bindings
	_ = viper.BindPFlag("engine", flags.Lookup("engine"))
	_ = viper.BindPFlag("cache.dir", flags.Lookup("cache-dir"))
	_ = viper.BindPFlag("log.file", flags.Lookup("log-file"))

	rootCmd.AddCommand(sayCmd, prewarmCmd, statsCmd, clearCmd, catalogCmd, configCmd, manCmd)
}

func tryLoadConfigFromDefaultPlaces() {
	scope := gap.NewScope(gap.User, "toevoice")
	dirs, err := scope.ConfigDirs()
	if err != nil {
		fmt.Println("Could not load find configuration directory.")
		os.Exit(1)
	}

	if c := os.Getenv("XDG_CONFIG_HOME"); c != "" {
		dirs = append([]string{filepath.Join(c, "toevoice")}, dirs...)
	}

	if c := os.Getenv("TOEVOICE_CONFIG_HOME"); c != "" {
		dirs = append([]string{c}, dirs...)
	}

	for _, v := range dirs {
		viper.AddConfigPath(v)
	}

	viper.SetConfigName("toevoice")
	viper.SetConfigType("yaml")
	viper.SetEnvPrefix("toevoice")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			log.Warn("Could not parse configuration file", "err", err)
		}
	}

	if used := viper.ConfigFileUsed(); used != "" {
		log.Debug("Using configuration file", "path", viper.ConfigFileUsed())
		return
	}

	if viper.ConfigFileUsed() == "" {
		configFile = filepath.Join(dirs[0], "toevoice.yml")
	}
	if err := ensureConfigFile(); err != nil {
		log.Error("Could not create default configuration", "error", err)
	}
}
