package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/attrition-game/atk/internal/adapters/github"
	"github.com/attrition-game/atk/internal/adapters/repository"
	"github.com/attrition-game/atk/internal/core/services"
	"github.com/attrition-game/atk/pkg/appdirs"
	"github.com/attrition-game/atk/pkg/config"
	"github.com/attrition-game/atk/pkg/ui"
)

var (
	// Global flags
	cfgFile string
	verbose bool

	appDirs   *appdirs.Dirs
	appConfig *config.Config
	logger    *log.Logger

	// Services
	releaseService *services.ReleaseService
	historyService *services.HistoryService

	// Repositories
	publishLog *repository.FilePublishLog
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "atk",
	Short: "ATK - Attrition release toolkit",
	Long: ui.StyleTitle.Render("ATK") + " - Attrition release toolkit\n\n" +
		"Publishes desktop installers to GitHub releases and generates the\n" +
		"flat-colour placeholder art used by the game client.",
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: initializeApp,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintln(os.Stderr, ui.FormatError("Error: "+err.Error()))
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: $XDG_CONFIG_HOME/atk/config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")

	rootCmd.AddCommand(releaseCmd)
	rootCmd.AddCommand(placeholdersCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(versionCmd)
}

// initializeApp loads configuration and wires adapters into services
func initializeApp(cmd *cobra.Command, args []string) error {
	appDirs = appdirs.New(cfgFile)

	cfg, err := config.Load(appDirs.ConfigPath)
	if err != nil {
		// config subcommands must keep working so a broken file can be fixed
		if !isConfigCommand(cmd) {
			return err
		}
		fmt.Fprintln(os.Stderr, ui.FormatWarning(err.Error()))
		cfg = config.DefaultConfig()
	}
	appConfig = cfg

	if cfg.DataDir != "" {
		appDirs.DataPath = cfg.DataDir
		appDirs.PublishLogPath = filepath.Join(cfg.DataDir, "publishes.json")
	}

	ui.SetTheme(cfg.ColorTheme)
	logger = newLogger(cfg.LogLevel, verbose)

	host, err := github.NewReleaseHost(github.Options{
		APIURL:    cfg.Release.APIURL,
		UserAgent: cfg.Release.UserAgent,
		Logger:    logger,
	})
	if err != nil {
		return fmt.Errorf("failed to initialize GitHub client: %w", err)
	}

	publishLog = repository.NewFilePublishLog(appDirs.PublishLogPath)

	releaseService = services.NewReleaseService(host, publishLog, logger)
	historyService = services.NewHistoryService(publishLog)

	return nil
}

func newLogger(level string, verbose bool) *log.Logger {
	l := log.New()
	l.SetOutput(os.Stderr)
	l.SetFormatter(&log.TextFormatter{DisableTimestamp: true})

	lvl, err := log.ParseLevel(level)
	if err != nil {
		lvl = log.WarnLevel
	}
	if verbose {
		lvl = log.DebugLevel
	}
	l.SetLevel(lvl)
	return l
}

func isConfigCommand(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c == configCmd {
			return true
		}
	}
	return false
}
