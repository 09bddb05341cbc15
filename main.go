// Package main provides the entry point for the readaloud CLI application.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/caarlos0/env/v11"
	"github.com/charmbracelet/log"
	homedir "github.com/mitchellh/go-homedir"
	gap "github.com/muesli/go-app-paths"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/dgnsrekt/readaloud/internal/session"
	"github.com/dgnsrekt/readaloud/tts"
	"github.com/dgnsrekt/readaloud/tts/engines"
	"github.com/dgnsrekt/readaloud/ui"
)

const appName = "readaloud"

var (
	// Version as provided by goreleaser.
	Version = ""
	// CommitSHA as provided by goreleaser.
	CommitSHA = ""

	configFile string
	engineName string
	rate       float64
	watchFile  bool
	debug      bool
	mouse      bool

	speechConfig tts.Config

	rootCmd = &cobra.Command{
		Use:   "readaloud [FILE|DIR]",
		Short: "Read PDF, text and Word documents aloud",
		Long: paragraph(
			fmt.Sprintf("\nRead PDF, text and Word documents %s, ten words at a time or all at once.", keyword("aloud")),
		),
		SilenceErrors:    false,
		SilenceUsage:     true,
		TraverseChildren: true,
		Args:             cobra.MaximumNArgs(1),
		ValidArgsFunction: func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
			return []string{"pdf", "txt", "docx"}, cobra.ShellCompDirectiveFilterFileExt
		},
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return validateOptions(cmd)
		},
		RunE: execute,
	}
)

func validateOptions(cmd *cobra.Command) error {
	if cmd.Flags().Changed("config") {
		viper.SetConfigFile(configFile)
		if err := viper.ReadInConfig(); err != nil {
			return fmt.Errorf("unable to read config file: %w", err)
		}
		log.Debug("Using configuration file", "path", configFile)
	}

	// grab config values from Viper
	watchFile = viper.GetBool("watch")
	debug = viper.GetBool("debug")
	mouse = viper.GetBool("mouse")
	if debug {
		log.SetLevel(log.DebugLevel)
	}

	cfg, err := tts.LoadConfig(viper.GetViper())
	if err != nil {
		return err
	}

	if cfg.Cache.Dir == "" {
		dir, err := gap.NewScope(gap.User, appName).CacheDir()
		if err != nil {
			return fmt.Errorf("unable to find cache directory: %w", err)
		}
		cfg.Cache.Dir = filepath.Join(dir, "audio")
	} else if cfg.Cache.Dir, err = homedir.Expand(cfg.Cache.Dir); err != nil {
		return fmt.Errorf("unable to expand cache directory: %w", err)
	}

	speechConfig = cfg
	log.Debug("Speech configuration", "engine", cfg.Engine, "fallback", cfg.Fallback, "rate", cfg.Rate, "cache", cfg.Cache.Dir)
	return nil
}

// newReader builds the speech controller and the session speaking through
// it. The returned function releases both.
func newReader(cfg tts.Config) (*session.Session, *tts.Controller, func(), error) {
	logger := log.Default()

	engine, err := engines.New(cfg, engines.Options{Logger: logger})
	if err != nil {
		return nil, nil, nil, fmt.Errorf("unable to start speech engine: %w", err)
	}

	ctrl := tts.NewController(engine, logger)
	if err := ctrl.SetRate(cfg.Rate); err != nil {
		_ = ctrl.Close()
		return nil, nil, nil, err
	}

	sess := session.New(ctrl, nil, logger)
	closer := func() {
		_ = sess.Close()
		if err := ctrl.Close(); err != nil {
			logger.Warn("Speech engine did not close cleanly", "err", err)
		}
	}
	return sess, ctrl, closer, nil
}

func execute(_ *cobra.Command, args []string) error {
	path := ""
	if len(args) == 1 {
		p, err := filepath.Abs(args[0])
		if err != nil {
			return fmt.Errorf("unable to get absolute path: %w", err)
		}
		path = p
	}
	return runTUI(path)
}

func runTUI(path string) error {
	// Read environment to get UI settings
	cfg, err := env.ParseAs[ui.Config]()
	if err != nil {
		return fmt.Errorf("error parsing config: %v", err)
	}

	cfg.Path = path
	cfg.Watch = watchFile
	cfg.EnableMouse = cfg.EnableMouse || mouse

	sess, ctrl, closer, err := newReader(speechConfig)
	if err != nil {
		return err
	}
	defer closer()

	// Run Bubble Tea program
	if _, err := ui.NewProgram(cfg, sess, ctrl, log.Default()).Run(); err != nil {
		return fmt.Errorf("unable to run tui program: %w", err)
	}

	return nil
}

func main() {
	closer, err := setupLog()
	if err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
	if err := rootCmd.Execute(); err != nil {
		_ = closer()
		os.Exit(1)
	}
	_ = closer()
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

	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", fmt.Sprintf("config file (default %s)", viper.GetViper().ConfigFileUsed()))
	rootCmd.PersistentFlags().StringVarP(&engineName, "engine", "e", "", "speech engine: piper, gtts or mock")
	rootCmd.PersistentFlags().Float64VarP(&rate, "rate", "r", tts.DefaultRate, "speaking rate, 0.5 to 2.0")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "write debug output to the log file")
	rootCmd.Flags().BoolVarP(&watchFile, "watch", "w", false, "reopen the document when it changes on disk")
	rootCmd.Flags().BoolVarP(&mouse, "mouse", "m", false, "enable mouse wheel (TUI-mode only)")
	_ = rootCmd.Flags().MarkHidden("mouse")

	// Config bindings
	_ = viper.BindPFlag("tts.engine", rootCmd.PersistentFlags().Lookup("engine"))
	_ = viper.BindPFlag("tts.rate", rootCmd.PersistentFlags().Lookup("rate"))
	_ = viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug"))
	_ = viper.BindPFlag("watch", rootCmd.Flags().Lookup("watch"))
	_ = viper.BindPFlag("mouse", rootCmd.Flags().Lookup("mouse"))

	viper.SetDefault("watch", false)
	viper.SetDefault("debug", false)
	viper.SetDefault("mouse", false)
	tts.SetDefaults(viper.GetViper())

	rootCmd.AddCommand(configCmd, manCmd, speakCmd)
}

func tryLoadConfigFromDefaultPlaces() {
	scope := gap.NewScope(gap.User, appName)
	dirs, err := scope.ConfigDirs()
	if err != nil {
		fmt.Println("Could not load find configuration directory.")
		os.Exit(1)
	}

	if c := os.Getenv("XDG_CONFIG_HOME"); c != "" {
		dirs = append([]string{filepath.Join(c, appName)}, dirs...)
	}

	if c := os.Getenv("READALOUD_CONFIG_HOME"); c != "" {
		dirs = append([]string{c}, dirs...)
	}

	for _, v := range dirs {
		viper.AddConfigPath(v)
	}

	viper.SetConfigName(appName)
	viper.SetConfigType("yaml")
	viper.SetEnvPrefix(appName)
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
		configFile = filepath.Join(dirs[0], appName+".yml")
	}
	if err := ensureConfigFile(); err != nil {
		log.Error("Could not create default configuration", "error", err)
	}
}
