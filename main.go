// Package main provides the entry point for the readaloud CLI.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/charmbracelet/log"
	"github.com/dgnsrekt/readaloud/internal/config"
	"github.com/dgnsrekt/readaloud/internal/textsrc"
	"github.com/dgnsrekt/readaloud/ui"
	gap "github.com/muesli/go-app-paths"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/term"
)

const loadTimeout = 30 * time.Second

var (
	// Version as provided by goreleaser.
	Version = ""
	// CommitSHA as provided by goreleaser.
	CommitSHA = ""

	configFile    string
	fromClipboard bool
	mouse         bool
	debug         bool
	dryRun        bool

	// settings resolved in validateOptions
	cfg config.Config

	rootCmd = &cobra.Command{
		Use:   "readaloud [SOURCE]",
		Short: "Read text aloud, one chunk at a time",
		Long: paragraph(
			fmt.Sprintf("\nRead text aloud %s, one chunk at a time.", keyword("in the terminal")),
		),
		SilenceErrors:    false,
		SilenceUsage:     true,
		TraverseChildren: true,
		Args:             cobra.MaximumNArgs(1),
		ValidArgsFunction: func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
			return nil, cobra.ShellCompDirectiveDefault
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
	}

	e, err := env.ParseAs[config.Env]()
	if err != nil {
		return fmt.Errorf("error parsing environment: %w", err)
	}
	if err := setupLog(debug || e.Debug); err != nil {
		return err
	}

	cfg, err = config.Load(viper.GetViper())
	if err != nil {
		return err
	}
	cfg.Voice = resolveVoice(cfg.Engine, cfg.Voice)
	cfg.Normalize()
	mouse = viper.GetBool("mouse")

	log.Debug("Loaded configuration", "unit", cfg.Unit, "count", cfg.Count, "voice", cfg.Voice, "engine", cfg.Engine)
	return nil
}

// sourceArg picks the text source from the arguments, the clipboard flag
// or a piped stdin.
func sourceArg(args []string) (string, error) {
	switch {
	case fromClipboard:
		if len(args) > 0 {
			return "", errors.New("cannot use both a source and --clipboard")
		}
		return textsrc.Clipboard, nil
	case len(args) > 0:
		return args[0], nil
	}

	if yes, err := stdinIsPipe(); err != nil {
		return "", err
	} else if yes {
		return "-", nil
	}
	return "", errors.New("missing text source: pass a file, a URL, - or --clipboard")
}

func stdinIsPipe() (bool, error) {
	stat, err := os.Stdin.Stat()
	if err != nil {
		return false, fmt.Errorf("unable to open file: %w", err)
	}
	if stat.Mode()&os.ModeCharDevice == 0 || stat.Size() > 0 {
		return true, nil
	}
	return false, nil
}

// loadText reads and prepares the text behind arg. Markdown is stripped
// for everything except local files without a markdown extension.
func loadText(ctx context.Context, arg string) (*textsrc.Source, string, error) {
	ctx, cancel := context.WithTimeout(ctx, loadTimeout)
	defer cancel()

	src, err := textsrc.Load(ctx, arg)
	if err != nil {
		return nil, "", err
	}

	markdown := cfg.Markdown
	if src.Path != "" && !textsrc.IsMarkdownFile(src.Path) {
		markdown = false
	}
	text, err := textsrc.Prepare(src.Text, markdown)
	if err != nil {
		return nil, "", err
	}
	return src, text, nil
}

func execute(cmd *cobra.Command, args []string) error {
	arg, err := sourceArg(args)
	if err != nil {
		return err
	}

	// A TUI needs the terminal on both ends. Otherwise just read it all.
	if arg == "-" || !term.IsTerminal(int(os.Stdout.Fd())) {
		return runPlay(cmd, args)
	}

	src, text, err := loadText(cmd.Context(), arg)
	if err != nil {
		return err
	}
	return runTUI(src, text)
}

func runTUI(src *textsrc.Source, text string) error {
	// Read environment to get debugging stuff
	uiCfg, err := env.ParseAs[ui.Config]()
	if err != nil {
		return fmt.Errorf("error parsing config: %v", err)
	}

	if src.Watchable() {
		uiCfg.Path = src.Path
	}
	uiCfg.Markdown = cfg.Markdown && textsrc.IsMarkdownFile(src.Path)
	uiCfg.Playback = cfg.Playback()
	uiCfg.Hold = cfg.Hold
	uiCfg.Verbosity = cfg.Verbosity()
	uiCfg.EnableMouse = mouse || cfg.Hold > 0

	// The TUI owns the terminal; only a debug log file may receive output.
	if logFile == nil {
		log.SetOutput(io.Discard)
	}

	ctrl, err := newController(log.Default(), nil)
	if err != nil {
		return err
	}

	// Run Bubble Tea program
	if _, err := ui.NewProgram(uiCfg, ctrl, text, log.Default()).Run(); err != nil {
		return fmt.Errorf("unable to run tui program: %w", err)
	}
	return nil
}

func main() {
	err := rootCmd.Execute()
	_ = closeLog()
	if err != nil {
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

	config.SetDefaults(viper.GetViper())

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&configFile, "config", "", fmt.Sprintf("config file (default %s)", viper.GetViper().ConfigFileUsed()))
	flags.BoolVar(&debug, "debug", false, "write a debug log to the cache directory")
	flags.BoolVar(&dryRun, "dry-run", false, "synthesize without playing audio")
	flags.BoolVar(&fromClipboard, "clipboard", false, "read the text from the clipboard")
	flags.StringP("unit", "u", "", "chunk unit: words or sentences")
	flags.IntP("count", "c", 0, "words or sentences per chunk")
	flags.StringP("voice", "v", "", "voice name (fuzzy matched)")
	flags.StringP("engine", "e", "", "synthesis engine: openai or google")
	flags.String("language", "", "language code for the engine")
	flags.Float64("volume", 0, "playback volume (0-10)")
	flags.String("endpoint", "", "synthesis endpoint URL")
	flags.String("player", "", "audio player command line")
	flags.String("status", "", "status messages to show: all, errors or none")
	flags.Bool("markdown", true, "strip markdown formatting before reading")
	rootCmd.Flags().BoolVarP(&mouse, "mouse", "m", false, "enable mouse support (TUI-mode only)")
	rootCmd.Flags().Duration("hold", 0, "press-and-hold time for the speak button (TUI-mode only)")

	// Config bindings
	for _, name := range []string{"unit", "count", "voice", "engine", "language", "volume", "endpoint", "player", "status", "markdown"} {
		_ = viper.BindPFlag(name, flags.Lookup(name))
	}
	_ = viper.BindPFlag("debug", flags.Lookup("debug"))
	_ = viper.BindPFlag("mouse", rootCmd.Flags().Lookup("mouse"))
	_ = viper.BindPFlag("hold", rootCmd.Flags().Lookup("hold"))

	rootCmd.AddCommand(configCmd, manCmd, playCmd, pregenerateCmd, stepCmd, serveCmd, voicesCmd)
}

func tryLoadConfigFromDefaultPlaces() {
	scope := gap.NewScope(gap.User, "readaloud")
	dirs, err := scope.ConfigDirs()
	if err != nil {
		fmt.Println("Could not load find configuration directory.")
		os.Exit(1)
	}

	if c := os.Getenv("XDG_CONFIG_HOME"); c != "" {
		dirs = append([]string{filepath.Join(c, "readaloud")}, dirs...)
	}

	if c := os.Getenv("READALOUD_CONFIG_HOME"); c != "" {
		dirs = append([]string{c}, dirs...)
	}

	for _, v := range dirs {
		viper.AddConfigPath(v)
	}

	viper.SetConfigName("readaloud")
	viper.SetConfigType("yaml")
	viper.SetEnvPrefix("readaloud")
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
		configFile = filepath.Join(dirs[0], "readaloud.yml")
	}
	if err := ensureConfigFile(); err != nil {
		log.Error("Could not create default configuration", "error", err)
	}
}
