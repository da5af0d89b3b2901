package main

import (
	"fmt"
	"io"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"geodraw/internal/config"
	"geodraw/internal/tui"
)

var (
	configFile string
	envFile    string
	logFile    string
	logLevel   string
	startMode  string
	outFile    string

	cfg config.Options
	log = logrus.New()
)

// rootCmd runs the interactive editor.
var rootCmd = &cobra.Command{
	Use:   "geodraw [file]",
	Short: "Draw and edit map features in the terminal.",
	Long: `geodraw is a terminal map editor. Draw points, lines, polygons and
rectangles with the mouse, edit their vertices, and save the result as GeoJSON.
GeoJSON, WKT, CSV and KML files can be opened as a starting point.`,
	Args: cobra.MaximumNArgs(1),
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return startup(cmd.Flags())
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		opts := tui.Options{Config: cfg, Log: log, Out: outFile}
		if len(args) > 0 {
			opts.Path = args[0]
		}
		m, err := tui.New(opts)
		if err != nil {
			return err
		}
		defer m.Close()
		if _, err := tea.NewProgram(m, tea.WithAltScreen(), tea.WithMouseAllMotion()).Run(); err != nil {
			return err
		}
		return nil
	},
}

func init() {
	fs := rootCmd.PersistentFlags()
	fs.StringVar(&configFile, "config", "", "options file (.toml, .yaml or .yml)")
	fs.StringVar(&envFile, "env", ".env", "dotenv file read before GEODRAW_* variables")
	fs.StringVar(&logFile, "log-file", "", "write logs to this file; logs are discarded when empty")
	fs.StringVar(&logLevel, "log-level", "", "log level (overrides config)")
	rootCmd.Flags().StringVar(&startMode, "mode", "", "mode to start in (overrides config)")
	rootCmd.Flags().StringVarP(&outFile, "out", "o", "drawing.geojson", "file written by the save key")
	rootCmd.AddCommand(inspectCmd)
}

// startup resolves options from file, environment and flags, in that order,
// and points the logger at its destination.
func startup(flags *pflag.FlagSet) error {
	var err error
	cfg, err = config.Load(configFile)
	if err != nil {
		return err
	}
	if err := cfg.ApplyEnv(envFile); err != nil {
		return err
	}
	if flags.Changed("log-level") {
		cfg.LogLevel = logLevel
	}
	if f := flags.Lookup("mode"); f != nil && f.Changed {
		cfg.DefaultMode = startMode
	}
	if cfg, err = cfg.Validate(); err != nil {
		return err
	}

	log.SetLevel(cfg.Level())
	log.SetFormatter(&logrus.TextFormatter{DisableColors: true, FullTimestamp: true})
	log.SetOutput(io.Discard)
	if logFile != "" {
		f, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return fmt.Errorf("log file: %w", err)
		}
		log.SetOutput(f)
	}
	log.WithFields(logrus.Fields{"config": configFile, "mode": cfg.DefaultMode}).Debug("options resolved")
	return nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
