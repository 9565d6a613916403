// potion is a terminal arcade game: catch potions in recipe order, dodge
// the harmful ones and shoot what gets in the way.
//
// Usage:
//
//	potion play              - Pick a player and brew
//	potion scores            - Show the ranking
//	potion players           - Manage player profiles
//	potion serve             - Start SSH server for remote play
//	potion list              - List available games
//
// Global flags:
//
//	--fps <rate>         - Set tick rate (default: 60)
//	--seed <value>       - Set RNG seed for reproducible gameplay
//	--db <path>          - Set database path (default: ~/.perfect-potion/potion.db)
//	--log-level <level>  - debug, info, warn, error (default: info)
//	--log-file <path>    - Log destination (default: ~/.perfect-potion/potion.log)
package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/vovakirdan/perfect-potion/internal/config"
	"github.com/vovakirdan/perfect-potion/internal/games/potion"
)

var (
	// Global flags
	flagFPS      int
	flagSeed     int64
	flagDBPath   string
	flagLogLevel string
	flagLogFile  string
)

// logger is configured from the global flags before any command runs.
var logger = log.New(io.Discard)

// logFile is closed when the command finishes.
var logFile *os.File

func main() {
	err := rootCmd.Execute()
	if logFile != nil {
		logFile.Close()
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "potion",
	Short: "Perfect Potion - Brew potions in your terminal",
	Long: `Perfect Potion is a terminal arcade game. Potions fall into the
cauldron room; catch the ones the recipe asks for, in order, and
stay away from the harmful ones.

Available commands:
  play     - Pick a player and start brewing
  scores   - View the ranking
  players  - List, add or remove players
  serve    - Start SSH server for remote play
  list     - Show all available games

Examples:
  potion play
  potion play --player alice --difficulty hard
  potion scores --limit 5
  potion serve --ssh :2222`,
	SilenceUsage:      true,
	PersistentPreRunE: setupLogging,
}

func init() {
	// Global persistent flags
	rootCmd.PersistentFlags().IntVar(&flagFPS, "fps", 60, "Tick rate (frames per second)")
	rootCmd.PersistentFlags().Int64Var(&flagSeed, "seed", 0, "RNG seed (0 = random based on time)")
	rootCmd.PersistentFlags().StringVar(&flagDBPath, "db", "~/.perfect-potion/potion.db", "Path to scores database")
	rootCmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", "info", "Log level: debug, info, warn, error")
	rootCmd.PersistentFlags().StringVar(&flagLogFile, "log-file", "", "Log file (default ~/.perfect-potion/potion.log)")

	// Add subcommands
	rootCmd.AddCommand(playCmd)
	rootCmd.AddCommand(scoresCmd)
	rootCmd.AddCommand(playersCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(listCmd)
}

// setupLogging points the shared logger at the log file. The game runs in
// the alternate screen, so nothing is logged to the terminal while playing.
func setupLogging(_ *cobra.Command, _ []string) error {
	level, err := log.ParseLevel(flagLogLevel)
	if err != nil {
		return fmt.Errorf("invalid --log-level %q", flagLogLevel)
	}

	path := flagLogFile
	if path == "" {
		if dir := config.DataDir(); dir != "" {
			path = filepath.Join(dir, "potion.log")
		}
	}

	if path != "" {
		if mkErr := os.MkdirAll(filepath.Dir(path), 0o755); mkErr == nil {
			f, openErr := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
			if openErr == nil {
				logFile = f
				logger = log.NewWithOptions(f, log.Options{ReportTimestamp: true})
			}
		}
	}

	logger.SetLevel(level)
	potion.SetLogger(logger)
	return nil
}
