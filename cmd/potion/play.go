package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/vovakirdan/perfect-potion/internal/config"
	"github.com/vovakirdan/perfect-potion/internal/core"
	"github.com/vovakirdan/perfect-potion/internal/games/potion"
	"github.com/vovakirdan/perfect-potion/internal/platform/tui"
	"github.com/vovakirdan/perfect-potion/internal/registry"
	"github.com/vovakirdan/perfect-potion/internal/storage"
)

const gameID = "potion"

var (
	flagConfig     string
	flagDifficulty string
	flagPlayer     string
)

var playCmd = &cobra.Command{
	Use:   "play",
	Short: "Play Perfect Potion",
	Long: `Pick a player and start brewing.

Controls:
  WASD/Arrows  - Move
  Space/F      - Shoot
  P            - Pause
  R            - Restart (after game over)
  Tab          - Ranking (paused or after game over)
  B/Esc        - Back to player menu (paused or after game over)
  Ctrl+S       - Save a screenshot
  Q/Ctrl+C     - Quit

Difficulty options:
  easy   - More lives, slower spawns and falls
  normal - Values from the config file
  hard   - Fewer lives, faster spawns and falls

Examples:
  potion play
  potion play --player alice
  potion play --difficulty hard
  potion play --config ./my-potion.yaml`,
	Args: cobra.NoArgs,
	Run:  runPlay,
}

func init() {
	playCmd.Flags().StringVar(&flagConfig, "config", "", "Path to custom game config YAML")
	playCmd.Flags().StringVar(&flagDifficulty, "difficulty", "", "Difficulty preset: easy, normal, hard")
	playCmd.Flags().StringVar(&flagPlayer, "player", "", "Play as this player, skipping the player menu")
}

func runPlay(_ *cobra.Command, _ []string) {
	if flagDifficulty != "" {
		if _, err := config.ParsePreset(flagDifficulty); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	}

	// Set config path and difficulty before any game is created
	potion.SetConfigPath(flagConfig)
	potion.SetDifficultyPreset(flagDifficulty)

	// Open score storage
	store, err := storage.Open(flagDBPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: could not open scores database: %v\n", err)
		logger.Warn("could not open scores database", "path", flagDBPath, "error", err)
		// Continue without storage - game still works
		store = nil
	}

	// Get terminal size
	width, height := 80, 24 // Defaults
	if w, h, termErr := term.GetSize(int(os.Stdout.Fd())); termErr == nil {
		width = w
		height = h
	}

	cfg := core.RuntimeConfig{
		ScreenW:  width,
		ScreenH:  height,
		TickRate: flagFPS,
		Seed:     flagSeed,
	}

	// A named player skips the menu for the first game
	var preselected *storage.Player
	if flagPlayer != "" && store != nil {
		p, perr := store.GetOrCreatePlayer(flagPlayer)
		if perr != nil {
			fmt.Fprintf(os.Stderr, "Warning: could not load player %q: %v\n", flagPlayer, perr)
		} else {
			preselected = &p
		}
	}

	runErr := playLoop(store, cfg, preselected)

	// Close store before potential exit
	if store != nil {
		store.Close()
	}

	if runErr != nil {
		fmt.Fprintf(os.Stderr, "Error running game: %v\n", runErr)
		os.Exit(1)
	}
}

// playLoop alternates between the player menu, the game and the ranking
// until the user quits.
func playLoop(store *storage.Store, cfg core.RuntimeConfig, player *storage.Player) error {
	skipMenu := player != nil

	for {
		if !skipMenu {
			menuResult, err := tui.RunMenu(store, cfg)
			if err != nil {
				return err
			}
			cfg = menuResult.Config

			if menuResult.Quit {
				return nil
			}
			if menuResult.WantsRanking {
				goBack, sbErr := tui.RunScoreboard(store, "", cfg.ScreenW, cfg.ScreenH)
				if sbErr != nil {
					return sbErr
				}
				if goBack {
					continue // Back to menu
				}
				return nil
			}
			player = menuResult.Player
		}
		skipMenu = false

		game, err := registry.Create(gameID)
		if err != nil {
			return err
		}
		tui.AttachPlayer(game, store, player)

		// Fresh seed for every game unless one was requested
		if flagSeed == 0 {
			cfg.Seed = time.Now().UnixNano()
		}

		result, err := tui.Run(game, cfg)
		if err != nil {
			return err
		}
		cfg = result.Config

		switch {
		case result.WantsRanking:
			name := ""
			if player != nil {
				name = player.Name
			}
			goBack, sbErr := tui.RunScoreboard(store, name, cfg.ScreenW, cfg.ScreenH)
			if sbErr != nil {
				return sbErr
			}
			if !goBack {
				return nil
			}
		case result.BackToMenu:
			// Loop back to menu
		default:
			return nil
		}
	}
}
