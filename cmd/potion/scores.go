package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/vovakirdan/perfect-potion/internal/games/potion"
	"github.com/vovakirdan/perfect-potion/internal/platform/tui"
	"github.com/vovakirdan/perfect-potion/internal/storage"
)

var (
	flagLimit       int
	flagClear       bool
	flagInteractive bool
	flagScorePlayer string
)

var scoresCmd = &cobra.Command{
	Use:   "scores",
	Short: "Show the ranking",
	Long: `Display the best score of every player, highest first.

Examples:
  potion scores
  potion scores --limit 5
  potion scores --player alice
  potion scores --interactive
  potion scores --clear`,
	Args: cobra.NoArgs,
	Run:  runScores,
}

func init() {
	scoresCmd.Flags().IntVar(&flagLimit, "limit", 10, "Number of scores to show")
	scoresCmd.Flags().BoolVar(&flagClear, "clear", false, "Delete all scores and reset best scores")
	scoresCmd.Flags().BoolVar(&flagInteractive, "interactive", false, "Open the ranking screen")
	scoresCmd.Flags().StringVar(&flagScorePlayer, "player", "", "Only show this player's score")
}

func runScores(_ *cobra.Command, _ []string) {
	// Open score storage
	store, err := storage.Open(flagDBPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening scores database: %v\n", err)
		os.Exit(1)
	}
	defer store.Close()

	if flagClear {
		if err := store.ClearScores(); err != nil {
			fmt.Fprintf(os.Stderr, "Error clearing scores: %v\n", err)
			os.Exit(1)
		}
		logger.Info("ranking cleared")
		fmt.Println("Ranking cleared.")
		return
	}

	if flagInteractive {
		width, height := 80, 24
		if w, h, termErr := term.GetSize(int(os.Stdout.Fd())); termErr == nil {
			width = w
			height = h
		}
		if _, err := tui.RunScoreboard(store, flagScorePlayer, width, height); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	scores, err := loadScores(store)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error retrieving scores: %v\n", err)
		os.Exit(1)
	}

	// Display scores
	fmt.Println("Ranking - Perfect Potion")
	fmt.Println()

	if len(scores) == 0 {
		fmt.Println("No scores recorded yet.")
		fmt.Println()
		fmt.Println("Play 'potion play' to set the first high score!")
		return
	}

	// Print header
	fmt.Printf("  %-4s  %-20s  %-8s  %-5s  %-5s  %s\n", "Rank", "Player", "Score", "Level", "Time", "Date")
	fmt.Printf("  %-4s  %-20s  %-8s  %-5s  %-5s  %s\n", "----", "------", "-----", "-----", "----", "----")

	// Print scores
	for i, entry := range scores {
		played := potion.FormatDuration(time.Duration(entry.GameTime * float64(time.Second)))
		dateStr := entry.CreatedAt.Format("2006-01-02 15:04")
		fmt.Printf("  %-4d  %-20s  %-8d  %-5d  %-5s  %s\n",
			i+1, entry.PlayerName, entry.Score, entry.Level, played, dateStr)
	}

	// Show totals
	if stats, err := store.GetStats(); err == nil {
		fmt.Println()
		fmt.Printf("Players: %d  Best: %d  Average: %.0f\n", stats.Players, stats.HighScore, stats.AvgScore)
	}
}

// loadScores returns the ranking, or one player's entry if --player is set.
func loadScores(store *storage.Store) ([]storage.ScoreEntry, error) {
	if flagScorePlayer == "" {
		return store.HighScores(flagLimit)
	}

	p, err := store.GetPlayerByName(flagScorePlayer)
	if err != nil {
		return nil, err
	}
	return store.PlayerScores(p.ID, flagLimit)
}
