package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/perfect-potion/internal/storage"
)

var playersCmd = &cobra.Command{
	Use:   "players",
	Short: "Manage player profiles",
	Long: `List, add or remove players. Removing a player also removes
their scores.

Examples:
  potion players
  potion players add alice
  potion players rm alice`,
	Args: cobra.NoArgs,
	Run:  runPlayersList,
}

var playersAddCmd = &cobra.Command{
	Use:   "add <name>",
	Short: "Create a player",
	Args:  cobra.ExactArgs(1),
	Run:   runPlayersAdd,
}

var playersRmCmd = &cobra.Command{
	Use:     "rm <name>",
	Aliases: []string{"remove", "delete"},
	Short:   "Delete a player and their scores",
	Args:    cobra.ExactArgs(1),
	Run:     runPlayersRm,
}

func init() {
	playersCmd.AddCommand(playersAddCmd)
	playersCmd.AddCommand(playersRmCmd)
}

// openStore opens the scores database or exits.
func openStore() *storage.Store {
	store, err := storage.Open(flagDBPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening scores database: %v\n", err)
		os.Exit(1)
	}
	return store
}

func runPlayersList(_ *cobra.Command, _ []string) {
	store := openStore()
	defer store.Close()

	players, err := store.ListPlayers()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error listing players: %v\n", err)
		os.Exit(1)
	}

	if len(players) == 0 {
		fmt.Println("No players yet.")
		fmt.Println()
		fmt.Println("Run 'potion players add <name>' or pick '+ New player' in 'potion play'.")
		return
	}

	fmt.Printf("  %-20s  %-8s  %s\n", "Name", "Best", "Last played")
	fmt.Printf("  %-20s  %-8s  %s\n", "----", "----", "-----------")
	for _, p := range players {
		last := "never"
		if !p.LastPlayed.IsZero() {
			last = p.LastPlayed.Format("2006-01-02 15:04")
		}
		fmt.Printf("  %-20s  %-8d  %s\n", p.Name, p.BestScore, last)
	}
}

func runPlayersAdd(_ *cobra.Command, args []string) {
	store := openStore()
	defer store.Close()

	id, err := store.CreatePlayer(args[0])
	if errors.Is(err, storage.ErrPlayerExists) {
		fmt.Fprintf(os.Stderr, "Error: player %q already exists\n", args[0])
		store.Close()
		os.Exit(1)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error creating player: %v\n", err)
		store.Close()
		os.Exit(1)
	}

	logger.Info("player created", "id", id, "name", args[0])
	fmt.Printf("Created player %q.\n", args[0])
}

func runPlayersRm(_ *cobra.Command, args []string) {
	store := openStore()
	defer store.Close()

	p, err := store.GetPlayerByName(args[0])
	if err == nil {
		err = store.DeletePlayer(p.ID)
	}
	if errors.Is(err, storage.ErrPlayerNotFound) {
		fmt.Fprintf(os.Stderr, "Error: no player named %q\n", args[0])
		store.Close()
		os.Exit(1)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error deleting player: %v\n", err)
		store.Close()
		os.Exit(1)
	}

	logger.Info("player deleted", "id", p.ID, "name", p.Name)
	fmt.Printf("Deleted player %q and their scores.\n", p.Name)
}
