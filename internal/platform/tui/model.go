package tui

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/vovakirdan/perfect-potion/internal/config"
	"github.com/vovakirdan/perfect-potion/internal/core"
	"github.com/vovakirdan/perfect-potion/internal/games/potion"
	"github.com/vovakirdan/perfect-potion/internal/registry"
	"github.com/vovakirdan/perfect-potion/internal/storage"
)

// profiled is implemented by games that attribute their score to a player.
type profiled interface {
	SetPlayer(id int64, name string, bestScore int)
	SetRecorder(r potion.ScoreRecorder)
}

// AttachPlayer makes game save its final score for player. A nil player
// plays as a guest whose score is not saved.
func AttachPlayer(game registry.Game, store *storage.Store, player *storage.Player) {
	g, ok := game.(profiled)
	if !ok {
		return
	}
	if store != nil {
		g.SetRecorder(store)
	}
	if player == nil {
		g.SetPlayer(0, "guest", 0)
		return
	}
	g.SetPlayer(player.ID, player.Name, player.BestScore)
}

// GameModel is the Bubble Tea model running one game.
type GameModel struct {
	game         registry.Game
	screen       *core.Screen
	config       core.RuntimeConfig
	keyMapper    *KeyMapper
	held         *HeldKeys
	inputFrame   core.InputFrame
	gameState    core.GameState
	quitting     bool
	backToMenu   bool
	wantsRanking bool
	standalone   bool // Quit the program instead of handing control back
}

// NewGameModel creates a model for game. The caller attaches the player
// before the first tick.
func NewGameModel(game registry.Game, cfg core.RuntimeConfig) GameModel {
	// Use time-based seed if not specified
	if cfg.Seed == 0 {
		cfg.Seed = time.Now().UnixNano()
	}

	return GameModel{
		game:       game,
		screen:     core.NewScreen(cfg.ScreenW, cfg.ScreenH),
		config:     cfg,
		keyMapper:  NewKeyMapper(),
		held:       NewHeldKeys(DefaultHoldWindow),
		inputFrame: core.NewInputFrame(),
	}
}

// Init initializes the model and starts the game.
func (m GameModel) Init() tea.Cmd {
	m.game.Reset(m.config)
	return tickCmd(m.config.TickRate)
}

// Update handles messages and updates the model state.
func (m GameModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		// The world has a fixed size, only the viewport changes
		m.config.ScreenW = msg.Width
		m.config.ScreenH = msg.Height
		m.screen.Resize(msg.Width, msg.Height)
		return m, nil

	case TickMsg:
		return m.handleTick(time.Time(msg))
	}

	return m, nil
}

// handleKey processes keyboard input.
func (m GameModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+s":
		m.saveScreenshot()
		return m, nil
	case "tab":
		if m.gameState.GameOver || m.gameState.Paused {
			m.wantsRanking = true
			return m, m.leave()
		}
		return m, nil
	}

	action, isQuit := m.keyMapper.MapKey(msg)
	switch {
	case isQuit:
		m.quitting = true
		return m, tea.Quit
	case action == core.ActionBack:
		if m.gameState.GameOver || m.gameState.Paused {
			m.backToMenu = true
			return m, m.leave()
		}
	case isMovement(action):
		m.held.Press(action, time.Now())
	case action != core.ActionNone:
		m.inputFrame.Set(action)
	}

	return m, nil
}

// leave quits a standalone program; embedded models are left by their parent.
func (m GameModel) leave() tea.Cmd {
	if m.standalone {
		return tea.Quit
	}
	return nil
}

// handleTick processes simulation ticks.
func (m GameModel) handleTick(now time.Time) (tea.Model, tea.Cmd) {
	// Restart with a fresh seed
	if m.inputFrame.Has(core.ActionRestart) && m.gameState.GameOver {
		m.config.Seed = time.Now().UnixNano()
		m.game.Reset(m.config)
		m.gameState = m.game.State()
		m.inputFrame.Clear()
		m.held.Release()
		return m, tickCmd(m.config.TickRate)
	}

	m.held.Apply(&m.inputFrame, now)

	result := m.game.Step(m.inputFrame)
	m.gameState = result.State

	m.inputFrame.Clear()
	return m, tickCmd(m.config.TickRate)
}

// saveScreenshot saves the current screen to a file.
func (m *GameModel) saveScreenshot() {
	m.game.Render(m.screen)

	dir := filepath.Join(config.DataDir(), "screenshots")
	//nolint:errcheck // Best-effort directory creation
	os.MkdirAll(dir, 0o755)

	timestamp := time.Now().Format("20060102_150405")
	path := filepath.Join(dir, fmt.Sprintf("%s_%s.txt", m.game.ID(), timestamp))

	//nolint:errcheck // Best-effort save, game continues regardless
	os.WriteFile(path, []byte(m.screen.String()), 0o600)
}

// View renders the current state to a string for display.
func (m GameModel) View() string {
	if m.quitting {
		return ""
	}

	m.game.Render(m.screen)
	return RenderScreen(m.screen)
}

// IsQuitting returns true if user requested to quit entirely.
func (m GameModel) IsQuitting() bool {
	return m.quitting
}

// BackToMenu returns true if user requested to go back to the player menu.
func (m GameModel) BackToMenu() bool {
	return m.backToMenu
}

// WantsRanking returns true if user requested the ranking screen.
func (m GameModel) WantsRanking() bool {
	return m.wantsRanking
}

// GameResult tells the caller where to go after a game.
type GameResult struct {
	Config       core.RuntimeConfig
	BackToMenu   bool
	WantsRanking bool
}

// Run plays game in the terminal until the user quits or leaves it.
func Run(game registry.Game, cfg core.RuntimeConfig) (GameResult, error) {
	model := NewGameModel(game, cfg)
	model.standalone = true

	p := tea.NewProgram(
		model,
		tea.WithAltScreen(), // Use alternate screen buffer
	)

	finalModel, err := p.Run()
	if err != nil {
		return GameResult{Config: cfg}, err
	}

	m, ok := finalModel.(GameModel)
	if !ok {
		return GameResult{Config: cfg}, nil
	}
	return GameResult{
		Config:       m.config,
		BackToMenu:   m.backToMenu,
		WantsRanking: m.wantsRanking,
	}, nil
}
