package tui

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	"github.com/charmbracelet/ssh"
	"github.com/charmbracelet/wish"
	"github.com/charmbracelet/wish/bubbletea"

	"github.com/vovakirdan/perfect-potion/internal/config"
	"github.com/vovakirdan/perfect-potion/internal/core"
	"github.com/vovakirdan/perfect-potion/internal/registry"
	"github.com/vovakirdan/perfect-potion/internal/storage"
)

// SSHServerConfig holds configuration for the SSH server.
type SSHServerConfig struct {
	// Address is the host:port to listen on (e.g., ":23234").
	Address string

	// HostKeyPath is the path to the host key file.
	// If empty, a key will be auto-generated at ~/.perfect-potion/host_key.
	HostKeyPath string

	// DBPath is the path to the scores database.
	DBPath string

	// GameID is the registered game every session plays.
	GameID string

	// TickRate is the simulation rate for every session.
	TickRate int

	// IdleTimeout is how long to wait before closing idle connections.
	IdleTimeout time.Duration

	// Logger receives server events. Nil logs to stderr.
	Logger *log.Logger
}

// DefaultSSHServerConfig returns a config with sensible defaults.
func DefaultSSHServerConfig() SSHServerConfig {
	return SSHServerConfig{
		Address:     ":23234",
		DBPath:      "~/.perfect-potion/potion.db",
		GameID:      "potion",
		TickRate:    60,
		IdleTimeout: 30 * time.Minute,
	}
}

// SSHServer wraps a Wish SSH server that hosts one game per session.
type SSHServer struct {
	config SSHServerConfig
	server *ssh.Server
	store  *storage.Store
	logger *log.Logger
}

// NewSSHServer creates a new SSH server with the given configuration.
func NewSSHServer(cfg SSHServerConfig) (*SSHServer, error) {
	if !registry.Exists(cfg.GameID) {
		return nil, fmt.Errorf("unknown game %q", cfg.GameID)
	}

	logger := cfg.Logger
	if logger == nil {
		logger = log.NewWithOptions(os.Stderr, log.Options{
			ReportTimestamp: true,
		})
	}
	logger = logger.WithPrefix("potion-ssh")

	// Open storage
	store, err := storage.Open(cfg.DBPath)
	if err != nil {
		logger.Warn("could not open scores database", "error", err)
		// Continue without storage
		store = nil
	}

	srv := &SSHServer{
		config: cfg,
		store:  store,
		logger: logger,
	}

	// Resolve host key path
	hostKeyPath := cfg.HostKeyPath
	if hostKeyPath == "" {
		dir := config.DataDir()
		if dir == "" {
			return nil, errors.New("cannot get home directory for host key")
		}
		hostKeyPath = filepath.Join(dir, "host_key")
	}

	// Ensure host key directory exists
	hostKeyDir := filepath.Dir(hostKeyPath)
	if mkdirErr := os.MkdirAll(hostKeyDir, 0o700); mkdirErr != nil {
		return nil, fmt.Errorf("cannot create host key directory: %w", mkdirErr)
	}

	// Create Wish server options
	opts := []ssh.Option{
		wish.WithAddress(cfg.Address),
		wish.WithHostKeyPath(hostKeyPath),
		wish.WithIdleTimeout(cfg.IdleTimeout),
		wish.WithMiddleware(
			bubbletea.Middleware(srv.teaHandler),
			srv.loggingMiddleware,
		),
	}

	// Create the server
	server, err := wish.NewServer(opts...)
	if err != nil {
		if store != nil {
			store.Close()
		}
		return nil, fmt.Errorf("cannot create SSH server: %w", err)
	}

	srv.server = server
	return srv, nil
}

// teaHandler creates a Bubble Tea program for each SSH session.
func (s *SSHServer) teaHandler(sshSession ssh.Session) (tea.Model, []tea.ProgramOption) {
	pty, _, ok := sshSession.Pty()
	if !ok {
		s.logger.Warn("no PTY requested", "user", sshSession.User())
		return nil, nil
	}

	// Create runtime config from PTY size
	cfg := core.RuntimeConfig{
		ScreenW:  pty.Window.Width,
		ScreenH:  pty.Window.Height,
		TickRate: s.config.TickRate,
		Seed:     time.Now().UnixNano(),
	}

	// The SSH user name is the player profile
	var player *storage.Player
	if s.store != nil {
		p, err := s.store.GetOrCreatePlayer(sshSession.User())
		if err != nil {
			s.logger.Warn("could not load player, playing as guest", "user", sshSession.User(), "error", err)
		} else {
			player = &p
		}
	}

	model, err := NewSessionModel(s.store, cfg, s.config.GameID, player)
	if err != nil {
		s.logger.Error("could not create session", "user", sshSession.User(), "error", err)
		return nil, nil
	}

	return model, []tea.ProgramOption{
		tea.WithAltScreen(),
	}
}

// loggingMiddleware logs SSH session events.
func (s *SSHServer) loggingMiddleware(next ssh.Handler) ssh.Handler {
	return func(sshSession ssh.Session) {
		start := time.Now()
		s.logger.Info("session started",
			"user", sshSession.User(),
			"remote", sshSession.RemoteAddr().String(),
		)
		next(sshSession)
		s.logger.Info("session ended",
			"user", sshSession.User(),
			"remote", sshSession.RemoteAddr().String(),
			"duration", time.Since(start).Round(time.Second),
		)
	}
}

// ListenAndServe starts the SSH server and blocks until shutdown.
func (s *SSHServer) ListenAndServe() error {
	s.logger.Info("starting SSH server", "address", s.config.Address, "game", s.config.GameID)

	// Setup signal handling for graceful shutdown
	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGTERM)

	go func() {
		if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, ssh.ErrServerClosed) {
			s.logger.Error("server error", "error", err)
		}
	}()

	<-done
	s.logger.Info("shutting down...")
	return s.Shutdown()
}

// Shutdown gracefully stops the server.
func (s *SSHServer) Shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if s.store != nil {
		s.store.Close()
	}

	return s.server.Shutdown(ctx)
}

// Addr returns the server's listen address string.
func (s *SSHServer) Addr() string {
	return s.config.Address
}

// SessionModel manages a remote session: game -> ranking -> game.
// This is the top-level model used for SSH sessions.
type SessionModel struct {
	store     *storage.Store
	config    core.RuntimeConfig
	gameID    string
	player    *storage.Player
	gameModel GameModel
	ranking   ScoreboardModel
	inRanking bool
	quitting  bool
}

// NewSessionModel creates a session playing gameID as player. A nil player
// plays as guest.
func NewSessionModel(store *storage.Store, cfg core.RuntimeConfig, gameID string, player *storage.Player) (SessionModel, error) {
	m := SessionModel{
		store:  store,
		config: cfg,
		gameID: gameID,
		player: player,
	}
	gm, err := m.newGame()
	if err != nil {
		return SessionModel{}, err
	}
	m.gameModel = gm
	return m, nil
}

// newGame builds a fresh game for the session's player.
func (m *SessionModel) newGame() (GameModel, error) {
	game, err := registry.Create(m.gameID)
	if err != nil {
		return GameModel{}, err
	}

	// Pick up the best score saved by the previous run
	if m.player != nil && m.store != nil {
		if p, err := m.store.GetPlayer(m.player.ID); err == nil {
			m.player = &p
		}
	}
	AttachPlayer(game, m.store, m.player)

	cfg := m.config
	cfg.Seed = time.Now().UnixNano()
	return NewGameModel(game, cfg), nil
}

// playerName returns the name highlighted in the ranking.
func (m SessionModel) playerName() string {
	if m.player == nil {
		return ""
	}
	return m.player.Name
}

// Init initializes the session.
func (m SessionModel) Init() tea.Cmd {
	return m.gameModel.Init()
}

// Update handles messages for the session.
func (m SessionModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	// Handle window resize globally
	if wsm, ok := msg.(tea.WindowSizeMsg); ok {
		m.config.ScreenW = wsm.Width
		m.config.ScreenH = wsm.Height
	}

	if m.inRanking {
		return m.updateRanking(msg)
	}
	return m.updateGame(msg)
}

// updateGame handles updates while playing.
func (m SessionModel) updateGame(msg tea.Msg) (tea.Model, tea.Cmd) {
	newModel, cmd := m.gameModel.Update(msg)
	if gameModel, ok := newModel.(GameModel); ok {
		m.gameModel = gameModel
	}

	if m.gameModel.IsQuitting() {
		m.quitting = true
		return m, tea.Quit
	}

	// Leaving a finished or paused game shows the ranking
	if m.gameModel.WantsRanking() || m.gameModel.BackToMenu() {
		m.inRanking = true
		m.ranking = NewScoreboardModel(m.store, m.playerName(), m.config.ScreenW, m.config.ScreenH)
		return m, m.ranking.Init()
	}

	return m, cmd
}

// updateRanking handles updates while the ranking is shown.
func (m SessionModel) updateRanking(msg tea.Msg) (tea.Model, tea.Cmd) {
	// Ticks still in flight from the last game are dropped
	if _, ok := msg.(TickMsg); ok {
		return m, nil
	}

	newModel, cmd := m.ranking.Update(msg)
	if ranking, ok := newModel.(ScoreboardModel); ok {
		m.ranking = ranking
	}

	if m.ranking.IsQuitting() {
		m.quitting = true
		return m, tea.Quit
	}

	if m.ranking.IsGoingBack() {
		gm, err := m.newGame()
		if err != nil {
			m.quitting = true
			return m, tea.Quit
		}
		m.gameModel = gm
		m.inRanking = false
		return m, m.gameModel.Init()
	}

	return m, cmd
}

// View renders the current view.
func (m SessionModel) View() string {
	if m.quitting {
		return ""
	}

	if m.inRanking {
		return m.ranking.View()
	}
	return m.gameModel.View()
}
