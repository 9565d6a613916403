package tui

import (
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/vovakirdan/perfect-potion/internal/core"
	"github.com/vovakirdan/perfect-potion/internal/storage"
)

// maxNameLength bounds player names typed in the menu.
const maxNameLength = 20

// MenuItem is a row of the player menu.
type MenuItem struct {
	Player *storage.Player // Nil for the guest and "new player" rows
	Label  string
	NewRow bool
}

// MenuModel is the Bubble Tea model for the player picker.
type MenuModel struct {
	items       []MenuItem
	cursor      int
	width       int
	height      int
	store       *storage.Store
	config      core.RuntimeConfig
	keyMapper   *KeyMapper
	nameInput   textinput.Model
	naming      bool // Typing a new player's name
	message     string
	quitting    bool
	selected    *MenuItem
	openRanking bool
}

// NewMenuModel creates a player menu listing the store's players.
func NewMenuModel(store *storage.Store, cfg core.RuntimeConfig) MenuModel {
	ti := textinput.New()
	ti.Placeholder = "Alchemist"
	ti.CharLimit = maxNameLength
	ti.Width = maxNameLength
	ti.Prompt = "Name: "

	m := MenuModel{
		width:     cfg.ScreenW,
		height:    cfg.ScreenH,
		store:     store,
		config:    cfg,
		keyMapper: NewKeyMapper(),
		nameInput: ti,
	}
	m.loadPlayers()
	return m
}

// loadPlayers rebuilds the menu rows from the store.
func (m *MenuModel) loadPlayers() {
	m.items = m.items[:0]

	if m.store != nil {
		players, err := m.store.ListPlayers()
		if err != nil {
			m.message = "Could not load players"
		}
		for i := range players {
			p := players[i]
			m.items = append(m.items, MenuItem{
				Player: &p,
				Label:  fmt.Sprintf("%-*s  best %d", maxNameLength, p.Name, p.BestScore),
			})
		}
		m.items = append(m.items, MenuItem{Label: "+ New player", NewRow: true})
	}
	m.items = append(m.items, MenuItem{Label: "Play as guest (score not saved)"})

	m.cursor = core.Clamp(m.cursor, 0, len(m.items)-1)
}

// Init initializes the menu model.
func (m MenuModel) Init() tea.Cmd {
	return nil
}

// Update handles messages for the menu.
func (m MenuModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if m.naming {
			return m.handleNameKey(msg)
		}
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.config.ScreenW = msg.Width
		m.config.ScreenH = msg.Height
		return m, nil
	}

	if m.naming {
		var cmd tea.Cmd
		m.nameInput, cmd = m.nameInput.Update(msg)
		return m, cmd
	}
	return m, nil
}

// handleKey processes keyboard input for menu navigation.
func (m MenuModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch m.keyMapper.MapKeyToMenuAction(msg) {
	case MenuActionQuit, MenuActionBack:
		m.quitting = true
		return m, tea.Quit

	case MenuActionUp:
		if m.cursor > 0 {
			m.cursor--
		}

	case MenuActionDown:
		if m.cursor < len(m.items)-1 {
			m.cursor++
		}

	case MenuActionSelect:
		item := m.items[m.cursor]
		if item.NewRow {
			m.naming = true
			m.message = ""
			m.nameInput.SetValue("")
			cmd := m.nameInput.Focus()
			return m, cmd
		}
		m.selected = &item
		return m, tea.Quit

	case MenuActionRanking:
		m.openRanking = true
		return m, tea.Quit
	}

	return m, nil
}

// handleNameKey feeds the name input until the name is confirmed or cancelled.
func (m MenuModel) handleNameKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyCtrlC:
		m.quitting = true
		return m, tea.Quit

	case tea.KeyEsc:
		m.naming = false
		m.nameInput.Blur()
		return m, nil

	case tea.KeyEnter:
		return m.createPlayer()
	}

	var cmd tea.Cmd
	m.nameInput, cmd = m.nameInput.Update(msg)
	return m, cmd
}

// createPlayer stores the typed name and starts a game with it.
func (m MenuModel) createPlayer() (tea.Model, tea.Cmd) {
	name := strings.TrimSpace(m.nameInput.Value())
	if name == "" {
		m.message = "Name cannot be empty"
		return m, nil
	}

	id, err := m.store.CreatePlayer(name)
	switch {
	case errors.Is(err, storage.ErrPlayerExists):
		m.message = fmt.Sprintf("%q already exists", name)
		return m, nil
	case err != nil:
		m.message = "Could not create player"
		return m, nil
	}

	p, err := m.store.GetPlayer(id)
	if err != nil {
		m.message = "Could not load player"
		return m, nil
	}

	m.naming = false
	m.nameInput.Blur()
	m.selected = &MenuItem{Player: &p, Label: p.Name}
	return m, tea.Quit
}

// View renders the menu.
func (m MenuModel) View() string {
	if m.quitting {
		return ""
	}

	titleStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("213"))
	cursorStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("229"))
	dimStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	warnStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("9"))

	var b strings.Builder

	b.WriteString("\n")
	b.WriteString(centerText(titleStyle.Render("~ P E R F E C T   P O T I O N ~"), m.width))
	b.WriteString("\n\n")
	b.WriteString(centerText("Who is brewing today?", m.width))
	b.WriteString("\n\n")

	for i, item := range m.items {
		line := "  " + item.Label
		if i == m.cursor {
			line = cursorStyle.Render("> " + item.Label)
		}
		b.WriteString(centerText(line, m.width))
		b.WriteString("\n")
	}

	if m.naming {
		b.WriteString("\n")
		b.WriteString(centerText(m.nameInput.View(), m.width))
		b.WriteString("\n")
	}

	if m.message != "" {
		b.WriteString("\n")
		b.WriteString(centerText(warnStyle.Render(m.message), m.width))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	controls := "Up/Down: Navigate  |  Enter: Select  |  Tab: Ranking  |  Q: Quit"
	if m.naming {
		controls = "Enter: Create  |  Esc: Cancel"
	}
	b.WriteString(centerText(dimStyle.Render(controls), m.width))
	b.WriteString("\n")

	return b.String()
}

// Selected returns the selected menu item, or nil if none selected.
func (m MenuModel) Selected() *MenuItem {
	return m.selected
}

// IsQuitting returns true if user requested to quit.
func (m MenuModel) IsQuitting() bool {
	return m.quitting
}

// WantsRanking returns true if user requested the ranking screen.
func (m MenuModel) WantsRanking() bool {
	return m.openRanking
}

// Config returns the current runtime config (may have been updated by resize).
func (m MenuModel) Config() core.RuntimeConfig {
	return m.config
}

// MenuResult holds the result of running the menu.
type MenuResult struct {
	Player       *storage.Player // Nil plays as guest
	Config       core.RuntimeConfig
	WantsRanking bool
	Quit         bool
}

// RunMenu runs the player menu and returns the selection result.
func RunMenu(store *storage.Store, cfg core.RuntimeConfig) (MenuResult, error) {
	model := NewMenuModel(store, cfg)

	p := tea.NewProgram(
		model,
		tea.WithAltScreen(),
	)

	finalModel, err := p.Run()
	if err != nil {
		return MenuResult{Config: cfg}, err
	}

	m, ok := finalModel.(MenuModel)
	if !ok {
		return MenuResult{Config: cfg, Quit: true}, nil
	}

	result := MenuResult{Config: m.Config()}

	switch {
	case m.WantsRanking():
		result.WantsRanking = true
	case m.IsQuitting() || m.Selected() == nil:
		result.Quit = true
	default:
		result.Player = m.Selected().Player
	}

	return result, nil
}
