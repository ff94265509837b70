package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"

	"github.com/vovakirdan/tui-puyo/internal/storage"
)

// HistoryKeyMap defines the key bindings for the history browser.
type HistoryKeyMap struct {
	Replay   key.Binding
	Favorite key.Binding
	Delete   key.Binding
	Note     key.Binding
	Switch   key.Binding
	Back     key.Binding
	Quit     key.Binding
}

// ShortHelp returns key bindings for the short help view.
func (k HistoryKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Replay, k.Favorite, k.Delete, k.Note, k.Switch, k.Back}
}

// FullHelp returns key bindings for the full help view.
func (k HistoryKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Replay, k.Favorite, k.Delete, k.Note},
		{k.Switch, k.Back, k.Quit},
	}
}

// DefaultHistoryKeyMap returns default key bindings.
func DefaultHistoryKeyMap() HistoryKeyMap {
	return HistoryKeyMap{
		Replay:   key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "replay")),
		Favorite: key.NewBinding(key.WithKeys("f"), key.WithHelp("f", "favorite")),
		Delete:   key.NewBinding(key.WithKeys("d", "delete"), key.WithHelp("d", "delete")),
		Note:     key.NewBinding(key.WithKeys("n"), key.WithHelp("n", "note")),
		Switch:   key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "history/favorites")),
		Back:     key.NewBinding(key.WithKeys("esc", "b"), key.WithHelp("esc/b", "back")),
		Quit:     key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

// record is one row of either list.
type record struct {
	id    string
	entry storage.HistoryEntry
}

// ReplayRequest names the entry the player wants to watch.
type ReplayRequest struct {
	Title string
	Entry storage.HistoryEntry
}

// HistoryModel browses recorded games and favorites.
type HistoryModel struct {
	store     *storage.Store
	logger    *log.Logger
	favorites bool
	records   []record
	table     table.Model
	input     textinput.Model
	editing   bool
	help      help.Model
	keys      HistoryKeyMap
	status    string
	width     int
	height    int
	quitting  bool
	goingBack bool
	replay    *ReplayRequest
}

// NewHistoryModel creates a browser showing history, or favorites when favorites is set.
func NewHistoryModel(store *storage.Store, favorites bool, width, height int, logger *log.Logger) HistoryModel {
	if logger == nil {
		logger = log.Default()
	}
	ti := textinput.New()
	ti.Placeholder = "note #tag"
	ti.CharLimit = 120
	ti.Width = 40

	m := HistoryModel{
		store:     store,
		logger:    logger,
		favorites: favorites,
		input:     ti,
		help:      help.New(),
		keys:      DefaultHistoryKeyMap(),
		width:     width,
		height:    height,
	}
	m.table = newTable([]table.Column{
		{Title: "Played", Width: 13},
		{Title: "Variant", Width: 10},
		{Title: "Score", Width: 8},
		{Title: "Chain", Width: 5},
		{Title: "Drops", Width: 5},
		{Title: "Note", Width: 24},
	}, height-9)
	m.reload()
	return m
}

// reload refreshes the rows from the store.
func (m *HistoryModel) reload() {
	m.records = m.records[:0]
	if m.favorites {
		favs, err := m.store.ListFavorites()
		if err != nil {
			m.fail("cannot list favorites", err)
		}
		for _, f := range favs {
			m.records = append(m.records, record{id: f.ID, entry: f.HistoryEntry})
		}
	} else {
		entries, err := m.store.ListHistory()
		if err != nil {
			m.fail("cannot list history", err)
		}
		for _, e := range entries {
			m.records = append(m.records, record{id: e.ID, entry: e})
		}
	}

	rows := make([]table.Row, len(m.records))
	for i, r := range m.records {
		rows[i] = table.Row{
			r.entry.LastPlayedAt.Format("Jan 02 15:04"),
			r.entry.GameID,
			fmt.Sprintf("%d", r.entry.Score),
			fmt.Sprintf("%d", r.entry.MaxChain),
			fmt.Sprintf("%d", r.entry.DropCount),
			formatNote(r.entry.Note, r.entry.Tags),
		}
	}
	m.table.SetRows(rows)
	if c := m.table.Cursor(); c >= len(rows) {
		m.table.SetCursor(max(len(rows)-1, 0))
	}
}

func (m *HistoryModel) fail(msg string, err error) {
	m.logger.Warn(msg, "err", err)
	m.status = msg
}

func (m HistoryModel) current() (record, bool) {
	c := m.table.Cursor()
	if c < 0 || c >= len(m.records) {
		return record{}, false
	}
	return m.records[c], true
}

// Init initializes the history model.
func (m HistoryModel) Init() tea.Cmd {
	return nil
}

// Update handles messages for the history browser.
func (m HistoryModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		if m.editing {
			return m.updateNote(msg)
		}
		if handled, cmd := m.handleKey(msg); handled {
			return m, cmd
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.table.SetHeight(max(msg.Height-9, 3))
		m.help.Width = msg.Width
		return m, nil
	}

	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

func (m *HistoryModel) handleKey(msg tea.KeyMsg) (bool, tea.Cmd) {
	m.status = ""
	switch {
	case key.Matches(msg, m.keys.Quit):
		m.quitting = true
		return true, tea.Quit

	case key.Matches(msg, m.keys.Back):
		m.goingBack = true

	case key.Matches(msg, m.keys.Switch):
		m.favorites = !m.favorites
		m.table.SetCursor(0)
		m.reload()

	case key.Matches(msg, m.keys.Replay):
		if r, ok := m.current(); ok {
			m.replay = &ReplayRequest{
				Title: fmt.Sprintf("%s  %s", r.entry.GameID, r.entry.LastPlayedAt.Format("Jan 02 15:04")),
				Entry: r.entry,
			}
		}

	case key.Matches(msg, m.keys.Favorite):
		r, ok := m.current()
		if !ok {
			break
		}
		if m.favorites {
			if err := m.store.RemoveFavorite(r.id); err != nil {
				m.fail("cannot remove favorite", err)
				break
			}
			m.status = "Removed from favorites"
		} else {
			if _, err := m.store.AddFavorite(r.id); err != nil {
				m.fail("cannot add favorite", err)
				break
			}
			m.status = "Added to favorites"
		}
		m.reload()

	case key.Matches(msg, m.keys.Delete):
		r, ok := m.current()
		if !ok {
			break
		}
		var err error
		if m.favorites {
			err = m.store.RemoveFavorite(r.id)
		} else {
			err = m.store.DeleteHistory(r.id)
		}
		if err != nil {
			m.fail("cannot delete entry", err)
			break
		}
		m.reload()

	case key.Matches(msg, m.keys.Note):
		r, ok := m.current()
		if !ok {
			break
		}
		m.editing = true
		m.input.SetValue(formatNote(r.entry.Note, r.entry.Tags))
		m.input.CursorEnd()
		return true, m.input.Focus()

	default:
		return false, nil
	}
	return true, nil
}

// updateNote feeds keys to the note editor.
func (m HistoryModel) updateNote(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.editing = false
		m.input.Blur()
		return m, nil

	case "enter":
		m.editing = false
		m.input.Blur()
		r, ok := m.current()
		if !ok {
			return m, nil
		}
		note, tags := ParseNote(m.input.Value())
		var err error
		if m.favorites {
			err = m.store.UpdateFavoriteNote(r.id, note, tags)
		} else {
			err = m.store.UpdateHistoryNote(r.id, note, tags)
		}
		if err != nil {
			m.fail("cannot save note", err)
		}
		m.reload()
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// ParseNote splits "some text #tag #other" into the note text and its tags.
// Tags keep their order, lose the '#' and are deduplicated.
func ParseNote(s string) (string, []string) {
	var (
		words []string
		tags  []string
		seen  = map[string]bool{}
	)
	for _, w := range strings.Fields(s) {
		tag, ok := strings.CutPrefix(w, "#")
		if !ok || tag == "" {
			words = append(words, w)
			continue
		}
		if !seen[tag] {
			seen[tag] = true
			tags = append(tags, tag)
		}
	}
	return strings.Join(words, " "), tags
}

// formatNote is the inverse of ParseNote.
func formatNote(note string, tags []string) string {
	parts := make([]string, 0, len(tags)+1)
	if note != "" {
		parts = append(parts, note)
	}
	for _, t := range tags {
		parts = append(parts, "#"+t)
	}
	return strings.Join(parts, " ")
}

// View renders the history browser.
func (m HistoryModel) View() string {
	if m.quitting || m.goingBack {
		return ""
	}

	var b strings.Builder
	b.WriteString("\n")
	title, other := "HISTORY", "favorites"
	if m.favorites {
		title, other = "FAVORITES", "history"
	}
	b.WriteString(centerText(titleStyle.Render(title), m.width))
	b.WriteString("\n")
	b.WriteString(centerText(dimStyle.Render("tab: "+other), m.width))
	b.WriteString("\n\n")

	content := m.table.View()
	if len(m.records) == 0 {
		content = dimStyle.Italic(true).Padding(2, 4).Render("Nothing here yet.")
	}
	b.WriteString(centerText(panelStyle.Render(content), m.width))
	b.WriteString("\n")

	switch {
	case m.editing:
		b.WriteString(" Note: " + m.input.View())
	case m.status != "":
		b.WriteString(" " + cursorStyle.Render(m.status))
	}
	b.WriteString("\n")
	b.WriteString(helpStyle.Render(m.help.View(m.keys)))
	return b.String()
}

// ReplayRequested returns the entry chosen for replay, or nil.
func (m HistoryModel) ReplayRequested() *ReplayRequest {
	return m.replay
}

// ClearReplay forgets a handled replay request.
func (m *HistoryModel) ClearReplay() {
	m.replay = nil
}

// IsGoingBack returns true if user wants to go back to menu.
func (m HistoryModel) IsGoingBack() bool {
	return m.goingBack
}

// IsQuitting returns true if user wants to quit entirely.
func (m HistoryModel) IsQuitting() bool {
	return m.quitting
}
