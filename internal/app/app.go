package app

import (
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"

	"github.com/mliang/daylist/internal/keys"
	"github.com/mliang/daylist/internal/model"
	"github.com/mliang/daylist/internal/session"
	"github.com/mliang/daylist/internal/store"
	"github.com/mliang/daylist/internal/ui"
	"github.com/mliang/daylist/internal/ui/command"
	"github.com/mliang/daylist/internal/ui/confirm"
	helpview "github.com/mliang/daylist/internal/ui/help"
	"github.com/mliang/daylist/internal/ui/subtaskform"
	"github.com/mliang/daylist/internal/ui/todoform"
	"github.com/mliang/daylist/internal/ui/todolist"
)

// debounceDelay is the quiet period after the last username keystroke
// before a reload fires.
const debounceDelay = 500 * time.Millisecond

// noticeDelay is how long a one-shot notice stays in the status bar.
const noticeDelay = 5 * time.Second

// ViewState represents the current active view in the application.
type ViewState int

const (
	ViewList ViewState = iota
	ViewTodoCreate
	ViewSubTaskCreate
	ViewDeleteConfirm
	ViewHelp
	ViewCommand
)

// Model is the root Bubble Tea model that manages view routing, layout,
// the session state container, and access to the persistence layer.
type Model struct {
	currentView  ViewState
	previousView ViewState
	layout       ui.Layout
	store        store.Store
	sess         *session.Session
	keys         *keys.KeyMap
	logger       *log.Logger

	listView    todolist.Model
	todoForm    todoform.Model
	subTaskForm subtaskform.Model
	confirmView confirm.Model
	helpView    helpview.Model
	commandView command.Model

	// Drafts preserved across failed submissions so the dialogs reopen
	// with what the user typed.
	pendingTitle     string
	pendingText      string
	pendingTodoID    string
	pendingTodoTitle string

	notice      *model.Notice
	noticeSeq   int
	debounceSeq int
	ready       bool
}

// New creates a new root application model with the given store.
func New(s store.Store, logger *log.Logger) Model {
	k := keys.DefaultKeyMap()

	return Model{
		currentView: ViewList,
		store:       s,
		sess:        session.New(),
		keys:        k,
		logger:      logger,
		listView:    todolist.New(k, 80, 24),
		todoForm:    todoform.New(80, 24),
		subTaskForm: subtaskform.New(80, 24),
		confirmView: confirm.New(80, 24),
		helpView:    helpview.New(k, 80, 24),
		commandView: command.New(80, 24),
	}
}

// Init returns the initial command.
func (m Model) Init() tea.Cmd {
	return m.listView.Init()
}

// Update handles messages and dispatches to the active view.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.layout = ui.NewLayout(msg.Width, msg.Height)
		m.ready = true
		contentWidth := m.layout.ContentWidth()
		contentHeight := m.layout.ContentHeight()
		m.listView.SetSize(contentWidth, contentHeight)
		m.todoForm.SetSize(contentWidth, contentHeight)
		m.subTaskForm.SetSize(contentWidth, contentHeight)
		m.confirmView.SetSize(contentWidth, contentHeight)
		m.helpView.SetSize(contentWidth, contentHeight)
		m.commandView.SetSize(contentWidth, contentHeight)
		// Forward to active view so huh forms can calculate their layout.
		return m.updateActiveView(msg)

	case todolist.UsernameChangedMsg:
		// Local state updates immediately; the fetch waits out the
		// debounce window. Each keystroke supersedes the previous timer.
		m.sess.SetUsername(msg.Value)
		m.debounceSeq++
		return m, m.scheduleReload()

	case debounceMsg:
		if msg.seq != m.debounceSeq {
			return m, nil
		}
		return m.startReload()

	case todolist.RefreshMsg:
		m.debounceSeq++
		return m.startReload()

	case todosLoadedMsg:
		m.sess.SetLoading(false)
		m.listView.SetLoading(false)
		var cmd tea.Cmd
		if msg.err != nil {
			m.logger.Error("loading todos failed", "err", msg.err)
			m.sess.TodosLoaded(nil)
			cmd = m.showNotice("Loading your list failed. Check the connection and press r to retry.")
		} else if msg.user == nil {
			// Unknown username: no data yet, not an error.
			m.sess.TodosLoaded(nil)
		} else {
			m.sess.TodosLoaded(msg.user.Todos)
		}
		m.listView.SetTodos(m.sess.Todos())
		return m, cmd

	case todolist.NewTodoMsg:
		m.previousView = m.currentView
		m.currentView = ViewTodoCreate
		m.pendingTitle = ""
		return m, m.todoForm.Start(m.sess.Username(), "")

	case todoform.TodoSubmitMsg:
		username := strings.TrimSpace(m.sess.Username())
		title := strings.TrimSpace(msg.Title)
		if username == "" || title == "" {
			m.currentView = ViewList
			return m, nil
		}
		m.pendingTitle = msg.Title
		m.sess.SetSubmitting(true)
		return m, m.addTodo(username, title)

	case todoform.TodoFormCancelMsg:
		m.currentView = ViewList
		return m, nil

	case todoAddedMsg:
		m.sess.SetSubmitting(false)
		if msg.err != nil {
			m.logger.Error("creating todo failed", "err", msg.err)
			// Keep the dialog open with the draft; close only on success.
			cmd := m.showNotice("Creating the todo failed: " + msg.err.Error())
			return m, tea.Batch(cmd, m.todoForm.Start(m.sess.Username(), m.pendingTitle))
		}
		m.sess.TodoAdded(*msg.todo)
		m.listView.SetTodos(m.sess.Todos())
		m.pendingTitle = ""
		m.currentView = ViewList
		return m, nil

	case todolist.NewSubTaskMsg:
		m.previousView = m.currentView
		m.currentView = ViewSubTaskCreate
		m.pendingTodoID = msg.TodoID
		m.pendingTodoTitle = msg.TodoTitle
		m.pendingText = ""
		return m, m.subTaskForm.Start(msg.TodoID, msg.TodoTitle, "")

	case subtaskform.SubTaskSubmitMsg:
		text := strings.TrimSpace(msg.Text)
		if text == "" || msg.TodoID == "" {
			m.currentView = ViewList
			return m, nil
		}
		m.pendingText = msg.Text
		m.sess.SetSubmitting(true)
		return m, m.addSubTask(msg.TodoID, text)

	case subtaskform.SubTaskFormCancelMsg:
		m.currentView = ViewList
		return m, nil

	case subTaskAddedMsg:
		m.sess.SetSubmitting(false)
		if msg.err != nil {
			m.logger.Error("creating sub-task failed", "err", msg.err)
			cmd := m.showNotice("Adding the sub-task failed: " + msg.err.Error())
			return m, tea.Batch(cmd,
				m.subTaskForm.Start(m.pendingTodoID, m.pendingTodoTitle, m.pendingText))
		}
		changed, completed := m.sess.SubTaskAdded(msg.todoID, *msg.sub)
		m.listView.SetTodos(m.sess.Todos())
		m.pendingText = ""
		m.currentView = ViewList
		if changed {
			// An incomplete sub-task landed on an all-complete todo (or
			// vice versa): persist the recomputed parent value too.
			return m, m.syncTodoCompleted(msg.todoID, completed)
		}
		return m, nil

	case todoCompletedSyncedMsg:
		if msg.err != nil {
			m.logger.Error("syncing todo completion failed",
				"todo_id", msg.todoID, "err", msg.err)
			return m, m.showNotice("Updating the todo's completion state failed.")
		}
		return m, nil

	case todolist.DeleteTodoMsg:
		m.previousView = m.currentView
		m.currentView = ViewDeleteConfirm
		return m, m.confirmView.Start(msg.TodoID, msg.TodoTitle)

	case confirm.DeleteConfirmedMsg:
		m.currentView = ViewList
		return m, m.deleteTodo(msg.TodoID)

	case confirm.DeleteCancelledMsg:
		m.currentView = ViewList
		return m, nil

	case todoDeletedMsg:
		if msg.err != nil {
			// Non-optimistic: nothing was removed locally, so nothing
			// needs restoring.
			m.logger.Error("deleting todo failed", "id", msg.id, "err", msg.err)
			return m, m.showNotice("Deleting the todo failed: " + msg.err.Error())
		}
		m.sess.TodoDeleted(msg.id)
		m.listView.SetTodos(m.sess.Todos())
		return m, nil

	case todolist.ToggleSubTaskMsg:
		upd, ok := m.sess.BeginToggle(msg.SubTaskID)
		if !ok {
			// Unknown sub-task or a toggle already in flight.
			return m, nil
		}
		m.listView.SetTodos(m.sess.Todos())
		return m, m.toggleSubTask(upd)

	case subTaskToggledMsg:
		m.sess.FinishToggle(msg.subTaskID, msg.err != nil)
		var cmd tea.Cmd
		if msg.err != nil {
			m.logger.Error("toggling sub-task failed",
				"sub_task_id", msg.subTaskID, "err", msg.err)
			cmd = m.showNotice("Updating failed; the change was reverted. Please retry.")
		}
		m.listView.SetTodos(m.sess.Todos())
		return m, cmd

	case noticeExpiredMsg:
		if msg.seq == m.noticeSeq {
			m.notice = nil
		}
		return m, nil

	case command.CommandMsg:
		m.currentView = m.previousView
		return m.executeCommand(string(msg))

	case tea.KeyMsg:
		// Global keys that work regardless of current view.
		switch msg.String() {
		case "ctrl+c":
			return m, tea.Quit

		case "q":
			if m.currentView == ViewList && !m.listView.UsernameFocused() {
				return m, tea.Quit
			}

		case "?":
			if m.currentView == ViewHelp {
				m.currentView = m.previousView
				return m, nil
			}
			if m.currentView == ViewList && !m.listView.UsernameFocused() {
				m.previousView = m.currentView
				m.currentView = ViewHelp
				return m, nil
			}

		case ":":
			if m.currentView == ViewCommand {
				m.currentView = m.previousView
				return m, nil
			}
			if m.currentView == ViewList && !m.listView.UsernameFocused() {
				m.previousView = m.currentView
				m.currentView = ViewCommand
				return m, m.commandView.Focus()
			}

		case "esc":
			if m.currentView == ViewHelp || m.currentView == ViewCommand {
				m.currentView = m.previousView
				return m, nil
			}
		}
	}

	// Delegate to active sub-view.
	return m.updateActiveView(msg)
}

// startReload kicks off a fetch for the current username, or clears the
// list locally when the username is empty.
func (m Model) startReload() (tea.Model, tea.Cmd) {
	username := strings.TrimSpace(m.sess.Username())
	if username == "" {
		m.sess.ClearTodos()
		m.listView.SetTodos(m.sess.Todos())
		return m, nil
	}

	m.sess.SetLoading(true)
	m.listView.SetLoading(true)
	return m, m.loadTodos(username)
}

// showNotice raises a one-shot error notice and schedules its expiry.
func (m *Model) showNotice(text string) tea.Cmd {
	m.noticeSeq++
	seq := m.noticeSeq
	m.notice = &model.Notice{
		Message:   text,
		IsError:   true,
		CreatedAt: time.Now(),
	}
	return tea.Tick(noticeDelay, func(time.Time) tea.Msg {
		return noticeExpiredMsg{seq: seq}
	})
}

// executeCommand handles a command string from the command palette.
func (m Model) executeCommand(cmd string) (tea.Model, tea.Cmd) {
	switch cmd {
	case "reload", "refresh":
		m.debounceSeq++
		return m.startReload()
	case "quit", "q":
		return m, tea.Quit
	case "new", "new todo":
		if strings.TrimSpace(m.sess.Username()) == "" {
			return m, nil
		}
		m.previousView = m.currentView
		m.currentView = ViewTodoCreate
		m.pendingTitle = ""
		return m, m.todoForm.Start(m.sess.Username(), "")
	case "help":
		m.previousView = m.currentView
		m.currentView = ViewHelp
		return m, nil
	default:
		return m, nil
	}
}

// updateActiveView dispatches the message to the currently active view.
func (m Model) updateActiveView(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch m.currentView {
	case ViewList:
		m.listView, cmd = m.listView.Update(msg)
	case ViewTodoCreate:
		m.todoForm, cmd = m.todoForm.Update(msg)
	case ViewSubTaskCreate:
		m.subTaskForm, cmd = m.subTaskForm.Update(msg)
	case ViewDeleteConfirm:
		m.confirmView, cmd = m.confirmView.Update(msg)
	case ViewHelp:
		m.helpView, cmd = m.helpView.Update(msg)
	case ViewCommand:
		m.commandView, cmd = m.commandView.Update(msg)
	}

	return m, cmd
}

// View renders the full terminal UI using the layout manager.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}

	header := m.layout.RenderHeader("daylist", m.syncStatus())
	content := m.renderContent()

	barText, barErr := m.statusBar()
	statusBar := m.layout.RenderStatusBar(barText, barErr)

	return m.layout.RenderWithFrame(header, content, statusBar)
}

// renderContent returns the rendered string for the current active view.
func (m Model) renderContent() string {
	switch m.currentView {
	case ViewList:
		return m.listView.View()
	case ViewTodoCreate:
		return m.todoForm.View()
	case ViewSubTaskCreate:
		return m.subTaskForm.View()
	case ViewDeleteConfirm:
		return m.confirmView.View()
	case ViewHelp:
		return m.helpView.View()
	case ViewCommand:
		return m.commandView.View()
	default:
		return ""
	}
}

// syncStatus returns a short string for the right side of the header.
func (m Model) syncStatus() string {
	switch {
	case m.sess.Loading():
		return "loading…"
	case m.sess.Submitting():
		return "saving…"
	default:
		return ""
	}
}

// statusBar returns the status bar text and whether it is an error
// notice. Notices take precedence over key hints.
func (m Model) statusBar() (string, bool) {
	if m.notice != nil {
		return m.notice.Message, m.notice.IsError
	}

	switch m.currentView {
	case ViewHelp:
		return "? close help | esc back", false
	case ViewCommand:
		return ": close palette | enter execute | esc back", false
	case ViewTodoCreate, ViewSubTaskCreate:
		return "enter submit | esc cancel", false
	case ViewDeleteConfirm:
		return "enter confirm | esc cancel", false
	default:
		return "tab username | j/k move | space toggle | n new | s sub-task | d delete | r reload | ? help | q quit", false
	}
}
