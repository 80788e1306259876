package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/Cyclone1070/claw/internal/security"
	"github.com/Cyclone1070/claw/internal/ui/models"
	"github.com/Cyclone1070/claw/internal/ui/services"
	"github.com/Cyclone1070/claw/internal/ui/views"
	"github.com/Cyclone1070/claw/internal/workflow"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
)

const helpText = "Available commands:\n- /models - List and switch models\n- /clear - Clear the transcript\n- /help - Show this help\n- /quit - Exit"

// BubbleTeaModel implements tea.Model
type BubbleTeaModel struct {
	state models.State

	renderer services.MarkdownRenderer

	inputReq      <-chan inputRequest
	inputResp     chan<- string
	approvalReq   <-chan security.ApprovalRequest
	approvalResp  chan<- security.Approval
	events        <-chan workflow.Event
	messageChan   <-chan string
	modelListChan <-chan []string
	commandChan   chan<- UICommand
	readyChan     chan<- struct{}

	// descriptions of running tool calls by call ID
	running map[string]string
}

func newBubbleTeaModel(ch *UIChannels, renderer services.MarkdownRenderer, spinnerFactory SpinnerFactory) BubbleTeaModel {
	ti := textinput.New()
	ti.Placeholder = "Type a message..."
	ti.Focus()

	return BubbleTeaModel{
		state: models.State{
			Input:    ti,
			Viewport: viewport.New(80, 20),
			Spinner:  spinnerFactory(),
			Messages: []models.Message{},
		},
		renderer:      renderer,
		inputReq:      ch.InputReq,
		inputResp:     ch.InputResp,
		approvalReq:   ch.ApprovalReq,
		approvalResp:  ch.ApprovalResp,
		events:        ch.Events,
		messageChan:   ch.MessageChan,
		modelListChan: ch.ModelListChan,
		commandChan:   ch.CommandChan,
		readyChan:     ch.ReadyChan,
		running:       make(map[string]string),
	}
}

// Internal messages
type tickMsg time.Time
type inputRequestMsg inputRequest
type approvalRequestMsg security.ApprovalRequest
type eventMsg struct{ event workflow.Event }
type messageReceivedMsg string
type modelListReceivedMsg []string

// Init initializes the model
func (m BubbleTeaModel) Init() tea.Cmd {
	if m.readyChan != nil {
		close(m.readyChan)
	}
	return tea.Batch(
		textinput.Blink,
		m.state.Spinner.Tick,
		tick(),
		listenForInputRequests(m.inputReq),
		listenForApprovals(m.approvalReq),
		listenForEvents(m.events),
		listenForMessages(m.messageChan),
		listenForModelList(m.modelListChan),
	)
}

// View renders the UI
func (m BubbleTeaModel) View() string {
	return views.RenderRoot(m.state)
}

// Update handles messages
func (m BubbleTeaModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKeyPress(msg)

	case tea.WindowSizeMsg:
		m.state.Width = msg.Width
		m.state.Height = msg.Height
		m.state.Viewport.Width = msg.Width
		m.state.Viewport.Height = max(msg.Height-6, 1)
		m.updateViewport()
		return m, nil

	case tickMsg:
		m.state.DotCount = (m.state.DotCount + 1) % 4
		return m, tick()

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.state.Spinner, cmd = m.state.Spinner.Update(msg)
		return m, cmd

	case inputRequestMsg:
		m.state.CanSubmit = true
		return m, listenForInputRequests(m.inputReq)

	case approvalRequestMsg:
		req := security.ApprovalRequest(msg)
		m.state.PendingApproval = &req
		return m, listenForApprovals(m.approvalReq)

	case eventMsg:
		m.handleEvent(msg.event)
		return m, listenForEvents(m.events)

	case messageReceivedMsg:
		m.appendMessage("assistant", string(msg))
		return m, listenForMessages(m.messageChan)

	case modelListReceivedMsg:
		m.state.ModelList = []string(msg)
		m.state.ShowModelList = true
		m.state.ModelListIndex = 0
		return m, listenForModelList(m.modelListChan)
	}

	var cmd tea.Cmd
	m.state.Input, cmd = m.state.Input.Update(msg)
	return m, cmd
}

// handleEvent maps workflow progress onto the status bar and transcript.
func (m *BubbleTeaModel) handleEvent(ev workflow.Event) {
	switch e := ev.(type) {
	case workflow.ThinkingEvent:
		m.state.StatusPhase = "thinking"
		m.state.StatusMessage = ""
	case workflow.ToolStartEvent:
		desc := services.FormatToolDescription(e.ToolName, e.Args)
		m.running[e.CallID] = desc
		m.state.StatusPhase = "executing"
		m.state.StatusMessage = desc
	case workflow.ToolInvokedEvent:
		desc, ok := m.running[e.CallID]
		if !ok {
			desc = e.Name
		}
		delete(m.running, e.CallID)
		if e.Success {
			m.state.StatusPhase = "done"
			m.appendMessage("tool", "✔ "+desc)
		} else {
			m.state.StatusPhase = "failed"
			m.appendMessage("tool", fmt.Sprintf("✗ %s: %s", desc, e.Error))
		}
		m.state.StatusMessage = desc
	case workflow.TurnCompletedEvent:
		m.state.StatusPhase = "ready"
		m.state.StatusMessage = ""
		if e.Capped {
			m.state.StatusMessage = fmt.Sprintf("stopped after %d iterations", e.Iterations)
		}
	case workflow.ErrorEvent:
		m.state.StatusPhase = "error"
		m.state.StatusMessage = fmt.Sprintf("%s: %v", e.Component, e.Err)
	}
}

// handleKeyPress handles keyboard input
func (m BubbleTeaModel) handleKeyPress(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.state.PendingApproval != nil {
		var decision security.Approval
		switch msg.String() {
		case "y":
			decision = security.ApprovalAllowOnce
		case "a":
			decision = security.ApprovalAllowAlways
		case "n", "esc":
			decision = security.ApprovalDeny
		case "ctrl+c":
			return m, tea.Quit
		default:
			return m, nil
		}
		m.approvalResp <- decision
		m.state.PendingApproval = nil
		return m, nil
	}

	if m.state.ShowModelList {
		switch msg.String() {
		case "up", "k":
			if m.state.ModelListIndex > 0 {
				m.state.ModelListIndex--
			}
		case "down", "j":
			if m.state.ModelListIndex < len(m.state.ModelList)-1 {
				m.state.ModelListIndex++
			}
		case "enter":
			if m.state.ModelListIndex < len(m.state.ModelList) {
				model := m.state.ModelList[m.state.ModelListIndex]
				m.commandChan <- UICommand{Type: "switch_model", Args: map[string]string{"model": model}}
				m.state.CurrentModel = model
			}
			m.state.ShowModelList = false
		case "esc":
			m.state.ShowModelList = false
		}
		return m, nil
	}

	switch msg.String() {
	case "ctrl+c":
		return m, tea.Quit

	case "pgup", "pgdown":
		var cmd tea.Cmd
		m.state.Viewport, cmd = m.state.Viewport.Update(msg)
		return m, cmd

	case "enter":
		input := strings.TrimSpace(m.state.Input.Value())
		if input == "" {
			return m, nil
		}
		if strings.HasPrefix(input, "/") {
			return m.handleCommand(input)
		}
		if !m.state.CanSubmit {
			return m, nil
		}
		m.appendMessage("user", input)
		m.inputResp <- input
		m.state.Input.SetValue("")
		m.state.CanSubmit = false
		return m, nil
	}

	var cmd tea.Cmd
	m.state.Input, cmd = m.state.Input.Update(msg)
	return m, cmd
}

// handleCommand handles slash commands
func (m BubbleTeaModel) handleCommand(input string) (tea.Model, tea.Cmd) {
	parts := strings.Fields(input)
	m.state.Input.SetValue("")

	switch parts[0] {
	case "/models":
		m.commandChan <- UICommand{Type: "list_models"}
	case "/clear":
		m.state.Messages = []models.Message{}
		m.updateViewport()
	case "/quit", "/exit":
		return m, tea.Quit
	case "/help":
		m.appendMessage("assistant", helpText)
	default:
		m.appendMessage("error", fmt.Sprintf("unknown command %s (try /help)", parts[0]))
	}
	return m, nil
}

func (m *BubbleTeaModel) appendMessage(role, content string) {
	m.state.Messages = append(m.state.Messages, models.Message{Role: role, Content: content})
	m.updateViewport()
}

// updateViewport updates the viewport content
func (m *BubbleTeaModel) updateViewport() {
	content := views.FormatChatContent(m.state.Messages, m.state.Width-4, m.renderer)
	m.state.Viewport.SetContent(content)
	m.state.Viewport.GotoBottom()
}

func listenForInputRequests(ch <-chan inputRequest) tea.Cmd {
	return func() tea.Msg {
		return inputRequestMsg(<-ch)
	}
}

func listenForApprovals(ch <-chan security.ApprovalRequest) tea.Cmd {
	return func() tea.Msg {
		return approvalRequestMsg(<-ch)
	}
}

func listenForEvents(ch <-chan workflow.Event) tea.Cmd {
	return func() tea.Msg {
		return eventMsg{event: <-ch}
	}
}

func listenForMessages(ch <-chan string) tea.Cmd {
	return func() tea.Msg {
		return messageReceivedMsg(<-ch)
	}
}

func listenForModelList(ch <-chan []string) tea.Cmd {
	return func() tea.Msg {
		return modelListReceivedMsg(<-ch)
	}
}

func tick() tea.Cmd {
	return tea.Tick(300*time.Millisecond, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}
