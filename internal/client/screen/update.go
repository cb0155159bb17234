package screen

import (
	"context"
	"errors"

	"github.com/jesseruder/electric-lullaby/internal/client/push"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
)

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case credentialsLoadedMsg:
		if msg.err != nil {
			m.deps.Logger.Printf("load credentials: %v", msg.err)
		}
		if msg.session == nil {
			m.state = StateLoggedOut
			return m, m.username.Focus()
		}
		m.session = msg.session
		m.state = StateLoggedIn
		return m, tea.Batch(m.follow.Focus(), m.onAuthed())

	case authMsg:
		m.authenticating = false
		if msg.err != nil {
			m.deps.Logger.Printf("%s failed: %v", msg.action, msg.err)
			if msg.action == actionSignup {
				m.authError = signupFailed
			} else {
				m.authError = loginFailed
			}
			return m, nil
		}
		m.deps.Logger.Printf("%s succeeded for %s", msg.action, msg.session.Username)
		m.session = msg.session
		m.state = StateLoggedIn
		m.authError = ""
		m.username.Blur()
		m.password.Blur()
		return m, tea.Batch(m.follow.Focus(), m.onAuthed())

	case loggedOutMsg:
		if msg.err != nil {
			m.deps.Logger.Printf("clear credentials: %v", msg.err)
		}
		m.session = nil
		m.state = StateLoggedOut
		m.queue.Reset()
		m.uploading = false
		if m.cancelCapture != nil {
			m.cancelCapture()
			m.cancelCapture = nil
		}
		m.follow.Blur()
		m.focus = focusUsername
		return m, m.username.Focus()

	case imagesMsg:
		return m.receiveImages(msg)

	case advanceMsg:
		if m.queue.Tick(msg.tag) {
			return m, m.scheduleAdvance()
		}
		return m, nil

	case notificationMsg:
		return m, tea.Batch(m.fetchImages(), waitForNotification(m.deps.Notifications))

	case notificationsClosedMsg:
		return m, nil

	case pushRegisteredMsg:
		switch {
		case errors.Is(msg.err, push.ErrPermissionDenied):
		case msg.err != nil:
			m.deps.Logger.Printf("push registration: %v", msg.err)
		case msg.pushToken != "":
			m.deps.Logger.Printf("registered push token %s", msg.pushToken)
		}
		return m, nil

	case followedMsg:
		if msg.err != nil {
			m.deps.Logger.Printf("follow %s: %v", msg.target, msg.err)
		}
		m.follow.Reset()
		return m, nil

	case captureMsg:
		return m.receiveCapture(msg)

	case uploadedMsg:
		m.uploading = false
		if msg.err != nil {
			m.deps.Logger.Printf("upload %s: %v", msg.path, msg.err)
			m.alert = uploadFailed
			return m, nil
		}
		if m.session == nil {
			return m, nil
		}
		return m, m.sendImage(msg.location)

	case sentImageMsg:
		if msg.err != nil {
			m.deps.Logger.Printf("send image %s: %v", msg.url, msg.err)
		}
		return m, nil

	case spinner.TickMsg:
		if !m.uploading {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	return m.updateInputs(msg)
}

// updateInputs routes a message to the focused text input.
func (m Model) updateInputs(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch {
	case m.state == StateLoggedIn:
		m.follow, cmd = m.follow.Update(msg)
	case m.state == StateLoggedOut && m.focus == focusUsername:
		m.username, cmd = m.username.Update(msg)
	case m.state == StateLoggedOut:
		m.password, cmd = m.password.Update(msg)
	}
	return m, cmd
}

func (m Model) receiveImages(msg imagesMsg) (tea.Model, tea.Cmd) {
	if msg.err != nil {
		m.deps.Logger.Printf("fetch images: %v", msg.err)
		return m, nil
	}
	if len(msg.urls) == 0 {
		return m, nil
	}
	if m.session == nil || msg.token != m.session.Token {
		m.deps.Logger.Printf("dropping %d images fetched for a previous session", len(msg.urls))
		return m, nil
	}
	if m.queue.Append(msg.urls...) {
		return m, m.scheduleAdvance()
	}
	return m, nil
}

func (m Model) receiveCapture(msg captureMsg) (tea.Model, tea.Cmd) {
	m.capturing = false
	if m.cancelCapture != nil {
		m.cancelCapture()
		m.cancelCapture = nil
	}

	switch {
	case msg.err != nil:
		m.deps.Logger.Printf("capture: %v", msg.err)
		m.alert = cameraFailed
		return m, nil
	case msg.result.Cancelled, m.session == nil:
		return m, nil
	}

	m.uploading = true
	return m, tea.Batch(m.upload(msg.result.Path), m.spinner.Tick)
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		if m.cancelCapture != nil {
			m.cancelCapture()
		}
		m.quitting = true
		return m, tea.Quit
	}

	if m.alert != "" {
		m.alert = ""
		return m, nil
	}

	switch m.state {
	case StateLoggedOut:
		return m.handleLoggedOutKey(msg)
	case StateLoggedIn:
		return m.handleLoggedInKey(msg)
	}
	return m, nil
}

func (m Model) handleLoggedOutKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "tab", "shift+tab", "up", "down":
		if m.focus == focusUsername {
			m.focus = focusPassword
			m.username.Blur()
			return m, m.password.Focus()
		}
		m.focus = focusUsername
		m.password.Blur()
		return m, m.username.Focus()

	case "enter":
		return m.startAuth(actionLogin)

	case "ctrl+n":
		return m.startAuth(actionSignup)
	}

	return m.updateInputs(msg)
}

func (m Model) startAuth(action string) (tea.Model, tea.Cmd) {
	if m.authenticating {
		return m, nil
	}
	m.authenticating = true
	return m, m.authenticate(action)
}

func (m Model) handleLoggedInKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		target := m.follow.Value()
		if target == "" {
			return m, nil
		}
		return m, m.followUser(target)

	case "ctrl+r":
		return m, m.fetchImages()

	case "ctrl+d":
		m.queue.DismissCurrent()
		return m, nil

	case "ctrl+p":
		return m.startCapture()

	case "esc":
		if m.cancelCapture != nil {
			m.cancelCapture()
		}
		return m, nil

	case "ctrl+l":
		return m, m.logout()
	}

	return m.updateInputs(msg)
}

// startCapture opens the camera. Like the camera button, it is only available
// while no image is on display.
func (m Model) startCapture() (tea.Model, tea.Cmd) {
	if m.capturing || m.uploading || m.deps.Camera == nil {
		return m, nil
	}
	if _, showing := m.queue.Current(); showing {
		return m, nil
	}

	ctx, cancel := context.WithCancel(context.Background())
	m.capturing = true
	m.cancelCapture = cancel
	return m, capture(ctx, m.deps.Camera)
}
