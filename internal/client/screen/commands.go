package screen

import (
	"context"
	"time"

	"github.com/jesseruder/electric-lullaby/internal/client/camera"
	"github.com/jesseruder/electric-lullaby/internal/client/storage"
	"github.com/jesseruder/electric-lullaby/internal/models"

	tea "github.com/charmbracelet/bubbletea"
)

type credentialsLoadedMsg struct {
	session *models.Session
	err     error
}

type authMsg struct {
	action  string
	session *models.Session
	err     error
}

type loggedOutMsg struct{ err error }

// imagesMsg carries the token the fetch was issued under.
type imagesMsg struct {
	token string
	urls  []string
	err   error
}

type advanceMsg struct{ tag int }

type notificationMsg struct{}

type notificationsClosedMsg struct{}

type pushRegisteredMsg struct {
	pushToken string
	err       error
}

type followedMsg struct {
	target string
	err    error
}

type captureMsg struct {
	result camera.Result
	err    error
}

type uploadedMsg struct {
	path     string
	location string
	err      error
}

type sentImageMsg struct {
	url string
	err error
}

func (m Model) loadCredentials() tea.Cmd {
	creds := m.deps.Credentials
	return func() tea.Msg {
		sess, err := creds.LoadSession(context.Background())
		return credentialsLoadedMsg{session: sess, err: err}
	}
}

func (m Model) authenticate(action string) tea.Cmd {
	username, password := m.username.Value(), m.password.Value()
	api, creds := m.deps.API, m.deps.Credentials
	return func() tea.Msg {
		ctx := context.Background()

		var token string
		var err error
		if action == actionSignup {
			token, err = api.Signup(ctx, username, password)
		} else {
			token, err = api.Login(ctx, username, password)
		}
		if err != nil {
			return authMsg{action: action, err: err}
		}

		sess := models.Session{Token: token, Username: username}
		if err := creds.SaveSession(ctx, sess); err != nil {
			return authMsg{action: action, err: err}
		}
		return authMsg{action: action, session: &sess}
	}
}

func (m Model) logout() tea.Cmd {
	creds := m.deps.Credentials
	return func() tea.Msg {
		return loggedOutMsg{err: creds.ClearSession(context.Background())}
	}
}

// onAuthed runs whenever the screen enters the logged-in state.
func (m Model) onAuthed() tea.Cmd {
	return tea.Batch(m.registerPush(), m.fetchImages())
}

func (m Model) registerPush() tea.Cmd {
	if m.deps.Push == nil {
		return nil
	}
	push, token := m.deps.Push, m.token()
	return func() tea.Msg {
		id, err := push.Register(context.Background(), token)
		return pushRegisteredMsg{pushToken: id, err: err}
	}
}

func (m Model) fetchImages() tea.Cmd {
	api, token := m.deps.API, m.token()
	return func() tea.Msg {
		urls, err := api.ImageURLs(context.Background(), token)
		return imagesMsg{token: token, urls: urls, err: err}
	}
}

func (m Model) followUser(target string) tea.Cmd {
	api, token := m.deps.API, m.token()
	return func() tea.Msg {
		return followedMsg{target: target, err: api.Follow(context.Background(), token, target)}
	}
}

// scheduleAdvance starts one period of the queue timer tagged with the
// queue's current tag.
func (m Model) scheduleAdvance() tea.Cmd {
	tag := m.queue.Tag()
	return m.tick(m.deps.DisplayInterval, func(time.Time) tea.Msg {
		return advanceMsg{tag: tag}
	})
}

func waitForNotification(ch <-chan struct{}) tea.Cmd {
	if ch == nil {
		return nil
	}
	return func() tea.Msg {
		if _, ok := <-ch; !ok {
			return notificationsClosedMsg{}
		}
		return notificationMsg{}
	}
}

func capture(ctx context.Context, cam camera.Camera) tea.Cmd {
	return func() tea.Msg {
		res, err := cam.Capture(ctx)
		return captureMsg{result: res, err: err}
	}
}

func (m Model) upload(path string) tea.Cmd {
	api, logger, dir := m.deps.API, m.deps.Logger, m.deps.DiagnosticsDir
	return func() tea.Msg {
		location, err := api.UploadPhoto(context.Background(), path)
		if err != nil && dir != "" {
			d := storage.Diagnostic{
				Time:           time.Now().UTC(),
				LocalPath:      path,
				UploadLocation: location,
				Error:          err.Error(),
			}
			if werr := storage.AppendDiagnostic(dir, d); werr != nil {
				logger.Printf("diagnostics: %v", werr)
			}
		}
		return uploadedMsg{path: path, location: location, err: err}
	}
}

func (m Model) sendImage(url string) tea.Cmd {
	api, token := m.deps.API, m.token()
	return func() tea.Msg {
		return sentImageMsg{url: url, err: api.SendImage(context.Background(), token, url)}
	}
}
