// Package screen is the single-screen client: a bubbletea model that owns the
// session, the image queue and the upload flag, and turns every user action or
// I/O completion into a named message.
package screen

import (
	"context"
	"io"
	"log"
	"time"

	"github.com/jesseruder/electric-lullaby/internal/client/camera"
	"github.com/jesseruder/electric-lullaby/internal/client/queue"
	"github.com/jesseruder/electric-lullaby/internal/models"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

type State int

const (
	StateLoading State = iota
	StateLoggedOut
	StateLoggedIn
)

func (s State) String() string {
	switch s {
	case StateLoading:
		return "loading"
	case StateLoggedOut:
		return "logged-out"
	case StateLoggedIn:
		return "logged-in"
	}
	return "unknown"
}

const (
	loginFailed   = "Couldn't log in!"
	signupFailed  = "Couldn't create account!"
	uploadFailed  = "Upload failed, sorry :("
	cameraFailed  = "Couldn't open the camera :("
	actionLogin   = "login"
	actionSignup  = "signup"
	focusUsername = 0
	focusPassword = 1
)

// API is the slice of the backend client the screen uses.
type API interface {
	Login(ctx context.Context, username, password string) (string, error)
	Signup(ctx context.Context, username, password string) (string, error)
	Follow(ctx context.Context, token, userToFollow string) error
	ImageURLs(ctx context.Context, token string) ([]string, error)
	SendImage(ctx context.Context, token, url string) error
	UploadPhoto(ctx context.Context, localPath string) (string, error)
}

// Credentials persists the session across restarts.
type Credentials interface {
	LoadSession(ctx context.Context) (*models.Session, error)
	SaveSession(ctx context.Context, sess models.Session) error
	ClearSession(ctx context.Context) error
}

// Registrar registers the device for notifications.
type Registrar interface {
	Register(ctx context.Context, token string) (string, error)
}

type Deps struct {
	API         API
	Credentials Credentials
	Push        Registrar
	Camera      camera.Camera
	// Notifications delivers one value per received push. May be nil.
	Notifications   <-chan struct{}
	Logger          *log.Logger
	DiagnosticsDir  string
	DisplayInterval time.Duration
}

type tickFunc func(time.Duration, func(time.Time) tea.Msg) tea.Cmd

type Model struct {
	deps Deps
	tick tickFunc

	state          State
	session        *models.Session
	authError      string
	authenticating bool
	alert          string

	queue queue.Queue

	uploading     bool
	capturing     bool
	cancelCapture context.CancelFunc

	username textinput.Model
	password textinput.Model
	follow   textinput.Model
	focus    int
	spinner  spinner.Model

	width    int
	quitting bool
}

func New(deps Deps) Model {
	if deps.DisplayInterval <= 0 {
		deps.DisplayInterval = 5 * time.Second
	}
	if deps.Logger == nil {
		deps.Logger = log.New(io.Discard, "", 0)
	}

	username := textinput.New()
	username.Placeholder = "USERNAME"
	username.CharLimit = 64
	username.Width = 40

	password := textinput.New()
	password.Placeholder = "PASSWORD"
	password.EchoMode = textinput.EchoPassword
	password.EchoCharacter = '•'
	password.CharLimit = 128
	password.Width = 40

	follow := textinput.New()
	follow.Placeholder = "follow someone!"
	follow.CharLimit = 64
	follow.Width = 30

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	return Model{
		deps:     deps,
		tick:     tea.Tick,
		state:    StateLoading,
		username: username,
		password: password,
		follow:   follow,
		spinner:  sp,
	}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(m.loadCredentials(), waitForNotification(m.deps.Notifications))
}

func (m Model) State() State { return m.state }

func (m Model) Session() *models.Session { return m.session }

func (m Model) AuthError() string { return m.authError }

func (m Model) Uploading() bool { return m.uploading }

// CurrentImage is the URL on display, if any.
func (m Model) CurrentImage() (string, bool) { return m.queue.Current() }

func (m Model) token() string {
	if m.session == nil {
		return ""
	}
	return m.session.Token
}
