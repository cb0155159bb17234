package screen

import (
	"context"
	"errors"
	"reflect"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/jesseruder/electric-lullaby/internal/client/api"
	"github.com/jesseruder/electric-lullaby/internal/client/camera"
	"github.com/jesseruder/electric-lullaby/internal/client/storage"
	"github.com/jesseruder/electric-lullaby/internal/models"

	"github.com/charmbracelet/bubbles/cursor"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
)

// ===== fakes =====

type fakeAPI struct {
	mu        sync.Mutex
	token     string
	loginErr  error
	urls      []string
	location  string
	uploadErr error

	logins, signups int
	fetches         []string
	follows         []string
	uploads         []string
	sent            []string
}

func (f *fakeAPI) Login(_ context.Context, username, password string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.logins++
	if f.token == "" {
		return "", &api.Error{Endpoint: api.EndpointLogin, Kind: api.ErrDomain, Err: &api.MissingField{Field: "token"}}
	}
	return f.token, f.loginErr
}

func (f *fakeAPI) Signup(_ context.Context, username, password string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.signups++
	if f.token == "" {
		return "", &api.Error{Endpoint: api.EndpointSignup, Kind: api.ErrDomain, Err: &api.MissingField{Field: "token"}}
	}
	return f.token, nil
}

func (f *fakeAPI) Follow(_ context.Context, token, userToFollow string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.follows = append(f.follows, userToFollow)
	return nil
}

func (f *fakeAPI) ImageURLs(_ context.Context, token string) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if token == "" {
		return nil, nil
	}
	f.fetches = append(f.fetches, token)
	urls := f.urls
	f.urls = nil
	return urls, nil
}

func (f *fakeAPI) SendImage(_ context.Context, token, url string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, url)
	return nil
}

func (f *fakeAPI) UploadPhoto(_ context.Context, localPath string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.uploads = append(f.uploads, localPath)
	if f.uploadErr != nil {
		return "", f.uploadErr
	}
	return f.location, nil
}

type fakeCredentials struct {
	mu      sync.Mutex
	session *models.Session
	saves   int
}

func (f *fakeCredentials) LoadSession(context.Context) (*models.Session, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.session == nil {
		return nil, nil
	}
	s := *f.session
	return &s, nil
}

func (f *fakeCredentials) SaveSession(_ context.Context, sess models.Session) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.saves++
	f.session = &sess
	return nil
}

func (f *fakeCredentials) ClearSession(context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.session = nil
	return nil
}

type fakePush struct {
	mu    sync.Mutex
	calls []string
}

func (f *fakePush) Register(_ context.Context, token string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, token)
	return "device-1", nil
}

type fakeCamera struct {
	result camera.Result
	err    error
}

func (f *fakeCamera) Capture(context.Context) (camera.Result, error) {
	return f.result, f.err
}

// ===== harness =====

type harness struct {
	api   *fakeAPI
	creds *fakeCredentials
	push  *fakePush
	cam   *fakeCamera
	arms  int
	dir   string
}

func newHarness(t *testing.T) *harness {
	return &harness{
		api:   &fakeAPI{},
		creds: &fakeCredentials{},
		push:  &fakePush{},
		cam:   &fakeCamera{},
		dir:   t.TempDir(),
	}
}

func (h *harness) model(notifications <-chan struct{}) Model {
	m := New(Deps{
		API:             h.api,
		Credentials:     h.creds,
		Push:            h.push,
		Camera:          h.cam,
		Notifications:   notifications,
		DiagnosticsDir:  h.dir,
		DisplayInterval: time.Second,
	})
	m.tick = func(time.Duration, func(time.Time) tea.Msg) tea.Cmd {
		h.arms++
		return nil
	}
	m.username.Cursor.SetMode(cursor.CursorStatic)
	m.password.Cursor.SetMode(cursor.CursorStatic)
	m.follow.Cursor.SetMode(cursor.CursorStatic)
	return m
}

const cmdTimeout = 200 * time.Millisecond

// run executes cmd, flattening batches. Commands that block (notification
// waits) are abandoned after cmdTimeout.
func run(cmd tea.Cmd) []tea.Msg {
	if cmd == nil {
		return nil
	}
	ch := make(chan tea.Msg, 1)
	go func() { ch <- cmd() }()

	select {
	case msg := <-ch:
		if batch, ok := msg.(tea.BatchMsg); ok {
			var out []tea.Msg
			for _, c := range batch {
				out = append(out, run(c)...)
			}
			return out
		}
		if msg == nil {
			return nil
		}
		return []tea.Msg{msg}
	case <-time.After(cmdTimeout):
		return nil
	}
}

// drive feeds every message produced by cmd back into the model until no
// work remains.
func drive(m Model, cmd tea.Cmd) Model {
	pending := run(cmd)
	for len(pending) > 0 {
		msg := pending[0]
		pending = pending[1:]
		if _, ok := msg.(spinner.TickMsg); ok {
			continue
		}
		next, c := m.Update(msg)
		m = next.(Model)
		pending = append(pending, run(c)...)
	}
	return m
}

func send(m Model, msg tea.Msg) Model {
	next, cmd := m.Update(msg)
	return drive(next.(Model), cmd)
}

func start(m Model) Model {
	return drive(m, m.Init())
}

func key(s string) tea.KeyMsg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "ctrl+d":
		return tea.KeyMsg{Type: tea.KeyCtrlD}
	case "ctrl+l":
		return tea.KeyMsg{Type: tea.KeyCtrlL}
	case "ctrl+n":
		return tea.KeyMsg{Type: tea.KeyCtrlN}
	case "ctrl+p":
		return tea.KeyMsg{Type: tea.KeyCtrlP}
	case "ctrl+r":
		return tea.KeyMsg{Type: tea.KeyCtrlR}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func loggedIn(t *testing.T, h *harness) Model {
	t.Helper()
	h.creds.session = &models.Session{Token: "t1", Username: "ada"}
	m := start(h.model(nil))
	if m.State() != StateLoggedIn {
		t.Fatalf("state = %v, want logged-in", m.State())
	}
	return m
}

// ===== tests =====

func TestStartupWithoutCredentials(t *testing.T) {
	h := newHarness(t)
	m := h.model(nil)
	if m.State() != StateLoading {
		t.Fatalf("initial state = %v", m.State())
	}

	m = start(m)
	if m.State() != StateLoggedOut {
		t.Fatalf("state = %v, want logged-out", m.State())
	}
	if len(h.api.fetches) != 0 || len(h.push.calls) != 0 {
		t.Errorf("no backend calls expected, got fetches=%v push=%v", h.api.fetches, h.push.calls)
	}
}

func TestStartupWithCredentialsFetchesAndRegisters(t *testing.T) {
	h := newHarness(t)
	h.api.urls = []string{"a", "b"}
	m := loggedIn(t, h)

	if !reflect.DeepEqual(h.api.fetches, []string{"t1"}) {
		t.Errorf("fetches = %v", h.api.fetches)
	}
	if !reflect.DeepEqual(h.push.calls, []string{"t1"}) {
		t.Errorf("push registrations = %v", h.push.calls)
	}
	if cur, _ := m.CurrentImage(); cur != "a" {
		t.Errorf("current image = %q", cur)
	}
	if h.arms != 1 {
		t.Errorf("timers armed = %d, want 1", h.arms)
	}
}

func TestLoginWithoutTokenStaysLoggedOut(t *testing.T) {
	h := newHarness(t)
	m := start(h.model(nil))

	m = send(m, key("ada"))
	m = send(m, key("tab"))
	m = send(m, key("pw"))
	m = send(m, key("enter"))

	if m.State() != StateLoggedOut {
		t.Fatalf("state = %v", m.State())
	}
	if m.AuthError() == "" {
		t.Error("authError should be set")
	}
	if h.creds.saves != 0 || h.creds.session != nil {
		t.Error("credentials must not be persisted")
	}
	if len(h.api.fetches) != 0 || len(h.push.calls) != 0 {
		t.Error("no fetch or push registration on failed login")
	}
}

func TestLoginPersistsAndTriggersOnce(t *testing.T) {
	h := newHarness(t)
	h.api.token = "t1"
	m := start(h.model(nil))

	m = send(m, key("ada"))
	m = send(m, key("tab"))
	m = send(m, key("secret"))
	m = send(m, key("enter"))

	if m.State() != StateLoggedIn {
		t.Fatalf("state = %v, want logged-in", m.State())
	}
	want := &models.Session{Token: "t1", Username: "ada"}
	if !reflect.DeepEqual(h.creds.session, want) {
		t.Errorf("persisted = %+v, want %+v", h.creds.session, want)
	}
	if len(h.api.fetches) != 1 || len(h.push.calls) != 1 {
		t.Errorf("fetches=%d push=%d, want 1 each", len(h.api.fetches), len(h.push.calls))
	}
	if m.AuthError() != "" {
		t.Errorf("authError = %q", m.AuthError())
	}
}

func TestSignupFailureMessage(t *testing.T) {
	h := newHarness(t)
	m := start(h.model(nil))
	m = send(m, key("ctrl+n"))

	if h.api.signups != 1 {
		t.Fatalf("signups = %d", h.api.signups)
	}
	if m.AuthError() != signupFailed {
		t.Errorf("authError = %q", m.AuthError())
	}
}

func TestQueueTickAndDismiss(t *testing.T) {
	h := newHarness(t)
	h.api.urls = []string{"a", "b"}
	m := loggedIn(t, h)

	m = send(m, advanceMsg{tag: m.queue.Tag()})
	if cur, _ := m.CurrentImage(); cur != "b" {
		t.Fatalf("after tick current = %q, want b", cur)
	}
	if h.arms != 2 {
		t.Errorf("timer should reschedule while images remain; arms = %d", h.arms)
	}

	m = send(m, key("ctrl+d"))
	if _, ok := m.CurrentImage(); ok {
		t.Fatal("queue should be empty")
	}

	arms := h.arms
	m = send(m, advanceMsg{tag: m.queue.Tag()})
	if h.arms != arms {
		t.Error("no timer should run on an empty queue")
	}
}

func TestFetchIntoNonEmptyQueueDoesNotRearm(t *testing.T) {
	h := newHarness(t)
	h.api.urls = []string{"a"}
	m := loggedIn(t, h)

	h.api.urls = []string{"b", "c"}
	m = send(m, key("ctrl+r"))

	if h.arms != 1 {
		t.Errorf("arms = %d, want 1", h.arms)
	}
	if got := m.queue.URLs(); !reflect.DeepEqual(got, []string{"a", "b", "c"}) {
		t.Errorf("queue = %v", got)
	}
}

func TestLogoutClearsQueueAndCredentials(t *testing.T) {
	h := newHarness(t)
	h.api.urls = []string{"x", "y"}
	m := loggedIn(t, h)
	tag := m.queue.Tag()

	m = send(m, key("ctrl+l"))

	if m.State() != StateLoggedOut {
		t.Fatalf("state = %v", m.State())
	}
	if h.creds.session != nil {
		t.Error("credentials should be removed")
	}
	if m.Session() != nil {
		t.Error("in-memory session should be cleared")
	}
	if _, ok := m.CurrentImage(); ok || m.queue.Armed() {
		t.Error("queue should be cleared and disarmed")
	}

	arms := h.arms
	send(m, advanceMsg{tag: tag})
	if h.arms != arms {
		t.Error("a tick from before logout must not reschedule")
	}
}

func TestNotificationTriggersFetch(t *testing.T) {
	h := newHarness(t)
	h.creds.session = &models.Session{Token: "t1", Username: "ada"}
	notes := make(chan struct{}, 1)
	m := start(h.model(notes))
	fetches := len(h.api.fetches)

	h.api.urls = []string{"n1"}
	close(notes)
	m = send(m, notificationMsg{})

	if len(h.api.fetches) != fetches+1 {
		t.Errorf("fetches = %d, want %d", len(h.api.fetches), fetches+1)
	}
	if cur, _ := m.CurrentImage(); cur != "n1" {
		t.Errorf("current image = %q", cur)
	}
}

func TestNotificationWhileLoggedOutIsNoop(t *testing.T) {
	h := newHarness(t)
	m := start(h.model(nil))
	h.api.urls = []string{"n1"}

	m = send(m, notificationMsg{})
	if len(h.api.fetches) != 0 {
		t.Errorf("fetches = %v", h.api.fetches)
	}
	if _, ok := m.CurrentImage(); ok {
		t.Error("no image expected while logged out")
	}
}

func TestStaleFetchAfterLogoutIsDropped(t *testing.T) {
	h := newHarness(t)
	m := loggedIn(t, h)
	m = send(m, key("ctrl+l"))

	m = send(m, imagesMsg{token: "t1", urls: []string{"late"}})
	if _, ok := m.CurrentImage(); ok {
		t.Error("fetch from a previous session must not reach the queue")
	}
}

func TestCaptureCancelledNeverUploads(t *testing.T) {
	h := newHarness(t)
	h.cam.result = camera.Result{Cancelled: true}
	m := loggedIn(t, h)

	next, cmd := m.Update(key("ctrl+p"))
	m = next.(Model)
	if !m.capturing || m.Uploading() {
		t.Fatalf("capturing=%v uploading=%v", m.capturing, m.Uploading())
	}
	m = drive(m, cmd)

	if m.Uploading() || m.capturing {
		t.Error("flags should be clear after cancellation")
	}
	if len(h.api.uploads) != 0 || len(h.api.sent) != 0 {
		t.Errorf("uploads=%v sent=%v", h.api.uploads, h.api.sent)
	}
}

func TestCaptureUploadsAndSends(t *testing.T) {
	h := newHarness(t)
	h.cam.result = camera.Result{Path: "/tmp/photo.jpg"}
	h.api.location = "https://cdn.test/p.jpg"
	m := loggedIn(t, h)

	next, _ := m.Update(captureMsg{result: h.cam.result})
	if !next.(Model).Uploading() {
		t.Fatal("upload flag should be raised once a photo is captured")
	}

	m = send(m, key("ctrl+p"))
	if m.Uploading() {
		t.Error("upload flag should be cleared")
	}
	if !reflect.DeepEqual(h.api.uploads, []string{"/tmp/photo.jpg"}) {
		t.Errorf("uploads = %v", h.api.uploads)
	}
	if !reflect.DeepEqual(h.api.sent, []string{"https://cdn.test/p.jpg"}) {
		t.Errorf("sent = %v", h.api.sent)
	}
	if m.alert != "" {
		t.Errorf("alert = %q", m.alert)
	}
}

func TestUploadFailureAlertsAndRecordsDiagnostics(t *testing.T) {
	h := newHarness(t)
	h.cam.result = camera.Result{Path: "/tmp/photo.jpg"}
	h.api.uploadErr = &api.Error{Endpoint: api.EndpointUpload, Kind: api.ErrTransport, Err: errors.New("connection refused")}
	m := loggedIn(t, h)

	m = send(m, key("ctrl+p"))
	if m.Uploading() {
		t.Error("upload flag must be reset on failure")
	}
	if m.alert != uploadFailed {
		t.Fatalf("alert = %q", m.alert)
	}
	if len(h.api.sent) != 0 {
		t.Error("nothing should be sent after a failed upload")
	}

	diags, err := storage.LoadDiagnostics(h.dir)
	if err != nil || len(diags) != 1 || diags[0].LocalPath != "/tmp/photo.jpg" {
		t.Errorf("diagnostics = %+v, %v", diags, err)
	}

	m = send(m, key("x"))
	if m.alert != "" {
		t.Error("any key should dismiss the alert")
	}
	if m.follow.Value() != "" {
		t.Error("the dismissing key must not reach the follow input")
	}
}

func TestCaptureUnavailableWhileImageShown(t *testing.T) {
	h := newHarness(t)
	h.api.urls = []string{"a"}
	m := loggedIn(t, h)

	_, cmd := m.Update(key("ctrl+p"))
	if cmd != nil {
		t.Error("camera should not open while an image is displayed")
	}
}

func TestFollowSendsAndClears(t *testing.T) {
	h := newHarness(t)
	m := loggedIn(t, h)

	m = send(m, key("bob"))
	m = send(m, key("enter"))

	if !reflect.DeepEqual(h.api.follows, []string{"bob"}) {
		t.Errorf("follows = %v", h.api.follows)
	}
	if m.follow.Value() != "" {
		t.Errorf("follow input = %q, want cleared", m.follow.Value())
	}
}

func TestViewRendersCurrentImage(t *testing.T) {
	h := newHarness(t)
	h.api.urls = []string{"https://cdn.test/a.jpg"}
	m := loggedIn(t, h)

	view := m.View()
	if !containsAll(view, "Hi ada", "https://cdn.test/a.jpg") {
		t.Errorf("view missing content:\n%s", view)
	}
}

func containsAll(s string, parts ...string) bool {
	for _, p := range parts {
		if !strings.Contains(s, p) {
			return false
		}
	}
	return true
}
