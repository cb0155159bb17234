package screen

import (
	"fmt"
	"strings"

	"github.com/jesseruder/electric-lullaby/internal/ui"

	"github.com/skip2/go-qrcode"
)

func (m Model) View() string {
	if m.quitting {
		return "Bye!\n"
	}

	header := ui.HeaderStyle.Render(" ELECTRIC LULLABY ") + "\n"

	var subHeader, body, footer string
	switch m.state {
	case StateLoading:
		return header

	case StateLoggedOut:
		subHeader = ui.SubHeaderStyle.Render("Log in or sign up") + "\n"
		body = ui.CardStyle.Render(m.loggedOutView())
		footer = ui.FooterStyle.Render("▸ Tab: switch field • Enter: log in • Ctrl+N: sign up • Ctrl+C: exit")

	case StateLoggedIn:
		subHeader = ui.SubHeaderStyle.Render("Hi "+m.session.Username) + "\n"
		body = ui.CardStyle.Render(m.loggedInView())
		footer = ui.FooterStyle.Render("▸ Enter: follow • Ctrl+P: photo • Ctrl+D: dismiss • Ctrl+R: reload • Ctrl+L: log out")
	}

	out := fmt.Sprintf("%s%s%s\n%s", header, subHeader, body, footer)
	if m.uploading {
		out += "\n" + ui.OverlayStyle.Render(m.spinner.View()+" Uploading...")
	}
	if m.alert != "" {
		out += "\n" + ui.AlertStyle.Render(m.alert+"\n\n"+ui.MutedStyle.Render("press any key"))
	}
	return out
}

func (m Model) loggedOutView() string {
	var b strings.Builder
	b.WriteString(ui.UsernameFieldStyle.Render(m.username.View()) + "\n\n")
	b.WriteString(ui.PasswordFieldStyle.Render(m.password.View()) + "\n\n")
	b.WriteString(ui.ButtonStyle.Render("LOGIN") + ui.ButtonStyle.Render("SIGN UP"))
	if m.authError != "" {
		b.WriteString("\n\n" + ui.ErrorTextStyle.Render(m.authError))
	}
	return b.String()
}

func (m Model) loggedInView() string {
	var b strings.Builder
	b.WriteString(ui.FollowFieldStyle.Render(m.follow.View()) + " " + ui.ButtonStyle.Render("FOLLOW") + "\n\n")

	url, ok := m.queue.Current()
	if !ok {
		switch {
		case m.capturing:
			b.WriteString(ui.CameraStyle.Render("[ capturing... esc to cancel ]"))
		default:
			b.WriteString(ui.CameraStyle.Render("[ ◉ take a photo ]"))
		}
		return b.String()
	}

	card := url
	if qr := renderQR(url); qr != "" {
		card = qr + "\n" + url
	}
	b.WriteString(ui.ImageStyle.Render(card))
	if n := m.queue.Len(); n > 1 {
		b.WriteString("\n" + ui.MutedStyle.Render(fmt.Sprintf("%d more waiting", n-1)))
	}
	return b.String()
}

func renderQR(content string) string {
	q, err := qrcode.New(content, qrcode.Low)
	if err != nil {
		return ""
	}
	return q.ToSmallString(false)
}
