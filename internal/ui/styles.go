package ui

import "github.com/charmbracelet/lipgloss"

var (
	// Lullaby palette
	Primary   = lipgloss.Color("#FF598F") // Pink
	Secondary = lipgloss.Color("#01DDDD") // Cyan
	Accent    = lipgloss.Color("#FFFF00") // Yellow
	Follow    = lipgloss.Color("#00BFAF") // Teal
	Warm      = lipgloss.Color("#FD8A5E") // Peach
	Success   = lipgloss.Color("#39FF14") // Neon Green
	ErrorCol  = lipgloss.Color("#FF3131") // Red
	Text      = lipgloss.Color("#FFFFFF")
	Dark      = lipgloss.Color("#222222")
	Muted     = lipgloss.Color("#888888")

	HeaderStyle = lipgloss.NewStyle().
			Foreground(Primary).
			Bold(true).
			Padding(1, 1).
			MarginLeft(1)

	SubHeaderStyle = lipgloss.NewStyle().
			Foreground(Muted).
			PaddingLeft(2).
			MarginBottom(1)

	CardStyle = lipgloss.NewStyle().
			Padding(1, 2).
			Border(lipgloss.NormalBorder(), false, false, false, true).
			BorderForeground(Accent).
			MarginLeft(2).
			Width(64)

	UsernameFieldStyle = lipgloss.NewStyle().
				Foreground(Warm).
				Bold(true)

	PasswordFieldStyle = lipgloss.NewStyle().
				Foreground(Secondary).
				Bold(true)

	FollowFieldStyle = lipgloss.NewStyle().
				Foreground(Follow).
				Bold(true)

	ButtonStyle = lipgloss.NewStyle().
			Foreground(Text).
			Background(Primary).
			Bold(true).
			Padding(0, 1).
			MarginRight(1)

	InfoKeyStyle = lipgloss.NewStyle().
			Foreground(Muted).
			Width(16)

	InfoValueStyle = lipgloss.NewStyle().
			Foreground(Text)

	CameraStyle = lipgloss.NewStyle().
			Foreground(Secondary).
			Bold(true)

	ImageStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(Primary).
			Padding(0, 1)

	MutedStyle = lipgloss.NewStyle().
			Foreground(Muted)

	ErrorTextStyle = lipgloss.NewStyle().
			Foreground(ErrorCol).
			Bold(true).
			PaddingLeft(2)

	OverlayStyle = lipgloss.NewStyle().
			Border(lipgloss.ThickBorder()).
			BorderForeground(Muted).
			Padding(1, 4).
			MarginLeft(2)

	AlertStyle = lipgloss.NewStyle().
			Border(lipgloss.DoubleBorder()).
			BorderForeground(ErrorCol).
			Foreground(Text).
			Padding(1, 4).
			MarginLeft(2)

	FooterStyle = lipgloss.NewStyle().
			Foreground(Muted).
			MarginTop(1).
			PaddingLeft(4).
			Faint(true)
)

func SuccessStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(Success)
}
