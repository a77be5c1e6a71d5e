package ui

import "github.com/charmbracelet/lipgloss"

// Lipgloss styles shared across views
var (
	docStyle    = lipgloss.NewStyle().Margin(1, 2)
	titleStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("228")).Bold(true)
	subtleStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	okStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	boxStyle    = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	activeStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("212")).Bold(true)
	cardStyle   = lipgloss.NewStyle().Border(lipgloss.NormalBorder()).Padding(0, 1)
	yearStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("39")).Bold(true)
	hostIcon    = "👑"
	offlineIcon = "💤"
)

// teamColors 队伍配色，按队伍序号循环使用
var teamColors = []lipgloss.Color{"39", "208", "120", "213", "226", "87"}

func teamStyle(index int) lipgloss.Style {
	color := teamColors[index%len(teamColors)]
	return lipgloss.NewStyle().Foreground(color).Bold(true)
}
