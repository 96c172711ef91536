package banner

import (
	"github.com/charmbracelet/lipgloss"

	"wsprobe/internal/report"
)

func GetString() string {
	renderer := lipgloss.DefaultRenderer()

	style := renderer.NewStyle().
		Foreground(report.ColorPrimary).
		Bold(true)

	ascii := `
                                               __
 _      __   _____    ____    _____  ____     / /_   ___
| | /| / /  / ___/   / __ \  / ___/ / __ \   / __ \ / _ \
| |/ |/ /  (__  )   / /_/ / / /    / /_/ /  / /_/ //  __/
|__/|__/  /____/   / .___/ /_/     \____/  /_.___/ \___/
                  /_/                                    `

	return "\n" + style.Render(ascii) + "\n"
}
