package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/nathoo/kernelcrawl/types"
)

// lowHP is the fraction of max hp under which the bar turns red.
const lowHP = 0.25

// renderStatusBar produces a full-width inverted status line showing the
// room, hp, attack and equipment on the left and storage and turn on the
// right. Equipment names are dropped when the line does not fit.
func renderStatusBar(h types.HUD, width int) string {
	weapon := h.Weapon
	if weapon == "" {
		weapon = "fists"
	}
	left := fmt.Sprintf(" %s | HP %d/%d | ATK %d", h.Room, h.HP, h.MaxHP, h.Attack)
	detail := fmt.Sprintf(" | %s", weapon)
	if h.Med != "" {
		detail += fmt.Sprintf(" | %s %d/%d", h.Med, h.MedUses, h.MedMaxUses)
	}

	scan := ""
	if h.Scannable {
		scan = "SCAN | "
	}
	right := fmt.Sprintf("%sMEM %d/%d | T:%d ", scan, h.Weight, h.MaxWeight, h.Turn)

	if lipgloss.Width(left)+lipgloss.Width(detail)+lipgloss.Width(right)+1 < width {
		left += detail
	}

	gap := width - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 0 {
		gap = 0
	}

	style := styleStatusBar
	if h.MaxHP > 0 && float64(h.HP) < float64(h.MaxHP)*lowHP {
		style = styleStatusLow
	}
	bar := left + strings.Repeat(" ", gap) + right
	return style.Width(width).Render(bar)
}

// renderRoom draws the room view in a frame. The first line of desc is the
// room name.
func renderRoom(desc string, width int) string {
	if desc == "" {
		return ""
	}
	title, body, _ := strings.Cut(desc, "\n")
	inner := width - 4 // border and padding
	if inner < 10 {
		inner = 10
	}
	content := styleRoomTitle.Render(title)
	if body != "" {
		content += "\n" + wordWrap(body, inner)
	}
	return styleRoomFrame.Width(width - 2).Render(content)
}
