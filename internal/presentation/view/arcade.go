package view

import (
	"fmt"
	"strings"

	"github.com/muesli/termenv"
	"github.com/syncroot/roomsync/pkg/variants/arcade"
)

// Dashboard renders arcade snapshots with termenv styling.
type Dashboard struct {
	profile termenv.Profile
}

// NewDashboard detects the terminal color profile.
func NewDashboard() *Dashboard {
	return &Dashboard{profile: termenv.ColorProfile()}
}

// NewDashboardPlain renders without color, for pipes and tests.
func NewDashboardPlain() *Dashboard {
	return &Dashboard{profile: termenv.Ascii}
}

const hpBarWidth = 20

// Render returns the dashboard for a snapshot.
func (d *Dashboard) Render(snap arcade.Snapshot) string {
	var b strings.Builder

	header := fmt.Sprintf("%s  lvl %d", snap.Player.Handle, snap.Player.Level)
	fmt.Fprintln(&b, d.style(header, "#e879f9"))

	fmt.Fprintf(&b, "HP %s %d/%d\n", d.hpBar(snap.Player), snap.Player.HP, snap.Player.MaxHP)
	fmt.Fprintf(&b, "Credits: %d\n", snap.Player.Credits)
	if snap.Location != "" {
		fmt.Fprintf(&b, "Location: %s\n", snap.Location)
	}

	if len(snap.Inventory) > 0 {
		fmt.Fprintf(&b, "Inventory: %s\n", strings.Join(snap.Inventory, ", "))
	}

	if len(snap.Missions) > 0 {
		fmt.Fprintln(&b, d.style("Missions", "#818cf8"))
		for _, m := range snap.Missions {
			fmt.Fprintf(&b, "  [%s] %s\n", m.Status, m.Title)
		}
	}

	for flag, set := range snap.Flags {
		if set {
			fmt.Fprintf(&b, "* %s\n", flag)
		}
	}

	return b.String()
}

func (d *Dashboard) style(text, color string) string {
	return termenv.String(text).Foreground(d.profile.Color(color)).String()
}

// hpBar draws a fixed-width bar, colored by remaining fraction.
func (d *Dashboard) hpBar(p arcade.Player) string {
	if p.MaxHP <= 0 {
		return strings.Repeat("-", hpBarWidth)
	}
	filled := p.HP * hpBarWidth / p.MaxHP
	if filled > hpBarWidth {
		filled = hpBarWidth
	}
	if filled < 0 {
		filled = 0
	}

	color := "#4ade80"
	switch {
	case p.HP*4 <= p.MaxHP:
		color = "#fb7185"
	case p.HP*2 <= p.MaxHP:
		color = "#facc15"
	}

	bar := strings.Repeat("█", filled) + strings.Repeat("░", hpBarWidth-filled)
	return d.style(bar, color)
}
