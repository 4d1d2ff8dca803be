// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package tui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/MKhiriev/nutrilife-sync/models"
)

const uiDivider = "──────────────────────────────────────────────────────"

func renderPage(title, data, hotKeys string) string {
	var b strings.Builder

	b.WriteString(title)
	b.WriteString("\n")
	b.WriteString("  ")
	b.WriteString(uiDivider)
	b.WriteString("\n\n")

	if strings.TrimSpace(data) != "" {
		lines := strings.Split(data, "\n")
		for _, line := range lines {
			b.WriteString("  ")
			b.WriteString(line)
			b.WriteString("\n")
		}
	} else {
		b.WriteString("  -\n")
	}

	b.WriteString("\n")
	b.WriteString("  ")
	b.WriteString(uiDivider)
	b.WriteString("\n")

	if strings.TrimSpace(hotKeys) != "" {
		b.WriteString("  ")
		b.WriteString(hotKeys)
		b.WriteString("\n")
	}
	b.WriteString("  ctrl+c: quit")

	return b.String()
}

// statusBadge renders the sync status shown next to the title.
func statusBadge(status models.SyncStatus) string {
	switch status {
	case models.StatusSynced:
		return badgeSyncedStyle.Render("● synced")
	case models.StatusSyncing:
		return badgeSyncingStyle.Render("◌ syncing")
	case models.StatusLocalOnly:
		return badgeLocalStyle.Render("▲ saved to device")
	default:
		return badgeStyle.Render(string(status))
	}
}

func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func formatKcal(v float64) string {
	return fmt.Sprintf("%.0f kcal", v)
}

func formatWeight(v float64) string {
	return fmt.Sprintf("%.1f kg", v)
}

func fitText(v string, max int) string {
	r := []rune(v)
	if max <= 0 || len(r) <= max {
		return v
	}
	if max <= 3 {
		return string(r[:max])
	}
	return string(r[:max-3]) + "..."
}
