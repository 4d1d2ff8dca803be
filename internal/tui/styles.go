// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package tui

import "github.com/charmbracelet/lipgloss"

var (
	appStyle        = lipgloss.NewStyle().Padding(1, 2)
	titleStyle      = lipgloss.NewStyle().Bold(true)
	helpStyle       = lipgloss.NewStyle().Faint(true)
	errorStyle      = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("9"))
	warningStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
	noticeStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	overlayBoxStyle = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(1, 2)

	badgeStyle        = lipgloss.NewStyle().Padding(0, 1).Bold(true)
	badgeSyncedStyle  = badgeStyle.Foreground(lipgloss.Color("0")).Background(lipgloss.Color("10"))
	badgeSyncingStyle = badgeStyle.Foreground(lipgloss.Color("0")).Background(lipgloss.Color("12"))
	badgeLocalStyle   = badgeStyle.Foreground(lipgloss.Color("0")).Background(lipgloss.Color("11"))
)
