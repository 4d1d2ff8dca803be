// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package tui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	up    key.Binding
	down  key.Binding
	enter key.Binding
	esc   key.Binding
	quit  key.Binding
	yes   key.Binding
	no    key.Binding
}

var keys = keyMap{
	up:    key.NewBinding(key.WithKeys("up")),
	down:  key.NewBinding(key.WithKeys("down")),
	enter: key.NewBinding(key.WithKeys("enter")),
	esc:   key.NewBinding(key.WithKeys("esc")),
	quit:  key.NewBinding(key.WithKeys("ctrl+c")),
	yes:   key.NewBinding(key.WithKeys("y", "Y")),
	no:    key.NewBinding(key.WithKeys("n", "N", "esc")),
}
