package ui

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
)

func TestMenuModel(t *testing.T) {
	m := NewMenuModel()

	if m.cursor != 0 {
		t.Errorf("expected cursor 0, got %d", m.cursor)
	}

	msg := tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("j")}
	model, _ := m.Update(msg)
	m = model.(MenuModel)
	if m.cursor != 1 {
		t.Errorf("expected cursor 1 after 'j', got %d", m.cursor)
	}

	msg = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("k")}
	model, _ = m.Update(msg)
	m = model.(MenuModel)
	if m.cursor != 0 {
		t.Errorf("expected cursor 0 after 'k', got %d", m.cursor)
	}

	msg = tea.KeyMsg{Type: tea.KeyEnter}
	model, cmd := m.Update(msg)
	m = model.(MenuModel)
	if m.Selected() != "tui" {
		t.Errorf("expected selection 'tui', got %s", m.Selected())
	}
	if cmd == nil {
		t.Error("expected quit command after enter")
	}

	msg = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")}
	model, _ = m.Update(msg)
	m = model.(MenuModel)
	if !m.quitting {
		t.Error("expected quitting true after 'q'")
	}
}

func TestMenuChoices(t *testing.T) {
	m := NewMenuModel()
	for _, want := range []string{"tui", "web", "mcp"} {
		found := false
		for _, choice := range m.choices {
			if choice.command == want {
				found = true
				break
			}
		}
		if !found {
			t.Errorf("expected %q to be in menu choices", want)
		}
	}
}

func TestMenuNumberSelects(t *testing.T) {
	m := NewMenuModel()

	model, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("2")})
	m = model.(MenuModel)
	if m.Selected() != "web" {
		t.Errorf("expected selection 'web', got %q", m.Selected())
	}
	if cmd == nil {
		t.Error("expected quit command after number key")
	}

	m = NewMenuModel()
	model, cmd = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("9")})
	m = model.(MenuModel)
	if m.Selected() != "" || cmd != nil {
		t.Errorf("expected out of range number to be ignored, got %q", m.Selected())
	}
}

func TestMenuJumpKeys(t *testing.T) {
	m := NewMenuModel()

	model, _ := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("G")})
	m = model.(MenuModel)
	if m.cursor != len(m.choices)-1 {
		t.Errorf("expected cursor on last choice, got %d", m.cursor)
	}

	model, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("g")})
	m = model.(MenuModel)
	if m.cursor != 0 {
		t.Errorf("expected cursor 0 after 'g', got %d", m.cursor)
	}
}

func TestMenuViewDescribesFrontEnds(t *testing.T) {
	view := NewMenuModel().View()
	for _, c := range frontEnds {
		if !strings.Contains(view, c.command) {
			t.Errorf("expected view to list %q", c.command)
		}
		if !strings.Contains(view, c.description) {
			t.Errorf("expected view to describe %q", c.command)
		}
	}

	m := NewMenuModel()
	model, _ := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if view := model.(MenuModel).View(); view != "" {
		t.Errorf("expected empty view after selection, got %q", view)
	}
}
