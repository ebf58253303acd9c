package ui

import tea "github.com/charmbracelet/bubbletea"

// --- Key Helpers ---

func isKey(msg tea.KeyMsg, keys ...string) bool {
	for _, k := range keys {
		if msg.String() == k {
			return true
		}
	}
	return false
}

func isQuit(msg tea.KeyMsg) bool {
	return isKey(msg, "q", "ctrl+c")
}

func isBack(msg tea.KeyMsg) bool {
	if msg.Type == tea.KeyEsc {
		return true
	}
	return isKey(msg, "esc", "ctrl+[")
}

func isUp(msg tea.KeyMsg) bool {
	return isKey(msg, "up", "ctrl+p")
}

func isDown(msg tea.KeyMsg) bool {
	return isKey(msg, "down", "ctrl+n")
}

func isLeft(msg tea.KeyMsg) bool {
	return isKey(msg, "left")
}

func isRight(msg tea.KeyMsg) bool {
	return isKey(msg, "right")
}

func isEnter(msg tea.KeyMsg) bool {
	return isKey(msg, "enter")
}

func isSpace(msg tea.KeyMsg) bool {
	return isKey(msg, " ")
}

func isErase(msg tea.KeyMsg) bool {
	return isKey(msg, "backspace", "delete")
}

func isSubmit(msg tea.KeyMsg) bool {
	return isKey(msg, "ctrl+s")
}

func isNextField(msg tea.KeyMsg) bool {
	return isKey(msg, "tab") || isDown(msg)
}

func isPrevField(msg tea.KeyMsg) bool {
	return isKey(msg, "shift+tab") || isUp(msg)
}

// typedRune returns the printable text carried by msg, or "".
func typedRune(msg tea.KeyMsg) string {
	switch msg.Type {
	case tea.KeyRunes:
		return string(msg.Runes)
	case tea.KeySpace:
		return " "
	}
	return ""
}

func dropLastRune(s string) string {
	if s == "" {
		return ""
	}
	runes := []rune(s)
	return string(runes[:len(runes)-1])
}

func tabIndexForKey(key string) (int, bool) {
	if len(key) != 1 || key[0] < '1' || key[0] > '9' {
		return 0, false
	}
	idx := int(key[0] - '1')
	if idx >= tabCount {
		return 0, false
	}
	return idx, true
}
