package components

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConfirmDialogIncludesTitleMessageAndHints(t *testing.T) {
	clean := SanitizeText(ConfirmDialog("Quit", "Sprays are still running. Quit anyway?"))

	assert.Contains(t, clean, "Quit")
	assert.Contains(t, clean, "Sprays are still running.")
	assert.Contains(t, clean, "y: confirm | n: cancel")
}

func TestInputDialogIncludesTitleInputAndHints(t *testing.T) {
	clean := SanitizeText(InputDialog("Open Workunit", "D20260101"))

	assert.Contains(t, clean, "Open Workunit")
	assert.Contains(t, clean, "> D20260101")
	assert.Contains(t, clean, "enter: submit | esc: cancel")
}

func TestInputDialogWithHintFlattensInput(t *testing.T) {
	clean := SanitizeText(InputDialogWithHint("Filter", "*.json\n", "enter: apply | esc: clear"))

	assert.Contains(t, clean, "> *.json")
	assert.Contains(t, clean, "enter: apply | esc: clear")
}
