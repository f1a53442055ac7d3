package ui

import (
	"bytes"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func capture(t *testing.T) (*bytes.Buffer, *bytes.Buffer) {
	t.Helper()
	var out, errOut bytes.Buffer
	oldOut, oldErr := Out, Err
	Out, Err = &out, &errOut
	oldNoColor := color.NoColor
	color.NoColor = true
	t.Cleanup(func() {
		Out, Err = oldOut, oldErr
		color.NoColor = oldNoColor
	})
	return &out, &errOut
}

func TestMessages(t *testing.T) {
	out, errOut := capture(t)

	PrintSuccess("wrote %d files", 4)
	PrintWarning("no tables")
	PrintInfo("watching %s", "mappers")
	PrintError("boom: %s", "bad")

	assert.Contains(t, out.String(), "✓ wrote 4 files")
	assert.Contains(t, out.String(), "⚠ no tables")
	assert.Contains(t, out.String(), "ℹ watching mappers")
	assert.NotContains(t, out.String(), "boom")
	assert.Contains(t, errOut.String(), "✗ boom: bad")
}

func TestPrintStepAndList(t *testing.T) {
	out, _ := capture(t)

	PrintStep(2, 3, "Introspecting")
	PrintList([]string{"a.h", "a.c"})

	assert.Contains(t, out.String(), "[2/3] Introspecting")
	assert.Contains(t, out.String(), "  • a.h\n  • a.c\n")
}

func TestPrintTable(t *testing.T) {
	out, _ := capture(t)

	require.NoError(t, PrintTable([]string{"Slot", "Field"}, [][]string{{"0", "id"}}))
	assert.Contains(t, out.String(), "Slot")
	assert.Contains(t, out.String(), "id")
}

func TestColorPrint(t *testing.T) {
	out, _ := capture(t)

	ColorPrint(GetColorPrinters()["primary"], "yobatis %s\n", "0.2.0")
	assert.Equal(t, "yobatis 0.2.0\n", out.String())
}
