package cli

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTable_Render(t *testing.T) {
	table := NewTable(NewStyles(false),
		TableColumn{Name: "Workplace"},
		TableColumn{Name: "Rate", Align: AlignRight},
	)
	table.AddRow("Café", "12.5")
	table.AddRow("Night bar", "9")
	table.AddRow("Short")

	var out bytes.Buffer
	table.Render(&out)

	assert.Equal(t, ""+
		"Workplace  Rate\n"+
		"Café       12.5\n"+
		"Night bar     9\n"+
		"Short\n", out.String())
}

func TestPad(t *testing.T) {
	tests := []struct {
		name  string
		input string
		width int
		align Alignment
		want  string
	}{
		{name: "left", input: "ab", width: 4, align: AlignLeft, want: "ab  "},
		{name: "right", input: "ab", width: 4, align: AlignRight, want: "  ab"},
		{name: "too wide", input: "abcdef", width: 4, align: AlignRight, want: "abcdef"},
		{name: "runes", input: "€5", width: 3, align: AlignRight, want: " €5"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, pad(tt.input, tt.width, tt.align))
		})
	}
}
