package keyboard

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestInlineButtonsNPerRow(t *testing.T) {
	buttons := []InlineBtn{
		{Text: "A", Unique: "pick", Data: "a"},
		{Text: "B", Unique: "pick", Data: "b"},
		{Text: "C", Unique: "pick", Data: "c"},
	}

	markup := InlineButtonsNPerRow(buttons, 3)
	require.Len(t, markup.InlineKeyboard, 1)
	row := markup.InlineKeyboard[0]
	require.Len(t, row, 3)
	require.Equal(t, "A", row[0].Text)
	require.Equal(t, "pick", row[0].Unique)
	require.Equal(t, "b", row[1].Data)

	markup = InlineButtonsNPerRow(buttons, 2)
	require.Len(t, markup.InlineKeyboard, 2)
	require.Len(t, markup.InlineKeyboard[1], 1)

	markup = InlineButtonsNPerRow(buttons, 0)
	require.Len(t, markup.InlineKeyboard, 3)
}
