package callbacks

import (
	"testing"

	"github.com/stretchr/testify/require"
	tele "gopkg.in/telebot.v4"
)

func TestParse(t *testing.T) {
	cases := []struct {
		name         string
		cb           *tele.Callback
		key, payload string
	}{
		{"nil", nil, "", ""},
		{"encoded", &tele.Callback{Data: "\freview_category|tea"}, "review_category", "tea"},
		{"no payload", &tele.Callback{Data: "\freview_category"}, "review_category", ""},
		{"payload with separator", &tele.Callback{Data: "\fk|a|b"}, "k", "a|b"},
		{"pre-split by telebot", &tele.Callback{Unique: "review_category", Data: "service"}, "review_category", "service"},
		{"plain data", &tele.Callback{Data: "legacy"}, "legacy", ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			key, payload := Parse(tc.cb)
			require.Equal(t, tc.key, key)
			require.Equal(t, tc.payload, payload)
		})
	}
}
