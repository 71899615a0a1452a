package review

import (
	"fmt"
	"strings"

	"github.com/m3rciful/reviewbot/core/telegram/format"
)

const starGlyph = "⭐"

// Stars renders a rating as repeated star glyphs; 0 yields "".
func Stars(rating int) string {
	if rating <= 0 {
		return ""
	}
	return strings.Repeat(starGlyph, rating)
}

// FormatPost renders the channel post in Telegram HTML. User text is escaped.
func FormatPost(d Draft) string {
	return fmt.Sprintf(
		"<b>Товар или услуга</b>: %s\n<b>Рэйтинг</b>: %s\n<b>Отзыв</b>: %s\n\n#отзыв #%s",
		format.EscapeHTML(d.Product),
		Stars(d.Rating),
		format.EscapeHTML(d.ReviewText),
		d.Category.Hashtag(),
	)
}
