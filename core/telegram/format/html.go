// Package format holds text helpers for Telegram parse modes.
package format

import "strings"

var htmlEscaper = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;")

// EscapeHTML escapes the characters Telegram's HTML parse mode treats as markup.
// Quotes are left alone because they are only special inside attributes.
func EscapeHTML(s string) string {
	return htmlEscaper.Replace(s)
}
