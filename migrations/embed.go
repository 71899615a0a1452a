// Package migrations embeds the journal schema so the binary carries it.
package migrations

import "embed"

// FS holds the golang-migrate files at its root.
//
//go:embed *.sql
var FS embed.FS
