// Package migrations embeds the bout archive schema.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
