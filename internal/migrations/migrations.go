// Package migrations embeds the goose schema files.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
