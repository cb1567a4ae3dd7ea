// Package migrations embeds the SQL migration files so the server binary can
// bring a database up to date without shipping files alongside it.
package migrations

import "embed"

// FS holds the goose migration files.
//
//go:embed *.sql
var FS embed.FS
