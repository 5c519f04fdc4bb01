// Package migrations embeds the goose SQL migrations for the users, posts and followers tables.
package migrations

import "embed"

//go:embed *.sql
var Migrations embed.FS
