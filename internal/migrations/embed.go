// Package migrations embeds the goose migration scripts that define the
// local mirror schema. The goose version table is the store's single
// schema-version integer; bumping it means adding a new numbered script.
package migrations

import "embed"

//go:embed *.sql
var Migrations embed.FS
