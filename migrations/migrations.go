// Package migrations embeds the ordered SQL schema files applied by `billing migrate`.
package migrations

import "embed"

// FS holds every NNN_description.sql file in this directory.
//
//go:embed *.sql
var FS embed.FS
