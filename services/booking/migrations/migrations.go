// Package migrations embeds the booking schema.
package migrations

import "embed"

//go:embed *.up.sql
var FS embed.FS
