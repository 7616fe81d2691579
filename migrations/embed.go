// Package migrations embeds the bookings SQL migrations so the binary can apply
// them without files on disk.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
