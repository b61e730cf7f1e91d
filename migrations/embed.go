// Package migrations holds the SQL schema migrations compiled into the
// binary.
package migrations

import "embed"

// FS contains every NNNNNN_name.{up,down}.sql file of this directory
//
//go:embed *.sql
var FS embed.FS
