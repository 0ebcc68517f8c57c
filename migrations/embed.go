// Package migrations holds the goose SQL migrations applied on start and by `dashboard migrate`.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
