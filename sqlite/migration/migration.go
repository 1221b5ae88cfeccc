// Package migration holds the embedded schema scripts.
package migration

import "embed"

//go:embed *.sql
var Scripts embed.FS
