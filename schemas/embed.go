// Package schemas provides the embedded DDL of the attempts ledger, one file per SQL dialect.
package schemas

import "embed"

// Files contains <dialect>.sql for every supported dialect.
//
//go:embed *.sql
var Files embed.FS
