// Package migrations embeds the SQL schema and seed files so the binaries
// can apply them without a checkout.
package migrations

import (
	"embed"
	"io/fs"
)

//go:embed sql/*.sql
var sqlFiles embed.FS

//go:embed seeds/*.sql
var seedFiles embed.FS

// SQL holds the versioned up/down migration files.
var SQL fs.FS

// Seeds holds the idempotent seed files.
var Seeds fs.FS

func init() {
	var err error
	SQL, err = fs.Sub(sqlFiles, "sql")
	if err != nil {
		panic(err)
	}
	Seeds, err = fs.Sub(seedFiles, "seeds")
	if err != nil {
		panic(err)
	}
}
