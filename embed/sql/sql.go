package sql

import _ "embed"

// Schema creates the tasks table.
//
//go:embed schema.sql
var Schema string
