// Package db provides the embedded database schema.
package db

import _ "embed"

// Schema contains the DDL statements for the products and orders tables.
// All statements are idempotent, so the schema can be applied on every start.
//
//go:embed migrations/001_schema.sql
var Schema string
