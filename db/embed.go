// Package db provides the embedded schema for the catalog and promotion
// tables.
package db

import _ "embed"

// Schema contains the idempotent DDL statements for all tables.
//
//go:embed migrations/001_schema.sql
var Schema string
