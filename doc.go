// Package main provides the entry point of GoWebtrees-Admin.
// It reads etc/main.toml, migrates and seeds the database and serves the
// family tree pages, the FAQ, Stories and Journal modules and the admin area
// with the Fiber framework. Data is stored with gorm in sqlite, MySQL or PostgreSQL.
package main
