// Package uniuri generates random tokens for CSRF protection and session bound secrets.
package uniuri
