// Package diff compares two GEDCOM records line by line, for the change log.
package diff

import (
	"html"
	"regexp"
	"strings"

	"github.com/sergi/go-diff/diffmatchpatch"
)

// Op is the kind of a diff line.
type Op int

const (
	// Equal lines are in both records.
	Equal Op = iota
	// Delete lines are only in the old record.
	Delete
	// Insert lines are only in the new record.
	Insert
)

// Line is a single line of a diff.
type Line struct {
	Op   Op
	Text string
}

// Linker returns the URL of a record, or "" if no such record exists.
type Linker func(xref string) string

var (
	newlines = regexp.MustCompile(`\n+`)
	xrefs    = regexp.MustCompile(`@([A-Za-z0-9:_.-]+)@`)
)

// SplitLines splits on runs of newlines and drops empty lines.
func SplitLines(s string) []string {
	parts := newlines.Split(strings.ReplaceAll(s, "\r", ""), -1)
	out := make([]string, 0, len(parts))

	for _, p := range parts {
		if p != "" {
			out = append(out, p)
		}
	}

	return out
}

// Lines computes the Myers line diff between two texts.
func Lines(oldText, newText string) []Line {
	oldLines := SplitLines(oldText)
	newLines := SplitLines(newText)

	dmp := diffmatchpatch.New()
	dmp.DiffTimeout = 0

	a, b, lineArray := dmp.DiffLinesToChars(joinLines(oldLines), joinLines(newLines))
	diffs := dmp.DiffCharsToLines(dmp.DiffMain(a, b, false), lineArray)

	out := make([]Line, 0, len(oldLines)+len(newLines))

	for _, d := range diffs {
		op := Equal

		switch d.Type {
		case diffmatchpatch.DiffDelete:
			op = Delete
		case diffmatchpatch.DiffInsert:
			op = Insert
		case diffmatchpatch.DiffEqual:
		}

		for _, text := range strings.SplitAfter(d.Text, "\n") {
			text = strings.TrimSuffix(text, "\n")
			if text == "" {
				continue
			}

			out = append(out, Line{Op: op, Text: text})
		}
	}

	return out
}

func joinLines(lines []string) string {
	if len(lines) == 0 {
		return ""
	}

	return strings.Join(lines, "\n") + "\n"
}

// HTML renders the diff with <del> and <ins> markup, one line per row.
// Xrefs are turned into links when the linker knows the record.
func HTML(lines []Line, linker Linker) string {
	rows := make([]string, 0, len(lines))

	for _, l := range lines {
		text := LinkXrefs(html.EscapeString(l.Text), linker)

		switch l.Op {
		case Delete:
			rows = append(rows, "<del>"+text+"</del>")
		case Insert:
			rows = append(rows, "<ins>"+text+"</ins>")
		case Equal:
			rows = append(rows, text)
		}
	}

	return strings.Join(rows, "\n")
}

// LinkXrefs wraps "@XREF@" in a link for each xref the linker resolves.
func LinkXrefs(escaped string, linker Linker) string {
	if linker == nil {
		return escaped
	}

	return xrefs.ReplaceAllStringFunc(escaped, func(m string) string {
		xref := strings.Trim(m, "@")

		url := linker(xref)
		if url == "" {
			return m
		}

		return `<a href="` + html.EscapeString(url) + `">` + m + `</a>`
	})
}
