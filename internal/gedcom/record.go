package gedcom

import (
	"crypto/md5" //nolint:gosec // fact ids are identifiers, not security tokens
	"encoding/hex"
	"regexp"
	"strconv"
	"strings"
)

// NewXref is the placeholder xref of a record that was not saved yet.
const NewXref = "new"

var (
	xrefRegex    = regexp.MustCompile(`^[A-Za-z0-9:_.-]+$`)
	headerRegex  = regexp.MustCompile(`^0 @([^@]+)@ (\w+)`)
	pointerRegex = regexp.MustCompile(`\n\d+ (\w+) @([^@#\n]+)@`)
	factRegex    = regexp.MustCompile(`^1 (\w+)(?: (.*))?$`)
	targetRegex  = regexp.MustCompile(`^@([^@#]+)@$`)
	xrefInText   = regexp.MustCompile(`@([A-Za-z0-9:_.-]+)@`)
)

// Pointer is a reference from a record to another record.
type Pointer struct {
	Tag    string
	Target string
}

// Fact is a level 1 structure of a record, including its subordinate lines.
type Fact struct {
	ID     string
	Tag    string
	Value  string
	Target string
	Gedcom string
}

// IsXref reports whether s is a valid record identifier.
func IsXref(s string) bool {
	return xrefRegex.MatchString(s)
}

// Header returns the xref and the record type of a level 0 record.
func Header(record string) (xref, tag string) {
	m := headerRegex.FindStringSubmatch(record)
	if m == nil {
		return "", ""
	}

	return m[1], m[2]
}

// SetXref replaces the xref on the level 0 line.
func SetXref(record, xref string) string {
	old, _ := Header(record)
	if old == "" {
		return record
	}

	return strings.Replace(record, "0 @"+old+"@", "0 @"+xref+"@", 1)
}

// Pointers returns every xref pointer below level 0.
func Pointers(record string) []Pointer {
	matches := pointerRegex.FindAllStringSubmatch(record, -1)
	out := make([]Pointer, 0, len(matches))

	for _, m := range matches {
		out = append(out, Pointer{Tag: m[1], Target: m[2]})
	}

	return out
}

// Xrefs returns every "@XREF@" found in a piece of text, in order of appearance.
func Xrefs(text string) []string {
	matches := xrefInText.FindAllStringSubmatch(text, -1)
	out := make([]string, 0, len(matches))

	for _, m := range matches {
		out = append(out, m[1])
	}

	return out
}

// FactID returns the identifier of a fact: a hash of its GEDCOM text.
func FactID(gedcom string) string {
	sum := md5.Sum([]byte(gedcom)) //nolint:gosec

	return hex.EncodeToString(sum[:])
}

// split returns the level 0 part and the level 1 facts of a record.
func split(record string) (string, []string) {
	lines := strings.Split(strings.ReplaceAll(record, "\r\n", "\n"), "\n")

	var (
		head  []string
		facts []string
		cur   []string
	)

	for _, line := range lines {
		switch {
		case strings.HasPrefix(line, "1 "):
			if cur != nil {
				facts = append(facts, strings.Join(cur, "\n"))
			}

			cur = []string{line}
		case cur == nil:
			head = append(head, line)
		default:
			cur = append(cur, line)
		}
	}

	if cur != nil {
		facts = append(facts, strings.Join(cur, "\n"))
	}

	return strings.Join(head, "\n"), facts
}

// Facts splits a record into its level 1 facts.
func Facts(record string) []Fact {
	_, raw := split(record)
	out := make([]Fact, 0, len(raw))

	for _, gedcom := range raw {
		first, _, _ := strings.Cut(gedcom, "\n")

		f := Fact{ID: FactID(gedcom), Gedcom: gedcom}
		if m := factRegex.FindStringSubmatch(first); m != nil {
			f.Tag = m[1]
			f.Value = m[2]

			if t := targetRegex.FindStringSubmatch(m[2]); t != nil {
				f.Target = t[1]
			}
		}

		out = append(out, f)
	}

	return out
}

// FactsByTag returns the facts with the given tag.
func FactsByTag(record, tag string) []Fact {
	var out []Fact

	for _, f := range Facts(record) {
		if f.Tag == tag {
			out = append(out, f)
		}
	}

	return out
}

// UpdateFact replaces the fact with the given id. The second result is false if no fact matched.
func UpdateFact(record, factID, gedcom string) (string, bool) {
	return rewrite(record, factID, gedcom)
}

// DeleteFact removes the fact with the given id. The second result is false if no fact matched.
func DeleteFact(record, factID string) (string, bool) {
	return rewrite(record, factID, "")
}

// AddFact appends a level 1 fact to the record.
func AddFact(record, gedcom string) string {
	return strings.TrimRight(record, "\n") + "\n" + strings.Trim(gedcom, "\n")
}

func rewrite(record, factID, replacement string) (string, bool) {
	head, facts := split(record)
	parts := []string{head}
	found := false

	for _, f := range facts {
		if !found && FactID(f) == factID {
			found = true

			if replacement != "" {
				parts = append(parts, strings.Trim(replacement, "\n"))
			}

			continue
		}

		parts = append(parts, f)
	}

	return strings.Join(parts, "\n"), found
}

// Cont collects the CONT and CONC continuation lines at the given level.
// CONT starts a new line, CONC is appended to the current one.
func Cont(level int, subrecord string) string {
	var (
		b      strings.Builder
		prefix = strconv.Itoa(level) + " "
	)

	for _, line := range strings.Split(subrecord, "\n") {
		rest, ok := strings.CutPrefix(line, prefix)
		if !ok {
			continue
		}

		switch {
		case rest == "CONT" || strings.HasPrefix(rest, "CONT "):
			b.WriteString("\n")
			b.WriteString(strings.TrimPrefix(strings.TrimPrefix(rest, "CONT"), " "))
		case rest == "CONC" || strings.HasPrefix(rest, "CONC "):
			b.WriteString(strings.TrimPrefix(strings.TrimPrefix(rest, "CONC"), " "))
		}
	}

	return b.String()
}

// IsFileExternal reports whether a FILE value is a URL rather than a local path.
func IsFileExternal(file string) bool {
	return strings.Contains(file, "://")
}

var (
	nameRegex      = regexp.MustCompile(`\n1 NAME (.+)`)
	mediaFileRegex = regexp.MustCompile(`\n1 FILE (.*)`)
	mediaTitlRegex = regexp.MustCompile(`\n2 TITL (.+)`)
	mediaTypeRegex = regexp.MustCompile(`\n3 TYPE (.+)`)
)

// Name returns the first NAME of an individual without the surname slashes.
func Name(record string) string {
	m := nameRegex.FindStringSubmatch(record)
	if m == nil {
		return ""
	}

	return strings.Join(strings.Fields(strings.ReplaceAll(m[1], "/", " ")), " ")
}

// MediaFile returns the first FILE of a media object with its TITL and TYPE.
func MediaFile(record string) (file, title, kind string) {
	if m := mediaFileRegex.FindStringSubmatch(record); m != nil {
		file = strings.TrimSpace(m[1])
	}

	if m := mediaTitlRegex.FindStringSubmatch(record); m != nil {
		title = strings.TrimSpace(m[1])
	}

	if m := mediaTypeRegex.FindStringSubmatch(record); m != nil {
		kind = strings.TrimSpace(m[1])
	}

	return file, title, kind
}
