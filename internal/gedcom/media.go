package gedcom

import (
	"path"
	"regexp"
	"strconv"
	"strings"
)

var (
	fileLineRegex = regexp.MustCompile(`\n\d (FILE.*)`)
	formRegex     = regexp.MustCompile(`\n(2 FORM .*)`)
	typeRegex     = regexp.MustCompile(`\n(3 TYPE .*)`)
	titleRegex    = regexp.MustCompile(`\n(2 TITL .*)`)
	hebrewRegex   = regexp.MustCompile(`\n(3 _HEB .*)`)
	romanRegex    = regexp.MustCompile(`\n(3 ROMN .*)`)
	primaryRegex  = regexp.MustCompile(`\n(1 _PRIM .*)`)
	lineRegex     = regexp.MustCompile(`(\d) (\w+)(.*)`)
)

// Tags of a media object handled by dedicated form fields.
var mediaFormTags = map[string]bool{
	"FILE": true, "FORM": true, "TYPE": true, "TITL": true,
	"_PRIM": true, "_THUM": true, "CHAN": true, "DATA": true,
}

// MediaForm holds the editable fields of a media object.
type MediaForm struct {
	// File is the raw "FILE ..." line without its level.
	File     string
	FileName string
	Folder   string
	External bool
	Form     string
	Type     string
	Title    string
	Hebrew   string
	Roman    string
	Primary  string
	// Other lines of the record, in edit form order.
	Other []string
}

// NewFile reports whether the form is for a new upload.
func (m MediaForm) NewFile() bool {
	return m.File == "FILE"
}

// ParseMediaForm reads the fields of the media edit form from an existing record.
// For a new media object gedrec is empty and filename may carry a preset name.
func ParseMediaForm(gedrec, filename, advancedNameFacts string) MediaForm {
	var m MediaForm

	switch match := fileLineRegex.FindStringSubmatch(gedrec); {
	case match != nil:
		m.File = match[1]
	case filename != "":
		m.File = "FILE " + filename
	default:
		m.File = "FILE"
	}

	if !m.NewFile() {
		value := strings.TrimPrefix(m.File, "FILE ")
		m.External = IsFileExternal(m.File)

		if m.External {
			m.FileName = value
		} else {
			m.FileName = path.Base(value)

			m.Folder = path.Dir(value)
			if m.Folder == "." {
				m.Folder = ""
			}
		}
	}

	m.Form = firstOr(formRegex, gedrec, "2 FORM")
	m.Type = firstOr(typeRegex, gedrec, "3 TYPE photo")
	m.Title = firstOr(titleRegex, gedrec, "2 TITL")

	if strings.Contains(advancedNameFacts, "_HEB") {
		m.Hebrew = firstOr(hebrewRegex, gedrec, "3 _HEB")
	}

	if strings.Contains(advancedNameFacts, "ROMN") {
		m.Roman = firstOr(romanRegex, gedrec, "3 ROMN")
	}

	m.Primary = firstOr(primaryRegex, gedrec, "1 _PRIM")

	if gedrec != "" {
		m.Other = otherLines(gedrec)
	}

	return m
}

func firstOr(re *regexp.Regexp, s, fallback string) string {
	if match := re.FindStringSubmatch(s); match != nil {
		return match[1]
	}

	return fallback
}

// citation collects a source citation so it can be shown as one block of fields.
type citation struct {
	level                        int
	sour, page, text, date, quay string
}

func (c citation) lines() []string {
	return []string{
		strconv.Itoa(c.level) + " SOUR " + c.sour,
		strconv.Itoa(c.level+1) + " PAGE " + c.page,
		strconv.Itoa(c.level+2) + " TEXT " + c.text, //nolint:mnd
		strconv.Itoa(c.level+2) + " DATE " + c.date, //nolint:mnd
		strconv.Itoa(c.level+1) + " QUAY " + c.quay,
	}
}

// otherLines flattens the level 1 structures without a dedicated field into edit lines.
func otherLines(gedrec string) []string {
	var (
		out []string
		src *citation
	)

	for _, subrec := range otherSubrecords(gedrec) {
		for _, piece := range strings.Split(subrec, "\n") {
			match := lineRegex.FindStringSubmatch(piece)
			if match == nil {
				continue
			}

			level, _ := strconv.Atoi(match[1])
			fact := strings.TrimSpace(match[2])
			event := strings.TrimSpace(match[3])

			if fact == "NOTE" || fact == "TEXT" {
				event += Cont(level+1, subrec)
			}

			if src != nil && level <= src.level {
				out = append(out, src.lines()...)
				src = nil
			}

			if fact == "SOUR" {
				src = &citation{level: level, sour: event}
				continue
			}

			if src != nil {
				switch fact {
				case "PAGE":
					src.page = event
				case "TEXT":
					src.text = event
				case "DATE":
					src.date = event
				case "QUAY":
					src.quay = event
				}

				continue
			}

			if fact != "" && fact != "CONC" && fact != "CONT" && fact != "DATA" {
				out = append(out, strconv.Itoa(level)+" "+fact+" "+event)
			}
		}
	}

	if src != nil {
		out = append(out, src.lines()...)
	}

	return out
}

// otherSubrecords returns the level 1 structures whose tag has no dedicated form field.
func otherSubrecords(gedrec string) []string {
	var out []string

	for _, f := range Facts(gedrec) {
		first, _, _ := strings.Cut(f.Gedcom, "\n")
		tag := strings.TrimPrefix(first, "1 ")

		skip := false

		for t := range mediaFormTags {
			if strings.HasPrefix(tag, t) {
				skip = true
				break
			}
		}

		if !skip {
			out = append(out, f.Gedcom)
		}
	}

	return out
}

// LineValue returns the value of a "<level> <TAG> <value>" line, "" when it has none.
func LineValue(line string) string {
	m := lineRegex.FindStringSubmatch(line)
	if m == nil {
		return ""
	}

	return strings.TrimPrefix(m[3], " ")
}
