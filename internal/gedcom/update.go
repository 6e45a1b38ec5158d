package gedcom

import (
	"strconv"
	"strings"
)

// EditLine is one row of a record edit form: the glevels[], tag[], text[] and islink[] arrays.
type EditLine struct {
	Level  int
	Tag    string
	Text   string
	IsLink bool
}

// EditLines zips the parallel form arrays into edit lines. Missing entries are empty.
func EditLines(levels, tags, texts, links []string) []EditLine {
	out := make([]EditLine, 0, len(levels))

	for i, l := range levels {
		level, err := strconv.Atoi(l)
		if err != nil {
			continue
		}

		line := EditLine{Level: level}
		if i < len(tags) {
			line.Tag = tags[i]
		}

		if i < len(texts) {
			line.Text = texts[i]
		}

		if i < len(links) {
			line.IsLink = links[i] != "" && links[i] != "0"
		}

		out = append(out, line)
	}

	return out
}

// HandleUpdates appends the edit lines to a record.
// A line is kept when it has a value or when one of its subordinate lines has one.
// Multi line values become CONT lines one level down.
func HandleUpdates(record string, lines []EditLine) string {
	var b strings.Builder

	b.WriteString(record)

	for j := range lines {
		// A citation with no source drops its whole structure.
		if lines[j].Tag == "SOUR" && (lines[j].Text == "@@" || lines[j].Text == "") {
			lines[j].Text = ""
			for k := j + 1; k < len(lines) && lines[k].Level > lines[j].Level; k++ {
				lines[k].Text = ""
			}
		}
	}

	for j, line := range lines {
		if !keep(lines, j) {
			continue
		}

		out := strconv.Itoa(line.Level) + " " + line.Tag

		if line.Text != "" {
			if line.IsLink {
				out += " @" + strings.Trim(line.Text, "@") + "@"
			} else {
				out += " " + line.Text
			}
		}

		cont := "\n" + strconv.Itoa(line.Level+1) + " CONT "
		out = strings.ReplaceAll(strings.ReplaceAll(out, "\r\n", "\n"), "\n", cont)

		b.WriteString("\n")
		b.WriteString(out)
	}

	return b.String()
}

func keep(lines []EditLine, j int) bool {
	if strings.TrimSpace(lines[j].Text) != "" {
		return true
	}

	for k := j + 1; k < len(lines) && lines[k].Level > lines[j].Level; k++ {
		if strings.TrimSpace(lines[k].Text) == "" {
			continue
		}

		// A TIME on its own does not justify an empty DATE.
		if lines[j].Tag != "DATE" || lines[k].Tag != "TIME" {
			return true
		}
	}

	return false
}
