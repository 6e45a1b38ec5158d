package diff

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
)

func TestSplitLines(t *testing.T) {
	assert.Equal(t, []string{"0 @I1@ INDI", "1 SEX M"}, SplitLines("0 @I1@ INDI\n\n\n1 SEX M\n"))
	assert.Empty(t, SplitLines(""))
}

func TestLines(t *testing.T) {
	oldText := "0 @I1@ INDI\n1 NAME John /Smith/\n1 SEX M"
	newText := "0 @I1@ INDI\n1 NAME Jon /Smith/\n1 SEX M\n1 OBJE @M1@"

	want := []Line{
		{Op: Equal, Text: "0 @I1@ INDI"},
		{Op: Delete, Text: "1 NAME John /Smith/"},
		{Op: Insert, Text: "1 NAME Jon /Smith/"},
		{Op: Equal, Text: "1 SEX M"},
		{Op: Insert, Text: "1 OBJE @M1@"},
	}

	if diff := cmp.Diff(want, Lines(oldText, newText)); diff != "" {
		t.Errorf("Lines() mismatch (-want +got):\n%s", diff)
	}
}

func TestLines_NewRecord(t *testing.T) {
	got := Lines("", "0 @M1@ OBJE\n1 FILE a.jpg")

	assert.Equal(t, []Line{
		{Op: Insert, Text: "0 @M1@ OBJE"},
		{Op: Insert, Text: "1 FILE a.jpg"},
	}, got)
}

func TestHTML(t *testing.T) {
	linker := func(xref string) string {
		if xref == "I1" {
			return "/tree/demo/record/I1"
		}

		return ""
	}

	lines := []Line{
		{Op: Equal, Text: "0 @I1@ INDI"},
		{Op: Delete, Text: "1 NOTE <b>"},
		{Op: Insert, Text: "1 FAMS @F9@"},
	}

	want := `0 <a href="/tree/demo/record/I1">@I1@</a> INDI` + "\n" +
		"<del>1 NOTE &lt;b&gt;</del>\n" +
		"<ins>1 FAMS @F9@</ins>"

	assert.Equal(t, want, HTML(lines, linker))
	assert.Equal(t, "0 @I1@ INDI", HTML(lines[:1], nil))
}
