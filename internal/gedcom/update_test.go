package gedcom

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEditLines(t *testing.T) {
	lines := EditLines(
		[]string{"1", "2", "x", "1"},
		[]string{"FILE", "FORM", "BAD", "NOTE"},
		[]string{"a.jpg", "jpg", "", "n"},
		[]string{"", "", "", "1"},
	)

	assert.Equal(t, []EditLine{
		{Level: 1, Tag: "FILE", Text: "a.jpg"},
		{Level: 2, Tag: "FORM", Text: "jpg"},
		{Level: 1, Tag: "NOTE", Text: "n", IsLink: true},
	}, lines)
}

func TestHandleUpdates(t *testing.T) {
	tests := []struct {
		name  string
		lines []EditLine
		want  string
	}{
		{
			name: "values are appended",
			lines: []EditLine{
				{Level: 1, Tag: "FILE", Text: "photos/a.jpg"},
				{Level: 2, Tag: "FORM", Text: "jpg"},
				{Level: 3, Tag: "TYPE", Text: "photo"},
			},
			want: "0 @new@ OBJE\n1 FILE photos/a.jpg\n2 FORM jpg\n3 TYPE photo",
		},
		{
			name: "empty lines without children are dropped",
			lines: []EditLine{
				{Level: 2, Tag: "TITL", Text: ""},
				{Level: 1, Tag: "_PRIM", Text: "Y"},
			},
			want: "0 @new@ OBJE\n1 _PRIM Y",
		},
		{
			name: "empty parent kept for non empty child",
			lines: []EditLine{
				{Level: 1, Tag: "FILE", Text: ""},
				{Level: 2, Tag: "TITL", Text: "Portrait"},
			},
			want: "0 @new@ OBJE\n1 FILE\n2 TITL Portrait",
		},
		{
			name: "date with only a time is dropped",
			lines: []EditLine{
				{Level: 2, Tag: "DATE", Text: ""},
				{Level: 3, Tag: "TIME", Text: "12:00"},
			},
			want: "0 @new@ OBJE\n3 TIME 12:00",
		},
		{
			name: "citation without source is dropped",
			lines: []EditLine{
				{Level: 1, Tag: "SOUR", Text: "@@", IsLink: true},
				{Level: 2, Tag: "PAGE", Text: "p. 4"},
			},
			want: "0 @new@ OBJE",
		},
		{
			name: "links and continuation lines",
			lines: []EditLine{
				{Level: 1, Tag: "SOUR", Text: "S1", IsLink: true},
				{Level: 1, Tag: "NOTE", Text: "line one\nline two"},
			},
			want: "0 @new@ OBJE\n1 SOUR @S1@\n1 NOTE line one\n2 CONT line two",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, HandleUpdates("0 @new@ OBJE", tt.lines))
		})
	}
}
