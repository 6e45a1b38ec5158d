package sanitize

import (
	"html/template"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBody(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want template.HTML
	}{
		{"plain text", "line 1\nline 2", "line 1<br>\nline 2"},
		{"plain text is escaped", "a < b & c", "a &lt; b &amp; c"},
		{"windows line breaks", "a\r\nb", "a<br>\nb"},
		{"html kept", "<p>Hello <b>world</b></p>", "<p>Hello <b>world</b></p>"},
		{"script removed", `<p onclick="x()">Hi</p><script>alert(1)</script>`, "<p>Hi</p>"},
		{"leading spaces", "  <em>x</em>", "  <em>x</em>"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Body(tt.in))
		})
	}
}

func TestText(t *testing.T) {
	assert.Equal(t, template.HTML("Dear diary<br>\ntoday"), Text("Dear diary\ntoday"))
	assert.Equal(t, template.HTML("Dear <i>diary</i>"), Text("Dear <i>diary</i>"))
	assert.Equal(t, template.HTML("1 &lt; 2"), Text("1 < 2"))
	assert.True(t, HasTags("<br/>"))
	assert.False(t, HasTags("a <> b"))
}
