// Package locale picks the language of a request from the configured site languages.
package locale

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"golang.org/x/text/language"
	"golang.org/x/text/language/display"
)

const (
	// LocalsKey holds the negotiated language tag of a request.
	LocalsKey = "Locale"
	// CookieName remembers a language chosen with the lang query parameter.
	CookieName = "language"
	// QueryParam switches the language.
	QueryParam = "lang"
)

// ErrNoLanguages is returned when the site has no languages configured.
var ErrNoLanguages = errors.New("no site languages configured")

// Option is a language offered in forms.
type Option struct {
	Tag  string
	Name string
}

// Matcher negotiates request languages against the site languages.
type Matcher struct {
	tags    []language.Tag
	names   []string
	matcher language.Matcher
}

// New builds a Matcher. The default language is tried first when nothing else matches.
func New(languages []string, defaultLanguage string) (*Matcher, error) {
	if len(languages) == 0 {
		return nil, ErrNoLanguages
	}

	m := &Matcher{}

	ordered := append([]string{defaultLanguage}, languages...)
	seen := map[string]bool{}

	for _, l := range ordered {
		if l == "" || seen[l] {
			continue
		}

		tag, err := language.Parse(l)
		if err != nil {
			return nil, err
		}

		seen[l] = true
		m.tags = append(m.tags, tag)
		m.names = append(m.names, l)
	}

	m.matcher = language.NewMatcher(m.tags)

	return m, nil
}

// Default returns the default language.
func (m *Matcher) Default() string {
	return m.names[0]
}

// Supported reports whether the tag is one of the site languages.
func (m *Matcher) Supported(tag string) bool {
	for _, n := range m.names {
		if strings.EqualFold(n, tag) {
			return true
		}
	}

	return false
}

// Negotiate returns the site language for an explicit choice or an Accept-Language header.
func (m *Matcher) Negotiate(choice, acceptLanguage string) string {
	if choice != "" && m.Supported(choice) {
		return m.canonical(choice)
	}

	wanted, _, err := language.ParseAcceptLanguage(acceptLanguage)
	if err != nil || len(wanted) == 0 {
		return m.Default()
	}

	_, index, confidence := m.matcher.Match(wanted...)
	if confidence == language.No {
		return m.Default()
	}

	return m.names[index]
}

func (m *Matcher) canonical(tag string) string {
	for _, n := range m.names {
		if strings.EqualFold(n, tag) {
			return n
		}
	}

	return m.Default()
}

// Options returns the site languages with their names in their own language, default first.
func (m *Matcher) Options() []Option {
	out := make([]Option, 0, len(m.tags))

	for i, tag := range m.tags {
		name := display.Self.Name(tag)
		if name == "" {
			name = m.names[i]
		}

		out = append(out, Option{Tag: m.names[i], Name: name})
	}

	return out
}

// Middleware stores the request language in the locals.
// A lang query parameter is remembered in a cookie.
func (m *Matcher) Middleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		choice := c.Query(QueryParam)
		if choice != "" && m.Supported(choice) {
			c.Cookie(&fiber.Cookie{
				Name:     CookieName,
				Value:    m.canonical(choice),
				Path:     "/",
				HTTPOnly: true,
				SameSite: fiber.CookieSameSiteLaxMode,
			})
		} else {
			choice = c.Cookies(CookieName)
		}

		c.Locals(LocalsKey, m.Negotiate(choice, c.Get(fiber.HeaderAcceptLanguage)))

		return c.Next()
	}
}

// FromCtx returns the language stored by the middleware, or "" when it did not run.
func FromCtx(c *fiber.Ctx) string {
	l, _ := c.Locals(LocalsKey).(string)

	return l
}

// InLanguages reports whether a comma separated language list is empty or names the current language.
// Tags are compared case insensitively, a list entry "de" matches "de-CH".
func InLanguages(list, current string) bool {
	list = strings.TrimSpace(list)
	if list == "" {
		return true
	}

	for _, entry := range strings.Split(list, ",") {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}

		if strings.EqualFold(entry, current) {
			return true
		}

		if base, _, ok := strings.Cut(current, "-"); ok && strings.EqualFold(entry, base) {
			return true
		}
	}

	return false
}

// Join builds the stored language list from the checked form values, keeping only supported tags.
func (m *Matcher) Join(tags []string) string {
	out := make([]string, 0, len(tags))

	for _, t := range tags {
		if m.Supported(t) {
			out = append(out, m.canonical(t))
		}
	}

	return strings.Join(out, ",")
}

// Choice is a checkbox of a language filter form.
type Choice struct {
	Option
	Checked bool
}

// Choices returns the site languages with those of a stored list checked.
func (m *Matcher) Choices(list string) []Choice {
	checked := map[string]bool{}

	for _, entry := range strings.Split(list, ",") {
		if entry = strings.TrimSpace(entry); m.Supported(entry) {
			checked[m.canonical(entry)] = true
		}
	}

	opts := m.Options()
	out := make([]Choice, 0, len(opts))

	for _, o := range opts {
		out = append(out, Choice{Option: o, Checked: checked[o.Tag]})
	}

	return out
}
