// Package webtest holds the fixtures shared by handler tests: an in-memory session storage,
// a recording Views engine and logged in sessions.
package webtest

import (
	"bytes"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/GoWebtrees-Admin/GoWebtrees-Admin/internal/config"
	"github.com/GoWebtrees-Admin/GoWebtrees-Admin/internal/db/models"
	"github.com/GoWebtrees-Admin/GoWebtrees-Admin/internal/web/flash"
	"github.com/GoWebtrees-Admin/GoWebtrees-Admin/internal/web/session"
)

// Storage is a minimal in-memory implementation of fiber.Storage.
type Storage struct {
	mu   sync.RWMutex
	data map[string][]byte
}

var _ fiber.Storage = (*Storage)(nil)

// Get returns a copy of the stored value, nil when missing.
func (s *Storage) Get(key string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	v, ok := s.data[key]
	if !ok {
		return nil, nil
	}

	out := make([]byte, len(v))
	copy(out, v)

	return out, nil
}

// Set stores a copy of val. Expiry is ignored.
func (s *Storage) Set(key string, val []byte, _ time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.data == nil {
		s.data = make(map[string][]byte)
	}

	buf := make([]byte, len(val))
	copy(buf, val)
	s.data[key] = buf

	return nil
}

// Delete removes a key.
func (s *Storage) Delete(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.data, key)

	return nil
}

// Reset removes everything.
func (s *Storage) Reset() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.data = make(map[string][]byte)

	return nil
}

// Close is a no-op.
func (s *Storage) Close() error { return nil }

// Views is a Views engine that records the last render instead of executing templates.
// It writes the template name, so tests can assert which page was rendered.
type Views struct {
	mu   sync.Mutex
	Name string
	Data fiber.Map
}

// Load is a no-op.
func (v *Views) Load() error { return nil }

// Render records the template name and data.
func (v *Views) Render(w io.Writer, name string, data any, _ ...string) error {
	v.mu.Lock()
	defer v.mu.Unlock()

	v.Name = name
	v.Data, _ = data.(fiber.Map)

	_, err := io.WriteString(w, name)

	return err
}

// Get returns a value of the last rendered data.
func (v *Views) Get(key string) any {
	v.mu.Lock()
	defer v.mu.Unlock()

	return v.Data[key]
}

// Flash returns the flash messages of the last render.
func (v *Views) Flash() []flash.Message {
	msgs, _ := v.Get(flash.LocalsKey).([]flash.Message)

	return msgs
}

// NewApp returns an app with recording views and a fresh session store.
// Locals are passed to views, so flash messages and the CSRF token show up in Views.Data.
func NewApp() (*fiber.App, *Views) {
	session.Init(&Storage{})

	views := &Views{}

	return fiber.New(fiber.Config{Views: views, PassLocalsToViews: true}), views
}

// Config returns a config with short sessions and dev mode cookies.
func Config(dataDir string) *config.Config {
	return &config.Config{
		DevMode: true,
		Webserver: config.Webserver{
			URL:     "http://localhost",
			Port:    8080,
			Session: config.Session{ExpiryTime: time.Minute},
		},
		Data:  config.Data{Path: dataDir},
		Media: config.Media{MaxUploadSize: 1 << 20},
		Site:  config.Site{Languages: []string{"en-US", "de", "fr"}, DefaultLanguage: "en-US"},
	}
}

// Login writes a session for the user and returns its id.
func Login(t *testing.T, user models.User) (string, *session.Data) {
	t.Helper()

	id, err := session.GenerateSessionID()
	require.NoError(t, err)

	data := session.New(user)
	require.NoError(t, data.Write(id, time.Minute))

	return id, data
}

// Grant gives the user's role the permissions, creating them when needed.
func Grant(t *testing.T, db *gorm.DB, user models.User, permissions ...string) {
	t.Helper()

	for _, name := range permissions {
		p := models.Permission{Name: name, Resource: "test", Action: "test"}
		require.NoError(t, db.Where(models.Permission{Name: name}).FirstOrCreate(&p).Error)
		require.NoError(t, db.Create(&models.RolePermission{RoleID: user.RoleID, PermissionID: p.ID}).Error)
	}
}

// File is an uploaded file of a multipart request.
type File struct {
	Name        string
	ContentType string
	Content     []byte
}

// Request is a test request, optionally with a session cookie and a form body.
// Files turn the form into a multipart body.
type Request struct {
	Method  string
	Target  string
	Session string
	Form    url.Values
	Files   map[string]File
	Header  map[string]string
}

func multipartBody(t *testing.T, form url.Values, files map[string]File) (io.Reader, string) {
	t.Helper()

	var (
		buf bytes.Buffer
		w   = multipart.NewWriter(&buf)
	)

	for key, values := range form {
		for _, v := range values {
			require.NoError(t, w.WriteField(key, v))
		}
	}

	for field, f := range files {
		h := make(textproto.MIMEHeader)
		h.Set(fiber.HeaderContentDisposition, `form-data; name="`+field+`"; filename="`+f.Name+`"`)
		h.Set(fiber.HeaderContentType, f.ContentType)

		part, err := w.CreatePart(h)
		require.NoError(t, err)

		_, err = part.Write(f.Content)
		require.NoError(t, err)
	}

	require.NoError(t, w.Close())

	return &buf, w.FormDataContentType()
}

// Do runs the request against the app.
func Do(t *testing.T, app *fiber.App, r Request) *http.Response {
	t.Helper()

	if r.Method == "" {
		r.Method = fiber.MethodGet
	}

	var (
		body        io.Reader
		contentType string
	)

	switch {
	case r.Files != nil:
		body, contentType = multipartBody(t, r.Form, r.Files)
	case r.Form != nil:
		body, contentType = strings.NewReader(r.Form.Encode()), fiber.MIMEApplicationForm
	}

	req := httptest.NewRequest(r.Method, r.Target, body)
	if contentType != "" {
		req.Header.Set(fiber.HeaderContentType, contentType)
	}

	if r.Session != "" {
		req.AddCookie(&http.Cookie{Name: session.CookieName, Value: r.Session})
	}

	for k, v := range r.Header {
		req.Header.Set(k, v)
	}

	resp, err := app.Test(req, -1)
	require.NoError(t, err)

	t.Cleanup(func() { _ = resp.Body.Close() })

	return resp
}

// Body reads the response body.
func Body(t *testing.T, resp *http.Response) string {
	t.Helper()

	b, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	return string(b)
}
