// Package flash queues one-time messages for the next rendered page of a session.
package flash

import (
	"encoding/json"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"

	"github.com/GoWebtrees-Admin/GoWebtrees-Admin/internal/web/session"
)

// Message types, used as bootstrap alert classes.
const (
	TypeSuccess = "success"
	TypeInfo    = "info"
	TypeWarning = "warning"
	TypeDanger  = "danger"
)

// LocalsKey holds the []Message rendered by the base layout.
const LocalsKey = "Flash"

const keyPrefix = "flash_"

// Message is a single flash message.
type Message struct {
	Type string
	Text string
}

func storageKey(c *fiber.Ctx) string {
	id := c.Cookies(session.CookieName)
	if id == "" {
		return ""
	}

	return keyPrefix + id
}

func load(key string) []Message {
	raw, err := session.Store.Storage.Get(key)
	if err != nil || len(raw) == 0 {
		return nil
	}

	var out []Message
	if err = json.Unmarshal(raw, &out); err != nil {
		log.Warn().Err(err).Msg("dropping unreadable flash messages")
		return nil
	}

	return out
}

// Add queues a message for the next page of this session. Visitors without a session get nothing.
func Add(c *fiber.Ctx, typ, text string) {
	key := storageKey(c)
	if key == "" {
		return
	}

	data, err := json.Marshal(append(load(key), Message{Type: typ, Text: text}))
	if err != nil {
		return
	}

	if err = session.Store.Storage.Set(key, data, 0); err != nil {
		log.Error().Err(err).Msg("failed to store flash message")
	}
}

// Now adds a message to the page rendered by this request.
func Now(c *fiber.Ctx, typ, text string) {
	msgs, _ := c.Locals(LocalsKey).([]Message)
	c.Locals(LocalsKey, append(msgs, Message{Type: typ, Text: text}))
}

// Pop returns and removes the queued messages.
func Pop(c *fiber.Ctx) []Message {
	key := storageKey(c)
	if key == "" {
		return nil
	}

	msgs := load(key)
	if len(msgs) > 0 {
		if err := session.Store.Storage.Delete(key); err != nil {
			log.Error().Err(err).Msg("failed to delete flash messages")
		}
	}

	return msgs
}

// FromCtx returns the messages of the current page.
func FromCtx(c *fiber.Ctx) []Message {
	msgs, _ := c.Locals(LocalsKey).([]Message)

	return msgs
}

// Middleware moves queued messages into the locals of page requests.
// Background XHR requests leave the queue alone.
func Middleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if c.Method() == fiber.MethodGet && c.Get(fiber.HeaderXRequestedWith) != "XMLHttpRequest" {
			if msgs := Pop(c); len(msgs) > 0 {
				c.Locals(LocalsKey, msgs)
			}
		}

		return c.Next()
	}
}
