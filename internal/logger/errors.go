package logger

import (
	"errors"
	"fmt"
	"os"
)

var (
	// ErrAppNameIsEmpty is returned by Init without [Log] AppName. It becomes the "app" field of every event.
	ErrAppNameIsEmpty = errors.New("config Log.AppName can not be empty")

	// ErrServiceNameIsEmpty is returned by Init without [Log] ServiceName, the metrics label.
	ErrServiceNameIsEmpty = errors.New("config Log.ServiceName can not be empty")
)

// ErrorHandler reports events zerolog failed to write. The logger itself may be the broken writer.
func ErrorHandler(err error) {
	_, _ = fmt.Fprintf(os.Stderr, "go-webtrees-admin: could not write log event: %v\n", err)
}
