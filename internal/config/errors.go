package config

import (
	"errors"
)

var (
	// ErrEmptyURL error if config webserver.URL is empty.
	ErrEmptyURL = errors.New("toml config webserver.url can not be empty")

	// ErrWebServerPortCanNotBeZero error if config webserver listening port is 0.
	ErrWebServerPortCanNotBeZero = errors.New("toml config webserver.port listening port can not be 0")

	// ErrUnknownGormEngine error if config db.gormengine is not supported.
	ErrUnknownGormEngine = errors.New("toml config db.gormengine must be mysql, postgres or sqlite")

	// ErrInvalidLanguage error if a site language is not a valid BCP 47 tag.
	ErrInvalidLanguage = errors.New("toml config site.languages contains an invalid language tag")

	// ErrDefaultLanguageNotSupported error if site.defaultlanguage is missing from site.languages.
	ErrDefaultLanguageNotSupported = errors.New("toml config site.defaultlanguage must be one of site.languages")
)
