package config

import (
	"time"

	"github.com/GoWebtrees-Admin/GoWebtrees-Admin/internal/logger"
)

// Session settings.
type Session struct {
	ExpiryTime time.Duration
}

// Config overall data structure.
type Config struct {
	DevMode   bool // enable dev mode for development
	DB        DB
	Log       logger.Log
	Title     string
	Webserver Webserver
	Data      Data
	Media     Media
	Upgrade   Upgrade
	Site      Site
}

// Webserver implement webserver settings.
type Webserver struct {
	BrowseStatic        bool    // enable static file browsing (for development purposes only)
	CacheEnabled        bool    // true = enable cache, false = disable cache
	CleanPath           bool    // use clean path middleware to allow multi slash requests
	DisableRecover      bool    // disable recover middleware
	Domain              string  // cookie domain
	Port                int     // listening port for the webserver
	ShutDownTime        int     // wait time for shutdown
	URL                 string  // base url for the webserver
	CookieEncryptionKey string  // base64 key for encrypted cookies, empty disables encryption
	Session             Session // session settings
}

// Data is the folder holding media files and uploads.
type Data struct {
	Path     string   // data folder, e.g. "data/"
	OldFiles []string // files and folders of earlier releases to remove, relative to the install folder
}

// Media upload settings.
type Media struct {
	MaxUploadSize int // bytes
}

// Upgrade is the "latest version" check.
type Upgrade struct {
	URL           string
	CheckInterval time.Duration
	Timeout       time.Duration
}

// Site locale settings.
type Site struct {
	Languages       []string // BCP 47 tags offered for FAQ and story language filters
	DefaultLanguage string
}
