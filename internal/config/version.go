package config

// Version is the release of this build, set with -ldflags "-X ...config.Version=".
var Version = "2.1.0-dev"
