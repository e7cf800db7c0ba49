package util

import "time"

// Runtime config
var (
	BindAddress      string
	ConfigFilePath   string
	DBPath           string
	AssetsDir        string
	DevMode          bool
	TrustProxy       bool
	ViteDevServer    string
	SessionMaxAge    int
	LoginMaxAttempts int
	LoginWindow      time.Duration
	SendgridApiKey   string
	EmailFrom        string
	EmailFromName    string
	AlertEmailTo     string
	SmtpHostname     string
	SmtpPort         int
	SmtpUsername     string
	SmtpPassword     string
	SmtpNoTLSCheck   bool
	SmtpAuthType     string
	SmtpEncryption   string
	TelegramToken    string
	TelegramChatID   int64
)

const (
	LogLevel             = "GHOSTINK_LOG_LEVEL"
	DefaultBindAddress   = "0.0.0.0:12500"
	DefaultConfigFile    = "./ghostink.ini"
	DefaultDBPath        = "./db"
	DefaultAssetsDir     = "./src"
	DefaultViteDevServer = "http://localhost:5174"
	DefaultSessionMaxAge = 86400 * 7
	DefaultMaxAttempts   = 5
	DefaultLoginWindow   = 60 * time.Second
	DefaultEmailFromName = "GhostInk"
)

// ViteEntries are the bundle inputs linked from the index page
var ViteEntries = []string{"src/static/css/global.css", "src/static/js/main.js"}
