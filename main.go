package main

import (
	"embed"
	"flag"
	"fmt"
	"io/fs"
	"time"

	"github.com/labstack/gommon/log"

	"github.com/ghostink/ghostink/alert"
	"github.com/ghostink/ghostink/auth"
	"github.com/ghostink/ghostink/emailer"
	"github.com/ghostink/ghostink/handler"
	"github.com/ghostink/ghostink/ratelimit"
	"github.com/ghostink/ghostink/router"
	"github.com/ghostink/ghostink/store/inifile"
	"github.com/ghostink/ghostink/store/jsondb"
	"github.com/ghostink/ghostink/telegram"
	"github.com/ghostink/ghostink/util"
)

var (
	// command-line banner information
	appVersion = "development"
	gitCommit  = "N/A"
	gitRef     = "N/A"
	buildTime  = time.Now().UTC().Format("01-02-2006 15:04:05")
	// configuration variables
	flagBindAddress      = util.DefaultBindAddress
	flagConfigFile       = util.DefaultConfigFile
	flagDBPath           = util.DefaultDBPath
	flagAssetsDir        = util.DefaultAssetsDir
	flagDevMode          = false
	flagTrustProxy       = false
	flagViteDevServer    = util.DefaultViteDevServer
	flagSessionMaxAge    = util.DefaultSessionMaxAge
	flagLoginMaxAttempts = util.DefaultMaxAttempts
	flagLoginWindow      = util.DefaultLoginWindow
	flagSendgridApiKey   string
	flagEmailFrom        string
	flagEmailFromName    = util.DefaultEmailFromName
	flagAlertEmailTo     string
	flagSmtpHostname     string
	flagSmtpPort         = 587
	flagSmtpUsername     string
	flagSmtpPassword     string
	flagSmtpNoTLSCheck   = false
	flagSmtpAuthType     = "LOGIN"
	flagSmtpEncryption   = "STARTTLS"
	flagTelegramToken    string
	flagTelegramChatID   int64
)

//go:embed templates/*
var embeddedTemplates embed.FS

func init() {
	// command-line flags and env variables
	flag.StringVar(&flagBindAddress, "bind-address", util.LookupEnvOrString("BIND_ADDRESS", flagBindAddress), "Address:Port to which the app will be bound.")
	flag.StringVar(&flagConfigFile, "config-file", util.LookupEnvOrString("CONFIG_FILE", flagConfigFile), "Path of the configuration file holding the secret key and the account.")
	flag.StringVar(&flagDBPath, "db-path", util.LookupEnvOrString("DB_PATH", flagDBPath), "Directory of the stash database.")
	flag.StringVar(&flagAssetsDir, "assets-dir", util.LookupEnvOrString("ASSETS_DIR", flagAssetsDir), "Directory holding the static/ and dist/ front-end folders.")
	flag.BoolVar(&flagDevMode, "dev-mode", util.LookupEnvOrBool("DEV_MODE", flagDevMode), "Development mode. Loads assets from the Vite dev server, no secure cookies and no HSTS.")
	flag.BoolVar(&flagTrustProxy, "trust-proxy", util.LookupEnvOrBool("TRUST_PROXY", flagTrustProxy), "Take the client IP from the X-Forwarded-For header.")
	flag.StringVar(&flagViteDevServer, "vite-dev-server", util.LookupEnvOrString("VITE_DEV_SERVER", flagViteDevServer), "Vite dev server url used in development mode.")
	flag.IntVar(&flagSessionMaxAge, "session-max-age", util.LookupEnvOrInt("SESSION_MAX_AGE", flagSessionMaxAge), "Lifetime of a login session in seconds.")
	flag.IntVar(&flagLoginMaxAttempts, "login-max-attempts", util.LookupEnvOrInt("LOGIN_MAX_ATTEMPTS", flagLoginMaxAttempts), "Failed logins allowed per IP within the login window.")
	flag.DurationVar(&flagLoginWindow, "login-window", util.LookupEnvOrDuration("LOGIN_WINDOW", flagLoginWindow), "Sliding window for counting failed logins.")
	flag.StringVar(&flagSendgridApiKey, "sendgrid-api-key", util.LookupEnvOrString("SENDGRID_API_KEY", flagSendgridApiKey), "Your sendgrid api key.")
	flag.StringVar(&flagEmailFrom, "email-from", util.LookupEnvOrString("EMAIL_FROM_ADDRESS", flagEmailFrom), "'From' email address.")
	flag.StringVar(&flagEmailFromName, "email-from-name", util.LookupEnvOrString("EMAIL_FROM_NAME", flagEmailFromName), "'From' email name.")
	flag.StringVar(&flagAlertEmailTo, "alert-email-to", util.LookupEnvOrString("ALERT_EMAIL_TO", flagAlertEmailTo), "Address receiving login lockout alerts.")
	flag.StringVar(&flagSmtpHostname, "smtp-hostname", util.LookupEnvOrString("SMTP_HOSTNAME", flagSmtpHostname), "SMTP Hostname")
	flag.IntVar(&flagSmtpPort, "smtp-port", util.LookupEnvOrInt("SMTP_PORT", flagSmtpPort), "SMTP Port")
	flag.StringVar(&flagSmtpUsername, "smtp-username", util.LookupEnvOrString("SMTP_USERNAME", flagSmtpUsername), "SMTP Username")
	flag.StringVar(&flagSmtpPassword, "smtp-password", util.LookupEnvOrString("SMTP_PASSWORD", flagSmtpPassword), "SMTP Password")
	flag.BoolVar(&flagSmtpNoTLSCheck, "smtp-no-tls-check", util.LookupEnvOrBool("SMTP_NO_TLS_CHECK", flagSmtpNoTLSCheck), "Disable TLS verification for SMTP. This is potentially dangerous.")
	flag.StringVar(&flagSmtpAuthType, "smtp-auth-type", util.LookupEnvOrString("SMTP_AUTH_TYPE", flagSmtpAuthType), "SMTP Auth Type : PLAIN, LOGIN or NONE.")
	flag.StringVar(&flagSmtpEncryption, "smtp-encryption", util.LookupEnvOrString("SMTP_ENCRYPTION", flagSmtpEncryption), "SMTP Encryption : NONE, SSL, SSLTLS or STARTTLS")
	flag.StringVar(&flagTelegramToken, "telegram-token", util.LookupEnvOrString("TELEGRAM_TOKEN", flagTelegramToken), "Telegram bot token for lockout alerts.")
	flag.Int64Var(&flagTelegramChatID, "telegram-chat-id", util.LookupEnvOrInt64("TELEGRAM_CHAT_ID", flagTelegramChatID), "Telegram chat receiving lockout alerts.")
	flag.Parse()

	// update runtime config
	util.BindAddress = flagBindAddress
	util.ConfigFilePath = flagConfigFile
	util.DBPath = flagDBPath
	util.AssetsDir = flagAssetsDir
	util.DevMode = flagDevMode
	util.TrustProxy = flagTrustProxy
	util.ViteDevServer = flagViteDevServer
	util.SessionMaxAge = flagSessionMaxAge
	util.LoginMaxAttempts = flagLoginMaxAttempts
	util.LoginWindow = flagLoginWindow
	util.SendgridApiKey = flagSendgridApiKey
	util.EmailFrom = flagEmailFrom
	util.EmailFromName = flagEmailFromName
	util.AlertEmailTo = flagAlertEmailTo
	util.SmtpHostname = flagSmtpHostname
	util.SmtpPort = flagSmtpPort
	util.SmtpUsername = flagSmtpUsername
	util.SmtpPassword = flagSmtpPassword
	util.SmtpNoTLSCheck = flagSmtpNoTLSCheck
	util.SmtpAuthType = flagSmtpAuthType
	util.SmtpEncryption = flagSmtpEncryption
	util.TelegramToken = flagTelegramToken
	util.TelegramChatID = flagTelegramChatID

	// print app information
	fmt.Println("GhostInk - Hide data in plain sight.")
	fmt.Println("App Version\t:", appVersion)
	fmt.Println("Git Commit\t:", gitCommit)
	fmt.Println("Git Ref\t\t:", gitRef)
	fmt.Println("Build Time\t:", buildTime)
	fmt.Println("Dev mode\t:", util.DevMode)
	fmt.Println("Bind address\t:", util.BindAddress)
	fmt.Println("Config file\t:", util.ConfigFilePath)
	fmt.Println("DB path\t\t:", util.DBPath)
	fmt.Println("Assets dir\t:", util.AssetsDir)
}

func main() {
	// set app extra data
	extraData := make(map[string]string)
	extraData["appVersion"] = appVersion

	// the secret key must exist before the session store is built
	configStore := inifile.New(util.ConfigFilePath)
	secretKey, err := configStore.EnsureSecretKey()
	if err != nil {
		log.Fatal("Cannot initialize the secret key: ", err)
	}

	db, err := jsondb.New(util.DBPath)
	if err != nil {
		log.Fatal("Cannot open the stash database: ", err)
	}
	if err := db.Init(); err != nil {
		log.Fatal("Cannot initialize the stash database: ", err)
	}

	limiter := ratelimit.New(util.LoginMaxAttempts, util.LoginWindow)
	authManager := auth.NewManager(configStore, limiter, newAlertDispatcher())

	assets, err := util.ViteAssetsFor(util.AssetsDir, util.DevMode, util.ViteDevServer, util.ViteEntries...)
	if err != nil {
		log.Warn("Front-end assets unavailable: ", err)
	}

	tmplDir, _ := fs.Sub(fs.FS(embeddedTemplates), "templates")

	// register routes
	app := router.New(tmplDir, extraData, router.Options{
		Secret:        []byte(secretKey),
		SessionMaxAge: util.SessionMaxAge,
		DevMode:       util.DevMode,
		TrustProxy:    util.TrustProxy,
	})
	router.Register(app, handler.Deps{
		Auth:      authManager,
		Stash:     db,
		Assets:    assets,
		AssetsDir: util.AssetsDir,
	})

	app.Logger.Fatal(app.Start(util.BindAddress))
}

// newAlertDispatcher sets up the lockout alert channels that are configured
func newAlertDispatcher() *alert.Dispatcher {
	var mailer emailer.Emailer
	switch {
	case util.SendgridApiKey != "":
		mailer = emailer.NewSendgridApiMail(util.SendgridApiKey, util.EmailFromName, util.EmailFrom)
	case util.SmtpHostname != "":
		mailer = emailer.NewSmtpMail(util.SmtpHostname, util.SmtpPort, util.SmtpUsername, util.SmtpPassword,
			util.SmtpNoTLSCheck, util.SmtpAuthType, util.EmailFromName, util.EmailFrom, util.SmtpEncryption)
	}

	var chat alert.ChatSender
	if util.TelegramToken != "" {
		bot, err := telegram.New(util.TelegramToken, util.TelegramChatID)
		if err != nil {
			log.Warn("[Telegram] Lockout alerts disabled: ", err)
		} else {
			fmt.Printf("[Telegram] Authorized as %s\n", bot.Username())
			chat = bot
		}
	}

	return alert.New(mailer, util.AlertEmailTo, chat)
}
