package router

import (
	"errors"
	"html/template"
	"io"
	"io/fs"
	"net/http"
	"path/filepath"
	"reflect"

	"github.com/gorilla/sessions"
	"github.com/labstack/echo-contrib/session"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/log"

	"github.com/ghostink/ghostink/handler"
	"github.com/ghostink/ghostink/util"
)

// TemplateRegistry is a custom html/template renderer for Echo framework
type TemplateRegistry struct {
	templates map[string]*template.Template
	extraData map[string]string
}

// Render e.Renderer interface
func (t *TemplateRegistry) Render(w io.Writer, name string, data interface{}, c echo.Context) error {
	tmpl, ok := t.templates[name]
	if !ok {
		err := errors.New("Template not found -> " + name)
		return err
	}

	// inject more app data information. E.g. appVersion
	if data != nil && reflect.TypeOf(data).Kind() == reflect.Map {
		for k, v := range t.extraData {
			data.(map[string]interface{})[k] = v
		}
	}

	return tmpl.ExecuteTemplate(w, "base.html", data)
}

// Options of the router
type Options struct {
	// Secret signs the session cookies
	Secret []byte
	// SessionMaxAge in seconds
	SessionMaxAge int
	// DevMode disables secure cookies and HSTS
	DevMode bool
	// TrustProxy takes the client IP from X-Forwarded-For
	TrustProxy bool
}

// New function
func New(tmplDir fs.FS, extraData map[string]string, opts Options) *echo.Echo {
	e := echo.New()

	tmplBaseString, err := util.StringFromEmbedFile(tmplDir, "base.html")
	if err != nil {
		log.Fatal(err)
	}

	tmplSetupString, err := util.StringFromEmbedFile(tmplDir, "setup.html")
	if err != nil {
		log.Fatal(err)
	}

	tmplLoginString, err := util.StringFromEmbedFile(tmplDir, "login.html")
	if err != nil {
		log.Fatal(err)
	}

	tmplIndexString, err := util.StringFromEmbedFile(tmplDir, "index.html")
	if err != nil {
		log.Fatal(err)
	}

	// create template list
	templates := make(map[string]*template.Template)
	templates["setup.html"] = template.Must(template.New("setup").Parse(tmplBaseString + tmplSetupString))
	templates["login.html"] = template.Must(template.New("login").Parse(tmplBaseString + tmplLoginString))
	templates["index.html"] = template.Must(template.New("index").Parse(tmplBaseString + tmplIndexString))

	lvl, err := util.ParseLogLevel(util.LookupEnvOrString(util.LogLevel, "INFO"))
	if err != nil {
		log.Fatal(err)
	}
	logConfig := middleware.DefaultLoggerConfig
	logConfig.Skipper = func(c echo.Context) bool {
		resp := c.Response()
		if resp.Status >= 500 && lvl > log.ERROR { // do not log if response is 5XX but log level is higher than ERROR
			return true
		} else if resp.Status >= 400 && resp.Status < 500 && lvl > log.WARN { // do not log if response is 4XX but log level is higher than WARN
			return true
		} else if resp.Status < 400 && lvl > log.DEBUG { // do not log if log level is higher than DEBUG
			return true
		}
		return false
	}

	cookieStore := sessions.NewCookieStore(opts.Secret)
	cookieStore.MaxAge(opts.SessionMaxAge)
	cookieStore.Options.Path = "/"
	cookieStore.Options.HttpOnly = true
	cookieStore.Options.SameSite = http.SameSiteLaxMode
	cookieStore.Options.Secure = !opts.DevMode

	log.SetLevel(lvl)
	e.Logger.SetLevel(lvl)
	e.Pre(middleware.RemoveTrailingSlash())
	e.Use(middleware.LoggerWithConfig(logConfig))
	e.Use(SecurityHeaders(!opts.DevMode))
	e.Use(session.Middleware(cookieStore))
	e.HideBanner = true
	e.HidePort = lvl > log.INFO // hide the port output if the log level is higher than INFO
	e.Validator = NewValidator()
	e.Renderer = &TemplateRegistry{
		templates: templates,
		extraData: extraData,
	}
	if opts.TrustProxy {
		e.IPExtractor = echo.ExtractIPFromXFFHeader()
	} else {
		e.IPExtractor = echo.ExtractIPDirect()
	}

	return e
}

// Register adds the setup gate and the application routes
func Register(e *echo.Echo, deps handler.Deps) {
	e.Use(handler.SetupGate(deps.Auth))
	validSession := handler.ValidSession(deps.Auth)

	e.GET("/setup", handler.SetupPage(deps.Auth))
	e.POST("/setup", handler.Setup(deps.Auth))
	e.GET("/login", handler.LoginPage(deps.Auth))
	e.POST("/login", handler.Login(deps.Auth))
	e.GET("/logout", handler.Logout(), validSession)
	e.POST("/account", handler.UpdateAccount(deps.Auth), validSession, handler.ContentTypeJson)
	e.GET("/stash", handler.GetStash(deps.Stash), validSession)
	e.POST("/stash", handler.NewStashEntry(deps.Stash), validSession, handler.ContentTypeJson)
	e.DELETE("/stash/:id", handler.RemoveStashEntry(deps.Stash), validSession)
	e.GET("/", handler.Index(deps.Assets), validSession)

	// front-end bundle, reachable without a session
	if deps.AssetsDir != "" {
		e.Static("/src/static", filepath.Join(deps.AssetsDir, "static"))
		e.Static("/src/dist", filepath.Join(deps.AssetsDir, "dist"))
	}
}
