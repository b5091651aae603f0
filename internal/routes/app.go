package routes

import (
	"html/template"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/swagger"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/brauliobolano/LinkedInClone/internal/controllers"
	"github.com/brauliobolano/LinkedInClone/internal/metrics"
	"github.com/brauliobolano/LinkedInClone/internal/middleware"
)

type AppDeps struct {
	AppName      string
	Log          *zap.Logger
	Metrics      *metrics.Metrics
	Gatherer     prometheus.Gatherer
	Tokens       middleware.TokenParser
	Posts        controllers.PostService
	Auth         controllers.AuthService
	Templates    *template.Template
	CORSOrigins  string
	Timeout      time.Duration
	UploadDir    string
	SecureCookie bool
}

// NewApp builds the fiber app with middleware and every route registered.
func NewApp(d AppDeps) *fiber.App {
	if d.Log == nil {
		d.Log = zap.NewNop()
	}
	if d.CORSOrigins == "" {
		d.CORSOrigins = "*"
	}

	app := fiber.New(fiber.Config{
		AppName:   d.AppName,
		BodyLimit: 10 << 20,
	})

	app.Use(recover.New(recover.Config{
		EnableStackTrace: true,
		StackTraceHandler: func(c *fiber.Ctx, e interface{}) {
			d.Log.Error("Recovered from panic", zap.Any("panic", e), zap.String("path", c.Path()))
		},
	}))
	app.Use(middleware.RequestID())
	app.Use(middleware.RequestLogger(d.Log))
	app.Use(middleware.Metrics(d.Metrics))
	app.Use(cors.New(cors.Config{
		AllowOrigins: d.CORSOrigins,
		AllowMethods: "GET,POST,PUT,DELETE,OPTIONS",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
	}))

	app.Get("/docs/*", swagger.HandlerDefault)
	app.Get("/healthz", func(c *fiber.Ctx) error { return c.SendString("ok") })
	if d.Gatherer != nil {
		app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(d.Gatherer, promhttp.HandlerOpts{})))
	}
	if d.UploadDir != "" {
		app.Static("/uploads", d.UploadDir, fiber.Static{
			ModifyResponse: func(c *fiber.Ctx) error {
				c.Set(fiber.HeaderXContentTypeOptions, "nosniff")
				return nil
			},
		})
	}

	app.Use(middleware.JWTIdentity(d.Tokens))

	if d.Auth != nil {
		SetupAuth(app, &controllers.AuthHandler{Auth: d.Auth, SecureCookie: d.SecureCookie, Timeout: d.Timeout})
	}

	posts := &controllers.PostHandler{Posts: d.Posts, Timeout: d.Timeout, Log: d.Log}
	SetupRoutesPost(app, posts)
	LikeRoutes(app, posts)
	CommentRoutes(app, posts)

	if d.Templates != nil {
		SetupFeedPage(app, &controllers.FeedHandler{
			Posts:     d.Posts,
			Templates: d.Templates,
			AppName:   d.AppName,
			Timeout:   d.Timeout,
			Log:       d.Log,
		})
	}
	return app
}
