// Package api contains all endpoints available
package api

import (
	"fmt"
	"time"

	"github.com/HaiTang-8/content-hub/db"
	"github.com/HaiTang-8/content-hub/internal/access"
	"github.com/HaiTang-8/content-hub/internal/apikey"
	"github.com/HaiTang-8/content-hub/internal/auth"
	"github.com/HaiTang-8/content-hub/internal/model"
	"github.com/HaiTang-8/content-hub/internal/share"
	"github.com/HaiTang-8/content-hub/internal/storage"
	"github.com/HaiTang-8/content-hub/internal/store"
	"github.com/HaiTang-8/content-hub/middleware"
	"github.com/HaiTang-8/content-hub/pkg/security"

	ginzap "github.com/gin-contrib/zap"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gorm.io/gorm"
)

const (
	gray  = "\x1b[90m"
	reset = "\x1b[0m"
)

type API struct {
	DB       *gorm.DB
	Router   *gin.Engine
	Store    *store.Store
	Argon    *security.ArgonHash
	Blobs    storage.Store
	Sessions *auth.Sessions
	Keys     *apikey.Manager
	Shares   *share.Engine
	Access   *access.Facade
}

func NewRouter() (*API, error) {
	a := &API{}

	makeLogger()

	conn, err := db.New()
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database, %w", err)
	}
	a.DB = conn
	a.Store = store.New(conn)
	a.Argon = security.New()

	a.Blobs, err = storage.New()
	if err != nil {
		return nil, fmt.Errorf("failed to initialize blob storage, %w", err)
	}

	a.Sessions = auth.NewSessions(a.Store, a.Argon,
		time.Duration(viper.GetInt("auth.session_lifetime_hours"))*time.Hour)
	a.Keys = apikey.NewManager(a.Store)
	a.Shares = share.NewEngine(a.Store, a.Blobs, share.Config{
		DefaultExpiryDays: viper.GetInt("share.default_expiry_days"),
		MaxExpiryDays:     viper.GetInt("share.max_expiry_days"),
		MaxViewsLimit:     uint(viper.GetInt("share.max_views_limit")),
	})
	a.Access = access.New(a.Sessions, a.Keys, a.Shares)

	router := gin.New()
	a.Router = router

	router.Use(
		cors.New(cors.Config{
			AllowOrigins:     []string{viper.GetString("host.allow_origin")},
			AllowMethods:     []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS", "HEAD"},
			AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "X-API-Key"},
			ExposeHeaders:    []string{"Content-Length"},
			AllowCredentials: true,
			MaxAge:           12 * time.Hour,
		}),
		gin.Recovery(),
		middleware.NewRequestIDMiddleware(),
		ginzap.GinzapWithConfig(zap.L(), &ginzap.Config{
			TimeFormat: "15:04:05.000",
			UTC:        true,
			Skipper: func(c *gin.Context) bool {
				return c.Request.Method == "HEAD"
			},
			Context: func(c *gin.Context) []zapcore.Field {
				fields := []zapcore.Field{}

				if v := c.GetString("requestID"); v != "" {
					fields = append(fields, zap.String("request_id", v))
				}

				return fields
			},
		}),
	)

	router.HandleMethodNotAllowed = true

	session := middleware.NewSessionMiddleware(a.Access)
	admin := middleware.NewAdminMiddleware()
	uploadAuth := middleware.NewSessionOrKeyMiddleware(a.Access, model.ScopeFilesUpload)
	loginLimiter := middleware.RateLimiterMiddleware(middleware.RateLimiterConfig{
		RequestsPerSecond: 2,
		Burst:             5,
	})
	// Share tokens are guessable-by-brute-force URLs, keep probing slow
	shareLimiter := middleware.RateLimiterMiddleware(middleware.RateLimiterConfig{
		RequestsPerSecond: 10,
		Burst:             20,
	})
	maxUploadSize := viper.GetInt64("upload.max_size")

	main := router.Group("/api")
	{
		// HEAD /api/heartbeat 		-> Used to check if the server is alive
		main.HEAD("/heartbeat", a.Heartbeat)

		// HEAD /api/validate		-> Validates a session token
		main.HEAD("/validate", session, a.Validate)

		// POST /api/login 		-> Issues a session token
		main.POST("/login", loginLimiter, middleware.BodySizeLimiter(1<<20), a.Login)

		// POST /api/logout		-> Revokes the presented session token
		main.POST("/logout", a.Logout)

		// POST /api/apikeys/verify	-> Checks a plaintext API key without using it
		main.POST("/apikeys/verify", middleware.BodySizeLimiter(1<<20), a.APIKeyVerify)
	}

	shares := main.Group("/shares", shareLimiter)
	{
		// GET /api/shares/:token		-> Share metadata, doesn't burn a view
		shares.GET("/:token", a.ShareMeta)

		// GET /api/shares/:token/stream	-> Redeems a view and streams the file
		shares.GET("/:token/stream", a.ShareStream)
	}

	files := main.Group("/files")
	{
		// POST /api/files		-> Uploads a file (session or files:upload API key)
		files.POST("", uploadAuth, middleware.BodySizeLimiter(maxUploadSize), a.FileUpload)

		// GET /api/files		-> Lists the caller's files
		files.GET("", session, a.FileList)

		// GET /api/files/:id/download	-> Streams a file to its owner
		files.GET("/:id/download", session, a.FileDownload)

		// DELETE /api/files/:id	-> Deletes a file and its share links
		files.DELETE("/:id", session, a.FileDelete)

		// POST /api/files/:id/share	-> Creates a share link for a file
		files.POST("/:id/share", session, middleware.BodySizeLimiter(1<<20), a.ShareCreate)
	}

	adm := main.Group("/admin", session, admin)
	{
		// POST /api/admin/users		-> Creates a user
		adm.POST("/users", a.UserCreate)

		// GET /api/admin/users			-> Lists all users
		adm.GET("/users", a.UserList)

		// DELETE /api/admin/users/:id		-> Deletes a user
		adm.DELETE("/users/:id", a.UserDelete)

		// PATCH /api/admin/users/:id/role	-> Switches a user between admin/user
		adm.PATCH("/users/:id/role", a.UserRole)

		// POST /api/admin/users/:id/password	-> Resets a user's password
		adm.POST("/users/:id/password", a.UserPassword)

		// POST /api/admin/apikeys		-> Issues an API key
		adm.POST("/apikeys", a.APIKeyCreate)

		// GET /api/admin/apikeys		-> Lists API keys (masked previews only)
		adm.GET("/apikeys", a.APIKeyList)

		// DELETE /api/admin/apikeys/:id	-> Revokes an API key
		adm.DELETE("/apikeys/:id", a.APIKeyRevoke)

		// GET /api/admin/shares		-> Lists share links
		adm.GET("/shares", a.ShareList)

		// DELETE /api/admin/shares/:token	-> Revokes a share link
		adm.DELETE("/shares/:token", a.ShareRevoke)

		// POST /api/admin/shares/cleanup	-> Runs a cleanup sweep
		adm.POST("/shares/cleanup", a.ShareCleanup)
	}

	return a, nil
}

func makeLogger() {
	cfg := zap.NewDevelopmentConfig()
	cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	cfg.EncoderConfig.EncodeTime = func(t time.Time, pae zapcore.PrimitiveArrayEncoder) {
		pae.AppendString(gray + t.Format("15:04:05.000") + reset)
	}
	cfg.EncoderConfig.EncodeCaller = func(ec zapcore.EntryCaller, pae zapcore.PrimitiveArrayEncoder) {
		pae.AppendString(gray + ec.TrimmedPath() + reset)
	}

	cfg.DisableStacktrace = true

	if lvl, err := zapcore.ParseLevel(viper.GetString("app.log_level")); err == nil {
		cfg.Level = zap.NewAtomicLevelAt(lvl)
	}

	log, _ := cfg.Build()
	zap.ReplaceGlobals(log)
}
