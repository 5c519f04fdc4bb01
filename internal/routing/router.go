package routing

import (
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"microblog/internal/config"
	"microblog/internal/handlers"
	"microblog/internal/managers"
	"microblog/internal/metrics"
	"microblog/internal/middleware"
	"microblog/internal/repositories"
	"microblog/internal/schemas"
	"microblog/internal/utils"
	"microblog/internal/views"
)

// Dependencies are the long-lived components the router hands to its handlers.
type Dependencies struct {
	Config             *config.Config
	Store              repositories.Store
	JWTManager         managers.JWTMgr
	MailManager        managers.MailMgr
	SessionManager     managers.SessionMgr
	TranslationManager managers.TranslationMgr
	// Registry is served on /metrics. A fresh registry is used when nil.
	Registry *prometheus.Registry
	// Metrics are registered on Registry when nil.
	Metrics *metrics.Metrics
}

func InitRouter(deps *Dependencies) (*gin.Engine, error) {
	router := gin.New()
	router.ContextWithFallback = true

	templates, err := views.Templates()
	if err != nil {
		return nil, err
	}
	router.SetHTMLTemplate(templates)

	if deps.Registry == nil {
		deps.Registry = prometheus.NewRegistry()
	}
	if deps.Metrics == nil {
		deps.Metrics = metrics.InitMetrics(deps.Registry)
	}
	m := deps.Metrics

	cfg := deps.Config
	cookies := utils.NewCookies(cfg.SecretKey, cfg.IsProduction() && strings.HasPrefix(cfg.BaseURL, "https://"))
	errorHdl := handlers.NewErrorHandler(cookies, deps.Store)

	setupCommonMiddleware(router, deps, m, cookies, errorHdl)
	setupRoutes(router, deps, m, cookies, errorHdl)

	return router, nil
}

func setupCommonMiddleware(router *gin.Engine, deps *Dependencies, m *metrics.Metrics, cookies *utils.Cookies, errorHdl handlers.ErrorHdl) {
	// The trace id has to be on the request before anything reads the session cookie.
	router.Use(middleware.InjectTrace())
	router.Use(middleware.LogRequest())
	router.Use(middleware.RecordMetrics(m))
	router.Use(gin.CustomRecovery(errorHdl.Recover))
	if len(deps.Config.AllowedOrigins) > 0 {
		router.Use(cors.New(cors.Config{
			AllowOrigins:  deps.Config.AllowedOrigins,
			AllowMethods:  []string{"GET", "POST", "OPTIONS"},
			AllowHeaders:  []string{"Accept", "Content-Type"},
			ExposeHeaders: []string{"Content-Length", "Content-Type", "X-Trace-Id"},
			MaxAge:        12 * time.Hour,
		}))
	}
	router.Use(middleware.SanitizePath())
	router.Use(middleware.DetectLocale(utils.NewLocaleMatcher(deps.Config.Languages)))
	router.Use(middleware.LoadSession(cookies, deps.SessionManager, deps.Store))
}

func setupRoutes(router *gin.Engine, deps *Dependencies, m *metrics.Metrics, cookies *utils.Cookies, errorHdl handlers.ErrorHdl) {
	router.NoRoute(errorHdl.NotFound)

	router.GET("/health", errorHdl.Health)
	router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(deps.Registry, promhttp.HandlerOpts{})))

	cfg := deps.Config
	authHdl := handlers.NewAuthHandler(cookies, deps.Store, deps.JWTManager, deps.MailManager, deps.SessionManager, m, cfg)
	authRoutes(router, authHdl)

	// Everything below requires a logged in user
	loggedIn := router.Group("/")
	loggedIn.Use(middleware.RequireLogin(cookies))

	postHdl := handlers.NewPostHandler(cookies, deps.Store, m, cfg.PostsPerPage)
	postRoutes(loggedIn, postHdl)

	userHdl := handlers.NewUserHandler(cookies, deps.Store, m, cfg.PostsPerPage)
	loggedIn.GET("/user/:"+utils.UsernameKey, userHdl.Profile)
	loggedIn.GET("/edit_profile", userHdl.ShowEditProfile)
	loggedIn.POST("/edit_profile", middleware.BindForm[schemas.EditProfileRequest](), userHdl.EditProfile)

	followHdl := handlers.NewFollowHandler(cookies, deps.Store, m)
	loggedIn.GET("/follow/:"+utils.UsernameKey, followHdl.Follow)
	loggedIn.GET("/unfollow/:"+utils.UsernameKey, followHdl.Unfollow)

	translateHdl := handlers.NewTranslateHandler(deps.TranslationManager, m)
	loggedIn.POST("/translate", middleware.ValidateAndSanitizeStruct[schemas.TranslateRequest](), translateHdl.Translate)
}

func authRoutes(router *gin.Engine, authHdl handlers.AuthHdl) {
	router.GET("/login", authHdl.ShowLogin)
	router.POST("/login", middleware.BindForm[schemas.LoginRequest](), authHdl.Login)
	router.GET("/logout", authHdl.Logout)
	router.GET("/register", authHdl.ShowRegister)
	router.POST("/register", middleware.BindForm[schemas.RegistrationRequest](), authHdl.Register)
	router.GET("/reset_password_request", authHdl.ShowResetPasswordRequest)
	router.POST("/reset_password_request", middleware.BindForm[schemas.ResetPasswordRequestRequest](), authHdl.ResetPasswordRequest)
	router.GET("/reset_password/:"+utils.TokenKey, authHdl.ShowResetPassword)
	router.POST("/reset_password/:"+utils.TokenKey, middleware.BindForm[schemas.ResetPasswordRequest](), authHdl.ResetPassword)
}

func postRoutes(loggedIn *gin.RouterGroup, postHdl handlers.PostHdl) {
	for _, path := range []string{"/", "/index"} {
		loggedIn.GET(path, postHdl.Index)
		loggedIn.POST(path, middleware.BindForm[schemas.CreatePostRequest](), postHdl.CreatePost)
	}
	loggedIn.GET("/explore", postHdl.Explore)
}
