package internal

import (
	"context"
	"errors"
	"net"
	"net/http"
	"net/mail"
	"os"
	"os/signal"
	"syscall"
	"time"

	logrustash "github.com/bshuster-repo/logrus-logstash-hook"
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	log "github.com/sirupsen/logrus"
	"microblog/internal/config"
	"microblog/internal/managers"
	"microblog/internal/metrics"
	"microblog/internal/repositories"
	"microblog/internal/routing"
	"microblog/internal/utils"
)

const (
	envFile         = ".env"
	shutdownTimeout = 10 * time.Second
)

func Init() {
	err := godotenv.Load(envFile)
	if err != nil {
		log.Info("No .env file found, using environment variables from system")
	} else {
		log.Info("Loaded environment variables from .env file")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Error loading configuration: ", err)
	}
	setupLogging(cfg)

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	configureEmailVerification(cfg)

	ctx := context.Background()

	// Connect to database
	store, closeStore := initializeStore(ctx, cfg)
	defer closeStore()

	sessionMgr := initializeSessions(ctx, cfg)

	// Initialize JWT manager
	jwtMgr, err := managers.NewJWTManager(cfg.SecretKey)
	if err != nil {
		log.Fatal("Error initializing JWT manager: ", err)
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.InitMetrics(registry)

	// Mails leave the request path through the worker pool
	mailMgr := managers.NewAsyncMailManager(managers.NewMailManager(cfg), cfg.Mail.Workers, cfg.Mail.QueueSize, m)
	defer mailMgr.Close()

	r, err := routing.InitRouter(&routing.Dependencies{
		Config:             cfg,
		Store:              store,
		JWTManager:         jwtMgr,
		MailManager:        mailMgr,
		SessionManager:     sessionMgr,
		TranslationManager: managers.NewTranslationManager(cfg.Translator),
		Registry:           registry,
		Metrics:            m,
	})
	if err != nil {
		log.Fatal("Error initializing router: ", err)
	}
	log.Info("Initialized router")

	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Infof("Starting server on port %s...", cfg.Port)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Error starting server: ", err)
		}
	}()

	// Handle interrupt signal gracefully
	signalCtx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()
	<-signalCtx.Done()

	log.Info("Server shutting down...")
	shutdownCtx, cancel := context.WithTimeout(ctx, shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("Error shutting down server: ", err)
	}
}

// initializeStore connects to Postgres and migrates the schema. Without a configured database host
// the in-memory store is used.
func initializeStore(ctx context.Context, cfg *config.Config) (repositories.Store, func()) {
	if !cfg.UsesPostgres() {
		log.Warn("No database configured, using the in-memory store. Data is lost on restart")
		return repositories.NewMemoryStore(), func() {}
	}

	pool := initializeDatabase(ctx, cfg)
	databaseMgr := managers.NewDatabaseManager(pool)
	if err := databaseMgr.RunMigrations(ctx); err != nil {
		databaseMgr.Close()
		log.Fatal("Error migrating database: ", err)
	}
	return repositories.NewPostgresStore(databaseMgr.GetPool()), databaseMgr.Close
}

func initializeDatabase(ctx context.Context, cfg *config.Config) *pgxpool.Pool {
	log.Info("Initializing database")

	poolConfig, err := pgxpool.ParseConfig(cfg.DSN())
	if err != nil {
		log.Fatal("error configuring database: ", err)
	}

	poolConfig.MinConns = 5
	poolConfig.MaxConns = 30
	poolConfig.MaxConnIdleTime = time.Minute * 2
	poolConfig.HealthCheckPeriod = time.Minute * 1

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		log.Fatal("error connecting to database: ", err)
	}
	log.Info("Connected to database")
	return pool
}

// initializeSessions keeps sessions in Redis when REDIS_ADDR is set, in process memory otherwise.
func initializeSessions(ctx context.Context, cfg *config.Config) managers.SessionMgr {
	if cfg.Redis.Addr == "" {
		log.Warn("No Redis configured, sessions are kept in memory")
		return managers.NewMemorySessionManager()
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	rdb, err := managers.NewRedisClient(pingCtx, cfg.Redis.Addr, cfg.Redis.Password)
	if err != nil {
		log.Fatal("Error connecting to redis: ", err)
	}
	log.Info("Connected to redis")
	return managers.NewRedisSessionManager(rdb)
}

// configureEmailVerification uses the address of the mail sender as truemail's verifier email.
func configureEmailVerification(cfg *config.Config) {
	sender, err := mail.ParseAddress(cfg.Mail.Sender)
	if err == nil {
		err = utils.ConfigureEmailVerification(sender.Address, cfg.VerifyEmailMX)
	}
	if err != nil {
		log.Warn("Email verification falls back to the form check: ", err)
	}
}

func setupLogging(cfg *config.Config) {
	setLogLevel(cfg.LogLevel)
	log.SetReportCaller(true)
	log.SetOutput(os.Stdout)

	if cfg.LogFormat == "json" {
		log.SetFormatter(&log.JSONFormatter{})
	}

	if cfg.LogstashAddr != "" {
		conn, err := net.Dial("tcp", cfg.LogstashAddr)
		if err != nil {
			log.Warn("Logstash is not reachable, logging to stdout only: ", err)
			return
		}
		log.AddHook(logrustash.New(conn, logrustash.DefaultFormatter(log.Fields{
			"service": utils.ExtractServiceName(),
		})))
		log.Info("Shipping logs to logstash at ", cfg.LogstashAddr)
	}
}

func setLogLevel(logLevel string) {
	switch logLevel {
	case "DEBUG":
		log.SetLevel(log.DebugLevel)
	case "INFO":
		log.SetLevel(log.InfoLevel)
	case "WARN":
		log.SetLevel(log.WarnLevel)
	case "ERROR":
		log.SetLevel(log.ErrorLevel)
	case "FATAL":
		log.SetLevel(log.FatalLevel)
	default:
		log.SetLevel(log.InfoLevel)
	}
}
