package main

import (
	"context"
	"database/sql"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/viper"

	_ "github.com/Dmytro-Kruhlov/hw-web-14/docs"
	"github.com/Dmytro-Kruhlov/hw-web-14/external/cloudinary"
	"github.com/Dmytro-Kruhlov/hw-web-14/external/sendgrid"
	"github.com/Dmytro-Kruhlov/hw-web-14/internal/cache"
	"github.com/Dmytro-Kruhlov/hw-web-14/internal/handlers"
	"github.com/Dmytro-Kruhlov/hw-web-14/internal/logger"
	"github.com/Dmytro-Kruhlov/hw-web-14/internal/repository"
	repodb "github.com/Dmytro-Kruhlov/hw-web-14/internal/repository/db"
	"github.com/Dmytro-Kruhlov/hw-web-14/internal/server"
	"github.com/Dmytro-Kruhlov/hw-web-14/internal/service"
)

const shutdownTimeout = 10 * time.Second

// @title        Contacts API
// @version      1.0
// @description  Contacts-management REST API with JWT auth and per-user contact books.
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	// init logger
	log := logger.Get(logger.InfoLevel)
	defer logger.Sync()

	// load config.yml
	if err := loadConfig(); err != nil {
		log.Fatalw("error reading config", "err", err)
	}

	secret := viper.GetString("auth.secret")
	if secret == "" {
		log.Fatalw("auth.secret is not configured")
	}

	// open DB
	db, err := openDB(log)
	if err != nil {
		log.Fatalw("failed to init sqlite", "err", err)
	}
	defer func() {
		if cerr := db.Close(); cerr != nil {
			log.Fatalw("failed to close sqlite", "err", cerr)
		}
	}()

	// redis backs the rate limiter and the access-gate user cache; the API
	// still serves traffic without it, just uncached and unthrottled.
	var (
		userCache service.UserCache
		limiter   handlers.RateLimiter
	)
	if rdb, rerr := cache.New(context.Background(),
		viper.GetString("redis.addr"),
		viper.GetString("redis.password"),
		viper.GetInt("redis.db"),
	); rerr != nil {
		log.Errorw("redis unavailable; rate limiting and user cache disabled", "err", rerr)
	} else {
		userCache, limiter = rdb, rdb
		defer func() {
			if cerr := rdb.Close(); cerr != nil {
				log.Errorw("failed to close redis", "err", cerr)
			}
		}()
	}

	// outbound email and image hosting come from env credentials; start
	// degraded when they are absent.
	var mailer service.EmailSender
	if m, merr := sendgrid.NewMailer(viper.GetString("mail.from_name"), viper.GetString("mail.from_email")); merr != nil {
		log.Infow("sendgrid disabled", "reason", merr)
	} else {
		mailer = m
	}

	var uploader service.AvatarUploader
	if u, uerr := cloudinary.New(); uerr != nil {
		log.Infow("cloudinary disabled", "reason", uerr)
	} else {
		uploader = u
	}

	tokens := service.NewTokenManager(service.TokenConfig{
		Secret:     secret,
		AccessTTL:  viper.GetDuration("auth.access_ttl"),
		RefreshTTL: viper.GetDuration("auth.refresh_ttl"),
		EmailTTL:   viper.GetDuration("auth.email_ttl"),
	})

	// wire dependencies
	repos := repository.NewRepository(db)
	services := service.NewService(service.Deps{
		Repos:    repos,
		Tokens:   tokens,
		Mailer:   mailer,
		Uploader: uploader,
		Cache:    userCache,
		BaseURL:  viper.GetString("base_url"),
		Log:      log,
	})
	apiHandler := handlers.NewHandler(services, limiter, log)

	// start HTTP server
	srv := &server.Server{}
	runHTTPServer(srv, viper.GetString("port"), apiHandler, log)

	// graceful shutdown
	waitForShutdown(srv, log)
}

func loadConfig() error {
	viper.AddConfigPath("configs") // configs/config.yml
	viper.SetConfigName("config")
	if err := viper.ReadInConfig(); err != nil {
		return err
	}
	// secrets may be supplied from the environment instead of the file
	if err := viper.BindEnv("auth.secret", "AUTH_SECRET"); err != nil {
		return err
	}
	return viper.BindEnv("redis.password", "REDIS_PASSWORD")
}

// openDB initializes the SQLite database using configuration.
func openDB(log *logger.Logger) (*sql.DB, error) {
	dbPath := viper.GetString("db.path")
	if dbPath == "" {
		log.Infow("db.path not set in config; using default file", "default", "app.db")
		dbPath = "app.db"
	}
	return repodb.InitDB(dbPath)
}

// runHTTPServer runs the HTTP server in a separate goroutine.
func runHTTPServer(srv *server.Server, port string, handler *handlers.Handler, log *logger.Logger) {
	go func() {
		if port == "" {
			port = "8080"
		}
		if err := srv.Run(port, handler.InitRoutes()); err != nil {
			log.Fatalw("error starting server", "err", err)
		}
	}()
}

// waitForShutdown listens for termination signals and performs graceful shutdown.
func waitForShutdown(srv *server.Server, log *logger.Logger) {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Infow("shutting down server...")

	// allow in-flight requests to complete
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalw("server forced to shutdown", "err", err)
	}
}
