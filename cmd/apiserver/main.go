package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.uber.org/zap"

	"github.com/campusshield/campusshield/internal/apiserver/database"
	"github.com/campusshield/campusshield/internal/apiserver/handler"
	"github.com/campusshield/campusshield/internal/apiserver/limiter"
	"github.com/campusshield/campusshield/internal/apiserver/middleware"
	"github.com/campusshield/campusshield/internal/auth/jwt"
	"github.com/campusshield/campusshield/internal/common/config"
	"github.com/campusshield/campusshield/internal/common/errorx"
	"github.com/campusshield/campusshield/internal/notify"
	"github.com/campusshield/campusshield/pkg/logger"
	"github.com/campusshield/campusshield/pkg/metrics"
	"github.com/campusshield/campusshield/pkg/trace"
	"github.com/campusshield/campusshield/pkg/version"
)

var (
	configPath string

	versionCmd = &cobra.Command{
		Use:   "version",
		Short: "Print the version number of apiserver",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("apiserver version %s\n", version.Get())
		},
	}

	rootCmd = &cobra.Command{
		Use:   "apiserver",
		Short: "CampusShield API Server",
		Long:  `CampusShield API Server provides the campus safety reporting API`,
		Run: func(cmd *cobra.Command, args []string) {
			run()
		},
	}
)

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "conf", "", "path to configuration file")
	rootCmd.AddCommand(versionCmd)
}

func getConfigPath() string {
	if configPath != "" {
		return configPath
	}
	if envPath := os.Getenv("APISERVER_CONF"); envPath != "" {
		return envPath
	}
	return "configs/apiserver.yaml"
}

func run() {
	cfg, err := config.LoadConfig[config.APIServerConfig](getConfigPath())
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	lg, err := logger.NewLogger(&cfg.Logger)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer func() {
		_ = lg.Sync()
	}()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := trace.InitTracing(ctx, &cfg.Tracing, lg)
	if err != nil {
		lg.Fatal("Failed to initialize tracing", zap.Error(err))
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTracing(shutdownCtx); err != nil {
			lg.Error("failed to shutdown tracing", zap.Error(err))
		}
	}()

	db, err := database.NewDatabase(&cfg.Database)
	if err != nil {
		lg.Fatal("Failed to initialize database",
			zap.String("type", cfg.Database.Type),
			zap.Error(err))
	}
	defer func() {
		_ = db.Close()
	}()

	jwtService, err := jwt.NewService(jwt.Config{
		SecretKey: cfg.JWT.SecretKey,
		Duration:  cfg.JWT.Duration,
	})
	if err != nil {
		lg.Fatal("Failed to initialize JWT service", zap.Error(err))
	}

	rate, err := limiter.NewLimiter(&cfg.Limiter)
	if err != nil {
		lg.Fatal("Failed to initialize rate limiter", zap.Error(err))
	}
	defer func() {
		_ = rate.Close()
	}()

	mailer, err := notify.NewMailer(&cfg.Mail, lg)
	if err != nil {
		lg.Fatal("Failed to initialize mailer", zap.Error(err))
	}

	m := metrics.New(cfg.Metrics)
	builder := notify.NewBuilder(&cfg.Notify, lg)
	errs := errorx.NewHandler(lg)

	// Outbox delivery runs alongside the HTTP server and stops with it.
	worker := notify.NewWorker(db, mailer, &cfg.Notify, lg, m)
	go worker.Run(ctx)

	lg.Info("Starting apiserver", zap.String("version", version.Get()))

	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(otelgin.Middleware(cfg.Tracing.ServiceName))
	if cfg.Metrics.Enabled {
		r.Use(m.Middleware())
		r.GET("/metrics", gin.WrapH(m.Handler()))
	}
	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "version": version.Get()})
	})

	userHandler := handler.NewUserHandler(db, jwtService, builder, errs, m, cfg.Auth.BcryptCost)
	adminHandler := handler.NewAdminHandler(db, jwtService, builder, errs, m, cfg.Auth.BcryptCost)
	sirenHandler := handler.NewSirenHandler(db, builder, rate, errs, m)

	api := r.Group("/api/v1")

	user := api.Group("/user")
	user.POST("/signup", userHandler.Signup)
	user.POST("/signin", userHandler.Signin)
	user.POST("/sendsiren", middleware.OptionalJWTAuthMiddleware(jwtService), sirenHandler.SendSiren)
	userAuthed := user.Group("", middleware.JWTAuthMiddleware(jwtService), middleware.RequireRole(jwt.RoleUser))
	userAuthed.GET("/getreports", userHandler.GetReports)
	userAuthed.POST("/createreport", userHandler.CreateReport)
	userAuthed.PUT("/updateprofile", userHandler.UpdateProfile)

	admin := api.Group("/admin")
	admin.POST("/signup", adminHandler.Signup)
	admin.POST("/signin", adminHandler.Signin)
	adminAuthed := admin.Group("", middleware.JWTAuthMiddleware(jwtService), middleware.RequireRole(jwt.RoleAdmin))
	adminAuthed.GET("/details", adminHandler.Details)
	adminAuthed.GET("/getusers", adminHandler.GetUsers)
	adminAuthed.DELETE("/deleteuser", adminHandler.DeleteUser)
	adminAuthed.PUT("/update", adminHandler.Update)
	adminAuthed.GET("/reports", adminHandler.Reports)
	adminAuthed.PUT("/changestatus", adminHandler.ChangeStatus)
	adminAuthed.DELETE("/deletereport", adminHandler.DeleteReport)
	adminAuthed.GET("/sirens", adminHandler.Sirens)

	port := cfg.Server.Port
	if port == 0 {
		port = 5234
	}
	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", port),
		Handler: r,
	}

	go func() {
		lg.Info("Server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			lg.Fatal("failed to start server", zap.Error(err))
		}
	}()

	<-ctx.Done()
	lg.Info("Shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		lg.Error("failed to shutdown server", zap.Error(err))
	}
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
