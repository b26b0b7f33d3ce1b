package server

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"

	"soundcrate/cache"
	"soundcrate/config"
	"soundcrate/core/auth"
	"soundcrate/core/ingest"
	"soundcrate/core/track"
	"soundcrate/db"
	"soundcrate/logger"
	"soundcrate/repository"
	"soundcrate/storage"
)

// Start wires the dependencies and runs the HTTP server until interrupted.
func Start() {
	cfg := config.Load()

	logger.InitLogger(logger.Config{
		Level:      logger.InfoLevel,
		OutputPath: "logs/server.log",
		MaxSize:    100,
		MaxBackups: 3,
		MaxAge:     28,
		Compress:   true,
	})

	auth.Configure(cfg.JWTSecret, cfg.JWTLifetime)

	if err := storage.InitMinio(cfg); err != nil {
		logger.Fatal("Failed to initialize MinIO", logger.ErrorField(err))
	}
	store, err := storage.NewStore(cfg)
	if err != nil {
		logger.Fatal("Failed to create object store", logger.ErrorField(err))
	}

	if err := db.ConnectDB(cfg); err != nil {
		logger.Fatal("Failed to connect to database", logger.ErrorField(err))
	}
	defer db.DB.Close()

	if err := db.InitDB(); err != nil {
		logger.Fatal("Failed to initialize database schema", logger.ErrorField(err))
	}

	if err := db.ConnectRedis(cfg); err != nil {
		logger.Fatal("Failed to connect to Redis", logger.ErrorField(err))
	}
	defer db.CloseRedis()

	trackRepo := repository.NewMySQLTrackRepository(db.DB)
	userRepo := repository.NewMySQLUserRepository(db.DB)
	playlists := cache.NewPlaylistCache(db.RedisClient)

	trackService := track.NewService(
		trackRepo,
		userRepo,
		store,
		track.MP3Prober{},
		playlists,
		cfg.MaxTrackBytes,
		cfg.MaxTracksPerUser,
		cfg.SignedURLTTL,
	)
	fetcher := ingest.NewClient(cfg.ResolverURL, cfg.IngestFetchTimeout,
		cfg.MaxIngestDuration, cfg.MaxTrackBytes)

	apiHandler := NewAPIHandler(trackService, userRepo, fetcher, playlists, cfg)

	router := mux.NewRouter()
	router.Use(corsMiddleware)

	router.HandleFunc("/api/auth/register", apiHandler.RegisterHandler).Methods(http.MethodPost)
	router.HandleFunc("/api/auth/login", apiHandler.LoginHandler).Methods(http.MethodPost)
	router.HandleFunc("/api/auth/logout", apiHandler.AuthMiddleware(apiHandler.LogoutHandler)).Methods(http.MethodPost)

	router.HandleFunc("/api/tracks", apiHandler.AuthMiddleware(apiHandler.GetTracksHandler)).Methods(http.MethodGet)
	router.HandleFunc("/api/upload", apiHandler.AuthMiddleware(apiHandler.UploadTrackHandler)).Methods(http.MethodPost)
	router.HandleFunc("/api/tracks/{id}", apiHandler.AuthMiddleware(apiHandler.DeleteTrackHandler)).Methods(http.MethodDelete)

	router.HandleFunc("/api/ingest/youtube", apiHandler.AuthMiddleware(apiHandler.IngestYouTubeHandler)).Methods(http.MethodPost)

	router.HandleFunc("/api/account", apiHandler.AuthMiddleware(apiHandler.DeleteAccountHandler)).Methods(http.MethodDelete)

	router.HandleFunc("/api/playlist", apiHandler.AuthMiddleware(apiHandler.GetPlaylistHandler)).Methods(http.MethodGet)
	router.HandleFunc("/api/playlist", apiHandler.AuthMiddleware(apiHandler.ReplacePlaylistHandler)).Methods(http.MethodPut)

	server := &http.Server{
		Addr:         cfg.ListenAddr,
		Handler:      router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	go func() {
		logger.Info("Server starting", logger.String("addr", cfg.ListenAddr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Failed to start server", logger.ErrorField(err))
		}
	}()

	<-stop
	logger.Info("Shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		logger.Fatal("Server forced to shutdown", logger.ErrorField(err))
	}

	logger.Info("Server stopped")
}

// corsMiddleware allows browser clients on other origins.
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		w.Header().Set("Access-Control-Max-Age", "86400")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}
