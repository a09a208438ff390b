package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"github.com/sbcapp/tictactoe-chain/backend/internal/chain"
	"github.com/sbcapp/tictactoe-chain/backend/internal/config"
	"github.com/sbcapp/tictactoe-chain/backend/internal/repository/postgres"
	"github.com/sbcapp/tictactoe-chain/backend/internal/repository/redis"
	"github.com/sbcapp/tictactoe-chain/backend/internal/service/game"
	"github.com/sbcapp/tictactoe-chain/backend/internal/service/match"
	"github.com/sbcapp/tictactoe-chain/backend/internal/service/records"
	transportHttp "github.com/sbcapp/tictactoe-chain/backend/internal/transport/http"
	"github.com/sbcapp/tictactoe-chain/backend/internal/transport/websocket"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	cfg := config.LoadConfig()

	// 1. Database
	db, err := postgres.Connect(cfg.DatabaseURL, cfg.DBMaxOpenConns, cfg.DBMaxIdleConns, cfg.DBConnMaxLifetimeMin)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	log.Println("Running database migrations...")
	if err := postgres.RunMigrations(db); err != nil {
		log.Fatalf("Migration failed: %v", err)
	}

	// 2. Redis (optional cache)
	if err := redis.InitRedis(); err != nil {
		log.Printf("Failed to initialize Redis: %v", err)
	}
	defer redis.CloseRedis()

	var cache records.Cache
	if redis.IsRedisEnabled() && redis.RedisClient != nil {
		cache = redis.NewRedisCache(redis.RedisClient)
	}

	// 3. Chain collaborator (turn-order seeds + event relay)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	chainClient, err := chain.Dial(ctx, cfg.ChainRPCURL, cfg.ContractAddress)
	if err != nil {
		log.Fatalf("Failed to connect to chain RPC: %v", err)
	}
	defer chainClient.Close()

	// 4. Services
	recordsService := records.NewService(
		postgres.NewWinnerRepo(db),
		postgres.NewAvatarRepo(db),
		cache,
	)
	connManager := websocket.NewConnectionManager()
	sessionManager := game.NewManager(connManager, recordsService)
	matchEngine := match.NewEngine(connManager, sessionManager)

	go match.Listen(matchEngine, chainClient, sessionManager)
	go chainClient.WatchEvents(ctx, connManager)

	// 5. Handlers
	wsHandler := websocket.NewHandler(connManager, matchEngine, sessionManager)
	recordsHandler := transportHttp.NewRecordsHandler(recordsService)
	watchHandler := transportHttp.NewWatchHandler(sessionManager)

	// 6. Router
	router := gin.New()
	router.Use(gin.Logger(), gin.Recovery())

	router.GET("/health", func(c *gin.Context) {
		c.String(http.StatusOK, "OK")
	})

	router.GET("/game/:gameId/winner", recordsHandler.GetWinner)
	router.POST("/save-avatar", recordsHandler.SaveAvatar)
	router.GET("/get-avatar", recordsHandler.GetAvatar)
	router.GET("/api/watch", watchHandler.GetLiveGames)

	router.GET("/ws", wsHandler.HandleWebSocket)

	// Serve the static game client
	if _, err := os.Stat(cfg.ClientDir); err == nil {
		router.Static("/client", cfg.ClientDir)
		router.GET("/", func(c *gin.Context) {
			c.File(cfg.ClientDir + "/index.html")
		})
	}

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	go func() {
		log.Printf("Server listening on port %s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server error: %v", err)
		}
	}()

	// Wait for interrupt signal for graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit
	log.Println("Server is shutting down...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server forced to shutdown: %v", err)
	}

	log.Println("Server exited gracefully")
}
