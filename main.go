package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/elanrrrk/citadels/config"
	"github.com/elanrrrk/citadels/logger"
	"github.com/elanrrrk/citadels/monitor"
	"github.com/elanrrrk/citadels/persistence"
	"github.com/elanrrrk/citadels/server"
	"github.com/elanrrrk/citadels/services"
	"github.com/elanrrrk/citadels/timer"
)

func main() {
	// Initialize logger
	logger.Init()

	// Load configuration
	cfg, err := config.LoadConfig(".")
	if err != nil {
		logger.Log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize Database
	db, err := persistence.NewGormPostgreSQL(
		cfg.Database.Postgres.Host,
		cfg.Database.Postgres.Port,
		cfg.Database.Postgres.User,
		cfg.Database.Postgres.Password,
		cfg.Database.Postgres.DBName,
	)
	if err != nil {
		logger.Log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()
	logger.Log.Info("Database connection successful.")

	gameService := services.NewGameService(db)

	// Monitoring
	mon := monitor.NewMonitor("citadels")
	mon.StartServer(cfg.Server.MetricsAddress)

	// Initialize Game Server
	gameServer := server.NewGameServer(
		cfg.Server.HTTPAddress,
		cfg.Server.RPCAddress,
		cfg.Game.DefaultLobbyName,
		gameService,
		mon,
	)

	// Idle rooms are torn down in the background.
	timerManager := timer.NewTimerManager()
	defer timerManager.Stop()
	gameServer.RoomManager().StartIdleSweep(timerManager, cfg.Game.RoomTTL)

	go func() {
		sigs := make(chan os.Signal, 1)
		signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
		<-sigs
		logger.Log.Info("Shutdown signal received.")
		gameServer.Shutdown()
		os.Exit(0)
	}()

	// Start Server
	logger.Log.Infof("Starting game server on %s", cfg.Server.HTTPAddress)
	if err := gameServer.Start(); err != nil {
		logger.Log.Fatalf("Failed to start server: %v", err)
	}
}
