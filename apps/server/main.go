package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/urbanhobbit/CIOGame04/apps/server/internal/auth"
	"github.com/urbanhobbit/CIOGame04/apps/server/internal/gateway"
	"github.com/urbanhobbit/CIOGame04/apps/server/internal/ledger"
	"github.com/urbanhobbit/CIOGame04/apps/server/internal/lobby"
	"github.com/urbanhobbit/CIOGame04/apps/server/internal/store"
	"github.com/urbanhobbit/CIOGame04/scenario"
)

func main() {
	cfg, err := loadServerConfig()
	if err != nil {
		log.Fatalf("[Server] Invalid config: %v", err)
	}
	gameCfg, err := cfg.gameConfig()
	if err != nil {
		log.Fatalf("[Server] Failed to load game config: %v", err)
	}
	catalogs, err := cfg.catalogs()
	if err != nil {
		log.Fatalf("[Server] Failed to load catalogs: %v", err)
	}
	personas, err := cfg.personas()
	if err != nil {
		log.Fatalf("[Server] Failed to load personas: %v", err)
	}

	var shared *store.DB
	if cfg.needsSQLite() {
		shared, err = store.OpenSQLite(cfg.SQLitePath)
		if err != nil {
			log.Fatalf("[Server] Failed to open sqlite: %v", err)
		}
		defer shared.Close()
	}

	authService, err := auth.New(cfg.AuthMode, shared)
	if err != nil {
		log.Fatalf("[Server] Failed to init auth: %v", err)
	}
	defer authService.Close()
	ledgerService, ledgerMode, err := ledger.New(ledger.Options{
		Mode:        cfg.LedgerMode,
		SQLitePath:  cfg.SQLitePath,
		PostgresDSN: cfg.PostgresDSN,
		RecentLimit: cfg.RecentLimit,
	}, shared)
	if err != nil {
		log.Fatalf("[Server] Failed to init ledger: %v", err)
	}
	defer ledgerService.Close()

	lby, err := lobby.New(lobby.Config{
		Game:             gameCfg,
		DefaultMode:      scenario.Mode(cfg.DefaultMode),
		Catalogs:         catalogs,
		Personas:         personas,
		DefaultPersona:   cfg.DefaultPersona,
		Ledger:           ledgerService,
		SummaryCacheSize: cfg.SummaryCache,
	})
	if err != nil {
		log.Fatalf("[Server] Failed to init lobby: %v", err)
	}
	defer lby.Close()

	gw := gateway.New(lby, authService)

	mux := http.NewServeMux()
	mux.HandleFunc("/ws", gw.HandleWebSocket)
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})
	auth.NewHTTPHandler(authService).RegisterRoutes(mux)
	ledger.NewHTTPHandler(authService, ledgerService).RegisterRoutes(mux)
	lobby.NewHTTPHandler(authService, lby).RegisterRoutes(mux)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	go lby.RunReaper(ctx, cfg.RoomIdleTTL, cfg.ReapInterval)

	srv := &http.Server{Addr: cfg.Addr, Handler: mux}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Printf("[Server] Shutdown error: %v", err)
		}
	}()

	log.Printf("[Server] Auth mode: %s", cfg.AuthMode)
	log.Printf("[Server] Ledger mode: %s", ledgerMode)
	log.Printf("[Server] Catalogs: %d, personas: %d", len(catalogs), personas.Count())
	log.Printf("[Server] Starting WebSocket server on %s", cfg.Addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatalf("[Server] Failed to start: %v", err)
	}
	log.Printf("[Server] Stopped")
}
