package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"worldvault/internal/config"
	"worldvault/internal/transport/adminws"
	"worldvault/internal/vault/session"
)

func main() {
	var (
		addr       = flag.String("addr", ":8080", "http listen address")
		configPath = flag.String("config", "", "path to vault.yaml (empty: defaults)")
		dataDir    = flag.String("data", "", "override data directory (saves/archives/index under it)")
		op         = flag.String("op", "", "one-shot operation: create|save|load|delete|archive|list (empty: serve)")
		profileID  = flag.String("profile", "", "profile id for one-shot operations")
		seed       = flag.Int64("seed", 0, "explicit world seed for -op create (0: random)")
	)
	flag.Parse()

	logger := log.New(os.Stdout, "[vaultd] ", log.LstdFlags|log.Lmicroseconds)

	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.Fatalf("load config: %v", err)
	}
	if strings.TrimSpace(*dataDir) != "" {
		cfg = config.UnderDataDir(cfg, *dataDir)
	}

	sess, err := session.Open(cfg, logger)
	if err != nil {
		logger.Fatalf("open session: %v", err)
	}
	defer func() {
		if err := sess.Close(); err != nil {
			logger.Printf("close session: %v", err)
		}
	}()

	if strings.TrimSpace(*op) != "" {
		runOneShot(sess, logger, *op, *profileID, *seed)
		return
	}

	wsServer := adminws.NewServer(sess, logger)

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	mux.HandleFunc("/v1/ws", wsServer.Handler())
	registerAdminRoutes(mux, sess, logger)

	srv := &http.Server{
		Addr:              *addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGTERM)

	go func() {
		logger.Printf("listening on %s (saves root %s)", *addr, cfg.SavesRoot)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatalf("serve: %v", err)
		}
	}()

	<-done
	logger.Printf("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = srv.Shutdown(shutdownCtx)
}

func runOneShot(sess *session.Session, logger *log.Logger, op, profileID string, seed int64) {
	ctx := context.Background()
	switch op {
	case "create":
		var sp *int64
		if seed != 0 {
			sp = &seed
		}
		id, err := sess.CreateProfile(ctx, profileID, sp)
		if err != nil {
			logger.Fatalf("create: %v", err)
		}
		logger.Printf("created profile %s (seed %d)", id, sess.World().Seed)
	case "save":
		if err := sess.SaveAll(ctx, profileID); err != nil {
			logger.Fatalf("save: %v", err)
		}
		logger.Printf("saved profile %s", profileID)
	case "load":
		if err := sess.LoadAll(ctx, profileID); err != nil {
			logger.Fatalf("load: %v", err)
		}
		w := sess.World()
		logger.Printf("loaded profile %s: world %q seed %d, %d chunks, %d occupied cells",
			profileID, w.Name, w.Seed, w.Chunks.Len(), w.Grid.Len())
	case "delete":
		if err := sess.DeleteProfile(ctx, profileID); err != nil {
			logger.Fatalf("delete: %v", err)
		}
		logger.Printf("deleted profile %s", profileID)
	case "archive":
		dir, err := sess.ArchiveProfile(profileID)
		if err != nil {
			logger.Fatalf("archive: %v", err)
		}
		logger.Printf("archived profile %s to %s", profileID, dir)
	case "list":
		infos, err := sess.ListProfiles()
		if err != nil {
			logger.Fatalf("list: %v", err)
		}
		for _, p := range infos {
			if p.LastSaved.IsZero() {
				logger.Printf("%s (never saved)", p.ID)
				continue
			}
			logger.Printf("%s (last saved %s)", p.ID, p.LastSaved.UTC().Format(time.RFC3339))
		}
	default:
		logger.Fatalf("unknown -op %q", op)
	}
}
