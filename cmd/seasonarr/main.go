package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/seasonarr/seasonarr/internal/acquisition"
	"github.com/seasonarr/seasonarr/internal/api"
	"github.com/seasonarr/seasonarr/internal/config"
	"github.com/seasonarr/seasonarr/internal/database"
	"github.com/seasonarr/seasonarr/internal/downloader"
	"github.com/seasonarr/seasonarr/internal/downloader/qbittorrent"
	"github.com/seasonarr/seasonarr/internal/importer"
	"github.com/seasonarr/seasonarr/internal/indexer"
	"github.com/seasonarr/seasonarr/internal/indexer/prowlarr"
	"github.com/seasonarr/seasonarr/internal/indexer/scoring"
	"github.com/seasonarr/seasonarr/internal/indexer/search"
	"github.com/seasonarr/seasonarr/internal/indexer/torznab"
	"github.com/seasonarr/seasonarr/internal/library/tv"
	"github.com/seasonarr/seasonarr/internal/logger"
	"github.com/seasonarr/seasonarr/internal/scheduler"
	"github.com/seasonarr/seasonarr/internal/scheduler/tasks"
	"github.com/seasonarr/seasonarr/internal/startup"
	"github.com/seasonarr/seasonarr/internal/websocket"
)

func main() {
	// .env is optional, real config comes from file and environment.
	_ = godotenv.Load()

	configPath := flag.String("config", "", "Path to config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	logStream := logger.NewStreamWriter(nil, 0)
	log := logger.New(logger.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Path:   cfg.Logging.Path,
		Stream: logStream,
	})
	defer log.Close()

	log.Info().
		Str("level", cfg.Logging.Level).
		Msg("starting seasonarr")

	db, err := database.New(cfg.Database.Path)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to open database")
	}
	defer db.Close()

	log.Info().Msg("running database migrations")
	if err := db.Migrate(); err != nil {
		log.Fatal().Err(err).Msg("failed to run migrations")
	}

	// Repositories.
	library := tv.NewRepository(db.Conn(), log.Logger)
	candidates := indexer.NewRepository(db.Conn(), log.Logger)
	torrentRepo := downloader.NewRepository(db.Conn(), log.Logger)

	// Scoring rules: built-in defaults unless a rules file is configured.
	scorer := scoring.NewDefaultScorer(log.Logger)
	if cfg.Scoring.RulesFile != "" {
		rules, err := scoring.ParseConfigFile(cfg.Scoring.RulesFile)
		if err != nil {
			log.Fatal().Err(err).Str("file", cfg.Scoring.RulesFile).Msg("failed to load scoring rules")
		}
		scorer = scoring.NewScorer(rules, log.Logger)
		log.Info().Str("file", cfg.Scoring.RulesFile).Msg("loaded scoring rules")
	}

	// Indexer backends.
	var backends []indexer.Indexer
	if cfg.Prowlarr.Enabled {
		backends = append(backends, prowlarr.New(prowlarr.Config{
			URL:    cfg.Prowlarr.BaseURL,
			APIKey: cfg.Prowlarr.APIKey,
		}, log.Logger))
	}
	if cfg.Torznab.Enabled {
		backends = append(backends, torznab.New(torznab.Config{
			URL:      cfg.Torznab.BaseURL,
			APIKey:   cfg.Torznab.APIKey,
			Indexers: cfg.Torznab.Indexers,
		}, log.Logger))
	}
	if len(backends) == 0 {
		log.Warn().Msg("no indexer backends enabled, searches will return nothing")
	}
	searchSvc := search.NewService(backends, candidates, scorer, log.Logger)

	// Download client and transfer tracking.
	qbt := qbittorrent.New(qbittorrent.Config{
		Host:     cfg.QBittorrent.Host,
		Port:     cfg.QBittorrent.Port,
		Username: cfg.QBittorrent.Username,
		Password: cfg.QBittorrent.Password,
		UseSSL:   cfg.QBittorrent.UseSSL,
	}, log.Logger)
	err = startup.WithRetry(context.Background(), "download client connection",
		startup.DefaultRetryConfig(),
		func() error { return qbt.Test(context.Background()) },
		log.Logger)
	if err != nil {
		log.Warn().Err(err).Msg("download client unreachable, transfers will fail until it is back")
	}
	downloadSvc := downloader.NewService(qbt, torrentRepo, cfg.Paths.TorrentDir, library, library, log.Logger)

	importSvc := importer.NewService(downloadSvc, library, cfg.Paths.DownloadDir, cfg.Paths.LibraryDir, log.Logger)
	acquisitionSvc := acquisition.NewService(searchSvc, downloadSvc, importSvc, library, log.Logger)

	// WebSocket hub; log entries stream to it once it runs.
	hub := websocket.NewHub()
	go hub.Run()
	logStream.SetHub(hub)

	// Background tasks.
	sched, err := scheduler.New(log.Logger)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create scheduler")
	}
	if err := tasks.RegisterAutoDownloadTask(sched, acquisitionSvc); err != nil {
		log.Fatal().Err(err).Msg("failed to register auto-download task")
	}
	if err := tasks.RegisterImportScanTask(sched, importSvc); err != nil {
		log.Fatal().Err(err).Msg("failed to register import task")
	}
	if err := tasks.RegisterCandidatePruneTask(sched, candidates, log.Logger); err != nil {
		log.Fatal().Err(err).Msg("failed to register candidate prune task")
	}
	sched.Start()

	server := api.NewServer(api.Deps{
		Acquisition: acquisitionSvc,
		Downloads:   downloadSvc,
		Search:      searchSvc,
		Library:     library,
		Scheduler:   sched,
		Hub:         hub,
		LogStream:   logStream,
	}, log.Logger)

	go func() {
		if err := server.Start(cfg.Server.Address()); err != nil {
			log.Info().Msg("server stopped")
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan
	log.Info().Msg("received shutdown signal")

	if err := sched.Stop(); err != nil {
		log.Error().Err(err).Msg("scheduler shutdown error")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("server shutdown error")
	}

	log.Info().Msg("seasonarr stopped")
}
