package app

import (
	"context"
	"fmt"
	"log"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/clearpathfinancial/clearpath-api/internal/api/handlers"
	"github.com/clearpathfinancial/clearpath-api/internal/config"
	"github.com/clearpathfinancial/clearpath-api/internal/core"
	db "github.com/clearpathfinancial/clearpath-api/internal/core/database"
	"github.com/clearpathfinancial/clearpath-api/internal/core/llm"
	objectclient "github.com/clearpathfinancial/clearpath-api/internal/core/object-client"
	"github.com/clearpathfinancial/clearpath-api/internal/core/raster"
	"github.com/clearpathfinancial/clearpath-api/internal/services"
)

type App struct {
	DBClient db.DbClient
	Chat     *services.ChatService
	Docs     *services.DocumentService
	Server   *Server

	llmClient *llm.GeminiLLM
	logger    *zap.Logger
}

func NewApp(ctx context.Context, cfg *config.Config) (*App, error) {
	logger, err := zap.NewProduction()
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}

	// Storage backends are selected once here and injected; nothing
	// switches per call.
	var dbClient db.DbClient
	if cfg.DatabaseURL != "" {
		initCtx, cancel := context.WithTimeout(ctx, 5*time.Minute)
		dbClient, err = db.NewDatabaseClient(initCtx, cfg)
		cancel()
		if err != nil {
			return nil, err
		}
		log.Println("Database initialized and ready.")
	} else {
		dbClient = db.NewMemoryClient()
		log.Println("Using in-memory store; data will not survive a restart.")
	}

	var objClient core.ObjectClient
	switch cfg.StorageBackend {
	case "s3":
		objClient, err = objectclient.NewS3Client(ctx, cfg)
	default:
		objClient, err = objectclient.NewLocalClient(cfg.LocalStoreDir)
	}
	if err != nil {
		return nil, fmt.Errorf("init object storage: %w", err)
	}
	log.Println("Object client initialized and ready.")

	llmClient, err := llm.NewGeminiLLM(ctx, cfg.AIAPIKey, cfg.GenModel)
	if err != nil {
		return nil, fmt.Errorf("couldn't initialize the model client: %w", err)
	}

	rasterizer := raster.NewPdftoppmRasterizer(cfg.RasterCmd)

	chatSvc := services.NewChatService(dbClient, llmClient, cfg.ReplyQueueSize, logger)
	docSvc := services.NewDocumentService(dbClient, objClient, llmClient, rasterizer, cfg.BucketName, logger)

	server := NewServer(cfg,
		handlers.NewChatHandler(chatSvc),
		handlers.NewDocumentHandler(docSvc),
		handlers.NewAdminHandler(chatSvc, docSvc),
		handlers.NewAuthHandler(cfg),
	)

	return &App{
		DBClient:  dbClient,
		Chat:      chatSvc,
		Docs:      docSvc,
		Server:    server,
		llmClient: llmClient,
		logger:    logger,
	}, nil
}

// Run starts the reply worker and HTTP server and blocks until the context
// is cancelled or the server fails.
func (a *App) Run(ctx context.Context) error {
	a.Chat.Start(ctx)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return a.Server.Start()
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return a.Server.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

func (a *App) Close() {
	if a.llmClient != nil {
		_ = a.llmClient.Close()
	}
	if a.DBClient != nil {
		_ = a.DBClient.Close()
	}
	if a.logger != nil {
		_ = a.logger.Sync()
	}
}
