package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"github.com/xxxsen/common/logger"
	"github.com/xxxsen/common/logutil"
	"github.com/xxxsen/common/webapi"
	"go.uber.org/zap"

	"github.com/Dixeliare/hochiminh-chatbot/internal/ai"
	"github.com/Dixeliare/hochiminh-chatbot/internal/config"
	"github.com/Dixeliare/hochiminh-chatbot/internal/embedcache"
	"github.com/Dixeliare/hochiminh-chatbot/internal/handler"
	"github.com/Dixeliare/hochiminh-chatbot/internal/imagesearch"
	"github.com/Dixeliare/hochiminh-chatbot/internal/job"
	"github.com/Dixeliare/hochiminh-chatbot/internal/middleware"
	"github.com/Dixeliare/hochiminh-chatbot/internal/schedule"
	"github.com/Dixeliare/hochiminh-chatbot/internal/service"
	"github.com/Dixeliare/hochiminh-chatbot/internal/snapshot"
	"github.com/Dixeliare/hochiminh-chatbot/internal/vectorstore"
)

func main() {
	var configPath string

	rootCmd := &cobra.Command{
		Use:   "hcmbot",
		Short: "Ho Chi Minh thought chatbot backend",
	}

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "run the chatbot server",
		RunE: func(cmd *cobra.Command, args []string) error {
			if configPath == "" {
				return fmt.Errorf("--config is required")
			}
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}
			logger.Init(
				cfg.LogConfig.File,
				cfg.LogConfig.Level,
				int(cfg.LogConfig.FileCount),
				int(cfg.LogConfig.FileSize),
				int(cfg.LogConfig.KeepDays),
				cfg.LogConfig.Console,
			)
			logutil.GetLogger(context.Background()).Info("config loaded", zap.String("config", configPath))
			return runServer(cfg)
		},
	}

	runCmd.Flags().StringVar(&configPath, "config", "", "path to config.json")
	rootCmd.AddCommand(runCmd)

	if err := rootCmd.Execute(); err != nil {
		logutil.GetLogger(context.Background()).Fatal("startup error", zap.Error(err))
	}
}

func runServer(cfg *config.Config) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logutil.GetLogger(ctx).Info(
		"starting server",
		zap.Int("port", cfg.Port),
		zap.String("ai_provider", cfg.AI.Provider),
		zap.String("snapshot_store", cfg.Snapshot.Type),
	)

	snapshots, err := snapshot.New(cfg.Snapshot.Type, cfg.Snapshot.Data)
	if err != nil {
		return fmt.Errorf("init snapshot store: %w", err)
	}
	providerArgs := cfg.AI.Data
	if providerArgs == nil {
		providerArgs = cfg.AI
	}
	aiProvider, err := ai.NewProvider(cfg.AI.Provider, providerArgs)
	if err != nil {
		return fmt.Errorf("init ai provider: %w", err)
	}
	embedder := embedcache.WrapLruCacheToEmbedder(
		ai.NewEmbedder(aiProvider, cfg.AI.EmbedModel),
		cfg.AI.EmbedCacheSize,
		time.Duration(cfg.AI.EmbedCacheTTLHours)*time.Hour,
	)
	generator := ai.NewGenerator(aiProvider, cfg.AI.Model)

	store := vectorstore.New(embedder, snapshots)
	if err := store.Load(ctx); err != nil {
		return fmt.Errorf("load corpus: %w", err)
	}
	rag := service.NewRAGService(store, generator)
	if err := rag.RefreshKnowledgeBase(ctx, false); err != nil {
		logutil.GetLogger(ctx).Warn("initial knowledge base refresh failed", zap.Error(err))
	}

	client := &http.Client{Timeout: 10 * time.Second}
	images := imagesearch.NewService(
		imagesearch.NewGoogleProvider(cfg.Images.GoogleAPIKey, cfg.Images.GoogleSearchEngineID, client),
		imagesearch.NewPexelsProvider(cfg.Images.PexelsAPIKey, client),
	)

	deps := handler.RouterDeps{
		Chat:   handler.NewChatHandler(rag),
		Images: handler.NewImageHandler(images),
		Stats:  handler.NewStatsHandler(rag),
	}

	engine, err := webapi.NewEngine(
		"/",
		fmt.Sprintf("0.0.0.0:%d", cfg.Port),
		webapi.WithRegister(func(group *gin.RouterGroup) {
			handler.RegisterRoutes(group, deps)
		}),
		webapi.WithExtraMiddlewares(
			middleware.CORS(cfg.CORSAllowlist),
			gzip.Gzip(gzip.DefaultCompression),
		),
	)
	if err != nil {
		return fmt.Errorf("init web engine: %w", err)
	}

	if cfg.KBRefreshSpec != "" {
		scheduler := schedule.NewCronScheduler()
		if err := scheduler.AddJob(job.NewKBRefreshJob(rag), cfg.KBRefreshSpec); err != nil {
			return fmt.Errorf("schedule kb refresh: %w", err)
		}
		scheduler.Start(ctx)
		defer scheduler.Stop()
	}

	logutil.GetLogger(ctx).Info("http server listening", zap.String("addr", fmt.Sprintf("0.0.0.0:%d", cfg.Port)))
	go func() {
		if err := engine.Run(); err != nil && err != http.ErrServerClosed {
			logutil.GetLogger(ctx).Error("server error", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logutil.GetLogger(ctx).Info("server stopping...")
	return nil
}
