// Command placerec 启动景点推荐 HTTP 服务。
//
// 启动顺序：加载配置 → 初始化日志 → 并发读取 CSV → 构建快照 → 发布到存储（可选）→ 监听 HTTP。
// 收到 SIGINT/SIGTERM 后优雅退出。
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/rushteam/placerec/api"
	"github.com/rushteam/placerec/config"
	_ "github.com/rushteam/placerec/config/builders"
	"github.com/rushteam/placerec/core"
	"github.com/rushteam/placerec/dataset"
	"github.com/rushteam/placerec/engine"
	"github.com/rushteam/placerec/logging"
	"github.com/rushteam/placerec/pipeline"
	"github.com/rushteam/placerec/service"
	"github.com/rushteam/placerec/store"
)

func main() {
	if err := run(); err != nil {
		logging.Fatal().Err(err).Msg("placerec exited")
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logCfg := logging.DefaultConfig()
	logCfg.Level = cfg.Logging.Level
	logCfg.Format = cfg.Logging.Format
	logCfg.Caller = cfg.Logging.Caller
	logging.Init(logCfg)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	ds, err := dataset.LoadAll(ctx, dataset.Paths{
		PlacesPath:  cfg.Data.PlacesPath,
		RatingsPath: cfg.Data.RatingsPath,
		UsersPath:   cfg.Data.UsersPath,
	})
	if err != nil {
		return err
	}
	logging.Info().
		Int("places", len(ds.Places)).
		Int("ratings", len(ds.Ratings)).
		Int("users", len(ds.Users)).
		Int("skipped_places", ds.PlaceStats.Skipped).
		Int("skipped_ratings", ds.RatingStats.Skipped).
		Msg("dataset loaded")

	opts := engine.Options{
		TopK:               cfg.Recommend.TopK,
		Clusters:           cfg.Recommend.Clusters,
		Seed:               cfg.Recommend.Seed,
		NeighborsPublished: cfg.Recommend.NeighborsPublished,
		RecallSource:       cfg.Recommend.RecallSource,
		Blacklist:          cfg.Recommend.Blacklist,
		ModelName:          cfg.Model.Name,
		ModelVersion:       cfg.Model.Version,
		BatchSize:          cfg.Model.BatchSize,
		KeyPrefix:          cfg.Store.Prefix,
	}

	if cfg.Store.Type != "" {
		s, err := store.New(ctx, store.Config{
			Type:     cfg.Store.Type,
			Addr:     cfg.Store.Addr,
			Password: cfg.Store.Password,
			DB:       cfg.Store.DB,
		})
		if err != nil {
			return err
		}
		opts.Store = s
	}

	if cfg.Model.Type != "" {
		m, err := newModel(ctx, cfg.Model)
		if err != nil {
			return err
		}
		opts.Model = m
	}

	if cfg.Recommend.PipelinePath != "" {
		p, err := pipeline.Load(cfg.Recommend.PipelinePath)
		if err != nil {
			return err
		}
		opts.Pipeline = p
	}

	eng, err := engine.New(ds, opts)
	if err != nil {
		return err
	}
	defer func() {
		if err := eng.Close(context.Background()); err != nil {
			logging.Warn().Err(err).Msg("close engine")
		}
	}()

	if err := eng.Publish(ctx); err != nil {
		return err
	}

	srv := &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      api.NewRouter(api.NewHandler(eng), api.RouterConfigFrom(cfg.Security)),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		logging.Info().Str("addr", srv.Addr).Bool("model", eng.ModelEnabled()).Msg("http server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logging.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	logging.Info().Msg("server stopped")
	return nil
}

// newModel 创建评分模型服务并探测一次连通性；探测失败只告警，请求时由熔断器兜底。
func newModel(ctx context.Context, mc config.ModelConfig) (core.MLService, error) {
	m, err := service.NewMLService(&service.ServiceConfig{
		Type:         service.ServiceType(mc.Type),
		Endpoint:     mc.Endpoint,
		ModelName:    mc.Name,
		ModelVersion: mc.Version,
		UserInput:    mc.UserInput,
		PlaceInput:   mc.PlaceInput,
		Timeout:      int(mc.Timeout.Seconds()),
	})
	if err != nil {
		return nil, err
	}
	if err := service.TestConnection(ctx, m); err != nil {
		logging.Warn().Err(err).Str("endpoint", mc.Endpoint).Msg("model service not reachable")
	}
	return m, nil
}
