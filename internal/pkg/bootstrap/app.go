// internal/pkg/bootstrap/app.go
package bootstrap

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/luoliAsyns/ConsumeInfo/internal/pkg/tracing"
)

// AppInfo 包含了启动服务所需的全部特定信息。
type AppInfo struct {
	ServiceName    string
	Port           int
	JaegerEndpoint string
	// RegisterHandlers 允许服务注册自己的 HTTP 路由。
	RegisterHandlers func(mux *http.ServeMux)
	// BackgroundTasks 随服务启动的长任务（MQ 消费循环等），ctx 取消后应自行退出。
	BackgroundTasks []func(ctx context.Context) error
	// OnShutdown 在优雅关停时执行（关 MQ 连接、Redis 等），按注册顺序调用。
	OnShutdown []func()
}

// StartService 封装通用的启动和优雅关停逻辑：
// tracer -> HTTP server -> 后台任务 -> 等退出信号 -> 逆序清理。
func StartService(info AppInfo) {
	tp, err := tracing.InitTracerProvider(info.ServiceName, info.JaegerEndpoint)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize tracer provider")
	}

	mux := http.NewServeMux()
	if info.RegisterHandlers != nil {
		info.RegisterHandlers(mux)
	}
	server := &http.Server{Addr: ":" + strconv.Itoa(info.Port), Handler: mux}
	go func() {
		log.Info().Str("addr", server.Addr).Msgf("%s listening", info.ServiceName)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msgf("could not listen on %s", server.Addr)
		}
	}()

	bgCtx, bgCancel := context.WithCancel(context.Background())
	for _, task := range info.BackgroundTasks {
		t := task
		go func() {
			if err := t(bgCtx); err != nil {
				log.Error().Err(err).Msg("background task exited with error")
			}
		}()
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msgf("Shutting down service %s...", info.ServiceName)

	// 先取消后台任务，让消费循环停止取新消息
	bgCancel()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("error shutting down http server")
	}

	if err := tp.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("error shutting down tracer provider")
	}

	for _, fn := range info.OnShutdown {
		fn()
	}

	log.Info().Msgf("Service %s gracefully shut down.", info.ServiceName)
}
