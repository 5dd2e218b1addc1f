// cmd/consume-info-service/main.go
package main

import (
	"context"
	"os"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"

	"github.com/luoliAsyns/ConsumeInfo/internal/pkg/bootstrap"
	"github.com/luoliAsyns/ConsumeInfo/internal/pkg/httpclient"
	"github.com/luoliAsyns/ConsumeInfo/internal/pkg/lock"
	"github.com/luoliAsyns/ConsumeInfo/internal/pkg/logger"
	"github.com/luoliAsyns/ConsumeInfo/internal/pkg/mq"
	"github.com/luoliAsyns/ConsumeInfo/internal/service/consumeinfo/application"
	"github.com/luoliAsyns/ConsumeInfo/internal/service/consumeinfo/domain"
	"github.com/luoliAsyns/ConsumeInfo/internal/service/consumeinfo/infrastructure"
	"github.com/luoliAsyns/ConsumeInfo/internal/service/consumeinfo/infrastructure/adapter"
	"github.com/luoliAsyns/ConsumeInfo/internal/service/consumeinfo/interfaces"
)

// main 是应用的"组装根"：创建并组装所有依赖项，然后启动服务。
// 配置在这里一次性解析，之后不再读任何全局状态。
func main() {
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "configs/config.yaml"
	}
	cfg, err := bootstrap.LoadConfig(configPath)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}

	logger.Init(cfg.App.ServiceName, cfg.App.ServiceId, cfg.Log.Level)

	// 状态迁移表是领域配置数据，随部署下发
	rawTable, err := os.ReadFile(cfg.Consume.TransitionFile)
	if err != nil {
		log.Fatal().Err(err).Str("file", cfg.Consume.TransitionFile).Msg("failed to read transition table")
	}
	transitions, err := domain.ParseTransitionTable(rawTable)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to parse transition table")
	}

	db, err := gorm.Open(mysql.Open(cfg.Mysql.DSN), &gorm.Config{})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect mysql")
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})

	conn, err := mq.Dial(cfg.Rabbit.URL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect rabbitmq")
	}
	if _, err := conn.DeclareDurableQueue(mq.QueueConsumeInfoInserted); err != nil {
		log.Fatal().Err(err).Msg("failed to declare inserted queue")
	}

	var locker lock.KeyLocker = lock.NewKeyedMutex()
	var zkLocker *lock.ZkLocker
	if cfg.Zookeeper.Enabled {
		zkLocker, err = lock.NewZkLocker(cfg.Zookeeper.Servers, 5*time.Second)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to connect zookeeper")
		}
		locker = zkLocker
	}

	tracer := otel.Tracer(cfg.App.ServiceName)

	partitions := domain.NewPartitionRegistry(cfg.Consume.GoodsTypes)
	repo := infrastructure.NewGormConsumeInfoRepository(db, partitions)
	cache := infrastructure.NewRedisConsumeInfoCache(rdb)
	publisher := infrastructure.NewInsertedEventPublisher(conn.Channel, mq.QueueConsumeInfoInserted)
	store := infrastructure.NewCacheAsideStore(repo, cache, publisher,
		time.Duration(cfg.Consume.CacheTTLSeconds)*time.Second)
	appSvc := application.NewConsumeInfoApplicationService(store, transitions, locker, tracer)

	httpClient := httpclient.NewClient(tracer)
	coupons := adapter.NewCouponHTTPAdapter(httpClient, cfg.Downstream.CouponBaseURL)
	orders := adapter.NewExternalOrderHTTPAdapter(httpClient, cfg.Downstream.ExternalOrderBaseURL)
	notifier := adapter.NewNotifyHTTPAdapter(httpClient, cfg.Downstream.NotifyURL, cfg.Downstream.NotifyUsers)
	compensation := application.NewCompensationWorkflow(coupons, orders, notifier,
		cfg.App.ServiceName, cfg.App.ServiceId, tracer)

	consumer := infrastructure.NewConsumeInfoConsumer(conn.Channel, appSvc, compensation, notifier,
		infrastructure.ConsumerConfig{
			QueuePrefix:   cfg.Rabbit.QueuePrefix,
			ServiceName:   cfg.App.ServiceName,
			ServiceId:     cfg.App.ServiceId,
			PrefetchCount: cfg.Rabbit.PrefetchCount,
		}, tracer)

	handler := interfaces.NewConsumeInfoHandler(appSvc)

	bootstrap.StartService(bootstrap.AppInfo{
		ServiceName:      cfg.App.ServiceName,
		Port:             cfg.HTTP.Port,
		JaegerEndpoint:   cfg.Jaeger.Endpoint,
		RegisterHandlers: handler.RegisterRoutes,
		BackgroundTasks: []func(ctx context.Context) error{
			consumer.Start,
		},
		OnShutdown: []func(){
			conn.Close,
			func() { rdb.Close() },
			func() {
				if zkLocker != nil {
					zkLocker.Close()
				}
			},
		},
	})
}
