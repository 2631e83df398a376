package main

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
	"google.golang.org/grpc"
	"liyu1981.xyz/iot-camera-service/pkg/blob"
	"liyu1981.xyz/iot-camera-service/pkg/common"
	"liyu1981.xyz/iot-camera-service/pkg/config"
	"liyu1981.xyz/iot-camera-service/pkg/db"
	"liyu1981.xyz/iot-camera-service/pkg/events"
	iotGrpc "liyu1981.xyz/iot-camera-service/pkg/grpc"
	iotHttp "liyu1981.xyz/iot-camera-service/pkg/http"
	"liyu1981.xyz/iot-camera-service/pkg/iot"
	"liyu1981.xyz/iot-camera-service/pkg/metrics"
)

func ProvideDB(lc fx.Lifecycle, cfg *config.Config) (*db.DB, error) {
	dialector, err := db.DialectorFor(cfg.DB.Type, cfg.DB.Path, cfg.DB.DSN)
	if err != nil {
		return nil, err
	}
	instance := db.GetInstance(dialector)

	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			common.GetLogger().Info("Closing database")
			return instance.Close()
		},
	})
	return instance, nil
}

func ProvideBlob(cfg *config.Config) (blob.Uploader, error) {
	var store blob.Uploader
	switch cfg.Blob.Backend {
	case "azure":
		azure, err := blob.NewAzureStore(cfg.Blob.ConnectionString)
		if err != nil {
			return nil, err
		}
		store = azure
	default:
		store = blob.NewMemoryStore()
	}

	policy := blob.DefaultRetryPolicy()
	policy.MaxAttempts = cfg.Blob.MaxAttempts
	policy.InitialDelay = cfg.Blob.InitialDelay
	policy.MaxDelay = cfg.Blob.MaxDelay
	return blob.WithRetry(store, policy), nil
}

// ProvidePublisher fans out to every configured sink. A sink that can not be
// reached at startup is logged and skipped so the API still comes up.
func ProvidePublisher(lc fx.Lifecycle, cfg *config.Config) events.Publisher {
	logger := common.GetLoggerWith(common.LoggerNameEvents)
	var sinks events.Multi

	if cfg.Events.MQTTBroker != "" {
		p, err := events.NewMQTTPublisher(events.MQTTConfig{
			Broker:    cfg.Events.MQTTBroker,
			ClientID:  cfg.Events.MQTTClientID,
			TopicRoot: cfg.Events.MQTTTopicRoot,
		})
		if err != nil {
			logger.Error("MQTT publisher disabled", zap.Error(err))
		} else {
			sinks = append(sinks, p)
		}
	}

	if cfg.Events.AMQPURL != "" {
		p, err := events.NewAMQPPublisher(events.AMQPConfig{
			URL:      cfg.Events.AMQPURL,
			Exchange: cfg.Events.AMQPExchange,
		})
		if err != nil {
			logger.Error("AMQP publisher disabled", zap.Error(err))
		} else {
			sinks = append(sinks, p)
		}
	}

	if cfg.Events.InfluxURL != "" {
		p, err := events.NewInfluxPublisher(events.InfluxConfig{
			URL:    cfg.Events.InfluxURL,
			Token:  cfg.Events.InfluxToken,
			Org:    cfg.Events.InfluxOrg,
			Bucket: cfg.Events.InfluxBucket,
		})
		if err != nil {
			logger.Error("InfluxDB publisher disabled", zap.Error(err))
		} else {
			sinks = append(sinks, p)
		}
	}

	if len(sinks) == 0 {
		logger.Info("No event sinks configured")
		return events.Nop{}
	}

	logger.Info("Event publishing enabled", zap.Int("sinks", len(sinks)))
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			return sinks.Close()
		},
	})
	return sinks
}

// ProvideMetrics returns nil when metrics are disabled.
func ProvideMetrics(cfg *config.Config) *metrics.Prometheus {
	if !cfg.Metrics.Enabled {
		return nil
	}
	return metrics.NewPrometheus()
}

// ProvideRateLimiterStore is shared by both transports, so a limiter set over
// HTTP applies to gRPC calls for the same camera.
func ProvideRateLimiterStore(cfg *config.Config) *iot.RateLimiterStore {
	return iot.NewRateLimiterStore(rate.Limit(cfg.Limiter.DefaultRate), cfg.Limiter.DefaultBurst)
}

func ProvideIOT(
	database *db.DB,
	cfg *config.Config,
	uploader blob.Uploader,
	publisher events.Publisher,
	prom *metrics.Prometheus,
	limiters *iot.RateLimiterStore,
) *iot.IOT {
	var sink metrics.Sink = metrics.Nop{}
	if prom != nil {
		sink = prom
	}

	iotCore := &iot.IOT{
		Db:            *database,
		Clock:         common.SystemClock{},
		Blob:          uploader,
		BlobContainer: cfg.Blob.Container,
		Events:        publisher,
		Metrics:       sink,
		Limiters:      limiters,
	}
	return iotCore.WithDefaultServices()
}

func StartHTTPServer(
	lc fx.Lifecycle,
	cfg *config.Config,
	iotCore *iot.IOT,
	limiters *iot.RateLimiterStore,
	prom *metrics.Prometheus,
) {
	logger := common.GetLoggerWith(common.LoggerNameRestfulServer)

	rs := &iotHttp.RestfulServer{
		Server:           gin.New(),
		Iot:              iotCore,
		RateLimiterStore: limiters,
		Version:          cfg.Server.APIVersion,
	}
	if prom != nil {
		rs.Metrics = prom.Handler()
	}
	rs.Server.Use(gin.Recovery())
	rs.Setup()

	server := &http.Server{
		Addr:              cfg.Server.HTTPHostPort,
		Handler:           rs.Server,
		ReadHeaderTimeout: 10 * time.Second,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			listener, err := net.Listen("tcp", server.Addr)
			if err != nil {
				return err
			}
			logger.Info("Starting HTTP server",
				zap.String("addr", server.Addr),
				zap.String("api_version", cfg.Server.APIVersion),
				zap.Float64("default_rate", cfg.Limiter.DefaultRate),
				zap.Int("default_burst", cfg.Limiter.DefaultBurst),
			)
			go func() {
				if err := server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
					logger.Error("HTTP server failed to serve", zap.Error(err))
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			logger.Info("Stopping HTTP server")
			return server.Shutdown(ctx)
		},
	})
}

// StartGRPCServer does nothing unless a gRPC address is configured.
func StartGRPCServer(
	lc fx.Lifecycle,
	cfg *config.Config,
	iotCore *iot.IOT,
	limiters *iot.RateLimiterStore,
) {
	if cfg.Server.GRPCHostPort == "" {
		return
	}
	logger := common.GetLoggerWith(common.LoggerNameGrpcServer)

	iotGrpcServer := &iotGrpc.IOTServer{
		Iot:              iotCore,
		RateLimiterStore: limiters,
	}
	interceptor := iotGrpcServer.CreateRateLimitInterceptor([]string{
		iotGrpc.MethodInitializeCamera,
		iotGrpc.MethodGetCamera,
		iotGrpc.MethodListSensors,
	})
	s := grpc.NewServer(grpc.UnaryInterceptor(interceptor))
	iotGrpc.RegisterCameraServiceServer(s, iotGrpcServer)

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			listener, err := net.Listen("tcp", cfg.Server.GRPCHostPort)
			if err != nil {
				return err
			}
			logger.Info("Starting gRPC server", zap.String("addr", cfg.Server.GRPCHostPort))
			go func() {
				if err := s.Serve(listener); err != nil {
					logger.Error("gRPC server failed to serve", zap.Error(err))
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			logger.Info("Stopping gRPC server")
			s.GracefulStop()
			return nil
		},
	})
}
