package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	goredis "github.com/redis/go-redis/v9"

	"github.com/scribeworks/transcript-engine/cmd/engine/align"
	"github.com/scribeworks/transcript-engine/cmd/engine/config"
	"github.com/scribeworks/transcript-engine/cmd/engine/notify"
	"github.com/scribeworks/transcript-engine/cmd/engine/service"
	"github.com/scribeworks/transcript-engine/cmd/engine/store"
)

func slogReplaceAttr(_ []string, a slog.Attr) slog.Attr {
	if a.Key == slog.SourceKey {
		source := a.Value.Any().(*slog.Source)
		source.File = filepath.Base(source.File)
	}
	return a
}

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		AddSource:   true,
		Level:       slog.LevelDebug,
		ReplaceAttr: slogReplaceAttr,
	}))
	slog.SetDefault(logger)

	pid := os.Getpid()
	if err := os.WriteFile("/tmp/engine.pid", []byte(fmt.Sprintf("%d", pid)), 0666); err != nil {
		slog.Error("failed to write pid file", slog.String("err", err.Error()))
		os.Exit(1)
	}

	cfg, err := config.FromEnv()
	if err != nil {
		slog.Error("failed to load config", slog.String("err", err.Error()))
		os.Exit(1)
	}
	cfg.SetDefaults()
	if err := cfg.IsValid(); err != nil {
		slog.Error("invalid config", slog.String("err", err.Error()))
		os.Exit(1)
	}

	st, err := store.Open(cfg.DBPath)
	if err != nil {
		slog.Error("failed to open store", slog.String("err", err.Error()))
		os.Exit(1)
	}
	defer st.Close()

	var broker notify.Broker
	if cfg.RedisAddr != "" {
		broker, err = notify.NewRedisBroker(cfg.RedisAddr, cfg.RefreshChannel)
		if err != nil {
			slog.Error("failed to create redis broker", slog.String("err", err.Error()))
			os.Exit(1)
		}
	} else {
		broker = notify.NewMemoryBroker()
	}
	defer broker.Close()

	svc := service.New(st, broker, align.Aligner{ParagraphLength: cfg.ParagraphLength}, nil)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if cfg.RedisAddr != "" {
		stop, err := startCompletionConsumer(ctx, cfg, svc)
		if err != nil {
			slog.Error("failed to start completion consumer", slog.String("err", err.Error()))
			os.Exit(1)
		}
		defer stop()
	}

	slog.Info("engine has started")

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)
	<-sig

	slog.Info("received signal, exiting")
}

// startCompletionConsumer subscribes to the recognizer completion channel and
// dispatches each message to the service. Ingestion runs off the consumer
// goroutine so a slow run never blocks the subscription.
func startCompletionConsumer(ctx context.Context, cfg config.EngineConfig, svc *service.Service) (func(), error) {
	rdb := goredis.NewClient(&goredis.Options{
		Addr: cfg.RedisAddr,
	})

	sub := rdb.Subscribe(ctx, cfg.CompletionChannel)
	if _, err := sub.Receive(ctx); err != nil {
		_ = sub.Close()
		_ = rdb.Close()
		return nil, fmt.Errorf("failed to subscribe: %w", err)
	}

	go func() {
		for m := range sub.Channel() {
			var msg service.CompletionMessage
			if err := json.Unmarshal([]byte(m.Payload), &msg); err != nil {
				slog.Error("bad completion payload", slog.String("err", err.Error()))
				continue
			}

			slog.Info("received recognizer completion", slog.String("file", msg.File))

			go func(msg service.CompletionMessage) {
				if err := svc.HandleCompletion(context.Background(), msg); err != nil {
					slog.Error("failed to handle recognizer completion",
						slog.String("file", msg.File), slog.String("err", err.Error()))
				}
			}(msg)
		}
	}()

	return func() {
		_ = sub.Close()
		_ = rdb.Close()
	}, nil
}
