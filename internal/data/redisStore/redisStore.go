package redisStore

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/niexiaoning/deep-searcher/internal/config"
	"github.com/niexiaoning/deep-searcher/pkg/logger_i"
	"github.com/redis/go-redis/v9"
)

type Store struct {
	client *redis.Client
	Type   int
	logger *logger_i.Logger
}

type Options struct {
	Addr     string
	Password string
	DB       int
}

// New connects and pings. The client is closed once ctx is cancelled.
func New(ctx context.Context, opts Options) (*Store, error) {
	if opts.Addr == "" {
		opts.Addr = config.RedisAddr
	}
	logger := logger_i.NewLogger("Redis Store " + strconv.Itoa(opts.DB))
	newClient := redis.NewClient(&redis.Options{
		Addr:                  opts.Addr,
		Password:              opts.Password,
		DB:                    opts.DB,
		ContextTimeoutEnabled: true,
		ReadTimeout:           30 * time.Second,
		WriteTimeout:          30 * time.Second,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := newClient.Ping(pingCtx).Err(); err != nil {
		_ = newClient.Close()
		logger.Error("Redis is offline", "addr", opts.Addr, "error", err)
		return nil, fmt.Errorf("redis at %s: %w", opts.Addr, err)
	}
	logger.Info("Redis store init successfully", "addr", opts.Addr)

	s := &Store{client: newClient, Type: opts.DB, logger: logger}
	go s.closeOnDone(ctx)
	return s, nil
}

// NewFromClient wraps an existing client, e.g. one pointed at miniredis.
func NewFromClient(client *redis.Client) *Store {
	return &Store{client: client, logger: logger_i.NewLogger("Redis Store")}
}

func (s *Store) closeOnDone(ctx context.Context) {
	<-ctx.Done()
	s.logger.Info("Closing Redis Store")
	if err := s.client.Close(); err != nil {
		s.logger.Error("Error closing redis client", "error", err)
		return
	}
	s.logger.Info("Redis Store Closed successfully")
}
