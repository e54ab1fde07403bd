package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"

	"github.com/dlopezkluever/wizardirector/internal/platform/logger"
)

const (
	EventAssetCloned   = "asset.cloned"
	EventAssetSynced   = "asset.synced"
	EventAssetPromoted = "asset.promoted"
	EventAssetDrifted  = "asset.drifted"
)

// AssetEvent is published so the UI tier can refresh asset panels without
// polling.
type AssetEvent struct {
	Kind           string     `json:"kind"`
	LocalAssetID   *uuid.UUID `json:"local_asset_id,omitempty"`
	LibraryAssetID *uuid.UUID `json:"library_asset_id,omitempty"`
	ProjectID      *uuid.UUID `json:"project_id,omitempty"`
	BranchID       *uuid.UUID `json:"branch_id,omitempty"`
	At             time.Time  `json:"at"`
}

type EventBus interface {
	Publish(ctx context.Context, ev AssetEvent) error
	Close() error
}

type eventBus struct {
	log     *logger.Logger
	rdb     *goredis.Client
	channel string
}

func NewEventBus(log *logger.Logger) (EventBus, error) {
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}

	addr := strings.TrimSpace(os.Getenv("REDIS_ADDR"))
	if addr == "" {
		return nil, fmt.Errorf("missing REDIS_ADDR")
	}
	ch := strings.TrimSpace(os.Getenv("REDIS_ASSET_CHANNEL"))
	if ch == "" {
		ch = "asset-events"
	}

	rdb := goredis.NewClient(&goredis.Options{
		Addr:        addr,
		DialTimeout: 5 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	return &eventBus{
		log:     log.With("service", "RedisEventBus"),
		rdb:     rdb,
		channel: ch,
	}, nil
}

func (b *eventBus) Publish(ctx context.Context, ev AssetEvent) error {
	if ev.At.IsZero() {
		ev.At = time.Now().UTC()
	}
	raw, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshal asset event: %w", err)
	}
	if err := b.rdb.Publish(ctx, b.channel, raw).Err(); err != nil {
		return fmt.Errorf("publish asset event: %w", err)
	}
	return nil
}

func (b *eventBus) Close() error {
	return b.rdb.Close()
}

// NopEventBus keeps single-node deployments working without Redis.
type NopEventBus struct{}

func (NopEventBus) Publish(ctx context.Context, ev AssetEvent) error { return nil }
func (NopEventBus) Close() error                                     { return nil }
