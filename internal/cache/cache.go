// internal/cache/cache.go
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

// Rdb is the shared Redis client. Nil when Redis is not configured; callers
// must treat a nil client as "action logging disabled".
var Rdb *redis.Client

// InitRedis connects the shared client and verifies the connection with a
// ping. Call once at startup.
func InitRedis(ctx context.Context, addr, password string) error {
	if addr == "" {
		logrus.Info("cache: REDIS_ADDR not set, action log disabled")
		return nil
	}
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("cache: ping %s: %w", addr, err)
	}
	Rdb = client
	logrus.Infof("cache: connected to redis at %s", addr)
	return nil
}

// GameActionRecord is one entry of a game's ordered action log. The log is
// append-only; replaying it through the engine reproduces the game.
type GameActionRecord struct {
	GameID        uuid.UUID      `json:"gameId"`
	ActionIndex   int            `json:"actionIndex"`
	ActorUserID   uuid.UUID      `json:"actorUserId"` // Nil for engine-initiated events
	ActionType    string         `json:"actionType"`
	ActionPayload map[string]any `json:"actionPayload"`
	Timestamp     int64          `json:"timestamp"` // unix millis
}

func actionLogKey(gameID uuid.UUID) string {
	return "vinto:actions:" + gameID.String()
}

// PublishGameAction appends one record to the game's action log and announces
// it on the game's pub/sub channel for live followers.
func PublishGameAction(ctx context.Context, rec GameActionRecord) error {
	if Rdb == nil {
		return nil
	}
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("cache: marshal action %d: %w", rec.ActionIndex, err)
	}
	key := actionLogKey(rec.GameID)
	if err := Rdb.RPush(ctx, key, data).Err(); err != nil {
		return fmt.Errorf("cache: rpush %s: %w", key, err)
	}
	if err := Rdb.Publish(ctx, key, data).Err(); err != nil {
		return fmt.Errorf("cache: publish %s: %w", key, err)
	}
	return nil
}

// FetchGameActions returns a game's full action log in order.
func FetchGameActions(ctx context.Context, gameID uuid.UUID) ([]GameActionRecord, error) {
	if Rdb == nil {
		return nil, nil
	}
	raw, err := Rdb.LRange(ctx, actionLogKey(gameID), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("cache: lrange: %w", err)
	}
	records := make([]GameActionRecord, 0, len(raw))
	for i, item := range raw {
		var rec GameActionRecord
		if err := json.Unmarshal([]byte(item), &rec); err != nil {
			logrus.Warnf("cache: skipping corrupt action record %d for game %s: %v", i, gameID, err)
			continue
		}
		records = append(records, rec)
	}
	return records, nil
}

// ExpireGameActions schedules a finished game's log for deletion after the
// given number of seconds.
func ExpireGameActions(ctx context.Context, gameID uuid.UUID, seconds int) error {
	if Rdb == nil {
		return nil
	}
	return Rdb.Expire(ctx, actionLogKey(gameID), time.Duration(seconds)*time.Second).Err()
}
