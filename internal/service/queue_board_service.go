package service

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

const (
	// Redis key prefix for queue board change markers
	boardKeyPrefix = "queue:board:"

	// Board markers outlive a clinic day; pollers that come back later
	// re-read from the database anyway.
	boardKeyTTL = 24 * time.Hour

	boardPublishTimeout = 5 * time.Second
)

// QueueBoardService publishes a change marker per queue so board
// pollers can detect mutations without querying Postgres. Strictly
// best-effort: the database commit is the source of truth and a Redis
// failure never fails the mutation.
type QueueBoardService struct {
	redisClient *redis.Client
	log         *logrus.Logger
}

func NewQueueBoardService(redisClient *redis.Client, log *logrus.Logger) *QueueBoardService {
	return &QueueBoardService{
		redisClient: redisClient,
		log:         log,
	}
}

// Publish records the queue's latest updated_at under its board key.
// Detached from the request context so a cancelled request cannot drop
// the marker after the DB commit already happened.
func (s *QueueBoardService) Publish(queueID int64, updatedAt time.Time) {
	ctx, cancel := context.WithTimeout(context.Background(), boardPublishTimeout)
	defer cancel()

	key := fmt.Sprintf("%s%d", boardKeyPrefix, queueID)
	if err := s.redisClient.Set(ctx, key, updatedAt.Format(time.RFC3339Nano), boardKeyTTL).Err(); err != nil {
		s.log.Warnf("Failed to publish board marker for queue %d (non-fatal): %+v", queueID, err)
	}
}

// LastChange returns the published marker for a queue, or zero time
// when none exists.
func (s *QueueBoardService) LastChange(ctx context.Context, queueID int64) (time.Time, error) {
	key := fmt.Sprintf("%s%d", boardKeyPrefix, queueID)
	raw, err := s.redisClient.Get(ctx, key).Result()
	if err != nil {
		if err == redis.Nil {
			return time.Time{}, nil
		}
		return time.Time{}, err
	}
	return time.Parse(time.RFC3339Nano, raw)
}
