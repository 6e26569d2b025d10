package caching

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"stocklink/internal/models"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// CacheService fronts stock reads. The ledger is the source of truth;
// cache errors never fail an operation, they are logged and the caller
// falls through to the database.
type CacheService interface {
	GetStock(ctx context.Context, ownerID, locationID uuid.UUID, sku string) (*models.StockRecord, error)
	SetStock(ctx context.Context, record *models.StockRecord, ttl time.Duration) error
	DeleteStock(ctx context.Context, ownerID, locationID uuid.UUID, sku string) error
	InvalidateOwner(ctx context.Context, ownerID uuid.UUID) error
	Ping(ctx context.Context) error
}

type redisCacheService struct {
	client *redis.Client
}

func NewRedisCacheService(addr, password string, db int) CacheService {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	if pingErr := client.Ping(context.Background()).Err(); pingErr != nil {
		log.Printf("WARN: Redis ping failed on initialization: %v (address: %s)", pingErr, addr)
	}

	return &redisCacheService{client: client}
}

func stockKey(ownerID, locationID uuid.UUID, sku string) string {
	return fmt.Sprintf("stock:%s:%s:%s", ownerID, locationID, sku)
}

func (s *redisCacheService) GetStock(ctx context.Context, ownerID, locationID uuid.UUID, sku string) (*models.StockRecord, error) {
	data, err := s.client.Get(ctx, stockKey(ownerID, locationID, sku)).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil // cache miss
		}
		return nil, err
	}

	var record models.StockRecord
	if err := json.Unmarshal(data, &record); err != nil {
		return nil, fmt.Errorf("failed to unmarshal cached stock record: %v", err)
	}
	return &record, nil
}

func (s *redisCacheService) SetStock(ctx context.Context, record *models.StockRecord, ttl time.Duration) error {
	data, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("failed to marshal stock record: %v", err)
	}
	return s.client.Set(ctx, stockKey(record.OwnerID, record.LocationID, record.SKU), data, ttl).Err()
}

func (s *redisCacheService) DeleteStock(ctx context.Context, ownerID, locationID uuid.UUID, sku string) error {
	return s.client.Del(ctx, stockKey(ownerID, locationID, sku)).Err()
}

func (s *redisCacheService) InvalidateOwner(ctx context.Context, ownerID uuid.UUID) error {
	pattern := fmt.Sprintf("stock:%s:*", ownerID)
	iter := s.client.Scan(ctx, 0, pattern, 100).Iterator()
	for iter.Next(ctx) {
		if err := s.client.Del(ctx, iter.Val()).Err(); err != nil {
			log.Printf("Failed to delete cache key %s: %v", iter.Val(), err)
		}
	}
	return iter.Err()
}

func (s *redisCacheService) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}
