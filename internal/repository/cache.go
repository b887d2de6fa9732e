package repository

import (
	"context"
	"time"
)

// CacheRepository — кеш ответов советника. Провал кеша никогда не считается
// ошибкой запроса: сервисы просто пересчитывают ответ.
type CacheRepository interface {
	Get(ctx context.Context, key string) (string, bool)
	Set(ctx context.Context, key, value string, ttl time.Duration) error
}
