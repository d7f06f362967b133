package redisstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/vladislavdragonenkov/caixa-terminal/internal/domain"
)

// MirrorStore публикует снимок корзины в Redis, чтобы панель покупателя
// могла читать его из другого процесса. Хранит единственный ключ
// domain.MirrorKey; записи last-write-wins, TTL нет — ключ живёт до
// явного удаления при опустошении корзины или успешной отправке.
type MirrorStore struct {
	rdb *redis.Client
}

// NewMirrorStore создаёт Redis-реализацию MirrorStore.
func NewMirrorStore(rdb *redis.Client) *MirrorStore {
	return &MirrorStore{rdb: rdb}
}

// Set сериализует снимок и перезаписывает ключ.
func (s *MirrorStore) Set(ctx context.Context, snapshot domain.CartSnapshot) error {
	data, err := json.Marshal(snapshot)
	if err != nil {
		return fmt.Errorf("marshal cart snapshot: %w", err)
	}
	if err := s.rdb.Set(ctx, domain.MirrorKey, data, 0).Err(); err != nil {
		return fmt.Errorf("set mirror key: %w", err)
	}
	return nil
}

// Get читает и десериализует снимок; отсутствие ключа — ErrMirrorEmpty.
func (s *MirrorStore) Get(ctx context.Context) (domain.CartSnapshot, error) {
	data, err := s.rdb.Get(ctx, domain.MirrorKey).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return domain.CartSnapshot{}, domain.ErrMirrorEmpty
		}
		return domain.CartSnapshot{}, fmt.Errorf("get mirror key: %w", err)
	}

	var snapshot domain.CartSnapshot
	if err := json.Unmarshal(data, &snapshot); err != nil {
		return domain.CartSnapshot{}, fmt.Errorf("unmarshal cart snapshot: %w", err)
	}
	return snapshot, nil
}

// Delete удаляет ключ; DEL отсутствующего ключа в Redis не ошибка.
func (s *MirrorStore) Delete(ctx context.Context) error {
	if err := s.rdb.Del(ctx, domain.MirrorKey).Err(); err != nil {
		return fmt.Errorf("delete mirror key: %w", err)
	}
	return nil
}

// Ping проверяет доступность Redis (для health check).
func (s *MirrorStore) Ping(ctx context.Context) error {
	return s.rdb.Ping(ctx).Err()
}

var _ domain.MirrorStore = (*MirrorStore)(nil)
