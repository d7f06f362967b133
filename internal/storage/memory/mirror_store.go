package memory

import (
	"context"
	"sync"

	"github.com/vladislavdragonenkov/caixa-terminal/internal/domain"
)

// mirrorStoreInMemory — in-memory реализация MirrorStore для тестов
// и запуска терминала без Redis.
type mirrorStoreInMemory struct {
	mu       sync.RWMutex
	snapshot domain.CartSnapshot
	present  bool
}

// NewMirrorStore возвращает in-memory зеркало корзины.
func NewMirrorStore() domain.MirrorStore {
	return &mirrorStoreInMemory{}
}

// Set перезаписывает единственный слот снимка.
func (s *mirrorStoreInMemory) Set(_ context.Context, snapshot domain.CartSnapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	// Копируем позиции, чтобы избежать мутаций извне.
	items := make([]domain.LineItem, len(snapshot.Itens))
	copy(items, snapshot.Itens)
	snapshot.Itens = items

	s.snapshot = snapshot
	s.present = true
	return nil
}

// Get возвращает снимок или ErrMirrorEmpty, если ключа нет.
func (s *mirrorStoreInMemory) Get(_ context.Context) (domain.CartSnapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.present {
		return domain.CartSnapshot{}, domain.ErrMirrorEmpty
	}

	snapshot := s.snapshot
	items := make([]domain.LineItem, len(snapshot.Itens))
	copy(items, snapshot.Itens)
	snapshot.Itens = items
	return snapshot, nil
}

// Delete удаляет слот; отсутствие ключа не ошибка.
func (s *mirrorStoreInMemory) Delete(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.snapshot = domain.CartSnapshot{}
	s.present = false
	return nil
}

var _ domain.MirrorStore = (*mirrorStoreInMemory)(nil)
