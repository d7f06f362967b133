package memory

import (
	"context"
	"sync"

	"github.com/vladislavdragonenkov/caixa-terminal/internal/domain"
)

// journalRepositoryInMemory — простая in-memory реализация JournalRepository.
type journalRepositoryInMemory struct {
	mu      sync.RWMutex
	entries []domain.JournalEntry
}

// NewJournalRepository возвращает in-memory журнал отправленных заказов.
func NewJournalRepository() domain.JournalRepository {
	return &journalRepositoryInMemory{}
}

// Append добавляет запись в конец журнала.
func (r *journalRepositoryInMemory) Append(_ context.Context, entry domain.JournalEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	items := make([]domain.LineItem, len(entry.Payload.Itens))
	copy(items, entry.Payload.Itens)
	entry.Payload.Itens = items

	r.entries = append(r.entries, entry)
	return nil
}

// List возвращает записи от новых к старым, ограничивая выборку limit (если > 0).
func (r *journalRepositoryInMemory) List(_ context.Context, limit int) ([]domain.JournalEntry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]domain.JournalEntry, 0, len(r.entries))
	for i := len(r.entries) - 1; i >= 0; i-- {
		result = append(result, r.entries[i])
		if limit > 0 && len(result) == limit {
			break
		}
	}
	return result, nil
}

var _ domain.JournalRepository = (*journalRepositoryInMemory)(nil)
