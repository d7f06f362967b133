package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/vladislavdragonenkov/caixa-terminal/internal/domain"
)

const opTimeout = 5 * time.Second

type journalRepository struct {
	db *sql.DB
}

// NewJournalRepository создаёт PostgreSQL-реализацию JournalRepository.
func NewJournalRepository(store *Store) domain.JournalRepository {
	return &journalRepository{db: store.DB()}
}

// Append сохраняет запись журнала. Payload хранится как JSONB
// в wire-формате заказа, чтобы сверка читала то же, что ушло на сервер.
func (r *journalRepository) Append(ctx context.Context, entry domain.JournalEntry) error {
	execCtx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	payload, err := json.Marshal(entry.Payload)
	if err != nil {
		return fmt.Errorf("marshal journal payload: %w", err)
	}

	if _, err := r.db.ExecContext(execCtx, `
		INSERT INTO pedido_journal (id, payload, qr_code, created_at)
		VALUES ($1, $2, $3, $4)
	`, entry.ID, payload, entry.QRCode, entry.CreatedAt); err != nil {
		return fmt.Errorf("insert journal entry: %w", err)
	}

	return nil
}

// List возвращает записи от новых к старым, не более limit (если > 0).
func (r *journalRepository) List(ctx context.Context, limit int) ([]domain.JournalEntry, error) {
	queryCtx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	query := `
		SELECT id, payload, qr_code, created_at
		FROM pedido_journal
		ORDER BY created_at DESC, id DESC
	`

	var (
		rows *sql.Rows
		err  error
	)
	if limit > 0 {
		rows, err = r.db.QueryContext(queryCtx, query+" LIMIT $1", limit)
	} else {
		rows, err = r.db.QueryContext(queryCtx, query)
	}
	if err != nil {
		return nil, fmt.Errorf("select journal entries: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var entries []domain.JournalEntry
	for rows.Next() {
		var (
			entry   domain.JournalEntry
			payload []byte
		)
		if err := rows.Scan(&entry.ID, &payload, &entry.QRCode, &entry.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan journal entry: %w", err)
		}
		if err := json.Unmarshal(payload, &entry.Payload); err != nil {
			return nil, fmt.Errorf("unmarshal journal payload: %w", err)
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate journal entries: %w", err)
	}

	return entries, nil
}

var _ domain.JournalRepository = (*journalRepository)(nil)
