package notify

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// Level — важность уведомления.
type Level string

const (
	LevelInfo    Level = "info"
	LevelSuccess Level = "success"
	LevelWarning Level = "warning"
	LevelError   Level = "error"
)

// defaultTTL — время жизни уведомления до автоскрытия.
const defaultTTL = 3 * time.Second

// Toast — одно всплывающее уведомление терминала.
type Toast struct {
	ID      string `json:"id"`
	Level   Level  `json:"tipo"`
	Message string `json:"mensagem"`
	// Focus — элемент формы, которому нужно вернуть фокус (для ошибок валидации).
	Focus     string    `json:"focus,omitempty"`
	CreatedAt time.Time `json:"criado_em"`
	expiresAt time.Time
}

// Center хранит активные уведомления и отсекает истёкшие лениво,
// при каждом чтении. Отдельной горутины очистки нет.
type Center struct {
	mu     sync.Mutex
	toasts []Toast
	ttl    time.Duration
	now    func() time.Time
}

// NewCenter создаёт центр уведомлений со стандартным TTL.
func NewCenter() *Center {
	return &Center{ttl: defaultTTL, now: time.Now}
}

// NewCenterWithClock создаёт центр с управляемыми часами для тестов.
func NewCenterWithClock(ttl time.Duration, now func() time.Time) *Center {
	if now == nil {
		now = time.Now
	}
	if ttl <= 0 {
		ttl = defaultTTL
	}
	return &Center{ttl: ttl, now: now}
}

// Push добавляет уведомление и возвращает его идентификатор.
func (c *Center) Push(level Level, message string) string {
	return c.push(level, message, "")
}

// PushFocus добавляет уведомление с указанием поля для возврата фокуса.
func (c *Center) PushFocus(level Level, message, focus string) string {
	return c.push(level, message, focus)
}

func (c *Center) push(level Level, message, focus string) string {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	toast := Toast{
		ID:        uuid.NewString(),
		Level:     level,
		Message:   message,
		Focus:     focus,
		CreatedAt: now,
		expiresAt: now.Add(c.ttl),
	}
	c.toasts = append(c.toasts, toast)
	return toast.ID
}

// Active возвращает неистёкшие уведомления в порядке появления.
func (c *Center) Active() []Toast {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	kept := c.toasts[:0]
	for _, t := range c.toasts {
		if t.expiresAt.After(now) {
			kept = append(kept, t)
		}
	}
	c.toasts = kept

	out := make([]Toast, len(c.toasts))
	copy(out, c.toasts)
	return out
}

// Dismiss убирает уведомление до истечения TTL.
func (c *Center) Dismiss(id string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for i, t := range c.toasts {
		if t.ID == id {
			c.toasts = append(c.toasts[:i], c.toasts[i+1:]...)
			return
		}
	}
}
