package services

import (
	"chiller-selector/internal/models"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"github.com/redis/go-redis/v9"
	"sync"
	"time"
)

const (
	DefaultHistorySize = 5
	historyKey         = "chiller:search_history"
	historyTimeLayout  = "2006-01-02 15:04:05"
)

// HistoryStore persists the recent search list as a whole.
type HistoryStore interface {
	Load(ctx context.Context) ([]models.SearchHistoryEntry, error)
	Save(ctx context.Context, entries []models.SearchHistoryEntry) error
}

// RedisHistoryStore keeps the list as one JSON value so every server
// instance shares it.
type RedisHistoryStore struct {
	client *redis.Client
	key    string
}

func NewRedisHistoryStore(url string) (*RedisHistoryStore, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}
	return &RedisHistoryStore{client: client, key: historyKey}, nil
}

func (r *RedisHistoryStore) Load(ctx context.Context) ([]models.SearchHistoryEntry, error) {
	val, err := r.client.Get(ctx, r.key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("redis get history: %w", err)
	}

	var entries []models.SearchHistoryEntry
	if err := json.Unmarshal(val, &entries); err != nil {
		return nil, fmt.Errorf("decode history: %w", err)
	}
	return entries, nil
}

func (r *RedisHistoryStore) Save(ctx context.Context, entries []models.SearchHistoryEntry) error {
	b, err := json.Marshal(entries)
	if err != nil {
		return fmt.Errorf("encode history: %w", err)
	}
	if err := r.client.Set(ctx, r.key, b, 0).Err(); err != nil {
		return fmt.Errorf("redis set history: %w", err)
	}
	return nil
}

func (r *RedisHistoryStore) Close() error {
	return r.client.Close()
}

// MemoryHistoryStore is the single-process fallback when no redis is configured.
type MemoryHistoryStore struct {
	mu      sync.Mutex
	entries []models.SearchHistoryEntry
}

func NewMemoryHistoryStore() *MemoryHistoryStore {
	return &MemoryHistoryStore{}
}

func (m *MemoryHistoryStore) Load(_ context.Context) ([]models.SearchHistoryEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]models.SearchHistoryEntry(nil), m.entries...), nil
}

func (m *MemoryHistoryStore) Save(_ context.Context, entries []models.SearchHistoryEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = append([]models.SearchHistoryEntry(nil), entries...)
	return nil
}

// HistoryService remembers the most recent distinct searches, newest first.
type HistoryService struct {
	store HistoryStore
	limit int
	now   func() time.Time
}

func NewHistoryService(store HistoryStore, limit int) *HistoryService {
	if limit <= 0 {
		limit = DefaultHistorySize
	}
	return &HistoryService{store: store, limit: limit, now: time.Now}
}

// Record puts a search at the head of the history, dropping an earlier
// identical search and anything past the limit.
func (h *HistoryService) Record(ctx context.Context, req models.SearchRequest) ([]models.SearchHistoryEntry, error) {
	entries, err := h.store.Load(ctx)
	if err != nil {
		return nil, err
	}

	entry := models.SearchHistoryEntry{
		CapacityTons: req.CapacityTons,
		AmbientF:     req.AmbientF,
		EwtC:         req.EwtC,
		LwtC:         req.LwtC,
		Timestamp:    h.now().Format(historyTimeLayout),
	}
	entries = pushHistory(entries, entry, h.limit)

	if err := h.store.Save(ctx, entries); err != nil {
		return nil, err
	}
	return entries, nil
}

func (h *HistoryService) List(ctx context.Context) ([]models.SearchHistoryEntry, error) {
	entries, err := h.store.Load(ctx)
	if err != nil {
		return nil, err
	}
	if entries == nil {
		entries = []models.SearchHistoryEntry{}
	}
	return entries, nil
}

func pushHistory(entries []models.SearchHistoryEntry, entry models.SearchHistoryEntry, limit int) []models.SearchHistoryEntry {
	out := make([]models.SearchHistoryEntry, 0, limit)
	out = append(out, entry)
	for _, e := range entries {
		if len(out) == limit {
			break
		}
		if !e.SameSearch(entry) {
			out = append(out, e)
		}
	}
	return out
}
