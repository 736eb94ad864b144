// Package corpus coordinates corpus loading with index building. The Manager
// owns the store snapshot and both search engines; a (re)load builds
// everything from a fresh snapshot and publishes it atomically, so queries
// running against the previous snapshot are never disturbed.
package corpus

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/cityu-campus/tasks-api/internal/search"
	"github.com/cityu-campus/tasks-api/internal/search/index"
	"github.com/cityu-campus/tasks-api/internal/store"
	"github.com/cityu-campus/tasks-api/pkg/metrics"
)

// Manager wires the loader, the store, and the search engines together.
type Manager struct {
	loader  *store.Loader
	store   *store.Store
	tasks   *search.Engine
	kb      *search.Engine
	metrics *metrics.Metrics
	logger  *slog.Logger

	mu       sync.Mutex // serialises reloads, not queries
	onReload []func(context.Context)
	loadedAt time.Time
}

// NewManager creates a Manager with empty store and indexes. The metrics
// argument may be nil.
func NewManager(loader *store.Loader, builder index.Builder, m *metrics.Metrics) *Manager {
	return &Manager{
		loader:  loader,
		store:   store.New(),
		tasks:   search.NewEngine(builder),
		kb:      search.NewEngine(builder),
		metrics: m,
		logger:  slog.Default().With("component", "corpus-manager"),
	}
}

// Store returns the corpus store.
func (m *Manager) Store() *store.Store {
	return m.store
}

// TaskEngine returns the engine ranking task records.
func (m *Manager) TaskEngine() *search.Engine {
	return m.tasks
}

// KnowledgeEngine returns the engine ranking knowledge-base snippets.
func (m *Manager) KnowledgeEngine() *search.Engine {
	return m.kb
}

// LoadedAt returns the time of the last successful load.
func (m *Manager) LoadedAt() time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.loadedAt
}

// OnReload registers a hook run after every successful reload (e.g. query
// cache invalidation).
func (m *Manager) OnReload(fn func(context.Context)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.onReload = append(m.onReload, fn)
}

// Load reads the corpus, publishes the store snapshot, and rebuilds both
// indexes. trigger labels the operation in metrics ("startup" or "reload").
func (m *Manager) Load(ctx context.Context, trigger string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	snap, err := m.loader.Load(ctx)
	if err != nil {
		if m.metrics != nil && trigger == "reload" {
			m.metrics.CorpusReloadsTotal.WithLabelValues("error").Inc()
		}
		return fmt.Errorf("loading corpus: %w", err)
	}

	m.store.Publish(snap)
	m.tasks.Build(taskDocuments(snap.Tasks))
	m.kb.Build(knowledgeDocuments(snap.Knowledge))
	m.loadedAt = time.Now().UTC()

	if m.metrics != nil {
		m.metrics.IndexBuildsTotal.WithLabelValues(trigger).Inc()
		m.metrics.IndexDocuments.Set(float64(m.tasks.Index().Size()))
		m.metrics.IndexVocabulary.Set(float64(m.tasks.Index().VocabularySize()))
		if trigger == "reload" {
			m.metrics.CorpusReloadsTotal.WithLabelValues("ok").Inc()
		}
	}
	return nil
}

// Reload is Load followed by the registered hooks.
func (m *Manager) Reload(ctx context.Context) error {
	if err := m.Load(ctx, "reload"); err != nil {
		return err
	}
	m.mu.Lock()
	hooks := make([]func(context.Context), len(m.onReload))
	copy(hooks, m.onReload)
	m.mu.Unlock()
	for _, fn := range hooks {
		fn(ctx)
	}
	m.logger.Info("corpus reloaded",
		"tasks", m.tasks.Index().Size(),
		"knowledge", m.kb.Index().Size(),
	)
	return nil
}

func taskDocuments(tasks []store.Task) []index.Document {
	docs := make([]index.Document, 0, len(tasks))
	for _, t := range tasks {
		docs = append(docs, index.Document{
			ID:          t.TaskID,
			Title:       t.Title,
			Description: t.Description,
			Lat:         t.LocationLat,
			Lng:         t.LocationLng,
		})
	}
	return docs
}

func knowledgeDocuments(records []store.Knowledge) []index.Document {
	docs := make([]index.Document, 0, len(records))
	for _, rec := range records {
		title := rec.Source
		if title == "" {
			title = rec.KnowledgeType
		}
		docs = append(docs, index.Document{
			ID:          rec.KBID,
			Title:       title,
			Description: rec.Content,
		})
	}
	return docs
}
