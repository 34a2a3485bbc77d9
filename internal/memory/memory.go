// Package memory keeps per-role logs of past situations and the lessons
// learned from them, queried by embedding similarity during deliberation.
package memory

import (
	"context"
	"fmt"
	"math"
	"sort"
	"sync"

	"github.com/MmaoM0225/TradingAgents-M/internal/llm"
)

// Role identities with their own memory partition. Stores are never shared
// across roles.
const (
	RoleBull        = "bull"
	RoleBear        = "bear"
	RoleTrader      = "trader"
	RoleInvestJudge = "invest_judge"
	RoleRiskJudge   = "risk_judge"
)

// Record is one (embedding, situation, outcome) triple. Records are append
// only and never updated in place.
type Record struct {
	Embedding      []float64
	Situation      string
	Recommendation string
}

// Memory is an append-only similarity-searchable log for one role. Add is
// safe for concurrent use; Query may run concurrently with Add and need not
// observe a record added after the query snapshot was taken.
type Memory struct {
	role     string
	embedder llm.Embedder
	store    *Store

	mu      sync.RWMutex
	records []Record
}

// New creates an in-process memory with no durable backing.
func New(role string, embedder llm.Embedder) *Memory {
	return &Memory{role: role, embedder: embedder}
}

// Open creates a memory backed by the SQLite file at dbPath, loading any
// records previously saved for this role in insertion order.
func Open(dbPath, role string, embedder llm.Embedder) (*Memory, error) {
	store, err := OpenStore(dbPath)
	if err != nil {
		return nil, err
	}
	records, err := store.LoadRole(role)
	if err != nil {
		store.Close()
		return nil, fmt.Errorf("load memories for %s: %w", role, err)
	}
	return &Memory{role: role, embedder: embedder, store: store, records: records}, nil
}

func (m *Memory) Role() string { return m.role }

func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.records)
}

// AddSituations embeds each situation and appends (situation, recommendation)
// pairs to the log, persisting them when a store is attached.
func (m *Memory) AddSituations(ctx context.Context, pairs [][2]string) error {
	for _, pair := range pairs {
		situation, recommendation := pair[0], pair[1]
		embedding, err := m.embedder.Embed(ctx, situation)
		if err != nil {
			return fmt.Errorf("embed situation: %w", err)
		}
		rec := Record{Embedding: embedding, Situation: situation, Recommendation: recommendation}

		m.mu.Lock()
		m.records = append(m.records, rec)
		m.mu.Unlock()

		if m.store != nil {
			if err := m.store.Append(m.role, rec); err != nil {
				return fmt.Errorf("persist memory for %s: %w", m.role, err)
			}
		}
	}
	return nil
}

// Query returns up to k records whose stored situations are most similar to
// the query situation. Ties are broken by insertion order, oldest first. An
// empty store yields an empty slice, not an error.
func (m *Memory) Query(ctx context.Context, situation string, k int) ([]Record, error) {
	m.mu.RLock()
	snapshot := make([]Record, len(m.records))
	copy(snapshot, m.records)
	m.mu.RUnlock()

	if len(snapshot) == 0 || k <= 0 {
		return []Record{}, nil
	}

	queryVec, err := m.embedder.Embed(ctx, situation)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}

	type scored struct {
		rec Record
		sim float64
	}
	ranked := make([]scored, 0, len(snapshot))
	for _, rec := range snapshot {
		ranked = append(ranked, scored{rec: rec, sim: cosineSimilarity(queryVec, rec.Embedding)})
	}
	// Stable sort keeps insertion order among equal similarities.
	sort.SliceStable(ranked, func(i, j int) bool { return ranked[i].sim > ranked[j].sim })

	if k > len(ranked) {
		k = len(ranked)
	}
	out := make([]Record, 0, k)
	for _, s := range ranked[:k] {
		out = append(out, s.rec)
	}
	return out, nil
}

// Close releases the durable store, if any.
func (m *Memory) Close() error {
	if m.store == nil {
		return nil
	}
	return m.store.Close()
}

func cosineSimilarity(a, b []float64) float64 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	var dot, normA, normB float64
	for i := 0; i < n; i++ {
		dot += a[i] * b[i]
		normA += a[i] * a[i]
		normB += b[i] * b[i]
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
