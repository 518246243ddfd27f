// Package assign 为每个信封分配一张稳定的塔罗牌，并在整副牌用完之前避免重复。
package assign

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"sort"
	"sync"

	"vaultEnvelopes/internal/envelope"
	"vaultEnvelopes/internal/kv"
)

// StorageKey 分配表在 KV 中的键。
const StorageKey = "vault-envelopes-tarot-assignments"

var (
	ErrEmptyCatalog = errors.New("tarot catalog is empty")
	ErrUnknownCard  = errors.New("unknown tarot card")
)

// Catalog supplies the cards that can be drawn.
type Catalog interface {
	List(ctx context.Context) ([]envelope.TarotCard, error)
}

// StaticCatalog is a fixed in-memory catalog.
type StaticCatalog []envelope.TarotCard

func (c StaticCatalog) List(context.Context) ([]envelope.TarotCard, error) {
	return c, nil
}

// Assigner 将 envelopeID → cardID 的映射作为单个 JSON 值保存在 KV 中。
type Assigner struct {
	mu      sync.Mutex
	store   kv.Store
	catalog Catalog
	intn    func(n int) int
	logger  *slog.Logger
}

type Option func(*Assigner)

// WithIntn replaces the random source, mainly for tests.
func WithIntn(intn func(n int) int) Option {
	return func(a *Assigner) { a.intn = intn }
}

func WithLogger(logger *slog.Logger) Option {
	return func(a *Assigner) { a.logger = logger }
}

func New(store kv.Store, catalog Catalog, opts ...Option) *Assigner {
	a := &Assigner{
		store:   store,
		catalog: catalog,
		intn:    rand.IntN,
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// CardFor returns the card assigned to envelopeID, drawing and recording one on first use.
// Unused cards are preferred; once every card is taken the whole deck is eligible again.
func (a *Assigner) CardFor(ctx context.Context, envelopeID string) (envelope.TarotCard, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	cards, err := a.cards(ctx)
	if err != nil {
		return envelope.TarotCard{}, err
	}
	assignments, err := a.load(ctx)
	if err != nil {
		return envelope.TarotCard{}, err
	}

	if cardID, ok := assignments[envelopeID]; ok {
		if card, ok := cards[cardID]; ok {
			return card, nil
		}
		// 已分配的牌被删除，重新抽取
		delete(assignments, envelopeID)
	}

	used := make(map[string]struct{}, len(assignments))
	for _, cardID := range assignments {
		used[cardID] = struct{}{}
	}

	all := make([]string, 0, len(cards))
	available := make([]string, 0, len(cards))
	for id := range cards {
		all = append(all, id)
		if _, taken := used[id]; !taken {
			available = append(available, id)
		}
	}
	pool := available
	if len(pool) == 0 {
		pool = all
	}
	sort.Strings(pool)

	picked := pool[a.intn(len(pool))]
	assignments[envelopeID] = picked
	if err := a.save(ctx, assignments); err != nil {
		return envelope.TarotCard{}, err
	}
	return cards[picked], nil
}

// Resolve 优先使用信封内嵌且带名称的塔罗牌，否则走随机分配。
func (a *Assigner) Resolve(ctx context.Context, env envelope.Envelope) (envelope.TarotCard, error) {
	if env.TarotCard.HasOverride() {
		return env.TarotCard.Card(), nil
	}
	return a.CardFor(ctx, env.ID)
}

// Assign records cardID for envelopeID, replacing any earlier assignment.
func (a *Assigner) Assign(ctx context.Context, envelopeID, cardID string) (envelope.TarotCard, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	cards, err := a.cards(ctx)
	if err != nil {
		return envelope.TarotCard{}, err
	}
	card, ok := cards[cardID]
	if !ok {
		return envelope.TarotCard{}, fmt.Errorf("%w: %s", ErrUnknownCard, cardID)
	}

	assignments, err := a.load(ctx)
	if err != nil {
		return envelope.TarotCard{}, err
	}
	assignments[envelopeID] = cardID
	if err := a.save(ctx, assignments); err != nil {
		return envelope.TarotCard{}, err
	}
	return card, nil
}

// Clear 清空全部分配。
func (a *Assigner) Clear(ctx context.Context) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if err := a.store.Delete(ctx, StorageKey); err != nil {
		return fmt.Errorf("clear tarot assignments: %w", err)
	}
	return nil
}

// Assignments returns a copy of the current envelopeID → cardID map.
func (a *Assigner) Assignments(ctx context.Context) (map[string]string, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.load(ctx)
}

func (a *Assigner) cards(ctx context.Context) (map[string]envelope.TarotCard, error) {
	list, err := a.catalog.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("load tarot catalog: %w", err)
	}
	if len(list) == 0 {
		return nil, ErrEmptyCatalog
	}
	out := make(map[string]envelope.TarotCard, len(list))
	for _, card := range list {
		out[card.ID] = card
	}
	return out, nil
}

// load 读取失败时返回错误，调用方不得写回；内容损坏时按空表处理。
func (a *Assigner) load(ctx context.Context) (map[string]string, error) {
	assignments := map[string]string{}
	raw, found, err := a.store.Get(ctx, StorageKey)
	if err != nil {
		return nil, fmt.Errorf("read tarot assignments: %w", err)
	}
	if !found {
		return assignments, nil
	}
	if err := json.Unmarshal(raw, &assignments); err != nil || assignments == nil {
		a.logger.Warn("tarot assignments corrupted, starting over", slog.Any("error", err))
		return map[string]string{}, nil
	}
	return assignments, nil
}

func (a *Assigner) save(ctx context.Context, assignments map[string]string) error {
	raw, err := json.Marshal(assignments)
	if err != nil {
		return fmt.Errorf("encode tarot assignments: %w", err)
	}
	if err := a.store.Set(ctx, StorageKey, raw); err != nil {
		return fmt.Errorf("save tarot assignments: %w", err)
	}
	return nil
}
