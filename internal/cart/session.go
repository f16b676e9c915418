package cart

import (
	"context"
	"fmt"
	"sync"
	"time"

	"shopdesk-be/internal/logger"
	"shopdesk-be/internal/product"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Catalog is the slice of the catalog provider the cart reads prices and
// stock from.
type Catalog interface {
	GetProduct(ctx context.Context, ownerID, id string) (*product.Product, error)
}

// Session binds one cart state to a store owner, a session id and its
// Store. Every dispatched action is persisted before it becomes visible.
type Session struct {
	mu      sync.Mutex
	ownerID string
	id      string
	store   Store
	catalog Catalog
	state   State
}

func NewSession(ownerID, id string, store Store, catalog Catalog, taxRate decimal.Decimal) *Session {
	return &Session{
		ownerID: ownerID,
		id:      id,
		store:   store,
		catalog: catalog,
		state:   NewState(taxRate),
	}
}

func (s *Session) ID() string {
	return s.id
}

// OwnerID is the store whose products this cart may hold.
func (s *Session) OwnerID() string {
	return s.ownerID
}

// State returns the current immutable snapshot.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Restore replaces the in-memory items with whatever the store holds.
func (s *Session) Restore(ctx context.Context) error {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "service"),
		zap.String("method", "RestoreCart"),
		zap.String("session_id", s.id),
	)

	items, err := s.store.Load(ctx, s.ownerID, s.id)
	if err != nil {
		log.Error("failed to load cart", zap.Error(err))
		return err
	}
	if items == nil {
		log.Debug("no saved cart")
		return nil
	}

	s.mu.Lock()
	s.state = Reduce(s.state, LoadCart{Items: items})
	n := s.state.Len()
	s.mu.Unlock()

	log.Debug("cart restored", zap.Int("lines", n))
	return nil
}

// Dispatch reduces a against the current state and saves the result. When
// the save fails the previous state is kept and the error returned.
func (s *Session) Dispatch(ctx context.Context, a Action) (State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.dispatchLocked(ctx, a)
}

func (s *Session) dispatchLocked(ctx context.Context, a Action) (State, error) {
	next := Reduce(s.state, a)
	if err := s.store.Save(ctx, s.ownerID, s.id, next.items); err != nil {
		logger.FromCtx(ctx).Error("failed to persist cart",
			zap.String("layer", "service"),
			zap.String("action", a.Name()),
			zap.String("session_id", s.id),
			zap.Error(err),
		)
		return s.state, err
	}

	s.state = next
	return next, nil
}

// AddProduct adds one unit of a catalog variant at its current selling
// price. Products of other owners are reported as not found. The request is
// refused when the cart would hold more units than the variant has in stock.
func (s *Session) AddProduct(ctx context.Context, productID string, variantIndex int) (State, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "service"),
		zap.String("method", "AddProduct"),
		zap.String("session_id", s.id),
		zap.String("product_id", productID),
		zap.Int("variant_index", variantIndex),
	)

	p, err := s.catalog.GetProduct(ctx, s.ownerID, productID)
	if err != nil {
		log.Warn("product lookup failed", zap.Error(err))
		return s.State(), err
	}
	if p.OwnerID != s.ownerID {
		log.Warn("product belongs to another owner")
		return s.State(), product.ErrProductNotFound
	}
	if p.Status == product.StatusDiscontinued {
		return s.State(), ErrProductUnavailable
	}

	v, err := p.Variant(variantIndex)
	if err != nil {
		return s.State(), err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	id := ItemID(productID, variantIndex)
	want := 1
	if existing, ok := s.state.Find(id); ok {
		want += existing.Quantity
	}
	if want > v.StockQuantity {
		log.Warn("insufficient stock", zap.Int("stock", v.StockQuantity), zap.Int("wanted", want))
		return s.state, fmt.Errorf("%w: %d available", product.ErrInsufficientStock, v.StockQuantity)
	}

	item := CartItem{
		ID:           id,
		ProductID:    productID,
		VariantIndex: variantIndex,
		Name:         displayName(p.Name, v),
		Price:        v.SellingPrice,
		Category:     p.Category,
		Image:        p.ProductImage,
	}
	if len(v.Images) > 0 {
		item.Image = v.Images[0]
	}

	next, err := s.dispatchLocked(ctx, AddItem{Item: item})
	if err != nil {
		return next, err
	}

	log.Info("item added to cart", zap.Int("quantity", want))
	return next, nil
}

func (s *Session) RemoveItem(ctx context.Context, id string) (State, error) {
	return s.Dispatch(ctx, RemoveItem{ID: id})
}

func (s *Session) UpdateQuantity(ctx context.Context, id string, quantity int) (State, error) {
	return s.Dispatch(ctx, UpdateQuantity{ID: id, Quantity: quantity})
}

func (s *Session) Clear(ctx context.Context) (State, error) {
	return s.Dispatch(ctx, ClearCart{})
}

func displayName(name string, v product.Variant) string {
	if label := v.Label(); label != "" {
		return name + " (" + label + ")"
	}
	return name
}

// sessionIdleTTL is how long an unused session stays cached. Evicted
// sessions are restored from the store on the next Open.
const sessionIdleTTL = 30 * time.Minute

type sessionKey struct {
	ownerID string
	id      string
}

type managedSession struct {
	session  *Session
	lastUsed time.Time
}

// Manager hands out one Session per store owner and session id, restoring
// it from the store on first use.
type Manager struct {
	mu       sync.Mutex
	sessions map[sessionKey]*managedSession
	store    Store
	catalog  Catalog
	taxRate  decimal.Decimal
	now      func() time.Time
}

func NewManager(store Store, catalog Catalog, taxRate decimal.Decimal) *Manager {
	return &Manager{
		sessions: make(map[sessionKey]*managedSession),
		store:    store,
		catalog:  catalog,
		taxRate:  taxRate,
		now:      time.Now,
	}
}

func (m *Manager) Open(ctx context.Context, ownerID, sessionID string) (*Session, error) {
	if !ValidSessionID(ownerID) {
		return nil, ErrInvalidOwnerID
	}
	if !ValidSessionID(sessionID) {
		return nil, ErrInvalidSessionID
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	key := sessionKey{ownerID: ownerID, id: sessionID}
	if ms, ok := m.sessions[key]; ok {
		ms.lastUsed = m.now()
		return ms.session, nil
	}

	s := NewSession(ownerID, sessionID, m.store, m.catalog, m.taxRate)
	if err := s.Restore(ctx); err != nil {
		return nil, err
	}
	m.sessions[key] = &managedSession{session: s, lastUsed: m.now()}
	return s, nil
}

// Run evicts idle sessions every minute until ctx is done.
func (m *Manager) Run(ctx context.Context) {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.evictIdle(ctx)
		}
	}
}

func (m *Manager) evictIdle(ctx context.Context) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	evicted := 0
	for key, ms := range m.sessions {
		if now.Sub(ms.lastUsed) > sessionIdleTTL {
			delete(m.sessions, key)
			evicted++
		}
	}

	if evicted > 0 {
		logger.FromCtx(ctx).Debug("idle cart sessions evicted",
			zap.Int("evicted", evicted),
			zap.Int("remaining", len(m.sessions)),
		)
	}
}
