// Package cart manages the per-session shopping carts.
package cart

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/brewline/storefront/internal/domain/cart"
	"github.com/brewline/storefront/internal/domain/catalog"
	"github.com/brewline/storefront/internal/domain/shared"
	"github.com/brewline/storefront/internal/infrastructure/logger"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// DefaultSessionTTL is how long an untouched cart is kept
const DefaultSessionTTL = 12 * time.Hour

// ErrMissingSession is returned when a request carries no cart session id
var ErrMissingSession = shared.NewDomainError("MISSING_CART_SESSION", "Cart session id is required")

// ProductResolver looks up catalog products by id
type ProductResolver interface {
	GetProduct(ctx context.Context, id uuid.UUID) (*catalog.Product, error)
}

// AddItemInput selects a product variant to add
type AddItemInput struct {
	ProductID   uuid.UUID
	Size        *string
	Temperature *string
}

// View is a read-only rendering of a cart with its derived totals
type View struct {
	SessionID string          `json:"session_id"`
	Lines     []cart.Line     `json:"lines"`
	Subtotal  decimal.Decimal `json:"subtotal"`
	ItemCount int             `json:"item_count"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// NewView renders a cart. Subtotal is recomputed from the lines.
func NewView(sessionID string, c *cart.Cart) View {
	return View{
		SessionID: sessionID,
		Lines:     c.Lines(),
		Subtotal:  c.Subtotal(),
		ItemCount: c.ItemCount(),
		UpdatedAt: c.UpdatedAt,
	}
}

type session struct {
	cart     *cart.Cart
	lastSeen time.Time
}

// Service keeps one cart per session id in memory
type Service struct {
	mu       sync.Mutex
	sessions map[string]*session
	products ProductResolver
	events   shared.EventPublisher
	ttl      time.Duration
	now      func() time.Time
	logger   *zap.Logger
}

// ServiceOption configures a Service
type ServiceOption func(*Service)

// WithEventPublisher publishes cart events on the given bus
func WithEventPublisher(p shared.EventPublisher) ServiceOption {
	return func(s *Service) { s.events = p }
}

// WithSessionTTL sets the idle time after which a cart is swept
func WithSessionTTL(ttl time.Duration) ServiceOption {
	return func(s *Service) {
		if ttl > 0 {
			s.ttl = ttl
		}
	}
}

// WithClock overrides time.Now
func WithClock(now func() time.Time) ServiceOption {
	return func(s *Service) { s.now = now }
}

// WithLogger sets the service logger
func WithLogger(l *zap.Logger) ServiceOption {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// NewService creates a cart service
func NewService(products ProductResolver, opts ...ServiceOption) *Service {
	s := &Service{
		sessions: make(map[string]*session),
		products: products,
		ttl:      DefaultSessionTTL,
		now:      time.Now,
		logger:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Get returns the session's cart. An unknown session yields an empty cart.
func (s *Service) Get(_ context.Context, sessionID string) (View, error) {
	if err := checkSession(sessionID); err != nil {
		return View{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[sessionID]
	if !ok {
		// reads never allocate a session
		return NewView(sessionID, cart.New()), nil
	}
	sess.lastSeen = s.now()
	return NewView(sessionID, sess.cart), nil
}

// AddItem resolves the product and appends a line for the chosen variant
func (s *Service) AddItem(ctx context.Context, sessionID string, input AddItemInput) (cart.Line, View, error) {
	if err := checkSession(sessionID); err != nil {
		return cart.Line{}, View{}, err
	}

	var temperature *cart.Temperature
	if input.Temperature != nil && *input.Temperature != "" {
		t, err := cart.ParseTemperature(*input.Temperature)
		if err != nil {
			return cart.Line{}, View{}, err
		}
		temperature = &t
	}

	product, err := s.products.GetProduct(ctx, input.ProductID)
	if err != nil {
		return cart.Line{}, View{}, err
	}

	s.mu.Lock()
	c := s.cartFor(sessionID)
	line, err := c.AddToCart(product, input.Size, temperature)
	if err != nil {
		s.mu.Unlock()
		return cart.Line{}, View{}, err
	}
	view := NewView(sessionID, c)
	event := cart.NewItemAddedEvent(c, line)
	s.mu.Unlock()

	logger.WithLogger(ctx, s.logger).Debug("Cart item added",
		zap.String("product_id", product.ID.String()),
		zap.String("line_id", line.LineID.String()),
	)
	s.publish(ctx, event)
	return line, view, nil
}

// RemoveItem deletes a line. Removing an unknown line is not an error.
func (s *Service) RemoveItem(_ context.Context, sessionID string, lineID uuid.UUID) (bool, error) {
	if err := checkSession(sessionID); err != nil {
		return false, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cartFor(sessionID).RemoveFromCart(lineID), nil
}

// UpdateQuantity changes a line quantity by delta, never below 1
func (s *Service) UpdateQuantity(_ context.Context, sessionID string, lineID uuid.UUID, delta int) (cart.Line, View, error) {
	if err := checkSession(sessionID); err != nil {
		return cart.Line{}, View{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	c := s.cartFor(sessionID)
	line, err := c.UpdateQuantity(lineID, delta)
	if err != nil {
		return cart.Line{}, View{}, err
	}
	return line, NewView(sessionID, c), nil
}

// Clear empties the session's cart
func (s *Service) Clear(ctx context.Context, sessionID string) error {
	if err := checkSession(sessionID); err != nil {
		return err
	}
	s.mu.Lock()
	c := s.cartFor(sessionID)
	removed := c.Len()
	c.ClearCart()
	s.mu.Unlock()

	if removed > 0 {
		s.publish(ctx, cart.NewClearedEvent(c, removed))
	}
	return nil
}

// Do runs fn against the session's cart while holding the service lock.
// Events returned by fn are published after the lock is released.
func (s *Service) Do(ctx context.Context, sessionID string, fn func(c *cart.Cart) ([]shared.DomainEvent, error)) error {
	if err := checkSession(sessionID); err != nil {
		return err
	}
	s.mu.Lock()
	events, err := fn(s.cartFor(sessionID))
	s.mu.Unlock()
	if err != nil {
		return err
	}
	s.publish(ctx, events...)
	return nil
}

// Sweep drops carts idle for longer than the session TTL and returns how many were dropped
func (s *Service) Sweep(ctx context.Context) int {
	cutoff := s.now().Add(-s.ttl)

	s.mu.Lock()
	removed := 0
	for id, sess := range s.sessions {
		if sess.lastSeen.Before(cutoff) {
			delete(s.sessions, id)
			removed++
		}
	}
	active := len(s.sessions)
	s.mu.Unlock()

	if removed > 0 {
		logger.WithLogger(ctx, s.logger).Info("Swept idle carts",
			zap.Int("removed", removed),
			zap.Int("active", active),
		)
	}
	return removed
}

// ActiveSessions returns the number of carts held in memory
func (s *Service) ActiveSessions() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

// cartFor returns the session's cart, creating it on first use. Caller holds mu.
func (s *Service) cartFor(sessionID string) *cart.Cart {
	sess, ok := s.sessions[sessionID]
	if !ok {
		sess = &session{cart: cart.New()}
		s.sessions[sessionID] = sess
	}
	sess.lastSeen = s.now()
	return sess.cart
}

func (s *Service) publish(ctx context.Context, events ...shared.DomainEvent) {
	if s.events == nil || len(events) == 0 {
		return
	}
	if err := s.events.Publish(ctx, events...); err != nil {
		logger.WithLogger(ctx, s.logger).Warn("Failed to publish cart events", zap.Error(err))
	}
}

func checkSession(sessionID string) error {
	if strings.TrimSpace(sessionID) == "" {
		return ErrMissingSession
	}
	return nil
}
