// Package checkout turns the session cart into a WhatsApp order.
package checkout

import (
	"context"
	"strings"

	"github.com/brewline/storefront/internal/domain/cart"
	"github.com/brewline/storefront/internal/domain/checkout"
	"github.com/brewline/storefront/internal/domain/settings"
	"github.com/brewline/storefront/internal/domain/shared"
	"github.com/brewline/storefront/internal/infrastructure/logger"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// CartRunner gives exclusive access to a session's cart
type CartRunner interface {
	Do(ctx context.Context, sessionID string, fn func(c *cart.Cart) ([]shared.DomainEvent, error)) error
}

// SettingsReader provides the current shop settings
type SettingsReader interface {
	Get(ctx context.Context) settings.SiteSettings
}

// Result is what a successful checkout returns to the client
type Result struct {
	Message        string          `json:"message"`
	EncodedMessage string          `json:"encoded_message"`
	Link           string          `json:"link"`
	Subtotal       decimal.Decimal `json:"subtotal"`
	Currency       string          `json:"currency"`
	ItemCount      int             `json:"item_count"`
}

// Service builds order messages from carts
type Service struct {
	carts         CartRunner
	settings      SettingsReader
	channelURL    string
	defaultLocale string
	logger        *zap.Logger
}

// Config holds checkout options
type Config struct {
	ChannelURL    string
	DefaultLocale string
}

// NewService creates a checkout service
func NewService(carts CartRunner, settingsReader SettingsReader, cfg Config, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	if cfg.ChannelURL == "" {
		cfg.ChannelURL = checkout.DefaultChannelURL
	}
	return &Service{
		carts:         carts,
		settings:      settingsReader,
		channelURL:    cfg.ChannelURL,
		defaultLocale: cfg.DefaultLocale,
		logger:        log,
	}
}

// Checkout renders the session cart as an order message and link, then clears the cart.
// Locale picks the message language; empty falls back to the shop locale and then the configured default.
// On any error the cart is left untouched.
func (s *Service) Checkout(ctx context.Context, sessionID, locale string) (*Result, error) {
	shop := s.settings.Get(ctx)
	currency := shop.CurrencyCode()
	serializer := checkout.NewSerializer(s.resolveLocale(locale, shop), currency)

	var result *Result
	err := s.carts.Do(ctx, sessionID, func(c *cart.Cart) ([]shared.DomainEvent, error) {
		msg, err := serializer.BuildOrderMessage(c, shop.ShopName)
		if err != nil {
			return nil, err
		}
		link, err := checkout.OrderLink(s.channelURL, shop.WhatsAppNumber, msg)
		if err != nil {
			return nil, err
		}

		result = &Result{
			Message:        msg,
			EncodedMessage: checkout.EncodeMessage(msg),
			Link:           link,
			Subtotal:       c.Subtotal(),
			Currency:       string(currency),
			ItemCount:      c.ItemCount(),
		}
		placed := cart.NewOrderPlacedEvent(c, string(currency))
		c.ClearCart()
		return []shared.DomainEvent{placed}, nil
	})
	if err != nil {
		return nil, err
	}

	logger.WithLogger(ctx, s.logger).Info("Order message created",
		zap.String("subtotal", result.Subtotal.StringFixed(2)),
		zap.String("currency", result.Currency),
		zap.Int("item_count", result.ItemCount),
	)
	return result, nil
}

func (s *Service) resolveLocale(requested string, shop settings.SiteSettings) string {
	for _, l := range []string{requested, shop.Locale, s.defaultLocale} {
		if l = strings.TrimSpace(l); l != "" {
			return l
		}
	}
	return "en"
}
