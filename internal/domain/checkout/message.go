// Package checkout turns a cart into an order message for the WhatsApp channel.
package checkout

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"

	"github.com/brewline/storefront/internal/domain/cart"
	"github.com/brewline/storefront/internal/domain/shared"
	"github.com/brewline/storefront/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
)

// DefaultChannelURL is the base of the click-to-chat link
const DefaultChannelURL = "https://wa.me"

var (
	// ErrEmptyCart is returned when checkout is attempted without lines
	ErrEmptyCart = shared.NewDomainError("EMPTY_CART", "Cannot check out an empty cart")
	// ErrMissingNumber is returned when no destination number is configured
	ErrMissingNumber = shared.NewDomainError("MISSING_WHATSAPP_NUMBER", "The shop has no WhatsApp number configured")

	nonDigits = regexp.MustCompile(`[^0-9]`)
)

// Serializer renders carts as human-readable order messages
type Serializer struct {
	Labels   Labels
	Currency valueobject.Currency
}

// NewSerializer creates a serializer for the given locale and currency
func NewSerializer(locale string, currency valueobject.Currency) Serializer {
	if currency == "" {
		currency = valueobject.DefaultCurrency
	}
	return Serializer{
		Labels:   LabelsFor(locale),
		Currency: currency,
	}
}

// BuildOrderMessage renders one row per line followed by the cart subtotal.
// Amounts are printed without rounding so the total always equals the
// sum of the printed rows.
func (s Serializer) BuildOrderMessage(c *cart.Cart, shopName string) (string, error) {
	if c == nil || c.IsEmpty() {
		return "", ErrEmptyCart
	}

	var b strings.Builder
	fmt.Fprintf(&b, "*%s*\n\n", s.Labels.Header(shopName))

	for i, line := range c.Lines() {
		fmt.Fprintf(&b, "%d. %dx %s", i+1, line.Quantity, line.Product.Name)
		if line.Size != nil {
			fmt.Fprintf(&b, " (%s)", line.Size.Name)
		}
		if line.Temperature != nil {
			fmt.Fprintf(&b, " - %s", s.temperatureLabel(*line.Temperature))
		}
		fmt.Fprintf(&b, ": %s\n", s.format(line.LineTotal()))
	}

	fmt.Fprintf(&b, "\n*%s: %s*", s.Labels.Total, s.format(c.Subtotal()))
	return b.String(), nil
}

func (s Serializer) temperatureLabel(t cart.Temperature) string {
	if t == cart.TemperatureCold {
		return s.Labels.Cold
	}
	return s.Labels.Hot
}

// format prints at least the currency's minor-unit places, widened when the
// amount carries more precision than that.
func (s Serializer) format(amount decimal.Decimal) string {
	money := valueobject.MustNewMoney(amount, s.Currency)
	places := money.Places()
	for !amount.Round(places).Equal(amount) {
		places++
	}
	return fmt.Sprintf("%s %s", money.StringFixed(places), money.Currency())
}

// EncodeMessage escapes a message for use as a URL query value
func EncodeMessage(msg string) string {
	return url.QueryEscape(msg)
}

// NormalizeNumber strips everything but digits from a phone number
func NormalizeNumber(number string) string {
	return nonDigits.ReplaceAllString(number, "")
}

// OrderLink builds the click-to-chat link for the destination number.
// An empty base falls back to DefaultChannelURL.
func OrderLink(base, number, msg string) (string, error) {
	digits := NormalizeNumber(number)
	if digits == "" {
		return "", ErrMissingNumber
	}
	if base == "" {
		base = DefaultChannelURL
	}
	return strings.TrimRight(base, "/") + "/" + digits + "?text=" + EncodeMessage(msg), nil
}
