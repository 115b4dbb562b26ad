package checkout

import (
	"net/url"
	"regexp"
	"strings"
	"testing"

	"github.com/brewline/storefront/internal/domain/cart"
	"github.com/brewline/storefront/internal/domain/catalog"
	"github.com/brewline/storefront/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/language"
)

func scenarioCart(t *testing.T) *cart.Cart {
	t.Helper()
	promo := decimal.NewFromInt(19)
	latte, err := catalog.NewProduct(catalog.ProductDetails{
		Name:        "Latte",
		Price:       decimal.NewFromInt(24),
		PromoPrice:  &promo,
		IsPromo:     true,
		CategoryIDs: []uuid.UUID{uuid.New()},
		Sizes:       []catalog.Size{{Name: "Large", PriceModifier: decimal.NewFromInt(5)}},
		HasHot:      true,
		HasCold:     true,
	})
	require.NoError(t, err)
	cake, err := catalog.NewProduct(catalog.ProductDetails{
		Name:        "Cake",
		Price:       decimal.NewFromInt(32),
		CategoryIDs: []uuid.UUID{uuid.New()},
	})
	require.NoError(t, err)

	c := cart.New()
	size := "Large"
	hot := cart.TemperatureHot
	_, err = c.AddToCart(latte, &size, &hot)
	require.NoError(t, err)
	line, err := c.AddToCart(cake, nil, nil)
	require.NoError(t, err)
	_, err = c.UpdateQuantity(line.LineID, 1)
	require.NoError(t, err)
	return c
}

func TestBuildOrderMessage(t *testing.T) {
	s := NewSerializer("en", valueobject.SAR)

	msg, err := s.BuildOrderMessage(scenarioCart(t), "Brew Line")
	require.NoError(t, err)

	expected := "*New order from Brew Line*\n\n" +
		"1. 1x Latte (Large) - Hot: 24.00 SAR\n" +
		"2. 2x Cake: 64.00 SAR\n" +
		"\n*Total: 88.00 SAR*"
	assert.Equal(t, expected, msg)
}

func TestBuildOrderMessage_EmptyCart(t *testing.T) {
	s := NewSerializer("en", valueobject.SAR)

	msg, err := s.BuildOrderMessage(cart.New(), "Brew Line")
	assert.ErrorIs(t, err, ErrEmptyCart)
	assert.Empty(t, msg)

	msg, err = s.BuildOrderMessage(nil, "Brew Line")
	assert.ErrorIs(t, err, ErrEmptyCart)
	assert.Empty(t, msg)
}

func TestBuildOrderMessage_TotalMatchesSubtotal(t *testing.T) {
	c := scenarioCart(t)
	msg, err := NewSerializer("en", valueobject.USD).BuildOrderMessage(c, "Shop")
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(msg, "*Total: "+c.Subtotal().StringFixed(2)+" USD*"))
}

func TestBuildOrderMessage_TotalIsSumOfPrintedRows(t *testing.T) {
	shot, err := catalog.NewProduct(catalog.ProductDetails{
		Name:        "Shot",
		Price:       decimal.RequireFromString("1.005"),
		CategoryIDs: []uuid.UUID{uuid.New()},
	})
	require.NoError(t, err)
	c := cart.New()
	for i := 0; i < 2; i++ {
		_, err = c.AddToCart(shot, nil, nil)
		require.NoError(t, err)
	}

	msg, err := NewSerializer("en", valueobject.SAR).BuildOrderMessage(c, "Brew Line")
	require.NoError(t, err)

	amounts := regexp.MustCompile(`: ([0-9.]+) SAR`).FindAllStringSubmatch(msg, -1)
	require.Len(t, amounts, 3)
	sum := decimal.Zero
	for _, m := range amounts[:2] {
		assert.Equal(t, "1.005", m[1])
		sum = sum.Add(decimal.RequireFromString(m[1]))
	}
	assert.Equal(t, "2.01", amounts[2][1])
	assert.True(t, sum.Equal(decimal.RequireFromString(amounts[2][1])))
}

func TestSerializer_Format(t *testing.T) {
	sar := NewSerializer("en", valueobject.SAR)
	assert.Equal(t, "19.00 SAR", sar.format(decimal.NewFromInt(19)))
	assert.Equal(t, "19.50 SAR", sar.format(decimal.RequireFromString("19.5")))
	assert.Equal(t, "1.005 SAR", sar.format(decimal.RequireFromString("1.0050")))

	jpy := NewSerializer("en", valueobject.Currency("JPY"))
	assert.Equal(t, "450 JPY", jpy.format(decimal.NewFromInt(450)))
	assert.Equal(t, "450.5 JPY", jpy.format(decimal.RequireFromString("450.5")))
}

func TestLabelsFor(t *testing.T) {
	t.Run("arabic", func(t *testing.T) {
		l := LabelsFor("ar")
		assert.Equal(t, language.Arabic, l.Locale)
		assert.Equal(t, "حار", l.Hot)
		assert.Equal(t, "بارد", l.Cold)
		assert.Equal(t, "طلب جديد من Brew", l.Header("Brew"))
	})

	t.Run("regional variant matches base language", func(t *testing.T) {
		assert.Equal(t, "Panas", LabelsFor("id-ID").Hot)
	})

	t.Run("unknown and malformed locales fall back to english", func(t *testing.T) {
		assert.Equal(t, "Hot", LabelsFor("ja").Hot)
		assert.Equal(t, "Cold", LabelsFor("!!").Cold)
		assert.Equal(t, "Total", LabelsFor("").Total)
	})
}

func TestOrderLink(t *testing.T) {
	link, err := OrderLink("", "+966 50-123-4567", "2x Cake: 64 & more")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(link, "https://wa.me/966501234567?text="))

	u, err := url.Parse(link)
	require.NoError(t, err)
	assert.Equal(t, "2x Cake: 64 & more", u.Query().Get("text"))

	link, err = OrderLink("https://api.whatsapp.com/send/", "123", "hi")
	require.NoError(t, err)
	assert.Equal(t, "https://api.whatsapp.com/send/123?text=hi", link)

	_, err = OrderLink("", " - ", "hi")
	assert.ErrorIs(t, err, ErrMissingNumber)
}

func TestEncodeMessage(t *testing.T) {
	assert.Equal(t, "a+b%0A%2A", EncodeMessage("a b\n*"))
}
