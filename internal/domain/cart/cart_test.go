package cart

import (
	"math"
	"testing"

	"github.com/brewline/storefront/internal/domain/catalog"
	"github.com/brewline/storefront/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dec(v int64) decimal.Decimal {
	return decimal.NewFromInt(v)
}

func strPtr(s string) *string {
	return &s
}

func tempPtr(t Temperature) *Temperature {
	return &t
}

func newLatte(t *testing.T) *catalog.Product {
	t.Helper()
	promo := dec(19)
	p, err := catalog.NewProduct(catalog.ProductDetails{
		Name:        "Latte",
		Price:       dec(24),
		PromoPrice:  &promo,
		IsPromo:     true,
		CategoryIDs: []uuid.UUID{uuid.New()},
		Sizes: []catalog.Size{
			{Name: "Small", PriceModifier: dec(-2)},
			{Name: "Large", PriceModifier: dec(5)},
		},
		HasHot:  true,
		HasCold: true,
	})
	require.NoError(t, err)
	return p
}

func newCake(t *testing.T) *catalog.Product {
	t.Helper()
	p, err := catalog.NewProduct(catalog.ProductDetails{
		Name:        "Cake",
		Price:       dec(32),
		CategoryIDs: []uuid.UUID{uuid.New()},
	})
	require.NoError(t, err)
	return p
}

func TestAddToCart_Pricing(t *testing.T) {
	t.Run("promo product with size uses promo price plus modifier", func(t *testing.T) {
		latte := newLatte(t)
		for _, size := range latte.Sizes {
			c := New()
			line, err := c.AddToCart(latte, strPtr(size.Name), nil)
			require.NoError(t, err)
			assert.True(t, line.FinalPrice.Equal(dec(19).Add(size.PriceModifier)), "size %s", size.Name)
		}
	})

	t.Run("non-promo product without size uses base price", func(t *testing.T) {
		c := New()
		line, err := c.AddToCart(newCake(t), nil, nil)
		require.NoError(t, err)
		assert.True(t, line.FinalPrice.Equal(dec(32)))
		assert.Equal(t, 1, line.Quantity)
	})

	t.Run("promo price ignored when flag is off", func(t *testing.T) {
		latte := newLatte(t)
		latte.IsPromo = false
		c := New()
		line, err := c.AddToCart(latte, nil, nil)
		require.NoError(t, err)
		assert.True(t, line.FinalPrice.Equal(dec(24)))
	})

	t.Run("each add creates a distinct line", func(t *testing.T) {
		latte := newLatte(t)
		c := New()
		a, err := c.AddToCart(latte, strPtr("Large"), nil)
		require.NoError(t, err)
		b, err := c.AddToCart(latte, strPtr("Large"), nil)
		require.NoError(t, err)
		assert.NotEqual(t, a.LineID, b.LineID)
		assert.Equal(t, 2, c.Len())
	})
}

func TestAddToCart_Validation(t *testing.T) {
	t.Run("rejects size the product does not declare", func(t *testing.T) {
		c := New()
		_, err := c.AddToCart(newLatte(t), strPtr("Venti"), nil)
		require.Error(t, err)
		de, ok := shared.AsDomainError(err)
		require.True(t, ok)
		assert.Equal(t, "INVALID_SIZE", de.Code)
		assert.True(t, c.IsEmpty())
	})

	t.Run("rejects temperature the product is not served at", func(t *testing.T) {
		c := New()
		_, err := c.AddToCart(newCake(t), nil, tempPtr(TemperatureHot))
		require.Error(t, err)
		de, _ := shared.AsDomainError(err)
		assert.Equal(t, "INVALID_TEMPERATURE", de.Code)
	})

	t.Run("records temperature only when both are offered", func(t *testing.T) {
		c := New()
		line, err := c.AddToCart(newLatte(t), nil, tempPtr(TemperatureCold))
		require.NoError(t, err)
		require.NotNil(t, line.Temperature)
		assert.Equal(t, TemperatureCold, *line.Temperature)

		hotOnly := newLatte(t)
		hotOnly.HasCold = false
		line, err = c.AddToCart(hotOnly, nil, tempPtr(TemperatureHot))
		require.NoError(t, err)
		assert.Nil(t, line.Temperature)
	})

	t.Run("nil product is not found", func(t *testing.T) {
		_, err := New().AddToCart(nil, nil, nil)
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})
}

func TestAddToCart_SnapshotIsolation(t *testing.T) {
	latte := newLatte(t)
	c := New()
	line, err := c.AddToCart(latte, nil, nil)
	require.NoError(t, err)

	latte.Name = "Renamed"
	*latte.PromoPrice = dec(1)

	stored := c.Lines()[0]
	assert.Equal(t, "Latte", stored.Product.Name)
	assert.True(t, stored.Product.PromoPrice.Equal(dec(19)))
	assert.True(t, stored.FinalPrice.Equal(line.FinalPrice))
}

func TestUpdateQuantity(t *testing.T) {
	c := New()
	line, err := c.AddToCart(newCake(t), nil, nil)
	require.NoError(t, err)

	updated, err := c.UpdateQuantity(line.LineID, 1)
	require.NoError(t, err)
	assert.Equal(t, 2, updated.Quantity)

	for _, delta := range []int{-1, -2, -100, math.MinInt} {
		updated, err = c.UpdateQuantity(line.LineID, delta)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, updated.Quantity, 1, "delta %d", delta)
	}
	assert.Equal(t, 1, c.Lines()[0].Quantity)
	assert.Equal(t, 1, c.Len(), "decrements never remove a line")

	updated, err = c.UpdateQuantity(line.LineID, 1500)
	require.NoError(t, err)
	assert.Equal(t, 1501, updated.Quantity, "no upper bound on quantity")

	updated, err = c.UpdateQuantity(line.LineID, math.MaxInt)
	require.NoError(t, err)
	assert.Equal(t, math.MaxInt, updated.Quantity)

	_, err = c.UpdateQuantity(uuid.New(), 1)
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestRemoveFromCart(t *testing.T) {
	c := New()
	a, err := c.AddToCart(newLatte(t), nil, nil)
	require.NoError(t, err)
	_, err = c.AddToCart(newCake(t), nil, nil)
	require.NoError(t, err)

	assert.False(t, c.RemoveFromCart(uuid.New()))
	assert.Equal(t, 2, c.Len())

	assert.True(t, c.RemoveFromCart(a.LineID))
	assert.Equal(t, 1, c.Len())
	assert.Equal(t, "Cake", c.Lines()[0].Product.Name)

	assert.False(t, c.RemoveFromCart(a.LineID))
}

func TestSubtotal_LatteAndCakeScenario(t *testing.T) {
	c := New()
	_, err := c.AddToCart(newLatte(t), strPtr("Large"), nil)
	require.NoError(t, err)
	cake, err := c.AddToCart(newCake(t), nil, nil)
	require.NoError(t, err)
	_, err = c.UpdateQuantity(cake.LineID, 1)
	require.NoError(t, err)

	lines := c.Lines()
	assert.True(t, lines[0].FinalPrice.Equal(dec(24)))
	assert.True(t, lines[1].LineTotal().Equal(dec(64)))

	assert.True(t, c.Subtotal().Equal(dec(88)))
	assert.True(t, c.Subtotal().Equal(c.Subtotal()), "repeated reads agree")
	assert.Equal(t, 3, c.ItemCount())
}

func TestSubtotal_TracksMutations(t *testing.T) {
	c := New()
	assert.True(t, c.Subtotal().IsZero())

	line, err := c.AddToCart(newCake(t), nil, nil)
	require.NoError(t, err)
	assert.True(t, c.Subtotal().Equal(dec(32)))

	_, err = c.UpdateQuantity(line.LineID, 2)
	require.NoError(t, err)
	assert.True(t, c.Subtotal().Equal(dec(96)))

	c.ClearCart()
	assert.True(t, c.Subtotal().IsZero())
	assert.True(t, c.IsEmpty())
}

func TestLines_ReturnsCopy(t *testing.T) {
	c := New()
	_, err := c.AddToCart(newCake(t), nil, nil)
	require.NoError(t, err)

	lines := c.Lines()
	lines[0].Quantity = 50
	assert.Equal(t, 1, c.Lines()[0].Quantity)
}

func TestParseTemperature(t *testing.T) {
	temp, err := ParseTemperature(" HOT ")
	require.NoError(t, err)
	assert.Equal(t, TemperatureHot, temp)

	_, err = ParseTemperature("warm")
	assert.Error(t, err)
}
