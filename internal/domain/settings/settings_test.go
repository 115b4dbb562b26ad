package settings

import (
	"testing"

	"github.com/brewline/storefront/internal/domain/shared"
	"github.com/brewline/storefront/internal/domain/shared/valueobject"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func completeSettings() SiteSettings {
	return SiteSettings{
		ShopName:       "Brew Line",
		Tagline:        "Single origin, double shot",
		ThemeColor:     "#112233",
		LogoURL:        "https://cdn.example.com/logo.png",
		HeroImages:     []string{"https://cdn.example.com/hero1.jpg"},
		OfferImages:    []string{},
		Social:         SocialLinks{Instagram: "https://instagram.com/brewline", Maps: "https://maps.example.com/brewline"},
		WhatsAppNumber: "+966 50 123 4567",
		Currency:       "SAR",
		Locale:         "ar",
		Address:        "King Fahd Rd",
		OpeningHours:   "07:00 - 01:00",
	}
}

func TestDefaults(t *testing.T) {
	d := Defaults()
	require.NoError(t, d.Validate())
	assert.NotNil(t, d.HeroImages)
	assert.NotNil(t, d.OfferImages)
	assert.Equal(t, valueobject.DefaultCurrency, d.CurrencyCode())
}

func TestMerge(t *testing.T) {
	t.Run("empty stored object yields defaults", func(t *testing.T) {
		assert.Equal(t, Defaults(), Merge(Defaults(), StoredSettings{}))
	})

	t.Run("present fields override, missing fields keep defaults", func(t *testing.T) {
		stored, legacy, err := Decode([]byte(`{"shop_name":"Old Shop","social":{"instagram":"https://instagram.com/old"}}`))
		require.NoError(t, err)
		assert.Empty(t, legacy)

		merged := Merge(Defaults(), stored)
		assert.Equal(t, "Old Shop", merged.ShopName)
		assert.Equal(t, "https://instagram.com/old", merged.Social.Instagram)
		assert.Equal(t, Defaults().ThemeColor, merged.ThemeColor)
		assert.Equal(t, Defaults().Currency, merged.Currency)
		assert.Equal(t, []string{}, merged.HeroImages)
	})

	t.Run("present but empty string overrides the default", func(t *testing.T) {
		stored, _, err := Decode([]byte(`{"tagline":""}`))
		require.NoError(t, err)
		assert.Equal(t, "", Merge(Defaults(), stored).Tagline)
	})

	t.Run("merge does not alias default slices", func(t *testing.T) {
		base := Defaults()
		base.HeroImages = []string{"a"}
		merged := Merge(base, StoredSettings{})
		merged.HeroImages[0] = "b"
		assert.Equal(t, "a", base.HeroImages[0])
	})
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	x := completeSettings().Normalize()

	data, err := Encode(x)
	require.NoError(t, err)

	stored, _, err := Decode(data)
	require.NoError(t, err)
	assert.Equal(t, x, Merge(Defaults(), stored))
}

func TestDecode_ReportsLegacyCredentialKeys(t *testing.T) {
	stored, legacy, err := Decode([]byte(`{"shop_name":"Shop","imgbbApiKey":"k","cloudinary_secret":"s"}`))
	require.NoError(t, err)
	assert.Equal(t, []string{"cloudinary_secret", "imgbbApiKey"}, legacy)
	assert.Equal(t, "Shop", *stored.ShopName)

	_, _, err = Decode([]byte(`not json`))
	assert.Error(t, err)
}

func TestSiteSettings_Validate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*SiteSettings)
		code   string
	}{
		{"empty shop name", func(s *SiteSettings) { s.ShopName = "" }, "INVALID_SHOP_NAME"},
		{"bad theme color", func(s *SiteSettings) { s.ThemeColor = "brown" }, "INVALID_THEME_COLOR"},
		{"bad currency", func(s *SiteSettings) { s.Currency = "RIYAL" }, "INVALID_CURRENCY"},
		{"bad locale", func(s *SiteSettings) { s.Locale = "not a locale!" }, "INVALID_LOCALE"},
		{"short whatsapp number", func(s *SiteSettings) { s.WhatsAppNumber = "123" }, "INVALID_WHATSAPP_NUMBER"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := completeSettings()
			tt.mutate(&s)
			err := s.Validate()
			require.Error(t, err)
			de, ok := shared.AsDomainError(err)
			require.True(t, ok)
			assert.Equal(t, tt.code, de.Code)
		})
	}

	assert.NoError(t, completeSettings().Validate())
}

func TestSiteSettings_Normalize(t *testing.T) {
	s := SiteSettings{ShopName: "  Shop ", Currency: " usd ", HeroImages: []string{" a ", "", "b"}}
	n := s.Normalize()
	assert.Equal(t, "Shop", n.ShopName)
	assert.Equal(t, "USD", n.Currency)
	assert.Equal(t, []string{"a", "b"}, n.HeroImages)
	assert.Equal(t, []string{}, n.OfferImages)
}
