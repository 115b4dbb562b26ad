// Package settings models the storefront's shop configuration singleton.
package settings

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/brewline/storefront/internal/domain/shared"
	"github.com/brewline/storefront/internal/domain/shared/valueobject"
	"golang.org/x/text/language"
)

var (
	hexColorPattern = regexp.MustCompile(`^#([0-9a-fA-F]{3}|[0-9a-fA-F]{6})$`)
	nonDigits       = regexp.MustCompile(`[^0-9]`)
)

// SocialLinks holds the shop's public profile links
type SocialLinks struct {
	Instagram string `json:"instagram"`
	TikTok    string `json:"tiktok"`
	Facebook  string `json:"facebook"`
	X         string `json:"x"`
	Maps      string `json:"maps"`
}

// SiteSettings is the shop configuration shown to customers.
// It never carries integration credentials; those are server configuration.
type SiteSettings struct {
	ShopName       string      `json:"shop_name"`
	Tagline        string      `json:"tagline"`
	ThemeColor     string      `json:"theme_color"`
	LogoURL        string      `json:"logo_url"`
	HeroImages     []string    `json:"hero_images"`
	OfferImages    []string    `json:"offer_images"`
	Social         SocialLinks `json:"social"`
	WhatsAppNumber string      `json:"whatsapp_number"`
	Currency       string      `json:"currency"`
	Locale         string      `json:"locale"`
	Address        string      `json:"address"`
	OpeningHours   string      `json:"opening_hours"`
}

// Defaults returns the built-in settings used for fresh installations
func Defaults() SiteSettings {
	return SiteSettings{
		ShopName:     "Coffee Shop",
		Tagline:      "Freshly brewed, every day",
		ThemeColor:   "#6F4E37",
		HeroImages:   []string{},
		OfferImages:  []string{},
		Currency:     string(valueobject.DefaultCurrency),
		Locale:       "en",
		OpeningHours: "08:00 - 23:00",
	}
}

// Normalize trims text fields and replaces nil lists with empty ones,
// so a saved object reloads to the same value.
func (s SiteSettings) Normalize() SiteSettings {
	s.ShopName = strings.TrimSpace(s.ShopName)
	s.Tagline = strings.TrimSpace(s.Tagline)
	s.ThemeColor = strings.TrimSpace(s.ThemeColor)
	s.LogoURL = strings.TrimSpace(s.LogoURL)
	s.WhatsAppNumber = strings.TrimSpace(s.WhatsAppNumber)
	s.Currency = strings.ToUpper(strings.TrimSpace(s.Currency))
	s.Locale = strings.TrimSpace(s.Locale)
	s.HeroImages = cleanList(s.HeroImages)
	s.OfferImages = cleanList(s.OfferImages)
	return s
}

// Validate checks the fields a customer-facing page depends on
func (s SiteSettings) Validate() error {
	if s.ShopName == "" {
		return shared.NewDomainError("INVALID_SHOP_NAME", "Shop name cannot be empty")
	}
	if utf8.RuneCountInString(s.ShopName) > 100 {
		return shared.NewDomainError("INVALID_SHOP_NAME", "Shop name cannot exceed 100 characters")
	}
	if s.ThemeColor != "" && !hexColorPattern.MatchString(s.ThemeColor) {
		return shared.NewDomainError("INVALID_THEME_COLOR", "Theme color must be a hex color such as #6F4E37")
	}
	if _, err := valueobject.ParseCurrency(s.Currency); err != nil {
		return shared.WrapDomainError("INVALID_CURRENCY", "Currency must be an ISO 4217 code", err)
	}
	if s.Locale != "" {
		if _, err := language.Parse(s.Locale); err != nil {
			return shared.WrapDomainError("INVALID_LOCALE", "Locale must be a BCP 47 language tag", err)
		}
	}
	if s.WhatsAppNumber != "" {
		digits := nonDigits.ReplaceAllString(s.WhatsAppNumber, "")
		if len(digits) < 7 || len(digits) > 15 {
			return shared.NewDomainError("INVALID_WHATSAPP_NUMBER", "WhatsApp number must contain 7 to 15 digits")
		}
	}
	return nil
}

// CurrencyCode returns the configured currency, or the default when unset or invalid
func (s SiteSettings) CurrencyCode() valueobject.Currency {
	c, err := valueobject.ParseCurrency(s.Currency)
	if err != nil {
		return valueobject.DefaultCurrency
	}
	return c
}

func cleanList(items []string) []string {
	out := make([]string, 0, len(items))
	for _, item := range items {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
