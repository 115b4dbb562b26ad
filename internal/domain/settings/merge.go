package settings

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
)

// StoredSettings is the persisted shape of SiteSettings.
// Pointer fields distinguish "absent in the blob" from "present but empty",
// which lets blobs written by older versions pick up newer defaults.
type StoredSettings struct {
	ShopName       *string            `json:"shop_name"`
	Tagline        *string            `json:"tagline"`
	ThemeColor     *string            `json:"theme_color"`
	LogoURL        *string            `json:"logo_url"`
	HeroImages     *[]string          `json:"hero_images"`
	OfferImages    *[]string          `json:"offer_images"`
	Social         *StoredSocialLinks `json:"social"`
	WhatsAppNumber *string            `json:"whatsapp_number"`
	Currency       *string            `json:"currency"`
	Locale         *string            `json:"locale"`
	Address        *string            `json:"address"`
	OpeningHours   *string            `json:"opening_hours"`
}

// StoredSocialLinks is the persisted shape of SocialLinks
type StoredSocialLinks struct {
	Instagram *string `json:"instagram"`
	TikTok    *string `json:"tiktok"`
	Facebook  *string `json:"facebook"`
	X         *string `json:"x"`
	Maps      *string `json:"maps"`
}

// Merge overlays every field present in stored onto base, one field at a time
func Merge(base SiteSettings, stored StoredSettings) SiteSettings {
	out := base
	out.HeroImages = append([]string{}, base.HeroImages...)
	out.OfferImages = append([]string{}, base.OfferImages...)

	pickString(&out.ShopName, stored.ShopName)
	pickString(&out.Tagline, stored.Tagline)
	pickString(&out.ThemeColor, stored.ThemeColor)
	pickString(&out.LogoURL, stored.LogoURL)
	pickList(&out.HeroImages, stored.HeroImages)
	pickList(&out.OfferImages, stored.OfferImages)
	pickString(&out.WhatsAppNumber, stored.WhatsAppNumber)
	pickString(&out.Currency, stored.Currency)
	pickString(&out.Locale, stored.Locale)
	pickString(&out.Address, stored.Address)
	pickString(&out.OpeningHours, stored.OpeningHours)

	if s := stored.Social; s != nil {
		pickString(&out.Social.Instagram, s.Instagram)
		pickString(&out.Social.TikTok, s.TikTok)
		pickString(&out.Social.Facebook, s.Facebook)
		pickString(&out.Social.X, s.X)
		pickString(&out.Social.Maps, s.Maps)
	}
	return out
}

// Stored converts complete settings into the persisted shape
func (s SiteSettings) Stored() StoredSettings {
	s = s.Normalize()
	return StoredSettings{
		ShopName:       &s.ShopName,
		Tagline:        &s.Tagline,
		ThemeColor:     &s.ThemeColor,
		LogoURL:        &s.LogoURL,
		HeroImages:     &s.HeroImages,
		OfferImages:    &s.OfferImages,
		WhatsAppNumber: &s.WhatsAppNumber,
		Currency:       &s.Currency,
		Locale:         &s.Locale,
		Address:        &s.Address,
		OpeningHours:   &s.OpeningHours,
		Social: &StoredSocialLinks{
			Instagram: &s.Social.Instagram,
			TikTok:    &s.Social.TikTok,
			Facebook:  &s.Social.Facebook,
			X:         &s.Social.X,
			Maps:      &s.Social.Maps,
		},
	}
}

// Decode parses a persisted settings blob.
// It also reports the names of credential-like keys that older versions
// stored alongside the settings; those values are never decoded.
func Decode(data []byte) (StoredSettings, []string, error) {
	var stored StoredSettings
	if err := json.Unmarshal(data, &stored); err != nil {
		return StoredSettings{}, nil, fmt.Errorf("failed to decode settings: %w", err)
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return StoredSettings{}, nil, fmt.Errorf("failed to decode settings keys: %w", err)
	}

	var legacy []string
	for key := range raw {
		if isCredentialKey(key) {
			legacy = append(legacy, key)
		}
	}
	sort.Strings(legacy)

	return stored, legacy, nil
}

// Encode serializes settings into the persisted shape
func Encode(s SiteSettings) ([]byte, error) {
	data, err := json.Marshal(s.Stored())
	if err != nil {
		return nil, fmt.Errorf("failed to encode settings: %w", err)
	}
	return data, nil
}

var credentialMarkers = []string{"apikey", "api_key", "secret", "token", "password", "credential"}

func isCredentialKey(key string) bool {
	k := strings.ToLower(key)
	for _, marker := range credentialMarkers {
		if strings.Contains(k, marker) {
			return true
		}
	}
	return false
}

func pickString(dst *string, src *string) {
	if src != nil {
		*dst = *src
	}
}

func pickList(dst *[]string, src *[]string) {
	if src != nil && *src != nil {
		*dst = append([]string{}, (*src)...)
	}
}
