package checkout

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	textcatalog "golang.org/x/text/message/catalog"
)

// Message keys. English text doubles as the key.
const (
	keyHeader = "New order from %s"
	keyHot    = "Hot"
	keyCold   = "Cold"
	keyTotal  = "Total"
)

var supportedLocales = []language.Tag{
	language.English, // first entry is the fallback
	language.Arabic,
	language.Indonesian,
}

var (
	localeMatcher = language.NewMatcher(supportedLocales)
	labelCatalog  = buildLabelCatalog()
)

func buildLabelCatalog() *textcatalog.Builder {
	b := textcatalog.NewBuilder(textcatalog.Fallback(language.English))

	set := func(tag language.Tag, key, msg string) {
		// SetString only fails on malformed messages, which these constants are not
		_ = b.SetString(tag, key, msg)
	}

	set(language.English, keyHeader, "New order from %s")
	set(language.English, keyHot, "Hot")
	set(language.English, keyCold, "Cold")
	set(language.English, keyTotal, "Total")

	set(language.Arabic, keyHeader, "طلب جديد من %s")
	set(language.Arabic, keyHot, "حار")
	set(language.Arabic, keyCold, "بارد")
	set(language.Arabic, keyTotal, "الإجمالي")

	set(language.Indonesian, keyHeader, "Pesanan baru dari %s")
	set(language.Indonesian, keyHot, "Panas")
	set(language.Indonesian, keyCold, "Dingin")
	set(language.Indonesian, keyTotal, "Total")

	return b
}

// Labels are the localized strings used when rendering an order message
type Labels struct {
	Locale language.Tag
	Hot    string
	Cold   string
	Total  string
}

// Header renders the message title for the shop
func (l Labels) Header(shopName string) string {
	return message.NewPrinter(l.Locale, message.Catalog(labelCatalog)).Sprintf(keyHeader, shopName)
}

// LabelsFor resolves a locale string such as "ar" or "en-US" to labels.
// Unknown or malformed locales fall back to English.
func LabelsFor(locale string) Labels {
	tag := language.English
	if parsed, err := language.Parse(locale); err == nil {
		_, idx, confidence := localeMatcher.Match(parsed)
		if confidence != language.No {
			tag = supportedLocales[idx]
		}
	}

	p := message.NewPrinter(tag, message.Catalog(labelCatalog))
	return Labels{
		Locale: tag,
		Hot:    p.Sprintf(keyHot),
		Cold:   p.Sprintf(keyCold),
		Total:  p.Sprintf(keyTotal),
	}
}
