package sysprobe

import (
	"fmt"
	"os"
	"strings"

	"golang.org/x/text/currency"
	"golang.org/x/text/language"
)

// LocaleInfo describes the process locale environment.
type LocaleInfo struct {
	Language string
	Encoding string
	Currency string

	// TimeFormat and DateFormat show the current clock rendered in the
	// conventional short forms.
	TimeFormat string
	DateFormat string
}

// Locale reports the locale visible to this process, derived from the
// LC_ALL / LC_MESSAGES / LANG environment chain. Fields that cannot be
// determined read "Unknown".
func (h *Host) Locale() *LocaleInfo {
	lang, encoding := parseLocaleEnv(
		os.Getenv("LC_ALL"),
		os.Getenv("LC_MESSAGES"),
		os.Getenv("LANG"),
	)

	now := h.now()
	return &LocaleInfo{
		Language:   orUnknown(lang),
		Encoding:   orUnknown(encoding),
		Currency:   currencySymbol(lang),
		TimeFormat: now.Format("15:04:05"),
		DateFormat: now.Format("01/02/06"),
	}
}

// parseLocaleEnv splits the first non-empty locale value into language
// and encoding parts. "en_US.UTF-8@euro" yields ("en_US", "UTF-8").
// The C and POSIX locales carry no language information.
func parseLocaleEnv(values ...string) (lang, encoding string) {
	for _, v := range values {
		if v == "" {
			continue
		}
		if v == "C" || v == "POSIX" {
			return "", ""
		}
		if at := strings.IndexByte(v, '@'); at >= 0 {
			v = v[:at]
		}
		if dot := strings.IndexByte(v, '.'); dot >= 0 {
			return v[:dot], v[dot+1:]
		}
		return v, ""
	}
	return "", ""
}

// currencySymbol maps a locale like "fr_FR" to its currency symbol
// via the CLDR data in x/text.
func currencySymbol(locale string) string {
	if locale == "" {
		return "Unknown"
	}
	tag, err := language.Parse(strings.ReplaceAll(locale, "_", "-"))
	if err != nil {
		return "Unknown"
	}
	unit, confidence := currency.FromTag(tag)
	if confidence == language.No {
		return "Unknown"
	}
	return fmt.Sprint(currency.Symbol(unit))
}

func orUnknown(s string) string {
	if s == "" {
		return "Unknown"
	}
	return s
}
