// Package render substitutes {name} tokens in email templates with
// type-aware formatting. It is pure: no store, no transport, no clock.
package render

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"

	"viagens-crm/internal/domain"
)

var tokenPattern = regexp.MustCompile(`\{([a-zA-Z0-9_]+)\}`)

var monthsPtBR = [...]string{
	"janeiro", "fevereiro", "março", "abril", "maio", "junho",
	"julho", "agosto", "setembro", "outubro", "novembro", "dezembro",
}

var currencySymbols = map[string]string{
	"BRL": "R$",
	"USD": "US$",
	"EUR": "€",
}

const DefaultCurrency = "BRL"

// Render fills every {name} token in subject, HTML and text content.
// Tokens without a matching variable become empty strings; Render never
// fails and always returns the same output for the same inputs.
func Render(tpl *domain.EmailTemplate, vars map[string]any) domain.RenderedEmail {
	currency := DefaultCurrency
	if c, ok := vars["currency"].(string); ok && c != "" {
		currency = c
	}

	substitute := func(content string) string {
		return tokenPattern.ReplaceAllStringFunc(content, func(token string) string {
			name := token[1 : len(token)-1]
			value, ok := vars[name]
			if !ok {
				return ""
			}
			return formatValue(name, value, currency)
		})
	}

	return domain.RenderedEmail{
		Subject: substitute(tpl.Subject),
		HTML:    substitute(tpl.HTMLContent),
		Text:    substitute(tpl.TextContent),
	}
}

// SampleVariables builds placeholder values for every declared template
// variable, used by the preview endpoint when the caller supplies none.
func SampleVariables(tpl *domain.EmailTemplate) map[string]any {
	vars := make(map[string]any, len(tpl.AvailableVars))
	for _, name := range tpl.AvailableVars {
		switch {
		case isCurrencyKey(name):
			vars[name] = 1500.0
		case strings.Contains(strings.ToLower(name), "date") || strings.HasSuffix(name, "Em"):
			vars[name] = time.Date(2026, time.January, 15, 0, 0, 0, 0, time.UTC)
		default:
			vars[name] = "[" + name + "]"
		}
	}
	return vars
}

func formatValue(name string, value any, currency string) string {
	if value == nil {
		return ""
	}

	if t, ok := asTime(value); ok {
		return formatLongDate(t)
	}

	if f, ok := asNumber(value); ok {
		if isCurrencyKey(name) {
			return formatCurrency(f, currency)
		}
		return formatNumber(f)
	}

	switch v := value.(type) {
	case string:
		return v
	case bool:
		if v {
			return "sim"
		}
		return "não"
	case []string:
		return strings.Join(v, ", ")
	case []any:
		parts := make([]string, 0, len(v))
		for _, item := range v {
			parts = append(parts, formatValue(name, item, currency))
		}
		return strings.Join(parts, ", ")
	default:
		return fmt.Sprintf("%v", v)
	}
}

// isCurrencyKey matches the keys the CRM uses for money fields, in both
// English and Portuguese spellings.
func isCurrencyKey(name string) bool {
	lower := strings.ToLower(name)
	for _, marker := range []string{"amount", "balance", "value", "valor", "saldo"} {
		if strings.Contains(lower, marker) {
			return true
		}
	}
	return false
}

func asTime(value any) (time.Time, bool) {
	switch v := value.(type) {
	case time.Time:
		return v, true
	case *time.Time:
		if v == nil {
			return time.Time{}, false
		}
		return *v, true
	case string:
		// Variables round-trip through JSONB, so dates arrive as strings.
		for _, layout := range []string{time.RFC3339, "2006-01-02"} {
			if t, err := time.Parse(layout, v); err == nil {
				return t, true
			}
		}
	}
	return time.Time{}, false
}

func asNumber(value any) (float64, bool) {
	switch v := value.(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int32:
		return float64(v), true
	case int64:
		return float64(v), true
	case string:
		if f, err := strconv.ParseFloat(strings.TrimSpace(v), 64); err == nil {
			return f, true
		}
	}
	return 0, false
}

func formatLongDate(t time.Time) string {
	return fmt.Sprintf("%d de %s de %d", t.Day(), monthsPtBR[t.Month()-1], t.Year())
}

func formatCurrency(f float64, currency string) string {
	symbol, ok := currencySymbols[strings.ToUpper(currency)]
	if !ok {
		symbol = strings.ToUpper(currency)
	}
	return symbol + " " + groupDigits(f)
}

func formatNumber(f float64) string {
	if f == math.Trunc(f) {
		return strconv.FormatInt(int64(f), 10)
	}
	return strings.Replace(strconv.FormatFloat(f, 'f', -1, 64), ".", ",", 1)
}

// groupDigits renders a value with pt-BR separators: thousands with '.',
// decimals with ',' and always two decimal places.
func groupDigits(f float64) string {
	negative := f < 0
	if negative {
		f = -f
	}

	fixed := strconv.FormatFloat(f, 'f', 2, 64)
	parts := strings.SplitN(fixed, ".", 2)
	intPart, decPart := parts[0], parts[1]

	var b strings.Builder
	if negative {
		b.WriteByte('-')
	}
	for i, digit := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteByte('.')
		}
		b.WriteRune(digit)
	}
	b.WriteByte(',')
	b.WriteString(decPart)
	return b.String()
}
