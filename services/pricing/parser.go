package pricing

import (
	"bytes"
	"errors"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/shopspring/decimal"
)

var (
	ErrSelectorNotFound = errors.New("price selector matched nothing")
	ErrPriceNotParsed   = errors.New("price text could not be parsed")
)

// ParsePrice extracts the price from the first element matching selector.
// The content attribute wins over text, which covers <meta itemprop="price">.
func ParsePrice(html []byte, selector string) (decimal.Decimal, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(html))
	if err != nil {
		return decimal.Zero, fmt.Errorf("parse html: %w", err)
	}
	sel := doc.Find(selector).First()
	if sel.Length() == 0 {
		return decimal.Zero, fmt.Errorf("%w: %s", ErrSelectorNotFound, selector)
	}
	text, ok := sel.Attr("content")
	if !ok || strings.TrimSpace(text) == "" {
		text = sel.Text()
	}
	return ParsePriceText(text)
}

// ParsePriceText normalizes store price strings such as "1 299,90 ₽",
// "$1,299.90" or "1.299.000" into a decimal.
func ParsePriceText(text string) (decimal.Decimal, error) {
	var b strings.Builder
	started := false
scan:
	for _, r := range text {
		switch {
		case r >= '0' && r <= '9':
			started = true
			b.WriteRune(r)
		case r == ',' || r == '.':
			if started {
				b.WriteRune(r)
			}
		case r == ' ' || r == '\u00a0' || r == '\u202f' || r == '\'':
			// thousands separators
		default:
			if started {
				break scan
			}
		}
	}
	raw := strings.TrimRight(b.String(), ".,")
	if raw == "" {
		return decimal.Zero, fmt.Errorf("%w: %q", ErrPriceNotParsed, text)
	}

	normalized := normalizeSeparators(raw)
	price, err := decimal.NewFromString(normalized)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: %q", ErrPriceNotParsed, text)
	}
	return price, nil
}

func normalizeSeparators(raw string) string {
	lastComma := strings.LastIndex(raw, ",")
	lastDot := strings.LastIndex(raw, ".")

	switch {
	case lastComma >= 0 && lastDot >= 0:
		if lastComma > lastDot {
			return strings.Replace(strings.ReplaceAll(raw, ".", ""), ",", ".", 1)
		}
		return strings.ReplaceAll(raw, ",", "")
	case lastComma >= 0:
		return decimalOrGrouping(raw, ",")
	case lastDot >= 0:
		return decimalOrGrouping(raw, ".")
	}
	return raw
}

// decimalOrGrouping treats a single separator followed by one or two digits
// as the decimal point and anything else as digit grouping.
func decimalOrGrouping(raw, sep string) string {
	if strings.Count(raw, sep) == 1 {
		idx := strings.Index(raw, sep)
		if frac := len(raw) - idx - 1; frac > 0 && frac <= 2 {
			return strings.Replace(raw, sep, ".", 1)
		}
	}
	return strings.ReplaceAll(raw, sep, "")
}
