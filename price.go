package unscraper

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// UnknownCurrency labels price values with no recognizable currency token.
const UnknownCurrency = "Unknown"

// currencyRe matches currency symbols and ISO codes. Alternation order
// matters: the leftmost match wins and, at equal positions, the earlier
// alternative.
var currencyRe = regexp.MustCompile(`(?i)(\$|€|£|¥|₹|₽|₺|₩|₪|₫|฿|₦|₴|؋|Ar|R|Br|лв|៛|₡|₲|₵|Kč|kr|£|Q|Ft|Rp|﷼|J\$|₭|ден|₮|MT|₦|C\$|P|S/|₨|₱|zł|lei|руб|RSD|₸|₭|DB|Bs|TSh|₸|₾|USD|EUR|GBP|JPY|AUD|CAD|CNY|INR|RUB|TRY|KRW|ILS|VND|THB|NGN|BRL|ZAR|HKD|SGD|MYR|MXN|PHP|PLN|IDR|SAR|EGP|CHF|NOK|SEK|NZD|DKK|AED|KWD|ARS|COP|PEN|CLP|UAH|GHS|AOA|BHD|BWP|GIP|LKR|MVR|MUR|NAD|PGK|TOP|UYU|WST|YER|AFN|ALL|DZD|AOA|XCD|AMD|AWG|AZN|BSD|BHD|BDT|BBD|BYN|BZD|BMD|BOB|BAM|BWP|BND|BGN|BIF|CVE|KHR|XAF|XPF|KYD|KMF|XAF|CLF|KPW|CRC|CUP|DOP|DJF|XCD|ERN|SZL|ETB|FJD|GMD|XAU|XAG|XPT|XPD|GYD|HTG|HUF|IRR|IQD|ISK|JOD|KZT|KGS|LAK|LBP|LSL|LRD|LYD|MGA|MKD|MMK|MNT|MAD|MZN|NIO|OMR|PKR|PYG|QAR|RON|RWF|STD|SCR|SLL|SBD|SOS|SSP|SDG|SRD|SYP|TJS|TMT|TND|UGX|UZS|VEF|VUV|XOF|ZMW|ZWL)`)

var (
	nonNumericRe = regexp.MustCompile(`[^0-9,.]`)
	canonicalRe  = regexp.MustCompile(`^Price \(.+\)$`)
)

// DetectCurrency returns the first currency token found in s, as written,
// or UnknownCurrency.
func DetectCurrency(s string) string {
	if m := currencyRe.FindString(s); m != "" {
		return m
	}
	return UnknownCurrency
}

// ParsePrice converts a formatted price to a number. Commas are treated as
// decimal separators and every period except the last is dropped as a
// thousands separator, so "$1,234.56" parses as 1234.56.
func ParsePrice(s string) (float64, bool) {
	cleaned := nonNumericRe.ReplaceAllString(s, "")
	cleaned = strings.ReplaceAll(cleaned, ",", ".")
	if n := strings.Count(cleaned, "."); n > 1 {
		cleaned = strings.Replace(cleaned, ".", "", n-1)
	}
	f, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

// PriceFields returns the fields of row whose name contains "price",
// ignoring case, excluding fields already in canonical "Price (<label>)"
// form.
func PriceFields(row Record) []string {
	var fields []string
	for _, k := range Columns([]Record{row}) {
		if canonicalRe.MatchString(k) {
			continue
		}
		if strings.Contains(strings.ToLower(k), "price") {
			fields = append(fields, k)
		}
	}
	return fields
}

// NormalizePrices replaces every price field, detected from the first row,
// with a "Price (<currency>)" field holding the parsed number or the
// original value when parsing fails. Rows are copied, never mutated. A
// second pass over its own output is a no-op.
func NormalizePrices(rows []Record) []Record {
	if len(rows) == 0 {
		return rows
	}

	fields := PriceFields(rows[0])
	out := make([]Record, len(rows))
	for i, row := range rows {
		r := row.Clone()
		for _, field := range fields {
			v, ok := r[field]
			if !ok {
				continue
			}
			raw := valueString(v)
			var value any = v
			if f, ok := ParsePrice(raw); ok {
				value = f
			}
			delete(r, field)
			r["Price ("+DetectCurrency(raw)+")"] = value
		}
		out[i] = r
	}
	return out
}

func valueString(v any) string {
	switch v := v.(type) {
	case nil:
		return ""
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	default:
		return fmt.Sprint(v)
	}
}
