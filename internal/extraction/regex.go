package extraction

import (
	"context"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"cloud.google.com/go/civil"
	"github.com/shopspring/decimal"

	"github.com/finanzio/statement-core/internal/category"
	"github.com/finanzio/statement-core/internal/domain"
)

// linePatterns is the ordered pattern set tried against each line. The first
// pattern that matches wins; there is no overlap resolution beyond this
// order. The YYYY-first layout sits before the day-first one so a four-digit
// leading segment is never consumed as a short date mid-token.
var linePatterns = []*regexp.Regexp{
	// YYYY/MM/DD 123.45 Description
	regexp.MustCompile(`^\s*(\d{4}/\d{1,2}/\d{1,2})\s+\$?(\d+[.,]\d{2})\s+(.+)$`),
	// DD/MM/YYYY $123.45 Description
	regexp.MustCompile(`^\s*(\d{1,2}/\d{1,2}/\d{2,4})\s+\$?(\d+[.,]\d{2})\s+(.+)$`),
	// MM-DD-YYYY 123.45 Description
	regexp.MustCompile(`^\s*(\d{1,2}-\d{1,2}-\d{2,4})\s+\$?(\d+[.,]\d{2})\s+(.+)$`),
	// Looser layout: date anywhere, amount later in the line.
	regexp.MustCompile(`(\d{1,2}[/-]\d{1,2}[/-]\d{2,4})\s+.*?\$?(\d+[.,]\d{2})\s+(.+)$`),
}

// RegexExtractor is the deterministic fallback strategy: stateless,
// line-oriented pattern matching with no category inference. Malformed lines
// are skipped silently; the format carries no sign information so every
// candidate is an expense.
type RegexExtractor struct {
	defaultCurrency string
}

// NewRegexExtractor creates a regex extractor that stamps candidates with the
// given default currency.
func NewRegexExtractor(defaultCurrency string) *RegexExtractor {
	return &RegexExtractor{defaultCurrency: defaultCurrency}
}

// Extract scans the text line by line. It fails only when the input itself is
// not usable text; individual unmatched or unparseable lines are omitted.
func (e *RegexExtractor) Extract(ctx context.Context, text string, cats *category.Index) ([]domain.CandidateTransaction, error) {
	if err := validateInput(text); err != nil {
		return nil, err
	}

	var out []domain.CandidateTransaction
	for _, line := range strings.Split(text, "\n") {
		for _, pat := range linePatterns {
			m := pat.FindStringSubmatch(line)
			if m == nil {
				continue
			}
			date, ok := parseLineDate(m[1])
			if !ok {
				continue
			}
			amount, ok := parseLineAmount(m[2])
			if !ok {
				continue
			}
			desc := strings.TrimSpace(m[3])
			if desc == "" {
				continue
			}
			out = append(out, domain.CandidateTransaction{
				Date:           date,
				Amount:         amount,
				Description:    desc,
				Kind:           domain.KindExpense,
				Currency:       e.defaultCurrency,
				SourceStrategy: domain.StrategyRegex,
			})
			break
		}
	}
	return out, nil
}

// validateInput rejects the only caller-visible failure mode: an empty or
// non-text payload.
func validateInput(text string) error {
	if strings.TrimSpace(text) == "" || !utf8.ValidString(text) {
		return ErrUnreadableInput
	}
	return nil
}

// parseLineDate resolves the three supported layouts. A slash-separated date
// with a four-digit first segment is YYYY/MM/DD, any other slash layout is
// DD/MM/YYYY, and hyphens mean MM-DD-YYYY.
func parseLineDate(tok string) (civil.Date, bool) {
	var year, month, day int
	switch {
	case strings.Contains(tok, "/"):
		parts := strings.Split(tok, "/")
		if len(parts) != 3 {
			return civil.Date{}, false
		}
		a, b, c, ok := atoi3(parts)
		if !ok {
			return civil.Date{}, false
		}
		if len(parts[0]) == 4 {
			year, month, day = a, b, c
		} else {
			day, month, year = a, b, c
		}
	case strings.Contains(tok, "-"):
		parts := strings.Split(tok, "-")
		if len(parts) != 3 {
			return civil.Date{}, false
		}
		a, b, c, ok := atoi3(parts)
		if !ok {
			return civil.Date{}, false
		}
		month, day, year = a, b, c
	default:
		return civil.Date{}, false
	}

	if year < 100 {
		year += 2000
	}
	date := civil.Date{Year: year, Month: time.Month(month), Day: day}
	if !date.IsValid() {
		return civil.Date{}, false
	}
	return date, true
}

func atoi3(parts []string) (int, int, int, bool) {
	vals := make([]int, 3)
	for i, p := range parts {
		n := 0
		if p == "" {
			return 0, 0, 0, false
		}
		for _, r := range p {
			if r < '0' || r > '9' {
				return 0, 0, 0, false
			}
			n = n*10 + int(r-'0')
		}
		vals[i] = n
	}
	return vals[0], vals[1], vals[2], true
}

// parseLineAmount strips a leading currency symbol and treats a comma as an
// alternate decimal separator, never as a thousands separator: the first
// comma becomes a period before the numeric parse.
func parseLineAmount(tok string) (decimal.Decimal, bool) {
	tok = strings.TrimLeft(tok, "$€£ ")
	tok = strings.Replace(tok, ",", ".", 1)
	amt, err := decimal.NewFromString(tok)
	if err != nil {
		return decimal.Decimal{}, false
	}
	return amt, true
}
