package extraction

import (
	"encoding/json"
	"errors"
	"strings"
	"time"

	"cloud.google.com/go/civil"
	"github.com/shopspring/decimal"
)

// decodeTransactions turns raw model output into a list of loosely typed
// items. It is a small state machine: strict parse of the cleaned text, then
// a substring-recovery attempt on the original, then ParseError.
func decodeTransactions(raw string) ([]map[string]interface{}, error) {
	clean := cleanModelJSON(raw)

	var parsed interface{}
	if err := json.Unmarshal([]byte(clean), &parsed); err == nil {
		if items, ok := itemsFrom(parsed); ok {
			return items, nil
		}
	}

	// Second chance: the model wrapped its JSON in prose. Look for a {...}
	// span that carries the "transactions" token and retry on that.
	span, ok := recoverTransactionsSpan(raw)
	if ok {
		if err := json.Unmarshal([]byte(span), &parsed); err == nil {
			if items, ok := itemsFrom(parsed); ok {
				return items, nil
			}
		}
	}

	return nil, &ParseError{Stage: "recovery", Err: errors.New("no transactions structure in model response")}
}

// cleanModelJSON strips Markdown fences and surrounding prose the model may
// have added despite the JSON response constraint.
func cleanModelJSON(raw string) string {
	s := strings.TrimSpace(raw)

	// Handle ```json ... ``` or ``` ... ``` wrappers.
	if strings.HasPrefix(s, "```") {
		if idx := strings.Index(s, "\n"); idx != -1 {
			s = s[idx+1:]
		} else {
			return s
		}
		s = strings.TrimSpace(s)
		if idx := strings.LastIndex(s, "```"); idx != -1 {
			s = s[:idx]
		}
		s = strings.TrimSpace(s)
	}

	// If junk still surrounds the JSON value, keep only the outermost
	// object or array span.
	objStart := strings.Index(s, "{")
	arrStart := strings.Index(s, "[")
	switch {
	case objStart != -1 && (arrStart == -1 || objStart < arrStart):
		if end := strings.LastIndex(s, "}"); end > objStart {
			s = s[objStart : end+1]
		}
	case arrStart != -1:
		if end := strings.LastIndex(s, "]"); end > arrStart {
			s = s[arrStart : end+1]
		}
	}

	return strings.TrimSpace(s)
}

// recoverTransactionsSpan extracts a best-effort {...} substring containing
// the "transactions" key from a response that failed the strict parse.
func recoverTransactionsSpan(raw string) (string, bool) {
	idx := strings.Index(raw, `"transactions"`)
	if idx == -1 {
		return "", false
	}
	start := strings.LastIndex(raw[:idx], "{")
	if start == -1 {
		return "", false
	}
	objEnd := strings.LastIndex(raw, "}")
	arrEnd := strings.LastIndex(raw, "]")
	switch {
	case objEnd > idx && objEnd > arrEnd:
		return raw[start : objEnd+1], true
	case arrEnd > idx:
		// The closing brace got cut off but the array survived.
		return raw[start:arrEnd+1] + "}", true
	}
	return "", false
}

// itemsFrom accepts the response shapes seen in the wild: a bare array, or
// an object keyed by "transactions" or "data".
func itemsFrom(parsed interface{}) ([]map[string]interface{}, bool) {
	var list []interface{}
	switch v := parsed.(type) {
	case []interface{}:
		list = v
	case map[string]interface{}:
		if txs, ok := v["transactions"].([]interface{}); ok {
			list = txs
		} else if data, ok := v["data"].([]interface{}); ok {
			list = data
		} else {
			return nil, false
		}
	default:
		return nil, false
	}

	items := make([]map[string]interface{}, 0, len(list))
	for _, el := range list {
		if m, ok := el.(map[string]interface{}); ok {
			items = append(items, m)
		}
	}
	return items, true
}

func stringField(m map[string]interface{}, key string) (string, bool) {
	v, ok := m[key]
	if !ok || v == nil {
		return "", false
	}
	s, ok := v.(string)
	if !ok {
		return "", false
	}
	s = strings.TrimSpace(s)
	if s == "" {
		return "", false
	}
	return s, true
}

// amountField accepts both JSON numbers and numeric strings, which models
// produce interchangeably.
func amountField(m map[string]interface{}, key string) (decimal.Decimal, bool) {
	v, ok := m[key]
	if !ok || v == nil {
		return decimal.Decimal{}, false
	}
	switch val := v.(type) {
	case float64:
		return decimal.NewFromFloat(val), true
	case string:
		d, err := decimal.NewFromString(strings.TrimSpace(val))
		if err != nil {
			return decimal.Decimal{}, false
		}
		return d, true
	default:
		return decimal.Decimal{}, false
	}
}

// dateField parses an ISO calendar date, tolerating a trailing time
// component.
func dateField(m map[string]interface{}, key string) (civil.Date, bool) {
	s, ok := stringField(m, key)
	if !ok {
		return civil.Date{}, false
	}
	if len(s) > 10 {
		s = s[:10]
	}
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return civil.Date{}, false
	}
	return civil.DateOf(t), true
}
