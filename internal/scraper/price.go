package scraper

import (
	"bytes"
	"encoding/json"
	"regexp"
	"strconv"
	"strings"
)

var nonPriceChars = regexp.MustCompile(`[^0-9.,]`)

// parsePrice converte textos como "$98.00", "HK$ 1,090" ou "1.090,50" em número
func parsePrice(text string) (float64, bool) {
	clean := nonPriceChars.ReplaceAllString(text, "")
	if clean == "" {
		return 0, false
	}

	lastDot := strings.LastIndex(clean, ".")
	lastComma := strings.LastIndex(clean, ",")
	switch {
	case lastDot >= 0 && lastComma >= 0:
		// O último separador é o decimal
		if lastComma > lastDot {
			clean = strings.ReplaceAll(clean, ".", "")
			clean = strings.Replace(clean, ",", ".", 1)
		} else {
			clean = strings.ReplaceAll(clean, ",", "")
		}
	case lastComma >= 0:
		if len(clean)-lastComma-1 == 2 && strings.Count(clean, ",") == 1 {
			clean = strings.Replace(clean, ",", ".", 1)
		} else {
			clean = strings.ReplaceAll(clean, ",", "")
		}
	case strings.Count(clean, ".") > 1:
		clean = strings.ReplaceAll(clean, ".", "")
	}

	price, err := strconv.ParseFloat(clean, 64)
	if err != nil || price <= 0 {
		return 0, false
	}
	return price, true
}

// flexPrice aceita preços como número, texto ou null no JSON
type flexPrice struct {
	Value float64
	Valid bool
}

func (p *flexPrice) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || string(data) == "null" {
		*p = flexPrice{}
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		p.Value, p.Valid = parsePrice(s)
		return nil
	}
	var f float64
	if err := json.Unmarshal(data, &f); err != nil {
		return err
	}
	p.Value, p.Valid = f, f > 0
	return nil
}

// priceFromAny lê um preço de um valor JSON genérico
func priceFromAny(v any) (float64, bool) {
	switch t := v.(type) {
	case float64:
		return t, t > 0
	case string:
		return parsePrice(t)
	case json.Number:
		f, err := t.Float64()
		return f, err == nil && f > 0
	}
	return 0, false
}
