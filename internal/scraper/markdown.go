package scraper

import (
	"net/url"
	"strings"
)

const (
	markdownSuffix  = "-MD"
	markdownSegment = "md"
)

// MarkdownURL deriva a URL da listagem de liquidação a partir da página normal.
// O segmento antes de "/_/" ganha o sufixo "-MD"; sem esse marcador, um segmento "md" é
// inserido antes do último. Query e fragmento são descartados.
func MarkdownURL(rawURL string) (string, bool) {
	u, err := url.Parse(rawURL)
	if err != nil || u.Host == "" {
		return "", false
	}
	segs := strings.Split(strings.Trim(u.Path, "/"), "/")
	if len(segs) == 0 || segs[0] == "" {
		return "", false
	}

	if i := indexOf(segs, "_"); i > 0 {
		if strings.HasSuffix(segs[i-1], markdownSuffix) {
			return "", false
		}
		segs[i-1] += markdownSuffix
	} else {
		if indexOf(segs, markdownSegment) >= 0 {
			return "", false
		}
		last := len(segs) - 1
		segs = append(segs[:last], markdownSegment, segs[last])
	}

	u.Path = "/" + strings.Join(segs, "/")
	u.RawQuery = ""
	u.Fragment = ""
	return u.String(), true
}

// IsMarkdownURL informa se a URL já aponta para uma listagem de liquidação
func IsMarkdownURL(rawURL string) bool {
	u, err := url.Parse(rawURL)
	if err != nil {
		return false
	}
	for _, seg := range strings.Split(strings.Trim(u.Path, "/"), "/") {
		if seg == markdownSegment || strings.HasSuffix(seg, markdownSuffix) {
			return true
		}
	}
	return false
}

// DestinationURL monta a URL da variante na página de liquidação usando os
// identificadores devolvidos pela própria página de liquidação
func DestinationURL(markdownURL, productID, colorCode, size string) string {
	u, err := url.Parse(markdownURL)
	if err != nil {
		return markdownURL
	}
	if productID != "" {
		segs := strings.Split(strings.Trim(u.Path, "/"), "/")
		segs[len(segs)-1] = productID
		u.Path = "/" + strings.Join(segs, "/")
	}
	q := url.Values{}
	if colorCode != "" {
		q.Set("color", colorCode)
	}
	if size != "" {
		q.Set("sz", size)
	}
	u.RawQuery = q.Encode()
	u.Fragment = ""
	return u.String()
}

func indexOf(segs []string, target string) int {
	for i, s := range segs {
		if s == target {
			return i
		}
	}
	return -1
}
