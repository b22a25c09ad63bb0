package scraper

import (
	"net/url"
	"strings"
)

// Parâmetros de query que apenas selecionam a variante dentro da mesma página
var variantParams = []string{"color", "colour", "sz", "size", "variant"}

// IdentityFromURL extrai cor e tamanho dos parâmetros de query.
// Serve só para identidade, nunca para preço ou estoque.
func IdentityFromURL(rawURL string) Hints {
	u, err := url.Parse(rawURL)
	if err != nil {
		return Hints{}
	}
	q := u.Query()
	return Hints{
		ColorCode: firstParam(q, "color", "colour"),
		Size:      firstParam(q, "sz", "size"),
	}
}

// withURLIdentity completa as dicas ausentes com os parâmetros da URL
func (h Hints) withURLIdentity(rawURL string) Hints {
	fromURL := IdentityFromURL(rawURL)
	if h.ColorCode == "" {
		h.ColorCode = fromURL.ColorCode
	}
	if h.Size == "" {
		h.Size = fromURL.Size
	}
	return h
}

// PageKey identifica a página subjacente: a URL sem fragmento e sem os parâmetros de
// variante. Variantes da mesma página compartilham a chave.
func PageKey(rawURL string) string {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		return cleanURL(rawURL)
	}
	u.Fragment = ""
	u.Host = strings.ToLower(u.Host)
	q := u.Query()
	for _, p := range variantParams {
		q.Del(p)
	}
	u.RawQuery = q.Encode()
	u.Path = strings.TrimRight(u.Path, "/")
	return u.String()
}

func firstParam(q url.Values, keys ...string) string {
	for _, k := range keys {
		if v := strings.TrimSpace(q.Get(k)); v != "" {
			return v
		}
	}
	return ""
}
