package scraper

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/sony/gobreaker"
	"golang.org/x/time/rate"
)

const maxBodySize = 8 << 20

// FetcherOptions configura o HTTPFetcher
type FetcherOptions struct {
	Timeout   time.Duration
	Interval  time.Duration // intervalo mínimo entre requisições
	UserAgent string
}

// HTTPFetcher busca páginas respeitando um intervalo mínimo entre requisições e
// abrindo um circuit breaker por loja quando ela começa a recusar acessos
type HTTPFetcher struct {
	client    *http.Client
	limiter   *rate.Limiter
	userAgent string

	mu       sync.Mutex
	breakers map[string]*gobreaker.CircuitBreaker
}

// NewHTTPFetcher cria um novo fetcher HTTP
func NewHTTPFetcher(opts FetcherOptions) *HTTPFetcher {
	if opts.Timeout <= 0 {
		opts.Timeout = 30 * time.Second
	}
	limit := rate.Inf
	if opts.Interval > 0 {
		limit = rate.Every(opts.Interval)
	}
	return &HTTPFetcher{
		client:    &http.Client{Timeout: opts.Timeout},
		limiter:   rate.NewLimiter(limit, 1),
		userAgent: opts.UserAgent,
		breakers:  make(map[string]*gobreaker.CircuitBreaker),
	}
}

// Fetch busca a URL e devolve o corpo da página
func (f *HTTPFetcher) Fetch(ctx context.Context, rawURL string) (*Page, error) {
	u, err := url.Parse(rawURL)
	if err != nil || u.Host == "" {
		return nil, &FetchError{URL: rawURL, Err: fmt.Errorf("URL inválida")}
	}

	if err := f.limiter.Wait(ctx); err != nil {
		return nil, &FetchError{URL: rawURL, Err: err}
	}

	body, err := f.breaker(u.Hostname()).Execute(func() (interface{}, error) {
		return f.get(ctx, rawURL)
	})
	if err != nil {
		var fe *FetchError
		if errors.As(err, &fe) {
			return nil, fe
		}
		// gobreaker.ErrOpenState e ErrTooManyRequests
		return nil, &FetchError{URL: rawURL, Err: err}
	}

	return NewPage(rawURL, body.([]byte)), nil
}

func (f *HTTPFetcher) get(ctx context.Context, rawURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, cleanURL(rawURL), nil)
	if err != nil {
		return nil, &FetchError{URL: rawURL, Err: err}
	}

	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.9,zh-HK;q=0.8")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, &FetchError{URL: rawURL, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &FetchError{URL: rawURL, StatusCode: resp.StatusCode}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, &FetchError{URL: rawURL, Err: err}
	}
	return body, nil
}

func (f *HTTPFetcher) breaker(host string) *gobreaker.CircuitBreaker {
	f.mu.Lock()
	defer f.mu.Unlock()

	if cb, ok := f.breakers[host]; ok {
		return cb
	}
	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        host,
		MaxRequests: 1,
		Timeout:     5 * time.Minute,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		// 404 de uma página de liquidação inexistente não é sinal de bloqueio
		IsSuccessful: func(err error) bool {
			var fe *FetchError
			if errors.As(err, &fe) {
				return !fe.transient()
			}
			return err == nil
		},
	})
	f.breakers[host] = cb
	return cb
}

func cleanURL(rawURL string) string {
	parts := strings.Split(rawURL, "#")
	return parts[0]
}
