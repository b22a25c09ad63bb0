package monitor

import (
	"context"
	"encoding/json"
	"errors"
	"sync"

	"bot-variantes/internal/models"
	"bot-variantes/internal/notifier"
	"bot-variantes/internal/scraper"
)

type fakeFetcher struct {
	mu    sync.Mutex
	pages map[string]string
	errs  map[string]error
	calls map[string]int
}

func newFakeFetcher() *fakeFetcher {
	return &fakeFetcher{
		pages: make(map[string]string),
		errs:  make(map[string]error),
		calls: make(map[string]int),
	}
}

func (f *fakeFetcher) serve(rawURL, body string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.pages[scraper.PageKey(rawURL)] = body
}

func (f *fakeFetcher) fail(rawURL string, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.errs[scraper.PageKey(rawURL)] = err
}

func (f *fakeFetcher) Fetch(ctx context.Context, rawURL string) (*scraper.Page, error) {
	key := scraper.PageKey(rawURL)
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls[key]++
	if err := f.errs[key]; err != nil {
		return nil, err
	}
	body, ok := f.pages[key]
	if !ok {
		return nil, &scraper.FetchError{URL: rawURL, StatusCode: 404}
	}
	return scraper.NewPage(rawURL, []byte(body)), nil
}

func (f *fakeFetcher) totalCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, c := range f.calls {
		n += c
	}
	return n
}

type memoryStore struct {
	mu      sync.Mutex
	items   []models.TrackedItem
	records map[string]models.NotificationRecord
	loads   int
	// onLoad roda depois de cada leitura, fora do lock
	onLoad func(n int)
}

func newMemoryStore(items ...models.TrackedItem) *memoryStore {
	return &memoryStore{items: items, records: make(map[string]models.NotificationRecord)}
}

func (s *memoryStore) LoadItems(ctx context.Context) ([]models.TrackedItem, error) {
	s.mu.Lock()
	s.loads++
	n := s.loads
	out := clone(s.items)
	s.mu.Unlock()
	if s.onLoad != nil {
		s.onLoad(n)
	}
	return out, nil
}

func (s *memoryStore) SaveItems(ctx context.Context, items []models.TrackedItem) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = clone(items)
	return nil
}

func (s *memoryStore) SaveCycle(ctx context.Context, items []models.TrackedItem, records []models.NotificationRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = clone(items)
	for _, r := range records {
		s.records[r.ID] = r
	}
	return nil
}

func (s *memoryStore) TakeNotification(ctx context.Context, id string) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.records[id]
	if !ok {
		return "", false, nil
	}
	delete(s.records, id)
	return r.URL, true, nil
}

func (s *memoryStore) snapshot() []models.TrackedItem {
	s.mu.Lock()
	defer s.mu.Unlock()
	return clone(s.items)
}

// clone faz cópia profunda via JSON, como o armazenamento real
func clone(items []models.TrackedItem) []models.TrackedItem {
	data, _ := json.Marshal(items)
	var out []models.TrackedItem
	_ = json.Unmarshal(data, &out)
	if out == nil {
		out = []models.TrackedItem{}
	}
	return out
}

type recordingSender struct {
	mu   sync.Mutex
	sent []notifier.Notification
	// failures é o número de envios seguintes que falham
	failures int
}

func (s *recordingSender) Send(ctx context.Context, n notifier.Notification) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failures > 0 {
		s.failures--
		return errors.New("telegram indisponível")
	}
	s.sent = append(s.sent, n)
	return nil
}

func (s *recordingSender) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sent)
}

type sku struct {
	code, name, size string
	available        bool
	list, sale       float64
}

// catalogHTML monta uma página com o payload de catálogo
func catalogHTML(productID string, colors []models.Color, skus []sku, body string) string {
	skuList := make([]map[string]any, 0, len(skus))
	for _, s := range skus {
		entry := map[string]any{
			"color":     map[string]string{"code": s.code, "name": s.name},
			"size":      s.size,
			"available": s.available,
			"listPrice": s.list,
			"salePrice": nil,
		}
		if s.sale > 0 {
			entry["salePrice"] = s.sale
		}
		skuList = append(skuList, entry)
	}
	payload := map[string]any{
		"product": map[string]any{
			"productId": productID,
			"name":      "Align Pant",
			"colors":    colors,
			"skus":      skuList,
		},
	}
	data, _ := json.Marshal(payload)
	return `<html><head><script type="application/json">` + string(data) + `</script></head><body>` + body + `</body></html>`
}

type harness struct {
	fetcher *fakeFetcher
	store   *memoryStore
	sender  *recordingSender
	monitor *Monitor
}

func newHarness(workers int, items ...models.TrackedItem) *harness {
	h := &harness{
		fetcher: newFakeFetcher(),
		store:   newMemoryStore(items...),
		sender:  &recordingSender{},
	}
	h.monitor = New(h.store, h.fetcher, scraper.NewRegistry(), notifier.New(h.sender), Options{Workers: workers})
	return h
}
