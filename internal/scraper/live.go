package scraper

import (
	"context"
	"fmt"
	"time"

	"bot-variantes/internal/logger"

	"github.com/chromedp/chromedp"
)

// LiveExtractor renderiza a página num Chrome headless. Devolve o DOM renderizado e o
// innerText do body, que só contém texto efetivamente exibido. Usado apenas para o
// estado inicial de um item novo, nunca pelo ciclo de verificação.
type LiveExtractor struct {
	allocCtx context.Context
	cancel   context.CancelFunc
	timeout  time.Duration
}

// NewLiveExtractor inicia o alocador do navegador
func NewLiveExtractor(userAgent string, timeout time.Duration) (*LiveExtractor, error) {
	if timeout <= 0 {
		timeout = 45 * time.Second
	}
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.UserAgent(userAgent),
		chromedp.WindowSize(1366, 900),
	)
	allocCtx, cancel := chromedp.NewExecAllocator(context.Background(), opts...)

	// Sobe o navegador já na criação para falhar cedo se o Chrome não existir
	browserCtx, browserCancel := chromedp.NewContext(allocCtx)
	if err := chromedp.Run(browserCtx); err != nil {
		browserCancel()
		cancel()
		return nil, fmt.Errorf("falha ao iniciar navegador: %w", err)
	}

	logger.Component("live").Info().Msg("Navegador headless iniciado")
	return &LiveExtractor{
		allocCtx: browserCtx,
		cancel: func() {
			browserCancel()
			cancel()
		},
		timeout: timeout,
	}, nil
}

// Fetch abre a URL numa aba nova e captura o HTML renderizado e o texto visível
func (l *LiveExtractor) Fetch(ctx context.Context, rawURL string) (*Page, error) {
	tabCtx, cancelTab := chromedp.NewContext(l.allocCtx)
	defer cancelTab()
	runCtx, cancel := context.WithTimeout(tabCtx, l.timeout)
	defer cancel()

	// cancela a aba se o chamador desistir
	stop := context.AfterFunc(ctx, cancel)
	defer stop()

	var html, text string
	err := chromedp.Run(runCtx,
		chromedp.Navigate(rawURL),
		chromedp.WaitReady("body", chromedp.ByQuery),
		chromedp.Sleep(time.Second),
		chromedp.OuterHTML("html", &html, chromedp.ByQuery),
		chromedp.Evaluate(`document.body.innerText`, &text),
	)
	if err != nil {
		return nil, &FetchError{URL: rawURL, Err: err}
	}

	page := NewPage(rawURL, []byte(html))
	page.VisibleText = text
	return page, nil
}

// Close encerra o navegador
func (l *LiveExtractor) Close() {
	l.cancel()
}
