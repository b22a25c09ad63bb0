package scraper

import (
	"testing"

	"bot-variantes/internal/models"

	"github.com/stretchr/testify/assert"
)

func TestVisibleTextStock_IgnoresHiddenTemplates(t *testing.T) {
	html := `<html><body>
<template id="tpl"><div class="stock-msg">Sold out</div></template>
<div class="stock-msg" style="display: none">Sold out</div>
<div class="stock-msg visually-hidden">Only 1 left</div>
<div aria-hidden="true"><span class="inventory">售罄</span></div>
<div hidden><span class="availability">Sold out</span></div>
<button name="add">Add to bag</button>
</body></html>`

	_, found := visibleTextStock(NewPage("https://x.com/p", []byte(html)))
	assert.False(t, found)
}

func TestVisibleTextStock_RenderedLowStock(t *testing.T) {
	html := `<html><body>
<div class="product"><p class="stock-msg">Only 2 left in size M</p></div>
</body></html>`
	status, found := visibleTextStock(NewPage("https://x.com/p", []byte(html)))
	assert.True(t, found)
	assert.Equal(t, models.LowStock, status)
}

func TestVisibleTextStock_ChinesePhrases(t *testing.T) {
	html := `<html><body><div class="stock-msg">僅餘 2 件</div></body></html>`
	status, found := visibleTextStock(NewPage("https://x.com.hk/p", []byte(html)))
	assert.True(t, found)
	assert.Equal(t, models.LowStock, status)

	html = `<html><body><button name="add">已售罄</button></body></html>`
	status, found = visibleTextStock(NewPage("https://x.com.hk/p", []byte(html)))
	assert.True(t, found)
	assert.Equal(t, models.SoldOut, status)
}

func TestVisibleTextStock_BrowserTextPreferred(t *testing.T) {
	page := NewPage("https://x.com/p", []byte(`<div class="stock">Sold out</div>`))
	page.VisibleText = "Align Pant\nOnly 1 left\nAdd to bag"

	status, found := visibleTextStock(page)
	assert.True(t, found)
	assert.Equal(t, models.LowStock, status)
}
