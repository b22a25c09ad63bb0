package scraper

import (
	"strings"
	"testing"

	"bot-variantes/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const catalogPage = `<html><head>
<script id="__NEXT_DATA__" type="application/json">
{"props":{"pageProps":{"productData":{
  "productId":"prod1001","name":"Align Pant","image":"https://img.example.com/1.jpg",
  "colors":[{"code":"0001","name":"Black"},{"code":"0002","name":"Navy"},{"code":"0001","name":"Black"}],
  "sizesByColor":[{"color":"0001","sizes":["4","6","8"]},{"color":"0002","sizes":["4"]}],
  "skus":[
    {"skuId":"s1","color":{"code":"0001","name":"Black"},"size":"4","available":true,"listPrice":"98.00","salePrice":"69.00"},
    {"skuId":"s2","color":{"code":"0001","name":"Black"},"size":"6","available":false,"listPrice":98,"salePrice":null},
    {"skuId":"s3","color":{"code":"0001","name":"Black"},"size":"8","available":true,"listPrice":"$98.00","salePrice":"$98.00"},
    {"skuId":"s4","color":{"code":"0002","name":"Navy"},"size":"4","available":true,"listPrice":"98.00","salePrice":"120.00"}
  ]}}}}
</script></head>
<body><div class="stock-message">Only 2 left</div></body></html>`

const linkedDataPage = `<html><head>
<script type="application/ld+json">
{"@context":"https://schema.org","@graph":[
 {"@type":"Organization","name":"Shop"},
 {"@type":"ProductGroup","productGroupID":"LW5CT8S","name":"Define Jacket","image":["https://img.example.com/a.jpg"],
  "hasVariant":[
   {"@type":"Product","sku":"a1","color":"Black","size":"S","offers":{"@type":"Offer","price":"890","availability":"https://schema.org/InStock",
     "priceSpecification":[{"@type":"UnitPriceSpecification","priceType":"https://schema.org/ListPrice","price":"1090"}]}},
   {"@type":"Product","sku":"a2","color":"Black","size":"M","offers":{"@type":"Offer","price":"890","availability":"https://schema.org/OutOfStock"}},
   {"@type":"Product","sku":"a3","color":"Bone","size":"S","offers":{"@type":"Offer","price":"1090","availability":"https://schema.org/OutOfStock"}},
   {"@type":"Product","sku":"a4","color":"Bone","size":"M","offers":{"@type":"Offer","price":"1090","availability":"https://schema.org/SoldOut"}},
   {"@type":"Product","sku":"a5","color":"black","size":"L","offers":{"@type":"Offer","price":"890","availability":"https://schema.org/LimitedAvailability"}}
  ]}
]}
</script></head><body></body></html>`

func TestExtract_CatalogSalePrice(t *testing.T) {
	page := NewPage("https://shop.example.com/p/align/_/prod1001?color=0001&sz=4", []byte(catalogPage))
	snap := Extract(page, Hints{ColorName: "Black", Region: models.RegionUS})

	require.NotNil(t, snap.CurrentPrice)
	require.NotNil(t, snap.OriginalPrice)
	assert.Equal(t, 69.0, *snap.CurrentPrice)
	assert.Equal(t, 98.0, *snap.OriginalPrice)
	assert.True(t, snap.OnSale)
	assert.Equal(t, "prod1001", snap.ProductID)
	assert.Equal(t, "0001", snap.ColorCode)
	assert.Equal(t, "4", snap.Size)
	assert.True(t, snap.ColorData)
	assert.Len(t, snap.AvailableColors, 2)
	// SKU disponível sem status estruturado cai no texto visível
	assert.Equal(t, models.LowStock, snap.StockStatus)
}

func TestExtract_CatalogUnavailableSKU(t *testing.T) {
	page := NewPage("https://shop.example.com/p/align/_/prod1001", []byte(catalogPage))
	snap := Extract(page, Hints{ColorCode: "0001", Size: "6", Region: models.RegionUS})

	assert.Equal(t, models.SoldOut, snap.StockStatus)
	require.NotNil(t, snap.CurrentPrice)
	assert.Equal(t, 98.0, *snap.CurrentPrice)
	assert.Nil(t, snap.OriginalPrice)
	assert.False(t, snap.OnSale)
}

func TestExtract_CatalogEqualOrHigherSaleIsNotSale(t *testing.T) {
	page := NewPage("https://shop.example.com/p/align/_/prod1001", []byte(catalogPage))

	equal := Extract(page, Hints{ColorCode: "0001", Size: "8", Region: models.RegionUS}, StructuredOnly())
	assert.False(t, equal.OnSale)
	assert.Nil(t, equal.OriginalPrice)
	assert.Equal(t, 98.0, *equal.CurrentPrice)

	higher := Extract(page, Hints{ColorCode: "0002", Size: "4", Region: models.RegionUS}, StructuredOnly())
	assert.False(t, higher.OnSale)
	assert.Equal(t, 98.0, *higher.CurrentPrice)
}

func TestExtract_CatalogSizeMissingFromDeclaredList(t *testing.T) {
	page := NewPage("https://shop.example.com/p/align/_/prod1001", []byte(catalogPage))
	snap := Extract(page, Hints{ColorCode: "0002", Size: "10", Region: models.RegionUS}, StructuredOnly())

	assert.Equal(t, models.SoldOut, snap.StockStatus)
	assert.Nil(t, snap.CurrentPrice)
	assert.Equal(t, "Navy", snap.ColorName)
}

func TestExtract_CatalogColorIdentityWithoutSizeSKU(t *testing.T) {
	page := NewPage("https://shop.example.com/p/align/_/prod1001", []byte(catalogPage))
	snap := Extract(page, Hints{ColorName: "black", Size: "12", Region: models.RegionUS}, StructuredOnly())

	assert.Equal(t, "0001", snap.ColorCode)
	assert.Equal(t, "Black", snap.ColorName)
	assert.Equal(t, "12", snap.Size)
}

func TestExtract_LinkedDataByColorName(t *testing.T) {
	page := NewPage("https://shop.example.com.hk/products/define", []byte(linkedDataPage))
	snap := Extract(page, Hints{ColorName: "BLACK", Size: "S", Region: models.RegionHK})

	require.NotNil(t, snap.CurrentPrice)
	assert.Equal(t, 890.0, *snap.CurrentPrice)
	assert.Equal(t, 1090.0, *snap.OriginalPrice)
	assert.True(t, snap.OnSale)
	assert.Equal(t, models.InStock, snap.StockStatus)
	assert.Equal(t, "LW5CT8S", snap.ProductID)
	assert.Equal(t, "https://img.example.com/a.jpg", snap.Image)
	assert.Equal(t, []models.Color{{Name: "Black"}, {Name: "Bone"}}, snap.AvailableColors)
}

func TestExtract_LinkedDataSizeOutOfStock(t *testing.T) {
	page := NewPage("https://shop.example.com.hk/products/define", []byte(linkedDataPage))
	snap := Extract(page, Hints{ColorName: "Black", Size: "M", Region: models.RegionHK})
	assert.Equal(t, models.SoldOut, snap.StockStatus)
}

func TestExtract_LinkedDataWholeColorSoldOut(t *testing.T) {
	page := NewPage("https://shop.example.com.hk/products/define", []byte(linkedDataPage))
	// tamanho inexistente, mas todas as variantes da cor estão esgotadas
	snap := Extract(page, Hints{ColorName: "Bone", Size: "XL", Region: models.RegionHK})
	assert.Equal(t, models.SoldOut, snap.StockStatus)
}

func TestExtract_LinkedDataLimitedAvailability(t *testing.T) {
	page := NewPage("https://shop.example.com.hk/products/define", []byte(linkedDataPage))
	snap := Extract(page, Hints{ColorName: "Black", Size: "L", Region: models.RegionHK})
	assert.Equal(t, models.LowStock, snap.StockStatus)
}

func TestExtract_MalformedPayloadFallsThrough(t *testing.T) {
	html := `<html><head>
<script type="application/json">{"skus": [ broken</script>
<script type="application/ld+json">{"@type":"Product","name":"Tee","color":"Red","size":"M",
 "offers":{"price":"30","availability":"https://schema.org/InStock"}}</script>
</head><body></body></html>`
	page := NewPage("https://shop.example.com.au/products/tee", []byte(html))
	snap := Extract(page, Hints{ColorName: "Red", Size: "M", Region: models.RegionAU})

	require.NotNil(t, snap.CurrentPrice)
	assert.Equal(t, 30.0, *snap.CurrentPrice)
	assert.Equal(t, models.InStock, snap.StockStatus)
	assert.Equal(t, []models.Color{{Name: "Red"}}, snap.AvailableColors)
}

func TestExtract_NothingStructuredReturnsDefaults(t *testing.T) {
	page := NewPage("https://shop.example.com/p/x", []byte(`<html><body><p>hello</p></body></html>`))
	snap := Extract(page, Hints{ColorName: "Black"})

	assert.Equal(t, models.InStock, snap.StockStatus)
	assert.Nil(t, snap.CurrentPrice)
	assert.Nil(t, snap.OriginalPrice)
	assert.False(t, snap.ColorData)
	assert.NotNil(t, snap.AvailableColors)
	assert.Empty(t, snap.AvailableColors)
}

func TestExtract_SoldOutTextWinsOverLowStock(t *testing.T) {
	html := `<html><body>
<div class="stock-note">Only 3 left</div>
<div class="inventory-status">Sold out</div>
</body></html>`
	snap := Extract(NewPage("https://shop.example.com/p/x", []byte(html)), Hints{ColorName: "Black"})
	assert.Equal(t, models.SoldOut, snap.StockStatus)
}

func TestExtract_StructuredSoldOutNotDowngradedByText(t *testing.T) {
	page := NewPage("https://shop.example.com/p/align/_/prod1001", []byte(catalogPage))
	snap := Extract(page, Hints{ColorCode: "0001", Size: "6"})
	assert.Equal(t, models.SoldOut, snap.StockStatus)
}

func TestExtract_OtherSizeSoldOutLabelKeepsAvailableSKU(t *testing.T) {
	html := strings.Replace(catalogPage,
		`<body><div class="stock-message">Only 2 left</div></body>`,
		`<body><ul><li class="size-stock">4 - Sold out</li></ul></body>`, 1)
	page := NewPage("https://shop.example.com/p/align/_/prod1001", []byte(html))

	snap := Extract(page, Hints{ColorCode: "0001", Size: "8", Region: models.RegionUS})
	assert.Equal(t, models.InStock, snap.StockStatus)

	page = NewPage("https://shop.example.com/p/align/_/prod1001", []byte(html))
	page.VisibleText = "Align Pant\n4 - Sold out\nAdd to bag"
	snap = Extract(page, Hints{ColorCode: "0001", Size: "8", Region: models.RegionUS})
	assert.Equal(t, models.InStock, snap.StockStatus)
}

func TestExtract_LinkedDataInStockIgnoresPageSoldOutText(t *testing.T) {
	html := strings.Replace(linkedDataPage, `<body></body>`,
		`<body><span class="availability">Sold out</span></body>`, 1)
	snap := Extract(NewPage("https://shop.example.com/p/define", []byte(html)), Hints{ColorName: "Black", Size: "S"})
	assert.Equal(t, models.InStock, snap.StockStatus)
}

func TestExtract_IdentityFromQueryOnly(t *testing.T) {
	page := NewPage("https://shop.example.com/p/align/_/prod1001?color=0001&sz=6", []byte(catalogPage))
	snap := Extract(page, Hints{Region: models.RegionUS}, StructuredOnly())

	assert.Equal(t, "0001", snap.ColorCode)
	assert.Equal(t, "6", snap.Size)
	assert.Equal(t, models.SoldOut, snap.StockStatus)
}

func TestPartialMerge_FirstResolverWins(t *testing.T) {
	acc := partial{price: &priceInfo{current: 10}}
	acc.merge(partial{
		price:     &priceInfo{current: 20},
		stock:     stockPtr(models.LowStock),
		colors:    []models.Color{{Name: "Red"}},
		colorData: true,
		productID: "P1",
	})
	acc.merge(partial{stock: stockPtr(models.SoldOut), productID: "P2", colorData: true})

	assert.Equal(t, 10.0, acc.price.current)
	assert.Equal(t, models.SoldOut, *acc.stock)
	assert.Equal(t, "P1", acc.productID)
	assert.Equal(t, []models.Color{{Name: "Red"}}, acc.colors)
}

func TestExtract_IdentityURLOverridesPageURL(t *testing.T) {
	// página buscada por uma variante irmã: a identidade vem da URL do item
	page := NewPage("https://shop.example.com/p/align/_/prod1001?color=0001&sz=6", []byte(catalogPage))
	snap := Extract(page, Hints{Region: models.RegionUS}, StructuredOnly(),
		IdentityURL("https://shop.example.com/p/align/_/prod1001?color=0001&sz=4"))

	assert.Equal(t, "4", snap.Size)
	assert.True(t, snap.OnSale)
}
