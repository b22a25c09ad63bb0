package changes

import (
	"testing"

	"bot-variantes/internal/models"

	"github.com/stretchr/testify/assert"
	"pgregory.net/rapid"
)

func TestDiff_StatusChangeOnly(t *testing.T) {
	item := models.TrackedItem{
		ProductID:    "P1",
		Color:        "Black",
		Size:         "M",
		StockStatus:  models.InStock,
		CurrentPrice: models.Price(78),
	}
	fresh := models.Snapshot{StockStatus: models.SoldOut, CurrentPrice: models.Price(78)}

	events := Diff(item, fresh)
	assert.Equal(t, []models.ChangeEvent{models.StatusChange(models.InStock, models.SoldOut)}, events)
}

func TestDiff_PriceDropAndSale(t *testing.T) {
	item := models.TrackedItem{
		StockStatus:  models.InStock,
		CurrentPrice: models.Price(58),
		OnSale:       false,
	}
	fresh := models.Snapshot{
		StockStatus:   models.InStock,
		CurrentPrice:  models.Price(45),
		OriginalPrice: models.Price(58),
		OnSale:        true,
	}

	events := Diff(item, fresh)
	assert.Equal(t, []models.ChangeEvent{
		models.PriceChange(58, 45),
		models.WentOnSale(),
	}, events)
}

func TestDiff_UnknownPriceIsNotAChange(t *testing.T) {
	item := models.TrackedItem{StockStatus: models.InStock}
	fresh := models.Snapshot{StockStatus: models.InStock, CurrentPrice: models.Price(99)}
	assert.Empty(t, Diff(item, fresh))

	item.CurrentPrice = models.Price(99)
	fresh.CurrentPrice = nil
	assert.Empty(t, Diff(item, fresh))
}

func TestDiff_SaleEndingIsNotAlerted(t *testing.T) {
	item := models.TrackedItem{StockStatus: models.InStock, CurrentPrice: models.Price(45), OnSale: true}
	fresh := models.Snapshot{StockStatus: models.InStock, CurrentPrice: models.Price(58)}

	assert.Equal(t, []models.ChangeEvent{models.PriceChange(45, 58)}, Diff(item, fresh))
}

func TestDiff_SoldOutBackInStock(t *testing.T) {
	item := models.TrackedItem{StockStatus: models.SoldOut}
	fresh := models.Snapshot{StockStatus: models.InStock}
	assert.Equal(t, []models.ChangeEvent{models.StatusChange(models.SoldOut, models.InStock)}, Diff(item, fresh))
}

func TestDiff_NewColors(t *testing.T) {
	item := models.TrackedItem{
		Region:          models.RegionUS,
		StockStatus:     models.InStock,
		TrackNewColors:  true,
		AvailableColors: []models.Color{{Code: "0001", Name: "Black"}},
	}
	fresh := models.Snapshot{
		StockStatus: models.InStock,
		ColorData:   true,
		AvailableColors: []models.Color{
			{Code: "0001", Name: "Black"},
			{Code: "0002", Name: "Navy"},
			{Code: "0002", Name: "Navy"},
		},
	}

	events := Diff(item, fresh)
	assert.Equal(t, []models.ChangeEvent{models.NewColor(models.Color{Code: "0002", Name: "Navy"})}, events)

	item.TrackNewColors = false
	assert.Empty(t, Diff(item, fresh))
}

func TestDiff_NewColorsNeedBothLists(t *testing.T) {
	item := models.TrackedItem{StockStatus: models.InStock, TrackNewColors: true}
	fresh := models.Snapshot{
		StockStatus:     models.InStock,
		ColorData:       true,
		AvailableColors: []models.Color{{Name: "Navy"}},
	}
	assert.Empty(t, Diff(item, fresh), "item sem cores conhecidas")

	item.AvailableColors = []models.Color{{Name: "Black"}}
	fresh.ColorData = false
	assert.Empty(t, Diff(item, fresh), "extração sem dados de cor")
}

func TestDiff_OrderStatusPriceSaleColor(t *testing.T) {
	item := models.TrackedItem{
		Region:          models.RegionHK,
		StockStatus:     models.LowStock,
		CurrentPrice:    models.Price(100),
		TrackNewColors:  true,
		AvailableColors: []models.Color{{Name: "Black"}},
	}
	fresh := models.Snapshot{
		StockStatus:     models.InStock,
		CurrentPrice:    models.Price(80),
		OriginalPrice:   models.Price(100),
		OnSale:          true,
		ColorData:       true,
		AvailableColors: []models.Color{{Name: "Black"}, {Name: "Bone"}},
	}

	events := Diff(item, fresh)
	types := make([]models.EventType, 0, len(events))
	for _, e := range events {
		types = append(types, e.Type)
	}
	assert.Equal(t, []models.EventType{
		models.EventStatusChange,
		models.EventPriceChange,
		models.EventWentOnSale,
		models.EventNewColor,
	}, types)
}

func genStatus() *rapid.Generator[models.StockStatus] {
	return rapid.SampledFrom([]models.StockStatus{models.InStock, models.LowStock, models.SoldOut})
}

func genPrice() *rapid.Generator[*float64] {
	return rapid.Custom(func(t *rapid.T) *float64 {
		if rapid.Bool().Draw(t, "known") {
			return models.Price(float64(rapid.IntRange(1, 500).Draw(t, "price")))
		}
		return nil
	})
}

func genColors(label string) *rapid.Generator[[]models.Color] {
	return rapid.Custom(func(t *rapid.T) []models.Color {
		names := rapid.SliceOfN(rapid.SampledFrom([]string{"Black", "Navy", "Bone", "Red"}), 0, 4).Draw(t, label)
		colors := make([]models.Color, 0, len(names))
		for _, n := range names {
			colors = append(colors, models.Color{Name: n})
		}
		return colors
	})
}

func TestDiff_DeterministicAndPure(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		item := models.TrackedItem{
			Region:          models.RegionAU,
			StockStatus:     genStatus().Draw(t, "prevStatus"),
			CurrentPrice:    genPrice().Draw(t, "prevPrice"),
			OnSale:          rapid.Bool().Draw(t, "prevSale"),
			TrackNewColors:  rapid.Bool().Draw(t, "track"),
			AvailableColors: genColors("prevColors").Draw(t, "prevColors"),
		}
		fresh := models.Snapshot{
			StockStatus:     genStatus().Draw(t, "status"),
			CurrentPrice:    genPrice().Draw(t, "price"),
			OnSale:          rapid.Bool().Draw(t, "sale"),
			ColorData:       rapid.Bool().Draw(t, "colorData"),
			AvailableColors: genColors("colors").Draw(t, "colors"),
		}
		before := len(item.AvailableColors)

		first := Diff(item, fresh)
		second := Diff(item, fresh)
		if len(first) != len(second) {
			t.Fatalf("saídas diferentes: %v / %v", first, second)
		}
		for i := range first {
			if first[i].String() != second[i].String() {
				t.Fatalf("ordem instável: %v / %v", first, second)
			}
		}
		if len(item.AvailableColors) != before {
			t.Fatalf("Diff alterou o item")
		}
		for _, e := range first {
			if e.Type == models.EventStatusChange && (!e.FromStatus.Valid() || !e.ToStatus.Valid()) {
				t.Fatalf("status fora do enum: %v", e)
			}
		}
	})
}

func TestDiff_UnchangedStateHasNoEvents(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		colors := genColors("colors").Draw(t, "colors")
		price := genPrice().Draw(t, "price")
		item := models.TrackedItem{
			Region:          models.RegionHK,
			StockStatus:     genStatus().Draw(t, "status"),
			CurrentPrice:    price,
			OnSale:          rapid.Bool().Draw(t, "sale"),
			TrackNewColors:  true,
			AvailableColors: colors,
		}
		fresh := models.Snapshot{
			StockStatus:     item.StockStatus,
			CurrentPrice:    price,
			OnSale:          item.OnSale,
			ColorData:       true,
			AvailableColors: colors,
		}
		if events := Diff(item, fresh); len(events) != 0 {
			t.Fatalf("eventos inesperados: %v", events)
		}
	})
}
