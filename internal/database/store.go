package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"bot-variantes/internal/models"
)

// Chaves usadas pelo motor de monitoramento
const (
	KeyTrackedItems  = "tracked_items"
	KeyNotifications = "notification_urls"
)

// LoadItems retorna a lista de itens monitorados
func (db *DB) LoadItems(ctx context.Context) ([]models.TrackedItem, error) {
	return loadItems(ctx, db.conn)
}

// SaveItems grava a lista inteira de itens
func (db *DB) SaveItems(ctx context.Context, items []models.TrackedItem) error {
	data, err := json.Marshal(nonNilItems(items))
	if err != nil {
		return fmt.Errorf("erro ao serializar itens: %w", err)
	}
	return db.Set(ctx, KeyTrackedItems, data)
}

// LoadNotifications retorna a tabela id -> URL
func (db *DB) LoadNotifications(ctx context.Context) (map[string]models.NotificationRecord, error) {
	return loadNotifications(ctx, db.conn)
}

// SaveCycle grava os itens atualizados e incorpora as novas notificações numa única
// transação, para que ninguém leia uma lista pela metade
func (db *DB) SaveCycle(ctx context.Context, items []models.TrackedItem, records []models.NotificationRecord) error {
	itemsData, err := json.Marshal(nonNilItems(items))
	if err != nil {
		return fmt.Errorf("erro ao serializar itens: %w", err)
	}

	return db.withTx(ctx, func(tx *sql.Tx) error {
		table, err := loadNotifications(ctx, tx)
		if err != nil {
			return err
		}
		for _, r := range records {
			table[r.ID] = r
		}
		prune(table, db.retention, time.Now())

		tableData, err := json.Marshal(table)
		if err != nil {
			return fmt.Errorf("erro ao serializar notificações: %w", err)
		}
		return setMany(ctx, tx, map[string][]byte{
			KeyTrackedItems:  itemsData,
			KeyNotifications: tableData,
		})
	})
}

// TakeNotification devolve a URL da notificação e remove o registro
func (db *DB) TakeNotification(ctx context.Context, id string) (string, bool, error) {
	var (
		url   string
		found bool
	)
	err := db.withTx(ctx, func(tx *sql.Tx) error {
		table, err := loadNotifications(ctx, tx)
		if err != nil {
			return err
		}
		rec, ok := table[id]
		if !ok {
			return nil
		}
		delete(table, id)
		data, err := json.Marshal(table)
		if err != nil {
			return fmt.Errorf("erro ao serializar notificações: %w", err)
		}
		url, found = rec.URL, true
		return set(ctx, tx, KeyNotifications, data)
	})
	return url, found, err
}

func loadItems(ctx context.Context, q querier) ([]models.TrackedItem, error) {
	data, ok, err := get(ctx, q, KeyTrackedItems)
	if err != nil || !ok {
		return []models.TrackedItem{}, err
	}
	var items []models.TrackedItem
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, fmt.Errorf("erro ao ler itens: %w", err)
	}
	for i := range items {
		// valores legados ou corrompidos voltam para o enum
		items[i].StockStatus = models.NormalizeStock(string(items[i].StockStatus))
	}
	return nonNilItems(items), nil
}

func loadNotifications(ctx context.Context, q querier) (map[string]models.NotificationRecord, error) {
	table := make(map[string]models.NotificationRecord)
	data, ok, err := get(ctx, q, KeyNotifications)
	if err != nil || !ok {
		return table, err
	}
	if err := json.Unmarshal(data, &table); err != nil {
		return nil, fmt.Errorf("erro ao ler notificações: %w", err)
	}
	return table, nil
}

// prune descarta registros expirados e mantém apenas os mais recentes
func prune(table map[string]models.NotificationRecord, r Retention, now time.Time) {
	if r.TTL > 0 {
		for id, rec := range table {
			if now.Sub(rec.CreatedAt) > r.TTL {
				delete(table, id)
			}
		}
	}
	if r.MaxRecords <= 0 || len(table) <= r.MaxRecords {
		return
	}
	records := make([]models.NotificationRecord, 0, len(table))
	for _, rec := range table {
		records = append(records, rec)
	}
	sort.Slice(records, func(i, j int) bool {
		return records[i].CreatedAt.After(records[j].CreatedAt)
	})
	for _, rec := range records[r.MaxRecords:] {
		delete(table, rec.ID)
	}
}

func nonNilItems(items []models.TrackedItem) []models.TrackedItem {
	if items == nil {
		return []models.TrackedItem{}
	}
	return items
}
