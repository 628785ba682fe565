// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package cart

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/danielhkuo/quorum-bot/auth"
	"github.com/danielhkuo/quorum-bot/models"
	"github.com/danielhkuo/quorum-bot/store"
)

var (
	ErrNotFound      = errors.New("cart does not exist")
	ErrAlreadyExists = errors.New("cart already exists")
	ErrItemNotFound  = errors.New("part not found in cart")
)

const cartsTable = "carts"

func itemsTable(cartName string) string {
	return "cart_items/" + cartName
}

// Manager owns cart metadata and contents. Carts are the external resource
// purchase approvals conclude over; Clear satisfies approval.Clearer.
type Manager struct {
	store store.Store
}

func NewManager(s store.Store) *Manager {
	return &Manager{store: s}
}

// Create registers a new empty cart.
func (m *Manager) Create(name string, by models.User) (models.Cart, error) {
	_, exists, err := m.store.Get(cartsTable, name)
	if err != nil {
		return models.Cart{}, fmt.Errorf("failed to check cart: %w", err)
	}
	if exists {
		return models.Cart{}, ErrAlreadyExists
	}

	c := models.Cart{Name: name, CreatedBy: by, CreatedAt: time.Now()}
	if err := m.store.Put(cartsTable, name, c); err != nil {
		return models.Cart{}, fmt.Errorf("failed to persist cart: %w", err)
	}

	slog.Info("cart created", "cart", name, "created_by", by.ID)
	return c, nil
}

// Get loads cart metadata.
func (m *Manager) Get(name string) (models.Cart, error) {
	raw, ok, err := m.store.Get(cartsTable, name)
	if err != nil {
		return models.Cart{}, fmt.Errorf("failed to load cart: %w", err)
	}
	if !ok {
		return models.Cart{}, ErrNotFound
	}
	var c models.Cart
	if err := json.Unmarshal(raw, &c); err != nil {
		return models.Cart{}, fmt.Errorf("failed to decode cart: %w", err)
	}
	return c, nil
}

// Exists reports whether a cart is registered.
func (m *Manager) Exists(name string) (bool, error) {
	_, ok, err := m.store.Get(cartsTable, name)
	if err != nil {
		return false, fmt.Errorf("failed to check cart: %w", err)
	}
	return ok, nil
}

// AddItem appends a part to an existing cart.
func (m *Manager) AddItem(cartName, part string, qty int, by models.User) (models.CartItem, error) {
	if ok, err := m.Exists(cartName); err != nil {
		return models.CartItem{}, err
	} else if !ok {
		return models.CartItem{}, ErrNotFound
	}

	id, err := auth.GenerateID(6)
	if err != nil {
		return models.CartItem{}, err
	}
	item := models.CartItem{ID: id, Part: part, Qty: qty, AddedBy: by}
	if err := m.store.Put(itemsTable(cartName), id, item); err != nil {
		return models.CartItem{}, fmt.Errorf("failed to persist item: %w", err)
	}

	slog.Info("item added", "cart", cartName, "part", part, "qty", qty)
	return item, nil
}

// RemoveItem deletes the first item whose part matches. ErrItemNotFound if
// the part is not in the cart, ErrNotFound if the cart does not exist.
func (m *Manager) RemoveItem(cartName, part string) error {
	if ok, err := m.Exists(cartName); err != nil {
		return err
	} else if !ok {
		return ErrNotFound
	}

	items, err := m.Items(cartName)
	if err != nil {
		return err
	}
	for _, item := range items {
		if item.Part == part {
			if _, err := m.store.Delete(itemsTable(cartName), item.ID); err != nil {
				return fmt.Errorf("failed to delete item: %w", err)
			}
			slog.Info("item removed", "cart", cartName, "part", part)
			return nil
		}
	}
	return ErrItemNotFound
}

// Items lists a cart's contents.
func (m *Manager) Items(cartName string) ([]models.CartItem, error) {
	docs, err := m.store.List(itemsTable(cartName))
	if err != nil {
		return nil, fmt.Errorf("failed to list items: %w", err)
	}
	items := make([]models.CartItem, 0, len(docs))
	for _, doc := range docs {
		var item models.CartItem
		if err := json.Unmarshal(doc, &item); err != nil {
			return nil, fmt.Errorf("failed to decode item: %w", err)
		}
		items = append(items, item)
	}
	return items, nil
}

// List returns all registered carts.
func (m *Manager) List() ([]models.Cart, error) {
	docs, err := m.store.List(cartsTable)
	if err != nil {
		return nil, fmt.Errorf("failed to list carts: %w", err)
	}
	carts := make([]models.Cart, 0, len(docs))
	for _, doc := range docs {
		var c models.Cart
		if err := json.Unmarshal(doc, &c); err != nil {
			return nil, fmt.Errorf("failed to decode cart: %w", err)
		}
		carts = append(carts, c)
	}
	return carts, nil
}

// Clear empties a cart, keeping the cart itself registered. Satisfies
// approval.Clearer.
func (m *Manager) Clear(cartName string) error {
	if ok, err := m.Exists(cartName); err != nil {
		return err
	} else if !ok {
		return ErrNotFound
	}
	if err := m.store.DropTable(itemsTable(cartName)); err != nil {
		return fmt.Errorf("failed to clear cart: %w", err)
	}

	slog.Info("cart cleared", "cart", cartName)
	return nil
}
