// Package shoppinglist aggregates the ingredients of every recipe in a
// user's cart into a plain-text shopping list.
package shoppinglist

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/matt-dz/foodgram/internal/metrics"
)

const (
	Header      = "Список покупок\n"
	ContentType = "text/plain; charset=utf-8"
)

// LineItem is one recipe ingredient row of a cart recipe.
type LineItem struct {
	IngredientID int64
	Name         string
	Unit         string
	Amount       int64
}

// Group is the summed amount for one (name, unit) pair.
type Group struct {
	Name   string
	Unit   string
	Amount int64
}

// Source yields every line item of the recipes in a user's cart.
type Source interface {
	CartLineItems(ctx context.Context, userID int64) ([]LineItem, error)
}

type groupKey struct {
	name string
	unit string
}

// Aggregate sums amounts per (name, unit), ignoring ingredient ids, and
// orders the groups by name then unit.
func Aggregate(items []LineItem) []Group {
	sums := make(map[groupKey]int64, len(items))
	for _, item := range items {
		sums[groupKey{item.Name, item.Unit}] += item.Amount
	}

	groups := make([]Group, 0, len(sums))
	for k, amount := range sums {
		groups = append(groups, Group{Name: k.name, Unit: k.unit, Amount: amount})
	}
	sort.Slice(groups, func(i, j int) bool {
		if groups[i].Name != groups[j].Name {
			return groups[i].Name < groups[j].Name
		}
		return groups[i].Unit < groups[j].Unit
	})
	return groups
}

// Render writes the header followed by one line per group.
func Render(groups []Group) string {
	var b strings.Builder
	b.WriteString(Header)
	for _, g := range groups {
		fmt.Fprintf(&b, "- %s (%s) - %d\n", g.Name, g.Unit, g.Amount)
	}
	return b.String()
}

// Filename is the attachment name of the exported list.
func Filename(username string) string {
	return username + "_shopping_list.txt"
}

// Export builds the shopping list document for userID. It never mutates
// the cart.
func Export(ctx context.Context, src Source, userID int64) (string, error) {
	items, err := src.CartLineItems(ctx, userID)
	if err != nil {
		return "", fmt.Errorf("collecting cart line items: %w", err)
	}

	groups := Aggregate(items)
	metrics.RecordShoppingListExport(len(groups))
	return Render(groups), nil
}
