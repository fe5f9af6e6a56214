package domain

import (
	"bytes"
	"sort"
	"strconv"
)

// ShoppingListFilename is the suggested name of the downloaded list.
const ShoppingListFilename = "to_buy.txt"

// ShoppingLine is one ingredient entry of a recipe in a user's cart.
type ShoppingLine struct {
	Name   string
	Unit   string
	Amount int
}

// ShoppingItem is an aggregated shopping list row.
type ShoppingItem struct {
	Name   string `json:"name"`
	Unit   string `json:"measurement_unit"`
	Amount int    `json:"amount"`
}

type shoppingKey struct {
	name string
	unit string
}

// Aggregate sums amounts per (ingredient name, unit name). Distinct ingredient
// records that share a name and unit are merged. The result is sorted by name, then unit.
func Aggregate(lines []ShoppingLine) []ShoppingItem {
	totals := make(map[shoppingKey]int, len(lines))
	for _, l := range lines {
		totals[shoppingKey{l.Name, l.Unit}] += l.Amount
	}

	items := make([]ShoppingItem, 0, len(totals))
	for k, amount := range totals {
		items = append(items, ShoppingItem{Name: k.name, Unit: k.unit, Amount: amount})
	}
	sort.Slice(items, func(i, j int) bool {
		if items[i].Name != items[j].Name {
			return items[i].Name < items[j].Name
		}
		return items[i].Unit < items[j].Unit
	})
	return items
}

// RenderShoppingList writes one "<name>  <amount> <unit>" line per item.
// An empty list renders as an empty body.
func RenderShoppingList(items []ShoppingItem) []byte {
	var buf bytes.Buffer
	for _, it := range items {
		buf.WriteString(it.Name)
		buf.WriteString("  ")
		buf.WriteString(strconv.Itoa(it.Amount))
		buf.WriteByte(' ')
		buf.WriteString(it.Unit)
		buf.WriteByte('\n')
	}
	return buf.Bytes()
}
