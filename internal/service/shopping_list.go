package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/pageza/foodgram/backend/internal/repository"
)

// ShoppingListHeader is the first line of every rendered shopping list.
const ShoppingListHeader = "Shopping list:"

// ShoppingListItem is the total amount of one ingredient across the cart.
type ShoppingListItem struct {
	IngredientID    uint   `json:"id"`
	Name            string `json:"name"`
	Amount          int64  `json:"amount"`
	MeasurementUnit string `json:"measurement_unit"`
}

// ShoppingListService aggregates the ingredients of the recipes a user has
// put in their shopping cart.
type ShoppingListService struct {
	relations repository.RelationRepository
}

func NewShoppingListService(relations repository.RelationRepository) *ShoppingListService {
	return &ShoppingListService{relations: relations}
}

// Build groups by ingredient id, so ingredients sharing a name but not a
// unit stay apart. Items come back ordered by ingredient id. An empty cart
// yields an empty list.
func (s *ShoppingListService) Build(ctx context.Context, p Principal) ([]ShoppingListItem, error) {
	if err := p.require(); err != nil {
		return nil, err
	}
	totals, err := s.relations.CartTotals(ctx, p.UserID)
	if err != nil {
		return nil, err
	}
	items := make([]ShoppingListItem, len(totals))
	for i, t := range totals {
		items[i] = ShoppingListItem{
			IngredientID:    t.IngredientID,
			Name:            t.Name,
			Amount:          t.Amount,
			MeasurementUnit: t.MeasurementUnit,
		}
	}
	return items, nil
}

// Render produces the downloadable text report: the header line followed by
// one "___ name - amount unit" line per item, joined by newlines with no
// trailing newline.
func Render(items []ShoppingListItem) string {
	lines := make([]string, 0, len(items)+1)
	lines = append(lines, ShoppingListHeader)
	for _, item := range items {
		lines = append(lines, fmt.Sprintf("___ %s - %d %s", item.Name, item.Amount, item.MeasurementUnit))
	}
	return strings.Join(lines, "\n")
}
