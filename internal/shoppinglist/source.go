package shoppinglist

import (
	"context"

	"github.com/matt-dz/foodgram/internal/database"
)

// DBSource reads cart line items from Postgres.
type DBSource struct {
	Querier database.Querier
}

func (s DBSource) CartLineItems(ctx context.Context, userID int64) ([]LineItem, error) {
	rows, err := s.Querier.GetCartLineItems(ctx, userID)
	if err != nil {
		return nil, err
	}

	items := make([]LineItem, 0, len(rows))
	for _, row := range rows {
		items = append(items, LineItem{
			IngredientID: row.IngredientID,
			Name:         row.Name,
			Unit:         row.MeasurementUnit,
			Amount:       int64(row.Amount),
		})
	}
	return items, nil
}
