package shoppinglist

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/mock/gomock"

	"github.com/matt-dz/foodgram/internal/database"
)

func TestAggregate(t *testing.T) {
	tests := []struct {
		name  string
		items []LineItem
		want  []Group
	}{
		{
			name:  "empty cart",
			items: nil,
			want:  []Group{},
		},
		{
			name: "same ingredient across recipes is summed",
			items: []LineItem{
				{IngredientID: 1, Name: "Flour", Unit: "g", Amount: 200},
				{IngredientID: 1, Name: "Flour", Unit: "g", Amount: 300},
			},
			want: []Group{{Name: "Flour", Unit: "g", Amount: 500}},
		},
		{
			name: "distinct ids with same name and unit merge",
			items: []LineItem{
				{IngredientID: 1, Name: "Salt", Unit: "g", Amount: 5},
				{IngredientID: 2, Name: "Salt", Unit: "g", Amount: 7},
			},
			want: []Group{{Name: "Salt", Unit: "g", Amount: 12}},
		},
		{
			name: "different units stay separate and sort by unit",
			items: []LineItem{
				{IngredientID: 3, Name: "Milk", Unit: "ml", Amount: 250},
				{IngredientID: 4, Name: "Milk", Unit: "cup", Amount: 1},
			},
			want: []Group{
				{Name: "Milk", Unit: "cup", Amount: 1},
				{Name: "Milk", Unit: "ml", Amount: 250},
			},
		},
		{
			name: "sorted by name",
			items: []LineItem{
				{IngredientID: 9, Name: "Яйца", Unit: "шт", Amount: 2},
				{IngredientID: 8, Name: "Butter", Unit: "g", Amount: 50},
				{IngredientID: 7, Name: "Apple", Unit: "pcs", Amount: 3},
			},
			want: []Group{
				{Name: "Apple", Unit: "pcs", Amount: 3},
				{Name: "Butter", Unit: "g", Amount: 50},
				{Name: "Яйца", Unit: "шт", Amount: 2},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Aggregate(tt.items)
			if len(got) != len(tt.want) {
				t.Fatalf("Aggregate() returned %d groups, want %d: %+v", len(got), len(tt.want), got)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("group %d = %+v, want %+v", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestAggregateOrderIndependent(t *testing.T) {
	items := []LineItem{
		{IngredientID: 1, Name: "Flour", Unit: "g", Amount: 200},
		{IngredientID: 2, Name: "Eggs", Unit: "pcs", Amount: 2},
		{IngredientID: 1, Name: "Flour", Unit: "g", Amount: 300},
		{IngredientID: 3, Name: "Sugar", Unit: "g", Amount: 100},
	}
	reversed := make([]LineItem, len(items))
	for i, item := range items {
		reversed[len(items)-1-i] = item
	}

	a := Render(Aggregate(items))
	b := Render(Aggregate(reversed))
	if a != b {
		t.Errorf("render depends on input order:\n%s\nvs\n%s", a, b)
	}
}

func TestRender(t *testing.T) {
	got := Render([]Group{
		{Name: "Flour", Unit: "g", Amount: 500},
		{Name: "Milk", Unit: "ml", Amount: 250},
	})
	want := "Список покупок\n- Flour (g) - 500\n- Milk (ml) - 250\n"
	if got != want {
		t.Errorf("Render() = %q, want %q", got, want)
	}

	if empty := Render(nil); empty != Header {
		t.Errorf("Render(nil) = %q, want %q", empty, Header)
	}
}

func TestFilename(t *testing.T) {
	if got := Filename("chef"); got != "chef_shopping_list.txt" {
		t.Errorf("Filename() = %q", got)
	}
}

func TestExport(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockDB := database.NewMockQuerier(ctrl)
	src := DBSource{Querier: mockDB}

	t.Run("aggregates cart", func(t *testing.T) {
		mockDB.EXPECT().
			GetCartLineItems(gomock.Any(), int64(1)).
			Return([]database.GetCartLineItemsRow{
				{IngredientID: 1, Name: "Flour", MeasurementUnit: "g", Amount: 200},
				{IngredientID: 1, Name: "Flour", MeasurementUnit: "g", Amount: 300},
			}, nil)

		doc, err := Export(context.Background(), src, 1)
		if err != nil {
			t.Fatalf("Export() error = %v", err)
		}
		if want := Header + "- Flour (g) - 500\n"; doc != want {
			t.Errorf("Export() = %q, want %q", doc, want)
		}
	})

	t.Run("empty cart yields header only", func(t *testing.T) {
		mockDB.EXPECT().GetCartLineItems(gomock.Any(), int64(2)).Return(nil, nil)

		doc, err := Export(context.Background(), src, 2)
		if err != nil {
			t.Fatalf("Export() error = %v", err)
		}
		if doc != Header {
			t.Errorf("Export() = %q, want header only", doc)
		}
	})

	t.Run("store error", func(t *testing.T) {
		mockDB.EXPECT().GetCartLineItems(gomock.Any(), int64(3)).Return(nil, errors.New("boom"))

		if _, err := Export(context.Background(), src, 3); err == nil {
			t.Fatal("expected error")
		}
	})
}
