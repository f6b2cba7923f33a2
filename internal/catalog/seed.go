package catalog

import (
	"context"

	"github.com/shopspring/decimal"
)

// Seed loads the demo campus: four blocks, a couple of food courts each, and
// a small menu per court. Upserts, so re-running is harmless.
func Seed(ctx context.Context, r *MongoRepo) error {
	blocks := []Block{
		{ID: "block-a", Name: "Block A"},
		{ID: "block-b", Name: "Block B"},
		{ID: "block-c", Name: "Block C"},
		{ID: "block-d", Name: "Block D"},
	}
	courts := []FoodCourt{
		{ID: "fc-aroma", Name: "Aroma Food Court", BlockID: "block-a", Description: "North Indian and chaat"},
		{ID: "fc-wok", Name: "Wok This Way", BlockID: "block-a", Description: "Indo-Chinese"},
		{ID: "fc-slice", Name: "Slice Station", BlockID: "block-b", Description: "Pizza and garlic bread"},
		{ID: "fc-grill", Name: "Campus Grill", BlockID: "block-c", Description: "Burgers, wraps and shakes"},
		{ID: "fc-dosa", Name: "Dosa Corner", BlockID: "block-d", Description: "South Indian tiffins"},
	}
	items := []MenuItem{
		{ID: "mi-paneer-roll", Name: "Paneer Tikka Roll", Price: decimal.NewFromFloat(150.00), Category: "Wraps", FoodCourtID: "fc-aroma", FoodCourtName: "Aroma Food Court"},
		{ID: "mi-samosa-plate", Name: "Samosa Plate", Price: decimal.NewFromFloat(70.00), Category: "Chaat", FoodCourtID: "fc-aroma", FoodCourtName: "Aroma Food Court"},
		{ID: "mi-hakka-noodles", Name: "Veg Hakka Noodles", Price: decimal.NewFromFloat(120.00), Category: "Noodles", FoodCourtID: "fc-wok", FoodCourtName: "Wok This Way"},
		{ID: "mi-manchurian", Name: "Gobi Manchurian", Price: decimal.NewFromFloat(110.00), Category: "Starters", FoodCourtID: "fc-wok", FoodCourtName: "Wok This Way"},
		{ID: "mi-margherita", Name: "Margherita Pizza", Price: decimal.NewFromFloat(180.00), Category: "Pizza", FoodCourtID: "fc-slice", FoodCourtName: "Slice Station"},
		{ID: "mi-garlic-bread", Name: "Garlic Bread", Price: decimal.NewFromFloat(90.00), Category: "Sides", FoodCourtID: "fc-slice", FoodCourtName: "Slice Station"},
		{ID: "mi-classic-burger", Name: "Classic Veg Burger", Price: decimal.NewFromFloat(130.00), Category: "Burgers", FoodCourtID: "fc-grill", FoodCourtName: "Campus Grill"},
		{ID: "mi-cold-coffee", Name: "Cold Coffee", Price: decimal.NewFromFloat(80.00), Category: "Beverages", FoodCourtID: "fc-grill", FoodCourtName: "Campus Grill"},
		{ID: "mi-masala-dosa", Name: "Masala Dosa", Price: decimal.NewFromFloat(95.00), Category: "Tiffins", FoodCourtID: "fc-dosa", FoodCourtName: "Dosa Corner"},
		{ID: "mi-filter-coffee", Name: "Filter Coffee", Price: decimal.NewFromFloat(40.00), Category: "Beverages", FoodCourtID: "fc-dosa", FoodCourtName: "Dosa Corner"},
	}

	for _, b := range blocks {
		if err := r.UpsertBlock(ctx, b); err != nil {
			return err
		}
	}
	for _, fc := range courts {
		if err := r.UpsertFoodCourt(ctx, fc); err != nil {
			return err
		}
	}
	for _, it := range items {
		if err := r.UpsertMenuItem(ctx, it); err != nil {
			return err
		}
	}
	return nil
}
