package catalog

import (
	"time"

	"github.com/shopspring/decimal"
)

// Block is a campus block; food courts hang off blocks.
type Block struct {
	ID   string `json:"id" bson:"_id"`
	Name string `json:"name" bson:"name"`
}

type FoodCourt struct {
	ID          string    `json:"id" bson:"_id"`
	Name        string    `json:"name" bson:"name"`
	Description string    `json:"description,omitempty" bson:"description,omitempty"`
	BlockID     string    `json:"block_id" bson:"block_id"`
	CreatedAt   time.Time `json:"-" bson:"created_at"`
	UpdatedAt   time.Time `json:"-" bson:"updated_at"`
}

// MenuItem's price is decimal in the API; the mongo repo stores it as a
// string document field to keep the exact value.
type MenuItem struct {
	ID            string          `json:"id"`
	Name          string          `json:"name"`
	Price         decimal.Decimal `json:"price"`
	Description   string          `json:"description,omitempty"`
	Category      string          `json:"category"`
	FoodCourtID   string          `json:"food_court_id"`
	FoodCourtName string          `json:"food_court_name"`
	ImageRef      string          `json:"image_ref,omitempty"`
	CreatedAt     time.Time       `json:"-"`
	UpdatedAt     time.Time       `json:"-"`
}
