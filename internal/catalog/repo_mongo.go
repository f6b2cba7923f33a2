package catalog

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var ErrNotFound = errors.New("catalog entry not found")

type MongoRepo struct {
	blocks *mongo.Collection
	courts *mongo.Collection
	menu   *mongo.Collection
}

func NewMongoRepo(db *mongo.Database) *MongoRepo {
	return &MongoRepo{
		blocks: db.Collection("blocks"),
		courts: db.Collection("food_courts"),
		menu:   db.Collection("menu_items"),
	}
}

// menuDoc is the stored shape of a MenuItem; price travels as a string so it
// round-trips exactly.
type menuDoc struct {
	ID            string    `bson:"_id"`
	Name          string    `bson:"name"`
	Price         string    `bson:"price"`
	Description   string    `bson:"description,omitempty"`
	Category      string    `bson:"category"`
	FoodCourtID   string    `bson:"food_court_id"`
	FoodCourtName string    `bson:"food_court_name"`
	ImageRef      string    `bson:"image_ref,omitempty"`
	CreatedAt     time.Time `bson:"created_at"`
	UpdatedAt     time.Time `bson:"updated_at"`
}

func toDoc(it MenuItem) menuDoc {
	return menuDoc{
		ID:            it.ID,
		Name:          it.Name,
		Price:         it.Price.String(),
		Description:   it.Description,
		Category:      it.Category,
		FoodCourtID:   it.FoodCourtID,
		FoodCourtName: it.FoodCourtName,
		ImageRef:      it.ImageRef,
		CreatedAt:     it.CreatedAt,
		UpdatedAt:     it.UpdatedAt,
	}
}

func fromDoc(d menuDoc) (MenuItem, error) {
	price, err := decimal.NewFromString(d.Price)
	if err != nil {
		return MenuItem{}, fmt.Errorf("menu item %s: bad price %q: %w", d.ID, d.Price, err)
	}
	return MenuItem{
		ID:            d.ID,
		Name:          d.Name,
		Price:         price,
		Description:   d.Description,
		Category:      d.Category,
		FoodCourtID:   d.FoodCourtID,
		FoodCourtName: d.FoodCourtName,
		ImageRef:      d.ImageRef,
		CreatedAt:     d.CreatedAt,
		UpdatedAt:     d.UpdatedAt,
	}, nil
}

func (r *MongoRepo) ListBlocks(ctx context.Context) ([]Block, error) {
	cur, err := r.blocks.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("list blocks: %w", err)
	}
	var out []Block
	if err := cur.All(ctx, &out); err != nil {
		return nil, fmt.Errorf("list blocks: %w", err)
	}
	return out, nil
}

func (r *MongoRepo) ListFoodCourts(ctx context.Context, blockID string) ([]FoodCourt, error) {
	cur, err := r.courts.Find(ctx, bson.M{"block_id": blockID},
		options.Find().SetSort(bson.D{{Key: "name", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("list food courts: %w", err)
	}
	var out []FoodCourt
	if err := cur.All(ctx, &out); err != nil {
		return nil, fmt.Errorf("list food courts: %w", err)
	}
	return out, nil
}

func (r *MongoRepo) ListMenu(ctx context.Context, foodCourtID string) ([]MenuItem, error) {
	cur, err := r.menu.Find(ctx, bson.M{"food_court_id": foodCourtID},
		options.Find().SetSort(bson.D{{Key: "category", Value: 1}, {Key: "name", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("list menu: %w", err)
	}
	var docs []menuDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("list menu: %w", err)
	}
	out := make([]MenuItem, 0, len(docs))
	for _, d := range docs {
		it, err := fromDoc(d)
		if err != nil {
			return nil, err
		}
		out = append(out, it)
	}
	return out, nil
}

func (r *MongoRepo) GetMenuItem(ctx context.Context, id string) (MenuItem, error) {
	var d menuDoc
	err := r.menu.FindOne(ctx, bson.M{"_id": id}).Decode(&d)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return MenuItem{}, ErrNotFound
		}
		return MenuItem{}, fmt.Errorf("get menu item: %w", err)
	}
	return fromDoc(d)
}

func (r *MongoRepo) UpsertMenuItem(ctx context.Context, it MenuItem) error {
	now := time.Now().UTC()
	if it.CreatedAt.IsZero() {
		it.CreatedAt = now
	}
	it.UpdatedAt = now

	d := toDoc(it)
	_, err := r.menu.UpdateOne(ctx,
		bson.M{"_id": d.ID},
		bson.M{"$set": d},
		options.Update().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("upsert menu item: %w", err)
	}
	return nil
}

func (r *MongoRepo) DeleteMenuItem(ctx context.Context, id string) error {
	res, err := r.menu.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("delete menu item: %w", err)
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *MongoRepo) UpsertBlock(ctx context.Context, b Block) error {
	_, err := r.blocks.UpdateOne(ctx, bson.M{"_id": b.ID}, bson.M{"$set": b},
		options.Update().SetUpsert(true))
	return err
}

func (r *MongoRepo) UpsertFoodCourt(ctx context.Context, fc FoodCourt) error {
	now := time.Now().UTC()
	if fc.CreatedAt.IsZero() {
		fc.CreatedAt = now
	}
	fc.UpdatedAt = now
	_, err := r.courts.UpdateOne(ctx, bson.M{"_id": fc.ID}, bson.M{"$set": fc},
		options.Update().SetUpsert(true))
	return err
}
