package catalog

import (
	"context"

	"golang.org/x/sync/singleflight"
)

// Repo is what the HTTP layer needs from catalog storage.
type Repo interface {
	ListBlocks(ctx context.Context) ([]Block, error)
	ListFoodCourts(ctx context.Context, blockID string) ([]FoodCourt, error)
	ListMenu(ctx context.Context, foodCourtID string) ([]MenuItem, error)
	GetMenuItem(ctx context.Context, id string) (MenuItem, error)
	UpsertMenuItem(ctx context.Context, it MenuItem) error
	DeleteMenuItem(ctx context.Context, id string) error
}

// Service collapses concurrent reads of the same menu; a food court's menu is
// the hot read path when a lunch rush hits one stall.
type Service struct {
	Repo Repo
	sfg  singleflight.Group
}

func (s *Service) Menu(ctx context.Context, foodCourtID string) ([]MenuItem, error) {
	v, err, _ := s.sfg.Do("menu:"+foodCourtID, func() (any, error) {
		return s.Repo.ListMenu(ctx, foodCourtID)
	})
	if err != nil {
		return nil, err
	}
	return v.([]MenuItem), nil
}
