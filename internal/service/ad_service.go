package service

import (
	"context"
	"fmt"

	"github.com/sivanlg/homeradar/internal/model"
	appErr "github.com/sivanlg/homeradar/internal/pkg/errors"
	"github.com/sivanlg/homeradar/internal/repo"
)

type AdService struct {
	ads       *repo.AdRepo
	snapshots *repo.SnapshotRepo
}

func NewAdService(ads *repo.AdRepo, snapshots *repo.SnapshotRepo) *AdService {
	return &AdService{ads: ads, snapshots: snapshots}
}

func (s *AdService) Get(ctx context.Context, adID string) (*model.Ad, error) {
	return s.ads.GetByID(ctx, adID)
}

// UpdateStatus marks an ad sold or removed (or active again). Status is
// caller-driven; the pipeline itself never transitions it.
func (s *AdService) UpdateStatus(ctx context.Context, adID, status string) error {
	switch status {
	case model.AdStatusActive, model.AdStatusSold, model.AdStatusRemoved:
	default:
		return fmt.Errorf("unknown status %q: %w", status, appErr.ErrInvalid)
	}
	return s.ads.UpdateStatus(ctx, adID, status)
}

// History returns the ad's observation timeline, oldest first.
func (s *AdService) History(ctx context.Context, adID string, limit uint) (*model.Ad, []model.AdSnapshot, error) {
	ad, err := s.ads.GetByID(ctx, adID)
	if err != nil {
		return nil, nil, err
	}
	snaps, err := s.snapshots.ListByAd(ctx, adID, limit)
	if err != nil {
		return nil, nil, err
	}
	return ad, snaps, nil
}
