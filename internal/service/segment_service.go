package service

import (
	"context"
	"fmt"

	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/sivanlg/homeradar/internal/model"
	appErr "github.com/sivanlg/homeradar/internal/pkg/errors"
	"github.com/sivanlg/homeradar/internal/repo"
	"github.com/sivanlg/homeradar/internal/scraper"
)

const segmentCategoryRealEstate = "real_estate"

type SegmentService struct {
	segments *repo.SegmentRepo
	resolver *scraper.LocationResolver
	runner   *scraper.Runner
}

func NewSegmentService(segments *repo.SegmentRepo, resolver *scraper.LocationResolver, runner *scraper.Runner) *SegmentService {
	return &SegmentService{segments: segments, resolver: resolver, runner: runner}
}

type TrackedSegment struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	SearchURL string `json:"search_url"`
}

// CreateTrackedSegment registers a tracking criterion for a city and
// kicks off its first scrape in the background. Creating the same
// criteria twice returns the existing segment. The scrape is submitted
// fire-and-forget: its outcome is never awaited by this call.
func (s *SegmentService) CreateTrackedSegment(ctx context.Context, city string, criteria model.SegmentCriteria) (*TrackedSegment, error) {
	if s.resolver == nil {
		return nil, appErr.ErrUnavailable
	}
	cityID, ok := s.resolver.ResolveCity(city)
	if !ok {
		return nil, fmt.Errorf("city %q not found: %w", city, appErr.ErrNotFound)
	}
	searchURL := scraper.BuildSearchURL(cityID, criteria)
	name := scraper.SegmentName(city, criteria)

	segmentID, err := s.segments.Upsert(ctx, searchURL, name, segmentCategoryRealEstate)
	if err != nil {
		return nil, fmt.Errorf("create segment: %w", err)
	}
	logutil.GetLogger(ctx).Info("segment tracked",
		zap.String("segment_id", segmentID),
		zap.String("name", name),
	)

	if s.runner != nil {
		// Detached from the request context: the scrape outlives the call.
		go func() {
			if err := s.runner.Run(context.Background(), searchURL, city, segmentID); err != nil {
				logutil.GetLogger(context.Background()).Error("background scrape failed",
					zap.String("segment_id", segmentID), zap.Error(err))
			}
		}()
	}

	return &TrackedSegment{ID: segmentID, Name: name, SearchURL: searchURL}, nil
}

func (s *SegmentService) List(ctx context.Context, limit, offset uint) ([]model.Segment, error) {
	if limit == 0 {
		limit = 50
	}
	return s.segments.List(ctx, limit, offset)
}
