package service_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/sivanlg/homeradar/internal/model"
	appErr "github.com/sivanlg/homeradar/internal/pkg/errors"
	"github.com/sivanlg/homeradar/internal/repo"
	"github.com/sivanlg/homeradar/internal/scraper"
	"github.com/sivanlg/homeradar/internal/service"
	"github.com/sivanlg/homeradar/test/testutil"
)

func testResolver(t *testing.T) *scraper.LocationResolver {
	t.Helper()
	path := filepath.Join(t.TempDir(), "locations.json")
	content := `{"topAreas":[{"areas":[{"cities":[{"id":4000,"name":"Haifa"}]}]}]}`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	resolver, err := scraper.NewLocationResolver(path)
	require.NoError(t, err)
	return resolver
}

func TestCreateTrackedSegment(t *testing.T) {
	db, cleanup := testutil.OpenTestDB(t)
	defer cleanup()

	segments := service.NewSegmentService(repo.NewSegmentRepo(db), testResolver(t), nil)

	criteria := model.SegmentCriteria{
		MinRooms: floatPtr(3),
		MaxPrice: int64Ptr(2000000),
	}
	created, err := segments.CreateTrackedSegment(context.Background(), "Haifa", criteria)
	require.NoError(t, err)
	require.NotEmpty(t, created.ID)
	require.Contains(t, created.SearchURL, "city=4000")
	require.Equal(t, "Haifa, 3+ rms, <2.0M", created.Name)

	// Same criteria again: the segment is keyed on its URL, so the
	// existing id comes back instead of a duplicate row.
	again, err := segments.CreateTrackedSegment(context.Background(), "Haifa", criteria)
	require.NoError(t, err)
	require.Equal(t, created.ID, again.ID)

	_, err = segments.CreateTrackedSegment(context.Background(), "Atlantis", criteria)
	require.ErrorIs(t, err, appErr.ErrNotFound)
}

func floatPtr(v float64) *float64 { return &v }
func int64Ptr(v int64) *int64     { return &v }
