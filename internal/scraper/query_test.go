package scraper

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/sivanlg/homeradar/internal/model"
)

func int64Ptr(v int64) *int64     { return &v }
func floatPtr(v float64) *float64 { return &v }
func intPtr(v int) *int           { return &v }

func TestBuildSearchURLDeterministic(t *testing.T) {
	criteria := model.SegmentCriteria{
		MinRooms:     floatPtr(3),
		MaxRooms:     floatPtr(4.5),
		MinPrice:     int64Ptr(1000000),
		MaxPrice:     int64Ptr(2500000),
		MinFloor:     intPtr(1),
		MaxSize:      intPtr(120),
		Parking:      true,
		Elevator:     true,
		SafeRoom:     true,
		PropertyType: "apartment",
		Condition:    "renovated",
	}
	url := BuildSearchURL(4000, criteria)
	require.Equal(t,
		"https://www.yad2.co.il/realestate/forsale?city=4000&elevator=1&mamad=1&maxPrice=2500000&maxRooms=4.5&maxSquaremeter=120&minFloor=1&minPrice=1000000&minRooms=3&multiCity=4000&parking=1&property=1&propertyCondition=2",
		url,
	)
	// Reencoding the same criteria must produce byte-identical output,
	// the segments table is keyed on the URL.
	require.Equal(t, url, BuildSearchURL(4000, criteria))
}

func TestBuildSearchURLEnums(t *testing.T) {
	cases := []struct {
		propertyType string
		condition    string
		wantProperty string
		wantCond     string
	}{
		{"apartment", "brand_new", "property=1", "propertyCondition=1"},
		{"Penthouse", "Renovated", "property=6", "propertyCondition=2"},
		{"villa", "", "property=3", ""},
		{"studio", "fix", "property=10", "propertyCondition=4"},
	}
	for _, tc := range cases {
		url := BuildSearchURL(9000, model.SegmentCriteria{
			PropertyType: tc.propertyType,
			Condition:    tc.condition,
		})
		require.Contains(t, url, tc.wantProperty, "type %q", tc.propertyType)
		if tc.wantCond != "" {
			require.Contains(t, url, tc.wantCond, "condition %q", tc.condition)
		} else {
			require.NotContains(t, url, "propertyCondition=")
		}
	}
}

func TestBuildSearchURLUnknownEnumOmitted(t *testing.T) {
	url := BuildSearchURL(9000, model.SegmentCriteria{
		PropertyType: "castle",
		Condition:    "haunted",
	})
	require.Equal(t, "https://www.yad2.co.il/realestate/forsale?city=9000&multiCity=9000", url)
}

func TestSegmentName(t *testing.T) {
	name := SegmentName("Haifa", model.SegmentCriteria{
		MinRooms:     floatPtr(3),
		MaxPrice:     int64Ptr(2500000),
		PropertyType: "apartment",
	})
	require.Equal(t, "Haifa, 3+ rms, <2.5M, apartment", name)

	require.Equal(t, "Haifa", SegmentName("Haifa", model.SegmentCriteria{}))
}
