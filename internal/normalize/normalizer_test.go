package normalize

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNormalizeBasicRecord(t *testing.T) {
	raw := Record{
		"id":         "123",
		"price":      "2,500,000 ₪",
		"title":      "3 room apt",
		"city":       "Haifa",
		"roomsCount": float64(3),
	}
	n, err := Normalize(raw, Context{})
	require.NoError(t, err)
	require.Equal(t, "123", n.Ad.ID)
	require.Equal(t, "Haifa", n.Ad.City)
	require.Equal(t, int64(2500000), n.Price)
	require.Equal(t, float64(3), n.Rooms)
	require.Equal(t, "3 room apt", n.Ad.Title)
	require.Equal(t, "active", n.Ad.Status)
}

func TestNormalizeMissingID(t *testing.T) {
	_, err := Normalize(Record{"price": float64(1000)}, Context{})
	require.Error(t, err)

	_, err = Normalize(Record{"id": "", "price": float64(1000)}, Context{})
	require.Error(t, err)
}

func TestNormalizeIDFallbacks(t *testing.T) {
	tests := []struct {
		name string
		raw  Record
		want string
	}{
		{"ad number", Record{"adNumber": "ad-1"}, "ad-1"},
		{"numeric ad number", Record{"adNumber": float64(456)}, "456"},
		{"plain id", Record{"id": "id-2"}, "id-2"},
		{"token", Record{"token": "tok-3"}, "tok-3"},
		{"ad number wins", Record{"adNumber": "a", "id": "b", "token": "c"}, "a"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n, err := Normalize(tt.raw, Context{})
			require.NoError(t, err)
			require.Equal(t, tt.want, n.Ad.ID)
		})
	}
}

func TestParsePrice(t *testing.T) {
	tests := []struct {
		name  string
		value interface{}
		want  int64
	}{
		{"shekel string", "2,500,000 ₪", 2500000},
		{"plain number", float64(1250000), 1250000},
		{"nis suffix", "980,000 NIS", 980000},
		{"garbage", "call me", 0},
		{"empty", "", 0},
		{"nil", nil, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, parsePrice(tt.value))
		})
	}
}

func TestNormalizeMalformedNumericsDoNotFail(t *testing.T) {
	raw := Record{
		"id":    "77",
		"price": "???",
		"additionalDetails": map[string]interface{}{
			"roomsCount":  "not a number",
			"squareMeter": "n/a",
			"floor":       nil,
		},
	}
	n, err := Normalize(raw, Context{})
	require.NoError(t, err)
	require.Zero(t, n.Price)
	require.Zero(t, n.Rooms)
	require.Zero(t, n.SquareMeters)
	require.Zero(t, n.Floor)
}

func TestTitleTruncation(t *testing.T) {
	long := ""
	for i := 0; i < 30; i++ {
		long += "apartment "
	}
	raw := Record{"id": "1", "searchText": long}
	n, err := Normalize(raw, Context{})
	require.NoError(t, err)
	require.Len(t, []rune(n.Ad.Title), titleMaxChars+3)
	require.Equal(t, "...", n.Ad.Title[len(n.Ad.Title)-3:])

	short := Record{"id": "2", "searchText": "cozy flat"}
	n, err = Normalize(short, Context{})
	require.NoError(t, err)
	require.Equal(t, "cozy flat", n.Ad.Title)
}

func TestDocumentDeterministicAndStable(t *testing.T) {
	raw := Record{
		"adNumber":   "555",
		"searchText": "renovated flat near the beach",
		"additionalDetails": map[string]interface{}{
			"property":          map[string]interface{}{"text": "apartment"},
			"propertyCondition": map[string]interface{}{"text": "renovated"},
			"roomsCount":        float64(4),
		},
		"inProperty": map[string]interface{}{
			"includeParking":  true,
			"includeElevator": true,
			"includeBalcony":  false,
		},
	}
	first, err := Normalize(raw, Context{City: "Tel Aviv"})
	require.NoError(t, err)
	second, err := Normalize(raw, Context{City: "Tel Aviv"})
	require.NoError(t, err)

	require.Equal(t, first.Document, second.Document)
	require.Equal(t, HashDocument(first.Document), HashDocument(second.Document))

	require.Contains(t, first.Document, "City: Tel Aviv")
	require.Contains(t, first.Document, "Type: apartment")
	require.Contains(t, first.Document, "Condition: renovated")
	require.Contains(t, first.Document, "Amenities: Elevator, Parking")
	require.NotContains(t, first.Document, "Balcony")
}

func TestPriceAndRoomChangesDoNotChangeDocument(t *testing.T) {
	base := Record{
		"id":         "9",
		"searchText": "sunny 3 room apartment",
		"city":       "Haifa",
		"price":      "2,500,000 ₪",
		"roomsCount": float64(3),
	}
	changed := Record{
		"id":         "9",
		"searchText": "sunny 3 room apartment",
		"city":       "Haifa",
		"price":      "2,600,000 ₪",
		"roomsCount": float64(3.5),
	}
	a, err := Normalize(base, Context{})
	require.NoError(t, err)
	b, err := Normalize(changed, Context{})
	require.NoError(t, err)

	require.Equal(t, int64(2500000), a.Price)
	require.Equal(t, int64(2600000), b.Price)
	require.Equal(t, a.Document, b.Document)
	require.Equal(t, HashDocument(a.Document), HashDocument(b.Document))
}

func TestBatchContextOverridesItemLocation(t *testing.T) {
	raw := Record{"id": "4", "city_text": "Eilat"}
	n, err := Normalize(raw, Context{City: "Jerusalem", Neighborhood: "Rehavia"})
	require.NoError(t, err)
	require.Equal(t, "Jerusalem", n.Ad.City)
	require.Equal(t, "Rehavia", n.Ad.Neighborhood)

	n, err = Normalize(raw, Context{})
	require.NoError(t, err)
	require.Equal(t, "Eilat", n.Ad.City)
}
