package scraper

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/sivanlg/homeradar/internal/model"
)

const searchBaseURL = "https://www.yad2.co.il/realestate/forsale"

// Marketplace enum encodings for property type and condition.
var propertyTypeIDs = map[string]int{
	"apartment": 1,
	"garden":    2,
	"house":     3,
	"villa":     3,
	"penthouse": 6,
	"duplex":    7,
	"studio":    10,
}

var conditionIDs = map[string]int{
	"brand_new": 1,
	"renovated": 2,
	"good":      3,
	"fix":       4,
	"new":       6,
}

// BuildSearchURL encodes a city id and segment criteria as the
// marketplace search URL that defines a tracked segment. Parameters are
// emitted in sorted key order so the same criteria always produce the
// same URL; the segment table is keyed on it.
func BuildSearchURL(cityID int, c model.SegmentCriteria) string {
	params := map[string]string{
		"city":      strconv.Itoa(cityID),
		"multiCity": strconv.Itoa(cityID),
	}
	if c.MinRooms != nil {
		params["minRooms"] = formatFloat(*c.MinRooms)
	}
	if c.MaxRooms != nil {
		params["maxRooms"] = formatFloat(*c.MaxRooms)
	}
	if c.MinPrice != nil {
		params["minPrice"] = strconv.FormatInt(*c.MinPrice, 10)
	}
	if c.MaxPrice != nil {
		params["maxPrice"] = strconv.FormatInt(*c.MaxPrice, 10)
	}
	if c.MinFloor != nil {
		params["minFloor"] = strconv.Itoa(*c.MinFloor)
	}
	if c.MaxFloor != nil {
		params["maxFloor"] = strconv.Itoa(*c.MaxFloor)
	}
	if c.MinSize != nil {
		params["minSquaremeter"] = strconv.Itoa(*c.MinSize)
	}
	if c.MaxSize != nil {
		params["maxSquaremeter"] = strconv.Itoa(*c.MaxSize)
	}
	if c.Parking {
		params["parking"] = "1"
	}
	if c.Elevator {
		params["elevator"] = "1"
	}
	if c.Balcony {
		params["balcony"] = "1"
	}
	if c.SafeRoom {
		params["mamad"] = "1"
	}
	if id, ok := propertyTypeIDs[strings.ToLower(c.PropertyType)]; ok {
		params["property"] = strconv.Itoa(id)
	}
	if id, ok := conditionIDs[strings.ToLower(c.Condition)]; ok {
		params["propertyCondition"] = strconv.Itoa(id)
	}

	keys := make([]string, 0, len(params))
	for key := range params {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	pairs := make([]string, 0, len(keys))
	for _, key := range keys {
		pairs = append(pairs, key+"="+params[key])
	}
	return searchBaseURL + "?" + strings.Join(pairs, "&")
}

// SegmentName builds the human-readable label for a tracked segment.
func SegmentName(city string, c model.SegmentCriteria) string {
	parts := []string{city}
	if c.MinRooms != nil {
		parts = append(parts, fmt.Sprintf("%s+ rms", formatFloat(*c.MinRooms)))
	}
	if c.MaxPrice != nil {
		parts = append(parts, fmt.Sprintf("<%.1fM", float64(*c.MaxPrice)/1000000))
	}
	if c.PropertyType != "" {
		parts = append(parts, c.PropertyType)
	}
	return strings.Join(parts, ", ")
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
