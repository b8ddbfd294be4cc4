package normalize

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/sivanlg/homeradar/internal/model"
)

const titleMaxChars = 100

// Record is one loosely-structured item from a scraper output batch.
// Different scrape paths use different field names for the same thing,
// so all extraction below is best-effort with safe defaults.
type Record map[string]interface{}

// Context carries batch-level metadata that individual items may lack,
// such as the city a tracked segment was scraped for.
type Context struct {
	City         string
	Neighborhood string
}

// Normalized is the canonical form of one raw record: the ad row, the
// analytical snapshot fields and the semantic document used for hashing
// and embedding.
type Normalized struct {
	Ad           model.Ad
	Price        int64
	Rooms        float64
	SquareMeters int
	Floor        int
	Attributes   json.RawMessage
	Document     string
}

// Normalize maps a raw scraped record to its canonical form. A record
// with no resolvable id is rejected with an error; the caller skips it
// and continues the batch. Malformed numeric fields never fail the
// record, they coerce to zero.
func Normalize(raw Record, meta Context) (*Normalized, error) {
	id := firstString(raw, "adNumber", "id", "token")
	if id == "" {
		return nil, fmt.Errorf("record has no resolvable id")
	}

	details := childMap(raw, "additionalDetails")

	description := strings.TrimSpace(firstString(raw, "searchText", "search_text", "description"))
	propertyType := nestedText(details, "property")
	if propertyType == "" {
		propertyType = firstString(raw, "asset_type_text", "property_type")
	}
	condition := nestedText(details, "propertyCondition")

	city := meta.City
	if city == "" {
		city = firstString(raw, "city_text", "city")
	}
	neighborhood := meta.Neighborhood
	if neighborhood == "" {
		neighborhood = firstString(raw, "neighborhood")
	}

	price := parsePrice(raw["price"])
	rooms := toFloat(firstValue(details, raw, "roomsCount"))
	sqm := toInt(firstValue(details, raw, "squareMeter"))
	floor := toInt(details["floor"])
	if floor == 0 {
		floor = toInt(details["buildingTopFloor"])
	}

	title := deriveTitle(description)
	if title == "" {
		title = firstString(raw, "title_1", "title")
	}

	attrs := details
	if attrs == nil {
		attrs = raw
	}
	attrBlob, err := json.Marshal(attrs)
	if err != nil {
		return nil, fmt.Errorf("encode attributes: %w", err)
	}
	rawBlob, err := json.Marshal(raw)
	if err != nil {
		return nil, fmt.Errorf("encode raw record: %w", err)
	}

	return &Normalized{
		Ad: model.Ad{
			ID:           id,
			Status:       model.AdStatusActive,
			Title:        title,
			Description:  description,
			City:         city,
			Neighborhood: neighborhood,
			PropertyType: propertyType,
			RawData:      rawBlob,
		},
		Price:        price,
		Rooms:        rooms,
		SquareMeters: sqm,
		Floor:        floor,
		Attributes:   attrBlob,
		Document:     buildDocument(city, propertyType, condition, description, amenities(raw)),
	}, nil
}

// HashDocument returns the hex SHA-256 digest of a semantic document.
// It is only an equality proxy for "has the content changed", never a
// security primitive.
func HashDocument(doc string) string {
	sum := sha256.Sum256([]byte(doc))
	return hex.EncodeToString(sum[:])
}

// buildDocument composes the text that gets hashed and embedded. The
// field set deliberately excludes price, rooms, floor and square meters:
// a price- or room-only change must never trigger re-embedding. Amenity
// order is sorted so the same record always yields the same document.
func buildDocument(city, propertyType, condition, description string, amenities []string) string {
	parts := make([]string, 0, 5)
	if city != "" {
		parts = append(parts, "City: "+city)
	}
	parts = append(parts,
		"Type: "+propertyType,
		"Condition: "+condition,
		"Description: "+description,
	)
	if len(amenities) > 0 {
		parts = append(parts, "Amenities: "+strings.Join(amenities, ", "))
	}
	return strings.Join(parts, "\n")
}

func amenities(raw Record) []string {
	flags := childMap(raw, "inProperty")
	if len(flags) == 0 {
		return nil
	}
	names := make([]string, 0, len(flags))
	for key, value := range flags {
		enabled, ok := value.(bool)
		if !ok || !enabled {
			continue
		}
		names = append(names, strings.TrimPrefix(key, "include"))
	}
	sort.Strings(names)
	return names
}

func deriveTitle(description string) string {
	runes := []rune(description)
	if len(runes) > titleMaxChars {
		return string(runes[:titleMaxChars]) + "..."
	}
	return description
}

// parsePrice tolerates locale-formatted strings such as "2,500,000 ₪"
// as well as plain JSON numbers. Anything unparseable is zero.
func parsePrice(value interface{}) int64 {
	switch v := value.(type) {
	case nil:
		return 0
	case float64:
		return int64(v)
	case int64:
		return v
	case int:
		return int64(v)
	case json.Number:
		f, err := v.Float64()
		if err != nil {
			return 0
		}
		return int64(f)
	case string:
		cleaned := strings.NewReplacer("₪", "", "$", "", ",", "", "NIS", "", " ", "", " ", "").Replace(v)
		cleaned = strings.TrimSpace(cleaned)
		if cleaned == "" {
			return 0
		}
		if n, err := strconv.ParseInt(cleaned, 10, 64); err == nil {
			return n
		}
		if f, err := strconv.ParseFloat(cleaned, 64); err == nil {
			return int64(f)
		}
		return 0
	default:
		return 0
	}
}

func toFloat(value interface{}) float64 {
	switch v := value.(type) {
	case float64:
		return v
	case int:
		return float64(v)
	case int64:
		return float64(v)
	case json.Number:
		f, _ := v.Float64()
		return f
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return 0
		}
		return f
	default:
		return 0
	}
}

func toInt(value interface{}) int {
	return int(toFloat(value))
}

func firstString(raw Record, keys ...string) string {
	for _, key := range keys {
		if s := asString(raw[key]); s != "" {
			return s
		}
	}
	return ""
}

// firstValue prefers the nested details map over the top-level record
// for analytical fields; some scrape paths flatten them.
func firstValue(details, raw Record, key string) interface{} {
	if details != nil {
		if v, ok := details[key]; ok && v != nil {
			return v
		}
	}
	return raw[key]
}

func asString(value interface{}) string {
	switch v := value.(type) {
	case string:
		return strings.TrimSpace(v)
	case float64:
		return strconv.FormatInt(int64(v), 10)
	case json.Number:
		return v.String()
	default:
		return ""
	}
}

func childMap(raw Record, key string) Record {
	if m, ok := raw[key].(map[string]interface{}); ok {
		return m
	}
	return nil
}

// nestedText extracts details.<key>.text, the shape the marketplace uses
// for labeled enums such as property type and condition.
func nestedText(details Record, key string) string {
	if details == nil {
		return ""
	}
	if m, ok := details[key].(map[string]interface{}); ok {
		return asString(m["text"])
	}
	return asString(details[key])
}
