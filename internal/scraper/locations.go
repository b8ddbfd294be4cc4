package scraper

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
)

// LocationResolver maps marketplace city names to the numeric location
// ids the marketplace search URL expects. The mapping is loaded once from
// the scraper's locations file at construction.
type LocationResolver struct {
	cities map[string]int
}

type locationsFile struct {
	TopAreas []struct {
		Areas []struct {
			Cities []struct {
				ID   int    `json:"id"`
				Name string `json:"name"`
			} `json:"cities"`
		} `json:"areas"`
	} `json:"topAreas"`
}

func NewLocationResolver(path string) (*LocationResolver, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read locations file: %w", err)
	}
	var file locationsFile
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("decode locations file: %w", err)
	}
	cities := make(map[string]int)
	for _, top := range file.TopAreas {
		for _, area := range top.Areas {
			for _, city := range area.Cities {
				cities[strings.TrimSpace(city.Name)] = city.ID
			}
		}
	}
	return &LocationResolver{cities: cities}, nil
}

// ResolveCity returns the marketplace id for a city name, exact match
// after trimming.
func (r *LocationResolver) ResolveCity(name string) (int, bool) {
	id, ok := r.cities[strings.TrimSpace(name)]
	return id, ok
}
