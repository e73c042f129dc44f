package repository

import (
	"context"
	"fmt"
	"os"
	"sort"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/seoul-transit/service-route-search/internal/domain/station"
)

// builtinStations are the station codes the service has always known.
var builtinStations = []station.Station{
	{ID: "222", Name: "Gangnam", Coordinate: station.Coordinate{Longitude: "127.02761", Latitude: "37.49794"}},
	{ID: "216", Name: "Jamsil", Coordinate: station.Coordinate{Longitude: "127.10022", Latitude: "37.51336"}},
}

// StationFile is the on-disk layout of an additional station table.
type StationFile struct {
	Stations []StationEntry `yaml:"stations" validate:"dive"`
}

// StationEntry is one row of a StationFile.
type StationEntry struct {
	ID   string `yaml:"id" validate:"required"`
	Name string `yaml:"name"`
	Lon  string `yaml:"lon" validate:"required,longitude"`
	Lat  string `yaml:"lat" validate:"required,latitude"`
}

// StaticStationRepository is the in-memory, read-only implementation of station.Repository.
type StaticStationRepository struct {
	byID    map[string]station.Station
	ordered []station.Station
}

// NewStaticStationRepository creates a repository holding the built-in stations
// plus extra. Entries in extra replace built-in entries with the same ID.
func NewStaticStationRepository(extra ...station.Station) *StaticStationRepository {
	byID := make(map[string]station.Station, len(builtinStations)+len(extra))
	for _, s := range builtinStations {
		byID[s.ID] = s
	}
	for _, s := range extra {
		byID[s.ID] = s
	}

	ordered := make([]station.Station, 0, len(byID))
	for _, s := range byID {
		ordered = append(ordered, s)
	}
	sort.Slice(ordered, func(i, j int) bool { return ordered[i].ID < ordered[j].ID })

	return &StaticStationRepository{byID: byID, ordered: ordered}
}

// FindByID returns the station registered under id.
func (r *StaticStationRepository) FindByID(_ context.Context, id string) (station.Station, error) {
	s, ok := r.byID[id]
	if !ok {
		return station.Station{}, fmt.Errorf("station %q: %w", id, station.ErrStationNotFound)
	}
	return s, nil
}

// All returns every station ordered by ID.
func (r *StaticStationRepository) All(_ context.Context) ([]station.Station, error) {
	out := make([]station.Station, len(r.ordered))
	copy(out, r.ordered)
	return out, nil
}

// LoadStationFile reads and validates a YAML station table.
func LoadStationFile(path string) ([]station.Station, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read station file: %w", err)
	}
	return ParseStationFile(data)
}

// ParseStationFile decodes and validates YAML station table content.
func ParseStationFile(data []byte) ([]station.Station, error) {
	var file StationFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse station file: %w", err)
	}
	if err := validator.New().Struct(file); err != nil {
		return nil, fmt.Errorf("validate station file: %w", err)
	}

	seen := make(map[string]bool, len(file.Stations))
	stations := make([]station.Station, 0, len(file.Stations))
	for _, e := range file.Stations {
		if seen[e.ID] {
			return nil, fmt.Errorf("validate station file: duplicate station id %q", e.ID)
		}
		seen[e.ID] = true

		coord, err := station.NewCoordinate(e.Lon, e.Lat)
		if err != nil {
			return nil, fmt.Errorf("station %q: %w", e.ID, err)
		}
		stations = append(stations, station.Station{ID: e.ID, Name: e.Name, Coordinate: coord})
	}
	return stations, nil
}
