package repositories

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"os"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"vrp-search-service/internal/domain"
	"vrp-search-service/internal/ports"
)

// OpenHorizon is the closing time used for locations without tw_late.
const OpenHorizon = math.MaxInt32

// LocationDoc is the stored form of the depot or a client.
type LocationDoc struct {
	X               float64 `yaml:"x" json:"x"`
	Y               float64 `yaml:"y" json:"y"`
	Demand          int     `yaml:"demand,omitempty" json:"demand,omitempty" validate:"gte=0"`
	ServiceDuration int     `yaml:"service_duration,omitempty" json:"service_duration,omitempty" validate:"gte=0"`
	TWEarly         int     `yaml:"tw_early,omitempty" json:"tw_early,omitempty" validate:"gte=0"`
	TWLate          *int    `yaml:"tw_late,omitempty" json:"tw_late,omitempty"`
	ReleaseTime     int     `yaml:"release_time,omitempty" json:"release_time,omitempty" validate:"gte=0"`
	Prize           int     `yaml:"prize,omitempty" json:"prize,omitempty" validate:"gte=0"`
	// Clients are required unless stated otherwise.
	Required *bool `yaml:"required,omitempty" json:"required,omitempty"`
}

type VehicleTypeDoc struct {
	Capacity     int `yaml:"capacity" json:"capacity" validate:"gte=0"`
	NumAvailable int `yaml:"num_available" json:"num_available" validate:"gte=1"`
}

// InstanceDocument is the YAML/JSON form of a routing instance. Matrices are
// optional: when both are absent they are computed by a MatrixProvider, and
// a lone distance matrix doubles as the duration matrix.
type InstanceDocument struct {
	Name         string           `yaml:"name" json:"name"`
	Depot        LocationDoc      `yaml:"depot" json:"depot"`
	Clients      []LocationDoc    `yaml:"clients" json:"clients" validate:"required,min=1,dive"`
	VehicleTypes []VehicleTypeDoc `yaml:"vehicle_types" json:"vehicle_types" validate:"required,min=1,dive"`
	Distances    [][]int          `yaml:"distances,omitempty" json:"distances,omitempty"`
	Durations    [][]int          `yaml:"durations,omitempty" json:"durations,omitempty"`
}

var validate = validator.New()

// ParseInstanceDocument decodes a YAML or JSON instance document.
func ParseInstanceDocument(r io.Reader) (InstanceDocument, error) {
	var doc InstanceDocument

	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&doc); err != nil {
		if errors.Is(err, io.EOF) {
			return InstanceDocument{}, fmt.Errorf("parse instance: %w: empty document", domain.ErrInvalidProblem)
		}
		return InstanceDocument{}, fmt.Errorf("parse instance: %w: %v", domain.ErrInvalidProblem, err)
	}

	if err := doc.Validate(); err != nil {
		return InstanceDocument{}, err
	}
	return doc, nil
}

// ReadInstanceFile parses the instance document stored at path.
func ReadInstanceFile(path string) (InstanceDocument, error) {
	f, err := os.Open(path)
	if err != nil {
		return InstanceDocument{}, fmt.Errorf("read instance %q: %w", path, err)
	}
	defer f.Close()

	doc, err := ParseInstanceDocument(f)
	if err != nil {
		return InstanceDocument{}, fmt.Errorf("read instance %q: %w", path, err)
	}
	return doc, nil
}

func (doc InstanceDocument) Validate() error {
	if err := validate.Struct(doc); err != nil {
		return fmt.Errorf("instance document: %w: %v", domain.ErrInvalidProblem, err)
	}
	if doc.Distances == nil && doc.Durations != nil {
		return fmt.Errorf("instance document: %w: durations given without distances", domain.ErrInvalidProblem)
	}
	return nil
}

// Info summarises the document under the given id.
func (doc InstanceDocument) Info(id string) domain.InstanceInfo {
	vehicles := 0
	for _, vt := range doc.VehicleTypes {
		vehicles += vt.NumAvailable
	}
	name := doc.Name
	if name == "" {
		name = id
	}
	return domain.InstanceInfo{
		ID:          id,
		Name:        name,
		NumClients:  len(doc.Clients),
		NumVehicles: vehicles,
	}
}

func (l LocationDoc) client(depot bool) domain.Client {
	c := domain.Client{
		Coordinates:     domain.Coordinates{X: l.X, Y: l.Y},
		ServiceDuration: l.ServiceDuration,
		TWEarly:         l.TWEarly,
		TWLate:          OpenHorizon,
		ReleaseTime:     l.ReleaseTime,
	}
	if l.TWLate != nil {
		c.TWLate = *l.TWLate
	}
	if depot {
		return c
	}

	c.Demand = l.Demand
	c.Prize = l.Prize
	c.Required = l.Required == nil || *l.Required
	return c
}

// ProblemData builds validated problem data from the document, asking mp for
// matrices when the document carries none. mp may be nil when every
// document is expected to include its matrices.
func (doc InstanceDocument) ProblemData(ctx context.Context, mp ports.MatrixProvider) (*domain.ProblemData, error) {
	locations := make([]domain.Client, 0, 1+len(doc.Clients))
	locations = append(locations, doc.Depot.client(true))
	for _, c := range doc.Clients {
		locations = append(locations, c.client(false))
	}

	vehicleTypes := make([]domain.VehicleType, 0, len(doc.VehicleTypes))
	for _, vt := range doc.VehicleTypes {
		vehicleTypes = append(vehicleTypes, domain.VehicleType{Capacity: vt.Capacity, NumAvailable: vt.NumAvailable})
	}

	dist, dur := domain.Matrix(doc.Distances), domain.Matrix(doc.Durations)
	switch {
	case dist != nil && dur == nil:
		dur = dist
	case dist == nil:
		if mp == nil {
			return nil, fmt.Errorf("build instance: %w: no matrices and no matrix provider", domain.ErrInvalidProblem)
		}
		pts := make([]domain.Coordinates, 0, len(locations))
		for _, l := range locations {
			pts = append(pts, l.Coordinates)
		}
		var err error
		dist, dur, err = mp.Matrices(ctx, pts)
		if err != nil {
			return nil, fmt.Errorf("build instance: matrices: %w", err)
		}
	}

	data, err := domain.NewProblemData(locations, vehicleTypes, dist, dur)
	if err != nil {
		return nil, fmt.Errorf("build instance: %w", err)
	}
	return data, nil
}
