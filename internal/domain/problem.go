package domain

import (
	"fmt"
	"math"
)

// Matrix is a dense square matrix of integer travel metrics between locations.
type Matrix [][]int

// NewMatrix allocates a zeroed n×n matrix.
func NewMatrix(n int) Matrix {
	m := make(Matrix, n)
	for i := range m {
		m[i] = make([]int, n)
	}
	return m
}

// Size returns the number of rows.
func (m Matrix) Size() int { return len(m) }

func (m Matrix) validate(name string, n int) error {
	if len(m) != n {
		return fmt.Errorf("%w: %s matrix has %d rows, want %d", ErrInvalidProblem, name, len(m), n)
	}
	for i, row := range m {
		if len(row) != n {
			return fmt.Errorf("%w: %s matrix row %d has %d columns, want %d", ErrInvalidProblem, name, i, len(row), n)
		}
		for j, v := range row {
			if v < 0 {
				return fmt.Errorf("%w: %s[%d][%d] = %d is negative", ErrInvalidProblem, name, i, j, v)
			}
		}
		if row[i] != 0 {
			return fmt.Errorf("%w: %s[%d][%d] must be zero", ErrInvalidProblem, name, i, i)
		}
	}
	return nil
}

// ProblemData is the read-only description of a routing instance: depot and
// client locations, the vehicle catalogue, and distance/duration matrices.
// It is safe for concurrent use once constructed.
type ProblemData struct {
	clients      []Client
	vehicleTypes []VehicleType
	distance     Matrix
	duration     Matrix
	totalPrize   int
	numVehicles  int
}

// NewProblemData validates and assembles problem data. locations[0] is the
// depot. The matrices must be square over all locations with a zero diagonal.
func NewProblemData(locations []Client, vehicleTypes []VehicleType, distance, duration Matrix) (*ProblemData, error) {
	if len(locations) == 0 {
		return nil, fmt.Errorf("%w: at least a depot location is required", ErrInvalidProblem)
	}
	if len(vehicleTypes) == 0 {
		return nil, fmt.Errorf("%w: vehicle catalogue must not be empty", ErrInvalidProblem)
	}

	n := len(locations)
	if err := distance.validate("distance", n); err != nil {
		return nil, err
	}
	if err := duration.validate("duration", n); err != nil {
		return nil, err
	}

	data := &ProblemData{
		clients:      append([]Client(nil), locations...),
		vehicleTypes: append([]VehicleType(nil), vehicleTypes...),
		distance:     distance,
		duration:     duration,
	}

	for i, c := range data.clients {
		if c.TWEarly > c.TWLate {
			return nil, fmt.Errorf("%w: location %d has tw_early %d after tw_late %d", ErrInvalidProblem, i, c.TWEarly, c.TWLate)
		}
		if c.ServiceDuration < 0 || c.ReleaseTime < 0 {
			return nil, fmt.Errorf("%w: location %d has negative service duration or release time", ErrInvalidProblem, i)
		}
		if i == 0 {
			continue
		}
		if c.Demand < 0 || c.Prize < 0 {
			return nil, fmt.Errorf("%w: client %d has negative demand or prize", ErrInvalidProblem, i)
		}
		data.totalPrize += c.Prize
	}

	for i, vt := range data.vehicleTypes {
		if vt.Capacity < 0 || vt.NumAvailable <= 0 {
			return nil, fmt.Errorf("%w: vehicle type %d needs capacity >= 0 and num_available > 0", ErrInvalidProblem, i)
		}
		data.numVehicles += vt.NumAvailable
	}

	return data, nil
}

// Depot returns the depot location.
func (d *ProblemData) Depot() Client { return d.clients[0] }

// Client returns location idx; idx 0 is the depot.
func (d *ProblemData) Client(idx int) Client { return d.clients[idx] }

// NumClients returns the number of client locations, excluding the depot.
func (d *ProblemData) NumClients() int { return len(d.clients) - 1 }

// NumLocations returns the number of locations, including the depot.
func (d *ProblemData) NumLocations() int { return len(d.clients) }

// IsClient reports whether idx addresses a client location.
func (d *ProblemData) IsClient(idx int) bool { return idx >= 1 && idx < len(d.clients) }

// VehicleType returns catalogue entry idx.
func (d *ProblemData) VehicleType(idx int) VehicleType { return d.vehicleTypes[idx] }

// NumVehicleTypes returns the size of the vehicle catalogue.
func (d *ProblemData) NumVehicleTypes() int { return len(d.vehicleTypes) }

// NumVehicles returns the total number of vehicles over all types.
func (d *ProblemData) NumVehicles() int { return d.numVehicles }

// TotalPrize returns the sum of all client prizes.
func (d *ProblemData) TotalPrize() int { return d.totalPrize }

// Dist returns the travel distance from location i to location j.
func (d *ProblemData) Dist(i, j int) int { return d.distance[i][j] }

// Duration returns the travel duration from location i to location j.
func (d *ProblemData) Duration(i, j int) int { return d.duration[i][j] }

// DistanceMatrix returns the distance matrix. Callers must not modify it.
func (d *ProblemData) DistanceMatrix() Matrix { return d.distance }

// DurationMatrix returns the duration matrix. Callers must not modify it.
func (d *ProblemData) DurationMatrix() Matrix { return d.duration }

// EuclideanMatrix returns rounded Euclidean distances between the given points.
func EuclideanMatrix(pts []Coordinates) Matrix {
	m := NewMatrix(len(pts))
	for i, a := range pts {
		for j, b := range pts {
			if i == j {
				continue
			}
			m[i][j] = int(math.Round(math.Hypot(a.X-b.X, a.Y-b.Y)))
		}
	}
	return m
}
