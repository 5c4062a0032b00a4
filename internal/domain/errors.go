package domain

import "errors"

var (
	// ErrInvalidProblem indicates inconsistent or out-of-range problem data.
	ErrInvalidProblem = errors.New("invalid problem data")
	// ErrUnknownClient indicates a visit that does not reference a client location.
	ErrUnknownClient = errors.New("unknown client")
	// ErrUnknownVehicleType indicates a vehicle type index outside the catalogue.
	ErrUnknownVehicleType = errors.New("unknown vehicle type")

	// ErrTooManyRoutes indicates more routes than vehicles in the fleet.
	ErrTooManyRoutes = errors.New("more routes than available vehicles")
	// ErrEmptyRoute indicates a route without visits.
	ErrEmptyRoute = errors.New("route is empty")
	// ErrVehicleTypeOveruse indicates a vehicle type used more often than available.
	ErrVehicleTypeOveruse = errors.New("vehicle type used more often than available")
	// ErrMissingClient indicates a required client that no route visits.
	ErrMissingClient = errors.New("required client not visited")
	// ErrDuplicateClient indicates a client visited more than once.
	ErrDuplicateClient = errors.New("client visited more than once")

	// ErrNotFound is returned by repositories and stores for unknown ids.
	ErrNotFound = errors.New("requested resource not found")
)
