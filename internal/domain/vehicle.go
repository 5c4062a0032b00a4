package domain

// VehicleType describes a homogeneous group of vehicles in the fleet.
type VehicleType struct {
	Capacity     int
	NumAvailable int
}
