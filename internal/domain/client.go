package domain

// Represents a single location of a routing problem.
// Location 0 is the depot; every other location is a client visit. The depot
// uses TWEarly/TWLate as the opening and closing time of the planning horizon
// and ignores Demand, Prize and Required.
type Client struct {
	Coordinates
	Demand          int
	ServiceDuration int
	TWEarly         int
	TWLate          int
	ReleaseTime     int
	Prize           int
	Required        bool
}
