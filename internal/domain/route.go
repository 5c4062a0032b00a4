package domain

import "fmt"

// Represents the ordered visits of one vehicle, starting and ending at the depot.
// A Route is computed once from its visits and is read-only afterwards; every
// statistic is derived in a single forward pass over the visits.
type Route struct {
	visits      []int
	vehicleType int
	capacity    int

	distance        int
	duration        int
	demand          int
	serviceDuration int
	prizes          int
	waitDuration    int
	timeWarp        int
	excessLoad      int
	releaseTime     int
	centroid        Coordinates
}

// NewRoute builds a route for the given vehicle type and computes its statistics.
// An empty visit list yields a route with all-zero statistics; Solution rejects it.
func NewRoute(data *ProblemData, visits []int, vehicleType int) (Route, error) {
	if vehicleType < 0 || vehicleType >= data.NumVehicleTypes() {
		return Route{}, fmt.Errorf("new route: %w: %d", ErrUnknownVehicleType, vehicleType)
	}
	for _, c := range visits {
		if !data.IsClient(c) {
			return Route{}, fmt.Errorf("new route: %w: %d", ErrUnknownClient, c)
		}
	}

	r := Route{
		visits:      append([]int(nil), visits...),
		vehicleType: vehicleType,
		capacity:    data.VehicleType(vehicleType).Capacity,
	}
	r.evaluate(data)
	return r, nil
}

func (r *Route) evaluate(data *ProblemData) {
	if len(r.visits) == 0 {
		return
	}

	depot := data.Depot()
	pts := make([]Coordinates, 0, len(r.visits))
	for _, c := range r.visits {
		client := data.Client(c)
		r.releaseTime = max(r.releaseTime, client.ReleaseTime)
		r.demand += client.Demand
		r.serviceDuration += client.ServiceDuration
		r.prizes += client.Prize
		pts = append(pts, client.Coordinates)
	}
	r.centroid = Centroid(pts)
	r.excessLoad = max(r.demand-r.capacity, 0)

	now := max(r.releaseTime, depot.TWEarly)
	prev := 0
	travel := 0
	for _, c := range r.visits {
		client := data.Client(c)

		r.distance += data.Dist(prev, c)
		travel += data.Duration(prev, c)
		now += data.Client(prev).ServiceDuration + data.Duration(prev, c)

		if now < client.TWEarly {
			r.waitDuration += client.TWEarly - now
			now = client.TWEarly
		}
		if now > client.TWLate {
			r.timeWarp += now - client.TWLate
			now = client.TWLate
		}
		prev = c
	}

	// Return leg to the depot, checked against its closing time.
	r.distance += data.Dist(prev, 0)
	travel += data.Duration(prev, 0)
	now += data.Client(prev).ServiceDuration + data.Duration(prev, 0)
	if now > depot.TWLate {
		r.timeWarp += now - depot.TWLate
	}

	r.duration = travel + r.serviceDuration + r.waitDuration
}

// Visits returns a copy of the visited client indices in order.
func (r Route) Visits() []int { return append([]int(nil), r.visits...) }

// Size returns the number of visits.
func (r Route) Size() int { return len(r.visits) }

// Empty reports whether the route has no visits.
func (r Route) Empty() bool { return len(r.visits) == 0 }

// VehicleType returns the index of the route's vehicle type.
func (r Route) VehicleType() int { return r.vehicleType }

// Capacity returns the capacity of the route's vehicle type.
func (r Route) Capacity() int { return r.capacity }

func (r Route) Distance() int        { return r.distance }
func (r Route) Duration() int        { return r.duration }
func (r Route) Demand() int          { return r.demand }
func (r Route) ServiceDuration() int { return r.serviceDuration }
func (r Route) Prizes() int          { return r.prizes }
func (r Route) WaitDuration() int    { return r.waitDuration }
func (r Route) TimeWarp() int        { return r.timeWarp }
func (r Route) ExcessLoad() int      { return r.excessLoad }
func (r Route) ReleaseTime() int     { return r.releaseTime }

// Centroid returns the mean coordinates of the visited clients.
func (r Route) Centroid() Coordinates { return r.centroid }

// HasExcessLoad reports whether demand exceeds the vehicle capacity.
func (r Route) HasExcessLoad() bool { return r.excessLoad > 0 }

// HasTimeWarp reports whether any time window or the depot horizon is violated.
func (r Route) HasTimeWarp() bool { return r.timeWarp > 0 }

// IsFeasible reports whether the route has neither excess load nor time warp.
func (r Route) IsFeasible() bool { return !r.HasExcessLoad() && !r.HasTimeWarp() }
