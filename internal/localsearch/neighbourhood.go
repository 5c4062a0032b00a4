package localsearch

import (
	"errors"
	"fmt"
	"slices"

	"vrp-search-service/internal/domain"
)

// Neighbours lists, per location, the clients considered for moves around
// it. The depot's list is empty.
type Neighbours [][]int

// NeighbourhoodParams controls how granular neighbourhoods are built.
type NeighbourhoodParams struct {
	WeightWaitTime      float64
	WeightTimeWarp      float64
	NumNeighbours       int
	SymmetricProximity  bool
	SymmetricNeighbours bool
}

// DefaultNeighbourhoodParams returns the weights and list size used unless configured otherwise.
func DefaultNeighbourhoodParams() NeighbourhoodParams {
	return NeighbourhoodParams{
		WeightWaitTime:     0.2,
		WeightTimeWarp:     1.0,
		NumNeighbours:      40,
		SymmetricProximity: true,
	}
}

var ErrInvalidNeighbours = errors.New("invalid neighbourhood")

// ComputeNeighbours ranks, for every client, the other clients by a proximity
// combining distance, the minimum wait and time warp incurred when visiting
// one after the other, and the target's prize. It keeps the closest
// NumNeighbours.
func ComputeNeighbours(data *domain.ProblemData, params NeighbourhoodParams) (Neighbours, error) {
	if params.NumNeighbours <= 0 {
		return nil, fmt.Errorf("compute neighbours: %w: num_neighbours must be positive, got %d", ErrInvalidNeighbours, params.NumNeighbours)
	}
	if params.WeightWaitTime < 0 || params.WeightTimeWarp < 0 {
		return nil, fmt.Errorf("compute neighbours: %w: weights must be non-negative", ErrInvalidNeighbours)
	}

	n := data.NumLocations()
	prox := make([][]float64, n)
	for i := 1; i < n; i++ {
		prox[i] = make([]float64, n)
		ci := data.Client(i)
		for j := 1; j < n; j++ {
			if i == j {
				continue
			}
			cj := data.Client(j)
			dur := data.Duration(i, j)
			minWait := max(cj.TWEarly-dur-ci.ServiceDuration-ci.TWLate, 0)
			minTW := max(ci.TWEarly+ci.ServiceDuration+dur-cj.TWLate, 0)
			prox[i][j] = float64(data.Dist(i, j)) +
				params.WeightWaitTime*float64(minWait) +
				params.WeightTimeWarp*float64(minTW) -
				float64(cj.Prize)
		}
	}

	if params.SymmetricProximity {
		for i := 1; i < n; i++ {
			for j := i + 1; j < n; j++ {
				m := min(prox[i][j], prox[j][i])
				prox[i][j], prox[j][i] = m, m
			}
		}
	}

	k := min(params.NumNeighbours, n-2)
	nb := make(Neighbours, n)
	nb[0] = []int{}
	for i := 1; i < n; i++ {
		cands := make([]int, 0, n-2)
		for j := 1; j < n; j++ {
			if j != i {
				cands = append(cands, j)
			}
		}
		byProximity(cands, prox[i])
		nb[i] = cands[:max(k, 0)]
	}

	if params.SymmetricNeighbours {
		in := make([]map[int]bool, n)
		for i := 1; i < n; i++ {
			in[i] = make(map[int]bool, len(nb[i]))
			for _, j := range nb[i] {
				in[i][j] = true
			}
		}
		for i := 1; i < n; i++ {
			for _, j := range nb[i] {
				if !in[j][i] {
					in[j][i] = true
					nb[j] = append(nb[j], i)
				}
			}
		}
		for i := 1; i < n; i++ {
			byProximity(nb[i], prox[i])
		}
	}

	return nb, nil
}

func byProximity(cands []int, prox []float64) {
	slices.SortStableFunc(cands, func(a, b int) int {
		switch {
		case prox[a] < prox[b]:
			return -1
		case prox[a] > prox[b]:
			return 1
		}
		return a - b
	})
}

func (nb Neighbours) validate(numLocations int) error {
	if len(nb) != numLocations {
		return fmt.Errorf("%w: %d lists for %d locations", ErrInvalidNeighbours, len(nb), numLocations)
	}
	if len(nb[0]) != 0 {
		return fmt.Errorf("%w: depot must not have neighbours", ErrInvalidNeighbours)
	}
	for i := 1; i < numLocations; i++ {
		for _, j := range nb[i] {
			if j <= 0 || j >= numLocations || j == i {
				return fmt.Errorf("%w: client %d lists neighbour %d", ErrInvalidNeighbours, i, j)
			}
		}
	}
	return nil
}

func (nb Neighbours) clone() Neighbours {
	out := make(Neighbours, len(nb))
	for i, l := range nb {
		out[i] = append([]int{}, l...)
	}
	return out
}
