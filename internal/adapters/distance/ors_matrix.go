package distance

import (
	"context"
	"errors"
	"fmt"
	"math"
	"net/http"
	"time"

	"vrp-search-service/internal/domain"
	"vrp-search-service/internal/platform/obs"
)

// ORSMatrixProvider implements MatrixProvider using the OpenRouteService
// matrix endpoint. Coordinates are interpreted as (lon, lat).
//
// Large instances are fetched in blocks of source rows so that no single
// request exceeds MaxElements matrix cells. The provider is safe for
// concurrent use.
type ORSMatrixProvider struct {
	session     *http.Client
	apiKey      string
	baseURL     string
	profile     string
	maxElements int
	maxAttempts int
	backoff     time.Duration
}

// ORSOption customises an ORSMatrixProvider.
type ORSOption func(*ORSMatrixProvider)

func WithBaseURL(u string) ORSOption { return func(o *ORSMatrixProvider) { o.baseURL = u } }

func WithProfile(p string) ORSOption { return func(o *ORSMatrixProvider) { o.profile = p } }

func WithHTTPClient(c *http.Client) ORSOption { return func(o *ORSMatrixProvider) { o.session = c } }

// WithMaxElements caps the number of matrix cells requested per call.
func WithMaxElements(n int) ORSOption { return func(o *ORSMatrixProvider) { o.maxElements = n } }

// WithRetry sets the attempt count and the first backoff delay.
func WithRetry(attempts int, backoff time.Duration) ORSOption {
	return func(o *ORSMatrixProvider) {
		o.maxAttempts = attempts
		o.backoff = backoff
	}
}

func NewORSMatrixProvider(apiKey string, opts ...ORSOption) (*ORSMatrixProvider, error) {
	if apiKey == "" {
		return nil, errors.New("ORS api key is empty")
	}

	provider := &ORSMatrixProvider{
		session:     &http.Client{Timeout: 10 * time.Second},
		apiKey:      apiKey,
		baseURL:     "https://api.openrouteservice.org",
		profile:     "driving-car",
		maxElements: 3500,
		maxAttempts: 4,
		backoff:     200 * time.Millisecond,
	}
	for _, opt := range opts {
		opt(provider)
	}
	if provider.maxAttempts < 1 {
		provider.maxAttempts = 1
	}

	return provider, nil
}

type matrixRequest struct {
	Locations    [][]float64 `json:"locations"`
	Destinations []int       `json:"destinations,omitempty"`
	Metrics      []string    `json:"metrics"`
	Sources      []int       `json:"sources"`
}

type matrixResponse struct {
	Distances [][]*float64 `json:"distances"`
	Durations [][]*float64 `json:"durations"`
}

// Matrices fetches the full distance (metres) and duration (seconds)
// matrices between pts.
func (o *ORSMatrixProvider) Matrices(ctx context.Context, pts []domain.Coordinates) (_ domain.Matrix, _ domain.Matrix, err error) {
	defer obs.Time(ctx, "ors.Matrices")(&err)

	n := len(pts)
	dist, dur := domain.NewMatrix(n), domain.NewMatrix(n)
	if n < 2 {
		return dist, dur, nil
	}

	locations := make([][]float64, 0, n)
	for _, c := range pts {
		locations = append(locations, c.CoordsToList())
	}

	block := max(o.maxElements/n, 1)
	for from := 0; from < n; from += block {
		to := min(from+block, n)
		if err := o.fetchRows(ctx, locations, from, to, dist, dur); err != nil {
			return nil, nil, fmt.Errorf("ORS matrix rows %d-%d: %w", from, to-1, err)
		}
	}

	return dist, dur, nil
}

// fetchRows fills rows [from, to) of dist and dur.
func (o *ORSMatrixProvider) fetchRows(
	ctx context.Context,
	locations [][]float64,
	from, to int,
	dist, dur domain.Matrix,
) error {
	sources := make([]int, 0, to-from)
	for i := from; i < to; i++ {
		sources = append(sources, i)
	}

	var mr matrixResponse
	err := o.postJSON(ctx, "/v2/matrix/"+o.profile, matrixRequest{
		Locations: locations,
		Metrics:   []string{"distance", "duration"},
		Sources:   sources,
	}, &mr)
	if err != nil {
		return fmt.Errorf("matrix request failed: %w", err)
	}

	if len(mr.Distances) != len(sources) || len(mr.Durations) != len(sources) {
		return fmt.Errorf(
			"expected %d source rows; got distances=%d durations=%d",
			len(sources), len(mr.Distances), len(mr.Durations),
		)
	}

	n := len(locations)
	for k, i := range sources {
		if len(mr.Distances[k]) != n || len(mr.Durations[k]) != n {
			return fmt.Errorf(
				"row %d has distances=%d durations=%d, want %d",
				i, len(mr.Distances[k]), len(mr.Durations[k]), n,
			)
		}
		for j := 0; j < n; j++ {
			meters, seconds := mr.Distances[k][j], mr.Durations[k][j]
			if meters == nil || seconds == nil {
				return fmt.Errorf("matrix returned no route between locations %d and %d", i, j)
			}
			// ORS returns float metrics; round to integers for the search.
			dist[i][j] = int(math.Round(*meters))
			dur[i][j] = int(math.Round(*seconds))
		}
	}

	return nil
}
