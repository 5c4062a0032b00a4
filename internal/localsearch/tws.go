package localsearch

import "vrp-search-service/internal/domain"

// tws summarises the time-window behaviour of a contiguous visit sequence so
// that two sequences can be concatenated in constant time.
type tws struct {
	first    int // location of the first visit
	last     int // location of the last visit
	duration int
	timeWarp int
	twEarly  int // earliest start of the sequence without waiting
	twLate   int // latest start of the sequence without extra time warp
	release  int
}

func newTWS(loc int, c domain.Client) tws {
	return tws{
		first:    loc,
		last:     loc,
		duration: c.ServiceDuration,
		twEarly:  c.TWEarly,
		twLate:   c.TWLate,
		release:  c.ReleaseTime,
	}
}

// merge concatenates a and b, travelling from a's last to b's first location.
func merge(dur domain.Matrix, a, b tws) tws {
	arc := dur[a.last][b.first]
	diff := a.duration - a.timeWarp + arc
	diffWait := max(b.twEarly-diff-a.twLate, 0)
	diffTW := max(a.twEarly+diff-b.twLate, 0)

	return tws{
		first:    a.first,
		last:     b.last,
		duration: a.duration + b.duration + arc + diffWait,
		timeWarp: a.timeWarp + b.timeWarp + diffTW,
		twEarly:  max(b.twEarly-diff, a.twEarly) - diffWait,
		twLate:   min(b.twLate-diff, a.twLate) + diffTW,
		release:  max(a.release, b.release),
	}
}

// totalTimeWarp includes the lateness caused by starting at the release time.
func (t tws) totalTimeWarp() int {
	return t.timeWarp + max(t.release-t.twLate, 0)
}
