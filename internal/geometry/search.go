// ABOUTME: Neighborhood search for alternate job geometries
// ABOUTME: Enumerates nearby (PE, thread) pairs whose reservations are filled

package geometry

import (
	"fmt"
	"math"
	"sort"
)

// SearchOptions bound the neighborhood search around an input geometry.
// Radii are fractions of the input values: a PERadius of 0.25 around 128
// PEs admits candidates from 96 through 160.
type SearchOptions struct {
	PERadius      float64 `json:"pe_radius"`
	ThreadRadius  float64 `json:"thread_radius"`
	ConserveNodes bool    `json:"conserve_nodes"`
}

// Alternate pairs a candidate geometry with its reservation.
type Alternate struct {
	Geometry    Geometry    `json:"geometry"`
	Reservation Reservation `json:"reservation"`
}

// radiusRange converts a fractional radius around v into an inclusive
// integer range [ceil(v-r*v), floor(v+r*v)], with the lower bound clamped
// to 1. lo > hi denotes an empty range.
func radiusRange(v int, r float64) (lo, hi int) {
	f := float64(v)
	lo = int(math.Ceil(f - r*f))
	hi = int(math.Floor(f + r*f))
	if lo < 1 {
		lo = 1
	}
	return lo, hi
}

// Search enumerates geometries near g whose reservations are perfectly
// filled. Candidates keep g's CPUs-per-node and hyperthreading setting and
// vary PEs and threads-per-PE within the configured radii; threads above
// the node CPU count are skipped since a PE cannot span nodes. With
// ConserveNodes set, only candidates matching g's own node count survive.
// The input geometry itself is a legitimate result when it passes the
// filters. Results are unique per (PEs, threads) pair and sorted by nodes,
// then PEs, then threads, all ascending.
func Search(g Geometry, opts SearchOptions) ([]Alternate, error) {
	if opts.PERadius < 0 {
		return nil, fmt.Errorf("%w: PE radius must be >= 0, got %g", ErrInvalidParameter, opts.PERadius)
	}
	if opts.ThreadRadius < 0 {
		return nil, fmt.Errorf("%w: thread radius must be >= 0, got %g", ErrInvalidParameter, opts.ThreadRadius)
	}

	base, err := Reserve(g)
	if err != nil {
		return nil, err
	}

	peLo, peHi := radiusRange(g.PEs, opts.PERadius)
	thLo, thHi := radiusRange(g.ThreadsPerPE, opts.ThreadRadius)
	nodeCPUs := g.NodeCPUs()

	type pair struct{ pes, threads int }
	seen := make(map[pair]bool)

	var alternates []Alternate
	for pes := peLo; pes <= peHi; pes++ {
		for threads := thLo; threads <= thHi; threads++ {
			if threads > nodeCPUs {
				continue
			}
			p := pair{pes, threads}
			if seen[p] {
				continue
			}
			seen[p] = true

			cand := Geometry{
				PEs:            pes,
				ThreadsPerPE:   threads,
				CPUsPerNode:    g.CPUsPerNode,
				Hyperthreading: g.Hyperthreading,
			}
			res, err := Reserve(cand)
			if err != nil {
				return nil, err
			}
			if !res.Filled() {
				continue
			}
			if opts.ConserveNodes && res.Nodes != base.Nodes {
				continue
			}
			alternates = append(alternates, Alternate{Geometry: cand, Reservation: res})
		}
	}

	sort.Slice(alternates, func(i, j int) bool {
		a, b := alternates[i], alternates[j]
		if a.Reservation.Nodes != b.Reservation.Nodes {
			return a.Reservation.Nodes < b.Reservation.Nodes
		}
		if a.Geometry.PEs != b.Geometry.PEs {
			return a.Geometry.PEs < b.Geometry.PEs
		}
		return a.Geometry.ThreadsPerPE < b.Geometry.ThreadsPerPE
	})

	return alternates, nil
}
