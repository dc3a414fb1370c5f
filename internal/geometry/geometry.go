// ABOUTME: Core reservation arithmetic for parallel job geometries
// ABOUTME: Maps (PEs, threads-per-PE, CPUs-per-node) to node and core usage

package geometry

import (
	"errors"
	"fmt"
)

// ErrInvalidParameter is returned when a geometry field or search radius is
// outside its valid domain.
var ErrInvalidParameter = errors.New("invalid parameter")

// Geometry describes the shape of a parallel job: how many PEs (MPI tasks)
// it runs and how many threads each PE spawns, on nodes with a fixed CPU
// count. Hyperthreading doubles the usable CPUs per node.
type Geometry struct {
	PEs            int  `json:"pes"`
	ThreadsPerPE   int  `json:"threads_per_pe"`
	CPUsPerNode    int  `json:"cpus_per_node"`
	Hyperthreading bool `json:"hyperthreading"`
}

// Reservation is the node allocation implied by a Geometry. Nodes rounds up
// because a job that does not fill its last node still occupies it whole.
type Reservation struct {
	Nodes        int `json:"nodes"`
	TotalCPUs    int `json:"total_cpus"`
	UsedCPUs     int `json:"used_cpus"`
	IdleCPUs     int `json:"idle_cpus"`
	PartialNodes int `json:"partial_nodes"`
}

// Filled reports whether the reservation leaves no CPU core idle.
func (r Reservation) Filled() bool {
	return r.IdleCPUs == 0
}

// NodeCPUs returns the usable CPU count of a single node, accounting for
// hyperthreading.
func (g Geometry) NodeCPUs() int {
	if g.Hyperthreading {
		return g.CPUsPerNode * 2
	}
	return g.CPUsPerNode
}

func (g Geometry) validate() error {
	if g.PEs < 1 {
		return fmt.Errorf("%w: PE count must be >= 1, got %d", ErrInvalidParameter, g.PEs)
	}
	if g.ThreadsPerPE < 1 {
		return fmt.Errorf("%w: threads per PE must be >= 1, got %d", ErrInvalidParameter, g.ThreadsPerPE)
	}
	if g.CPUsPerNode < 1 {
		return fmt.Errorf("%w: CPUs per node must be >= 1, got %d", ErrInvalidParameter, g.CPUsPerNode)
	}
	return nil
}

// ceilDiv rounds a/b up using integer arithmetic only, so large core counts
// never lose precision. Both operands must be positive.
func ceilDiv(a, b int) int {
	return (a + b - 1) / b
}

// Reserve computes the Reservation for a Geometry. It fails with
// ErrInvalidParameter if any field is zero or negative; it has no other
// failure mode and no side effects.
func Reserve(g Geometry) (Reservation, error) {
	if err := g.validate(); err != nil {
		return Reservation{}, err
	}

	nodeCPUs := g.NodeCPUs()
	used := g.PEs * g.ThreadsPerPE
	nodes := ceilDiv(used, nodeCPUs)
	total := nodes * nodeCPUs
	idle := total - used

	// Idle cores packed onto as few nodes as possible.
	partial := 0
	if idle > 0 {
		partial = ceilDiv(idle, nodeCPUs)
	}

	return Reservation{
		Nodes:        nodes,
		TotalCPUs:    total,
		UsedCPUs:     used,
		IdleCPUs:     idle,
		PartialNodes: partial,
	}, nil
}
