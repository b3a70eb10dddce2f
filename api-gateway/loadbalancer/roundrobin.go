package loadbalancer

import (
	"sync/atomic"

	"github.com/quintaldo/pos-engine/pkg/logger"
)

// RoundRobin rotates requests across the engine instances behind the
// gateway. The instance list is fixed at startup; scaling the engine means
// restarting the gateway with a new ENGINE_SERVICE_INSTANCES value.
type RoundRobin struct {
	instances []string
	next      atomic.Uint64
}

// NewRoundRobin creates a balancer over the configured engine instances.
func NewRoundRobin(instances []string) *RoundRobin {
	if len(instances) == 0 {
		instances = []string{"http://localhost:8080"}
	}

	logger.Logger.Info().
		Strs("engine_instances", instances).
		Msg("Engine instance pool initialized")

	return &RoundRobin{instances: instances}
}

// Next returns the engine instance the next request should hit.
func (rr *RoundRobin) Next() string {
	if len(rr.instances) == 0 {
		return ""
	}
	n := rr.next.Add(1) - 1
	return rr.instances[n%uint64(len(rr.instances))]
}

// Instances returns a copy of the pool, for health reporting.
func (rr *RoundRobin) Instances() []string {
	out := make([]string, len(rr.instances))
	copy(out, rr.instances)
	return out
}
