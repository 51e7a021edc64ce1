package workload

import (
	"fmt"
	"math/rand"
	"sort"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/iosched-sim/iosched-sim/sim"
)

// GenerateRequests creates a request sequence from a WorkloadSpec.
// Deterministic given the same spec and seed.
// Returns requests sorted by ArrivalTime with sequential IDs. When capacity
// is positive every client window must fit inside it.
func GenerateRequests(spec *WorkloadSpec, horizon, capacity int64) ([]*sim.Request, error) {
	if horizon <= 0 {
		return nil, nil
	}
	if err := spec.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid workload spec")
	}

	rng := sim.NewPartitionedRNG(sim.NewSimulationKey(spec.Seed))
	totalFraction := 0.0
	for _, c := range spec.Clients {
		totalFraction += c.RateFraction
	}

	var all []*sim.Request
	for i := range spec.Clients {
		client := &spec.Clients[i]
		if capacity > 0 && client.Pattern.Start+client.Pattern.Span > capacity {
			return nil, errors.Errorf("client %q window [%d, %d) exceeds device capacity %d",
				client.ID, client.Pattern.Start, client.Pattern.Start+client.Pattern.Span, capacity)
		}
		sizes, err := NewSizeSampler(client.Size)
		if err != nil {
			return nil, errors.Wrapf(err, "client %q size distribution", client.ID)
		}
		ratePerMicro := spec.AggregateRate * client.RateFraction / totalFraction / 1e6
		arrivals := NewArrivalSampler(client.Arrival, ratePerMicro)
		offsets := NewOffsetSampler(client.Pattern)
		cmds := newCommandPicker(client.Mix)
		clientRNG := rng.ForSubsystem(sim.SubsystemClient(i))

		windowEnd := client.Pattern.Start + client.Pattern.Span
		currentTime := int64(0)
		generated := 0
		for {
			currentTime += arrivals.SampleIAT(clientRNG)
			if currentTime >= horizon {
				break
			}
			length := sizes.Sample(clientRNG)
			offset := offsets.Next(clientRNG, length)
			if offset+length > windowEnd {
				length = windowEnd - offset
			}
			cmd := cmds.pick(clientRNG)
			if cmd == sim.CmdFlush || cmd == sim.CmdGetAttr {
				length = 0
			}
			all = append(all, sim.NewRequest("", currentTime, cmd, offset, length))
			generated++
		}
		logrus.Debugf("client %q generated %d requests", client.ID, generated)
	}

	// Sort by arrival time (stable sort preserves client order for ties)
	sort.SliceStable(all, func(i, j int) bool {
		return all[i].ArrivalTime < all[j].ArrivalTime
	})
	if spec.NumRequests > 0 && int64(len(all)) > spec.NumRequests {
		all = all[:spec.NumRequests]
	}

	// Assign sequential IDs
	for i, req := range all {
		req.ID = fmt.Sprintf("request_%d", i)
	}
	return all, nil
}

type commandPicker struct {
	cmds    []sim.Command
	weights []float64
	total   float64
}

func newCommandPicker(mix map[string]float64) *commandPicker {
	if len(mix) == 0 {
		return &commandPicker{cmds: []sim.Command{sim.CmdRead}, weights: []float64{1}, total: 1}
	}
	p := &commandPicker{}
	for _, name := range sortedCommands(mix) {
		cmd, _ := sim.ParseCommand(name)
		p.cmds = append(p.cmds, cmd)
		p.weights = append(p.weights, mix[name])
		p.total += mix[name]
	}
	return p
}

func (p *commandPicker) pick(rng *rand.Rand) sim.Command {
	if len(p.cmds) == 1 {
		return p.cmds[0]
	}
	r := rng.Float64() * p.total
	for i, w := range p.weights {
		if r < w {
			return p.cmds[i]
		}
		r -= w
	}
	return p.cmds[len(p.cmds)-1]
}
