package sim

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sys/unix"
)

// LiveResult is the outcome of RunLive.
type LiveResult struct {
	Order   []*Request // requests in the order the servicing loop ran them
	Metrics *Metrics
}

// RunLive drives dev with real goroutines: producers goroutines submit
// requests concurrently (request i goes to producer i%producers, in order)
// while Device.Serve services them against the device media. It returns
// once every request has been serviced or ctx is cancelled.
func RunLive(ctx context.Context, dev *Device, requests []*Request, producers int) (*LiveResult, error) {
	if producers < 1 {
		return nil, fmt.Errorf("producers must be at least 1, got %d", producers)
	}
	total := len(requests)
	res := &LiveResult{Metrics: NewMetrics()}
	if total == 0 {
		return res, nil
	}

	serveCtx, stop := context.WithCancel(ctx)
	defer stop()

	done := make(chan struct{})
	served := 0
	exec := func(req *Request) unix.Errno {
		distance, backward := dev.Seek(req)
		res.Metrics.recordDispatch(distance, backward)
		res.Order = append(res.Order, req)
		status := dev.Media.Execute(req)
		served++
		if served == total {
			close(done)
		}
		return status
	}

	var servers errgroup.Group
	servers.Go(func() error {
		err := dev.Serve(serveCtx, exec)
		if errors.Is(err, context.Canceled) && ctx.Err() == nil {
			return nil
		}
		return err
	})

	var submitters errgroup.Group
	for p := 0; p < producers; p++ {
		p := p
		submitters.Go(func() error {
			for i := p; i < total; i += producers {
				if err := ctx.Err(); err != nil {
					return err
				}
				dev.Submit(requests[i])
			}
			return nil
		})
	}
	submitErr := submitters.Wait()

	if submitErr == nil {
		select {
		case <-done:
		case <-ctx.Done():
		}
	}
	stop()
	serveErr := servers.Wait()
	if submitErr != nil {
		return res, submitErr
	}
	if serveErr != nil {
		return res, serveErr
	}

	res.Metrics.Submitted = total
	for _, req := range requests {
		if req.State != StateCompleted {
			continue
		}
		if req.Error != 0 {
			res.Metrics.FailedRequests++
		} else {
			res.Metrics.CompletedRequests++
		}
	}
	res.Metrics.Device = *dev.Stats
	return res, nil
}
