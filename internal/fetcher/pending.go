package fetcher

import (
	"context"

	"github.com/specialistvlad/galaxygraph/internal/graph"
)

// Pending is the fresh half of a Load. It resolves exactly once.
type Pending struct {
	done  chan struct{}
	nodes []graph.ProjectNode
	err   error
}

func newPending() *Pending {
	return &Pending{done: make(chan struct{})}
}

func (p *Pending) resolve(nodes []graph.ProjectNode, err error) {
	p.nodes, p.err = nodes, err
	close(p.done)
}

// Done is closed once the result is available.
func (p *Pending) Done() <-chan struct{} {
	return p.done
}

// Wait blocks until the load resolves or ctx is done.
func (p *Pending) Wait(ctx context.Context) ([]graph.ProjectNode, error) {
	select {
	case <-p.done:
		return p.nodes, p.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}
