package spray

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/gravitrone/sprayctl/internal/api"
)

// Submitter sends one spray request.
type Submitter interface {
	SprayVariable(ctx context.Context, req api.SprayRequest) (*api.SprayResponse, error)
}

// Navigator receives the status path of every workunit that resolves.
type Navigator interface {
	Navigate(path string)
}

// NavigatorFunc adapts a function to Navigator.
type NavigatorFunc func(path string)

// Navigate calls fn(path).
func (fn NavigatorFunc) Navigate(path string) {
	fn(path)
}

// Outcome is the result of one file's spray.
type Outcome struct {
	Index   int
	Request api.SprayRequest
	WUID    string
	Err     error
}

// OK reports whether the request was accepted.
func (o Outcome) OK() bool {
	return o.Err == nil
}

// Batch tracks the requests of one submit. Outcomes arrive in completion
// order on Next and in request order from Wait.
type Batch struct {
	ID       uuid.UUID
	Requests []api.SprayRequest

	outcomes chan Outcome
	results  []Outcome
	done     chan struct{}
}

func newBatch(reqs []api.SprayRequest) *Batch {
	return &Batch{
		ID:       uuid.New(),
		Requests: reqs,
		outcomes: make(chan Outcome, len(reqs)),
		results:  make([]Outcome, len(reqs)),
		done:     make(chan struct{}),
	}
}

// Len returns the number of requests in the batch.
func (b *Batch) Len() int {
	return len(b.Requests)
}

// Next blocks until another outcome is available. ok is false once every
// outcome has been delivered.
func (b *Batch) Next() (Outcome, bool) {
	o, ok := <-b.outcomes
	return o, ok
}

// Done is closed when every request has completed.
func (b *Batch) Done() <-chan struct{} {
	return b.done
}

// Wait blocks until every request completes and returns the outcomes in
// request order.
func (b *Batch) Wait() []Outcome {
	<-b.done
	out := make([]Outcome, len(b.results))
	copy(out, b.results)
	return out
}

// Dispatcher validates a form and fans its rows out as spray requests.
type Dispatcher struct {
	submitter Submitter
	nav       Navigator
	log       zerolog.Logger

	navMu sync.Mutex
}

// NewDispatcher creates a dispatcher. nav may be nil.
func NewDispatcher(submitter Submitter, nav Navigator, log zerolog.Logger) *Dispatcher {
	return &Dispatcher{submitter: submitter, nav: nav, log: log}
}

// Submit validates f and, when it passes, starts one request per row. It
// returns without waiting for any request. Failures of individual files are
// reported through the batch and never cancel the others.
func (d *Dispatcher) Submit(ctx context.Context, f *Form) (*Batch, error) {
	if f.Len() == 0 {
		return nil, ErrNoFiles
	}
	if err := f.Validate(); err != nil {
		d.log.Warn().Err(err).Msg("import json rejected")
		return nil, err
	}

	batch := newBatch(BuildRequests(f.Values()))
	log := d.log.With().Str("batch", batch.ID.String()).Logger()
	log.Info().Int("files", batch.Len()).Msg("submitting json spray")

	var g errgroup.Group
	for i, req := range batch.Requests {
		g.Go(func() error {
			batch.outcomes <- d.submitOne(ctx, log, i, req, batch)
			return nil
		})
	}
	go func() {
		_ = g.Wait()
		close(batch.outcomes)
		close(batch.done)
	}()
	return batch, nil
}

func (d *Dispatcher) submitOne(ctx context.Context, log zerolog.Logger, i int, req api.SprayRequest, batch *Batch) Outcome {
	out := Outcome{Index: i, Request: req}
	resp, err := d.submitter.SprayVariable(ctx, req)
	switch {
	case err != nil:
		out.Err = fmt.Errorf("spray %s: %w", req.SourcePath, err)
		log.Error().Err(err).
			Str("source", req.SourcePath).
			Str("target", req.DestLogicalName).
			Msg("spray failed")
	case resp == nil || resp.WUID == "":
		log.Warn().Str("source", req.SourcePath).Msg("spray accepted without workunit")
	default:
		out.WUID = resp.WUID
		log.Info().
			Str("source", req.SourcePath).
			Str("target", req.DestLogicalName).
			Str("wuid", resp.WUID).
			Msg("spray submitted")
		d.navigate(WorkunitPath(resp.WUID))
	}
	batch.results[i] = out
	return out
}

func (d *Dispatcher) navigate(path string) {
	if d.nav == nil {
		return
	}
	d.navMu.Lock()
	defer d.navMu.Unlock()
	d.nav.Navigate(path)
}
