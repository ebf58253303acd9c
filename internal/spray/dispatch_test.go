package spray

import (
	"context"
	"errors"
	"sort"
	"sync"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gravitrone/sprayctl/internal/api"
)

type fakeSubmitter struct {
	mu       sync.Mutex
	requests []api.SprayRequest
	respond  func(req api.SprayRequest) (*api.SprayResponse, error)
}

func (s *fakeSubmitter) SprayVariable(_ context.Context, req api.SprayRequest) (*api.SprayResponse, error) {
	s.mu.Lock()
	s.requests = append(s.requests, req)
	s.mu.Unlock()
	if s.respond != nil {
		return s.respond(req)
	}
	return &api.SprayResponse{WUID: "D-" + req.DestLogicalName}, nil
}

func (s *fakeSubmitter) calls() []api.SprayRequest {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]api.SprayRequest(nil), s.requests...)
}

func TestSubmitRejectsInvalidFormWithoutCalls(t *testing.T) {
	sub := &fakeSubmitter{}
	hist := &History{}
	d := NewDispatcher(sub, hist, zerolog.Nop())

	f, err := NewForm(sampleSelection())
	require.NoError(t, err)
	f.SetQueue("q")

	batch, err := d.Submit(context.Background(), f)
	assert.Nil(t, batch)
	var verr *ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, "Select a Group", verr.Message(FieldDestGroup))
	assert.Empty(t, sub.calls())
	assert.Empty(t, hist.Paths())
}

func TestSubmitRejectsEmptySelection(t *testing.T) {
	sub := &fakeSubmitter{}
	d := NewDispatcher(sub, nil, zerolog.Nop())
	f, err := NewForm(nil)
	require.NoError(t, err)
	f.SetDestGroup("g")
	f.SetQueue("q")

	_, err = d.Submit(context.Background(), f)
	assert.ErrorIs(t, err, ErrNoFiles)
	assert.Empty(t, sub.calls())
}

func TestSubmitSendsOneRequestPerFile(t *testing.T) {
	sub := &fakeSubmitter{}
	hist := &History{}
	d := NewDispatcher(sub, hist, zerolog.Nop())

	f := validForm(t)
	f.SetNamePrefix("scope")
	batch, err := d.Submit(context.Background(), f)
	require.NoError(t, err)
	require.Equal(t, 2, batch.Len())
	assert.NotEqual(t, "00000000-0000-0000-0000-000000000000", batch.ID.String())

	outcomes := batch.Wait()
	require.Len(t, outcomes, 2)
	assert.Equal(t, 0, outcomes[0].Index)
	assert.Equal(t, "D-scope::people.json", outcomes[0].WUID)
	assert.Equal(t, "D-scope::orders.json", outcomes[1].WUID)
	assert.True(t, outcomes[0].OK())

	calls := sub.calls()
	require.Len(t, calls, 2)
	names := []string{calls[0].DestLogicalName, calls[1].DestLogicalName}
	sort.Strings(names)
	assert.Equal(t, []string{"scope::orders.json", "scope::people.json"}, names)
	for _, c := range calls {
		assert.True(t, c.IsJSON)
		assert.Equal(t, "/", c.SourceRowTag)
		assert.Equal(t, "mythor", c.DestGroup)
	}

	paths := hist.Paths()
	assert.ElementsMatch(t, []string{
		"/dfuworkunits/D-scope::people.json",
		"/dfuworkunits/D-scope::orders.json",
	}, paths)
	assert.Equal(t, paths[len(paths)-1], hist.Current())
}

func TestSubmitThreeFilesThreeDistinctSources(t *testing.T) {
	sub := &fakeSubmitter{}
	d := NewDispatcher(sub, nil, zerolog.Nop())

	selection := append(sampleSelection(), LandingZoneFile{
		Name:       "events.json",
		FullPath:   "/var/lib/HPCCSystems/mydropzone/events.json",
		NetAddress: "10.0.0.5",
	})
	f, err := NewForm(selection)
	require.NoError(t, err)
	f.SetDestGroup("mythor")
	f.SetQueue("dfuserver_queue")

	batch, err := d.Submit(context.Background(), f)
	require.NoError(t, err)
	require.Len(t, batch.Wait(), 3)

	calls := sub.calls()
	require.Len(t, calls, 3)
	sources := make([]string, 0, len(calls))
	for _, c := range calls {
		assert.True(t, c.IsJSON)
		sources = append(sources, c.SourcePath)
	}
	assert.ElementsMatch(t, []string{
		"/var/lib/HPCCSystems/mydropzone/people.json",
		"/var/lib/HPCCSystems/mydropzone/orders.json",
		"/var/lib/HPCCSystems/mydropzone/events.json",
	}, sources)
}

func TestSubmitFailureIsolatedPerFile(t *testing.T) {
	sub := &fakeSubmitter{respond: func(req api.SprayRequest) (*api.SprayResponse, error) {
		if req.DestLogicalName == "people.json" {
			return nil, &api.ESPError{Code: "20042", Message: "file already exists"}
		}
		return &api.SprayResponse{WUID: "D2"}, nil
	}}
	hist := &History{}
	d := NewDispatcher(sub, hist, zerolog.Nop())

	batch, err := d.Submit(context.Background(), validForm(t))
	require.NoError(t, err)
	outcomes := batch.Wait()

	require.Len(t, outcomes, 2)
	assert.False(t, outcomes[0].OK())
	assert.True(t, api.IsESPError(outcomes[0].Err))
	assert.Contains(t, outcomes[0].Err.Error(), "file already exists")
	assert.True(t, outcomes[1].OK())
	assert.Equal(t, "D2", outcomes[1].WUID)
	assert.Equal(t, []string{"/dfuworkunits/D2"}, hist.Paths())
}

func TestSubmitWithoutWorkunitDoesNotNavigate(t *testing.T) {
	sub := &fakeSubmitter{respond: func(api.SprayRequest) (*api.SprayResponse, error) {
		return &api.SprayResponse{}, nil
	}}
	hist := &History{}
	d := NewDispatcher(sub, hist, zerolog.Nop())

	batch, err := d.Submit(context.Background(), validForm(t))
	require.NoError(t, err)
	for _, o := range batch.Wait() {
		assert.True(t, o.OK())
		assert.Empty(t, o.WUID)
	}
	assert.Empty(t, hist.Current())
}

func TestBatchNextStreamsEveryOutcome(t *testing.T) {
	release := make(chan struct{})
	sub := &fakeSubmitter{respond: func(req api.SprayRequest) (*api.SprayResponse, error) {
		<-release
		return &api.SprayResponse{WUID: "W-" + req.DestLogicalName}, nil
	}}
	d := NewDispatcher(sub, NavigatorFunc(func(string) {}), zerolog.Nop())

	batch, err := d.Submit(context.Background(), validForm(t))
	require.NoError(t, err)

	select {
	case <-batch.Done():
		t.Fatal("batch finished before submissions were released")
	default:
	}
	close(release)

	var seen []int
	for {
		o, ok := batch.Next()
		if !ok {
			break
		}
		seen = append(seen, o.Index)
	}
	sort.Ints(seen)
	assert.Equal(t, []int{0, 1}, seen)
	<-batch.Done()
}

func TestSubmitUsesSnapshot(t *testing.T) {
	release := make(chan struct{})
	sub := &fakeSubmitter{respond: func(req api.SprayRequest) (*api.SprayResponse, error) {
		<-release
		return &api.SprayResponse{WUID: "W"}, nil
	}}
	d := NewDispatcher(sub, nil, zerolog.Nop())

	f := validForm(t)
	batch, err := d.Submit(context.Background(), f)
	require.NoError(t, err)
	require.NoError(t, f.SetTargetName(0, "edited-later"))
	close(release)

	outcomes := batch.Wait()
	assert.Equal(t, "people.json", outcomes[0].Request.DestLogicalName)
}
