package search_test

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/barkeep/internal/search"
)

type recordingSearcher struct {
	mu      sync.Mutex
	queries []string
	gates   map[string]chan struct{}
}

func (r *recordingSearcher) Search(_ context.Context, query string) search.Results {
	r.mu.Lock()
	r.queries = append(r.queries, query)
	gate := r.gates[query]
	r.mu.Unlock()

	if gate != nil {
		<-gate
	}

	return search.Results{Query: query, Items: []search.Result{{Table: "product", ID: "1", Label: query}}}
}

func (r *recordingSearcher) seen() []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	return append([]string(nil), r.queries...)
}

func receive(t *testing.T, l *search.Live) search.Results {
	t.Helper()

	select {
	case res := <-l.Results():
		return res
	case <-time.After(2 * time.Second):
		t.Fatal("no results delivered")
		return search.Results{}
	}
}

func TestDebouncer_OnlyLastValueFires(t *testing.T) {
	var fired atomic.Int32

	var last atomic.Value

	d := search.NewDebouncer(30*time.Millisecond, func(_ uint64, v string) {
		fired.Add(1)
		last.Store(v)
	})

	d.Trigger("c")
	d.Trigger("co")
	gen := d.Trigger("col")

	require.Eventually(t, func() bool { return fired.Load() == 1 }, time.Second, 5*time.Millisecond)
	assert.Equal(t, "col", last.Load())
	assert.True(t, d.Current(gen))

	time.Sleep(60 * time.Millisecond)
	assert.Equal(t, int32(1), fired.Load())
}

func TestDebouncer_Cancel(t *testing.T) {
	var fired atomic.Int32

	d := search.NewDebouncer(20*time.Millisecond, func(uint64, string) { fired.Add(1) })

	gen := d.Trigger("cola")
	d.Cancel()

	assert.False(t, d.Current(gen))

	time.Sleep(60 * time.Millisecond)
	assert.Zero(t, fired.Load())
}

func TestLive_TypingBurstIssuesOneSearch(t *testing.T) {
	s := &recordingSearcher{}

	l := search.NewLive(context.Background(), s, 50*time.Millisecond)
	defer l.Close()

	for _, text := range []string{"c", "co", "col", "cola"} {
		l.Type(text)
	}

	res := receive(t, l)
	assert.Equal(t, "cola", res.Query)

	time.Sleep(100 * time.Millisecond)
	assert.Equal(t, []string{"cola"}, s.seen())
}

func TestLive_DiscardsStaleResponse(t *testing.T) {
	slow := make(chan struct{})
	s := &recordingSearcher{gates: map[string]chan struct{}{"co": slow}}

	l := search.NewLive(context.Background(), s, 10*time.Millisecond)
	defer l.Close()

	l.Type("co")
	require.Eventually(t, func() bool { return len(s.seen()) == 1 }, time.Second, 5*time.Millisecond)

	l.Type("cola")
	res := receive(t, l)
	assert.Equal(t, "cola", res.Query)

	close(slow)
	time.Sleep(50 * time.Millisecond)

	select {
	case stale := <-l.Results():
		t.Fatalf("stale results delivered for %q", stale.Query)
	default:
	}
}

func TestLive_BlankInputResolvesImmediately(t *testing.T) {
	s := &recordingSearcher{}

	l := search.NewLive(context.Background(), s, time.Hour)
	defer l.Close()

	l.Type("cola")
	l.Type("  ")

	res := receive(t, l)
	assert.Empty(t, res.Items)
	assert.Empty(t, s.seen())
}

func TestLive_SelectClearsQuery(t *testing.T) {
	l := search.NewLive(context.Background(), &recordingSearcher{}, time.Hour)
	defer l.Close()

	l.Type("cola")
	assert.Equal(t, "cola", l.Query())

	route := l.Select(search.Result{Table: "order", ID: "3", Route: "/orders/details/3"})

	assert.Equal(t, "/orders/details/3", route)
	assert.Equal(t, "", l.Query())
}
