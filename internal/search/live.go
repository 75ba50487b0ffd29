package search

import (
	"context"
	"strings"
	"sync"
	"time"
)

type Searcher interface {
	Search(ctx context.Context, query string) Results
}

// Live is a search-as-you-type session. Keystrokes go to Type; the latest
// result set arrives on Results once typing pauses. A search that completes
// after a newer keystroke is discarded.
type Live struct {
	searcher Searcher
	debounce *Debouncer
	ctx      context.Context
	cancel   context.CancelFunc
	results  chan Results

	mu    sync.Mutex
	query string
}

func NewLive(ctx context.Context, searcher Searcher, wait time.Duration) *Live {
	ctx, cancel := context.WithCancel(ctx)

	l := &Live{
		searcher: searcher,
		ctx:      ctx,
		cancel:   cancel,
		results:  make(chan Results, 1),
	}
	l.debounce = NewDebouncer(wait, l.run)

	return l
}

// Results delivers the newest result set. Only the latest undelivered set is kept.
func (l *Live) Results() <-chan Results {
	return l.results
}

func (l *Live) Query() string {
	l.mu.Lock()
	defer l.mu.Unlock()

	return l.query
}

// Type records the full input text. Blank input resolves to no results at once.
func (l *Live) Type(text string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.query = text

	if strings.TrimSpace(text) == "" {
		l.debounce.Cancel()
		l.publish(Results{Query: "", Items: []Result{}})

		return
	}

	l.debounce.Trigger(text)
}

// Select clears the input and returns where the result lives.
func (l *Live) Select(r Result) string {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.debounce.Cancel()
	l.query = ""

	return r.Route
}

func (l *Live) Close() {
	l.debounce.Cancel()
	l.cancel()
}

func (l *Live) run(gen uint64, text string) {
	res := l.searcher.Search(l.ctx, text)

	l.mu.Lock()
	defer l.mu.Unlock()

	if !l.debounce.Current(gen) || l.ctx.Err() != nil {
		return
	}

	l.publish(res)
}

// publish replaces any unread result set. Callers hold l.mu.
func (l *Live) publish(res Results) {
	for {
		select {
		case l.results <- res:
			return
		default:
		}

		select {
		case <-l.results:
		default:
		}
	}
}
