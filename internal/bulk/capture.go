package bulk

import (
	"context"
	"strconv"
)

// Baseline maps a parameter to the numeric values captured for the
// selection at session start. Records whose value is missing or not a
// non-negative integer contribute nothing, so a slice can be shorter than
// the selection.
type Baseline map[string][]int64

// Capture computes the baseline off the interaction goroutine. It reads a
// snapshot of element texts taken when the session opened and never touches
// the document. It cannot fail and cannot be cancelled; a caller that loses
// interest simply stops reading.
type Capture struct {
	progress chan int
	done     chan struct{}
	result   Baseline
}

// snapshot holds, per parameter, the text of every selected record that has
// the element, in selection order.
type snapshot struct {
	params []string
	texts  map[string][]string
}

func startCapture(snap snapshot) *Capture {
	c := &Capture{
		// One report per parameter; buffered so an abandoned capture
		// never blocks.
		progress: make(chan int, len(snap.params)+1),
		done:     make(chan struct{}),
	}
	go c.run(snap)
	return c
}

func (c *Capture) run(snap snapshot) {
	out := make(Baseline, len(snap.params))
	total := len(snap.params)
	for i, p := range snap.params {
		values := make([]int64, 0, len(snap.texts[p]))
		for _, text := range snap.texts[p] {
			if v, ok := parseCount(text); ok {
				values = append(values, v)
			}
		}
		out[p] = values
		c.progress <- (i + 1) * 100 / total
	}
	if total == 0 {
		c.progress <- 100
	}
	c.result = out
	close(c.progress)
	close(c.done)
}

// Progress reports completion percentages from 0 to 100. The channel is
// closed when the capture finishes.
func (c *Capture) Progress() <-chan int { return c.progress }

// Done is closed when the result is available.
func (c *Capture) Done() <-chan struct{} { return c.done }

// Result returns the baseline, or false while the capture is still running.
func (c *Capture) Result() (Baseline, bool) {
	select {
	case <-c.done:
		return c.result, true
	default:
		return nil, false
	}
}

// Wait blocks until the capture finishes or ctx ends.
func (c *Capture) Wait(ctx context.Context) (Baseline, error) {
	select {
	case <-c.done:
		return c.result, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// parseCount accepts non-empty, digit-only text.
func parseCount(text string) (int64, bool) {
	if text == "" {
		return 0, false
	}
	for _, r := range text {
		if r < '0' || r > '9' {
			return 0, false
		}
	}
	v, err := strconv.ParseInt(text, 10, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}
