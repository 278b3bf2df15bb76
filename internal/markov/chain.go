// Package markov implements an order-N Markov chain over string tokens.
//
// A chain of order N predicts each token from the N-1 tokens before it.
// Training is additive and sampling draws only from the *rand.Rand supplied
// by the caller, so a fixed seed always reproduces the same sequence.
package markov

import (
	"errors"
	"math/rand/v2"
	"strings"
)

// ErrEmptyChain is returned when sampling a chain that was never trained.
var ErrEmptyChain = errors.New("markov: chain has no training data")

// DefaultMaxTokens bounds the length of one sampled sequence.
const DefaultMaxTokens = 1000

const (
	boundary = "\x02"
	keySep   = "\x1f"
)

// transitions is the weighted successor list of one state. Tokens keep their
// first-seen order so that sampling never depends on map iteration.
type transitions struct {
	tokens []string
	counts []int
	index  map[string]int
	total  int
}

func (t *transitions) add(token string) {
	if idx, ok := t.index[token]; ok {
		t.counts[idx]++
	} else {
		t.index[token] = len(t.tokens)
		t.tokens = append(t.tokens, token)
		t.counts = append(t.counts, 1)
	}
	t.total++
}

func (t *transitions) pick(r *rand.Rand) string {
	n := r.IntN(t.total)
	for i, count := range t.counts {
		if n < count {
			return t.tokens[i]
		}
		n -= count
	}
	return t.tokens[len(t.tokens)-1]
}

type Chain struct {
	order     int
	maxTokens int
	states    map[string]*transitions
	sequences int
}

// Option configures a Chain.
type Option func(*Chain)

// WithMaxTokens caps the length of one sample. Non-positive values are
// ignored.
func WithMaxTokens(n int) Option {
	return func(c *Chain) {
		if n > 0 {
			c.maxTokens = n
		}
	}
}

// New returns an empty chain of the given order (minimum 1).
func New(order int, opts ...Option) *Chain {
	if order < 1 {
		order = 1
	}
	c := &Chain{
		order:     order,
		maxTokens: DefaultMaxTokens,
		states:    make(map[string]*transitions),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Chain) Order() int {
	return c.order
}

// Sequences returns how many non-empty sequences have been trained.
func (c *Chain) Sequences() int {
	return c.sequences
}

func (c *Chain) Empty() bool {
	return c.sequences == 0
}

// Train adds one sequence to the chain's statistics. Empty sequences are
// ignored.
func (c *Chain) Train(tokens []string) {
	if len(tokens) == 0 {
		return
	}

	window := c.startWindow()
	for _, token := range tokens {
		c.observe(window, token)
		window = shift(window, token)
	}
	c.observe(window, boundary)
	c.sequences++
}

// Sample draws one sequence. The result is never empty for a trained chain
// because every trained sequence had at least one token.
func (c *Chain) Sample(r *rand.Rand) ([]string, error) {
	if c.Empty() {
		return nil, ErrEmptyChain
	}

	window := c.startWindow()
	out := make([]string, 0, 16)
	for len(out) < c.maxTokens {
		next, ok := c.states[stateKey(window)]
		if !ok {
			break
		}
		token := next.pick(r)
		if token == boundary {
			break
		}
		out = append(out, token)
		window = shift(window, token)
	}
	return out, nil
}

func (c *Chain) observe(window []string, token string) {
	key := stateKey(window)
	t, ok := c.states[key]
	if !ok {
		t = &transitions{index: make(map[string]int)}
		c.states[key] = t
	}
	t.add(token)
}

func (c *Chain) startWindow() []string {
	window := make([]string, c.order-1)
	for i := range window {
		window[i] = boundary
	}
	return window
}

func shift(window []string, token string) []string {
	if len(window) == 0 {
		return window
	}
	copy(window, window[1:])
	window[len(window)-1] = token
	return window
}

func stateKey(window []string) string {
	return strings.Join(window, keySep)
}

// Characters splits s into single-rune tokens, for chains over names.
func Characters(s string) []string {
	tokens := make([]string, 0, len(s))
	for _, r := range s {
		tokens = append(tokens, string(r))
	}
	return tokens
}
