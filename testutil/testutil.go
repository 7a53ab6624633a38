package testutil

import (
	"math"
	"math/rand"
	"slices"
	"sync"
	"time"

	"github.com/hupe1980/tabgo/value"
)

// RNG struct encapsulates the random number generator and seed.
// It is thread-safe.
type RNG struct {
	rand *rand.Rand
	seed int64
	mu   sync.Mutex
}

// NewRNG creates a new RNG instance with the specified seed.
func NewRNG(seed int64) *RNG {
	return &RNG{
		rand: rand.New(rand.NewSource(seed)),
		seed: seed,
	}
}

// Reset resets the RNG to its initial seed.
func (r *RNG) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rand.Seed(r.seed)
}

// Seed returns the initial seed.
func (r *RNG) Seed() int64 {
	return r.seed
}

// Intn returns a non-negative pseudo-random number in [0,n).
func (r *RNG) Intn(n int) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rand.Intn(n)
}

const letters = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ"

// Text returns n random letters.
func (r *RNG) Text(n int) string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.textLocked(n)
}

func (r *RNG) textLocked(n int) string {
	b := make([]byte, n)
	for i := range b {
		b[i] = letters[r.rand.Intn(len(letters))]
	}
	return string(b)
}

// Value returns a random non-empty value of type t. Strings are sometimes
// longer than the inline buffer.
func (r *RNG) Value(t value.Type) value.Value {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.valueLocked(t)
}

func (r *RNG) valueLocked(t value.Type) value.Value {
	switch t {
	case value.TypeLong:
		return value.Long(r.rand.Int63n(1_000_000) - 500_000)
	case value.TypeDouble:
		return value.Double(r.rand.NormFloat64() * 1e3)
	case value.TypeBoolean:
		return value.Bool(r.rand.Intn(2) == 1)
	case value.TypeTime:
		return value.Time(time.Unix(r.rand.Int63n(2_000_000_000), 0).UTC())
	case value.TypeBlob:
		return value.Blob([]byte(r.textLocked(1 + r.rand.Intn(40))))
	default:
		return value.String(r.textLocked(1 + r.rand.Intn(2*value.InlineSize)))
	}
}

// Values returns n random values of type t.
func (r *RNG) Values(t value.Type, n int) []value.Value {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]value.Value, n)
	for i := range out {
		out[i] = r.valueLocked(t)
	}
	return out
}

// Zipf returns a Zipfian-distributed value in [0, n).
// Uses Zipf's law: P(k) ∝ 1/k^s where s is the skew parameter.
// Useful for columns with a few frequent values.
func (r *RNG) Zipf(n int, s float64) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	if n <= 1 {
		return 0
	}

	var hns float64
	for i := 1; i <= n; i++ {
		hns += 1.0 / math.Pow(float64(i), s)
	}

	u := r.rand.Float64() * hns
	var cumulative float64
	for k := 1; k <= n; k++ {
		cumulative += 1.0 / math.Pow(float64(k), s)
		if u <= cumulative {
			return k - 1
		}
	}
	return n - 1
}

// Recorder collects the events passed to a trace or notifier callback.
type Recorder[E any] struct {
	mu     sync.Mutex
	events []E

	// Err is returned by Record.
	Err error
}

// Record appends ev. Its signature matches trace.Callback and
// notify.Callback.
func (r *Recorder[E]) Record(ev E) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev)
	return r.Err
}

// Events returns a copy of the recorded events.
func (r *Recorder[E]) Events() []E {
	r.mu.Lock()
	defer r.mu.Unlock()
	return slices.Clone(r.events)
}

// Len returns the number of recorded events.
func (r *Recorder[E]) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.events)
}

// Reset drops the recorded events.
func (r *Recorder[E]) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = nil
}
