package quant

import (
	"context"
	"log/slog"
	"math"
	"math/rand"
	"runtime"
	"sort"
	"sync"

	"github.com/handanlinzhang/scram/pkg/mef"
	"github.com/handanlinzhang/scram/pkg/mocus"
	"github.com/handanlinzhang/scram/pkg/preprocess"
)

// maxDiscardFraction is the highest fraction of trials that may fail with
// a numerical error before Uncertainty gives up and returns the error
// (spec.md §7: "numerical errors during uncertainty trials are counted...
// below threshold the trial is discarded").
const maxDiscardFraction = 0.01

// UncertaintyResult summarizes a Monte Carlo propagation of the model's
// parameter uncertainty through the top-event probability (spec.md §4.4).
type UncertaintyResult struct {
	Trials    int
	Discarded int
	Mean      float64
	StdDev    float64
	Quantiles map[float64]float64
	Histogram []HistogramBin
}

// HistogramBin is one bucket of the sampled top-probability distribution.
type HistogramBin struct {
	Lo, Hi float64
	Count  int
}

// DefaultQuantiles are the percentiles reported unless the caller asks
// for others.
var DefaultQuantiles = []float64{0.05, 0.5, 0.95}

// Uncertainty runs trials independent Monte Carlo samples of cs's top
// probability under mode, distributing work across a worker pool sized to
// GOMAXPROCS. Each trial draws from its own PRNG stream, seeded
// deterministically from seed and the trial index (a splitmix64-derived
// substream per spec.md §5), so the result is reproducible regardless of
// how work is scheduled across workers and independent of trials run
// concurrently elsewhere. A trial that hits a numerical error is logged
// with slog.Warn and discarded rather than aborting the run; if more than
// maxDiscardFraction of trials fail this way, Uncertainty gives up and
// returns a NumericalError (spec.md §7).
func Uncertainty(ctx context.Context, cs *mocus.CutSets, g *preprocess.Graph, missionTime float64, mode Mode, numSums int, trials int, seed int64) (*UncertaintyResult, error) {
	if trials <= 0 {
		return nil, &mef.NumericalError{Op: "uncertainty", Msg: "trials must be positive"}
	}

	samples := make([]float64, trials)
	errs := make([]error, trials)

	workers := runtime.GOMAXPROCS(0)
	if workers > trials {
		workers = trials
	}
	jobs := make(chan int, trials)
	for i := 0; i < trials; i++ {
		jobs <- i
	}
	close(jobs)

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				select {
				case <-ctx.Done():
					errs[i] = ctx.Err()
					continue
				default:
				}
				sub := splitmix64(uint64(seed) + uint64(i))
				r := rand.New(rand.NewSource(int64(sub)))
				env := mef.NewSamplingEnv(r, missionTime)
				p, err := Probability(cs, g, env, mode, numSums)
				if err != nil {
					errs[i] = err
					continue
				}
				samples[i] = p
			}
		}()
	}
	wg.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	kept := make([]float64, 0, trials)
	var discarded int
	for i, err := range errs {
		if err != nil {
			discarded++
			slog.Warn("discarding uncertainty trial", "trial", i, "error", err)
			continue
		}
		kept = append(kept, samples[i])
	}

	if discarded > int(maxDiscardFraction*float64(trials)) {
		return nil, &mef.NumericalError{Op: "uncertainty", Msg: "too many discarded trials"}
	}
	if len(kept) == 0 {
		return nil, &mef.NumericalError{Op: "uncertainty", Msg: "all trials discarded"}
	}

	res := summarize(kept)
	res.Discarded = discarded
	return res, nil
}

// splitmix64 derives an independent stream seed from a base seed and an
// index, avoiding correlated streams across trials.
func splitmix64(x uint64) uint64 {
	x += 0x9E3779B97F4A7C15
	z := x
	z = (z ^ (z >> 30)) * 0xBF58476D1CE4E5B9
	z = (z ^ (z >> 27)) * 0x94D049BB133111EB
	return z ^ (z >> 31)
}

func summarize(samples []float64) *UncertaintyResult {
	n := len(samples)
	sorted := append([]float64(nil), samples...)
	sort.Float64s(sorted)

	mean := 0.0
	for _, s := range samples {
		mean += s
	}
	mean /= float64(n)

	variance := 0.0
	for _, s := range samples {
		d := s - mean
		variance += d * d
	}
	if n > 1 {
		variance /= float64(n - 1)
	}

	quantiles := make(map[float64]float64, len(DefaultQuantiles))
	for _, q := range DefaultQuantiles {
		quantiles[q] = percentile(sorted, q)
	}

	return &UncertaintyResult{
		Trials:    n,
		Mean:      mean,
		StdDev:    math.Sqrt(variance),
		Quantiles: quantiles,
		Histogram: histogram(sorted, 20),
	}
}

// percentile uses nearest-rank indexing (spec.md §4.6): the qth quantile
// of n sorted samples is the ceil(q*n)th one, ties broken to the higher
// sample, rather than interpolated between neighbors.
func percentile(sorted []float64, q float64) float64 {
	n := len(sorted)
	if n == 0 {
		return 0
	}
	idx := int(math.Ceil(q*float64(n))) - 1
	if idx < 0 {
		idx = 0
	}
	if idx >= n {
		idx = n - 1
	}
	return sorted[idx]
}

func histogram(sorted []float64, bins int) []HistogramBin {
	if len(sorted) == 0 || bins <= 0 {
		return nil
	}
	lo, hi := sorted[0], sorted[len(sorted)-1]
	if hi == lo {
		return []HistogramBin{{Lo: lo, Hi: hi, Count: len(sorted)}}
	}
	width := (hi - lo) / float64(bins)
	out := make([]HistogramBin, bins)
	for i := range out {
		out[i] = HistogramBin{Lo: lo + float64(i)*width, Hi: lo + float64(i+1)*width}
	}
	for _, s := range sorted {
		idx := int((s - lo) / width)
		if idx >= bins {
			idx = bins - 1
		}
		out[idx].Count++
	}
	return out
}
