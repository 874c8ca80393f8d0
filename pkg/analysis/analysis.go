// Package analysis orchestrates one full run over a validated model: for
// every discovered analysis target it runs the preprocessor, the MCS
// engine, and whichever of {probability, importance, uncertainty} the
// caller's Options request, then does the same for every initiating
// event's event tree (spec.md §4.8).
package analysis

import (
	"context"
	"runtime"
	"sync"
	"time"

	"github.com/handanlinzhang/scram/pkg/eventtree"
	"github.com/handanlinzhang/scram/pkg/mef"
	"github.com/handanlinzhang/scram/pkg/mocus"
	"github.com/handanlinzhang/scram/pkg/preprocess"
	"github.com/handanlinzhang/scram/pkg/quant"
)

// Options configures one Analyze run (spec.md §6's Settings, minus the
// config-file/env-var plumbing internal/config layers on top).
type Options struct {
	ProbabilityAnalysis bool
	ImportanceAnalysis  bool
	UncertaintyAnalysis bool
	CCFAnalysis         bool

	LimitOrder  int
	NumSums     int
	CutOff      float64
	MissionTime float64
	NumTrials   int
	Seed        int64
	Mode        quant.Mode

	// Workers bounds the target worker pool; 0 means runtime.GOMAXPROCS(0).
	Workers int
}

// Result is one analysis target's outcome (spec.md §6's Result record).
type Result struct {
	GateRef        mef.EventRef
	GateName       string
	CutSets        *mocus.CutSets
	Probability    float64
	HasProbability bool
	Importance     []quant.Importance
	Uncertainty    *quant.UncertaintyResult
	Err            error
}

// Driver runs Analyze at most once over model under opts.
type Driver struct {
	model *mef.Model
	opts  Options

	mu      sync.Mutex
	ran     bool
	results []Result
	etr     []*eventtree.Result
	metrics []TargetMetric
}

// NewDriver builds a driver for model, which must already have passed
// Validate.
func NewDriver(model *mef.Model, opts Options) *Driver {
	return &Driver{model: model, opts: opts}
}

// Analyze runs every discovered fault-tree target and every initiating
// event's event tree exactly once. A second call returns a *mef.LogicError
// (spec.md §4.8's "analyze() runs at most once per instance").
func (d *Driver) Analyze(ctx context.Context) error {
	d.mu.Lock()
	if d.ran {
		d.mu.Unlock()
		return &mef.LogicError{Msg: "analysis already ran on this driver"}
	}
	d.ran = true
	d.mu.Unlock()

	if d.opts.ImportanceAnalysis && !d.opts.ProbabilityAnalysis {
		return &mef.LogicError{Msg: "importance_analysis requires probability_analysis"}
	}
	if d.opts.UncertaintyAnalysis && !d.opts.ProbabilityAnalysis {
		return &mef.LogicError{Msg: "uncertainty_analysis requires probability_analysis"}
	}

	targets := discoverTargets(d.model)
	d.results = make([]Result, len(targets))
	d.metrics = make([]TargetMetric, len(targets))

	workers := d.opts.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	jobs := make(chan int)
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				d.results[i], d.metrics[i] = d.runTarget(ctx, targets[i], int64(i))
			}
		}()
	}
	for i := range targets {
		select {
		case jobs <- i:
		case <-ctx.Done():
		}
	}
	close(jobs)
	wg.Wait()

	if err := ctx.Err(); err != nil {
		return err
	}

	for _, ie := range d.model.InitiatingEvents() {
		res, err := eventtree.Analyze(d.model, ie, eventtree.Options{
			Mode:        d.opts.Mode,
			NumSums:     d.opts.NumSums,
			CCF:         d.opts.CCFAnalysis,
			MissionTime: d.opts.MissionTime,
		})
		if err != nil {
			return err
		}
		d.etr = append(d.etr, res)
	}
	return nil
}

// runTarget runs one fault-tree target's full pipeline. It never returns a
// Go error: a failure is recorded on the Result itself (spec.md §7's
// "analysis-phase errors are fail-fast... the driver records per-target
// status" so one bad target doesn't abort its siblings).
func (d *Driver) runTarget(ctx context.Context, target mef.EventRef, workerSeed int64) (Result, TargetMetric) {
	start := time.Now()
	res := Result{GateRef: target, GateName: d.model.EventName(target)}

	g, err := preprocess.Preprocess(d.model, target, d.opts.CCFAnalysis)
	if err != nil {
		res.Err = err
		return res, TargetMetric{Gate: res.GateName}
	}

	cs, err := mocus.Compute(g, d.opts.LimitOrder)
	if err != nil {
		res.Err = err
		return res, TargetMetric{Gate: res.GateName}
	}

	env := mef.NewEnv(d.opts.MissionTime)
	if d.opts.CutOff > 0 {
		cs = applyCutOff(cs, g, env, d.opts.CutOff)
	}
	res.CutSets = cs

	if !d.opts.ProbabilityAnalysis {
		return res, TargetMetric{Gate: res.GateName, Duration: time.Since(start), NumCutSets: len(cs.Sets)}
	}

	p, err := quant.Probability(cs, g, env, d.opts.Mode, d.opts.NumSums)
	if err != nil {
		res.Err = err
		return res, TargetMetric{Gate: res.GateName}
	}
	res.Probability = p
	res.HasProbability = true

	if d.opts.ImportanceAnalysis {
		imps, err := quant.AnalyzeImportance(cs, g, env, d.opts.Mode, d.opts.NumSums, p)
		if err != nil {
			res.Err = err
			return res, TargetMetric{Gate: res.GateName}
		}
		res.Importance = imps
	}

	if d.opts.UncertaintyAnalysis {
		seed := d.opts.Seed + workerSeed
		unc, err := quant.Uncertainty(ctx, cs, g, d.opts.MissionTime, d.opts.Mode, d.opts.NumSums, d.opts.NumTrials, seed)
		if err != nil {
			res.Err = err
			return res, TargetMetric{Gate: res.GateName}
		}
		res.Uncertainty = unc
	}

	return res, TargetMetric{Gate: res.GateName, Duration: time.Since(start), NumCutSets: len(cs.Sets)}
}

// applyCutOff drops any minimal cut set whose own conjunctive probability
// falls below cutOff. This runs after minimize() inside mocus.Compute, so
// it is a post-minimization probability filter, not a pre-filter (spec.md
// §9's Open Question, resolved by the benchmarks' implied behavior).
func applyCutOff(cs *mocus.CutSets, g *preprocess.Graph, env *mef.Env, cutOff float64) *mocus.CutSets {
	kept := make([]mocus.CutSet, 0, len(cs.Sets))
	for _, s := range cs.Sets {
		p, err := quant.CutSetProbability(s, g, env)
		if err != nil || p < cutOff {
			continue
		}
		kept = append(kept, s)
	}
	return &mocus.CutSets{Sets: kept}
}

// Results returns every fault-tree target's outcome in discovery order.
func (d *Driver) Results() []Result { return d.results }

// EventTreeResults returns every initiating event's sequence probabilities,
// in the Model's declared InitiatingEvents order.
func (d *Driver) EventTreeResults() []*eventtree.Result { return d.etr }

// Metrics returns the per-target wall-clock/MCS-count metrics collected
// during the most recent Analyze call.
func (d *Driver) Metrics() []TargetMetric { return d.metrics }

// discoverTargets flattens every fault tree's declared tops, in
// declaration order, deduplicating by EventRef so a gate shared as a top
// across two FaultTree declarations is only analyzed once.
func discoverTargets(m *mef.Model) []mef.EventRef {
	seen := make(map[mef.EventRef]bool)
	var out []mef.EventRef
	for _, ft := range m.FaultTrees() {
		for _, top := range ft.Tops {
			if seen[top] {
				continue
			}
			seen[top] = true
			out = append(out, top)
		}
	}
	return out
}
