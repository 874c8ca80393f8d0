// Package eventtree walks an initiating event's event tree, composing the
// functional-event gates collected along each path into a fault tree and
// quantifying it the same way a top-level fault-tree target would
// (spec.md §4.7).
package eventtree

import (
	"github.com/handanlinzhang/scram/pkg/mef"
	"github.com/handanlinzhang/scram/pkg/mocus"
	"github.com/handanlinzhang/scram/pkg/preprocess"
	"github.com/handanlinzhang/scram/pkg/quant"
)

// SequenceProbability is one sequence's accumulated probability across
// every path of the tree that reaches it.
type SequenceProbability struct {
	Sequence    mef.SequenceRef
	Name        string
	Probability float64
}

// Result holds every sequence probability reached from one initiating
// event, in the order the depth-first walk first reaches each sequence
// (which need not be the order the sequences were declared on the Model).
type Result struct {
	InitiatingEvent string
	order           []mef.SequenceRef
	names           map[mef.SequenceRef]string
	totals          map[mef.SequenceRef]float64
}

// Sequences returns the accumulated sequence probabilities in a stable
// order (spec.md §5).
func (r *Result) Sequences() []SequenceProbability {
	out := make([]SequenceProbability, len(r.order))
	for i, ref := range r.order {
		out[i] = SequenceProbability{Sequence: ref, Name: r.names[ref], Probability: r.totals[ref]}
	}
	return out
}

// Options configures how each path's composed fault tree is quantified.
type Options struct {
	Mode        quant.Mode
	NumSums     int
	CCF         bool
	MissionTime float64
}

// traversalState is copy-on-branch: a fork or a house-event instruction
// never mutates its caller's state, only a clone (spec.md §9's Open
// Question resolved in favor of copy-on-write over Model mutation).
type traversalState struct {
	houseOverrides map[mef.EventRef]bool
	collected      []mef.Literal
}

func newTraversalState() traversalState {
	return traversalState{houseOverrides: make(map[mef.EventRef]bool)}
}

func (s traversalState) clone() traversalState {
	ho := make(map[mef.EventRef]bool, len(s.houseOverrides))
	for k, v := range s.houseOverrides {
		ho[k] = v
	}
	return traversalState{
		houseOverrides: ho,
		collected:      append([]mef.Literal(nil), s.collected...),
	}
}

// Analyze walks ie's event tree from its root, quantifying every terminal
// sequence's probability.
func Analyze(model *mef.Model, ie *mef.InitiatingEvent, opts Options) (*Result, error) {
	res := &Result{
		InitiatingEvent: ie.Name,
		names:           make(map[mef.SequenceRef]string),
		totals:          make(map[mef.SequenceRef]float64),
	}
	if ie.EventTree == nil || ie.EventTree.Root == nil {
		return res, nil
	}
	if err := walk(model, ie.EventTree.Root, newTraversalState(), opts, res); err != nil {
		return nil, err
	}
	return res, nil
}

func walk(model *mef.Model, b *mef.Branch, state traversalState, opts Options, res *Result) error {
	state = state.clone()
	for _, instr := range b.Instructions {
		switch instr.Kind {
		case mef.SetHouseEventInstr:
			state.houseOverrides[instr.HouseEvent] = instr.HouseState
		case mef.CollectFormulaInstr:
			state.collected = append(state.collected, mef.Pos(instr.CollectGate))
		}
	}

	if b.Fork != nil {
		for _, path := range b.Fork.Paths {
			next := state.clone()
			if path.GateRef.IsValid() {
				next.collected = append(next.collected, mef.Pos(path.GateRef))
			}
			if err := walk(model, path.Next, next, opts, res); err != nil {
				return err
			}
		}
		return nil
	}

	if b.Sequence != nil {
		return terminate(model, b, state, opts, res)
	}
	return nil
}

func terminate(model *mef.Model, b *mef.Branch, state traversalState, opts Options, res *Result) error {
	formula := mef.Formula{Op: mef.AND, Args: state.collected}
	g, err := preprocess.PreprocessFormula(model, formula, opts.CCF, state.houseOverrides)
	if err != nil {
		return err
	}
	cs, err := mocus.Compute(g, 0)
	if err != nil {
		return err
	}
	env := mef.NewEnv(opts.MissionTime)
	p, err := quant.Probability(cs, g, env, opts.Mode, opts.NumSums)
	if err != nil {
		return err
	}

	seq := b.Sequence
	if seq.ProbExpr != nil {
		factor, err := env.Eval(seq.ProbExpr)
		if err != nil {
			return err
		}
		p *= factor
	}

	ref, ok := findSequenceRef(model, seq)
	if !ok {
		return &mef.LogicError{Msg: "sequence not registered on model: " + seq.Name}
	}
	if _, seen := res.totals[ref]; !seen {
		res.order = append(res.order, ref)
		res.names[ref] = seq.Name
	}
	res.totals[ref] += p
	return nil
}

func findSequenceRef(model *mef.Model, seq *mef.Sequence) (mef.SequenceRef, bool) {
	for i, s := range model.Sequences() {
		if s == seq {
			return mef.SequenceRef(i), true
		}
	}
	return 0, false
}
