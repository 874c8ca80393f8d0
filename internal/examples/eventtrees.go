package examples

import "github.com/handanlinzhang/scram/pkg/mef"

// EventTreeExample bundles a built model with its initiating event.
type EventTreeExample struct {
	Name  string
	Model *mef.Model
	IE    *mef.InitiatingEvent
}

// SmallSetBenchmark builds a two-functional-event tree (reactor trip,
// then cooling) with three sequences: success, a degraded-but-safe path,
// and core damage, adapted in spirit from the original analytical core's
// sequence-style benchmark tests (no event-tree fixture was present in
// the retrieved bench_core_tests.cc, so this is composed fresh in the
// same shape spec.md §4.7 describes rather than translated from a
// specific upstream case).
func SmallSetBenchmark() *EventTreeExample {
	m := mef.NewModel("small-set-benchmark")

	tripFails, _ := m.AddBasicEvent("reactor-trip-fails", &mef.Constant{Value: 0.001})
	coolingFails, _ := m.AddBasicEvent("cooling-fails", &mef.Constant{Value: 0.01})

	tripFailsGate, _ := m.AddGate("trip-fails-gate", mef.Formula{Op: mef.NULL, Args: []mef.Literal{mef.Pos(tripFails)}})
	tripOKGate, _ := m.AddGate("trip-ok-gate", mef.Formula{Op: mef.NOT, Args: []mef.Literal{mef.Pos(tripFails)}})
	coolingFailsGate, _ := m.AddGate("cooling-fails-gate", mef.Formula{Op: mef.NULL, Args: []mef.Literal{mef.Pos(coolingFails)}})
	coolingOKGate, _ := m.AddGate("cooling-ok-gate", mef.Formula{Op: mef.NOT, Args: []mef.Literal{mef.Pos(coolingFails)}})

	must(m.AddFaultTree(&mef.FaultTree{Name: "trip", Tops: []mef.EventRef{tripFailsGate, tripOKGate}}))
	must(m.AddFaultTree(&mef.FaultTree{Name: "cooling", Tops: []mef.EventRef{coolingFailsGate, coolingOKGate}}))

	seqSuccess := &mef.Sequence{Name: "success"}
	seqDegraded := &mef.Sequence{Name: "degraded"}
	seqCoreDamage := &mef.Sequence{Name: "core-damage"}
	mustSeq(m, seqSuccess)
	mustSeq(m, seqDegraded)
	mustSeq(m, seqCoreDamage)

	coolingFork := &mef.Branch{
		Fork: &mef.Fork{
			FunctionalEvent: "cooling",
			Paths: []mef.Path{
				{Label: "ok", GateRef: coolingOKGate, Next: &mef.Branch{Sequence: seqSuccess}},
				{Label: "fails", GateRef: coolingFailsGate, Next: &mef.Branch{Sequence: seqDegraded}},
			},
		},
	}
	root := &mef.Branch{
		Fork: &mef.Fork{
			FunctionalEvent: "reactor-trip",
			Paths: []mef.Path{
				{Label: "ok", GateRef: tripOKGate, Next: coolingFork},
				{Label: "fails", GateRef: tripFailsGate, Next: &mef.Branch{Sequence: seqCoreDamage}},
			},
		},
	}

	et := &mef.EventTree{Name: "small-set-benchmark", Root: root}
	must(m.AddEventTree(et))
	ie := &mef.InitiatingEvent{Name: "reactor-trip-demand", EventTree: et}
	must(m.AddInitiatingEvent(ie))
	mustValidate(m)

	return &EventTreeExample{Name: "small-set-benchmark", Model: m, IE: ie}
}

func mustSeq(m *mef.Model, s *mef.Sequence) {
	if _, err := m.AddSequence(s); err != nil {
		must(err)
	}
}
