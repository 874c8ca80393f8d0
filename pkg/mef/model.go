package mef

import "fmt"

// Model owns every gate, basic/house event, parameter, fault tree, event
// tree, and CCF group in an analysis input. Everything else (Formula
// arguments, FaultTree.Gates, and so on) holds a non-owning EventRef into
// this Model. Add* methods build the Model; Validate freezes it.
type Model struct {
	Name string

	gates       []Gate
	basicEvents []BasicEvent
	houseEvents []HouseEvent
	parameters  []*Parameter
	sequences   []*Sequence

	faultTrees       []*FaultTree
	eventTrees       []*EventTree
	initiatingEvents []*InitiatingEvent
	ccfGroups        []*CCFGroup

	names  map[string]EventRef
	params map[string]*Parameter

	frozen bool
}

// NewModel creates an empty, mutable Model.
func NewModel(name string) *Model {
	return &Model{
		Name:   name,
		names:  make(map[string]EventRef),
		params: make(map[string]*Parameter),
	}
}

func (m *Model) checkMutable(where string) error {
	if m.frozen {
		return &LogicError{Msg: fmt.Sprintf("%s: model is frozen after Validate", where)}
	}
	return nil
}

func (m *Model) checkNameFree(name string) error {
	if _, ok := m.names[name]; ok {
		return &ValidationError{Where: name, Msg: "duplicate event name"}
	}
	return nil
}

// AddGate adds a gate with the given formula, returning its EventRef.
func (m *Model) AddGate(name string, f Formula) (EventRef, error) {
	if err := m.checkMutable("AddGate"); err != nil {
		return EventRef{}, err
	}
	if err := m.checkNameFree(name); err != nil {
		return EventRef{}, err
	}
	ref := EventRef{Kind: GateKind, Index: int32(len(m.gates))}
	m.gates = append(m.gates, Gate{Name: name, Formula: f})
	m.names[name] = ref
	return ref, nil
}

// AddBasicEvent adds a terminal event with the given probability expression.
func (m *Model) AddBasicEvent(name string, expr Expression) (EventRef, error) {
	if err := m.checkMutable("AddBasicEvent"); err != nil {
		return EventRef{}, err
	}
	if err := m.checkNameFree(name); err != nil {
		return EventRef{}, err
	}
	ref := EventRef{Kind: BasicEventKind, Index: int32(len(m.basicEvents))}
	m.basicEvents = append(m.basicEvents, BasicEvent{Name: name, Expr: expr, CCFGroup: -1})
	m.names[name] = ref
	return ref, nil
}

// AddHouseEvent adds a terminal fixed-Boolean event.
func (m *Model) AddHouseEvent(name string, state bool) (EventRef, error) {
	if err := m.checkMutable("AddHouseEvent"); err != nil {
		return EventRef{}, err
	}
	if err := m.checkNameFree(name); err != nil {
		return EventRef{}, err
	}
	ref := EventRef{Kind: HouseEventKind, Index: int32(len(m.houseEvents))}
	m.houseEvents = append(m.houseEvents, HouseEvent{Name: name, State: state})
	m.names[name] = ref
	return ref, nil
}

// AddParameter adds a named scalar expression.
func (m *Model) AddParameter(name string, expr Expression) (*Parameter, error) {
	if err := m.checkMutable("AddParameter"); err != nil {
		return nil, err
	}
	if _, ok := m.params[name]; ok {
		return nil, &ValidationError{Where: name, Msg: "duplicate parameter name"}
	}
	p := &Parameter{Name: name, Expr: expr}
	m.params[name] = p
	m.parameters = append(m.parameters, p)
	return p, nil
}

// AddFaultTree registers a fault tree.
func (m *Model) AddFaultTree(ft *FaultTree) error {
	if err := m.checkMutable("AddFaultTree"); err != nil {
		return err
	}
	m.faultTrees = append(m.faultTrees, ft)
	return nil
}

// AddEventTree registers an event tree.
func (m *Model) AddEventTree(et *EventTree) error {
	if err := m.checkMutable("AddEventTree"); err != nil {
		return err
	}
	m.eventTrees = append(m.eventTrees, et)
	return nil
}

// AddInitiatingEvent registers an initiating event.
func (m *Model) AddInitiatingEvent(ie *InitiatingEvent) error {
	if err := m.checkMutable("AddInitiatingEvent"); err != nil {
		return err
	}
	m.initiatingEvents = append(m.initiatingEvents, ie)
	return nil
}

// AddCCFGroup registers a common-cause-failure group.
func (m *Model) AddCCFGroup(g *CCFGroup) error {
	if err := m.checkMutable("AddCCFGroup"); err != nil {
		return err
	}
	m.ccfGroups = append(m.ccfGroups, g)
	return nil
}

// AddSequence registers an event-tree sequence terminal.
func (m *Model) AddSequence(s *Sequence) (SequenceRef, error) {
	if err := m.checkMutable("AddSequence"); err != nil {
		return 0, err
	}
	ref := SequenceRef(len(m.sequences))
	m.sequences = append(m.sequences, s)
	return ref, nil
}

// Gate dereferences ref, which must be a GateKind ref belonging to m.
func (m *Model) Gate(ref EventRef) *Gate { return &m.gates[ref.Index] }

// BasicEvent dereferences ref, which must be a BasicEventKind ref.
func (m *Model) BasicEvent(ref EventRef) *BasicEvent { return &m.basicEvents[ref.Index] }

// HouseEvent dereferences ref, which must be a HouseEventKind ref.
func (m *Model) HouseEvent(ref EventRef) *HouseEvent { return &m.houseEvents[ref.Index] }

// EventName returns the declared name of any event kind.
func (m *Model) EventName(ref EventRef) string {
	switch ref.Kind {
	case GateKind:
		return m.gates[ref.Index].Name
	case BasicEventKind:
		return m.basicEvents[ref.Index].Name
	case HouseEventKind:
		return m.houseEvents[ref.Index].Name
	default:
		return "<invalid>"
	}
}

// Lookup resolves a declared event name to its EventRef.
func (m *Model) Lookup(name string) (EventRef, bool) {
	ref, ok := m.names[name]
	return ref, ok
}

// Sequence dereferences a SequenceRef.
func (m *Model) Sequence(ref SequenceRef) *Sequence { return m.sequences[ref] }

// Sequences returns every registered sequence, indexed by SequenceRef.
func (m *Model) Sequences() []*Sequence { return m.sequences }

func (m *Model) FaultTrees() []*FaultTree             { return m.faultTrees }
func (m *Model) EventTrees() []*EventTree             { return m.eventTrees }
func (m *Model) InitiatingEvents() []*InitiatingEvent { return m.initiatingEvents }
func (m *Model) CCFGroups() []*CCFGroup               { return m.ccfGroups }
func (m *Model) NumBasicEvents() int                  { return len(m.basicEvents) }
func (m *Model) NumGates() int                        { return len(m.gates) }

// Frozen reports whether Validate has already been called successfully.
func (m *Model) Frozen() bool { return m.frozen }
