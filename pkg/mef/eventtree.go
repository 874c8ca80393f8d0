package mef

// SequenceRef indexes Model.sequences.
type SequenceRef int32

// Sequence is a named event-tree terminal, optionally carrying an explicit
// probability expression (spec.md §3). The sequence's probability is that
// of the conjunction of the path formulas collected on the way to it;
// a non-nil ProbExpr multiplies that value.
type Sequence struct {
	Name     string
	ProbExpr Expression
}

// InstructionKind tags a Branch instruction.
type InstructionKind uint8

const (
	SetHouseEventInstr InstructionKind = iota
	CollectFormulaInstr
)

// Instruction is a house-event override or a formula-collection step
// applied while descending an event tree branch (spec.md §3).
type Instruction struct {
	Kind InstructionKind

	// Valid when Kind == SetHouseEventInstr.
	HouseEvent EventRef
	HouseState bool

	// Valid when Kind == CollectFormulaInstr: the referenced gate's
	// formula is AND-composed into the traversal's collected context.
	CollectGate EventRef
}

// Path is one outgoing edge of a Fork: a label and the gate whose formula
// gives this path's conditional probability (spec.md §4.7). GateRef may be
// invalid, meaning the path is unconditional (probability 1) given the
// accumulated context.
type Path struct {
	Label   string
	GateRef EventRef
	Next    *Branch
}

// Fork forks the traversal on a functional event's outcomes.
type Fork struct {
	FunctionalEvent string
	Paths           []Path
}

// Branch is one node of an EventTree: either a Fork (continue the walk) or
// a terminal pointing at a Sequence, plus any Instructions to apply before
// forking or terminating (spec.md §3).
type Branch struct {
	Instructions []Instruction
	Fork         *Fork     // nil at a terminal branch
	Sequence     *Sequence // non-nil at a terminal branch
}

// EventTree is a named rooted tree of Branch nodes.
type EventTree struct {
	Name string
	Root *Branch
}

// InitiatingEvent names an event tree entry point.
type InitiatingEvent struct {
	Name      string
	EventTree *EventTree
}
