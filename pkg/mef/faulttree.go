package mef

// FaultTree is a named container of gates, some of which may be declared
// as top events for analysis (spec.md §3).
type FaultTree struct {
	Name  string
	Gates []EventRef
	Tops  []EventRef
}
