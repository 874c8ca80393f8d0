package examples

// FaultTreeExamples returns every built-in fault-tree example keyed by
// the name the CLI's `pra analyze <example>` argument accepts.
func FaultTreeExamples() map[string]func() *Example {
	return map[string]func() *Example{
		"abc":           ABC,
		"ab-bc":         ABBC,
		"atleast":       AtLeast,
		"unity":         Unity,
		"null":          Null,
		"and-not-b":     AndNotB,
		"xor":           XOR,
		"ccf-benchmark": CCFBenchmark,
	}
}

// Random200Example wraps Random200 with 200 events (the size spec.md §8
// row 8 names) and this repository's own fixed seed 200, registered
// separately from FaultTreeExamples since it takes parameters the other
// built-ins don't.
func Random200Example() *Example { return Random200(200, 200) }

// EventTreeExamples returns every built-in event-tree example keyed by
// the name the CLI's `pra event-tree <example>` argument accepts.
func EventTreeExamples() map[string]func() *EventTreeExample {
	return map[string]func() *EventTreeExample{
		"small-set-benchmark": SmallSetBenchmark,
	}
}
