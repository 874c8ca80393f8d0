package main

import "github.com/handanlinzhang/scram/pkg/mef"

// exitCodeFor classifies err by its Kind() (spec.md §6): 0 is reserved for
// success and never reached here, validation/configuration/cycle errors
// exit 1, everything else (logic errors, numerical errors, an
// un-Kinded error) exits 2.
func exitCodeFor(err error) int {
	if err == nil {
		return 0
	}
	kinded, ok := err.(mef.Kinded)
	if !ok {
		return 2
	}
	switch kinded.Kind() {
	case "validation", "configuration", "cycle":
		return 1
	default:
		return 2
	}
}
