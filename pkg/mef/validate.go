package mef

import "fmt"

type color uint8

const (
	white color = iota
	gray
	black
)

// Validate checks every invariant listed in spec.md §3 and freezes the
// Model on success. Per spec.md §7's policy ("all errors from the
// model-validation phase are collected and returned together where
// possible"), every violation found is returned; the caller should not
// assume the first error is the only one.
func (m *Model) Validate() []error {
	var errs []error

	errs = append(errs, m.validateArities()...)
	errs = append(errs, m.validateAcyclicGates()...)
	errs = append(errs, m.validateAcyclicParameters()...)
	errs = append(errs, m.validateProbabilities()...)
	errs = append(errs, m.validateCCFDisjoint()...)

	if len(errs) == 0 {
		m.frozen = true
	}
	return errs
}

func (m *Model) validateArities() []error {
	var errs []error
	for i := range m.gates {
		g := &m.gates[i]
		f := g.Formula
		min := MinArity(f.Op)
		if len(f.Args) < min {
			errs = append(errs, &ValidationError{
				Where: g.Name,
				Msg:   fmt.Sprintf("operator %s requires at least %d args, got %d", f.Op, min, len(f.Args)),
			})
			continue
		}
		if f.Op == ATLEAST {
			if f.K < 2 || f.K >= len(f.Args) {
				errs = append(errs, &ValidationError{
					Where: g.Name,
					Msg:   fmt.Sprintf("atleast K=%d must satisfy 2 <= K < %d", f.K, len(f.Args)),
				})
			}
		}
		for _, lit := range f.Args {
			if !lit.Ref.IsValid() {
				errs = append(errs, &ValidationError{Where: g.Name, Msg: "argument references an invalid event"})
				continue
			}
			if lit.Ref.Kind == GateKind && int(lit.Ref.Index) >= len(m.gates) {
				errs = append(errs, &ValidationError{Where: g.Name, Msg: "argument references an unknown gate"})
			}
			if lit.Ref.Kind == BasicEventKind && int(lit.Ref.Index) >= len(m.basicEvents) {
				errs = append(errs, &ValidationError{Where: g.Name, Msg: "argument references an unknown basic event"})
			}
			if lit.Ref.Kind == HouseEventKind && int(lit.Ref.Index) >= len(m.houseEvents) {
				errs = append(errs, &ValidationError{Where: g.Name, Msg: "argument references an unknown house event"})
			}
		}
	}
	return errs
}

func (m *Model) validateAcyclicGates() []error {
	colors := make([]color, len(m.gates))
	var errs []error
	var path []string

	var visit func(idx int32) bool
	visit = func(idx int32) bool {
		switch colors[idx] {
		case black:
			return true
		case gray:
			errs = append(errs, &CycleError{Path: append(append([]string{}, path...), m.gates[idx].Name)})
			return false
		}
		colors[idx] = gray
		path = append(path, m.gates[idx].Name)
		ok := true
		for _, lit := range m.gates[idx].Formula.Args {
			if lit.Ref.Kind == GateKind && int(lit.Ref.Index) < len(m.gates) {
				if !visit(lit.Ref.Index) {
					ok = false
				}
			}
		}
		path = path[:len(path)-1]
		colors[idx] = black
		return ok
	}

	for i := range m.gates {
		if colors[i] == white {
			visit(int32(i))
		}
	}
	return errs
}

func (m *Model) validateAcyclicParameters() []error {
	colors := make(map[*Parameter]color, len(m.parameters))
	var errs []error
	var path []string

	var visit func(p *Parameter) bool
	visit = func(p *Parameter) bool {
		switch colors[p] {
		case black:
			return true
		case gray:
			errs = append(errs, &CycleError{Path: append(append([]string{}, path...), p.Name)})
			return false
		}
		colors[p] = gray
		path = append(path, p.Name)
		ok := true
		walkParamRefs(p.Expr, func(ref *Parameter) {
			if !visit(ref) {
				ok = false
			}
		})
		path = path[:len(path)-1]
		colors[p] = black
		return ok
	}

	for _, p := range m.parameters {
		if colors[p] == white {
			visit(p)
		}
	}
	return errs
}

// walkParamRefs invokes fn for every ParameterRef directly reachable one
// level down from expr (the caller recurses through fn for the full walk).
func walkParamRefs(expr Expression, fn func(*Parameter)) {
	switch e := expr.(type) {
	case *ParameterRef:
		fn(e.Param)
	case *Sum:
		for _, a := range e.Args {
			walkParamRefs(a, fn)
		}
	case *Product:
		for _, a := range e.Args {
			walkParamRefs(a, fn)
		}
	case *Diff:
		walkParamRefs(e.A, fn)
		walkParamRefs(e.B, fn)
	case *Div:
		walkParamRefs(e.A, fn)
		walkParamRefs(e.B, fn)
	case *Negate:
		walkParamRefs(e.A, fn)
	case *Uniform:
		walkParamRefs(e.Min, fn)
		walkParamRefs(e.Max, fn)
	case *Triangular:
		walkParamRefs(e.Min, fn)
		walkParamRefs(e.Mode, fn)
		walkParamRefs(e.Max, fn)
	case *Normal:
		walkParamRefs(e.Mean, fn)
		walkParamRefs(e.StdDev, fn)
	case *LogNormal:
		walkParamRefs(e.Mean, fn)
		walkParamRefs(e.StdDev, fn)
	case *Gamma:
		walkParamRefs(e.Shape, fn)
		walkParamRefs(e.Scale, fn)
	case *Beta:
		walkParamRefs(e.Alpha, fn)
		walkParamRefs(e.Beta, fn)
	case *Poisson:
		walkParamRefs(e.Lambda, fn)
	case *ExponentialWithTime:
		walkParamRefs(e.Lambda, fn)
	}
}

// validateProbabilities checks that every basic event reachable from some
// declared top has an evaluable probability expression in [0, 1].
func (m *Model) validateProbabilities() []error {
	var errs []error
	reachable := m.reachableBasicEvents()
	env := NewEnv(1.0)
	for idx := range reachable {
		be := &m.basicEvents[idx]
		env.Reset()
		v, err := env.Eval(be.Expr)
		if err != nil {
			errs = append(errs, &ValidationError{Where: be.Name, Msg: "probability expression: " + err.Error()})
			continue
		}
		if v < 0 || v > 1 {
			errs = append(errs, &ValidationError{
				Where: be.Name,
				Msg:   fmt.Sprintf("probability %.6g out of [0, 1]", v),
			})
		}
	}
	return errs
}

func (m *Model) reachableBasicEvents() map[int32]bool {
	reachable := make(map[int32]bool)
	visited := make(map[int32]bool)

	var walk func(ref EventRef)
	walk = func(ref EventRef) {
		switch ref.Kind {
		case BasicEventKind:
			// unknown indices are already reported by validateArities
			if int(ref.Index) < len(m.basicEvents) {
				reachable[ref.Index] = true
			}
		case GateKind:
			if visited[ref.Index] {
				return
			}
			visited[ref.Index] = true
			if int(ref.Index) >= len(m.gates) {
				return
			}
			for _, lit := range m.gates[ref.Index].Formula.Args {
				walk(lit.Ref)
			}
		}
	}

	for _, ft := range m.faultTrees {
		for _, top := range ft.Tops {
			walk(top)
		}
	}
	return reachable
}

func (m *Model) validateCCFDisjoint() []error {
	var errs []error
	seen := make(map[int32]string)
	for _, g := range m.ccfGroups {
		for _, member := range g.Members {
			if member.Kind != BasicEventKind {
				errs = append(errs, &ValidationError{Where: g.Name, Msg: "CCF member must be a basic event"})
				continue
			}
			if owner, ok := seen[member.Index]; ok {
				errs = append(errs, &ValidationError{
					Where: g.Name,
					Msg:   fmt.Sprintf("basic event %q already belongs to CCF group %q", m.EventName(member), owner),
				})
				continue
			}
			seen[member.Index] = g.Name
			m.basicEvents[member.Index].CCFGroup = int32(indexOfGroup(m.ccfGroups, g))
		}
	}
	return errs
}

func indexOfGroup(groups []*CCFGroup, g *CCFGroup) int {
	for i, candidate := range groups {
		if candidate == g {
			return i
		}
	}
	return -1
}
