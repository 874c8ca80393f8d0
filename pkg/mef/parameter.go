package mef

// Parameter is a named scalar whose value comes from an Expression DAG.
type Parameter struct {
	Name string
	Expr Expression
}
