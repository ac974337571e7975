package simplex

import (
	"fmt"
	"io"
	"sync"
)

// decisionKind classifies one branch-and-bound node outcome, adapted from
// jjhbw-GoMILP's bnbDecision enumeration (SUBPROBLEM_NOT_FEASIBLE,
// WORSE_THAN_INCUMBENT, BETTER_THAN_INCUMBENT_BRANCHING,
// BETTER_THAN_INCUMBENT_FEASIBLE) to this package's pruning rules.
type decisionKind int

const (
	decisionWorseThanIncumbent decisionKind = iota
	decisionNotFeasible
	decisionBranching
	decisionNewIncumbent
)

func (k decisionKind) String() string {
	switch k {
	case decisionWorseThanIncumbent:
		return "worse than incumbent"
	case decisionNotFeasible:
		return "not feasible"
	case decisionBranching:
		return "branching"
	case decisionNewIncumbent:
		return "new incumbent"
	default:
		return "unknown"
	}
}

// bnbDecision describes one node's outcome, reported to a BnbObserver.
type bnbDecision struct {
	Kind     decisionKind
	Variable int
	Answer   Answer
}

// BnbObserver receives branch-and-bound node decisions as DiscreteSimplex
// explores the tree. Implementations must be safe for concurrent use:
// Decision is called from every branch goroutine.
type BnbObserver interface {
	Decision(d bnbDecision)
}

type noopObserver struct{}

func (noopObserver) Decision(bnbDecision) {}

// TreeLogger is a BnbObserver that records every decision in the order it
// is reported, and can render the resulting log as a Graphviz DOT graph
// (adapted from jjhbw-GoMILP's TreeLogger.ToDOT). It is safe for
// concurrent use.
type TreeLogger struct {
	mu      sync.Mutex
	entries []bnbDecision
}

// NewTreeLogger returns a ready-to-use TreeLogger.
func NewTreeLogger() *TreeLogger {
	return &TreeLogger{}
}

// Decision implements BnbObserver.
func (l *TreeLogger) Decision(d bnbDecision) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = append(l.entries, d)
}

// Entries returns a snapshot of the decisions recorded so far.
func (l *TreeLogger) Entries() []bnbDecision {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]bnbDecision(nil), l.entries...)
}

// ToDOT renders the recorded decisions as a flat Graphviz DOT graph, one
// node per decision, labelled with its kind and (for branching decisions)
// the branched variable.
func (l *TreeLogger) ToDOT(w io.Writer) error {
	l.mu.Lock()
	entries := append([]bnbDecision(nil), l.entries...)
	l.mu.Unlock()

	writeRow := func(format string, args ...interface{}) error {
		_, err := fmt.Fprintf(w, format+"\n", args...)
		return err
	}

	if err := writeRow("digraph bnb {"); err != nil {
		return err
	}
	if err := writeRow("node [fontname=Courier,shape=rectangle];"); err != nil {
		return err
	}

	for i, d := range entries {
		color := "Gray"
		label := d.Kind.String()
		switch d.Kind {
		case decisionNewIncumbent:
			color = "Green"
		case decisionNotFeasible:
			color = "Red"
		case decisionBranching:
			color = "Black"
			label = fmt.Sprintf("%s on x%d", label, d.Variable)
		}
		if err := writeRow("n%d [label=%q,color=%s];", i, label, color); err != nil {
			return err
		}
	}
	return writeRow("}")
}
