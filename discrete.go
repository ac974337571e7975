package simplex

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math"
	"sync"
	"sync/atomic"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"
)

// ValidityPredicate reports whether a relaxed value for one variable is
// already acceptable at an integer (or other discrete) optimum. The
// default, installed by NewDiscreteSimplex for every variable, is
// nearlyInteger.
type ValidityPredicate func(x float64) bool

// RoundFn computes a branching bound from a fractional relaxed value: the
// lower child's upper bound, or the upper child's lower bound. The
// defaults are math.Floor and math.Ceil.
type RoundFn func(x float64) float64

// DiscreteOptions configures a DiscreteSimplex solve.
type DiscreteOptions struct {
	// MaxWorkers caps the number of goroutines spawned to explore lower
	// branches concurrently; when every slot is taken, a lower branch is
	// explored on the current task instead. Zero means unbounded (one
	// goroutine per fork).
	MaxWorkers int
	// Observer, if set, is notified of branch-and-bound decisions as they
	// happen. Nil disables reporting.
	Observer BnbObserver
}

// DiscreteSimplex performs Land-Doig branch and bound over a Simplex's
// relaxation (§4.6). Exploration forks exactly one child task per node via
// errgroup: the lower branch is deep-copied (Tableau and biOrder) and
// spawned asynchronously, while the upper branch runs in place on the
// current task, since the parent no longer needs its Tableau once both
// children have been dispatched. A single monotone incumbent is shared
// across the whole tree; a subtree that fails with Infeasible is silently
// pruned, while Unbounded and Difficult failures are reported to the
// exception handler before the subtree is pruned (§5, §7) — no single
// subtree failure aborts the solve.
type DiscreteSimplex struct {
	root       *Simplex
	predicates []ValidityPredicate
	lowerFns   []RoundFn
	upperFns   []RoundFn

	exceptionHandler func(error)
}

// NewDiscreteSimplex builds a DiscreteSimplex over root with the default
// predicate (nearlyInteger) and round functions (floor/ceil) for every
// variable, requiring a full integer solution.
func NewDiscreteSimplex(root *Simplex) *DiscreteSimplex {
	n := root.problem.Cols()
	predicates := make([]ValidityPredicate, n)
	lowerFns := make([]RoundFn, n)
	upperFns := make([]RoundFn, n)
	for i := range predicates {
		predicates[i] = nearlyInteger
		lowerFns[i] = math.Floor
		upperFns[i] = math.Ceil
	}
	return &DiscreteSimplex{
		root:             root,
		predicates:       predicates,
		lowerFns:         lowerFns,
		upperFns:         upperFns,
		exceptionHandler: defaultExceptionHandler,
	}
}

// WithPredicates returns a DiscreteSimplex over the same root that
// branches using custom per-variable predicates and round functions
// instead of the integer defaults. All three arrays must have length
// equal to the problem's variable count, or a *DataError is returned. A
// variable that should remain continuous can be given an
// always-true predicate.
func (d *DiscreteSimplex) WithPredicates(predicates []ValidityPredicate, lowerFns, upperFns []RoundFn) (*DiscreteSimplex, error) {
	n := d.root.problem.Cols()
	if len(predicates) != n || len(lowerFns) != n || len(upperFns) != n {
		return nil, &DataError{Field: "predicates", Reason: "length does not match the problem's variable count"}
	}
	clone := *d
	clone.predicates = predicates
	clone.lowerFns = lowerFns
	clone.upperFns = upperFns
	return &clone, nil
}

// SetExceptionHandler installs the callback invoked on every Unbounded or
// Difficult failure surfacing from a branch-and-bound subtree; the
// subtree is pruned regardless of what the handler does. A nil handler
// restores the default, which logs the failure.
func (d *DiscreteSimplex) SetExceptionHandler(h func(error)) {
	if h == nil {
		h = defaultExceptionHandler
	}
	d.exceptionHandler = h
}

func defaultExceptionHandler(err error) {
	log.Printf("simplex: branch-and-bound subtree failed: %v", err)
}

// Solve runs branch and bound with unbounded worker concurrency and no
// observer.
func (d *DiscreteSimplex) Solve(ctx context.Context) (Answer, error) {
	return d.SolveWithOptions(ctx, DiscreteOptions{})
}

// SolveWithOptions runs branch and bound under opts.
func (d *DiscreteSimplex) SolveWithOptions(ctx context.Context, opts DiscreteOptions) (Answer, error) {
	relax, err := d.root.Solve()
	if err != nil {
		return Answer{}, err
	}

	obs := opts.Observer
	if obs == nil {
		obs = noopObserver{}
	}
	n := d.root.problem.Cols()
	inc := newIncumbent(d.root.problem.Objective)

	var sem *semaphore.Weighted
	if opts.MaxWorkers > 0 {
		sem = semaphore.NewWeighted(int64(opts.MaxWorkers))
	}

	g, gctx := errgroup.WithContext(ctx)
	rootBI := make([]int, 2*n)
	for i := range rootBI {
		rootBI[i] = -1
	}

	// branch mutates the node it is given in place on the upper-branch
	// path (only the lower branch copies), so the recursion must start
	// from a copy rather than d.root itself: d.root may be reused across
	// multiple Solve calls and must never be mutated by one of them.
	d.branch(gctx, g, sem, inc, obs, d.root.Copy(), relax, rootBI)

	if err := g.Wait(); err != nil {
		return Answer{}, err
	}

	snap := inc.snapshot()
	if !snap.has {
		return Answer{}, &InfeasibleError{Reason: "no integer-feasible solution exists"}
	}
	return snap.answer, nil
}

// branch inspects one LP-relaxed node: prunes it against the incumbent,
// declares it discretely feasible, or forks exactly two children on the
// first variable whose predicate rejects the relaxed value.
func (d *DiscreteSimplex) branch(ctx context.Context, g *errgroup.Group, sem *semaphore.Weighted, inc *incumbent, obs BnbObserver, node *Simplex, relax Answer, bi []int) {
	if ctx.Err() != nil {
		return
	}
	if inc.prune(relax.FX) {
		obs.Decision(bnbDecision{Kind: decisionWorseThanIncumbent, Answer: relax})
		return
	}

	idx := -1
	for i, pred := range d.predicates {
		if !pred(relax.X[i]) {
			idx = i
			break
		}
	}
	if idx == -1 {
		if inc.tryUpdate(relax) {
			obs.Decision(bnbDecision{Kind: decisionNewIncumbent, Answer: relax})
		}
		return
	}

	v := relax.X[idx]
	obs.Decision(bnbDecision{Kind: decisionBranching, Answer: relax, Variable: idx})

	lowerBound := d.lowerFns[idx](v)
	upperBound := d.upperFns[idx](v)
	lowerSlot := 2 * idx
	upperSlot := 2*idx + 1

	// Copy node and bi synchronously, before dispatching the lower branch
	// and before the upper branch mutates node/bi in place below: the
	// goroutine below must never race the in-place upper-branch mutation
	// over the same Tableau and biOrder array.
	child := node.Copy()
	childBI := append([]int(nil), bi...)

	spawnLower := func() (err error) {
		defer func() {
			if r := recover(); r != nil {
				d.exceptionHandler(&DifficultError{Reason: fmt.Sprintf("branch-and-bound node panicked: %v", r)})
			}
		}()
		d.exploreChild(ctx, g, sem, inc, obs, child, childBI, idx, LQ, lowerBound, lowerSlot)
		return nil
	}

	switch {
	case sem == nil:
		g.Go(spawnLower)
	case sem.TryAcquire(1):
		g.Go(func() error {
			defer sem.Release(1)
			return spawnLower()
		})
	default:
		// Every worker slot is taken (possibly by this very task), so
		// waiting for one could block forever: explore the lower branch
		// on the current task instead.
		_ = spawnLower()
	}

	// The upper branch runs in place on the current task: node is not
	// needed again once the lower branch has its own copy, so only the
	// upper branch reuses it directly (§4.6 step 5, §5).
	d.exploreChild(ctx, g, sem, inc, obs, node, bi, idx, GE, upperBound, upperSlot)
}

// exploreChild tightens or appends the branching bound on variable idx
// against node in place (reusing the row recorded in bi at slot if one
// already exists on this path, so repeated tightening along a branch uses
// ChangeB instead of accumulating duplicate rows), and recurses. Callers
// that still need node afterwards (the lower branch) must Copy it first;
// the upper branch passes node directly since the parent has no further
// use for it once the lower branch has its own copy. Any Infeasible
// failure silently prunes; Unbounded or Difficult failures are reported to
// the exception handler before pruning (§7).
func (d *DiscreteSimplex) exploreChild(ctx context.Context, g *errgroup.Group, sem *semaphore.Weighted, inc *incumbent, obs BnbObserver, node *Simplex, bi []int, varIdx int, dir Inequality, bound float64, slot int) {
	var answer Answer
	var err error
	if row := bi[slot]; row != -1 {
		answer, err = node.ChangeB(row, bound)
	} else {
		a := make([]float64, len(d.predicates))
		a[varIdx] = 1
		answer, err = node.AddConstraint(a, dir, bound)
		bi[slot] = node.tab.m - 1
	}

	if err != nil {
		var infeasible *InfeasibleError
		if errors.As(err, &infeasible) {
			obs.Decision(bnbDecision{Kind: decisionNotFeasible, Variable: varIdx})
			return
		}
		d.exceptionHandler(err)
		return
	}

	d.branch(ctx, g, sem, inc, obs, node, answer, bi)
}

// incumbentSnapshot is the immutable value published by incumbent at any
// point in time.
type incumbentSnapshot struct {
	has    bool
	fx     float64
	answer Answer
}

// incumbent is the shared, monotonically-improving best discrete solution
// found so far. Reads go through a lock-free snapshot; updates
// double-check under a mutex so concurrent branches never regress it.
type incumbent struct {
	mu    sync.Mutex
	sense Objective
	snap  atomic.Value
}

func newIncumbent(sense Objective) *incumbent {
	inc := &incumbent{sense: sense}
	inc.snap.Store(incumbentSnapshot{})
	return inc
}

func (inc *incumbent) snapshot() incumbentSnapshot {
	return inc.snap.Load().(incumbentSnapshot)
}

// prune reports whether a relaxation bound can no longer improve on the
// current incumbent.
func (inc *incumbent) prune(bound float64) bool {
	s := inc.snapshot()
	return s.has && !better(bound, s.fx, inc.sense)
}

// tryUpdate installs cand as the new incumbent if it strictly improves on
// the current one, using a lock-free fast check before acquiring the
// mutex to keep the common non-improving case cheap.
func (inc *incumbent) tryUpdate(cand Answer) bool {
	if s := inc.snapshot(); s.has && !better(cand.FX, s.fx, inc.sense) {
		return false
	}
	inc.mu.Lock()
	defer inc.mu.Unlock()
	if s := inc.snapshot(); s.has && !better(cand.FX, s.fx, inc.sense) {
		return false
	}
	inc.snap.Store(incumbentSnapshot{has: true, fx: cand.FX, answer: cand})
	return true
}
