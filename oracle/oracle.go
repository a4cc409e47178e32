// Package oracle decides finality: whether a candidate estimate has gathered
// an irreversible weighted majority of mutually-agreeing honest validators.
package oracle

import (
	"sync"

	"golang.org/x/sync/errgroup"

	"casper-project/estimator"
	"casper-project/justification"
	"casper-project/models"
	"casper-project/weights"
)

// DefaultMaxSteps bounds the clique search when no explicit budget is
// configured.
const DefaultMaxSteps = 1 << 16

// CliqueOracle answers safety queries with the clique argument: a candidate
// is safe once a set of honest validators, each of whom agrees with the
// candidate and has observed every other member's agreement, holds strictly
// more than half of the total weight plus the fault tolerance threshold.
type CliqueOracle struct {
	// MaxSteps bounds the Bron-Kerbosch recursion. When the budget runs
	// out the search stops and only the cliques found so far are
	// considered, so an over-budget query can answer "not safe" but never
	// a wrong "safe".
	MaxSteps int
}

// IsSafe reports whether the candidate estimate can no longer be reverted,
// given the current view and weights. Absence of support, an empty weight
// table or an exhausted search budget all answer false; the oracle never
// errors.
func (o CliqueOracle) IsSafe(
	candidate models.Estimate,
	est estimator.Estimator,
	latest *justification.LatestMessages,
	w *weights.Table,
	threshold weights.Weight,
	r justification.Resolver,
) bool {
	total := w.Total()
	if total == 0 {
		return false
	}
	cliques, _ := o.Cliques(candidate, est, latest, r)
	for _, clique := range cliques {
		cliqueWeight := w.Sum(models.NewValidatorSet(clique...))
		// strict inequality: a tie with the threshold is not yet safe
		if 2*cliqueWeight > total+2*threshold {
			return true
		}
	}
	return false
}

// Cliques returns the maximal cliques of the agreement graph for the
// candidate, and whether the search ran to completion. An edge connects two
// honest validators when each one's latest message agrees with the
// candidate and each has, inside its own justification, seen a latest
// honest message of the other that also agrees.
func (o CliqueOracle) Cliques(
	candidate models.Estimate,
	est estimator.Estimator,
	latest *justification.LatestMessages,
	r justification.Resolver,
) ([][]models.ValidatorID, bool) {
	honest := latest.Honest()
	equivocators := latest.Equivocators()

	agreeing := make(justification.LatestHonest)
	for sender, msg := range honest {
		if est.Agrees(candidate, msg.Estimate()) {
			agreeing[sender] = msg
		}
	}

	// per-validator scan of "who have I seen agreeing"; the scans are
	// independent of each other, so they fan out across workers
	senders := agreeing.Senders()
	seen := make(map[models.ValidatorID]models.ValidatorSet, len(senders))
	var mu sync.Mutex
	var g errgroup.Group
	for _, sender := range senders {
		sender := sender
		msg := agreeing[sender]
		g.Go(func() error {
			inJustification := justification.LatestFromJustification(msg.Justification(), r)
			observed := make(models.ValidatorSet)
			for other, otherMsg := range inJustification.HonestWith(equivocators) {
				if est.Agrees(candidate, otherMsg.Estimate()) {
					observed.Add(other)
				}
			}
			mu.Lock()
			seen[sender] = observed
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()

	neighbours := make(map[models.ValidatorID]models.ValidatorSet, len(senders))
	for _, sender := range senders {
		links := make(models.ValidatorSet)
		for other := range seen[sender] {
			if other == sender {
				continue
			}
			if seen[other].Contains(sender) {
				links.Add(other)
			}
		}
		neighbours[sender] = links
	}

	vertices := make(models.ValidatorSet)
	for sender, links := range neighbours {
		if len(links) > 0 {
			vertices.Add(sender)
		}
	}

	return o.maximalCliques(vertices, neighbours)
}

// maximalCliques is Bron-Kerbosch over the agreement graph, bounded by the
// configured step budget.
func (o CliqueOracle) maximalCliques(
	vertices models.ValidatorSet,
	neighbours map[models.ValidatorID]models.ValidatorSet,
) ([][]models.ValidatorID, bool) {
	maxSteps := o.MaxSteps
	if maxSteps <= 0 {
		maxSteps = DefaultMaxSteps
	}

	var cliques [][]models.ValidatorID
	steps := 0

	var expand func(r, p, x models.ValidatorSet) bool
	expand = func(r, p, x models.ValidatorSet) bool {
		steps++
		if steps > maxSteps {
			return false
		}
		if len(p) == 0 && len(x) == 0 {
			// an empty r reaches here only when the graph has no vertices;
			// the empty set is not a clique
			if len(r) > 0 {
				cliques = append(cliques, r.Sorted())
			}
			return true
		}
		for _, v := range p.Sorted() {
			delete(p, v)
			rNext := r.Clone()
			rNext.Add(v)
			if !expand(rNext, intersect(p, neighbours[v]), intersect(x, neighbours[v])) {
				return false
			}
			x.Add(v)
		}
		return true
	}

	complete := expand(make(models.ValidatorSet), vertices.Clone(), make(models.ValidatorSet))
	return cliques, complete
}

func intersect(a, b models.ValidatorSet) models.ValidatorSet {
	out := make(models.ValidatorSet)
	for v := range a {
		if b.Contains(v) {
			out.Add(v)
		}
	}
	return out
}
