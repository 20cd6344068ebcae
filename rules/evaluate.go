package rules

import (
	"github.com/WRMELO/PortfolioZero/metrics"
	"github.com/WRMELO/PortfolioZero/universe"
)

// Evaluate resolves the action for one held ticker against the ruleset.
//
// The supervised-universe check runs before everything else: a ticker that
// left the universe is zeroed no matter how the prioritized rules would
// score it. Otherwise the first rule in priority order whose condition block
// holds wins; if none triggers the ticker is held.
func Evaluate(
	ticker string,
	tm metrics.TickerMetrics,
	pm metrics.PortfolioMetrics,
	rs *RuleSet,
	u *universe.Universe,
) (Action, string) {
	if u != nil && !u.Contains(ticker) {
		return Zero, string(ExitIfNotInSupervised)
	}
	if rs == nil {
		return Hold, DefaultHold
	}

	for _, id := range rs.PriorityOrder {
		if id == ExitIfNotInSupervised {
			// Already checked above; present in priority_order only to
			// document its rank.
			continue
		}
		rule, ok := rs.Rules[id]
		if !ok {
			continue
		}
		if triggered(rule, tm, pm) {
			return NormalizeAction(rule.Block.Action), string(id)
		}
	}
	return Hold, DefaultHold
}

func triggered(rule Rule, tm metrics.TickerMetrics, pm metrics.PortfolioMetrics) bool {
	lookup := func(m metrics.Metric) (float64, bool) {
		if rule.Scope == PortfolioScope {
			return pm.Value(m)
		}
		return tm.Value(m)
	}
	switch {
	case len(rule.Block.AnyOf) > 0:
		for _, c := range rule.Block.AnyOf {
			if holds(c, lookup) {
				return true
			}
		}
		return false
	case len(rule.Block.AllOf) > 0:
		for _, c := range rule.Block.AllOf {
			if !holds(c, lookup) {
				return false
			}
		}
		return true
	default:
		return false
	}
}

// holds evaluates one condition. A missing metric value makes the condition
// false; it never errors and never triggers a rule.
func holds(c Condition, lookup func(metrics.Metric) (float64, bool)) bool {
	v, ok := lookup(c.Metric)
	if !ok {
		return false
	}
	switch c.Op {
	case ">=":
		return v >= c.Value
	case "<=":
		return v <= c.Value
	case ">":
		return v > c.Value
	case "<":
		return v < c.Value
	case "==":
		return v == c.Value
	case "!=":
		return v != c.Value
	}
	return false
}
