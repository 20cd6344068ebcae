// Package rules models the prioritized sell-rule document and evaluates it
// against computed risk metrics. Evaluation is a pure function: same inputs,
// same (action, rule) out, no hidden state.
package rules

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/WRMELO/PortfolioZero/metrics"
)

// Action is a normalized decision for one ticker on one day.
type Action string

const (
	Hold   Action = "HOLD"
	Reduce Action = "REDUCE"
	Zero   Action = "ZERO"
)

// NormalizeAction maps a raw document action onto the closed Action set.
// Unknown values degrade to HOLD rather than failing the run.
func NormalizeAction(raw string) Action {
	switch raw {
	case "ZERO", "REDUCE", "HOLD":
		return Action(raw)
	case "PORTFOLIO_REDUCE":
		return Reduce
	case "TICKER_ZERO":
		return Zero
	default:
		return Hold
	}
}

// ID identifies one rule kind. The set is closed; priority_order entries are
// validated against it at load time.
type ID string

const (
	ExitIfNotInSupervised ID = "EXIT_IF_NOT_IN_SUPERVISED"
	HardStop              ID = "HARD_STOP"
	SoftStop              ID = "SOFT_STOP"
	PortfolioHardStop     ID = "PORTFOLIO_HARD_STOP"
	PortfolioSoftStop     ID = "PORTFOLIO_SOFT_STOP"
	TickerHardStop        ID = "TICKER_HARD_STOP"
	SystemicStressSoft    ID = "SYSTEMIC_STRESS_SOFT_STOP"
	SystemicStressHard    ID = "SYSTEMIC_STRESS_HARD_STOP"
	IdiosyncraticHardStop ID = "IDIOSYNCRATIC_HARD_STOP"
)

// DefaultHold is the pseudo rule id reported when nothing triggers.
const DefaultHold = "DEFAULT_HOLD"

// Scope says which metrics record a rule's conditions read. It is an
// explicit attribute of the rule kind, not derived from its name.
type Scope int

const (
	TickerScope Scope = iota
	PortfolioScope
)

// documentKey maps each rule kind to its block key in the ruleset document.
var documentKey = map[ID]string{
	HardStop:              "hard_stop",
	SoftStop:              "soft_stop",
	PortfolioHardStop:     "portfolio_hard_stop",
	PortfolioSoftStop:     "portfolio_soft_stop",
	TickerHardStop:        "ticker_hard_stop",
	SystemicStressSoft:    "systemic_stress_soft_stop",
	SystemicStressHard:    "systemic_stress_hard_stop",
	IdiosyncraticHardStop: "idiosyncratic_hard_stop",
}

var ruleScope = map[ID]Scope{
	HardStop:              TickerScope,
	SoftStop:              TickerScope,
	PortfolioHardStop:     PortfolioScope,
	PortfolioSoftStop:     PortfolioScope,
	TickerHardStop:        TickerScope,
	SystemicStressSoft:    TickerScope,
	SystemicStressHard:    TickerScope,
	IdiosyncraticHardStop: TickerScope,
}

var validOps = map[string]bool{
	">=": true, "<=": true, ">": true, "<": true, "==": true, "!=": true,
}

// Condition is one {metric, op, value} comparison.
type Condition struct {
	Metric metrics.Metric
	Op     string
	Value  float64
}

// Block is a rule's condition block plus its raw action.
type Block struct {
	AnyOf  []Condition
	AllOf  []Condition
	Action string
}

// Rule is one prioritized rule with its evaluation scope.
type Rule struct {
	ID    ID
	Scope Scope
	Block Block
}

// RuleSet is the loaded, validated rule document.
type RuleSet struct {
	ID            string
	PriorityOrder []ID
	Rules         map[ID]Rule

	// Sell fractions for REDUCE actions.
	ReduceFraction          float64
	PortfolioReduceFraction float64

	// QuarantineSessions overrides the configured default when > 0.
	QuarantineSessions int
}

// FractionFor selects the sell fraction a REDUCE uses: portfolio-scoped
// rules distribute the portfolio fraction across every position.
func (rs *RuleSet) FractionFor(id ID) float64 {
	if r, ok := rs.Rules[id]; ok && r.Scope == PortfolioScope {
		return rs.PortfolioReduceFraction
	}
	return rs.ReduceFraction
}

// --- document decoding ---

type conditionDoc struct {
	Metric string      `json:"metric" yaml:"metric"`
	Op     string      `json:"op" yaml:"op"`
	Value  interface{} `json:"value" yaml:"value"`
}

type blockDoc struct {
	AnyOf  []conditionDoc `json:"any_of" yaml:"any_of"`
	AllOf  []conditionDoc `json:"all_of" yaml:"all_of"`
	Action string         `json:"action" yaml:"action"`
}

type rulesetDoc struct {
	RulesetID     string   `json:"ruleset_id" yaml:"ruleset_id"`
	PriorityOrder []string `json:"priority_order" yaml:"priority_order"`

	Actions struct {
		Reduce struct {
			FractionOfPositionToSell float64 `json:"fraction_of_position_to_sell" yaml:"fraction_of_position_to_sell"`
		} `json:"reduce" yaml:"reduce"`
		PortfolioReduce struct {
			FractionEachPosition float64 `json:"fraction_each_position" yaml:"fraction_each_position"`
		} `json:"portfolio_reduce" yaml:"portfolio_reduce"`
	} `json:"actions" yaml:"actions"`

	Reentry struct {
		QuarantineSessionsAfterZero int `json:"quarantine_sessions_after_zero" yaml:"quarantine_sessions_after_zero"`
	} `json:"reentry" yaml:"reentry"`

	HardStop              *blockDoc `json:"hard_stop" yaml:"hard_stop"`
	SoftStop              *blockDoc `json:"soft_stop" yaml:"soft_stop"`
	PortfolioHardStop     *blockDoc `json:"portfolio_hard_stop" yaml:"portfolio_hard_stop"`
	PortfolioSoftStop     *blockDoc `json:"portfolio_soft_stop" yaml:"portfolio_soft_stop"`
	SystemicStressSoft    *blockDoc `json:"systemic_stress_soft_stop" yaml:"systemic_stress_soft_stop"`
	SystemicStressHard    *blockDoc `json:"systemic_stress_hard_stop" yaml:"systemic_stress_hard_stop"`
	TickerHardStop        *blockDoc `json:"ticker_hard_stop" yaml:"ticker_hard_stop"`
	IdiosyncraticHardStop *blockDoc `json:"idiosyncratic_hard_stop" yaml:"idiosyncratic_hard_stop"`
}

func (d *rulesetDoc) blockFor(id ID) *blockDoc {
	switch id {
	case HardStop:
		return d.HardStop
	case SoftStop:
		return d.SoftStop
	case PortfolioHardStop:
		return d.PortfolioHardStop
	case PortfolioSoftStop:
		return d.PortfolioSoftStop
	case TickerHardStop:
		return d.TickerHardStop
	case SystemicStressSoft:
		return d.SystemicStressSoft
	case SystemicStressHard:
		return d.SystemicStressHard
	case IdiosyncraticHardStop:
		return d.IdiosyncraticHardStop
	}
	return nil
}

// LoadFile loads a ruleset document from a JSON or YAML file.
func LoadFile(path string) (*RuleSet, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read ruleset: %w", err)
	}
	switch filepath.Ext(path) {
	case ".yaml", ".yml":
		return ParseYAML(data)
	default:
		return ParseJSON(data)
	}
}

// ParseJSON decodes and validates a JSON ruleset document.
func ParseJSON(data []byte) (*RuleSet, error) {
	var doc rulesetDoc
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse ruleset json: %w", err)
	}
	return build(&doc)
}

// ParseYAML decodes and validates a YAML ruleset document.
func ParseYAML(data []byte) (*RuleSet, error) {
	var doc rulesetDoc
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse ruleset yaml: %w", err)
	}
	return build(&doc)
}

func build(doc *rulesetDoc) (*RuleSet, error) {
	rs := &RuleSet{
		ID:                      doc.RulesetID,
		Rules:                   make(map[ID]Rule),
		ReduceFraction:          doc.Actions.Reduce.FractionOfPositionToSell,
		PortfolioReduceFraction: doc.Actions.PortfolioReduce.FractionEachPosition,
		QuarantineSessions:      doc.Reentry.QuarantineSessionsAfterZero,
	}
	if rs.ReduceFraction == 0 {
		rs.ReduceFraction = 0.5
	}
	if rs.PortfolioReduceFraction == 0 {
		rs.PortfolioReduceFraction = rs.ReduceFraction
	}
	if rs.ReduceFraction < 0 || rs.ReduceFraction > 1 {
		return nil, fmt.Errorf("ruleset %s: reduce fraction %v outside (0,1]", rs.ID, rs.ReduceFraction)
	}
	if rs.PortfolioReduceFraction < 0 || rs.PortfolioReduceFraction > 1 {
		return nil, fmt.Errorf("ruleset %s: portfolio reduce fraction %v outside (0,1]", rs.ID, rs.PortfolioReduceFraction)
	}

	for _, raw := range doc.PriorityOrder {
		id := ID(raw)
		if id == ExitIfNotInSupervised {
			rs.PriorityOrder = append(rs.PriorityOrder, id)
			continue
		}
		scope, known := ruleScope[id]
		if !known {
			return nil, fmt.Errorf("ruleset %s: unknown rule id %q in priority_order", rs.ID, raw)
		}
		rs.PriorityOrder = append(rs.PriorityOrder, id)

		bd := doc.blockFor(id)
		if bd == nil {
			// Prioritized but undefined blocks simply never trigger.
			continue
		}
		block, err := buildBlock(bd, scope)
		if err != nil {
			return nil, fmt.Errorf("ruleset %s: rule %s: %w", rs.ID, id, err)
		}
		rs.Rules[id] = Rule{ID: id, Scope: scope, Block: block}
	}
	return rs, nil
}

func buildBlock(bd *blockDoc, scope Scope) (Block, error) {
	b := Block{Action: bd.Action}
	var err error
	if b.AnyOf, err = buildConditions(bd.AnyOf, scope); err != nil {
		return Block{}, err
	}
	if b.AllOf, err = buildConditions(bd.AllOf, scope); err != nil {
		return Block{}, err
	}
	return b, nil
}

func buildConditions(docs []conditionDoc, scope Scope) ([]Condition, error) {
	var out []Condition
	for _, cd := range docs {
		m, ok := metrics.Parse(cd.Metric)
		if !ok {
			return nil, fmt.Errorf("unknown metric %q", cd.Metric)
		}
		if scope == TickerScope && !metrics.IsTickerScoped(m) {
			return nil, fmt.Errorf("metric %q is not ticker-scoped", cd.Metric)
		}
		if scope == PortfolioScope && !metrics.IsPortfolioScoped(m) {
			return nil, fmt.Errorf("metric %q is not portfolio-scoped", cd.Metric)
		}
		if !validOps[cd.Op] {
			return nil, fmt.Errorf("unknown op %q", cd.Op)
		}
		v, err := numericValue(cd.Value)
		if err != nil {
			return nil, fmt.Errorf("metric %q: %w", cd.Metric, err)
		}
		out = append(out, Condition{Metric: m, Op: cd.Op, Value: v})
	}
	return out, nil
}

// numericValue coerces a document value to float64. Booleans map to 0/1 so
// SMA-flag conditions like {"op": "==", "value": true} compare cleanly.
func numericValue(v interface{}) (float64, error) {
	switch x := v.(type) {
	case bool:
		if x {
			return 1, nil
		}
		return 0, nil
	case float64:
		return x, nil
	case int:
		return float64(x), nil
	case int64:
		return float64(x), nil
	case json.Number:
		return x.Float64()
	default:
		return 0, fmt.Errorf("condition value %v (%T) is not numeric", v, v)
	}
}
