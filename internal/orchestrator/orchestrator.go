package orchestrator

import (
	"fmt"
	"log"
	"strings"
	"time"

	"DCAPilot/internal/agent"
	"DCAPilot/internal/model"
)

// defaultWeights is the relative importance of each signal source before
// normalisation.
var defaultWeights = map[string]float64{
	"technical":    0.30,
	"cycle":        0.30,
	"sentiment":    0.25,
	"geopolitical": 0.15,
}

// actionTier maps a composite-score floor to a DCA action.
type actionTier struct {
	floor      float64
	action     model.Action
	multiplier float64
}

// Tiers are checked top-down; the catch-all floor is never reached
// because composite is bounded below by -1.
var actionTiers = []actionTier{
	{0.5, model.ActionStrongBuy, 3.0},
	{0.2, model.ActionBuy, 1.5},
	{-0.2, model.ActionNormal, 1.0},
	{-0.5, model.ActionReduce, 0.5},
	{-2.0, model.ActionMinimal, 0.2},
}

// Orchestrator gathers signals from every agent and folds them into a
// single DCA decision.
type Orchestrator struct {
	agents     []agent.Agent
	weights    map[string]float64
	baseDCAUSD float64
}

// New builds an orchestrator over the given agents. weights may be nil or
// partial; missing sources fall back to the defaults, and the final map is
// normalised so the weights of the constructed agents sum to 1.
func New(agents []agent.Agent, weights map[string]float64, baseDCAUSD float64) *Orchestrator {
	normalised := make(map[string]float64, len(agents))
	var total float64
	for _, a := range agents {
		w, ok := weights[a.Name()]
		if !ok {
			w = defaultWeights[a.Name()]
		}
		if w <= 0 {
			w = 0.1
		}
		normalised[a.Name()] = w
		total += w
	}
	if total > 0 {
		for name := range normalised {
			normalised[name] /= total
		}
	}
	return &Orchestrator{agents: agents, weights: normalised, baseDCAUSD: baseDCAUSD}
}

// BaseDCAUSD returns the configured base purchase amount.
func (o *Orchestrator) BaseDCAUSD() float64 { return o.baseDCAUSD }

// GatherSignals runs every agent, excluding any that fails. A failed
// agent is logged and simply carries no weight in the composite.
func (o *Orchestrator) GatherSignals() []model.Signal {
	signals := make([]model.Signal, 0, len(o.agents))
	for _, a := range o.agents {
		sig, err := a.Analyse()
		if err != nil {
			log.Printf("[WARN] agent %s failed, excluding from decision: %v", a.Name(), err)
			continue
		}
		log.Printf("[INFO] agent %s: score=%+.3f confidence=%.2f", a.Name(), sig.Score, sig.Confidence)
		signals = append(signals, sig)
	}
	return signals
}

// ComputeComposite folds signals into one score: each signal contributes
// its score weighted by (source weight × confidence), renormalised by the
// total effective weight. Returns 0 when nothing carries weight.
func (o *Orchestrator) ComputeComposite(signals []model.Signal) float64 {
	var weightedSum, totalWeight float64
	for _, sig := range signals {
		effective := o.weights[sig.Source] * sig.Confidence
		weightedSum += effective * sig.Score
		totalWeight += effective
	}
	if totalWeight == 0 {
		return 0
	}
	return weightedSum / totalWeight
}

// Decide runs the full gather → composite → tier pipeline.
func (o *Orchestrator) Decide() model.Decision {
	signals := o.GatherSignals()
	composite := o.ComputeComposite(signals)
	action, multiplier := tierFor(composite)

	decision := model.Decision{
		Action:     action,
		Multiplier: multiplier,
		Composite:  composite,
		Signals:    signals,
		Reasoning:  o.buildReasoning(signals, composite, action, multiplier),
		CreatedAt:  time.Now().UTC(),
	}
	log.Printf("[INFO] decision: action=%s multiplier=%.1fx composite=%+.3f", action, multiplier, composite)
	return decision
}

func tierFor(composite float64) (model.Action, float64) {
	for _, t := range actionTiers {
		if composite >= t.floor {
			return t.action, t.multiplier
		}
	}
	return model.ActionMinimal, 0.2
}

// buildReasoning renders the per-source audit trail that goes into the
// trade record and notifications.
func (o *Orchestrator) buildReasoning(signals []model.Signal, composite float64, action model.Action, multiplier float64) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Composite score: %+.3f → %s (%.1fx base)\n", composite, action, multiplier)
	if len(signals) == 0 {
		b.WriteString("No signals available; defaulting to neutral.\n")
	}
	for _, sig := range signals {
		w := o.weights[sig.Source]
		fmt.Fprintf(&b, "\n[%s] weight=%.2f confidence=%.2f effective=%.3f score=%+.2f\n",
			sig.Source, w, sig.Confidence, w*sig.Confidence, sig.Score)
		b.WriteString(indent(sig.Reasoning, "  "))
		b.WriteString("\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

func indent(s, prefix string) string {
	lines := strings.Split(strings.TrimRight(s, "\n"), "\n")
	for i, line := range lines {
		lines[i] = prefix + line
	}
	return strings.Join(lines, "\n")
}
