package orchestrator

import (
	"errors"
	"math"
	"testing"

	"DCAPilot/internal/agent"
	"DCAPilot/internal/model"
)

type stubAgent struct {
	name string
	sig  model.Signal
	err  error
}

func (s stubAgent) Name() string                   { return s.name }
func (s stubAgent) Analyse() (model.Signal, error) { return s.sig, s.err }

func mustSignal(t *testing.T, source string, score, conf float64) model.Signal {
	t.Helper()
	sig, err := model.NewSignal(source, score, conf, "test")
	if err != nil {
		t.Fatalf("build signal: %v", err)
	}
	return sig
}

func TestNew_NormalisesWeights(t *testing.T) {
	agents := []agent.Agent{
		stubAgent{name: "technical"},
		stubAgent{name: "cycle"},
	}
	o := New(agents, nil, 100)
	sum := o.weights["technical"] + o.weights["cycle"]
	if math.Abs(sum-1.0) > 1e-9 {
		t.Errorf("weights should sum to 1, got %.4f", sum)
	}
	// Defaults give both sources 0.30, so after normalisation they are equal.
	if math.Abs(o.weights["technical"]-0.5) > 1e-9 {
		t.Errorf("expected 0.5, got %.4f", o.weights["technical"])
	}
}

func TestComputeComposite_ConfidenceWeighting(t *testing.T) {
	agents := []agent.Agent{
		stubAgent{name: "technical"},
		stubAgent{name: "cycle"},
	}
	o := New(agents, map[string]float64{"technical": 0.5, "cycle": 0.5}, 100)

	// Equal weights; the high-confidence signal dominates.
	signals := []model.Signal{
		mustSignal(t, "technical", 1.0, 0.9),
		mustSignal(t, "cycle", -1.0, 0.1),
	}
	got := o.ComputeComposite(signals)
	want := (0.5*0.9*1.0 + 0.5*0.1*-1.0) / (0.5*0.9 + 0.5*0.1)
	if math.Abs(got-want) > 1e-9 {
		t.Errorf("expected %.4f, got %.4f", want, got)
	}
	if got <= 0 {
		t.Errorf("high-confidence bull signal should dominate, got %.4f", got)
	}
}

func TestComputeComposite_ScaleInvariant(t *testing.T) {
	agents := []agent.Agent{
		stubAgent{name: "technical"},
		stubAgent{name: "cycle"},
	}
	signals := []model.Signal{
		mustSignal(t, "technical", 0.6, 0.5),
		mustSignal(t, "cycle", -0.2, 0.8),
	}
	a := New(agents, map[string]float64{"technical": 0.3, "cycle": 0.7}, 100)
	b := New(agents, map[string]float64{"technical": 3.0, "cycle": 7.0}, 100)
	if math.Abs(a.ComputeComposite(signals)-b.ComputeComposite(signals)) > 1e-9 {
		t.Error("composite must be invariant under weight rescaling")
	}
}

func TestComputeComposite_ZeroConfidence(t *testing.T) {
	o := New([]agent.Agent{stubAgent{name: "technical"}}, nil, 100)
	signals := []model.Signal{mustSignal(t, "technical", 1.0, 0.0)}
	if got := o.ComputeComposite(signals); got != 0.0 {
		t.Errorf("zero total confidence should yield 0, got %.4f", got)
	}
	if got := o.ComputeComposite(nil); got != 0.0 {
		t.Errorf("no signals should yield 0, got %.4f", got)
	}
}

func TestComputeComposite_SingleSource(t *testing.T) {
	o := New([]agent.Agent{stubAgent{name: "cycle"}}, nil, 100)
	signals := []model.Signal{mustSignal(t, "cycle", 0.7, 0.4)}
	if got := o.ComputeComposite(signals); math.Abs(got-0.7) > 1e-9 {
		t.Errorf("single source composite should equal its score, got %.4f", got)
	}
}

func TestTierFor_Boundaries(t *testing.T) {
	tests := []struct {
		composite  float64
		action     model.Action
		multiplier float64
	}{
		{0.9, model.ActionStrongBuy, 3.0},
		{0.5, model.ActionStrongBuy, 3.0},
		{0.49999, model.ActionBuy, 1.5},
		{0.2, model.ActionBuy, 1.5},
		{0.19999, model.ActionNormal, 1.0},
		{0.0, model.ActionNormal, 1.0},
		{-0.2, model.ActionNormal, 1.0},
		{-0.20001, model.ActionReduce, 0.5},
		{-0.5, model.ActionReduce, 0.5},
		{-0.50001, model.ActionMinimal, 0.2},
		{-1.0, model.ActionMinimal, 0.2},
	}
	for _, tt := range tests {
		action, mult := tierFor(tt.composite)
		if action != tt.action || mult != tt.multiplier {
			t.Errorf("composite %+.5f: expected %s %.1fx, got %s %.1fx",
				tt.composite, tt.action, tt.multiplier, action, mult)
		}
	}
}

func TestGatherSignals_ExcludesFailedAgent(t *testing.T) {
	agents := []agent.Agent{
		stubAgent{name: "technical", err: errors.New("exchange down")},
		stubAgent{name: "cycle", sig: mustSignal(t, "cycle", 0.4, 0.6)},
	}
	o := New(agents, nil, 100)
	signals := o.GatherSignals()
	if len(signals) != 1 {
		t.Fatalf("expected 1 signal, got %d", len(signals))
	}
	if signals[0].Source != "cycle" {
		t.Errorf("expected surviving signal from cycle, got %s", signals[0].Source)
	}
}

func TestDecide_EndToEnd(t *testing.T) {
	agents := []agent.Agent{
		stubAgent{name: "technical", sig: mustSignal(t, "technical", 0.8, 0.9)},
		stubAgent{name: "cycle", sig: mustSignal(t, "cycle", 0.6, 0.8)},
	}
	o := New(agents, nil, 100)
	d := o.Decide()
	if d.Action != model.ActionStrongBuy {
		t.Errorf("strong agreement should be strong_buy, got %s", d.Action)
	}
	if d.Multiplier != 3.0 {
		t.Errorf("expected 3.0x, got %.1f", d.Multiplier)
	}
	if len(d.Signals) != 2 {
		t.Errorf("expected 2 signals in decision, got %d", len(d.Signals))
	}
	if d.Reasoning == "" {
		t.Error("decision must carry an audit trail")
	}
}
