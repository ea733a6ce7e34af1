package trend

import (
	"testing"

	"TrendTrader/internal/model"
)

func TestDirectionRules(t *testing.T) {
	cases := []struct {
		name  string
		price float64
		short float64
		mid   float64
		long  float64
		want  model.TrendDirection
	}{
		{"full bull stack", 110, 105, 100, 95, model.TrendUp},
		{"weak uptrend, price below short", 104, 105, 100, 95, model.TrendUp},
		{"full bear stack", 90, 95, 100, 105, model.TrendDown},
		{"weak downtrend, price above short", 96, 95, 100, 105, model.TrendDown},
		{"mixed ordering", 100, 105, 95, 100, model.TrendSideways},
		{"price between mid and long", 98, 105, 100, 95, model.TrendSideways},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			ind := model.IndicatorSet{SMAShort: tc.short, SMAMid: tc.mid, SMALong: tc.long}
			if got := direction(tc.price, ind); got != tc.want {
				t.Errorf("direction(%v) = %s, want %s", tc.price, got, tc.want)
			}
		})
	}
}

func TestStrengthBands(t *testing.T) {
	c := NewClassifier(DefaultWeights(), 10)

	// full bull stack lands in the strong band
	ind := model.IndicatorSet{SMAShort: 105, SMAMid: 100, SMALong: 95, ATR: 2}
	state := c.Update(110, ind)
	if state.Direction != model.TrendUp {
		t.Fatalf("expected up, got %s", state.Direction)
	}
	if state.Strength < 75 || state.Strength > 100 {
		t.Errorf("full stack strength %f outside [75,100]", state.Strength)
	}

	// weak uptrend lands in the middle band
	c.Reset()
	state = c.Update(104, model.IndicatorSet{SMAShort: 105, SMAMid: 100, SMALong: 95, ATR: 2})
	if state.Direction != model.TrendUp {
		t.Fatalf("expected up, got %s", state.Direction)
	}
	if state.Strength < 50 || state.Strength >= 75 {
		t.Errorf("weak trend strength %f outside [50,75)", state.Strength)
	}

	// sideways always stays below 50
	c.Reset()
	state = c.Update(100, model.IndicatorSet{SMAShort: 105, SMAMid: 95, SMALong: 100, ATR: 2})
	if state.Direction != model.TrendSideways {
		t.Fatalf("expected sideways, got %s", state.Direction)
	}
	if state.Strength >= 50 {
		t.Errorf("sideways strength %f should be below 50", state.Strength)
	}
}

func TestSlopeRaisesStrength(t *testing.T) {
	flat := NewClassifier(DefaultWeights(), 5)
	rising := NewClassifier(DefaultWeights(), 5)

	var flatState, risingState model.TrendState
	for i := 0; i < 5; i++ {
		flatState = flat.Update(110, model.IndicatorSet{SMAShort: 105, SMAMid: 100, SMALong: 95, ATR: 2})
		risingState = rising.Update(110+float64(i), model.IndicatorSet{
			SMAShort: 105 + float64(i),
			SMAMid:   100 + float64(i),
			SMALong:  95 + float64(i),
			ATR:      2,
		})
	}
	if risingState.Strength <= flatState.Strength {
		t.Errorf("rising long SMA should score higher: rising %f vs flat %f",
			risingState.Strength, flatState.Strength)
	}
}

func TestStrengthMirrorsForDowntrend(t *testing.T) {
	c := NewClassifier(DefaultWeights(), 10)
	state := c.Update(90, model.IndicatorSet{SMAShort: 95, SMAMid: 100, SMALong: 105, ATR: 2})
	if state.Direction != model.TrendDown {
		t.Fatalf("expected down, got %s", state.Direction)
	}
	if state.Strength < 75 {
		t.Errorf("full bear stack strength %f should reach the strong band", state.Strength)
	}
}
