package detection

import (
	"testing"
	"time"
)

func TestEvaluatePoorSamplesGrowInterval(t *testing.T) {
	a := newAdaptiveController(100*time.Millisecond, 0.9, 1.0)

	previous := a.Interval()
	for i := 0; i < 10; i++ {
		a.RecordProcessing(300 * time.Millisecond)
		a.RecordNetwork(900 * time.Millisecond)
		a.Evaluate()

		current := a.Interval()
		if current < previous {
			t.Fatalf("Interval decreased from %s to %s under sustained poor samples", previous, current)
		}
		previous = current
	}

	if previous != maxDetectionInterval {
		t.Errorf("Interval = %s after sustained poor samples, want cap %s", previous, maxDetectionInterval)
	}
}

func TestEvaluatePoorSamplesDegradeQuality(t *testing.T) {
	a := newAdaptiveController(100*time.Millisecond, 0.9, 1.0)

	for i := 0; i < 20; i++ {
		a.RecordProcessing(300 * time.Millisecond)
		a.RecordNetwork(900 * time.Millisecond)
		a.Evaluate()
	}

	if a.Quality() != minImageQuality {
		t.Errorf("Quality = %f after sustained poor samples, want floor %f", a.Quality(), minImageQuality)
	}
	if a.Scale() != 1.0 {
		t.Errorf("Scale = %f, want untouched 1.0 when network below the aggressive threshold", a.Scale())
	}
}

func TestEvaluateBadNetworkShrinksScale(t *testing.T) {
	a := newAdaptiveController(100*time.Millisecond, 0.9, 1.0)

	for i := 0; i < 20; i++ {
		a.RecordNetwork(2000 * time.Millisecond)
		a.Evaluate()
	}

	if a.Scale() != minImageScale {
		t.Errorf("Scale = %f after sustained bad network, want floor %f", a.Scale(), minImageScale)
	}
}

func TestEvaluateGoodSamplesShrinkInterval(t *testing.T) {
	a := newAdaptiveController(200*time.Millisecond, 0.5, 0.6)

	for i := 0; i < 30; i++ {
		a.RecordProcessing(20 * time.Millisecond)
		a.RecordNetwork(50 * time.Millisecond)
		a.Evaluate()
	}

	if a.Interval() != minDetectionInterval {
		t.Errorf("Interval = %s after sustained good samples, want floor %s", a.Interval(), minDetectionInterval)
	}
	if a.Quality() != maxImageQuality {
		t.Errorf("Quality = %f, want cap %f", a.Quality(), maxImageQuality)
	}
	if a.Scale() != maxImageScale {
		t.Errorf("Scale = %f, want restored toward %f", a.Scale(), maxImageScale)
	}
}

func TestEvaluateNoSamplesIsNoop(t *testing.T) {
	a := newAdaptiveController(100*time.Millisecond, 0.9, 1.0)

	if a.Evaluate() {
		t.Error("Evaluate reported an interval change without any samples")
	}
	if a.Interval() != 100*time.Millisecond {
		t.Errorf("Interval changed to %s without samples", a.Interval())
	}
}

func TestEvaluateReportsIntervalChange(t *testing.T) {
	a := newAdaptiveController(100*time.Millisecond, 0.9, 1.0)

	a.RecordProcessing(300 * time.Millisecond)
	if !a.Evaluate() {
		t.Error("Evaluate did not report the interval change")
	}

	// already at the cap: quality keeps degrading but the interval holds
	a = newAdaptiveController(maxDetectionInterval, 0.9, 1.0)
	a.RecordProcessing(300 * time.Millisecond)
	if a.Evaluate() {
		t.Error("Evaluate reported a change with the interval at its cap")
	}
}

func TestSampleWindowBounded(t *testing.T) {
	a := newAdaptiveController(100*time.Millisecond, 0.9, 1.0)

	// 10 old poor samples fully displaced by 10 good ones
	for i := 0; i < 10; i++ {
		a.RecordProcessing(500 * time.Millisecond)
	}
	for i := 0; i < 10; i++ {
		a.RecordProcessing(10 * time.Millisecond)
		a.RecordNetwork(10 * time.Millisecond)
	}

	before := a.Interval()
	a.Evaluate()
	if a.Interval() > before {
		t.Errorf("Interval grew to %s although the window holds only good samples", a.Interval())
	}
}
