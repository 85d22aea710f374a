package detection

import (
	"sync"
	"time"
)

const (
	maxSamples = 10

	minDetectionInterval = 50 * time.Millisecond
	maxDetectionInterval = 200 * time.Millisecond
	minImageQuality      = 0.3
	maxImageQuality      = 0.95
	minImageScale        = 0.4
	maxImageScale        = 1.0

	poorProcessingTime = 200 * time.Millisecond
	goodProcessingTime = 100 * time.Millisecond
	poorNetworkTime    = 800 * time.Millisecond
	badNetworkTime     = 1500 * time.Millisecond
	goodNetworkTime    = 500 * time.Millisecond
	fastNetworkTime    = 300 * time.Millisecond

	intervalGrowth = 1.3
	intervalDecay  = 0.9
	qualityDecay   = 0.85
	qualityGrowth  = 1.1
	scaleDecay     = 0.9
	scaleRecovery  = 1.05
)

// adaptiveController trades latency against bandwidth and CPU: it tracks
// rolling windows of local processing and network round-trip times and tunes
// the detection interval, image quality and image scale accordingly.
type adaptiveController struct {
	mu sync.Mutex

	processing []time.Duration
	network    []time.Duration

	interval time.Duration
	quality  float64
	scale    float64
}

func newAdaptiveController(interval time.Duration, quality, scale float64) *adaptiveController {
	return &adaptiveController{
		interval: clampDuration(interval, minDetectionInterval, maxDetectionInterval),
		quality:  clampFloat(quality, minImageQuality, maxImageQuality),
		scale:    clampFloat(scale, minImageScale, maxImageScale),
	}
}

func (a *adaptiveController) RecordProcessing(d time.Duration) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.processing = pushSample(a.processing, d)
}

func (a *adaptiveController) RecordNetwork(d time.Duration) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.network = pushSample(a.network, d)
}

func (a *adaptiveController) Interval() time.Duration {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.interval
}

func (a *adaptiveController) Quality() float64 {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.quality
}

func (a *adaptiveController) Scale() float64 {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.scale
}

// Evaluate applies the tuning rules against the current sample windows. It
// reports whether the detection interval changed, so the caller can restart
// its periodic timer with the new period.
func (a *adaptiveController) Evaluate() bool {
	a.mu.Lock()
	defer a.mu.Unlock()

	if len(a.processing) == 0 && len(a.network) == 0 {
		return false
	}

	procAvg := average(a.processing)
	netAvg := average(a.network)
	oldInterval := a.interval

	if procAvg > poorProcessingTime || netAvg > poorNetworkTime {
		a.interval = clampDuration(time.Duration(float64(a.interval)*intervalGrowth), minDetectionInterval, maxDetectionInterval)
		a.quality = clampFloat(a.quality*qualityDecay, minImageQuality, maxImageQuality)
		if netAvg > badNetworkTime {
			a.scale = clampFloat(a.scale*scaleDecay, minImageScale, maxImageScale)
		}
	} else if procAvg < goodProcessingTime && netAvg < goodNetworkTime && netAvg < fastNetworkTime {
		a.interval = clampDuration(time.Duration(float64(a.interval)*intervalDecay), minDetectionInterval, maxDetectionInterval)
		a.quality = clampFloat(a.quality*qualityGrowth, minImageQuality, maxImageQuality)
		a.scale = clampFloat(a.scale*scaleRecovery, minImageScale, maxImageScale)
	}

	return a.interval != oldInterval
}

func pushSample(window []time.Duration, d time.Duration) []time.Duration {
	window = append(window, d)
	if len(window) > maxSamples {
		window = window[len(window)-maxSamples:]
	}
	return window
}

func average(samples []time.Duration) time.Duration {
	if len(samples) == 0 {
		return 0
	}
	var total time.Duration
	for _, s := range samples {
		total += s
	}
	return total / time.Duration(len(samples))
}

func clampDuration(d, lo, hi time.Duration) time.Duration {
	if d < lo {
		return lo
	}
	if d > hi {
		return hi
	}
	return d
}

func clampFloat(f, lo, hi float64) float64 {
	if f < lo {
		return lo
	}
	if f > hi {
		return hi
	}
	return f
}
