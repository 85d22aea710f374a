package entity

type CheckResult string

const (
	CheckPass CheckResult = "pass"
	CheckFail CheckResult = "fail"
	CheckNone CheckResult = ""
)

// QualityChecks carries the four independent frame-quality indicators
// reported by the detection service. A check the service did not evaluate
// stays CheckNone and is treated as non-blocking.
type QualityChecks struct {
	Brightness CheckResult `json:"brightness,omitempty"`
	Darkness   CheckResult `json:"darkness,omitempty"`
	Blur       CheckResult `json:"blur,omitempty"`
	Glare      CheckResult `json:"glare,omitempty"`
}

func (q QualityChecks) AllPass() bool {
	return q.Brightness != CheckFail &&
		q.Darkness != CheckFail &&
		q.Blur != CheckFail &&
		q.Glare != CheckFail
}

type DetectionResult struct {
	Success bool          `json:"success"`
	Checks  QualityChecks `json:"checks"`
	BBox    *Rect         `json:"bbox,omitempty"`
}
