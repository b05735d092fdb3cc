package claims

// Evidence describes which supporting documents exist for a consignment.
type Evidence struct {
	Waybill           bool     `json:"waybill"`
	GPSTrace          bool     `json:"gps_trace"`
	GoodsReceivedNote bool     `json:"goods_received_note"`
	TankDips          bool     `json:"tank_dips"`
	Weighbridge       bool     `json:"weighbridge"`
	SealVerification  bool     `json:"seal_verification"`
	Refs              []string `json:"refs,omitempty"`
}

// EvidenceWeights are the points each document contributes, out of 100.
type EvidenceWeights struct {
	Waybill           float64 `yaml:"waybill"`
	GPSTrace          float64 `yaml:"gps_trace"`
	GoodsReceivedNote float64 `yaml:"goods_received_note"`
	TankDips          float64 `yaml:"tank_dips"`
	Weighbridge       float64 `yaml:"weighbridge"`
	SealVerification  float64 `yaml:"seal_verification"`
}

// DefaultEvidenceWeights returns the standard document weighting.
func DefaultEvidenceWeights() EvidenceWeights {
	return EvidenceWeights{
		Waybill:           20,
		GPSTrace:          25,
		GoodsReceivedNote: 20,
		TankDips:          15,
		Weighbridge:       10,
		SealVerification:  10,
	}
}

// Score returns the completeness score, capped at 100.
func (e Evidence) Score(w EvidenceWeights) float64 {
	var score float64
	add := func(present bool, points float64) {
		if present {
			score += points
		}
	}
	add(e.Waybill, w.Waybill)
	add(e.GPSTrace, w.GPSTrace)
	add(e.GoodsReceivedNote, w.GoodsReceivedNote)
	add(e.TankDips, w.TankDips)
	add(e.Weighbridge, w.Weighbridge)
	add(e.SealVerification, w.SealVerification)
	if score > 100 {
		return 100
	}
	return score
}
