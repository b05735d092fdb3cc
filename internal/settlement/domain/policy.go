package settlement

// Policy holds the settlement rates. Rates are fractions of the claim
// amount; thresholds on quality are 0..100 and on GPS confidence 0..1.
type Policy struct {
	ProcessingFeeRate       float64 `yaml:"processing_fee_rate"`
	IncludePenalties        bool    `yaml:"include_penalties"`
	IncludeBonuses          bool    `yaml:"include_bonuses"`
	LatePenaltyPerDay       float64 `yaml:"late_penalty_per_day"`
	LatePenaltyCap          float64 `yaml:"late_penalty_cap"`
	QualityPenaltyBelow     float64 `yaml:"quality_penalty_below"`
	QualityPenaltyPerPoint  float64 `yaml:"quality_penalty_per_point"`
	GPSPenaltyRate          float64 `yaml:"gps_penalty_rate"`
	GPSPenaltyBelow         float64 `yaml:"gps_penalty_below"`
	EarlyBonusPerDay        float64 `yaml:"early_bonus_per_day"`
	EarlyBonusCap           float64 `yaml:"early_bonus_cap"`
	QualityBonusFrom        float64 `yaml:"quality_bonus_from"`
	QualityBonusRate        float64 `yaml:"quality_bonus_rate"`
	GPSBonusFrom            float64 `yaml:"gps_bonus_from"`
	GPSBonusRate            float64 `yaml:"gps_bonus_rate"`
	ReconciliationBonusRate float64 `yaml:"reconciliation_bonus_rate"`
	PaymentTolerancePct     float64 `yaml:"payment_tolerance_pct"`
	Workers                 int     `yaml:"workers"`
}

// DefaultPolicy returns the production settlement policy.
func DefaultPolicy() Policy {
	return Policy{
		ProcessingFeeRate:       0.02,
		IncludePenalties:        true,
		IncludeBonuses:          true,
		LatePenaltyPerDay:       0.005,
		LatePenaltyCap:          0.05,
		QualityPenaltyBelow:     80,
		QualityPenaltyPerPoint:  0.001,
		GPSPenaltyRate:          0.01,
		GPSPenaltyBelow:         0.8,
		EarlyBonusPerDay:        0.001,
		EarlyBonusCap:           0.01,
		QualityBonusFrom:        95,
		QualityBonusRate:        0.005,
		GPSBonusFrom:            0.95,
		GPSBonusRate:            0.002,
		ReconciliationBonusRate: 0.003,
		PaymentTolerancePct:     0.1,
		Workers:                 8,
	}
}
