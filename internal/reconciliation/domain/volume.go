package reconciliation

import "time"

// Party identifies who reported a volume.
type Party string

const (
	PartyDepot       Party = "depot"
	PartyTransporter Party = "transporter"
	PartyStation     Party = "station"
)

// VolumeRecord is one party's measurement of a consignment.
type VolumeRecord struct {
	Party        Party     `json:"party"`
	Litres       float64   `json:"litres"`
	TemperatureC float64   `json:"temperature_c"`
	DocumentRef  string    `json:"document_ref"`
	Density      *float64  `json:"density,omitempty"`
	APIGravity   *float64  `json:"api_gravity,omitempty"`
	RecordedAt   time.Time `json:"recorded_at"`
}

// Triple is the reconciliation input for one consignment.
type Triple struct {
	ConsignmentID string       `json:"consignment_id"`
	Depot         VolumeRecord `json:"depot"`
	Transporter   VolumeRecord `json:"transporter"`
	Station       VolumeRecord `json:"station"`
}

// DocumentRefs lists the non-empty document references in party order.
func (t Triple) DocumentRefs() []string {
	var refs []string
	for _, r := range []VolumeRecord{t.Depot, t.Transporter, t.Station} {
		if r.DocumentRef != "" {
			refs = append(refs, r.DocumentRef)
		}
	}
	return refs
}

// CorrectedVolumes are the three volumes normalized to the reference temperature.
type CorrectedVolumes struct {
	Depot          float64 `json:"depot_at_15c"`
	Transporter    float64 `json:"transporter_at_15c"`
	Station        float64 `json:"station_at_15c"`
	DepotVCF       float64 `json:"depot_vcf"`
	TransporterVCF float64 `json:"transporter_vcf"`
	StationVCF     float64 `json:"station_vcf"`
}

// ToleranceFactors scale the base volume tolerance. Zero means 1.
type ToleranceFactors struct {
	RouteComplexity   float64 `json:"route_complexity" yaml:"route_complexity"`
	ProductVolatility float64 `json:"product_volatility" yaml:"product_volatility"`
}

// Tolerance returns the dynamic volume tolerance in percent.
func (f ToleranceFactors) Tolerance(basePct float64) float64 {
	return basePct * orOne(f.RouteComplexity) * orOne(f.ProductVolatility)
}

// VCF returns the linear volume correction factor from tempC to refC.
// It falls as temperature rises above the reference.
func VCF(tempC, refC, coefficient float64) float64 {
	return 1 - coefficient*(tempC-refC)
}

func orOne(f float64) float64 {
	if f <= 0 {
		return 1
	}
	return f
}
