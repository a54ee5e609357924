package metrics

// Sample is one row of the per-tick metrics table.
type Sample struct {
	Tick          int     `csv:"tick" json:"tick"`
	Time          float64 `csv:"time" json:"time"`
	Population    int     `csv:"population" json:"population"`
	TotalMass     float64 `csv:"total_mass" json:"total_mass"`
	MeanRadius    float64 `csv:"mean_radius" json:"mean_radius"`
	RadiusSpread  float64 `csv:"radius_spread" json:"radius_spread"`
	KineticEnergy float64 `csv:"kinetic_energy" json:"kinetic_energy"`
	RadiusDrift   float64 `csv:"radius_drift" json:"radius_drift"`
	TickMicros    int64   `csv:"tick_us" json:"tick_us"`
}

// Sample snapshots the set's current values into a row. Metrics missing from
// the set are left at zero.
func (s *Set) Sample(tick int, time float64) Sample {
	v := s.Values()
	return Sample{
		Tick:          tick,
		Time:          time,
		Population:    int(v[NamePopulation]),
		TotalMass:     v[NameTotalMass],
		MeanRadius:    v[NameMeanRadius],
		RadiusSpread:  v[NameRadiusSpread],
		KineticEnergy: v[NameKineticEnergy],
		RadiusDrift:   v[NameRadiusDrift],
	}
}
