// Package pricing computes installation prices and difficulty adjustments.
// The same calculation backs both the preview estimate and the authoritative
// price charged inside an installation.
package pricing

import "ripperdoc/pkg/domain"

// Option adjustments. Multipliers are percentages applied in the order
// street doc, quality clinic, rush job; anesthesia is a flat surcharge added
// after all multipliers.
const (
	StreetDocPercent     = 60
	QualityClinicPercent = 180
	RushJobPercent       = 150
	AnesthesiaFee        = 200

	StreetDocDifficulty     = 3
	QualityClinicDifficulty = -2
	RushJobDifficulty       = 4
	AnesthesiaDifficulty    = -1
)

// Adjustment is one applied option in a Breakdown.
type Adjustment struct {
	Option          string `json:"option"`
	Percent         int    `json:"percent,omitempty"`
	Flat            int    `json:"flat,omitempty"`
	DifficultyDelta int    `json:"difficultyDelta"`
}

// Quote is the full pricing output for one catalog item and option set.
type Quote struct {
	BaseCost            int          `json:"baseCost"`
	FinalPrice          int          `json:"finalPrice"`
	BaseDifficulty      int          `json:"baseDifficulty"`
	DifficultyDelta     int          `json:"difficultyDelta"`
	EffectiveDifficulty int          `json:"effectiveDifficulty"`
	Adjustments         []Adjustment `json:"adjustments"`
}

// Calculate prices baseCost under opts and adjusts baseDifficulty.
// The running price is kept as an exact fraction and rounded half-up once.
func Calculate(baseCost, baseDifficulty int, opts domain.InstallationOptions) Quote {
	num, den := int64(baseCost), int64(1)
	delta := 0
	var adjustments []Adjustment

	applyPercent := func(name string, percent, diff int) {
		num *= int64(percent)
		den *= 100
		delta += diff
		adjustments = append(adjustments, Adjustment{Option: name, Percent: percent, DifficultyDelta: diff})
	}
	if opts.UseStreetDoc {
		applyPercent("useStreetDoc", StreetDocPercent, StreetDocDifficulty)
	}
	if opts.QualityClinic {
		applyPercent("qualityClinic", QualityClinicPercent, QualityClinicDifficulty)
	}
	if opts.RushJob {
		applyPercent("rushJob", RushJobPercent, RushJobDifficulty)
	}

	price := roundHalfUp(num, den)
	if opts.Anesthesia {
		price += AnesthesiaFee
		delta += AnesthesiaDifficulty
		adjustments = append(adjustments, Adjustment{Option: "anesthesia", Flat: AnesthesiaFee, DifficultyDelta: AnesthesiaDifficulty})
	}

	return Quote{
		BaseCost:            baseCost,
		FinalPrice:          int(price),
		BaseDifficulty:      baseDifficulty,
		DifficultyDelta:     delta,
		EffectiveDifficulty: max(baseDifficulty+delta, 0),
		Adjustments:         adjustments,
	}
}

// Price returns only the final price for baseCost under opts.
func Price(baseCost int, opts domain.InstallationOptions) int {
	return Calculate(baseCost, 0, opts).FinalPrice
}

// DifficultyDelta sums the difficulty adjustments of the enabled options.
func DifficultyDelta(opts domain.InstallationOptions) int {
	return Calculate(0, 0, opts).DifficultyDelta
}

// EffectiveDifficulty is base plus the option deltas, never negative.
func EffectiveDifficulty(base int, opts domain.InstallationOptions) int {
	return max(base+DifficultyDelta(opts), 0)
}

// Estimate prices a catalog item. It is the preview counterpart of the
// price charged during installation and shares its calculation.
func Estimate(item domain.CyberwareCatalogItem, opts domain.InstallationOptions) Quote {
	return Calculate(item.Cost, item.InstallationDifficulty, opts)
}

func roundHalfUp(num, den int64) int64 {
	if num < 0 {
		return -roundHalfUp(-num, den)
	}
	return (2*num + den) / (2 * den)
}
