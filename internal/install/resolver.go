// Package install resolves cyberware installation attempts: effective
// difficulty, the medical skill check, quality banding and complication rolls.
package install

import (
	"fmt"
	"strconv"
	"strings"

	"ripperdoc/internal/dice"
	"ripperdoc/internal/pricing"
	"ripperdoc/pkg/domain"
)

// Quality band lower bounds on margin.
const (
	PerfectMargin = 5
	GoodMargin    = 0
	PoorMargin    = -5
)

// ClassifyQuality maps a margin to its quality tier.
func ClassifyQuality(margin int) domain.Quality {
	switch {
	case margin >= PerfectMargin:
		return domain.QualityPerfect
	case margin >= GoodMargin:
		return domain.QualityGood
	case margin >= PoorMargin:
		return domain.QualityPoor
	default:
		return domain.QualityBotched
	}
}

// RollRange is an inclusive d10 band.
type RollRange struct {
	Low  int
	High int
}

// Contains reports whether roll falls inside the band.
func (r RollRange) Contains(roll int) bool {
	return roll >= r.Low && roll <= r.High
}

// ParseRollRange parses "N" or "N-M" with 1 <= N <= M <= 10.
func ParseRollRange(s string) (RollRange, error) {
	lo, hi, found := strings.Cut(strings.TrimSpace(s), "-")
	if !found {
		hi = lo
	}
	low, err := strconv.Atoi(strings.TrimSpace(lo))
	if err != nil {
		return RollRange{}, fmt.Errorf("roll range %q: %w", s, err)
	}
	high, err := strconv.Atoi(strings.TrimSpace(hi))
	if err != nil {
		return RollRange{}, fmt.Errorf("roll range %q: %w", s, err)
	}
	if low < 1 || high > 10 || low > high {
		return RollRange{}, fmt.Errorf("roll range %q must lie within 1-10", s)
	}
	return RollRange{Low: low, High: high}, nil
}

// Resolver decides the outcome of installation attempts.
type Resolver struct {
	roller *dice.Roller
}

// NewResolver returns a resolver drawing from roller. A nil roller uses the
// process-wide generator.
func NewResolver(roller *dice.Roller) *Resolver {
	if roller == nil {
		roller = dice.Default()
	}
	return &Resolver{roller: roller}
}

// Resolve runs one attempt. The skill check is rolled first, then one d10
// per catalog complication in catalog order. Malformed catalog data fails
// with CONFIGURATION_ERROR before any die is rolled.
func (r *Resolver) Resolve(medicalSkill int, item domain.CyberwareCatalogItem, opts domain.InstallationOptions) (domain.InstallationResult, error) {
	if item.InstallationDifficulty <= 0 {
		return domain.InstallationResult{}, configError(item, "missing installation difficulty", nil)
	}
	ranges := make([]RollRange, len(item.Complications))
	for i, c := range item.Complications {
		rr, err := ParseRollRange(c.RollRange)
		if err != nil {
			return domain.InstallationResult{}, configError(item, "malformed complication "+c.Name, err)
		}
		ranges[i] = rr
	}

	quote := pricing.Estimate(item, opts)
	check, die := r.roller.SkillCheckDetail(medicalSkill)
	margin := check - quote.EffectiveDifficulty
	quality := ClassifyQuality(margin)

	triggered := []domain.Complication{}
	for i, c := range item.Complications {
		if ranges[i].Contains(r.roller.D10()) {
			triggered = append(triggered, c)
		}
	}

	return domain.InstallationResult{
		Success:             margin >= GoodMargin,
		Quality:             quality,
		Roll:                check,
		DieRoll:             die,
		EffectiveDifficulty: quote.EffectiveDifficulty,
		Margin:              margin,
		Complications:       triggered,
		FinalPrice:          quote.FinalPrice,
		HumanityLoss:        item.HumanityCost,
	}, nil
}

func configError(item domain.CyberwareCatalogItem, msg string, cause error) *domain.Error {
	return &domain.Error{
		Code:     domain.CodeConfigurationError,
		Message:  fmt.Sprintf("cyberware %q: %s", item.Name, msg),
		Metadata: map[string]string{"cyberwareId": item.ID},
		Cause:    cause,
	}
}
