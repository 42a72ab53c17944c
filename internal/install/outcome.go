package install

import (
	"time"

	"ripperdoc/pkg/domain"
)

// ImplantActive reports whether an implant of the given quality stays active.
// Poor installs survive unless a critical complication triggered; botched
// installs never do.
func ImplantActive(quality domain.Quality, complications []domain.Complication) bool {
	switch quality {
	case domain.QualityPerfect, domain.QualityGood:
		return true
	case domain.QualityPoor:
		return !hasSeverity(complications, domain.ComplicationCritical)
	default:
		return false
	}
}

// NewImplant builds the implant recorded for an attempt, copying catalog
// fields so later catalog edits do not rewrite history.
func NewImplant(id string, item domain.CyberwareCatalogItem, res domain.InstallationResult, now time.Time) domain.Implant {
	names := make([]string, 0, len(res.Complications))
	for _, c := range res.Complications {
		names = append(names, c.Name)
	}
	return domain.Implant{
		ID:                  id,
		CatalogID:           item.ID,
		Name:                item.Name,
		Category:            item.Category,
		Subcategory:         item.Subcategory,
		HumanityCost:        item.HumanityCost,
		Description:         item.Description,
		GameEffects:         item.GameEffects.Clone(),
		InstallationDate:    now,
		InstallationQuality: res.Quality,
		PaidPrice:           res.FinalPrice,
		IsActive:            ImplantActive(res.Quality, res.Complications),
		Complications:       names,
	}
}

// Apply mutates c with the outcome of an attempt: funds are debited,
// humanity drops by the full humanity cost, the implant is appended and the
// aggregate is recomputed.
func Apply(c *domain.Character, implant domain.Implant, res domain.InstallationResult, now time.Time) {
	c.Eurodollars -= res.FinalPrice
	c.Humanity -= res.HumanityLoss
	c.Cyberware.Implants = append(c.Cyberware.Implants, implant)
	Recompute(c, now)
}

// Recompute refreshes the cached aggregate fields of c.
func Recompute(c *domain.Character, now time.Time) {
	c.Cyberware.TotalHumanityLoss = c.Cyberware.ActiveHumanityLoss()
	prev := c.Cyberware.PsychologicalState
	next := PsychologicalState(c.Humanity, c.MaxHumanity, c.Cyberware.TotalHumanityLoss)
	next.LastBreakdown = prev.LastBreakdown
	if next.CyberpsychosisRisk == domain.RiskCritical && prev.CyberpsychosisRisk != domain.RiskCritical {
		t := now
		next.LastBreakdown = &t
	}
	c.Cyberware.PsychologicalState = next
}

// Risk tier thresholds on the percentage of max humanity lost.
const (
	lowRiskPct      = 10
	moderateRiskPct = 25
	highRiskPct     = 50
	criticalRiskPct = 75

	// EmpathyPenaltyStep is the humanity loss per point of empathy penalty.
	EmpathyPenaltyStep = 10
)

var tierSymptoms = []struct {
	tier     domain.RiskTier
	symptoms []string
}{
	{domain.RiskLow, []string{"emotional detachment"}},
	{domain.RiskModerate, []string{"irritability", "dissociation from the body"}},
	{domain.RiskHigh, []string{"paranoia", "violent impulses"}},
	{domain.RiskCritical, []string{"cyberpsychotic episodes"}},
}

// RiskTier classifies how much of maxHumanity has been lost. It is monotonic
// in maxHumanity - humanity.
func RiskTier(humanity, maxHumanity int) domain.RiskTier {
	if maxHumanity <= 0 {
		return domain.RiskCritical
	}
	pct := max(maxHumanity-humanity, 0) * 100 / maxHumanity
	switch {
	case pct < lowRiskPct:
		return domain.RiskNone
	case pct < moderateRiskPct:
		return domain.RiskLow
	case pct < highRiskPct:
		return domain.RiskModerate
	case pct < criticalRiskPct:
		return domain.RiskHigh
	default:
		return domain.RiskCritical
	}
}

// PsychologicalState derives the cached mental toll.
func PsychologicalState(humanity, maxHumanity, totalLoss int) domain.PsychologicalState {
	tier := RiskTier(humanity, maxHumanity)
	symptoms := []string{}
	for _, ts := range tierSymptoms {
		if tierRank(tier) < tierRank(ts.tier) {
			break
		}
		symptoms = append(symptoms, ts.symptoms...)
	}
	return domain.PsychologicalState{
		EmpathyPenalty:     max(totalLoss, 0) / EmpathyPenaltyStep,
		CyberpsychosisRisk: tier,
		Symptoms:           symptoms,
	}
}

func tierRank(t domain.RiskTier) int {
	switch t {
	case domain.RiskLow:
		return 1
	case domain.RiskModerate:
		return 2
	case domain.RiskHigh:
		return 3
	case domain.RiskCritical:
		return 4
	default:
		return 0
	}
}

// RecoveryDays is ceil(surgeryTime/60) scaled by the worst triggered severity.
func RecoveryDays(surgeryMinutes int, complications []domain.Complication) int {
	days := max((surgeryMinutes+59)/60, 1)
	mult := 1
	switch {
	case hasSeverity(complications, domain.ComplicationCritical):
		mult = 5
	case hasSeverity(complications, domain.ComplicationMajor):
		mult = 3
	case hasSeverity(complications, domain.ComplicationMinor):
		mult = 2
	}
	return days * mult
}

// HistoryComplications converts triggered complications into history entries.
func HistoryComplications(complications []domain.Complication) []domain.InstallationComplication {
	out := make([]domain.InstallationComplication, 0, len(complications))
	for _, c := range complications {
		out = append(out, domain.InstallationComplication{
			Name:        c.Name,
			Description: c.Description,
			Severity:    c.Severity,
		})
	}
	return out
}

func hasSeverity(complications []domain.Complication, sev domain.ComplicationSeverity) bool {
	for _, c := range complications {
		if c.Severity == sev {
			return true
		}
	}
	return false
}
