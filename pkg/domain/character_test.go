package domain

import (
	"testing"
	"time"
)

func implantWith(quality Quality, active bool, stats map[StatName]int, skills map[SkillName]int) Implant {
	return Implant{
		ID:                  "imp",
		Name:                "Test Chrome",
		InstallationQuality: quality,
		IsActive:            active,
		GameEffects:         GameEffects{StatBonuses: stats, SkillBonuses: skills},
		Complications:       []string{},
	}
}

func TestEffectiveStatsAppliesOnlySuccessfulActiveImplants(t *testing.T) {
	c := Character{
		Stats:  Stats{Intelligence: 5, Reflexes: 6, Technical: 5, Cool: 5, Attractiveness: 5, Luck: 5, Movement: 5, Body: 5, Empathy: 5},
		Skills: Skills{Medical: 3},
	}
	c.Cyberware.Implants = []Implant{
		implantWith(QualityGood, true, map[StatName]int{StatReflexes: 2}, map[SkillName]int{SkillMedical: 2}),
		implantWith(QualityPoor, true, map[StatName]int{StatReflexes: 5}, nil),
		implantWith(QualityPerfect, false, map[StatName]int{StatBody: 3}, nil),
	}

	eff := c.EffectiveStats()
	if eff.Reflexes != 8 {
		t.Fatalf("expected reflexes 8, got %d", eff.Reflexes)
	}
	if eff.Body != 5 {
		t.Fatalf("inactive implant applied: body %d", eff.Body)
	}
	if c.Stats.Reflexes != 6 {
		t.Fatalf("base stats mutated: %d", c.Stats.Reflexes)
	}
	if got := c.MedicalSkill(); got != 5 {
		t.Fatalf("expected medical 5, got %d", got)
	}
}

func TestEffectiveStatsClampsAndAppliesEmpathyPenalty(t *testing.T) {
	c := Character{Stats: Stats{Intelligence: 9, Reflexes: 1, Technical: 1, Cool: 1, Attractiveness: 1, Luck: 1, Movement: 1, Body: 1, Empathy: 3}}
	c.Cyberware.Implants = []Implant{
		implantWith(QualityPerfect, true, map[StatName]int{StatIntelligence: 4, StatCool: -3}, nil),
	}
	c.Cyberware.PsychologicalState.EmpathyPenalty = 5

	eff := c.EffectiveStats()
	if eff.Intelligence != MaxStat {
		t.Fatalf("expected intelligence clamped to %d, got %d", MaxStat, eff.Intelligence)
	}
	if eff.Cool != MinStat {
		t.Fatalf("expected cool clamped to %d, got %d", MinStat, eff.Cool)
	}
	if eff.Empathy != MinStat {
		t.Fatalf("expected empathy floored at %d, got %d", MinStat, eff.Empathy)
	}
}

func TestCharacterCloneIsDeep(t *testing.T) {
	breakdown := time.Date(2077, 1, 1, 0, 0, 0, 0, time.UTC)
	c := Character{
		Equipment: Equipment{Gear: []Gear{{Name: "Medtech Kit"}}},
		Cyberware: Cyberware{
			Implants: []Implant{implantWith(QualityGood, true, map[StatName]int{StatCool: 1}, nil)},
			PsychologicalState: PsychologicalState{
				Symptoms:      []string{"tremors"},
				LastBreakdown: &breakdown,
			},
		},
	}
	cp := c.Clone()
	cp.Equipment.Gear[0].Name = "changed"
	cp.Cyberware.Implants[0].GameEffects.StatBonuses[StatCool] = 9
	cp.Cyberware.PsychologicalState.Symptoms[0] = "changed"
	*cp.Cyberware.PsychologicalState.LastBreakdown = time.Time{}

	if c.Equipment.Gear[0].Name != "Medtech Kit" {
		t.Fatalf("gear shared with clone")
	}
	if c.Cyberware.Implants[0].GameEffects.StatBonuses[StatCool] != 1 {
		t.Fatalf("implant bonuses shared with clone")
	}
	if c.Cyberware.PsychologicalState.Symptoms[0] != "tremors" {
		t.Fatalf("symptoms shared with clone")
	}
	if !c.Cyberware.PsychologicalState.LastBreakdown.Equal(breakdown) {
		t.Fatalf("breakdown time shared with clone")
	}
}

func TestStatsValidate(t *testing.T) {
	s := Stats{Intelligence: 5, Reflexes: 5, Technical: 5, Cool: 5, Attractiveness: 5, Luck: 5, Movement: 5, Body: 5, Empathy: 5}
	if err := s.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	s.Set(StatLuck, 11)
	if err := s.Validate(); err == nil {
		t.Fatalf("expected out of range luck to fail")
	}
	if StatName("charisma").Valid() {
		t.Fatalf("unknown stat reported valid")
	}
	var sk Skills
	sk.Set(SkillStealth, -1)
	if err := sk.Validate(); err == nil {
		t.Fatalf("expected negative skill to fail")
	}
}
