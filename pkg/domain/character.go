package domain

// EffectiveStats returns base stats plus the bonuses of every implant that
// grants them, clamped to MinStat..MaxStat. The empathy penalty of the
// psychological state is applied last. Stored base stats are not modified.
func (c Character) EffectiveStats() Stats {
	out := c.Stats
	for _, implant := range c.Cyberware.Implants {
		if !implant.GrantsBonuses() {
			continue
		}
		for name, bonus := range implant.GameEffects.StatBonuses {
			out.Set(name, out.Get(name)+bonus)
		}
	}
	for _, name := range AllStats {
		out.Set(name, clamp(out.Get(name), MinStat, MaxStat))
	}
	if penalty := c.Cyberware.PsychologicalState.EmpathyPenalty; penalty > 0 {
		out.Empathy = max(out.Empathy-penalty, MinStat)
	}
	return out
}

// EffectiveSkills returns base skills plus implant skill bonuses.
func (c Character) EffectiveSkills() Skills {
	out := c.Skills
	for _, implant := range c.Cyberware.Implants {
		if !implant.GrantsBonuses() {
			continue
		}
		for name, bonus := range implant.GameEffects.SkillBonuses {
			out.Set(name, out.Get(name)+bonus)
		}
	}
	return out
}

// MedicalSkill is the skill value used for installation checks.
func (c Character) MedicalSkill() int {
	return c.EffectiveSkills().Medical
}

// Clone returns a deep copy of the character.
func (c Character) Clone() Character {
	cp := c
	cp.Equipment = Equipment{
		Weapons: append([]Weapon{}, c.Equipment.Weapons...),
		Armor:   append([]Armor{}, c.Equipment.Armor...),
		Gear:    append([]Gear{}, c.Equipment.Gear...),
	}
	cp.Cyberware = c.Cyberware.Clone()
	return cp
}

// Clone returns a deep copy of the aggregate.
func (c Cyberware) Clone() Cyberware {
	cp := c
	cp.Implants = make([]Implant, len(c.Implants))
	for i, implant := range c.Implants {
		cp.Implants[i] = implant.Clone()
	}
	cp.PsychologicalState.Symptoms = append([]string{}, c.PsychologicalState.Symptoms...)
	if c.PsychologicalState.LastBreakdown != nil {
		t := *c.PsychologicalState.LastBreakdown
		cp.PsychologicalState.LastBreakdown = &t
	}
	return cp
}

// Clone returns a deep copy of the implant.
func (i Implant) Clone() Implant {
	cp := i
	cp.GameEffects = i.GameEffects.Clone()
	cp.Complications = append([]string{}, i.Complications...)
	return cp
}

// Clone returns a deep copy of the catalog item.
func (c CyberwareCatalogItem) Clone() CyberwareCatalogItem {
	cp := c
	cp.GameEffects = c.GameEffects.Clone()
	cp.Complications = append([]Complication{}, c.Complications...)
	if c.StreetPrice != nil {
		v := *c.StreetPrice
		cp.StreetPrice = &v
	}
	return cp
}

// Clone returns a deep copy of the installation record.
func (i Installation) Clone() Installation {
	cp := i
	cp.Complications = append([]InstallationComplication{}, i.Complications...)
	return cp
}

// Clone returns a deep copy of the save slot.
func (s SaveSlot) Clone() SaveSlot {
	cp := s
	cp.CharacterSnapshot = s.CharacterSnapshot.Clone()
	return cp
}

func clamp(v, lo, hi int) int {
	return min(max(v, lo), hi)
}
