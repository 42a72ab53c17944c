package core

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"ripperdoc/pkg/domain"
)

// Starting values derived for a new character.
const (
	StartingEurodollars = 2000
	HealthPerBody       = 5
	HumanityPerEmpathy  = 10
	MaxNameLength       = 50
)

// CharacterDraft is the input for a new character. Stats, Skills and
// Equipment override the archetype template when set.
type CharacterDraft struct {
	Name       string            `json:"name"`
	Archetype  string            `json:"archetype"`
	Background string            `json:"background,omitempty"`
	Stats      *domain.Stats     `json:"stats,omitempty"`
	Skills     *domain.Skills    `json:"skills,omitempty"`
	Equipment  *domain.Equipment `json:"equipment,omitempty"`
}

// CharacterPatch is the restricted update path. Humanity, max humanity,
// eurodollars and cyberware have no field here; they only change through
// installation.
type CharacterPatch struct {
	Name       *string           `json:"name,omitempty"`
	Background *string           `json:"background,omitempty"`
	Stats      *domain.Stats     `json:"stats,omitempty"`
	Skills     *domain.Skills    `json:"skills,omitempty"`
	Equipment  *domain.Equipment `json:"equipment,omitempty"`
	Health     *int              `json:"health,omitempty"`
	Reputation *int              `json:"reputation,omitempty"`
	StreetCred *int              `json:"streetCred,omitempty"`
}

// ProtectedCharacterFields are the JSON keys a patch may never carry.
var ProtectedCharacterFields = []string{"humanity", "maxHumanity", "eurodollars", "cyberware"}

func invalid(format string, args ...any) error {
	return domain.NewError(domain.CodeInvalidArgument, fmt.Sprintf(format, args...))
}

func validateName(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return invalid("name is required")
	}
	if len([]rune(name)) > MaxNameLength {
		return invalid("name longer than %d characters", MaxNameLength)
	}
	return nil
}

// CreateCharacter builds a character from an archetype template.
func (s *Service) CreateCharacter(ctx context.Context, draft CharacterDraft) (created domain.Character, err error) {
	ctx, done := s.observe(ctx, "create_character")
	defer func() { done(err) }()

	if err := validateName(draft.Name); err != nil {
		return domain.Character{}, err
	}
	arch, ok := FindArchetype(draft.Archetype)
	if !ok {
		return domain.Character{}, invalid("unknown archetype %q", draft.Archetype)
	}
	c := domain.Character{
		Name:       strings.TrimSpace(draft.Name),
		Archetype:  arch.Name,
		Background: draft.Background,
		Stats:      arch.BaseStats,
		Skills:     arch.BaseSkills,
		Equipment:  arch.Equipment,
		Cyberware: domain.Cyberware{
			Implants:           []domain.Implant{},
			PsychologicalState: domain.PsychologicalState{CyberpsychosisRisk: domain.RiskNone, Symptoms: []string{}},
		},
		Eurodollars: StartingEurodollars,
	}
	if draft.Stats != nil {
		c.Stats = *draft.Stats
	}
	if draft.Skills != nil {
		c.Skills = *draft.Skills
	}
	if draft.Equipment != nil {
		c.Equipment = *draft.Equipment
	}
	if err := c.Stats.Validate(); err != nil {
		return domain.Character{}, domain.WrapError(domain.CodeInvalidArgument, "invalid stats", err)
	}
	if err := c.Skills.Validate(); err != nil {
		return domain.Character{}, domain.WrapError(domain.CodeInvalidArgument, "invalid skills", err)
	}
	c.MaxHealth = c.Stats.Body * HealthPerBody
	c.Health = c.MaxHealth
	c.MaxHumanity = c.Stats.Empathy * HumanityPerEmpathy
	c.Humanity = c.MaxHumanity

	_, err = s.store.RunInTransaction(ctx, func(tx domain.Transaction) error {
		var err error
		created, err = tx.CreateCharacter(c)
		return err
	})
	if err != nil {
		return domain.Character{}, err
	}
	s.logger.Info("character created", "character", created.ID, "archetype", created.Archetype)
	return created, nil
}

// GetCharacter returns one character.
func (s *Service) GetCharacter(id string) (domain.Character, error) {
	c, ok := s.store.GetCharacter(id)
	if !ok {
		return domain.Character{}, characterNotFound(id)
	}
	return c, nil
}

// ListCharacters returns every character in creation order.
func (s *Service) ListCharacters() []domain.Character {
	return s.store.ListCharacters()
}

// UpdateCharacter applies a restricted patch.
func (s *Service) UpdateCharacter(ctx context.Context, id string, patch CharacterPatch) (updated domain.Character, err error) {
	ctx, done := s.observe(ctx, "update_character")
	defer func() { done(err) }()

	unlock, err := s.locks.Lock(ctx, id)
	if err != nil {
		return domain.Character{}, err
	}
	defer unlock()

	_, err = s.store.RunInTransaction(ctx, func(tx domain.Transaction) error {
		var err error
		updated, err = tx.UpdateCharacter(id, func(c *domain.Character) error {
			return applyPatch(c, patch)
		})
		return err
	})
	if err != nil {
		return domain.Character{}, err
	}
	return updated, nil
}

func applyPatch(c *domain.Character, p CharacterPatch) error {
	if p.Name != nil {
		if err := validateName(*p.Name); err != nil {
			return err
		}
		c.Name = strings.TrimSpace(*p.Name)
	}
	if p.Background != nil {
		c.Background = *p.Background
	}
	if p.Stats != nil {
		if err := p.Stats.Validate(); err != nil {
			return domain.WrapError(domain.CodeInvalidArgument, "invalid stats", err)
		}
		c.Stats = *p.Stats
		c.MaxHealth = c.Stats.Body * HealthPerBody
		c.Health = min(c.Health, c.MaxHealth)
	}
	if p.Skills != nil {
		if err := p.Skills.Validate(); err != nil {
			return domain.WrapError(domain.CodeInvalidArgument, "invalid skills", err)
		}
		c.Skills = *p.Skills
	}
	if p.Equipment != nil {
		c.Equipment = *p.Equipment
	}
	if p.Health != nil {
		if *p.Health < 0 || *p.Health > c.MaxHealth {
			return invalid("health %d outside 0-%d", *p.Health, c.MaxHealth)
		}
		c.Health = *p.Health
	}
	if p.Reputation != nil {
		c.Reputation = *p.Reputation
	}
	if p.StreetCred != nil {
		if *p.StreetCred < 0 {
			return invalid("street cred must not be negative")
		}
		c.StreetCred = *p.StreetCred
	}
	return nil
}

// DeleteCharacter removes a character with its installation history and saves.
func (s *Service) DeleteCharacter(ctx context.Context, id string) (err error) {
	ctx, done := s.observe(ctx, "delete_character")
	defer func() { done(err) }()

	unlock, err := s.locks.Lock(ctx, id)
	if err != nil {
		return err
	}
	defer unlock()

	_, err = s.store.RunInTransaction(ctx, func(tx domain.Transaction) error {
		return tx.DeleteCharacter(id)
	})
	if err == nil {
		s.logger.Info("character deleted", "character", id)
	}
	return err
}

// ListInstallations returns a character's installation history, oldest first.
func (s *Service) ListInstallations(characterID string) ([]domain.Installation, error) {
	if _, ok := s.store.GetCharacter(characterID); !ok {
		return nil, characterNotFound(characterID)
	}
	return s.store.ListInstallations(characterID), nil
}

// ResolveComplication marks one recorded complication as treated. Only the
// resolved flag changes; the implant keeps the activity it was installed with.
func (s *Service) ResolveComplication(ctx context.Context, installationID, complication string) (updated domain.Installation, err error) {
	ctx, done := s.observe(ctx, "resolve_complication")
	defer func() { done(err) }()

	complication = strings.TrimSpace(complication)
	if complication == "" {
		return domain.Installation{}, invalid("complication is required")
	}
	_, err = s.store.RunInTransaction(ctx, func(tx domain.Transaction) error {
		var err error
		updated, err = tx.UpdateInstallation(installationID, func(inst *domain.Installation) error {
			i := slices.IndexFunc(inst.Complications, func(c domain.InstallationComplication) bool {
				return strings.EqualFold(c.Name, complication)
			})
			if i < 0 {
				return domain.ErrorWithMetadata(domain.CodeInvalidArgument,
					fmt.Sprintf("installation %q has no complication %q", inst.ID, complication),
					map[string]string{"complication": complication})
			}
			inst.Complications[i].Resolved = true
			return nil
		})
		return err
	})
	if err != nil {
		return domain.Installation{}, err
	}
	s.logger.Info("complication resolved", "installation", installationID, "complication", complication)
	return updated, nil
}
