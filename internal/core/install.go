package core

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"ripperdoc/internal/install"
	"ripperdoc/internal/pricing"
	"ripperdoc/pkg/domain"
)

// InstallOutcome is returned by a committed installation attempt.
type InstallOutcome struct {
	Character    domain.Character          `json:"updatedCharacter"`
	Result       domain.InstallationResult `json:"installationResult"`
	Implant      domain.Implant            `json:"implant"`
	Installation domain.Installation       `json:"installation"`
}

// EstimateInstallationCost prices item under opts. It shares the pricing
// module with PerformInstallation, so identical inputs give identical prices.
func (s *Service) EstimateInstallationCost(item domain.CyberwareCatalogItem, opts domain.InstallationOptions) pricing.Quote {
	return pricing.Estimate(item, opts)
}

// EstimateCost looks up a catalog entry and prices it.
func (s *Service) EstimateCost(ctx context.Context, cyberwareID string, opts domain.InstallationOptions) (quote pricing.Quote, err error) {
	_, done := s.observe(ctx, "estimate_cost")
	defer func() { done(err) }()
	item, ok := s.store.GetCyberware(cyberwareID)
	if !ok {
		return pricing.Quote{}, cyberwareNotFound(cyberwareID)
	}
	return s.EstimateInstallationCost(item, opts), nil
}

// PerformInstallation runs one installation attempt for a character. Funds
// and humanity are validated against the actual options before any dice are
// rolled; a rejected attempt changes nothing. Attempts against the same
// character are serialized, and the character update and history record are
// committed together or not at all.
func (s *Service) PerformInstallation(ctx context.Context, characterID, cyberwareID string, opts domain.InstallationOptions) (out InstallOutcome, err error) {
	ctx, done := s.observe(ctx, "perform_installation")
	defer func() { done(err) }()

	unlock, err := s.locks.Lock(ctx, characterID)
	if err != nil {
		return InstallOutcome{}, err
	}
	defer unlock()

	_, err = s.store.RunInTransaction(ctx, func(tx domain.Transaction) error {
		character, ok := tx.FindCharacter(characterID)
		if !ok {
			return characterNotFound(characterID)
		}
		item, ok := tx.FindCyberware(cyberwareID)
		if !ok {
			return cyberwareNotFound(cyberwareID)
		}
		quote := pricing.Estimate(item, opts)
		if character.Eurodollars < quote.FinalPrice {
			return domain.ErrorWithMetadata(domain.CodeInsufficientFunds,
				fmt.Sprintf("installation costs %d eurodollars, character has %d", quote.FinalPrice, character.Eurodollars),
				map[string]string{"required": strconv.Itoa(quote.FinalPrice), "available": strconv.Itoa(character.Eurodollars)})
		}
		if character.Humanity <= item.HumanityCost {
			return domain.ErrorWithMetadata(domain.CodeInsufficientHumanity,
				fmt.Sprintf("installation costs %d humanity, character has %d", item.HumanityCost, character.Humanity),
				map[string]string{"required": strconv.Itoa(item.HumanityCost + 1), "available": strconv.Itoa(character.Humanity)})
		}

		res, err := s.resolver.Resolve(character.MedicalSkill(), item, opts)
		if err != nil {
			return err
		}
		now := s.now()
		implant := install.NewImplant(s.newID(), item, res, now)
		updated, err := tx.UpdateCharacter(characterID, func(c *domain.Character) error {
			install.Apply(c, implant, res, now)
			return nil
		})
		if err != nil {
			return err
		}
		history, err := tx.CreateInstallation(domain.Installation{
			CharacterID:   characterID,
			CyberwareID:   item.ID,
			ImplantID:     implant.ID,
			Quality:       res.Quality,
			MedicalRoll:   res.Roll,
			Complications: install.HistoryComplications(res.Complications),
			PaidPrice:     res.FinalPrice,
			RecoveryDays:  install.RecoveryDays(item.SurgeryTime, res.Complications),
			IsActive:      implant.IsActive,
		})
		if err != nil {
			return err
		}
		out = InstallOutcome{Character: updated, Result: res, Implant: implant, Installation: history}
		return nil
	})
	if err != nil {
		s.logInstallFailure(characterID, cyberwareID, err)
		return InstallOutcome{}, err
	}

	s.logger.Info("cyberware installed",
		"character", characterID,
		"cyberware", cyberwareID,
		"quality", out.Result.Quality,
		"roll", out.Result.Roll,
		"difficulty", out.Result.EffectiveDifficulty,
		"price", out.Result.FinalPrice,
		"complications", len(out.Result.Complications))
	if rec, ok := s.metrics.(InstallRecorder); ok {
		rec.ObserveInstall(out.Result.Quality, len(out.Result.Complications))
	}
	return out, nil
}

func (s *Service) logInstallFailure(characterID, cyberwareID string, err error) {
	code := domain.CodeOf(err)
	switch {
	case code == domain.CodeStorageFailure, code == domain.CodeConfigurationError, code == domain.CodeUnknown && !errors.Is(err, context.Canceled):
		s.logger.Error("installation failed", "character", characterID, "cyberware", cyberwareID, "code", code, "error", err)
	default:
		s.logger.Info("installation rejected", "character", characterID, "cyberware", cyberwareID, "code", code, "error", err)
	}
}

func characterNotFound(id string) error {
	return domain.ErrorWithMetadata(domain.CodeCharacterNotFound, fmt.Sprintf("character %q not found", id), map[string]string{"id": id})
}

func cyberwareNotFound(id string) error {
	return domain.ErrorWithMetadata(domain.CodeCyberwareNotFound, fmt.Sprintf("cyberware %q not found", id), map[string]string{"id": id})
}

func saveNotFound(id string) error {
	return domain.ErrorWithMetadata(domain.CodeSaveNotFound, fmt.Sprintf("save %q not found", id), map[string]string{"id": id})
}
