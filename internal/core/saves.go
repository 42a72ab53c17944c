package core

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"ripperdoc/internal/blob"
	"ripperdoc/pkg/domain"
)

// CreateSave snapshots a character into a named slot.
func (s *Service) CreateSave(ctx context.Context, characterID, name, description string) (saved domain.SaveSlot, err error) {
	ctx, done := s.observe(ctx, "create_save")
	defer func() { done(err) }()

	if err := validateName(name); err != nil {
		return domain.SaveSlot{}, err
	}
	_, err = s.store.RunInTransaction(ctx, func(tx domain.Transaction) error {
		c, ok := tx.FindCharacter(characterID)
		if !ok {
			return characterNotFound(characterID)
		}
		var err error
		saved, err = tx.CreateSave(domain.SaveSlot{
			CharacterID:       characterID,
			Name:              name,
			Description:       description,
			CharacterSnapshot: c,
		})
		return err
	})
	if err != nil {
		return domain.SaveSlot{}, err
	}
	return saved, nil
}

// ListSaves returns a character's saves, newest first.
func (s *Service) ListSaves(characterID string) ([]domain.SaveSlot, error) {
	if _, ok := s.store.GetCharacter(characterID); !ok {
		return nil, characterNotFound(characterID)
	}
	return s.store.ListSaves(characterID), nil
}

// GetSave returns one save slot.
func (s *Service) GetSave(id string) (domain.SaveSlot, error) {
	save, ok := s.store.GetSave(id)
	if !ok {
		return domain.SaveSlot{}, saveNotFound(id)
	}
	return save, nil
}

// DeleteSave removes a save slot.
func (s *Service) DeleteSave(ctx context.Context, id string) (err error) {
	ctx, done := s.observe(ctx, "delete_save")
	defer func() { done(err) }()
	_, err = s.store.RunInTransaction(ctx, func(tx domain.Transaction) error {
		return tx.DeleteSave(id)
	})
	return err
}

// SaveExportKey is the blob key a save is exported under.
func SaveExportKey(save domain.SaveSlot) string {
	return fmt.Sprintf("saves/%s/%s.json", save.CharacterID, save.ID)
}

// ExportSave writes the save as JSON to the blob store. Saves are immutable,
// so exporting twice returns the existing blob.
func (s *Service) ExportSave(ctx context.Context, id string) (info blob.Info, err error) {
	ctx, done := s.observe(ctx, "export_save")
	defer func() { done(err) }()

	if s.blobs == nil {
		return blob.Info{}, domain.NewError(domain.CodeConfigurationError, "no blob store configured")
	}
	save, err := s.GetSave(id)
	if err != nil {
		return blob.Info{}, err
	}
	payload, err := json.MarshalIndent(save, "", "  ")
	if err != nil {
		return blob.Info{}, fmt.Errorf("encode save: %w", err)
	}
	key := SaveExportKey(save)
	info, err = s.blobs.Put(ctx, key, bytes.NewReader(payload), blob.PutOptions{
		ContentType: "application/json",
		Metadata:    map[string]string{"characterId": save.CharacterID, "saveId": save.ID},
	})
	if errors.Is(err, blob.ErrExists) {
		info, err = s.blobs.Head(ctx, key)
	}
	if err != nil {
		return blob.Info{}, domain.WrapError(domain.CodeStorageFailure, "export save", err)
	}
	if url, err := s.blobs.PresignURL(ctx, key, blob.SignedURLOptions{}); err == nil {
		info.URL = url
	}
	s.logger.Info("save exported", "save", save.ID, "key", key, "driver", s.blobs.Driver())
	return info, nil
}
