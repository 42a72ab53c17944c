package httpapi

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"slices"
	"sort"
	"strings"

	"ripperdoc/internal/core"
	"ripperdoc/pkg/domain"
)

func (h *Handler) handleListCharacters(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, h.svc.ListCharacters())
}

func (h *Handler) handleGetCharacter(w http.ResponseWriter, r *http.Request) {
	c, err := h.svc.GetCharacter(r.PathValue("id"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

func (h *Handler) handleCreateCharacter(w http.ResponseWriter, r *http.Request) {
	var draft core.CharacterDraft
	if err := decodeJSON(r, &draft); err != nil {
		h.writeError(w, r, err)
		return
	}
	c, err := h.svc.CreateCharacter(r.Context(), draft)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, c)
}

func (h *Handler) handleUpdateCharacter(w http.ResponseWriter, r *http.Request) {
	patch, err := decodePatch(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	c, err := h.svc.UpdateCharacter(r.Context(), r.PathValue("id"), patch)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

// decodePatch rejects the fields only installation may change before
// decoding the rest into the restricted patch.
func decodePatch(r *http.Request) (core.CharacterPatch, error) {
	data, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		return core.CharacterPatch{}, domain.WrapError(domain.CodeInvalidArgument, "read body", err)
	}
	var keys map[string]json.RawMessage
	if err := json.Unmarshal(data, &keys); err != nil {
		return core.CharacterPatch{}, domain.NewError(domain.CodeInvalidArgument, fmt.Sprintf("invalid request body: %v", err))
	}
	var protected []string
	for key := range keys {
		// encoding/json matches keys case-insensitively, so the guard must too.
		if i := slices.IndexFunc(core.ProtectedCharacterFields, func(f string) bool { return strings.EqualFold(f, key) }); i >= 0 {
			protected = append(protected, core.ProtectedCharacterFields[i])
		}
	}
	if len(protected) > 0 {
		sort.Strings(protected)
		return core.CharacterPatch{}, domain.ErrorWithMetadata(domain.CodeProtectedField,
			fmt.Sprintf("fields %v can only change through installation", protected),
			map[string]string{"field": protected[0]})
	}
	var patch core.CharacterPatch
	if err := decodeBytes(data, &patch); err != nil {
		return core.CharacterPatch{}, err
	}
	return patch, nil
}

func (h *Handler) handleDeleteCharacter(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.DeleteCharacter(r.Context(), r.PathValue("id")); err != nil {
		h.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
