package httpapi

import (
	"net/http"
)

type createSaveRequest struct {
	CharacterID string `json:"characterId"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

func (h *Handler) handleListSaves(w http.ResponseWriter, r *http.Request) {
	saves, err := h.svc.ListSaves(r.PathValue("characterId"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, saves)
}

func (h *Handler) handleGetSave(w http.ResponseWriter, r *http.Request) {
	save, err := h.svc.GetSave(r.PathValue("id"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, save)
}

func (h *Handler) handleCreateSave(w http.ResponseWriter, r *http.Request) {
	var req createSaveRequest
	if err := decodeJSON(r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}
	if err := required("characterId", req.CharacterID); err != nil {
		h.writeError(w, r, err)
		return
	}
	save, err := h.svc.CreateSave(r.Context(), req.CharacterID, req.Name, req.Description)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, save)
}

func (h *Handler) handleDeleteSave(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.DeleteSave(r.Context(), r.PathValue("id")); err != nil {
		h.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleExportSave(w http.ResponseWriter, r *http.Request) {
	info, err := h.svc.ExportSave(r.Context(), r.PathValue("id"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, info)
}
