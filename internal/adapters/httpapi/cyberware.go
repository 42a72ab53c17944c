package httpapi

import (
	"net/http"

	"ripperdoc/pkg/domain"
)

// optionsBody carries installation options; an absent anesthesia flag
// means anesthesia is used.
type optionsBody struct {
	UseStreetDoc  bool  `json:"useStreetDoc"`
	RushJob       bool  `json:"rushJob"`
	QualityClinic bool  `json:"qualityClinic"`
	Anesthesia    *bool `json:"anesthesia"`
}

func (o *optionsBody) options() domain.InstallationOptions {
	opts := domain.DefaultInstallationOptions()
	if o == nil {
		return opts
	}
	opts.UseStreetDoc = o.UseStreetDoc
	opts.RushJob = o.RushJob
	opts.QualityClinic = o.QualityClinic
	if o.Anesthesia != nil {
		opts.Anesthesia = *o.Anesthesia
	}
	return opts
}

type installRequest struct {
	CyberwareID string       `json:"cyberwareId"`
	Options     *optionsBody `json:"options"`
}

func (h *Handler) handleListCyberware(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	items, err := h.svc.ListCyberware(domain.Category(q.Get("category")), q.Get("sort"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, items)
}

func (h *Handler) handleGetCyberware(w http.ResponseWriter, r *http.Request) {
	item, err := h.svc.GetCyberware(r.PathValue("id"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, item)
}

func (h *Handler) handleSeed(w http.ResponseWriter, r *http.Request) {
	n, err := h.svc.SeedCatalog(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"added": n})
}

func (h *Handler) handleEstimate(w http.ResponseWriter, r *http.Request) {
	var req installRequest
	if err := decodeJSON(r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}
	if err := required("cyberwareId", req.CyberwareID); err != nil {
		h.writeError(w, r, err)
		return
	}
	quote, err := h.svc.EstimateCost(r.Context(), req.CyberwareID, req.Options.options())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, quote)
}

func (h *Handler) handleInstall(w http.ResponseWriter, r *http.Request) {
	var req installRequest
	if err := decodeJSON(r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}
	if err := required("cyberwareId", req.CyberwareID); err != nil {
		h.writeError(w, r, err)
		return
	}
	out, err := h.svc.PerformInstallation(r.Context(), r.PathValue("id"), req.CyberwareID, req.Options.options())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, out)
}

func (h *Handler) handleListInstallations(w http.ResponseWriter, r *http.Request) {
	history, err := h.svc.ListInstallations(r.PathValue("id"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, history)
}

type resolveRequest struct {
	Complication string `json:"complication"`
}

func (h *Handler) handleResolveComplication(w http.ResponseWriter, r *http.Request) {
	var req resolveRequest
	if err := decodeJSON(r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}
	if err := required("complication", req.Complication); err != nil {
		h.writeError(w, r, err)
		return
	}
	inst, err := h.svc.ResolveComplication(r.Context(), r.PathValue("id"), req.Complication)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, inst)
}
