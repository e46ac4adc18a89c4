package cats

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"cat-tnr-registry/internal/domain/history"
	"cat-tnr-registry/internal/middleware"

	"github.com/go-chi/chi/v5"
)

func RegisterRoutes(r chi.Router, svc *Service) {
	r.Route("/cats", func(cr chi.Router) {
		cr.Post("/", createCatHandler(svc))
		cr.Get("/", listCatsHandler(svc))
		cr.Get("/stats", statsHandler(svc))

		cr.Get("/{catID}", getCatHandler(svc))
		cr.Get("/{catID}/history", listHistoryHandler(svc))
		cr.Post("/{catID}/status", changeStatusHandler(svc))
	})
}

type createCatRequest struct {
	Name          string   `json:"name"`
	Gender        string   `json:"gender"`
	Status        string   `json:"status"`
	EstimatedAge  string   `json:"estimated_age"`
	Description   string   `json:"description"`
	MicrochipInfo string   `json:"microchip_info"`
	Latitude      *float64 `json:"latitude"`
	Longitude     *float64 `json:"longitude"`
	Address       string   `json:"address"`
	ImageURL      string   `json:"image_url"`
}

type changeStatusRequest struct {
	Status string `json:"status"`
	Notes  string `json:"notes"`
}

type catResponse struct {
	ID            string    `json:"id"`
	Name          string    `json:"name,omitempty"`
	Gender        string    `json:"gender"`
	Status        string    `json:"status"`
	EstimatedAge  string    `json:"estimated_age,omitempty"`
	Description   string    `json:"description,omitempty"`
	MicrochipInfo string    `json:"microchip_info,omitempty"`
	Latitude      float64   `json:"latitude"`
	Longitude     float64   `json:"longitude"`
	Address       string    `json:"address,omitempty"`
	ImageURL      string    `json:"image_url,omitempty"`
	CreatedByName string    `json:"created_by_name,omitempty"`
	UpdatedByName string    `json:"updated_by_name,omitempty"`
	DateAdded     time.Time `json:"date_added"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

type historyEntryResponse struct {
	ID            string    `json:"id"`
	CatID         string    `json:"cat_id"`
	OldStatus     *string   `json:"old_status"` // null solo en la entrada de alta
	NewStatus     string    `json:"new_status"`
	Notes         string    `json:"notes,omitempty"`
	UpdatedByName string    `json:"updated_by_name,omitempty"`
	UpdatedAt     time.Time `json:"updated_at"`
}

type catDetailResponse struct {
	catResponse
	StatusHistory []historyEntryResponse `json:"status_history"`
}

// createCatHandler godoc
// @Summary  Registra un gato con su primera entrada de historial
// @Tags     cats
// @Accept   json
// @Produce  json
// @Success  201 {object} catResponse
// @Failure  400 {object} map[string]string
// @Router   /cats [post]
func createCatHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			writeError(w, http.StatusUnauthorized, "unauthorized")
			return
		}

		var req createCatRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid json")
			return
		}

		c, err := svc.Create(r.Context(), claims.UserID, CreateInput{
			Name:          req.Name,
			Gender:        req.Gender,
			Status:        req.Status,
			EstimatedAge:  req.EstimatedAge,
			Description:   req.Description,
			MicrochipInfo: req.MicrochipInfo,
			Latitude:      req.Latitude,
			Longitude:     req.Longitude,
			Address:       req.Address,
			ImageURL:      req.ImageURL,
		})
		if err != nil {
			writeDomainError(w, err)
			return
		}

		writeJSON(w, http.StatusCreated, toCatResponse(c))
	}
}

// listCatsHandler godoc
// @Summary  Lista gatos, alta más reciente primero
// @Tags     cats
// @Produce  json
// @Success  200 {array} catResponse
// @Router   /cats [get]
func listCatsHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		items, err := svc.List(r.Context())
		if err != nil {
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}

		out := make([]catResponse, 0, len(items))
		for _, c := range items {
			out = append(out, toCatResponse(c))
		}
		writeJSON(w, http.StatusOK, out)
	}
}

// getCatHandler godoc
// @Summary  Detalle de un gato con historial completo
// @Tags     cats
// @Produce  json
// @Success  200 {object} catDetailResponse
// @Failure  404 {object} map[string]string
// @Router   /cats/{catID} [get]
func getCatHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c, entries, err := svc.GetByID(r.Context(), chi.URLParam(r, "catID"))
		if err != nil {
			writeDomainError(w, err)
			return
		}

		out := catDetailResponse{
			catResponse:   toCatResponse(c),
			StatusHistory: make([]historyEntryResponse, 0, len(entries)),
		}
		for _, e := range entries {
			out.StatusHistory = append(out.StatusHistory, toEntryResponse(e))
		}
		writeJSON(w, http.StatusOK, out)
	}
}

func listHistoryHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		_, entries, err := svc.GetByID(r.Context(), chi.URLParam(r, "catID"))
		if err != nil {
			writeDomainError(w, err)
			return
		}

		out := make([]historyEntryResponse, 0, len(entries))
		for _, e := range entries {
			out = append(out, toEntryResponse(e))
		}
		writeJSON(w, http.StatusOK, out)
	}
}

// changeStatusHandler godoc
// @Summary  Cambia el estado TNR y agrega entrada de historial (atómico)
// @Tags     cats
// @Accept   json
// @Produce  json
// @Success  200 {object} catDetailResponse
// @Failure  400 {object} map[string]string
// @Router   /cats/{catID}/status [post]
func changeStatusHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			writeError(w, http.StatusUnauthorized, "unauthorized")
			return
		}

		var req changeStatusRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid json")
			return
		}

		c, e, err := svc.ChangeStatus(r.Context(), chi.URLParam(r, "catID"), req.Status, req.Notes, claims.UserID)
		if err != nil {
			writeDomainError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, map[string]any{
			"cat":   toCatResponse(c),
			"entry": toEntryResponse(e),
		})
	}
}

func statsHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		counts, err := svc.CountByStatus(r.Context())
		if err != nil {
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}

		out := make(map[string]int, len(counts))
		for st, n := range counts {
			out[string(st)] = n
		}
		writeJSON(w, http.StatusOK, out)
	}
}

func toCatResponse(c Cat) catResponse {
	return catResponse{
		ID:            c.ID,
		Name:          c.Name,
		Gender:        string(c.Gender),
		Status:        string(c.Status),
		EstimatedAge:  c.EstimatedAge,
		Description:   c.Description,
		MicrochipInfo: c.MicrochipInfo,
		Latitude:      c.Latitude,
		Longitude:     c.Longitude,
		Address:       c.Address,
		ImageURL:      c.ImageURL,
		CreatedByName: c.CreatedByName,
		UpdatedByName: c.UpdatedByName,
		DateAdded:     c.DateAdded,
		CreatedAt:     c.CreatedAt,
		UpdatedAt:     c.UpdatedAt,
	}
}

func toEntryResponse(e history.Entry) historyEntryResponse {
	return historyEntryResponse{
		ID:            e.ID,
		CatID:         e.CatID,
		OldStatus:     e.OldStatus,
		NewStatus:     e.NewStatus,
		Notes:         e.Notes,
		UpdatedByName: e.UpdatedByName,
		UpdatedAt:     e.UpdatedAt,
	}
}

// writeDomainError mapea errores del servicio a HTTP. StoreError genérico
// => 500 sin detalle (la transacción garantiza que no quedó estado parcial).
func writeDomainError(w http.ResponseWriter, err error) {
	var fe *FieldError
	switch {
	case errors.As(err, &fe):
		writeError(w, http.StatusBadRequest, fe.Error())
	case errors.Is(err, ErrNotFound):
		writeError(w, http.StatusNotFound, "cat not found")
	case errors.Is(err, ErrSameStatus):
		writeError(w, http.StatusBadRequest, "status: cat already has that status")
	default:
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// writeJSON duplicado a propósito entre handlers de módulos distintos;
// si aparece en un tercero, recién ahí va a un helper común.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
