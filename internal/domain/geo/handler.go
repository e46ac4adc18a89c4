package geo

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"cat-tnr-registry/internal/ports/geocoding"

	"github.com/go-chi/chi/v5"
)

// RegisterRoutes monta los proxies de geocoding que usa el location picker
// de la UI. geocoder puede ser nil (sin API key): responde 503.
func RegisterRoutes(r chi.Router, geocoder geocoding.Geocoder) {
	r.Route("/geocode", func(gr chi.Router) {
		gr.Get("/reverse", reverseHandler(geocoder))
		gr.Get("/forward", forwardHandler(geocoder))
	})
}

type locationResponse struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Address   string  `json:"address"`
}

// reverseHandler godoc
// @Summary  Coordenadas -> dirección
// @Tags     geocode
// @Produce  json
// @Success  200 {object} map[string]string
// @Router   /geocode/reverse [get]
func reverseHandler(geocoder geocoding.Geocoder) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if geocoder == nil {
			writeError(w, http.StatusServiceUnavailable, "geocoding not configured")
			return
		}

		lat, err1 := strconv.ParseFloat(r.URL.Query().Get("lat"), 64)
		lng, err2 := strconv.ParseFloat(r.URL.Query().Get("lng"), 64)
		if err1 != nil || err2 != nil {
			writeError(w, http.StatusBadRequest, "lat and lng must be numeric")
			return
		}
		if lat < -90 || lat > 90 || lng < -180 || lng > 180 {
			writeError(w, http.StatusBadRequest, "lat must be between -90 and 90, lng between -180 and 180")
			return
		}

		addr, err := geocoder.ReverseGeocode(r.Context(), lat, lng)
		if err != nil {
			// dependencia blanda: el error no escala, solo "sin resultado"
			writeError(w, http.StatusBadGateway, "geocoding unavailable")
			return
		}
		if addr == "" {
			writeError(w, http.StatusNotFound, "no address found")
			return
		}

		writeJSON(w, http.StatusOK, map[string]string{"address": addr})
	}
}

// forwardHandler godoc
// @Summary  Dirección -> coordenadas
// @Tags     geocode
// @Produce  json
// @Success  200 {object} locationResponse
// @Router   /geocode/forward [get]
func forwardHandler(geocoder geocoding.Geocoder) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if geocoder == nil {
			writeError(w, http.StatusServiceUnavailable, "geocoding not configured")
			return
		}

		address := strings.TrimSpace(r.URL.Query().Get("address"))
		if address == "" {
			writeError(w, http.StatusBadRequest, "address required")
			return
		}

		loc, err := geocoder.ForwardGeocode(r.Context(), address)
		if err != nil {
			writeError(w, http.StatusBadGateway, "geocoding unavailable")
			return
		}
		if loc == nil {
			writeError(w, http.StatusNotFound, "no location found")
			return
		}

		writeJSON(w, http.StatusOK, locationResponse{
			Latitude:  loc.Latitude,
			Longitude: loc.Longitude,
			Address:   loc.Address,
		})
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
