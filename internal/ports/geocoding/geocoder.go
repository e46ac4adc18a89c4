package geocoding

import "context"

// Location es el resultado de un forward geocode.
type Location struct {
	Latitude  float64
	Longitude float64
	Address   string
}

// Geocoder convierte coordenadas <-> direcciones.
// Dependencia blanda: puede fallar o no estar configurada; los callers
// tratan cualquier error como "dirección sin resolver", nunca como fatal.
type Geocoder interface {
	// ReverseGeocode devuelve "" (sin error) cuando no hay resultados.
	ReverseGeocode(ctx context.Context, lat, lng float64) (string, error)
	// ForwardGeocode devuelve nil (sin error) cuando no hay resultados.
	ForwardGeocode(ctx context.Context, address string) (*Location, error)
}
