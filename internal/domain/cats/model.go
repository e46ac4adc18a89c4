package cats

import "time"

// Gender define el sexo estimado del gato.
// @Enum MALE, FEMALE, UNKNOWN
type Gender string

const (
	GenderMale    Gender = "MALE"
	GenderFemale  Gender = "FEMALE"
	GenderUnknown Gender = "UNKNOWN"
)

// Status define el estado TNR del gato.
// @Enum NOT_TNRED, TNRED, RESCUED, DECEASED, MISSING
type Status string

const (
	StatusNotTNRed Status = "NOT_TNRED"
	StatusTNRed    Status = "TNRED"
	StatusRescued  Status = "RESCUED"
	StatusDeceased Status = "DECEASED"
	StatusMissing  Status = "MISSING"
)

// Tokens exactos: cualquier otro valor se rechaza en el borde, no se coerce.
func ValidGender(g Gender) bool {
	switch g {
	case GenderMale, GenderFemale, GenderUnknown:
		return true
	}
	return false
}

func ValidStatus(s Status) bool {
	switch s {
	case StatusNotTNRed, StatusTNRed, StatusRescued, StatusDeceased, StatusMissing:
		return true
	}
	return false
}

// Cat representa un gato rastreado por el programa TNR.
type Cat struct {
	ID string

	Name   string // opcional
	Gender Gender
	Status Status // siempre igual al NewStatus de la entrada más reciente del ledger

	EstimatedAge  string
	Description   string
	MicrochipInfo string

	// Ubicación: lat ∈ [-90,90], lng ∈ [-180,180], siempre requeridas.
	// Address es best effort (geocoding), puede faltar.
	Latitude  float64
	Longitude float64
	Address   string

	// Referencia externa; este sistema no es dueño del storage de imágenes.
	ImageURL string

	CreatedByID   string
	CreatedByName string
	UpdatedByID   string
	UpdatedByName string

	// DateAdded es la fecha de alta visible al negocio;
	// CreatedAt/UpdatedAt son tiempos de auditoría.
	DateAdded time.Time
	CreatedAt time.Time
	UpdatedAt time.Time
}
