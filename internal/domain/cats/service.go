package cats

import (
	"context"
	"fmt"
	"strings"
	"time"

	"cat-tnr-registry/internal/domain/history"
	"cat-tnr-registry/internal/platform/logger"
	"cat-tnr-registry/internal/platform/metrics"
	"cat-tnr-registry/internal/ports/geocoding"

	"github.com/google/uuid"
)

const initialHistoryNote = "Initial cat registration"

const defaultGeocodeTimeout = 3 * time.Second

// FieldError nombra el campo ofensivo en errores de validación.
// Nunca hay escritura parcial: se valida todo antes de tocar el store.
type FieldError struct {
	Field string
	Msg   string
}

func (e *FieldError) Error() string {
	return e.Field + ": " + e.Msg
}

func fieldErrf(field, format string, args ...any) *FieldError {
	return &FieldError{Field: field, Msg: fmt.Sprintf(format, args...)}
}

type Service struct {
	repo   Repository
	ledger history.Repository

	// geocoding es dependencia blanda: timeout propio, fuera de la
	// transacción, y su falla degrada a address vacía.
	geo        geocoding.Geocoder
	geoTimeout time.Duration

	log  logger.Logger
	mets *metrics.Metrics
	now  func() time.Time
}

type ServiceOptions struct {
	Geocoder       geocoding.Geocoder // puede ser nil
	GeocodeTimeout time.Duration
	Logger         logger.Logger
	Metrics        *metrics.Metrics // puede ser nil
}

func NewService(repo Repository, ledger history.Repository, opts ServiceOptions) *Service {
	log := opts.Logger
	if log == nil {
		log = logger.Nop{}
	}
	timeout := opts.GeocodeTimeout
	if timeout <= 0 {
		timeout = defaultGeocodeTimeout
	}

	return &Service{
		repo:       repo,
		ledger:     ledger,
		geo:        opts.Geocoder,
		geoTimeout: timeout,
		log:        log,
		mets:       opts.Metrics,
		now:        time.Now,
	}
}

type CreateInput struct {
	Name          string
	Gender        string
	Status        string
	EstimatedAge  string
	Description   string
	MicrochipInfo string
	Latitude      *float64
	Longitude     *float64
	Address       string
	ImageURL      string
}

// Create valida, resuelve address best effort y persiste gato + primera
// entrada de historial en una sola transacción.
func (s *Service) Create(ctx context.Context, actorID string, in CreateInput) (Cat, error) {
	if strings.TrimSpace(actorID) == "" {
		return Cat{}, fieldErrf("actor", "acting principal required")
	}
	if err := validateCreate(in); err != nil {
		return Cat{}, err
	}

	now := s.now()
	c := Cat{
		ID:            uuid.NewString(),
		Name:          strings.TrimSpace(in.Name),
		Gender:        Gender(in.Gender),
		Status:        Status(in.Status),
		EstimatedAge:  strings.TrimSpace(in.EstimatedAge),
		Description:   strings.TrimSpace(in.Description),
		MicrochipInfo: strings.TrimSpace(in.MicrochipInfo),
		Latitude:      *in.Latitude,
		Longitude:     *in.Longitude,
		Address:       strings.TrimSpace(in.Address),
		ImageURL:      strings.TrimSpace(in.ImageURL),
		CreatedByID:   actorID,
		UpdatedByID:   actorID,
		DateAdded:     now,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	// Enriquecimiento opcional, antes de la transacción y nunca adentro.
	if c.Address == "" && s.geo != nil {
		c.Address = s.resolveAddress(ctx, c.Latitude, c.Longitude)
	}

	first := history.Entry{
		ID:          uuid.NewString(),
		CatID:       c.ID,
		OldStatus:   nil,
		NewStatus:   string(c.Status),
		Notes:       initialHistoryNote,
		UpdatedByID: actorID,
		UpdatedAt:   now,
	}

	if err := s.repo.Create(ctx, c, first); err != nil {
		return Cat{}, err
	}

	if s.mets != nil {
		s.mets.CatsCreated.Inc()
	}

	// Releemos para devolver los display names resueltos por el repo.
	return s.repo.GetByID(ctx, c.ID)
}

// GetByID devuelve el gato con su historial completo, más reciente primero.
func (s *Service) GetByID(ctx context.Context, id string) (Cat, []history.Entry, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return Cat{}, nil, ErrNotFound
	}

	c, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return Cat{}, nil, err
	}

	entries, err := s.ledger.ListByCat(ctx, id)
	if err != nil {
		return Cat{}, nil, err
	}
	return c, entries, nil
}

func (s *Service) List(ctx context.Context) ([]Cat, error) {
	return s.repo.List(ctx)
}

// ChangeStatus aplica una transición de estado. Cambio de fila + append de
// historial son atómicos: el repo los hace en una transacción con lock.
func (s *Service) ChangeStatus(ctx context.Context, catID, newStatus, notes, actorID string) (Cat, history.Entry, error) {
	catID = strings.TrimSpace(catID)
	if catID == "" {
		return Cat{}, history.Entry{}, ErrNotFound
	}
	if strings.TrimSpace(actorID) == "" {
		return Cat{}, history.Entry{}, fieldErrf("actor", "acting principal required")
	}
	if !ValidStatus(Status(newStatus)) {
		return Cat{}, history.Entry{}, fieldErrf("status", "must be one of %s", statusTokens())
	}

	e := history.Entry{
		ID:          uuid.NewString(),
		CatID:       catID,
		NewStatus:   newStatus,
		Notes:       strings.TrimSpace(notes),
		UpdatedByID: actorID,
		UpdatedAt:   s.now(),
	}

	c, e, err := s.repo.ChangeStatus(ctx, catID, e)
	if err != nil {
		return Cat{}, history.Entry{}, err
	}

	if s.mets != nil {
		s.mets.StatusChanges.Inc()
	}
	return c, e, nil
}

func (s *Service) CountByStatus(ctx context.Context) (map[Status]int, error) {
	return s.repo.CountByStatus(ctx)
}

// resolveAddress intenta reverse geocode con timeout propio.
// Cualquier falla degrada a "" y se loguea, jamás escala.
func (s *Service) resolveAddress(ctx context.Context, lat, lng float64) string {
	gctx, cancel := context.WithTimeout(ctx, s.geoTimeout)
	defer cancel()

	addr, err := s.geo.ReverseGeocode(gctx, lat, lng)
	if err != nil {
		if s.mets != nil {
			s.mets.GeocodeFailures.Inc()
		}
		s.log.Warn("reverse geocode failed, continuing without address", map[string]any{
			"lat": lat, "lng": lng, "err": err.Error(),
		})
		return ""
	}
	return strings.TrimSpace(addr)
}

func validateCreate(in CreateInput) error {
	if strings.TrimSpace(in.Gender) == "" {
		return fieldErrf("gender", "required")
	}
	if !ValidGender(Gender(in.Gender)) {
		return fieldErrf("gender", "must be one of %s", genderTokens())
	}
	if strings.TrimSpace(in.Status) == "" {
		return fieldErrf("status", "required")
	}
	if !ValidStatus(Status(in.Status)) {
		return fieldErrf("status", "must be one of %s", statusTokens())
	}
	if in.Latitude == nil {
		return fieldErrf("latitude", "required")
	}
	if in.Longitude == nil {
		return fieldErrf("longitude", "required")
	}
	if *in.Latitude < -90 || *in.Latitude > 90 {
		return fieldErrf("latitude", "must be between -90 and 90")
	}
	if *in.Longitude < -180 || *in.Longitude > 180 {
		return fieldErrf("longitude", "must be between -180 and 180")
	}
	return nil
}

func genderTokens() string {
	return strings.Join([]string{
		string(GenderMale), string(GenderFemale), string(GenderUnknown),
	}, ", ")
}

func statusTokens() string {
	return strings.Join([]string{
		string(StatusNotTNRed), string(StatusTNRed), string(StatusRescued),
		string(StatusDeceased), string(StatusMissing),
	}, ", ")
}
