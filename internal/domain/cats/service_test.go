package cats

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"cat-tnr-registry/internal/domain/history"
	"cat-tnr-registry/internal/ports/geocoding"
)

// -------------------------
// Test repo (in-memory)
// -------------------------

type testRepo struct {
	byID    map[string]Cat
	entries map[string][]history.Entry // orden de append
}

func newTestRepo() *testRepo {
	return &testRepo{
		byID:    map[string]Cat{},
		entries: map[string][]history.Entry{},
	}
}

func (r *testRepo) Create(ctx context.Context, c Cat, first history.Entry) error {
	if c.ID == "" {
		return errors.New("repo: id required")
	}
	if _, ok := r.byID[c.ID]; ok {
		return errors.New("repo: already exists")
	}
	r.byID[c.ID] = c
	r.entries[c.ID] = append(r.entries[c.ID], first)
	return nil
}

func (r *testRepo) GetByID(ctx context.Context, id string) (Cat, error) {
	c, ok := r.byID[id]
	if !ok {
		return Cat{}, ErrNotFound
	}
	return c, nil
}

func (r *testRepo) List(ctx context.Context) ([]Cat, error) {
	out := make([]Cat, 0, len(r.byID))
	for _, c := range r.byID {
		out = append(out, c)
	}
	return out, nil
}

func (r *testRepo) ChangeStatus(ctx context.Context, catID string, e history.Entry) (Cat, history.Entry, error) {
	c, ok := r.byID[catID]
	if !ok {
		return Cat{}, history.Entry{}, ErrNotFound
	}
	if string(c.Status) == e.NewStatus {
		return Cat{}, history.Entry{}, ErrSameStatus
	}
	old := string(c.Status)
	e.OldStatus = &old
	c.Status = Status(e.NewStatus)
	c.UpdatedByID = e.UpdatedByID
	c.UpdatedAt = e.UpdatedAt
	r.byID[catID] = c
	r.entries[catID] = append(r.entries[catID], e)
	return c, e, nil
}

func (r *testRepo) CountByStatus(ctx context.Context) (map[Status]int, error) {
	out := map[Status]int{}
	for _, c := range r.byID {
		out[c.Status]++
	}
	return out, nil
}

// ListByCat implementa history.Repository (más reciente primero).
func (r *testRepo) ListByCat(ctx context.Context, catID string) ([]history.Entry, error) {
	stored := r.entries[catID]
	out := make([]history.Entry, 0, len(stored))
	for i := len(stored) - 1; i >= 0; i-- {
		out = append(out, stored[i])
	}
	return out, nil
}

// -------------------------
// Geocoder stub
// -------------------------

type failingGeocoder struct {
	address string
	err     error
	calls   int
}

func (g *failingGeocoder) ReverseGeocode(ctx context.Context, lat, lng float64) (string, error) {
	g.calls++
	return g.address, g.err
}

func (g *failingGeocoder) ForwardGeocode(ctx context.Context, address string) (*geocoding.Location, error) {
	return nil, nil
}

func f64(v float64) *float64 { return &v }

func validInput() CreateInput {
	return CreateInput{
		Gender:    string(GenderFemale),
		Status:    string(StatusNotTNRed),
		Latitude:  f64(40.0),
		Longitude: f64(-73.0),
	}
}

// -------------------------
// Tests
// -------------------------

func TestCreate_WritesCatAndInitialEntryTogether(t *testing.T) {
	repo := newTestRepo()
	svc := NewService(repo, repo, ServiceOptions{})

	c, err := svc.Create(context.Background(), "p1", validInput())
	if err != nil {
		t.Fatalf("Create error: %v", err)
	}

	if c.Status != StatusNotTNRed {
		t.Fatalf("status = %s, want NOT_TNRED", c.Status)
	}
	if c.CreatedByID != "p1" || c.UpdatedByID != "p1" {
		t.Fatalf("created_by/updated_by = %s/%s, want p1/p1", c.CreatedByID, c.UpdatedByID)
	}

	entries, _ := repo.ListByCat(context.Background(), c.ID)
	if len(entries) != 1 {
		t.Fatalf("expected 1 history entry, got %d", len(entries))
	}
	first := entries[0]
	if first.OldStatus != nil {
		t.Fatalf("first entry OldStatus = %v, want nil", *first.OldStatus)
	}
	if first.NewStatus != string(StatusNotTNRed) {
		t.Fatalf("first entry NewStatus = %s, want NOT_TNRED", first.NewStatus)
	}
	if first.UpdatedByID != "p1" {
		t.Fatalf("first entry UpdatedByID = %s, want p1", first.UpdatedByID)
	}
}

func TestCreate_ValidationNamesOffendingField(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*CreateInput)
		field  string
	}{
		{"gender invalido", func(in *CreateInput) { in.Gender = "CAT" }, "gender"},
		{"gender vacio", func(in *CreateInput) { in.Gender = "" }, "gender"},
		{"status invalido", func(in *CreateInput) { in.Status = "ADOPTED" }, "status"},
		{"lat 91", func(in *CreateInput) { in.Latitude = f64(91) }, "latitude"},
		{"lat -91", func(in *CreateInput) { in.Latitude = f64(-91) }, "latitude"},
		{"lng 181", func(in *CreateInput) { in.Longitude = f64(181) }, "longitude"},
		{"lng -181", func(in *CreateInput) { in.Longitude = f64(-181) }, "longitude"},
		{"lat ausente", func(in *CreateInput) { in.Latitude = nil }, "latitude"},
		{"lng ausente", func(in *CreateInput) { in.Longitude = nil }, "longitude"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			repo := newTestRepo()
			svc := NewService(repo, repo, ServiceOptions{})

			in := validInput()
			tc.mutate(&in)

			_, err := svc.Create(context.Background(), "p1", in)

			var fe *FieldError
			if !errors.As(err, &fe) {
				t.Fatalf("expected FieldError, got %v", err)
			}
			if fe.Field != tc.field {
				t.Fatalf("field = %s, want %s", fe.Field, tc.field)
			}
			// sin escritura parcial: ni gato ni historial
			if len(repo.byID) != 0 || len(repo.entries) != 0 {
				t.Fatalf("expected no rows written, got %d cats %d ledgers", len(repo.byID), len(repo.entries))
			}
		})
	}
}

func TestCreate_GeocodeFailureDegradesToEmptyAddress(t *testing.T) {
	repo := newTestRepo()
	geo := &failingGeocoder{err: errors.New("upstream down")}
	svc := NewService(repo, repo, ServiceOptions{Geocoder: geo, GeocodeTimeout: 50 * time.Millisecond})

	c, err := svc.Create(context.Background(), "p1", validInput())
	if err != nil {
		t.Fatalf("Create error: %v (geocode failure must not fail creation)", err)
	}
	if c.Address != "" {
		t.Fatalf("address = %q, want empty", c.Address)
	}
}

func TestCreate_GeocodeFillsMissingAddress(t *testing.T) {
	repo := newTestRepo()
	geo := &failingGeocoder{address: "123 Main St, Brooklyn, NY"}
	svc := NewService(repo, repo, ServiceOptions{Geocoder: geo})

	c, err := svc.Create(context.Background(), "p1", validInput())
	if err != nil {
		t.Fatalf("Create error: %v", err)
	}
	if c.Address != "123 Main St, Brooklyn, NY" {
		t.Fatalf("address = %q, want geocoded address", c.Address)
	}
}

func TestCreate_GeocodeSkippedWhenAddressProvided(t *testing.T) {
	repo := newTestRepo()
	geo := &failingGeocoder{address: "should not be used"}
	svc := NewService(repo, repo, ServiceOptions{Geocoder: geo})

	in := validInput()
	in.Address = "Parque Centenario"

	c, err := svc.Create(context.Background(), "p1", in)
	if err != nil {
		t.Fatalf("Create error: %v", err)
	}
	if c.Address != "Parque Centenario" {
		t.Fatalf("address = %q, want the provided one", c.Address)
	}
	if geo.calls != 0 {
		t.Fatalf("geocoder called %d times, want 0", geo.calls)
	}
}

func TestChangeStatus_ChainStaysConnected(t *testing.T) {
	repo := newTestRepo()
	svc := NewService(repo, repo, ServiceOptions{})

	c, err := svc.Create(context.Background(), "p1", validInput())
	if err != nil {
		t.Fatalf("Create error: %v", err)
	}

	updated, e, err := svc.ChangeStatus(context.Background(), c.ID, string(StatusTNRed), "trapped and released", "p2")
	if err != nil {
		t.Fatalf("ChangeStatus error: %v", err)
	}
	if updated.Status != StatusTNRed {
		t.Fatalf("status = %s, want TNRED", updated.Status)
	}
	if e.OldStatus == nil || *e.OldStatus != string(StatusNotTNRed) {
		t.Fatalf("entry OldStatus = %v, want NOT_TNRED", e.OldStatus)
	}
	if e.UpdatedByID != "p2" {
		t.Fatalf("entry UpdatedByID = %s, want p2", e.UpdatedByID)
	}

	if _, _, err := svc.ChangeStatus(context.Background(), c.ID, string(StatusRescued), "", "p1"); err != nil {
		t.Fatalf("second ChangeStatus error: %v", err)
	}

	// cadena completa: newest first; cada OldStatus == NewStatus del anterior
	entries, _ := repo.ListByCat(context.Background(), c.ID)
	if len(entries) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(entries))
	}
	final, _ := repo.GetByID(context.Background(), c.ID)
	if string(final.Status) != entries[0].NewStatus {
		t.Fatalf("cat status %s != newest entry %s", final.Status, entries[0].NewStatus)
	}
	for i := 0; i < len(entries)-1; i++ {
		if entries[i].OldStatus == nil || *entries[i].OldStatus != entries[i+1].NewStatus {
			t.Fatalf("chain broken at %d: %v -> %s", i, entries[i].OldStatus, entries[i+1].NewStatus)
		}
	}
	if entries[len(entries)-1].OldStatus != nil {
		t.Fatalf("oldest entry OldStatus must be nil")
	}
}

func TestChangeStatus_RejectsNoOpAndBadToken(t *testing.T) {
	repo := newTestRepo()
	svc := NewService(repo, repo, ServiceOptions{})

	c, err := svc.Create(context.Background(), "p1", validInput())
	if err != nil {
		t.Fatalf("Create error: %v", err)
	}

	if _, _, err := svc.ChangeStatus(context.Background(), c.ID, string(StatusNotTNRed), "", "p1"); !errors.Is(err, ErrSameStatus) {
		t.Fatalf("no-op: got %v, want ErrSameStatus", err)
	}

	_, _, err = svc.ChangeStatus(context.Background(), c.ID, "FIXED", "", "p1")
	var fe *FieldError
	if !errors.As(err, &fe) || fe.Field != "status" {
		t.Fatalf("bad token: got %v, want FieldError on status", err)
	}
	if !strings.Contains(fe.Error(), "status") {
		t.Fatalf("error message %q must name the field", fe.Error())
	}

	if _, _, err := svc.ChangeStatus(context.Background(), "nope", string(StatusTNRed), "", "p1"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("missing cat: got %v, want ErrNotFound", err)
	}
}
