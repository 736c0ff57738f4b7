package leads

import (
	"context"
	"errors"
	"sort"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/ElBenerDev/CRM/internal/platform/apperr"
)

// -- Mocks --

type mockRepo struct {
	leads map[uuid.UUID]*Lead
	seq   int
}

func newMockRepo() *mockRepo {
	return &mockRepo{leads: make(map[uuid.UUID]*Lead)}
}

func (m *mockRepo) Create(_ context.Context, l *Lead) error {
	l.ID = uuid.New()
	m.seq++
	l.CreatedAt = time.Now().Add(time.Duration(m.seq) * time.Millisecond)
	l.UpdatedAt = l.CreatedAt
	cp := *l
	m.leads[l.ID] = &cp
	return nil
}

func (m *mockRepo) GetByID(_ context.Context, id uuid.UUID) (*Lead, error) {
	l, ok := m.leads[id]
	if !ok {
		return nil, apperr.NotFoundf("lead %s", id)
	}
	cp := *l
	return &cp, nil
}

func (m *mockRepo) List(_ context.Context, f Filter, limit, offset int) ([]*Lead, int, error) {
	var all []*Lead
	for _, l := range m.leads {
		if f.Status != nil && l.Status != *f.Status {
			continue
		}
		if f.MinValue != nil && (l.ExpectedValue == nil || *l.ExpectedValue < *f.MinValue) {
			continue
		}
		if f.MaxValue != nil && (l.ExpectedValue == nil || *l.ExpectedValue > *f.MaxValue) {
			continue
		}
		all = append(all, l)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].CreatedAt.After(all[j].CreatedAt) })
	total := len(all)
	if offset > len(all) {
		offset = len(all)
	}
	end := offset + limit
	if end > len(all) {
		end = len(all)
	}
	return all[offset:end], total, nil
}

func (m *mockRepo) Update(_ context.Context, l *Lead) error {
	if _, ok := m.leads[l.ID]; !ok {
		return apperr.NotFoundf("lead %s", l.ID)
	}
	l.UpdatedAt = time.Now()
	cp := *l
	m.leads[l.ID] = &cp
	return nil
}

func (m *mockRepo) Delete(_ context.Context, id uuid.UUID) error {
	if _, ok := m.leads[id]; !ok {
		return apperr.NotFoundf("lead %s", id)
	}
	delete(m.leads, id)
	return nil
}

type mockPatients struct {
	known map[uuid.UUID]bool
}

func (m *mockPatients) PatientExists(_ context.Context, id uuid.UUID) (bool, error) {
	return m.known[id], nil
}

func newTestService() (*Service, uuid.UUID) {
	repo := newMockRepo()
	patientID := uuid.New()
	patients := &mockPatients{known: map[uuid.UUID]bool{patientID: true}}
	return NewService(repo, patients, nil, zerolog.Nop()), patientID
}

func strPtr(s string) *string     { return &s }
func floatPtr(v float64) *float64 { return &v }

// -- Tests --

func TestCreateLead_DefaultsToNew(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	l := &Lead{Name: "Bob", Email: strPtr("bob@x.com"), Phone: strPtr("5559876543")}
	if err := svc.CreateLead(ctx, l); err != nil {
		t.Fatalf("CreateLead failed: %v", err)
	}
	if l.Status != StatusNew {
		t.Fatalf("expected NEW, got %s", l.Status)
	}

	got, err := svc.GetLead(ctx, l.ID)
	if err != nil {
		t.Fatalf("GetLead failed: %v", err)
	}
	if got.Name != "Bob" {
		t.Fatalf("expected Bob, got %s", got.Name)
	}
}

func TestCreateLead_Validation(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	cases := []struct {
		name string
		lead Lead
	}{
		{"blank name", Lead{Name: "  "}},
		{"bad email", Lead{Name: "Bob", Email: strPtr("bob.example.com")}},
		{"short phone", Lead{Name: "Bob", Phone: strPtr("12345")}},
		{"bad status", Lead{Name: "Bob", Status: "MAYBE"}},
		{"negative value", Lead{Name: "Bob", ExpectedValue: floatPtr(-100)}},
	}
	for _, tc := range cases {
		lead := tc.lead
		if err := svc.CreateLead(ctx, &lead); !errors.Is(err, apperr.ErrValidation) {
			t.Fatalf("%s: expected ErrValidation, got %v", tc.name, err)
		}
	}
}

func TestCreateLead_PatientLinkage(t *testing.T) {
	svc, patientID := newTestService()
	ctx := context.Background()

	l := &Lead{Name: "Bob", PatientID: &patientID}
	if err := svc.CreateLead(ctx, l); err != nil {
		t.Fatalf("linked create failed: %v", err)
	}

	unknown := uuid.New()
	bad := &Lead{Name: "Eve", PatientID: &unknown}
	if err := svc.CreateLead(ctx, bad); !errors.Is(err, apperr.ErrNotFound) {
		t.Fatalf("expected ErrNotFound for unknown patient link, got %v", err)
	}
}

func TestUpdateLeadStatus_EnumAndPermissiveness(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	l := &Lead{Name: "Bob"}
	if err := svc.CreateLead(ctx, l); err != nil {
		t.Fatalf("create failed: %v", err)
	}

	if _, err := svc.UpdateLeadStatus(ctx, l.ID, "NOT_A_REAL_STATUS"); !errors.Is(err, apperr.ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}

	got, err := svc.UpdateLeadStatus(ctx, l.ID, StatusConverted)
	if err != nil {
		t.Fatalf("status update failed: %v", err)
	}
	if got.Status != StatusConverted {
		t.Fatalf("expected CONVERTED, got %s", got.Status)
	}

	// any status may move to any other, including backwards
	got, err = svc.UpdateLeadStatus(ctx, l.ID, StatusNew)
	if err != nil {
		t.Fatalf("backward transition failed: %v", err)
	}
	if got.Status != StatusNew {
		t.Fatalf("expected NEW, got %s", got.Status)
	}
}

func TestUpdateLeadStatus_NotFound(t *testing.T) {
	svc, _ := newTestService()

	_, err := svc.UpdateLeadStatus(context.Background(), uuid.New(), StatusContacted)
	if !errors.Is(err, apperr.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestUpdateLead_Partial(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	l := &Lead{Name: "Bob", Source: strPtr("referral")}
	if err := svc.CreateLead(ctx, l); err != nil {
		t.Fatalf("create failed: %v", err)
	}

	got, err := svc.UpdateLead(ctx, l.ID, LeadUpdate{ExpectedValue: floatPtr(2500)})
	if err != nil {
		t.Fatalf("update failed: %v", err)
	}
	if got.ExpectedValue == nil || *got.ExpectedValue != 2500 {
		t.Fatalf("expected_value not applied: %v", got.ExpectedValue)
	}
	if got.Source == nil || *got.Source != "referral" {
		t.Fatal("source should be untouched")
	}

	if _, err := svc.UpdateLead(ctx, l.ID, LeadUpdate{Phone: strPtr("123")}); !errors.Is(err, apperr.ErrValidation) {
		t.Fatalf("expected ErrValidation for short phone, got %v", err)
	}
}

func TestListLeads_StatusAndValueFilters(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	seed := []Lead{
		{Name: "A", Status: StatusNew, ExpectedValue: floatPtr(100)},
		{Name: "B", Status: StatusContacted, ExpectedValue: floatPtr(500)},
		{Name: "C", Status: StatusContacted, ExpectedValue: floatPtr(1500)},
	}
	for i := range seed {
		if err := svc.CreateLead(ctx, &seed[i]); err != nil {
			t.Fatalf("seed failed: %v", err)
		}
	}

	contacted := StatusContacted
	items, total, err := svc.ListLeads(ctx, Filter{Status: &contacted}, 10, 0)
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if total != 2 || len(items) != 2 {
		t.Fatalf("expected 2 contacted leads, got %d", total)
	}

	items, total, err = svc.ListLeads(ctx, Filter{MinValue: floatPtr(200), MaxValue: floatPtr(1000)}, 10, 0)
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if total != 1 || items[0].Name != "B" {
		t.Fatalf("expected only B in [200,1000], got total=%d", total)
	}

	bad := "MAYBE"
	if _, _, err := svc.ListLeads(ctx, Filter{Status: &bad}, 10, 0); !errors.Is(err, apperr.ErrValidation) {
		t.Fatalf("expected ErrValidation for bad status filter, got %v", err)
	}
}

func TestLeadFunnelScenario(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	l := &Lead{Name: "Bob", Email: strPtr("bob@x.com"), Phone: strPtr("5559876543")}
	if err := svc.CreateLead(ctx, l); err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if l.Status != StatusNew {
		t.Fatalf("expected NEW, got %s", l.Status)
	}

	if _, err := svc.UpdateLeadStatus(ctx, l.ID, StatusContacted); err != nil {
		t.Fatalf("status update failed: %v", err)
	}

	contacted := StatusContacted
	items, _, err := svc.ListLeads(ctx, Filter{Status: &contacted}, 10, 0)
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	found := false
	for _, item := range items {
		if item.ID == l.ID {
			found = true
		}
	}
	if !found {
		t.Fatal("contacted filter must include the lead")
	}
}
