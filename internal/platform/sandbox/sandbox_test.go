package sandbox

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/clinicdesk/clinic-admin/internal/clinicapi"
)

var fixedNow = time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

func newTestServer(t *testing.T) (*Store, *echo.Echo) {
	t.Helper()
	store := NewStore(WithClock(func() time.Time { return fixedNow }))
	e := NewServer(store, ServerConfig{RequestTimeout: 5 * time.Second, BodyLimit: "64K"}, zerolog.Nop())
	return store, e
}

func do(t *testing.T, e *echo.Echo, method, target, body string) (*httptest.ResponseRecorder, interface{}) {
	t.Helper()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	var out interface{}
	if rec.Body.Len() > 0 {
		if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
			t.Fatalf("decode %s %s: %v (%s)", method, target, err, rec.Body.String())
		}
	}
	return rec, out
}

func asMap(t *testing.T, v interface{}) map[string]interface{} {
	t.Helper()
	m, ok := v.(map[string]interface{})
	if !ok {
		t.Fatalf("expected object, got %T", v)
	}
	return m
}

func asList(t *testing.T, v interface{}) []interface{} {
	t.Helper()
	l, ok := v.([]interface{})
	if !ok {
		t.Fatalf("expected array, got %T", v)
	}
	return l
}

// ---------------------------------------------------------------------------
// DataGenerator
// ---------------------------------------------------------------------------

func TestDataGenerator_Deterministic(t *testing.T) {
	a := NewDataGenerator(42).Patient()
	b := NewDataGenerator(42).Patient()
	if a.FullName != b.FullName || *a.BirthDate != *b.BirthDate || a.Phone != b.Phone {
		t.Errorf("same seed produced different patients: %+v vs %+v", a, b)
	}
}

func TestDataGenerator_AppointmentStatusFollowsDate(t *testing.T) {
	g := NewDataGenerator(7)
	for i := 0; i < 50; i++ {
		a := g.Appointment(1, 1, fixedNow)
		day := a.AppointmentDate[:10]
		if day < "2025-06-15" && a.Status == clinicapi.StatusScheduled {
			t.Errorf("past appointment %s is still scheduled", a.AppointmentDate)
		}
		if day >= "2025-06-15" && a.Status != clinicapi.StatusScheduled {
			t.Errorf("upcoming appointment %s has status %s", a.AppointmentDate, a.Status)
		}
	}
}

func TestStore_Seed(t *testing.T) {
	store := NewStore(WithClock(func() time.Time { return fixedNow }))
	res := store.Seed(DefaultSeedConfig())

	if res.Patients != 20 || store.Count(clinicapi.EndpointPatients) != 20 {
		t.Errorf("patients = %d / %d, want 20", res.Patients, store.Count(clinicapi.EndpointPatients))
	}
	if res.Doctors != 6 {
		t.Errorf("doctors = %d, want 6", res.Doctors)
	}
	if res.Appointments != 40 {
		t.Errorf("appointments = %d, want 40", res.Appointments)
	}
	if res.Records != 20 {
		t.Errorf("records = %d, want 20", res.Records)
	}

	again := NewStore(WithClock(func() time.Time { return fixedNow }))
	again.Seed(DefaultSeedConfig())
	first, _ := store.List(clinicapi.EndpointPatients, query{})
	second, _ := again.List(clinicapi.EndpointPatients, query{})
	a, _ := json.Marshal(first)
	b, _ := json.Marshal(second)
	if string(a) != string(b) {
		t.Error("seeding with the same config must be reproducible")
	}
}

// ---------------------------------------------------------------------------
// Endpoint protocol
// ---------------------------------------------------------------------------

func TestEndpoint_Unknown(t *testing.T) {
	_, e := newTestServer(t)
	rec, body := do(t, e, http.MethodGet, "/?endpoint=nurses", "")

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
	if asMap(t, body)["error"] != "Unknown endpoint" {
		t.Errorf("body = %v", body)
	}
}

func TestEndpoint_DefaultsToStats(t *testing.T) {
	_, e := newTestServer(t)
	rec, body := do(t, e, http.MethodGet, "/", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if _, ok := asMap(t, body)["todayAppointments"]; !ok {
		t.Errorf("expected stats body, got %v", body)
	}
}

func TestEndpoint_PatientLifecycle(t *testing.T) {
	store, e := newTestServer(t)

	rec, body := do(t, e, http.MethodPost, "/?endpoint=patients",
		`{"full_name":"Иванов Иван","birth_date":null,"gender":"","phone":"+7 900","passport_info":""}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("create status = %d: %s", rec.Code, rec.Body.String())
	}
	created := asMap(t, body)
	if created["success"] != true || created["patient_id"] != float64(1) {
		t.Fatalf("unexpected create ack: %v", created)
	}

	_, body = do(t, e, http.MethodGet, "/?endpoint=patients&search="+url.QueryEscape("иван"), "")
	list := asList(t, body)
	if len(list) != 1 {
		t.Fatalf("search returned %d patients, want 1", len(list))
	}
	p := asMap(t, list[0])
	if p["created_at"] != "2025-06-15 12:00:00" {
		t.Errorf("created_at = %v", p["created_at"])
	}

	rec, _ = do(t, e, http.MethodPut, "/?endpoint=patients",
		`{"patient_id":1,"full_name":"Иванов Иван","birth_date":"2000-06-15","gender":"Мужской","phone":"","passport_info":""}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("update status = %d: %s", rec.Code, rec.Body.String())
	}
	_, body = do(t, e, http.MethodGet, "/?endpoint=patients", "")
	p = asMap(t, asList(t, body)[0])
	if p["birth_date"] != "2000-06-15" || p["created_at"] != "2025-06-15 12:00:00" {
		t.Errorf("after update: %v", p)
	}

	rec, _ = do(t, e, http.MethodDelete, "/?endpoint=patients&id=1", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("delete status = %d", rec.Code)
	}
	if n := store.Count(clinicapi.EndpointPatients); n != 0 {
		t.Errorf("patients after delete = %d", n)
	}
}

func TestEndpoint_UpdateErrors(t *testing.T) {
	_, e := newTestServer(t)

	rec, _ := do(t, e, http.MethodPut, "/?endpoint=diagnoses", `{"name":"Flu"}`)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("missing id: status = %d, want 400", rec.Code)
	}
	rec, _ = do(t, e, http.MethodPut, "/?endpoint=diagnoses", `{"diagnoses_id":99,"name":"Flu"}`)
	if rec.Code != http.StatusNotFound {
		t.Errorf("unknown id: status = %d, want 404", rec.Code)
	}
	rec, _ = do(t, e, http.MethodDelete, "/?endpoint=diagnoses&id=abc", "")
	if rec.Code != http.StatusBadRequest {
		t.Errorf("bad id: status = %d, want 400", rec.Code)
	}
	rec, _ = do(t, e, http.MethodPost, "/?endpoint=specializations", `{"name":"x"}`)
	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("read-only: status = %d, want 405", rec.Code)
	}
}

func TestEndpoint_AppointmentJoinsAndFilters(t *testing.T) {
	store, e := newTestServer(t)
	store.Seed(SeedConfig{Patients: 3, Doctors: 2, AppointmentsPerPatient: 2, Seed: 1})

	_, body := do(t, e, http.MethodGet, "/?endpoint=appointments&limit=100", "")
	all := asList(t, body)
	if len(all) != 6 {
		t.Fatalf("appointments = %d, want 6", len(all))
	}
	first := asMap(t, all[0])
	if first["patient_name"] == "" || first["doctor_name"] == "" {
		t.Errorf("expected joined names, got %v", first)
	}
	for i := 1; i < len(all); i++ {
		prev := asMap(t, all[i-1])["appointment_date"].(string)
		cur := asMap(t, all[i])["appointment_date"].(string)
		if prev < cur {
			t.Errorf("appointments not sorted by date desc: %s before %s", prev, cur)
		}
	}

	_, body = do(t, e, http.MethodGet, "/?endpoint=appointments&status=scheduled", "")
	for _, v := range asList(t, body) {
		if asMap(t, v)["status"] != "scheduled" {
			t.Errorf("status filter leaked %v", v)
		}
	}

	_, body = do(t, e, http.MethodGet, "/?endpoint=appointments&limit=2", "")
	if n := len(asList(t, body)); n != 2 {
		t.Errorf("limit=2 returned %d", n)
	}
}

func TestEndpoint_AppointmentReferencesMustExist(t *testing.T) {
	_, e := newTestServer(t)
	rec, body := do(t, e, http.MethodPost, "/?endpoint=appointments",
		`{"patient_id":5,"doctor_id":6,"appointment_date":"2025-06-15T10:00","status":"scheduled"}`)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
	if !strings.Contains(asMap(t, body)["error"].(string), "patient_id") {
		t.Errorf("error = %v", body)
	}
}

func TestEndpoint_ServicePriceIsString(t *testing.T) {
	_, e := newTestServer(t)
	do(t, e, http.MethodPost, "/?endpoint=services", `{"name":"ECG","price":900.5,"descriptions":""}`)

	_, body := do(t, e, http.MethodGet, "/?endpoint=services", "")
	svc := asMap(t, asList(t, body)[0])
	if svc["price"] != "900.50" {
		t.Errorf("price = %#v, want \"900.50\"", svc["price"])
	}
}

func TestEndpoint_StatsCountsToday(t *testing.T) {
	store, e := newTestServer(t)
	do(t, e, http.MethodPost, "/?endpoint=patients", `{"full_name":"A"}`)
	do(t, e, http.MethodPost, "/?endpoint=doctors", `{"full_name":"B","specialization_id":null}`)
	do(t, e, http.MethodPost, "/?endpoint=appointments", `{"patient_id":1,"doctor_id":1,"appointment_date":"2025-06-15T09:00"}`)
	do(t, e, http.MethodPost, "/?endpoint=appointments", `{"patient_id":1,"doctor_id":1,"appointment_date":"2025-06-16T09:00"}`)

	got := store.Stats()
	want := clinicapi.Stats{Patients: 1, TodayAppointments: 1, Doctors: 1}
	if got != want {
		t.Errorf("stats = %+v, want %+v", got, want)
	}

	_, body := do(t, e, http.MethodGet, "/?endpoint=appointments", "")
	appt := asMap(t, asList(t, body)[0])
	if appt["appointment_date"] != "2025-06-16 09:00:00" {
		t.Errorf("appointment_date = %v", appt["appointment_date"])
	}
	if asMap(t, asList(t, body)[1])["status"] != "scheduled" {
		t.Error("status should default to scheduled")
	}
}

func TestEndpoint_DeleteCascades(t *testing.T) {
	store, _ := newTestServer(t)
	store.Seed(SeedConfig{Patients: 2, Doctors: 1, AppointmentsPerPatient: 1, RecordsPerPatient: 1, Seed: 3})

	if err := store.Delete(clinicapi.EndpointPatients, 1); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if n := store.Count(clinicapi.EndpointAppointments); n != 1 {
		t.Errorf("appointments after cascade = %d, want 1", n)
	}
	if n := store.Count(clinicapi.EndpointRecords); n != 1 {
		t.Errorf("records after cascade = %d, want 1", n)
	}

	if err := store.Delete(clinicapi.EndpointDoctors, 1); err != nil {
		t.Fatalf("delete doctor: %v", err)
	}
	rows, _ := store.List(clinicapi.EndpointDepartments, query{})
	for _, r := range rows {
		if d := r.(clinicapi.Department); d.DoctorID != nil {
			t.Errorf("department %q still references deleted doctor", d.Name)
		}
	}
}

func TestSeedAndResetRoutes(t *testing.T) {
	store, e := newTestServer(t)

	rec, body := do(t, e, http.MethodPost, "/sandbox/seed", `{"patients":4,"doctors":2,"seed":9}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("seed status = %d: %s", rec.Code, rec.Body.String())
	}
	if asMap(t, body)["patients"] != float64(4) {
		t.Errorf("seed result = %v", body)
	}
	if store.Count(clinicapi.EndpointPatients) != 4 {
		t.Errorf("store has %d patients", store.Count(clinicapi.EndpointPatients))
	}

	do(t, e, http.MethodPost, "/sandbox/reset", "")
	if store.Count(clinicapi.EndpointPatients) != 0 {
		t.Error("expected empty store after reset")
	}
}

func TestRequestIDIsEchoed(t *testing.T) {
	_, e := newTestServer(t)
	req := httptest.NewRequest(http.MethodGet, "/?endpoint=stats", nil)
	req.Header.Set(clinicapi.RequestIDHeader, "abc")
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	if rec.Header().Get(clinicapi.RequestIDHeader) != "abc" {
		t.Errorf("request id not echoed: %q", rec.Header().Get(clinicapi.RequestIDHeader))
	}
}

// ---------------------------------------------------------------------------
// Client compatibility
// ---------------------------------------------------------------------------

func TestClientAgainstSandbox(t *testing.T) {
	store, e := newTestServer(t)
	store.Seed(DefaultSeedConfig())
	srv := httptest.NewServer(e)
	defer srv.Close()

	c := clinicapi.NewClient(srv.URL)
	ctx := context.Background()

	services, err := c.Services().List(ctx, clinicapi.Filter{})
	if err != nil {
		t.Fatalf("list services: %v", err)
	}
	if len(services) == 0 || services[0].Price <= 0 {
		t.Errorf("services = %+v", services)
	}

	ack, err := c.Diagnoses().Create(ctx, clinicapi.Diagnosis{Name: "Ангина"})
	if err != nil {
		t.Fatalf("create diagnosis: %v", err)
	}
	if ack.ID == nil {
		t.Fatal("expected new diagnosis id")
	}

	doctors, err := c.Doctors().List(ctx, clinicapi.Filter{})
	if err != nil {
		t.Fatalf("list doctors: %v", err)
	}
	if doctors[0].Specialization == "" {
		t.Error("expected joined specialization name")
	}

	if _, err := c.Diagnoses().Delete(ctx, 12345); err == nil {
		t.Error("expected failure deleting a missing diagnosis")
	}
}
