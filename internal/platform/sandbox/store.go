package sandbox

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/clinicdesk/clinic-admin/internal/clinicapi"
	"github.com/clinicdesk/clinic-admin/internal/display"
	"github.com/clinicdesk/clinic-admin/pkg/pagination"
)

// Layouts the store normalizes dates to, matching what the clinic
// endpoint returns.
const (
	dateLayout     = "2006-01-02"
	dateTimeLayout = "2006-01-02 15:04:05"
)

var (
	ErrNotFound   = errors.New("record not found")
	ErrMissingID  = errors.New("missing identity")
	ErrReadOnly   = errors.New("endpoint is read-only")
	ErrBadPayload = errors.New("invalid payload")
)

// query narrows a list read.
type query struct {
	search string
	status string
	page   pagination.Params
}

// endpoint is the type-erased view of a collection the handler works with.
type endpoint interface {
	idKey() string
	readOnly() bool
	list(q query) []interface{}
	create(raw []byte) (int64, error)
	update(raw []byte) error
	remove(id int64) error
	count() int
}

// collection is one table of the store. All hooks run with the store lock
// held.
type collection[T clinicapi.Record] struct {
	key      string
	seq      int64
	rows     map[int64]T
	setID    func(*T, int64)
	prepare  func(rec *T, prev *T) error
	view     func(T) interface{}
	match    func(T, query) bool
	less     func(a, b T) bool
	cascade  func(id int64)
	writable bool
}

func (c *collection[T]) idKey() string  { return c.key }
func (c *collection[T]) readOnly() bool { return !c.writable }
func (c *collection[T]) count() int     { return len(c.rows) }

func (c *collection[T]) clear() {
	c.seq = 0
	c.rows = make(map[int64]T)
}

func (c *collection[T]) insert(rec T) int64 {
	c.seq++
	c.setID(&rec, c.seq)
	c.rows[c.seq] = rec
	return c.seq
}

func (c *collection[T]) sorted(q query) []T {
	out := make([]T, 0, len(c.rows))
	for _, r := range c.rows {
		if c.match == nil || c.match(r, q) {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool { return c.less(out[i], out[j]) })
	return out
}

func (c *collection[T]) list(q query) []interface{} {
	rows := pagination.Apply(c.sorted(q), q.page)
	out := make([]interface{}, 0, len(rows))
	for _, r := range rows {
		if c.view != nil {
			out = append(out, c.view(r))
		} else {
			out = append(out, r)
		}
	}
	return out
}

func (c *collection[T]) decode(raw []byte) (T, error) {
	var rec T
	if err := json.Unmarshal(raw, &rec); err != nil {
		return rec, fmt.Errorf("%w: %v", ErrBadPayload, err)
	}
	return rec, nil
}

func (c *collection[T]) create(raw []byte) (int64, error) {
	if !c.writable {
		return 0, ErrReadOnly
	}
	rec, err := c.decode(raw)
	if err != nil {
		return 0, err
	}
	if c.prepare != nil {
		if err := c.prepare(&rec, nil); err != nil {
			return 0, err
		}
	}
	return c.insert(rec), nil
}

func (c *collection[T]) update(raw []byte) error {
	if !c.writable {
		return ErrReadOnly
	}
	rec, err := c.decode(raw)
	if err != nil {
		return err
	}
	id, ok := rec.Identity()
	if !ok {
		return fmt.Errorf("%w: %s", ErrMissingID, c.key)
	}
	prev, ok := c.rows[id]
	if !ok {
		return fmt.Errorf("%w: %s=%d", ErrNotFound, c.key, id)
	}
	if c.prepare != nil {
		if err := c.prepare(&rec, &prev); err != nil {
			return err
		}
	}
	c.rows[id] = rec
	return nil
}

func (c *collection[T]) remove(id int64) error {
	if !c.writable {
		return ErrReadOnly
	}
	if _, ok := c.rows[id]; !ok {
		return fmt.Errorf("%w: %s=%d", ErrNotFound, c.key, id)
	}
	delete(c.rows, id)
	if c.cascade != nil {
		c.cascade(id)
	}
	return nil
}

// Store holds every table behind one lock.
type Store struct {
	mu  sync.RWMutex
	now func() time.Time

	patients        *collection[clinicapi.Patient]
	doctors         *collection[clinicapi.Doctor]
	specializations *collection[clinicapi.Specialization]
	appointments    *collection[clinicapi.Appointment]
	departments     *collection[clinicapi.Department]
	diagnoses       *collection[clinicapi.Diagnosis]
	services        *collection[clinicapi.Service]
	records         *collection[clinicapi.MedicalRecord]

	endpoints map[clinicapi.Endpoint]endpoint
}

// StoreOption customizes a Store.
type StoreOption func(*Store)

// WithClock overrides the clock used for created_at and today's stats.
func WithClock(now func() time.Time) StoreOption {
	return func(s *Store) { s.now = now }
}

// NewStore returns an empty store.
func NewStore(opts ...StoreOption) *Store {
	s := &Store{now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	s.wire()
	s.reset()
	return s
}

func (s *Store) reset() {
	s.patients.clear()
	s.doctors.clear()
	s.specializations.clear()
	s.appointments.clear()
	s.departments.clear()
	s.diagnoses.clear()
	s.services.clear()
	s.records.clear()
}

// Reset drops all data.
func (s *Store) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reset()
}

// Stats returns the dashboard counts. Today's appointments are those whose
// date falls on the store clock's current day.
func (s *Store) Stats() clinicapi.Stats {
	s.mu.RLock()
	defer s.mu.RUnlock()

	today := s.now().Format(dateLayout)
	var todays int
	for _, a := range s.appointments.rows {
		if strings.HasPrefix(a.AppointmentDate, today) {
			todays++
		}
	}
	return clinicapi.Stats{
		Patients:          len(s.patients.rows),
		TodayAppointments: todays,
		Doctors:           len(s.doctors.rows),
		Departments:       len(s.departments.rows),
	}
}

func (s *Store) endpoint(name clinicapi.Endpoint) (endpoint, bool) {
	ep, ok := s.endpoints[name]
	return ep, ok
}

// List returns the joined rows of an endpoint.
func (s *Store) List(name clinicapi.Endpoint, q query) ([]interface{}, error) {
	ep, ok := s.endpoint(name)
	if !ok {
		return nil, errUnknownEndpoint
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return ep.list(q), nil
}

// Create inserts a record decoded from raw JSON and returns its identity.
func (s *Store) Create(name clinicapi.Endpoint, raw []byte) (string, int64, error) {
	ep, ok := s.endpoint(name)
	if !ok {
		return "", 0, errUnknownEndpoint
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	id, err := ep.create(raw)
	return ep.idKey(), id, err
}

// Update replaces the record whose identity is carried in raw.
func (s *Store) Update(name clinicapi.Endpoint, raw []byte) error {
	ep, ok := s.endpoint(name)
	if !ok {
		return errUnknownEndpoint
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return ep.update(raw)
}

// Delete removes a record and its dependents.
func (s *Store) Delete(name clinicapi.Endpoint, id int64) error {
	ep, ok := s.endpoint(name)
	if !ok {
		return errUnknownEndpoint
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return ep.remove(id)
}

// Count returns the number of rows of an endpoint.
func (s *Store) Count(name clinicapi.Endpoint) int {
	ep, ok := s.endpoint(name)
	if !ok {
		return 0
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return ep.count()
}

var errUnknownEndpoint = errors.New("Unknown endpoint")

// ---------------------------------------------------------------------------
// Normalization helpers
// ---------------------------------------------------------------------------

func normalizeTime(v string, layout string) (string, error) {
	t, ok := display.ParseTime(v)
	if !ok {
		return "", fmt.Errorf("%w: invalid date %q", ErrBadPayload, v)
	}
	return t.Format(layout), nil
}

func normalizeOptionalDate(v *string) (*string, error) {
	if v == nil || strings.TrimSpace(*v) == "" {
		return nil, nil
	}
	out, err := normalizeTime(*v, dateLayout)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func ref[T clinicapi.Record](c *collection[T], field string, id int64) error {
	if _, ok := c.rows[id]; !ok {
		return fmt.Errorf("%w: %s=%d does not exist", ErrBadPayload, field, id)
	}
	return nil
}

func optionalRef[T clinicapi.Record](c *collection[T], field string, id *int64) error {
	if id == nil {
		return nil
	}
	return ref(c, field, *id)
}

func byIDDesc(a, b *int64) bool {
	return deref(a) > deref(b)
}

func deref(p *int64) int64 {
	if p == nil {
		return 0
	}
	return *p
}

func containsFold(s, sub string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(sub))
}
