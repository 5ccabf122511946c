// Package clinicapi is a typed client for the clinic endpoint. Every resource
// lives behind one base URL and is selected with the `endpoint` query
// parameter.
package clinicapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/clinicdesk/clinic-admin/pkg/pagination"
)

// ErrFailed is the only error the client reports. Transport failures,
// non-2xx statuses and undecodable bodies all wrap it; callers are not
// expected to tell them apart.
var ErrFailed = errors.New("clinic api: operation failed")

// RequestIDHeader carries the per-request correlation id.
const RequestIDHeader = "X-Request-ID"

const defaultTimeout = 10 * time.Second

// Filter narrows a list call. Search applies to patients, Status to
// appointments. Limit defaults to pagination.DefaultLimit.
type Filter struct {
	Search string
	Status Status
	Limit  int
}

// Client issues requests against the clinic endpoint.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     zerolog.Logger
}

// Option customizes a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithTimeout sets the per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.httpClient.Timeout = d
		}
	}
}

// WithLogger attaches a logger; requests are logged at debug level.
func WithLogger(l zerolog.Logger) Option {
	return func(c *Client) { c.logger = l }
}

func NewClient(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: defaultTimeout},
		logger:     zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) Patients() *Resource[Patient] {
	return &Resource[Patient]{client: c, endpoint: EndpointPatients, idKey: "patient_id"}
}

func (c *Client) Doctors() *Resource[Doctor] {
	return &Resource[Doctor]{client: c, endpoint: EndpointDoctors, idKey: "doctor_id"}
}

func (c *Client) Specializations() *Resource[Specialization] {
	return &Resource[Specialization]{client: c, endpoint: EndpointSpecializations, idKey: "specialization_id"}
}

func (c *Client) Appointments() *Resource[Appointment] {
	return &Resource[Appointment]{client: c, endpoint: EndpointAppointments, idKey: "appointment_id"}
}

func (c *Client) Departments() *Resource[Department] {
	return &Resource[Department]{client: c, endpoint: EndpointDepartments, idKey: "department_id"}
}

func (c *Client) Diagnoses() *Resource[Diagnosis] {
	return &Resource[Diagnosis]{client: c, endpoint: EndpointDiagnoses, idKey: "diagnoses_id"}
}

func (c *Client) Services() *Resource[Service] {
	return &Resource[Service]{client: c, endpoint: EndpointServices, idKey: "service_id"}
}

func (c *Client) Records() *Resource[MedicalRecord] {
	return &Resource[MedicalRecord]{client: c, endpoint: EndpointRecords, idKey: "record_id"}
}

// Stats fetches the dashboard summary counts.
func (c *Client) Stats(ctx context.Context) (Stats, error) {
	var out Stats
	q := url.Values{}
	q.Set("endpoint", string(EndpointStats))
	if err := c.do(ctx, http.MethodGet, q, nil, &out); err != nil {
		return Stats{}, err
	}
	return out, nil
}

// Resource exposes list/create/update/delete for one endpoint.
type Resource[T Record] struct {
	client   *Client
	endpoint Endpoint
	idKey    string
}

// Endpoint returns the endpoint selector this resource addresses.
func (r *Resource[T]) Endpoint() Endpoint { return r.endpoint }

// IdentityKey returns the JSON field holding the record identity.
func (r *Resource[T]) IdentityKey() string { return r.idKey }

// List fetches the collection. A JSON null body yields an empty slice.
func (r *Resource[T]) List(ctx context.Context, f Filter) ([]T, error) {
	q := url.Values{}
	q.Set("endpoint", string(r.endpoint))
	q.Set("limit", pagination.Params{Limit: f.Limit}.Query())
	if f.Search != "" {
		q.Set("search", f.Search)
	}
	if f.Status != "" {
		q.Set("status", string(f.Status))
	}

	var out []T
	if err := r.client.do(ctx, http.MethodGet, q, nil, &out); err != nil {
		return nil, err
	}
	if out == nil {
		out = []T{}
	}
	return out, nil
}

// Create posts a new record. The returned Ack carries the new identity when
// the endpoint reports one.
func (r *Resource[T]) Create(ctx context.Context, rec T) (Ack, error) {
	return r.write(ctx, http.MethodPost, rec)
}

// Update puts an existing record. Records without an identity are rejected
// before any request is made.
func (r *Resource[T]) Update(ctx context.Context, rec T) (Ack, error) {
	if _, ok := rec.Identity(); !ok {
		return Ack{}, fmt.Errorf("%w: update %s without %s", ErrFailed, r.endpoint, r.idKey)
	}
	return r.write(ctx, http.MethodPut, rec)
}

// Delete removes the record with the given identity.
func (r *Resource[T]) Delete(ctx context.Context, id int64) (Ack, error) {
	q := url.Values{}
	q.Set("endpoint", string(r.endpoint))
	q.Set("id", strconv.FormatInt(id, 10))

	var raw map[string]interface{}
	if err := r.client.do(ctx, http.MethodDelete, q, nil, &raw); err != nil {
		return Ack{}, err
	}
	return r.ack(raw)
}

func (r *Resource[T]) write(ctx context.Context, method string, rec T) (Ack, error) {
	q := url.Values{}
	q.Set("endpoint", string(r.endpoint))

	var raw map[string]interface{}
	if err := r.client.do(ctx, method, q, rec, &raw); err != nil {
		return Ack{}, err
	}
	return r.ack(raw)
}

func (r *Resource[T]) ack(raw map[string]interface{}) (Ack, error) {
	if msg, ok := raw["error"]; ok {
		return Ack{}, fmt.Errorf("%w: %s: %v", ErrFailed, r.endpoint, msg)
	}
	var a Ack
	if ok, isBool := raw["success"].(bool); isBool {
		a.Success = ok
	}
	if n, ok := raw[r.idKey].(json.Number); ok {
		if id, err := n.Int64(); err == nil {
			a.ID = &id
		}
	}
	return a, nil
}

func (c *Client) do(ctx context.Context, method string, query url.Values, body interface{}, out interface{}) error {
	endpoint := query.Get("endpoint")

	u, err := url.Parse(c.baseURL)
	if err != nil {
		return fmt.Errorf("%w: parse base url: %v", ErrFailed, err)
	}
	merged := u.Query()
	for k, vs := range query {
		for _, v := range vs {
			merged.Set(k, v)
		}
	}
	u.RawQuery = merged.Encode()

	var reader io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("%w: encode %s body: %v", ErrFailed, endpoint, err)
		}
		reader = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, u.String(), reader)
	if err != nil {
		return fmt.Errorf("%w: build request: %v", ErrFailed, err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	rid := uuid.NewString()
	req.Header.Set(RequestIDHeader, rid)

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Debug().Err(err).
			Str("request_id", rid).
			Str("method", method).
			Str("endpoint", endpoint).
			Dur("latency", time.Since(start)).
			Msg("clinic api request failed")
		return fmt.Errorf("%w: %s %s: %v", ErrFailed, method, endpoint, err)
	}
	defer resp.Body.Close()

	c.logger.Debug().
		Str("request_id", rid).
		Str("method", method).
		Str("endpoint", endpoint).
		Int("status", resp.StatusCode).
		Dur("latency", time.Since(start)).
		Msg("clinic api request")

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		_, _ = io.Copy(io.Discard, resp.Body)
		return fmt.Errorf("%w: %s %s returned status %d", ErrFailed, method, endpoint, resp.StatusCode)
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	dec := json.NewDecoder(resp.Body)
	dec.UseNumber()
	if err := dec.Decode(out); err != nil {
		return fmt.Errorf("%w: decode %s response: %v", ErrFailed, endpoint, err)
	}
	return nil
}
