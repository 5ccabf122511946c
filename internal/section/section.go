// Package section implements the list/form/delete workflow shared by every
// entity screen: load a collection with its lookups, open a create or edit
// form, submit, and reload. Failures are reported through a notifier and
// never leave partially applied state.
package section

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/clinicdesk/clinic-admin/internal/clinicapi"
	"github.com/clinicdesk/clinic-admin/internal/form"
	"github.com/clinicdesk/clinic-admin/internal/platform/notify"
)

var (
	ErrClosed          = errors.New("section closed")
	ErrNotFound        = errors.New("record not in collection")
	ErrNoDialog        = errors.New("no form is open")
	ErrNothingSelected = errors.New("no record selected for deletion")
)

// Resource is the remote collection a section manages.
type Resource[T clinicapi.Record] interface {
	List(ctx context.Context, f clinicapi.Filter) ([]T, error)
	Create(ctx context.Context, rec T) (clinicapi.Ack, error)
	Update(ctx context.Context, rec T) (clinicapi.Ack, error)
	Delete(ctx context.Context, id int64) (clinicapi.Ack, error)
}

// SummaryRefresher is refreshed after mutations that change summary counts.
type SummaryRefresher interface {
	Refresh(ctx context.Context) error
}

// Messages are the user-facing notification texts of a section.
type Messages struct {
	Added        string
	Updated      string
	Deleted      string
	LoadFailed   string
	SaveFailed   string
	DeleteFailed string
}

// DefaultMessages builds the standard texts for an entity label such as
// "Doctor".
func DefaultMessages(entity string) Messages {
	return Messages{
		Added:        entity + " added",
		Updated:      entity + " updated",
		Deleted:      entity + " deleted",
		LoadFailed:   "Failed to load data",
		SaveFailed:   "Failed to save",
		DeleteFailed: "Failed to delete",
	}
}

func title(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

// Config wires a Controller.
type Config[T clinicapi.Record] struct {
	Name     string
	Resource Resource[T]
	Schema   form.Schema
	// Lookups load the options of reference fields, keyed by field name.
	Lookups  map[string]Lookup
	Filter   clinicapi.Filter
	Summary  SummaryRefresher
	Messages Messages
	Notifier notify.Notifier
	Logger   zerolog.Logger
}

// Controller owns the state of one entity section. It is safe for
// concurrent use.
type Controller[T clinicapi.Record] struct {
	cfg    Config[T]
	logger zerolog.Logger

	life   context.Context
	cancel context.CancelFunc

	mu            sync.Mutex
	closed        bool
	loaded        bool
	items         []T
	options       map[string][]form.Option
	filter        clinicapi.Filter
	form          *form.Form[T]
	dialogOpen    bool
	selected      *T
	pendingDelete *int64
}

func New[T clinicapi.Record](cfg Config[T]) *Controller[T] {
	if cfg.Notifier == nil {
		cfg.Notifier = notify.Discard
	}
	if cfg.Messages == (Messages{}) {
		cfg.Messages = DefaultMessages(title(cfg.Schema.Entity))
	}
	life, cancel := context.WithCancel(context.Background())
	return &Controller[T]{
		cfg:     cfg,
		logger:  cfg.Logger.With().Str("section", cfg.Name).Logger(),
		life:    life,
		cancel:  cancel,
		items:   []T{},
		options: map[string][]form.Option{},
		filter:  cfg.Filter,
		form:    form.New[T](cfg.Schema),
	}
}

func (c *Controller[T]) Name() string { return c.cfg.Name }

func (c *Controller[T]) Schema() form.Schema { return c.cfg.Schema }

// bind ties a caller context to the controller lifetime so Close aborts
// in-flight requests.
func (c *Controller[T]) bind(ctx context.Context) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(ctx)
	stop := context.AfterFunc(c.life, cancel)
	return ctx, func() {
		stop()
		cancel()
	}
}

func (c *Controller[T]) isClosed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}

// Load fetches the collection and every lookup concurrently. State changes
// only when all of them succeed.
func (c *Controller[T]) Load(ctx context.Context) error {
	ctx, done := c.bind(ctx)
	defer done()

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return ErrClosed
	}
	filter := c.filter
	c.mu.Unlock()

	var (
		items   []T
		optMu   sync.Mutex
		options = make(map[string][]form.Option, len(c.cfg.Lookups))
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		items, err = c.cfg.Resource.List(gctx, filter)
		return err
	})
	for field, lookup := range c.cfg.Lookups {
		g.Go(func() error {
			opts, err := lookup(gctx)
			if err != nil {
				return fmt.Errorf("lookup %s: %w", field, err)
			}
			optMu.Lock()
			options[field] = opts
			optMu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		if c.isClosed() {
			return ErrClosed
		}
		c.logger.Warn().Err(err).Msg("load failed")
		c.cfg.Notifier.Notify(c.cfg.Messages.LoadFailed, notify.KindError)
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return ErrClosed
	}
	c.items = items
	c.options = options
	for field, opts := range options {
		if err := c.form.SetOptions(field, opts); err != nil {
			c.logger.Warn().Err(err).Str("field", field).Msg("lookup does not match a reference field")
		}
	}
	c.loaded = true
	c.logger.Debug().Int("items", len(items)).Msg("loaded")
	return nil
}

// SetFilter replaces the list filter and reloads.
func (c *Controller[T]) SetFilter(ctx context.Context, f clinicapi.Filter) error {
	c.mu.Lock()
	c.filter = f
	c.mu.Unlock()
	return c.Load(ctx)
}

func (c *Controller[T]) Filter() clinicapi.Filter {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.filter
}

// Items returns a copy of the loaded collection.
func (c *Controller[T]) Items() []T {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]T, len(c.items))
	copy(out, c.items)
	return out
}

// Loaded reports whether at least one load has succeeded.
func (c *Controller[T]) Loaded() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.loaded
}

// Options returns the lookup options last loaded for a field.
func (c *Controller[T]) Options(field string) []form.Option {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]form.Option(nil), c.options[field]...)
}

// Find returns the loaded record with the given identity.
func (c *Controller[T]) Find(id int64) (T, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.find(id)
}

func (c *Controller[T]) find(id int64) (T, bool) {
	for _, it := range c.items {
		if got, ok := it.Identity(); ok && got == id {
			return it, true
		}
	}
	var zero T
	return zero, false
}

// OpenCreate opens an empty form.
func (c *Controller[T]) OpenCreate() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.form.Open(nil); err != nil {
		return err
	}
	c.selected = nil
	c.dialogOpen = true
	return nil
}

// OpenEdit opens the form seeded from a loaded record.
func (c *Controller[T]) OpenEdit(id int64) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	rec, ok := c.find(id)
	if !ok {
		return fmt.Errorf("%w: %s %d", ErrNotFound, c.cfg.Schema.Entity, id)
	}
	if err := c.form.Open(&rec); err != nil {
		return err
	}
	c.selected = &rec
	c.dialogOpen = true
	return nil
}

// CloseDialog discards the open form.
func (c *Controller[T]) CloseDialog() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.dialogOpen = false
	c.selected = nil
}

func (c *Controller[T]) DialogOpen() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.dialogOpen
}

// Selected returns the record being edited, if any.
func (c *Controller[T]) Selected() (T, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.selected == nil {
		var zero T
		return zero, false
	}
	return *c.selected, true
}

// Form exposes the dialog form for reading. Edits go through SetField.
func (c *Controller[T]) Form() *form.Form[T] {
	return c.form
}

// SetField edits a field of the open form.
func (c *Controller[T]) SetField(name, value string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.dialogOpen {
		return ErrNoDialog
	}
	return c.form.Set(name, value)
}

// FieldValue returns the current value of a form field.
func (c *Controller[T]) FieldValue(name string) string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.form.Value(name)
}

// Submit normalizes the open form and saves it. Validation failures are
// reported without any request being made; the dialog stays open.
func (c *Controller[T]) Submit(ctx context.Context) error {
	c.mu.Lock()
	if !c.dialogOpen {
		c.mu.Unlock()
		return ErrNoDialog
	}
	rec, err := c.form.Submit()
	c.mu.Unlock()
	if err != nil {
		c.cfg.Notifier.Notify(err.Error(), notify.KindError)
		return err
	}
	return c.Save(ctx, rec)
}

// Save creates or updates rec depending on whether it carries an identity.
// On success the dialog closes and the collection is reloaded; on failure
// the dialog stays open.
func (c *Controller[T]) Save(ctx context.Context, rec T) error {
	ctx, done := c.bind(ctx)
	defer done()
	if c.isClosed() {
		return ErrClosed
	}

	id, update := rec.Identity()
	var err error
	if update {
		_, err = c.cfg.Resource.Update(ctx, rec)
	} else {
		_, err = c.cfg.Resource.Create(ctx, rec)
	}
	if c.isClosed() {
		return ErrClosed
	}
	if err != nil {
		c.logger.Warn().Err(err).Bool("update", update).Int64("id", id).Msg("save failed")
		c.cfg.Notifier.Notify(c.cfg.Messages.SaveFailed, notify.KindError)
		return err
	}

	msg := c.cfg.Messages.Added
	if update {
		msg = c.cfg.Messages.Updated
	}
	c.cfg.Notifier.Notify(msg, notify.KindSuccess)

	c.mu.Lock()
	c.dialogOpen = false
	c.selected = nil
	c.mu.Unlock()

	c.afterMutation(ctx)
	return nil
}

// SelectForDeletion marks a loaded record as pending deletion.
func (c *Controller[T]) SelectForDeletion(id int64) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.find(id); !ok {
		return fmt.Errorf("%w: %s %d", ErrNotFound, c.cfg.Schema.Entity, id)
	}
	c.pendingDelete = &id
	return nil
}

// PendingDeletion returns the identity awaiting confirmation.
func (c *Controller[T]) PendingDeletion() (int64, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.pendingDelete == nil {
		return 0, false
	}
	return *c.pendingDelete, true
}

func (c *Controller[T]) CancelDeletion() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.pendingDelete = nil
}

// ConfirmDeletion deletes the pending record. The pending selection is
// cleared whether or not the request succeeds.
func (c *Controller[T]) ConfirmDeletion(ctx context.Context) error {
	ctx, done := c.bind(ctx)
	defer done()

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return ErrClosed
	}
	pending := c.pendingDelete
	c.pendingDelete = nil
	c.mu.Unlock()
	if pending == nil {
		return ErrNothingSelected
	}

	_, err := c.cfg.Resource.Delete(ctx, *pending)
	if c.isClosed() {
		return ErrClosed
	}
	if err != nil {
		c.logger.Warn().Err(err).Int64("id", *pending).Msg("delete failed")
		c.cfg.Notifier.Notify(c.cfg.Messages.DeleteFailed, notify.KindError)
		return err
	}
	c.cfg.Notifier.Notify(c.cfg.Messages.Deleted, notify.KindSuccess)
	c.afterMutation(ctx)
	return nil
}

// afterMutation reloads the collection and refreshes the summary. Both
// report their own failures.
func (c *Controller[T]) afterMutation(ctx context.Context) {
	_ = c.Load(ctx)
	if c.cfg.Summary != nil {
		_ = c.cfg.Summary.Refresh(ctx)
	}
}

// Close stops the controller. In-flight requests are cancelled and their
// results dropped.
func (c *Controller[T]) Close() {
	c.mu.Lock()
	c.closed = true
	c.mu.Unlock()
	c.cancel()
}
