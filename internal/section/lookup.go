package section

import (
	"context"
	"strconv"

	"github.com/clinicdesk/clinic-admin/internal/clinicapi"
	"github.com/clinicdesk/clinic-admin/internal/form"
)

// Lookup loads the selectable options of a reference field.
type Lookup func(ctx context.Context) ([]form.Option, error)

// Lister is the read half of a Resource.
type Lister[T clinicapi.Record] interface {
	List(ctx context.Context, f clinicapi.Filter) ([]T, error)
}

// LookupOf builds a Lookup from a collection. Records without an identity
// are skipped.
func LookupOf[T clinicapi.Record](src Lister[T], label func(T) string) Lookup {
	return func(ctx context.Context) ([]form.Option, error) {
		rows, err := src.List(ctx, clinicapi.Filter{})
		if err != nil {
			return nil, err
		}
		opts := make([]form.Option, 0, len(rows))
		for _, r := range rows {
			id, ok := r.Identity()
			if !ok {
				continue
			}
			opts = append(opts, form.Option{Value: strconv.FormatInt(id, 10), Label: label(r)})
		}
		return opts, nil
	}
}
