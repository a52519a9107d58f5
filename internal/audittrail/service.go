package audittrail

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"zgw/pkg/requestcontext"
)

// Mutation describes one recorded change. Old and New are the resource
// snapshots before and after; either may be nil depending on the action.
type Mutation struct {
	Actie            Actie
	Resultaat        int
	HoofdObject      string
	Resource         string
	ResourceURL      string
	ResourceWeergave string
	Old              any
	New              any
}

// Recorder builds audit trail entries from request context and mutations.
// One Recorder exists per hosted component, tagged with its source name.
type Recorder struct {
	bron   string
	store  Store
	logger *slog.Logger
}

func NewRecorder(bron string, store Store, logger *slog.Logger) *Recorder {
	return &Recorder{bron: bron, store: store, logger: logger}
}

// Record appends one entry. The actor and the toelichting note come from the
// request context; the caller supplies the snapshots. Callers invoke Record
// inside the mutation's transaction so both commit or neither does.
func (r *Recorder) Record(ctx context.Context, m Mutation) error {
	entry := Entry{
		UUID:               uuid.New(),
		Bron:               r.bron,
		ApplicatieID:       requestcontext.ClientID(ctx),
		GebruikersID:       requestcontext.UserID(ctx),
		GebruikersWeergave: requestcontext.UserRepresentation(ctx),
		Actie:              m.Actie,
		Resultaat:          m.Resultaat,
		HoofdObject:        m.HoofdObject,
		Resource:           m.Resource,
		ResourceURL:        m.ResourceURL,
		ResourceWeergave:   m.ResourceWeergave,
		Toelichting:        requestcontext.AuditToelichting(ctx),
		AanmaakDatum:       requestcontext.Now(ctx).UTC(),
	}
	if entry.AanmaakDatum.IsZero() {
		entry.AanmaakDatum = time.Now().UTC()
	}

	var err error
	if entry.Wijzigingen.Oud, err = snapshot(m.Old); err != nil {
		return fmt.Errorf("snapshot old state: %w", err)
	}
	if entry.Wijzigingen.Nieuw, err = snapshot(m.New); err != nil {
		return fmt.Errorf("snapshot new state: %w", err)
	}

	if err := r.store.Append(ctx, entry); err != nil {
		return err
	}
	r.logger.Debug("audit trail entry recorded",
		"bron", r.bron, "actie", m.Actie, "resource", m.Resource, "hoofd_object", m.HoofdObject)
	return nil
}

func snapshot(v any) (json.RawMessage, error) {
	if v == nil {
		return nil, nil
	}
	return json.Marshal(v)
}

// List returns the trail of a main object, oldest first.
func (r *Recorder) List(ctx context.Context, hoofdObject string) ([]Entry, error) {
	return r.store.ListByHoofdObject(ctx, hoofdObject)
}

// Get returns a single entry scoped to its main object.
func (r *Recorder) Get(ctx context.Context, hoofdObject string, id uuid.UUID) (*Entry, error) {
	return r.store.Get(ctx, hoofdObject, id)
}

// Purge removes the whole trail of a main object. Called when the main object
// itself is destroyed, after the destroy entry has served its purpose.
func (r *Recorder) Purge(ctx context.Context, hoofdObject string) error {
	return r.store.DeleteByHoofdObject(ctx, hoofdObject)
}
