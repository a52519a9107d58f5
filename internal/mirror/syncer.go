// Package mirror keeps cross-service relation rows consistent. When a local
// relation points at an entity in a peer service, the peer holds a mirror row
// for its reverse listing. The local row commits first so the peer can verify
// it exists; if the peer call then fails, the local change is compensated and
// the request fails with pending-relations.
package mirror

//go:generate mockgen -source=syncer.go -destination=mocks/mocks.go -package=mocks PeerClient

import (
	"context"
	"log/slog"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	dErrors "zgw/pkg/domain-errors"
)

var tracer = otel.Tracer("zgw/internal/mirror")

// PeerClient performs the authenticated mirror calls against a peer service.
type PeerClient interface {
	CreateMirror(ctx context.Context, collectionURL string, body any) (mirrorURL string, err error)
	DeleteMirror(ctx context.Context, mirrorURL string) error
}

// Syncer orchestrates the commit-then-call-peer protocol.
type Syncer struct {
	client PeerClient
	logger *slog.Logger
}

func NewSyncer(client PeerClient, logger *slog.Logger) *Syncer {
	return &Syncer{client: client, logger: logger}
}

// CreateRemote describes the peer side of a new relation row.
type CreateRemote struct {
	// CollectionURL is the peer endpoint the mirror row is POSTed to.
	CollectionURL string
	// Body is the mirror row payload.
	Body any
}

// Create commits the local row, then materialises the peer mirror and hands
// its URL to saveMirrorURL. remote may be nil for purely local relations.
// When the peer call fails, compensate removes the committed row again.
func (s *Syncer) Create(
	ctx context.Context,
	insert func(ctx context.Context) error,
	remote *CreateRemote,
	saveMirrorURL func(ctx context.Context, mirrorURL string) error,
	compensate func(ctx context.Context) error,
) error {
	ctx, span := tracer.Start(ctx, "mirror.Create")
	defer span.End()

	if err := insert(ctx); err != nil {
		return err
	}
	if remote == nil {
		return nil
	}
	span.SetAttributes(attribute.String("mirror.collection_url", remote.CollectionURL))

	mirrorURL, err := s.client.CreateMirror(ctx, remote.CollectionURL, remote.Body)
	if err != nil {
		span.SetStatus(codes.Error, "peer create failed")
		s.logger.Warn("mirror create failed, compensating", "collection_url", remote.CollectionURL, "error", err)
		if compErr := compensate(ctx); compErr != nil {
			// The local row now exists without its mirror; operators must
			// reconcile. Returning pending-relations either way.
			s.logger.Error("mirror compensation failed", "collection_url", remote.CollectionURL, "error", compErr)
		}
		return dErrors.New(dErrors.CodePendingRelations, "the relation could not be mirrored in the remote service")
	}

	if err := saveMirrorURL(ctx, mirrorURL); err != nil {
		return err
	}
	return nil
}

// Delete commits the local row removal, then deletes the recorded mirror row.
// When the peer call fails, recreate restores the local row.
func (s *Syncer) Delete(
	ctx context.Context,
	remove func(ctx context.Context) error,
	mirrorURL string,
	recreate func(ctx context.Context) error,
) error {
	ctx, span := tracer.Start(ctx, "mirror.Delete")
	defer span.End()

	if err := remove(ctx); err != nil {
		return err
	}
	if mirrorURL == "" {
		return nil
	}
	span.SetAttributes(attribute.String("mirror.mirror_url", mirrorURL))

	if err := s.client.DeleteMirror(ctx, mirrorURL); err != nil {
		span.SetStatus(codes.Error, "peer delete failed")
		s.logger.Warn("mirror delete failed, restoring local row", "mirror_url", mirrorURL, "error", err)
		if compErr := recreate(ctx); compErr != nil {
			s.logger.Error("mirror restore failed", "mirror_url", mirrorURL, "error", compErr)
		}
		return dErrors.New(dErrors.CodePendingRelations, "the mirrored relation could not be removed from the remote service")
	}
	return nil
}

// Swap moves a relation from one target to another, treated as delete of the
// old mirror plus create of the new one. The old mirror is only deleted after
// the new one exists, so a peer failure leaves the relation in its previous
// consistent state.
func (s *Syncer) Swap(
	ctx context.Context,
	update func(ctx context.Context) error,
	oldMirrorURL string,
	remote *CreateRemote,
	saveMirrorURL func(ctx context.Context, mirrorURL string) error,
	revert func(ctx context.Context) error,
) error {
	ctx, span := tracer.Start(ctx, "mirror.Swap")
	defer span.End()

	if err := update(ctx); err != nil {
		return err
	}

	var newMirrorURL string
	if remote != nil {
		url, err := s.client.CreateMirror(ctx, remote.CollectionURL, remote.Body)
		if err != nil {
			span.SetStatus(codes.Error, "peer create failed")
			s.logger.Warn("mirror swap create failed, reverting", "collection_url", remote.CollectionURL, "error", err)
			if compErr := revert(ctx); compErr != nil {
				s.logger.Error("mirror swap revert failed", "error", compErr)
			}
			return dErrors.New(dErrors.CodePendingRelations, "the relation could not be mirrored in the remote service")
		}
		newMirrorURL = url
	}

	if err := saveMirrorURL(ctx, newMirrorURL); err != nil {
		return err
	}

	if oldMirrorURL != "" {
		if err := s.client.DeleteMirror(ctx, oldMirrorURL); err != nil {
			// The new mirror is in place; the stale one is logged for cleanup
			// rather than failing a successfully moved relation.
			s.logger.Error("stale mirror row left behind", "mirror_url", oldMirrorURL, "error", err)
		}
	}
	return nil
}
