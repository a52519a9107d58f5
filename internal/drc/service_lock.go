package drc

import (
	"bytes"
	"context"
	"io"

	"zgw/pkg/domain"
	dErrors "zgw/pkg/domain-errors"
)

// checkLock validates a presented lock token against the canonical row.
func checkLock(doc *InformatieObject, lock string) error {
	if !doc.Locked() {
		return dErrors.New(dErrors.CodeUnlocked, "the document is not locked; lock it before mutating")
	}
	if lock != doc.Lock {
		return dErrors.New(dErrors.CodeIncorrectLockID, "the lock token does not match the active lock")
	}
	return nil
}

// Lock places the exclusive write lock on a document and returns the token.
func (s *Service) Lock(ctx context.Context, id domain.DocumentID) (string, error) {
	doc, err := s.store.GetInformatieObject(ctx, id)
	if err != nil {
		return "", err
	}
	if err := s.authz.Authorize(ctx, domain.ComponentDRC, domain.ScopeDocumentenLock, refURL(doc.Informatieobjecttype), doc.Vertrouwelijkheid); err != nil {
		return "", err
	}
	if doc.Locked() {
		return "", dErrors.New(dErrors.CodeExistingLock, "the document is already locked")
	}
	token := newLockToken()
	if err := s.store.SetLock(ctx, id, token); err != nil {
		return "", err
	}
	return token, nil
}

// Unlock releases the write lock. An empty token is a forced unlock, which
// requires the geforceerd-unlock scope and discards an incomplete chunked
// upload instead of rejecting it.
func (s *Service) Unlock(ctx context.Context, id domain.DocumentID, lock string) error {
	doc, err := s.store.GetInformatieObject(ctx, id)
	if err != nil {
		return err
	}
	force := lock == ""
	if force {
		if err := s.authz.Authorize(ctx, domain.ComponentDRC, domain.ScopeDocumentenGeforceerdUnlock, refURL(doc.Informatieobjecttype), doc.Vertrouwelijkheid); err != nil {
			return err
		}
		if !doc.Locked() {
			return dErrors.New(dErrors.CodeUnlocked, "the document is not locked")
		}
	} else if err := checkLock(doc, lock); err != nil {
		return err
	}

	delen, err := s.store.ListBestandsDelen(ctx, id)
	if err != nil {
		return err
	}
	if len(delen) == 0 {
		return s.store.SetLock(ctx, id, "")
	}

	complete := true
	for _, deel := range delen {
		if !deel.Voltooid {
			complete = false
			break
		}
	}

	if !complete {
		if !force {
			return dErrors.New(dErrors.CodeIncompleteUpload, "not all file parts have been uploaded")
		}
		// Forced unlock abandons the upload: the pending size is cleared and
		// the parts are discarded.
		return s.runTx(ctx, func(ctx context.Context) error {
			latest, err := s.store.GetVersie(ctx, id, 0)
			if err != nil {
				return err
			}
			if err := s.store.SetVersieContent(ctx, id, latest.Versie, "", nil); err != nil {
				return err
			}
			if err := s.discardBestandsdelen(ctx, id); err != nil {
				return err
			}
			return s.store.SetLock(ctx, id, "")
		})
	}

	return s.runTx(ctx, func(ctx context.Context) error {
		return s.assembleUpload(ctx, id, delen)
	})
}

// assembleUpload concatenates the uploaded parts in order into the latest
// version's content and removes the part rows.
func (s *Service) assembleUpload(ctx context.Context, id domain.DocumentID, delen []BestandsDeel) error {
	latest, err := s.store.GetVersie(ctx, id, 0)
	if err != nil {
		return err
	}

	var buf bytes.Buffer
	for _, deel := range delen {
		r, err := s.backend.Get(ctx, partKey(id, deel.Volgnummer))
		if err != nil {
			return err
		}
		_, err = io.Copy(&buf, r)
		r.Close()
		if err != nil {
			return err
		}
	}

	key := contentKey(id, latest.Versie)
	size, err := s.backend.Put(ctx, key, &buf)
	if err != nil {
		return err
	}
	if err := s.store.SetVersieContent(ctx, id, latest.Versie, key, &size); err != nil {
		return err
	}
	if err := s.discardBestandsdelen(ctx, id); err != nil {
		return err
	}
	return s.store.SetLock(ctx, id, "")
}

// discardBestandsdelen removes part rows and their uploaded blobs.
func (s *Service) discardBestandsdelen(ctx context.Context, id domain.DocumentID) error {
	delen, err := s.store.ListBestandsDelen(ctx, id)
	if err != nil {
		return err
	}
	for _, deel := range delen {
		if !deel.Voltooid {
			continue
		}
		if err := s.backend.Delete(ctx, partKey(id, deel.Volgnummer)); err != nil {
			return err
		}
	}
	return s.store.DeleteBestandsDelen(ctx, id)
}

// UploadBestandsDeel stores one part of a chunked upload. The part's byte
// length must match the expected size exactly.
func (s *Service) UploadBestandsDeel(ctx context.Context, id domain.BestandsDeelID, lock string, inhoud []byte) (*BestandsDeel, error) {
	deel, err := s.store.GetBestandsDeel(ctx, id)
	if err != nil {
		return nil, err
	}
	doc, err := s.store.GetInformatieObject(ctx, deel.DocumentID)
	if err != nil {
		return nil, err
	}
	if err := s.authz.Authorize(ctx, domain.ComponentDRC, domain.ScopeDocumentenBijwerken, refURL(doc.Informatieobjecttype), doc.Vertrouwelijkheid); err != nil {
		return nil, err
	}
	if err := checkLock(doc, lock); err != nil {
		return nil, err
	}
	if int64(len(inhoud)) != deel.Omvang {
		return nil, dErrors.Param("inhoud", dErrors.CodeFileSize,
			"the uploaded part does not have the expected size")
	}

	if _, err := s.backend.Put(ctx, partKey(deel.DocumentID, deel.Volgnummer), bytes.NewReader(inhoud)); err != nil {
		return nil, err
	}
	if err := s.store.MarkBestandsDeelVoltooid(ctx, id); err != nil {
		return nil, err
	}
	deel.Voltooid = true
	return deel, nil
}
