package brc

import (
	"context"
	"sort"
	"strings"
	"sync"

	"zgw/internal/authz"
	"zgw/internal/reference"
	"zgw/pkg/domain"
	"zgw/pkg/platform/sentinel"
)

// InMemory implements Store for tests and local development.
type InMemory struct {
	mu sync.RWMutex

	besluiten map[domain.BesluitID]Besluit
	bios      map[domain.BesluitInformatieObjectID]BesluitInformatieObject
}

func NewInMemory() *InMemory {
	return &InMemory{
		besluiten: map[domain.BesluitID]Besluit{},
		bios:      map[domain.BesluitInformatieObjectID]BesluitInformatieObject{},
	}
}

func (s *InMemory) CreateBesluit(_ context.Context, besluit Besluit) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.besluiten {
		if existing.VerantwoordelijkeOrganisatie == besluit.VerantwoordelijkeOrganisatie &&
			existing.Identificatie == besluit.Identificatie {
			return sentinel.ErrConflict
		}
	}
	s.besluiten[besluit.ID] = besluit
	return nil
}

func (s *InMemory) GetBesluit(_ context.Context, id domain.BesluitID) (*Besluit, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	besluit, ok := s.besluiten[id]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return &besluit, nil
}

func (s *InMemory) ListBesluiten(_ context.Context, filter BesluitFilter, authFilter authz.Filter) ([]Besluit, int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var matched []Besluit
	for _, besluit := range s.besluiten {
		if !matches(besluit, filter, authFilter) {
			continue
		}
		matched = append(matched, besluit)
	}
	sort.Slice(matched, func(i, j int) bool {
		return strings.Compare(matched[i].Identificatie, matched[j].Identificatie) < 0
	})

	total := len(matched)
	page, size := filter.Page, filter.PageSize
	if size > 0 {
		if page < 1 {
			page = 1
		}
		start := (page - 1) * size
		if start >= total {
			return nil, total, nil
		}
		end := min(start+size, total)
		matched = matched[start:end]
	}
	return matched, total, nil
}

func matches(besluit Besluit, filter BesluitFilter, authFilter authz.Filter) bool {
	// Decisions carry no confidentiality of their own; only the type rule
	// applies.
	if !authFilter.Allows(refURL(besluit.Besluittype), domain.VertrouwelijkheidOpenbaar) {
		return false
	}
	if filter.VerantwoordelijkeOrganisatie != "" && besluit.VerantwoordelijkeOrganisatie != filter.VerantwoordelijkeOrganisatie {
		return false
	}
	if filter.Identificatie != "" && besluit.Identificatie != filter.Identificatie {
		return false
	}
	if filter.BesluittypeURL != "" && refURL(besluit.Besluittype) != filter.BesluittypeURL {
		return false
	}
	if filter.ZaakURL != "" && refURL(besluit.Zaak) != filter.ZaakURL {
		return false
	}
	return true
}

// refURL normalises a reference for filter matching. Type references point
// into the catalog, so in practice they are remote URLs.
func refURL(ref reference.Ref) string {
	if ref.IsRemote() {
		return ref.URL()
	}
	return ref.String()
}

func (s *InMemory) UpdateBesluit(_ context.Context, besluit Besluit) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.besluiten[besluit.ID]; !ok {
		return sentinel.ErrNotFound
	}
	s.besluiten[besluit.ID] = besluit
	return nil
}

func (s *InMemory) DeleteBesluit(_ context.Context, id domain.BesluitID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.besluiten[id]; !ok {
		return sentinel.ErrNotFound
	}
	delete(s.besluiten, id)
	for bid, bio := range s.bios {
		if bio.BesluitID == id {
			delete(s.bios, bid)
		}
	}
	return nil
}

func (s *InMemory) SetZaakMirrorURL(_ context.Context, id domain.BesluitID, mirrorURL string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	besluit, ok := s.besluiten[id]
	if !ok {
		return sentinel.ErrNotFound
	}
	besluit.ZaakMirrorURL = mirrorURL
	s.besluiten[id] = besluit
	return nil
}

func (s *InMemory) IdentificatieExists(_ context.Context, verantwoordelijkeOrganisatie, identificatie string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, besluit := range s.besluiten {
		if besluit.VerantwoordelijkeOrganisatie == verantwoordelijkeOrganisatie && besluit.Identificatie == identificatie {
			return true, nil
		}
	}
	return false, nil
}

func (s *InMemory) CreateBesluitInformatieObject(_ context.Context, bio BesluitInformatieObject) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.bios {
		if existing.BesluitID == bio.BesluitID && existing.InformatieObject.Equal(bio.InformatieObject) {
			return sentinel.ErrConflict
		}
	}
	s.bios[bio.ID] = bio
	return nil
}

func (s *InMemory) GetBesluitInformatieObject(_ context.Context, id domain.BesluitInformatieObjectID) (*BesluitInformatieObject, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	bio, ok := s.bios[id]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return &bio, nil
}

func (s *InMemory) ListBesluitInformatieObjecten(_ context.Context, besluitID domain.BesluitID) ([]BesluitInformatieObject, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []BesluitInformatieObject
	for _, bio := range s.bios {
		if bio.BesluitID == besluitID {
			out = append(out, bio)
		}
	}
	return out, nil
}

func (s *InMemory) SetBesluitInformatieObjectMirrorURL(_ context.Context, id domain.BesluitInformatieObjectID, mirrorURL string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	bio, ok := s.bios[id]
	if !ok {
		return sentinel.ErrNotFound
	}
	bio.MirrorURL = mirrorURL
	s.bios[id] = bio
	return nil
}

func (s *InMemory) DeleteBesluitInformatieObject(_ context.Context, id domain.BesluitInformatieObjectID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.bios[id]; !ok {
		return sentinel.ErrNotFound
	}
	delete(s.bios, id)
	return nil
}
