package drc

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

	documenten      map[domain.DocumentID]InformatieObject
	versies         map[domain.DocumentID][]Versie
	bestandsdelen   map[domain.BestandsDeelID]BestandsDeel
	gebruiksrechten map[domain.GebruiksrechtenID]Gebruiksrechten
	verzendingen    map[domain.VerzendingID]Verzending
	oios            map[domain.ObjectInformatieObjectID]ObjectInformatieObject
}

func NewInMemory() *InMemory {
	return &InMemory{
		documenten:      map[domain.DocumentID]InformatieObject{},
		versies:         map[domain.DocumentID][]Versie{},
		bestandsdelen:   map[domain.BestandsDeelID]BestandsDeel{},
		gebruiksrechten: map[domain.GebruiksrechtenID]Gebruiksrechten{},
		verzendingen:    map[domain.VerzendingID]Verzending{},
		oios:            map[domain.ObjectInformatieObjectID]ObjectInformatieObject{},
	}
}

func refURL(ref reference.Ref) string {
	if ref.IsRemote() {
		return ref.URL()
	}
	return ref.String()
}

func (s *InMemory) CreateDocument(_ context.Context, doc InformatieObject, versie Versie) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.documenten {
		if existing.Bronorganisatie == doc.Bronorganisatie && existing.Identificatie == doc.Identificatie {
			return sentinel.ErrConflict
		}
	}
	s.documenten[doc.ID] = doc
	s.versies[doc.ID] = []Versie{versie}
	return nil
}

func (s *InMemory) GetInformatieObject(_ context.Context, id domain.DocumentID) (*InformatieObject, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	doc, ok := s.documenten[id]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return &doc, nil
}

func (s *InMemory) GetVersie(_ context.Context, id domain.DocumentID, versie int) (*Versie, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.findVersie(id, versie)
}

// findVersie expects the read lock to be held.
func (s *InMemory) findVersie(id domain.DocumentID, versie int) (*Versie, error) {
	all, ok := s.versies[id]
	if !ok || len(all) == 0 {
		return nil, sentinel.ErrNotFound
	}
	if versie == 0 {
		v := all[len(all)-1]
		return &v, nil
	}
	for _, v := range all {
		if v.Versie == versie {
			return &v, nil
		}
	}
	return nil, sentinel.ErrNotFound
}

func (s *InMemory) ListDocuments(_ context.Context, filter DocumentFilter, authFilter authz.Filter) ([]Document, int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var matched []Document
	for id, doc := range s.documenten {
		if !authFilter.Allows(refURL(doc.Informatieobjecttype), doc.Vertrouwelijkheid) {
			continue
		}
		if filter.Bronorganisatie != "" && doc.Bronorganisatie != filter.Bronorganisatie {
			continue
		}
		if filter.Identificatie != "" && doc.Identificatie != filter.Identificatie {
			continue
		}
		latest, err := s.findVersie(id, 0)
		if err != nil {
			continue
		}
		matched = append(matched, Document{InformatieObject: doc, Versie: *latest})
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

func (s *InMemory) ListVersies(_ context.Context, id domain.DocumentID) ([]Versie, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	all := make([]Versie, len(s.versies[id]))
	copy(all, s.versies[id])
	return all, nil
}

func (s *InMemory) AppendVersie(_ context.Context, versie Versie) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.documenten[versie.DocumentID]; !ok {
		return sentinel.ErrNotFound
	}
	for _, v := range s.versies[versie.DocumentID] {
		if v.Versie == versie.Versie {
			return sentinel.ErrConflict
		}
	}
	s.versies[versie.DocumentID] = append(s.versies[versie.DocumentID], versie)
	return nil
}

func (s *InMemory) UpdateCanoniek(_ context.Context, doc InformatieObject) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.documenten[doc.ID]; !ok {
		return sentinel.ErrNotFound
	}
	s.documenten[doc.ID] = doc
	return nil
}

func (s *InMemory) SetLock(_ context.Context, id domain.DocumentID, lock string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	doc, ok := s.documenten[id]
	if !ok {
		return sentinel.ErrNotFound
	}
	doc.Lock = lock
	s.documenten[id] = doc
	return nil
}

func (s *InMemory) SetVersieContent(_ context.Context, id domain.DocumentID, versie int, contentKey string, omvang *int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	all := s.versies[id]
	for i, v := range all {
		if v.Versie == versie {
			all[i].ContentKey = contentKey
			all[i].Bestandsomvang = omvang
			return nil
		}
	}
	return sentinel.ErrNotFound
}

func (s *InMemory) DeleteDocument(_ context.Context, id domain.DocumentID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.documenten[id]; !ok {
		return sentinel.ErrNotFound
	}
	delete(s.documenten, id)
	delete(s.versies, id)
	for deelID, deel := range s.bestandsdelen {
		if deel.DocumentID == id {
			delete(s.bestandsdelen, deelID)
		}
	}
	for grID, gr := range s.gebruiksrechten {
		if gr.DocumentID == id {
			delete(s.gebruiksrechten, grID)
		}
	}
	for vzID, vz := range s.verzendingen {
		if vz.DocumentID == id {
			delete(s.verzendingen, vzID)
		}
	}
	for oioID, oio := range s.oios {
		if oio.DocumentID == id {
			delete(s.oios, oioID)
		}
	}
	return nil
}

func (s *InMemory) IdentificatieExists(_ context.Context, bronorganisatie, identificatie string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, doc := range s.documenten {
		if doc.Bronorganisatie == bronorganisatie && doc.Identificatie == identificatie {
			return true, nil
		}
	}
	return false, nil
}

func (s *InMemory) CreateBestandsDelen(_ context.Context, delen []BestandsDeel) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, deel := range delen {
		s.bestandsdelen[deel.ID] = deel
	}
	return nil
}

func (s *InMemory) GetBestandsDeel(_ context.Context, id domain.BestandsDeelID) (*BestandsDeel, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	deel, ok := s.bestandsdelen[id]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return &deel, nil
}

func (s *InMemory) ListBestandsDelen(_ context.Context, id domain.DocumentID) ([]BestandsDeel, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var delen []BestandsDeel
	for _, deel := range s.bestandsdelen {
		if deel.DocumentID == id {
			delen = append(delen, deel)
		}
	}
	sort.Slice(delen, func(i, j int) bool { return delen[i].Volgnummer < delen[j].Volgnummer })
	return delen, nil
}

func (s *InMemory) MarkBestandsDeelVoltooid(_ context.Context, id domain.BestandsDeelID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	deel, ok := s.bestandsdelen[id]
	if !ok {
		return sentinel.ErrNotFound
	}
	deel.Voltooid = true
	s.bestandsdelen[id] = deel
	return nil
}

func (s *InMemory) DeleteBestandsDelen(_ context.Context, id domain.DocumentID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for deelID, deel := range s.bestandsdelen {
		if deel.DocumentID == id {
			delete(s.bestandsdelen, deelID)
		}
	}
	return nil
}

func (s *InMemory) CreateGebruiksrechten(_ context.Context, gr Gebruiksrechten) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.documenten[gr.DocumentID]; !ok {
		return sentinel.ErrNotFound
	}
	s.gebruiksrechten[gr.ID] = gr
	return nil
}

func (s *InMemory) GetGebruiksrechten(_ context.Context, id domain.GebruiksrechtenID) (*Gebruiksrechten, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	gr, ok := s.gebruiksrechten[id]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return &gr, nil
}

func (s *InMemory) ListGebruiksrechten(_ context.Context, id domain.DocumentID) ([]Gebruiksrechten, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var rechten []Gebruiksrechten
	for _, gr := range s.gebruiksrechten {
		if gr.DocumentID == id {
			rechten = append(rechten, gr)
		}
	}
	sort.Slice(rechten, func(i, j int) bool {
		return rechten[j].Startdatum.After(rechten[i].Startdatum)
	})
	return rechten, nil
}

func (s *InMemory) DeleteGebruiksrechten(_ context.Context, id domain.GebruiksrechtenID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.gebruiksrechten[id]; !ok {
		return sentinel.ErrNotFound
	}
	delete(s.gebruiksrechten, id)
	return nil
}

func (s *InMemory) CreateVerzending(_ context.Context, vz Verzending) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.documenten[vz.DocumentID]; !ok {
		return sentinel.ErrNotFound
	}
	s.verzendingen[vz.ID] = vz
	return nil
}

func (s *InMemory) GetVerzending(_ context.Context, id domain.VerzendingID) (*Verzending, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	vz, ok := s.verzendingen[id]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return &vz, nil
}

func (s *InMemory) ListVerzendingen(_ context.Context, id domain.DocumentID) ([]Verzending, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var all []Verzending
	for _, vz := range s.verzendingen {
		if vz.DocumentID == id {
			all = append(all, vz)
		}
	}
	sort.Slice(all, func(i, j int) bool { return all[i].Betrokkene < all[j].Betrokkene })
	return all, nil
}

func (s *InMemory) DeleteVerzending(_ context.Context, id domain.VerzendingID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.verzendingen[id]; !ok {
		return sentinel.ErrNotFound
	}
	delete(s.verzendingen, id)
	return nil
}

func (s *InMemory) CreateObjectInformatieObject(_ context.Context, oio ObjectInformatieObject) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.documenten[oio.DocumentID]; !ok {
		return sentinel.ErrNotFound
	}
	for _, existing := range s.oios {
		if existing.DocumentID == oio.DocumentID && refURL(existing.Object) == refURL(oio.Object) {
			return sentinel.ErrConflict
		}
	}
	s.oios[oio.ID] = oio
	return nil
}

func (s *InMemory) GetObjectInformatieObject(_ context.Context, id domain.ObjectInformatieObjectID) (*ObjectInformatieObject, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	oio, ok := s.oios[id]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return &oio, nil
}

func (s *InMemory) ListObjectInformatieObjecten(_ context.Context, filter OIOFilter) ([]ObjectInformatieObject, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var all []ObjectInformatieObject
	for _, oio := range s.oios {
		if filter.DocumentID != nil && oio.DocumentID != *filter.DocumentID {
			continue
		}
		if filter.ObjectURL != "" && refURL(oio.Object) != filter.ObjectURL {
			continue
		}
		all = append(all, oio)
	}
	sort.Slice(all, func(i, j int) bool { return refURL(all[i].Object) < refURL(all[j].Object) })
	return all, nil
}

func (s *InMemory) DeleteObjectInformatieObject(_ context.Context, id domain.ObjectInformatieObjectID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.oios[id]; !ok {
		return sentinel.ErrNotFound
	}
	delete(s.oios, id)
	return nil
}
