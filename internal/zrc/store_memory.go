package zrc

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

	zaken          map[domain.ZaakID]Zaak
	statussen      map[domain.StatusID]Status
	resultaten     map[domain.ResultaatID]Resultaat
	rollen         map[domain.RolID]Rol
	zaakObjecten   map[domain.ZaakObjectID]ZaakObject
	eigenschappen  map[domain.ZaakEigenschapID]ZaakEigenschap
	klantContacten map[domain.KlantContactID]KlantContact
	zios           map[domain.ZaakInformatieObjectID]ZaakInformatieObject
	zaakBesluiten  map[domain.ZaakBesluitID]ZaakBesluit
}

func NewInMemory() *InMemory {
	return &InMemory{
		zaken:          map[domain.ZaakID]Zaak{},
		statussen:      map[domain.StatusID]Status{},
		resultaten:     map[domain.ResultaatID]Resultaat{},
		rollen:         map[domain.RolID]Rol{},
		zaakObjecten:   map[domain.ZaakObjectID]ZaakObject{},
		eigenschappen:  map[domain.ZaakEigenschapID]ZaakEigenschap{},
		klantContacten: map[domain.KlantContactID]KlantContact{},
		zios:           map[domain.ZaakInformatieObjectID]ZaakInformatieObject{},
		zaakBesluiten:  map[domain.ZaakBesluitID]ZaakBesluit{},
	}
}

func (s *InMemory) CreateZaak(_ context.Context, zaak Zaak) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.zaken {
		if existing.Bronorganisatie == zaak.Bronorganisatie && existing.Identificatie == zaak.Identificatie {
			return sentinel.ErrConflict
		}
	}
	s.zaken[zaak.ID] = zaak
	return nil
}

func (s *InMemory) GetZaak(_ context.Context, id domain.ZaakID) (*Zaak, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	zaak, ok := s.zaken[id]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return &zaak, nil
}

func (s *InMemory) ListZaken(_ context.Context, filter ZaakFilter, authFilter authz.Filter) ([]Zaak, int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var matched []Zaak
	for _, zaak := range s.zaken {
		if !s.matches(zaak, filter, authFilter) {
			continue
		}
		matched = append(matched, zaak)
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

func (s *InMemory) matches(zaak Zaak, filter ZaakFilter, authFilter authz.Filter) bool {
	if !authFilter.Allows(refURL(zaak.Zaaktype), zaak.Vertrouwelijkheid) {
		return false
	}
	if filter.Bronorganisatie != "" && zaak.Bronorganisatie != filter.Bronorganisatie {
		return false
	}
	if filter.Identificatie != "" && zaak.Identificatie != filter.Identificatie {
		return false
	}
	if filter.ZaaktypeURL != "" && refURL(zaak.Zaaktype) != filter.ZaaktypeURL {
		return false
	}
	if filter.MaxVertrouwelijkheid != nil && !zaak.Vertrouwelijkheid.AtMost(*filter.MaxVertrouwelijkheid) {
		return false
	}
	if len(filter.Within) > 0 {
		within, err := geometryWithin(zaak.Zaakgeometrie, filter.Within)
		if err != nil || !within {
			return false
		}
	}
	return true
}

// refURL normalises a type reference for grant matching. Type references
// point into the catalog, so in practice they are remote URLs.
func refURL(ref reference.Ref) string {
	if ref.IsRemote() {
		return ref.URL()
	}
	return ref.String()
}

func (s *InMemory) UpdateZaak(_ context.Context, zaak Zaak) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.zaken[zaak.ID]; !ok {
		return sentinel.ErrNotFound
	}
	s.zaken[zaak.ID] = zaak
	return nil
}

func (s *InMemory) DeleteZaak(_ context.Context, id domain.ZaakID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.zaken[id]; !ok {
		return sentinel.ErrNotFound
	}
	delete(s.zaken, id)
	for sid, st := range s.statussen {
		if st.ZaakID == id {
			delete(s.statussen, sid)
		}
	}
	for rid, r := range s.resultaten {
		if r.ZaakID == id {
			delete(s.resultaten, rid)
		}
	}
	for rid, r := range s.rollen {
		if r.ZaakID == id {
			delete(s.rollen, rid)
		}
	}
	for oid, o := range s.zaakObjecten {
		if o.ZaakID == id {
			delete(s.zaakObjecten, oid)
		}
	}
	for eid, e := range s.eigenschappen {
		if e.ZaakID == id {
			delete(s.eigenschappen, eid)
		}
	}
	for kid, k := range s.klantContacten {
		if k.ZaakID == id {
			delete(s.klantContacten, kid)
		}
	}
	for zid, z := range s.zios {
		if z.ZaakID == id {
			delete(s.zios, zid)
		}
	}
	for bid, b := range s.zaakBesluiten {
		if b.ZaakID == id {
			delete(s.zaakBesluiten, bid)
		}
	}
	return nil
}

func (s *InMemory) LockZaak(_ context.Context, id domain.ZaakID) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if _, ok := s.zaken[id]; !ok {
		return sentinel.ErrNotFound
	}
	return nil
}

func (s *InMemory) IdentificatieExists(_ context.Context, bronorganisatie, identificatie string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, zaak := range s.zaken {
		if zaak.Bronorganisatie == bronorganisatie && zaak.Identificatie == identificatie {
			return true, nil
		}
	}
	return false, nil
}

func (s *InMemory) IsDeelzaak(_ context.Context, id domain.ZaakID) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	zaak, ok := s.zaken[id]
	if !ok {
		return false, sentinel.ErrNotFound
	}
	return !zaak.Hoofdzaak.IsZero(), nil
}

func (s *InMemory) CreateStatus(_ context.Context, status Status) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.statussen[status.ID] = status
	return nil
}

func (s *InMemory) GetStatus(_ context.Context, id domain.StatusID) (*Status, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	st, ok := s.statussen[id]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return &st, nil
}

func (s *InMemory) ListStatussen(_ context.Context, zaakID domain.ZaakID) ([]Status, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []Status
	for _, st := range s.statussen {
		if st.ZaakID == zaakID {
			out = append(out, st)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].DatumStatusGezet.Before(out[j].DatumStatusGezet) })
	return out, nil
}

func (s *InMemory) LatestStatus(ctx context.Context, zaakID domain.ZaakID) (*Status, error) {
	statussen, err := s.ListStatussen(ctx, zaakID)
	if err != nil || len(statussen) == 0 {
		return nil, err
	}
	latest := statussen[len(statussen)-1]
	return &latest, nil
}

func (s *InMemory) CreateResultaat(_ context.Context, resultaat Resultaat) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.resultaten {
		if existing.ZaakID == resultaat.ZaakID {
			return sentinel.ErrConflict
		}
	}
	s.resultaten[resultaat.ID] = resultaat
	return nil
}

func (s *InMemory) GetResultaat(_ context.Context, id domain.ResultaatID) (*Resultaat, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.resultaten[id]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return &r, nil
}

func (s *InMemory) GetResultaatByZaak(_ context.Context, zaakID domain.ZaakID) (*Resultaat, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, r := range s.resultaten {
		if r.ZaakID == zaakID {
			res := r
			return &res, nil
		}
	}
	return nil, sentinel.ErrNotFound
}

func (s *InMemory) DeleteResultaat(_ context.Context, id domain.ResultaatID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.resultaten[id]; !ok {
		return sentinel.ErrNotFound
	}
	delete(s.resultaten, id)
	return nil
}

func (s *InMemory) CreateRol(_ context.Context, rol Rol) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rollen[rol.ID] = rol
	return nil
}

func (s *InMemory) GetRol(_ context.Context, id domain.RolID) (*Rol, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.rollen[id]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return &r, nil
}

func (s *InMemory) ListRollen(_ context.Context, zaakID domain.ZaakID) ([]Rol, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []Rol
	for _, r := range s.rollen {
		if r.ZaakID == zaakID {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Registratiedatum.Before(out[j].Registratiedatum) })
	return out, nil
}

func (s *InMemory) DeleteRol(_ context.Context, id domain.RolID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.rollen[id]; !ok {
		return sentinel.ErrNotFound
	}
	delete(s.rollen, id)
	return nil
}

func (s *InMemory) CreateZaakObject(_ context.Context, zo ZaakObject) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.zaakObjecten[zo.ID] = zo
	return nil
}

func (s *InMemory) GetZaakObject(_ context.Context, id domain.ZaakObjectID) (*ZaakObject, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	zo, ok := s.zaakObjecten[id]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return &zo, nil
}

func (s *InMemory) ListZaakObjecten(_ context.Context, zaakID domain.ZaakID) ([]ZaakObject, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []ZaakObject
	for _, zo := range s.zaakObjecten {
		if zo.ZaakID == zaakID {
			out = append(out, zo)
		}
	}
	return out, nil
}

func (s *InMemory) FindZaakObjectByObjectURL(_ context.Context, zaakID domain.ZaakID, objectURL string) (*ZaakObject, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, zo := range s.zaakObjecten {
		if zo.ZaakID == zaakID && zo.Object == objectURL {
			found := zo
			return &found, nil
		}
	}
	return nil, sentinel.ErrNotFound
}

func (s *InMemory) DeleteZaakObject(_ context.Context, id domain.ZaakObjectID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.zaakObjecten[id]; !ok {
		return sentinel.ErrNotFound
	}
	delete(s.zaakObjecten, id)
	return nil
}

func (s *InMemory) CreateZaakEigenschap(_ context.Context, ze ZaakEigenschap) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.eigenschappen[ze.ID] = ze
	return nil
}

func (s *InMemory) GetZaakEigenschap(_ context.Context, id domain.ZaakEigenschapID) (*ZaakEigenschap, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ze, ok := s.eigenschappen[id]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return &ze, nil
}

func (s *InMemory) ListZaakEigenschappen(_ context.Context, zaakID domain.ZaakID) ([]ZaakEigenschap, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []ZaakEigenschap
	for _, ze := range s.eigenschappen {
		if ze.ZaakID == zaakID {
			out = append(out, ze)
		}
	}
	return out, nil
}

func (s *InMemory) DeleteZaakEigenschap(_ context.Context, id domain.ZaakEigenschapID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.eigenschappen[id]; !ok {
		return sentinel.ErrNotFound
	}
	delete(s.eigenschappen, id)
	return nil
}

func (s *InMemory) CreateKlantContact(_ context.Context, kc KlantContact) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.klantContacten[kc.ID] = kc
	return nil
}

func (s *InMemory) ListKlantContacten(_ context.Context, zaakID domain.ZaakID) ([]KlantContact, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []KlantContact
	for _, kc := range s.klantContacten {
		if kc.ZaakID == zaakID {
			out = append(out, kc)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Datumtijd.Before(out[j].Datumtijd) })
	return out, nil
}

func (s *InMemory) CreateZaakInformatieObject(_ context.Context, zio ZaakInformatieObject) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.zios {
		if existing.ZaakID == zio.ZaakID && existing.InformatieObject.Equal(zio.InformatieObject) {
			return sentinel.ErrConflict
		}
	}
	s.zios[zio.ID] = zio
	return nil
}

func (s *InMemory) GetZaakInformatieObject(_ context.Context, id domain.ZaakInformatieObjectID) (*ZaakInformatieObject, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	zio, ok := s.zios[id]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return &zio, nil
}

func (s *InMemory) ListZaakInformatieObjecten(_ context.Context, zaakID domain.ZaakID) ([]ZaakInformatieObject, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []ZaakInformatieObject
	for _, zio := range s.zios {
		if zio.ZaakID == zaakID {
			out = append(out, zio)
		}
	}
	return out, nil
}

func (s *InMemory) SetZaakInformatieObjectMirrorURL(_ context.Context, id domain.ZaakInformatieObjectID, mirrorURL string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	zio, ok := s.zios[id]
	if !ok {
		return sentinel.ErrNotFound
	}
	zio.MirrorURL = mirrorURL
	s.zios[id] = zio
	return nil
}

func (s *InMemory) DeleteZaakInformatieObject(_ context.Context, id domain.ZaakInformatieObjectID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.zios[id]; !ok {
		return sentinel.ErrNotFound
	}
	delete(s.zios, id)
	return nil
}

func (s *InMemory) CreateZaakBesluit(_ context.Context, zb ZaakBesluit) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.zaakBesluiten {
		if existing.ZaakID == zb.ZaakID && existing.Besluit.Equal(zb.Besluit) {
			return sentinel.ErrConflict
		}
	}
	s.zaakBesluiten[zb.ID] = zb
	return nil
}

func (s *InMemory) GetZaakBesluit(_ context.Context, zaakID domain.ZaakID, id domain.ZaakBesluitID) (*ZaakBesluit, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	zb, ok := s.zaakBesluiten[id]
	if !ok || zb.ZaakID != zaakID {
		return nil, sentinel.ErrNotFound
	}
	return &zb, nil
}

func (s *InMemory) ListZaakBesluiten(_ context.Context, zaakID domain.ZaakID) ([]ZaakBesluit, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []ZaakBesluit
	for _, zb := range s.zaakBesluiten {
		if zb.ZaakID == zaakID {
			out = append(out, zb)
		}
	}
	return out, nil
}

func (s *InMemory) DeleteZaakBesluit(_ context.Context, zaakID domain.ZaakID, id domain.ZaakBesluitID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	zb, ok := s.zaakBesluiten[id]
	if !ok || zb.ZaakID != zaakID {
		return sentinel.ErrNotFound
	}
	delete(s.zaakBesluiten, id)
	return nil
}
