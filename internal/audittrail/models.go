// Package audittrail records who changed what on every mutation. Entries are
// written in the same transaction as the mutation they describe, so a trail
// line without its mutation (or the reverse) cannot exist.
package audittrail

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Actie is the kind of mutation an entry describes.
type Actie string

const (
	ActieCreate        Actie = "create"
	ActieUpdate        Actie = "update"
	ActiePartialUpdate Actie = "partial_update"
	ActieDestroy       Actie = "destroy"
)

// Wijzigingen holds the before and after snapshot of the mutated resource.
// Oud is nil on create, Nieuw is nil on destroy.
type Wijzigingen struct {
	Oud   json.RawMessage `json:"oud,omitempty"`
	Nieuw json.RawMessage `json:"nieuw,omitempty"`
}

// Entry is one audit trail line.
type Entry struct {
	UUID               uuid.UUID   `json:"uuid"`
	Bron               string      `json:"bron"`
	ApplicatieID       string      `json:"applicatieId"`
	ApplicatieWeergave string      `json:"applicatieWeergave"`
	GebruikersID       string      `json:"gebruikersId"`
	GebruikersWeergave string      `json:"gebruikersWeergave"`
	Actie              Actie       `json:"actie"`
	ActieWeergave      string      `json:"actieWeergave,omitempty"`
	Resultaat          int         `json:"resultaat"`
	HoofdObject        string      `json:"hoofdObject"`
	Resource           string      `json:"resource"`
	ResourceURL        string      `json:"resourceUrl"`
	ResourceWeergave   string      `json:"resourceWeergave"`
	Toelichting        string      `json:"toelichting"`
	AanmaakDatum       time.Time   `json:"aanmaakdatum"`
	Wijzigingen        Wijzigingen `json:"wijzigingen"`
}
