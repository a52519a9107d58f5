// Package notifications implements the transactional outbox for resource
// notifications. Mutations enqueue a notification inside their own
// transaction; a background worker delivers committed rows to Kafka, so a
// rolled-back mutation can never notify and a committed one eventually will.
package notifications

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Kanaal is the notification channel a message belongs to. Each hosted
// component publishes on its own channel.
type Kanaal string

const (
	KanaalZaken      Kanaal = "zaken"
	KanaalBesluiten  Kanaal = "besluiten"
	KanaalDocumenten Kanaal = "documenten"
)

// Notificatie is the message body published to subscribers.
type Notificatie struct {
	Kanaal       Kanaal            `json:"kanaal"`
	HoofdObject  string            `json:"hoofdObject"`
	Resource     string            `json:"resource"`
	ResourceURL  string            `json:"resourceUrl"`
	Actie        string            `json:"actie"`
	AanmaakDatum time.Time         `json:"aanmaakdatum"`
	Kenmerken    map[string]string `json:"kenmerken,omitempty"`
}

// Status tracks an outbox row through delivery.
type Status string

const (
	StatusPending   Status = "pending"
	StatusDelivered Status = "delivered"
	StatusFailed    Status = "failed"
)

const maxAttempts = 5

// OutboxItem is one queued message. Topic is the Kafka topic the payload is
// delivered to; notifications use their channel name, cloud events use the
// dedicated cloud event topic.
type OutboxItem struct {
	ID          uuid.UUID
	Topic       string
	Payload     json.RawMessage
	Status      Status
	Attempts    int
	LastError   string
	CreatedAt   time.Time
	DeliveredAt *time.Time
}

// CloudEvent is the CNCF-format envelope emitted alongside notifications when
// cloud events are enabled.
type CloudEvent struct {
	ID              string    `json:"id"`
	SpecVersion     string    `json:"specversion"`
	Source          string    `json:"source"`
	Type            string    `json:"type"`
	Subject         string    `json:"subject,omitempty"`
	Time            time.Time `json:"time"`
	DataRef         string    `json:"dataref,omitempty"`
	DataContentType string    `json:"datacontenttype"`
	Data            any       `json:"data,omitempty"`
}

// Well-known cloud event types for the zaken domain. Besluit and document
// events follow the same naming under their own prefixes.
const (
	EventZaakGeregistreerd = "nl.overheid.zaken.zaak-geregistreerd"
	EventZaakGeopend       = "nl.overheid.zaken.zaak-geopend"
	EventZaakGemuteerd     = "nl.overheid.zaken.zaak-gemuteerd"
	EventZaakBijgewerkt    = "nl.overheid.zaken.zaak-bijgewerkt"
	EventZaakOpgeschort    = "nl.overheid.zaken.zaak-opgeschort"
	EventZaakVerlengd      = "nl.overheid.zaken.zaak-verlengd"
	EventZaakAfgesloten    = "nl.overheid.zaken.zaak-afgesloten"
	EventZaakHeropend      = "nl.overheid.zaken.zaak-heropend"
	EventZaakVerwijderd    = "nl.overheid.zaken.zaak-verwijderd"
	EventZaakGekoppeld     = "nl.overheid.zaken.zaak-gekoppeld"
	EventZaakOntkoppeld    = "nl.overheid.zaken.zaak-ontkoppeld"

	EventBesluitGeregistreerd = "nl.overheid.besluiten.besluit-geregistreerd"
	EventBesluitBijgewerkt    = "nl.overheid.besluiten.besluit-bijgewerkt"
	EventBesluitVerwijderd    = "nl.overheid.besluiten.besluit-verwijderd"

	EventDocumentGeregistreerd = "nl.overheid.documenten.document-geregistreerd"
	EventDocumentBijgewerkt    = "nl.overheid.documenten.document-bijgewerkt"
	EventDocumentVerwijderd    = "nl.overheid.documenten.document-verwijderd"
)
