// Package notify implements the outbound notification collaborator used
// by the pet lifecycle. Emails are not composed or sent here; the package
// posts a JSON job to an external mail-relay service and reports plain
// success or failure. The lifecycle treats that boolean as a gate: no
// delivery attempt confirmation, no state change.
//
// There are no retries and no error detail surfaced to callers. Failures
// are logged at warn level and collapse to false.
package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/meupet/go-pet-backend/internal/domain"
)

const defaultTimeout = 10 * time.Second

// Template names understood by the mail-relay service.
const (
	tmplRequestAction = "request_action"
	tmplDeactivate    = "deactivate"
)

// Mailer posts notification jobs to the mail-relay service.
type Mailer struct {
	client  *http.Client
	baseURL string
}

// New constructs a Mailer for the relay at baseURL. A non-positive
// timeout falls back to a conservative default.
func New(baseURL string, timeout time.Duration) *Mailer {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Mailer{
		client:  &http.Client{Timeout: timeout},
		baseURL: strings.TrimRight(baseURL, "/"),
	}
}

// NewWithTransport injects a RoundTripper, used by tests to stub the relay.
func NewWithTransport(baseURL string, timeout time.Duration, tr http.RoundTripper) *Mailer {
	m := New(baseURL, timeout)
	if tr != nil {
		m.client.Transport = tr
	}
	return m
}

// sendJob is the JSON body posted to the relay. The relay resolves the
// recipient from the owner id and renders the named template.
type sendJob struct {
	Template   string `json:"template"`
	OwnerID    string `json:"owner_id"`
	PetID      string `json:"pet_id"`
	PetName    string `json:"pet_name"`
	PetSlug    string `json:"pet_slug"`
	RequestKey string `json:"request_key,omitempty"`
}

// SendRequestActionEmail asks the relay to deliver the "is this register
// still needed?" email carrying the confirmation key. Returns true only
// when the relay accepted the job.
func (m *Mailer) SendRequestActionEmail(ctx context.Context, pet *domain.Pet) bool {
	return m.send(ctx, sendJob{
		Template:   tmplRequestAction,
		OwnerID:    pet.OwnerID,
		PetID:      pet.ID,
		PetName:    pet.Name,
		PetSlug:    pet.Slug,
		RequestKey: pet.RequestKey,
	})
}

// SendDeactivateEmail asks the relay to deliver the deactivation notice.
// Returns true only when the relay accepted the job.
func (m *Mailer) SendDeactivateEmail(ctx context.Context, pet *domain.Pet) bool {
	return m.send(ctx, sendJob{
		Template: tmplDeactivate,
		OwnerID:  pet.OwnerID,
		PetID:    pet.ID,
		PetName:  pet.Name,
		PetSlug:  pet.Slug,
	})
}

// send posts one job. Any transport error or non-2xx status is a failure.
func (m *Mailer) send(ctx context.Context, job sendJob) bool {
	body, err := json.Marshal(job)
	if err != nil {
		log.Warn().Err(err).Str("template", job.Template).Msg("notify: marshal job")
		return false
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, m.baseURL+"/send", bytes.NewReader(body))
	if err != nil {
		log.Warn().Err(err).Str("template", job.Template).Msg("notify: build request")
		return false
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := m.client.Do(req)
	if err != nil {
		log.Warn().Err(err).
			Str("template", job.Template).
			Str("pet_id", job.PetID).
			Msg("notify: relay unreachable")
		return false
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		log.Warn().
			Int("status", resp.StatusCode).
			Str("template", job.Template).
			Str("pet_id", job.PetID).
			Msg("notify: relay rejected job")
		return false
	}
	return true
}
