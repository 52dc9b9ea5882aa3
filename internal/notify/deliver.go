// Package notify delivers reminders through two cooperating halves: a
// session-scoped timer registry (client context) and a periodic sweep over
// the notification store (server context). Each reminder is delivered at
// most once per context; the store's atomic claim arbitrates between
// concurrent sweeps.
package notify

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	webpush "github.com/SherClockHolmes/webpush-go"

	"github.com/Github-Sonali/ai-calendar/internal/store"
	ws "github.com/Github-Sonali/ai-calendar/internal/websocket"
)

// ErrExpired is returned when a push subscription is no longer valid (410 Gone).
var ErrExpired = errors.New("push subscription expired")

// Delivery is one reminder to show a user. Fire-and-forget: no delivery
// receipt is relied upon.
type Delivery struct {
	UserID             string `json:"user_id"`
	Title              string `json:"title"`
	Body               string `json:"body"`
	Tag                string `json:"tag,omitempty"`
	RequireInteraction bool   `json:"require_interaction,omitempty"`
}

// Deliverer is the delivery channel for reminders.
type Deliverer interface {
	Deliver(d Delivery) error
}

// VAPIDConfig holds web push signing keys.
type VAPIDConfig struct {
	PublicKey  string
	PrivateKey string
}

// PushDeliverer fans a delivery out to all of the user's web push
// subscriptions, pruning expired ones as it goes.
type PushDeliverer struct {
	publicKey  string
	privateKey string
	subs       *store.PushStore
	logger     *slog.Logger
}

func NewPushDeliverer(cfg VAPIDConfig, subs *store.PushStore, logger *slog.Logger) *PushDeliverer {
	return &PushDeliverer{
		publicKey:  cfg.PublicKey,
		privateKey: cfg.PrivateKey,
		subs:       subs,
		logger:     logger,
	}
}

// VAPIDPublicKey returns the public key clients subscribe with.
func (p *PushDeliverer) VAPIDPublicKey() string {
	return p.publicKey
}

func (p *PushDeliverer) Deliver(d Delivery) error {
	subs, err := p.subs.ListByUser(d.UserID)
	if err != nil {
		return fmt.Errorf("list subscriptions: %w", err)
	}

	payload, err := json.Marshal(d)
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}

	var failures int
	for _, sub := range subs {
		if err := p.send(payload, sub.Endpoint, sub.P256dhKey, sub.AuthKey); err != nil {
			if errors.Is(err, ErrExpired) {
				p.subs.DeleteByEndpoint(sub.Endpoint)
				continue
			}
			failures++
			p.logger.Warn("push delivery failed", "endpoint", sub.Endpoint, "error", err)
		}
	}
	if failures > 0 && failures == len(subs) {
		return fmt.Errorf("push delivery failed for all %d subscriptions", failures)
	}
	return nil
}

func (p *PushDeliverer) send(payload []byte, endpoint, p256dh, auth string) error {
	resp, err := webpush.SendNotification(payload, &webpush.Subscription{
		Endpoint: endpoint,
		Keys: webpush.Keys{
			P256dh: p256dh,
			Auth:   auth,
		},
	}, &webpush.Options{
		VAPIDPublicKey:  p.publicKey,
		VAPIDPrivateKey: p.privateKey,
		Subscriber:      "mailto:noreply@ai-calendar.local",
		TTL:             86400,
	})
	if err != nil {
		return fmt.Errorf("send push: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusGone {
		return ErrExpired
	}
	if resp.StatusCode >= 400 {
		return fmt.Errorf("push service returned %d", resp.StatusCode)
	}
	return nil
}

// HubDeliverer shows reminders to connected browser sessions over the
// real-time hub.
type HubDeliverer struct {
	hub *ws.Hub
}

func NewHubDeliverer(hub *ws.Hub) *HubDeliverer {
	return &HubDeliverer{hub: hub}
}

func (h *HubDeliverer) Deliver(d Delivery) error {
	h.hub.Publish(d.UserID, ws.Message{
		Type:   "notification_delivered",
		Entity: "notification",
		Action: "delivered",
		Extra: map[string]any{
			"user_id":             d.UserID,
			"title":               d.Title,
			"body":                d.Body,
			"tag":                 d.Tag,
			"require_interaction": d.RequireInteraction,
		},
	})
	return nil
}

// LogDeliverer is the fallback channel when no push keys are configured.
type LogDeliverer struct {
	logger *slog.Logger
}

func NewLogDeliverer(logger *slog.Logger) *LogDeliverer {
	return &LogDeliverer{logger: logger}
}

func (l *LogDeliverer) Deliver(d Delivery) error {
	l.logger.Info("reminder", "user_id", d.UserID, "title", d.Title, "body", d.Body, "tag", d.Tag)
	return nil
}

// Fanout delivers through every channel, reporting all failures together.
type Fanout []Deliverer

func (f Fanout) Deliver(d Delivery) error {
	var errs []error
	for _, deliverer := range f {
		if err := deliverer.Deliver(d); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
