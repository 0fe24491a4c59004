package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/messaging"
	"google.golang.org/api/option"

	"github.com/chachabrian/ridehail-backend/internal/apperrors"
	"github.com/chachabrian/ridehail-backend/internal/models"
	"github.com/chachabrian/ridehail-backend/internal/observability"
)

const pushTimeout = 10 * time.Second

// InitFirebase builds the FCM client. An empty credentials path disables
// push and returns (nil, nil).
func InitFirebase(ctx context.Context, serviceAccountPath string) (*messaging.Client, error) {
	if serviceAccountPath == "" {
		return nil, nil
	}

	app, err := firebase.NewApp(ctx, nil, option.WithCredentialsFile(serviceAccountPath))
	if err != nil {
		return nil, fmt.Errorf("error initializing firebase app: %w", err)
	}
	client, err := app.Messaging(ctx)
	if err != nil {
		return nil, fmt.Errorf("error getting messaging client: %w", err)
	}
	return client, nil
}

// multicastSender is the part of *messaging.Client the pusher uses.
type multicastSender interface {
	SendEachForMulticast(ctx context.Context, message *messaging.MulticastMessage) (*messaging.BatchResponse, error)
}

type pushTarget struct {
	role models.Role
	id   uint
}

// Pusher sends ride events to the counterpart's registered devices. With
// no FCM client it still records device tokens but sends nothing.
type Pusher struct {
	sender multicastSender
	tokens DeviceTokenStore
	log    *slog.Logger
}

// NewPusher accepts a nil client.
func NewPusher(client *messaging.Client, tokens DeviceTokenStore, log *slog.Logger) *Pusher {
	p := &Pusher{tokens: tokens, log: log}
	if client != nil {
		p.sender = client
	}
	return p
}

func (p *Pusher) Enabled() bool { return p.sender != nil }

// RegisterToken stores an FCM token for the caller. Re-registering a token
// moves it to the new owner.
func (p *Pusher) RegisterToken(ctx context.Context, principal Principal, token string) error {
	token = strings.TrimSpace(token)
	if principal.ID == 0 {
		return apperrors.Unauthenticated("Not authorized")
	}
	if token == "" {
		return apperrors.InvalidInput("token is required")
	}

	err := p.tokens.SaveDeviceToken(ctx, &models.DeviceToken{
		PrincipalID: principal.ID,
		Role:        principal.Role,
		Token:       token,
	})
	if err != nil {
		p.log.ErrorContext(ctx, "failed to save device token", "error", err)
		return apperrors.Internal("Failed to save device token", err)
	}
	return nil
}

// RideChanged pushes in the background; the request that caused the event
// does not wait for FCM.
func (p *Pusher) RideChanged(ctx context.Context, ev RideEvent) {
	if p.sender == nil {
		return
	}
	targets := pushTargets(ev)
	released := releasedDriver(ev)
	if len(targets) == 0 && released == nil {
		return
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), pushTimeout)
		defer cancel()
		if len(targets) > 0 {
			title, body := pushText(ev)
			p.push(ctx, ev, targets, title, body)
		}
		if released != nil {
			p.push(ctx, ev, []pushTarget{*released},
				"Ride Reassigned", fmt.Sprintf("Ride #%d was assigned to another driver", ev.RideID))
		}
	}()
}

func (p *Pusher) push(ctx context.Context, ev RideEvent, targets []pushTarget, title, body string) {
	var tokens []string
	for _, t := range targets {
		ts, err := p.tokens.DeviceTokens(ctx, t.role, t.id)
		if err != nil {
			p.log.WarnContext(ctx, "failed to load device tokens", "role", t.role, "id", t.id, "error", err)
			continue
		}
		tokens = append(tokens, ts...)
	}
	if len(tokens) == 0 {
		return
	}

	msg := &messaging.MulticastMessage{
		Notification: &messaging.Notification{Title: title, Body: body},
		Data: map[string]string{
			"type":          ev.Type,
			"rideId":        fmt.Sprintf("%d", ev.RideID),
			"status":        string(ev.Status),
			"paymentStatus": string(ev.PaymentStatus),
		},
		Tokens: tokens,
		Android: &messaging.AndroidConfig{
			Priority: "high",
			Notification: &messaging.AndroidNotification{
				ChannelID:    "ridehail_rides",
				DefaultSound: true,
			},
		},
	}

	resp, err := p.sender.SendEachForMulticast(ctx, msg)
	if err != nil {
		observability.NotificationFailuresTotal.WithLabelValues("fcm").Add(float64(len(tokens)))
		p.log.WarnContext(ctx, "push failed", "rideId", ev.RideID, "type", ev.Type, "error", err)
		return
	}
	if resp.FailureCount > 0 {
		observability.NotificationFailuresTotal.WithLabelValues("fcm").Add(float64(resp.FailureCount))
		for idx, r := range resp.Responses {
			if !r.Success {
				p.log.WarnContext(ctx, "push to device failed", "rideId", ev.RideID, "token", tokens[idx], "error", r.Error)
			}
		}
	}
}

// pushTargets picks who gets a push for an event. Admins watch the
// dashboard socket and are never pushed.
func pushTargets(ev RideEvent) []pushTarget {
	rider := pushTarget{role: models.RoleRider, id: ev.RiderID}
	var driver *pushTarget
	if ev.DriverID != nil {
		driver = &pushTarget{role: models.RoleDriver, id: *ev.DriverID}
	}

	var out []pushTarget
	switch ev.Type {
	case EventRideAssigned:
		if driver != nil {
			out = append(out, *driver)
		}
		out = append(out, rider)
	case EventRideAccepted, EventPaymentCollected:
		out = append(out, rider)
	case EventRideStatus, EventPaymentUpdated:
		out = append(out, rider)
		if ev.ActorRole == models.RoleAdmin && driver != nil {
			out = append(out, *driver)
		}
	case EventRideRated:
		if ev.ActorRole == models.RoleRider && driver != nil {
			out = append(out, *driver)
		} else if ev.ActorRole == models.RoleDriver {
			out = append(out, rider)
		}
	}
	return out
}

// releasedDriver is the driver a reassignment took the ride away from.
func releasedDriver(ev RideEvent) *pushTarget {
	if ev.Type != EventRideAssigned || ev.PreviousDriverID == nil {
		return nil
	}
	return &pushTarget{role: models.RoleDriver, id: *ev.PreviousDriverID}
}

func pushText(ev RideEvent) (string, string) {
	switch ev.Type {
	case EventRideAssigned:
		return "Driver Assigned", fmt.Sprintf("Ride #%d has a driver", ev.RideID)
	case EventRideAccepted:
		return "Ride Accepted!", fmt.Sprintf("Your driver accepted ride #%d", ev.RideID)
	case EventPaymentCollected:
		return "Payment Received", fmt.Sprintf("Cash payment of %.0f received for ride #%d", ev.Fare, ev.RideID)
	case EventPaymentUpdated:
		return "Payment Updated", fmt.Sprintf("Payment for ride #%d is %s", ev.RideID, ev.PaymentStatus)
	case EventRideRated:
		return "New Rating", fmt.Sprintf("Ride #%d was rated", ev.RideID)
	}
	return "Ride Update", fmt.Sprintf("Ride #%d is %s", ev.RideID, ev.Status)
}
