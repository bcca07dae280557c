package service

import (
	"context"
	"log"
	"strings"
	"sync"

	"github.com/quocanhngo/agrosynth/internal/mapview"
	"github.com/quocanhngo/agrosynth/internal/model"
	"github.com/quocanhngo/agrosynth/internal/repository"
	"github.com/quocanhngo/agrosynth/pkg/mailer"
	"golang.org/x/sync/errgroup"
)

// maxConcurrentMails bounds the SMTP connections opened per notification
const maxConcurrentMails = 4

// Mailer sends subscription emails
type Mailer interface {
	SendSubscriptionConfirmation(toEmail string) error
	SendNewAlert(toEmail string, alert mailer.AlertSummary) error
}

// SubscriptionService stores email subscriptions and mails subscribers.
// Mail is sent in the background; failures are only logged.
type SubscriptionService struct {
	repo   *repository.SubscriptionRepository
	mailer Mailer
	wg     sync.WaitGroup
}

func NewSubscriptionService(repo *repository.SubscriptionRepository, mailer Mailer) *SubscriptionService {
	return &SubscriptionService{repo: repo, mailer: mailer}
}

// Subscribe registers email for deviceID. A confirmation is mailed only for
// new subscriptions. Returns true when the subscription is new.
func (s *SubscriptionService) Subscribe(ctx context.Context, deviceID, email string) (bool, error) {
	if deviceID == "" {
		return false, model.ErrDeviceIDRequired
	}
	email = strings.ToLower(strings.TrimSpace(email))

	created, err := s.repo.Upsert(ctx, &model.Subscription{DeviceID: deviceID, Email: email})
	if err != nil {
		return false, err
	}
	if created && s.mailer != nil {
		s.background(func() {
			if err := s.mailer.SendSubscriptionConfirmation(email); err != nil {
				log.Printf("⚠️  Subscription confirmation to %s failed: %v", email, err)
			}
		})
	}
	return created, nil
}

// NotifyNewAlert mails every subscriber about alert. Subscriptions carry no
// area, so there is no distance filter.
func (s *SubscriptionService) NotifyNewAlert(ctx context.Context, alert model.AlertRecord) {
	if s.mailer == nil {
		return
	}
	// The request that created the alert may finish before the mails go out.
	ctx = context.WithoutCancel(ctx)

	s.background(func() {
		emails, err := s.repo.ListEmails(ctx)
		if err != nil {
			log.Printf("⚠️  Loading subscribers failed: %v", err)
			return
		}

		summary := alertSummary(alert)
		g := new(errgroup.Group)
		g.SetLimit(maxConcurrentMails)
		for _, email := range emails {
			g.Go(func() error {
				return s.mailer.SendNewAlert(email, summary)
			})
		}
		if err := g.Wait(); err != nil {
			log.Printf("⚠️  Alert %s notification incomplete: %v", alert.ID, err)
		}
	})
}

// Wait blocks until background mail delivery finishes
func (s *SubscriptionService) Wait() {
	s.wg.Wait()
}

func (s *SubscriptionService) background(fn func()) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		fn()
	}()
}

func alertSummary(alert model.AlertRecord) mailer.AlertSummary {
	summary := mailer.AlertSummary{
		Name:        alert.Name,
		Description: alert.Description,
		WeatherType: mapview.Icon(alert.WeatherType).Label,
		Location:    alert.Location,
		CreatedAt:   alert.CreatedAt,
	}
	if alert.ImageURL != nil {
		summary.ImageURL = *alert.ImageURL
	}
	return summary
}
