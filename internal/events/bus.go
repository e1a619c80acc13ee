// Package events is the in-process channel for review lifecycle
// notifications. Subscribers run synchronously in registration order and
// carry no business-rule authority: removing every subscriber changes
// nothing about accept/reject behavior.
package events

import (
	"time"

	evbus "github.com/asaskevich/EventBus"
	"github.com/chainbazaar/review-backend/internal/models"
	"github.com/sirupsen/logrus"
)

const (
	topicReviewSubmitted  = "review:submitted"
	topicDuplicateAttempt = "review:duplicateAttempted"
)

// ReviewSubmittedEvent carries the full accepted payload, raised exactly
// once per accepted submission.
type ReviewSubmittedEvent struct {
	ReviewID      string
	ProductID     string
	WalletAddress string
	Rating        int
	Text          string
	ReviewHash    string
	ContentHash   string
	Timestamp     time.Time
	ClientIP      string
	Publication   models.PublicationResult
}

// DuplicateAttemptEvent is raised exactly once per rejected duplicate,
// whether caught by the precheck or by the store's constraint.
type DuplicateAttemptEvent struct {
	WalletAddress    string
	ProductID        string
	ExistingReviewID string
	Timestamp        time.Time
}

type Channel struct {
	bus evbus.Bus
	log *logrus.Logger
}

func NewChannel(log *logrus.Logger) *Channel {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Channel{bus: evbus.New(), log: log}
}

func (c *Channel) SubscribeReviewSubmitted(fn func(ReviewSubmittedEvent)) error {
	return c.bus.Subscribe(topicReviewSubmitted, func(ev ReviewSubmittedEvent) {
		defer c.recoverSubscriber(topicReviewSubmitted)
		fn(ev)
	})
}

func (c *Channel) SubscribeDuplicateAttempt(fn func(DuplicateAttemptEvent)) error {
	return c.bus.Subscribe(topicDuplicateAttempt, func(ev DuplicateAttemptEvent) {
		defer c.recoverSubscriber(topicDuplicateAttempt)
		fn(ev)
	})
}

func (c *Channel) PublishReviewSubmitted(ev ReviewSubmittedEvent) {
	c.bus.Publish(topicReviewSubmitted, ev)
}

func (c *Channel) PublishDuplicateAttempt(ev DuplicateAttemptEvent) {
	c.bus.Publish(topicDuplicateAttempt, ev)
}

// recoverSubscriber keeps a panicking subscriber from failing the
// submission flow it runs on.
func (c *Channel) recoverSubscriber(topic string) {
	if r := recover(); r != nil {
		c.log.WithFields(logrus.Fields{
			"topic": topic,
			"panic": r,
		}).Error("event subscriber panicked")
	}
}
