package events

import (
	"io"
	"testing"
	"time"

	"github.com/chainbazaar/review-backend/internal/models"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestChannel() *Channel {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return NewChannel(log)
}

func TestPublishReviewSubmitted_DeliversPayload(t *testing.T) {
	channel := newTestChannel()

	var got ReviewSubmittedEvent
	require.NoError(t, channel.SubscribeReviewSubmitted(func(ev ReviewSubmittedEvent) {
		got = ev
	}))

	sent := ReviewSubmittedEvent{
		ReviewID:      "r1",
		ProductID:     "p1",
		WalletAddress: "0xabc",
		Rating:        4,
		Text:          "solid",
		ReviewHash:    "hash",
		ContentHash:   "QmContent",
		Timestamp:     time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC),
		ClientIP:      "10.0.0.1",
		Publication:   models.PublicationResult{Success: true, Hash: "QmRemote"},
	}
	channel.PublishReviewSubmitted(sent)

	assert.Equal(t, sent, got)
}

func TestSubscribersRunInRegistrationOrder(t *testing.T) {
	channel := newTestChannel()

	var order []string
	require.NoError(t, channel.SubscribeDuplicateAttempt(func(DuplicateAttemptEvent) {
		order = append(order, "first")
	}))
	require.NoError(t, channel.SubscribeDuplicateAttempt(func(DuplicateAttemptEvent) {
		order = append(order, "second")
	}))

	channel.PublishDuplicateAttempt(DuplicateAttemptEvent{WalletAddress: "0xabc", ProductID: "p1"})

	assert.Equal(t, []string{"first", "second"}, order)
}

func TestPanickingSubscriberDoesNotStopDelivery(t *testing.T) {
	channel := newTestChannel()

	require.NoError(t, channel.SubscribeReviewSubmitted(func(ReviewSubmittedEvent) {
		panic("subscriber bug")
	}))
	delivered := false
	require.NoError(t, channel.SubscribeReviewSubmitted(func(ReviewSubmittedEvent) {
		delivered = true
	}))

	assert.NotPanics(t, func() {
		channel.PublishReviewSubmitted(ReviewSubmittedEvent{ReviewID: "r1"})
	})
	assert.True(t, delivered)
}

func TestPublishWithoutSubscribersIsNoop(t *testing.T) {
	channel := newTestChannel()
	assert.NotPanics(t, func() {
		channel.PublishReviewSubmitted(ReviewSubmittedEvent{ReviewID: "r1"})
		channel.PublishDuplicateAttempt(DuplicateAttemptEvent{WalletAddress: "0xabc"})
	})
}

func TestEachEventDeliveredOnce(t *testing.T) {
	channel := newTestChannel()

	count := 0
	require.NoError(t, channel.SubscribeReviewSubmitted(func(ReviewSubmittedEvent) {
		count++
	}))

	channel.PublishReviewSubmitted(ReviewSubmittedEvent{ReviewID: "r1"})
	channel.PublishReviewSubmitted(ReviewSubmittedEvent{ReviewID: "r2"})

	assert.Equal(t, 2, count)
}
