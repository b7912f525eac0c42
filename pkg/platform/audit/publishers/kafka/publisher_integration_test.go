//go:build integration

package kafka_test

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"
	"github.com/twmb/franz-go/pkg/kgo"

	audit "veriscreen/pkg/platform/audit"
	"veriscreen/pkg/platform/audit/publishers/kafka"
	"veriscreen/pkg/testutil/containers"
)

const testTopic = "veriscreen.audit.events"

type KafkaPublisherSuite struct {
	suite.Suite
	redpanda  *containers.RedpandaContainer
	publisher *kafka.Publisher
}

func TestKafkaPublisherSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(KafkaPublisherSuite))
}

func (s *KafkaPublisherSuite) SetupSuite() {
	s.redpanda = containers.GetManager().GetRedpanda(s.T())

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	publisher, err := kafka.New(ctx, s.redpanda.Brokers, testTopic)
	s.Require().NoError(err)
	s.publisher = publisher
}

func (s *KafkaPublisherSuite) TearDownSuite() {
	if s.publisher != nil {
		s.publisher.Close()
	}
}

func (s *KafkaPublisherSuite) TestEnsureTopicTolerantOfExisting() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	second, err := kafka.New(ctx, s.redpanda.Brokers, testTopic)
	s.Require().NoError(err)
	second.Close()
}

func (s *KafkaPublisherSuite) TestPublishRoundTrip() {
	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	evaluationID := uuid.New()
	s.Require().NoError(s.publisher.Append(ctx, audit.Event{
		EvaluationID:  evaluationID,
		ClientID:      "screening-portal",
		Action:        string(audit.EventEvaluationCompleted),
		Decision:      "HIGH_RELEVANCE",
		SubjectIDHash: audit.SubjectHash("John", "Doe", "1990-01-01"),
	}))
	s.Require().NoError(s.publisher.Append(ctx, audit.Event{
		Action: string(audit.EventAuthFailed),
		Reason: "expired token",
		IP:     "203.0.113.9",
	}))

	consumer, err := kgo.NewClient(
		kgo.SeedBrokers(s.redpanda.Brokers...),
		kgo.ConsumeTopics(testTopic),
		kgo.ConsumeResetOffset(kgo.NewOffset().AtStart()),
	)
	s.Require().NoError(err)
	defer consumer.Close()

	byAction := make(map[string]*kgo.Record)
	for len(byAction) < 2 {
		fetches := consumer.PollFetches(ctx)
		s.Require().Empty(fetches.Errors(), "fetch must not error before both records arrive")
		fetches.EachRecord(func(record *kgo.Record) {
			var payload audit.Payload
			s.Require().NoError(json.Unmarshal(record.Value, &payload))
			byAction[payload.Action] = record
		})
	}

	completed := byAction[string(audit.EventEvaluationCompleted)]
	s.Require().NotNil(completed)
	s.Equal(evaluationID.String(), string(completed.Key))

	var completedPayload audit.Payload
	s.Require().NoError(json.Unmarshal(completed.Value, &completedPayload))
	s.Equal(string(audit.CategoryCompliance), completedPayload.Category)
	s.Equal("screening-portal", completedPayload.ClientID)
	s.Equal("HIGH_RELEVANCE", completedPayload.Decision)
	s.NotEmpty(completedPayload.SubjectIDHash)

	authFailed := byAction[string(audit.EventAuthFailed)]
	s.Require().NotNil(authFailed)

	var authPayload audit.Payload
	s.Require().NoError(json.Unmarshal(authFailed.Value, &authPayload))
	s.Equal(string(audit.CategorySecurity), authPayload.Category)
	s.Empty(authPayload.EvaluationID)
	s.Equal(authPayload.ID, string(authFailed.Key), "events without an evaluation key on their own ID")
}
