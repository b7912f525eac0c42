//go:build integration

package cache_test

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"veriscreen/internal/screening/cache"
	"veriscreen/internal/screening/engine"
	"veriscreen/internal/screening/models"
	"veriscreen/pkg/platform/sentinel"
	"veriscreen/pkg/testutil/containers"
)

type ResultCacheSuite struct {
	suite.Suite
	redis *containers.RedisContainer
	cache *cache.ResultCache
	ctx   context.Context
}

func TestResultCacheSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(ResultCacheSuite))
}

func (s *ResultCacheSuite) SetupSuite() {
	s.redis = containers.GetManager().GetRedis(s.T())
	s.cache = cache.New(s.redis.Client, time.Minute)
	s.ctx = context.Background()
}

func (s *ResultCacheSuite) SetupTest() {
	s.Require().NoError(s.redis.FlushAll(s.ctx))
}

func newCachedEvaluation() *models.Evaluation {
	evaluator := engine.NewEvaluator(engine.ParseRecord(map[string]any{
		"first_name": "John",
		"last_name":  "Doe",
		"dob":        "1990-01-01",
	}))
	matches := evaluator.ScoreBatch([]engine.Record{
		engine.ParseRecord(map[string]any{"id": 1, "first_name": "John", "last_name": "Doe", "dob": "1990-01-01"}),
		engine.ParseRecord(map[string]any{"id": 2, "first_name": "Jane", "last_name": "Smith", "dob": "1980-05-15"}),
	})

	return &models.Evaluation{
		ID:          uuid.New(),
		ClientID:    "screening-portal",
		RequestID:   uuid.NewString(),
		Applicant:   engine.ParseRecord(map[string]any{"first_name": "John", "last_name": "Doe", "dob": "1990-01-01"}),
		Matches:     matches,
		MatchCounts: engine.CountByCategory(matches),
		CreatedAt:   time.Now().UTC().Truncate(time.Millisecond),
	}
}

func (s *ResultCacheSuite) TestRoundTrip() {
	stored := newCachedEvaluation()
	digest := cache.RequestDigest([]byte(`{"first_name":"John","last_name":"Doe","dob":"1990-01-01"}`))

	s.Require().NoError(s.cache.Set(s.ctx, digest, stored))

	found, err := s.cache.Get(s.ctx, digest)
	s.Require().NoError(err)
	s.Equal(stored.ID, found.ID)
	s.Equal(stored.ClientID, found.ClientID)
	s.Equal(stored.MatchCounts, found.MatchCounts)
	s.Require().Len(found.Matches, 2)
	s.InDelta(stored.Matches[0].RelevanceScore, found.Matches[0].RelevanceScore, 1e-9)
	s.Equal(stored.Matches[0].Category, found.Matches[0].Category)
	s.Equal(stored.Matches[0].MatchReasons, found.Matches[0].MatchReasons)
	s.Equal(stored.Matches[1].MismatchReasons, found.Matches[1].MismatchReasons)
	s.True(stored.CreatedAt.Equal(found.CreatedAt))
}

func (s *ResultCacheSuite) TestMissReturnsNotFound() {
	_, err := s.cache.Get(s.ctx, cache.RequestDigest([]byte("never stored")))
	s.Require().ErrorIs(err, sentinel.ErrNotFound)
}

func (s *ResultCacheSuite) TestEntriesCarryTTL() {
	digest := cache.RequestDigest([]byte("ttl probe"))
	s.Require().NoError(s.cache.Set(s.ctx, digest, newCachedEvaluation()))

	keys, err := s.redis.Client.Keys(s.ctx, "*").Result()
	s.Require().NoError(err)
	s.Require().Len(keys, 1)
	s.True(strings.HasPrefix(keys[0], "screening:eval:"))

	ttl, err := s.redis.Client.TTL(s.ctx, keys[0]).Result()
	s.Require().NoError(err)
	s.Greater(ttl, time.Duration(0))
	s.LessOrEqual(ttl, time.Minute)
}

func (s *ResultCacheSuite) TestCorruptEntryReturnsError() {
	digest := cache.RequestDigest([]byte("corrupt probe"))
	key := "screening:eval:" + digest
	s.Require().NoError(s.redis.Client.Set(s.ctx, key, "not json", time.Minute).Err())

	_, err := s.cache.Get(s.ctx, digest)
	s.Require().Error(err)
	s.NotErrorIs(err, sentinel.ErrNotFound)
}
