package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/cubetrack/wcifhistoryapi/internal/wca"
	"github.com/cubetrack/wcifhistoryapi/pkg/utils/zaplogger"
	"github.com/redis/go-redis/v9"
)

const competitionsCacheTTL = 5 * time.Minute

// CompetitionService lists the upcoming competitions managed by a user,
// with a short-lived per-user Redis cache in front of the WCA API.
type CompetitionService struct {
	redisClient *redis.Client
	wcaClient   *wca.Client
	sessions    *SessionService
}

// NewCompetitionService creates a new service for competition listings
func NewCompetitionService(redisClient *redis.Client, wcaClient *wca.Client, sessions *SessionService) *CompetitionService {
	return &CompetitionService{
		redisClient: redisClient,
		wcaClient:   wcaClient,
		sessions:    sessions,
	}
}

// UpcomingCompetitions returns the competitions managed by the session
// user. Cache misses fall through to the WCA API; cache failures are
// logged and ignored, the listing is served either way.
func (s *CompetitionService) UpcomingCompetitions(ctx context.Context, sessionID string, userID uint) ([]wca.Competition, error) {
	cacheKey := fmt.Sprintf("wcifhistory:competitions:%d", userID)

	if s.redisClient != nil {
		cached, err := s.redisClient.Get(ctx, cacheKey).Bytes()
		if err == nil {
			var competitions []wca.Competition
			if err := json.Unmarshal(cached, &competitions); err == nil {
				return competitions, nil
			}
		}
	}

	wcaToken, err := s.sessions.ResolveWCAToken(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	competitions, err := s.wcaClient.GetUpcomingCompetitions(ctx, wcaToken)
	if err != nil {
		return nil, err
	}

	if s.redisClient != nil {
		encoded, err := json.Marshal(competitions)
		if err == nil {
			if err := s.redisClient.Set(ctx, cacheKey, encoded, competitionsCacheTTL).Err(); err != nil {
				zaplogger.Warn("failed to cache competitions", zaplogger.Fields{
					"user_id": userID,
					"error":   err.Error(),
				})
			}
		}
	}

	return competitions, nil
}
