package cache

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"time"

	"github.com/lamdang/quizforge/config"
	"github.com/lamdang/quizforge/internal/dto"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

// TTLs per projection volatility. Entries are disposable: they are
// invalidated on writes, never updated in place.
const (
	QuizTTL        = 600 * time.Second
	HistoryTTL     = 180 * time.Second
	LeaderboardTTL = 300 * time.Second
	PerformanceTTL = 300 * time.Second
)

// Service is the cache coordinator. Every method is best-effort: a down
// or unconfigured Redis behaves as a permanent miss and is never surfaced
// as an operation failure.
type Service interface {
	GetQuiz(ctx context.Context, quizID uint) (*dto.QuizResponseDTO, bool)
	SetQuiz(ctx context.Context, quizID uint, quiz *dto.QuizResponseDTO)
	GetPerformance(ctx context.Context, userID uint, subject, gradeLevel string) (*PerformanceEntry, bool)
	SetPerformance(ctx context.Context, userID uint, subject, gradeLevel string, entry *PerformanceEntry)
	GetHistory(ctx context.Context, userID uint, filter dto.HistoryFilter) (*dto.HistoryResponseDTO, bool)
	SetHistory(ctx context.Context, userID uint, filter dto.HistoryFilter, history *dto.HistoryResponseDTO)
	GetLeaderboard(ctx context.Context, subject, gradeLevel, period string, limit int) (*dto.LeaderboardResponseDTO, bool)
	SetLeaderboard(ctx context.Context, subject, gradeLevel, period string, limit int, board *dto.LeaderboardResponseDTO)
	// InvalidateUserScoped drops the user's history and performance
	// entries plus every leaderboard entry; any new submission can shift
	// any ranking for its subject and grade.
	InvalidateUserScoped(ctx context.Context, userID uint)
	Close() error
}

// PerformanceEntry is the cached projection of a performance aggregate.
type PerformanceEntry struct {
	AvgScore       float64 `json:"avg_score"`
	TotalQuizzes   int     `json:"total_quizzes"`
	LastDifficulty string  `json:"last_difficulty"`
}

func QuizKey(quizID uint) string {
	return fmt.Sprintf("quiz:%d", quizID)
}

func PerformanceKey(userID uint, subject, gradeLevel string) string {
	return fmt.Sprintf("perf:%d:%s:%s", userID, subject, gradeLevel)
}

// HistoryKey encodes the exact filter set (pagination included) so that
// only identical queries share an entry. Struct field order fixes the
// JSON layout, keeping the key deterministic.
func HistoryKey(userID uint, filter dto.HistoryFilter) string {
	raw, _ := json.Marshal(filter)
	return fmt.Sprintf("history:%d:%s", userID, base64.StdEncoding.EncodeToString(raw))
}

func LeaderboardKey(subject, gradeLevel, period string, limit int) string {
	return fmt.Sprintf("leaderboard:%s:%s:%s:%d", subject, gradeLevel, period, limit)
}

type redisCache struct {
	rdb *redis.Client
}

// NewService connects to Redis when configured. A missing REDIS_ADDR or a
// failed ping does not fail startup; caching is simply disabled.
func NewService(cfg *config.Config) Service {
	if cfg.Redis.Addr == "" {
		log.Warn().Msg("REDIS_ADDR not set, caching disabled")
		return &redisCache{}
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:        cfg.Redis.Addr,
		Password:    cfg.Redis.Password,
		DB:          cfg.Redis.DB,
		DialTimeout: 5 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		log.Warn().Err(err).Str("addr", cfg.Redis.Addr).Msg("Redis ping failed, caching degraded to miss")
	} else {
		log.Info().Str("addr", cfg.Redis.Addr).Msg("Redis connected")
	}
	return &redisCache{rdb: rdb}
}

func (c *redisCache) get(ctx context.Context, key string, dest interface{}) bool {
	if c.rdb == nil {
		return false
	}
	raw, err := c.rdb.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return false
	}
	if err != nil {
		log.Warn().Err(err).Str("key", key).Msg("cache get failed")
		return false
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		log.Warn().Err(err).Str("key", key).Msg("cache entry unmarshal failed, treating as miss")
		return false
	}
	return true
}

func (c *redisCache) set(ctx context.Context, key string, value interface{}, ttl time.Duration) {
	if c.rdb == nil {
		return
	}
	raw, err := json.Marshal(value)
	if err != nil {
		log.Warn().Err(err).Str("key", key).Msg("cache value marshal failed")
		return
	}
	if err := c.rdb.Set(ctx, key, raw, ttl).Err(); err != nil {
		log.Warn().Err(err).Str("key", key).Msg("cache set failed")
	}
}

func (c *redisCache) delPattern(ctx context.Context, pattern string) {
	if c.rdb == nil {
		return
	}
	iter := c.rdb.Scan(ctx, 0, pattern, 100).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		log.Warn().Err(err).Str("pattern", pattern).Msg("cache scan failed")
		return
	}
	if len(keys) == 0 {
		return
	}
	if err := c.rdb.Del(ctx, keys...).Err(); err != nil {
		log.Warn().Err(err).Str("pattern", pattern).Msg("cache pattern delete failed")
	}
}

func (c *redisCache) GetQuiz(ctx context.Context, quizID uint) (*dto.QuizResponseDTO, bool) {
	var quiz dto.QuizResponseDTO
	if !c.get(ctx, QuizKey(quizID), &quiz) {
		return nil, false
	}
	return &quiz, true
}

func (c *redisCache) SetQuiz(ctx context.Context, quizID uint, quiz *dto.QuizResponseDTO) {
	c.set(ctx, QuizKey(quizID), quiz, QuizTTL)
}

func (c *redisCache) GetPerformance(ctx context.Context, userID uint, subject, gradeLevel string) (*PerformanceEntry, bool) {
	var entry PerformanceEntry
	if !c.get(ctx, PerformanceKey(userID, subject, gradeLevel), &entry) {
		return nil, false
	}
	return &entry, true
}

func (c *redisCache) SetPerformance(ctx context.Context, userID uint, subject, gradeLevel string, entry *PerformanceEntry) {
	c.set(ctx, PerformanceKey(userID, subject, gradeLevel), entry, PerformanceTTL)
}

func (c *redisCache) GetHistory(ctx context.Context, userID uint, filter dto.HistoryFilter) (*dto.HistoryResponseDTO, bool) {
	var history dto.HistoryResponseDTO
	if !c.get(ctx, HistoryKey(userID, filter), &history) {
		return nil, false
	}
	return &history, true
}

func (c *redisCache) SetHistory(ctx context.Context, userID uint, filter dto.HistoryFilter, history *dto.HistoryResponseDTO) {
	c.set(ctx, HistoryKey(userID, filter), history, HistoryTTL)
}

func (c *redisCache) GetLeaderboard(ctx context.Context, subject, gradeLevel, period string, limit int) (*dto.LeaderboardResponseDTO, bool) {
	var board dto.LeaderboardResponseDTO
	if !c.get(ctx, LeaderboardKey(subject, gradeLevel, period, limit), &board) {
		return nil, false
	}
	return &board, true
}

func (c *redisCache) SetLeaderboard(ctx context.Context, subject, gradeLevel, period string, limit int, board *dto.LeaderboardResponseDTO) {
	c.set(ctx, LeaderboardKey(subject, gradeLevel, period, limit), board, LeaderboardTTL)
}

func (c *redisCache) InvalidateUserScoped(ctx context.Context, userID uint) {
	c.delPattern(ctx, fmt.Sprintf("history:%d:*", userID))
	c.delPattern(ctx, fmt.Sprintf("perf:%d:*", userID))
	c.delPattern(ctx, "leaderboard:*")
}

func (c *redisCache) Close() error {
	if c.rdb == nil {
		return nil
	}
	return c.rdb.Close()
}
