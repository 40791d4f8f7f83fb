package service

import (
	"context"
	"math"
	"sort"
	"time"

	"github.com/lamdang/quizforge/internal/apperr"
	"github.com/lamdang/quizforge/internal/cache"
	"github.com/lamdang/quizforge/internal/dto"
	"github.com/lamdang/quizforge/internal/repository"
)

const (
	PeriodAll   = "all"
	PeriodToday = "today"
	PeriodWeek  = "week"
	PeriodMonth = "month"
)

const (
	defaultBoardLimit = 10
	maxBoardLimit     = 100
)

// LeaderboardService ranks users for a subject and grade level over a
// time period. Read-only aggregation over persisted submissions.
type LeaderboardService interface {
	Top(ctx context.Context, subject, gradeLevel, period string, limit int) (*dto.LeaderboardResponseDTO, error)
}

type leaderboardService struct {
	submissionRepo repository.SubmissionRepository
	cache          cache.Service
	now            func() time.Time
}

func NewLeaderboardService(submissionRepo repository.SubmissionRepository, cacheSvc cache.Service) LeaderboardService {
	return &leaderboardService{
		submissionRepo: submissionRepo,
		cache:          cacheSvc,
		now:            time.Now,
	}
}

func (s *leaderboardService) Top(ctx context.Context, subject, gradeLevel, period string, limit int) (*dto.LeaderboardResponseDTO, error) {
	if subject == "" || gradeLevel == "" {
		return nil, apperr.New(apperr.Validation, "subject and gradeLevel are required parameters")
	}
	if period == "" {
		period = PeriodAll
	}
	since, err := s.periodStart(period)
	if err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = defaultBoardLimit
	}
	if limit > maxBoardLimit {
		limit = maxBoardLimit
	}

	if cached, ok := s.cache.GetLeaderboard(ctx, subject, gradeLevel, period, limit); ok {
		cached.Cached = true
		return cached, nil
	}

	rows, err := s.submissionRepo.BoardRows(subject, gradeLevel, since)
	if err != nil {
		return nil, apperr.Wrap(apperr.Persistence, "failed to load leaderboard submissions", err)
	}

	resp := &dto.LeaderboardResponseDTO{
		Subject:     subject,
		GradeLevel:  gradeLevel,
		Period:      period,
		Leaderboard: rankBoard(rows, limit),
		Stats:       boardStats(rows),
	}
	s.cache.SetLeaderboard(ctx, subject, gradeLevel, period, limit, resp)
	return resp, nil
}

func (s *leaderboardService) periodStart(period string) (*time.Time, error) {
	now := s.now()
	switch period {
	case PeriodAll:
		return nil, nil
	case PeriodToday:
		start := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
		return &start, nil
	case PeriodWeek:
		start := now.AddDate(0, 0, -7)
		return &start, nil
	case PeriodMonth:
		start := now.AddDate(0, 0, -30)
		return &start, nil
	}
	return nil, apperr.Newf(apperr.Validation, "invalid period %q", period)
}

// rankBoard runs the two-stage ranking: first reduce to each user's best
// submission (higher score wins, more recent wins a per-user tie), then
// rank those best rows globally by score descending with the EARLIER
// submission winning a tie, so the first to reach a top score ranks
// higher. A single pass over raw rows would let one user fill several
// slots; the reduction step is what keeps each user to one.
func rankBoard(rows []repository.BoardRow, limit int) []dto.LeaderboardEntryDTO {
	best := make(map[uint]repository.BoardRow)
	for _, row := range rows {
		cur, ok := best[row.UserID]
		if !ok {
			best[row.UserID] = row
			continue
		}
		if row.Score > cur.Score || (row.Score == cur.Score && row.SubmittedAt.After(cur.SubmittedAt)) {
			best[row.UserID] = row
		}
	}

	ranked := make([]repository.BoardRow, 0, len(best))
	for _, row := range best {
		ranked = append(ranked, row)
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].Score != ranked[j].Score {
			return ranked[i].Score > ranked[j].Score
		}
		return ranked[i].SubmittedAt.Before(ranked[j].SubmittedAt)
	})

	if len(ranked) > limit {
		ranked = ranked[:limit]
	}

	entries := make([]dto.LeaderboardEntryDTO, len(ranked))
	for i, row := range ranked {
		entries[i] = dto.LeaderboardEntryDTO{
			Rank:           i + 1,
			UserID:         row.UserID,
			Username:       row.Username,
			Score:          row.Score,
			SubmittedAt:    row.SubmittedAt,
			QuizTitle:      row.QuizTitle,
			TotalQuestions: row.TotalQuestions,
		}
	}
	return entries
}

// boardStats reports distinct participants and the mean score across ALL
// qualifying submissions for the period, not deduplicated per user.
func boardStats(rows []repository.BoardRow) dto.LeaderboardStatsDTO {
	if len(rows) == 0 {
		return dto.LeaderboardStatsDTO{}
	}
	users := make(map[uint]struct{})
	sum := 0.0
	for _, row := range rows {
		users[row.UserID] = struct{}{}
		sum += row.Score
	}
	avg := sum / float64(len(rows))
	return dto.LeaderboardStatsDTO{
		TotalParticipants: len(users),
		AverageScore:      math.Round(avg*100) / 100,
	}
}
