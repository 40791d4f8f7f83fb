package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/lamdang/quizforge/internal/cache"
	"github.com/lamdang/quizforge/internal/dto"
	"github.com/lamdang/quizforge/internal/model"
	"github.com/lamdang/quizforge/internal/notifier"
	"github.com/lamdang/quizforge/internal/repository"
	"gorm.io/gorm"
)

// fakeCache is an in-memory cache.Service with the same key scheme as the
// Redis implementation, so tests can assert on hits, misses and
// invalidation without a running Redis.
type fakeCache struct {
	mu           sync.Mutex
	quizzes      map[string]*dto.QuizResponseDTO
	performances map[string]*cache.PerformanceEntry
	histories    map[string]*dto.HistoryResponseDTO
	leaderboards map[string]*dto.LeaderboardResponseDTO
	invalidated  []uint
}

func newFakeCache() *fakeCache {
	return &fakeCache{
		quizzes:      make(map[string]*dto.QuizResponseDTO),
		performances: make(map[string]*cache.PerformanceEntry),
		histories:    make(map[string]*dto.HistoryResponseDTO),
		leaderboards: make(map[string]*dto.LeaderboardResponseDTO),
	}
}

func (f *fakeCache) GetQuiz(_ context.Context, quizID uint) (*dto.QuizResponseDTO, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	quiz, ok := f.quizzes[cache.QuizKey(quizID)]
	return quiz, ok
}

func (f *fakeCache) SetQuiz(_ context.Context, quizID uint, quiz *dto.QuizResponseDTO) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.quizzes[cache.QuizKey(quizID)] = quiz
}

func (f *fakeCache) GetPerformance(_ context.Context, userID uint, subject, gradeLevel string) (*cache.PerformanceEntry, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	entry, ok := f.performances[cache.PerformanceKey(userID, subject, gradeLevel)]
	return entry, ok
}

func (f *fakeCache) SetPerformance(_ context.Context, userID uint, subject, gradeLevel string, entry *cache.PerformanceEntry) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.performances[cache.PerformanceKey(userID, subject, gradeLevel)] = entry
}

func (f *fakeCache) GetHistory(_ context.Context, userID uint, filter dto.HistoryFilter) (*dto.HistoryResponseDTO, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	history, ok := f.histories[cache.HistoryKey(userID, filter)]
	return history, ok
}

func (f *fakeCache) SetHistory(_ context.Context, userID uint, filter dto.HistoryFilter, history *dto.HistoryResponseDTO) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.histories[cache.HistoryKey(userID, filter)] = history
}

func (f *fakeCache) GetLeaderboard(_ context.Context, subject, gradeLevel, period string, limit int) (*dto.LeaderboardResponseDTO, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	board, ok := f.leaderboards[cache.LeaderboardKey(subject, gradeLevel, period, limit)]
	return board, ok
}

func (f *fakeCache) SetLeaderboard(_ context.Context, subject, gradeLevel, period string, limit int, board *dto.LeaderboardResponseDTO) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.leaderboards[cache.LeaderboardKey(subject, gradeLevel, period, limit)] = board
}

func (f *fakeCache) InvalidateUserScoped(_ context.Context, userID uint) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.histories = make(map[string]*dto.HistoryResponseDTO)
	f.performances = make(map[string]*cache.PerformanceEntry)
	f.leaderboards = make(map[string]*dto.LeaderboardResponseDTO)
	f.invalidated = append(f.invalidated, userID)
}

func (f *fakeCache) Close() error { return nil }

type fakeQuizRepo struct {
	quizzes     map[uint]*model.Quiz
	nextID      uint
	historyRows []repository.QuizHistoryRow
	historyErr  error
}

func newFakeQuizRepo() *fakeQuizRepo {
	return &fakeQuizRepo{quizzes: make(map[uint]*model.Quiz), nextID: 1}
}

func (f *fakeQuizRepo) Create(quiz *model.Quiz) error {
	quiz.ID = f.nextID
	f.nextID++
	for i := range quiz.Questions {
		quiz.Questions[i].ID = quiz.ID*100 + uint(i)
		quiz.Questions[i].QuizID = quiz.ID
	}
	f.quizzes[quiz.ID] = quiz
	return nil
}

func (f *fakeQuizRepo) FindByIDWithQuestions(id uint) (*model.Quiz, error) {
	quiz, ok := f.quizzes[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return quiz, nil
}

func (f *fakeQuizRepo) FindQuestionByID(id uint) (*model.Question, error) {
	for _, quiz := range f.quizzes {
		for i := range quiz.Questions {
			if quiz.Questions[i].ID == id {
				return &quiz.Questions[i], nil
			}
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeQuizRepo) History(userID uint, filter dto.HistoryFilter) ([]repository.QuizHistoryRow, int64, error) {
	if f.historyErr != nil {
		return nil, 0, f.historyErr
	}
	return f.historyRows, int64(len(f.historyRows)), nil
}

// fakeSubmissionRepo records CreateScored calls and mirrors the
// transactional running-mean update on an in-memory aggregate map.
type fakeSubmissionRepo struct {
	submissions []model.Submission
	countsFlags []bool
	aggregates  map[string]*model.UserPerformance
	boardRows   []repository.BoardRow
	nextID      uint
}

func newFakeSubmissionRepo() *fakeSubmissionRepo {
	return &fakeSubmissionRepo{aggregates: make(map[string]*model.UserPerformance), nextID: 1}
}

func aggKey(userID uint, subject, gradeLevel string) string {
	return fmt.Sprintf("%d|%s|%s", userID, subject, gradeLevel)
}

func (f *fakeSubmissionRepo) CreateScored(sub *model.Submission, countsTowardAggregate bool, subject, gradeLevel, difficulty string) error {
	sub.ID = f.nextID
	f.nextID++
	f.submissions = append(f.submissions, *sub)
	f.countsFlags = append(f.countsFlags, countsTowardAggregate)
	if !countsTowardAggregate {
		return nil
	}
	key := aggKey(sub.UserID, subject, gradeLevel)
	perf, ok := f.aggregates[key]
	if !ok {
		f.aggregates[key] = &model.UserPerformance{
			UserID:         sub.UserID,
			Subject:        subject,
			GradeLevel:     gradeLevel,
			AvgScore:       sub.Score,
			TotalQuizzes:   1,
			LastDifficulty: difficulty,
		}
		return nil
	}
	perf.AvgScore = (perf.AvgScore*float64(perf.TotalQuizzes) + sub.Score) / float64(perf.TotalQuizzes+1)
	perf.TotalQuizzes++
	perf.LastDifficulty = difficulty
	return nil
}

func (f *fakeSubmissionRepo) FindOriginal(quizID, userID uint) (*model.Submission, error) {
	for i := len(f.submissions) - 1; i >= 0; i-- {
		s := f.submissions[i]
		if s.QuizID == quizID && s.UserID == userID && !s.IsRetry {
			return &s, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeSubmissionRepo) BoardRows(subject, gradeLevel string, since *time.Time) ([]repository.BoardRow, error) {
	if since == nil {
		return f.boardRows, nil
	}
	var rows []repository.BoardRow
	for _, row := range f.boardRows {
		if !row.SubmittedAt.Before(*since) {
			rows = append(rows, row)
		}
	}
	return rows, nil
}

type fakePerfRepo struct {
	perf *model.UserPerformance
	err  error
}

func (f *fakePerfRepo) Find(userID uint, subject, gradeLevel string) (*model.UserPerformance, error) {
	if f.err != nil {
		return nil, f.err
	}
	if f.perf == nil {
		return nil, gorm.ErrRecordNotFound
	}
	return f.perf, nil
}

type fakeUserRepo struct {
	users  map[uint]*model.User
	byName map[string]*model.User
	nextID uint
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[uint]*model.User), byName: make(map[string]*model.User), nextID: 1}
}

func (f *fakeUserRepo) Create(user *model.User) error {
	user.ID = f.nextID
	f.nextID++
	f.users[user.ID] = user
	f.byName[user.Username] = user
	return nil
}

func (f *fakeUserRepo) FindByID(id uint) (*model.User, error) {
	user, ok := f.users[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return user, nil
}

func (f *fakeUserRepo) FindByUsername(username string) (*model.User, error) {
	user, ok := f.byName[username]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return user, nil
}

// fakeOracle returns canned drafts and suggestions, recording how it was
// called.
type fakeOracle struct {
	drafts         []QuestionDraft
	draftsErr      error
	suggestions    []string
	suggestionsErr error
	hint           string
	hintErr        error

	lastDifficulty string
	lastCount      int
	suggestCalls   int
}

func (f *fakeOracle) GenerateQuestions(_ context.Context, subject, gradeLevel string, count int, difficulty string) ([]QuestionDraft, error) {
	f.lastCount = count
	f.lastDifficulty = difficulty
	if f.draftsErr != nil {
		return nil, f.draftsErr
	}
	if f.drafts != nil {
		return f.drafts, nil
	}
	drafts := make([]QuestionDraft, count)
	for i := range drafts {
		drafts[i] = QuestionDraft{
			Question:      "What is the answer?",
			Options:       []string{"a", "b", "c", "d"},
			CorrectAnswer: "a",
			Explanation:   "a is correct",
		}
	}
	return drafts, nil
}

func (f *fakeOracle) GenerateSuggestions(_ context.Context, subject, gradeLevel string, incorrect []model.Question, score float64) ([]string, error) {
	f.suggestCalls++
	if f.suggestionsErr != nil {
		return nil, f.suggestionsErr
	}
	if f.suggestions != nil {
		return f.suggestions, nil
	}
	return []string{"Practice more.", "Read the explanations again."}, nil
}

func (f *fakeOracle) GenerateHint(_ context.Context, questionText string, options []string) (string, error) {
	if f.hintErr != nil {
		return "", f.hintErr
	}
	return f.hint, nil
}

type fakeNotifier struct {
	mu     sync.Mutex
	events []notifier.SubmissionScoredEvent
}

func (f *fakeNotifier) SubmissionScored(_ context.Context, event notifier.SubmissionScoredEvent) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, event)
	return nil
}
