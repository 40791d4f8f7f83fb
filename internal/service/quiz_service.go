package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jinzhu/copier"
	"github.com/lamdang/quizforge/internal/apperr"
	"github.com/lamdang/quizforge/internal/cache"
	"github.com/lamdang/quizforge/internal/dto"
	"github.com/lamdang/quizforge/internal/model"
	"github.com/lamdang/quizforge/internal/notifier"
	"github.com/lamdang/quizforge/internal/repository"
	"github.com/rs/zerolog/log"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	defaultQuestionCount = 10
	maxQuestionCount     = 50
	defaultHistoryLimit  = 20
	maxHistoryLimit      = 100
)

// fallbackSuggestions is the static pair used whenever the suggestion
// oracle errors or returns fewer than two usable lines. Scoring is never
// blocked by suggestion generation.
var fallbackSuggestions = []string{
	"Review the concepts you found challenging and practice similar problems.",
	"Consider seeking additional resources or tutoring for topics where you struggled.",
}

const fallbackHint = "Review the material and think carefully about each option."

// QuizService orchestrates the quiz lifecycle: generation, submission,
// retry, detail reads and history, coordinating the oracle, the scoring
// engine, the difficulty adapter, persistence and the cache.
type QuizService interface {
	Generate(ctx context.Context, userID uint, req dto.GenerateQuizRequest) (*dto.QuizResponseDTO, error)
	Submit(ctx context.Context, userID uint, req dto.SubmitQuizRequest) (*dto.SubmissionResultDTO, error)
	Retry(ctx context.Context, userID uint, req dto.RetryQuizRequest) (*dto.SubmissionResultDTO, error)
	GetQuiz(ctx context.Context, userID, quizID uint) (*dto.QuizResponseDTO, error)
	History(ctx context.Context, userID uint, filter dto.HistoryFilter) (*dto.HistoryResponseDTO, error)
	Hint(ctx context.Context, questionID uint) (*dto.HintResponseDTO, error)
}

type quizService struct {
	quizRepo       repository.QuizRepository
	submissionRepo repository.SubmissionRepository
	perfRepo       repository.PerformanceRepository
	userRepo       repository.UserRepository
	oracle         OracleService
	scoring        ScoringService
	difficulty     DifficultyService
	cache          cache.Service
	notify         notifier.Service
}

func NewQuizService(
	quizRepo repository.QuizRepository,
	submissionRepo repository.SubmissionRepository,
	perfRepo repository.PerformanceRepository,
	userRepo repository.UserRepository,
	oracle OracleService,
	scoring ScoringService,
	difficulty DifficultyService,
	cacheSvc cache.Service,
	notify notifier.Service,
) QuizService {
	return &quizService{
		quizRepo:       quizRepo,
		submissionRepo: submissionRepo,
		perfRepo:       perfRepo,
		userRepo:       userRepo,
		oracle:         oracle,
		scoring:        scoring,
		difficulty:     difficulty,
		cache:          cacheSvc,
		notify:         notify,
	}
}

// Generate creates a quiz via the generation oracle and persists it with
// its questions as one atomic unit. The oracle call happens before any
// database write so a slow LLM never holds database resources.
func (s *quizService) Generate(ctx context.Context, userID uint, req dto.GenerateQuizRequest) (*dto.QuizResponseDTO, error) {
	count := req.NumberOfQuestions
	if count == 0 {
		count = defaultQuestionCount
	}
	if count < 1 || count > maxQuestionCount {
		return nil, apperr.Newf(apperr.Validation, "numberOfQuestions must be between 1 and %d", maxQuestionCount)
	}
	if req.Difficulty != "" && !model.ValidDifficulty(req.Difficulty) {
		return nil, apperr.Newf(apperr.Validation, "invalid difficulty %q", req.Difficulty)
	}

	difficulty := s.resolveDifficulty(ctx, userID, req)

	drafts, err := s.oracle.GenerateQuestions(ctx, req.Subject, req.GradeLevel, count, difficulty)
	if err != nil {
		return nil, err
	}

	quiz := model.Quiz{
		UserID:          userID,
		Title:           fmt.Sprintf("%s Quiz - %s", req.Subject, req.GradeLevel),
		Subject:         req.Subject,
		GradeLevel:      req.GradeLevel,
		DifficultyLevel: difficulty,
		TotalQuestions:  count,
	}
	for i, d := range drafts {
		options, mErr := json.Marshal(d.Options)
		if mErr != nil {
			return nil, apperr.Wrap(apperr.Generation, "failed to encode question options", mErr)
		}
		quiz.Questions = append(quiz.Questions, model.Question{
			QuestionText:  d.Question,
			QuestionType:  model.QuestionTypeMultipleChoice,
			Options:       datatypes.JSON(options),
			CorrectAnswer: d.CorrectAnswer,
			Explanation:   d.Explanation,
			Points:        1,
			OrderNumber:   i + 1,
		})
	}

	if err := s.quizRepo.Create(&quiz); err != nil {
		log.Error().Err(err).Uint("userID", userID).Msg("Generate: failed to persist quiz")
		return nil, apperr.Wrap(apperr.Persistence, "failed to persist quiz", err)
	}

	resp, err := quizToDTO(&quiz)
	if err != nil {
		return nil, err
	}
	s.cache.SetQuiz(ctx, quiz.ID, resp)

	log.Info().Uint("quizID", quiz.ID).Uint("userID", userID).
		Str("subject", req.Subject).Str("difficulty", difficulty).Int("questions", count).
		Msg("Quiz generated")
	return resp, nil
}

// resolveDifficulty applies the adaptive difficulty policy: an explicit
// difficulty wins; otherwise the user's performance aggregate for the
// (subject, grade) pair drives the adapter, defaulting to medium for a
// first-time pair. Aggregate read failures degrade to medium rather than
// failing generation.
func (s *quizService) resolveDifficulty(ctx context.Context, userID uint, req dto.GenerateQuizRequest) string {
	if req.Difficulty != "" {
		return req.Difficulty
	}

	if entry, ok := s.cache.GetPerformance(ctx, userID, req.Subject, req.GradeLevel); ok {
		return s.difficulty.Next(entry.AvgScore, entry.LastDifficulty)
	}

	perf, err := s.perfRepo.Find(userID, req.Subject, req.GradeLevel)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.DifficultyMedium
	}
	if err != nil {
		log.Warn().Err(err).Uint("userID", userID).Msg("resolveDifficulty: aggregate read failed, defaulting to medium")
		return model.DifficultyMedium
	}

	s.cache.SetPerformance(ctx, userID, req.Subject, req.GradeLevel, &cache.PerformanceEntry{
		AvgScore:       perf.AvgScore,
		TotalQuizzes:   perf.TotalQuizzes,
		LastDifficulty: perf.LastDifficulty,
	})
	return s.difficulty.Next(perf.AvgScore, perf.LastDifficulty)
}

// Submit scores a first attempt. The submission insert and the
// performance-aggregate update commit atomically.
func (s *quizService) Submit(ctx context.Context, userID uint, req dto.SubmitQuizRequest) (*dto.SubmissionResultDTO, error) {
	return s.score(ctx, userID, req.QuizID, req.Answers, req.TimeTaken, nil)
}

// Retry scores a repeat attempt. It requires a prior non-retry submission
// for the same (quiz, user) pair and intentionally leaves the performance
// aggregate untouched: retries measure improvement, not a new attempt.
func (s *quizService) Retry(ctx context.Context, userID uint, req dto.RetryQuizRequest) (*dto.SubmissionResultDTO, error) {
	original, err := s.submissionRepo.FindOriginal(req.QuizID, userID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.New(apperr.NotFound, "original submission not found")
	}
	if err != nil {
		return nil, apperr.Wrap(apperr.Persistence, "failed to look up original submission", err)
	}
	return s.score(ctx, userID, req.QuizID, req.Answers, req.TimeTaken, &original.ID)
}

// score is the single scoring pipeline shared by Submit and Retry,
// parameterized by originalID: non-nil marks a retry, which is excluded
// from the performance aggregate. Oracle work runs before the
// transaction; cache invalidation and notification follow the commit.
func (s *quizService) score(ctx context.Context, userID, quizID uint, answers []string, timeTaken *int, originalID *uint) (*dto.SubmissionResultDTO, error) {
	quiz, err := s.quizRepo.FindByIDWithQuestions(quizID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.New(apperr.NotFound, "quiz not found")
	}
	if err != nil {
		return nil, apperr.Wrap(apperr.Persistence, "failed to load quiz", err)
	}

	result, err := s.scoring.Evaluate(quiz.Questions, answers)
	if err != nil {
		return nil, err
	}

	var incorrect []model.Question
	for i, eval := range result.Evaluations {
		if !eval.IsCorrect {
			incorrect = append(incorrect, quiz.Questions[i])
		}
	}

	suggestions, err := s.oracle.GenerateSuggestions(ctx, quiz.Subject, quiz.GradeLevel, incorrect, result.Score)
	if err != nil {
		log.Warn().Err(err).Uint("quizID", quizID).Msg("score: suggestion oracle failed, using fallback suggestions")
		suggestions = fallbackSuggestions
	}

	answersJSON, _ := json.Marshal(answers)
	feedbackJSON, _ := json.Marshal(result.Evaluations)
	suggestionsJSON, _ := json.Marshal(suggestions)

	isRetry := originalID != nil
	sub := model.Submission{
		QuizID:               quizID,
		UserID:               userID,
		Answers:              datatypes.JSON(answersJSON),
		Score:                result.Score,
		TotalPoints:          result.TotalPoints,
		Feedback:             datatypes.JSON(feedbackJSON),
		AISuggestions:        datatypes.JSON(suggestionsJSON),
		TimeTaken:            timeTaken,
		IsRetry:              isRetry,
		OriginalSubmissionID: originalID,
		SubmittedAt:          time.Now(),
	}

	if err := s.submissionRepo.CreateScored(&sub, !isRetry, quiz.Subject, quiz.GradeLevel, quiz.DifficultyLevel); err != nil {
		log.Error().Err(err).Uint("quizID", quizID).Uint("userID", userID).Msg("score: submission transaction failed")
		return nil, apperr.Wrap(apperr.Persistence, "failed to persist submission", err)
	}

	s.cache.InvalidateUserScoped(ctx, userID)
	s.notifyScored(userID, quiz.Title, result, suggestions, isRetry)

	log.Info().Uint("submissionID", sub.ID).Uint("quizID", quizID).Uint("userID", userID).
		Float64("score", result.Score).Bool("isRetry", isRetry).
		Msg("Submission scored")

	return &dto.SubmissionResultDTO{
		SubmissionID: sub.ID,
		Score:        result.Score,
		TotalPoints:  result.TotalPoints,
		Feedback:     result.Evaluations,
		Suggestions:  suggestions,
		IsRetry:      isRetry,
	}, nil
}

// notifyScored hands the scored event to the notification channel in the
// background. Failures are logged and never reach the caller.
func (s *quizService) notifyScored(userID uint, quizTitle string, result *ScoreResult, suggestions []string, isRetry bool) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		user, err := s.userRepo.FindByID(userID)
		if err != nil {
			log.Warn().Err(err).Uint("userID", userID).Msg("notifyScored: could not load user contact info")
			return
		}
		event := notifier.SubmissionScoredEvent{
			Email:       user.Email,
			Username:    user.Username,
			QuizTitle:   quizTitle,
			Score:       result.Score,
			TotalPoints: result.TotalPoints,
			Feedback:    result.Evaluations,
			Suggestions: suggestions,
			IsRetry:     isRetry,
		}
		if err := s.notify.SubmissionScored(ctx, event); err != nil {
			log.Warn().Err(err).Uint("userID", userID).Msg("notifyScored: notification failed")
		}
	}()
}

// GetQuiz returns the quiz with its questions, cache-first. Only the
// owner may read a quiz; an ownership mismatch reads the same as absence.
func (s *quizService) GetQuiz(ctx context.Context, userID, quizID uint) (*dto.QuizResponseDTO, error) {
	if cached, ok := s.cache.GetQuiz(ctx, quizID); ok {
		if cached.UserID != userID {
			return nil, apperr.New(apperr.NotFound, "quiz not found")
		}
		cached.Cached = true
		return cached, nil
	}

	quiz, err := s.quizRepo.FindByIDWithQuestions(quizID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.New(apperr.NotFound, "quiz not found")
	}
	if err != nil {
		return nil, apperr.Wrap(apperr.Persistence, "failed to load quiz", err)
	}
	if quiz.UserID != userID {
		return nil, apperr.New(apperr.NotFound, "quiz not found")
	}

	resp, err := quizToDTO(quiz)
	if err != nil {
		return nil, err
	}
	s.cache.SetQuiz(ctx, quizID, resp)
	return resp, nil
}

// History pages through the caller's quizzes joined with their latest
// submissions, cached per user keyed by the exact filter set.
func (s *quizService) History(ctx context.Context, userID uint, filter dto.HistoryFilter) (*dto.HistoryResponseDTO, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Limit < 1 {
		filter.Limit = defaultHistoryLimit
	}
	if filter.Limit > maxHistoryLimit {
		filter.Limit = maxHistoryLimit
	}

	if cached, ok := s.cache.GetHistory(ctx, userID, filter); ok {
		cached.Cached = true
		return cached, nil
	}

	rows, total, err := s.quizRepo.History(userID, filter)
	if err != nil {
		return nil, apperr.Wrap(apperr.Persistence, "failed to load quiz history", err)
	}

	items := make([]dto.HistoryItemDTO, len(rows))
	for i, row := range rows {
		if err := copier.Copy(&items[i], &row); err != nil {
			return nil, fmt.Errorf("error preparing history response: %w", err)
		}
	}

	resp := &dto.HistoryResponseDTO{
		Quizzes: items,
		Pagination: dto.PaginationDTO{
			Page:  filter.Page,
			Limit: filter.Limit,
			Total: total,
		},
	}
	s.cache.SetHistory(ctx, userID, filter, resp)
	return resp, nil
}

// Hint asks the oracle for a nudge that does not reveal the answer,
// falling back to a static line when the oracle is unavailable.
func (s *quizService) Hint(ctx context.Context, questionID uint) (*dto.HintResponseDTO, error) {
	question, err := s.quizRepo.FindQuestionByID(questionID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.New(apperr.NotFound, "question not found")
	}
	if err != nil {
		return nil, apperr.Wrap(apperr.Persistence, "failed to load question", err)
	}

	var options []string
	if err := json.Unmarshal(question.Options, &options); err != nil {
		log.Warn().Err(err).Uint("questionID", questionID).Msg("Hint: stored options are not a JSON array")
	}

	hint, err := s.oracle.GenerateHint(ctx, question.QuestionText, options)
	if err != nil {
		log.Warn().Err(err).Uint("questionID", questionID).Msg("Hint: oracle failed, using fallback hint")
		hint = fallbackHint
	}
	return &dto.HintResponseDTO{QuestionID: questionID, Hint: hint}, nil
}

// quizToDTO builds the user-facing projection of a quiz. Correct answers
// and explanations are stripped; they surface only through scoring
// feedback.
func quizToDTO(quiz *model.Quiz) (*dto.QuizResponseDTO, error) {
	var resp dto.QuizResponseDTO
	if err := copier.Copy(&resp, quiz); err != nil {
		return nil, fmt.Errorf("error preparing quiz response: %w", err)
	}

	resp.Questions = make([]dto.QuestionPublicDTO, len(quiz.Questions))
	for i, q := range quiz.Questions {
		var options []string
		if err := json.Unmarshal(q.Options, &options); err != nil {
			log.Warn().Err(err).Uint("questionID", q.ID).Msg("quizToDTO: stored options are not a JSON array")
		}
		resp.Questions[i] = dto.QuestionPublicDTO{
			ID:           q.ID,
			QuestionText: q.QuestionText,
			QuestionType: q.QuestionType,
			Options:      options,
			Points:       q.Points,
			OrderNumber:  q.OrderNumber,
		}
	}
	return &resp, nil
}
