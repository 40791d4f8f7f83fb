package dto

import "time"

type ErrorResponse struct {
	Message string   `json:"message"`
	Details []string `json:"details,omitempty"`
}

// QuestionPublicDTO is a question as shown to the quiz taker: the correct
// answer and explanation stay server-side until the quiz is scored.
type QuestionPublicDTO struct {
	ID           uint     `json:"id"`
	QuestionText string   `json:"questionText"`
	QuestionType string   `json:"questionType"`
	Options      []string `json:"options"`
	Points       int      `json:"points"`
	OrderNumber  int      `json:"orderNumber"`
}

type QuizResponseDTO struct {
	ID              uint                `json:"id"`
	UserID          uint                `json:"user_id"`
	Title           string              `json:"title"`
	Subject         string              `json:"subject"`
	GradeLevel      string              `json:"grade_level"`
	DifficultyLevel string              `json:"difficulty_level"`
	TotalQuestions  int                 `json:"total_questions"`
	Questions       []QuestionPublicDTO `json:"questions"`
	CreatedAt       time.Time           `json:"created_at"`
	Cached          bool                `json:"cached,omitempty"`
}

// AnswerEvaluation is the per-question feedback record produced by the
// scoring engine and persisted verbatim on the submission.
type AnswerEvaluation struct {
	QuestionID    uint   `json:"questionId"`
	UserAnswer    string `json:"userAnswer"`
	CorrectAnswer string `json:"correctAnswer"`
	IsCorrect     bool   `json:"isCorrect"`
	Explanation   string `json:"explanation"`
}

type SubmissionResultDTO struct {
	SubmissionID uint               `json:"submissionId"`
	Score        float64            `json:"score"`
	TotalPoints  int                `json:"totalPoints"`
	Feedback     []AnswerEvaluation `json:"feedback"`
	Suggestions  []string           `json:"suggestions"`
	IsRetry      bool               `json:"isRetry,omitempty"`
}

type HintResponseDTO struct {
	QuestionID uint   `json:"questionId"`
	Hint       string `json:"hint"`
}

// HistoryItemDTO joins a quiz with its latest submission (submission
// fields are nil for quizzes never submitted).
type HistoryItemDTO struct {
	ID              uint       `json:"id"`
	Title           string     `json:"title"`
	Subject         string     `json:"subject"`
	GradeLevel      string     `json:"grade_level"`
	DifficultyLevel string     `json:"difficulty_level"`
	TotalQuestions  int        `json:"total_questions"`
	CreatedAt       time.Time  `json:"created_at"`
	SubmissionID    *uint      `json:"submission_id,omitempty"`
	Score           *float64   `json:"score,omitempty"`
	SubmittedAt     *time.Time `json:"submitted_at,omitempty"`
	IsRetry         *bool      `json:"is_retry,omitempty"`
}

type PaginationDTO struct {
	Page  int   `json:"page"`
	Limit int   `json:"limit"`
	Total int64 `json:"total"`
}

type HistoryResponseDTO struct {
	Quizzes    []HistoryItemDTO `json:"quizzes"`
	Pagination PaginationDTO    `json:"pagination"`
	Cached     bool             `json:"cached,omitempty"`
}

type LeaderboardEntryDTO struct {
	Rank           int       `json:"rank"`
	UserID         uint      `json:"user_id"`
	Username       string    `json:"username"`
	Score          float64   `json:"score"`
	SubmittedAt    time.Time `json:"submitted_at"`
	QuizTitle      string    `json:"quiz_title"`
	TotalQuestions int       `json:"total_questions"`
}

type LeaderboardStatsDTO struct {
	TotalParticipants int     `json:"totalParticipants"`
	AverageScore      float64 `json:"averageScore"`
}

type LeaderboardResponseDTO struct {
	Subject     string                `json:"subject"`
	GradeLevel  string                `json:"gradeLevel"`
	Period      string                `json:"period"`
	Leaderboard []LeaderboardEntryDTO `json:"leaderboard"`
	Stats       LeaderboardStatsDTO   `json:"stats"`
	Cached      bool                  `json:"cached,omitempty"`
}

type AuthResponseDTO struct {
	Token    string `json:"token"`
	UserID   uint   `json:"user_id"`
	Username string `json:"username"`
}
