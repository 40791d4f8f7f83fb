package dto

// GenerateQuizRequest asks for a new AI-generated quiz. Difficulty is
// optional; when omitted the adaptive difficulty of the caller's history
// is used (medium for first-time subjects).
type GenerateQuizRequest struct {
	Subject           string `json:"subject" binding:"required,min=2,max=100"`
	GradeLevel        string `json:"gradeLevel" binding:"required"`
	NumberOfQuestions int    `json:"numberOfQuestions" binding:"omitempty,min=1,max=50"`
	Difficulty        string `json:"difficulty" binding:"omitempty,oneof=easy medium hard"`
}

// SubmitQuizRequest carries the answers for a quiz, index-aligned with the
// quiz's questions by order number.
type SubmitQuizRequest struct {
	QuizID    uint     `json:"quizId" binding:"required"`
	Answers   []string `json:"answers" binding:"required"`
	TimeTaken *int     `json:"timeTaken" binding:"omitempty,min=0"`
}

// RetryQuizRequest is shaped like SubmitQuizRequest; a retry requires a
// prior non-retry submission for the same quiz by the same user.
type RetryQuizRequest struct {
	QuizID    uint     `json:"quizId" binding:"required"`
	Answers   []string `json:"answers" binding:"required"`
	TimeTaken *int     `json:"timeTaken" binding:"omitempty,min=0"`
}

type HintRequest struct {
	QuestionID uint `json:"questionId" binding:"required"`
}

type RegisterRequest struct {
	Username string `json:"username" binding:"required,min=3,max=50"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
}

type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// HistoryFilter is the full server-side filter set for quiz history. The
// cache key for a history page is derived from every field here, so two
// requests share a cache entry only when the whole filter set matches.
type HistoryFilter struct {
	Grade     string `form:"grade"`
	Subject   string `form:"subject"`
	MinScore  string `form:"minScore"`
	MaxScore  string `form:"maxScore"`
	StartDate string `form:"startDate"`
	EndDate   string `form:"endDate"`
	Page      int    `form:"page,default=1"`
	Limit     int    `form:"limit,default=20"`
}
