package controller

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/lamdang/quizforge/internal/apperr"
	"github.com/lamdang/quizforge/internal/dto"
	"github.com/lamdang/quizforge/internal/middleware"
	"github.com/lamdang/quizforge/internal/service"
	"github.com/rs/zerolog/log"
)

type QuizController struct {
	quizService service.QuizService
}

func NewQuizController(quizService service.QuizService) *QuizController {
	return &QuizController{quizService: quizService}
}

func respondError(ctx *gin.Context, err error) {
	ctx.JSON(apperr.HTTPStatus(err), dto.ErrorResponse{Message: err.Error()})
}

// Generate godoc
// @Summary Generate a new AI quiz
// @Description Generates a quiz for a subject and grade level. Difficulty adapts to the caller's history when omitted.
// @Tags Quiz
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.GenerateQuizRequest true "Generation parameters"
// @Success 201 {object} dto.QuizResponseDTO
// @Failure 400 {object} dto.ErrorResponse "Invalid input"
// @Failure 502 {object} dto.ErrorResponse "Question oracle returned unusable content"
// @Router /quiz/generate [post]
func (c *QuizController) Generate(ctx *gin.Context) {
	var req dto.GenerateQuizRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Message: "Invalid request body", Details: []string{err.Error()}})
		return
	}

	userID := middleware.UserID(ctx)
	quiz, err := c.quizService.Generate(ctx.Request.Context(), userID, req)
	if err != nil {
		log.Error().Err(err).Uint("userID", userID).Msg("Generate: service error")
		respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusCreated, quiz)
}

// Submit godoc
// @Summary Submit quiz answers
// @Description Scores the answers, stores the submission, updates the caller's performance aggregate and returns per-question feedback with improvement suggestions.
// @Tags Quiz
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.SubmitQuizRequest true "Quiz id and index-aligned answers"
// @Success 200 {object} dto.SubmissionResultDTO
// @Failure 400 {object} dto.ErrorResponse "Answer count does not match question count"
// @Failure 404 {object} dto.ErrorResponse "Quiz not found"
// @Router /quiz/submit [post]
func (c *QuizController) Submit(ctx *gin.Context) {
	var req dto.SubmitQuizRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Message: "Invalid request body", Details: []string{err.Error()}})
		return
	}

	userID := middleware.UserID(ctx)
	result, err := c.quizService.Submit(ctx.Request.Context(), userID, req)
	if err != nil {
		log.Error().Err(err).Uint("quizID", req.QuizID).Uint("userID", userID).Msg("Submit: service error")
		respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, result)
}

// Retry godoc
// @Summary Retry a quiz
// @Description Scores a repeat attempt linked to the original submission. Retries never change the performance aggregate.
// @Tags Quiz
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.RetryQuizRequest true "Quiz id and index-aligned answers"
// @Success 200 {object} dto.SubmissionResultDTO
// @Failure 404 {object} dto.ErrorResponse "Original submission not found"
// @Router /quiz/retry [post]
func (c *QuizController) Retry(ctx *gin.Context) {
	var req dto.RetryQuizRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Message: "Invalid request body", Details: []string{err.Error()}})
		return
	}

	userID := middleware.UserID(ctx)
	result, err := c.quizService.Retry(ctx.Request.Context(), userID, req)
	if err != nil {
		log.Error().Err(err).Uint("quizID", req.QuizID).Uint("userID", userID).Msg("Retry: service error")
		respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, result)
}

// History godoc
// @Summary Quiz history
// @Description Paginated list of the caller's quizzes joined with their latest submission, filtered server-side.
// @Tags Quiz
// @Produce json
// @Security BearerAuth
// @Param grade query string false "Grade level filter"
// @Param subject query string false "Subject substring filter"
// @Param minScore query number false "Minimum latest-submission score"
// @Param maxScore query number false "Maximum latest-submission score"
// @Param startDate query string false "Created at or after (RFC 3339)"
// @Param endDate query string false "Created at or before (RFC 3339)"
// @Param page query int false "Page (default 1)"
// @Param limit query int false "Page size (default 20)"
// @Success 200 {object} dto.HistoryResponseDTO
// @Router /quiz/history [get]
func (c *QuizController) History(ctx *gin.Context) {
	var filter dto.HistoryFilter
	if err := ctx.ShouldBindQuery(&filter); err != nil {
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Message: "Invalid query parameters", Details: []string{err.Error()}})
		return
	}

	userID := middleware.UserID(ctx)
	history, err := c.quizService.History(ctx.Request.Context(), userID, filter)
	if err != nil {
		log.Error().Err(err).Uint("userID", userID).Msg("History: service error")
		respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, history)
}

// Hint godoc
// @Summary Question hint
// @Description AI-generated hint for a question that guides without revealing the answer.
// @Tags Quiz
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.HintRequest true "Question id"
// @Success 200 {object} dto.HintResponseDTO
// @Failure 404 {object} dto.ErrorResponse "Question not found"
// @Router /quiz/hint [post]
func (c *QuizController) Hint(ctx *gin.Context) {
	var req dto.HintRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Message: "Invalid request body", Details: []string{err.Error()}})
		return
	}

	hint, err := c.quizService.Hint(ctx.Request.Context(), req.QuestionID)
	if err != nil {
		log.Warn().Err(err).Uint("questionID", req.QuestionID).Msg("Hint: service error")
		respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, hint)
}

// GetQuiz godoc
// @Summary Get quiz details
// @Description Full quiz with its ordered questions. Only the owner may read a quiz.
// @Tags Quiz
// @Produce json
// @Security BearerAuth
// @Param quiz_id path int true "Quiz ID"
// @Success 200 {object} dto.QuizResponseDTO
// @Failure 404 {object} dto.ErrorResponse "Quiz not found"
// @Router /quiz/{quiz_id} [get]
func (c *QuizController) GetQuiz(ctx *gin.Context) {
	quizID, err := strconv.ParseUint(ctx.Param("quiz_id"), 10, 32)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Message: "Invalid quiz ID format"})
		return
	}

	userID := middleware.UserID(ctx)
	quiz, err := c.quizService.GetQuiz(ctx.Request.Context(), userID, uint(quizID))
	if err != nil {
		log.Warn().Err(err).Uint64("quizID", quizID).Uint("userID", userID).Msg("GetQuiz: service error")
		respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, quiz)
}
