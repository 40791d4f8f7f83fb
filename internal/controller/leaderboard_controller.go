package controller

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/lamdang/quizforge/internal/dto"
	"github.com/lamdang/quizforge/internal/service"
	"github.com/rs/zerolog/log"
)

type LeaderboardController struct {
	leaderboardService service.LeaderboardService
}

func NewLeaderboardController(leaderboardService service.LeaderboardService) *LeaderboardController {
	return &LeaderboardController{leaderboardService: leaderboardService}
}

// Top godoc
// @Summary Leaderboard
// @Description True ranking for a subject and grade level over a period: one row per user (their best submission), ranked by score with the earlier submission winning ties.
// @Tags Leaderboard
// @Produce json
// @Security BearerAuth
// @Param subject query string true "Subject"
// @Param gradeLevel query string true "Grade level"
// @Param period query string false "all, today, week or month (default all)"
// @Param limit query int false "Number of rows (default 10)"
// @Success 200 {object} dto.LeaderboardResponseDTO
// @Failure 400 {object} dto.ErrorResponse "Missing subject or gradeLevel"
// @Router /quiz/leaderboard [get]
func (c *LeaderboardController) Top(ctx *gin.Context) {
	subject := ctx.Query("subject")
	gradeLevel := ctx.Query("gradeLevel")
	period := ctx.DefaultQuery("period", service.PeriodAll)

	limit := 0
	if raw := ctx.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Message: "Invalid limit format"})
			return
		}
		limit = parsed
	}

	board, err := c.leaderboardService.Top(ctx.Request.Context(), subject, gradeLevel, period, limit)
	if err != nil {
		log.Error().Err(err).Str("subject", subject).Str("gradeLevel", gradeLevel).Msg("Leaderboard: service error")
		respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, board)
}
