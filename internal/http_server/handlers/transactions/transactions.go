package transactions

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"finance_service/internal/finance"
	"finance_service/internal/http_server/middleware/authn"
	resp "finance_service/internal/lib/api/response"
	"finance_service/internal/lib/logger/sl"
	"finance_service/internal/models"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
)

const msgInvalidPeriod = resp.MsgValidationError + ": month must be between 1 and 12 and year at least 1900"

type MonthlyReporter interface {
	Monthly(ctx context.Context, userID string, year, month int) (models.MonthlyReport, error)
}

// Monthly godoc
// @Summary  Monthly transactions and totals
// @Description Covers the whole calendar month in UTC.
// @Tags     transactions
// @Produce  json
// @Security Bearer
// @Param    month query    int true "1..12"
// @Param    year  query    int true ">= 1900"
// @Success  200   {object} response.Response{data=models.MonthlyReport}
// @Failure  400   {object} response.Response
// @Failure  401   {object} response.Response
// @Router   /transactions/monthly-list [get]
func Monthly(log *slog.Logger, reporter MonthlyReporter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.transactions.Monthly"

		log := log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		user, ok := authn.UserFromContext(r.Context())
		if !ok {
			render.Status(r, http.StatusUnauthorized)
			render.JSON(w, r, resp.Error(resp.MsgUnauthorized))

			return
		}

		month, monthErr := strconv.Atoi(r.URL.Query().Get("month"))
		year, yearErr := strconv.Atoi(r.URL.Query().Get("year"))
		if monthErr != nil || yearErr != nil {
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, resp.Error(msgInvalidPeriod))

			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		report, err := reporter.Monthly(ctx, user.ID, year, month)
		if err != nil {
			if errors.Is(err, finance.ErrInvalidPeriod) {
				render.Status(r, http.StatusBadRequest)
				render.JSON(w, r, resp.Error(msgInvalidPeriod))

				return
			}

			log.Error("failed to build monthly report", sl.Err(err))

			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, resp.Error(resp.MsgInternalError))

			return
		}

		render.JSON(w, r, resp.OK("monthly transactions", report))
	}
}
