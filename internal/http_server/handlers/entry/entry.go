// Package entry serves expenses and incomings. Both kinds share the handlers
// and differ only in the sign their amount must have.
package entry

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"finance_service/internal/finance"
	"finance_service/internal/http_server/middleware/authn"
	resp "finance_service/internal/lib/api/response"
	"finance_service/internal/lib/logger/sl"
	"finance_service/internal/lib/sanitize"
	"finance_service/internal/models"
	"finance_service/internal/storage"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator/v10"
)

type CreateRequest struct {
	Name       string     `json:"name" validate:"required,min=1,max=100"`
	Amount     float64    `json:"amount" validate:"required,gt=-1e12,lt=1e12"`
	CategoryID string     `json:"categoryId" validate:"required,uuid"`
	CreatedAt  *time.Time `json:"createdAt,omitempty"`
}

type Creator interface {
	CreateEntry(ctx context.Context, kind models.Kind, userID string, e models.Entry) (models.Entry, error)
}

type Deleter interface {
	DeleteEntry(ctx context.Context, kind models.Kind, userID, id string) error
}

type Lister interface {
	Entries(ctx context.Context, kind models.Kind, userID string) ([]models.Entry, error)
}

// Create godoc
// @Summary  Record an expense or incoming
// @Description Expenses need a negative amount, incomings a positive one. Magnitudes must stay below 1e12.
// @Tags     entry
// @Accept   json
// @Produce  json
// @Security Bearer
// @Param    kind    path     string        true "expense or incoming"
// @Param    request body     CreateRequest true "entry"
// @Success  201     {object} response.Response{data=models.Entry}
// @Failure  400     {object} response.Response
// @Failure  401     {object} response.Response
// @Router   /{kind}/create [post]
func Create(log *slog.Logger, validate *validator.Validate, kind models.Kind, creator Creator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		op := "handlers." + string(kind) + ".Create"

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

		var req CreateRequest

		if err := render.DecodeJSON(r.Body, &req); err != nil {
			log.Error("failed to decode request body", sl.Err(err))

			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, resp.Error(resp.MsgDecodeFailed))

			return
		}

		// length rules apply to the name as it will be stored
		req.Name = sanitize.Text(req.Name)

		if err := validate.Struct(req); err != nil {
			var validateErr validator.ValidationErrors
			errors.As(err, &validateErr)

			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, resp.ValidationError(validateErr))

			return
		}

		e := models.Entry{
			Name:       req.Name,
			Amount:     req.Amount,
			CategoryID: req.CategoryID,
		}
		if req.CreatedAt != nil {
			e.CreatedAt = *req.CreatedAt
		}

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		saved, err := creator.CreateEntry(ctx, kind, user.ID, e)
		if err != nil {
			switch {
			case errors.Is(err, finance.ErrAmountOutOfRange):
				render.Status(r, http.StatusBadRequest)
				render.JSON(w, r, resp.Error(resp.MsgValidationError+": field amount must be less than 1e12 in magnitude"))
			case errors.Is(err, finance.ErrInvalidAmount):
				render.Status(r, http.StatusBadRequest)
				render.JSON(w, r, resp.Error(amountMessage(kind)))
			case errors.Is(err, storage.ErrCategoryNotFound):
				render.Status(r, http.StatusBadRequest)
				render.JSON(w, r, resp.Error("category not found"))
			default:
				log.Error("failed to create entry", sl.Err(err))

				render.Status(r, http.StatusInternalServerError)
				render.JSON(w, r, resp.Error(resp.MsgInternalError))
			}

			return
		}

		render.Status(r, http.StatusCreated)
		render.JSON(w, r, resp.OK(string(kind)+" created", saved))
	}
}

// Delete godoc
// @Summary  Delete one of the caller's entries
// @Tags     entry
// @Produce  json
// @Security Bearer
// @Param    kind path     string true "expense or incoming"
// @Param    id   path     string true "entry id"
// @Success  200  {object} response.Response
// @Failure  400  {object} response.Response
// @Failure  401  {object} response.Response
// @Router   /{kind}/delete/{id} [delete]
func Delete(log *slog.Logger, kind models.Kind, deleter Deleter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		op := "handlers." + string(kind) + ".Delete"

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

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		err := deleter.DeleteEntry(ctx, kind, user.ID, chi.URLParam(r, "id"))
		if err != nil {
			if errors.Is(err, storage.ErrEntryNotFound) {
				render.Status(r, http.StatusBadRequest)
				render.JSON(w, r, resp.Error(string(kind)+" not found"))

				return
			}

			log.Error("failed to delete entry", sl.Err(err))

			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, resp.Error(resp.MsgInternalError))

			return
		}

		render.JSON(w, r, resp.OK(string(kind)+" deleted", nil))
	}
}

// List godoc
// @Summary  List the caller's entries, newest first
// @Tags     entry
// @Produce  json
// @Security Bearer
// @Param    kind path     string true "expense or incoming"
// @Success  200  {object} response.Response{data=[]models.Entry}
// @Failure  401  {object} response.Response
// @Router   /{kind}/list [get]
func List(log *slog.Logger, kind models.Kind, lister Lister) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		op := "handlers." + string(kind) + ".List"

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

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		entries, err := lister.Entries(ctx, kind, user.ID)
		if err != nil {
			log.Error("failed to list entries", sl.Err(err))

			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, resp.Error(resp.MsgInternalError))

			return
		}

		render.JSON(w, r, resp.OK(string(kind)+"s", entries))
	}
}

func amountMessage(kind models.Kind) string {
	if kind == models.KindExpense {
		return resp.MsgValidationError + ": field amount must be less than 0"
	}

	return resp.MsgValidationError + ": field amount must be greater than 0"
}
