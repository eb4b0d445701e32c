package category

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

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

const (
	msgExists   = "category already exists"
	msgNotFound = "category not found"
	msgInUse    = "category in use"
)

type CreateRequest struct {
	Name string `json:"name" validate:"required,min=3,max=30"`
}

type Creator interface {
	CreateCategory(ctx context.Context, name string) (models.Category, error)
}

type Deleter interface {
	DeleteCategory(ctx context.Context, id string) error
}

type Getter interface {
	Category(ctx context.Context, id string) (models.Category, error)
}

type Lister interface {
	Categories(ctx context.Context, userID string) ([]models.CategoryWithEntries, error)
}

// Create godoc
// @Summary  Create a category
// @Tags     category
// @Accept   json
// @Produce  json
// @Security Bearer
// @Param    request body     CreateRequest true "category"
// @Success  201     {object} response.Response{data=models.Category}
// @Failure  400     {object} response.Response
// @Failure  401     {object} response.Response
// @Router   /category/create [post]
func Create(log *slog.Logger, validate *validator.Validate, creator Creator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.category.Create"

		log := log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

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

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		c, err := creator.CreateCategory(ctx, req.Name)
		if err != nil {
			if errors.Is(err, storage.ErrCategoryExists) {
				render.Status(r, http.StatusBadRequest)
				render.JSON(w, r, resp.Error(msgExists))

				return
			}

			log.Error("failed to create category", sl.Err(err))

			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, resp.Error(resp.MsgInternalError))

			return
		}

		render.Status(r, http.StatusCreated)
		render.JSON(w, r, resp.OK("category created", c))
	}
}

// Delete godoc
// @Summary  Delete a category
// @Description Fails while any expense or incoming still references it.
// @Tags     category
// @Produce  json
// @Security Bearer
// @Param    id  path     string true "category id"
// @Success  200 {object} response.Response
// @Failure  400 {object} response.Response
// @Failure  401 {object} response.Response
// @Router   /category/delete/{id} [delete]
func Delete(log *slog.Logger, deleter Deleter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.category.Delete"

		log := log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		id := chi.URLParam(r, "id")

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		err := deleter.DeleteCategory(ctx, id)
		switch {
		case err == nil:
			render.JSON(w, r, resp.OK("category deleted", nil))
		case errors.Is(err, storage.ErrCategoryNotFound):
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, resp.Error(msgNotFound))
		case errors.Is(err, storage.ErrCategoryInUse):
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, resp.Error(msgInUse))
		default:
			log.Error("failed to delete category", sl.Err(err))

			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, resp.Error(resp.MsgInternalError))
		}
	}
}

// Get godoc
// @Summary  Get one category
// @Tags     category
// @Produce  json
// @Param    id  path     string true "category id"
// @Success  200 {object} response.Response{data=models.Category}
// @Failure  400 {object} response.Response
// @Router   /category/{id} [get]
func Get(log *slog.Logger, getter Getter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.category.Get"

		log := log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		c, err := getter.Category(ctx, chi.URLParam(r, "id"))
		if err != nil {
			if errors.Is(err, storage.ErrCategoryNotFound) {
				render.Status(r, http.StatusBadRequest)
				render.JSON(w, r, resp.Error(msgNotFound))

				return
			}

			log.Error("failed to get category", sl.Err(err))

			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, resp.Error(resp.MsgInternalError))

			return
		}

		render.JSON(w, r, resp.OK("category found", c))
	}
}

// List godoc
// @Summary  List categories with the caller's entries
// @Tags     category
// @Produce  json
// @Security Bearer
// @Success  200 {object} response.Response{data=[]models.CategoryWithEntries}
// @Failure  401 {object} response.Response
// @Router   /category/list [get]
func List(log *slog.Logger, lister Lister) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.category.List"

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

		list, err := lister.Categories(ctx, user.ID)
		if err != nil {
			log.Error("failed to list categories", sl.Err(err))

			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, resp.Error(resp.MsgInternalError))

			return
		}

		render.JSON(w, r, resp.OK("categories", list))
	}
}
