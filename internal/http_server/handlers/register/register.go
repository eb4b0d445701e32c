package register

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"finance_service/internal/auth"
	resp "finance_service/internal/lib/api/response"
	"finance_service/internal/lib/hasher"
	"finance_service/internal/lib/logger/sl"
	"finance_service/internal/lib/sanitize"
	"finance_service/internal/models"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator/v10"
)

type Request struct {
	Email    string `json:"email" validate:"required,email,max=255"`
	Name     string `json:"name" validate:"required,min=1,max=100"`
	Password string `json:"password" validate:"required,min=8,max=72"`
}

type UserRegisterer interface {
	RegisterNewUser(ctx context.Context, email, name, password string) (models.User, error)
}

// New godoc
// @Summary  Register a new user
// @Tags     auth
// @Accept   json
// @Produce  json
// @Param    request body     Request true "credentials"
// @Success  201     {object} response.Response{data=models.Profile}
// @Failure  400     {object} response.Response
// @Failure  500     {object} response.Response
// @Router   /auth/register [post]
func New(log *slog.Logger, validate *validator.Validate, registerer UserRegisterer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.register.New"

		log := log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		var req Request

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

			log.Info("invalid request", sl.Err(err))

			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, resp.ValidationError(validateErr))

			return
		}

		// validator counts runes, bcrypt counts bytes
		if len(req.Password) > hasher.MaxPasswordBytes {
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, resp.Error(resp.MsgValidationError+": field password must be at most 72 bytes"))

			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		user, err := registerer.RegisterNewUser(ctx, req.Email, req.Name, req.Password)
		if err != nil {
			if errors.Is(err, auth.ErrEmailTaken) {
				render.Status(r, http.StatusBadRequest)
				render.JSON(w, r, resp.Error(auth.ErrEmailTaken.Error()))

				return
			}

			log.Error("failed to register user", sl.Err(err))

			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, resp.Error(resp.MsgInternalError))

			return
		}

		log.Info("user registered", slog.String("uid", user.ID))

		render.Status(r, http.StatusCreated)
		render.JSON(w, r, resp.OK("user registered", user.Profile()))
	}
}
