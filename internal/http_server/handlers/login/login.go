package login

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"finance_service/internal/auth"
	resp "finance_service/internal/lib/api/response"
	"finance_service/internal/lib/logger/sl"
	"finance_service/internal/models"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator/v10"
)

type Request struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
	Reminder bool   `json:"reminder"`
}

type Response struct {
	resp.Response
	Token string `json:"token"`
}

type Authenticator interface {
	Login(ctx context.Context, email, password string, reminder bool) (string, models.User, error)
}

// New godoc
// @Summary  Log in and receive a token
// @Description With reminder set the token lives for 30 days instead of one.
// @Tags     auth
// @Accept   json
// @Produce  json
// @Param    request body     Request true "credentials"
// @Success  200     {object} Response{data=models.Profile}
// @Failure  400     {object} response.Response
// @Failure  500     {object} response.Response
// @Router   /auth/login [post]
func New(log *slog.Logger, validate *validator.Validate, authenticator Authenticator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.login.New"

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

		if err := validate.Struct(req); err != nil {
			var validateErr validator.ValidationErrors
			errors.As(err, &validateErr)

			log.Info("invalid request", sl.Err(err))

			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, resp.ValidationError(validateErr))

			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		token, user, err := authenticator.Login(ctx, req.Email, req.Password, req.Reminder)
		if err != nil {
			if errors.Is(err, auth.ErrInvalidCredentials) {
				render.Status(r, http.StatusBadRequest)
				render.JSON(w, r, resp.Error(auth.ErrInvalidCredentials.Error()))

				return
			}

			log.Error("failed to login user", sl.Err(err))

			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, resp.Error(resp.MsgInternalError))

			return
		}

		render.JSON(w, r, Response{
			Response: resp.OK("logged in", user.Profile()),
			Token:    token,
		})
	}
}
