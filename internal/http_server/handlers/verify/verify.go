package verify

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"time"

	"finance_service/internal/auth"
	"finance_service/internal/http_server/middleware/authn"
	resp "finance_service/internal/lib/api/response"
	"finance_service/internal/lib/logger/sl"
	"finance_service/internal/models"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
)

type Request struct {
	Token string `json:"token"`
}

type Response struct {
	resp.Response
	Valid bool   `json:"valid"`
	Token string `json:"token"`
}

type Verifier interface {
	Verify(ctx context.Context, token string) (models.User, error)
}

// New godoc
// @Summary  Check a token
// @Description The token is read from the body, or from the Authorization header when the body has none.
// @Tags     auth
// @Accept   json
// @Produce  json
// @Param    request body     Request false "token"
// @Success  200     {object} Response{data=models.Profile}
// @Failure  400     {object} Response
// @Failure  500     {object} Response
// @Router   /auth/verify [post]
func New(log *slog.Logger, verifier Verifier) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.verify.New"

		log := log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		var req Request

		// an empty body is allowed; the header is the fallback
		if err := render.DecodeJSON(r.Body, &req); err != nil && !errors.Is(err, io.EOF) {
			log.Error("failed to decode request body", sl.Err(err))

			responseError(w, r, http.StatusBadRequest, resp.MsgDecodeFailed)

			return
		}

		token := req.Token
		if token == "" {
			token = authn.BearerToken(r)
		}

		if token == "" {
			responseError(w, r, http.StatusBadRequest, resp.MsgValidationError+": field token is a required field")

			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		user, err := verifier.Verify(ctx, token)
		if err != nil {
			if errors.Is(err, auth.ErrInvalidToken) {
				responseError(w, r, http.StatusBadRequest, auth.ErrInvalidToken.Error())

				return
			}

			log.Error("failed to verify token", sl.Err(err))

			responseError(w, r, http.StatusInternalServerError, resp.MsgInternalError)

			return
		}

		render.JSON(w, r, Response{
			Response: resp.OK("token is valid", user.Profile()),
			Valid:    true,
			Token:    token,
		})
	}
}

func responseError(w http.ResponseWriter, r *http.Request, status int, msg string) {
	render.Status(r, status)
	render.JSON(w, r, Response{
		Response: resp.Error(msg),
		Valid:    false,
		Token:    "",
	})
}
