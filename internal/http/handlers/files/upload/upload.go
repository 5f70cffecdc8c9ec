// Package upload реализует HTTP-обработчик загрузки аватара.
package upload

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/appointment-scheduler/internal/http/middlewarectx"
	"github.com/magabrotheeeer/appointment-scheduler/internal/http/response"
	"github.com/magabrotheeeer/appointment-scheduler/internal/lib/sl"
	"github.com/magabrotheeeer/appointment-scheduler/internal/models"
	"github.com/magabrotheeeer/appointment-scheduler/internal/services/files"
	"github.com/magabrotheeeer/appointment-scheduler/internal/storage"
)

// MaxUploadSize предельный размер тела запроса.
const MaxUploadSize = 5 << 20

// Service описывает загрузку аватара.
type Service interface {
	UploadAvatar(ctx context.Context, userID int, name string, src io.Reader) (*models.File, error)
}

// Handler обрабатывает POST /files.
type Handler struct {
	log     *slog.Logger
	service Service
}

// New создает Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary Загрузить аватар
// @Description Сохраняет изображение и делает его аватаром текущего пользователя
// @Tags Files
// @Accept  mpfd
// @Produce  json
// @Param file formData file true "Изображение"
// @Success 200 {object} response.Response{data=models.File} "Файл сохранен"
// @Failure 400 {object} response.ErrorResponse "Файл не передан или неподдерживаемый тип"
// @Failure 401 {object} response.ErrorResponse "Пользователь не авторизован"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера"
// @Router /files [post]
// @Security BearerAuth
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.files.upload"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	userID, ok := middlewarectx.UserIDFrom(r.Context())
	if !ok {
		log.Error("user id missing in context")
		render.Status(r, http.StatusUnauthorized)
		render.JSON(w, r, response.Error("token not provided"))
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, MaxUploadSize)
	file, header, err := r.FormFile("file")
	if err != nil {
		log.Info("failed to read multipart file", sl.Err(err))
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, response.Error("file is required"))
		return
	}
	defer file.Close()

	f, err := h.service.UploadAvatar(r.Context(), userID, header.Filename, file)
	if err != nil {
		switch {
		case errors.Is(err, files.ErrUnsupportedType):
			log.Info("unsupported file type", slog.String("name", header.Filename))
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, response.Error("unsupported file type"))
		case errors.Is(err, storage.ErrNotFound):
			log.Info("user not found", slog.Int("user_id", userID))
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, response.Error("user not found"))
		default:
			log.Error("failed to upload file", sl.Err(err))
			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, response.Error("failed to upload file"))
		}
		return
	}

	render.JSON(w, r, response.OKWithData(f))
}
