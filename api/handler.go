// Package api exposes the chat room over HTTP.
package api

import (
	"errors"
	"log/slog"
	"os"

	"github.com/Bernardo-Rodrigues/api-bate-papo-uol/domain"
	apperrors "github.com/Bernardo-Rodrigues/api-bate-papo-uol/errors"
	"github.com/Bernardo-Rodrigues/api-bate-papo-uol/services"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/shirou/gopsutil/process"
)

var validate = validator.New()

type Handler struct {
	rooms services.IRoomService
	log   *slog.Logger
}

func NewHandler(rooms services.IRoomService, log *slog.Logger) *Handler {
	return &Handler{rooms: rooms, log: log}
}

func (h *Handler) Register(app *fiber.App) {
	app.Post("/participants", h.join)
	app.Get("/participants", h.listParticipants)
	app.Post("/status", h.heartbeat)
	app.Post("/messages", h.postMessage)
	app.Get("/messages", h.listMessages)
	app.Put("/messages/:id", h.editMessage)
	app.Delete("/messages/:id", h.deleteMessage)
	app.Get("/health", h.health)
}

type joinRequest struct {
	Name string `json:"name" validate:"required"`
}

type messageRequest struct {
	To   string `json:"to" validate:"required"`
	Text string `json:"text" validate:"required"`
	Type string `json:"type" validate:"required,oneof=message private_message status"`
}

type participantResponse struct {
	Name       string `json:"name"`
	LastStatus int64  `json:"lastStatus"`
}

type messageResponse struct {
	ID   string `json:"id"`
	From string `json:"from"`
	To   string `json:"to"`
	Text string `json:"text"`
	Type string `json:"type"`
	Time string `json:"time"`
}

func toMessageResponse(m domain.Message) messageResponse {
	return messageResponse{
		ID:   m.ID.String(),
		From: m.From,
		To:   m.To,
		Text: m.Text,
		Type: string(m.Type),
		Time: m.Time,
	}
}

func (h *Handler) join(c *fiber.Ctx) error {
	var req joinRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{"error": "invalid request body"})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{"error": err.Error()})
	}
	if err := h.rooms.Join(req.Name); err != nil {
		return h.fail(c, err)
	}
	return c.SendStatus(fiber.StatusCreated)
}

func (h *Handler) listParticipants(c *fiber.Ctx) error {
	participants, err := h.rooms.Participants()
	if err != nil {
		return h.fail(c, err)
	}
	out := make([]participantResponse, 0, len(participants))
	for _, p := range participants {
		out = append(out, participantResponse{Name: p.Name, LastStatus: p.LastStatus})
	}
	return c.JSON(out)
}

// heartbeat refreshes lastStatus for the user named in the User header.
func (h *Handler) heartbeat(c *fiber.Ctx) error {
	if err := h.rooms.Heartbeat(c.Get("User")); err != nil {
		return h.fail(c, err)
	}
	return c.SendStatus(fiber.StatusOK)
}

func (h *Handler) postMessage(c *fiber.Ctx) error {
	var req messageRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{"error": "invalid request body"})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{"error": err.Error()})
	}
	message, err := h.rooms.PostMessage(c.Get("User"), req.To, req.Text, domain.MessageType(req.Type))
	if err != nil {
		return h.fail(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(toMessageResponse(message))
}

func (h *Handler) listMessages(c *fiber.Ctx) error {
	messages, err := h.rooms.Messages(c.Get("User"), c.QueryInt("limit"))
	if err != nil {
		return h.fail(c, err)
	}
	out := make([]messageResponse, 0, len(messages))
	for _, m := range messages {
		out = append(out, toMessageResponse(m))
	}
	return c.JSON(out)
}

func (h *Handler) editMessage(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "unknown message id"})
	}
	var req messageRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{"error": "invalid request body"})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{"error": err.Error()})
	}
	message, err := h.rooms.EditMessage(id, c.Get("User"), req.To, req.Text, domain.MessageType(req.Type))
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(toMessageResponse(message))
}

func (h *Handler) deleteMessage(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "unknown message id"})
	}
	if err := h.rooms.DeleteMessage(id, c.Get("User")); err != nil {
		return h.fail(c, err)
	}
	return c.SendStatus(fiber.StatusOK)
}

// health reports process self stats, mostly for local monitoring.
func (h *Handler) health(c *fiber.Ctx) error {
	p, err := process.NewProcess(int32(os.Getpid()))
	if err != nil {
		return h.fail(c, err)
	}
	memInfo, err := p.MemoryInfo()
	if err != nil {
		return h.fail(c, err)
	}
	cpuPercent, err := p.CPUPercent()
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(fiber.Map{
		"status":     "ok",
		"pid":        os.Getpid(),
		"ramBytes":   memInfo.RSS,
		"cpuPercent": cpuPercent,
	})
}

// fail maps the error taxonomy to HTTP status codes. Storage failures
// stay 500 and are the only ones worth logging here.
func (h *Handler) fail(c *fiber.Ctx, err error) error {
	status := fiber.StatusInternalServerError
	switch {
	case errors.Is(err, apperrors.ErrParticipantExists):
		status = fiber.StatusConflict
	case errors.Is(err, apperrors.ErrParticipantNotFound),
		errors.Is(err, apperrors.ErrMessageNotFound):
		status = fiber.StatusNotFound
	case errors.Is(err, apperrors.ErrNotMessageAuthor):
		status = fiber.StatusUnauthorized
	case errors.Is(err, apperrors.ErrInvalidMessage),
		errors.Is(err, apperrors.ErrInvalidName):
		status = fiber.StatusUnprocessableEntity
	}
	if status == fiber.StatusInternalServerError {
		h.log.Error("Request failed", "method", c.Method(), "path", c.Path(), "err", err)
	}
	return c.Status(status).JSON(fiber.Map{"error": err.Error()})
}
