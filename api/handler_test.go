package api

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/Bernardo-Rodrigues/api-bate-papo-uol/domain"
	"github.com/Bernardo-Rodrigues/api-bate-papo-uol/repositories"
	"github.com/Bernardo-Rodrigues/api-bate-papo-uol/services"
	"github.com/Bernardo-Rodrigues/api-bate-papo-uol/storage"
	"github.com/dgraph-io/badger/v4"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"
)

func newTestApp(t *testing.T) (*fiber.App, *services.RoomService) {
	t.Helper()
	db, err := badger.Open(badger.DefaultOptions(t.TempDir()).WithLoggingLevel(badger.ERROR))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	store := storage.NewStore(db)
	log := slog.Default()
	rooms := services.NewRoomService(
		repositories.NewParticipantRepository(store, log),
		repositories.NewMessageRepository(store, log),
		nil,
		log,
	)

	app := fiber.New()
	NewHandler(rooms, log).Register(app)
	return app, rooms
}

func request(t *testing.T, app *fiber.App, method, path, user string, body any) *http.Response {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", fiber.MIMEApplicationJSON)
	if user != "" {
		req.Header.Set("User", user)
	}
	resp, err := app.Test(req)
	require.NoError(t, err)
	return resp
}

func TestHandler_Join(t *testing.T) {
	req := require.New(t)
	app, _ := newTestApp(t)

	resp := request(t, app, fiber.MethodPost, "/participants", "", fiber.Map{"name": "maria"})
	req.Equal(fiber.StatusCreated, resp.StatusCode)

	resp = request(t, app, fiber.MethodPost, "/participants", "", fiber.Map{"name": "maria"})
	req.Equal(fiber.StatusConflict, resp.StatusCode)

	resp = request(t, app, fiber.MethodPost, "/participants", "", fiber.Map{})
	req.Equal(fiber.StatusUnprocessableEntity, resp.StatusCode)
}

func TestHandler_ListParticipants(t *testing.T) {
	req := require.New(t)
	app, _ := newTestApp(t)

	request(t, app, fiber.MethodPost, "/participants", "", fiber.Map{"name": "maria"})

	resp := request(t, app, fiber.MethodGet, "/participants", "", nil)
	req.Equal(fiber.StatusOK, resp.StatusCode)

	var participants []participantResponse
	req.NoError(json.NewDecoder(resp.Body).Decode(&participants))
	req.Len(participants, 1)
	req.Equal("maria", participants[0].Name)
	req.Positive(participants[0].LastStatus)
}

func TestHandler_Heartbeat(t *testing.T) {
	req := require.New(t)
	app, _ := newTestApp(t)

	request(t, app, fiber.MethodPost, "/participants", "", fiber.Map{"name": "maria"})

	resp := request(t, app, fiber.MethodPost, "/status", "maria", nil)
	req.Equal(fiber.StatusOK, resp.StatusCode)

	resp = request(t, app, fiber.MethodPost, "/status", "ghost", nil)
	req.Equal(fiber.StatusNotFound, resp.StatusCode)
}

func TestHandler_PostMessage(t *testing.T) {
	req := require.New(t)
	app, _ := newTestApp(t)

	request(t, app, fiber.MethodPost, "/participants", "", fiber.Map{"name": "maria"})

	resp := request(t, app, fiber.MethodPost, "/messages", "maria",
		fiber.Map{"to": domain.Broadcast, "text": "bom dia", "type": "message"})
	req.Equal(fiber.StatusCreated, resp.StatusCode)

	var message messageResponse
	req.NoError(json.NewDecoder(resp.Body).Decode(&message))
	req.Equal("maria", message.From)
	req.NotEmpty(message.ID)

	// sender must be a live participant
	resp = request(t, app, fiber.MethodPost, "/messages", "ghost",
		fiber.Map{"to": domain.Broadcast, "text": "oi", "type": "message"})
	req.Equal(fiber.StatusNotFound, resp.StatusCode)

	// type outside the enum is rejected at the edge
	resp = request(t, app, fiber.MethodPost, "/messages", "maria",
		fiber.Map{"to": domain.Broadcast, "text": "oi", "type": "shout"})
	req.Equal(fiber.StatusUnprocessableEntity, resp.StatusCode)
}

func TestHandler_ListMessages_Visibility_And_Limit(t *testing.T) {
	req := require.New(t)
	app, rooms := newTestApp(t)
	req.NoError(rooms.Join("A"))

	_, err := rooms.PostMessage("A", domain.Broadcast, "para todos", domain.TypeMessage)
	req.NoError(err)
	_, err = rooms.PostMessage("A", "B", "segredo", domain.TypePrivate)
	req.NoError(err)

	fetch := func(user, path string) []messageResponse {
		resp := request(t, app, fiber.MethodGet, path, user, nil)
		req.Equal(fiber.StatusOK, resp.StatusCode)
		var out []messageResponse
		req.NoError(json.NewDecoder(resp.Body).Decode(&out))
		return out
	}

	req.Len(fetch("C", "/messages"), 2) // join status + broadcast
	req.Len(fetch("B", "/messages"), 3)
	req.Len(fetch("C", "/messages?limit=1"), 1)
	req.Len(fetch("C", "/messages?limit=50"), 2)
}

func TestHandler_EditMessage_Authorization(t *testing.T) {
	req := require.New(t)
	app, rooms := newTestApp(t)
	req.NoError(rooms.Join("maria"))
	message, err := rooms.PostMessage("maria", domain.Broadcast, "original", domain.TypeMessage)
	req.NoError(err)

	body := fiber.Map{"to": domain.Broadcast, "text": "editada", "type": "message"}

	resp := request(t, app, fiber.MethodPut, "/messages/"+message.ID.String(), "joao", body)
	req.Equal(fiber.StatusUnauthorized, resp.StatusCode)

	resp = request(t, app, fiber.MethodPut, "/messages/not-a-uuid", "maria", body)
	req.Equal(fiber.StatusNotFound, resp.StatusCode)

	resp = request(t, app, fiber.MethodPut, "/messages/"+message.ID.String(), "maria", body)
	req.Equal(fiber.StatusOK, resp.StatusCode)

	var updated messageResponse
	req.NoError(json.NewDecoder(resp.Body).Decode(&updated))
	req.Equal("editada", updated.Text)
}

func TestHandler_DeleteMessage_Authorization(t *testing.T) {
	req := require.New(t)
	app, rooms := newTestApp(t)
	req.NoError(rooms.Join("maria"))
	message, err := rooms.PostMessage("maria", domain.Broadcast, "apaga", domain.TypeMessage)
	req.NoError(err)

	resp := request(t, app, fiber.MethodDelete, "/messages/"+message.ID.String(), "joao", nil)
	req.Equal(fiber.StatusUnauthorized, resp.StatusCode)

	resp = request(t, app, fiber.MethodDelete, "/messages/"+message.ID.String(), "maria", nil)
	req.Equal(fiber.StatusOK, resp.StatusCode)

	resp = request(t, app, fiber.MethodDelete, "/messages/"+message.ID.String(), "maria", nil)
	req.Equal(fiber.StatusNotFound, resp.StatusCode)
}

func TestHandler_Health(t *testing.T) {
	req := require.New(t)
	app, _ := newTestApp(t)

	resp := request(t, app, fiber.MethodGet, "/health", "", nil)
	req.Equal(fiber.StatusOK, resp.StatusCode)
}
