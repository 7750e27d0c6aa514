package routes

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"slices"
	"time"

	"haven/haven/config"
	"haven/haven/controllers"
	"haven/haven/utils/logging"
	"haven/haven/utils/types"

	"github.com/coder/websocket"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

const socketWriteTimeout = 10 * time.Second

func ChatRoutes(ctrl *controllers.ChatController, cfg config.Config) chi.Router {
	r := chi.NewRouter()
	// POST /api/chat : assess one message and reply
	r.With(requestTimeout(cfg.RequestTimeout)).Post("/", handleJSON(func(r *http.Request) (any, int, error) {
		var req types.ChatRequest
		if err := decodeBody(r, &req); err != nil {
			return nil, http.StatusBadRequest, err
		}
		resp, err := ctrl.Chat(r.Context(), req)
		if err != nil {
			return nil, http.StatusInternalServerError, err
		}
		return resp, http.StatusOK, nil
	}))

	// GET /api/chat/ws : one chat request per text frame. Frames without a
	// conversation_id continue the conversation this socket last used.
	r.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
		conn, err := websocket.Accept(w, r, acceptOptions(cfg.AllowedOrigins))
		if err != nil {
			logging.ErrorLogger.Error("websocket accept error", zap.Error(err))
			return
		}
		defer conn.CloseNow()
		conn.SetReadLimit(maxBodyBytes)

		ctx := r.Context()
		var current *uint
		for {
			typ, data, err := conn.Read(ctx)
			if err != nil {
				return
			}
			if typ != websocket.MessageText {
				conn.Close(websocket.StatusUnsupportedData, "unsupported data")
				return
			}

			var req types.ChatRequest
			if err := json.Unmarshal(data, &req); err != nil {
				if writeFrame(ctx, conn, map[string]string{"error": errInvalidBody.Error()}) != nil {
					return
				}
				continue
			}
			if req.ConversationID == nil {
				req.ConversationID = current
			}

			resp, err := ctrl.Chat(ctx, req)
			if err != nil {
				status, message := errorStatus(err, http.StatusInternalServerError)
				if status >= http.StatusInternalServerError {
					logging.ErrorLogger.Error("websocket chat failed",
						zap.String("trace_id", logging.TraceID(ctx)),
						zap.Error(err),
					)
				}
				if writeFrame(ctx, conn, map[string]string{"error": message}) != nil {
					return
				}
				continue
			}
			id := resp.ConversationID
			current = &id
			if writeFrame(ctx, conn, resp) != nil {
				return
			}
		}
	})
	return r
}

func writeFrame(ctx context.Context, conn *websocket.Conn, v any) error {
	payload, err := json.Marshal(v)
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(ctx, socketWriteTimeout)
	defer cancel()
	return conn.Write(ctx, websocket.MessageText, payload)
}

// acceptOptions turns the CORS origin list into websocket origin patterns,
// which match on host only.
func acceptOptions(origins []string) *websocket.AcceptOptions {
	if len(origins) == 0 || slices.Contains(origins, "*") {
		return &websocket.AcceptOptions{InsecureSkipVerify: true}
	}
	patterns := make([]string, 0, len(origins))
	for _, origin := range origins {
		if u, err := url.Parse(origin); err == nil && u.Host != "" {
			patterns = append(patterns, u.Host)
			continue
		}
		patterns = append(patterns, origin)
	}
	return &websocket.AcceptOptions{OriginPatterns: patterns}
}
