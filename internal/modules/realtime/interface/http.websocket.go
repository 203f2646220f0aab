package transport

import (
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"sync/atomic"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"

	"doceGestaoWs/internal/modules/realtime/domain"
	"doceGestaoWs/internal/modules/realtime/infrastructure"
	"doceGestaoWs/internal/shared/auth"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

var wsCounter atomic.Uint64

// NewDashboardWebsocketHandler exposes /ws/dashboard. After the upgrade the
// client must emit join-dashboard to start receiving notification events.
func NewDashboardWebsocketHandler(hub *infrastructure.Hub, validator auth.TokenValidator, buffer int) echo.HandlerFunc {
	return func(c echo.Context) error {
		userID := ""
		if validator != nil {
			token := strings.TrimSpace(c.Param("token"))
			if token == "" {
				token = auth.ExtractToken(c.Request(), "token")
			}
			claims, err := validator.Validate(token)
			if err != nil {
				slog.Warn("ws auth failed", slog.String("ip", c.RealIP()), slog.Any("error", err))
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid or missing token")
			}
			userID = claims.Subject
		}

		conn, err := upgrader.Upgrade(c.Response(), c.Request(), nil)
		if err != nil {
			slog.Error("ws upgrade failed", slog.String("ip", c.RealIP()), slog.Any("error", err))
			return err
		}

		client := infrastructure.NewWSClient(hub.Registry(), conn, fmt.Sprintf("ws-%d", wsCounter.Add(1)), userID, buffer)
		hub.Registry().Register(client)

		go client.WritePump()
		go client.ReadPump()

		client.SendMessage(domain.ConnectedMessage("conectado às notificações em tempo real"))
		slog.Info("ws client connected", slog.String("connId", client.ID()), slog.String("userId", userID), slog.String("ip", c.RealIP()))
		return nil
	}
}
