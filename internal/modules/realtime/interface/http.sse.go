package transport

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"sync/atomic"

	"github.com/labstack/echo/v4"

	"doceGestaoWs/internal/modules/realtime/domain"
	"doceGestaoWs/internal/modules/realtime/infrastructure"
	"doceGestaoWs/internal/shared/auth"
)

var sseCounter atomic.Uint64

// NewStreamHandler exposes the long-lived notification stream consumed by the
// dashboard. Each request becomes one registered connection in the dashboard
// room until the peer aborts it.
func NewStreamHandler(hub *infrastructure.Hub, validator auth.TokenValidator, allowAnonymous bool, buffer int) echo.HandlerFunc {
	return func(c echo.Context) error {
		userID := ""
		if validator != nil {
			claims, err := validator.Validate(auth.ExtractToken(c.Request(), "token"))
			switch {
			case err == nil:
				userID = claims.Subject
			case !allowAnonymous:
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid or missing token")
			}
		}

		res := c.Response()
		res.Header().Set(echo.HeaderContentType, "text/event-stream")
		res.Header().Set("Cache-Control", "no-cache")
		res.Header().Set("Connection", "keep-alive")
		res.Header().Set(echo.HeaderAccessControlAllowOrigin, "*")
		res.WriteHeader(http.StatusOK)

		connected, err := json.Marshal(domain.ConnectedMessage("conectado ao stream de notificações"))
		if err != nil {
			return err
		}
		if err := infrastructure.WriteFrame(res, res, connected); err != nil {
			return nil
		}

		client := infrastructure.NewSSEClient(fmt.Sprintf("sse-%d", sseCounter.Add(1)), buffer)
		registry := hub.Registry()
		registry.Join(client, domain.RoomDashboard)
		defer registry.Unregister(client)

		slog.Info("sse client connected", slog.String("connId", client.ID()), slog.String("userId", userID), slog.String("ip", c.RealIP()))

		if err := client.Serve(res, res, c.Request().Context().Done()); err != nil {
			slog.Warn("sse stream write error", slog.String("connId", client.ID()), slog.Any("error", err))
		}
		slog.Info("sse client disconnected", slog.String("connId", client.ID()))
		return nil
	}
}
