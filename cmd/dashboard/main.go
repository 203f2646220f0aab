package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/gorilla/websocket"

	"doceGestaoWs/internal/modules/realtime/domain"
	"doceGestaoWs/internal/shared/logging"
)

// A terminal counterpart of the web dashboard: it subscribes over the socket
// transport, keeps the same bounded feed, and prints a toast line per order.

type wsFrame struct {
	Event   string         `json:"event"`
	Payload domain.Message `json:"payload"`
}

func main() {
	url := flag.String("url", "ws://localhost:3001/ws/dashboard", "websocket endpoint")
	token := flag.String("token", "", "session token")
	limit := flag.Int("limit", defaultHistoryLimit(), "history size")
	flag.Parse()

	slog.SetDefault(logging.New(os.Stderr, logging.Config{Level: "info"}))

	feed := domain.NewFeed(*limit, func(msg *domain.Message) {
		// Stand-in for the browser's native notification.
		fmt.Printf("\a")
	})

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if err := subscribe(*url, *token, feed); err != nil {
				slog.Warn("dashboard disconnected", slog.Any("error", err))
			}
			feed.SetConnected(false)
			select {
			case <-stop:
				return
			case <-time.After(3 * time.Second):
			}
		}
	}()

	select {
	case <-stop:
	case <-done:
	}
	fmt.Printf("\n%d pedidos no histórico\n", len(feed.Entries()))
}

func defaultHistoryLimit() int {
	if raw := os.Getenv("DASHBOARD_HISTORY_LIMIT"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 {
			return n
		}
	}
	return 10
}

// subscribe runs one connection until it drops. The caller owns reconnection.
func subscribe(url, token string, feed *domain.Feed) error {
	header := map[string][]string{}
	if token != "" {
		header["Authorization"] = []string{"Bearer " + token}
	}
	conn, _, err := websocket.DefaultDialer.Dial(url, header)
	if err != nil {
		return fmt.Errorf("dial %s: %w", url, err)
	}
	defer conn.Close()

	if err := conn.WriteJSON(map[string]string{"event": "join-dashboard"}); err != nil {
		return fmt.Errorf("join dashboard: %w", err)
	}
	feed.SetConnected(true)
	slog.Info("dashboard connected", slog.String("url", url))

	for {
		var frame wsFrame
		if err := conn.ReadJSON(&frame); err != nil {
			return fmt.Errorf("read: %w", err)
		}
		if frame.Event != "notification" {
			continue
		}
		if !feed.Push(&frame.Payload) {
			continue
		}
		if feed.ConsumeToast() {
			printToast(&frame.Payload)
		}
	}
}

func printToast(msg *domain.Message) {
	data, err := json.Marshal(msg.Data)
	if err != nil {
		return
	}
	var order domain.NewOrderData
	if err := json.Unmarshal(data, &order); err != nil {
		return
	}
	fmt.Printf("[%s] novo pedido %s | %s | R$ %.2f\n",
		time.Now().Format("15:04:05"), order.Codigo, order.Cliente.Nome, order.ValorTotal)
}
