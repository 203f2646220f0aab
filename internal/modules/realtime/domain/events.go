package domain

import "time"

const (
	EventConnected    = "connected"
	EventNewOrder     = "new_order"
	EventOrderUpdated = "order_updated"

	// RoomDashboard groups the connections that opted into order notifications.
	RoomDashboard = "dashboard"
)

// OrderClient is the client snapshot carried inside a new-order notification.
type OrderClient struct {
	ID       string `json:"id"`
	Nome     string `json:"nome"`
	Telefone string `json:"telefone,omitempty"`
}

// NewOrderData is the payload of a new_order event. Field names follow the wire
// contract consumed by the dashboard frontend.
type NewOrderData struct {
	ID           string      `json:"id"`
	Codigo       string      `json:"codigo"`
	ValorTotal   float64     `json:"valorTotal"`
	Status       string      `json:"status"`
	FormaEntrega string      `json:"formaEntrega,omitempty"`
	Cliente      OrderClient `json:"cliente"`
	CreatedAt    time.Time   `json:"createdAt"`
}
