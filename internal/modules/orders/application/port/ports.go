package port

import (
	"context"

	"doceGestaoWs/internal/modules/orders/domain"
)

// UnitOfWork runs fn inside one database transaction. The transaction commits
// when fn returns nil and rolls back otherwise; repositories called inside fn
// pick the transaction up from the context.
type UnitOfWork interface {
	Do(ctx context.Context, fn func(ctx context.Context) error) error
}

// OrderRepository persists and reads the order aggregate. The insert methods
// require a transaction in the context.
type OrderRepository interface {
	InsertOrder(ctx context.Context, order *domain.Order) error
	InsertItem(ctx context.Context, orderID string, item *domain.Item) error
	InsertEndereco(ctx context.Context, orderID string, endereco *domain.Endereco) error
	GetByCodigo(ctx context.Context, codigo string) (*domain.Order, error)
}

// ClientDirectory resolves client records referenced by incoming orders.
type ClientDirectory interface {
	FindClienteByID(ctx context.Context, id string) (*domain.Cliente, error)
}

// Notifier is the post-commit notification contract. Implementations must
// never raise to the caller; a lost notification never fails an order.
type Notifier interface {
	Notify(ctx context.Context, eventType string, data any)
}

// ItemInput is one line item as submitted by the caller.
type ItemInput struct {
	NomeProduto   string
	Quantidade    int
	PrecoUnitario float64
}

// CreateOrderCommand carries the validated-on-entry order payload. ValorTotal
// comes from the caller and is stored as-is, matching the existing contract
// with the frontend.
type CreateOrderCommand struct {
	ClienteID      string
	CardapioID     string
	Itens          []ItemInput
	ValorTotal     float64
	FormaPagamento string
	FormaEntrega   string
	Observacoes    string
	Endereco       *domain.Endereco
}

// OrderService is what the HTTP layer needs from the orders application.
type OrderService interface {
	Create(ctx context.Context, cmd CreateOrderCommand) (*domain.Order, error)
	GetByCodigo(ctx context.Context, codigo string) (*domain.Order, error)
}
