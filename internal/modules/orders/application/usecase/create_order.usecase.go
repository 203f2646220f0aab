package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"doceGestaoWs/internal/modules/orders/application/port"
	"doceGestaoWs/internal/modules/orders/domain"
	rtdomain "doceGestaoWs/internal/modules/realtime/domain"
)

// CreateOrderUseCase persists an order aggregate atomically and, after the
// commit, pushes a new_order notification to the connected dashboards.
type CreateOrderUseCase struct {
	uow      port.UnitOfWork
	repo     port.OrderRepository
	clients  port.ClientDirectory
	notifier port.Notifier
	now      func() time.Time
}

var _ port.OrderService = (*CreateOrderUseCase)(nil)

func NewCreateOrderUseCase(uow port.UnitOfWork, repo port.OrderRepository, clients port.ClientDirectory, notifier port.Notifier) *CreateOrderUseCase {
	return &CreateOrderUseCase{
		uow:      uow,
		repo:     repo,
		clients:  clients,
		notifier: notifier,
		now:      time.Now,
	}
}

// Create validates the command, resolves the client, runs the order
// transaction, and fires the notification. Notification failures never reach
// the caller; transaction failures roll everything back and surface as one
// generic error.
func (uc *CreateOrderUseCase) Create(ctx context.Context, cmd port.CreateOrderCommand) (*domain.Order, error) {
	if err := validate(cmd); err != nil {
		return nil, err
	}

	cliente, err := uc.clients.FindClienteByID(ctx, cmd.ClienteID)
	if err != nil {
		return nil, fmt.Errorf("resolve cliente %s: %w", cmd.ClienteID, err)
	}

	order := uc.buildOrder(cmd)
	if err := uc.uow.Do(ctx, func(txCtx context.Context) error {
		if err := uc.repo.InsertOrder(txCtx, order); err != nil {
			return fmt.Errorf("insert order: %w", err)
		}
		for i := range order.Items {
			if err := uc.repo.InsertItem(txCtx, order.ID, &order.Items[i]); err != nil {
				return fmt.Errorf("insert item %d: %w", i+1, err)
			}
		}
		if order.WantsDelivery() {
			if err := uc.repo.InsertEndereco(txCtx, order.ID, order.Endereco); err != nil {
				return fmt.Errorf("insert endereco: %w", err)
			}
		}
		return nil
	}); err != nil {
		slog.Error("order transaction failed", slog.String("clienteId", cmd.ClienteID), slog.Any("error", err))
		return nil, fmt.Errorf("create order: %w", err)
	}

	uc.notifier.Notify(ctx, rtdomain.EventNewOrder, &rtdomain.NewOrderData{
		ID:           order.ID,
		Codigo:       order.Codigo,
		ValorTotal:   order.ValorTotal,
		Status:       order.Status,
		FormaEntrega: order.FormaEntrega,
		Cliente: rtdomain.OrderClient{
			ID:       cliente.ID,
			Nome:     cliente.Nome,
			Telefone: cliente.Telefone,
		},
		CreatedAt: order.CreatedAt,
	})

	return order, nil
}

// GetByCodigo loads one order with its items.
func (uc *CreateOrderUseCase) GetByCodigo(ctx context.Context, codigo string) (*domain.Order, error) {
	codigo = strings.TrimSpace(codigo)
	if codigo == "" {
		return nil, domain.ErrOrderNotFound
	}
	return uc.repo.GetByCodigo(ctx, codigo)
}

func (uc *CreateOrderUseCase) buildOrder(cmd port.CreateOrderCommand) *domain.Order {
	order := &domain.Order{
		ID:             uuid.NewString(),
		Codigo:         domain.GenerateCode(),
		ClienteID:      cmd.ClienteID,
		CardapioID:     strings.TrimSpace(cmd.CardapioID),
		ValorTotal:     cmd.ValorTotal,
		Status:         domain.StatusPendente,
		FormaPagamento: strings.TrimSpace(cmd.FormaPagamento),
		FormaEntrega:   strings.TrimSpace(cmd.FormaEntrega),
		Observacoes:    strings.TrimSpace(cmd.Observacoes),
		CreatedAt:      uc.now().UTC(),
		Endereco:       cmd.Endereco,
	}
	for _, item := range cmd.Itens {
		order.Items = append(order.Items, domain.Item{
			ID:            uuid.NewString(),
			NomeProduto:   strings.TrimSpace(item.NomeProduto),
			Quantidade:    item.Quantidade,
			PrecoUnitario: item.PrecoUnitario,
			PrecoTotal:    item.PrecoUnitario * float64(item.Quantidade),
		})
	}
	return order
}

func validate(cmd port.CreateOrderCommand) error {
	if strings.TrimSpace(cmd.ClienteID) == "" {
		return fmt.Errorf("%w: clienteId obrigatório", domain.ErrInvalidOrder)
	}
	if len(cmd.Itens) == 0 {
		return fmt.Errorf("%w: pedido sem itens", domain.ErrInvalidOrder)
	}
	for i, item := range cmd.Itens {
		if err := domain.ValidateItem(i, item.NomeProduto, item.Quantidade, item.PrecoUnitario); err != nil {
			return err
		}
	}
	if cmd.ValorTotal < 0 {
		return fmt.Errorf("%w: valorTotal negativo", domain.ErrInvalidOrder)
	}
	return nil
}
