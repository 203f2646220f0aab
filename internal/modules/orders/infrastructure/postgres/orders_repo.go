package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"doceGestaoWs/internal/modules/orders/domain"
)

// OrdersRepo persists the order aggregate. The insert methods run inside the
// transaction placed in the context by UnitOfWork.Do; reads go to the pool.
type OrdersRepo struct {
	pool *pgxpool.Pool
}

func NewOrdersRepo(pool *pgxpool.Pool) *OrdersRepo {
	return &OrdersRepo{pool: pool}
}

func (r *OrdersRepo) InsertOrder(ctx context.Context, order *domain.Order) error {
	tx, err := txFromContext(ctx)
	if err != nil {
		return err
	}
	_, err = tx.Exec(ctx, `
		INSERT INTO pedidos (id, codigo, cliente_id, cardapio_id, valor_total, status, forma_pagamento, forma_entrega, observacoes, created_at)
		VALUES ($1, $2, $3, NULLIF($4, ''), $5, $6, NULLIF($7, ''), NULLIF($8, ''), NULLIF($9, ''), $10)`,
		order.ID, order.Codigo, order.ClienteID, order.CardapioID, order.ValorTotal,
		order.Status, order.FormaPagamento, order.FormaEntrega, order.Observacoes, order.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert pedido: %w", err)
	}
	return nil
}

func (r *OrdersRepo) InsertItem(ctx context.Context, orderID string, item *domain.Item) error {
	tx, err := txFromContext(ctx)
	if err != nil {
		return err
	}
	_, err = tx.Exec(ctx, `
		INSERT INTO pedido_itens (id, pedido_id, nome_produto, quantidade, preco_unitario, preco_total)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		item.ID, orderID, item.NomeProduto, item.Quantidade, item.PrecoUnitario, item.PrecoTotal,
	)
	if err != nil {
		return fmt.Errorf("insert item: %w", err)
	}
	return nil
}

func (r *OrdersRepo) InsertEndereco(ctx context.Context, orderID string, endereco *domain.Endereco) error {
	tx, err := txFromContext(ctx)
	if err != nil {
		return err
	}
	_, err = tx.Exec(ctx, `
		INSERT INTO pedido_enderecos (id, pedido_id, rua, numero, complemento, bairro, cidade, estado, cep)
		VALUES ($1, $2, $3, $4, NULLIF($5, ''), $6, $7, NULLIF($8, ''), $9)`,
		uuid.NewString(), orderID, endereco.Rua, endereco.Numero, endereco.Complemento,
		endereco.Bairro, endereco.Cidade, endereco.Estado, endereco.CEP,
	)
	if err != nil {
		return fmt.Errorf("insert endereco: %w", err)
	}
	return nil
}

// GetByCodigo loads one order and its items by the human-facing code.
func (r *OrdersRepo) GetByCodigo(ctx context.Context, codigo string) (*domain.Order, error) {
	var order domain.Order
	err := r.pool.QueryRow(ctx, `
		SELECT id, codigo, cliente_id, COALESCE(cardapio_id, ''), valor_total, status,
		       COALESCE(forma_pagamento, ''), COALESCE(forma_entrega, ''), COALESCE(observacoes, ''), created_at
		FROM pedidos
		WHERE codigo = $1`, codigo,
	).Scan(
		&order.ID, &order.Codigo, &order.ClienteID, &order.CardapioID, &order.ValorTotal,
		&order.Status, &order.FormaPagamento, &order.FormaEntrega, &order.Observacoes, &order.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrOrderNotFound
		}
		return nil, fmt.Errorf("select pedido: %w", err)
	}

	rows, err := r.pool.Query(ctx, `
		SELECT id, nome_produto, quantidade, preco_unitario, preco_total
		FROM pedido_itens
		WHERE pedido_id = $1`, order.ID)
	if err != nil {
		return nil, fmt.Errorf("select itens: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var item domain.Item
		if err := rows.Scan(&item.ID, &item.NomeProduto, &item.Quantidade, &item.PrecoUnitario, &item.PrecoTotal); err != nil {
			return nil, fmt.Errorf("scan item: %w", err)
		}
		order.Items = append(order.Items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate itens: %w", err)
	}
	return &order, nil
}
