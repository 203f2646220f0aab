package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"doceGestaoWs/internal/modules/orders/domain"
)

// ClientsRepo reads the client records referenced by incoming orders.
type ClientsRepo struct {
	pool *pgxpool.Pool
}

func NewClientsRepo(pool *pgxpool.Pool) *ClientsRepo {
	return &ClientsRepo{pool: pool}
}

func (r *ClientsRepo) FindClienteByID(ctx context.Context, id string) (*domain.Cliente, error) {
	var cliente domain.Cliente
	err := r.pool.QueryRow(ctx, `
		SELECT id, nome, COALESCE(telefone, '')
		FROM clientes
		WHERE id = $1`, id,
	).Scan(&cliente.ID, &cliente.Nome, &cliente.Telefone)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrClienteNotFound
		}
		return nil, fmt.Errorf("select cliente: %w", err)
	}
	return &cliente, nil
}
