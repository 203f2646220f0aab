package usecase

import (
	"context"
	"errors"
	"regexp"
	"testing"

	"doceGestaoWs/internal/modules/orders/application/port"
	"doceGestaoWs/internal/modules/orders/domain"
	rtdomain "doceGestaoWs/internal/modules/realtime/domain"
)

type txKey struct{}

// fakeTx stages inserts until the fake unit of work commits them.
type fakeTx struct {
	orders    []*domain.Order
	items     map[string][]domain.Item
	enderecos map[string]*domain.Endereco
}

func newFakeTx() *fakeTx {
	return &fakeTx{
		items:     make(map[string][]domain.Item),
		enderecos: make(map[string]*domain.Endereco),
	}
}

// fakeStore holds only committed state, so a rolled-back transaction leaves
// no trace in it.
type fakeStore struct {
	orders    map[string]*domain.Order
	items     map[string][]domain.Item
	enderecos map[string]*domain.Endereco
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		orders:    make(map[string]*domain.Order),
		items:     make(map[string][]domain.Item),
		enderecos: make(map[string]*domain.Endereco),
	}
}

type fakeUnitOfWork struct {
	store *fakeStore
}

func (u *fakeUnitOfWork) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	tx := newFakeTx()
	if err := fn(context.WithValue(ctx, txKey{}, tx)); err != nil {
		return err // staged writes are discarded
	}
	for _, order := range tx.orders {
		u.store.orders[order.ID] = order
	}
	for id, items := range tx.items {
		u.store.items[id] = items
	}
	for id, endereco := range tx.enderecos {
		u.store.enderecos[id] = endereco
	}
	return nil
}

type fakeOrderRepo struct {
	failOnItem int // 1-based index of the item insert that fails; 0 disables
	itemCalls  int
}

func txFrom(ctx context.Context) *fakeTx {
	return ctx.Value(txKey{}).(*fakeTx)
}

func (r *fakeOrderRepo) InsertOrder(ctx context.Context, order *domain.Order) error {
	tx := txFrom(ctx)
	tx.orders = append(tx.orders, order)
	return nil
}

func (r *fakeOrderRepo) InsertItem(ctx context.Context, orderID string, item *domain.Item) error {
	r.itemCalls++
	if r.failOnItem > 0 && r.itemCalls == r.failOnItem {
		return errors.New("unique constraint violation")
	}
	tx := txFrom(ctx)
	tx.items[orderID] = append(tx.items[orderID], *item)
	return nil
}

func (r *fakeOrderRepo) InsertEndereco(ctx context.Context, orderID string, endereco *domain.Endereco) error {
	txFrom(ctx).enderecos[orderID] = endereco
	return nil
}

func (r *fakeOrderRepo) GetByCodigo(context.Context, string) (*domain.Order, error) {
	return nil, domain.ErrOrderNotFound
}

type fakeDirectory struct {
	clientes map[string]*domain.Cliente
}

func (d *fakeDirectory) FindClienteByID(_ context.Context, id string) (*domain.Cliente, error) {
	if cliente, ok := d.clientes[id]; ok {
		return cliente, nil
	}
	return nil, domain.ErrClienteNotFound
}

type recordingNotifier struct {
	events []string
	data   []any
}

func (n *recordingNotifier) Notify(_ context.Context, eventType string, data any) {
	n.events = append(n.events, eventType)
	n.data = append(n.data, data)
}

func newTestSubject(repo *fakeOrderRepo) (*CreateOrderUseCase, *fakeStore, *recordingNotifier) {
	store := newFakeStore()
	notifier := &recordingNotifier{}
	directory := &fakeDirectory{clientes: map[string]*domain.Cliente{
		"7": {ID: "7", Nome: "Maria Doces", Telefone: "81999990000"},
	}}
	uc := NewCreateOrderUseCase(&fakeUnitOfWork{store: store}, repo, directory, notifier)
	return uc, store, notifier
}

func TestCreateOrderCommitsAggregate(t *testing.T) {
	t.Parallel()

	uc, store, _ := newTestSubject(&fakeOrderRepo{})

	order, err := uc.Create(context.Background(), port.CreateOrderCommand{
		ClienteID: "7",
		Itens: []port.ItemInput{
			{NomeProduto: "Bolo", Quantidade: 2, PrecoUnitario: 25},
			{NomeProduto: "Brigadeiro", Quantidade: 10, PrecoUnitario: 2.5},
			{NomeProduto: "Torta", Quantidade: 1, PrecoUnitario: 40},
		},
		ValorTotal:   115,
		FormaEntrega: domain.FormaEntregaRetirada,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(store.orders) != 1 {
		t.Fatalf("expected exactly 1 order row, got %d", len(store.orders))
	}
	items := store.items[order.ID]
	if len(items) != 3 {
		t.Fatalf("expected exactly 3 item rows, got %d", len(items))
	}
	for i, item := range items {
		want := item.PrecoUnitario * float64(item.Quantidade)
		if item.PrecoTotal != want {
			t.Fatalf("item %d: precoTotal %v, want %v", i, item.PrecoTotal, want)
		}
	}
	if len(store.enderecos) != 0 {
		t.Fatal("pickup order must not persist an address row")
	}
	if order.Status != domain.StatusPendente {
		t.Fatalf("expected status pendente, got %q", order.Status)
	}
}

func TestCreateOrderRollsBackOnItemFailure(t *testing.T) {
	t.Parallel()

	uc, store, notifier := newTestSubject(&fakeOrderRepo{failOnItem: 2})

	_, err := uc.Create(context.Background(), port.CreateOrderCommand{
		ClienteID: "7",
		Itens: []port.ItemInput{
			{NomeProduto: "Bolo", Quantidade: 1, PrecoUnitario: 30},
			{NomeProduto: "Torta", Quantidade: 1, PrecoUnitario: 40},
			{NomeProduto: "Doce", Quantidade: 1, PrecoUnitario: 5},
		},
		ValorTotal: 75,
	})
	if err == nil {
		t.Fatal("expected a failure when an item insert fails")
	}

	if len(store.orders) != 0 {
		t.Fatalf("expected zero order rows after rollback, got %d", len(store.orders))
	}
	if total := len(store.items); total != 0 {
		t.Fatalf("expected zero item rows after rollback, got %d", total)
	}
	if len(notifier.events) != 0 {
		t.Fatal("notification must never be attempted for a failed transaction")
	}
}

func TestCreateOrderEndToEndScenario(t *testing.T) {
	t.Parallel()

	uc, store, notifier := newTestSubject(&fakeOrderRepo{})

	order, err := uc.Create(context.Background(), port.CreateOrderCommand{
		ClienteID:    "7",
		Itens:        []port.ItemInput{{NomeProduto: "Bolo", Quantidade: 2, PrecoUnitario: 25.00}},
		ValorTotal:   50.00,
		FormaEntrega: domain.FormaEntregaRetirada,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if pattern := regexp.MustCompile(`^PD\d+[A-Z0-9]{5}$`); !pattern.MatchString(order.Codigo) {
		t.Fatalf("codigo %q does not match PD<digits><5 alphanumeric>", order.Codigo)
	}

	items := store.items[order.ID]
	if len(items) != 1 || items[0].PrecoTotal != 50.00 {
		t.Fatalf("expected one item with precoTotal 50.00, got %+v", items)
	}

	if len(notifier.events) != 1 || notifier.events[0] != rtdomain.EventNewOrder {
		t.Fatalf("expected one new_order notification, got %v", notifier.events)
	}
	data := notifier.data[0].(*rtdomain.NewOrderData)
	if data.ValorTotal != 50.00 {
		t.Fatalf("expected broadcast valorTotal 50.00, got %v", data.ValorTotal)
	}
	if data.Cliente.Nome != "Maria Doces" {
		t.Fatalf("expected cliente snapshot in payload, got %+v", data.Cliente)
	}
	if data.Codigo != order.Codigo {
		t.Fatal("broadcast must carry the committed order code")
	}
}

func TestCreateOrderPersistsDeliveryAddress(t *testing.T) {
	t.Parallel()

	uc, store, _ := newTestSubject(&fakeOrderRepo{})

	order, err := uc.Create(context.Background(), port.CreateOrderCommand{
		ClienteID:    "7",
		Itens:        []port.ItemInput{{NomeProduto: "Bolo", Quantidade: 1, PrecoUnitario: 25}},
		ValorTotal:   25,
		FormaEntrega: domain.FormaEntregaEntrega,
		Endereco:     &domain.Endereco{Rua: "Rua das Flores", Numero: "12", Bairro: "Centro", Cidade: "Recife", CEP: "50000-000"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if store.enderecos[order.ID] == nil {
		t.Fatal("delivery order should persist the address snapshot")
	}
}

func TestCreateOrderUnknownClient(t *testing.T) {
	t.Parallel()

	uc, store, notifier := newTestSubject(&fakeOrderRepo{})

	_, err := uc.Create(context.Background(), port.CreateOrderCommand{
		ClienteID:  "404",
		Itens:      []port.ItemInput{{NomeProduto: "Bolo", Quantidade: 1, PrecoUnitario: 25}},
		ValorTotal: 25,
	})
	if !errors.Is(err, domain.ErrClienteNotFound) {
		t.Fatalf("expected ErrClienteNotFound, got %v", err)
	}
	if len(store.orders) != 0 || len(notifier.events) != 0 {
		t.Fatal("nothing should be persisted or notified for an unknown client")
	}
}

func TestCreateOrderValidation(t *testing.T) {
	t.Parallel()

	uc, _, _ := newTestSubject(&fakeOrderRepo{})

	cases := []struct {
		name string
		cmd  port.CreateOrderCommand
	}{
		{"no items", port.CreateOrderCommand{ClienteID: "7", ValorTotal: 10}},
		{"missing client", port.CreateOrderCommand{Itens: []port.ItemInput{{NomeProduto: "Bolo", Quantidade: 1, PrecoUnitario: 10}}, ValorTotal: 10}},
		{"bad quantity", port.CreateOrderCommand{ClienteID: "7", Itens: []port.ItemInput{{NomeProduto: "Bolo", Quantidade: 0, PrecoUnitario: 10}}, ValorTotal: 10}},
		{"negative total", port.CreateOrderCommand{ClienteID: "7", Itens: []port.ItemInput{{NomeProduto: "Bolo", Quantidade: 1, PrecoUnitario: 10}}, ValorTotal: -1}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := uc.Create(context.Background(), tc.cmd); !errors.Is(err, domain.ErrInvalidOrder) {
				t.Fatalf("expected ErrInvalidOrder, got %v", err)
			}
		})
	}
}
