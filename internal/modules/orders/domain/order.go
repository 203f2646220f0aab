package domain

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"strings"
	"time"
)

var (
	// ErrInvalidOrder wraps every validation failure on an incoming order.
	ErrInvalidOrder = errors.New("invalid order")
	// ErrClienteNotFound is returned when the referenced client does not exist.
	ErrClienteNotFound = errors.New("cliente not found")
	// ErrOrderNotFound is returned when looking up an order by code fails.
	ErrOrderNotFound = errors.New("order not found")
)

const (
	StatusPendente = "pendente"

	FormaEntregaRetirada = "retirada"
	FormaEntregaEntrega  = "entrega"
)

// Order is the aggregate persisted in one transaction: the order row, its
// items, and the optional delivery address snapshot.
type Order struct {
	ID             string
	Codigo         string
	ClienteID      string
	CardapioID     string
	ValorTotal     float64
	Status         string
	FormaPagamento string
	FormaEntrega   string
	Observacoes    string
	CreatedAt      time.Time
	Items          []Item
	Endereco       *Endereco
}

type Item struct {
	ID            string
	NomeProduto   string
	Quantidade    int
	PrecoUnitario float64
	PrecoTotal    float64
}

// Endereco is the delivery address captured at order time. It is a snapshot,
// not a reference to the client's registered address.
type Endereco struct {
	Rua         string
	Numero      string
	Complemento string
	Bairro      string
	Cidade      string
	Estado      string
	CEP         string
}

// Cliente is the read model attached to order notifications.
type Cliente struct {
	ID       string
	Nome     string
	Telefone string
}

// WantsDelivery reports whether the order needs an address row.
func (o *Order) WantsDelivery() bool {
	return o.FormaEntrega == FormaEntregaEntrega && o.Endereco != nil
}

const codeSuffixAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// GenerateCode produces the human-facing order code: the PD prefix, the
// current unix-millisecond timestamp, and a 5-character random suffix.
// Uniqueness is probabilistic, not checked against the store.
func GenerateCode() string {
	var suffix [5]byte
	for i := range suffix {
		suffix[i] = codeSuffixAlphabet[rand.IntN(len(codeSuffixAlphabet))]
	}
	return fmt.Sprintf("PD%d%s", time.Now().UnixMilli(), suffix[:])
}

// ValidateItem checks one line item before it enters the aggregate.
func ValidateItem(index int, nome string, quantidade int, precoUnitario float64) error {
	if strings.TrimSpace(nome) == "" {
		return fmt.Errorf("%w: item %d sem nome", ErrInvalidOrder, index+1)
	}
	if quantidade < 1 {
		return fmt.Errorf("%w: item %d com quantidade %d", ErrInvalidOrder, index+1, quantidade)
	}
	if precoUnitario < 0 {
		return fmt.Errorf("%w: item %d com preço negativo", ErrInvalidOrder, index+1)
	}
	return nil
}
