package transport

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"doceGestaoWs/internal/modules/orders/application/port"
	"doceGestaoWs/internal/modules/orders/domain"
	"doceGestaoWs/internal/shared/httputil"
)

// CreatePedidoRequest mirrors the JSON contract of the dashboard order form.
type CreatePedidoRequest struct {
	ClienteID      string             `json:"clienteId"`
	CardapioID     string             `json:"cardapioId,omitempty"`
	Itens          []PedidoItemInput  `json:"itens"`
	ValorTotal     float64            `json:"valorTotal"`
	FormaPagamento string             `json:"formaPagamento,omitempty"`
	FormaEntrega   string             `json:"formaEntrega,omitempty"`
	Observacoes    string             `json:"observacoes,omitempty"`
	Endereco       *PedidoEnderecoDTO `json:"endereco,omitempty"`
}

type PedidoItemInput struct {
	NomeProduto   string  `json:"nomeProduto"`
	Quantidade    int     `json:"quantidade"`
	PrecoUnitario float64 `json:"precoUnitario"`
}

type PedidoEnderecoDTO struct {
	Rua         string `json:"rua"`
	Numero      string `json:"numero"`
	Complemento string `json:"complemento,omitempty"`
	Bairro      string `json:"bairro"`
	Cidade      string `json:"cidade"`
	Estado      string `json:"estado,omitempty"`
	CEP         string `json:"cep"`
}

type PedidoResponse struct {
	ID         string    `json:"id"`
	Codigo     string    `json:"codigo"`
	Status     string    `json:"status"`
	ValorTotal float64   `json:"valorTotal"`
	CreatedAt  time.Time `json:"createdAt"`
}

type PedidoDetailResponse struct {
	PedidoResponse
	FormaPagamento string             `json:"formaPagamento,omitempty"`
	FormaEntrega   string             `json:"formaEntrega,omitempty"`
	Observacoes    string             `json:"observacoes,omitempty"`
	Itens          []PedidoItemOutput `json:"itens"`
}

type PedidoItemOutput struct {
	NomeProduto   string  `json:"nomeProduto"`
	Quantidade    int     `json:"quantidade"`
	PrecoUnitario float64 `json:"precoUnitario"`
	PrecoTotal    float64 `json:"precoTotal"`
}

// PedidosHandler serves the order endpoints.
type PedidosHandler struct {
	service port.OrderService
	errors  *httputil.ErrorMapper
}

func NewPedidosHandler(service port.OrderService) *PedidosHandler {
	return &PedidosHandler{
		service: service,
		errors: httputil.NewErrorMapper().
			WithMapping(domain.ErrInvalidOrder, http.StatusBadRequest, "pedido inválido").
			WithMapping(domain.ErrClienteNotFound, http.StatusNotFound, "cliente não encontrado").
			WithMapping(domain.ErrOrderNotFound, http.StatusNotFound, "pedido não encontrado").
			WithDefault(http.StatusInternalServerError, "erro ao processar pedido"),
	}
}

func (h *PedidosHandler) Register(e *echo.Echo) {
	e.POST("/api/pedidos", h.Create)
	e.GET("/api/pedidos/:codigo", h.GetByCodigo)
}

func (h *PedidosHandler) Create(c echo.Context) error {
	var req CreatePedidoRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "corpo da requisição inválido")
	}

	cmd := port.CreateOrderCommand{
		ClienteID:      req.ClienteID,
		CardapioID:     req.CardapioID,
		ValorTotal:     req.ValorTotal,
		FormaPagamento: req.FormaPagamento,
		FormaEntrega:   req.FormaEntrega,
		Observacoes:    req.Observacoes,
	}
	for _, item := range req.Itens {
		cmd.Itens = append(cmd.Itens, port.ItemInput{
			NomeProduto:   item.NomeProduto,
			Quantidade:    item.Quantidade,
			PrecoUnitario: item.PrecoUnitario,
		})
	}
	if req.Endereco != nil {
		cmd.Endereco = &domain.Endereco{
			Rua:         req.Endereco.Rua,
			Numero:      req.Endereco.Numero,
			Complemento: req.Endereco.Complemento,
			Bairro:      req.Endereco.Bairro,
			Cidade:      req.Endereco.Cidade,
			Estado:      req.Endereco.Estado,
			CEP:         req.Endereco.CEP,
		}
	}

	order, err := h.service.Create(c.Request().Context(), cmd)
	if err != nil {
		info := h.errors.Map(err)
		if info.Status >= http.StatusInternalServerError {
			slog.Error("create pedido failed", slog.String("clienteId", req.ClienteID), slog.Any("error", err))
		}
		return echo.NewHTTPError(info.Status, info.Message)
	}

	return c.JSON(http.StatusCreated, PedidoResponse{
		ID:         order.ID,
		Codigo:     order.Codigo,
		Status:     order.Status,
		ValorTotal: order.ValorTotal,
		CreatedAt:  order.CreatedAt,
	})
}

func (h *PedidosHandler) GetByCodigo(c echo.Context) error {
	order, err := h.service.GetByCodigo(c.Request().Context(), c.Param("codigo"))
	if err != nil {
		info := h.errors.Map(err)
		return echo.NewHTTPError(info.Status, info.Message)
	}

	resp := PedidoDetailResponse{
		PedidoResponse: PedidoResponse{
			ID:         order.ID,
			Codigo:     order.Codigo,
			Status:     order.Status,
			ValorTotal: order.ValorTotal,
			CreatedAt:  order.CreatedAt,
		},
		FormaPagamento: order.FormaPagamento,
		FormaEntrega:   order.FormaEntrega,
		Observacoes:    order.Observacoes,
		Itens:          make([]PedidoItemOutput, 0, len(order.Items)),
	}
	for _, item := range order.Items {
		resp.Itens = append(resp.Itens, PedidoItemOutput{
			NomeProduto:   item.NomeProduto,
			Quantidade:    item.Quantidade,
			PrecoUnitario: item.PrecoUnitario,
			PrecoTotal:    item.PrecoTotal,
		})
	}
	return c.JSON(http.StatusOK, resp)
}
