package productrepo

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"maps"
	"net/http"
	"net/url"
	"slices"
	"strings"
	"time"

	"stockui/internal/domain"
	"stockui/internal/errors"
	"stockui/internal/pkg/logger"
)

// ProductRepository implementa a interface domain.ProductRepository falando HTTP
// com a API de inventário. Não guarda estado além do cliente HTTP.
type ProductRepository struct {
	BaseURL string       // e.g. "http://localhost:8000/api" (sem barra final)
	Client  *http.Client // Timeout do cliente limita cada chamada
	Logger  logger.Logger
}

// NewProductRepository cria e retorna uma nova instância do Repositório.
// Aqui injetamos as dependências de Infraestrutura (URL do backend, timeout e Logger).
func NewProductRepository(baseURL string, timeout time.Duration, log logger.Logger) *ProductRepository {
	return &ProductRepository{
		BaseURL: strings.TrimRight(baseURL, "/"),
		Client:  &http.Client{Timeout: timeout},
		Logger:  log,
	}
}

// backendError é o corpo de erro devolvido pela API (o campo pode faltar).
type backendError struct {
	Message string              `json:"message"`
	Errors  map[string][]string `json:"errors"` // 422 de validação: campo -> mensagens
}

// fields devolve os nomes dos campos rejeitados, em ordem alfabética.
func (be backendError) fields() []string {
	if len(be.Errors) == 0 {
		return nil
	}
	return slices.Sorted(maps.Keys(be.Errors))
}

// ListProducts busca todos os produtos (GET /products).
func (r *ProductRepository) ListProducts(ctx context.Context) ([]domain.Product, error) {
	resp, err := r.send(ctx, http.MethodGet, "/products", nil)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, r.statusError(resp, "listar produtos")
	}

	var products []domain.Product
	if err := json.NewDecoder(resp.Body).Decode(&products); err != nil {
		r.Logger.Error("Resposta ilegível ao listar produtos", err)
		return nil, errors.NewInternalError("resposta inválida de /products", err)
	}
	if products == nil {
		products = []domain.Product{}
	}

	r.Logger.Debug("Produtos listados", map[string]interface{}{"count": len(products)})
	return products, nil
}

// GetProduct busca um produto (GET /product/{id}). 404 vira NotFoundError.
func (r *ProductRepository) GetProduct(ctx context.Context, id domain.ProductID) (domain.Product, error) {
	resp, err := r.send(ctx, http.MethodGet, productPath(id), nil)
	if err != nil {
		return domain.Product{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return domain.Product{}, r.statusError(resp, "buscar produto "+id.String())
	}

	var product domain.Product
	if err := json.NewDecoder(resp.Body).Decode(&product); err != nil {
		r.Logger.Error("Resposta ilegível ao buscar produto", err)
		return domain.Product{}, errors.NewInternalError("resposta inválida de /product", err)
	}
	return product, nil
}

// CreateProduct cria um produto (POST /product). O backend atribui o ID.
func (r *ProductRepository) CreateProduct(ctx context.Context, fields domain.ProductFields) error {
	resp, err := r.send(ctx, http.MethodPost, "/product", fields)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if !isSuccess(resp.StatusCode) {
		return r.statusError(resp, "criar produto")
	}
	r.Logger.Info("Produto criado", map[string]interface{}{"name": fields.Name})
	return nil
}

// UpdateProduct edita nome, descrição e preço (PUT /product/{id}). Estoque nunca é enviado.
func (r *ProductRepository) UpdateProduct(ctx context.Context, id domain.ProductID, update domain.ProductUpdate) error {
	resp, err := r.send(ctx, http.MethodPut, productPath(id), update)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if !isSuccess(resp.StatusCode) {
		return r.statusError(resp, "atualizar produto "+id.String())
	}
	r.Logger.Info("Produto atualizado", map[string]interface{}{"product_id": id.String()})
	return nil
}

// DeleteProduct remove um produto (DELETE /product/{id}).
func (r *ProductRepository) DeleteProduct(ctx context.Context, id domain.ProductID) error {
	resp, err := r.send(ctx, http.MethodDelete, productPath(id), nil)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if !isSuccess(resp.StatusCode) {
		return r.statusError(resp, "remover produto "+id.String())
	}
	r.Logger.Info("Produto removido", map[string]interface{}{"product_id": id.String()})
	return nil
}

// RecordMovement registra uma movimentação (POST /inventory_movement).
// Qualquer 400 deste endpoint é tratado como estoque insuficiente; a mensagem do backend
// é repassada sem alteração (vazia se ausente).
func (r *ProductRepository) RecordMovement(ctx context.Context, movement domain.InventoryMovement) error {
	resp, err := r.send(ctx, http.MethodPost, "/inventory_movement", movement)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusBadRequest {
		msg := readError(resp.Body).Message
		r.Logger.Warn("Movimentação rejeitada pelo backend", map[string]interface{}{
			"product_id": movement.ProductID.String(),
			"type":       string(movement.Type),
			"quantity":   movement.Quantity,
			"message":    msg,
		})
		return errors.NewInsufficientStockError(msg)
	}
	if !isSuccess(resp.StatusCode) {
		return r.statusError(resp, "registrar movimentação")
	}

	r.Logger.Info("Movimentação registrada", map[string]interface{}{
		"product_id": movement.ProductID.String(),
		"type":       string(movement.Type),
		"quantity":   movement.Quantity,
	})
	return nil
}

// --- Helpers ---

// send monta e executa a requisição. Falhas de transporte viram NetworkError.
// Quem chama deve fechar resp.Body.
func (r *ProductRepository) send(ctx context.Context, method, path string, payload interface{}) (*http.Response, error) {
	var body io.Reader
	if payload != nil {
		buf, err := json.Marshal(payload)
		if err != nil {
			return nil, errors.NewInternalError("falha ao serializar payload", err)
		}
		body = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, r.BaseURL+path, body)
	if err != nil {
		return nil, errors.NewInternalError("falha ao montar requisição", err)
	}
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	r.Logger.Debug("Chamando API de inventário", map[string]interface{}{"method": method, "path": path})

	resp, err := r.Client.Do(req)
	if err != nil {
		r.Logger.Error(fmt.Sprintf("Falha de rede em %s %s", method, path), err)
		return nil, errors.NewNetworkError(method+" "+path, err)
	}
	return resp, nil
}

// statusError traduz um status de erro do backend para a taxonomia do StockUI.
func (r *ProductRepository) statusError(resp *http.Response, op string) error {
	be := readError(resp.Body)
	msg := be.Message
	fields := map[string]interface{}{"op": op, "status": resp.StatusCode, "message": msg}

	switch {
	case resp.StatusCode == http.StatusNotFound:
		r.Logger.Warn("Recurso não encontrado no backend", fields)
		return errors.NewNotFoundError(op)
	case resp.StatusCode >= 400 && resp.StatusCode < 500:
		r.Logger.Warn("Dados rejeitados pelo backend", fields)
		if rejected := be.fields(); rejected != nil {
			return errors.NewFieldValidationError(msg, rejected)
		}
		return errors.NewValidationError(msg)
	default:
		r.Logger.Error("Resposta inesperada do backend", fmt.Errorf("%s: status %d: %s", op, resp.StatusCode, msg))
		return errors.NewInternalError(fmt.Sprintf("%s: status %d", op, resp.StatusCode), nil)
	}
}

// readError lê o corpo de erro; campos vazios se o corpo faltar ou não for JSON.
func readError(body io.Reader) backendError {
	var be backendError
	raw, err := io.ReadAll(io.LimitReader(body, 64<<10))
	if err != nil || len(raw) == 0 {
		return be
	}
	if json.Unmarshal(raw, &be) != nil {
		return backendError{}
	}
	return be
}

func productPath(id domain.ProductID) string {
	return "/product/" + url.PathEscape(id.String())
}

func isSuccess(status int) bool {
	return status >= 200 && status < 300
}
