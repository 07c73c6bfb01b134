package http

import (
	"encoding/json"
	"net/http"

	"github.com/MikeRez0/ypstore/internal/core/domain"
	"github.com/MikeRez0/ypstore/internal/core/port"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/govalues/decimal"
	"go.uber.org/zap"
)

type ProductHandler struct {
	Handler
	service port.Service
}

// ProductRequest takes the price as a JSON number or a numeric string.
type ProductRequest struct {
	Name  string      `json:"name" binding:"required"`
	Price json.Number `json:"price" binding:"required"`
	Stock int64       `json:"stock"`
}

func NewProductHandler(service port.Service, logger *zap.Logger) (*ProductHandler, error) {
	return &ProductHandler{
		Handler: *NewHandler(logger),
		service: service,
	}, nil
}

func (ph *ProductHandler) CreateProduct(ctx *gin.Context) {
	req := ProductRequest{}
	err := ctx.ShouldBindJSON(&req)
	if err != nil {
		ph.handleValidationError(ctx, err)
		return
	}

	price, err := decimal.Parse(req.Price.String())
	if err != nil {
		ph.handleValidationError(ctx, err)
		return
	}

	product, err := ph.service.CreateProduct(ctx, getCaller(ctx), &domain.Product{
		Name:  req.Name,
		Price: price,
		Stock: req.Stock,
	})
	if err != nil {
		ph.handleError(ctx, err)
		return
	}

	ph.handleSuccessWithStatus(ctx, newProductResponse(product), http.StatusCreated)
}

func (ph *ProductHandler) GetProduct(ctx *gin.Context) {
	id, err := uuid.Parse(ctx.Param("id"))
	if err != nil {
		ph.handleValidationError(ctx, err)
		return
	}

	product, err := ph.service.GetProduct(ctx, id)
	if err != nil {
		ph.handleError(ctx, err)
		return
	}

	ph.handleSuccess(ctx, newProductResponse(product))
}
