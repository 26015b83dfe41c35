// internal/handlers/product/product_handler.go
package product

import (
	"net/http"
	"strconv"

	"checkout-service/internal/domain/product"
	"checkout-service/internal/middleware"
	"checkout-service/internal/pkg/response"
	service "checkout-service/internal/service/product"

	"github.com/gin-gonic/gin"
)

type ProductHandler struct {
	productService *service.Service
}

func NewProductHandler(productService *service.Service) *ProductHandler {
	return &ProductHandler{
		productService: productService,
	}
}

func (h *ProductHandler) CreateProduct(c *gin.Context) {
	sellerID, ok := middleware.GetAdminID(c)
	if !ok {
		response.Unauthorized(c, "authentication required")
		return
	}

	var req product.CreateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "invalid request", err)
		return
	}

	result, err := h.productService.Create(c.Request.Context(), sellerID, &req)
	if err != nil {
		response.FromError(c, "failed to create product", err)
		return
	}

	response.Success(c, http.StatusCreated, "product created", result)
}

func (h *ProductHandler) GetProduct(c *gin.Context) {
	sellerID, ok := middleware.GetAdminID(c)
	if !ok {
		response.Unauthorized(c, "authentication required")
		return
	}

	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.Error(c, http.StatusBadRequest, "invalid product ID", err)
		return
	}

	result, err := h.productService.Get(c.Request.Context(), sellerID, id)
	if err != nil {
		response.FromError(c, "product not found", err)
		return
	}

	response.Success(c, http.StatusOK, "product retrieved", result)
}

func (h *ProductHandler) UpdateProduct(c *gin.Context) {
	sellerID, ok := middleware.GetAdminID(c)
	if !ok {
		response.Unauthorized(c, "authentication required")
		return
	}

	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.Error(c, http.StatusBadRequest, "invalid product ID", err)
		return
	}

	var req product.UpdateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "invalid request", err)
		return
	}

	result, err := h.productService.Update(c.Request.Context(), sellerID, id, &req)
	if err != nil {
		response.FromError(c, "failed to update product", err)
		return
	}

	response.Success(c, http.StatusOK, "product updated", result)
}

func (h *ProductHandler) ListProducts(c *gin.Context) {
	sellerID, ok := middleware.GetAdminID(c)
	if !ok {
		response.Unauthorized(c, "authentication required")
		return
	}

	var f product.ListFilters
	if err := c.ShouldBindQuery(&f); err != nil {
		response.Error(c, http.StatusBadRequest, "invalid filters", err)
		return
	}

	result, err := h.productService.List(c.Request.Context(), sellerID, &f)
	if err != nil {
		response.FromError(c, "failed to list products", err)
		return
	}

	response.Success(c, http.StatusOK, "products retrieved", result)
}

func (h *ProductHandler) DeleteProduct(c *gin.Context) {
	sellerID, ok := middleware.GetAdminID(c)
	if !ok {
		response.Unauthorized(c, "authentication required")
		return
	}

	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.Error(c, http.StatusBadRequest, "invalid product ID", err)
		return
	}

	if err := h.productService.Delete(c.Request.Context(), sellerID, id); err != nil {
		response.FromError(c, "failed to delete product", err)
		return
	}

	response.Success(c, http.StatusOK, "product deleted", nil)
}
