package handler

import (
	"net/http"

	"github.com/Mpratama260304/MpratamaStore-sub001/internal/domain/catalog/model"
	"github.com/Mpratama260304/MpratamaStore-sub001/internal/domain/catalog/repository"
	"github.com/Mpratama260304/MpratamaStore-sub001/internal/pkg/storage"
	"github.com/Mpratama260304/MpratamaStore-sub001/pkg/response"
	"github.com/Mpratama260304/MpratamaStore-sub001/pkg/utils"

	"github.com/gin-gonic/gin"
)

type CatalogHandler struct {
	repo  repository.CatalogRepository
	store storage.ObjectStore
}

func NewCatalogHandler(repo repository.CatalogRepository, store storage.ObjectStore) *CatalogHandler {
	return &CatalogHandler{repo: repo, store: store}
}

// ListProducts lists published products.
// @Summary List products
// @Tags Catalog
// @Produce json
// @Router /products [get]
func (h *CatalogHandler) ListProducts(c *gin.Context) {
	offset, limit := utils.Pagination(c)

	products, total, err := h.repo.ListPublished(c.Request.Context(), offset, limit)
	if err != nil {
		response.HandleError(c, err)
		return
	}

	response.Success(c, gin.H{
		"products": products,
		"total":    total,
	})
}

type CreateProductInput struct {
	Name      string `json:"name" binding:"required"`
	Slug      string `json:"slug" binding:"required"`
	Price     int64  `json:"price" binding:"required,gt=0"`
	Currency  string `json:"currency"`
	Published bool   `json:"published"`
}

// CreateProduct adds a product (admin).
// @Summary Create product
// @Tags Admin
// @Accept json
// @Produce json
// @Router /admin/products [post]
func (h *CatalogHandler) CreateProduct(c *gin.Context) {
	var input CreateProductInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, http.StatusBadRequest, response.ErrInvalidParam, err.Error())
		return
	}
	if input.Currency == "" {
		input.Currency = "IDR"
	}

	product := &model.Product{
		Name:      input.Name,
		Slug:      input.Slug,
		Price:     input.Price,
		Currency:  input.Currency,
		Published: input.Published,
	}
	if err := h.repo.CreateProduct(c.Request.Context(), product); err != nil {
		response.HandleError(c, err)
		return
	}
	response.Success(c, product)
}

// AttachAsset uploads the downloadable file for a product (admin).
// Assets are immutable once attached; uploading again attaches a new
// asset rather than replacing an existing one.
// @Summary Attach digital asset
// @Tags Admin
// @Accept multipart/form-data
// @Produce json
// @Router /admin/products/{id}/asset [post]
func (h *CatalogHandler) AttachAsset(c *gin.Context) {
	productID := c.Param("id")

	product, err := h.repo.GetProduct(c.Request.Context(), productID)
	if err != nil {
		response.HandleError(c, err)
		return
	}
	if product == nil {
		response.Error(c, http.StatusNotFound, response.ErrNotFound, "product not found")
		return
	}

	file, err := c.FormFile("file")
	if err != nil {
		response.Error(c, http.StatusBadRequest, response.ErrInvalidParam, "file is required")
		return
	}

	if h.store == nil {
		response.Error(c, http.StatusInternalServerError, response.ErrServerInternal, "object storage not configured")
		return
	}

	key, err := h.store.Put("assets/"+productID, file)
	if err != nil {
		response.HandleError(c, err)
		return
	}

	asset := &model.DigitalAsset{
		ProductID:   productID,
		StorageKey:  key,
		Filename:    file.Filename,
		ContentType: file.Header.Get("Content-Type"),
	}
	if err := h.repo.CreateAsset(c.Request.Context(), asset); err != nil {
		response.HandleError(c, err)
		return
	}
	response.Success(c, asset)
}
