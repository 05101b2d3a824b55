package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"

	"github.com/iliyamo/skycomfort-server/internal/model"
	"github.com/iliyamo/skycomfort-server/internal/service"
	"github.com/iliyamo/skycomfort-server/internal/utils"
)

// CatalogHandler serves /api/services.
type CatalogHandler struct {
	Catalog *service.CatalogService
}

func NewCatalogHandler(catalog *service.CatalogService) *CatalogHandler {
	return &CatalogHandler{Catalog: catalog}
}

type createServiceReq struct {
	Title        string              `json:"title"`
	Description  string              `json:"description"`
	Price        decimal.NullDecimal `json:"price"`
	Type         model.ServiceType   `json:"type"`
	Category     *string             `json:"category"`
	ImageURL     *string             `json:"imageUrl"`
	Availability *bool               `json:"availability"`
	Metadata     model.JSONMap       `json:"metadata"`
}

// List returns the catalog. ?q searches title and description and
// ?available filters on availability.
func (h *CatalogHandler) List(c echo.Context) error {
	ctx, cancel := reqCtx(c)
	defer cancel()

	var (
		services []model.Service
		err      error
	)
	if v := c.QueryParam("available"); v != "" {
		available, perr := strconv.ParseBool(v)
		if perr != nil {
			return utils.JSONError(c, http.StatusBadRequest, "available must be true or false")
		}
		services, err = h.Catalog.FindByAvailability(ctx, available)
	} else {
		services, err = h.Catalog.Search(ctx, c.QueryParam("q"))
	}
	if err != nil {
		return respond(c, err)
	}
	return utils.JSONList(c, http.StatusOK, len(services), echo.Map{"services": services})
}

func (h *CatalogHandler) Get(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return badID(c)
	}
	ctx, cancel := reqCtx(c)
	defer cancel()

	sv, err := h.Catalog.FindByID(ctx, id)
	if err != nil {
		return respond(c, err)
	}
	return utils.JSONSuccess(c, http.StatusOK, echo.Map{"service": sv})
}

func (h *CatalogHandler) ByType(c echo.Context) error {
	ctx, cancel := reqCtx(c)
	defer cancel()

	services, err := h.Catalog.FindByType(ctx, model.ServiceType(c.Param("type")))
	if err != nil {
		return respond(c, err)
	}
	return utils.JSONList(c, http.StatusOK, len(services), echo.Map{"services": services})
}

func (h *CatalogHandler) ByCategory(c echo.Context) error {
	ctx, cancel := reqCtx(c)
	defer cancel()

	services, err := h.Catalog.FindByCategory(ctx, c.Param("category"))
	if err != nil {
		return respond(c, err)
	}
	return utils.JSONList(c, http.StatusOK, len(services), echo.Map{"services": services})
}

func (h *CatalogHandler) Create(c echo.Context) error {
	var req createServiceReq
	if err := c.Bind(&req); err != nil {
		return badBody(c)
	}
	if !req.Price.Valid {
		return utils.JSONError(c, http.StatusBadRequest, "Title, price, and type are required")
	}
	sv := &model.Service{
		Title:        req.Title,
		Description:  req.Description,
		Price:        req.Price.Decimal,
		Type:         req.Type,
		Category:     req.Category,
		ImageURL:     req.ImageURL,
		Availability: req.Availability == nil || *req.Availability,
		Metadata:     req.Metadata,
	}
	ctx, cancel := reqCtx(c)
	defer cancel()

	if err := h.Catalog.CreateService(ctx, sv); err != nil {
		return respond(c, err)
	}
	return utils.JSONSuccess(c, http.StatusCreated, echo.Map{"service": sv})
}

func (h *CatalogHandler) Update(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return badID(c)
	}
	var patch model.ServicePatch
	if err := c.Bind(&patch); err != nil {
		return badBody(c)
	}
	ctx, cancel := reqCtx(c)
	defer cancel()

	sv, err := h.Catalog.UpdateService(ctx, id, patch)
	if err != nil {
		return respond(c, err)
	}
	return utils.JSONSuccess(c, http.StatusOK, echo.Map{"service": sv})
}

type availabilityReq struct {
	Availability *bool `json:"availability"`
}

func (h *CatalogHandler) SetAvailability(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return badID(c)
	}
	var req availabilityReq
	if err := c.Bind(&req); err != nil {
		return badBody(c)
	}
	if req.Availability == nil {
		return utils.JSONError(c, http.StatusBadRequest, "Availability status is required")
	}
	ctx, cancel := reqCtx(c)
	defer cancel()

	sv, err := h.Catalog.SetAvailability(ctx, id, *req.Availability)
	if err != nil {
		return respond(c, err)
	}
	return utils.JSONSuccess(c, http.StatusOK, echo.Map{"service": sv})
}

// Delete fails with 409 while orders still reference the service.
func (h *CatalogHandler) Delete(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return badID(c)
	}
	ctx, cancel := reqCtx(c)
	defer cancel()

	deleted, err := h.Catalog.Delete(ctx, id)
	if err != nil {
		return respond(c, err)
	}
	if !deleted {
		return utils.JSONError(c, http.StatusNotFound, "Service with ID "+strconv.FormatUint(id, 10)+" not found")
	}
	return c.NoContent(http.StatusNoContent)
}
