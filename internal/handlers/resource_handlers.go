package handlers

import (
	"context"
	"net/http"

	"kidspace/internal/common"
	"kidspace/internal/models"
	"kidspace/internal/query"
	"kidspace/internal/repositories"
	"kidspace/internal/services"

	"github.com/labstack/echo/v4"
)

// Messages are the confirmation texts of one resource.
type Messages struct {
	Created string
	Updated string
	Deleted string
}

// CompositeWriter takes over the writes of a resource spanning several tables.
type CompositeWriter interface {
	Create(ctx context.Context, db repositories.TxStarter, rec models.Record) (int64, error)
	Update(ctx context.Context, db repositories.TxStarter, id int64, rec models.Record) error
	Delete(ctx context.Context, db repositories.TxStarter, id int64) error
}

// ResourceHandlers serves list/get/create/update/delete for one resource.
type ResourceHandlers struct {
	resource *query.Resource
	records  services.RecordService
	writer   CompositeWriter
	messages Messages
}

func NewResourceHandlers(resource *query.Resource, records services.RecordService, messages Messages) *ResourceHandlers {
	return &ResourceHandlers{resource: resource, records: records, messages: messages}
}

// WithWriter routes create, update and delete through w.
func (h *ResourceHandlers) WithWriter(w CompositeWriter) *ResourceHandlers {
	h.writer = w
	return h
}

// Resource returns the resource served.
func (h *ResourceHandlers) Resource() *query.Resource { return h.resource }

// List handles GET /<resource>
func (h *ResourceHandlers) List(c echo.Context) error {
	_, conn, err := requestScope(c)
	if err != nil {
		return common.SendError(c, err)
	}

	records, err := h.records.List(c.Request().Context(), conn, h.resource, c.QueryParams())
	if err != nil {
		return common.SendError(c, err)
	}
	return c.JSON(http.StatusOK, records)
}

// Get handles GET /<resource>/:id
func (h *ResourceHandlers) Get(c echo.Context) error {
	_, conn, err := requestScope(c)
	if err != nil {
		return common.SendError(c, err)
	}
	id, err := common.ParseID(c, "id")
	if err != nil {
		return common.SendError(c, err)
	}

	rec, err := h.records.Get(c.Request().Context(), conn, h.resource, id)
	if err != nil {
		return common.SendError(c, err)
	}
	return c.JSON(http.StatusOK, rec)
}

// Create handles POST /<resource>
func (h *ResourceHandlers) Create(c echo.Context) error {
	_, conn, err := requestScope(c)
	if err != nil {
		return common.SendError(c, err)
	}
	rec, err := decodeBody(c)
	if err != nil {
		return common.SendError(c, err)
	}

	ctx := c.Request().Context()
	var id int64
	if h.writer != nil {
		id, err = h.writer.Create(ctx, conn, rec)
	} else {
		id, err = h.records.Create(ctx, conn, h.resource, rec)
	}
	if err != nil {
		return common.SendError(c, err)
	}
	return c.JSON(http.StatusCreated, common.MutationResponse{ID: id, Mensagem: h.messages.Created})
}

// Update handles PUT /<resource>/:id
func (h *ResourceHandlers) Update(c echo.Context) error {
	_, conn, err := requestScope(c)
	if err != nil {
		return common.SendError(c, err)
	}
	id, err := common.ParseID(c, "id")
	if err != nil {
		return common.SendError(c, err)
	}
	rec, err := decodeBody(c)
	if err != nil {
		return common.SendError(c, err)
	}

	ctx := c.Request().Context()
	if h.writer != nil {
		err = h.writer.Update(ctx, conn, id, rec)
	} else {
		err = h.records.Update(ctx, conn, h.resource, id, rec)
	}
	if err != nil {
		return common.SendError(c, err)
	}
	return c.JSON(http.StatusOK, common.MutationResponse{ID: id, Mensagem: h.messages.Updated})
}

// Delete handles DELETE /<resource>/:id
func (h *ResourceHandlers) Delete(c echo.Context) error {
	_, conn, err := requestScope(c)
	if err != nil {
		return common.SendError(c, err)
	}
	id, err := common.ParseID(c, "id")
	if err != nil {
		return common.SendError(c, err)
	}

	ctx := c.Request().Context()
	if h.writer != nil {
		err = h.writer.Delete(ctx, conn, id)
	} else {
		err = h.records.Delete(ctx, conn, h.resource, id)
	}
	if err != nil {
		return common.SendError(c, err)
	}
	return c.JSON(http.StatusOK, common.MessageResponse{Mensagem: h.messages.Deleted})
}

// Register mounts the five routes under /<resource>, plus /<resource>/search when search is set.
func (h *ResourceHandlers) Register(e *echo.Echo, search bool) {
	base := "/" + h.resource.Name
	e.GET(base, h.List)
	if search {
		e.GET(base+"/search", h.List)
	}
	e.GET(base+"/:id", h.Get)
	e.POST(base, h.Create)
	e.PUT(base+"/:id", h.Update)
	e.DELETE(base+"/:id", h.Delete)
}
