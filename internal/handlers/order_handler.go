package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/milfin/milfin-api/internal/repository"
	"github.com/milfin/milfin-api/internal/services"
	"github.com/milfin/milfin-api/internal/storage"
	"github.com/shopspring/decimal"
)

type OrderHandler struct {
	orderService  *services.OrderService
	exportService *services.ExportService
	reportService *services.ReportService
	storage       *storage.LocalStorage
}

func NewOrderHandler(orderService *services.OrderService, exportService *services.ExportService, reportService *services.ReportService, storage *storage.LocalStorage) *OrderHandler {
	return &OrderHandler{
		orderService:  orderService,
		exportService: exportService,
		reportService: reportService,
		storage:       storage,
	}
}

// @Summary List Orders
// @Description Get a paginated list of disbursement orders
// @Tags Orders
// @Accept json
// @Produce json
// @Param page query int false "Page number" default(1)
// @Param per_page query int false "Items per page" default(20)
// @Param search_term query string false "Search term"
// @Param status query string false "Filter by status (comma separated)"
// @Param currency query string false "Filter by currency"
// @Param order_type query string false "Filter by order type"
// @Param needs_written_order query bool false "Only orders awaiting a written order"
// @Param start_date query string false "Order date from (YYYY-MM-DD)"
// @Param end_date query string false "Order date until (YYYY-MM-DD)"
// @Success 200 {object} map[string]interface{}
// @Security BearerAuth
// @Router /orders [get]
func (h *OrderHandler) Index(c *gin.Context) {
	query := repository.NewListQuery()
	query.Page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
	query.PerPage, _ = strconv.Atoi(c.DefaultQuery("per_page", "20"))
	query.Search = c.Query("search_term")
	for _, key := range []string{"status", "currency", "order_type", "needs_written_order", "start_date", "end_date"} {
		if v := c.Query(key); v != "" {
			query.Filters[key] = v
		}
	}

	orders, total, err := h.orderService.List(c.Request.Context(), query)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	var responses []interface{}
	for _, o := range orders {
		responses = append(responses, o.ToResponse())
	}

	c.JSON(http.StatusOK, gin.H{"orders": responses, "pagination": pagination(query.Page, query.PerPage, total)})
}

// @Summary Get Order
// @Description Get a disbursement order by ID
// @Tags Orders
// @Accept json
// @Produce json
// @Param order_id path int true "Order ID"
// @Success 200 {object} models.OrderResponse
// @Failure 404 {object} map[string]string
// @Security BearerAuth
// @Router /orders/{order_id} [get]
func (h *OrderHandler) Show(c *gin.Context) {
	id, _ := strconv.ParseUint(c.Param("order_id"), 10, 32)
	order, err := h.orderService.FindByID(c.Request.Context(), uint(id))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Order not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"order": order.ToResponse()})
}

type CreateOrderRequest struct {
	OrderDate    string           `json:"order_date" binding:"required"`
	Amount       decimal.Decimal  `json:"amount" binding:"required"`
	Currency     string           `json:"currency" binding:"required"`
	Beneficiary  string           `json:"beneficiary" binding:"required"`
	Purpose      string           `json:"purpose" binding:"required"`
	OrderType    string           `json:"order_type" binding:"required"`
	Notes        *string          `json:"notes"`
	PreviousDebt *decimal.Decimal `json:"previous_debt"`
}

// @Summary Create Order
// @Description Register a new disbursement order
// @Tags Orders
// @Accept json
// @Produce json
// @Param request body CreateOrderRequest true "Order Data"
// @Success 201 {object} models.OrderResponse
// @Security BearerAuth
// @Router /orders [post]
func (h *OrderHandler) Create(c *gin.Context) {
	var req CreateOrderRequest
	if err := BindNestedOrFlat(c, "order", &req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	orderDate, err := time.Parse("2006-01-02", req.OrderDate)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "order_date must be in YYYY-MM-DD format"})
		return
	}

	input := &services.CreateOrderInput{
		OrderDate:    orderDate,
		Amount:       req.Amount,
		Currency:     req.Currency,
		Beneficiary:  req.Beneficiary,
		Purpose:      req.Purpose,
		OrderType:    req.OrderType,
		Notes:        req.Notes,
		PreviousDebt: req.PreviousDebt,
	}

	order, err := h.orderService.Create(c.Request.Context(), input, currentUser(c), c.ClientIP(), c.Request.UserAgent())
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"order": order.ToResponse()})
}

type UpdateOrderRequest struct {
	OrderDate    *string          `json:"order_date"`
	Amount       *decimal.Decimal `json:"amount"`
	Currency     *string          `json:"currency"`
	Beneficiary  *string          `json:"beneficiary"`
	Purpose      *string          `json:"purpose"`
	OrderType    *string          `json:"order_type"`
	Notes        *string          `json:"notes"`
	PreviousDebt *decimal.Decimal `json:"previous_debt"`
}

// @Summary Update Order
// @Description Update an existing disbursement order (Finance)
// @Tags Orders
// @Accept json
// @Produce json
// @Param order_id path int true "Order ID"
// @Param request body UpdateOrderRequest true "Order Data"
// @Success 200 {object} models.OrderResponse
// @Security BearerAuth
// @Router /orders/{order_id} [patch]
func (h *OrderHandler) Update(c *gin.Context) {
	id, _ := strconv.ParseUint(c.Param("order_id"), 10, 32)
	var req UpdateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	input := &services.UpdateOrderInput{
		Amount:       req.Amount,
		Currency:     req.Currency,
		Beneficiary:  req.Beneficiary,
		Purpose:      req.Purpose,
		OrderType:    req.OrderType,
		Notes:        req.Notes,
		PreviousDebt: req.PreviousDebt,
	}
	if req.OrderDate != nil {
		parsed, err := time.Parse("2006-01-02", *req.OrderDate)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "order_date must be in YYYY-MM-DD format"})
			return
		}
		input.OrderDate = &parsed
	}

	order, err := h.orderService.Update(c.Request.Context(), uint(id), input, currentUser(c), c.ClientIP(), c.Request.UserAgent())
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"order": order.ToResponse()})
}

// @Summary Delete Order
// @Description Delete a disbursement order (Finance)
// @Tags Orders
// @Accept json
// @Produce json
// @Param order_id path int true "Order ID"
// @Success 200 {object} map[string]string
// @Security BearerAuth
// @Router /orders/{order_id} [delete]
func (h *OrderHandler) Delete(c *gin.Context) {
	id, _ := strconv.ParseUint(c.Param("order_id"), 10, 32)
	if err := h.orderService.Delete(c.Request.Context(), uint(id), currentUser(c), c.ClientIP(), c.Request.UserAgent()); err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Order deleted"})
}

// @Summary Approve Order
// @Description Approve a pending disbursement order (Commander)
// @Tags Orders
// @Accept json
// @Produce json
// @Param order_id path int true "Order ID"
// @Success 200 {object} models.OrderResponse
// @Security BearerAuth
// @Router /orders/{order_id}/approve [post]
func (h *OrderHandler) Approve(c *gin.Context) {
	id, _ := strconv.ParseUint(c.Param("order_id"), 10, 32)
	order, err := h.orderService.Approve(c.Request.Context(), uint(id), currentUser(c), c.ClientIP(), c.Request.UserAgent())
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"order": order.ToResponse(), "message": "Order approved"})
}

type RejectOrderRequest struct {
	Reason string `json:"reason"`
}

// @Summary Reject Order
// @Description Reject a pending disbursement order with a reason (Commander)
// @Tags Orders
// @Accept json
// @Produce json
// @Param order_id path int true "Order ID"
// @Param request body RejectOrderRequest true "Reason"
// @Success 200 {object} models.OrderResponse
// @Security BearerAuth
// @Router /orders/{order_id}/reject [post]
func (h *OrderHandler) Reject(c *gin.Context) {
	id, _ := strconv.ParseUint(c.Param("order_id"), 10, 32)
	var req RejectOrderRequest
	c.ShouldBindJSON(&req)

	order, err := h.orderService.Reject(c.Request.Context(), uint(id), req.Reason, currentUser(c), c.ClientIP(), c.Request.UserAgent())
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"order": order.ToResponse(), "message": "Order rejected"})
}

// @Summary Mark Order Paid
// @Description Settle an approved disbursement order (Finance)
// @Tags Orders
// @Accept json
// @Produce json
// @Param order_id path int true "Order ID"
// @Success 200 {object} models.OrderResponse
// @Security BearerAuth
// @Router /orders/{order_id}/mark_paid [post]
func (h *OrderHandler) MarkPaid(c *gin.Context) {
	id, _ := strconv.ParseUint(c.Param("order_id"), 10, 32)
	order, err := h.orderService.MarkPaid(c.Request.Context(), uint(id), currentUser(c), c.ClientIP(), c.Request.UserAgent())
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"order": order.ToResponse(), "message": "Order marked as paid"})
}

type SetStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// @Summary Set Order Status
// @Description Set the order status directly, bypassing the approval flow (Finance)
// @Tags Orders
// @Accept json
// @Produce json
// @Param order_id path int true "Order ID"
// @Param request body SetStatusRequest true "Status"
// @Success 200 {object} models.OrderResponse
// @Security BearerAuth
// @Router /orders/{order_id}/status [put]
func (h *OrderHandler) SetStatus(c *gin.Context) {
	id, _ := strconv.ParseUint(c.Param("order_id"), 10, 32)
	var req SetStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "status is required"})
		return
	}

	order, err := h.orderService.SetStatus(c.Request.Context(), uint(id), req.Status, currentUser(c), c.ClientIP(), c.Request.UserAgent())
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"order": order.ToResponse(), "message": "Order status updated"})
}

// @Summary Upload Order Attachment
// @Description Attach a scanned written order or supporting document
// @Tags Orders
// @Accept multipart/form-data
// @Produce json
// @Param order_id path int true "Order ID"
// @Param attachment formData file true "Attachment"
// @Success 200 {object} models.OrderResponse
// @Security BearerAuth
// @Router /orders/{order_id}/attachments [post]
func (h *OrderHandler) UploadAttachment(c *gin.Context) {
	id, _ := strconv.ParseUint(c.Param("order_id"), 10, 32)

	fileHeader, err := c.FormFile("attachment")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "attachment file is required"})
		return
	}
	if fileHeader.Size > storage.MaxFileSize() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "File exceeds the 10MB limit"})
		return
	}
	if !storage.IsValidContentType(fileHeader.Header.Get("Content-Type")) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Only PDF, JPEG and PNG files are allowed"})
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to read uploaded file"})
		return
	}
	defer file.Close()

	path, err := h.storage.Upload(file, fileHeader, "orders")
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to store uploaded file"})
		return
	}

	order, err := h.orderService.AttachFile(c.Request.Context(), uint(id), path, currentUser(c), c.ClientIP(), c.Request.UserAgent())
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"order": order.ToResponse(), "message": "Attachment uploaded"})
}

// @Summary Order Receipt PDF
// @Description Download a printable receipt for a disbursement order
// @Tags Orders
// @Produce application/pdf
// @Param order_id path int true "Order ID"
// @Success 200 {file} file
// @Security BearerAuth
// @Router /orders/{order_id}/receipt [get]
func (h *OrderHandler) Receipt(c *gin.Context) {
	id, _ := strconv.ParseUint(c.Param("order_id"), 10, 32)
	data, filename, err := h.reportService.OrderReceiptPDF(c.Request.Context(), uint(id))
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.Header("Content-Disposition", "attachment; filename="+filename)
	c.Data(http.StatusOK, "application/pdf", data)
}

// @Summary Export Orders
// @Description Download the order ledger as CSV or XLSX
// @Tags Orders
// @Produce application/octet-stream
// @Param format query string false "Export format (csv or xlsx)" default(csv)
// @Success 200 {file} file
// @Security BearerAuth
// @Router /orders/export [get]
func (h *OrderHandler) Export(c *gin.Context) {
	actor := currentUser(c)
	format := c.DefaultQuery("format", "csv")

	var (
		data     []byte
		filename string
		err      error
	)
	switch format {
	case "xlsx":
		data, filename, err = h.exportService.ExportOrdersXLSX(c.Request.Context(), actor, c.ClientIP(), c.Request.UserAgent())
	default:
		data, filename, err = h.exportService.ExportOrdersCSV(c.Request.Context(), actor, c.ClientIP(), c.Request.UserAgent())
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	contentType := "text/csv"
	if format == "xlsx" {
		contentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	}
	c.Header("Content-Disposition", "attachment; filename="+filename)
	c.Data(http.StatusOK, contentType, data)
}
