package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/milfin/milfin-api/internal/repository"
	"github.com/milfin/milfin-api/internal/services"
	"github.com/shopspring/decimal"
)

type DebtHandler struct {
	debtService *services.DebtService
}

func NewDebtHandler(debtService *services.DebtService) *DebtHandler {
	return &DebtHandler{debtService: debtService}
}

// @Summary List Debts
// @Description Get a paginated list of previous debts
// @Tags Debts
// @Accept json
// @Produce json
// @Param page query int false "Page number" default(1)
// @Param per_page query int false "Items per page" default(20)
// @Param search_term query string false "Search term"
// @Param status query string false "Filter by status"
// @Param priority query string false "Filter by priority"
// @Success 200 {object} map[string]interface{}
// @Security BearerAuth
// @Router /debts [get]
func (h *DebtHandler) Index(c *gin.Context) {
	query := repository.NewListQuery()
	query.Page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
	query.PerPage, _ = strconv.Atoi(c.DefaultQuery("per_page", "20"))
	query.Search = c.Query("search_term")
	for _, key := range []string{"status", "priority", "currency"} {
		if v := c.Query(key); v != "" {
			query.Filters[key] = v
		}
	}

	debts, total, err := h.debtService.List(c.Request.Context(), query)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"debts": debts, "pagination": pagination(query.Page, query.PerPage, total)})
}

// @Summary Get Debt
// @Description Get a debt with its repayment plans and installments
// @Tags Debts
// @Accept json
// @Produce json
// @Param debt_id path int true "Debt ID"
// @Success 200 {object} models.PreviousDebt
// @Failure 404 {object} map[string]string
// @Security BearerAuth
// @Router /debts/{debt_id} [get]
func (h *DebtHandler) Show(c *gin.Context) {
	id, _ := strconv.ParseUint(c.Param("debt_id"), 10, 32)
	debt, err := h.debtService.FindByID(c.Request.Context(), uint(id))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Debt not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"debt": debt})
}

type CreateDebtRequest struct {
	Creditor       string          `json:"creditor" binding:"required"`
	OriginalAmount decimal.Decimal `json:"original_amount" binding:"required"`
	Currency       string          `json:"currency" binding:"required"`
	DebtDate       string          `json:"debt_date" binding:"required"`
	DueDate        *string         `json:"due_date"`
	Description    string          `json:"description"`
	Priority       *string         `json:"priority"`
	Notes          *string         `json:"notes"`
}

// @Summary Create Debt
// @Description Register a previous debt (Finance)
// @Tags Debts
// @Accept json
// @Produce json
// @Param request body CreateDebtRequest true "Debt Data"
// @Success 201 {object} models.PreviousDebt
// @Security BearerAuth
// @Router /debts [post]
func (h *DebtHandler) Create(c *gin.Context) {
	var req CreateDebtRequest
	if err := BindNestedOrFlat(c, "debt", &req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	debtDate, err := time.Parse("2006-01-02", req.DebtDate)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "debt_date must be in YYYY-MM-DD format"})
		return
	}

	input := &services.CreateDebtInput{
		Creditor:       req.Creditor,
		OriginalAmount: req.OriginalAmount,
		Currency:       req.Currency,
		DebtDate:       debtDate,
		Description:    req.Description,
		Priority:       req.Priority,
		Notes:          req.Notes,
	}
	if req.DueDate != nil {
		parsed, err := time.Parse("2006-01-02", *req.DueDate)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "due_date must be in YYYY-MM-DD format"})
			return
		}
		input.DueDate = &parsed
	}

	debt, err := h.debtService.CreateDebt(c.Request.Context(), input, currentUser(c), c.ClientIP(), c.Request.UserAgent())
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"debt": debt})
}

type UpdateDebtRequest struct {
	Creditor    *string `json:"creditor"`
	DueDate     *string `json:"due_date"`
	Description *string `json:"description"`
	Status      *string `json:"status"`
	Priority    *string `json:"priority"`
	Notes       *string `json:"notes"`
}

// @Summary Update Debt
// @Description Update an existing debt (Finance)
// @Tags Debts
// @Accept json
// @Produce json
// @Param debt_id path int true "Debt ID"
// @Param request body UpdateDebtRequest true "Debt Data"
// @Success 200 {object} models.PreviousDebt
// @Security BearerAuth
// @Router /debts/{debt_id} [patch]
func (h *DebtHandler) Update(c *gin.Context) {
	id, _ := strconv.ParseUint(c.Param("debt_id"), 10, 32)
	var req UpdateDebtRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	input := &services.UpdateDebtInput{
		Creditor:    req.Creditor,
		Description: req.Description,
		Status:      req.Status,
		Priority:    req.Priority,
		Notes:       req.Notes,
	}
	if req.DueDate != nil {
		parsed, err := time.Parse("2006-01-02", *req.DueDate)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "due_date must be in YYYY-MM-DD format"})
			return
		}
		input.DueDate = &parsed
	}

	debt, err := h.debtService.UpdateDebt(c.Request.Context(), uint(id), input, currentUser(c), c.ClientIP(), c.Request.UserAgent())
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"debt": debt})
}

// @Summary Delete Debt
// @Description Delete a debt and its repayment plans (Finance)
// @Tags Debts
// @Accept json
// @Produce json
// @Param debt_id path int true "Debt ID"
// @Success 200 {object} map[string]string
// @Security BearerAuth
// @Router /debts/{debt_id} [delete]
func (h *DebtHandler) Delete(c *gin.Context) {
	id, _ := strconv.ParseUint(c.Param("debt_id"), 10, 32)
	if err := h.debtService.DeleteDebt(c.Request.Context(), uint(id), currentUser(c), c.ClientIP(), c.Request.UserAgent()); err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Debt deleted"})
}

type CreatePlanRequest struct {
	TotalInstallments int             `json:"total_installments" binding:"required"`
	InstallmentAmount decimal.Decimal `json:"installment_amount" binding:"required"`
	StartDate         string          `json:"start_date" binding:"required"`
	Frequency         string          `json:"frequency" binding:"required"`
	Notes             *string         `json:"notes"`
}

// @Summary Create Repayment Plan
// @Description Create a repayment plan with generated installments for a debt (Finance)
// @Tags Debts
// @Accept json
// @Produce json
// @Param debt_id path int true "Debt ID"
// @Param request body CreatePlanRequest true "Plan Data"
// @Success 201 {object} models.RepaymentPlan
// @Security BearerAuth
// @Router /debts/{debt_id}/plans [post]
func (h *DebtHandler) CreatePlan(c *gin.Context) {
	debtID, _ := strconv.ParseUint(c.Param("debt_id"), 10, 32)
	var req CreatePlanRequest
	if err := BindNestedOrFlat(c, "plan", &req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	startDate, err := time.Parse("2006-01-02", req.StartDate)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "start_date must be in YYYY-MM-DD format"})
		return
	}

	input := &services.CreatePlanInput{
		TotalInstallments: req.TotalInstallments,
		InstallmentAmount: req.InstallmentAmount,
		StartDate:         startDate,
		Frequency:         req.Frequency,
		Notes:             req.Notes,
	}

	plan, err := h.debtService.CreatePlan(c.Request.Context(), uint(debtID), input, currentUser(c), c.ClientIP(), c.Request.UserAgent())
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"plan": plan})
}

// @Summary Get Repayment Plan
// @Description Get a repayment plan with its installments
// @Tags Debts
// @Accept json
// @Produce json
// @Param plan_id path int true "Plan ID"
// @Success 200 {object} models.RepaymentPlan
// @Failure 404 {object} map[string]string
// @Security BearerAuth
// @Router /plans/{plan_id} [get]
func (h *DebtHandler) ShowPlan(c *gin.Context) {
	id, _ := strconv.ParseUint(c.Param("plan_id"), 10, 32)
	plan, err := h.debtService.FindPlan(c.Request.Context(), uint(id))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Repayment plan not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"plan": plan})
}

type PayInstallmentRequest struct {
	PaymentReference *string `json:"payment_reference"`
}

// @Summary Pay Installment
// @Description Mark an installment as paid and reduce the debt balance (Finance)
// @Tags Debts
// @Accept json
// @Produce json
// @Param installment_id path int true "Installment ID"
// @Param request body PayInstallmentRequest false "Payment Reference"
// @Success 200 {object} models.RepaymentInstallment
// @Security BearerAuth
// @Router /installments/{installment_id}/pay [post]
func (h *DebtHandler) PayInstallment(c *gin.Context) {
	id, _ := strconv.ParseUint(c.Param("installment_id"), 10, 32)
	var req PayInstallmentRequest
	c.ShouldBindJSON(&req)

	installment, err := h.debtService.MarkInstallmentPaid(c.Request.Context(), uint(id), req.PaymentReference, currentUser(c), c.ClientIP(), c.Request.UserAgent())
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"installment": installment, "message": "Installment paid"})
}
