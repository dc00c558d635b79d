package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/milfin/milfin-api/internal/middleware"
	"github.com/milfin/milfin-api/internal/repository"
	"github.com/milfin/milfin-api/internal/services"
)

type NotificationHandler struct {
	notificationService *services.NotificationService
}

func NewNotificationHandler(notificationService *services.NotificationService) *NotificationHandler {
	return &NotificationHandler{notificationService: notificationService}
}

// @Summary List Notifications
// @Description Get a paginated list of notifications for the current user
// @Tags Notifications
// @Accept json
// @Produce json
// @Param page query int false "Page number" default(1)
// @Param per_page query int false "Items per page" default(20)
// @Param status query string false "Filter by read status (read or unread)"
// @Param type query string false "Filter by notification type"
// @Success 200 {object} map[string]interface{}
// @Security BearerAuth
// @Router /notifications [get]
func (h *NotificationHandler) Index(c *gin.Context) {
	userID := middleware.GetUserID(c)
	query := repository.NewListQuery()
	query.Page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
	query.PerPage, _ = strconv.Atoi(c.DefaultQuery("per_page", "20"))
	if status := c.Query("status"); status != "" {
		query.Filters["status"] = status
	}
	if notifType := c.Query("type"); notifType != "" {
		query.Filters["type"] = notifType
	}

	notifications, total, err := h.notificationService.FindByUser(c.Request.Context(), userID, query)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	var responses []interface{}
	for _, n := range notifications {
		responses = append(responses, n.ToResponse())
	}

	c.JSON(http.StatusOK, gin.H{"notifications": responses, "pagination": pagination(query.Page, query.PerPage, total)})
}

// @Summary Unread Count
// @Description Get the number of unread notifications for the current user
// @Tags Notifications
// @Produce json
// @Success 200 {object} map[string]int64
// @Security BearerAuth
// @Router /notifications/unread_count [get]
func (h *NotificationHandler) UnreadCount(c *gin.Context) {
	count, err := h.notificationService.CountUnread(c.Request.Context(), middleware.GetUserID(c))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"unread_count": count})
}

// @Summary Mark Notification Read
// @Description Mark a notification as read
// @Tags Notifications
// @Accept json
// @Produce json
// @Param notification_id path int true "Notification ID"
// @Success 200 {object} map[string]string
// @Security BearerAuth
// @Router /notifications/{notification_id}/read [put]
func (h *NotificationHandler) MarkAsRead(c *gin.Context) {
	id, _ := strconv.ParseUint(c.Param("notification_id"), 10, 32)
	if err := h.notificationService.MarkAsRead(c.Request.Context(), uint(id), middleware.GetUserID(c)); err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Notification marked as read"})
}

// @Summary Mark All Notifications Read
// @Description Mark all notifications as read for the current user
// @Tags Notifications
// @Accept json
// @Produce json
// @Success 200 {object} map[string]string
// @Security BearerAuth
// @Router /notifications/mark_all_as_read [post]
func (h *NotificationHandler) MarkAllAsRead(c *gin.Context) {
	if err := h.notificationService.MarkAllAsRead(c.Request.Context(), middleware.GetUserID(c)); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "All notifications marked as read"})
}

type AuditHandler struct {
	auditService *services.AuditService
}

func NewAuditHandler(auditService *services.AuditService) *AuditHandler {
	return &AuditHandler{auditService: auditService}
}

// @Summary List Audit Logs
// @Description Get a paginated list of audit trail entries
// @Tags Audit
// @Accept json
// @Produce json
// @Param page query int false "Page number" default(1)
// @Param per_page query int false "Items per page" default(50)
// @Param user_id query int false "Filter by acting user"
// @Param action query string false "Filter by action"
// @Param entity_type query string false "Filter by entity type"
// @Param start_date query string false "From (YYYY-MM-DD)"
// @Param end_date query string false "Until (YYYY-MM-DD)"
// @Success 200 {object} map[string]interface{}
// @Security BearerAuth
// @Router /audits [get]
func (h *AuditHandler) Index(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	perPage, _ := strconv.Atoi(c.DefaultQuery("per_page", "50"))
	offset := (page - 1) * perPage

	filter := &services.AuditFilter{
		Action:     c.Query("action"),
		EntityType: c.Query("entity_type"),
		StartDate:  c.Query("start_date"),
		EndDate:    c.Query("end_date"),
	}
	if userID, err := strconv.ParseUint(c.Query("user_id"), 10, 32); err == nil {
		filter.UserID = uint(userID)
	}

	logs, total, err := h.auditService.List(c.Request.Context(), filter, perPage, offset)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"audits": logs, "pagination": pagination(page, perPage, total)})
}

type SummaryHandler struct {
	summaryService *services.SummaryService
	reportService  *services.ReportService
}

func NewSummaryHandler(summaryService *services.SummaryService, reportService *services.ReportService) *SummaryHandler {
	return &SummaryHandler{summaryService: summaryService, reportService: reportService}
}

// @Summary Financial Summary
// @Description Get totals, balance and order counts, optionally filtered by currency and date range
// @Tags Summary
// @Accept json
// @Produce json
// @Param currency query string false "Filter by currency"
// @Param start_date query string false "From (YYYY-MM-DD)"
// @Param end_date query string false "Until (YYYY-MM-DD)"
// @Success 200 {object} models.FinancialSummary
// @Security BearerAuth
// @Router /summary [get]
func (h *SummaryHandler) Show(c *gin.Context) {
	filter := &repository.SummaryFilter{
		Currency:  c.Query("currency"),
		StartDate: c.Query("start_date"),
		EndDate:   c.Query("end_date"),
	}

	summary, err := h.summaryService.GetSummary(c.Request.Context(), filter)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"summary": summary})
}

// @Summary Summary Report PDF
// @Description Download the financial summary as a PDF report
// @Tags Summary
// @Produce application/pdf
// @Param currency query string false "Filter by currency"
// @Success 200 {file} file
// @Security BearerAuth
// @Router /summary/report [get]
func (h *SummaryHandler) Report(c *gin.Context) {
	currency := c.Query("currency")
	filter := &repository.SummaryFilter{
		Currency:  currency,
		StartDate: c.Query("start_date"),
		EndDate:   c.Query("end_date"),
	}

	summary, err := h.summaryService.GetSummary(c.Request.Context(), filter)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	data, filename, err := h.reportService.SummaryReportPDF(c.Request.Context(), summary, currency)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.Header("Content-Disposition", "attachment; filename="+filename)
	c.Data(http.StatusOK, "application/pdf", data)
}
