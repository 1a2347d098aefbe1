package handlers

import (
	"errors"
	"net/http"
	"strings"

	"table-order-api/models"
	"table-order-api/repository"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/skip2/go-qrcode"
	"go.uber.org/zap"
)

const (
	tableTokenLen = 16
	qrSize        = 256
)

// ScanTable resolves the token printed in a table QR code and opens an ordering session
func (h *Handler) ScanTable(c *gin.Context) {
	ctx := c.Request.Context()
	table, err := h.Tables.FindActiveByToken(ctx, c.Param("token"))
	if isNotFound(err) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Invalid table"})
		return
	}
	if err != nil {
		h.internalError(c, "Failed to process table token", err)
		return
	}

	session, err := h.Sessions.Create(ctx, table, h.SessionTTL, h.Clock(), repository.SessionMeta{
		UserAgent: c.Request.UserAgent(),
		IPAddress: c.ClientIP(),
	})
	if err != nil {
		h.internalError(c, "Failed to process table token", err)
		return
	}
	h.Logger.Info("table session opened",
		zap.String("table_no", table.Number),
		zap.String("session_id", session.ID))

	c.JSON(http.StatusOK, gin.H{
		"table": gin.H{
			"id":     table.ID,
			"number": table.Number,
			"name":   table.Name,
		},
		"sessionToken": session.Token,
		"expiresAt":    session.ExpiresAt,
	})
}

// ListTables returns every table ordered by number
func (h *Handler) ListTables(c *gin.Context) {
	tables, err := h.Tables.List(c.Request.Context())
	if err != nil {
		h.internalError(c, "Failed to fetch tables", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"count": len(tables), "tables": tables})
}

type CreateTableRequest struct {
	Number string `json:"number" binding:"required,max=16"`
	Name   string `json:"name"`
}

// CreateTable registers a table and generates its QR token
func (h *Handler) CreateTable(c *gin.Context) {
	var req CreateTableRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	token := newTableToken()
	table := models.Table{
		Number:     strings.TrimSpace(req.Number),
		Name:       req.Name,
		TableToken: token,
		QRURL:      h.FrontendURL + "/t/" + token,
		IsActive:   true,
	}
	err := h.Tables.Create(c.Request.Context(), &table)
	if errors.Is(err, repository.ErrDuplicateKey) {
		c.JSON(http.StatusConflict, gin.H{"error": "Table number already exists"})
		return
	}
	if err != nil {
		h.internalError(c, "Failed to create table", err)
		return
	}
	c.JSON(http.StatusCreated, table)
}

// TableQRCode renders the table's ordering URL as a PNG QR code
func (h *Handler) TableQRCode(c *gin.Context) {
	table, err := h.Tables.FindByID(c.Request.Context(), c.Param("id"))
	if isNotFound(err) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Table not found"})
		return
	}
	if err != nil {
		h.internalError(c, "Failed to generate QR code", err)
		return
	}

	png, err := qrcode.Encode(table.QRURL, qrcode.Medium, qrSize)
	if err != nil {
		h.internalError(c, "Failed to generate QR code", err)
		return
	}
	c.Header("Content-Disposition", `inline; filename="table-`+table.Number+`.png"`)
	c.Data(http.StatusOK, "image/png", png)
}

func newTableToken() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:tableTokenLen]
}
