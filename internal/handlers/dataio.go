package handlers

import (
	"encoding/json"
	"io"
	"net/http"
	"time"

	"showpro/internal/csvio"
	apperrors "showpro/internal/errors"
	"showpro/internal/logger"

	"github.com/gin-gonic/gin"
)

// uploadedFile открывает файл из multipart поля "file"
func uploadedFile(c *gin.Context) (io.ReadCloser, bool) {
	fh, err := c.FormFile("file")
	if err != nil {
		handleServiceError(c, apperrors.Invalid("file", "is required"), "")
		return nil, false
	}
	f, err := fh.Open()
	if err != nil {
		handleServiceError(c, err, "Failed to read upload")
		return nil, false
	}
	return f, true
}

// ListImportTables - GET /api/import
// Таблицы, доступные для импорта и экспорта
func (h *Handlers) ListImportTables(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"tables": h.data.Tables()})
}

// PreviewImport - POST /api/import/:table/preview
// Заголовки, предложенное сопоставление колонок и первые строки файла
func (h *Handlers) PreviewImport(c *gin.Context) {
	f, ok := uploadedFile(c)
	if !ok {
		return
	}
	defer f.Close()

	preview, err := h.data.Preview(c.Request.Context(), c.Param("table"), f)
	if err != nil {
		handleServiceError(c, err, "Failed to preview import")
		return
	}
	c.JSON(http.StatusOK, preview)
}

// ImportTable - POST /api/import/:table
// Импорт CSV (multipart "file", необязательный "mapping" - JSON {header: column})
func (h *Handlers) ImportTable(c *gin.Context) {
	var overrides csvio.Mapping
	if raw := c.PostForm("mapping"); raw != "" {
		if err := json.Unmarshal([]byte(raw), &overrides); err != nil {
			handleServiceError(c, apperrors.Invalid("mapping", "must be a JSON object of header to column"), "")
			return
		}
	}

	f, ok := uploadedFile(c)
	if !ok {
		return
	}
	defer f.Close()

	result, err := h.data.Import(c.Request.Context(), c.Param("table"), f, overrides)
	if err != nil {
		handleServiceError(c, err, "Failed to import file")
		return
	}
	c.JSON(http.StatusOK, result)
}

// ExportTable - GET /api/export/:table
// Выгрузка таблицы в CSV
func (h *Handlers) ExportTable(c *gin.Context) {
	table := c.Param("table")
	if err := h.data.CheckExportable(table); err != nil {
		handleServiceError(c, err, "Failed to export table")
		return
	}

	c.Header("Content-Type", "text/csv; charset=utf-8")
	c.Header("Content-Disposition", `attachment; filename="`+table+"-"+time.Now().Format("2006-01-02")+`.csv"`)
	if err := h.data.Export(c.Request.Context(), table, c.Writer); err != nil {
		if c.Writer.Written() {
			logger.WithContext(c.Request.Context()).Error("Export interrupted", "error", err, "table", table)
			return
		}
		c.Header("Content-Type", "")
		c.Header("Content-Disposition", "")
		handleServiceError(c, err, "Failed to export table")
	}
}
