package handlers

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strconv"

	"showpro/internal/calendar"
	"showpro/internal/csvio"
	"showpro/internal/dashboard"
	apperrors "showpro/internal/errors"
	"showpro/internal/logger"
	"showpro/internal/models"
	"showpro/internal/service"
	"showpro/internal/validation"

	"github.com/gin-gonic/gin"
)

type Bookings interface {
	List(ctx context.Context, f models.BookingFilter) ([]models.BookingView, error)
	Get(ctx context.Context, id int64) (*models.BookingView, error)
	Create(ctx context.Context, b *models.Booking) (*models.Booking, error)
	Update(ctx context.Context, id int64, b *models.Booking) (*models.Booking, error)
	Delete(ctx context.Context, id int64) error
	Profit(ctx context.Context, id int64) (*models.ProfitResponse, error)
	ExpandSeries(ctx context.Context, seriesID int64, req *models.ExpandSeriesRequest) (*models.ExpandSeriesResponse, error)
}

type Diary interface {
	Grid(ctx context.Context, date *models.Date, view calendar.View) (*calendar.Grid, error)
	Navigate(date models.Date, view calendar.View, dir string, anchor int) (*models.NavigateResponse, error)
	WriteICal(ctx context.Context, w io.Writer, from, to models.Date) error
	DefaultFeedRange() (models.Date, models.Date)
}

type Dashboard interface {
	Summary(ctx context.Context) (*dashboard.Summary, error)
}

type DataIO interface {
	Tables() []string
	Preview(ctx context.Context, table string, r io.Reader) (*models.ImportPreview, error)
	Import(ctx context.Context, table string, r io.Reader, overrides csvio.Mapping) (*models.ImportResult, error)
	Export(ctx context.Context, table string, w io.Writer) error
	CheckExportable(table string) error
}

type Finance interface {
	ListInvoices(ctx context.Context) ([]models.Invoice, error)
	GetInvoice(ctx context.Context, id int64) (*models.Invoice, error)
	CreateInvoice(ctx context.Context, req *models.CreateInvoiceRequest) (*models.Invoice, error)
	MarkPaid(ctx context.Context, id int64, paid bool) (*models.Invoice, error)
	RenderInvoice(ctx context.Context, id int64, format string) (*service.Document, error)
	ListBatches(ctx context.Context) ([]models.InvoiceBatch, error)
	GetBatch(ctx context.Context, id int64) (*models.InvoiceBatch, error)
	CreateBatch(ctx context.Context, req *models.CreateBatchRequest) (*models.BatchResponse, error)
	ListPayments(ctx context.Context) ([]models.Payment, error)
	GetPayment(ctx context.Context, id int64) (*models.Payment, error)
	RecordPayment(ctx context.Context, p *models.Payment) (*models.Payment, error)
	DeletePayment(ctx context.Context, id int64) error
}

type Emails interface {
	List(ctx context.Context, f models.EmailFilter) ([]models.EmailQueueItem, error)
	Get(ctx context.Context, id int64) (*models.EmailQueueItem, error)
	Queue(ctx context.Context, item *models.EmailQueueItem) (*models.EmailQueueItem, error)
	Update(ctx context.Context, id int64, item *models.EmailQueueItem) (*models.EmailQueueItem, error)
	Approve(ctx context.Context, id int64, approved bool) (*models.EmailQueueItem, error)
	Delete(ctx context.Context, id int64) error
	MarkSent(ctx context.Context, ids []int64) (*models.MarkSentResponse, error)
}

type Roles interface {
	Me(ctx context.Context) (*models.MeResponse, error)
	List(ctx context.Context) ([]models.UserRole, error)
	Assign(ctx context.Context, userID string, req *models.AssignRoleRequest) (*models.UserRole, error)
}

type Searcher interface {
	Search(ctx context.Context, q string, kinds []string) ([]models.SearchDoc, error)
}

type Handlers struct {
	bookings  Bookings
	diary     Diary
	dashboard Dashboard
	data      DataIO
	finance   Finance
	emails    Emails
	roles     Roles
	search    Searcher
}

func NewHandlers(services *service.Services) *Handlers {
	return &Handlers{
		bookings:  services.Bookings,
		diary:     services.Diary,
		dashboard: services.Dashboard,
		data:      services.Data,
		finance:   services.Finance,
		emails:    services.Emails,
		roles:     services.Roles,
		search:    services.Directory,
	}
}

// handleServiceError переводит ошибку сервиса в HTTP ответ
func handleServiceError(c *gin.Context, err error, msg string) {
	var verr *apperrors.ValidationError
	switch {
	case errors.As(err, &verr):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Validation failed", "fields": verr.Fields})
	case errors.Is(err, apperrors.ErrValidation):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, apperrors.ErrUnauthorized):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
	case errors.Is(err, apperrors.ErrForbidden):
		c.JSON(http.StatusForbidden, gin.H{"error": "Forbidden"})
	case errors.Is(err, apperrors.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Not found"})
	case errors.Is(err, apperrors.ErrConflict):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	default:
		logger.WithContext(c.Request.Context()).Error(msg, "error", err)
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": msg})
	}
}

// bindJSON разбирает тело запроса; при ошибке сразу отвечает 400
func bindJSON(c *gin.Context, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		handleServiceError(c, validation.FromError(err), "Invalid request body")
		return false
	}
	return true
}

// idParam читает числовой параметр пути
func idParam(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id < 1 {
		handleServiceError(c, apperrors.Invalid(name, "must be a positive integer"), "")
		return 0, false
	}
	return id, true
}

// dateQuery читает необязательную дату из query; nil если параметра нет
func dateQuery(c *gin.Context, name string) (*models.Date, bool) {
	raw := c.Query(name)
	if raw == "" {
		return nil, true
	}
	d, err := models.ParseDate(raw)
	if err != nil {
		handleServiceError(c, apperrors.Invalid(name, err.Error()), "")
		return nil, false
	}
	return &d, true
}

func int64Query(c *gin.Context, name string) (*int64, bool) {
	raw := c.Query(name)
	if raw == "" {
		return nil, true
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		handleServiceError(c, apperrors.Invalid(name, "must be an integer"), "")
		return nil, false
	}
	return &v, true
}

func boolQuery(c *gin.Context, name string) (*bool, bool) {
	raw := c.Query(name)
	if raw == "" {
		return nil, true
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		handleServiceError(c, apperrors.Invalid(name, "must be true or false"), "")
		return nil, false
	}
	return &v, true
}

// attachment отдает файл с Content-Disposition
func attachment(c *gin.Context, doc *service.Document, inline bool) {
	disposition := "attachment"
	if inline {
		disposition = "inline"
	}
	c.Header("Content-Disposition", disposition+`; filename="`+doc.Filename+`"`)
	c.Data(http.StatusOK, doc.ContentType, doc.Body)
}
