package service

import (
	"context"

	"showpro/internal/config"
	"showpro/internal/csvio"
	"showpro/internal/logger"
	"showpro/internal/models"
	"showpro/internal/repository"

	"github.com/jmoiron/sqlx"
)

// Publisher - шина событий (NATS Streaming)
type Publisher interface {
	Publish(subject string, data any) error
}

// SearchIndex - индекс справочников для поиска в сайдбаре
type SearchIndex interface {
	Index(ctx context.Context, doc models.SearchDoc) error
	Delete(ctx context.Context, kind string, id int64) error
	Search(ctx context.Context, query string, kinds []string, size int) ([]models.SearchDoc, error)
}

// RoleCache кеширует роль пользователя
type RoleCache interface {
	GetRole(ctx context.Context, userID string) (string, error)
	SetRole(ctx context.Context, userID, role string) error
	InvalidateRole(ctx context.Context, userID string) error
}

// DashboardCache хранит посчитанную сводку дашборда
type DashboardCache interface {
	GetDashboard(ctx context.Context, key string, dest any) error
	SetDashboard(ctx context.Context, key string, value any) error
}

// TxRunner выполняет fn в одной транзакции
type TxRunner interface {
	WithTx(ctx context.Context, fn func(tx *sqlx.Tx) error) error
}

// PDFPrinter печатает HTML в PDF
type PDFPrinter interface {
	Print(ctx context.Context, html []byte) ([]byte, error)
}

// Deps collects the collaborators built by the API server. Cache and Search
// may be nil.
type Deps struct {
	Repos     *repository.Repositories
	Tx        TxRunner
	Publisher Publisher
	Search    SearchIndex
	Roles     RoleCache
	Dashboard DashboardCache
	Printer   PDFPrinter
	Schema    *csvio.Schema
	Config    *config.Config
}

type Services struct {
	Directory *DirectoryService
	Bookings  *BookingService
	Diary     *DiaryService
	Dashboard *DashboardService
	Data      *DataService
	Finance   *FinanceService
	Emails    *EmailService
	Roles     *RoleService
}

func NewServices(d Deps) *Services {
	repos := d.Repos
	cfg := d.Config

	return &Services{
		Directory: NewDirectoryService(repos, d.Search),
		Bookings:  NewBookingService(repos.Bookings, repos.Series, d.Tx, d.Publisher),
		Diary:     NewDiaryService(repos.Bookings, repos.Locations, cfg.Diary.WeekStart, cfg.Diary.Location),
		Dashboard: NewDashboardService(repos.Bookings, d.Dashboard),
		Data:      NewDataService(d.Schema, repos.Data, cfg.Import),
		Finance: NewFinanceService(FinanceStores{
			Bookings: repos.Bookings,
			Invoices: repos.Invoices,
			Batches:  repos.Batches,
			Payments: repos.Payments,
			Clients:  repos.Clients,
			Terms:    repos.Terms,
		}, d.Tx, d.Publisher, d.Printer),
		Emails: NewEmailService(repos.Emails, d.Publisher),
		Roles:  NewRoleService(repos.Roles, d.Roles),
	}
}

// publish отправляет событие; ошибка только логируется
func publish(ctx context.Context, p Publisher, subject string, data any) {
	if p == nil {
		return
	}
	if err := p.Publish(subject, data); err != nil {
		logger.WithContext(ctx).Error("Failed to publish event",
			"error", err,
			"event_type", subject)
	}
}

// Document - готовый файл для отдачи клиенту
type Document struct {
	ContentType string
	Filename    string
	Body        []byte
}
