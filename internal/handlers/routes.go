package handlers

import (
	"showpro/internal/access"
	"showpro/internal/middleware"
	"showpro/internal/models"
	"showpro/internal/service"

	"github.com/gin-gonic/gin"
)

// Catalogs - CRUD сервисы справочников
type Catalogs struct {
	Artists     Catalog[models.Artist]
	Clients     Catalog[models.Client]
	Venues      Catalog[models.Venue]
	Locations   Catalog[models.Location]
	Contacts    Catalog[models.Contact]
	Suppliers   Catalog[models.Supplier]
	Departments Catalog[models.Department]
	Teams       Catalog[models.Team]
	Series      Catalog[models.Series]
	Terms       Catalog[models.TermsTemplate]
}

func CatalogsFrom(d *service.DirectoryService) Catalogs {
	return Catalogs{
		Artists:     d.Artists,
		Clients:     d.Clients,
		Venues:      d.Venues,
		Locations:   d.Locations,
		Contacts:    d.Contacts,
		Suppliers:   d.Suppliers,
		Departments: d.Departments,
		Teams:       d.Teams,
		Series:      d.Series,
		Terms:       d.Terms,
	}
}

// Register вешает роуты API на группу, уже закрытую аутентификацией
func (h *Handlers) Register(api *gin.RouterGroup, catalogs Catalogs) {
	perm := middleware.RequirePermission

	RegisterCatalog(api, "/artists", "artists", catalogs.Artists)
	RegisterCatalog(api, "/clients", "clients", catalogs.Clients)
	RegisterCatalog(api, "/venues", "venues", catalogs.Venues)
	RegisterCatalog(api, "/locations", "locations", catalogs.Locations)
	RegisterCatalog(api, "/contacts", "contacts", catalogs.Contacts)
	RegisterCatalog(api, "/suppliers", "suppliers", catalogs.Suppliers)
	RegisterCatalog(api, "/departments", "departments", catalogs.Departments)
	RegisterCatalog(api, "/teams", "teams", catalogs.Teams)
	RegisterCatalog(api, "/terms", "terms", catalogs.Terms)
	series := RegisterCatalog(api, "/series", "series", catalogs.Series)
	series.POST("/:id/bookings", middleware.RequireAction("bookings", access.Create), h.ExpandSeries)

	bookings := api.Group("/bookings", perm("bookings"))
	{
		bookings.GET("", h.ListBookings)
		bookings.GET("/:id", h.GetBooking)
		bookings.GET("/:id/profit", h.GetProfit)
		bookings.POST("", h.CreateBooking)
		bookings.PUT("/:id", h.UpdateBooking)
		bookings.DELETE("/:id", h.DeleteBooking)
	}

	api.GET("/diary", perm("bookings"), h.GetDiary)
	api.GET("/diary/navigate", perm("bookings"), h.NavigateDiary)
	api.GET("/diary.ics", perm("bookings"), h.DiaryFeed)

	api.GET("/dashboard", perm(access.ResDashboard), h.GetDashboard)

	api.GET("/import", perm(access.ResImport), h.ListImportTables)
	api.POST("/import/:table", perm(access.ResImport), h.ImportTable)
	api.POST("/import/:table/preview", perm(access.ResImport), h.PreviewImport)
	api.GET("/export/:table", perm(access.ResExport), h.ExportTable)

	invoices := api.Group("/invoices", perm("invoices"))
	{
		invoices.GET("", h.ListInvoices)
		invoices.GET("/:id", h.GetInvoice)
		invoices.GET("/:id/document", h.InvoiceDocument)
		invoices.POST("", h.CreateInvoice)
		invoices.PUT("/:id/paid", h.MarkInvoicePaid)
	}

	batches := api.Group("/invoice-batches", perm("invoices"))
	{
		batches.GET("", h.ListBatches)
		batches.GET("/:id", h.GetBatch)
		batches.POST("", h.CreateBatch)
	}

	payments := api.Group("/payments", perm("payments"))
	{
		payments.GET("", h.ListPayments)
		payments.GET("/:id", h.GetPayment)
		payments.POST("", h.RecordPayment)
		payments.DELETE("/:id", h.DeletePayment)
	}

	emails := api.Group("/emails")
	{
		emails.GET("", perm(access.ResEmails), h.ListEmails)
		emails.GET("/:id", perm(access.ResEmails), h.GetEmail)
		emails.POST("", perm(access.ResEmails), h.QueueEmail)
		emails.POST("/mark-sent", middleware.RequireAction(access.ResEmails, access.Update), h.MarkEmailsSent)
		emails.PUT("/:id", perm(access.ResEmails), h.UpdateEmail)
		emails.PUT("/:id/approve", perm(access.ResEmails), h.ApproveEmail)
		emails.DELETE("/:id", perm(access.ResEmails), h.DeleteEmail)
	}

	api.GET("/me", h.Me)
	api.GET("/permissions", h.Permissions)
	api.GET("/search", h.Search)
	api.GET("/roles", perm(access.ResRoles), h.ListRoles)
	api.PUT("/roles/:userID", perm(access.ResRoles), h.AssignRole)
}
