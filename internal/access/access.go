// Package access holds the role/permission matrix shown on the permissions
// page and enforced by the API.
package access

import "slices"

// Роли
const (
	RoleAdmin   = "admin"
	RoleManager = "manager"
	RoleStaff   = "staff"
	RoleViewer  = "viewer"
)

// Действия
const (
	Read   = "read"
	Create = "create"
	Update = "update"
	Delete = "delete"
)

// Ресурсы вне таблиц справочников
const (
	ResDashboard = "dashboard"
	ResImport    = "import"
	ResExport    = "export"
	ResRoles     = "roles"
	ResEmails    = "emails"
)

var roles = []string{RoleAdmin, RoleManager, RoleStaff, RoleViewer}

var actions = []string{Read, Create, Update, Delete}

// Ресурсы в порядке отображения
var resources = []string{
	"artists", "clients", "venues", "locations", "contacts", "suppliers",
	"departments", "teams", "series", "terms",
	"bookings", "invoices", "payments",
	ResEmails, ResDashboard, ResImport, ResExport, ResRoles,
}

// Таблицы, которые staff может создавать и править
var staffWritable = map[string]bool{
	"artists": true, "clients": true, "venues": true, "locations": true,
	"contacts": true, "suppliers": true, "series": true, "bookings": true,
	"payments": true, ResEmails: true,
}

func Roles() []string {
	return slices.Clone(roles)
}

func Resources() []string {
	return slices.Clone(resources)
}

func Actions() []string {
	return slices.Clone(actions)
}

func ValidRole(role string) bool {
	return slices.Contains(roles, role)
}

// Allowed сообщает, может ли роль выполнить действие над ресурсом
func Allowed(role, resource, action string) bool {
	if !slices.Contains(resources, resource) || !slices.Contains(actions, action) {
		return false
	}

	switch role {
	case RoleAdmin:
		return true
	case RoleManager:
		if resource == ResRoles {
			return action == Read
		}
		if resource == ResDashboard || resource == ResExport {
			return action == Read
		}
		return true
	case RoleStaff:
		switch resource {
		case ResRoles, ResImport:
			return false
		case ResDashboard, ResExport:
			return action == Read
		}
		if action == Read {
			return true
		}
		return staffWritable[resource] && action != Delete
	case RoleViewer:
		switch resource {
		case ResRoles, ResImport, ResExport, ResEmails:
			return false
		}
		return action == Read
	}
	return false
}

// Permissions возвращает разрешенные действия роли по ресурсам
func Permissions(role string) map[string][]string {
	perms := make(map[string][]string)
	for _, res := range resources {
		for _, act := range actions {
			if Allowed(role, res, act) {
				perms[res] = append(perms[res], act)
			}
		}
	}
	return perms
}

// Row - строка матрицы: ресурс и действия по ролям
type Row struct {
	Resource string              `json:"resource"`
	Roles    map[string][]string `json:"roles"`
}

// Matrix строит таблицу прав для страницы разрешений
func Matrix() []Row {
	rows := make([]Row, 0, len(resources))
	for _, res := range resources {
		row := Row{Resource: res, Roles: make(map[string][]string, len(roles))}
		for _, role := range roles {
			granted := []string{}
			for _, act := range actions {
				if Allowed(role, res, act) {
					granted = append(granted, act)
				}
			}
			row.Roles[role] = granted
		}
		rows = append(rows, row)
	}
	return rows
}
