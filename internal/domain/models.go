package domain

import (
	"bizops/internal/domain/account"
	"bizops/internal/domain/billing"
	"bizops/internal/domain/client"
	"bizops/internal/domain/inventory"
	"bizops/internal/domain/order"
	"bizops/internal/domain/sales"
	"bizops/internal/domain/task"
	"bizops/internal/domain/upload"
	"bizops/internal/domain/workforce"
)

// Models lists every persisted model in AutoMigrate order.
func Models() []any {
	return []any{
		&account.Organization{},
		&account.User{},
		&workforce.Worker{},
		&workforce.Project{},
		&workforce.WorkerProjectRate{},
		&task.Task{},
		&task.Deduction{},
		&client.Client{},
		&client.CustomField{},
		&inventory.Product{},
		&order.CatalogService{},
		&order.Order{},
		&order.OrderService{},
		&order.OrderWorker{},
		&order.OrderCustomField{},
		&sales.SalesOrder{},
		&sales.Item{},
		&billing.Payment{},
		&upload.Upload{},
	}
}

// TenantTables lists every table keyed by organization_id, children before parents.
func TenantTables() []string {
	return []string{
		"payments",
		"deductions",
		"tasks",
		"order_custom_fields",
		"order_workers",
		"order_services",
		"orders",
		"sales_order_items",
		"sales_orders",
		"services",
		"client_custom_fields",
		"uploads",
		"clients",
		"products",
		"worker_project_rates",
		"workers",
		"projects",
	}
}
