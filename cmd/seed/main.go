package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"bizops/internal/config"
	"bizops/internal/database"
	"bizops/internal/domain"
	"bizops/internal/domain/account"
	"bizops/internal/domain/billing"
	"bizops/internal/domain/client"
	"bizops/internal/domain/inventory"
	"bizops/internal/domain/order"
	"bizops/internal/domain/task"
	"bizops/internal/domain/workforce"
	jwtsvc "bizops/internal/pkg/jwt"
	"bizops/internal/pkg/logger"
	"bizops/internal/tenant"
)

const (
	demoEmail    = "demo@bizops.local"
	demoPassword = "demo12345"
)

func main() {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("failed to load .env: %v", err)
	}
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	zlog := logger.Must(logger.Config{Level: cfg.LogLevel, Format: "console", Development: true})
	defer func() { _ = zlog.Sync() }()

	db, err := database.Connect(cfg.DatabaseURL, cfg.DBDebug, zlog)
	if err != nil {
		zlog.Fatal("database connection failed", zap.Error(err))
	}
	err = database.Migrate(db, database.MigrateOptions{DSN: cfg.DatabaseURL, UseSQL: cfg.SQLMigrations, Dir: cfg.MigrationsDir}, zlog, domain.Models()...)
	if err != nil {
		zlog.Fatal("migration failed", zap.Error(err))
	}

	ctx := context.Background()
	nop := zap.NewNop()
	accounts := account.NewService(db, jwtsvc.New(cfg.JWTSecret, cfg.JWTTTL), nop, account.Options{
		DefaultCurrency: cfg.DefaultCurrency,
		DefaultTimezone: cfg.DefaultTimezone,
		TenantTables:    domain.TenantTables(),
	})

	// Re-running the seed starts the demo organization from scratch.
	if session, err := accounts.Login(ctx, account.LoginInput{Email: demoEmail, Password: demoPassword}); err == nil {
		scope, err := accounts.ResolveScope(ctx, session.User.ID)
		if err != nil {
			zlog.Fatal("resolve demo scope", zap.Error(err))
		}
		if err := accounts.DeleteAccount(ctx, scope); err != nil {
			zlog.Fatal("wipe demo organization", zap.Error(err))
		}
		zlog.Info("old demo organization removed")
	} else if !errors.Is(err, account.ErrInvalidCredentials) {
		zlog.Fatal("login demo user", zap.Error(err))
	}

	session, err := accounts.Register(ctx, account.RegisterInput{
		Email:            demoEmail,
		Password:         demoPassword,
		Name:             "Demo Owner",
		OrganizationName: "Adom Prints & Tailoring",
	})
	if err != nil {
		zlog.Fatal("register demo organization", zap.Error(err))
	}
	scope, err := accounts.ResolveScope(ctx, session.User.ID)
	if err != nil {
		zlog.Fatal("resolve demo scope", zap.Error(err))
	}

	wf := workforce.NewService(db, nop)
	tasks := task.NewService(db, wf, nop)
	wf.OnWorkerDelete(tasks.DeleteForWorker)
	clients := client.NewService(db, nop)
	stock := inventory.NewService(db, nop)
	orders := order.NewService(db, billing.NewService(db, nop), clients, wf, nop)

	workers := must(seedWorkers(ctx, wf, scope))
	projects := must(seedProjects(ctx, wf, scope))
	for i, w := range workers {
		for j, p := range projects {
			if (i+j)%2 == 0 {
				must(wf.AssignProject(ctx, scope, w.ID, p.ID, nil))
			}
		}
	}
	seedWeek(ctx, tasks, scope, workers, projects)

	c := must(clients.Create(ctx, scope, client.Input{
		Name:  "Efua Mensah",
		Phone: "+233 20 123 4567",
		CustomFields: []client.FieldInput{
			{Title: "Shoulder", Value: "42cm", Type: client.FieldText},
		},
	}))

	for _, in := range []inventory.Input{
		{Name: "Kente fabric", SKU: "FAB-KEN", Category: inventory.CategoryRawMaterial, UnitPrice: decimal.NewFromInt(120), StockQuantity: 30, ReorderPoint: 5},
		{Name: "Gift box", SKU: "PKG-BOX", Category: inventory.CategoryPackaging, UnitPrice: decimal.NewFromInt(8), StockQuantity: 3, ReorderPoint: 10},
		{Name: "Printed tote", SKU: "FG-TOTE", Category: inventory.CategoryFinishedGood, UnitPrice: decimal.NewFromInt(45), StockQuantity: 12, ReorderPoint: 4},
	} {
		must(stock.Create(ctx, scope, in))
	}

	banner := must(orders.CreateCatalogService(ctx, scope, order.CatalogInput{Name: "Banner print", Cost: decimal.NewFromInt(150)}))
	deposit := decimal.NewFromInt(100)
	o := must(orders.CreateOrder(ctx, scope, order.CreateInput{
		ClientID:       c.ID,
		Services:       []order.LineInput{{ServiceID: banner.ID, Quantity: 2}},
		Workers:        []order.AssignmentInput{{WorkerID: workers[0].ID, ProjectID: projects[0].ID}},
		Description:    "Church anniversary banners",
		InitialPayment: &deposit,
		PaymentMethod:  billing.MethodMobileMoney,
	}))

	zlog.Info("seed complete",
		zap.String("email", demoEmail),
		zap.String("password", demoPassword),
		zap.String("org_id", scope.OrgID.String()),
		zap.String("order_number", o.OrderNumber),
	)
}

func seedWorkers(ctx context.Context, wf *workforce.Service, scope tenant.Scope) ([]*workforce.Worker, error) {
	var out []*workforce.Worker
	for _, name := range []string{"Ama Owusu", "Kofi Boateng", "Yaw Asante"} {
		w, err := wf.CreateWorker(ctx, scope, workforce.WorkerInput{Name: name, Whatsapp: "+233200000000"})
		if err != nil {
			return nil, err
		}
		out = append(out, w)
	}
	return out, nil
}

func seedProjects(ctx context.Context, wf *workforce.Service, scope tenant.Scope) ([]*workforce.Project, error) {
	var out []*workforce.Project
	for i, name := range []string{"Banner printing", "Shirt embroidery", "Dress sewing"} {
		p, err := wf.CreateProject(ctx, scope, workforce.ProjectInput{Name: name, BasePrice: decimal.NewFromInt(int64(40 + 15*i))})
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, nil
}

// seedWeek records tasks from Monday up to today. Earlier days carry a late reason.
func seedWeek(ctx context.Context, tasks *task.Service, scope tenant.Scope, workers []*workforce.Worker, projects []*workforce.Project) {
	today := scope.Today(time.Now())
	monday := today.AddDate(0, 0, -((int(today.Weekday()) + 6) % 7))
	n := 0
	for day := monday; !day.After(today); day = day.AddDate(0, 0, 1) {
		for i, w := range workers {
			p := projects[(i+n)%len(projects)]
			in := task.CreateInput{WorkerID: w.ID, ProjectID: p.ID, Date: day, Description: fmt.Sprintf("%s for %s", p.Name, w.Name)}
			if day.Before(today) {
				in.LateReason = "entered from paper log"
			}
			t, err := tasks.Create(ctx, scope, in)
			if err != nil {
				log.Fatalf("seed task: %v", err)
			}
			if n%3 == 0 {
				must(tasks.ChangeStatus(ctx, scope, t.ID, task.StatusInput{Status: task.StatusCompleted}))
			}
			if n%5 == 0 {
				must(tasks.AddDeduction(ctx, scope, t.ID, task.DeductionInput{Amount: decimal.NewFromInt(5), Reason: "material waste"}))
			}
			n++
		}
	}
}

func must[T any](v T, err error) T {
	if err != nil {
		log.Fatalf("seed: %v", err)
	}
	return v
}
