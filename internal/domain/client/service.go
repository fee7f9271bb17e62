package client

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"bizops/internal/pkg/validator"
	"bizops/internal/tenant"
)

type FieldInput struct {
	Title string    `json:"title" validate:"required,max=120"`
	Value string    `json:"value" validate:"max=2000"`
	Type  FieldType `json:"type"`
}

type Input struct {
	Name         string       `json:"name" validate:"required,max=160"`
	Email        string       `json:"email" validate:"omitempty,email"`
	Phone        string       `json:"phone" validate:"max=40"`
	Address      string       `json:"address" validate:"max=500"`
	CustomFields []FieldInput `json:"custom_fields" validate:"dive"`
}

// balanceTables are the billable document tables a client can owe on.
var balanceTables = []string{"orders", "sales_orders"}

type Service struct {
	db  *gorm.DB
	log *zap.Logger
}

func NewService(db *gorm.DB, log *zap.Logger) *Service {
	return &Service{db: db, log: log}
}

func (s *Service) Create(ctx context.Context, scope tenant.Scope, in Input) (*Client, error) {
	if err := check(scope, in); err != nil {
		return nil, err
	}
	c := &Client{OrganizationID: scope.OrgID}
	apply(c, in)
	c.CustomFields = fieldsFrom(scope, in.CustomFields)

	if err := s.db.WithContext(ctx).Create(c).Error; err != nil {
		return nil, err
	}
	c.TotalBalance = decimal.Zero
	s.log.Info("client created", zap.String("org_id", scope.OrgID.String()), zap.String("client_id", c.ID.String()))
	return c, nil
}

// Update replaces the client's details and its whole set of custom fields.
func (s *Service) Update(ctx context.Context, scope tenant.Scope, id uuid.UUID, in Input) (*Client, error) {
	if err := check(scope, in); err != nil {
		return nil, err
	}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		c, err := find(tx, scope, id)
		if err != nil {
			return err
		}
		apply(c, in)
		if err := tx.Omit("CustomFields").Save(c).Error; err != nil {
			return err
		}
		if err := tx.Scopes(scope.Apply).Where("client_id = ?", id).Delete(&CustomField{}).Error; err != nil {
			return err
		}
		fields := fieldsFrom(scope, in.CustomFields)
		for i := range fields {
			fields[i].ClientID = id
		}
		if len(fields) > 0 {
			return tx.Create(&fields).Error
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.Get(ctx, scope, id)
}

func (s *Service) Get(ctx context.Context, scope tenant.Scope, id uuid.UUID) (*Client, error) {
	db := s.db.WithContext(ctx)
	c, err := find(db.Preload("CustomFields", func(db *gorm.DB) *gorm.DB { return db.Order("created_at asc") }), scope, id)
	if err != nil {
		return nil, err
	}
	balances, err := s.balances(db, scope, []uuid.UUID{c.ID})
	if err != nil {
		return nil, err
	}
	c.TotalBalance = balances[c.ID]
	return c, nil
}

// List returns clients by name, optionally filtered by a name/email/phone search term.
func (s *Service) List(ctx context.Context, scope tenant.Scope, search string) ([]Client, error) {
	if err := scope.Validate(); err != nil {
		return nil, err
	}
	db := s.db.WithContext(ctx)
	q := db.Scopes(scope.Apply).Preload("CustomFields")
	if term := strings.TrimSpace(search); term != "" {
		like := "%" + strings.ToLower(term) + "%"
		q = q.Where("LOWER(name) LIKE ? OR LOWER(email) LIKE ? OR phone LIKE ?", like, like, like)
	}
	var clients []Client
	if err := q.Order("name asc").Find(&clients).Error; err != nil {
		return nil, err
	}
	if len(clients) == 0 {
		return clients, nil
	}

	ids := make([]uuid.UUID, len(clients))
	for i, c := range clients {
		ids[i] = c.ID
	}
	balances, err := s.balances(db, scope, ids)
	if err != nil {
		return nil, err
	}
	for i := range clients {
		clients[i].TotalBalance = balances[clients[i].ID]
	}
	return clients, nil
}

// Delete removes a client and its custom fields. Clients with billable documents are kept.
func (s *Service) Delete(ctx context.Context, scope tenant.Scope, id uuid.UUID) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, table := range balanceTables {
			if !tx.Migrator().HasTable(table) {
				continue
			}
			var n int64
			err := tx.Table(table).Where("organization_id = ? AND client_id = ?", scope.OrgID, id).Count(&n).Error
			if err != nil {
				return fmt.Errorf("count %s: %w", table, err)
			}
			if n > 0 {
				return ErrHasDocuments
			}
		}
		if err := tx.Scopes(scope.Apply).Where("client_id = ?", id).Delete(&CustomField{}).Error; err != nil {
			return err
		}
		res := tx.Scopes(scope.Apply).Where("id = ?", id).Delete(&Client{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrNotFound
		}
		return nil
	})
}

func (s *Service) AddField(ctx context.Context, scope tenant.Scope, clientID uuid.UUID, in FieldInput) (*CustomField, error) {
	if errs := validator.Validate(in); errs != nil {
		return nil, fmt.Errorf("%w: %s", ErrValidation, validator.Summary(errs))
	}
	if in.Type == "" {
		in.Type = FieldText
	}
	if !in.Type.Valid() {
		return nil, ErrInvalidFieldType
	}
	if ok, err := s.Exists(ctx, scope, clientID); err != nil {
		return nil, err
	} else if !ok {
		return nil, ErrNotFound
	}
	f := &CustomField{
		OrganizationID: scope.OrgID,
		ClientID:       clientID,
		Title:          strings.TrimSpace(in.Title),
		Value:          in.Value,
		Type:           in.Type,
	}
	if err := s.db.WithContext(ctx).Create(f).Error; err != nil {
		return nil, err
	}
	return f, nil
}

func (s *Service) RemoveField(ctx context.Context, scope tenant.Scope, clientID, fieldID uuid.UUID) error {
	res := s.db.WithContext(ctx).Scopes(scope.Apply).
		Where("id = ? AND client_id = ?", fieldID, clientID).
		Delete(&CustomField{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrFieldNotFound
	}
	return nil
}

func (s *Service) Exists(ctx context.Context, scope tenant.Scope, id uuid.UUID) (bool, error) {
	var n int64
	err := s.db.WithContext(ctx).Model(&Client{}).Scopes(scope.Apply).Where("id = ?", id).Count(&n).Error
	return n > 0, err
}

func (s *Service) Count(ctx context.Context, scope tenant.Scope) (int64, error) {
	var n int64
	err := s.db.WithContext(ctx).Model(&Client{}).Scopes(scope.Apply).Count(&n).Error
	return n, err
}

type balanceRow struct {
	ClientID uuid.UUID
	Balance  decimal.Decimal
}

// balances sums outstanding balances per client across every billable document table.
func (s *Service) balances(db *gorm.DB, scope tenant.Scope, ids []uuid.UUID) (map[uuid.UUID]decimal.Decimal, error) {
	out := make(map[uuid.UUID]decimal.Decimal, len(ids))
	for _, id := range ids {
		out[id] = decimal.Zero
	}
	for _, table := range balanceTables {
		if !db.Migrator().HasTable(table) {
			continue
		}
		var rows []balanceRow
		err := db.Table(table).
			Select("client_id, COALESCE(SUM(outstanding_balance), 0) AS balance").
			Where("organization_id = ? AND client_id IN ?", scope.OrgID, ids).
			Group("client_id").
			Scan(&rows).Error
		if err != nil {
			return nil, fmt.Errorf("sum %s balances: %w", table, err)
		}
		for _, r := range rows {
			out[r.ClientID] = out[r.ClientID].Add(r.Balance)
		}
	}
	return out, nil
}

func find(db *gorm.DB, scope tenant.Scope, id uuid.UUID) (*Client, error) {
	var c Client
	if err := db.Scopes(scope.Apply).Where("id = ?", id).First(&c).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &c, nil
}

func check(scope tenant.Scope, in Input) error {
	if err := scope.Validate(); err != nil {
		return err
	}
	if errs := validator.Validate(in); errs != nil {
		return fmt.Errorf("%w: %s", ErrValidation, validator.Summary(errs))
	}
	for _, f := range in.CustomFields {
		if f.Type != "" && !f.Type.Valid() {
			return ErrInvalidFieldType
		}
	}
	return nil
}

func apply(c *Client, in Input) {
	c.Name = strings.TrimSpace(in.Name)
	c.Email = strings.TrimSpace(in.Email)
	c.Phone = strings.TrimSpace(in.Phone)
	c.Address = strings.TrimSpace(in.Address)
}

func fieldsFrom(scope tenant.Scope, in []FieldInput) []CustomField {
	out := make([]CustomField, 0, len(in))
	for _, f := range in {
		typ := f.Type
		if typ == "" {
			typ = FieldText
		}
		out = append(out, CustomField{
			OrganizationID: scope.OrgID,
			Title:          strings.TrimSpace(f.Title),
			Value:          f.Value,
			Type:           typ,
		})
	}
	return out
}
