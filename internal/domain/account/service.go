package account

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"bizops/internal/database"
	"bizops/internal/pkg/jwt"
	"bizops/internal/pkg/money"
	"bizops/internal/pkg/validator"
	"bizops/internal/tenant"
)

type RegisterInput struct {
	Email            string `json:"email" validate:"required,email"`
	Password         string `json:"password" validate:"required,min=8,max=72"`
	Name             string `json:"name" validate:"max=120"`
	OrganizationName string `json:"organization_name" validate:"required,max=160"`
	Currency         string `json:"currency"`
	Timezone         string `json:"timezone"`
}

type LoginInput struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type OrganizationInput struct {
	Name       string `json:"name" validate:"required,max=160"`
	Currency   string `json:"currency" validate:"required"`
	Timezone   string `json:"timezone" validate:"required"`
	Phone      string `json:"phone" validate:"max=40"`
	Address    string `json:"address" validate:"max=255"`
	City       string `json:"city" validate:"max=120"`
	Region     string `json:"region" validate:"max=120"`
	Country    string `json:"country" validate:"max=120"`
	PostalCode string `json:"postal_code" validate:"max=20"`
}

type Session struct {
	User         *User         `json:"user"`
	Organization *Organization `json:"organization"`
	AccessToken  string        `json:"access_token"`
	ExpiresAt    time.Time     `json:"expires_at"`
}

type Options struct {
	DefaultCurrency string
	DefaultTimezone string
	// TenantTables are wiped by DeleteAccount, in order. Children first.
	TenantTables []string
}

type Service struct {
	db     *gorm.DB
	tokens *jwt.Service
	log    *zap.Logger
	opts   Options
	now    func() time.Time
}

func NewService(db *gorm.DB, tokens *jwt.Service, log *zap.Logger, opts Options) *Service {
	if opts.DefaultCurrency == "" {
		opts.DefaultCurrency = money.DefaultCurrency
	}
	if opts.DefaultTimezone == "" {
		opts.DefaultTimezone = "UTC"
	}
	return &Service{db: db, tokens: tokens, log: log, opts: opts, now: time.Now}
}

// Register creates the organization and its first user, then signs the user in.
func (s *Service) Register(ctx context.Context, in RegisterInput) (*Session, error) {
	in.Email = normalizeEmail(in.Email)
	if errs := validator.Validate(in); errs != nil {
		return nil, fmt.Errorf("%w: %s", ErrValidation, validator.Summary(errs))
	}
	currency := strings.ToUpper(strings.TrimSpace(in.Currency))
	if currency == "" {
		currency = s.opts.DefaultCurrency
	}
	timezone := strings.TrimSpace(in.Timezone)
	if timezone == "" {
		timezone = s.opts.DefaultTimezone
	}
	if err := checkLocale(currency, timezone); err != nil {
		return nil, err
	}

	hash, err := HashPassword(in.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	org := &Organization{Name: strings.TrimSpace(in.OrganizationName), Currency: currency, Timezone: timezone}
	user := &User{Email: in.Email, PasswordHash: hash, Name: strings.TrimSpace(in.Name)}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&User{}).Where("email = ?", in.Email).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return ErrEmailAlreadyExists
		}
		if err := tx.Create(org).Error; err != nil {
			return err
		}
		user.OrganizationID = org.ID
		if err := tx.Create(user).Error; err != nil {
			if database.IsUniqueViolation(err) {
				return ErrEmailAlreadyExists
			}
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("organization registered",
		zap.String("org_id", org.ID.String()),
		zap.String("user_id", user.ID.String()),
	)
	return s.issue(user, org)
}

func (s *Service) Login(ctx context.Context, in LoginInput) (*Session, error) {
	in.Email = normalizeEmail(in.Email)
	if errs := validator.Validate(in); errs != nil {
		return nil, ErrInvalidCredentials
	}

	var user User
	if err := s.db.WithContext(ctx).Where("email = ?", in.Email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if err := CheckPassword(in.Password, user.PasswordHash); err != nil {
		return nil, ErrInvalidCredentials
	}

	org, err := s.organization(ctx, user.OrganizationID)
	if err != nil {
		return nil, err
	}

	now := s.now()
	if err := s.db.WithContext(ctx).Model(&User{}).Where("id = ?", user.ID).Update("last_login_at", now).Error; err != nil {
		s.log.Warn("failed to stamp last login", zap.String("user_id", user.ID.String()), zap.Error(err))
	}
	user.LastLoginAt = &now
	return s.issue(&user, org)
}

// ResolveScope turns an authenticated user into the tenant scope every service call takes.
func (s *Service) ResolveScope(ctx context.Context, userID uuid.UUID) (tenant.Scope, error) {
	var user User
	if err := s.db.WithContext(ctx).Where("id = ?", userID).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return tenant.Scope{}, ErrUserNotFound
		}
		return tenant.Scope{}, err
	}
	org, err := s.organization(ctx, user.OrganizationID)
	if err != nil {
		return tenant.Scope{}, err
	}
	return tenant.New(org.ID, user.ID, org.Currency, org.Timezone), nil
}

func (s *Service) Me(ctx context.Context, scope tenant.Scope) (*User, *Organization, error) {
	var user User
	err := s.db.WithContext(ctx).Scopes(scope.Apply).Where("id = ?", scope.UserID).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, ErrUserNotFound
		}
		return nil, nil, err
	}
	org, err := s.organization(ctx, scope.OrgID)
	if err != nil {
		return nil, nil, err
	}
	return &user, org, nil
}

func (s *Service) GetOrganization(ctx context.Context, scope tenant.Scope) (*Organization, error) {
	if err := scope.Validate(); err != nil {
		return nil, err
	}
	return s.organization(ctx, scope.OrgID)
}

func (s *Service) UpdateOrganization(ctx context.Context, scope tenant.Scope, in OrganizationInput) (*Organization, error) {
	if err := scope.Validate(); err != nil {
		return nil, err
	}
	in.Currency = strings.ToUpper(strings.TrimSpace(in.Currency))
	in.Timezone = strings.TrimSpace(in.Timezone)
	if errs := validator.Validate(in); errs != nil {
		return nil, fmt.Errorf("%w: %s", ErrValidation, validator.Summary(errs))
	}
	if err := checkLocale(in.Currency, in.Timezone); err != nil {
		return nil, err
	}

	res := s.db.WithContext(ctx).Model(&Organization{}).Where("id = ?", scope.OrgID).Updates(map[string]any{
		"name":        strings.TrimSpace(in.Name),
		"currency":    in.Currency,
		"timezone":    in.Timezone,
		"phone":       strings.TrimSpace(in.Phone),
		"address":     strings.TrimSpace(in.Address),
		"city":        strings.TrimSpace(in.City),
		"region":      strings.TrimSpace(in.Region),
		"country":     strings.TrimSpace(in.Country),
		"postal_code": strings.TrimSpace(in.PostalCode),
	})
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, ErrOrgNotFound
	}
	return s.organization(ctx, scope.OrgID)
}

// DeleteAccount removes every row the organization owns, its users and the organization itself.
func (s *Service) DeleteAccount(ctx context.Context, scope tenant.Scope) error {
	if err := scope.Validate(); err != nil {
		return err
	}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, table := range s.opts.TenantTables {
			if !tx.Migrator().HasTable(table) {
				continue
			}
			if err := tx.Exec("DELETE FROM "+table+" WHERE organization_id = ?", scope.OrgID).Error; err != nil {
				return fmt.Errorf("wipe %s: %w", table, err)
			}
		}
		if err := tx.Where("organization_id = ?", scope.OrgID).Delete(&User{}).Error; err != nil {
			return err
		}
		res := tx.Where("id = ?", scope.OrgID).Delete(&Organization{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrOrgNotFound
		}
		return nil
	})
	if err != nil {
		return err
	}
	s.log.Info("account deleted", zap.String("org_id", scope.OrgID.String()))
	return nil
}

func (s *Service) issue(user *User, org *Organization) (*Session, error) {
	token, err := s.tokens.GenerateToken(user.ID, user.Email)
	if err != nil {
		return nil, fmt.Errorf("sign token: %w", err)
	}
	return &Session{
		User:         user,
		Organization: org,
		AccessToken:  token,
		ExpiresAt:    s.now().Add(s.tokens.TTL()),
	}, nil
}

func (s *Service) organization(ctx context.Context, id uuid.UUID) (*Organization, error) {
	var org Organization
	if err := s.db.WithContext(ctx).Where("id = ?", id).First(&org).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrOrgNotFound
		}
		return nil, err
	}
	return &org, nil
}

func checkLocale(currency, timezone string) error {
	if !money.IsSupported(currency) {
		return ErrInvalidCurrency
	}
	if _, err := time.LoadLocation(timezone); err != nil {
		return ErrInvalidTimezone
	}
	return nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
