package repository

import (
	"context"
	"errors"
	"log/slog"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/preyalameta02/balance-sheet-analysis/internal/common"
	"github.com/preyalameta02/balance-sheet-analysis/internal/entity"
)

type CompanyRepository interface {
	Create(ctx context.Context, company *entity.Company) error
	GetByID(ctx context.Context, id uuid.UUID) (*entity.Company, error)
	GetByName(ctx context.Context, name string) (*entity.Company, error)
	// GetOrCreate returns the company with the given name, creating it when
	// missing. The bool reports whether a new row was created.
	GetOrCreate(ctx context.Context, name string) (*entity.Company, bool, error)
	List(ctx context.Context) ([]*entity.Company, error)
	ListByIDs(ctx context.Context, ids []uuid.UUID) ([]*entity.Company, error)
}

type companyRepository struct {
	db     *gorm.DB
	logger *slog.Logger
}

func NewCompanyRepository(db *gorm.DB, logger *slog.Logger) CompanyRepository {
	if logger == nil {
		logger = slog.Default()
	}
	return &companyRepository{db: db, logger: logger}
}

func (r *companyRepository) Create(ctx context.Context, company *entity.Company) error {
	if err := mapErr(r.db.WithContext(ctx).Create(company).Error); err != nil {
		r.logger.Error("failed to create company", "name", company.Name, "error", err)
		return err
	}
	return nil
}

func (r *companyRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.Company, error) {
	var company entity.Company
	if err := mapErr(r.db.WithContext(ctx).First(&company, "id = ?", id).Error); err != nil {
		return nil, err
	}
	return &company, nil
}

func (r *companyRepository) GetByName(ctx context.Context, name string) (*entity.Company, error) {
	var company entity.Company
	if err := mapErr(r.db.WithContext(ctx).First(&company, "name = ?", name).Error); err != nil {
		return nil, err
	}
	return &company, nil
}

func (r *companyRepository) GetOrCreate(ctx context.Context, name string) (*entity.Company, bool, error) {
	company, err := r.GetByName(ctx, name)
	if err == nil {
		return company, false, nil
	}
	if !errors.Is(err, common.ErrNotFound) {
		return nil, false, err
	}

	company = &entity.Company{ID: uuid.New(), Name: name}
	err = r.Create(ctx, company)
	if errors.Is(err, common.ErrDuplicate) {
		// Lost a create race; the row exists now.
		company, err = r.GetByName(ctx, name)
		return company, false, err
	}
	if err != nil {
		return nil, false, err
	}
	return company, true, nil
}

func (r *companyRepository) List(ctx context.Context) ([]*entity.Company, error) {
	var companies []*entity.Company
	if err := r.db.WithContext(ctx).Order("name asc").Find(&companies).Error; err != nil {
		r.logger.Error("failed to list companies", "error", err)
		return nil, err
	}
	return companies, nil
}

func (r *companyRepository) ListByIDs(ctx context.Context, ids []uuid.UUID) ([]*entity.Company, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var companies []*entity.Company
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Order("name asc").Find(&companies).Error; err != nil {
		r.logger.Error("failed to list companies by ids", "error", err)
		return nil, err
	}
	return companies, nil
}
