package main

import (
	"context"
	_ "embed"
	"errors"
	"flag"
	"log/slog"
	"os"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"github.com/preyalameta02/balance-sheet-analysis/constants"
	"github.com/preyalameta02/balance-sheet-analysis/internal/auth"
	"github.com/preyalameta02/balance-sheet-analysis/internal/common"
	"github.com/preyalameta02/balance-sheet-analysis/internal/entity"
	"github.com/preyalameta02/balance-sheet-analysis/internal/repository"
)

// seed loads demo companies, users, and records so the dashboard has data to
// show. Running it twice is safe: companies are get-or-create, existing users
// are left alone, and records upsert on (company, year, metric).

//go:embed fixtures.yaml
var builtinFixtures []byte

type fixtureFile struct {
	Companies []string        `yaml:"companies"`
	Users     []fixtureUser   `yaml:"users"`
	Records   []fixtureRecord `yaml:"records"`
}

type fixtureUser struct {
	Email     string   `yaml:"email"`
	Password  string   `yaml:"password"`
	Role      string   `yaml:"role"`
	Companies []string `yaml:"companies"`
}

type fixtureRecord struct {
	Company     string  `yaml:"company"`
	FiscalYear  string  `yaml:"fiscal_year"`
	Metric      string  `yaml:"metric"`
	Value       float64 `yaml:"value"`
	Description string  `yaml:"description"`
}

func main() {
	fixturesPath := flag.String("fixtures", "", "YAML fixtures file (default: built-in demo data)")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	slog.SetDefault(logger)

	raw := builtinFixtures
	if *fixturesPath != "" {
		var err error
		raw, err = os.ReadFile(*fixturesPath)
		if err != nil {
			logger.Error("cannot read fixtures", "path", *fixturesPath, "error", err)
			os.Exit(1)
		}
	}
	var fx fixtureFile
	if err := yaml.Unmarshal(raw, &fx); err != nil {
		logger.Error("cannot parse fixtures", "error", err)
		os.Exit(1)
	}

	cfg := common.LoadConfig()
	ctx := context.Background()

	db, err := repository.Open(ctx, cfg.Database, logger)
	if err != nil {
		logger.Error("database open failed", "error", err)
		os.Exit(1)
	}
	defer repository.Close(db, logger)

	companies := repository.NewCompanyRepository(db, logger)
	users := repository.NewUserRepository(db, logger)
	records := repository.NewRecordRepository(db, logger)

	companyIDs := map[string]uuid.UUID{}
	for _, name := range fx.Companies {
		company, created, err := companies.GetOrCreate(ctx, name)
		if err != nil {
			logger.Error("company seed failed", "name", name, "error", err)
			os.Exit(1)
		}
		companyIDs[company.Name] = company.ID
		if created {
			logger.Info("company created", "name", company.Name)
		}
	}

	for _, fu := range fx.Users {
		if _, err := users.GetByEmail(ctx, fu.Email); err == nil {
			logger.Info("user exists, skipping", "email", fu.Email)
			continue
		} else if !errors.Is(err, common.ErrNotFound) {
			logger.Error("user lookup failed", "email", fu.Email, "error", err)
			os.Exit(1)
		}

		role, ok := constants.ParseRole(fu.Role)
		if !ok {
			logger.Warn("unknown role, skipping user", "email", fu.Email, "role", fu.Role)
			continue
		}
		hash, err := auth.HashPassword(fu.Password)
		if err != nil {
			logger.Error("password hash failed", "email", fu.Email, "error", err)
			os.Exit(1)
		}

		assigned := make([]uuid.UUID, 0, len(fu.Companies))
		for _, name := range fu.Companies {
			id, ok := companyIDs[name]
			if !ok {
				logger.Warn("assignment names an unlisted company", "email", fu.Email, "company", name)
				continue
			}
			assigned = append(assigned, id)
		}

		user := &entity.User{
			ID:                 uuid.New(),
			Email:              fu.Email,
			PasswordHash:       hash,
			Role:               role,
			AssignedCompanyIDs: assigned,
		}
		if err := users.Create(ctx, user); err != nil {
			logger.Error("user seed failed", "email", fu.Email, "error", err)
			os.Exit(1)
		}
		logger.Info("user created", "email", user.Email, "role", user.Role)
	}

	var batch []*entity.FinancialRecord
	for _, fr := range fx.Records {
		companyID, ok := companyIDs[fr.Company]
		if !ok {
			logger.Warn("record names an unlisted company, skipping", "company", fr.Company)
			continue
		}
		metric, ok := constants.ParseMetricType(fr.Metric)
		if !ok {
			logger.Warn("record names an unknown metric, skipping", "metric", fr.Metric)
			continue
		}
		batch = append(batch, &entity.FinancialRecord{
			ID:          uuid.New(),
			CompanyID:   companyID,
			FiscalYear:  fr.FiscalYear,
			MetricType:  metric,
			Value:       fr.Value,
			Unit:        "Crore",
			Description: fr.Description,
		})
	}
	if len(batch) > 0 {
		if err := records.UpsertBatch(ctx, batch); err != nil {
			logger.Error("record seed failed", "error", err)
			os.Exit(1)
		}
	}

	logger.Info("seed complete",
		"companies", len(companyIDs),
		"users", len(fx.Users),
		"records", len(batch),
	)
}
