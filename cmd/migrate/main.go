package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"slices"

	"go.uber.org/zap"

	"github.com/adeshyearanty/crm-lead-service/internal/config"
	"github.com/adeshyearanty/crm-lead-service/internal/database"
	"github.com/adeshyearanty/crm-lead-service/internal/domain"
	"github.com/adeshyearanty/crm-lead-service/internal/logger"
	"github.com/adeshyearanty/crm-lead-service/internal/metrics"
	"github.com/adeshyearanty/crm-lead-service/internal/query"
	"github.com/adeshyearanty/crm-lead-service/internal/repository"
	"github.com/adeshyearanty/crm-lead-service/internal/service"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Migration error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	ctx := context.Background()

	args := os.Args[1:]
	if len(args) == 0 {
		return fmt.Errorf("usage: migrate [up|status|seed]")
	}
	command := args[0]

	basicCfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	log, err := logger.NewLogger(&basicCfg.Logging, &basicCfg.App)
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer func() { _ = log.Sync() }()

	cfg, err := config.LoadWithSecrets(ctx, log)
	if err != nil {
		return fmt.Errorf("failed to load secrets: %w", err)
	}

	db, err := database.NewDatabase(ctx, &cfg.Mongo, log)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer func() { _ = db.Close(context.Background()) }()

	switch command {
	case "up":
		if err := db.EnsureIndexes(ctx); err != nil {
			return fmt.Errorf("failed to create indexes: %w", err)
		}
		fmt.Println("Indexes created successfully")

	case "status":
		collections := make([]string, 0, len(database.Indexes()))
		for name := range database.Indexes() {
			collections = append(collections, name)
		}
		slices.Sort(collections)
		for _, name := range collections {
			names, err := db.IndexNames(ctx, name)
			if err != nil {
				return err
			}
			fmt.Printf("%-16s %v\n", name, names)
		}

	case "seed":
		if err := seed(ctx, cfg, db, log); err != nil {
			return err
		}
		fmt.Println("Reference data seeded successfully")

	default:
		return fmt.Errorf("unknown command: %s", command)
	}

	return nil
}

// seed inserts the default lead settings. Values that already exist are
// left alone, so seeding is repeatable.
func seed(ctx context.Context, cfg *config.Config, db *database.Database, log *zap.Logger) error {
	timeout := cfg.Mongo.QueryTimeoutDuration()
	m := metrics.NewNop()
	leads := repository.NewMongoCollection[*domain.Lead](db.Collection(domain.CollectionLeads), timeout, m, log)

	statuses := service.NewReferenceService[*domain.LeadStatus](
		repository.NewMongoCollection[*domain.LeadStatus](db.Collection(domain.CollectionLeadStatuses), timeout, m, log),
		leads, service.LeadStatusKind, log)
	for i, name := range []string{"New", "Contacted", "Qualified", "Unqualified"} {
		req := domain.CreateLeadStatusRequest{Name: name, IsDefault: i == 0}
		if err := seedOne(ctx, statuses, req.ToLeadStatus(statuses.Now()), log); err != nil {
			return err
		}
	}

	sources := service.NewReferenceService[*domain.LeadSource](
		repository.NewMongoCollection[*domain.LeadSource](db.Collection(domain.CollectionLeadSources), timeout, m, log),
		leads, service.LeadSourceKind, log)
	for i, name := range []string{"Website", "Referral", "LinkedIn", "Cold Call", "Event"} {
		req := domain.CreateLeadSourceRequest{Name: name, IsDefault: i == 0}
		if err := seedOne(ctx, sources, req.ToLeadSource(sources.Now()), log); err != nil {
			return err
		}
	}

	industries := service.NewReferenceService[*domain.IndustryType](
		repository.NewMongoCollection[*domain.IndustryType](db.Collection(domain.CollectionIndustryTypes), timeout, m, log),
		leads, service.IndustryTypeKind, log)
	for _, name := range []string{"Technology", "Finance", "Healthcare", "Manufacturing", "Retail"} {
		req := domain.CreateIndustryTypeRequest{Name: name}
		if err := seedOne(ctx, industries, req.ToIndustryType(industries.Now()), log); err != nil {
			return err
		}
	}

	sizes := service.NewReferenceService[*domain.CompanySize](
		repository.NewMongoCollection[*domain.CompanySize](db.Collection(domain.CollectionCompanySizes), timeout, m, log),
		leads, service.CompanySizeKind, log)
	for _, size := range []struct{ label, employees string }{
		{"Small", "1-50"},
		{"Medium", "51-250"},
		{"Large", "251-1000"},
		{"Enterprise", "1001-100000"},
	} {
		req := domain.CreateCompanySizeRequest{Label: size.label, EmployeeRange: size.employees}
		if err := seedOne(ctx, sizes, req.ToCompanySize(sizes.Now()), log); err != nil {
			return err
		}
	}
	return nil
}

func seedOne[T query.Document](ctx context.Context, svc *service.ReferenceService[T], doc T, log *zap.Logger) error {
	if _, err := svc.Create(ctx, doc); err != nil {
		if errors.Is(err, service.ErrConflict) {
			log.Debug("Reference value already present", zap.Error(err))
			return nil
		}
		return fmt.Errorf("failed to seed reference data: %w", err)
	}
	return nil
}
