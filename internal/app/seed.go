package app

import (
	"context"
	"fmt"
	"log/slog"

	"fundcrm/internal/config"
	"fundcrm/internal/db/repository"
	"fundcrm/internal/domain"
	"fundcrm/internal/service"
)

// seed bootstraps an empty database: the first admin account and the
// standard product catalog. Idempotent — it checks what already exists.
func seed(ctx context.Context, cfg *config.Config, users *repository.UserRepo,
	products *repository.ProductRepo, logger *slog.Logger) error {

	existing, _, err := users.List(ctx, domain.PageRequest{Page: 1, Limit: 1})
	if err != nil {
		return fmt.Errorf("check users: %w", err)
	}
	if len(existing) == 0 {
		if cfg.SeedAdminEmail == "" || cfg.SeedAdminPassword == "" {
			logger.Warn("no users exist and SEED_ADMIN_EMAIL/SEED_ADMIN_PASSWORD are not set — nobody can log in")
		} else {
			hash, err := service.HashPassword(cfg.SeedAdminPassword)
			if err != nil {
				return fmt.Errorf("hash seed admin password: %w", err)
			}
			if _, err := users.Create(ctx, &domain.User{
				Email:        cfg.SeedAdminEmail,
				PasswordHash: hash,
				FullName:     "System Administrator",
				Role:         domain.RoleAdmin,
			}); err != nil {
				return fmt.Errorf("create seed admin: %w", err)
			}
			logger.Info("seeded bootstrap admin", "email", cfg.SeedAdminEmail)
		}
	}

	catalog, err := products.ListFundProducts(ctx, false)
	if err != nil {
		return fmt.Errorf("check product catalog: %w", err)
	}
	if len(catalog) > 0 {
		return nil
	}

	for _, p := range defaultCatalog() {
		if _, err := products.CreateFundProduct(ctx, &p); err != nil {
			return fmt.Errorf("seed product %q: %w", p.ProductName, err)
		}
	}
	logger.Info("seeded product catalog", "products", len(defaultCatalog()))
	return nil
}

func defaultCatalog() []domain.FundProduct {
	n := func(v int64) *int64 { return &v }
	str := func(s string) *string { return &s }
	return []domain.FundProduct{
		{
			ProductName:        "キャピタルコールファシリティ（標準）",
			ProductNameEn:      str("Capital Call Facility (Standard)"),
			ProductType:        "capital_call_facility",
			Description:        str("Standard subscription line facility for PE funds"),
			TypicalTenorMonths: n(36),
			MinAmountJPY:       n(1000),
			MaxAmountJPY:       n(10000),
			BaseRate:           str("TORF"),
			SpreadBpsMin:       n(80),
			SpreadBpsMax:       n(150),
		},
		{
			ProductName:        "キャピタルコールファシリティ（大型）",
			ProductNameEn:      str("Capital Call Facility (Large)"),
			ProductType:        "capital_call_facility",
			Description:        str("Large-scale subscription line for major funds"),
			TypicalTenorMonths: n(48),
			MinAmountJPY:       n(10000),
			MaxAmountJPY:       n(50000),
			BaseRate:           str("TORF"),
			SpreadBpsMin:       n(50),
			SpreadBpsMax:       n(100),
		},
		{
			ProductName:        "NAVファシリティ",
			ProductNameEn:      str("NAV-Based Facility"),
			ProductType:        "nav_facility",
			Description:        str("Net asset value based lending facility"),
			TypicalTenorMonths: n(24),
			MinAmountJPY:       n(5000),
			MaxAmountJPY:       n(30000),
			BaseRate:           str("TORF"),
			SpreadBpsMin:       n(120),
			SpreadBpsMax:       n(250),
		},
		{
			ProductName:        "ハイブリッドファシリティ",
			ProductNameEn:      str("Hybrid Facility"),
			ProductType:        "hybrid_facility",
			Description:        str("Combined capital call and NAV-based facility"),
			TypicalTenorMonths: n(36),
			MinAmountJPY:       n(5000),
			MaxAmountJPY:       n(30000),
			BaseRate:           str("TORF"),
			SpreadBpsMin:       n(100),
			SpreadBpsMax:       n(200),
		},
		{
			ProductName:        "GP/運用会社ファシリティ",
			ProductNameEn:      str("GP/Management Company Facility"),
			ProductType:        "management_company_facility",
			Description:        str("Facility for GP/management company operations"),
			TypicalTenorMonths: n(12),
			MinAmountJPY:       n(500),
			MaxAmountJPY:       n(5000),
			BaseRate:           str("TIBOR"),
			SpreadBpsMin:       n(150),
			SpreadBpsMax:       n(300),
		},
		{
			ProductName:        "ブリッジローン",
			ProductNameEn:      str("Bridge Loan Facility"),
			ProductType:        "bridge_loan",
			Description:        str("Short-term bridge financing for acquisitions"),
			TypicalTenorMonths: n(6),
			MinAmountJPY:       n(2000),
			MaxAmountJPY:       n(20000),
			BaseRate:           str("TORF"),
			SpreadBpsMin:       n(200),
			SpreadBpsMax:       n(400),
		},
		{
			ProductName:        "ウェアハウスファシリティ",
			ProductNameEn:      str("Warehouse Facility"),
			ProductType:        "warehouse_facility",
			Description:        str("Warehouse line for asset aggregation"),
			TypicalTenorMonths: n(18),
			MinAmountJPY:       n(3000),
			MaxAmountJPY:       n(15000),
			BaseRate:           str("TORF"),
			SpreadBpsMin:       n(150),
			SpreadBpsMax:       n(300),
		},
	}
}
