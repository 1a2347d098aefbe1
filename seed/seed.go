package seed

import (
	"context"
	"fmt"
	"time"

	"table-order-api/models"
	"table-order-api/money"

	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Options controls the environment-dependent parts of the seed data
type Options struct {
	FrontendURL   string
	AdminPassword string
	StaffPassword string
	// PasswordCost lets tests use bcrypt.MinCost
	PasswordCost int
}

// Catalog identifiers referenced by tests and fixtures
const (
	ProductEspresso  = "prod-espresso"
	ProductLatte     = "prod-latte"
	ProductHerbTea   = "prod-herb-tea"
	ProductPanini    = "prod-panini"
	ProductSalad     = "prod-salad"
	ProductBrunchSet = "prod-brunch-set"

	ToppingExtraShot = "top-extra-shot"
	ToppingOatMilk   = "top-oat-milk"
	ToppingHoney     = "top-honey"
	ToppingGelato    = "top-gelato"

	AdminEmail = "admin@ital-cafe.jp"
	StaffEmail = "staff@ital-cafe.jp"
)

// Run upserts the demo catalog, tables, staff accounts and tax schedule.
// Running it again refreshes the same rows.
func Run(ctx context.Context, db *gorm.DB, opts Options) error {
	if opts.PasswordCost == 0 {
		opts.PasswordCost = bcrypt.DefaultCost
	}
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		steps := []struct {
			name string
			fn   func(*gorm.DB, Options) error
		}{
			{"users", seedUsers},
			{"tables", seedTables},
			{"toppings", seedToppings},
			{"products", seedProducts},
			{"product toppings", seedProductToppings},
			{"set components", seedSetComponents},
			{"tax rates", seedTaxRates},
		}
		for _, step := range steps {
			if err := step.fn(tx, opts); err != nil {
				return fmt.Errorf("seed %s: %w", step.name, err)
			}
		}
		return nil
	})
}

func upsert(tx *gorm.DB, value interface{}) error {
	return tx.Clauses(clause.OnConflict{UpdateAll: true}).Create(value).Error
}

func seedUsers(tx *gorm.DB, opts Options) error {
	accounts := []struct {
		id, email, name, password string
		role                      models.UserRole
	}{
		{"user-admin-root", AdminEmail, "Ital Cafe Admin", opts.AdminPassword, models.RoleAdmin},
		{"user-staff-nakamura", StaffEmail, "Nakamura (staff)", opts.StaffPassword, models.RoleStaff},
	}
	for _, a := range accounts {
		hash, err := bcrypt.GenerateFromPassword([]byte(a.password), opts.PasswordCost)
		if err != nil {
			return err
		}
		user := models.User{
			ID:           a.id,
			Email:        a.email,
			Name:         a.name,
			PasswordHash: string(hash),
			Role:         a.role,
			IsActive:     true,
		}
		if err := upsert(tx, &user); err != nil {
			return err
		}
	}
	return nil
}

func seedTables(tx *gorm.DB, opts Options) error {
	tables := []struct{ id, number, name, token string }{
		{"table-terrace-1", "A1", "Terrace 1", "ital-terrace-1"},
		{"table-terrace-2", "A2", "Terrace 2", "ital-terrace-2"},
		{"table-window-1", "B1", "Window 1", "ital-window-1"},
		{"table-window-2", "B2", "Window 2", "ital-window-2"},
		{"table-counter-1", "C1", "Counter 1", "ital-counter-1"},
		{"table-counter-2", "C2", "Counter 2", "ital-counter-2"},
	}
	for _, t := range tables {
		table := models.Table{
			ID:         t.id,
			Number:     t.number,
			Name:       t.name,
			TableToken: t.token,
			QRURL:      opts.FrontendURL + "/t/" + t.token,
			IsActive:   true,
		}
		if err := upsert(tx, &table); err != nil {
			return err
		}
	}
	return nil
}

func seedToppings(tx *gorm.DB, _ Options) error {
	toppings := []models.Topping{
		{ID: ToppingExtraShot, Name: "Extra espresso shot", Price: money.MustParse("80.00"), IsAvailable: true},
		{ID: ToppingOatMilk, Name: "Oat milk", Price: money.MustParse("60.00"), IsAvailable: true},
		{ID: ToppingHoney, Name: "Forest honey", Price: money.MustParse("70.00"), IsAvailable: true},
		{ID: ToppingGelato, Name: "House gelato", Price: money.MustParse("120.00"), IsAvailable: true},
	}
	return upsert(tx, &toppings)
}

func seedProducts(tx *gorm.DB, _ Options) error {
	single := func(id, name, desc, price, category string, order int) models.Product {
		return models.Product{
			ID:           id,
			Name:         name,
			Description:  desc,
			Price:        money.MustParse(price),
			ImageURL:     "/images/products/" + id[len("prod-"):] + ".jpg",
			Category:     category,
			ProductType:  models.ProductSingle,
			IsAvailable:  true,
			DisplayOrder: order,
		}
	}
	products := []models.Product{
		single(ProductEspresso, "Forest espresso", "Dark roast espresso with a deep aroma.", "480.00", "coffee", 10),
		single(ProductLatte, "Young leaf latte", "Latte scented with house herb syrup.", "580.00", "coffee", 20),
		single(ProductHerbTea, "Forest herb tea", "Chamomile and lemongrass blend.", "520.00", "tea", 30),
		single(ProductPanini, "Wood-fired panini", "Seasonal vegetables and mozzarella.", "760.00", "food", 40),
		single(ProductSalad, "Forest harvest salad", "Organic leaves with seasonal fruit.", "680.00", "food", 50),
	}
	brunch := single(ProductBrunchSet, "Colorful brunch set", "Pick a drink and a plate.", "1280.00", "set", 5)
	brunch.ProductType = models.ProductSet
	products = append(products, brunch)

	return upsert(tx, &products)
}

func seedProductToppings(tx *gorm.DB, _ Options) error {
	mappings := []models.ProductTopping{
		{ProductID: ProductEspresso, ToppingID: ToppingExtraShot},
		{ProductID: ProductLatte, ToppingID: ToppingExtraShot},
		{ProductID: ProductLatte, ToppingID: ToppingOatMilk},
		{ProductID: ProductHerbTea, ToppingID: ToppingHoney},
		{ProductID: ProductPanini, ToppingID: ToppingGelato},
	}
	return tx.Clauses(clause.OnConflict{DoNothing: true}).Omit(clause.Associations).Create(&mappings).Error
}

func seedSetComponents(tx *gorm.DB, _ Options) error {
	component := func(id, productID, slot string, defaultQty int, extra string, order int) models.SetComponent {
		return models.SetComponent{
			ID:                 id,
			SetProductID:       ProductBrunchSet,
			ComponentProductID: productID,
			SlotName:           slot,
			Required:           true,
			MinQty:             1,
			MaxQty:             1,
			DefaultQty:         defaultQty,
			ExtraPrice:         money.MustParse(extra),
			DisplayOrder:       order,
		}
	}
	components := []models.SetComponent{
		component("setcomp-brunch-drink-latte", ProductLatte, "drink", 1, "0.00", 1),
		component("setcomp-brunch-drink-herb", ProductHerbTea, "drink", 0, "0.00", 2),
		component("setcomp-brunch-food-panini", ProductPanini, "main", 1, "0.00", 1),
		component("setcomp-brunch-food-salad", ProductSalad, "main", 0, "50.00", 2),
	}

	if err := tx.Where("set_product_id = ?", ProductBrunchSet).Delete(&models.SetComponent{}).Error; err != nil {
		return err
	}
	return tx.Omit(clause.Associations).Create(&components).Error
}

func seedTaxRates(tx *gorm.DB, _ Options) error {
	jst := time.FixedZone("JST", 9*60*60)
	rates := []models.TaxRateSchedule{
		{
			ID:            "tax-2024-standard",
			Rate:          decimal.RequireFromString("10.00"),
			EffectiveFrom: time.Date(2024, 4, 1, 0, 0, 0, 0, jst).UTC(),
			CreatedBy:     "system",
		},
		{
			ID:            "tax-2026-revision",
			Rate:          decimal.RequireFromString("11.00"),
			EffectiveFrom: time.Date(2026, 4, 1, 0, 0, 0, 0, jst).UTC(),
			CreatedBy:     "system",
		},
	}
	return upsert(tx, &rates)
}
