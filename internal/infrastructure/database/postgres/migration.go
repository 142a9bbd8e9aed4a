// internal/infrastructure/database/postgres/migration.go
package postgres

import (
	"fmt"
	"log"
	"time"

	"github.com/your-org/storefront-backend/internal/domain/order"
	"github.com/your-org/storefront-backend/internal/domain/product"
	"github.com/your-org/storefront-backend/internal/domain/user"
	"github.com/your-org/storefront-backend/internal/store"
	"gorm.io/gorm"
)

// Migration handles database migrations
type Migration struct {
	db *gorm.DB
}

// NewMigration creates a new migration instance
func NewMigration(db *gorm.DB) *Migration {
	return &Migration{
		db: db,
	}
}

// models lists every table in dependency order
func models() []store.Row {
	return []store.Row{
		&user.User{},
		&product.Product{},
		&order.Order{},
		&order.OrderItem{},
	}
}

// indexes are created after auto-migration; gorm tags cover the single-column ones
var indexes = []string{
	"CREATE INDEX IF NOT EXISTS idx_products_category_created ON products(category, created_at DESC)",
	"CREATE INDEX IF NOT EXISTS idx_products_featured ON products(featured) WHERE featured",
	"CREATE INDEX IF NOT EXISTS idx_products_name_lower ON products(lower(name))",
	"CREATE INDEX IF NOT EXISTS idx_orders_user_created ON orders(user_id, created_at DESC)",
	"CREATE INDEX IF NOT EXISTS idx_orders_status_created ON orders(status, created_at DESC)",
	"CREATE INDEX IF NOT EXISTS idx_order_items_order_created ON order_items(order_id, created_at)",
}

// RunAutoMigrations runs GORM auto-migrations for all models
func (m *Migration) RunAutoMigrations() error {
	log.Println("🔄 Running database auto-migrations...")

	for _, model := range models() {
		log.Printf("Migrating model: %T", model)
		if err := m.db.AutoMigrate(model); err != nil {
			return fmt.Errorf("failed to migrate model %T: %w", model, err)
		}
	}

	log.Println("✅ Database auto-migrations completed successfully")
	return nil
}

// CreateIndexes creates the composite indexes the list queries rely on
func (m *Migration) CreateIndexes() error {
	log.Println("🔄 Creating additional database indexes...")

	successCount := 0
	failCount := 0

	for _, indexSQL := range indexes {
		if err := m.db.Exec(indexSQL).Error; err != nil {
			log.Printf("⚠️ Failed to create index: %v", err)
			failCount++
		} else {
			successCount++
		}
	}

	log.Printf("✅ Created %d indexes successfully (%d failed)", successCount, failCount)
	return nil
}

// SeedProducts inserts the starter catalogue into an empty products table
func (m *Migration) SeedProducts() error {
	log.Println("🌱 Seeding products...")

	var productCount int64
	if err := m.db.Model(&product.Product{}).Count(&productCount).Error; err != nil {
		return fmt.Errorf("failed to count products: %w", err)
	}

	if productCount > 0 {
		log.Println("⏭️ Products already exist")
		return nil
	}

	catalogue := product.StarterCatalogue(time.Now().UTC())
	if err := m.db.Create(&catalogue).Error; err != nil {
		return fmt.Errorf("failed to seed products: %w", err)
	}

	log.Printf("✅ Seeded %d products", len(catalogue))
	return nil
}

// DropAllTables drops all tables (use with extreme caution)
func (m *Migration) DropAllTables() error {
	log.Println("⚠️ WARNING: Dropping all database tables...")

	all := models()
	for i := len(all) - 1; i >= 0; i-- {
		table := all[i].TableName()
		if err := m.db.Exec(fmt.Sprintf("DROP TABLE IF EXISTS %s CASCADE", table)).Error; err != nil {
			log.Printf("⚠️ Failed to drop table %s: %v", table, err)
		} else {
			log.Printf("🗑️ Dropped table: %s", table)
		}
	}

	log.Println("✅ All tables dropped successfully")
	return nil
}
