package database

import (
	"fmt"
	"log"
)

// SchemaAdmin is the narrow schema-administration surface the repair
// engine needs: drop a table and recreate it with its known schema.
// Nothing else in the system touches the migrator directly.
type SchemaAdmin interface {
	DropTable(model interface{}) error
	CreateTable(model interface{}) error
}

// schemaAdmin implements SchemaAdmin over the GORM migrator
type schemaAdmin struct {
	db *DB
}

// NewSchemaAdmin returns a SchemaAdmin bound to the given connection
func NewSchemaAdmin(db *DB) SchemaAdmin {
	return &schemaAdmin{db: db}
}

func (a *schemaAdmin) DropTable(model interface{}) error {
	if !a.db.Migrator().HasTable(model) {
		return nil
	}
	if err := a.db.Migrator().DropTable(model); err != nil {
		return fmt.Errorf("failed to drop table: %w", err)
	}
	log.Printf("🧹 Dropped table for %T", model)
	return nil
}

func (a *schemaAdmin) CreateTable(model interface{}) error {
	if err := a.db.Migrator().CreateTable(model); err != nil {
		return fmt.Errorf("failed to recreate table: %w", err)
	}
	log.Printf("✅ Recreated table for %T", model)
	return nil
}
