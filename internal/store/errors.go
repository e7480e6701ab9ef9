package store

import "codeberg.org/mutker/wattd/internal/errors"

const (
	// Configuration Errors
	ErrInvalidConfig = errors.ErrInvalidConfig
	ErrInvalidDBPath = errors.ErrorCode("store_invalid_db_path")
	ErrInvalidDriver = errors.ErrorCode("store_invalid_driver")
	ErrInvalidKey    = errors.ErrorCode("store_invalid_key")

	// Schema Errors
	ErrSchemaInitFailed       = errors.ErrorCode("store_schema_init_failed")
	ErrSchemaValidationFailed = errors.ErrorCode("store_schema_validation_failed")
	ErrSchemaMigrationFailed  = errors.ErrorCode("store_schema_migration_failed")

	// Storage Errors
	ErrStorageAccess = errors.ErrorCode("store_storage_access_failed")
	ErrStorageInit   = errors.ErrInitFailed
	ErrStorageClose  = errors.ErrShutdownFailed
	ErrClosed        = errors.ErrorCode("store_closed")

	// Value Errors
	ErrEncodeValue = errors.ErrorCode("store_encode_value_failed")
)

func init() {
	errors.RegisterMessages(map[errors.ErrorCode]string{
		ErrInvalidDBPath:          "Invalid database path",
		ErrInvalidDriver:          "Unknown store driver",
		ErrInvalidKey:             "Invalid store key",
		ErrSchemaInitFailed:       "Failed to initialize schema",
		ErrSchemaValidationFailed: "Failed to validate schema",
		ErrSchemaMigrationFailed:  "Failed to migrate schema",
		ErrStorageAccess:          "Storage access failed",
		ErrClosed:                 "Store is closed",
		ErrEncodeValue:            "Failed to encode value",
	})
}
