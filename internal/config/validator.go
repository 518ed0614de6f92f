// internal/config/validator.go
//
// Thin wrapper around go-playground/validator.
//
// Context
// -------
// `Load` calls `validateStruct` immediately after it unmarshals the merged
// Koanf tree.  Any tag mismatch or validation error aborts startup, so the
// binary never runs with partial or malformed configuration.
//
// Cross-section rules that tags cannot express live in `configRules`:
//
//   • the s3 backend needs a bucket,
//   • the local backend needs a directory.
//
// Notes
// -----
//   • Oxford commas, two spaces after periods.

package config

import "github.com/go-playground/validator/v10"

//
// validator instance (package-level singleton)
//

var v = func() *validator.Validate {
	val := validator.New()
	val.RegisterStructValidation(configRules, Config{})
	return val
}()

//
// public API
//

// validateStruct returns the first validation error, or nil on success.
func validateStruct(c *Config) error {
	return v.Struct(c)
}

func configRules(sl validator.StructLevel) {
	c := sl.Current().Interface().(Config)
	switch c.Storage.Backend {
	case "s3":
		if c.Storage.Bucket == "" {
			sl.ReportError(c.Storage.Bucket, "Storage.Bucket", "Bucket", "required_for_s3", "")
		}
	case "local":
		if c.Storage.LocalDir == "" {
			sl.ReportError(c.Storage.LocalDir, "Storage.LocalDir", "LocalDir", "required_for_local", "")
		}
	}
}
