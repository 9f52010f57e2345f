// Package config defines the semunits process configuration.
//
// Config groups the log, loader, nats, metrics and tracing sections. Load
// reads an optional JSON or YAML file through viper, applies environment
// overrides prefixed with SEMUNITS_ (dots become underscores, so
// SEMUNITS_LOG_LEVEL sets log.level) and validates the result:
//
//	cfg, err := config.Load(viper.New(), "semunits.yaml")
//	if err != nil {
//		return err
//	}
//	roots, err := cfg.Loader.BuildRoots()
//
// Files are size-limited and must carry a .json, .yaml or .yml extension.
// Validation errors wrap errors.ErrInvalidConfig and are classified invalid.
package config
