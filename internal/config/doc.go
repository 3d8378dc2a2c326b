// Package config loads the compiler's configuration.
//
// Values are applied in increasing order of precedence:
//
//  1. Default()
//  2. a YAML file (config.yaml or configs/config.yaml, or the path given)
//  3. a .env file in the working directory
//  4. LGPS_* environment variables
//
// Nested sections map to underscored names, for example
// LGPS_SERVER_PORT, LGPS_RECONSTRUCT_STRUCTURAL_LABELS and
// LGPS_INSIGHTS_API_KEY. Slice values are comma separated.
//
// Directories are resolved by ResolvePaths against PathsConfig.BaseDir.
package config
