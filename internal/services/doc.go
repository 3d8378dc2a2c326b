// Package services holds the logic behind the HTTP handlers: reconstruction
// of posted lines, pipeline runs over the configured input directory, and
// health reporting. Handlers stay thin and translate service errors into
// problem details.
package services
