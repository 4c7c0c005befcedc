// Package validation checks input files, input directories and output
// directories before a summary run touches them. Failures are returned as
// *errors.AppError so callers can map them to exit codes or HTTP problems.
package validation
