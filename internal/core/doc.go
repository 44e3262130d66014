// Package core provides the storefront's write workflows.
//
// The package is independent of any transport: the HTTP server and the CLI
// both call into a [Service] built around an explicitly passed database
// handle.
//
// # Import Pipeline
//
// A product spreadsheet is denormalized: one row per variant, with product
// fields repeated or left blank after the first row. Import runs in four
// steps:
//
//  1. [GroupRows] folds rows into groups by the key column (Handle). A blank
//     key inherits the previous row's key; leading rows with nothing to
//     inherit are dropped.
//  2. [NormalizeProductGroup] turns a group into a [ProductPlan]: product
//     fields from the first row, one variant per row, each with an optional
//     image, a fixed IN/ALL price pair and a shipping row.
//  3. [Writer] executes the plan in a transaction. Duplicate SKUs and
//     duplicate country prices are skipped; a duplicate handle fails the
//     product.
//  4. [Service.ImportRows] drives the batch under a [Policy]: isolate (one
//     transaction per product) or abort (one transaction for everything).
//
// [Service.PreviewImport] runs steps 1 and 2 and checks handles and SKUs
// against the database without writing.
//
// Orders and single products created through the API follow the same
// normalize-then-write path with [NormalizeOrderRequest] and
// [NormalizeProductRequest].
//
// # Error Handling
//
// Failures are returned as [*WriteError] with a [Kind]; use errors.Is with
// [ErrDuplicateParentKey], [ErrForeignKeyViolation], [ErrTransient],
// [ErrValidation] or [ErrNotFound]. [MapError] turns any error into a
// user-facing message with a support code.
package core
