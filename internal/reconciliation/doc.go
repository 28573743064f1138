// Package reconciliation holds the pure computations of the daily
// stock/sales reconciliation: reference normalization, aggregation of stock
// and transfer lines, variance and severity, cash matching, the per-product
// breakdown and the editable session around a day's result.
//
// Nothing here performs I/O; the service layer feeds it raw lines.
package reconciliation
