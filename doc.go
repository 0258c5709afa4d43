// Package capgains computes tax-accurate realized gains and losses for a
// multi-institution asset portfolio from a batch of normalized transaction
// records.
//
// The package is built around four cooperating pieces:
//
//   - the transfer reconciler pairs transfer_out and transfer_in records
//     that represent the same physical movement of an asset between
//     institutions, so that cost basis survives custodial moves,
//   - the lot ledger maintains per-asset FIFO queues of acquisition lots
//     and consumes them chronologically against disposals,
//   - the cost basis resolver prices each acquisition according to its
//     origin (purchase, inherited transfer, non-cash income) with the help
//     of an injected PriceOracle,
//   - the aggregator rolls the consumed-lot records into annual short/long
//     term summaries together with a data-quality section.
//
// All quantity and monetary arithmetic is exact, carried by
// shopspring/decimal through the Quantity and Money wrapper types. The
// engine is batch-oriented and single-threaded: one call to
// Ledger.Process handles one user's complete history.
package capgains
