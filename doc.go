// Package equitysim projects the tax and charitable-pledge consequences of
// multi-year equity compensation decisions. It is designed to be local-first
// and auditable: a scenario file in, an exact year-by-year result out, with
// every intermediate amount kept in exact decimal arithmetic.
//
// The core functionalities include:
//   - Disposition Calculators: pure functions turning one action on a share
//     lot (exercise, sale, donation) into its immutable tax component,
//     including the ISO disqualifying-disposition split.
//   - Annual Tax Engine: federal and California liability from a year's
//     components, with bracket-stacked long-term gains, AMT resolution and
//     credit movement, and charitable deduction ceilings.
//   - Carryforward Ledgers: AMT credit and the four FIFO charitable
//     carryforward ledgers (cash and stock, per jurisdiction) with 5-year
//     expiration.
//   - Pledge Ledger: sale- and IPO-triggered obligations, FIFO discharge by
//     donations, 3-year match windows and the company match rule.
//   - Projection Driver: replays vesting and planned actions year by year,
//     threading the carryforward state and snapshotting each year.
//
// This package serves as the foundational logic for the `eqsim` command-line
// tool, ensuring that all operations are consistent and reproducible.
package equitysim
