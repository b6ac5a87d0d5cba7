package models

// Quantity and money bounds. Quantities stay well inside Postgres integer
// columns, including stock restored on cancel, and a full order total stays
// inside int64 minor units.
const (
	MaxPrice     int64 = 100_000_000_000
	MaxStock           = 1_000_000_000
	MaxLineCount       = 10_000
)
