// Package model defines shared data types used across the market feed server.
//
// Conventions:
//   - Prices: float64 rupees, rounded to two decimal places at every mutation
//   - Timestamps: int64 milliseconds since Unix epoch (wire format)
//   - IDs: string for symbols, uuid.UUID for connections
package model
