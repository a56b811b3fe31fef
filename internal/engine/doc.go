// Package engine holds the budget calculation and analytics core: period
// framing, methodology allocation, progress, variance and forecast analysis,
// recommendations and alert evaluation. Every function is a pure computation
// over the snapshot it is given; nothing here touches storage, the network or
// the wall clock, so it is safe for concurrent use without locking.
package engine
