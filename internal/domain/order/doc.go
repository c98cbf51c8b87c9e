// Package order contains the marketplace order bounded context.
// Orders and settlements are collected from marketplaces by other
// components; this package only models what the ERP document engine reads.
//
// Key concepts:
//   - Order: a marketplace order with its items, fees and ERP sync state
//   - Settlement: marketplace-reported commission breakdown for an order
//   - MarketplaceType: the sales channel an order came from
package order
