// Package erp contains the ERP sales-document bounded context.
// It turns marketplace orders into ERP sales vouchers and tracks their
// delivery to the external ERP.
//
// Key concepts:
//   - ErpConfig: a tenant's ERP connection and automation flags
//   - SalesTemplate: fixed-shape rules for building document lines
//   - FieldMapping: granular per-field rules resolved by FieldValueResolver
//   - SalesDocument: the generated voucher and its send state machine
//   - Gateway: port to the external ERP, implemented in infrastructure
//
// Line building is pure: builders never fail on missing or zero data,
// they degrade to empty strings, zero amounts or omitted lines.
package erp
