// Package erpgateway implements erp.Gateway for the supported ERP products.
//
// ECount is reached through its Open API: a zone lookup, a session login and
// the SaveSale bulk call. ICOUNT is registered but refuses every document.
package erpgateway
