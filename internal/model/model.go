// Package model holds the domain types shared by the storage,
// service and handler layers.
package model
