// Package widgets contains the widget models of the standard drone widgets.
//
// Each model embeds *widget.Model for its lifecycle, binds catalog keys in
// InSetup and exposes derived state as read-only processors. Action methods
// return a *store.Completion that resolves to the write outcome.
//
// Models resolve their keys against a registry with the keys catalog
// registered (keys.RegisterAll).
package widgets
