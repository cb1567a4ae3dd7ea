// Package api contains the HTTP handlers for the public API: authentication,
// groups, activities and the AI evaluation endpoints. Handlers translate
// between the wire format and the domain, delegating business rules to the
// service layer and stores.
package api
