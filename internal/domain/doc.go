// Package domain defines the core business entities and errors for the
// camp-planning application: groups and their members, activities, and the
// AI evaluation pipeline's request and result records.
package domain
