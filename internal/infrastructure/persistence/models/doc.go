// Package models contains the GORM persistence models.
//
// Persistence models are kept separate from domain entities so that the
// domain layer stays free of storage concerns. Each model knows how to
// convert to and from its domain counterpart via ToDomain/FromDomain.
package models
