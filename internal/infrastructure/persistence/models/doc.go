// Package models contains GORM-specific persistence models that map to database tables.
// These models are separate from domain entities to keep the domain layer pure and free
// from ORM concerns.
//
// Key Principles:
// 1. Domain entities should be free of GORM tags and infrastructure concerns
// 2. Persistence models contain all GORM annotations and table mappings
// 3. Mappers convert between domain entities and persistence models
// 4. Repositories use persistence models for database operations
//
// Aggregates whose domain structs already carry GORM tags (finance, hr,
// crm, mdm, support) are persisted directly by their repositories and
// have no model here.
//
// Structure:
// - base.go: Base persistence models (BaseModel, AggregateModel, TenantAggregateModel)
// - identity.go: Identity context models (User, Tenant, Role)
// - printing.go: Printing context models (PrintTemplate, PrintJob)
// - featureflag.go: Feature flag models
// - outbox.go: Outbox pattern model for event delivery
package models
