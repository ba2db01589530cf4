// Package models defines domain entities and persistence interfaces for the arredo client.
//
// The package contains two categories of types:
//
// 1. Data Transfer Objects (DTOs): structs mirroring the CRM's JSON payloads
//   - [Project] : A customer engagement holding an ordered list of sections
//   - [Section] : One room — reference photo, room type, products, renderings
//   - [Design] : One AI rendering attempt with its lifecycle status
//   - [Product] : A furniture catalog item from product search
//
// 2. Persistent Entities: local cache models backed by SQLite
//   - [PersistedProduct] : Catalog items cached for offline browsing
//   - [SectionSnapshot] : The last fetched state of a section
//
// All persistent entities implement the Model interface providing ID access, timestamps and validation.
// The Repository[T] interface defines standard CRUD operations for database access.
package models
