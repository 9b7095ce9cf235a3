// Package acl holds anti-corruption adapters for upstream APIs. Each adapter
// owns the upstream wire types, translates them into domain values and maps
// upstream failures onto domain errors, so nothing outside this package sees
// an upstream DTO or HTTP status.
//
// [AnthropicClassifier] implements ports.CategoryClassifier on top of the
// messages API.
package acl
