// Package utils provides shared low-level helpers used by the provider and
// extraction layers: a synchronous JSON POST helper for provider APIs
// ([DoPostSync]), recovery of a JSON document from free model output
// ([StripCodeFences], [ExtractJSONCandidate], [RepairJSON]) and string helpers
// for log output.
package utils
