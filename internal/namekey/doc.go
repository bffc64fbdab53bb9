// Package namekey derives the canonical lookup keys used to link candidate
// and contest names across election datasets.
//
// Two keys are produced for every name:
//   - Key folds case, strips diacritics, and keeps only [a-z0-9], so
//     "José Núñez" and "JOSE NUNEZ" share the key "josenunez".
//   - LastNameKey keeps an optional "Prefix:" segment (for example
//     "Retention:" or "Measure:"), extracts the family name from the
//     remainder, and applies the same folding.
//
// Both functions are pure and safe for concurrent use.
package namekey
