// Copyright (c) 2026 Meserio. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package i18n resolves the best display translation from a per-entity
translation list.

Every entity in the platform (cluster, category, service, question, option,
free-text answer) carries a list of per-language records. This package is the
single place where "which record do we show for language X" is decided; call
sites must never re-derive the fallback chain themselves.

Resolution order:

 1. The record whose language code equals the requested language.
 2. The record whose language code equals the fallback language.
 3. The first record in list order.
 4. The zero value of the record type (empty list).

Resolve is a total function: it never fails, whatever the inputs.
*/
package i18n

// DefaultLanguage is the platform-wide fallback language code.
const DefaultLanguage = "en"

// Localized is implemented by any per-language record that can be resolved.
type Localized interface {
	// Language returns the ISO 639-1 code of the record (e.g. "en", "ro").
	Language() string
}

// Resolve picks the best entry for the requested language, falling back to
// [DefaultLanguage], then to the first entry, then to the zero value.
func Resolve[T Localized](entries []T, requested string) T {
	return ResolveWith(entries, requested, DefaultLanguage)
}

// ResolveWith behaves like [Resolve] with an explicit fallback language.
func ResolveWith[T Localized](entries []T, requested, fallback string) T {
	var fallbackEntry *T

	for i := range entries {
		code := entries[i].Language()
		if code == requested {
			return entries[i]
		}
		if code == fallback && fallbackEntry == nil {
			fallbackEntry = &entries[i]
		}
	}

	if fallbackEntry != nil {
		return *fallbackEntry
	}

	if len(entries) > 0 {
		return entries[0]
	}

	// Language-neutral empty record.
	var zero T
	return zero
}

// Has reports whether the list carries an entry for the exact language code.
func Has[T Localized](entries []T, code string) bool {
	for i := range entries {
		if entries[i].Language() == code {
			return true
		}
	}
	return false
}
