// Copyright (c) 2026 Meserio. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package i18n_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/taibuivan/meserio/pkg/i18n"
)

type entry struct {
	Code string
	Name string
}

func (e entry) Language() string { return e.Code }

/*
TestResolve_FallbackChain verifies the three-tier resolution order:
requested language, then "en", then first entry in list order.
*/
func TestResolve_FallbackChain(t *testing.T) {
	entries := []entry{
		{Code: "ro", Name: "Instalatii"},
		{Code: "en", Name: "Plumbing"},
		{Code: "de", Name: "Sanitaer"},
	}

	tests := []struct {
		name      string
		requested string
		want      string
	}{
		{"exact_match", "ro", "Instalatii"},
		{"fallback_to_en", "fr", "Plumbing"},
		{"exact_match_en", "en", "Plumbing"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := i18n.Resolve(entries, tt.requested)
			assert.Equal(t, tt.want, got.Name)
		})
	}
}

/*
TestResolve_NoDefaultLanguage verifies that a list without an "en" entry
resolves to the first entry in list order rather than failing.
*/
func TestResolve_NoDefaultLanguage(t *testing.T) {
	entries := []entry{
		{Code: "ro", Name: "Zugraveli"},
		{Code: "de", Name: "Malerarbeiten"},
	}

	got := i18n.Resolve(entries, "fr")
	assert.Equal(t, "Zugraveli", got.Name)
}

/*
TestResolve_EmptyList verifies the total-function guarantee: an empty list
yields the zero record, never a panic.
*/
func TestResolve_EmptyList(t *testing.T) {
	got := i18n.Resolve([]entry{}, "en")
	assert.Equal(t, entry{}, got)

	got = i18n.Resolve[entry](nil, "ro")
	assert.Equal(t, entry{}, got)
}

/*
TestResolveWith_CustomFallback verifies that an explicit fallback language
takes precedence over list order.
*/
func TestResolveWith_CustomFallback(t *testing.T) {
	entries := []entry{
		{Code: "de", Name: "Dachdecker"},
		{Code: "ro", Name: "Acoperisuri"},
	}

	got := i18n.ResolveWith(entries, "fr", "ro")
	assert.Equal(t, "Acoperisuri", got.Name)
}

func TestHas(t *testing.T) {
	entries := []entry{{Code: "en"}, {Code: "ro"}}

	assert.True(t, i18n.Has(entries, "ro"))
	assert.False(t, i18n.Has(entries, "de"))
	assert.False(t, i18n.Has([]entry{}, "en"))
}
