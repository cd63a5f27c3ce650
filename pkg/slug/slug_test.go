package slug

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGenerate_BasicASCII(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"Acme Corp", "acme-corp"},
		{"Hello World", "hello-world"},
		{"Simple", "simple"},
		{"ALL UPPER CASE", "all-upper-case"},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, Generate(tt.input))
		})
	}
}

func TestGenerate_Diacritics(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"Kadın Giyim", "kadin-giyim"},
		{"Çocuk Ürünleri", "cocuk-urunleri"},
		{"Crème Brûlée", "creme-brulee"},
		{"İstanbul", "istanbul"},
		{"Straße", "strasse"},
		{"Smørrebrød", "smorrebrod"},
		{"Łódź", "lodz"},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, Generate(tt.input))
		})
	}
}

func TestGenerate_SpecialCharacters(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"Hello!!! World???", "hello-world"},
		{"foo@bar#baz", "foo-bar-baz"},
		{"price: $100", "price-100"},
		{"one & two", "one-two"},
		{"a---b", "a-b"},
		{"-hello-", "hello"},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, Generate(tt.input))
		})
	}
}

func TestGenerate_EdgeCases(t *testing.T) {
	assert.Equal(t, "", Generate(""))
	assert.Equal(t, "", Generate("   "))
	assert.Equal(t, "", Generate("!!!"))
	assert.Equal(t, "a", Generate("a"))
	assert.Equal(t, "123", Generate("123"))
}

func TestGenerate_Idempotent(t *testing.T) {
	inputs := []string{
		"Acme Corp", "Çocuk Ürünleri", "  --Mixed__Case 42!  ", "Straße", "",
		"already-a-slug", "Ünïcödé  Wörld",
	}
	for _, in := range inputs {
		once := Generate(in)
		assert.Equal(t, once, Generate(once), "input %q", in)
	}
}

func TestGenerate_Deterministic(t *testing.T) {
	assert.Equal(t, Generate("Acme Corp"), Generate("Acme Corp"))
}

func TestIsValid(t *testing.T) {
	assert.True(t, IsValid("acme-corp"))
	assert.True(t, IsValid("a1"))
	assert.False(t, IsValid(""))
	assert.False(t, IsValid("Acme"))
	assert.False(t, IsValid("acme--corp"))
	assert.False(t, IsValid("-acme"))
	assert.False(t, IsValid("acme corp"))
}

func TestIsValid_GenerateOutput(t *testing.T) {
	for _, in := range []string{"Acme Corp", "Crème Brûlée", "x"} {
		assert.True(t, IsValid(Generate(in)), "input %q", in)
	}
}
