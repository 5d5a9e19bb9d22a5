package importer

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseDate(t *testing.T) {
	tests := []struct {
		in   string
		want string
		ok   bool
	}{
		{"15/03/2026", "2026-03-15", true},
		{"2026-03-15", "2026-03-15", true},
		{"15-03-2026", "2026-03-15", true},
		{"2026-03-15 00:00:00", "2026-03-15", true},
		{" 01/12/2025 ", "2025-12-01", true},
		{"46096", "2026-03-15", true},
		{"5/3/2026", "2026-03-05", true},
		{"5-3-2026", "2026-03-05", true},
		{"2026-3-5", "2026-03-05", true},
		{"05/03/2026", "2026-03-05", true},
		{"", "", false},
		{"ontem", "", false},
		{"31/02/2026", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := ParseDate(tt.in)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseMonth(t *testing.T) {
	for in, want := range map[string]string{
		"15/03/2026": "2026-03-01",
		"03/2026":    "2026-03-01",
		"3/2026":     "2026-03-01",
		"2026-3":     "2026-03-01",
		"2026-03":    "2026-03-01",
		"2026-03-01": "2026-03-01",
	} {
		got, ok := ParseMonth(in)
		assert.True(t, ok, in)
		assert.Equal(t, want, got, in)
	}

	_, ok := ParseMonth("marco")
	assert.False(t, ok)
}

func TestParseInt(t *testing.T) {
	tests := []struct {
		in   string
		want int
		ok   bool
	}{
		{"3", 3, true},
		{"3.0", 3, true},
		{"3,0", 3, true},
		{" 12 ", 12, true},
		{"", 0, false},
		{"=A2", 0, false},
		{"abc", 0, false},
		{"nan", 0, false},
		{"inf", 0, false},
		{"-Inf", 0, false},
		{"1e30", 0, false},
		{"2147483648", 0, false},
		{"-7", -7, true},
	}

	for _, tt := range tests {
		got, ok := ParseInt(tt.in)
		assert.Equal(t, tt.ok, ok, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}
}

func TestParseDecimal(t *testing.T) {
	tests := []struct {
		in   string
		want string
		ok   bool
	}{
		{"1200", "1200", true},
		{"1500.75", "1500.75", true},
		{"R$ 1.200,50", "1200.5", true},
		{"300,00", "300", true},
		{"-50", "-50", true},
		{"", "0", false},
		{"mil reais", "0", false},
		{"1,200.50", "0", false},
		{"R$ 1.200.300,10", "1200300.1", true},
		{"1.234", "1.234", true},
	}

	for _, tt := range tests {
		got, ok := ParseDecimal(tt.in)
		assert.Equal(t, tt.ok, ok, tt.in)
		assert.Equal(t, tt.want, got.String(), tt.in)
	}
}

func TestParseBool(t *testing.T) {
	for _, in := range []string{"Sim", "x", "TRUE", "1"} {
		v, ok := ParseBool(in)
		assert.True(t, ok, in)
		assert.True(t, v, in)
	}
	for _, in := range []string{"Não", "nao", "0"} {
		v, ok := ParseBool(in)
		assert.True(t, ok, in)
		assert.False(t, v, in)
	}
	_, ok := ParseBool("talvez")
	assert.False(t, ok)
}
