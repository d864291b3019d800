package service

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"recipehub/recipe-service/internal/app/recipe/entity"
)

func TestTextSanitizer_Clean(t *testing.T) {
	s := newTextSanitizer()

	tests := []struct {
		in   string
		want string
	}{
		{"  Pasta  ", "Pasta"},
		{"<b>Pasta</b> al forno", "Pasta al forno"},
		{"<script>alert(1)</script>Suppe", "Suppe"},
		{"Salz & Pfeffer", "Salz & Pfeffer"},
		{"<i></i>", ""},
		{"", ""},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, s.Clean(tt.in), "input %q", tt.in)
	}
}

func TestTextSanitizer_CleanList(t *testing.T) {
	s := newTextSanitizer()

	got := s.CleanList([]string{" 200 g Mehl ", "", "<br>", "1 Ei"})

	assert.Equal(t, []string{"200 g Mehl", "1 Ei"}, got)
}

func TestTextSanitizer_CleanFilters(t *testing.T) {
	s := newTextSanitizer()
	maxTime := 30

	got := s.CleanFilters(entity.SearchFilters{
		Query:   " <em>tomate</em> ",
		Cuisine: "Italian",
		MaxTime: &maxTime,
	})

	assert.Equal(t, "tomate", got.Query)
	assert.Equal(t, "Italian", got.Cuisine)
	assert.Equal(t, &maxTime, got.MaxTime)
}
