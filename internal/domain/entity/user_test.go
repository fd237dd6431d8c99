package entity

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMaskEmail(t *testing.T) {
	tests := []struct {
		name  string
		email string
		want  string
	}{
		{"обычный адрес", "student@example.com", "st*****@example.com"},
		{"длинная локальная часть", "alexander.petrov@example.com", "al**************@example.com"},
		{"три символа до @", "abc@example.com", "ab*@example.com"},
		{"два символа не маскируются", "ab@example.com", "ab@example.com"},
		{"один символ не маскируется", "a@example.com", "a@example.com"},
		{"строка без @ возвращается как есть", "not-an-email", "not-an-email"},
		{"@ первым символом", "@example.com", "@example.com"},
		{"пустая строка", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, MaskEmail(tt.email))
		})
	}
}

func TestUserMaskedEmail(t *testing.T) {
	u := &User{Email: "student@example.com"}
	assert.Equal(t, "st*****@example.com", u.MaskedEmail())
}
