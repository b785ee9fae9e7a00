package models

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "clientele/pkg/domain-errors"
)

func TestNewPersonName(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"accepts simple name", "Bousquet", false},
		{"accepts apostrophe and hyphen", "O'Brien-Smith", false},
		{"accepts spaces", "de la Fontaine", false},
		{"rejects too short", "A", true},
		{"rejects too long", strings.Repeat("a", 51), true},
		{"rejects digits", "Jean2", true},
		{"rejects empty", "", true},
		{"accepts exactly 2 chars", "Al", false},
		{"accepts exactly 50 chars", strings.Repeat("a", 50), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NewPersonName(tt.input)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.input, got.String())
		})
	}
}

func TestNewAddressLine(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"accepts street with number", "48 rue Bauducheu", false},
		{"accepts punctuation", "Apt. 4, Bldg B", false},
		{"rejects too short", "4", true},
		{"rejects invalid characters", "12 rue @home", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewAddressLine(tt.input)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
		})
	}
}

func TestNewPostalCode(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"accepts digits", "33800", false},
		{"accepts uppercase letters", "AB1CD", false},
		{"rejects lowercase", "ab1cd", true},
		{"rejects four characters", "3380", true},
		{"rejects six characters", "338000", true},
		{"rejects empty", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewPostalCode(tt.input)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
		})
	}
}

func TestParseFamilySituation(t *testing.T) {
	for _, valid := range []string{"SINGLE", "MARRIED", "DIVORCED", "WIDOWED", "CIVIL_UNION"} {
		got, err := ParseFamilySituation(valid)
		require.NoError(t, err, valid)
		assert.Equal(t, valid, got.String())
	}

	got, err := ParseFamilySituation("married")
	require.NoError(t, err, "parsing is case-insensitive")
	assert.Equal(t, Married, got)

	_, err = ParseFamilySituation("ENGAGED")
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
}

func TestNewChildrenCount(t *testing.T) {
	for _, valid := range []int{0, 1, 20} {
		_, err := NewChildrenCount(valid)
		require.NoError(t, err)
	}
	for _, invalid := range []int{-1, 21, 100} {
		_, err := NewChildrenCount(invalid)
		require.Error(t, err)
	}
}

func mustAddress(t *testing.T, line1 string, line2 *string, postal, city string) Address {
	t.Helper()
	l1, err := NewAddressLine(line1)
	require.NoError(t, err)
	var l2 *AddressLine
	if line2 != nil {
		parsed, err := NewAddressLine(*line2)
		require.NoError(t, err)
		l2 = &parsed
	}
	pc, err := NewPostalCode(postal)
	require.NoError(t, err)
	c, err := NewCityName(city)
	require.NoError(t, err)
	return NewAddress(l1, l2, pc, c)
}

func TestAddress_Equal(t *testing.T) {
	apt := "Apt 4"

	base := mustAddress(t, "48 rue Bauducheu", nil, "33800", "Bordeaux")

	t.Run("equal when all fields match", func(t *testing.T) {
		other := mustAddress(t, "48 rue Bauducheu", nil, "33800", "Bordeaux")
		assert.True(t, base.Equal(other))
		assert.True(t, other.Equal(base))
	})

	t.Run("unequal on line1", func(t *testing.T) {
		other := mustAddress(t, "12 rue Victor Hugo", nil, "33800", "Bordeaux")
		assert.False(t, base.Equal(other))
	})

	t.Run("unequal on postal code", func(t *testing.T) {
		other := mustAddress(t, "48 rue Bauducheu", nil, "75011", "Bordeaux")
		assert.False(t, base.Equal(other))
	})

	t.Run("unequal on city", func(t *testing.T) {
		other := mustAddress(t, "48 rue Bauducheu", nil, "33800", "Paris")
		assert.False(t, base.Equal(other))
	})

	t.Run("line2 presence must match", func(t *testing.T) {
		withLine2 := mustAddress(t, "48 rue Bauducheu", &apt, "33800", "Bordeaux")
		assert.False(t, base.Equal(withLine2))
		assert.False(t, withLine2.Equal(base))
	})

	t.Run("equal when both carry the same line2", func(t *testing.T) {
		a := mustAddress(t, "48 rue Bauducheu", &apt, "33800", "Bordeaux")
		b := mustAddress(t, "48 rue Bauducheu", &apt, "33800", "Bordeaux")
		assert.True(t, a.Equal(b))
	})
}

func TestClient_Reconstruction(t *testing.T) {
	surname, err := NewPersonName("Bousquet")
	require.NoError(t, err)
	given, err := NewPersonName("Philippe")
	require.NoError(t, err)

	original := Client{
		Surname:   surname,
		GivenName: given,
		Address:   mustAddress(t, "48 rue Bauducheu", nil, "33800", "Bordeaux"),
		Situation: Single,
		Children:  0,
	}

	newAddr := mustAddress(t, "12 rue Victor Hugo", nil, "75011", "Paris")
	updated := original.WithAddress(newAddr)

	assert.True(t, updated.Address.Equal(newAddr))
	assert.True(t, original.Address.Equal(mustAddress(t, "48 rue Bauducheu", nil, "33800", "Bordeaux")),
		"receiver is untouched")

	married := original.WithFamilySituation(Married, 2)
	assert.Equal(t, Married, married.Situation)
	assert.Equal(t, 2, married.Children.Int())
	assert.Equal(t, Single, original.Situation)
}
