package users_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/cardvault/go-cardvault-client/users"
)

func TestValidateEmail(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		require.NoError(t, users.ValidateEmail("john.doe@example.com"))
	})

	for _, email := range []string{"", "plain", "no-at.example.com", "two@@example.com", "no-domain@", "@example.com", "spaces in@example.com"} {
		t.Run("invalid "+email, func(t *testing.T) {
			require.Error(t, users.ValidateEmail(email))
		})
	}
}

func TestValidatePasswordStrength(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		require.NoError(t, users.ValidatePasswordStrength("Str0ng!pass"))
	})

	t.Run("too short", func(t *testing.T) {
		err := users.ValidatePasswordStrength("S1!a")
		require.Error(t, err)
		require.Contains(t, err.Error(), "at least 8 characters")
	})

	t.Run("missing uppercase", func(t *testing.T) {
		err := users.ValidatePasswordStrength("str0ng!pass")
		require.Error(t, err)
		require.Contains(t, err.Error(), "uppercase")
	})

	t.Run("missing lowercase", func(t *testing.T) {
		err := users.ValidatePasswordStrength("STR0NG!PASS")
		require.Error(t, err)
		require.Contains(t, err.Error(), "lowercase")
	})

	t.Run("missing number", func(t *testing.T) {
		err := users.ValidatePasswordStrength("Strong!pass")
		require.Error(t, err)
		require.Contains(t, err.Error(), "number")
	})

	t.Run("missing special character", func(t *testing.T) {
		err := users.ValidatePasswordStrength("Str0ngpass")
		require.Error(t, err)
		require.Contains(t, err.Error(), "special character")
	})
}

func TestValidateName(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		require.NoError(t, users.ValidateName("John"))
		require.NoError(t, users.ValidateName("Mary Jane"))
	})

	t.Run("too short", func(t *testing.T) {
		require.Error(t, users.ValidateName("J"))
	})

	t.Run("too long", func(t *testing.T) {
		long := make([]byte, 51)
		for i := range long {
			long[i] = 'a'
		}
		require.Error(t, users.ValidateName(string(long)))
	})

	t.Run("digits rejected", func(t *testing.T) {
		require.Error(t, users.ValidateName("John2"))
	})
}

func TestValidatePhone(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		require.NoError(t, users.ValidatePhone("+1 (555) 123-4567"))
		require.NoError(t, users.ValidatePhone("5551234567"))
	})

	t.Run("too few digits", func(t *testing.T) {
		require.Error(t, users.ValidatePhone("555-1234"))
	})

	t.Run("letters rejected", func(t *testing.T) {
		require.Error(t, users.ValidatePhone("555-CALL-ME"))
	})
}

func TestValidatePIN(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		require.NoError(t, users.ValidatePIN("1234"))
	})

	for _, pin := range []string{"", "123", "12345", "12a4", "12 4"} {
		t.Run("invalid "+pin, func(t *testing.T) {
			require.Error(t, users.ValidatePIN(pin))
		})
	}
}

func TestValidateRegistration(t *testing.T) {
	t.Run("required fields only", func(t *testing.T) {
		require.NoError(t, users.ValidateRegistration("john@example.com", "Str0ng!pass", "", "", ""))
	})

	t.Run("all fields", func(t *testing.T) {
		require.NoError(t, users.ValidateRegistration("john@example.com", "Str0ng!pass", "John", "Doe", "+1 555 123 4567"))
	})

	t.Run("bad email", func(t *testing.T) {
		require.Error(t, users.ValidateRegistration("not-an-email", "Str0ng!pass", "", "", ""))
	})

	t.Run("weak password", func(t *testing.T) {
		require.Error(t, users.ValidateRegistration("john@example.com", "weak", "", "", ""))
	})

	t.Run("optional fields validated when set", func(t *testing.T) {
		require.Error(t, users.ValidateRegistration("john@example.com", "Str0ng!pass", "J", "", ""))
		require.Error(t, users.ValidateRegistration("john@example.com", "Str0ng!pass", "", "", "123"))
	})
}
