package token

import (
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// mint signs an HS256 token with the given claims. The secret is irrelevant
// to the package under test, which never verifies signatures.
func mint(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return signed
}

func TestDecode(t *testing.T) {
	now := time.Now().UTC()

	t.Run("WellFormed", func(t *testing.T) {
		raw := mint(t, jwt.MapClaims{"sub": float64(42), "exp": now.Add(time.Hour).Unix()})
		claims, err := Decode(raw)
		if err != nil {
			t.Fatalf("Decode failed: %v", err)
		}
		if claims["sub"] != float64(42) {
			t.Errorf("sub = %v, want 42", claims["sub"])
		}
	})

	t.Run("Malformed", func(t *testing.T) {
		_, err := Decode("not-a-token")
		if err == nil {
			t.Fatal("Decode accepted garbage")
		}
		var de *DecodeError
		if !errors.As(err, &de) {
			t.Errorf("error type = %T, want *DecodeError", err)
		}
	})
}

func TestIsValid(t *testing.T) {
	now := time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC)

	cases := []struct {
		name  string
		token string
		want  bool
	}{
		{"FutureExp", mint(t, jwt.MapClaims{"exp": now.Add(time.Hour).Unix()}), true},
		{"PastExp", mint(t, jwt.MapClaims{"exp": now.Add(-time.Hour).Unix()}), false},
		{"ExpEqualsNow", mint(t, jwt.MapClaims{"exp": now.Unix()}), false},
		{"NoExpClaim", mint(t, jwt.MapClaims{"sub": float64(1)}), false},
		{"Garbage", "zzz.zzz.zzz", false},
		{"Empty", "", false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := IsValid(tc.token, now); got != tc.want {
				t.Errorf("IsValid = %v, want %v", got, tc.want)
			}
		})
	}
}
