package auth

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

var testSecret = []byte("test-secret")

func TestSignAndParse(t *testing.T) {
	token, err := Sign(testSecret, Identity{CustomerID: "cust-1", Role: "customer"}, time.Hour)
	if err != nil {
		t.Fatalf("Sign returned error: %v", err)
	}

	v := NewVerifier(testSecret)
	id, err := v.Parse(token)
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}
	if id.CustomerID != "cust-1" {
		t.Errorf("expected customer id cust-1, got %s", id.CustomerID)
	}
	if id.Role != "customer" {
		t.Errorf("expected role customer, got %s", id.Role)
	}
}

func TestParse_Rejects(t *testing.T) {
	v := NewVerifier(testSecret)

	t.Run("wrong secret", func(t *testing.T) {
		token, err := Sign([]byte("other-secret"), Identity{CustomerID: "cust-1"}, time.Hour)
		if err != nil {
			t.Fatalf("Sign returned error: %v", err)
		}
		if _, err := v.Parse(token); !errors.Is(err, ErrInvalidToken) {
			t.Errorf("expected ErrInvalidToken, got %v", err)
		}
	})

	t.Run("expired token", func(t *testing.T) {
		token, err := Sign(testSecret, Identity{CustomerID: "cust-1"}, -time.Minute)
		if err != nil {
			t.Fatalf("Sign returned error: %v", err)
		}
		if _, err := v.Parse(token); !errors.Is(err, ErrInvalidToken) {
			t.Errorf("expected ErrInvalidToken, got %v", err)
		}
	})

	t.Run("garbage token", func(t *testing.T) {
		if _, err := v.Parse("not-a-token"); !errors.Is(err, ErrInvalidToken) {
			t.Errorf("expected ErrInvalidToken, got %v", err)
		}
	})
}

func TestRequire(t *testing.T) {
	v := NewVerifier(testSecret)

	handler := v.Require(func(w http.ResponseWriter, r *http.Request) {
		id, ok := FromContext(r.Context())
		if !ok {
			t.Error("expected identity in context")
		}
		if id.CustomerID != "cust-42" {
			t.Errorf("expected customer cust-42, got %s", id.CustomerID)
		}
		w.WriteHeader(http.StatusOK)
	})

	t.Run("valid token passes", func(t *testing.T) {
		token, _ := Sign(testSecret, Identity{CustomerID: "cust-42"}, time.Hour)
		req := httptest.NewRequest(http.MethodGet, "/carts", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		rec := httptest.NewRecorder()

		handler(rec, req)

		if rec.Code != http.StatusOK {
			t.Errorf("expected status 200, got %d", rec.Code)
		}
	})

	t.Run("missing header rejected", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/carts", nil)
		rec := httptest.NewRecorder()

		handler(rec, req)

		if rec.Code != http.StatusUnauthorized {
			t.Errorf("expected status 401, got %d", rec.Code)
		}
	})

	t.Run("malformed header rejected", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/carts", nil)
		req.Header.Set("Authorization", "Token abc")
		rec := httptest.NewRecorder()

		handler(rec, req)

		if rec.Code != http.StatusUnauthorized {
			t.Errorf("expected status 401, got %d", rec.Code)
		}
	})
}

func TestRequireAdmin(t *testing.T) {
	v := NewVerifier(testSecret)

	handler := v.RequireAdmin(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	t.Run("admin role passes", func(t *testing.T) {
		token, _ := Sign(testSecret, Identity{CustomerID: "staff-1", Role: RoleAdmin}, time.Hour)
		req := httptest.NewRequest(http.MethodPost, "/items", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		rec := httptest.NewRecorder()

		handler(rec, req)

		if rec.Code != http.StatusOK {
			t.Errorf("expected status 200, got %d", rec.Code)
		}
	})

	t.Run("customer role forbidden", func(t *testing.T) {
		token, _ := Sign(testSecret, Identity{CustomerID: "cust-1", Role: "customer"}, time.Hour)
		req := httptest.NewRequest(http.MethodPost, "/items", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		rec := httptest.NewRecorder()

		handler(rec, req)

		if rec.Code != http.StatusForbidden {
			t.Errorf("expected status 403, got %d", rec.Code)
		}
	})
}
