package riot

import (
	"context"
	"errors"
	"net/http"
	"testing"
)

func TestCheckKey(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		want    KeyStatus
		wantErr bool
	}{
		{"valid", http.StatusOK, KeyValid, false},
		{"forbidden", http.StatusForbidden, KeyRejected, false},
		{"unauthorized", http.StatusUnauthorized, KeyRejected, false},
		{"server error", http.StatusInternalServerError, KeyUnknown, true},
		{"rate limited", http.StatusTooManyRequests, KeyUnknown, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			calls := 0
			c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				calls++
				if r.URL.Path != "/lol/status/v4/platform-data" {
					t.Errorf("Unexpected path %s", r.URL.Path)
				}
				w.WriteHeader(tt.status)
				if tt.status == http.StatusOK {
					w.Write([]byte(`{"id":"NA1","name":"North America"}`))
				}
			})

			got, st, err := c.CheckKey(context.Background())
			if got != tt.want {
				t.Errorf("status = %v, want %v", got, tt.want)
			}
			if (err != nil) != tt.wantErr {
				t.Errorf("err = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.want == KeyValid && (st == nil || st.ID != "NA1") {
				t.Errorf("platform status = %+v", st)
			}
			if calls != 1 {
				t.Errorf("Expected a single attempt, got %d", calls)
			}
		})
	}
}

func TestCheckKey_Unreachable(t *testing.T) {
	c, err := NewClient("RGAPI-test-key", WithBaseURL("http://127.0.0.1:1"), WithRateLimits(0, 0))
	if err != nil {
		t.Fatal(err)
	}
	got, _, err := c.CheckKey(context.Background())
	if got != KeyUnknown || !errors.Is(err, ErrUnavailable) {
		t.Errorf("got %v, %v; want KeyUnknown with ErrUnavailable", got, err)
	}
}

func TestKeyStatus_String(t *testing.T) {
	if KeyValid.String() != "valid" || KeyRejected.String() != "rejected" || KeyUnknown.String() != "unknown" {
		t.Error("Unexpected KeyStatus strings")
	}
}
