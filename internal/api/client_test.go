package api

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

type staticToken string

func (s staticToken) Token(ctx context.Context) (string, error) { return string(s), nil }

func newTestClient(t *testing.T, h http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	c := NewClient(srv.URL+"/api", 5*time.Second, zerolog.Nop())
	c.SetTokenSource(staticToken("tok-123"))
	return c
}

func TestClient_AttachesBearerExceptOnAuthPaths(t *testing.T) {
	seen := map[string]string{}
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		seen[r.URL.Path] = r.Header.Get("Authorization")
		w.Write([]byte(`{}`))
	})
	ctx := context.Background()

	if err := c.Get(ctx, "/pacientes", nil, &map[string]any{}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := c.Post(ctx, "/auth/login", map[string]string{"email": "a"}, &map[string]any{}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := c.Post(ctx, "/auth/register", map[string]string{"email": "a"}, nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if seen["/api/pacientes"] != "Bearer tok-123" {
		t.Errorf("expected bearer on protected path, got %q", seen["/api/pacientes"])
	}
	if seen["/api/auth/login"] != "" || seen["/api/auth/register"] != "" {
		t.Error("auth endpoints must not carry a token")
	}
}

func TestClient_DecodesJSONAndQuery(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("dataInicio") != "2024-01-01" {
			t.Errorf("missing query, got %s", r.URL.RawQuery)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[{"id":1,"nome":"Ana"}]`))
	})
	var out []struct {
		ID   int    `json:"id"`
		Nome string `json:"nome"`
	}
	q := url.Values{"dataInicio": {"2024-01-01"}}
	if err := c.Get(context.Background(), "/atendimentos/periodo", q, &out); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(out) != 1 || out[0].Nome != "Ana" {
		t.Errorf("unexpected decode: %+v", out)
	}
}

func TestClient_EmptyBodyIsNotAnError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	var out map[string]any
	if err := c.Patch(context.Background(), "/parcelas/1/pagar", nil, nil, &out); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestClient_UnauthorizedFiresExpiryHook(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	})
	fired := 0
	c.OnSessionExpired(func(ctx context.Context) { fired++ })

	err := c.Get(context.Background(), "/pacientes", nil, nil)
	if !errors.Is(err, ErrSessionExpired) {
		t.Fatalf("expected ErrSessionExpired, got %v", err)
	}
	if fired != 1 {
		t.Errorf("expected hook to fire once, fired %d", fired)
	}
}

func TestClient_ErrorMapping(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		body     string
		sentinel error
		message  string
	}{
		{"not found", 404, `{"message":"Paciente não encontrado"}`, ErrNotFound, "recurso não encontrado"},
		{"validation", 400, `{"message":"CPF já cadastrado"}`, nil, "CPF já cadastrado"},
		{"conflict plain text", 409, `Horário indisponível`, nil, "Horário indisponível"},
		{"server", 500, `{"message":"NullPointerException"}`, ErrServer, "Ocorreu um erro inesperado. Tente novamente."},
		{"4xx without message", 422, ``, nil, "Ocorreu um erro inesperado. Tente novamente."},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				io.WriteString(w, tt.body)
			})
			err := c.Post(context.Background(), "/pacientes", map[string]string{}, nil)
			if err == nil {
				t.Fatal("expected error")
			}
			if tt.sentinel != nil && !errors.Is(err, tt.sentinel) {
				t.Errorf("expected %v, got %v", tt.sentinel, err)
			}
			if got := Message(err); got != tt.message {
				t.Errorf("Message() = %q, want %q", got, tt.message)
			}
		})
	}
}

func TestClient_Unreachable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	base := srv.URL
	srv.Close()

	c := NewClient(base, time.Second, zerolog.Nop())
	err := c.Get(context.Background(), "/pacientes", nil, nil)
	if !errors.Is(err, ErrUnreachable) {
		t.Fatalf("expected ErrUnreachable, got %v", err)
	}
	if Message(err) != ErrUnreachable.Error() {
		t.Errorf("unexpected message %q", Message(err))
	}
}

func TestClient_Download(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/csv")
		w.Header().Set("Content-Disposition", `attachment; filename="pagamentos.csv"`)
		io.WriteString(w, "id;valor\n1;10,00\n")
	})
	d, err := c.Download(context.Background(), "/relatorios/pagamentos/csv", nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if d.Filename != "pagamentos.csv" || d.ContentType != "text/csv" || len(d.Body) == 0 {
		t.Errorf("unexpected download: %+v", d)
	}
}

type failingToken struct{}

func (failingToken) Token(ctx context.Context) (string, error) { return "", errors.New("no session") }

func TestClient_MissingSessionIsExpiry(t *testing.T) {
	called := false
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		called = true
	})
	c.SetTokenSource(failingToken{})

	err := c.Get(context.Background(), "/pacientes", nil, nil)
	if !errors.Is(err, ErrSessionExpired) {
		t.Fatalf("expected ErrSessionExpired, got %v", err)
	}
	if called {
		t.Error("request must not reach the backend without a token")
	}
}

func TestClient_Ping(t *testing.T) {
	status := http.StatusMethodNotAllowed
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(status)
	})

	if err := c.Ping(context.Background()); err != nil {
		t.Errorf("405 should count as reachable, got %v", err)
	}
	status = http.StatusBadGateway
	if err := c.Ping(context.Background()); !errors.Is(err, ErrServer) {
		t.Errorf("expected ErrServer, got %v", err)
	}
}
