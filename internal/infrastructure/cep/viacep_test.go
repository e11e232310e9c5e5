package cep

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

func TestLookup_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/30130000/json/" {
			t.Fatalf("unexpected path: %s", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"cep":"30130-000","logradouro":"Avenida Afonso Pena","bairro":"Centro","localidade":"Belo Horizonte","uf":"MG"}`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, time.Second, zerolog.Nop())
	addr, err := client.Lookup(context.Background(), "30130-000")
	if err != nil {
		t.Fatalf("Lookup: %v", err)
	}
	if addr.Street != "Avenida Afonso Pena" || addr.City != "Belo Horizonte" || addr.State != "MG" {
		t.Errorf("address = %+v", addr)
	}
}

func TestLookup_MalformedCEP(t *testing.T) {
	client := NewClient("http://unused", time.Second, zerolog.Nop())

	for _, cep := range []string{"", "1234", "123456789", "abc"} {
		if _, err := client.Lookup(context.Background(), cep); !errors.Is(err, ErrInvalidCEP) {
			t.Errorf("Lookup(%q) = %v, want ErrInvalidCEP", cep, err)
		}
	}
}

func TestLookup_UnknownCEP(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"erro": true}`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, time.Second, zerolog.Nop())
	if _, err := client.Lookup(context.Background(), "99999999"); !errors.Is(err, ErrCEPNotFound) {
		t.Fatalf("err = %v, want ErrCEPNotFound", err)
	}
}

func TestLookup_UpstreamBadRequest(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer srv.Close()

	client := NewClient(srv.URL, time.Second, zerolog.Nop())
	if _, err := client.Lookup(context.Background(), "30130000"); !errors.Is(err, ErrInvalidCEP) {
		t.Fatalf("err = %v, want ErrInvalidCEP", err)
	}
}
