// Package cep looks up Brazilian postal codes against the public ViaCEP API.
// Lookups are best-effort: intake forms work without them.
package cep

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

var (
	ErrInvalidCEP  = errors.New("invalid cep")
	ErrCEPNotFound = errors.New("cep not found")
)

// Address is the resolved postal address for a CEP.
type Address struct {
	CEP          string `json:"cep"`
	Street       string `json:"street"`
	Neighborhood string `json:"neighborhood"`
	City         string `json:"city"`
	State        string `json:"state"`
}

type viaCEPResponse struct {
	CEP        string `json:"cep"`
	Logradouro string `json:"logradouro"`
	Bairro     string `json:"bairro"`
	Localidade string `json:"localidade"`
	UF         string `json:"uf"`
	Erro       bool   `json:"erro"`
}

// Client queries ViaCEP over HTTP.
type Client struct {
	baseURL string
	http    *http.Client
	logger  zerolog.Logger
}

func NewClient(baseURL string, timeout time.Duration, logger zerolog.Logger) *Client {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
		logger:  logger,
	}
}

// Lookup resolves a CEP (8 digits, punctuation tolerated) to an address.
func (c *Client) Lookup(ctx context.Context, cep string) (*Address, error) {
	digits := onlyDigits(cep)
	if len(digits) != 8 {
		return nil, ErrInvalidCEP
	}

	url := fmt.Sprintf("%s/%s/json/", c.baseURL, digits)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Warn().Err(err).Str("cep", digits).Msg("viacep request failed")
		return nil, fmt.Errorf("viacep request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusBadRequest {
		return nil, ErrInvalidCEP
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("viacep status %d", resp.StatusCode)
	}

	var body viaCEPResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("viacep decode: %w", err)
	}
	if body.Erro {
		return nil, ErrCEPNotFound
	}

	return &Address{
		CEP:          body.CEP,
		Street:       body.Logradouro,
		Neighborhood: body.Bairro,
		City:         body.Localidade,
		State:        body.UF,
	}, nil
}

func onlyDigits(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
