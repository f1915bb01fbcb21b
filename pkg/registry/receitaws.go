package registry

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/rotisserie/eris"

	"github.com/sells-group/credit-cli/internal/resilience"
)

const defaultReceitaWSURL = "https://www.receitaws.com.br/v1"

// ReceitaWSProvider queries the ReceitaWS public CNPJ API.
type ReceitaWSProvider struct {
	baseURL string
	http    *http.Client
}

// NewReceitaWS creates a ReceitaWS provider. An empty baseURL uses the
// public endpoint.
func NewReceitaWS(baseURL string, httpClient *http.Client) *ReceitaWSProvider {
	if baseURL == "" {
		baseURL = defaultReceitaWSURL
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	return &ReceitaWSProvider{baseURL: baseURL, http: httpClient}
}

// Name implements Provider.
func (p *ReceitaWSProvider) Name() string { return "receitaws" }

type receitaWSResponse struct {
	Status             string `json:"status"`
	CNPJ               string `json:"cnpj"`
	Nome               string `json:"nome"`
	Fantasia           string `json:"fantasia"`
	NaturezaJuridica   string `json:"natureza_juridica"`
	Abertura           string `json:"abertura"`
	CapitalSocial      string `json:"capital_social"`
	Situacao           string `json:"situacao"`
	SituacaoEspecial   string `json:"situacao_especial"`
	Logradouro         string `json:"logradouro"`
	Numero             string `json:"numero"`
	Bairro             string `json:"bairro"`
	Municipio          string `json:"municipio"`
	UF                 string `json:"uf"`
	CEP                string `json:"cep"`
	AtividadePrincipal []struct {
		Text string `json:"text"`
	} `json:"atividade_principal"`
}

// Fetch implements Provider.
func (p *ReceitaWSProvider) Fetch(ctx context.Context, taxID string) (*Company, error) {
	url := fmt.Sprintf("%s/cnpj/%s", p.baseURL, taxID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, eris.Wrap(err, "receitaws: create request")
	}

	resp, err := p.http.Do(req)
	if err != nil {
		return nil, eris.Wrap(err, "receitaws: send request")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		err := eris.Errorf("receitaws: status %d", resp.StatusCode)
		if resilience.IsTransientHTTPStatus(resp.StatusCode) {
			return nil, resilience.NewTransientError(err, resp.StatusCode)
		}
		return nil, err
	}

	var body receitaWSResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, eris.Wrap(err, "receitaws: decode response")
	}
	if body.Status == "ERROR" {
		return nil, nil
	}

	company := &Company{
		TaxID:            body.CNPJ,
		CorporateName:    body.Nome,
		TradeName:        body.Fantasia,
		LegalNature:      body.NaturezaJuridica,
		LegalStatus:      body.Situacao,
		SpecialStatus:    body.SituacaoEspecial,
		Street:           body.Logradouro,
		Number:           body.Numero,
		Neighborhood:     body.Bairro,
		City:             body.Municipio,
		State:            body.UF,
		ZipCode:          body.CEP,
		RegistrationDate: parseBRDate(body.Abertura),
		Capital:          parseBRMoney(body.CapitalSocial),
	}
	if len(body.AtividadePrincipal) > 0 {
		company.MainActivity = body.AtividadePrincipal[0].Text
	}
	return company, nil
}

// parseBRDate parses the dd/mm/yyyy format ReceitaWS uses.
func parseBRDate(s string) *time.Time {
	if s == "" {
		return nil
	}
	t, err := time.Parse("02/01/2006", s)
	if err != nil {
		return nil
	}
	return &t
}

// parseBRMoney parses the money strings ReceitaWS emits, in either the
// "1.234.567,89" convention or the dot-decimal "1000000.00" one. A comma is
// always the decimal separator when present; a lone final dot followed by at
// most two digits is treated as decimal, any other dot as a thousands mark.
func parseBRMoney(s string) *float64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}

	decimal := -1
	if i := strings.LastIndexByte(s, ','); i >= 0 {
		decimal = i
	} else if i := strings.LastIndexByte(s, '.'); i >= 0 && len(s)-i-1 <= 2 {
		decimal = i
	}

	intPart, fracPart := s, ""
	if decimal >= 0 {
		intPart, fracPart = s[:decimal], s[decimal+1:]
	}

	cleaned := digitsOnly(intPart)
	if cleaned == "" {
		return nil
	}
	if frac := digitsOnly(fracPart); frac != "" {
		cleaned += "." + frac
	}

	v, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return nil
	}
	return &v
}
