package registry

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/rotisserie/eris"

	"github.com/sells-group/credit-cli/internal/resilience"
)

const defaultBrasilAPIURL = "https://brasilapi.com.br/api/cnpj/v1"

// BrasilAPIProvider queries the BrasilAPI public CNPJ endpoint.
type BrasilAPIProvider struct {
	baseURL string
	http    *http.Client
}

// NewBrasilAPI creates a BrasilAPI provider. An empty baseURL uses the
// public endpoint.
func NewBrasilAPI(baseURL string, httpClient *http.Client) *BrasilAPIProvider {
	if baseURL == "" {
		baseURL = defaultBrasilAPIURL
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	return &BrasilAPIProvider{baseURL: baseURL, http: httpClient}
}

// Name implements Provider.
func (p *BrasilAPIProvider) Name() string { return "brasilapi" }

type brasilAPIResponse struct {
	CNPJ                       string   `json:"cnpj"`
	RazaoSocial                string   `json:"razao_social"`
	NomeFantasia               string   `json:"nome_fantasia"`
	NaturezaJuridica           string   `json:"natureza_juridica"`
	CNAEFiscalDescricao        string   `json:"cnae_fiscal_descricao"`
	DataInicioAtividade        string   `json:"data_inicio_atividade"`
	CapitalSocial              *float64 `json:"capital_social"`
	DescricaoSituacaoCadastral string   `json:"descricao_situacao_cadastral"`
	SituacaoEspecial           string   `json:"situacao_especial"`
	Logradouro                 string   `json:"logradouro"`
	Numero                     string   `json:"numero"`
	Bairro                     string   `json:"bairro"`
	Municipio                  string   `json:"municipio"`
	UF                         string   `json:"uf"`
	CEP                        string   `json:"cep"`
}

// Fetch implements Provider.
func (p *BrasilAPIProvider) Fetch(ctx context.Context, taxID string) (*Company, error) {
	url := fmt.Sprintf("%s/%s", p.baseURL, taxID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, eris.Wrap(err, "brasilapi: create request")
	}

	resp, err := p.http.Do(req)
	if err != nil {
		return nil, eris.Wrap(err, "brasilapi: send request")
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusOK:
	case resp.StatusCode == http.StatusNotFound:
		return nil, nil
	case resilience.IsTransientHTTPStatus(resp.StatusCode):
		return nil, resilience.NewTransientError(eris.Errorf("brasilapi: status %d", resp.StatusCode), resp.StatusCode)
	default:
		return nil, eris.Errorf("brasilapi: status %d", resp.StatusCode)
	}

	var body brasilAPIResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, eris.Wrap(err, "brasilapi: decode response")
	}

	return &Company{
		TaxID:            body.CNPJ,
		CorporateName:    body.RazaoSocial,
		TradeName:        body.NomeFantasia,
		LegalNature:      body.NaturezaJuridica,
		MainActivity:     body.CNAEFiscalDescricao,
		LegalStatus:      body.DescricaoSituacaoCadastral,
		SpecialStatus:    body.SituacaoEspecial,
		Street:           body.Logradouro,
		Number:           body.Numero,
		Neighborhood:     body.Bairro,
		City:             body.Municipio,
		State:            body.UF,
		ZipCode:          body.CEP,
		RegistrationDate: parseISODate(body.DataInicioAtividade),
		Capital:          body.CapitalSocial,
	}, nil
}

// parseISODate parses the yyyy-mm-dd format BrasilAPI uses.
func parseISODate(s string) *time.Time {
	if s == "" {
		return nil
	}
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return nil
	}
	return &t
}
