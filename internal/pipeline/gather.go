package pipeline

import (
	"context"
	"fmt"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/sells-group/credit-cli/internal/model"
	"github.com/sells-group/credit-cli/pkg/registry"
	"github.com/sells-group/credit-cli/pkg/tavily"
)

// gather pulls public data for the company: the national registry record and
// three rounds of web searches. Collaborator failures degrade gracefully
// (missing record, empty result list) instead of failing the stage.
func (p *Pipeline) gather(ctx context.Context, st *model.AnalysisState) error {
	st.AddNote(model.StageGathering, "Starting data collection for tax ID %s", st.TaxID)

	rec, err := p.registry.Lookup(ctx, st.TaxID)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		zap.L().Warn("registry lookup failed",
			zap.String("request_id", st.RequestID),
			zap.Error(err))
		st.AddNote(model.StageGathering, "Registry lookup failed: %v", err)
	}
	if rec != nil {
		st.Company = companyFromRegistry(rec)
		st.AddNote(model.StageGathering, "Registry data collected: %s", st.Company.CorporateName)
	} else if err == nil {
		st.AddNote(model.StageGathering, "No registry data found for tax ID %s", st.TaxID)
	}

	// Web searches need a company name to anchor the queries.
	if st.Company == nil || companyName(st.Company) == "" {
		st.AddNote(model.StageGathering, "Skipping web search: company name unavailable")
		return nil
	}

	results := p.searchAll(ctx, st.TaxID, companyName(st.Company))
	st.SearchResults = append(st.SearchResults, results...)
	st.AddNote(model.StageGathering, "Collected %d web search results", len(results))
	return ctx.Err()
}

func companyName(c *model.CompanyRecord) string {
	if c.CorporateName != "" {
		return c.CorporateName
	}
	return c.TradeName
}

func companyFromRegistry(rec *registry.Company) *model.CompanyRecord {
	c := &model.CompanyRecord{
		TaxID:            rec.TaxID,
		CorporateName:    rec.CorporateName,
		TradeName:        rec.TradeName,
		LegalNature:      rec.LegalNature,
		MainActivity:     rec.MainActivity,
		RegistrationDate: rec.RegistrationDate,
		Capital:          rec.Capital,
		LegalStatus:      rec.LegalStatus,
		SpecialStatus:    rec.SpecialStatus,
	}
	if rec.Street != "" || rec.City != "" || rec.State != "" || rec.ZipCode != "" {
		c.Address = &model.Address{
			Street:       rec.Street,
			Number:       rec.Number,
			Neighborhood: rec.Neighborhood,
			City:         rec.City,
			State:        rec.State,
			ZipCode:      rec.ZipCode,
		}
	}
	return c
}

type searchPlan struct {
	intent  model.SearchIntent
	queries []string
	cap     int
	domains []string
}

// searchAll runs the three search intents sequentially, deduplicates by URL
// within each intent, and caps each intent's contribution. A failing search
// contributes an empty list.
func (p *Pipeline) searchAll(ctx context.Context, taxID, name string) []model.SearchResult {
	plans := []searchPlan{
		{
			intent: model.IntentNews,
			queries: []string{
				fmt.Sprintf("%q CNPJ %s noticias", name, taxID),
				fmt.Sprintf("%q %s processos juridicos", name, taxID),
				fmt.Sprintf("%q site:jusbrasil.com.br", name),
			},
			cap: 10,
		},
		{
			intent: model.IntentLegal,
			queries: []string{
				fmt.Sprintf("%q CNPJ %s processo judicial", name, taxID),
				fmt.Sprintf("%s site:jusbrasil.com.br", taxID),
				fmt.Sprintf("%q execucao fiscal", name),
				fmt.Sprintf("%q falencia recuperacao judicial", name),
			},
			cap:     5,
			domains: p.cfg.Search.LegalDomains,
		},
		{
			intent: model.IntentPresence,
			queries: []string{
				fmt.Sprintf("%q site oficial", name),
				fmt.Sprintf("%q linkedin", name),
				fmt.Sprintf("%q reclame aqui", name),
			},
			cap: 5,
		},
	}

	var all []model.SearchResult
	for _, plan := range plans {
		if ctx.Err() != nil {
			break
		}
		all = append(all, p.runSearchPlan(ctx, plan)...)
	}
	return all
}

func (p *Pipeline) runSearchPlan(ctx context.Context, plan searchPlan) []model.SearchResult {
	seen := make(map[string]bool)
	var out []model.SearchResult

	for _, query := range plan.queries {
		resp, err := p.search.Search(ctx, tavily.SearchRequest{
			Query:          query,
			SearchDepth:    "basic",
			MaxResults:     p.cfg.Search.MaxResults,
			IncludeDomains: plan.domains,
		})
		if err != nil {
			if ctx.Err() != nil {
				return out
			}
			zap.L().Warn("web search failed",
				zap.String("intent", string(plan.intent)),
				zap.String("query", query),
				zap.Error(err))
			continue
		}
		for _, r := range resp.Results {
			if r.URL == "" || seen[r.URL] {
				continue
			}
			seen[r.URL] = true
			out = append(out, model.SearchResult{
				URL:       r.URL,
				Title:     r.Title,
				Content:   truncate(r.Content, 1000),
				Relevance: r.Score,
				Intent:    plan.intent,
			})
		}
	}

	if len(out) > plan.cap {
		out = out[:plan.cap]
	}
	return out
}

// truncate cuts s to at most n bytes without splitting a multi-byte rune.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	cut := s[:n]
	for !utf8.ValidString(cut) && len(cut) > 0 {
		cut = cut[:len(cut)-1]
	}
	return cut
}
