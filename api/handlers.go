package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/phuslu/log"

	"github.com/seenimoa/newsdesk/internal/fundamentals"
	"github.com/seenimoa/newsdesk/internal/infra"
	"github.com/seenimoa/newsdesk/internal/selection"
	"github.com/seenimoa/newsdesk/pkg/models"
	"github.com/seenimoa/newsdesk/pkg/utils"
)

// SelectResult is the payload of POST /select. Exactly one of the view
// fields is set, according to Selection.Mode.
type SelectResult struct {
	Selection   selection.Selection        `json:"selection"`
	Articles    []models.Article           `json:"articles,omitempty"`
	Report      *models.FundamentalsReport `json:"report,omitempty"`
	Commodities []models.CommodityQuote    `json:"commodities,omitempty"`
	URL         string                     `json:"url,omitempty"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, APIResponse{
		Success: true,
		Data: map[string]interface{}{
			"status":  "ok",
			"feeds":   s.deps.Catalog.Len(),
			"clients": s.wsHub.ClientCount(),
			"time":    time.Now().UTC().Format(time.RFC3339),
		},
	})
}

func (s *Server) handleCatalog(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, APIResponse{Success: true, Data: s.deps.Catalog.Entries()})
}

func (s *Server) handleSelect(w http.ResponseWriter, r *http.Request) {
	var req selection.Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	sel := selection.ResolveRequest(req, s.deps.Catalog)
	res := SelectResult{Selection: sel}

	switch sel.Mode {
	case selection.ModeFeed:
		articles, err := s.deps.Feeds.Fetch(r.Context(), sel.Feed)
		if err != nil {
			s.writeUpstreamError(w, err)
			return
		}
		res.Articles = nonNil(articles)
	case selection.ModeStock:
		rep, err := s.deps.Stocks.Compose(r.Context(), sel.Symbol)
		if err != nil {
			s.writeUpstreamError(w, err)
			return
		}
		res.Report = rep
	case selection.ModeCommodities:
		res.Commodities = s.deps.Markets.Commodities(r.Context(), s.deps.Commodities)
	case selection.ModeLiveMap:
		res.URL = sel.Feed.URL
	default:
		writeError(w, http.StatusBadRequest, selection.InvalidMessage)
		return
	}

	writeJSON(w, http.StatusOK, APIResponse{Success: true, Data: res})
}

func (s *Server) handleFeed(w http.ResponseWriter, r *http.Request) {
	abbr := chi.URLParam(r, "abbr")
	d, ok := s.deps.Catalog.Lookup(abbr)
	if !ok {
		writeError(w, http.StatusNotFound, "unknown feed: "+abbr)
		return
	}
	if selection.Resolve(d.Abbr, s.deps.Catalog).Mode != selection.ModeFeed {
		writeError(w, http.StatusBadRequest, d.Abbr+" is not a syndication feed")
		return
	}

	articles, err := s.deps.Feeds.Fetch(r.Context(), d)
	if err != nil {
		s.writeUpstreamError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, APIResponse{
		Success: true,
		Data: map[string]interface{}{
			"feed":     d,
			"articles": nonNil(articles),
		},
	})
}

func (s *Server) handleQuotes(w http.ResponseWriter, r *http.Request) {
	symbols := utils.SplitSymbols(r.URL.Query().Get("symbols"))
	if len(symbols) == 0 {
		writeError(w, http.StatusBadRequest, "symbols parameter is required")
		return
	}
	writeJSON(w, http.StatusOK, APIResponse{
		Success: true,
		Data:    s.deps.Quotes.BatchQuotes(r.Context(), symbols),
	})
}

func (s *Server) handleFundamentals(w http.ResponseWriter, r *http.Request) {
	symbol := utils.NormalizeSymbol(chi.URLParam(r, "symbol"))
	if symbol == "" {
		writeError(w, http.StatusBadRequest, "symbol is required")
		return
	}
	rep, err := s.deps.Stocks.Compose(r.Context(), symbol)
	if err != nil {
		s.writeUpstreamError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, APIResponse{Success: true, Data: rep})
}

func (s *Server) handleCommodities(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, APIResponse{
		Success: true,
		Data:    s.deps.Markets.Commodities(r.Context(), s.deps.Commodities),
	})
}

// writeUpstreamError maps a data-source failure to a status code.
func (s *Server) writeUpstreamError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, fundamentals.ErrNoAPIKey):
		writeError(w, http.StatusServiceUnavailable, err.Error())
		return
	case errors.Is(err, fundamentals.ErrSymbolNotFound):
		writeError(w, http.StatusNotFound, err.Error())
		return
	}

	kind := infra.Classify(err)
	log.Warn().Err(err).Str("kind", kind.String()).Msg("upstream fetch failed")
	writeJSON(w, http.StatusBadGateway, APIResponse{
		Success: false,
		Error:   err.Error(),
		Kind:    kind.String(),
	})
}

func nonNil(articles []models.Article) []models.Article {
	if articles == nil {
		return []models.Article{}
	}
	return articles
}
