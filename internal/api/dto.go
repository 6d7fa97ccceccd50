package api

import (
	"time"

	"github.com/rxtech-lab/argo-analysis/internal/compare"
	"github.com/rxtech-lab/argo-analysis/internal/history"
	"github.com/rxtech-lab/argo-analysis/internal/indicator"
	"github.com/rxtech-lab/argo-analysis/internal/pipeline"
	"github.com/rxtech-lab/argo-analysis/internal/types"
	"github.com/rxtech-lab/argo-analysis/pkg/marketdata"
)

// Undefined rows are encoded as null.

type errorResponse struct {
	Error string `json:"error"`
	Code  int    `json:"code"`
}

type healthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version"`
}

type tableResponse struct {
	Times   []time.Time           `json:"times"`
	Open    []float64             `json:"open"`
	High    []float64             `json:"high"`
	Low     []float64             `json:"low"`
	Close   []float64             `json:"close"`
	Volume  []float64             `json:"volume"`
	Columns map[string][]*float64 `json:"columns"`
	Order   []string              `json:"order"`
}

type analysisResponse struct {
	Symbol     string                `json:"symbol"`
	Period     marketdata.Period     `json:"period"`
	Assessment types.TrendAssessment `json:"assessment"`
	Table      *tableResponse        `json:"table,omitempty"`
}

type seriesResponse struct {
	Symbol string      `json:"symbol"`
	Times  []time.Time `json:"times"`
	Values []*float64  `json:"values"`
}

type returnsResponse struct {
	Symbol     string      `json:"symbol"`
	Times      []time.Time `json:"times"`
	Daily      []*float64  `json:"daily"`
	Cumulative []*float64  `json:"cumulative"`
}

type rankResponse struct {
	Rank             int      `json:"rank"`
	Symbol           string   `json:"symbol"`
	CumulativeReturn *float64 `json:"cumulativeReturn"`
}

type summaryResponse struct {
	Symbol       string   `json:"symbol"`
	LatestClose  *float64 `json:"latestClose"`
	PeriodReturn *float64 `json:"periodReturn"`
	RSI          *float64 `json:"rsi"`
}

type failureResponse struct {
	Symbol string `json:"symbol"`
	Reason string `json:"reason"`
	Error  string `json:"error"`
}

type comparisonResponse struct {
	RunID      string            `json:"runId"`
	Period     marketdata.Period `json:"period"`
	Normalized []seriesResponse  `json:"normalized"`
	RSI        []seriesResponse  `json:"rsi"`
	Returns    []returnsResponse `json:"returns"`
	Ranking    []rankResponse    `json:"ranking"`
	Summary    []summaryResponse `json:"summary"`
	Failures   []failureResponse `json:"failures"`
}

type insufficientComparisonResponse struct {
	errorResponse
	Failures []failureResponse `json:"failures"`
}

type historyResponse struct {
	Symbol  string          `json:"symbol"`
	Entries []history.Entry `json:"entries"`
}

// BatchEvent is the stream message published after every scheduled batch.
type BatchEvent struct {
	Type        string                  `json:"type"`
	RunID       string                  `json:"runId"`
	Period      marketdata.Period       `json:"period"`
	Finished    time.Time               `json:"finished"`
	Assessments []types.TrendAssessment `json:"assessments"`
	Failures    []failureResponse       `json:"failures"`
}

// NewBatchEvent builds the stream message of batch.
func NewBatchEvent(batch *pipeline.BatchResult) BatchEvent {
	successful := batch.Successful()
	assessments := make([]types.TrendAssessment, 0, len(successful))

	for _, result := range successful {
		assessments = append(assessments, result.Output.Assessment)
	}

	return BatchEvent{
		Type:        "batch",
		RunID:       batch.RunID,
		Period:      batch.Period,
		Finished:    batch.Finished,
		Assessments: assessments,
		Failures:    newFailureResponses(batch.Failed()),
	}
}

func newTableResponse(table *indicator.Table) *tableResponse {
	bars := table.Series().Bars()
	resp := &tableResponse{
		Times:   table.Times(),
		Open:    make([]float64, len(bars)),
		High:    make([]float64, len(bars)),
		Low:     make([]float64, len(bars)),
		Close:   make([]float64, len(bars)),
		Volume:  make([]float64, len(bars)),
		Columns: make(map[string][]*float64),
	}

	for i, bar := range bars {
		resp.Open[i] = bar.Open
		resp.High[i] = bar.High
		resp.Low[i] = bar.Low
		resp.Close[i] = bar.Close
		resp.Volume[i] = bar.Volume
	}

	for _, name := range table.Columns() {
		column, _ := table.Column(name)
		resp.Columns[string(name)] = column.Pointers()
		resp.Order = append(resp.Order, string(name))
	}

	return resp
}

func newSeriesResponses(series []compare.SymbolSeries) []seriesResponse {
	out := make([]seriesResponse, 0, len(series))
	for _, s := range series {
		out = append(out, seriesResponse{Symbol: s.Symbol, Times: s.Times, Values: s.Values.Pointers()})
	}

	return out
}

func newReturnsResponses(returns []compare.ReturnSeries) []returnsResponse {
	out := make([]returnsResponse, 0, len(returns))
	for _, r := range returns {
		out = append(out, returnsResponse{
			Symbol:     r.Symbol,
			Times:      r.Times,
			Daily:      r.Daily.Pointers(),
			Cumulative: r.Cumulative.Pointers(),
		})
	}

	return out
}

func newRankResponses(ranking []compare.RankEntry) []rankResponse {
	out := make([]rankResponse, 0, len(ranking))
	for _, entry := range ranking {
		out = append(out, rankResponse{Rank: entry.Rank, Symbol: entry.Symbol, CumulativeReturn: pointer(entry.CumulativeReturn.Take())})
	}

	return out
}

func newSummaryResponses(rows []compare.SummaryRow) []summaryResponse {
	out := make([]summaryResponse, 0, len(rows))
	for _, row := range rows {
		out = append(out, summaryResponse{
			Symbol:       row.Symbol,
			LatestClose:  pointer(row.LatestClose.Take()),
			PeriodReturn: pointer(row.PeriodReturn.Take()),
			RSI:          pointer(row.RSI.Take()),
		})
	}

	return out
}

func newFailureResponses(results []pipeline.SymbolResult) []failureResponse {
	out := make([]failureResponse, 0, len(results))
	for _, r := range results {
		if r.Failure == nil {
			continue
		}

		msg := ""
		if r.Failure.Err != nil {
			msg = r.Failure.Err.Error()
		}

		out = append(out, failureResponse{Symbol: r.Symbol, Reason: string(r.Failure.Kind), Error: msg})
	}

	return out
}

func pointer(v float64, err error) *float64 {
	if err != nil {
		return nil
	}

	return &v
}
