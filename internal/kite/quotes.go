package kite

import (
	"context"
	"encoding/json"
	"net/url"
	"strings"

	"kitescreener/models"
)

// quoteBatchSize is the API's per-request instrument limit.
const quoteBatchSize = 500

type quoteResponse struct {
	Data map[string]struct {
		LastPrice float64 `json:"last_price"`
		Volume    int64   `json:"volume"`
		OHLC      struct {
			Open  float64 `json:"open"`
			High  float64 `json:"high"`
			Low   float64 `json:"low"`
			Close float64 `json:"close"`
		} `json:"ohlc"`
	} `json:"data"`
}

// FetchQuotes fetches snapshots for all symbols, one throttled call per
// batch of 500, merged into a single map. The payload's ohlc.close is the
// previous session's close and is surfaced as PreviousClose.
func (c *Client) FetchQuotes(ctx context.Context, symbols []string) (map[string]models.Quote, error) {
	out := make(map[string]models.Quote, len(symbols))

	for start := 0; start < len(symbols); start += quoteBatchSize {
		end := start + quoteBatchSize
		if end > len(symbols) {
			end = len(symbols)
		}

		query := url.Values{}
		for _, s := range symbols[start:end] {
			query.Add("i", SegmentCash+":"+s)
		}

		resp, err := c.get(ctx, "/quote", query)
		if err != nil {
			return nil, err
		}

		var qr quoteResponse
		if err := json.Unmarshal(resp.Body(), &qr); err != nil {
			return nil, &ParseError{What: "quote response", Err: err}
		}

		for key, q := range qr.Data {
			symbol := strings.TrimPrefix(key, SegmentCash+":")
			out[symbol] = models.Quote{
				LastPrice:     q.LastPrice,
				Volume:        q.Volume,
				Open:          q.OHLC.Open,
				High:          q.OHLC.High,
				Low:           q.OHLC.Low,
				PreviousClose: q.OHLC.Close,
			}
		}
	}

	c.logger.Debug().Int("requested", len(symbols)).Int("quoted", len(out)).Msg("quotes fetched")
	return out, nil
}
