package kite

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"sort"
	"time"

	"kitescreener/models"
)

const dateLayout = "2006-01-02"

// Candle timestamps arrive with a zone offset, e.g. 2024-06-03T00:00:00+0530
const candleTimeLayout = "2006-01-02T15:04:05-0700"

type historyResponse struct {
	Data struct {
		Candles [][]any `json:"candles"`
	} `json:"data"`
}

// FetchDailyHistory fetches one instrument's daily candles for the date
// range, ascending by date.
func (c *Client) FetchDailyHistory(ctx context.Context, token int64, from, to time.Time) ([]models.Candle, error) {
	query := url.Values{}
	query.Set("from", from.Format(dateLayout))
	query.Set("to", to.Format(dateLayout))

	path := fmt.Sprintf("/instruments/historical/%d/day", token)
	resp, err := c.get(ctx, path, query)
	if err != nil {
		return nil, err
	}

	var hr historyResponse
	if err := json.Unmarshal(resp.Body(), &hr); err != nil {
		return nil, &ParseError{What: "history response", Err: err}
	}

	candles := make([]models.Candle, 0, len(hr.Data.Candles))
	for _, row := range hr.Data.Candles {
		candle, err := parseCandleRow(row)
		if err != nil {
			return nil, err
		}
		candles = append(candles, candle)
	}

	// The API returns ascending candles; sort anyway so downstream math can
	// rely on the order.
	sort.SliceStable(candles, func(i, j int) bool {
		return candles[i].Date.Before(candles[j].Date)
	})

	c.logger.Debug().Int64("token", token).Int("count", len(candles)).Msg("history fetched")
	return candles, nil
}

// parseCandleRow converts one [timestamp, o, h, l, c, volume] row.
func parseCandleRow(row []any) (models.Candle, error) {
	if len(row) < 6 {
		return models.Candle{}, &ParseError{What: "candle row", Err: fmt.Errorf("want 6 fields, got %d", len(row))}
	}

	ts, ok := row[0].(string)
	if !ok {
		return models.Candle{}, &ParseError{What: "candle timestamp", Err: fmt.Errorf("not a string: %v", row[0])}
	}
	date, err := time.Parse(candleTimeLayout, ts)
	if err != nil {
		if date, err = time.Parse(dateLayout, ts); err != nil {
			return models.Candle{}, &ParseError{What: "candle timestamp", Err: err}
		}
	}

	values := make([]float64, 5)
	for i := 1; i < 6; i++ {
		v, ok := row[i].(float64)
		if !ok {
			return models.Candle{}, &ParseError{What: "candle value", Err: fmt.Errorf("not a number: %v", row[i])}
		}
		values[i-1] = v
	}

	return models.Candle{
		Date:   date,
		Open:   values[0],
		High:   values[1],
		Low:    values[2],
		Close:  values[3],
		Volume: int64(values[4]),
	}, nil
}
