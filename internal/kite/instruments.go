package kite

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"kitescreener/models"
)

// Exchange segments served by the instruments endpoint.
const (
	SegmentFutures = "NFO"
	SegmentCash    = "NSE"
)

// instrumentRow is one raw catalog row; Type distinguishes futures, options
// and equity listings within a segment.
type instrumentRow struct {
	Token    int64
	Symbol   string
	Name     string
	Exchange string
	Type     string
}

// parseInstrumentsCSV reads a catalog dump, addressing columns by header
// name so column order changes don't break us.
func parseInstrumentsCSV(r io.Reader) ([]instrumentRow, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, &ParseError{What: "instruments CSV header", Err: err}
	}

	headerMap := make(map[string]int)
	for i, name := range header {
		headerMap[name] = i
	}

	tokenIdx, hasToken := headerMap["instrument_token"]
	symbolIdx, hasSymbol := headerMap["tradingsymbol"]
	nameIdx, hasName := headerMap["name"]
	exchangeIdx, hasExchange := headerMap["exchange"]
	typeIdx, hasType := headerMap["instrument_type"]
	if !hasToken || !hasSymbol || !hasName || !hasExchange || !hasType {
		return nil, &ParseError{What: "instruments CSV header", Err: fmt.Errorf("missing required columns")}
	}

	var rows []instrumentRow
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, &ParseError{What: "instruments CSV record", Err: err}
		}

		token, err := strconv.ParseInt(record[tokenIdx], 10, 64)
		if err != nil {
			continue // skip rows with a malformed token
		}

		rows = append(rows, instrumentRow{
			Token:    token,
			Symbol:   record[symbolIdx],
			Name:     record[nameIdx],
			Exchange: record[exchangeIdx],
			Type:     record[typeIdx],
		})
	}

	return rows, nil
}

// ListUniverseInstruments downloads the futures catalog and reduces it to
// one descriptor per underlying. Symbol carries the underlying name, which
// is what the cash catalog is keyed by.
func (c *Client) ListUniverseInstruments(ctx context.Context) ([]models.Instrument, error) {
	resp, err := c.get(ctx, "/instruments/"+SegmentFutures, nil)
	if err != nil {
		return nil, err
	}

	rows, err := parseInstrumentsCSV(bytes.NewReader(resp.Body()))
	if err != nil {
		return nil, err
	}

	seen := make(map[string]bool)
	var instruments []models.Instrument
	for _, row := range rows {
		if row.Type != "FUT" || row.Name == "" || seen[row.Name] {
			continue
		}
		seen[row.Name] = true
		instruments = append(instruments, models.Instrument{
			Token:    row.Token,
			Symbol:   row.Name,
			Name:     row.Name,
			Exchange: row.Exchange,
		})
	}

	c.logger.Debug().Int("count", len(instruments)).Msg("futures universe loaded")
	return instruments, nil
}

// ListExchangeInstruments downloads the cash-market catalog and maps the
// requested symbols to their equity listings. Symbols with no equity row are
// simply absent from the result.
func (c *Client) ListExchangeInstruments(ctx context.Context, symbols []string) (map[string]models.Instrument, error) {
	resp, err := c.get(ctx, "/instruments/"+SegmentCash, nil)
	if err != nil {
		return nil, err
	}

	rows, err := parseInstrumentsCSV(bytes.NewReader(resp.Body()))
	if err != nil {
		return nil, err
	}

	wanted := make(map[string]bool, len(symbols))
	for _, s := range symbols {
		wanted[s] = true
	}

	out := make(map[string]models.Instrument)
	for _, row := range rows {
		if row.Type != "EQ" || !wanted[row.Symbol] {
			continue
		}
		if _, ok := out[row.Symbol]; ok {
			continue
		}
		out[row.Symbol] = models.Instrument{
			Token:    row.Token,
			Symbol:   row.Symbol,
			Name:     row.Name,
			Exchange: row.Exchange,
		}
	}

	c.logger.Debug().Int("requested", len(symbols)).Int("resolved", len(out)).Msg("cash listings mapped")
	return out, nil
}
