package capgains

import (
	"flag"
	"fmt"
	"net/url"
	"os"
	"time"

	"github.com/PaesslerAG/jsonpath"
)

// This file contains functions to access the CoinGecko API.

const coingecko_api_key = "COINGECKO_API_KEY"

var coingeckoApiFlag = flag.String("coingecko-api-key", "", "CoinGecko API key to use for fetching historical prices.\n If missing it will read from the environment variable \""+coingecko_api_key+"\". The free tier works without one.")

// CoinGeckoAPIKey returns the configured CoinGecko API key, if any.
func CoinGeckoAPIKey() string {
	// If the flag is not set, we try to read it from the environment variable.
	if *coingeckoApiFlag == "" {
		*coingeckoApiFlag = os.Getenv(coingecko_api_key)
	}
	return *coingeckoApiFlag
}

// coingeckoIDs maps ticker symbols to CoinGecko coin ids. The API is
// keyed by id, not symbol; unknown symbols must be added here or passed
// as ids directly.
var coingeckoIDs = map[string]string{
	"BTC":   "bitcoin",
	"ETH":   "ethereum",
	"SOL":   "solana",
	"ADA":   "cardano",
	"DOT":   "polkadot",
	"LTC":   "litecoin",
	"XRP":   "ripple",
	"DOGE":  "dogecoin",
	"AVAX":  "avalanche-2",
	"MATIC": "matic-network",
	"LINK":  "chainlink",
	"USDC":  "usd-coin",
	"USDT":  "tether",
	"DAI":   "dai",
}

func coingeckoID(asset string) string {
	if id, ok := coingeckoIDs[asset]; ok {
		return id
	}
	return asset
}

// FetchDailyPrices returns the daily close prices for an asset in the
// inclusive date range. CoinGecko returns prices at irregular sample
// points; the last sample of each day is kept as the close.
func FetchDailyPrices(apiKey, asset string, from, to Date) (map[Date]Money, error) {
	// https://api.coingecko.com/api/v3/coins/bitcoin/market_chart/range?vs_currency=usd&from=...&to=...
	// {
	//   "prices": [
	//     [1704067241331, 42261.04],
	//     [1704070847420, 42493.29]
	//   ],
	//   ...
	// }
	id := coingeckoID(asset)
	addr := fmt.Sprintf("https://api.coingecko.com/api/v3/coins/%s/market_chart/range?vs_currency=usd&from=%d&to=%d",
		url.PathEscape(id), from.Time().Unix(), to.Add(1).Time().Unix())
	if apiKey != "" {
		addr += "&x_cg_demo_api_key=" + url.QueryEscape(apiKey)
	}

	var jobj any
	// query that endpoint at most once a day
	if err := jwget(daily(), addr, &jobj); err != nil {
		return nil, fmt.Errorf("error in wget %q: %w", asset, err)
	}

	path := "$.prices"
	jval, err := jsonpath.Get(path, jobj)
	if err != nil {
		return nil, fmt.Errorf("error parsing %q: %q %w", asset, path, err)
	}
	samples, ok := jval.([]any)
	if !ok {
		return nil, fmt.Errorf("error parsing %q: %q not a list", asset, path)
	}

	prices := make(map[Date]Money)
	for _, s := range samples {
		pair, ok := s.([]any)
		if !ok || len(pair) != 2 {
			continue
		}
		ms, mok := pair[0].(float64)
		val, vok := pair[1].(float64)
		if !mok || !vok {
			continue
		}
		day := DateOf(time.UnixMilli(int64(ms)).UTC())
		// samples arrive in chronological order, the last one of a day wins
		prices[day] = M(val)
	}
	return prices, nil
}

// FetchPriceOn returns the price of an asset on a single day, using the
// history endpoint which serves the day's opening snapshot.
func FetchPriceOn(apiKey, asset string, on Date) (Money, error) {
	// https://api.coingecko.com/api/v3/coins/bitcoin/history?date=30-12-2023
	id := coingeckoID(asset)
	addr := fmt.Sprintf("https://api.coingecko.com/api/v3/coins/%s/history?date=%02d-%02d-%04d",
		url.PathEscape(id), on.Day(), int(on.Month()), on.Year())
	if apiKey != "" {
		addr += "&x_cg_demo_api_key=" + url.QueryEscape(apiKey)
	}

	var jobj any
	if err := jwget(daily(), addr, &jobj); err != nil {
		return Money{}, fmt.Errorf("error in wget %q: %w", asset, err)
	}

	path := "$.market_data.current_price.usd"
	jval, err := jsonpath.Get(path, jobj)
	if err != nil {
		return Money{}, fmt.Errorf("error parsing %q: %q %w", asset, path, err)
	}
	// because jsonpath is never clear about whether it returns a list of 1 answer, or a single answer:
	// by this call I keep the first one if any
	if jlist, ok := jval.([]any); ok && len(jlist) > 0 {
		jval = jlist[0]
	}
	val, ok := jval.(float64)
	if !ok {
		return Money{}, fmt.Errorf("error parsing %q: %q not a float: %v", asset, path, jval)
	}
	return M(val), nil
}
