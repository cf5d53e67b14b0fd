// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package core

// Company is an issuer covered by the corpus.
type Company struct {
	Ticker  string   `toml:"ticker" json:"ticker"`
	Name    string   `toml:"name" json:"name"`
	CIK     string   `toml:"cik" json:"cik"`
	Aliases []string `toml:"aliases,omitempty" json:"aliases,omitempty"`
}

// DefaultCompanies returns the issuers covered by the default corpus.
// The returned slice is a fresh copy.
func DefaultCompanies() []Company {
	return []Company{
		{Ticker: "AAPL", Name: "Apple", CIK: "320193"},
		{Ticker: "MSFT", Name: "Microsoft", CIK: "789019"},
		{Ticker: "NVDA", Name: "NVIDIA", CIK: "1045810"},
		{Ticker: "JPM", Name: "JPMorgan Chase", CIK: "19617", Aliases: []string{"JPMorgan", "JP Morgan"}},
		{Ticker: "TSLA", Name: "Tesla", CIK: "1318605"},
		{Ticker: "JNJ", Name: "Johnson & Johnson", CIK: "200406", Aliases: []string{"Johnson and Johnson"}},
		{Ticker: "PFE", Name: "Pfizer", CIK: "78003"},
		{Ticker: "WMT", Name: "Walmart", CIK: "104169"},
		{Ticker: "AMZN", Name: "Amazon", CIK: "1018724"},
		{Ticker: "XOM", Name: "Exxon Mobil", CIK: "34088", Aliases: []string{"ExxonMobil", "Exxon"}},
		{Ticker: "CAT", Name: "Caterpillar", CIK: "18230"},
	}
}

// CompanyNames maps tickers to display names.
func CompanyNames(companies []Company) map[string]string {
	names := make(map[string]string, len(companies))
	for _, c := range companies {
		names[c.Ticker] = c.Name
	}
	return names
}

// Tickers returns the tickers of companies in order.
func Tickers(companies []Company) []string {
	tickers := make([]string, len(companies))
	for i, c := range companies {
		tickers[i] = c.Ticker
	}
	return tickers
}
