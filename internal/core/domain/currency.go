package domain

import (
	"sort"
	"strings"
)

// Currency represents a supported currency in the domain.
type Currency struct {
	CurrencyCode string   `json:"currencyCode"` // e.g., "USD"
	Symbol       string   `json:"symbol"`       // e.g., "$"
	Name         string   `json:"name"`         // e.g., "US Dollar"
	Countries    []string `json:"countries"`    // ISO 3166 alpha-2 codes using this currency
}

// CurrencyCatalog is the whitelist of currencies the system recognizes, together with
// their display data and the country to currency mapping used for IP based resolution.
// A catalog is immutable once built and safe for concurrent use.
type CurrencyCatalog struct {
	currencies map[string]Currency
	byCountry  map[string]string
	codes      []string
}

// NewCurrencyCatalog builds a catalog from code->label, code->symbol and country->code maps.
// Codes are upper-cased. Country entries pointing at unsupported currencies are dropped.
func NewCurrencyCatalog(labels, symbols, currencyByCountry map[string]string) *CurrencyCatalog {
	c := &CurrencyCatalog{
		currencies: make(map[string]Currency, len(labels)),
		byCountry:  make(map[string]string, len(currencyByCountry)),
	}

	for code, label := range labels {
		code = NormalizeCode(code)
		c.currencies[code] = Currency{CurrencyCode: code, Name: label}
	}
	for code, symbol := range symbols {
		code = NormalizeCode(code)
		if cur, ok := c.currencies[code]; ok {
			cur.Symbol = symbol
			c.currencies[code] = cur
		}
	}
	for country, code := range currencyByCountry {
		country = strings.ToUpper(strings.TrimSpace(country))
		code = NormalizeCode(code)
		cur, ok := c.currencies[code]
		if !ok {
			continue
		}
		c.byCountry[country] = code
		cur.Countries = append(cur.Countries, country)
		c.currencies[code] = cur
	}

	for code, cur := range c.currencies {
		sort.Strings(cur.Countries)
		c.currencies[code] = cur
		c.codes = append(c.codes, code)
	}
	sort.Strings(c.codes)

	return c
}

// Contains reports whether code is part of the whitelist.
func (c *CurrencyCatalog) Contains(code string) bool {
	_, ok := c.currencies[code]
	return ok
}

// Get returns the currency for code.
func (c *CurrencyCatalog) Get(code string) (Currency, bool) {
	cur, ok := c.currencies[code]
	return cur, ok
}

// Label returns the display label of code, or "" when unknown.
func (c *CurrencyCatalog) Label(code string) string {
	return c.currencies[code].Name
}

// Symbol returns the symbol of code, or "" when unknown.
func (c *CurrencyCatalog) Symbol(code string) string {
	return c.currencies[code].Symbol
}

// Countries returns the countries using code.
func (c *CurrencyCatalog) Countries(code string) []string {
	countries := c.currencies[code].Countries
	if countries == nil {
		return []string{}
	}
	return append([]string(nil), countries...)
}

// CurrencyForCountry maps a country code to its supported currency.
func (c *CurrencyCatalog) CurrencyForCountry(countryCode string) (string, bool) {
	code, ok := c.byCountry[strings.ToUpper(countryCode)]
	return code, ok
}

// Codes returns all supported codes in ascending order.
func (c *CurrencyCatalog) Codes() []string {
	return append([]string(nil), c.codes...)
}

// Len returns the number of supported currencies.
func (c *CurrencyCatalog) Len() int {
	return len(c.currencies)
}

// NormalizeCode trims and upper-cases a currency code.
func NormalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}
