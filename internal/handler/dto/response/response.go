// Package response holds the JSON bodies returned by the API.
package response

import "github.com/shopspring/decimal"

func init() {
	// money goes over the wire as JSON numbers
	decimal.MarshalJSONWithoutQuotes = true
}
