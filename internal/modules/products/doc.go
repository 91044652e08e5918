// Package products is the catalog side of the storefront: the product model,
// the remote catalog client and its cache, and variant price resolution.
//
// Importing this package sets decimal.MarshalJSONWithoutQuotes for the whole
// process, so every decimal.Decimal in the binary encodes as a JSON number.
// The catalog API and the stored cart slots both carry prices as numbers.
package products
