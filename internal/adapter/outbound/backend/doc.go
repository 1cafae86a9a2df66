// Package backend provides the authenticated HTTP clients for the ReuseMart
// REST backend.
//
// One Client exists per backend area. Every client shares the same request
// interceptor (an http.RoundTripper that merges the bearer token into the
// caller's headers) and the same response handling: 401 invalidates the
// session, and every other failure maps onto the market error taxonomy.
// Typed operations return domain projections from package market.
package backend
