// Package catering holds the product catalog and the catering quote requests
// staff manage from the back office.
package catering
