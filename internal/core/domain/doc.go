// Package domain contains the core business entities of the regulatory
// news retrieval pipeline: articles, chunks, vector records, answers,
// and the errors that cross component boundaries.
package domain
