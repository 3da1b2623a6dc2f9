// Package services contains the application services orchestrating the
// ingestion-to-answer pipeline: vectorization of stored articles and
// retrieval-grounded question answering.
package services
