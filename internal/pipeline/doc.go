// Package pipeline orchestrates file discovery, bounded parallel
// diagnosis, and the batch summary and report.
//
// Diagnosis fans out over an errgroup limited to cfg.Workers; each worker
// writes only its own slot of an index-addressed slice, so the report keeps
// discovery order without any sorting after the fact.
package pipeline
