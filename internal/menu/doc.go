// Package menu holds the back office content model: outlets, their daily menu
// records and the subscriber documents, plus the text helpers shared by the
// admin API and the newsletter pipeline.
package menu
