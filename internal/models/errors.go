package models

import "errors"

var (
	ErrFileNotFound      = errors.New("file not found")
	ErrUnsupportedFormat = errors.New("unsupported file format")
	ErrEmptyExtraction   = errors.New("no text extracted from document")
	ErrEmptyChunking     = errors.New("no chunks produced")
	ErrNoResults         = errors.New("no relevant content found")
	ErrIndexNotFound     = errors.New("vector index not found, build an index first")
	ErrDimensionMismatch = errors.New("embedding dimension does not match index")
	ErrExternalAPI       = errors.New("external API request failed")
	ErrEmptyQuery        = errors.New("query cannot be empty")
)
