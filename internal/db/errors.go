package db

import "errors"

var (
	// ErrKeyNotFound is a cache miss.
	ErrKeyNotFound = errors.New("db: key not found")
	// ErrIndexNotFound means the FT index was never created or was dropped.
	ErrIndexNotFound = errors.New("db: index not found")
	ErrIndexExists   = errors.New("db: index already exists")
)

// Command names recorded on Error.
const (
	OpCreateIndex = "FT.CREATE"
	OpDropIndex   = "FT.DROPINDEX"
	OpIndexInfo   = "FT.INFO"
	OpSearch      = "FT.SEARCH"
	OpHSet        = "HSET"
	OpDel         = "DEL"
	OpScan        = "SCAN"
	OpGet         = "GET"
	OpSet         = "SET"
)

// Error records which server command failed. errors.Is sees through it.
type Error struct {
	Op  string
	Err error
}

func (e *Error) Error() string {
	return "db " + e.Op + ": " + e.Err.Error()
}

func (e *Error) Unwrap() error { return e.Err }
