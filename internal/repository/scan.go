package repository

// scannable covers both pgx.Row and pgx.Rows so scan helpers work for
// single-row and multi-row queries.
type scannable interface {
	Scan(dest ...any) error
}

type rowsIter interface {
	Next() bool
	Scan(dest ...any) error
	Err() error
}
