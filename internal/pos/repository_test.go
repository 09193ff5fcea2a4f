package pos

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/require"
)

func TestMapSaleInsertErrDocNumberCollision(t *testing.T) {
	pgErr := &pgconn.PgError{Code: "23505", ConstraintName: "sales_doc_number_key"}

	err := mapSaleInsertErr(fmt.Errorf("insert sale: %w", pgErr))
	require.ErrorIs(t, err, ErrDuplicateDocNumber)
}

func TestMapSaleInsertErrPassesOtherErrorsThrough(t *testing.T) {
	other := errors.New("connection reset")
	require.Equal(t, other, mapSaleInsertErr(other))

	fk := &pgconn.PgError{Code: "23503", ConstraintName: "sale_items_sale_id_fkey"}
	require.NotErrorIs(t, mapSaleInsertErr(fk), ErrDuplicateDocNumber)

	require.NoError(t, mapSaleInsertErr(nil))
}
