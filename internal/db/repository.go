package db

import (
	"database/sql"

	"github.com/chepyr/taskflow/internal/shared"
)

func requireRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return mapError("rows affected", err)
	}
	if n == 0 {
		return shared.ErrNotFound
	}
	return nil
}
