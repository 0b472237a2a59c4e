package sqlite

import "database/sql"

func boolToInt(value bool) int {
	if value {
		return 1
	}
	return 0
}

// nullInt64 converts an optional value to sql.NullInt64.
func nullInt64(value *int64) sql.NullInt64 {
	if value == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: *value, Valid: true}
}

func int64Ptr(value sql.NullInt64) *int64 {
	if !value.Valid {
		return nil
	}
	v := value.Int64
	return &v
}
