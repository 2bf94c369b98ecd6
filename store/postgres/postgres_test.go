package postgres

import (
	"context"
	"database/sql/driver"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/sport-bonus/report"
)

func TestCopyValues_ColumnOrderAndTypes(t *testing.T) {
	vals, err := copyValues(report.Row{
		EmployeeID: "a1", Salary: decimal.RequireFromString("3000"), TotalActivities: 20,
		EligibleWellnessDays: true, EligibleBonus: true,
		BonusAmount: decimal.RequireFromString("150"), NewSalary: decimal.RequireFromString("3150"),
	})
	require.NoError(t, err)
	require.Len(t, vals, len(report.Columns))

	assert.Equal(t, "a1", vals[0])
	assert.Equal(t, int32(20), vals[2])
	assert.Equal(t, true, vals[4])

	v, err := vals[6].(driver.Valuer).Value()
	require.NoError(t, err)
	s, ok := v.(string)
	require.True(t, ok)
	assert.True(t, decimal.RequireFromString(s).Equal(decimal.NewFromInt(3150)))
}

func TestConnect_BadDSN(t *testing.T) {
	_, err := Connect(context.Background(), "postgres://%zz", 1)
	assert.ErrorContains(t, err, "parse postgres dsn")
}

func TestCreateTableSQL_UsesSanitizedIdentifier(t *testing.T) {
	assert.Contains(t, createTableSQL(`"salaires_primes"`), `CREATE TABLE "salaires_primes"`)
}
