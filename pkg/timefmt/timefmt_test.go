package timefmt_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/civistock/civistock-api/pkg/timefmt"
)

func TestFormat_Bogota(t *testing.T) {
	loc := timefmt.Location("America/Bogota")
	utc := time.Date(2024, 3, 1, 2, 5, 0, 0, time.UTC)

	got := timefmt.Format(utc, loc)
	assert.Equal(t, "29/02/2024", got.Date)
	assert.Equal(t, "09:05 PM", got.Time)
}

func TestFormat_Cero(t *testing.T) {
	got := timefmt.Format(time.Time{}, time.UTC)
	assert.Equal(t, "-", got.Date)
	assert.Equal(t, "-", got.Time)
}

func TestMonthRange(t *testing.T) {
	loc := timefmt.Location("America/Bogota")
	// 1 de junio 03:00 UTC es todavía 31 de mayo en Bogotá
	start, end := timefmt.MonthRange(time.Date(2024, 6, 1, 3, 0, 0, 0, time.UTC), loc)
	assert.Equal(t, time.May, start.Month())
	assert.Equal(t, 1, start.Day())
	assert.Equal(t, time.June, end.Month())
}

func TestLocation_Invalida(t *testing.T) {
	loc := timefmt.Location("No/Existe")
	_, off := time.Date(2024, 1, 1, 0, 0, 0, 0, loc).Zone()
	assert.Equal(t, -5*60*60, off)
}
