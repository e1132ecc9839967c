// Package timefmt fechas en hora local de la obra (por defecto America/Bogota).
package timefmt

import (
	"time"
	_ "time/tzdata" // contenedores sin zoneinfo
)

// bogotaOffset Colombia no tiene horario de verano.
const bogotaOffset = -5 * 60 * 60

// Location carga la zona; si no existe usa UTC-5 fijo.
func Location(name string) *time.Location {
	if name == "" {
		name = "America/Bogota"
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return time.FixedZone("COT", bogotaOffset)
	}
	return loc
}

// Local fecha y hora separadas como se muestran en pantalla: "02/01/2006" y "03:04 PM".
type Local struct {
	Date string `json:"fecha"`
	Time string `json:"hora"`
}

// Format convierte t a loc. Un tiempo cero devuelve "-" en ambos campos.
func Format(t time.Time, loc *time.Location) Local {
	if t.IsZero() {
		return Local{Date: "-", Time: "-"}
	}
	lt := t.In(loc)
	return Local{Date: lt.Format("02/01/2006"), Time: lt.Format("03:04 PM")}
}

// MonthRange [inicio, inicio del mes siguiente) del mes de now en loc.
func MonthRange(now time.Time, loc *time.Location) (time.Time, time.Time) {
	lt := now.In(loc)
	start := time.Date(lt.Year(), lt.Month(), 1, 0, 0, 0, 0, loc)
	return start, start.AddDate(0, 1, 0)
}
