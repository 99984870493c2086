package stock

import "time"

// MatchMode intención explícita al comparar un campo de la clave compuesta.
// El origen de este diseño es que "NULL" tenía dos significados distintos en
// las consultas del sistema anterior: a veces comodín, a veces "debe ser NULL".
// Aquí cada campo declara qué quiere.
type MatchMode int

const (
	MatchIgnore   MatchMode = iota // no filtrar por este campo
	MatchMustNull                  // el campo debe ser NULL
	MatchEquals                    // el campo debe ser igual al valor
)

// Int64Match filtro sobre una columna entera anulable.
type Int64Match struct {
	Mode  MatchMode
	Value int64
}

// StringMatch filtro sobre una columna de texto anulable.
type StringMatch struct {
	Mode  MatchMode
	Value string
}

// TimeMatch filtro sobre una columna de fecha anulable.
type TimeMatch struct {
	Mode  MatchMode
	Value time.Time
}

// AnyInt64 no filtra por el campo.
func AnyInt64() Int64Match { return Int64Match{Mode: MatchIgnore} }

// EqInt64 exige igualdad con v.
func EqInt64(v int64) Int64Match { return Int64Match{Mode: MatchEquals, Value: v} }

// Int64OrNull replica la semántica null-safe del origen: puntero nil exige
// NULL en la columna, puntero no nil exige igualdad.
func Int64OrNull(p *int64) Int64Match {
	if p == nil {
		return Int64Match{Mode: MatchMustNull}
	}
	return Int64Match{Mode: MatchEquals, Value: *p}
}

// AnyString no filtra por el campo.
func AnyString() StringMatch { return StringMatch{Mode: MatchIgnore} }

// StringOrNull puntero nil exige NULL, no nil exige igualdad.
func StringOrNull(p *string) StringMatch {
	if p == nil {
		return StringMatch{Mode: MatchMustNull}
	}
	return StringMatch{Mode: MatchEquals, Value: *p}
}

// AnyTime no filtra por el campo.
func AnyTime() TimeMatch { return TimeMatch{Mode: MatchIgnore} }

// TimeOrNull puntero nil exige NULL, no nil exige igualdad.
func TimeOrNull(p *time.Time) TimeMatch {
	if p == nil {
		return TimeMatch{Mode: MatchMustNull}
	}
	return TimeMatch{Mode: MatchEquals, Value: *p}
}

// LotKey clave de búsqueda de lotes. ProductID y Status siempre son exactos;
// el resto declara su modo campo a campo.
type LotKey struct {
	ProductID int64
	Status    string
	Location  Int64Match
	Pallet    StringMatch
	Order     Int64Match
	Receipt   Int64Match
	Expiry    TimeMatch
}
