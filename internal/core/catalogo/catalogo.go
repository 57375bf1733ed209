// Package catalogo holds the fixed option lists offered by the forms.
package catalogo

// Departamentos are the 22 departments of Guatemala.
var Departamentos = []string{
	"Alta Verapaz",
	"Baja Verapaz",
	"Chimaltenango",
	"Chiquimula",
	"El Progreso",
	"Escuintla",
	"Guatemala",
	"Huehuetenango",
	"Izabal",
	"Jalapa",
	"Jutiapa",
	"Petén",
	"Quetzaltenango",
	"Quiché",
	"Retalhuleu",
	"Sacatepéquez",
	"San Marcos",
	"Santa Rosa",
	"Sololá",
	"Suchitepéquez",
	"Totonicapán",
	"Zacapa",
}

// Parentescos are the suggested relationships for references and beneficiaries.
// The field is free text; these are only suggestions.
var Parentescos = []string{
	"Padre",
	"Madre",
	"Hijo/a",
	"Hermano/a",
	"Esposo/a",
	"Tío/a",
	"Primo/a",
	"Abuelo/a",
	"Nieto/a",
	"Amigo/a",
	"Vecino/a",
	"Compañero/a trabajo",
	"Otro",
}

// IsDepartamento reports whether name is a known department.
func IsDepartamento(name string) bool {
	for _, d := range Departamentos {
		if d == name {
			return true
		}
	}
	return false
}
