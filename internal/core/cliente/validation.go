package cliente

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
	"time"
)

// MinimumAge is the youngest age, in completed years, a client may have.
const MinimumAge = 18

var (
	dpiPattern   = regexp.MustCompile(`^\d{13}$`)
	emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
)

// FieldErrors maps a field key to its user-facing message. An empty map
// means the draft is valid.
type FieldErrors map[string]string

func (f FieldErrors) Error() string {
	keys := make([]string, 0, len(f))
	for k := range f {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return fmt.Sprintf("campos inválidos: %s", strings.Join(keys, ", "))
}

// Has reports whether key carries an error.
func (f FieldErrors) Has(key string) bool {
	_, ok := f[key]
	return ok
}

var requiredFields = []struct {
	key     string
	message string
	value   func(Draft) string
}{
	{"primer_nombre", "El primer nombre es requerido", func(d Draft) string { return d.PrimerNombre }},
	{"primer_apellido", "El primer apellido es requerido", func(d Draft) string { return d.PrimerApellido }},
	{"celular", "El celular es requerido", func(d Draft) string { return d.Celular }},
	{"dpi", "El DPI es requerido", func(d Draft) string { return d.DPI }},
	{"fecha_nacimiento", "La fecha de nacimiento es requerida", func(d Draft) string { return d.FechaNacimiento }},
	{"direccion_completa", "La dirección es requerida", func(d Draft) string { return d.DireccionCompleta }},
	{"departamento", "El departamento es requerido", func(d Draft) string { return d.Departamento }},
	{"municipio", "El municipio es requerido", func(d Draft) string { return d.Municipio }},
}

// Validate checks a draft and its references against the intake rules as of
// now. Checks run in a fixed order and a later check on the same key
// replaces an earlier message.
func Validate(d Draft, referencias []ReferenciaDraft, now time.Time) FieldErrors {
	errs := FieldErrors{}

	for _, f := range requiredFields {
		if strings.TrimSpace(f.value(d)) == "" {
			errs[f.key] = f.message
		}
	}

	if d.DPI != "" && !dpiPattern.MatchString(stripSpace(d.DPI)) {
		errs["dpi"] = "El DPI debe tener 13 dígitos"
	}

	if estado := strings.TrimSpace(d.EstadoCivil); estado != "" && !EstadoCivil(estado).Valid() {
		errs["estado_civil"] = "El estado civil no es válido"
	}

	if d.Email != "" && !emailPattern.MatchString(d.Email) {
		errs["email"] = "Email inválido"
	}

	if strings.TrimSpace(d.FechaNacimiento) != "" {
		nacimiento, err := time.Parse(DateLayout, strings.TrimSpace(d.FechaNacimiento))
		switch {
		case err != nil:
			errs["fecha_nacimiento"] = "La fecha de nacimiento no es válida"
		case Edad(nacimiento, now) < MinimumAge:
			errs["fecha_nacimiento"] = "El cliente debe ser mayor de 18 años"
		}
	}

	if CountComplete(referencias) == 0 {
		errs["referencias"] = "Debe agregar al menos una referencia"
	}

	return errs
}

// CountComplete returns how many references have name, relationship and phone.
func CountComplete(referencias []ReferenciaDraft) int {
	n := 0
	for _, r := range referencias {
		if r.Complete() {
			n++
		}
	}
	return n
}

// Edad returns the completed years between birth and now, comparing
// calendar dates only.
func Edad(nacimiento, now time.Time) int {
	by, bm, bd := nacimiento.Date()
	ny, nm, nd := now.Date()

	edad := ny - by
	if nm < bm || (nm == bm && nd < bd) {
		edad--
	}
	return edad
}
