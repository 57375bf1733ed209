package cliente

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
	"unicode"
)

// DateLayout is the accepted layout for dates typed into the intake form.
const DateLayout = "2006-01-02"

// Text is a form value kept exactly as typed. It also accepts JSON numbers
// so numeric inputs can be posted either quoted or bare.
type Text string

func (t *Text) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*t = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*t = Text(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("valor no válido: %s", string(data))
	}
	*t = Text(n.String())
	return nil
}

// Draft is the unvalidated client as captured by the intake form. Every
// field holds the raw text; Normalize converts it into a Cliente.
type Draft struct {
	PrimerNombre           string `json:"primer_nombre"`
	SegundoNombre          string `json:"segundo_nombre"`
	PrimerApellido         string `json:"primer_apellido"`
	SegundoApellido        string `json:"segundo_apellido"`
	Celular                string `json:"celular"`
	DPI                    string `json:"dpi"`
	FechaNacimiento        string `json:"fecha_nacimiento"`
	EstadoCivil            string `json:"estado_civil"`
	Email                  string `json:"email"`
	DireccionCompleta      string `json:"direccion_completa"`
	Departamento           string `json:"departamento"`
	Municipio              string `json:"municipio"`
	Pais                   string `json:"pais"`
	ObservacionDomicilio   string `json:"observacion_domicilio"`
	IngresoMensual         Text   `json:"ingreso_mensual"`
	DependientesEconomicos Text   `json:"dependientes_economicos"`
	ActividadEconomica     string `json:"actividad_economica"`
	ObservacionActividad   string `json:"observacion_actividad"`
}

// NewDraft returns an empty draft with the form defaults applied.
func NewDraft() Draft {
	return Draft{
		EstadoCivil:  string(EstadoCivilSoltero),
		Departamento: DefaultDepartamento,
		Pais:         DefaultPais,
	}
}

// Set assigns a single field by its column name. The DPI is reformatted as
// it is typed. It reports false for unknown fields.
func (d *Draft) Set(field, value string) bool {
	switch field {
	case "primer_nombre":
		d.PrimerNombre = value
	case "segundo_nombre":
		d.SegundoNombre = value
	case "primer_apellido":
		d.PrimerApellido = value
	case "segundo_apellido":
		d.SegundoApellido = value
	case "celular":
		d.Celular = value
	case "dpi":
		d.DPI = FormatDPI(value)
	case "fecha_nacimiento":
		d.FechaNacimiento = value
	case "estado_civil":
		d.EstadoCivil = value
	case "email":
		d.Email = value
	case "direccion_completa":
		d.DireccionCompleta = value
	case "departamento":
		d.Departamento = value
	case "municipio":
		d.Municipio = value
	case "pais":
		d.Pais = value
	case "observacion_domicilio":
		d.ObservacionDomicilio = value
	case "ingreso_mensual":
		d.IngresoMensual = Text(value)
	case "dependientes_economicos":
		d.DependientesEconomicos = Text(value)
	case "actividad_economica":
		d.ActividadEconomica = value
	case "observacion_actividad":
		d.ObservacionActividad = value
	default:
		return false
	}
	return true
}

// ReferenciaDraft is a reference row as edited in the form.
type ReferenciaDraft struct {
	NombreApellido string `json:"nombre_apellido"`
	Parentesco     string `json:"parentesco"`
	Celular        string `json:"celular"`
}

func (r *ReferenciaDraft) Set(field, value string) {
	switch field {
	case "nombre_apellido":
		r.NombreApellido = value
	case "parentesco":
		r.Parentesco = value
	case "celular":
		r.Celular = value
	}
}

// Complete reports whether the reference has name, relationship and phone.
func (r ReferenciaDraft) Complete() bool {
	return present(r.NombreApellido) && present(r.Parentesco) && present(r.Celular)
}

// BeneficiarioDraft is a beneficiary row as edited in the form.
type BeneficiarioDraft struct {
	NombreApellido string `json:"nombre_apellido"`
	Parentesco     string `json:"parentesco"`
	Celular        string `json:"celular"`
}

func (b *BeneficiarioDraft) Set(field, value string) {
	switch field {
	case "nombre_apellido":
		b.NombreApellido = value
	case "parentesco":
		b.Parentesco = value
	case "celular":
		b.Celular = value
	}
}

// Complete reports whether the beneficiary has name and relationship.
func (b BeneficiarioDraft) Complete() bool {
	return present(b.NombreApellido) && present(b.Parentesco)
}

// GarantiaDraft is a collateral row as edited in the form.
type GarantiaDraft struct {
	Nombre        string  `json:"nombre"`
	Marca         string  `json:"marca"`
	Tiempo        string  `json:"tiempo"`
	Descripcion   string  `json:"descripcion"`
	ValorEstimado float64 `json:"valor_estimado"`
}

// Set assigns a field. valor_estimado falls back to 0 when the text is not a number.
func (g *GarantiaDraft) Set(field, value string) {
	switch field {
	case "nombre":
		g.Nombre = value
	case "marca":
		g.Marca = value
	case "tiempo":
		g.Tiempo = value
	case "descripcion":
		g.Descripcion = value
	case "valor_estimado":
		g.ValorEstimado = parseAmount(value)
	}
}

// UnmarshalJSON accepts valor_estimado as a number or as typed text, with
// the same fallback to 0 as Set.
func (g *GarantiaDraft) UnmarshalJSON(data []byte) error {
	type plain GarantiaDraft
	aux := struct {
		*plain
		ValorEstimado Text `json:"valor_estimado"`
	}{plain: (*plain)(g)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	g.ValorEstimado = parseAmount(string(aux.ValorEstimado))
	return nil
}

func parseAmount(value string) float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}

// Complete reports whether the collateral item has a name.
func (g GarantiaDraft) Complete() bool {
	return present(g.Nombre)
}

// Normalize converts a validated draft into a Cliente: strings are trimmed,
// blank optionals become nil, numeric text is parsed and the DPI loses its
// separators.
func Normalize(d Draft) (Cliente, error) {
	nacimiento, err := time.Parse(DateLayout, strings.TrimSpace(d.FechaNacimiento))
	if err != nil {
		return Cliente{}, fmt.Errorf("fecha_nacimiento: %w", err)
	}

	estado := EstadoCivil(strings.TrimSpace(d.EstadoCivil))
	if estado == "" {
		estado = EstadoCivilSoltero
	}
	if !estado.Valid() {
		return Cliente{}, fmt.Errorf("estado_civil: %q no permitido", estado)
	}
	pais := strings.TrimSpace(d.Pais)
	if pais == "" {
		pais = DefaultPais
	}

	c := Cliente{
		PrimerNombre:         strings.TrimSpace(d.PrimerNombre),
		SegundoNombre:        optional(d.SegundoNombre),
		PrimerApellido:       strings.TrimSpace(d.PrimerApellido),
		SegundoApellido:      optional(d.SegundoApellido),
		Celular:              strings.TrimSpace(d.Celular),
		DPI:                  stripSpace(d.DPI),
		FechaNacimiento:      nacimiento,
		EstadoCivil:          estado,
		Email:                optional(d.Email),
		DireccionCompleta:    strings.TrimSpace(d.DireccionCompleta),
		Departamento:         strings.TrimSpace(d.Departamento),
		Municipio:            strings.TrimSpace(d.Municipio),
		Pais:                 pais,
		ObservacionDomicilio: optional(d.ObservacionDomicilio),
		ActividadEconomica:   optional(d.ActividadEconomica),
		ObservacionActividad: optional(d.ObservacionActividad),
	}

	if v, err := strconv.ParseFloat(strings.TrimSpace(string(d.IngresoMensual)), 64); err == nil {
		c.IngresoMensual = &v
	}
	if v, err := strconv.Atoi(strings.TrimSpace(string(d.DependientesEconomicos))); err == nil {
		c.DependientesEconomicos = &v
	}

	return c, nil
}

// ToReferencia converts a complete draft row into a persisted shape.
func (r ReferenciaDraft) ToReferencia(clienteID string) Referencia {
	return Referencia{
		ClienteID:      clienteID,
		NombreApellido: strings.TrimSpace(r.NombreApellido),
		Parentesco:     strings.TrimSpace(r.Parentesco),
		Celular:        strings.TrimSpace(r.Celular),
	}
}

func (b BeneficiarioDraft) ToBeneficiario(clienteID string) Beneficiario {
	return Beneficiario{
		ClienteID:      clienteID,
		NombreApellido: strings.TrimSpace(b.NombreApellido),
		Parentesco:     strings.TrimSpace(b.Parentesco),
		Celular:        optional(b.Celular),
	}
}

// ToGarantia converts the row; a zero estimated value is stored as null.
func (g GarantiaDraft) ToGarantia(clienteID string) Garantia {
	item := Garantia{
		ClienteID:   clienteID,
		Nombre:      strings.TrimSpace(g.Nombre),
		Marca:       optional(g.Marca),
		Tiempo:      optional(g.Tiempo),
		Descripcion: optional(g.Descripcion),
	}
	if g.ValorEstimado != 0 {
		v := g.ValorEstimado
		item.ValorEstimado = &v
	}
	return item
}

// FormatDPI keeps only digits and groups them as 4-5-4, the way the number
// is printed on the document ("2545 67890 0101"). Surplus digits stay in the
// last group so an over-long DPI still fails validation.
func FormatDPI(value string) string {
	digits := make([]rune, 0, 13)
	for _, r := range value {
		if r >= '0' && r <= '9' {
			digits = append(digits, r)
		}
	}

	var b strings.Builder
	for i, r := range digits {
		if i == 4 || i == 9 {
			b.WriteByte(' ')
		}
		b.WriteRune(r)
	}
	return b.String()
}

func optional(value string) *string {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

func present(value string) bool {
	return strings.TrimSpace(value) != ""
}

func stripSpace(value string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, value)
}
