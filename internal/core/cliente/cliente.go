package cliente

import (
	"strings"
	"time"
)

// EstadoCivil is the marital status recorded for a client.
type EstadoCivil string

const (
	EstadoCivilSoltero    EstadoCivil = "Soltero"
	EstadoCivilCasado     EstadoCivil = "Casado"
	EstadoCivilDivorciado EstadoCivil = "Divorciado"
	EstadoCivilViudo      EstadoCivil = "Viudo"
	EstadoCivilUnionLibre EstadoCivil = "Union Libre"
)

const (
	DefaultPais         = "Guatemala"
	DefaultDepartamento = "Guatemala"
)

// EstadosCiviles lists the accepted marital statuses in display order.
var EstadosCiviles = []EstadoCivil{
	EstadoCivilSoltero,
	EstadoCivilCasado,
	EstadoCivilDivorciado,
	EstadoCivilViudo,
	EstadoCivilUnionLibre,
}

// Valid reports whether e is one of the accepted marital statuses.
func (e EstadoCivil) Valid() bool {
	for _, v := range EstadosCiviles {
		if v == e {
			return true
		}
	}
	return false
}

// Cliente represents a borrower as persisted in the clientes table.
type Cliente struct {
	ID                     string      `json:"id"`
	PrimerNombre           string      `json:"primer_nombre"`
	SegundoNombre          *string     `json:"segundo_nombre"`
	PrimerApellido         string      `json:"primer_apellido"`
	SegundoApellido        *string     `json:"segundo_apellido"`
	Celular                string      `json:"celular"`
	DPI                    string      `json:"dpi"` // 13 digits, no separators
	FechaNacimiento        time.Time   `json:"fecha_nacimiento"`
	EstadoCivil            EstadoCivil `json:"estado_civil"`
	Email                  *string     `json:"email"`
	DireccionCompleta      string      `json:"direccion_completa"`
	Departamento           string      `json:"departamento"`
	Municipio              string      `json:"municipio"`
	Pais                   string      `json:"pais"`
	ObservacionDomicilio   *string     `json:"observacion_domicilio"`
	IngresoMensual         *float64    `json:"ingreso_mensual"`
	DependientesEconomicos *int        `json:"dependientes_economicos"`
	ActividadEconomica     *string     `json:"actividad_economica"`
	ObservacionActividad   *string     `json:"observacion_actividad"`
	CreatedAt              time.Time   `json:"created_at"`
	UpdatedAt              time.Time   `json:"updated_at"`
}

// NombreCompleto joins the given and family names, skipping absent ones.
func (c Cliente) NombreCompleto() string {
	parts := []string{c.PrimerNombre}
	if c.SegundoNombre != nil {
		parts = append(parts, *c.SegundoNombre)
	}
	parts = append(parts, c.PrimerApellido)
	if c.SegundoApellido != nil {
		parts = append(parts, *c.SegundoApellido)
	}
	return strings.Join(strings.Fields(strings.Join(parts, " ")), " ")
}

// Referencia is a personal reference owned by a client.
type Referencia struct {
	ID             string `json:"id"`
	ClienteID      string `json:"cliente_id"`
	NombreApellido string `json:"nombre_apellido"`
	Parentesco     string `json:"parentesco"`
	Celular        string `json:"celular"`
}

// Beneficiario is a beneficiary owned by a client. Phone is optional.
type Beneficiario struct {
	ID             string  `json:"id"`
	ClienteID      string  `json:"cliente_id"`
	NombreApellido string  `json:"nombre_apellido"`
	Parentesco     string  `json:"parentesco"`
	Celular        *string `json:"celular"`
}

// Garantia is a collateral item pledged by a client.
type Garantia struct {
	ID            string   `json:"id"`
	ClienteID     string   `json:"cliente_id"`
	Nombre        string   `json:"nombre"`
	Marca         *string  `json:"marca"`
	Tiempo        *string  `json:"tiempo"`
	Descripcion   *string  `json:"descripcion"`
	ValorEstimado *float64 `json:"valor_estimado"`
}

// Detalle is a client together with every sub-record it owns.
type Detalle struct {
	Cliente       Cliente        `json:"cliente"`
	Referencias   []Referencia   `json:"referencias"`
	Beneficiarios []Beneficiario `json:"beneficiarios"`
	Garantias     []Garantia     `json:"garantias"`
}
