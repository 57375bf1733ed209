// Package shell collects presentation signals fired during a request so
// they can be returned in the response body.
package shell

import "sync"

// Notificacion is one toast the client application should display.
type Notificacion struct {
	Tipo    string `json:"tipo"`
	Mensaje string `json:"mensaje"`
}

// Collector implements shell.Shell for a single HTTP request.
type Collector struct {
	mu             sync.Mutex
	notificaciones []Notificacion
	cerrar         bool
	refrescar      bool
}

func NewCollector() *Collector {
	return &Collector{}
}

func (c *Collector) Success(message string) { c.add("success", message) }

func (c *Collector) Error(message string) { c.add("error", message) }

func (c *Collector) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cerrar = true
}

func (c *Collector) Refresh() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.refrescar = true
}

// Notificaciones returns the collected toasts in the order they were fired.
// It never returns nil.
func (c *Collector) Notificaciones() []Notificacion {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Notificacion, len(c.notificaciones))
	copy(out, c.notificaciones)
	return out
}

func (c *Collector) Cerrar() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.cerrar
}

func (c *Collector) Refrescar() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.refrescar
}

func (c *Collector) add(tipo, message string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.notificaciones = append(c.notificaciones, Notificacion{Tipo: tipo, Mensaje: message})
}
