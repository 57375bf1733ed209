package intake

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"crediadmin/internal/core/cliente"
	"crediadmin/internal/core/shell"
	ctxutil "crediadmin/internal/infrastructure/context"
	"crediadmin/internal/infrastructure/security"
)

// Section is the part of the intake form that has focus.
type Section string

const (
	SectionPersonal      Section = "personal"
	SectionResidencia    Section = "residencia"
	SectionEconomica     Section = "economica"
	SectionReferencias   Section = "referencias"
	SectionBeneficiarios Section = "beneficiarios"
	SectionGarantias     Section = "garantias"
)

// Sections lists the form sections in display order.
var Sections = []Section{
	SectionPersonal,
	SectionResidencia,
	SectionEconomica,
	SectionReferencias,
	SectionBeneficiarios,
	SectionGarantias,
}

// ParseSection converts a section name, rejecting unknown values.
func ParseSection(name string) (Section, error) {
	for _, s := range Sections {
		if string(s) == name {
			return s, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownSection, name)
}

// focusOrder decides which section receives focus after a failed validation.
var focusOrder = []struct {
	section Section
	keys    []string
}{
	{SectionPersonal, []string{"primer_nombre", "primer_apellido", "dpi", "celular", "fecha_nacimiento", "estado_civil"}},
	{SectionResidencia, []string{"direccion_completa", "departamento", "municipio"}},
	{SectionReferencias, []string{"referencias"}},
}

// Phase is the coarse state of a workflow.
type Phase int

const (
	PhaseEditing Phase = iota
	PhaseSubmitting
	PhaseDone
)

func (p Phase) String() string {
	switch p {
	case PhaseEditing:
		return "editing"
	case PhaseSubmitting:
		return "submitting"
	case PhaseDone:
		return "done"
	default:
		return "unknown"
	}
}

const (
	MessageFixErrors = "Por favor corrige los errores en el formulario"
	MessageCreated   = "Cliente creado correctamente con toda su información"
)

var (
	ErrSubmissionInFlight = errors.New("ya hay un envío en curso para este formulario")
	ErrAlreadyDone        = errors.New("el formulario ya fue enviado")
	ErrUnknownSection     = errors.New("sección desconocida")
)

type (
	Referencias   = Collection[cliente.ReferenciaDraft, *cliente.ReferenciaDraft]
	Beneficiarios = Collection[cliente.BeneficiarioDraft, *cliente.BeneficiarioDraft]
	Garantias     = Collection[cliente.GarantiaDraft, *cliente.GarantiaDraft]
)

// Gateway is the subset of the client repository the workflow writes to.
type Gateway interface {
	Create(ctx context.Context, c cliente.Cliente) (string, error)
	CreateReferencias(ctx context.Context, clienteID string, refs []cliente.Referencia) error
	CreateBeneficiarios(ctx context.Context, clienteID string, bens []cliente.Beneficiario) error
	CreateGarantias(ctx context.Context, clienteID string, items []cliente.Garantia) error
}

// Recorder receives intake counters.
type Recorder interface {
	IntakeOutcome(outcome string)
	ChildInsertFailed(coleccion string)
}

// Result describes how a submission settled.
type Result struct {
	ClienteID string              `json:"id,omitempty"`
	Phase     Phase               `json:"-"`
	Section   Section             `json:"seccion"`
	Errors    cliente.FieldErrors `json:"errores,omitempty"`
	// Warnings lists sub-record batches that could not be stored.
	Warnings []string `json:"advertencias,omitempty"`
}

type Option func(*Workflow)

// WithClock replaces time.Now for the age rule.
func WithClock(now func() time.Time) Option {
	return func(w *Workflow) { w.now = now }
}

func WithRecorder(r Recorder) Option {
	return func(w *Workflow) { w.recorder = r }
}

// WithChildTimeout bounds each sub-record batch insert.
func WithChildTimeout(d time.Duration) Option {
	return func(w *Workflow) { w.childTimeout = d }
}

// Workflow drives one client intake form from editing to a stored client.
// A Workflow owns its draft and is not meant to be shared between forms.
type Workflow struct {
	gateway      Gateway
	shell        shell.Shell
	log          *slog.Logger
	now          func() time.Time
	recorder     Recorder
	childTimeout time.Duration

	mu            sync.Mutex
	draft         cliente.Draft
	referencias   *Referencias
	beneficiarios *Beneficiarios
	garantias     *Garantias
	phase         Phase
	section       Section
	errors        cliente.FieldErrors

	submitting atomic.Bool
}

// New returns a workflow in editing(personal) with an empty draft.
func New(gateway Gateway, sh shell.Shell, log *slog.Logger, opts ...Option) *Workflow {
	if sh == nil {
		sh = noopShell{}
	}
	if log == nil {
		log = slog.Default()
	}
	w := &Workflow{
		gateway:       gateway,
		shell:         sh,
		log:           log,
		now:           time.Now,
		recorder:      noopRecorder{},
		draft:         cliente.NewDraft(),
		referencias:   NewCollection[cliente.ReferenciaDraft](),
		beneficiarios: NewCollection[cliente.BeneficiarioDraft](),
		garantias:     NewCollection[cliente.GarantiaDraft](),
		phase:         PhaseEditing,
		section:       SectionPersonal,
		errors:        cliente.FieldErrors{},
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Load replaces the draft and all sub-record collections.
func (w *Workflow) Load(d cliente.Draft, refs []cliente.ReferenciaDraft, bens []cliente.BeneficiarioDraft, gars []cliente.GarantiaDraft) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.draft = d
	w.referencias = NewCollection[cliente.ReferenciaDraft](refs...)
	w.beneficiarios = NewCollection[cliente.BeneficiarioDraft](bens...)
	w.garantias = NewCollection[cliente.GarantiaDraft](gars...)
}

// SetField edits one draft field. It reports false for unknown fields.
func (w *Workflow) SetField(field, value string) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.draft.Set(field, value)
}

func (w *Workflow) Draft() cliente.Draft {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.draft
}

// Referencias returns the current reference collection. Load swaps the
// collections, so callers should not hold on to one across a Load.
func (w *Workflow) Referencias() *Referencias {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.referencias
}

func (w *Workflow) Beneficiarios() *Beneficiarios {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.beneficiarios
}

func (w *Workflow) Garantias() *Garantias {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.garantias
}

// Navigate moves focus to another section. Navigation never validates.
func (w *Workflow) Navigate(section Section) error {
	if _, err := ParseSection(string(section)); err != nil {
		return err
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	switch w.phase {
	case PhaseSubmitting:
		return ErrSubmissionInFlight
	case PhaseDone:
		return ErrAlreadyDone
	}
	w.section = section
	return nil
}

func (w *Workflow) Phase() Phase {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.phase
}

func (w *Workflow) Section() Section {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.section
}

// Errors returns a copy of the field errors from the last submission.
func (w *Workflow) Errors() cliente.FieldErrors {
	w.mu.Lock()
	defer w.mu.Unlock()
	out := make(cliente.FieldErrors, len(w.errors))
	for k, v := range w.errors {
		out[k] = v
	}
	return out
}

// Submit validates the draft and, when valid, stores the client followed by
// its sub-records. Only the client insert can fail the submission; sub-record
// batches are best effort and their failures come back as warnings.
//
// The returned error is cliente.FieldErrors on validation failure,
// *cliente.UniqueViolationError on a duplicate, the gateway error on any other
// client insert failure, or ErrSubmissionInFlight / ErrAlreadyDone.
func (w *Workflow) Submit(ctx context.Context) (Result, error) {
	if !w.submitting.CompareAndSwap(false, true) {
		return Result{}, ErrSubmissionInFlight
	}
	defer w.submitting.Store(false)

	w.mu.Lock()
	if w.phase == PhaseDone {
		w.mu.Unlock()
		return Result{}, ErrAlreadyDone
	}
	w.phase = PhaseSubmitting
	current := w.section
	draft := w.draft
	refs := w.referencias.Items()
	bens := w.beneficiarios.Items()
	gars := w.garantias.Items()
	w.mu.Unlock()

	log := w.log.With("correlation_id", ctxutil.GetCorrelationID(ctx))

	if errs := cliente.Validate(draft, refs, w.now()); len(errs) > 0 {
		section := focusFor(errs, current)
		w.settle(PhaseEditing, section, errs)
		w.recorder.IntakeOutcome("invalid")
		w.shell.Error(MessageFixErrors)
		log.Info("intake rejected by validation", "fields", len(errs), "section", section)
		return Result{Phase: PhaseEditing, Section: section, Errors: errs}, errs
	}

	record, err := cliente.Normalize(draft)
	if err != nil {
		w.settle(PhaseEditing, SectionPersonal, nil)
		w.recorder.IntakeOutcome("failed")
		w.shell.Error(err.Error())
		return Result{Phase: PhaseEditing, Section: SectionPersonal}, err
	}

	id, err := w.gateway.Create(ctx, record)
	if err != nil {
		w.settle(PhaseEditing, SectionPersonal, nil)

		var dup *cliente.UniqueViolationError
		if errors.As(err, &dup) {
			w.recorder.IntakeOutcome("duplicate")
			w.shell.Error(dup.Message())
			attrs := []any{"field", dup.Field, "dpi", security.MaskDPI(record.DPI)}
			if dup.Field == "email" && record.Email != nil {
				attrs = append(attrs, "email", security.MaskEmail(*record.Email))
			}
			log.Warn("intake rejected: duplicate client", attrs...)
			return Result{Phase: PhaseEditing, Section: SectionPersonal}, err
		}

		w.recorder.IntakeOutcome("failed")
		w.shell.Error(err.Error())
		log.Error("failed to create client", "error", err, "dpi", security.MaskDPI(record.DPI), "celular", security.MaskPhone(record.Celular))
		return Result{Phase: PhaseEditing, Section: SectionPersonal}, err
	}

	warnings := w.storeChildren(ctx, log, id, refs, bens, gars)

	w.settle(PhaseDone, current, nil)
	w.recorder.IntakeOutcome("done")
	w.shell.Success(MessageCreated)
	w.shell.Close()
	w.shell.Refresh()

	log.Info("client created", "cliente_id", id, "warnings", len(warnings))
	return Result{ClienteID: id, Phase: PhaseDone, Section: current, Warnings: warnings}, nil
}

// storeChildren inserts the complete sub-records once the parent id is known.
// The three batches run concurrently and never fail the submission.
func (w *Workflow) storeChildren(ctx context.Context, log *slog.Logger, clienteID string,
	refs []cliente.ReferenciaDraft, bens []cliente.BeneficiarioDraft, gars []cliente.GarantiaDraft) []string {

	var referencias []cliente.Referencia
	for _, r := range refs {
		if r.Complete() {
			referencias = append(referencias, r.ToReferencia(clienteID))
		}
	}
	var beneficiarios []cliente.Beneficiario
	for _, b := range bens {
		if b.Complete() {
			beneficiarios = append(beneficiarios, b.ToBeneficiario(clienteID))
		}
	}
	var garantias []cliente.Garantia
	for _, g := range gars {
		if g.Complete() {
			garantias = append(garantias, g.ToGarantia(clienteID))
		}
	}

	var (
		g        errgroup.Group
		mu       sync.Mutex
		warnings []string
	)
	run := func(coleccion string, n int, insert func(context.Context) error) {
		if n == 0 {
			return
		}
		g.Go(func() error {
			insertCtx := ctx
			if w.childTimeout > 0 {
				var cancel context.CancelFunc
				insertCtx, cancel = context.WithTimeout(ctx, w.childTimeout)
				defer cancel()
			}
			if err := insert(insertCtx); err != nil {
				log.Warn("failed to store sub-records", "coleccion", coleccion, "cliente_id", clienteID, "count", n, "error", err)
				w.recorder.ChildInsertFailed(coleccion)
				mu.Lock()
				warnings = append(warnings, fmt.Sprintf("no se pudieron guardar las %s: %v", coleccion, err))
				mu.Unlock()
			}
			return nil
		})
	}

	run("referencias", len(referencias), func(ctx context.Context) error {
		return w.gateway.CreateReferencias(ctx, clienteID, referencias)
	})
	run("beneficiarios", len(beneficiarios), func(ctx context.Context) error {
		return w.gateway.CreateBeneficiarios(ctx, clienteID, beneficiarios)
	})
	run("garantias", len(garantias), func(ctx context.Context) error {
		return w.gateway.CreateGarantias(ctx, clienteID, garantias)
	})
	_ = g.Wait()

	sort.Strings(warnings)
	return warnings
}

func (w *Workflow) settle(phase Phase, section Section, errs cliente.FieldErrors) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.phase = phase
	w.section = section
	if errs == nil {
		errs = cliente.FieldErrors{}
	}
	w.errors = errs
}

// focusFor picks the first section, by priority, that has an error. The
// current section is kept when no prioritized key failed.
func focusFor(errs cliente.FieldErrors, current Section) Section {
	for _, f := range focusOrder {
		for _, key := range f.keys {
			if errs.Has(key) {
				return f.section
			}
		}
	}
	return current
}

type noopShell struct{}

func (noopShell) Success(string) {}
func (noopShell) Error(string)   {}
func (noopShell) Close()         {}
func (noopShell) Refresh()       {}

type noopRecorder struct{}

func (noopRecorder) IntakeOutcome(string)     {}
func (noopRecorder) ChildInsertFailed(string) {}
