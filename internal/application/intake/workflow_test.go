package intake

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"crediadmin/internal/core/cliente"
	"crediadmin/internal/testutil"
)

type WorkflowSuite struct {
	suite.Suite
	repo     *testutil.MockClienteRepository
	shell    *testutil.RecordingShell
	recorder *countingRecorder
	wf       *Workflow
}

func TestWorkflowSuite(t *testing.T) {
	suite.Run(t, new(WorkflowSuite))
}

func (s *WorkflowSuite) SetupTest() {
	s.repo = &testutil.MockClienteRepository{}
	s.shell = &testutil.RecordingShell{}
	s.recorder = &countingRecorder{outcomes: map[string]int{}, failures: map[string]int{}}
	clock := func() time.Time { return time.Date(2024, time.June, 15, 9, 0, 0, 0, time.UTC) }
	s.wf = New(s.repo, s.shell, testutil.NewNullLogger(), WithClock(clock), WithRecorder(s.recorder))
}

func (s *WorkflowSuite) loadValid(refs ...cliente.ReferenciaDraft) {
	d := cliente.NewDraft()
	d.PrimerNombre = "Carlos"
	d.PrimerApellido = "Méndez"
	d.Celular = "5012-3456"
	d.DPI = "2545 67890 0101"
	d.FechaNacimiento = "1985-11-02"
	d.DireccionCompleta = "Aldea El Rosario"
	d.Municipio = "Cobán"
	d.Departamento = "Alta Verapaz"
	d.IngresoMensual = "4200"
	if refs == nil {
		refs = []cliente.ReferenciaDraft{
			{NombreApellido: "Ana López", Parentesco: "Madre", Celular: "5555-1234"},
			{NombreApellido: "Luis Pérez", Parentesco: "Amigo/a", Celular: "5555-9876"},
		}
	}
	s.wf.Load(d, refs, nil, nil)
}

func (s *WorkflowSuite) TestStartsEditingPersonal() {
	s.Equal(PhaseEditing, s.wf.Phase())
	s.Equal(SectionPersonal, s.wf.Section())
}

func (s *WorkflowSuite) TestNavigateIsFree() {
	s.Require().NoError(s.wf.Navigate(SectionGarantias))
	s.Equal(SectionGarantias, s.wf.Section())
	s.Empty(s.wf.Errors())

	err := s.wf.Navigate(Section("finanzas"))
	s.ErrorIs(err, ErrUnknownSection)
	s.Equal(SectionGarantias, s.wf.Section())
}

func (s *WorkflowSuite) TestCollectionsReadWhileLoading() {
	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		for i := 0; i < 100; i++ {
			s.loadValid()
		}
	}()
	go func() {
		defer wg.Done()
		for i := 0; i < 100; i++ {
			_ = s.wf.Referencias()
			_ = s.wf.Beneficiarios()
			_ = s.wf.Garantias()
		}
	}()
	wg.Wait()

	s.Equal(2, s.wf.Referencias().Len())
}

func (s *WorkflowSuite) TestHappyPath() {
	s.loadValid()

	res, err := s.wf.Submit(context.Background())

	s.Require().NoError(err)
	s.Equal("cliente-1", res.ClienteID)
	s.Equal(PhaseDone, s.wf.Phase())
	s.Empty(res.Warnings)

	clientes, referencias, beneficiarios, garantias := s.repo.Calls()
	s.Equal(1, clientes)
	s.Equal(1, referencias)
	s.Equal(0, beneficiarios)
	s.Equal(0, garantias)
	s.Len(s.repo.ReferenciaBatches[0], 2)
	for _, r := range s.repo.ReferenciaBatches[0] {
		s.Equal("cliente-1", r.ClienteID)
	}

	created := s.repo.Created[0]
	s.Equal("2545678900101", created.DPI)
	s.Require().NotNil(created.IngresoMensual)
	s.Equal(4200.0, *created.IngresoMensual)

	s.Equal([]string{MessageCreated}, s.shell.Successes)
	s.Empty(s.shell.Errors)
	s.Equal(1, s.shell.Closed)
	s.Equal(1, s.shell.Refreshed)
	s.Equal(1, s.recorder.outcomes["done"])
}

func (s *WorkflowSuite) TestOnlyCompleteSubRecordsAreStored() {
	s.loadValid()
	s.wf.Referencias().Append()
	s.wf.Beneficiarios().Append()
	s.wf.Beneficiarios().Update(0, "nombre_apellido", "Sofía Méndez")
	s.wf.Beneficiarios().Update(0, "parentesco", "Hijo/a")
	s.wf.Beneficiarios().Append()
	s.wf.Beneficiarios().Update(1, "nombre_apellido", "Sin parentesco")
	s.wf.Garantias().Append()
	s.wf.Garantias().Update(0, "nombre", "Motocicleta")
	s.wf.Garantias().Update(0, "valor_estimado", "0")
	s.wf.Garantias().Append()
	s.wf.Garantias().Update(1, "marca", "Sin nombre")

	_, err := s.wf.Submit(context.Background())
	s.Require().NoError(err)

	s.Require().Len(s.repo.ReferenciaBatches, 1)
	s.Len(s.repo.ReferenciaBatches[0], 2)
	s.Require().Len(s.repo.BeneficiarioBatches, 1)
	s.Len(s.repo.BeneficiarioBatches[0], 1)
	s.Nil(s.repo.BeneficiarioBatches[0][0].Celular)
	s.Require().Len(s.repo.GarantiaBatches, 1)
	s.Require().Len(s.repo.GarantiaBatches[0], 1)
	s.Nil(s.repo.GarantiaBatches[0][0].ValorEstimado)
}

func (s *WorkflowSuite) TestValidationFailureMakesNoGatewayCalls() {
	s.loadValid()
	s.wf.SetField("municipio", "")
	s.wf.SetField("primer_nombre", "")
	s.Require().NoError(s.wf.Navigate(SectionGarantias))

	res, err := s.wf.Submit(context.Background())

	var fieldErrs cliente.FieldErrors
	s.Require().ErrorAs(err, &fieldErrs)
	s.True(res.Errors.Has("primer_nombre"))
	s.True(res.Errors.Has("municipio"))
	s.Equal(SectionPersonal, res.Section)
	s.Equal(SectionPersonal, s.wf.Section())
	s.Equal(PhaseEditing, s.wf.Phase())
	s.Equal(res.Errors, s.wf.Errors())

	clientes, _, _, _ := s.repo.Calls()
	s.Zero(clientes)
	s.Equal([]string{MessageFixErrors}, s.shell.Errors)
	s.Equal(1, s.recorder.outcomes["invalid"])
}

func (s *WorkflowSuite) TestValidationFocusPriority() {
	tests := []struct {
		name    string
		mutate  func(*Workflow)
		start   Section
		section Section
	}{
		{
			name:    "residence before references",
			mutate:  func(w *Workflow) { w.SetField("direccion_completa", ""); w.Referencias().Remove(0); w.Referencias().Remove(0) },
			start:   SectionEconomica,
			section: SectionResidencia,
		},
		{
			name:    "references only",
			mutate:  func(w *Workflow) { w.Referencias().Update(0, "celular", ""); w.Referencias().Update(1, "celular", "") },
			start:   SectionPersonal,
			section: SectionReferencias,
		},
		{
			name:    "email only keeps current section",
			mutate:  func(w *Workflow) { w.SetField("email", "no-es-correo") },
			start:   SectionEconomica,
			section: SectionEconomica,
		},
	}

	for _, tt := range tests {
		s.Run(tt.name, func() {
			s.SetupTest()
			s.loadValid()
			tt.mutate(s.wf)
			s.Require().NoError(s.wf.Navigate(tt.start))

			res, err := s.wf.Submit(context.Background())

			s.Require().Error(err)
			s.Equal(tt.section, res.Section)
			s.Equal(tt.section, s.wf.Section())
		})
	}
}

func (s *WorkflowSuite) TestDuplicateDPIAbortsWithoutChildren() {
	s.loadValid()
	s.wf.Garantias().Append()
	s.wf.Garantias().Update(0, "nombre", "Terreno")
	s.repo.CreateFunc = func(context.Context, cliente.Cliente) (string, error) {
		return "", &cliente.UniqueViolationError{Field: "dpi"}
	}
	s.Require().NoError(s.wf.Navigate(SectionGarantias))

	res, err := s.wf.Submit(context.Background())

	var dup *cliente.UniqueViolationError
	s.Require().ErrorAs(err, &dup)
	_, referencias, beneficiarios, garantias := s.repo.Calls()
	s.Zero(referencias + beneficiarios + garantias)
	s.Equal(PhaseEditing, s.wf.Phase())
	s.Equal(SectionPersonal, s.wf.Section())
	s.Equal(SectionPersonal, res.Section)
	s.Equal([]string{"Ya existe un cliente con ese DPI"}, s.shell.Errors)
	s.Zero(s.shell.Closed)
	s.Equal(1, s.recorder.outcomes["duplicate"])
}

func (s *WorkflowSuite) TestDuplicateEmailMessage() {
	s.loadValid()
	s.repo.CreateFunc = func(context.Context, cliente.Cliente) (string, error) {
		return "", &cliente.UniqueViolationError{Field: "email"}
	}

	_, err := s.wf.Submit(context.Background())

	s.Require().Error(err)
	s.Equal([]string{"Ya existe un cliente con ese email"}, s.shell.Errors)
}

func (s *WorkflowSuite) TestParentFailureSurfacesRawError() {
	s.loadValid()
	s.repo.CreateFunc = func(context.Context, cliente.Cliente) (string, error) {
		return "", errors.New("connection reset by peer")
	}

	_, err := s.wf.Submit(context.Background())

	s.Require().EqualError(err, "connection reset by peer")
	_, referencias, _, _ := s.repo.Calls()
	s.Zero(referencias)
	s.Equal([]string{"connection reset by peer"}, s.shell.Errors)
	s.Equal(SectionPersonal, s.wf.Section())
	s.Equal(PhaseEditing, s.wf.Phase())
}

func (s *WorkflowSuite) TestChildFailureStillCompletes() {
	s.loadValid()
	s.wf.Beneficiarios().Append()
	s.wf.Beneficiarios().Update(0, "nombre_apellido", "Sofía")
	s.wf.Beneficiarios().Update(0, "parentesco", "Hijo/a")
	s.repo.CreateReferenciasFunc = func(context.Context, string, []cliente.Referencia) error {
		return errors.New("timeout")
	}

	res, err := s.wf.Submit(context.Background())

	s.Require().NoError(err)
	s.Equal(PhaseDone, s.wf.Phase())
	s.Require().Len(res.Warnings, 1)
	s.Contains(res.Warnings[0], "referencias")
	_, _, beneficiarios, _ := s.repo.Calls()
	s.Equal(1, beneficiarios)
	s.Equal([]string{MessageCreated}, s.shell.Successes)
	s.Empty(s.shell.Errors)
	s.Equal(1, s.recorder.failures["referencias"])
}

func (s *WorkflowSuite) TestResubmitAfterDone() {
	s.loadValid()
	_, err := s.wf.Submit(context.Background())
	s.Require().NoError(err)

	_, err = s.wf.Submit(context.Background())

	s.ErrorIs(err, ErrAlreadyDone)
	clientes, _, _, _ := s.repo.Calls()
	s.Equal(1, clientes)
	s.ErrorIs(s.wf.Navigate(SectionPersonal), ErrAlreadyDone)
}

func (s *WorkflowSuite) TestSecondSubmitWhileInFlightIsRejected() {
	s.loadValid()
	entered := make(chan struct{})
	release := make(chan struct{})
	s.repo.CreateFunc = func(context.Context, cliente.Cliente) (string, error) {
		close(entered)
		<-release
		return "cliente-9", nil
	}

	done := make(chan error, 1)
	go func() {
		_, err := s.wf.Submit(context.Background())
		done <- err
	}()

	<-entered
	s.Equal(PhaseSubmitting, s.wf.Phase())
	_, err := s.wf.Submit(context.Background())
	s.ErrorIs(err, ErrSubmissionInFlight)
	s.ErrorIs(s.wf.Navigate(SectionResidencia), ErrSubmissionInFlight)

	close(release)
	s.Require().NoError(<-done)
	clientes, _, _, _ := s.repo.Calls()
	s.Equal(1, clientes)
}

func (s *WorkflowSuite) TestRetryAfterDuplicate() {
	s.loadValid()
	attempts := 0
	s.repo.CreateFunc = func(context.Context, cliente.Cliente) (string, error) {
		attempts++
		if attempts == 1 {
			return "", &cliente.UniqueViolationError{Field: "dpi"}
		}
		return "cliente-2", nil
	}

	_, err := s.wf.Submit(context.Background())
	s.Require().Error(err)
	s.wf.SetField("dpi", "1111222223333")

	res, err := s.wf.Submit(context.Background())

	s.Require().NoError(err)
	s.Equal("cliente-2", res.ClienteID)
	s.Equal("1111222223333", s.repo.Created[1].DPI)
}

type countingRecorder struct {
	mu       sync.Mutex
	outcomes map[string]int
	failures map[string]int
}

func (r *countingRecorder) IntakeOutcome(outcome string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.outcomes[outcome]++
}

func (r *countingRecorder) ChildInsertFailed(coleccion string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.failures[coleccion]++
}
