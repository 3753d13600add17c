package service

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"pulseboard/internal/audit"
	"pulseboard/internal/identity"
	"pulseboard/internal/identity/store"
	"pulseboard/internal/identity/token"
	"pulseboard/internal/records"
	dErrors "pulseboard/pkg/domain-errors"
	"pulseboard/pkg/platform/tx"
	"pulseboard/pkg/requestcontext"
)

type ServiceSuite struct {
	suite.Suite
	auditStore *audit.MemoryStore
	service    *Service
	ctx        context.Context
	now        time.Time
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}

func (s *ServiceSuite) SetupTest() {
	s.auditStore = audit.NewMemoryStore()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	s.service = New(
		store.NewMemory(),
		token.NewService("test-signing-key", "pulseboard", token.DefaultTTL),
		audit.NewRecorder(s.auditStore),
		tx.NopRunner{},
		nil,
		logger,
	)
	s.now = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	s.ctx = requestcontext.WithTime(context.Background(), s.now)
}

func (s *ServiceSuite) register(email, role, sector string) *identity.Principal {
	p, err := s.service.Register(s.ctx, RegisterInput{
		Email:    email,
		Name:     "Test Person",
		Password: "correct horse battery",
		Role:     role,
		Sector:   sector,
	})
	s.Require().NoError(err)
	return p
}

func (s *ServiceSuite) TestRegister() {
	p := s.register("Ana@Example.edu", "Manager", records.SectorMarketing)
	s.Equal("ana@example.edu", p.Email)
	s.Equal(identity.RoleManager, p.Role)
	s.True(p.Active)
	s.NotEmpty(p.PasswordHash)
	s.NotEqual("correct horse battery", p.PasswordHash)

	entries, _, err := audit.NewRecorder(s.auditStore).List(s.ctx, audit.Filter{TableName: "principals"}, 0, 0)
	s.Require().NoError(err)
	s.Require().Len(entries, 1)
	s.Equal(audit.ActionCreate, entries[0].Action)
	// the password hash never reaches the trail
	s.NotContains(string(entries[0].After), p.PasswordHash)
}

func (s *ServiceSuite) TestRegisterDuplicateEmail() {
	s.register("ana@example.edu", "Director", "")
	_, err := s.service.Register(s.ctx, RegisterInput{
		Email:    "ANA@example.edu",
		Name:     "Other",
		Password: "p4ssword!",
		Role:     "Director",
	})
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeConflict))
}

func (s *ServiceSuite) TestRegisterValidation() {
	cases := []RegisterInput{
		{Email: "", Name: "x", Password: "p", Role: "Director"},
		{Email: "no-at-sign", Name: "x", Password: "p", Role: "Director"},
		{Email: "a@b.c", Name: "", Password: "p", Role: "Director"},
		{Email: "a@b.c", Name: "x", Password: "p", Role: "Intern"},
		{Email: "a@b.c", Name: "x", Password: "p", Role: "Employee", Sector: ""},
		{Email: "a@b.c", Name: "x", Password: "", Role: "Director"},
	}
	for _, input := range cases {
		_, err := s.service.Register(s.ctx, input)
		s.Require().Error(err, "%+v", input)
		s.True(dErrors.HasCode(err, dErrors.CodeBadRequest))
	}
}

func (s *ServiceSuite) TestRegisterNormalizesEmployeeSector() {
	p, err := s.service.Register(s.ctx, RegisterInput{
		Email:    "bruna@example.edu",
		Name:     "Bruna Lima",
		Password: "correct horse battery",
		Role:     "Employee",
		Sector:   "  MARKETING ",
	})
	s.Require().NoError(err)
	s.Equal(records.SectorMarketing, p.Sector)

	_, err = s.service.Register(s.ctx, RegisterInput{
		Email:    "caio@example.edu",
		Name:     "Caio Souza",
		Password: "correct horse battery",
		Role:     "Employee",
		Sector:   "logistics",
	})
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeBadRequest))
}

func (s *ServiceSuite) TestLoginAndResolve() {
	s.register("ana@example.edu", "Employee", records.SectorSales)

	session, err := s.service.Login(s.ctx, "ana@example.edu", "correct horse battery")
	s.Require().NoError(err)
	s.NotEmpty(session.Token)
	s.Equal(s.now.Add(token.DefaultTTL), session.ExpiresAt)

	p, err := s.service.Resolve(s.ctx, session.Token)
	s.Require().NoError(err)
	s.Equal("ana@example.edu", p.Email)
	s.Equal(identity.RoleEmployee, p.Role)
}

func (s *ServiceSuite) TestResolveRejectsExpiredToken() {
	s.register("ana@example.edu", "Employee", records.SectorSales)

	session, err := s.service.Login(s.ctx, "ana@example.edu", "correct horse battery")
	s.Require().NoError(err)

	later := requestcontext.WithTime(context.Background(), s.now.Add(token.DefaultTTL+time.Minute))
	_, err = s.service.Resolve(later, session.Token)
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeUnauthorized))
}

func (s *ServiceSuite) TestLoginRejectsBadCredentials() {
	s.register("ana@example.edu", "Employee", records.SectorSales)

	_, err := s.service.Login(s.ctx, "ana@example.edu", "wrong password")
	s.True(dErrors.HasCode(err, dErrors.CodeUnauthorized))

	_, err = s.service.Login(s.ctx, "nobody@example.edu", "correct horse battery")
	s.True(dErrors.HasCode(err, dErrors.CodeUnauthorized))
}

func (s *ServiceSuite) TestLoginRejectsInactive() {
	director := s.register("dir@example.edu", "Director", "")
	target := s.register("ana@example.edu", "Employee", records.SectorSales)
	s.Require().NoError(s.service.Deactivate(s.ctx, director, target.ID))

	_, err := s.service.Login(s.ctx, "ana@example.edu", "correct horse battery")
	s.True(dErrors.HasCode(err, dErrors.CodeUnauthorized))
}

func (s *ServiceSuite) TestResolveRejectsGarbageAndDeactivated() {
	_, err := s.service.Resolve(s.ctx, "not.a.token")
	s.True(dErrors.HasCode(err, dErrors.CodeUnauthorized))

	director := s.register("dir@example.edu", "Director", "")
	target := s.register("ana@example.edu", "Employee", records.SectorSales)
	session, err := s.service.Login(s.ctx, "ana@example.edu", "correct horse battery")
	s.Require().NoError(err)

	// deactivation takes effect on the very next resolve
	s.Require().NoError(s.service.Deactivate(s.ctx, director, target.ID))
	_, err = s.service.Resolve(s.ctx, session.Token)
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeUnauthorized))
}

func (s *ServiceSuite) TestListPrincipalsScoping() {
	director := s.register("dir@example.edu", "Director", "")
	manager := s.register("mgr@example.edu", "Manager", records.SectorMarketing)
	employee := s.register("emp@example.edu", "Employee", records.SectorMarketing)
	s.register("sales@example.edu", "Employee", records.SectorSales)

	_, _, err := s.service.ListPrincipals(s.ctx, employee, 0, 0)
	s.True(dErrors.HasCode(err, dErrors.CodeForbidden))

	all, total, err := s.service.ListPrincipals(s.ctx, director, 0, 0)
	s.Require().NoError(err)
	s.Equal(4, total)
	s.Len(all, 4)
	// creation order is stable
	s.Equal("dir@example.edu", all[0].Email)

	scoped, total, err := s.service.ListPrincipals(s.ctx, manager, 0, 0)
	s.Require().NoError(err)
	s.Equal(2, total)
	for _, p := range scoped {
		s.Equal(records.SectorMarketing, p.Sector)
	}

	paged, total, err := s.service.ListPrincipals(s.ctx, director, 2, 1)
	s.Require().NoError(err)
	s.Equal(4, total)
	s.Len(paged, 2)
	s.Equal("mgr@example.edu", paged[0].Email)
}

func (s *ServiceSuite) TestDeactivate() {
	director := s.register("dir@example.edu", "Director", "")
	manager := s.register("mgr@example.edu", "Manager", records.SectorMarketing)
	target := s.register("ana@example.edu", "Employee", records.SectorSales)

	s.Require().Error(s.service.Deactivate(s.ctx, manager, target.ID))
	s.True(dErrors.HasCode(s.service.Deactivate(s.ctx, manager, target.ID), dErrors.CodeForbidden))

	err := s.service.Deactivate(s.ctx, director, director.ID)
	s.True(dErrors.HasCode(err, dErrors.CodeForbidden))

	err = s.service.Deactivate(s.ctx, director, uuid.New())
	s.True(dErrors.HasCode(err, dErrors.CodeNotFound))

	s.Require().NoError(s.service.Deactivate(s.ctx, director, target.ID))
	// repeating is an idempotent no-op
	s.Require().NoError(s.service.Deactivate(s.ctx, director, target.ID))

	entries, _, err := audit.NewRecorder(s.auditStore).List(s.ctx, audit.Filter{Action: audit.ActionUpdate}, 0, 0)
	s.Require().NoError(err)
	// exactly one trail entry despite the repeated call
	s.Len(entries, 1)
	s.Equal(director.ID, entries[0].ActorID)
	s.Equal(target.ID, entries[0].RecordID)
}

func (s *ServiceSuite) TestCheckPermissions() {
	employee := s.register("emp@example.edu", "Employee", records.SectorMarketing)
	director := s.register("dir@example.edu", "Director", "")

	perms := s.service.CheckPermissions(employee)
	s.Equal(1, perms.Rank)
	s.False(perms.CanManageUsers)
	s.True(perms.Sectors[records.SectorMarketing])
	s.False(perms.Sectors[records.SectorSales])

	perms = s.service.CheckPermissions(director)
	s.Equal(3, perms.Rank)
	s.True(perms.CanManageUsers)
	for _, sector := range records.Sectors() {
		s.True(perms.Sectors[sector])
	}
}

func (s *ServiceSuite) TestAdminDisplayName() {
	cases := map[string]string{
		"admin@example.edu":     "Admin",
		"kpi.admin@example.edu": "Kpi Admin",
		"data_ops-lead@x.io":    "Data Ops Lead",
		"@example.edu":          "Administrator",
	}
	for in, want := range cases {
		s.Equal(want, adminDisplayName(in), in)
	}
}

func (s *ServiceSuite) TestEnsureAdmin() {
	s.Require().NoError(s.service.EnsureAdmin(s.ctx, "admin@example.edu", "bootstrap-secret"))
	s.Require().NoError(s.service.EnsureAdmin(s.ctx, "admin@example.edu", "bootstrap-secret"))

	session, err := s.service.Login(s.ctx, "admin@example.edu", "bootstrap-secret")
	s.Require().NoError(err)
	s.Equal(identity.RoleDirector, session.Principal.Role)
	s.Equal("Admin", session.Principal.Name)

	all, total, err := s.service.ListPrincipals(s.ctx, session.Principal, 0, 0)
	s.Require().NoError(err)
	s.Equal(1, total)
	s.Len(all, 1)
}
