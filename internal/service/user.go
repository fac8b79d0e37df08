package service

import (
	"context"
	"strings"

	"fundcrm/internal/domain"
)

// UserService manages accounts. All operations are admin-only except
// Get and List, which any authenticated user may call for directory
// lookups.
type UserService struct {
	repo  domain.UserRepository
	audit *AuditService
}

func NewUserService(repo domain.UserRepository, audit *AuditService) *UserService {
	return &UserService{repo: repo, audit: audit}
}

func (s *UserService) Create(ctx context.Context, in domain.CreateUser) (*domain.User, error) {
	if _, err := requireRole(ctx, domain.RoleAdmin); err != nil {
		return nil, err
	}
	in.Email = strings.TrimSpace(strings.ToLower(in.Email))
	if in.Email == "" || !strings.Contains(in.Email, "@") {
		return nil, domain.ErrValidation("a valid email is required")
	}
	if len(in.Password) < 8 {
		return nil, domain.ErrValidation("password must be at least 8 characters")
	}
	if in.FullName == "" {
		return nil, domain.ErrValidation("full_name is required")
	}
	if in.Role == "" {
		in.Role = domain.RoleStaff
	}
	if !domain.ValidRole(in.Role) {
		return nil, domain.ErrValidation("invalid role %q", in.Role)
	}

	hash, err := HashPassword(in.Password)
	if err != nil {
		return nil, err
	}
	created, err := s.repo.Create(ctx, &domain.User{
		Email:        in.Email,
		PasswordHash: hash,
		FullName:     in.FullName,
		FullNameKana: in.FullNameKana,
		Role:         in.Role,
		Department:   in.Department,
		Title:        in.Title,
		Phone:        in.Phone,
	})
	if err != nil {
		return nil, err
	}

	if err := s.audit.Record(ctx, domain.ActionCreate, domain.EntityUser,
		&created.ID, &created.FullName,
		map[string]any{"email": created.Email, "role": created.Role}); err != nil {
		return nil, err
	}
	return created, nil
}

func (s *UserService) Get(ctx context.Context, id int64) (*domain.User, error) {
	if _, err := requireUser(ctx); err != nil {
		return nil, err
	}
	return s.repo.GetByID(ctx, id)
}

func (s *UserService) List(ctx context.Context, page domain.PageRequest) ([]domain.User, int64, error) {
	if _, err := requireUser(ctx); err != nil {
		return nil, 0, err
	}
	return s.repo.List(ctx, page)
}

// Update applies profile changes. A role change is recorded as its own
// ROLE_CHANGE entry, separate from the ordinary UPDATE, so privilege
// history stands out in the chain.
func (s *UserService) Update(ctx context.Context, id int64, upd domain.UpdateUser) (*domain.User, error) {
	actor, err := requireRole(ctx, domain.RoleAdmin)
	if err != nil {
		return nil, err
	}
	existing, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if upd.Role != nil && !domain.ValidRole(*upd.Role) {
		return nil, domain.ErrValidation("invalid role %q", *upd.Role)
	}
	if upd.IsActive != nil && !*upd.IsActive && id == actor.ID {
		return nil, domain.ErrValidation("cannot deactivate your own account")
	}

	fields := map[string]any{}
	details := map[string]any{}
	applyStrVal(fields, details, "full_name", existing.FullName, upd.FullName)
	applyStr(fields, details, "full_name_kana", existing.FullNameKana, upd.FullNameKana)
	applyStr(fields, details, "department", existing.Department, upd.Department)
	applyStr(fields, details, "title", existing.Title, upd.Title)
	applyStr(fields, details, "phone", existing.Phone, upd.Phone)
	applyBool(fields, details, "is_active", existing.IsActive, upd.IsActive)

	roleChanged := upd.Role != nil && *upd.Role != existing.Role
	if roleChanged {
		fields["role"] = *upd.Role
	}

	if len(fields) == 0 {
		return existing, nil
	}
	if err := s.repo.Update(ctx, id, fields); err != nil {
		return nil, err
	}

	updated, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if len(details) > 0 {
		if err := s.audit.Record(ctx, domain.ActionUpdate, domain.EntityUser,
			&id, &updated.FullName, details); err != nil {
			return nil, err
		}
	}
	if roleChanged {
		roleDetails := map[string]any{}
		fieldChange(roleDetails, "role", existing.Role, *upd.Role)
		if err := s.audit.Record(ctx, domain.ActionRoleChange, domain.EntityUser,
			&id, &updated.FullName, roleDetails); err != nil {
			return nil, err
		}
	}
	return updated, nil
}

// Delete deactivates an account. Accounts are never removed: their ID
// is referenced from audit history.
func (s *UserService) Delete(ctx context.Context, id int64) error {
	actor, err := requireRole(ctx, domain.RoleAdmin)
	if err != nil {
		return err
	}
	if id == actor.ID {
		return domain.ErrValidation("cannot deactivate your own account")
	}
	existing, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if !existing.IsActive {
		return nil
	}
	if err := s.repo.Update(ctx, id, map[string]any{"is_active": 0}); err != nil {
		return err
	}

	details := map[string]any{}
	fieldChange(details, "is_active", true, false)
	return s.audit.Record(ctx, domain.ActionDelete, domain.EntityUser,
		&id, &existing.FullName, details)
}
