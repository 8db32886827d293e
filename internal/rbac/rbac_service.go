package rbac

import (
	"errors"
	"sync"

	"go-garage/internal/domain"
	rbacerrors "go-garage/internal/rbac/errors"

	"github.com/casbin/casbin/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

//go:generate mockgen -source=rbac_service.go -destination=mock/rbac_service_mock.go -package=mock
type Service interface {
	LoadPolicy() error
	Enforce(req domain.EnforceRequest) (bool, error)

	ListRoles() ([]RoleResponse, error)
	GetRole(id string) (RoleDetailResponse, error)
	CreateRole(req CreateRoleRequest) (RoleResponse, error)
	UpdateRole(id string, req UpdateRoleRequest) (RoleResponse, error)
	DeleteRole(id string) error
	ListPermissions() ([]PermissionResponse, error)
	UpdateRolePermissions(id string, req UpdateRolePermissionsRequest) error
}

type service struct {
	repo     Repository
	enforcer *casbin.Enforcer
	logger   *zap.Logger
	mu       sync.Mutex
}

func NewService(repo Repository, enforcer *casbin.Enforcer) Service {
	return &service{
		repo:     repo,
		enforcer: enforcer,
		logger:   zap.L().Named("rbac.service"),
	}
}

// LoadPolicy rebuilds the in-memory casbin policy from the roles and
// permissions tables.
func (s *service) LoadPolicy() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.loadPolicyUnlocked()
}

func (s *service) loadPolicyUnlocked() error {
	s.enforcer.ClearPolicy()

	userRoles, err := s.repo.GetUserRoles()
	if err != nil {
		return err
	}

	for _, ur := range userRoles {
		if _, err := s.enforcer.AddGroupingPolicy(ur.UserID, ur.RoleID); err != nil {
			return err
		}
	}

	rolePerms, err := s.repo.GetRolePermissions()
	if err != nil {
		return err
	}

	for _, rp := range rolePerms {
		if _, err := s.enforcer.AddPolicy(rp.RoleID, rp.Resource, rp.Action); err != nil {
			return err
		}
	}

	s.logger.Debug("rbac policy loaded",
		zap.Int("user_roles", len(userRoles)),
		zap.Int("role_permissions", len(rolePerms)),
	)

	return nil
}

func (s *service) Enforce(req domain.EnforceRequest) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.loadPolicyUnlocked(); err != nil {
		return false, err
	}

	allowed, err := s.enforcer.Enforce(req.UserID, req.Resource, req.Action)
	if err != nil {
		s.logger.Error("rbac enforce failed",
			zap.String("user_id", req.UserID),
			zap.String("resource", req.Resource),
			zap.String("action", req.Action),
			zap.Error(err),
		)
		return false, err
	}

	s.logger.Debug("rbac enforce result",
		zap.String("user_id", req.UserID),
		zap.String("resource", req.Resource),
		zap.String("action", req.Action),
		zap.Bool("allowed", allowed),
	)

	return allowed, nil
}

func (s *service) ListRoles() ([]RoleResponse, error) {
	roles, err := s.repo.ListRoles()
	if err != nil {
		return nil, err
	}

	resp := make([]RoleResponse, len(roles))
	for i, role := range roles {
		resp[i] = mapRoleToResponse(role)
	}
	return resp, nil
}

func (s *service) GetRole(id string) (RoleDetailResponse, error) {
	if _, err := uuid.Parse(id); err != nil {
		return RoleDetailResponse{}, rbacerrors.ErrInvalidRoleID
	}

	role, err := s.repo.GetRoleByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return RoleDetailResponse{}, rbacerrors.ErrRoleNotFound
		}
		return RoleDetailResponse{}, err
	}

	perms, err := s.repo.GetPermissionsByRoleID(id)
	if err != nil {
		return RoleDetailResponse{}, err
	}

	detail := RoleDetailResponse{RoleResponse: mapRoleToResponse(*role)}
	detail.Permissions = make([]PermissionResponse, len(perms))
	for i, perm := range perms {
		detail.Permissions[i] = mapPermissionToResponse(perm)
	}
	return detail, nil
}

func (s *service) CreateRole(req CreateRoleRequest) (RoleResponse, error) {
	if err := s.checkNameAvailable(req.Name, ""); err != nil {
		return RoleResponse{}, err
	}

	role := &RoleRow{Name: req.Name, Description: req.Description}
	if err := s.repo.CreateRole(role); err != nil {
		return RoleResponse{}, err
	}

	s.logger.Info("role created", zap.String("role_id", role.ID), zap.String("name", role.Name))
	return mapRoleToResponse(*role), nil
}

func (s *service) UpdateRole(id string, req UpdateRoleRequest) (RoleResponse, error) {
	if _, err := uuid.Parse(id); err != nil {
		return RoleResponse{}, rbacerrors.ErrInvalidRoleID
	}

	role, err := s.repo.GetRoleByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return RoleResponse{}, rbacerrors.ErrRoleNotFound
		}
		return RoleResponse{}, err
	}

	if err := s.checkNameAvailable(req.Name, role.ID); err != nil {
		return RoleResponse{}, err
	}

	role.Name = req.Name
	role.Description = req.Description
	if err := s.repo.UpdateRole(role); err != nil {
		return RoleResponse{}, err
	}

	return mapRoleToResponse(*role), nil
}

// DeleteRole removes a role; grants hanging off it disappear from the policy
// on the next Enforce reload.
func (s *service) DeleteRole(id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return rbacerrors.ErrInvalidRoleID
	}

	if _, err := s.repo.GetRoleByID(id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return rbacerrors.ErrRoleNotFound
		}
		return err
	}

	if err := s.repo.DeleteRole(id); err != nil {
		return err
	}

	s.logger.Info("role deleted", zap.String("role_id", id))
	return nil
}

func (s *service) ListPermissions() ([]PermissionResponse, error) {
	perms, err := s.repo.ListPermissions()
	if err != nil {
		return nil, err
	}

	resp := make([]PermissionResponse, len(perms))
	for i, perm := range perms {
		resp[i] = mapPermissionToResponse(perm)
	}
	return resp, nil
}

func (s *service) UpdateRolePermissions(id string, req UpdateRolePermissionsRequest) error {
	if _, err := uuid.Parse(id); err != nil {
		return rbacerrors.ErrInvalidRoleID
	}

	if _, err := s.repo.GetRoleByID(id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return rbacerrors.ErrRoleNotFound
		}
		return err
	}

	if err := s.repo.UpdateRolePermissions(id, req.PermissionIDs); err != nil {
		return err
	}

	s.logger.Info("role permissions updated",
		zap.String("role_id", id),
		zap.Int("permission_count", len(req.PermissionIDs)),
	)
	return nil
}

func (s *service) checkNameAvailable(name, selfID string) error {
	existing, err := s.repo.GetRoleByName(name)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		return err
	}
	if existing.ID != selfID {
		return rbacerrors.ErrDuplicateRoleName
	}
	return nil
}

func mapRoleToResponse(role RoleRow) RoleResponse {
	return RoleResponse{
		ID:          role.ID,
		Name:        role.Name,
		Description: role.Description,
	}
}

func mapPermissionToResponse(perm PermissionRow) PermissionResponse {
	return PermissionResponse{
		ID:       perm.ID,
		Resource: perm.Resource,
		Action:   perm.Action,
		Label:    perm.Label,
		Category: perm.Category,
	}
}
