package service

import (
	"context"
	"errors"
	"strings"

	"localchef-api/config"
	"localchef-api/events"
	"localchef-api/metrics"
	"localchef-api/models"
	"localchef-api/statemachine"
	"localchef-api/store"

	"go.uber.org/zap"
)

type SubmitRequestInput struct {
	UserID      string `json:"userId"`
	UserName    string `json:"userName"`
	UserEmail   string `json:"userEmail"`
	RequestType string `json:"requestType"`
}

func (in SubmitRequestInput) validate() error {
	switch {
	case blank(in.UserID):
		return missing("userId")
	case blank(in.UserName):
		return missing("userName")
	case blank(in.UserEmail):
		return missing("userEmail")
	case blank(in.RequestType):
		return missing("requestType")
	}
	if !models.UserRole(in.RequestType).Elevated() {
		return invalid("requestType", "must be chef or admin")
	}
	return nil
}

// Resolution reports the outcome of resolving a request
type Resolution struct {
	Request *models.RoleRequest `json:"request"`
	// Role is the role granted to the user, empty on reject
	Role models.UserRole `json:"role,omitempty"`
}

// RoleWorkflow owns the role request state machine and the request ↔ user
// role linkage.
type RoleWorkflow struct {
	store       *store.Store
	users       *store.Users
	requests    *store.Requests
	projections *store.Projections
	policy      config.ResolvePolicy
	deps        Deps
}

// NewRoleWorkflow wires the workflow to its collections. policy decides which
// verified callers may review requests and set roles.
func NewRoleWorkflow(s *store.Store, policy config.ResolvePolicy, deps Deps) *RoleWorkflow {
	deps = deps.withDefaults()
	deps.Log = deps.Log.Named("roles")
	if policy == "" {
		policy = config.PolicyAdmin
	}
	return &RoleWorkflow{
		store:       s,
		users:       s.Users,
		requests:    s.Requests,
		projections: s.Projections,
		policy:      policy,
		deps:        deps,
	}
}

// Submit files a pending request for an elevated role
func (w *RoleWorkflow) Submit(ctx context.Context, in SubmitRequestInput) (*models.RoleRequest, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}

	req := &models.RoleRequest{
		UserID:        strings.TrimSpace(in.UserID),
		UserName:      strings.TrimSpace(in.UserName),
		UserEmail:     strings.TrimSpace(in.UserEmail),
		RequestType:   models.UserRole(in.RequestType),
		RequestStatus: models.RequestPending,
		RequestTime:   w.deps.Now(),
	}
	if err := w.requests.Create(ctx, req); err != nil {
		return nil, storeErr("create role request", err)
	}

	w.deps.publish(ctx, events.New(events.RoleRequestCreated, req.ID, map[string]any{
		"userId":      req.UserID,
		"requestType": req.RequestType,
	}))
	return req, nil
}

// List returns every request for the review queue
func (w *RoleWorkflow) List(ctx context.Context, caller models.Identity) ([]models.RoleRequest, error) {
	if err := authorize(w.policy, caller); err != nil {
		return nil, err
	}
	reqs, err := w.requests.List(ctx)
	if err != nil {
		return nil, storeErr("list role requests", err)
	}
	return reqs, nil
}

func (w *RoleWorkflow) get(ctx context.Context, id string) (*models.RoleRequest, error) {
	req, err := w.requests.Get(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return nil, notFound("request", id)
	}
	if err != nil {
		return nil, storeErr("get role request", err)
	}
	return req, nil
}

// Resolve accepts or rejects a pending request. Accepting sets the user's role
// to the requested one before marking the request accepted. A request is
// resolved once; acting on it again is an invalid transition.
func (w *RoleWorkflow) Resolve(ctx context.Context, caller models.Identity, id, action string) (*Resolution, error) {
	if err := authorize(w.policy, caller); err != nil {
		return nil, err
	}

	req, err := w.get(ctx, id)
	if err != nil {
		return nil, err
	}

	act := models.RequestAction(action)
	to, ok := act.Target()
	if !ok {
		return nil, invalid("action", "must be accept or reject")
	}
	if err := statemachine.CanResolveRequest(req.RequestStatus, act); err != nil {
		metrics.RecordResolution(action, "refused")
		return nil, err
	}

	res := &Resolution{Request: req}
	switch {
	case act == models.ActionReject:
		err = w.reject(ctx, req)
	case w.deps.Consistency == config.Transactional:
		err = w.acceptAtomically(ctx, req)
	default:
		err = w.acceptTwoPhase(ctx, req)
	}
	if err != nil {
		metrics.RecordResolution(action, "failed")
		return nil, err
	}

	req.RequestStatus = to
	if act == models.ActionAccept {
		res.Role = req.RequestType
		w.deps.publish(ctx, events.New(events.UserRoleChanged, req.UserID, map[string]any{
			"role":      req.RequestType,
			"requestId": req.ID,
		}))
	}
	metrics.RecordResolution(action, "applied")
	w.deps.Log.Info("role request resolved",
		zap.String("request_id", req.ID), zap.String("action", action), zap.String("by", caller.Email))
	w.deps.publish(ctx, events.New(events.RoleRequestResolved, req.ID, map[string]any{
		"userId":        req.UserID,
		"requestType":   req.RequestType,
		"requestStatus": to,
		"resolvedBy":    caller.Email,
	}))
	return res, nil
}

func (w *RoleWorkflow) reject(ctx context.Context, req *models.RoleRequest) error {
	ok, err := w.requests.SetStatus(ctx, req.ID, models.RequestPending, models.RequestRejected)
	if err != nil {
		return storeErr("reject role request", err)
	}
	if !ok {
		return w.lostRace(ctx, req.ID, models.ActionReject)
	}
	return nil
}

// lostRace explains why a conditional request update matched nothing
func (w *RoleWorkflow) lostRace(ctx context.Context, id string, act models.RequestAction) error {
	current, err := w.get(ctx, id)
	if err != nil {
		return err
	}
	if err := statemachine.CanResolveRequest(current.RequestStatus, act); err != nil {
		return err
	}
	to, _ := act.Target()
	return &statemachine.TransitionError{Machine: "request", From: string(current.RequestStatus), To: string(to)}
}

func (w *RoleWorkflow) acceptAtomically(ctx context.Context, req *models.RoleRequest) error {
	var domainErr error
	err := w.store.Atomically(ctx, func(tx *store.Store) error {
		found, err := tx.Users.SetRole(ctx, req.UserID, req.RequestType)
		if err != nil {
			return err
		}
		if !found {
			domainErr = notFound("user", req.UserID)
			return domainErr
		}
		ok, err := tx.Requests.SetStatus(ctx, req.ID, models.RequestPending, models.RequestAccepted)
		if err != nil {
			return err
		}
		if !ok {
			domainErr = &statemachine.TransitionError{Machine: "request", From: "resolved", To: string(models.RequestAccepted)}
			return domainErr
		}
		return nil
	})
	if domainErr != nil {
		if errors.Is(domainErr, ErrInvalidTransition) {
			return w.lostRace(ctx, req.ID, models.ActionAccept)
		}
		return domainErr
	}
	if err != nil {
		return storeErr("accept role request", err)
	}
	return nil
}

// acceptTwoPhase writes the role first. Once the role is written the caller
// succeeds even if the request status cannot be updated; that write is queued
// for the reconciler instead. If the request was resolved some other way in
// between, the grant is taken back and the accept fails.
func (w *RoleWorkflow) acceptTwoPhase(ctx context.Context, req *models.RoleRequest) error {
	user, err := w.users.Get(ctx, req.UserID)
	if errors.Is(err, store.ErrNotFound) {
		return notFound("user", req.UserID)
	}
	if err != nil {
		return storeErr("get user", err)
	}
	prior := user.Role

	found, err := w.users.SetRole(ctx, req.UserID, req.RequestType)
	if err != nil {
		return storeErr("set user role", err)
	}
	if !found {
		return notFound("user", req.UserID)
	}

	ok, err := w.requests.SetStatus(ctx, req.ID, models.RequestPending, models.RequestAccepted)
	switch {
	case err != nil:
		w.deps.deferProjection(ctx, w.projections, models.PendingProjection{
			Kind:     models.ProjectionRequestStatus,
			TargetID: req.ID,
			Value:    string(models.RequestAccepted),
			Undo:     string(prior),
		}, err)
	case !ok:
		w.undoGrant(ctx, req, prior)
		return w.lostRace(ctx, req.ID, models.ActionAccept)
	}
	return nil
}

func (w *RoleWorkflow) undoGrant(ctx context.Context, req *models.RoleRequest, prior models.UserRole) {
	log := w.deps.Log.With(zap.String("request_id", req.ID), zap.String("user_id", req.UserID))
	restored, err := restoreUnlessAccepted(ctx, w.store, req.ID, prior)
	if err != nil {
		w.deps.deferProjection(ctx, w.projections, models.PendingProjection{
			Kind:     models.ProjectionUserRole,
			TargetID: req.ID,
			Value:    string(prior),
		}, err)
		return
	}
	if restored {
		log.Warn("request resolved concurrently, role grant undone", zap.String("role", string(prior)))
	}
}

// SetRole is the administrative override: it sets a user's role directly,
// bypassing the request workflow.
func (w *RoleWorkflow) SetRole(ctx context.Context, caller models.Identity, userID, role string) error {
	if err := authorize(w.policy, caller); err != nil {
		return err
	}
	r := models.UserRole(role)
	if blank(role) {
		return missing("role")
	}
	if !r.Valid() {
		return invalid("role", "must be one of user, chef, admin")
	}

	found, err := w.users.SetRole(ctx, userID, r)
	if err != nil {
		return storeErr("set user role", err)
	}
	if !found {
		return notFound("user", userID)
	}

	w.deps.Log.Info("user role set directly",
		zap.String("user_id", userID), zap.String("role", role), zap.String("by", caller.Email))
	w.deps.publish(ctx, events.New(events.UserRoleChanged, userID, map[string]any{
		"role":  r,
		"setBy": caller.Email,
	}))
	return nil
}
